package identity

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

func setupIdentityTestDB(t *testing.T) *Service {
	t.Helper()
	dsn := fmt.Sprintf("file:identity_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("打开 sqlite 失败: %v", err)
	}
	svc := NewService(db)
	if err := svc.AutoMigrate(); err != nil {
		t.Fatalf("迁移 schema 失败: %v", err)
	}
	return svc
}

func TestUserLookup(t *testing.T) {
	svc := setupIdentityTestDB(t)
	ctx := context.Background()

	created, err := svc.CreateUser(ctx, "alice", "alice@example.com")
	if err != nil {
		t.Fatalf("创建用户失败: %v", err)
	}

	loaded, err := svc.GetUser(ctx, created.ID)
	if err != nil {
		t.Fatalf("查询用户失败: %v", err)
	}
	if loaded.Username != "alice" || loaded.Email != "alice@example.com" {
		t.Fatalf("用户信息不符: %+v", loaded)
	}

	if _, err := svc.GetUser(ctx, "missing"); !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("不存在的用户应报错, 实际 %v", err)
	}
}

func TestGroupMembership(t *testing.T) {
	svc := setupIdentityTestDB(t)
	ctx := context.Background()

	group, err := svc.CreateGroup(ctx, "编辑组")
	if err != nil {
		t.Fatalf("创建用户组失败: %v", err)
	}

	alice, _ := svc.CreateUser(ctx, "alice", "alice@example.com")
	bob, _ := svc.CreateUser(ctx, "bob", "bob@example.com")
	if err := svc.AddGroupMember(ctx, group.ID, alice.ID); err != nil {
		t.Fatalf("添加成员失败: %v", err)
	}
	if err := svc.AddGroupMember(ctx, group.ID, bob.ID); err != nil {
		t.Fatalf("添加成员失败: %v", err)
	}

	ids, err := svc.ListGroupMemberIDs(ctx, group.ID)
	if err != nil {
		t.Fatalf("查询组成员失败: %v", err)
	}
	if len(ids) != 2 {
		t.Fatalf("组成员数量不符: %d", len(ids))
	}

	// 空组返回空列表
	empty, err := svc.CreateGroup(ctx, "空组")
	if err != nil {
		t.Fatalf("创建用户组失败: %v", err)
	}
	ids, err = svc.ListGroupMemberIDs(ctx, empty.ID)
	if err != nil {
		t.Fatalf("查询组成员失败: %v", err)
	}
	if len(ids) != 0 {
		t.Fatalf("空组不应有成员: %v", ids)
	}
}

func TestListEmailsSkipsMissing(t *testing.T) {
	svc := setupIdentityTestDB(t)
	ctx := context.Background()

	alice, _ := svc.CreateUser(ctx, "alice", "alice@example.com")
	noMail, _ := svc.CreateUser(ctx, "ghost", "")

	emails, err := svc.ListEmails(ctx, []string{alice.ID, noMail.ID, "missing"})
	if err != nil {
		t.Fatalf("查询邮箱失败: %v", err)
	}
	if len(emails) != 1 || emails[0] != "alice@example.com" {
		t.Fatalf("应只返回有邮箱的用户: %v", emails)
	}

	emails, err = svc.ListEmails(ctx, nil)
	if err != nil || emails != nil {
		t.Fatalf("空入参应返回空结果: %v %v", emails, err)
	}
}
