package notification

import (
	"context"
	"fmt"
	"os"
	"strings"
	"testing"
	"time"

	"backend/internal/identity"
	"backend/internal/logger"
	"backend/internal/moderation"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

func TestMain(m *testing.M) {
	_ = logger.Init("error", "console", "stderr")
	os.Exit(m.Run())
}

// captureNotifier 捕获发出的通知
type captureNotifier struct {
	sent []*Notification
}

func (c *captureNotifier) Send(_ context.Context, n *Notification) error {
	c.sent = append(c.sent, n)
	return nil
}

// staticResolver 固定返回一组用户
type staticResolver []string

func (s staticResolver) UsersEligibleFor(_ context.Context, _ *moderation.Role) ([]string, error) {
	return s, nil
}

// staticRoles 固定角色表
type staticRoles map[string]*moderation.Role

func (s staticRoles) GetRole(_ context.Context, id string) (*moderation.Role, error) {
	role, ok := s[id]
	if !ok {
		return nil, moderation.ErrRoleNotFound
	}
	return role, nil
}

func setupNotifierFixture(t *testing.T) (*captureNotifier, *identity.Service) {
	t.Helper()
	dsn := fmt.Sprintf("file:notifier_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("打开 sqlite 失败: %v", err)
	}
	identities := identity.NewService(db)
	if err := identities.AutoMigrate(); err != nil {
		t.Fatalf("迁移身份表失败: %v", err)
	}
	return &captureNotifier{}, identities
}

func TestNotifyCollectionAuthor(t *testing.T) {
	capture, identities := setupNotifierFixture(t)
	ctx := context.Background()

	author, err := identities.CreateUser(ctx, "author", "author@example.com")
	if err != nil {
		t.Fatalf("创建作者失败: %v", err)
	}

	cn := NewCollectionNotifier(identities, staticResolver{}, staticRoles{}, capture, "https://cms.example.com")

	collection := &moderation.ModerationCollection{ID: "col-1", Name: "九月更新", AuthorID: author.ID}
	err = cn.NotifyCollectionAuthor(ctx, &moderation.AuthorNotification{
		Collection: collection,
		Requests: []*moderation.ModerationRequest{
			{ID: "req-1", VersionID: "ver-1", Language: "zh"},
			{ID: "req-2", VersionID: "ver-2", Language: "zh"},
		},
		Action:   moderation.ActionApproved,
		ByUserID: "someone",
	})
	if err != nil {
		t.Fatalf("作者通知失败: %v", err)
	}

	if len(capture.sent) != 1 {
		t.Fatalf("应发出一封邮件, 实际 %d", len(capture.sent))
	}
	mail := capture.sent[0]
	if mail.To != "author@example.com" {
		t.Fatalf("收件人不符: %s", mail.To)
	}
	if !strings.Contains(mail.Subject, "九月更新") || !strings.Contains(mail.Subject, "2") {
		t.Fatalf("主题应包含集合名与数量: %s", mail.Subject)
	}
	if !strings.Contains(mail.Body, "ver-1") || !strings.Contains(mail.Body, "ver-2") {
		t.Fatalf("正文应列出全部版本: %s", mail.Body)
	}
	if !strings.Contains(mail.Body, "https://cms.example.com/collections/col-1") {
		t.Fatalf("正文应带详情链接: %s", mail.Body)
	}
}

func TestNotifyCollectionAuthorWithoutEmail(t *testing.T) {
	capture, identities := setupNotifierFixture(t)
	ctx := context.Background()

	author, err := identities.CreateUser(ctx, "ghost", "")
	if err != nil {
		t.Fatalf("创建作者失败: %v", err)
	}
	cn := NewCollectionNotifier(identities, staticResolver{}, staticRoles{}, capture, "")

	err = cn.NotifyCollectionAuthor(ctx, &moderation.AuthorNotification{
		Collection: &moderation.ModerationCollection{ID: "col-1", Name: "无邮箱", AuthorID: author.ID},
		Requests:   []*moderation.ModerationRequest{{ID: "req-1"}},
		Action:     moderation.ActionRejected,
	})
	if err != nil {
		t.Fatalf("无邮箱作者应静默跳过: %v", err)
	}
	if len(capture.sent) != 0 {
		t.Fatalf("不应发出邮件: %d", len(capture.sent))
	}
}

func TestNotifyCollectionModerators(t *testing.T) {
	capture, identities := setupNotifierFixture(t)
	ctx := context.Background()

	author, _ := identities.CreateUser(ctx, "author", "author@example.com")
	alice, _ := identities.CreateUser(ctx, "alice", "alice@example.com")
	bob, _ := identities.CreateUser(ctx, "bob", "bob@example.com")

	role := &moderation.Role{ID: "role-chief", Name: "主编"}
	cn := NewCollectionNotifier(
		identities,
		staticResolver{alice.ID, bob.ID},
		staticRoles{role.ID: role},
		capture,
		"",
	)

	err := cn.NotifyCollectionModerators(ctx, &moderation.ModeratorNotification{
		Collection: &moderation.ModerationCollection{ID: "col-1", Name: "九月更新", AuthorID: author.ID},
		Requests:   []*moderation.ModerationRequest{{ID: "req-1", VersionID: "ver-1"}},
		Action: &moderation.ModerationRequestAction{
			Action:   moderation.ActionApproved,
			ToRoleID: role.ID,
		},
	})
	if err != nil {
		t.Fatalf("审批人通知失败: %v", err)
	}

	if len(capture.sent) != 2 {
		t.Fatalf("两位审批人各收一封, 实际 %d", len(capture.sent))
	}
	for _, mail := range capture.sent {
		if !strings.Contains(mail.Subject, "主编") {
			t.Fatalf("主题应包含角色名: %s", mail.Subject)
		}
	}

	// 动作未携带目标角色时静默跳过
	capture.sent = nil
	err = cn.NotifyCollectionModerators(ctx, &moderation.ModeratorNotification{
		Collection: &moderation.ModerationCollection{ID: "col-1", Name: "九月更新"},
		Requests:   []*moderation.ModerationRequest{{ID: "req-1"}},
		Action:     &moderation.ModerationRequestAction{Action: moderation.ActionApproved},
	})
	if err != nil {
		t.Fatalf("无目标角色应静默跳过: %v", err)
	}
	if len(capture.sent) != 0 {
		t.Fatalf("不应发出邮件: %d", len(capture.sent))
	}
}
