package versioning

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

func setupVersioningTestDB(t *testing.T) *Service {
	t.Helper()
	dsn := fmt.Sprintf("file:versioning_%d?mode=memory&cache=shared", time.Now().UnixNano())
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

func TestCreateDraftNumbering(t *testing.T) {
	svc := setupVersioningTestDB(t)
	ctx := context.Background()

	v1, err := svc.CreateDraft(ctx, "page", "obj-1", "author")
	if err != nil {
		t.Fatalf("创建草稿失败: %v", err)
	}
	v2, err := svc.CreateDraft(ctx, "page", "obj-1", "author")
	if err != nil {
		t.Fatalf("创建第二个草稿失败: %v", err)
	}
	if v1.Number != 1 || v2.Number != 2 {
		t.Fatalf("版本号应递增: v1=%d v2=%d", v1.Number, v2.Number)
	}

	// 不同对象各自计数
	other, err := svc.CreateDraft(ctx, "page", "obj-2", "author")
	if err != nil {
		t.Fatalf("创建草稿失败: %v", err)
	}
	if other.Number != 1 {
		t.Fatalf("新对象版本号应从 1 开始, 实际 %d", other.Number)
	}
}

func TestPublishArchivesPriorVersion(t *testing.T) {
	svc := setupVersioningTestDB(t)
	ctx := context.Background()

	v1, err := svc.CreateDraft(ctx, "page", "obj-1", "author")
	if err != nil {
		t.Fatalf("创建草稿失败: %v", err)
	}
	if err := svc.Publish(ctx, v1.ID, "editor"); err != nil {
		t.Fatalf("发布 v1 失败: %v", err)
	}

	v2, err := svc.CreateDraft(ctx, "page", "obj-1", "author")
	if err != nil {
		t.Fatalf("创建草稿失败: %v", err)
	}
	if err := svc.Publish(ctx, v2.ID, "editor"); err != nil {
		t.Fatalf("发布 v2 失败: %v", err)
	}

	// 旧版本被归档，同一对象最多一个已发布版本
	state1, _ := svc.GetState(ctx, v1.ID)
	state2, _ := svc.GetState(ctx, v2.ID)
	if state1 != StateArchived {
		t.Fatalf("旧版本应归档, 实际 %s", state1)
	}
	if state2 != StatePublished {
		t.Fatalf("新版本应已发布, 实际 %s", state2)
	}

	published, err := svc.GetVersion(ctx, v2.ID)
	if err != nil {
		t.Fatalf("查询版本失败: %v", err)
	}
	if published.PublishedBy != "editor" || published.PublishedAt == nil {
		t.Fatalf("发布元信息缺失: %+v", published)
	}
}

func TestPublishRejectsNonDraft(t *testing.T) {
	svc := setupVersioningTestDB(t)
	ctx := context.Background()

	v, err := svc.CreateDraft(ctx, "page", "obj-1", "author")
	if err != nil {
		t.Fatalf("创建草稿失败: %v", err)
	}
	if err := svc.Publish(ctx, v.ID, "editor"); err != nil {
		t.Fatalf("首次发布失败: %v", err)
	}
	if err := svc.Publish(ctx, v.ID, "editor"); !errors.Is(err, ErrNotDraft) {
		t.Fatalf("重复发布应报非草稿, 实际 %v", err)
	}

	if err := svc.Publish(ctx, "missing", "editor"); !errors.Is(err, ErrVersionNotFound) {
		t.Fatalf("不存在的版本应报错, 实际 %v", err)
	}
}
