package moderation

import (
	"context"
	"errors"
	"testing"
)

func TestContentTypeRegistryValidate(t *testing.T) {
	registry := NewContentTypeRegistry()
	registry.RegisterVersionable("content_version")
	registry.RegisterModerated("content_version")

	if err := registry.Validate(); err != nil {
		t.Fatalf("合法登记表校验失败: %v", err)
	}

	registry.RegisterModerated("static_page")
	err := registry.Validate()
	if !errors.Is(err, ErrConfiguration) {
		t.Fatalf("缺少版本化支持应校验失败, 实际 %v", err)
	}

	registry.RegisterVersionable("static_page")
	if err := registry.Validate(); err != nil {
		t.Fatalf("补登记后应通过: %v", err)
	}

	if !registry.IsModerated("static_page") {
		t.Fatalf("static_page 应为受管控类型")
	}
	if registry.IsModerated("banner") {
		t.Fatalf("未登记类型不应视为受管控")
	}
}

func TestValidateConfigurationRejectsBrokenWorkflow(t *testing.T) {
	f := setupFixture(t, false)
	ctx := context.Background()

	registry := NewContentTypeRegistry()
	registry.RegisterVersionable("content_version")
	registry.RegisterModerated("content_version")

	if err := f.svc.ValidateConfiguration(ctx, registry); err != nil {
		t.Fatalf("合法配置自检失败: %v", err)
	}

	// 绕过创建接口直接写入无必经步骤的工作流，自检必须兜底发现
	broken := &Workflow{ID: "wf-broken", Name: "坏掉的工作流"}
	if err := f.db.Create(broken).Error; err != nil {
		t.Fatalf("写入工作流失败: %v", err)
	}
	if err := f.svc.ValidateConfiguration(ctx, registry); !errors.Is(err, ErrConfiguration) {
		t.Fatalf("无必经步骤的工作流应使自检失败, 实际 %v", err)
	}
}
