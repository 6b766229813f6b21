package moderation

import (
	"context"
	"fmt"
	"sort"
	"sync"
)

// ContentTypeRegistry 内容类型登记表
// 启动时登记可版本化与受审批管控的内容类型，校验失败立即退出，
// 避免带着错误配置对外提供服务
type ContentTypeRegistry struct {
	mu          sync.RWMutex
	versionable map[string]bool
	moderated   map[string]bool
}

// NewContentTypeRegistry 创建登记表
func NewContentTypeRegistry() *ContentTypeRegistry {
	return &ContentTypeRegistry{
		versionable: make(map[string]bool),
		moderated:   make(map[string]bool),
	}
}

// RegisterVersionable 登记可版本化的内容类型
func (r *ContentTypeRegistry) RegisterVersionable(contentType string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.versionable[contentType] = true
}

// RegisterModerated 登记受审批管控的内容类型
func (r *ContentTypeRegistry) RegisterModerated(contentType string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.moderated[contentType] = true
}

// IsModerated 内容类型是否受审批管控
func (r *ContentTypeRegistry) IsModerated(contentType string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.moderated[contentType]
}

// Validate 校验登记表：受审批管控的类型必须同时可版本化
func (r *ContentTypeRegistry) Validate() error {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var missing []string
	for contentType := range r.moderated {
		if !r.versionable[contentType] {
			missing = append(missing, contentType)
		}
	}
	if len(missing) == 0 {
		return nil
	}
	sort.Strings(missing)
	return fmt.Errorf("%w: 受审批管控的内容类型未登记版本化支持: %v", ErrConfiguration, missing)
}

// ValidateConfiguration 服务启动自检
// 登记表校验 + 所有已配置的工作流必须含至少一个必经步骤
func (s *Service) ValidateConfiguration(ctx context.Context, registry *ContentTypeRegistry) error {
	if registry != nil {
		if err := registry.Validate(); err != nil {
			return err
		}
	}

	var workflows []Workflow
	if err := s.db.WithContext(ctx).Preload("Steps").Find(&workflows).Error; err != nil {
		return fmt.Errorf("加载工作流配置失败: %w", err)
	}
	for i := range workflows {
		if err := ValidateWorkflow(&workflows[i]); err != nil {
			return fmt.Errorf("%w: 工作流 %s (%s) 缺少必经步骤", ErrConfiguration, workflows[i].Name, workflows[i].ID)
		}
	}
	return nil
}
