package versioning

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	ErrVersionNotFound = errors.New("内容版本不存在")
	ErrNotDraft        = errors.New("仅草稿版本可以发布")
)

// Service 版本服务，承接审批通过后的发布动作
type Service struct {
	db *gorm.DB
}

// NewService 创建版本服务
func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

// AutoMigrate 自动迁移表结构
func (s *Service) AutoMigrate() error {
	return s.db.AutoMigrate(&Version{})
}

// CreateDraft 为内容对象创建新的草稿版本
func (s *Service) CreateDraft(ctx context.Context, contentType, objectID, createdBy string) (*Version, error) {
	var latest int64
	if err := s.db.WithContext(ctx).
		Model(&Version{}).
		Where("content_type = ? AND object_id = ?", contentType, objectID).
		Count(&latest).Error; err != nil {
		return nil, err
	}

	version := &Version{
		ID:          uuid.New().String(),
		ContentType: contentType,
		ObjectID:    objectID,
		Number:      int(latest) + 1,
		State:       StateDraft,
		CreatedBy:   createdBy,
	}
	if err := s.db.WithContext(ctx).Create(version).Error; err != nil {
		return nil, fmt.Errorf("创建草稿版本失败: %w", err)
	}
	return version, nil
}

// GetVersion 获取版本
func (s *Service) GetVersion(ctx context.Context, id string) (*Version, error) {
	var version Version
	if err := s.db.WithContext(ctx).First(&version, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrVersionNotFound
		}
		return nil, err
	}
	return &version, nil
}

// GetState 查询版本状态
func (s *Service) GetState(ctx context.Context, id string) (VersionState, error) {
	version, err := s.GetVersion(ctx, id)
	if err != nil {
		return "", err
	}
	return version.State, nil
}

// Publish 发布版本。仅草稿可发布；同一对象已发布的旧版本转为归档
func (s *Service) Publish(ctx context.Context, id, byUser string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var version Version
		if err := tx.First(&version, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrVersionNotFound
			}
			return err
		}
		if version.State != StateDraft {
			return ErrNotDraft
		}

		if err := tx.Model(&Version{}).
			Where("content_type = ? AND object_id = ? AND state = ?",
				version.ContentType, version.ObjectID, StatePublished).
			Update("state", StateArchived).Error; err != nil {
			return err
		}

		now := time.Now().UTC()
		result := tx.Model(&Version{}).
			Where("id = ? AND state = ?", id, StateDraft).
			Updates(map[string]any{
				"state":        StatePublished,
				"published_by": byUser,
				"published_at": now,
				"updated_at":   now,
			})
		if result.Error != nil {
			return fmt.Errorf("发布版本失败: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return ErrNotDraft
		}
		return nil
	})
}
