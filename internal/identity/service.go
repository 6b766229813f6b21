package identity

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var ErrUserNotFound = errors.New("用户不存在")

// Service 身份查询服务，为审批引擎提供用户与组成员解析
type Service struct {
	db *gorm.DB
}

// NewService 创建身份服务
func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

// AutoMigrate 自动迁移表结构
func (s *Service) AutoMigrate() error {
	return s.db.AutoMigrate(&User{}, &Group{}, &GroupMember{})
}

// CreateUser 创建用户
func (s *Service) CreateUser(ctx context.Context, username, email string) (*User, error) {
	user := &User{
		ID:       uuid.New().String(),
		Username: username,
		Email:    email,
	}
	if err := s.db.WithContext(ctx).Create(user).Error; err != nil {
		return nil, fmt.Errorf("创建用户失败: %w", err)
	}
	return user, nil
}

// GetUser 获取用户
func (s *Service) GetUser(ctx context.Context, id string) (*User, error) {
	var user User
	if err := s.db.WithContext(ctx).First(&user, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

// CreateGroup 创建用户组
func (s *Service) CreateGroup(ctx context.Context, name string) (*Group, error) {
	group := &Group{
		ID:   uuid.New().String(),
		Name: name,
	}
	if err := s.db.WithContext(ctx).Create(group).Error; err != nil {
		return nil, fmt.Errorf("创建用户组失败: %w", err)
	}
	return group, nil
}

// AddGroupMember 添加组成员
func (s *Service) AddGroupMember(ctx context.Context, groupID, userID string) error {
	member := &GroupMember{
		ID:      uuid.New().String(),
		GroupID: groupID,
		UserID:  userID,
	}
	if err := s.db.WithContext(ctx).Create(member).Error; err != nil {
		return fmt.Errorf("添加组成员失败: %w", err)
	}
	return nil
}

// ListGroupMemberIDs 列出组内全部用户 ID
func (s *Service) ListGroupMemberIDs(ctx context.Context, groupID string) ([]string, error) {
	var ids []string
	err := s.db.WithContext(ctx).
		Model(&GroupMember{}).
		Where("group_id = ?", groupID).
		Order("user_id ASC").
		Pluck("user_id", &ids).Error
	if err != nil {
		return nil, fmt.Errorf("查询组成员失败: %w", err)
	}
	return ids, nil
}

// ListEmails 批量查询用户邮箱，忽略查不到的用户
func (s *Service) ListEmails(ctx context.Context, userIDs []string) ([]string, error) {
	if len(userIDs) == 0 {
		return nil, nil
	}
	var emails []string
	err := s.db.WithContext(ctx).
		Model(&User{}).
		Where("id IN ? AND email <> ''", userIDs).
		Pluck("email", &emails).Error
	if err != nil {
		return nil, fmt.Errorf("查询用户邮箱失败: %w", err)
	}
	return emails, nil
}
