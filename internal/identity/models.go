package identity

import "time"

// User 平台用户。审批引擎只关心身份等值比较与组成员关系，
// 账号体系的其余部分（认证、资料）由外部系统负责
type User struct {
	ID        string    `json:"id" gorm:"primaryKey;type:uuid"`
	Username  string    `json:"username" gorm:"size:100;not null;uniqueIndex"`
	Email     string    `json:"email" gorm:"size:255"`
	CreatedAt time.Time `json:"createdAt" gorm:"not null;autoCreateTime"`
}

// TableName 指定表名
func (User) TableName() string {
	return "identity_users"
}

// Group 用户组
type Group struct {
	ID        string    `json:"id" gorm:"primaryKey;type:uuid"`
	Name      string    `json:"name" gorm:"size:100;not null;uniqueIndex"`
	CreatedAt time.Time `json:"createdAt" gorm:"not null;autoCreateTime"`
}

// TableName 指定表名
func (Group) TableName() string {
	return "identity_groups"
}

// GroupMember 用户组成员关系
type GroupMember struct {
	ID      string `json:"id" gorm:"primaryKey;type:uuid"`
	GroupID string `json:"groupId" gorm:"type:uuid;not null;index:idx_group_user,unique"`
	UserID  string `json:"userId" gorm:"type:uuid;not null;index:idx_group_user,unique"`
}

// TableName 指定表名
func (GroupMember) TableName() string {
	return "identity_group_members"
}
