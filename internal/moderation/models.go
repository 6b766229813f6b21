package moderation

import (
	"time"

	"gorm.io/datatypes"
)

// ============================================================================
// 状态与动作常量
// ============================================================================

// CollectionStatus 审批集合状态
type CollectionStatus string

const (
	CollectionStatusNew       CollectionStatus = "new"       // 新建，尚无内容进入审批
	CollectionStatusInReview  CollectionStatus = "in_review" // 审批进行中
	CollectionStatusArchived  CollectionStatus = "archived"  // 已归档，所有请求终结
	CollectionStatusCancelled CollectionStatus = "cancelled" // 已取消
)

// ActionKind 审批动作类型
type ActionKind string

const (
	ActionStarted     ActionKind = "started"     // 进入审批流程
	ActionApproved    ActionKind = "approved"    // 步骤通过
	ActionRejected    ActionKind = "rejected"    // 驳回待修改
	ActionResubmitted ActionKind = "resubmitted" // 修改后重新提交
	ActionCancelled   ActionKind = "cancelled"   // 取消审批
)

// RequestState 审批请求派生状态（由动作日志折算，不落库）
type RequestState string

const (
	StatePending   RequestState = "pending"   // 等待审批
	StateApproved  RequestState = "approved"  // 全部必经步骤已通过
	StateRejected  RequestState = "rejected"  // 已驳回，等待重新提交
	StateCancelled RequestState = "cancelled" // 已取消
)

// ============================================================================
// 审批角色与工作流
// ============================================================================

// Role 审批角色，可绑定单个用户或用户组
// 评估时 "有权审批的用户" = {绑定用户} ∪ {绑定用户组成员}
type Role struct {
	ID        string    `json:"id" gorm:"primaryKey;type:uuid"`
	Name      string    `json:"name" gorm:"size:120;not null"`
	UserID    string    `json:"userId" gorm:"type:uuid;index"`  // 绑定用户（可选）
	GroupID   string    `json:"groupId" gorm:"type:uuid;index"` // 绑定用户组（可选）
	CreatedAt time.Time `json:"createdAt" gorm:"not null;autoCreateTime"`
	UpdatedAt time.Time `json:"updatedAt" gorm:"not null;autoUpdateTime"`
}

// TableName 指定表名
func (Role) TableName() string {
	return "moderation_roles"
}

// Workflow 审批工作流，按序组织审批步骤
type Workflow struct {
	ID   string `json:"id" gorm:"primaryKey;type:uuid"`
	Name string `json:"name" gorm:"size:120;not null;uniqueIndex"`

	// DiscardOnRejection 驳回策略：true 时驳回会清空本轮已累计的步骤通过记录，
	// 重新提交后从头审批；false（默认）保留驳回前的通过记录
	DiscardOnRejection bool `json:"discardOnRejection" gorm:"default:false"`

	IsDefault bool      `json:"isDefault" gorm:"default:false"`
	CreatedAt time.Time `json:"createdAt" gorm:"not null;autoCreateTime"`
	UpdatedAt time.Time `json:"updatedAt" gorm:"not null;autoUpdateTime"`

	Steps []WorkflowStep `json:"steps" gorm:"foreignKey:WorkflowID"`
}

// TableName 指定表名
func (Workflow) TableName() string {
	return "moderation_workflows"
}

// WorkflowStep 工作流中的一个审批步骤
// Order 相同的步骤构成并行阶段，须全部通过后才进入下一阶段
type WorkflowStep struct {
	ID         string    `json:"id" gorm:"primaryKey;type:uuid"`
	WorkflowID string    `json:"workflowId" gorm:"type:uuid;not null;index"`
	RoleID     string    `json:"roleId" gorm:"type:uuid;not null;index"`
	Order      int       `json:"order" gorm:"column:step_order;not null;default:1"`
	IsRequired bool      `json:"isRequired" gorm:"default:true"`
	CreatedAt  time.Time `json:"createdAt" gorm:"not null;autoCreateTime"`

	Role *Role `json:"role,omitempty" gorm:"foreignKey:RoleID"`
}

// TableName 指定表名
func (WorkflowStep) TableName() string {
	return "moderation_workflow_steps"
}

// ============================================================================
// 审批集合与审批请求
// ============================================================================

// ModerationCollection 作者名下的一批审批请求，共享同一工作流
type ModerationCollection struct {
	ID         string           `json:"id" gorm:"primaryKey;type:uuid"`
	Name       string           `json:"name" gorm:"size:255;not null"`
	AuthorID   string           `json:"authorId" gorm:"type:uuid;not null;index"`
	WorkflowID string           `json:"workflowId" gorm:"type:uuid;not null;index"`
	Status     CollectionStatus `json:"status" gorm:"size:20;not null;default:new;index"`
	CreatedAt  time.Time        `json:"createdAt" gorm:"not null;autoCreateTime"`
	UpdatedAt  time.Time        `json:"updatedAt" gorm:"not null;autoUpdateTime"`
}

// TableName 指定表名
func (ModerationCollection) TableName() string {
	return "moderation_collections"
}

// ModerationRequest 单个内容版本的审批请求
// 状态由动作日志派生，IsActive 仅作为写入时的乐观并发锚点与查询索引
type ModerationRequest struct {
	ID           string    `json:"id" gorm:"primaryKey;type:uuid"`
	VersionID    string    `json:"versionId" gorm:"type:uuid;not null;uniqueIndex:uniq_collection_version"` // 关联的内容版本，同一集合内唯一
	Language     string    `json:"language" gorm:"size:10;not null;default:zh"`
	CollectionID string    `json:"collectionId" gorm:"type:uuid;not null;index;uniqueIndex:uniq_collection_version"`
	AuthorID     string    `json:"authorId" gorm:"type:uuid;not null;index"`
	IsActive     bool      `json:"isActive" gorm:"not null;default:true;index"`
	CreatedAt    time.Time `json:"createdAt" gorm:"not null;autoCreateTime"`
	UpdatedAt    time.Time `json:"updatedAt" gorm:"not null;autoUpdateTime"`

	Actions []ModerationRequestAction `json:"actions,omitempty" gorm:"foreignKey:RequestID"`
}

// TableName 指定表名
func (ModerationRequest) TableName() string {
	return "moderation_requests"
}

// ModerationRequestAction 审批动作日志，仅追加、不可修改
// 动作序列是请求审批进度的唯一事实来源
type ModerationRequestAction struct {
	ID        string     `json:"id" gorm:"primaryKey;type:uuid"`
	RequestID string     `json:"requestId" gorm:"type:uuid;not null;index;uniqueIndex:uniq_request_position"`
	ByUserID  string     `json:"byUserId" gorm:"type:uuid;not null"`
	Action    ActionKind `json:"action" gorm:"size:20;not null"`

	// Position 请求内的追加序号，保证日志回放顺序与写入顺序一致
	// 请求内唯一：两次并发追加只有一次能落库，另一次撞索引报并发冲突
	Position int `json:"position" gorm:"not null;uniqueIndex:uniq_request_position"`

	// StepID 本次通过动作满足的步骤（仅 approved 动作有值）
	StepID string `json:"stepId" gorm:"type:uuid;index"`
	// ToRoleID 下一待审批步骤的角色（仍有后续必经步骤时记录，用于通知路由）
	ToRoleID string `json:"toRoleId" gorm:"type:uuid"`

	Message    string         `json:"message" gorm:"type:text"`
	Attachment datatypes.JSON `json:"attachment,omitempty" gorm:"type:jsonb"` // 附件元信息
	CreatedAt  time.Time      `json:"createdAt" gorm:"not null;autoCreateTime"`
}

// TableName 指定表名
func (ModerationRequestAction) TableName() string {
	return "moderation_request_actions"
}

// ============================================================================
// 请求/响应类型
// ============================================================================

// CreateRoleRequest 创建审批角色
type CreateRoleRequest struct {
	Name    string `json:"name" binding:"required"`
	UserID  string `json:"userId"`
	GroupID string `json:"groupId"`
}

// CreateWorkflowStepInput 创建工作流时的步骤定义
type CreateWorkflowStepInput struct {
	RoleID     string `json:"roleId" binding:"required"`
	Order      int    `json:"order"`
	IsRequired bool   `json:"isRequired"`
}

// CreateWorkflowRequest 创建工作流
type CreateWorkflowRequest struct {
	Name               string                    `json:"name" binding:"required"`
	DiscardOnRejection bool                      `json:"discardOnRejection"`
	Steps              []CreateWorkflowStepInput `json:"steps" binding:"required"`
}

// CreateCollectionRequest 创建审批集合
type CreateCollectionRequest struct {
	Name       string `json:"name" binding:"required"`
	AuthorID   string `json:"-"`
	WorkflowID string `json:"workflowId" binding:"required"`
}

// AddVersionRequest 向集合添加一个内容版本
type AddVersionRequest struct {
	VersionID string `json:"versionId" binding:"required"`
	Language  string `json:"language"`
}

// ActionInput 单个请求上的审批动作输入
type ActionInput struct {
	ByUserID   string         `json:"-"`
	Message    string         `json:"message"`
	Attachment map[string]any `json:"attachment"`
}

// ListCollectionsQuery 集合列表查询
type ListCollectionsQuery struct {
	AuthorID string           `json:"authorId"`
	Status   CollectionStatus `json:"status"`
	Page     int              `json:"page"`
	PageSize int              `json:"pageSize"`
}

// ActionOutcome 一次状态迁移的结果
type ActionOutcome struct {
	Request   *ModerationRequest       `json:"request"`
	Action    *ModerationRequestAction `json:"action"`
	Finalized bool                     `json:"finalized"` // 本次动作使请求达到完全通过
}
