package versioning

import "time"

// VersionState 内容版本状态
type VersionState string

const (
	StateDraft     VersionState = "draft"     // 草稿
	StatePublished VersionState = "published" // 已发布
	StateArchived  VersionState = "archived"  // 已归档
)

// Version 内容版本。版本化内容平台的最小落地：
// 审批引擎只依赖状态查询与发布操作
type Version struct {
	ID          string       `json:"id" gorm:"primaryKey;type:uuid"`
	ContentType string       `json:"contentType" gorm:"size:50;not null;index"` // page, article 等
	ObjectID    string       `json:"objectId" gorm:"type:uuid;not null;index"`  // 被版本化的内容对象
	Number      int          `json:"number" gorm:"not null;default:1"`          // 同一对象下的版本号
	State       VersionState `json:"state" gorm:"size:20;not null;default:draft;index"`
	CreatedBy   string       `json:"createdBy" gorm:"type:uuid;not null"`
	PublishedBy string       `json:"publishedBy" gorm:"type:uuid"`
	PublishedAt *time.Time   `json:"publishedAt"`
	CreatedAt   time.Time    `json:"createdAt" gorm:"not null;autoCreateTime"`
	UpdatedAt   time.Time    `json:"updatedAt" gorm:"not null;autoUpdateTime"`
}

// TableName 指定表名
func (Version) TableName() string {
	return "content_versions"
}
