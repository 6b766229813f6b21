package moderation

import "backend/internal/moderation"

// ActionRequest 单请求动作输入
type ActionRequest struct {
	Action     string         `json:"action" binding:"required"` // approved, rejected, resubmitted, cancelled
	Message    string         `json:"message"`
	Attachment map[string]any `json:"attachment"`
}

// RequestDetail 请求详情，附带由动作日志折算的派生状态
type RequestDetail struct {
	Request *moderation.ModerationRequest `json:"request"`
	State   moderation.RequestState       `json:"state"`
}

// BulkActionRequest 批量动作输入
type BulkActionRequest struct {
	Operation  string         `json:"operation" binding:"required"` // approve, reject, resubmit, publish, delete
	RequestIDs []string       `json:"requestIds" binding:"required"`
	Message    string         `json:"message"`
	Attachment map[string]any `json:"attachment"`
	Confirm    bool           `json:"confirm"` // delete 操作需要二次确认
}

func parseActionKind(action string) (moderation.ActionKind, bool) {
	switch moderation.ActionKind(action) {
	case moderation.ActionApproved, moderation.ActionRejected,
		moderation.ActionResubmitted, moderation.ActionCancelled:
		return moderation.ActionKind(action), true
	}
	return "", false
}

func parseBulkOperation(operation string) (moderation.BulkOperation, bool) {
	switch moderation.BulkOperation(operation) {
	case moderation.BulkApprove, moderation.BulkReject, moderation.BulkResubmit,
		moderation.BulkPublish, moderation.BulkDelete:
		return moderation.BulkOperation(operation), true
	}
	return "", false
}
