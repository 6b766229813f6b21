package moderation

import "errors"

var (
	ErrPermissionDenied       = errors.New("当前用户无权审批该步骤")
	ErrInvalidTransition      = errors.New("当前状态不允许该操作")
	ErrDuplicateAction        = errors.New("当前用户已审批过该步骤")
	ErrDuplicateVersion       = errors.New("该内容版本已在此集合中")
	ErrConcurrentModification = errors.New("请求状态已被并发修改，请重试")
	ErrConfiguration          = errors.New("审批配置不合法")

	ErrRoleNotFound       = errors.New("审批角色不存在")
	ErrWorkflowNotFound   = errors.New("工作流不存在")
	ErrCollectionNotFound = errors.New("审批集合不存在")
	ErrRequestNotFound    = errors.New("审批请求不存在")
	ErrCollectionClosed   = errors.New("审批集合已关闭")
	ErrNotCollectionOwner = errors.New("仅集合作者可执行该操作")
)
