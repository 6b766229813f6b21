package moderation

import (
	"context"
	"sort"
)

// EligibilityResolver 解析某个角色当前有权审批的用户集合
// 身份与用户组存储是外部协作方，引擎只通过该接口做成员判定
type EligibilityResolver interface {
	UsersEligibleFor(ctx context.Context, role *Role) ([]string, error)
}

// Engine 审批引擎：对单个请求的动作日志做纯折算，
// 计算派生状态、当前阶段与下一批审批人，不做任何持久化
type Engine struct {
	resolver EligibilityResolver
}

// NewEngine 创建审批引擎
func NewEngine(resolver EligibilityResolver) *Engine {
	return &Engine{resolver: resolver}
}

// orderedSteps 返回按 (Order, 创建顺序) 排序的步骤副本
func orderedSteps(wf *Workflow) []WorkflowStep {
	steps := make([]WorkflowStep, len(wf.Steps))
	copy(steps, wf.Steps)
	sort.SliceStable(steps, func(i, j int) bool {
		return steps[i].Order < steps[j].Order
	})
	return steps
}

// SatisfiedSteps 折算动作日志，返回当前审批周期内已通过的步骤集合
// 默认策略下驳回不清空既有通过记录；DiscardOnRejection 为 true 时每次驳回重置
func (e *Engine) SatisfiedSteps(wf *Workflow, actions []ModerationRequestAction) map[string]struct{} {
	satisfied := make(map[string]struct{})
	for _, a := range actions {
		switch a.Action {
		case ActionApproved:
			if a.StepID != "" {
				satisfied[a.StepID] = struct{}{}
			}
		case ActionRejected:
			if wf.DiscardOnRejection {
				satisfied = make(map[string]struct{})
			}
		}
	}
	return satisfied
}

// PendingSteps 尚未通过的步骤，按阶段顺序排列
func (e *Engine) PendingSteps(wf *Workflow, actions []ModerationRequestAction) []WorkflowStep {
	satisfied := e.SatisfiedSteps(wf, actions)
	var pending []WorkflowStep
	for _, step := range orderedSteps(wf) {
		if _, ok := satisfied[step.ID]; !ok {
			pending = append(pending, step)
		}
	}
	return pending
}

// PendingRequiredSteps 尚未通过的必经步骤
func (e *Engine) PendingRequiredSteps(wf *Workflow, actions []ModerationRequestAction) []WorkflowStep {
	var required []WorkflowStep
	for _, step := range e.PendingSteps(wf, actions) {
		if step.IsRequired {
			required = append(required, step)
		}
	}
	return required
}

// NextRequiredStep 下一个待通过的必经步骤，全部通过时返回 nil
func (e *Engine) NextRequiredStep(wf *Workflow, actions []ModerationRequestAction) *WorkflowStep {
	required := e.PendingRequiredSteps(wf, actions)
	if len(required) == 0 {
		return nil
	}
	return &required[0]
}

// DeriveState 由动作日志折算请求的派生状态
// 末次动作为 cancelled/rejected 时直接终结；否则看必经步骤是否全部满足
func (e *Engine) DeriveState(wf *Workflow, actions []ModerationRequestAction) RequestState {
	if len(actions) == 0 {
		return StatePending
	}
	last := actions[len(actions)-1]
	switch last.Action {
	case ActionCancelled:
		return StateCancelled
	case ActionRejected:
		return StateRejected
	}
	if len(e.PendingRequiredSteps(wf, actions)) == 0 {
		return StateApproved
	}
	return StatePending
}

// IsActive 派生状态对应的活跃标记：仅 pending 为活跃
func (e *Engine) IsActive(wf *Workflow, actions []ModerationRequestAction) bool {
	return e.DeriveState(wf, actions) == StatePending
}

// ActionableSteps 当前可被审批的步骤：
// 当前阶段 = 含有未通过必经步骤的最低 Order；该 Order 及之前的所有未通过步骤
// （含可选步骤）均可操作，之后的阶段尚不可达
func (e *Engine) ActionableSteps(wf *Workflow, actions []ModerationRequestAction) []WorkflowStep {
	pending := e.PendingSteps(wf, actions)

	gate := -1
	for _, step := range pending {
		if step.IsRequired {
			gate = step.Order
			break
		}
	}
	if gate < 0 {
		// 必经步骤已全部通过，剩余可选步骤不再阻塞
		return nil
	}

	var actionable []WorkflowStep
	for _, step := range pending {
		if step.Order <= gate {
			actionable = append(actionable, step)
		}
	}
	return actionable
}

// StepForUser 返回用户在当前阶段可审批的步骤
// 无可审批步骤时区分两类失败：该周期内已通过过步骤的用户返回 ErrDuplicateAction，
// 其余返回 ErrPermissionDenied（批量操作绕过界面预检，引擎必须复核）
func (e *Engine) StepForUser(ctx context.Context, wf *Workflow, actions []ModerationRequestAction, userID string) (*WorkflowStep, error) {
	for _, step := range e.ActionableSteps(wf, actions) {
		role := step.Role
		if role == nil {
			continue
		}
		users, err := e.resolver.UsersEligibleFor(ctx, role)
		if err != nil {
			return nil, err
		}
		for _, candidate := range users {
			if candidate == userID {
				s := step
				return &s, nil
			}
		}
	}

	if e.userApprovedInCycle(wf, actions, userID) {
		return nil, ErrDuplicateAction
	}
	return nil, ErrPermissionDenied
}

// userApprovedInCycle 用户在当前周期内是否已有仍然生效的通过动作
func (e *Engine) userApprovedInCycle(wf *Workflow, actions []ModerationRequestAction, userID string) bool {
	satisfied := e.SatisfiedSteps(wf, actions)
	for _, a := range actions {
		if a.Action != ActionApproved || a.ByUserID != userID {
			continue
		}
		if _, ok := satisfied[a.StepID]; ok {
			return true
		}
	}
	return false
}

// ValidateWorkflow 校验工作流定义：至少一个必经步骤，否则永远无法达到通过态
func ValidateWorkflow(wf *Workflow) error {
	for _, step := range wf.Steps {
		if step.IsRequired {
			return nil
		}
	}
	return ErrConfiguration
}
