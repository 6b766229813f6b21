package moderation

import (
	"context"
	"errors"
	"testing"
)

// mapResolver 测试用的角色成员解析器
type mapResolver map[string][]string

func (m mapResolver) UsersEligibleFor(_ context.Context, role *Role) ([]string, error) {
	return m[role.ID], nil
}

func twoStageWorkflow(discard bool) *Workflow {
	return &Workflow{
		ID:                 "wf-1",
		Name:               "两级审批",
		DiscardOnRejection: discard,
		Steps: []WorkflowStep{
			{ID: "step-editor", RoleID: "role-editor", Order: 1, IsRequired: true, Role: &Role{ID: "role-editor", Name: "编辑"}},
			{ID: "step-chief", RoleID: "role-chief", Order: 2, IsRequired: true, Role: &Role{ID: "role-chief", Name: "主编"}},
		},
	}
}

func approvedAction(userID, stepID string) ModerationRequestAction {
	return ModerationRequestAction{Action: ActionApproved, ByUserID: userID, StepID: stepID}
}

func TestDeriveStateFold(t *testing.T) {
	engine := NewEngine(mapResolver{})
	wf := twoStageWorkflow(false)

	cases := []struct {
		name    string
		actions []ModerationRequestAction
		want    RequestState
	}{
		{"空日志为待审", nil, StatePending},
		{"仅提交为待审", []ModerationRequestAction{{Action: ActionStarted}}, StatePending},
		{"单步通过仍待审", []ModerationRequestAction{
			{Action: ActionStarted},
			approvedAction("u1", "step-editor"),
		}, StatePending},
		{"全部必经步骤通过", []ModerationRequestAction{
			{Action: ActionStarted},
			approvedAction("u1", "step-editor"),
			approvedAction("u2", "step-chief"),
		}, StateApproved},
		{"末次驳回", []ModerationRequestAction{
			{Action: ActionStarted},
			approvedAction("u1", "step-editor"),
			{Action: ActionRejected, ByUserID: "u2"},
		}, StateRejected},
		{"末次取消", []ModerationRequestAction{
			{Action: ActionStarted},
			{Action: ActionCancelled, ByUserID: "author"},
		}, StateCancelled},
		{"驳回后重新提交回到待审", []ModerationRequestAction{
			{Action: ActionStarted},
			{Action: ActionRejected, ByUserID: "u1"},
			{Action: ActionResubmitted, ByUserID: "author"},
		}, StatePending},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := engine.DeriveState(wf, tc.actions); got != tc.want {
				t.Fatalf("派生状态不符: 期望 %s 实际 %s", tc.want, got)
			}
		})
	}
}

func TestSatisfiedStepsSurviveRejectionByDefault(t *testing.T) {
	engine := NewEngine(mapResolver{})
	wf := twoStageWorkflow(false)

	actions := []ModerationRequestAction{
		{Action: ActionStarted},
		approvedAction("u1", "step-editor"),
		{Action: ActionRejected, ByUserID: "u2"},
		{Action: ActionResubmitted, ByUserID: "author"},
	}

	satisfied := engine.SatisfiedSteps(wf, actions)
	if _, ok := satisfied["step-editor"]; !ok {
		t.Fatalf("默认策略下驳回不应清空已通过步骤")
	}
	if next := engine.NextRequiredStep(wf, actions); next == nil || next.ID != "step-chief" {
		t.Fatalf("重新提交后应直接进入第二级审批, 实际 %+v", next)
	}
}

func TestSatisfiedStepsDiscardOnRejection(t *testing.T) {
	engine := NewEngine(mapResolver{})
	wf := twoStageWorkflow(true)

	actions := []ModerationRequestAction{
		{Action: ActionStarted},
		approvedAction("u1", "step-editor"),
		{Action: ActionRejected, ByUserID: "u2"},
		{Action: ActionResubmitted, ByUserID: "author"},
	}

	if satisfied := engine.SatisfiedSteps(wf, actions); len(satisfied) != 0 {
		t.Fatalf("驳回重置策略下应清空通过记录, 实际 %v", satisfied)
	}
	if next := engine.NextRequiredStep(wf, actions); next == nil || next.ID != "step-editor" {
		t.Fatalf("重置后应从第一级重新审批, 实际 %+v", next)
	}
}

func TestActionableStepsParallelStage(t *testing.T) {
	engine := NewEngine(mapResolver{})
	// Order 相同的两个必经步骤构成并行阶段
	wf := &Workflow{
		ID: "wf-parallel",
		Steps: []WorkflowStep{
			{ID: "step-a", RoleID: "role-a", Order: 1, IsRequired: true, Role: &Role{ID: "role-a"}},
			{ID: "step-b", RoleID: "role-b", Order: 1, IsRequired: true, Role: &Role{ID: "role-b"}},
			{ID: "step-c", RoleID: "role-c", Order: 2, IsRequired: true, Role: &Role{ID: "role-c"}},
		},
	}

	actions := []ModerationRequestAction{{Action: ActionStarted}}
	actionable := engine.ActionableSteps(wf, actions)
	if len(actionable) != 2 {
		t.Fatalf("并行阶段应有 2 个可审批步骤, 实际 %d", len(actionable))
	}
	for _, step := range actionable {
		if step.Order != 1 {
			t.Fatalf("第二阶段尚不可达, 却出现步骤 %s", step.ID)
		}
	}

	// A 通过后 B 仍在当前阶段，C 依旧不可达
	actions = append(actions, approvedAction("u1", "step-a"))
	actionable = engine.ActionableSteps(wf, actions)
	if len(actionable) != 1 || actionable[0].ID != "step-b" {
		t.Fatalf("阶段未完成时应只剩 step-b 可审批, 实际 %+v", actionable)
	}

	// 并行阶段全部通过后进入第二阶段
	actions = append(actions, approvedAction("u2", "step-b"))
	actionable = engine.ActionableSteps(wf, actions)
	if len(actionable) != 1 || actionable[0].ID != "step-c" {
		t.Fatalf("并行阶段完成后应进入 step-c, 实际 %+v", actionable)
	}
}

func TestDeriveStateParallelStage(t *testing.T) {
	engine := NewEngine(mapResolver{})
	// 整个工作流只有一个并行阶段
	wf := &Workflow{
		ID: "wf-parallel-only",
		Steps: []WorkflowStep{
			{ID: "step-a", RoleID: "role-a", Order: 1, IsRequired: true, Role: &Role{ID: "role-a"}},
			{ID: "step-b", RoleID: "role-b", Order: 1, IsRequired: true, Role: &Role{ID: "role-b"}},
		},
	}

	actions := []ModerationRequestAction{
		{Action: ActionStarted},
		approvedAction("u1", "step-a"),
	}
	if state := engine.DeriveState(wf, actions); state != StatePending {
		t.Fatalf("并行阶段未全部通过, 状态应为 pending, 实际 %s", state)
	}
	if next := engine.NextRequiredStep(wf, actions); next == nil || next.ID != "step-b" {
		t.Fatalf("仍应等待 step-b, 实际 %+v", next)
	}

	actions = append(actions, approvedAction("u2", "step-b"))
	if state := engine.DeriveState(wf, actions); state != StateApproved {
		t.Fatalf("并行阶段全部通过后应为 approved, 实际 %s", state)
	}
	if next := engine.NextRequiredStep(wf, actions); next != nil {
		t.Fatalf("已无待审批步骤, 实际 %+v", next)
	}
}

func TestActionableStepsOptionalBeforeGate(t *testing.T) {
	engine := NewEngine(mapResolver{})
	wf := &Workflow{
		ID: "wf-optional",
		Steps: []WorkflowStep{
			{ID: "step-opt", RoleID: "role-opt", Order: 1, IsRequired: false, Role: &Role{ID: "role-opt"}},
			{ID: "step-req", RoleID: "role-req", Order: 2, IsRequired: true, Role: &Role{ID: "role-req"}},
		},
	}

	actionable := engine.ActionableSteps(wf, []ModerationRequestAction{{Action: ActionStarted}})
	ids := map[string]bool{}
	for _, step := range actionable {
		ids[step.ID] = true
	}
	if !ids["step-opt"] || !ids["step-req"] {
		t.Fatalf("闸口之前的可选步骤应与必经步骤同时可审批, 实际 %+v", actionable)
	}
}

func TestStepForUser(t *testing.T) {
	resolver := mapResolver{
		"role-editor": {"alice"},
		"role-chief":  {"bob"},
	}
	engine := NewEngine(resolver)
	wf := twoStageWorkflow(false)
	ctx := context.Background()

	actions := []ModerationRequestAction{{Action: ActionStarted}}

	step, err := engine.StepForUser(ctx, wf, actions, "alice")
	if err != nil {
		t.Fatalf("alice 应可审批第一级: %v", err)
	}
	if step.ID != "step-editor" {
		t.Fatalf("alice 的步骤不符: %s", step.ID)
	}

	// bob 的步骤还没轮到
	if _, err := engine.StepForUser(ctx, wf, actions, "bob"); !errors.Is(err, ErrPermissionDenied) {
		t.Fatalf("未到达的阶段应返回无权限, 实际 %v", err)
	}

	// alice 通过后再审批应报重复
	actions = append(actions, approvedAction("alice", "step-editor"))
	if _, err := engine.StepForUser(ctx, wf, actions, "alice"); !errors.Is(err, ErrDuplicateAction) {
		t.Fatalf("同周期重复审批应返回 ErrDuplicateAction, 实际 %v", err)
	}

	// 轮到 bob
	if step, err := engine.StepForUser(ctx, wf, actions, "bob"); err != nil || step.ID != "step-chief" {
		t.Fatalf("bob 应可审批第二级: step=%v err=%v", step, err)
	}

	// 与流程无关的用户
	if _, err := engine.StepForUser(ctx, wf, actions, "mallory"); !errors.Is(err, ErrPermissionDenied) {
		t.Fatalf("无关用户应返回无权限, 实际 %v", err)
	}
}

func TestValidateWorkflow(t *testing.T) {
	if err := ValidateWorkflow(&Workflow{Steps: []WorkflowStep{{ID: "s1", IsRequired: false}}}); !errors.Is(err, ErrConfiguration) {
		t.Fatalf("无必经步骤的工作流应校验失败, 实际 %v", err)
	}
	if err := ValidateWorkflow(twoStageWorkflow(false)); err != nil {
		t.Fatalf("合法工作流校验失败: %v", err)
	}
}
