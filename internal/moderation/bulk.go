package moderation

import (
	"context"
	"errors"
	"fmt"

	"backend/internal/metrics"
	"backend/internal/versioning"

	"go.uber.org/zap"
)

// BulkOperation 批量操作类型
type BulkOperation string

const (
	BulkApprove   BulkOperation = "approve"   // 批量通过
	BulkReject    BulkOperation = "reject"    // 批量驳回
	BulkResubmit  BulkOperation = "resubmit"  // 批量重新提交
	BulkPublish   BulkOperation = "publish"   // 批量发布已通过版本
	BulkDelete    BulkOperation = "delete"    // 批量取消并归档
)

// BulkItemResult 单条请求的处理结果
type BulkItemResult struct {
	RequestID string `json:"requestId"`
	OK        bool   `json:"ok"`
	Reason    string `json:"reason,omitempty"` // 跳过原因，成功时为空
}

// BulkResult 批量操作汇总
type BulkResult struct {
	Operation BulkOperation    `json:"operation"`
	Succeeded int              `json:"succeeded"`
	Skipped   int              `json:"skipped"`
	Items     []BulkItemResult `json:"items"`
}

func (r *BulkResult) record(requestID string, err error) {
	if err == nil {
		r.Succeeded++
		r.Items = append(r.Items, BulkItemResult{RequestID: requestID, OK: true})
		return
	}
	r.Skipped++
	r.Items = append(r.Items, BulkItemResult{RequestID: requestID, OK: false, Reason: err.Error()})
}

// BulkAction 对集合内的一批请求执行同一动作
// 每条请求独立成败：不满足前置条件的请求被跳过并记录原因，不影响其余请求；
// 通知在整批处理完成后合并发送
func (s *Service) BulkAction(ctx context.Context, collectionID string, op BulkOperation, requestIDs []string, in *ActionInput) (*BulkResult, error) {
	if in == nil {
		in = &ActionInput{}
	}
	collection, err := s.GetCollection(ctx, collectionID)
	if err != nil {
		return nil, err
	}

	var result *BulkResult
	switch op {
	case BulkApprove:
		result, err = s.bulkApprove(ctx, collection, requestIDs, in)
	case BulkReject:
		result, err = s.bulkReject(ctx, collection, requestIDs, in)
	case BulkResubmit:
		result, err = s.bulkResubmit(ctx, collection, requestIDs, in)
	case BulkPublish:
		result, err = s.bulkPublish(ctx, collection, requestIDs, in)
	case BulkDelete:
		result, err = s.bulkDelete(ctx, collection, requestIDs, in)
	default:
		return nil, fmt.Errorf("不支持的批量操作: %s", op)
	}
	if err != nil {
		metrics.BulkOperationsTotal.WithLabelValues(string(op), "failed").Inc()
		return nil, err
	}

	metrics.BulkOperationsTotal.WithLabelValues(string(op), "ok").Inc()
	s.logger.Info("批量审批操作完成",
		zap.String("collectionId", collectionID),
		zap.String("operation", string(op)),
		zap.Int("succeeded", result.Succeeded),
		zap.Int("skipped", result.Skipped),
	)
	return result, nil
}

// bulkApprove 批量通过
// 审批人通知按"本次通过的步骤"分组：同一步骤的请求合并为一条，
// 分组顺序取该步骤在成功列表中的首次出现；已到终态的请求不产生审批人通知
func (s *Service) bulkApprove(ctx context.Context, collection *ModerationCollection, requestIDs []string, in *ActionInput) (*BulkResult, error) {
	result := &BulkResult{Operation: BulkApprove}

	type stepGroup struct {
		action   *ModerationRequestAction
		requests []*ModerationRequest
	}
	var groupOrder []string
	groups := make(map[string]*stepGroup)
	var approved []*ModerationRequest

	for _, id := range requestIDs {
		outcome, err := s.ApplyAction(ctx, id, ActionApproved, in)
		result.record(id, err)
		if err != nil {
			continue
		}
		approved = append(approved, outcome.Request)
		if outcome.Action.ToRoleID == "" {
			continue // 终审通过，后续无审批人
		}
		g, ok := groups[outcome.Action.StepID]
		if !ok {
			g = &stepGroup{action: outcome.Action}
			groups[outcome.Action.StepID] = g
			groupOrder = append(groupOrder, outcome.Action.StepID)
		}
		g.requests = append(g.requests, outcome.Request)
	}

	if len(approved) > 0 {
		s.notifyAuthor(ctx, &AuthorNotification{
			Collection: collection,
			Requests:   approved,
			Action:     ActionApproved,
			ByUserID:   in.ByUserID,
		})
	}
	for _, stepID := range groupOrder {
		g := groups[stepID]
		s.notifyModerators(ctx, &ModeratorNotification{
			Collection: collection,
			Requests:   g.requests,
			Action:     g.action,
		})
	}

	s.reEvaluateCollection(ctx, collection.ID)
	return result, nil
}

// bulkReject 批量驳回，作者收到一次合并通知
func (s *Service) bulkReject(ctx context.Context, collection *ModerationCollection, requestIDs []string, in *ActionInput) (*BulkResult, error) {
	result := &BulkResult{Operation: BulkReject}

	var rejected []*ModerationRequest
	for _, id := range requestIDs {
		outcome, err := s.ApplyAction(ctx, id, ActionRejected, in)
		result.record(id, err)
		if err != nil {
			continue
		}
		rejected = append(rejected, outcome.Request)
	}

	if len(rejected) > 0 {
		s.notifyAuthor(ctx, &AuthorNotification{
			Collection: collection,
			Requests:   rejected,
			Action:     ActionRejected,
			ByUserID:   in.ByUserID,
		})
	}
	return result, nil
}

// bulkResubmit 批量重新提交，首个待审步骤的审批人收到一次合并通知
func (s *Service) bulkResubmit(ctx context.Context, collection *ModerationCollection, requestIDs []string, in *ActionInput) (*BulkResult, error) {
	result := &BulkResult{Operation: BulkResubmit}

	var resubmitted []*ModerationRequest
	var first *ModerationRequestAction
	for _, id := range requestIDs {
		outcome, err := s.ApplyAction(ctx, id, ActionResubmitted, in)
		result.record(id, err)
		if err != nil {
			continue
		}
		resubmitted = append(resubmitted, outcome.Request)
		if first == nil {
			first = outcome.Action
		}
	}

	if len(resubmitted) > 0 {
		s.notifyModerators(ctx, &ModeratorNotification{
			Collection: collection,
			Requests:   resubmitted,
			Action:     first,
		})
	}
	return result, nil
}

// bulkPublish 批量发布：仅集合作者可发起（整批校验，非逐条跳过）
// 逐条要求派生状态已通过且版本仍处于草稿，失败逐条记录
func (s *Service) bulkPublish(ctx context.Context, collection *ModerationCollection, requestIDs []string, in *ActionInput) (*BulkResult, error) {
	if in.ByUserID != collection.AuthorID {
		return nil, ErrNotCollectionOwner
	}
	wf, err := s.GetWorkflow(ctx, collection.WorkflowID)
	if err != nil {
		return nil, err
	}

	result := &BulkResult{Operation: BulkPublish}
	for _, id := range requestIDs {
		result.record(id, s.publishOne(ctx, wf, id, in.ByUserID))
	}

	s.reEvaluateCollection(ctx, collection.ID)
	return result, nil
}

func (s *Service) publishOne(ctx context.Context, wf *Workflow, requestID, byUser string) error {
	request, err := s.GetRequest(ctx, requestID)
	if err != nil {
		return err
	}
	if state := s.engine.DeriveState(wf, request.Actions); state != StateApproved {
		return fmt.Errorf("%w: 请求状态为 %s，仅已通过的请求可发布", ErrInvalidTransition, state)
	}
	if s.versions == nil {
		return errors.New("未配置版本协作方")
	}
	state, err := s.versions.GetState(ctx, request.VersionID)
	if err != nil {
		return err
	}
	if state != versioning.StateDraft {
		return fmt.Errorf("%w: 版本状态为 %s，已发布的版本不会重复发布", ErrInvalidTransition, state)
	}
	if err := s.versions.Publish(ctx, request.VersionID, byUser); err != nil {
		metrics.PublishTotal.WithLabelValues("failed").Inc()
		return err
	}
	metrics.PublishTotal.WithLabelValues("ok").Inc()
	return nil
}

// bulkDelete 批量取消：仅集合作者可发起
// 为每条请求落 cancelled 动作（保留完整日志），作者收到一次合并通知，
// 随后集合按归档条件重算
func (s *Service) bulkDelete(ctx context.Context, collection *ModerationCollection, requestIDs []string, in *ActionInput) (*BulkResult, error) {
	if in.ByUserID != collection.AuthorID {
		return nil, ErrNotCollectionOwner
	}

	result := &BulkResult{Operation: BulkDelete}
	var cancelled []*ModerationRequest
	for _, id := range requestIDs {
		outcome, err := s.ApplyAction(ctx, id, ActionCancelled, in)
		result.record(id, err)
		if err != nil {
			continue
		}
		cancelled = append(cancelled, outcome.Request)
	}

	if len(cancelled) > 0 {
		s.notifyAuthor(ctx, &AuthorNotification{
			Collection: collection,
			Requests:   cancelled,
			Action:     ActionCancelled,
			ByUserID:   in.ByUserID,
		})
	}

	s.reEvaluateCollection(ctx, collection.ID)
	return result, nil
}
