package moderation

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"backend/internal/logger"
	"backend/internal/metrics"
	"backend/internal/versioning"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// VersionStore 版本化内容平台协作接口
// 引擎对每个达到完全通过的请求恰好调用一次 Publish；
// 发布失败不回滚审批状态，由外部重试（或走批量 publish 操作）
type VersionStore interface {
	GetState(ctx context.Context, versionID string) (versioning.VersionState, error)
	Publish(ctx context.Context, versionID, byUser string) error
}

// CollectionNotifier 通知协作接口，消息的渲染与投递由外部实现
// 引擎只负责按约定的分组调用，调用失败不影响已提交的状态变更
type CollectionNotifier interface {
	NotifyCollectionAuthor(ctx context.Context, n *AuthorNotification) error
	NotifyCollectionModerators(ctx context.Context, n *ModeratorNotification) error
}

// AuthorNotification 作者通知载荷
type AuthorNotification struct {
	Collection *ModerationCollection
	Requests   []*ModerationRequest
	Action     ActionKind
	ByUserID   string
}

// ModeratorNotification 审批人通知载荷，Action 携带步骤与目标角色
type ModeratorNotification struct {
	Collection *ModerationCollection
	Requests   []*ModerationRequest
	Action     *ModerationRequestAction
}

// Service 审批工作流服务
type Service struct {
	db       *gorm.DB
	engine   *Engine
	resolver EligibilityResolver
	versions VersionStore
	notifier CollectionNotifier
	logger   *zap.Logger
}

// ServiceOption 自定义配置
type ServiceOption func(*Service)

// WithVersionStore 注入版本协作方
func WithVersionStore(store VersionStore) ServiceOption {
	return func(s *Service) { s.versions = store }
}

// WithNotifier 注入通知协作方
func WithNotifier(notifier CollectionNotifier) ServiceOption {
	return func(s *Service) { s.notifier = notifier }
}

// SetNotifier 组装期回填通知协作方
// 通知编排器需要通过本服务查询角色，二者存在装配顺序上的环
func (s *Service) SetNotifier(notifier CollectionNotifier) {
	s.notifier = notifier
}

// WithServiceLogger 注入自定义日志器
func WithServiceLogger(l *zap.Logger) ServiceOption {
	return func(s *Service) { s.logger = l }
}

// NewService 创建审批服务
func NewService(db *gorm.DB, resolver EligibilityResolver, opts ...ServiceOption) *Service {
	svc := &Service{
		db:       db,
		engine:   NewEngine(resolver),
		resolver: resolver,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(svc)
		}
	}
	if svc.logger == nil {
		svc.logger = logger.Get()
	}
	return svc
}

// Engine 暴露引擎供只读计算（当前步骤、派生状态）
func (s *Service) Engine() *Engine {
	return s.engine
}

// AutoMigrate 自动迁移表结构
func (s *Service) AutoMigrate() error {
	return s.db.AutoMigrate(
		&Role{},
		&Workflow{},
		&WorkflowStep{},
		&ModerationCollection{},
		&ModerationRequest{},
		&ModerationRequestAction{},
	)
}

// ============================================================================
// 角色与工作流管理
// ============================================================================

// CreateRole 创建审批角色
func (s *Service) CreateRole(ctx context.Context, req *CreateRoleRequest) (*Role, error) {
	role := &Role{
		ID:      uuid.New().String(),
		Name:    req.Name,
		UserID:  req.UserID,
		GroupID: req.GroupID,
	}
	if err := s.db.WithContext(ctx).Create(role).Error; err != nil {
		return nil, fmt.Errorf("创建审批角色失败: %w", err)
	}
	return role, nil
}

// CreateWorkflow 创建工作流，至少需要一个必经步骤
func (s *Service) CreateWorkflow(ctx context.Context, req *CreateWorkflowRequest) (*Workflow, error) {
	wf := &Workflow{
		ID:                 uuid.New().String(),
		Name:               req.Name,
		DiscardOnRejection: req.DiscardOnRejection,
	}
	for _, in := range req.Steps {
		order := in.Order
		if order <= 0 {
			order = 1
		}
		wf.Steps = append(wf.Steps, WorkflowStep{
			ID:         uuid.New().String(),
			WorkflowID: wf.ID,
			RoleID:     in.RoleID,
			Order:      order,
			IsRequired: in.IsRequired,
		})
	}
	if err := ValidateWorkflow(wf); err != nil {
		return nil, fmt.Errorf("%w: 工作流 %s 缺少必经步骤", err, req.Name)
	}

	if err := s.db.WithContext(ctx).Create(wf).Error; err != nil {
		return nil, fmt.Errorf("创建工作流失败: %w", err)
	}
	return wf, nil
}

// GetRole 获取审批角色
func (s *Service) GetRole(ctx context.Context, id string) (*Role, error) {
	var role Role
	if err := s.db.WithContext(ctx).First(&role, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRoleNotFound
		}
		return nil, err
	}
	return &role, nil
}

// GetWorkflow 获取工作流（含步骤与角色）
func (s *Service) GetWorkflow(ctx context.Context, id string) (*Workflow, error) {
	var wf Workflow
	err := s.db.WithContext(ctx).
		Preload("Steps", func(db *gorm.DB) *gorm.DB {
			return db.Order("step_order ASC, created_at ASC")
		}).
		Preload("Steps.Role").
		First(&wf, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrWorkflowNotFound
		}
		return nil, err
	}
	return &wf, nil
}

// ============================================================================
// 审批集合
// ============================================================================

// CreateCollection 创建审批集合，初始状态 new
func (s *Service) CreateCollection(ctx context.Context, req *CreateCollectionRequest) (*ModerationCollection, error) {
	if _, err := s.GetWorkflow(ctx, req.WorkflowID); err != nil {
		return nil, err
	}
	collection := &ModerationCollection{
		ID:         uuid.New().String(),
		Name:       req.Name,
		AuthorID:   req.AuthorID,
		WorkflowID: req.WorkflowID,
		Status:     CollectionStatusNew,
	}
	if err := s.db.WithContext(ctx).Create(collection).Error; err != nil {
		return nil, fmt.Errorf("创建审批集合失败: %w", err)
	}
	return collection, nil
}

// GetCollection 获取审批集合
func (s *Service) GetCollection(ctx context.Context, id string) (*ModerationCollection, error) {
	var collection ModerationCollection
	if err := s.db.WithContext(ctx).First(&collection, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCollectionNotFound
		}
		return nil, err
	}
	return &collection, nil
}

// ListCollections 分页查询审批集合
func (s *Service) ListCollections(ctx context.Context, query *ListCollectionsQuery) ([]ModerationCollection, int64, error) {
	if query.PageSize <= 0 || query.PageSize > 100 {
		query.PageSize = 20
	}
	if query.Page <= 0 {
		query.Page = 1
	}

	db := s.db.WithContext(ctx).Model(&ModerationCollection{})
	if query.AuthorID != "" {
		db = db.Where("author_id = ?", query.AuthorID)
	}
	if query.Status != "" {
		db = db.Where("status = ?", query.Status)
	}

	var total int64
	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var collections []ModerationCollection
	offset := (query.Page - 1) * query.PageSize
	if err := db.Order("created_at DESC").
		Limit(query.PageSize).
		Offset(offset).
		Find(&collections).Error; err != nil {
		return nil, 0, err
	}

	return collections, total, nil
}

// AddVersion 向集合添加内容版本，生成审批请求与 started 动作
// 仅集合作者可添加；集合进入 in_review
func (s *Service) AddVersion(ctx context.Context, collectionID, byUser string, req *AddVersionRequest) (*ModerationRequest, error) {
	collection, err := s.GetCollection(ctx, collectionID)
	if err != nil {
		return nil, err
	}
	if collection.AuthorID != byUser {
		return nil, ErrNotCollectionOwner
	}
	if collection.Status != CollectionStatusNew && collection.Status != CollectionStatusInReview {
		return nil, ErrCollectionClosed
	}
	if s.versions != nil {
		if _, err := s.versions.GetState(ctx, req.VersionID); err != nil {
			return nil, fmt.Errorf("内容版本不可用: %w", err)
		}
	}

	var existing int64
	err = s.db.WithContext(ctx).Model(&ModerationRequest{}).
		Where("collection_id = ? AND version_id = ?", collection.ID, req.VersionID).
		Count(&existing).Error
	if err != nil {
		return nil, err
	}
	if existing > 0 {
		return nil, ErrDuplicateVersion
	}

	language := req.Language
	if language == "" {
		language = "zh"
	}
	request := &ModerationRequest{
		ID:           uuid.New().String(),
		VersionID:    req.VersionID,
		Language:     language,
		CollectionID: collection.ID,
		AuthorID:     byUser,
		IsActive:     true,
	}
	started := &ModerationRequestAction{
		ID:        uuid.New().String(),
		RequestID: request.ID,
		ByUserID:  byUser,
		Action:    ActionStarted,
		Position:  1,
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(request).Error; err != nil {
			// (collection_id, version_id) 唯一索引兜底并发重复添加
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return ErrDuplicateVersion
			}
			return err
		}
		if err := tx.Create(started).Error; err != nil {
			return err
		}
		return tx.Model(&ModerationCollection{}).
			Where("id = ? AND status = ?", collection.ID, CollectionStatusNew).
			Update("status", CollectionStatusInReview).Error
	})
	if err != nil {
		return nil, fmt.Errorf("添加审批请求失败: %w", err)
	}

	metrics.RequestsPendingGauge.Inc()
	return request, nil
}

// ============================================================================
// 审批请求
// ============================================================================

// GetRequest 获取审批请求（含动作日志）
func (s *Service) GetRequest(ctx context.Context, id string) (*ModerationRequest, error) {
	var request ModerationRequest
	err := s.db.WithContext(ctx).
		Preload("Actions", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC")
		}).
		First(&request, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRequestNotFound
		}
		return nil, err
	}
	return &request, nil
}

// DeriveRequestState 折算请求的派生状态
func (s *Service) DeriveRequestState(ctx context.Context, requestID string) (RequestState, error) {
	request, err := s.GetRequest(ctx, requestID)
	if err != nil {
		return "", err
	}
	collection, err := s.GetCollection(ctx, request.CollectionID)
	if err != nil {
		return "", err
	}
	wf, err := s.GetWorkflow(ctx, collection.WorkflowID)
	if err != nil {
		return "", err
	}
	return s.engine.DeriveState(wf, request.Actions), nil
}

// translateActionConflict 动作日志 (request_id, position) 唯一索引冲突
// 说明日志在读取后被并发追加，按并发冲突处理
func translateActionConflict(err error) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return ErrConcurrentModification
	}
	return err
}

// ApplyAction 对请求应用一次审批动作，完整执行状态机校验
// 事务内重读当前状态，以 is_active 作为写入前提，前提失效返回并发冲突
// 非终结的通过动作不改变 is_active，靠 position 唯一索引拦截并发追加
func (s *Service) ApplyAction(ctx context.Context, requestID string, kind ActionKind, in *ActionInput) (*ActionOutcome, error) {
	if in == nil {
		in = &ActionInput{}
	}

	var outcome *ActionOutcome
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var request ModerationRequest
		if err := tx.Preload("Actions", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC")
		}).First(&request, "id = ?", requestID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrRequestNotFound
			}
			return err
		}

		var collection ModerationCollection
		if err := tx.First(&collection, "id = ?", request.CollectionID).Error; err != nil {
			return err
		}
		wf, err := s.workflowTx(tx, collection.WorkflowID)
		if err != nil {
			return err
		}

		state := s.engine.DeriveState(wf, request.Actions)
		action := &ModerationRequestAction{
			ID:        uuid.New().String(),
			RequestID: request.ID,
			ByUserID:  in.ByUserID,
			Action:    kind,
			Position:  len(request.Actions) + 1,
			Message:   in.Message,
		}
		if len(in.Attachment) > 0 {
			raw, err := json.Marshal(in.Attachment)
			if err != nil {
				return fmt.Errorf("序列化附件元信息失败: %w", err)
			}
			action.Attachment = raw
		}

		newActive := request.IsActive
		finalized := false

		switch kind {
		case ActionApproved:
			if state != StatePending {
				return ErrInvalidTransition
			}
			step, err := s.engine.StepForUser(ctx, wf, request.Actions, in.ByUserID)
			if err != nil {
				return err
			}
			action.StepID = step.ID
			appended := append(append([]ModerationRequestAction{}, request.Actions...), *action)
			if next := s.engine.NextRequiredStep(wf, appended); next != nil {
				action.ToRoleID = next.RoleID
			} else {
				finalized = true
				newActive = false
			}

		case ActionRejected:
			if state != StatePending {
				return ErrInvalidTransition
			}
			if _, err := s.engine.StepForUser(ctx, wf, request.Actions, in.ByUserID); err != nil {
				if errors.Is(err, ErrDuplicateAction) {
					return ErrPermissionDenied
				}
				return err
			}
			newActive = false

		case ActionResubmitted:
			if state != StateRejected {
				return ErrInvalidTransition
			}
			if in.ByUserID != request.AuthorID {
				return ErrPermissionDenied
			}
			newActive = true
			// 重新提交后回到首个待审必经步骤，记录路由角色供通知使用
			appended := append(append([]ModerationRequestAction{}, request.Actions...), *action)
			if next := s.engine.NextRequiredStep(wf, appended); next != nil {
				action.ToRoleID = next.RoleID
			}

		case ActionCancelled:
			if state != StatePending && state != StateRejected {
				return ErrInvalidTransition
			}
			// 取消与重新提交一样只属于作者
			if in.ByUserID != request.AuthorID {
				return ErrPermissionDenied
			}
			newActive = false

		default:
			return fmt.Errorf("%w: 不支持的动作 %s", ErrInvalidTransition, kind)
		}

		// 乐观写入前提：加载时的 is_active 仍然成立
		result := tx.Model(&ModerationRequest{}).
			Where("id = ? AND is_active = ?", request.ID, request.IsActive).
			Updates(map[string]any{
				"is_active":  newActive,
				"updated_at": time.Now().UTC(),
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrConcurrentModification
		}

		if err := tx.Create(action).Error; err != nil {
			return translateActionConflict(err)
		}

		request.IsActive = newActive
		outcome = &ActionOutcome{
			Request:   &request,
			Action:    action,
			Finalized: finalized,
		}
		return nil
	})
	if err != nil {
		metrics.ModerationActionsTotal.WithLabelValues(string(kind), "failed").Inc()
		return nil, err
	}

	metrics.ModerationActionsTotal.WithLabelValues(string(kind), "ok").Inc()
	s.adjustPendingGauge(kind, outcome.Finalized)

	if outcome.Finalized {
		s.publishVersion(ctx, outcome.Request)
	}
	switch kind {
	case ActionApproved:
		if outcome.Finalized {
			s.reEvaluateCollection(ctx, outcome.Request.CollectionID)
		}
	case ActionCancelled:
		s.reEvaluateCollection(ctx, outcome.Request.CollectionID)
	}

	return outcome, nil
}

// Act 单请求动作入口：状态迁移 + 对应通知
// 批量路径走 BulkAction 做合并通知，这里是逐条语义
func (s *Service) Act(ctx context.Context, requestID string, kind ActionKind, in *ActionInput) (*ActionOutcome, error) {
	if in == nil {
		in = &ActionInput{}
	}
	outcome, err := s.ApplyAction(ctx, requestID, kind, in)
	if err != nil {
		return nil, err
	}

	collection, cerr := s.GetCollection(ctx, outcome.Request.CollectionID)
	if cerr != nil {
		s.logger.Warn("加载集合失败，跳过通知", zap.String("requestId", requestID), zap.Error(cerr))
		return outcome, nil
	}

	requests := []*ModerationRequest{outcome.Request}
	switch kind {
	case ActionApproved, ActionRejected:
		s.notifyAuthor(ctx, &AuthorNotification{
			Collection: collection,
			Requests:   requests,
			Action:     kind,
			ByUserID:   in.ByUserID,
		})
	}
	if outcome.Action.ToRoleID != "" {
		s.notifyModerators(ctx, &ModeratorNotification{
			Collection: collection,
			Requests:   requests,
			Action:     outcome.Action,
		})
	}
	return outcome, nil
}

// workflowTx 在事务内加载工作流（含步骤与角色）
func (s *Service) workflowTx(tx *gorm.DB, workflowID string) (*Workflow, error) {
	var wf Workflow
	err := tx.
		Preload("Steps", func(db *gorm.DB) *gorm.DB {
			return db.Order("step_order ASC, created_at ASC")
		}).
		Preload("Steps.Role").
		First(&wf, "id = ?", workflowID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrWorkflowNotFound
		}
		return nil, err
	}
	return &wf, nil
}

// publishVersion 审批完全通过后移交版本发布，失败不回滚审批状态
func (s *Service) publishVersion(ctx context.Context, request *ModerationRequest) {
	if s.versions == nil {
		return
	}
	if err := s.versions.Publish(ctx, request.VersionID, request.AuthorID); err != nil {
		metrics.PublishTotal.WithLabelValues("failed").Inc()
		s.logger.Warn("版本发布失败，审批状态保持已通过",
			zap.String("requestId", request.ID),
			zap.String("versionId", request.VersionID),
			zap.Error(err),
		)
		return
	}
	metrics.PublishTotal.WithLabelValues("ok").Inc()
}

func (s *Service) adjustPendingGauge(kind ActionKind, finalized bool) {
	switch kind {
	case ActionApproved:
		if finalized {
			metrics.RequestsPendingGauge.Dec()
		}
	case ActionRejected, ActionCancelled:
		metrics.RequestsPendingGauge.Dec()
	case ActionResubmitted:
		metrics.RequestsPendingGauge.Inc()
	}
}

// ============================================================================
// 集合状态聚合
// ============================================================================

// ShouldBeArchived 集合是否满足归档条件：
// 所有请求均已不活跃，且没有请求停留在驳回待重提状态
func (s *Service) ShouldBeArchived(ctx context.Context, collectionID string) (bool, error) {
	collection, err := s.GetCollection(ctx, collectionID)
	if err != nil {
		return false, err
	}
	wf, err := s.GetWorkflow(ctx, collection.WorkflowID)
	if err != nil {
		return false, err
	}

	var requests []ModerationRequest
	if err := s.db.WithContext(ctx).
		Preload("Actions", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC")
		}).
		Where("collection_id = ?", collectionID).
		Find(&requests).Error; err != nil {
		return false, err
	}

	for i := range requests {
		state := s.engine.DeriveState(wf, requests[i].Actions)
		if state == StatePending || state == StateRejected {
			return false, nil
		}
	}
	return true, nil
}

// reEvaluateCollection 请求级变更后的集合状态重算
// 状态迁移单向：仅 in_review 可进入 archived，不会自动重开
func (s *Service) reEvaluateCollection(ctx context.Context, collectionID string) {
	ok, err := s.ShouldBeArchived(ctx, collectionID)
	if err != nil {
		s.logger.Warn("集合状态重算失败", zap.String("collectionId", collectionID), zap.Error(err))
		return
	}
	if !ok {
		return
	}

	result := s.db.WithContext(ctx).Model(&ModerationCollection{}).
		Where("id = ? AND status = ?", collectionID, CollectionStatusInReview).
		Update("status", CollectionStatusArchived)
	if result.Error != nil {
		s.logger.Warn("归档集合失败", zap.String("collectionId", collectionID), zap.Error(result.Error))
		return
	}
	if result.RowsAffected > 0 {
		metrics.CollectionsArchivedTotal.Inc()
		s.logger.Info("审批集合已归档", zap.String("collectionId", collectionID))
	}
}

// activeRequests 集合内仍活跃的请求，按创建顺序
func (s *Service) activeRequests(ctx context.Context, collectionID string) ([]ModerationRequest, error) {
	var requests []ModerationRequest
	err := s.db.WithContext(ctx).
		Where("collection_id = ? AND is_active = ?", collectionID, true).
		Order("created_at ASC").
		Find(&requests).Error
	return requests, err
}

// cancelRequests 逐个取消请求并返回成功取消的集合
// 单个请求的失败只记录日志，不阻断批次
func (s *Service) cancelRequests(ctx context.Context, requests []ModerationRequest, byUser string) []*ModerationRequest {
	var cancelled []*ModerationRequest
	for i := range requests {
		outcome, err := s.ApplyAction(ctx, requests[i].ID, ActionCancelled, &ActionInput{ByUserID: byUser})
		if err != nil {
			s.logger.Warn("取消审批请求失败",
				zap.String("requestId", requests[i].ID),
				zap.Error(err),
			)
			continue
		}
		cancelled = append(cancelled, outcome.Request)
	}
	return cancelled
}

// DeleteCollection 删除（关闭）集合：
// 先为每个活跃请求落一条 cancelled 动作，再归档集合，保证日志能解释集合关闭原因；
// 作者收到一次包含全部被取消请求的通知
func (s *Service) DeleteCollection(ctx context.Context, collectionID, byUser string) error {
	collection, err := s.GetCollection(ctx, collectionID)
	if err != nil {
		return err
	}
	if collection.AuthorID != byUser {
		return ErrNotCollectionOwner
	}
	if collection.Status == CollectionStatusArchived || collection.Status == CollectionStatusCancelled {
		return ErrCollectionClosed
	}

	active, err := s.activeRequests(ctx, collectionID)
	if err != nil {
		return err
	}
	cancelled := s.cancelRequests(ctx, active, byUser)

	if err := s.db.WithContext(ctx).Model(&ModerationCollection{}).
		Where("id = ?", collectionID).
		Update("status", CollectionStatusArchived).Error; err != nil {
		return fmt.Errorf("归档集合失败: %w", err)
	}
	metrics.CollectionsArchivedTotal.Inc()

	if len(cancelled) > 0 {
		s.notifyAuthor(ctx, &AuthorNotification{
			Collection: collection,
			Requests:   cancelled,
			Action:     ActionCancelled,
			ByUserID:   byUser,
		})
	}
	return nil
}

// CancelCollection 显式取消集合，活跃请求逐个取消后状态置为 cancelled
func (s *Service) CancelCollection(ctx context.Context, collectionID, byUser string) error {
	collection, err := s.GetCollection(ctx, collectionID)
	if err != nil {
		return err
	}
	if collection.AuthorID != byUser {
		return ErrNotCollectionOwner
	}
	if collection.Status == CollectionStatusArchived || collection.Status == CollectionStatusCancelled {
		return ErrCollectionClosed
	}

	active, err := s.activeRequests(ctx, collectionID)
	if err != nil {
		return err
	}
	s.cancelRequests(ctx, active, byUser)

	if err := s.db.WithContext(ctx).Model(&ModerationCollection{}).
		Where("id = ?", collectionID).
		Update("status", CollectionStatusCancelled).Error; err != nil {
		return fmt.Errorf("取消集合失败: %w", err)
	}
	s.logger.Info("审批集合已取消", zap.String("collectionId", collectionID))
	return nil
}

// notifyAuthor 通知作者，尽力投递
func (s *Service) notifyAuthor(ctx context.Context, n *AuthorNotification) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.NotifyCollectionAuthor(ctx, n); err != nil {
		s.logger.Warn("作者通知发送失败",
			zap.String("collectionId", n.Collection.ID),
			zap.String("action", string(n.Action)),
			zap.Error(err),
		)
	}
}

// notifyModerators 通知下一批审批人，尽力投递
func (s *Service) notifyModerators(ctx context.Context, n *ModeratorNotification) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.NotifyCollectionModerators(ctx, n); err != nil {
		s.logger.Warn("审批人通知发送失败",
			zap.String("collectionId", n.Collection.ID),
			zap.Error(err),
		)
	}
}
