package moderation

import (
	"errors"
	"net/http"
	"strconv"

	response "backend/api/handlers/common"
	"backend/internal/auth"
	"backend/internal/moderation"

	"github.com/gin-gonic/gin"
)

// Handler 审批工作流 API 处理器
type Handler struct {
	service *moderation.Service
}

// NewHandler 创建处理器
func NewHandler(service *moderation.Service) *Handler {
	return &Handler{service: service}
}

// currentUserID 从认证上下文取当前用户
func currentUserID(c *gin.Context) string {
	if userCtx, ok := auth.GetUserContext(c); ok {
		return userCtx.UserID
	}
	return ""
}

// writeError 把服务层错误翻译为 HTTP 状态码
func writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, moderation.ErrRoleNotFound),
		errors.Is(err, moderation.ErrWorkflowNotFound),
		errors.Is(err, moderation.ErrCollectionNotFound),
		errors.Is(err, moderation.ErrRequestNotFound):
		response.Error(c, http.StatusNotFound, err.Error())
	case errors.Is(err, moderation.ErrPermissionDenied),
		errors.Is(err, moderation.ErrNotCollectionOwner):
		response.Error(c, http.StatusForbidden, err.Error())
	case errors.Is(err, moderation.ErrInvalidTransition),
		errors.Is(err, moderation.ErrDuplicateAction),
		errors.Is(err, moderation.ErrDuplicateVersion),
		errors.Is(err, moderation.ErrCollectionClosed),
		errors.Is(err, moderation.ErrConcurrentModification):
		response.Error(c, http.StatusConflict, err.Error())
	case errors.Is(err, moderation.ErrConfiguration):
		response.Error(c, http.StatusBadRequest, err.Error())
	default:
		response.Error(c, http.StatusInternalServerError, err.Error())
	}
}

// ============================================================================
// 角色与工作流
// ============================================================================

// CreateRole 创建审批角色
// @Summary 创建审批角色
// @Tags Moderation
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body moderation.CreateRoleRequest true "角色定义"
// @Success 201 {object} response.APIResponse{data=moderation.Role}
// @Router /api/moderation/roles [post]
func (h *Handler) CreateRole(c *gin.Context) {
	var req moderation.CreateRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, err.Error())
		return
	}

	role, err := h.service.CreateRole(c.Request.Context(), &req)
	if err != nil {
		writeError(c, err)
		return
	}

	response.Created(c, role)
}

// CreateWorkflow 创建工作流
// @Summary 创建审批工作流
// @Tags Moderation
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body moderation.CreateWorkflowRequest true "工作流定义"
// @Success 201 {object} response.APIResponse{data=moderation.Workflow}
// @Router /api/moderation/workflows [post]
func (h *Handler) CreateWorkflow(c *gin.Context) {
	var req moderation.CreateWorkflowRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, err.Error())
		return
	}

	wf, err := h.service.CreateWorkflow(c.Request.Context(), &req)
	if err != nil {
		writeError(c, err)
		return
	}

	response.Created(c, wf)
}

// GetWorkflow 获取工作流详情
// @Summary 获取工作流详情
// @Tags Moderation
// @Security BearerAuth
// @Produce json
// @Param id path string true "工作流ID"
// @Success 200 {object} response.APIResponse{data=moderation.Workflow}
// @Router /api/moderation/workflows/{id} [get]
func (h *Handler) GetWorkflow(c *gin.Context) {
	wf, err := h.service.GetWorkflow(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}

	response.Success(c, wf)
}

// ============================================================================
// 审批集合
// ============================================================================

// CreateCollection 创建审批集合
// @Summary 创建审批集合
// @Tags Moderation
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body moderation.CreateCollectionRequest true "集合定义"
// @Success 201 {object} response.APIResponse{data=moderation.ModerationCollection}
// @Router /api/moderation/collections [post]
func (h *Handler) CreateCollection(c *gin.Context) {
	var req moderation.CreateCollectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, err.Error())
		return
	}
	req.AuthorID = currentUserID(c)

	collection, err := h.service.CreateCollection(c.Request.Context(), &req)
	if err != nil {
		writeError(c, err)
		return
	}

	response.Created(c, collection)
}

// ListCollections 获取审批集合列表
// @Summary 获取审批集合列表
// @Tags Moderation
// @Security BearerAuth
// @Produce json
// @Param author query string false "作者ID"
// @Param status query string false "状态"
// @Param page query int false "页码"
// @Param pageSize query int false "每页数量"
// @Success 200 {object} response.ListResponse
// @Router /api/moderation/collections [get]
func (h *Handler) ListCollections(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("pageSize", "20"))

	query := &moderation.ListCollectionsQuery{
		AuthorID: c.Query("author"),
		Status:   moderation.CollectionStatus(c.Query("status")),
		Page:     page,
		PageSize: pageSize,
	}

	collections, total, err := h.service.ListCollections(c.Request.Context(), query)
	if err != nil {
		writeError(c, err)
		return
	}

	response.Paginated(c, collections, query.Page, query.PageSize, total)
}

// GetCollection 获取审批集合详情
// @Summary 获取审批集合详情
// @Tags Moderation
// @Security BearerAuth
// @Produce json
// @Param id path string true "集合ID"
// @Success 200 {object} response.APIResponse{data=moderation.ModerationCollection}
// @Router /api/moderation/collections/{id} [get]
func (h *Handler) GetCollection(c *gin.Context) {
	collection, err := h.service.GetCollection(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}

	response.Success(c, collection)
}

// AddVersion 向集合添加内容版本
// @Summary 向集合添加内容版本
// @Tags Moderation
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path string true "集合ID"
// @Param request body moderation.AddVersionRequest true "内容版本"
// @Success 201 {object} response.APIResponse{data=moderation.ModerationRequest}
// @Router /api/moderation/collections/{id}/versions [post]
func (h *Handler) AddVersion(c *gin.Context) {
	var req moderation.AddVersionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, err.Error())
		return
	}

	request, err := h.service.AddVersion(c.Request.Context(), c.Param("id"), currentUserID(c), &req)
	if err != nil {
		writeError(c, err)
		return
	}

	response.Created(c, request)
}

// CancelCollection 取消审批集合
// @Summary 取消审批集合
// @Tags Moderation
// @Security BearerAuth
// @Param id path string true "集合ID"
// @Success 204
// @Router /api/moderation/collections/{id}/cancel [post]
func (h *Handler) CancelCollection(c *gin.Context) {
	if err := h.service.CancelCollection(c.Request.Context(), c.Param("id"), currentUserID(c)); err != nil {
		writeError(c, err)
		return
	}
	response.NoContent(c)
}

// DeleteCollection 删除（关闭）审批集合
// 删除会取消所有活跃请求，需显式携带 confirm=true 二次确认
// @Summary 删除审批集合
// @Tags Moderation
// @Security BearerAuth
// @Param id path string true "集合ID"
// @Param confirm query bool true "二次确认"
// @Success 204
// @Router /api/moderation/collections/{id} [delete]
func (h *Handler) DeleteCollection(c *gin.Context) {
	if c.Query("confirm") != "true" {
		response.Error(c, http.StatusBadRequest, "删除集合会取消其下全部审批请求，请携带 confirm=true 确认")
		return
	}

	if err := h.service.DeleteCollection(c.Request.Context(), c.Param("id"), currentUserID(c)); err != nil {
		writeError(c, err)
		return
	}
	response.NoContent(c)
}

// ============================================================================
// 审批请求
// ============================================================================

// GetRequest 获取审批请求详情（含动作日志与派生状态）
// @Summary 获取审批请求详情
// @Tags Moderation
// @Security BearerAuth
// @Produce json
// @Param id path string true "请求ID"
// @Success 200 {object} response.APIResponse{data=RequestDetail}
// @Router /api/moderation/requests/{id} [get]
func (h *Handler) GetRequest(c *gin.Context) {
	ctx := c.Request.Context()
	request, err := h.service.GetRequest(ctx, c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	state, err := h.service.DeriveRequestState(ctx, request.ID)
	if err != nil {
		writeError(c, err)
		return
	}

	response.Success(c, RequestDetail{
		Request: request,
		State:   state,
	})
}

// ActOnRequest 对单个请求执行审批动作
// @Summary 对审批请求执行动作
// @Tags Moderation
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path string true "请求ID"
// @Param request body ActionRequest true "动作"
// @Success 200 {object} response.APIResponse{data=moderation.ActionOutcome}
// @Router /api/moderation/requests/{id}/actions [post]
func (h *Handler) ActOnRequest(c *gin.Context) {
	var req ActionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, err.Error())
		return
	}
	kind, ok := parseActionKind(req.Action)
	if !ok {
		response.Error(c, http.StatusBadRequest, "不支持的动作: "+req.Action)
		return
	}

	outcome, err := h.service.Act(c.Request.Context(), c.Param("id"), kind, &moderation.ActionInput{
		ByUserID:   currentUserID(c),
		Message:    req.Message,
		Attachment: req.Attachment,
	})
	if err != nil {
		writeError(c, err)
		return
	}

	response.Success(c, outcome)
}
