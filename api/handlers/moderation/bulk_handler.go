package moderation

import (
	"net/http"

	response "backend/api/handlers/common"
	"backend/internal/moderation"

	"github.com/gin-gonic/gin"
)

// BulkAction 对集合内一批请求执行同一动作
// 逐条结果在返回体中给出，部分失败不影响整体 200
// @Summary 批量审批操作
// @Tags Moderation
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path string true "集合ID"
// @Param request body BulkActionRequest true "批量动作"
// @Success 200 {object} response.APIResponse{data=moderation.BulkResult}
// @Router /api/moderation/collections/{id}/bulk [post]
func (h *Handler) BulkAction(c *gin.Context) {
	var req BulkActionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, err.Error())
		return
	}
	op, ok := parseBulkOperation(req.Operation)
	if !ok {
		response.Error(c, http.StatusBadRequest, "不支持的批量操作: "+req.Operation)
		return
	}
	if len(req.RequestIDs) == 0 {
		response.Error(c, http.StatusBadRequest, "requestIds 不能为空")
		return
	}
	if op == moderation.BulkDelete && !req.Confirm {
		response.Error(c, http.StatusBadRequest, "删除操作会取消所选审批请求，请携带 confirm=true 确认")
		return
	}

	result, err := h.service.BulkAction(c.Request.Context(), c.Param("id"), op, req.RequestIDs, &moderation.ActionInput{
		ByUserID:   currentUserID(c),
		Message:    req.Message,
		Attachment: req.Attachment,
	})
	if err != nil {
		writeError(c, err)
		return
	}

	response.Success(c, result)
}
