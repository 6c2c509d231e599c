package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"csa-reg/internal/dto"
	"csa-reg/internal/service"
	pkgerrors "csa-reg/pkg/errors"
	"csa-reg/pkg/response"
)

// ActivityHandler 报名活动模块 HTTP 处理器
type ActivityHandler struct {
	activitySvc service.ActivityService
}

// NewActivityHandler 创建 ActivityHandler
func NewActivityHandler(activitySvc service.ActivityService) *ActivityHandler {
	return &ActivityHandler{activitySvc: activitySvc}
}

// Create 创建报名活动及其报名表结构
// POST /api/v1/admin/activities
func (h *ActivityHandler) Create(c *gin.Context) {
	publisherID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	var req dto.CreateActivityRequest
	if !bindJSON(c, &req) {
		return
	}

	result, err := h.activitySvc.Create(c.Request.Context(), &req, publisherID)
	if err != nil {
		h.handleActivityError(c, err)
		return
	}

	response.Created(c, result)
}

// List 全部报名活动
// GET /api/v1/admin/activities
func (h *ActivityHandler) List(c *gin.Context) {
	list, err := h.activitySvc.List(c.Request.Context())
	if err != nil {
		h.handleActivityError(c, err)
		return
	}

	response.OK(c, list)
}

// Get 报名活动详情及结构
// GET /api/v1/admin/activities/:id
func (h *ActivityHandler) Get(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	result, err := h.activitySvc.Get(c.Request.Context(), id)
	if err != nil {
		h.handleActivityError(c, err)
		return
	}

	response.OK(c, result)
}

// AlterStructure 替换报名表结构
// PUT /api/v1/admin/activities/:id
func (h *ActivityHandler) AlterStructure(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req dto.AlterStructureRequest
	if !bindJSON(c, &req) {
		return
	}

	if err := h.activitySvc.AlterStructure(c.Request.Context(), id, req.Items); err != nil {
		h.handleActivityError(c, err)
		return
	}

	response.OK(c, nil)
}

// SetStatus 设置报名状态
// PUT /api/v1/admin/activities/:id/status
func (h *ActivityHandler) SetStatus(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req dto.SetStatusRequest
	if !bindJSON(c, &req) {
		return
	}

	if err := h.activitySvc.SetStatus(c.Request.Context(), id, *req.Status); err != nil {
		h.handleActivityError(c, err)
		return
	}

	response.OK(c, nil)
}

// Delete 删除报名活动；业务上不允许删除时以 200 返回 reason
// DELETE /api/v1/admin/activities/:id
func (h *ActivityHandler) Delete(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	reason, err := h.activitySvc.Delete(c.Request.Context(), id)
	if err != nil {
		h.handleActivityError(c, err)
		return
	}

	response.OK(c, dto.ReasonResponse{Reason: reason})
}

// ListOpen 报名中的活动
// GET /api/v1/activities
func (h *ActivityHandler) ListOpen(c *gin.Context) {
	list, err := h.activitySvc.ListOpen(c.Request.Context())
	if err != nil {
		h.handleActivityError(c, err)
		return
	}

	response.OK(c, list)
}

// GetOpen 报名表结构（公开，仅报名中的活动）
// GET /api/v1/activities/:id
func (h *ActivityHandler) GetOpen(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	result, err := h.activitySvc.GetOpen(c.Request.Context(), id)
	if err != nil {
		h.handleActivityError(c, err)
		return
	}

	response.OK(c, result)
}

func (h *ActivityHandler) handleActivityError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrActivityNotFound):
		response.NotFound(c, 12001, err.Error())
	case errors.Is(err, service.ErrActivityEnded):
		response.Conflict(c, 12002, err.Error())
	case errors.Is(err, service.ErrActivityStatusInvalid):
		response.UnprocessableEntity(c, 12003, err.Error())
	case errors.Is(err, service.ErrActivityTimeInvalid):
		response.BadRequest(c, 12004, err.Error())
	case errors.Is(err, pkgerrors.ErrValidation):
		// 报名表结构校验失败
		response.BadRequest(c, 12005, err.Error())
	case errors.Is(err, pkgerrors.ErrStateConflict):
		response.Conflict(c, 12006, err.Error())
	default:
		response.InternalError(c)
	}
}
