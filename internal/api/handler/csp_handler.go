package handler

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"

	"csa-reg/internal/dto"
	"csa-reg/internal/service"
	"csa-reg/pkg/response"
)

// CspHandler CSP 免费审核模块 HTTP 处理器
type CspHandler struct {
	cspSvc service.CspService
}

// NewCspHandler 创建 CspHandler
func NewCspHandler(cspSvc service.CspService) *CspHandler {
	return &CspHandler{cspSvc: cspSvc}
}

// SetGate 开关审核闸门
// PUT /api/v1/admin/csp/audit
func (h *CspHandler) SetGate(c *gin.Context) {
	var req dto.AuditGateRequest
	if !bindJSON(c, &req) {
		return
	}

	if err := h.cspSvc.SetGate(c.Request.Context(), req.Status); err != nil {
		h.handleCspError(c, err)
		return
	}

	response.OK(c, nil)
}

// GateStatus 审核闸门状态
// GET /api/v1/csp/audit/status
func (h *CspHandler) GateStatus(c *gin.Context) {
	result, err := h.cspSvc.GateStatus(c.Request.Context())
	if err != nil {
		h.handleCspError(c, err)
		return
	}

	response.OK(c, result)
}

// List 审核分页列表
// GET /api/v1/admin/csp/audit/list/:page?pageSize=&status=
func (h *CspHandler) List(c *gin.Context) {
	page, err := strconv.Atoi(c.Param("page"))
	if err != nil {
		response.BadRequest(c, 10001, "page 参数非法")
		return
	}

	var query dto.AuditListQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	result, err := h.cspSvc.List(c.Request.Context(), page, &query)
	if err != nil {
		h.handleCspError(c, err)
		return
	}

	response.OK(c, result)
}

// Review 审核一条申请
// PUT /api/v1/admin/csp/audit/:id
func (h *CspHandler) Review(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req dto.ReviewAuditRequest
	if !bindJSON(c, &req) {
		return
	}

	if err := h.cspSvc.Review(c.Request.Context(), id, &req); err != nil {
		h.handleCspError(c, err)
		return
	}

	response.OK(c, nil)
}

// Quota 免费资格查询
// GET /api/v1/csp/free/:school_id
func (h *CspHandler) Quota(c *gin.Context) {
	result, err := h.cspSvc.Quota(c.Request.Context(), c.Param("school_id"))
	if err != nil {
		h.handleCspError(c, err)
		return
	}

	response.OK(c, result)
}

// Submit 提交免费申请
// POST /api/v1/csp/audit
func (h *CspHandler) Submit(c *gin.Context) {
	var req dto.SubmitAuditRequest
	if !bindJSON(c, &req) {
		return
	}

	if err := h.cspSvc.Submit(c.Request.Context(), &req); err != nil {
		h.handleCspError(c, err)
		return
	}

	response.Created(c, nil)
}

// StudentAudits 学生的申请记录
// GET /api/v1/csp/audit/:school_id
func (h *CspHandler) StudentAudits(c *gin.Context) {
	result, err := h.cspSvc.StudentAudits(c.Request.Context(), c.Param("school_id"))
	if err != nil {
		h.handleCspError(c, err)
		return
	}

	response.OK(c, result)
}

func (h *CspHandler) handleCspError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrAuditNotFound):
		response.NotFound(c, 14001, err.Error())
	case errors.Is(err, service.ErrAuditLocked):
		response.Forbidden(c, 14002, err.Error())
	case errors.Is(err, service.ErrAuditResultInvalid),
		errors.Is(err, service.ErrGateStatusInvalid):
		response.UnprocessableEntity(c, 14003, err.Error())
	case errors.Is(err, service.ErrAuditFilterInvalid),
		errors.Is(err, service.ErrAuditPageInvalid):
		response.BadRequest(c, 14004, err.Error())
	default:
		response.InternalError(c)
	}
}
