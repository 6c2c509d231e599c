package handler

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"

	"csa-reg/internal/dto"
	"csa-reg/internal/service"
	"csa-reg/pkg/response"
)

// ApplicantHandler 报名者模块 HTTP 处理器
type ApplicantHandler struct {
	applicantSvc service.ApplicantService
}

// NewApplicantHandler 创建 ApplicantHandler
func NewApplicantHandler(applicantSvc service.ApplicantService) *ApplicantHandler {
	return &ApplicantHandler{applicantSvc: applicantSvc}
}

// List 报名者列表
// GET /api/v1/admin/activities/:id/applicants
func (h *ApplicantHandler) List(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	list, err := h.applicantSvc.List(c.Request.Context(), id)
	if err != nil {
		h.handleApplicantError(c, err)
		return
	}

	response.OK(c, list)
}

// Delete 撤销报名
// DELETE /api/v1/admin/activities/:id/applicants/:number
func (h *ApplicantHandler) Delete(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	number, err := strconv.Atoi(c.Param("number"))
	if err != nil || number <= 0 {
		response.BadRequest(c, 10001, "number 参数非法")
		return
	}

	if err := h.applicantSvc.Delete(c.Request.Context(), id, number); err != nil {
		h.handleApplicantError(c, err)
		return
	}

	response.OK(c, nil)
}

// Submit 提交报名
// POST /api/v1/activities/:id/applicants
func (h *ApplicantHandler) Submit(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req dto.SubmitApplicantRequest
	if !bindJSON(c, &req) {
		return
	}

	number, err := h.applicantSvc.Submit(c.Request.Context(), id, req.Answers)
	if err != nil {
		h.handleApplicantError(c, err)
		return
	}

	response.Created(c, dto.SubmitApplicantResponse{ApplicantNumber: number})
}

func (h *ApplicantHandler) handleApplicantError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrActivityNotFound):
		response.NotFound(c, 12001, err.Error())
	case errors.Is(err, service.ErrApplicantNotFound):
		response.NotFound(c, 13001, err.Error())
	case errors.Is(err, service.ErrActivityNotOpen):
		response.Conflict(c, 13002, err.Error())
	case errors.Is(err, service.ErrApplicantDuplicate):
		response.Conflict(c, 13003, err.Error())
	case errors.Is(err, service.ErrAnswerInvalid):
		response.UnprocessableEntity(c, 13004, err.Error())
	default:
		response.InternalError(c)
	}
}
