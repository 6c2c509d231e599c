package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"csa-reg/internal/service"
	"csa-reg/pkg/response"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// ExportHandler 导出模块 HTTP 处理器
type ExportHandler struct {
	exportSvc service.ExportService
}

// NewExportHandler 创建 ExportHandler
func NewExportHandler(exportSvc service.ExportService) *ExportHandler {
	return &ExportHandler{exportSvc: exportSvc}
}

// ExportApplicants 导出报名信息
// GET /api/v1/admin/activities/:id/export
func (h *ExportHandler) ExportApplicants(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	buf, filename, err := h.exportSvc.ExportApplicants(c.Request.Context(), id)
	if err != nil {
		h.handleExportError(c, err)
		return
	}

	response.File(c, filename, xlsxContentType, buf.Bytes())
}

func (h *ExportHandler) handleExportError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrActivityNotFound):
		response.NotFound(c, 12001, err.Error())
	default:
		response.InternalError(c)
	}
}
