package handler

import "csa-reg/internal/service"

// Handler 所有 Handler 的聚合入口
type Handler struct {
	Auth      *AuthHandler
	Activity  *ActivityHandler
	Applicant *ApplicantHandler
	Export    *ExportHandler
	Csp       *CspHandler
}

// NewHandler 创建 Handler 聚合
func NewHandler(svc *service.Service) *Handler {
	return &Handler{
		Auth:      NewAuthHandler(svc.Auth),
		Activity:  NewActivityHandler(svc.Activity),
		Applicant: NewApplicantHandler(svc.Applicant),
		Export:    NewExportHandler(svc.Export),
		Csp:       NewCspHandler(svc.Csp),
	}
}
