package service

import (
	"go.uber.org/zap"

	"csa-reg/config"
	"csa-reg/internal/repository"
	"csa-reg/pkg/jwt"
)

// Service 所有 Service 的聚合入口
type Service struct {
	Auth      AuthService
	Activity  ActivityService
	Applicant ApplicantService
	Export    ExportService
	Csp       CspService
}

// NewService 创建 Service 聚合
func NewService(
	cfg *config.Config,
	repo *repository.Repository,
	jwtMgr *jwt.Manager,
	blacklist TokenBlacklist,
	gate AdmissionGate,
	logger *zap.Logger,
) *Service {
	return &Service{
		Auth:      NewAuthService(cfg, repo, jwtMgr, blacklist, logger),
		Activity:  NewActivityService(cfg, repo, logger),
		Applicant: NewApplicantService(repo, logger),
		Export:    NewExportService(repo, logger),
		Csp:       NewCspService(cfg, repo, gate, logger),
	}
}
