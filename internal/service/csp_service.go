package service

import (
	"context"
	"errors"
	"strconv"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"csa-reg/config"
	"csa-reg/internal/dto"
	"csa-reg/internal/model"
	"csa-reg/internal/repository"
	pkgerrors "csa-reg/pkg/errors"
	"csa-reg/pkg/metrics"
	"csa-reg/pkg/response"
)

// 审核结果取值
const (
	AuditResultPermit = "AUDIT_PERMIT"
	AuditResultReject = "AUDIT_REJECT"
)

// 不过滤状态的列表查询取值
const auditFilterAll = "ALL"

// 免费资格查询的提示
const (
	reasonNoFreeRecord = "您尚未拥有免费资格记录"
	reasonFreeUsedUp   = "您的免费资格数已用完！"
)

// ── CSP 审核模块业务错误 ──

var (
	ErrAuditNotFound      = pkgerrors.New(pkgerrors.ErrNotFound, "审核未找到")
	ErrAuditLocked        = pkgerrors.New(pkgerrors.ErrStateConflict, "资源不允许变动")
	ErrAuditResultInvalid = pkgerrors.New(pkgerrors.ErrValidation, "result字段非法")
	ErrAuditFilterInvalid = pkgerrors.New(pkgerrors.ErrValidation, "status字段非法")
	ErrGateStatusInvalid  = pkgerrors.New(pkgerrors.ErrValidation, "status字段错误")
	ErrAuditPageInvalid   = pkgerrors.New(pkgerrors.ErrValidation, "页码必须从 1 开始")
)

// CspService CSP 免费审核业务接口
type CspService interface {
	GateStatus(ctx context.Context) (*dto.AuditGateResponse, error)
	// SetGate 设置闸门，仅接受 STATUS_OPEN / STATUS_CLOSED
	SetGate(ctx context.Context, status string) error
	Quota(ctx context.Context, schoolID string) (*dto.FreeInfoResponse, error)
	// Submit 创建一条未审核申请；闸门关闭时同样受理
	Submit(ctx context.Context, req *dto.SubmitAuditRequest) error
	StudentAudits(ctx context.Context, schoolID string) (*dto.StudentAuditsResponse, error)
	// List 分页列出申请，page 从 1 开始，按 id 升序
	List(ctx context.Context, page int, query *dto.AuditListQuery) (*dto.AuditListResponse, error)
	// Review 审核一条未审核申请，每条申请只能审核一次
	Review(ctx context.Context, id int64, req *dto.ReviewAuditRequest) error
}

type cspService struct {
	cfg    *config.Config
	repo   *repository.Repository
	gate   AdmissionGate
	logger *zap.Logger
}

// NewCspService 创建 CspService 实例
func NewCspService(cfg *config.Config, repo *repository.Repository, gate AdmissionGate, logger *zap.Logger) CspService {
	return &cspService{cfg: cfg, repo: repo, gate: gate, logger: logger}
}

// ────────────────────── Gate ──────────────────────

func (s *cspService) GateStatus(ctx context.Context) (*dto.AuditGateResponse, error) {
	open, err := s.gate.IsOpen(ctx)
	if err != nil {
		s.logger.Error("读取审核闸门失败", zap.Error(err))
		return nil, pkgerrors.Persistence(err)
	}
	return &dto.AuditGateResponse{Status: gateStatus(open)}, nil
}

func (s *cspService) SetGate(ctx context.Context, status string) error {
	var open bool
	switch status {
	case GateStatusOpen:
		open = true
	case GateStatusClosed:
		open = false
	default:
		return ErrGateStatusInvalid
	}

	if err := s.gate.Set(ctx, open); err != nil {
		s.logger.Error("写入审核闸门失败", zap.Error(err))
		return pkgerrors.Persistence(err)
	}
	s.logger.Info("审核闸门已更新", zap.String("status", status))
	return nil
}

// ────────────────────── Quota ──────────────────────

func (s *cspService) Quota(ctx context.Context, schoolID string) (*dto.FreeInfoResponse, error) {
	info, err := s.repo.CspFree.GetBySchoolID(ctx, schoolID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &dto.FreeInfoResponse{FreeCount: "0", FreeReason: reasonNoFreeRecord}, nil
		}
		s.logger.Error("查询免费资格失败", zap.String("school_id", schoolID), zap.Error(err))
		return nil, pkgerrors.Persistence(err)
	}

	resp := &dto.FreeInfoResponse{FreeCount: strconv.Itoa(info.FreeCount), FreeReason: info.Reason}
	if info.FreeCount <= 0 {
		resp.FreeReason = reasonFreeUsedUp
	}
	return resp, nil
}

// ────────────────────── Submit ──────────────────────

func (s *cspService) Submit(ctx context.Context, req *dto.SubmitAuditRequest) error {
	open, err := s.gate.IsOpen(ctx)
	if err != nil {
		s.logger.Warn("读取审核闸门失败，继续受理申请", zap.Error(err))
	}
	if !open {
		s.logger.Warn("审核闸门关闭期间收到申请", zap.String("school_id", req.SchoolID))
	}

	audit := &model.CspAudit{
		SchoolID: req.SchoolID,
		Reason:   req.Reason,
		Status:   model.AuditStatusUncheck,
	}
	if err := s.repo.CspAudit.Create(ctx, audit); err != nil {
		s.logger.Error("创建审核申请失败", zap.String("school_id", req.SchoolID), zap.Error(err))
		return pkgerrors.Persistence(err)
	}

	metrics.AuditSubmissions.WithLabelValues(gateStatus(open)).Inc()
	return nil
}

// ────────────────────── StudentAudits ──────────────────────

func (s *cspService) StudentAudits(ctx context.Context, schoolID string) (*dto.StudentAuditsResponse, error) {
	audits, err := s.repo.CspAudit.ListBySchoolID(ctx, schoolID)
	if err != nil {
		s.logger.Error("查询学生申请失败", zap.String("school_id", schoolID), zap.Error(err))
		return nil, pkgerrors.Persistence(err)
	}

	data := make([]dto.StudentAuditItem, 0, len(audits))
	for _, a := range audits {
		data = append(data, dto.StudentAuditItem{
			SubmitTime: a.UpdatedAt.Format(timeLayout),
			Reason:     a.Reason,
			Result:     a.Status,
			Comment:    a.Comment,
		})
	}
	return &dto.StudentAuditsResponse{Count: len(data), Data: data}, nil
}

// ────────────────────── List ──────────────────────

func (s *cspService) List(ctx context.Context, page int, query *dto.AuditListQuery) (*dto.AuditListResponse, error) {
	if page < 1 {
		return nil, ErrAuditPageInvalid
	}

	filter, err := auditFilter(query.Status)
	if err != nil {
		return nil, err
	}

	pageSize := query.PageSize
	if pageSize <= 0 {
		pageSize = s.cfg.Audit.DefaultPageSize
	}

	audits, total, err := s.repo.CspAudit.List(ctx, filter, (page-1)*pageSize, pageSize)
	if err != nil {
		s.logger.Error("列出审核申请失败", zap.Error(err))
		return nil, pkgerrors.Persistence(err)
	}

	data := make([]dto.AuditListItem, 0, len(audits))
	for _, a := range audits {
		data = append(data, dto.AuditListItem{
			ID:       strconv.FormatInt(a.ID, 10),
			SchoolID: a.SchoolID,
			Reason:   a.Reason,
			Status:   model.AuditStatusDescription(a.Status),
		})
	}
	return &dto.AuditListResponse{
		TotalPages: response.TotalPages(total, pageSize),
		Data:       data,
	}, nil
}

// auditFilter 将查询参数转为状态过滤条件；空串表示不过滤
func auditFilter(status string) (string, error) {
	switch status {
	case "":
		return model.AuditStatusUncheck, nil
	case auditFilterAll:
		return "", nil
	case model.AuditStatusUncheck, model.AuditStatusPermit, model.AuditStatusReject:
		return status, nil
	default:
		return "", ErrAuditFilterInvalid
	}
}

// ────────────────────── Review ──────────────────────

func (s *cspService) Review(ctx context.Context, id int64, req *dto.ReviewAuditRequest) error {
	var next string
	switch req.Result {
	case AuditResultPermit:
		next = model.AuditStatusPermit
	case AuditResultReject:
		next = model.AuditStatusReject
	default:
		return ErrAuditResultInvalid
	}

	if _, err := s.repo.CspAudit.GetByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrAuditNotFound
		}
		s.logger.Error("查询审核申请失败", zap.Int64("id", id), zap.Error(err))
		return pkgerrors.Persistence(err)
	}

	ok, err := s.repo.CspAudit.ReviewIfUnchecked(ctx, id, next, req.Comment)
	if err != nil {
		s.logger.Error("写入审核结果失败", zap.Int64("id", id), zap.Error(err))
		return pkgerrors.Persistence(err)
	}
	if !ok {
		metrics.AuditReviews.WithLabelValues("conflict").Inc()
		return ErrAuditLocked
	}

	outcome := "permit"
	if next == model.AuditStatusReject {
		outcome = "reject"
	}
	metrics.AuditReviews.WithLabelValues(outcome).Inc()
	s.logger.Info("审核完成", zap.Int64("id", id), zap.String("status", next))
	return nil
}
