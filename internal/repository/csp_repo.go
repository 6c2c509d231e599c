package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"csa-reg/internal/model"
)

// CspFreeInfoRepository CSP 免费资格数据访问接口（只读）
type CspFreeInfoRepository interface {
	GetBySchoolID(ctx context.Context, schoolID string) (*model.CspFreeInfo, error)
}

type cspFreeInfoRepo struct {
	db *gorm.DB
}

// NewCspFreeInfoRepo 创建 CspFreeInfoRepository 实例
func NewCspFreeInfoRepo(db *gorm.DB) CspFreeInfoRepository {
	return &cspFreeInfoRepo{db: db}
}

func (r *cspFreeInfoRepo) GetBySchoolID(ctx context.Context, schoolID string) (*model.CspFreeInfo, error) {
	var info model.CspFreeInfo
	err := r.db.WithContext(ctx).
		Where("school_id = ?", schoolID).
		First(&info).Error
	if err != nil {
		return nil, err
	}
	return &info, nil
}

// CspAuditRepository CSP 免费审核申请数据访问接口
type CspAuditRepository interface {
	Create(ctx context.Context, audit *model.CspAudit) error
	GetByID(ctx context.Context, id int64) (*model.CspAudit, error)
	ListBySchoolID(ctx context.Context, schoolID string) ([]model.CspAudit, error)
	// List 按 id 升序分页；status 为空表示不过滤
	List(ctx context.Context, status string, offset, limit int) ([]model.CspAudit, int64, error)
	// ReviewIfUnchecked 仅当记录仍为未审核时写入审核结果，返回是否写入成功
	ReviewIfUnchecked(ctx context.Context, id int64, status string, comment *string) (bool, error)
}

type cspAuditRepo struct {
	db *gorm.DB
}

// NewCspAuditRepo 创建 CspAuditRepository 实例
func NewCspAuditRepo(db *gorm.DB) CspAuditRepository {
	return &cspAuditRepo{db: db}
}

func (r *cspAuditRepo) Create(ctx context.Context, audit *model.CspAudit) error {
	return r.db.WithContext(ctx).Create(audit).Error
}

func (r *cspAuditRepo) GetByID(ctx context.Context, id int64) (*model.CspAudit, error) {
	var audit model.CspAudit
	err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&audit).Error
	if err != nil {
		return nil, err
	}
	return &audit, nil
}

func (r *cspAuditRepo) ListBySchoolID(ctx context.Context, schoolID string) ([]model.CspAudit, error) {
	var audits []model.CspAudit
	err := r.db.WithContext(ctx).
		Where("school_id = ?", schoolID).
		Order("id DESC").
		Find(&audits).Error
	return audits, err
}

func (r *cspAuditRepo) List(ctx context.Context, status string, offset, limit int) ([]model.CspAudit, int64, error) {
	var audits []model.CspAudit
	var total int64

	db := r.db.WithContext(ctx).Model(&model.CspAudit{})
	if status != "" {
		db = db.Where("status = ?", status)
	}

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := db.Order("id ASC").
		Offset(offset).
		Limit(limit).
		Find(&audits).Error
	return audits, total, err
}

func (r *cspAuditRepo) ReviewIfUnchecked(ctx context.Context, id int64, status string, comment *string) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&model.CspAudit{}).
		Where("id = ? AND status = ?", id, model.AuditStatusUncheck).
		Updates(map[string]interface{}{
			"status":     status,
			"comment":    comment,
			"updated_at": time.Now(),
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}
