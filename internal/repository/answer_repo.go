package repository

import (
	"context"

	"gorm.io/gorm"

	"csa-reg/internal/model"
)

// AnswerRepository 报名答案数据访问接口
type AnswerRepository interface {
	CreateBatch(ctx context.Context, rows []model.AnswerRow) error
	ListByActivity(ctx context.Context, activityID int64) ([]model.AnswerRow, error)
	// MaxApplicantNumber 当前最大报名序号，没有报名者时为 0
	MaxApplicantNumber(ctx context.Context, activityID int64) (int, error)
	// DeleteByApplicant 删除一个报名者的全部答案，返回删除行数
	DeleteByApplicant(ctx context.Context, activityID int64, applicantNumber int) (int64, error)
	DeleteByActivity(ctx context.Context, activityID int64) error
	// ExistsValue 节点下是否已存在相同取值的答案
	ExistsValue(ctx context.Context, activityID, nodeID int64, value string) (bool, error)
}

type answerRepo struct {
	db *gorm.DB
}

// NewAnswerRepo 创建 AnswerRepository 实例
func NewAnswerRepo(db *gorm.DB) AnswerRepository {
	return &answerRepo{db: db}
}

func (r *answerRepo) CreateBatch(ctx context.Context, rows []model.AnswerRow) error {
	if len(rows) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).CreateInBatches(rows, 200).Error
}

func (r *answerRepo) ListByActivity(ctx context.Context, activityID int64) ([]model.AnswerRow, error) {
	var rows []model.AnswerRow
	err := r.db.WithContext(ctx).
		Where("activity_id = ?", activityID).
		Order("applicant_number ASC, id ASC").
		Find(&rows).Error
	return rows, err
}

func (r *answerRepo) MaxApplicantNumber(ctx context.Context, activityID int64) (int, error) {
	var maxNum int
	err := r.db.WithContext(ctx).
		Model(&model.AnswerRow{}).
		Where("activity_id = ?", activityID).
		Select("COALESCE(MAX(applicant_number), 0)").
		Scan(&maxNum).Error
	return maxNum, err
}

func (r *answerRepo) DeleteByApplicant(ctx context.Context, activityID int64, applicantNumber int) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("activity_id = ? AND applicant_number = ?", activityID, applicantNumber).
		Delete(&model.AnswerRow{})
	return result.RowsAffected, result.Error
}

func (r *answerRepo) DeleteByActivity(ctx context.Context, activityID int64) error {
	return r.db.WithContext(ctx).
		Where("activity_id = ?", activityID).
		Delete(&model.AnswerRow{}).Error
}

func (r *answerRepo) ExistsValue(ctx context.Context, activityID, nodeID int64, value string) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).
		Model(&model.AnswerRow{}).
		Where("activity_id = ? AND node_id = ? AND value = ?", activityID, nodeID, value).
		Count(&n).Error
	return n > 0, err
}
