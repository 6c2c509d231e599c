package repository

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"csa-reg/internal/model"
)

// ActivityRepository 报名活动数据访问接口
type ActivityRepository interface {
	Create(ctx context.Context, activity *model.Activity) error
	GetByID(ctx context.Context, id int64) (*model.Activity, error)
	// GetByIDForUpdate 加行锁读取，必须在事务内调用
	GetByIDForUpdate(ctx context.Context, id int64) (*model.Activity, error)
	List(ctx context.Context, status *model.ActivityStatus) ([]model.Activity, error)
	UpdateStatus(ctx context.Context, id int64, status model.ActivityStatus, endTime *time.Time) error
	Touch(ctx context.Context, id int64) error
	Delete(ctx context.Context, id int64) error
}

type activityRepo struct {
	db *gorm.DB
}

// NewActivityRepo 创建 ActivityRepository 实例
func NewActivityRepo(db *gorm.DB) ActivityRepository {
	return &activityRepo{db: db}
}

func (r *activityRepo) Create(ctx context.Context, activity *model.Activity) error {
	return r.db.WithContext(ctx).Create(activity).Error
}

func (r *activityRepo) GetByID(ctx context.Context, id int64) (*model.Activity, error) {
	var activity model.Activity
	err := r.db.WithContext(ctx).
		Preload("Publisher").
		Where("id = ?", id).
		First(&activity).Error
	if err != nil {
		return nil, err
	}
	return &activity, nil
}

func (r *activityRepo) GetByIDForUpdate(ctx context.Context, id int64) (*model.Activity, error) {
	var activity model.Activity
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", id).
		First(&activity).Error
	if err != nil {
		return nil, err
	}
	return &activity, nil
}

func (r *activityRepo) List(ctx context.Context, status *model.ActivityStatus) ([]model.Activity, error) {
	var activities []model.Activity
	db := r.db.WithContext(ctx).Preload("Publisher")
	if status != nil {
		db = db.Where("status = ?", *status)
	}
	err := db.Order("id DESC").Find(&activities).Error
	return activities, err
}

// UpdateStatus 更新状态；endTime 非空时一并写入结束时间
func (r *activityRepo) UpdateStatus(ctx context.Context, id int64, status model.ActivityStatus, endTime *time.Time) error {
	updates := map[string]interface{}{
		"status":     status,
		"updated_at": time.Now(),
	}
	if endTime != nil {
		updates["end_time"] = *endTime
	}
	return r.db.WithContext(ctx).
		Model(&model.Activity{}).
		Where("id = ?", id).
		Updates(updates).Error
}

// Touch 刷新 updated_at
func (r *activityRepo) Touch(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).
		Model(&model.Activity{}).
		Where("id = ?", id).
		Update("updated_at", time.Now()).Error
}

func (r *activityRepo) Delete(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).
		Where("id = ?", id).
		Delete(&model.Activity{}).Error
}
