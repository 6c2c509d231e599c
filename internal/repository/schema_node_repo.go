package repository

import (
	"context"

	"gorm.io/gorm"

	"csa-reg/internal/model"
)

// SchemaNodeRepository 报名表结构节点数据访问接口
type SchemaNodeRepository interface {
	// Create 插入单个节点并回填 ID
	Create(ctx context.Context, node *model.SchemaNode) error
	ListByActivity(ctx context.Context, activityID int64) ([]model.SchemaNode, error)
	DeleteByActivity(ctx context.Context, activityID int64) error
}

type schemaNodeRepo struct {
	db *gorm.DB
}

// NewSchemaNodeRepo 创建 SchemaNodeRepository 实例
func NewSchemaNodeRepo(db *gorm.DB) SchemaNodeRepository {
	return &schemaNodeRepo{db: db}
}

func (r *schemaNodeRepo) Create(ctx context.Context, node *model.SchemaNode) error {
	return r.db.WithContext(ctx).Create(node).Error
}

func (r *schemaNodeRepo) ListByActivity(ctx context.Context, activityID int64) ([]model.SchemaNode, error) {
	var nodes []model.SchemaNode
	err := r.db.WithContext(ctx).
		Where("activity_id = ?", activityID).
		Order("id ASC").
		Find(&nodes).Error
	return nodes, err
}

// DeleteByActivity 删除活动的全部节点（单条语句，父子外键在语句结束时检查）
func (r *schemaNodeRepo) DeleteByActivity(ctx context.Context, activityID int64) error {
	return r.db.WithContext(ctx).
		Where("activity_id = ?", activityID).
		Delete(&model.SchemaNode{}).Error
}
