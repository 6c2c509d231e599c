package repository

import (
	"context"

	"gorm.io/gorm"
)

// Repository 所有 Repository 的聚合入口
type Repository struct {
	db *gorm.DB

	Admin      AdminRepository
	Activity   ActivityRepository
	SchemaNode SchemaNodeRepository
	Answer     AnswerRepository
	CspFree    CspFreeInfoRepository
	CspAudit   CspAuditRepository
}

// NewRepository 创建 Repository 聚合
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{
		db:         db,
		Admin:      NewAdminRepo(db),
		Activity:   NewActivityRepo(db),
		SchemaNode: NewSchemaNodeRepo(db),
		Answer:     NewAnswerRepo(db),
		CspFree:    NewCspFreeInfoRepo(db),
		CspAudit:   NewCspAuditRepo(db),
	}
}

// BeginTx 开启事务
func (r *Repository) BeginTx(ctx context.Context) (*gorm.DB, error) {
	tx := r.db.WithContext(ctx).Begin()
	return tx, tx.Error
}

// WithTx 返回绑定到事务连接的 Repository 副本
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return NewRepository(tx)
}

// Transaction 在单个事务内执行 fn，fn 返回错误或 panic 时整体回滚。
// 未绑定数据库连接（测试中注入内存实现）时直接在当前 Repository 上执行。
func (r *Repository) Transaction(ctx context.Context, fn func(tx *Repository) error) error {
	if r.db == nil {
		return fn(r)
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(r.WithTx(tx))
	})
}

// Ping 检查数据库连通性
func (r *Repository) Ping(ctx context.Context) error {
	if r.db == nil {
		return nil
	}
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}
