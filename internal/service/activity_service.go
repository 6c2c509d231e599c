package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"csa-reg/config"
	"csa-reg/internal/dto"
	"csa-reg/internal/model"
	"csa-reg/internal/repository"
	"csa-reg/internal/schema"
	pkgerrors "csa-reg/pkg/errors"
	"csa-reg/pkg/metrics"
)

// ── 报名活动模块业务错误 ──

var (
	ErrActivityNotFound      = pkgerrors.New(pkgerrors.ErrNotFound, "未找到ID对应的报名！")
	ErrActivityEnded         = pkgerrors.New(pkgerrors.ErrStateConflict, "报名已结束，不允许修改结构")
	ErrActivityStatusInvalid = pkgerrors.New(pkgerrors.ErrValidation, "活动状态值非法")
	ErrActivityTimeInvalid   = pkgerrors.New(pkgerrors.ErrValidation, "结束时间必须晚于开始时间")
)

// 删除被拒绝时返回的原因
const (
	reasonNotEnded = "报名尚未结束，不允许删除！"
)

func reasonRetention(days int) string {
	return fmt.Sprintf("报名结束后不超过%d天，不允许删除！", days)
}

const timeLayout = time.RFC3339

// ActivityService 报名活动生命周期业务接口
type ActivityService interface {
	Create(ctx context.Context, req *dto.CreateActivityRequest, publisherID int64) (*dto.CreateActivityResponse, error)
	List(ctx context.Context) ([]dto.ActivityResponse, error)
	ListOpen(ctx context.Context) ([]dto.ActivityResponse, error)
	// Get 返回活动及其嵌套结构描述
	Get(ctx context.Context, id int64) (*dto.ActivityStructureResponse, error)
	// GetOpen 同 Get，但仅对报名中的活动可见
	GetOpen(ctx context.Context, id int64) (*dto.ActivityStructureResponse, error)
	// AlterStructure 以新结构整体替换旧结构
	AlterStructure(ctx context.Context, id int64, items []schema.Item) error
	SetStatus(ctx context.Context, id int64, status int) error
	// Delete 删除活动；业务上不允许删除时返回非空 reason 且 error 为 nil
	Delete(ctx context.Context, id int64) (string, error)
}

type activityService struct {
	cfg    *config.Config
	repo   *repository.Repository
	logger *zap.Logger
	now    func() time.Time
}

// NewActivityService 创建 ActivityService 实例
func NewActivityService(cfg *config.Config, repo *repository.Repository, logger *zap.Logger) ActivityService {
	return &activityService{cfg: cfg, repo: repo, logger: logger, now: time.Now}
}

// ────────────────────── Create ──────────────────────

func (s *activityService) Create(ctx context.Context, req *dto.CreateActivityRequest, publisherID int64) (*dto.CreateActivityResponse, error) {
	if err := schema.Validate(req.Items); err != nil {
		return nil, err
	}
	if req.StartTime != nil && req.EndTime != nil && !req.EndTime.After(*req.StartTime) {
		return nil, ErrActivityTimeInvalid
	}

	activity := &model.Activity{
		Title:       req.Name,
		PublisherID: publisherID,
		StartTime:   req.StartTime,
		EndTime:     req.EndTime,
		Status:      model.ActivityDraft,
	}

	var count int
	err := s.repo.Transaction(ctx, func(tx *repository.Repository) error {
		if err := tx.Activity.Create(ctx, activity); err != nil {
			return err
		}
		nodes, err := persistStructure(ctx, tx, activity.ID, req.Items)
		count = len(nodes)
		return err
	})
	if err != nil {
		metrics.StructureWrites.WithLabelValues("create", "error").Inc()
		s.logger.Error("创建报名失败", zap.String("title", req.Name), zap.Error(err))
		return nil, pkgerrors.Persistence(err)
	}

	metrics.StructureWrites.WithLabelValues("create", "ok").Inc()
	metrics.StructureNodes.Observe(float64(count))
	s.logger.Info("报名已创建", zap.Int64("activity_id", activity.ID), zap.Int("nodes", count))
	return &dto.CreateActivityResponse{ID: activity.ID}, nil
}

// persistStructure 按先序逐个插入节点，子节点的 belongs_to 取已插入父节点的 ID
func persistStructure(ctx context.Context, tx *repository.Repository, activityID int64, items []schema.Item) ([]model.SchemaNode, error) {
	built := schema.Build(items)
	stored := make([]model.SchemaNode, len(built))

	for i := range built {
		m := built[i].Model(activityID)
		if p := built[i].Parent; p >= 0 {
			parentID := stored[p].ID
			m.BelongsTo = &parentID
		}
		if err := tx.SchemaNode.Create(ctx, &m); err != nil {
			return nil, fmt.Errorf("写入节点 %q: %w", m.Title, err)
		}
		stored[i] = m
	}
	return stored, nil
}

// ────────────────────── List ──────────────────────

func (s *activityService) List(ctx context.Context) ([]dto.ActivityResponse, error) {
	return s.list(ctx, nil)
}

func (s *activityService) ListOpen(ctx context.Context) ([]dto.ActivityResponse, error) {
	open := model.ActivityOpen
	return s.list(ctx, &open)
}

func (s *activityService) list(ctx context.Context, status *model.ActivityStatus) ([]dto.ActivityResponse, error) {
	activities, err := s.repo.Activity.List(ctx, status)
	if err != nil {
		s.logger.Error("列出报名失败", zap.Error(err))
		return nil, pkgerrors.Persistence(err)
	}

	result := make([]dto.ActivityResponse, 0, len(activities))
	for i := range activities {
		result = append(result, toActivityResponse(&activities[i]))
	}
	return result, nil
}

// ────────────────────── Get ──────────────────────

func (s *activityService) Get(ctx context.Context, id int64) (*dto.ActivityStructureResponse, error) {
	activity, err := s.getActivity(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.describe(ctx, activity)
}

func (s *activityService) GetOpen(ctx context.Context, id int64) (*dto.ActivityStructureResponse, error) {
	activity, err := s.getActivity(ctx, id)
	if err != nil {
		return nil, err
	}
	if activity.Status != model.ActivityOpen {
		return nil, ErrActivityNotFound
	}
	return s.describe(ctx, activity)
}

func (s *activityService) getActivity(ctx context.Context, id int64) (*model.Activity, error) {
	activity, err := s.repo.Activity.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrActivityNotFound
		}
		s.logger.Error("查询报名失败", zap.Int64("id", id), zap.Error(err))
		return nil, pkgerrors.Persistence(err)
	}
	return activity, nil
}

func (s *activityService) describe(ctx context.Context, activity *model.Activity) (*dto.ActivityStructureResponse, error) {
	nodes, err := s.repo.SchemaNode.ListByActivity(ctx, activity.ID)
	if err != nil {
		s.logger.Error("查询报名结构失败", zap.Int64("id", activity.ID), zap.Error(err))
		return nil, pkgerrors.Persistence(err)
	}

	return &dto.ActivityStructureResponse{
		ActivityResponse: toActivityResponse(activity),
		Items:            schema.NewTree(nodes).Describe(),
	}, nil
}

// ────────────────────── AlterStructure ──────────────────────

func (s *activityService) AlterStructure(ctx context.Context, id int64, items []schema.Item) error {
	if err := schema.Validate(items); err != nil {
		return err
	}

	var count int
	err := s.repo.Transaction(ctx, func(tx *repository.Repository) error {
		activity, err := tx.Activity.GetByIDForUpdate(ctx, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrActivityNotFound
			}
			return err
		}
		if activity.Status == model.ActivityEnded {
			return ErrActivityEnded
		}

		// 旧答案按旧节点 ID 存储，换结构后无法再组装，随结构一并清除
		if err := tx.Answer.DeleteByActivity(ctx, id); err != nil {
			return err
		}
		if err := tx.SchemaNode.DeleteByActivity(ctx, id); err != nil {
			return err
		}
		nodes, err := persistStructure(ctx, tx, id, items)
		if err != nil {
			return err
		}
		count = len(nodes)
		return tx.Activity.Touch(ctx, id)
	})

	switch {
	case err == nil:
		metrics.StructureWrites.WithLabelValues("replace", "ok").Inc()
		metrics.StructureNodes.Observe(float64(count))
		return nil
	case errors.Is(err, ErrActivityNotFound), errors.Is(err, ErrActivityEnded):
		metrics.StructureWrites.WithLabelValues("replace", "rejected").Inc()
		return err
	default:
		metrics.StructureWrites.WithLabelValues("replace", "error").Inc()
		s.logger.Error("替换报名结构失败", zap.Int64("id", id), zap.Error(err))
		return pkgerrors.Persistence(err)
	}
}

// ────────────────────── SetStatus ──────────────────────

func (s *activityService) SetStatus(ctx context.Context, id int64, status int) error {
	next := model.ActivityStatus(status)
	if status < 0 || !next.Valid() {
		return ErrActivityStatusInvalid
	}

	err := s.repo.Transaction(ctx, func(tx *repository.Repository) error {
		activity, err := tx.Activity.GetByIDForUpdate(ctx, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrActivityNotFound
			}
			return err
		}

		if activity.Status == model.ActivityEnded && next == model.ActivityEnded {
			return nil
		}

		var endTime *time.Time
		if next == model.ActivityEnded && activity.EndTime == nil {
			now := s.now()
			endTime = &now
		}
		return tx.Activity.UpdateStatus(ctx, id, next, endTime)
	})
	if err != nil {
		if errors.Is(err, ErrActivityNotFound) {
			return err
		}
		s.logger.Error("更新报名状态失败", zap.Int64("id", id), zap.Int("status", status), zap.Error(err))
		return pkgerrors.Persistence(err)
	}

	s.logger.Info("报名状态已更新", zap.Int64("id", id), zap.String("status", next.String()))
	return nil
}

// ────────────────────── Delete ──────────────────────

func (s *activityService) Delete(ctx context.Context, id int64) (string, error) {
	var reason string
	err := s.repo.Transaction(ctx, func(tx *repository.Repository) error {
		activity, err := tx.Activity.GetByIDForUpdate(ctx, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrActivityNotFound
			}
			return err
		}

		if reason = s.deletionBlocker(activity); reason != "" {
			return nil
		}

		if err := tx.Answer.DeleteByActivity(ctx, id); err != nil {
			return err
		}
		if err := tx.SchemaNode.DeleteByActivity(ctx, id); err != nil {
			return err
		}
		return tx.Activity.Delete(ctx, id)
	})
	if err != nil {
		if errors.Is(err, ErrActivityNotFound) {
			return "", err
		}
		s.logger.Error("删除报名失败", zap.Int64("id", id), zap.Error(err))
		return "", pkgerrors.Persistence(err)
	}

	if reason == "" {
		s.logger.Info("报名已删除", zap.Int64("id", id))
	}
	return reason, nil
}

// deletionBlocker 返回不允许删除的原因，允许删除时返回空字符串。
// 仅草稿和已结束的活动可删除；已结束的活动需在结束时间之后满保留天数（含边界）。
func (s *activityService) deletionBlocker(a *model.Activity) string {
	switch a.Status {
	case model.ActivityDraft:
		return ""
	case model.ActivityEnded:
		end := a.UpdatedAt
		if a.EndTime != nil {
			end = *a.EndTime
		}
		days := s.cfg.Activity.RetentionDays
		if s.now().AddDate(0, 0, -days).Before(end) {
			return reasonRetention(days)
		}
		return ""
	default:
		return reasonNotEnded
	}
}

// ── 辅助函数 ──

func toActivityResponse(a *model.Activity) dto.ActivityResponse {
	resp := dto.ActivityResponse{
		ID:     a.ID,
		Name:   a.Title,
		Status: int(a.Status),
	}
	if a.Publisher != nil {
		resp.Publisher = a.Publisher.Name
	}
	if a.StartTime != nil {
		v := a.StartTime.Format(timeLayout)
		resp.StartTime = &v
	}
	if a.EndTime != nil {
		v := a.EndTime.Format(timeLayout)
		resp.EndTime = &v
	}
	return resp
}
