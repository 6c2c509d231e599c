package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"csa-reg/internal/dto"
	"csa-reg/internal/model"
	"csa-reg/internal/repository"
	"csa-reg/internal/schema"
	pkgerrors "csa-reg/pkg/errors"
)

// ── 报名者模块业务错误 ──

var (
	ErrApplicantNotFound  = pkgerrors.New(pkgerrors.ErrNotFound, "不存在此ID的报名信息！")
	ErrActivityNotOpen    = pkgerrors.New(pkgerrors.ErrStateConflict, "报名未开放")
	ErrApplicantDuplicate = pkgerrors.New(pkgerrors.ErrStateConflict, "该唯一字段已有报名记录")
	ErrAnswerInvalid      = pkgerrors.New(pkgerrors.ErrValidation, "报名信息不合法")
)

// ApplicantService 报名者业务接口
type ApplicantService interface {
	// List 返回活动下全部报名者，按报名序号升序
	List(ctx context.Context, activityID int64) ([]dto.ApplicantResponse, error)
	// Delete 撤销一个报名者的全部答案
	Delete(ctx context.Context, activityID int64, applicantNumber int) error
	// Submit 写入一份报名并返回分配的报名序号
	Submit(ctx context.Context, activityID int64, answers map[int64]string) (int, error)
}

type applicantService struct {
	repo   *repository.Repository
	logger *zap.Logger
	now    func() time.Time
}

// NewApplicantService 创建 ApplicantService 实例
func NewApplicantService(repo *repository.Repository, logger *zap.Logger) ApplicantService {
	return &applicantService{repo: repo, logger: logger, now: time.Now}
}

// ────────────────────── List ──────────────────────

func (s *applicantService) List(ctx context.Context, activityID int64) ([]dto.ApplicantResponse, error) {
	_, tree, answers, err := loadApplicants(ctx, s.repo, activityID)
	if err != nil {
		if !errors.Is(err, ErrActivityNotFound) {
			s.logger.Error("查询报名者失败", zap.Int64("activity_id", activityID), zap.Error(err))
		}
		return nil, err
	}

	numbers := sortedApplicants(answers)
	unique := tree.Unique()

	result := make([]dto.ApplicantResponse, 0, len(numbers))
	for _, n := range numbers {
		values := answers[n]
		item := dto.ApplicantResponse{ID: n, Data: tree.Assemble(values)}
		if unique != nil {
			if v, ok := values[unique.ID]; ok {
				item.Unique = &v
			}
		}
		result = append(result, item)
	}
	return result, nil
}

// loadApplicants 读取活动、结构树与全部答案索引
func loadApplicants(ctx context.Context, repo *repository.Repository, activityID int64) (*model.Activity, *schema.Tree, map[int]map[int64]string, error) {
	activity, err := repo.Activity.GetByID(ctx, activityID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, nil, ErrActivityNotFound
		}
		return nil, nil, nil, pkgerrors.Persistence(err)
	}

	nodes, err := repo.SchemaNode.ListByActivity(ctx, activityID)
	if err != nil {
		return nil, nil, nil, pkgerrors.Persistence(err)
	}
	rows, err := repo.Answer.ListByActivity(ctx, activityID)
	if err != nil {
		return nil, nil, nil, pkgerrors.Persistence(err)
	}

	return activity, schema.NewTree(nodes), schema.IndexAnswers(rows), nil
}

func sortedApplicants(answers map[int]map[int64]string) []int {
	numbers := make([]int, 0, len(answers))
	for n := range answers {
		numbers = append(numbers, n)
	}
	sort.Ints(numbers)
	return numbers
}

// ────────────────────── Delete ──────────────────────

func (s *applicantService) Delete(ctx context.Context, activityID int64, applicantNumber int) error {
	deleted, err := s.repo.Answer.DeleteByApplicant(ctx, activityID, applicantNumber)
	if err != nil {
		s.logger.Error("删除报名信息失败",
			zap.Int64("activity_id", activityID),
			zap.Int("applicant", applicantNumber),
			zap.Error(err),
		)
		return pkgerrors.Persistence(err)
	}
	if deleted == 0 {
		return ErrApplicantNotFound
	}

	s.logger.Info("报名信息已删除", zap.Int64("activity_id", activityID), zap.Int("applicant", applicantNumber))
	return nil
}

// ────────────────────── Submit ──────────────────────

func (s *applicantService) Submit(ctx context.Context, activityID int64, answers map[int64]string) (int, error) {
	var number int
	err := s.repo.Transaction(ctx, func(tx *repository.Repository) error {
		activity, err := tx.Activity.GetByIDForUpdate(ctx, activityID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrActivityNotFound
			}
			return err
		}
		if !s.accepting(activity) {
			return ErrActivityNotOpen
		}

		nodes, err := tx.SchemaNode.ListByActivity(ctx, activityID)
		if err != nil {
			return err
		}
		tree := schema.NewTree(nodes)
		if err := checkAnswers(tree, answers); err != nil {
			return err
		}

		if u := tree.Unique(); u != nil {
			if v := answers[u.ID]; v != "" {
				exists, err := tx.Answer.ExistsValue(ctx, activityID, u.ID, v)
				if err != nil {
					return err
				}
				if exists {
					return ErrApplicantDuplicate
				}
			}
		}

		maxNum, err := tx.Answer.MaxApplicantNumber(ctx, activityID)
		if err != nil {
			return err
		}
		number = maxNum + 1

		rows := make([]model.AnswerRow, 0, len(answers))
		for _, leaf := range tree.Leaves() {
			v, ok := answers[leaf.Node.ID]
			if !ok {
				continue
			}
			rows = append(rows, model.AnswerRow{
				ActivityID:      activityID,
				ApplicantNumber: number,
				NodeID:          leaf.Node.ID,
				Value:           v,
			})
		}
		if len(rows) == 0 {
			return fmt.Errorf("%w: 至少需要填写一项", ErrAnswerInvalid)
		}
		return tx.Answer.CreateBatch(ctx, rows)
	})
	if err != nil {
		var biz *pkgerrors.BizError
		if errors.As(err, &biz) {
			return 0, err
		}
		s.logger.Error("提交报名失败", zap.Int64("activity_id", activityID), zap.Error(err))
		return 0, pkgerrors.Persistence(err)
	}

	s.logger.Info("报名已提交", zap.Int64("activity_id", activityID), zap.Int("applicant", number))
	return number, nil
}

// accepting 活动是否处于可报名状态（报名中且在时间窗口内）
func (s *applicantService) accepting(a *model.Activity) bool {
	if a.Status != model.ActivityOpen {
		return false
	}
	now := s.now()
	if a.StartTime != nil && now.Before(*a.StartTime) {
		return false
	}
	if a.EndTime != nil && now.After(*a.EndTime) {
		return false
	}
	return true
}

// checkAnswers 校验答案只指向叶子节点、必填项非空、选项与数值区间合法
func checkAnswers(tree *schema.Tree, answers map[int64]string) error {
	leaves := tree.Leaves()
	known := make(map[int64]bool, len(leaves))
	for _, leaf := range leaves {
		known[leaf.Node.ID] = true
	}
	for id := range answers {
		if !known[id] {
			return fmt.Errorf("%w: 未知题目 %d", ErrAnswerInvalid, id)
		}
	}

	for _, leaf := range leaves {
		n := leaf.Node
		v, ok := answers[n.ID]
		label := strings.Join(leaf.Path, "/")

		if !ok || v == "" {
			if n.IsRequired.Bool() {
				return fmt.Errorf("%w: %s 为必填项", ErrAnswerInvalid, label)
			}
			continue
		}

		switch n.Type {
		case schema.TypeSelect:
			if len(n.Cases) > 0 && !contains(n.Cases, v) {
				return fmt.Errorf("%w: %s 的取值不在选项中", ErrAnswerInvalid, label)
			}
		case schema.TypeNumber:
			if err := checkNumber(v, n.Ranges); err != nil {
				return fmt.Errorf("%w: %s %s", ErrAnswerInvalid, label, err.Error())
			}
		}
	}
	return nil
}

func checkNumber(v string, bounds model.CommaList) error {
	x, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return errors.New("不是数字")
	}
	if len(bounds) != 2 {
		return nil
	}
	lo, errLo := strconv.ParseFloat(bounds[0], 64)
	hi, errHi := strconv.ParseFloat(bounds[1], 64)
	if errLo == nil && x < lo {
		return fmt.Errorf("不能小于 %s", bounds[0])
	}
	if errHi == nil && x > hi {
		return fmt.Errorf("不能大于 %s", bounds[1])
	}
	return nil
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}
