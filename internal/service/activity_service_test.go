package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"

	"csa-reg/internal/dto"
	"csa-reg/internal/model"
	"csa-reg/internal/schema"
	pkgerrors "csa-reg/pkg/errors"
)

// ── 测试辅助 ──

var fixedNow = time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)

func setupTestActivityService() (*activityService, *mockRepos) {
	repo, mocks := newMockRepository()
	svc := NewActivityService(testConfig(), repo, zap.NewNop()).(*activityService)
	svc.now = func() time.Time { return fixedNow }
	return svc, mocks
}

func nameInfoAge() []schema.Item {
	return []schema.Item{
		{Name: "Name", Type: schema.TypeText, Unique: true, Require: true},
		{Name: "Info", Type: schema.TypeGroup, SubItem: []schema.Item{
			{Name: "Age", Type: schema.TypeNumber},
		}},
	}
}

func createActivity(t *testing.T, svc ActivityService, items []schema.Item) int64 {
	t.Helper()
	resp, err := svc.Create(context.Background(), &dto.CreateActivityRequest{Name: "招新", Items: items}, 1)
	if err != nil {
		t.Fatalf("创建报名失败: %v", err)
	}
	return resp.ID
}

// ── Create ──

func TestActivityService_Create_PersistsPreOrder(t *testing.T) {
	svc, mocks := setupTestActivityService()
	id := createActivity(t, svc, nameInfoAge())

	nodes := mocks.node.nodes
	if len(nodes) != 3 {
		t.Fatalf("期望 3 个节点，实际 %d", len(nodes))
	}

	name, info, age := nodes[0], nodes[1], nodes[2]
	if name.Title != "Name" || name.BelongsTo != nil || name.IndexNumber != 0 {
		t.Errorf("Name 节点错误: %+v", name)
	}
	if info.Title != "Info" || info.BelongsTo != nil || info.IndexNumber != 1 || info.Type != schema.TypeGroup {
		t.Errorf("Info 节点错误: %+v", info)
	}
	if age.Title != "Age" || age.BelongsTo == nil || *age.BelongsTo != info.ID || age.IndexNumber != 0 {
		t.Errorf("Age 节点应挂在 Info 下且序号为 0: %+v", age)
	}
	for _, n := range nodes {
		if n.ActivityID != id {
			t.Errorf("节点 activity_id 错误: %d", n.ActivityID)
		}
	}

	a, _ := mocks.activity.GetByID(context.Background(), id)
	if a.Status != model.ActivityDraft || a.PublisherID != 1 {
		t.Errorf("新活动应为草稿且发布者为调用方: %+v", a)
	}
}

func TestActivityService_Create_InvalidSchema(t *testing.T) {
	svc, mocks := setupTestActivityService()

	_, err := svc.Create(context.Background(), &dto.CreateActivityRequest{
		Name:  "x",
		Items: []schema.Item{{Name: "g", Type: schema.TypeGroup}},
	}, 1)
	if !errors.Is(err, pkgerrors.ErrValidation) {
		t.Errorf("期望参数校验错误，实际: %v", err)
	}
	if len(mocks.activity.activities) != 0 {
		t.Error("校验失败时不应写入活动")
	}
}

func TestActivityService_Create_InvalidTimeRange(t *testing.T) {
	svc, _ := setupTestActivityService()
	start := fixedNow
	end := fixedNow.Add(-time.Hour)

	_, err := svc.Create(context.Background(), &dto.CreateActivityRequest{
		Name: "x", StartTime: &start, EndTime: &end, Items: nameInfoAge(),
	}, 1)
	if !errors.Is(err, ErrActivityTimeInvalid) {
		t.Errorf("期望 ErrActivityTimeInvalid，实际: %v", err)
	}
}

func TestActivityService_Create_InsertFailure(t *testing.T) {
	svc, mocks := setupTestActivityService()
	mocks.node.failAfter = 2

	_, err := svc.Create(context.Background(), &dto.CreateActivityRequest{Name: "x", Items: nameInfoAge()}, 1)
	if !errors.Is(err, pkgerrors.ErrPersistence) {
		t.Errorf("期望 ErrPersistence，实际: %v", err)
	}
	if !errors.Is(err, errMockInsert) {
		t.Error("应保留原始错误链")
	}
}

// ── Get ──

func TestActivityService_Get_RoundTrip(t *testing.T) {
	svc, _ := setupTestActivityService()
	items := nameInfoAge()
	id := createActivity(t, svc, items)

	resp, err := svc.Get(context.Background(), id)
	if err != nil {
		t.Fatalf("查询报名失败: %v", err)
	}
	if resp.Name != "招新" || len(resp.Items) != 2 {
		t.Fatalf("响应错误: %+v", resp)
	}
	if resp.Items[1].Name != "Info" || len(resp.Items[1].SubItem) != 1 || resp.Items[1].SubItem[0].Name != "Age" {
		t.Errorf("结构描述未还原: %+v", resp.Items)
	}
	if !resp.Items[0].Unique || !resp.Items[0].Require {
		t.Error("unique / require 标志应被还原")
	}
}

func TestActivityService_GetOpen_HidesDraft(t *testing.T) {
	svc, _ := setupTestActivityService()
	id := createActivity(t, svc, nameInfoAge())
	ctx := context.Background()

	if _, err := svc.GetOpen(ctx, id); !errors.Is(err, ErrActivityNotFound) {
		t.Errorf("草稿对外应不可见，实际: %v", err)
	}

	_ = svc.SetStatus(ctx, id, int(model.ActivityOpen))
	if _, err := svc.GetOpen(ctx, id); err != nil {
		t.Errorf("报名中应可见: %v", err)
	}

	open, _ := svc.ListOpen(ctx)
	if len(open) != 1 || open[0].ID != id {
		t.Errorf("期望公开列表仅含 %d，实际 %+v", id, open)
	}
}

func TestActivityService_Get_NotFound(t *testing.T) {
	svc, _ := setupTestActivityService()
	if _, err := svc.Get(context.Background(), 42); !errors.Is(err, pkgerrors.ErrNotFound) {
		t.Errorf("期望 ErrNotFound，实际: %v", err)
	}
}

// ── AlterStructure ──

func TestActivityService_AlterStructure_Replaces(t *testing.T) {
	svc, mocks := setupTestActivityService()
	id := createActivity(t, svc, nameInfoAge())

	err := svc.AlterStructure(context.Background(), id, []schema.Item{{Name: "Email", Type: schema.TypeText}})
	if err != nil {
		t.Fatalf("替换结构失败: %v", err)
	}

	nodes, _ := mocks.node.ListByActivity(context.Background(), id)
	if len(nodes) != 1 || nodes[0].Title != "Email" {
		t.Errorf("期望仅剩 Email 节点，实际 %+v", nodes)
	}
}

func TestActivityService_AlterStructure_ClearsAnswers(t *testing.T) {
	svc, mocks := setupTestActivityService()
	id := createActivity(t, svc, nameInfoAge())
	other := createActivity(t, svc, nameInfoAge())
	ctx := context.Background()
	_ = mocks.answer.CreateBatch(ctx, []model.AnswerRow{
		{ActivityID: id, ApplicantNumber: 1, NodeID: 1, Value: "张三"},
		{ActivityID: id, ApplicantNumber: 2, NodeID: 1, Value: "李四"},
		{ActivityID: other, ApplicantNumber: 1, NodeID: 4, Value: "王五"},
	})

	if err := svc.AlterStructure(ctx, id, []schema.Item{{Name: "Email", Type: schema.TypeText}}); err != nil {
		t.Fatalf("替换结构失败: %v", err)
	}

	rows, _ := mocks.answer.ListByActivity(ctx, id)
	if len(rows) != 0 {
		t.Errorf("替换结构后旧答案应被清除，实际剩余 %d 行", len(rows))
	}
	kept, _ := mocks.answer.ListByActivity(ctx, other)
	if len(kept) != 1 {
		t.Errorf("其他活动的答案不应受影响，实际 %d 行", len(kept))
	}
}

func TestActivityService_AlterStructure_EndedKeepsAnswers(t *testing.T) {
	svc, mocks := setupTestActivityService()
	id := createActivity(t, svc, nameInfoAge())
	ctx := context.Background()
	_ = mocks.answer.CreateBatch(ctx, []model.AnswerRow{{ActivityID: id, ApplicantNumber: 1, NodeID: 1, Value: "张三"}})
	_ = svc.SetStatus(ctx, id, int(model.ActivityEnded))

	if err := svc.AlterStructure(ctx, id, []schema.Item{{Name: "Email", Type: schema.TypeText}}); !errors.Is(err, ErrActivityEnded) {
		t.Fatalf("期望 ErrActivityEnded，实际: %v", err)
	}
	rows, _ := mocks.answer.ListByActivity(ctx, id)
	if len(rows) != 1 {
		t.Errorf("被拒绝时答案不应变化，实际 %d 行", len(rows))
	}
}

func TestActivityService_AlterStructure_EndedRejected(t *testing.T) {
	svc, mocks := setupTestActivityService()
	id := createActivity(t, svc, nameInfoAge())
	ctx := context.Background()
	_ = svc.SetStatus(ctx, id, int(model.ActivityEnded))

	err := svc.AlterStructure(ctx, id, []schema.Item{{Name: "Email", Type: schema.TypeText}})
	if !errors.Is(err, ErrActivityEnded) || !errors.Is(err, pkgerrors.ErrStateConflict) {
		t.Errorf("期望 ErrActivityEnded，实际: %v", err)
	}

	nodes, _ := mocks.node.ListByActivity(ctx, id)
	if len(nodes) != 3 {
		t.Errorf("被拒绝时结构不应变化，实际 %d 个节点", len(nodes))
	}
}

func TestActivityService_AlterStructure_NotFound(t *testing.T) {
	svc, _ := setupTestActivityService()
	err := svc.AlterStructure(context.Background(), 9, nameInfoAge())
	if !errors.Is(err, ErrActivityNotFound) {
		t.Errorf("期望 ErrActivityNotFound，实际: %v", err)
	}
}

// ── SetStatus ──

func TestActivityService_SetStatus_EndedSetsEndTime(t *testing.T) {
	svc, mocks := setupTestActivityService()
	id := createActivity(t, svc, nameInfoAge())
	ctx := context.Background()

	if err := svc.SetStatus(ctx, id, int(model.ActivityEnded)); err != nil {
		t.Fatalf("设置状态失败: %v", err)
	}
	a, _ := mocks.activity.GetByID(ctx, id)
	if a.Status != model.ActivityEnded || a.EndTime == nil || !a.EndTime.Equal(fixedNow) {
		t.Errorf("进入已结束应写入结束时间: %+v", a)
	}

	// 已结束 → 已结束 不改变结束时间
	svc.now = func() time.Time { return fixedNow.Add(time.Hour) }
	if err := svc.SetStatus(ctx, id, int(model.ActivityEnded)); err != nil {
		t.Fatalf("重复结束失败: %v", err)
	}
	a, _ = mocks.activity.GetByID(ctx, id)
	if !a.EndTime.Equal(fixedNow) {
		t.Errorf("重复结束不应修改结束时间，实际 %v", a.EndTime)
	}
}

func TestActivityService_SetStatus_KeepsExistingEndTime(t *testing.T) {
	svc, mocks := setupTestActivityService()
	end := fixedNow.Add(-48 * time.Hour)
	resp, err := svc.Create(context.Background(), &dto.CreateActivityRequest{Name: "x", EndTime: &end, Items: nameInfoAge()}, 1)
	if err != nil {
		t.Fatalf("创建报名失败: %v", err)
	}

	_ = svc.SetStatus(context.Background(), resp.ID, int(model.ActivityEnded))
	a, _ := mocks.activity.GetByID(context.Background(), resp.ID)
	if !a.EndTime.Equal(end) {
		t.Errorf("已有结束时间不应被覆盖，实际 %v", a.EndTime)
	}
}

func TestActivityService_SetStatus_Invalid(t *testing.T) {
	svc, _ := setupTestActivityService()
	id := createActivity(t, svc, nameInfoAge())

	for _, st := range []int{-1, 4, 127} {
		if err := svc.SetStatus(context.Background(), id, st); !errors.Is(err, ErrActivityStatusInvalid) {
			t.Errorf("状态 %d: 期望 ErrActivityStatusInvalid，实际 %v", st, err)
		}
	}
	if err := svc.SetStatus(context.Background(), 999, 1); !errors.Is(err, ErrActivityNotFound) {
		t.Errorf("期望 ErrActivityNotFound，实际 %v", err)
	}
}

func TestActivityService_SetStatus_ArbitraryTransitions(t *testing.T) {
	svc, mocks := setupTestActivityService()
	id := createActivity(t, svc, nameInfoAge())
	ctx := context.Background()

	for _, st := range []model.ActivityStatus{model.ActivityOpen, model.ActivityPaused, model.ActivityEnded, model.ActivityOpen} {
		if err := svc.SetStatus(ctx, id, int(st)); err != nil {
			t.Fatalf("切换到 %s 失败: %v", st, err)
		}
		a, _ := mocks.activity.GetByID(ctx, id)
		if a.Status != st {
			t.Errorf("期望状态 %s，实际 %s", st, a.Status)
		}
	}
}

// ── Delete ──

func TestActivityService_Delete_Window(t *testing.T) {
	tests := []struct {
		name       string
		status     model.ActivityStatus
		endOffset  time.Duration
		wantReason string
	}{
		{name: "草稿可删除", status: model.ActivityDraft},
		{name: "报名中不可删除", status: model.ActivityOpen, wantReason: reasonNotEnded},
		{name: "暂停不可删除", status: model.ActivityPaused, wantReason: reasonNotEnded},
		{name: "结束 10 天", status: model.ActivityEnded, endOffset: -10 * 24 * time.Hour, wantReason: reasonRetention(30)},
		{name: "结束差 1 秒满 30 天", status: model.ActivityEnded, endOffset: -30*24*time.Hour + time.Second, wantReason: reasonRetention(30)},
		{name: "结束恰好 30 天", status: model.ActivityEnded, endOffset: -30 * 24 * time.Hour},
		{name: "结束 31 天", status: model.ActivityEnded, endOffset: -31 * 24 * time.Hour},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, mocks := setupTestActivityService()
			id := createActivity(t, svc, nameInfoAge())

			a := mocks.activity.activities[id]
			a.Status = tt.status
			if tt.status == model.ActivityEnded {
				end := fixedNow.Add(tt.endOffset)
				a.EndTime = &end
			}

			reason, err := svc.Delete(context.Background(), id)
			if err != nil {
				t.Fatalf("删除返回错误: %v", err)
			}
			if reason != tt.wantReason {
				t.Errorf("期望原因 %q，实际 %q", tt.wantReason, reason)
			}

			_, stillThere := mocks.activity.activities[id]
			if tt.wantReason == "" && stillThere {
				t.Error("允许删除时活动应被删除")
			}
			if tt.wantReason != "" && !stillThere {
				t.Error("拒绝删除时活动应保留")
			}
		})
	}
}

func TestActivityService_Delete_RemovesNodesAndAnswers(t *testing.T) {
	svc, mocks := setupTestActivityService()
	id := createActivity(t, svc, nameInfoAge())
	ctx := context.Background()
	_ = mocks.answer.CreateBatch(ctx, []model.AnswerRow{{ActivityID: id, ApplicantNumber: 1, NodeID: 101, Value: "张三"}})

	if _, err := svc.Delete(ctx, id); err != nil {
		t.Fatalf("删除失败: %v", err)
	}
	if nodes, _ := mocks.node.ListByActivity(ctx, id); len(nodes) != 0 {
		t.Error("节点应被一并删除")
	}
	if rows, _ := mocks.answer.ListByActivity(ctx, id); len(rows) != 0 {
		t.Error("答案应被一并删除")
	}
}

func TestActivityService_Delete_NotFound(t *testing.T) {
	svc, _ := setupTestActivityService()
	if _, err := svc.Delete(context.Background(), 77); !errors.Is(err, ErrActivityNotFound) {
		t.Errorf("期望 ErrActivityNotFound，实际: %v", err)
	}
}
