package service

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"gorm.io/gorm"

	"csa-reg/internal/model"
	"csa-reg/internal/repository"
)

// ── Mock AdminRepository ──

type mockAdminRepo struct {
	admins map[int64]*model.Admin
	nextID int64
}

func newMockAdminRepo() *mockAdminRepo {
	return &mockAdminRepo{admins: make(map[int64]*model.Admin)}
}

func (m *mockAdminRepo) Create(_ context.Context, admin *model.Admin) error {
	m.nextID++
	admin.ID = m.nextID
	m.admins[admin.ID] = admin
	return nil
}

func (m *mockAdminRepo) GetByID(_ context.Context, id int64) (*model.Admin, error) {
	if a, ok := m.admins[id]; ok {
		return a, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockAdminRepo) GetByName(_ context.Context, name string) (*model.Admin, error) {
	for _, a := range m.admins {
		if a.Name == name {
			return a, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockAdminRepo) List(_ context.Context) ([]model.Admin, error) {
	var result []model.Admin
	for _, a := range m.admins {
		result = append(result, *a)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

func (m *mockAdminRepo) Count(_ context.Context) (int64, error) {
	return int64(len(m.admins)), nil
}

// ── Mock ActivityRepository ──

type mockActivityRepo struct {
	activities map[int64]*model.Activity
	nextID     int64
}

func newMockActivityRepo() *mockActivityRepo {
	return &mockActivityRepo{activities: make(map[int64]*model.Activity)}
}

func (m *mockActivityRepo) Create(_ context.Context, activity *model.Activity) error {
	m.nextID++
	activity.ID = m.nextID
	cp := *activity
	m.activities[activity.ID] = &cp
	return nil
}

func (m *mockActivityRepo) GetByID(_ context.Context, id int64) (*model.Activity, error) {
	if a, ok := m.activities[id]; ok {
		cp := *a
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockActivityRepo) GetByIDForUpdate(ctx context.Context, id int64) (*model.Activity, error) {
	return m.GetByID(ctx, id)
}

func (m *mockActivityRepo) List(_ context.Context, status *model.ActivityStatus) ([]model.Activity, error) {
	var result []model.Activity
	for _, a := range m.activities {
		if status != nil && a.Status != *status {
			continue
		}
		result = append(result, *a)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID > result[j].ID })
	return result, nil
}

func (m *mockActivityRepo) UpdateStatus(_ context.Context, id int64, status model.ActivityStatus, endTime *time.Time) error {
	a, ok := m.activities[id]
	if !ok {
		return nil
	}
	a.Status = status
	if endTime != nil {
		t := *endTime
		a.EndTime = &t
	}
	return nil
}

func (m *mockActivityRepo) Touch(_ context.Context, _ int64) error { return nil }

func (m *mockActivityRepo) Delete(_ context.Context, id int64) error {
	delete(m.activities, id)
	return nil
}

// ── Mock SchemaNodeRepository ──

type mockSchemaNodeRepo struct {
	nodes  []model.SchemaNode
	nextID int64
	// failAfter 大于 0 时，第 failAfter 次 Create 返回错误
	failAfter int
	creates   int
}

var errMockInsert = errors.New("mock: insert failed")

func newMockSchemaNodeRepo() *mockSchemaNodeRepo {
	return &mockSchemaNodeRepo{nextID: 100}
}

func (m *mockSchemaNodeRepo) Create(_ context.Context, node *model.SchemaNode) error {
	m.creates++
	if m.failAfter > 0 && m.creates >= m.failAfter {
		return errMockInsert
	}
	m.nextID++
	node.ID = m.nextID
	m.nodes = append(m.nodes, *node)
	return nil
}

func (m *mockSchemaNodeRepo) ListByActivity(_ context.Context, activityID int64) ([]model.SchemaNode, error) {
	var result []model.SchemaNode
	for _, n := range m.nodes {
		if n.ActivityID == activityID {
			result = append(result, n)
		}
	}
	return result, nil
}

func (m *mockSchemaNodeRepo) DeleteByActivity(_ context.Context, activityID int64) error {
	kept := m.nodes[:0]
	for _, n := range m.nodes {
		if n.ActivityID != activityID {
			kept = append(kept, n)
		}
	}
	m.nodes = kept
	return nil
}

// ── Mock AnswerRepository ──

type mockAnswerRepo struct {
	rows   []model.AnswerRow
	nextID int64
}

func newMockAnswerRepo() *mockAnswerRepo {
	return &mockAnswerRepo{}
}

func (m *mockAnswerRepo) CreateBatch(_ context.Context, rows []model.AnswerRow) error {
	for _, r := range rows {
		m.nextID++
		r.ID = m.nextID
		m.rows = append(m.rows, r)
	}
	return nil
}

func (m *mockAnswerRepo) ListByActivity(_ context.Context, activityID int64) ([]model.AnswerRow, error) {
	var result []model.AnswerRow
	for _, r := range m.rows {
		if r.ActivityID == activityID {
			result = append(result, r)
		}
	}
	return result, nil
}

func (m *mockAnswerRepo) MaxApplicantNumber(_ context.Context, activityID int64) (int, error) {
	maxNum := 0
	for _, r := range m.rows {
		if r.ActivityID == activityID && r.ApplicantNumber > maxNum {
			maxNum = r.ApplicantNumber
		}
	}
	return maxNum, nil
}

func (m *mockAnswerRepo) DeleteByApplicant(_ context.Context, activityID int64, applicantNumber int) (int64, error) {
	var n int64
	kept := m.rows[:0]
	for _, r := range m.rows {
		if r.ActivityID == activityID && r.ApplicantNumber == applicantNumber {
			n++
			continue
		}
		kept = append(kept, r)
	}
	m.rows = kept
	return n, nil
}

func (m *mockAnswerRepo) DeleteByActivity(_ context.Context, activityID int64) error {
	kept := m.rows[:0]
	for _, r := range m.rows {
		if r.ActivityID != activityID {
			kept = append(kept, r)
		}
	}
	m.rows = kept
	return nil
}

func (m *mockAnswerRepo) ExistsValue(_ context.Context, activityID, nodeID int64, value string) (bool, error) {
	for _, r := range m.rows {
		if r.ActivityID == activityID && r.NodeID == nodeID && r.Value == value {
			return true, nil
		}
	}
	return false, nil
}

// ── Mock CspFreeInfoRepository ──

type mockCspFreeRepo struct {
	infos map[string]*model.CspFreeInfo
}

func newMockCspFreeRepo() *mockCspFreeRepo {
	return &mockCspFreeRepo{infos: make(map[string]*model.CspFreeInfo)}
}

func (m *mockCspFreeRepo) GetBySchoolID(_ context.Context, schoolID string) (*model.CspFreeInfo, error) {
	if info, ok := m.infos[schoolID]; ok {
		return info, nil
	}
	return nil, gorm.ErrRecordNotFound
}

// ── Mock CspAuditRepository（并发安全，用于审核竞争测试） ──

type mockCspAuditRepo struct {
	mu     sync.Mutex
	audits map[int64]*model.CspAudit
	nextID int64
}

func newMockCspAuditRepo() *mockCspAuditRepo {
	return &mockCspAuditRepo{audits: make(map[int64]*model.CspAudit)}
}

func (m *mockCspAuditRepo) Create(_ context.Context, audit *model.CspAudit) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	audit.ID = m.nextID
	audit.CreatedAt = time.Now()
	audit.UpdatedAt = audit.CreatedAt
	cp := *audit
	m.audits[audit.ID] = &cp
	return nil
}

func (m *mockCspAuditRepo) GetByID(_ context.Context, id int64) (*model.CspAudit, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if a, ok := m.audits[id]; ok {
		cp := *a
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockCspAuditRepo) ListBySchoolID(_ context.Context, schoolID string) ([]model.CspAudit, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var result []model.CspAudit
	for _, a := range m.audits {
		if a.SchoolID == schoolID {
			result = append(result, *a)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID > result[j].ID })
	return result, nil
}

func (m *mockCspAuditRepo) List(_ context.Context, status string, offset, limit int) ([]model.CspAudit, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var all []model.CspAudit
	for _, a := range m.audits {
		if status != "" && a.Status != status {
			continue
		}
		all = append(all, *a)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID < all[j].ID })

	total := int64(len(all))
	if offset >= len(all) {
		return nil, total, nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], total, nil
}

func (m *mockCspAuditRepo) ReviewIfUnchecked(_ context.Context, id int64, status string, comment *string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.audits[id]
	if !ok || a.Status != model.AuditStatusUncheck {
		return false, nil
	}
	a.Status = status
	a.Comment = comment
	a.UpdatedAt = time.Now()
	return true, nil
}

// ── 测试辅助 ──

type mockRepos struct {
	admin    *mockAdminRepo
	activity *mockActivityRepo
	node     *mockSchemaNodeRepo
	answer   *mockAnswerRepo
	free     *mockCspFreeRepo
	audit    *mockCspAuditRepo
}

// newMockRepository 组装未绑定数据库连接的 Repository，Transaction 直接执行回调
func newMockRepository() (*repository.Repository, *mockRepos) {
	m := &mockRepos{
		admin:    newMockAdminRepo(),
		activity: newMockActivityRepo(),
		node:     newMockSchemaNodeRepo(),
		answer:   newMockAnswerRepo(),
		free:     newMockCspFreeRepo(),
		audit:    newMockCspAuditRepo(),
	}
	repo := &repository.Repository{
		Admin:      m.admin,
		Activity:   m.activity,
		SchemaNode: m.node,
		Answer:     m.answer,
		CspFree:    m.free,
		CspAudit:   m.audit,
	}
	return repo, m
}
