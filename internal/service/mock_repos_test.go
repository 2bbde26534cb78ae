package service

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"gorm.io/gorm"

	"github.com/medrhouma/Projet-d-integration-sub000/config"
	"github.com/medrhouma/Projet-d-integration-sub000/internal/model"
	"github.com/medrhouma/Projet-d-integration-sub000/internal/repository"
	pkgerrors "github.com/medrhouma/Projet-d-integration-sub000/pkg/errors"
)

// ── Mock CourseSessionRepository ──
//
// 用一把互斥锁模拟按日期加锁的事务：CreateWithDateLock 与 DeleteAll 整体串行执行。

type mockCourseSessionRepo struct {
	mu       sync.Mutex
	sessions map[string]*model.CourseSession
	order    []string
	seq      int

	createErr error // 非空时 CreateWithDateLock 在 check 通过后返回该错误
	listErr   error
	inserts   int
}

var _ repository.CourseSessionRepository = (*mockCourseSessionRepo)(nil)

func newMockCourseSessionRepo() *mockCourseSessionRepo {
	return &mockCourseSessionRepo{sessions: make(map[string]*model.CourseSession)}
}

// seed 直接写入一条课程，绕过冲突检测
func (m *mockCourseSessionRepo) seed(s model.CourseSession) *model.CourseSession {
	m.mu.Lock()
	defer m.mu.Unlock()
	if s.CourseSessionID == "" {
		m.seq++
		s.CourseSessionID = fmt.Sprintf("seed-%d", m.seq)
	}
	s.SessionDate = model.CivilDate(s.SessionDate)
	m.sessions[s.CourseSessionID] = &s
	m.order = append(m.order, s.CourseSessionID)
	return &s
}

func (m *mockCourseSessionRepo) alive(id string) (*model.CourseSession, bool) {
	s, ok := m.sessions[id]
	if !ok || s.DeletedAt.Valid {
		return nil, false
	}
	return s, true
}

func (m *mockCourseSessionRepo) GetByID(_ context.Context, id string) (*model.CourseSession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if s, ok := m.alive(id); ok {
		cp := *s
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockCourseSessionRepo) listByDateLocked(date time.Time) []model.CourseSession {
	var result []model.CourseSession
	for _, id := range m.order {
		if s, ok := m.alive(id); ok && model.SameDate(s.SessionDate, date) {
			result = append(result, *s)
		}
	}
	return result
}

func (m *mockCourseSessionRepo) ListByFilter(_ context.Context, f model.SessionFilter) ([]model.CourseSession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.listErr != nil {
		return nil, m.listErr
	}
	from, to := model.CivilDate(f.From), model.CivilDate(f.To)
	var result []model.CourseSession
	for _, id := range m.order {
		s, ok := m.alive(id)
		if !ok {
			continue
		}
		d := model.CivilDate(s.SessionDate)
		if d.Before(from) || d.After(to) {
			continue
		}
		if f.GroupID != "" && s.GroupID != f.GroupID {
			continue
		}
		if f.TeacherID != "" && (s.TeacherID == nil || *s.TeacherID != f.TeacherID) {
			continue
		}
		if f.RoomID != "" && (s.RoomID == nil || *s.RoomID != f.RoomID) {
			continue
		}
		if f.SubjectID != "" && s.SubjectID != f.SubjectID {
			continue
		}
		result = append(result, *s)
	}
	return result, nil
}

func (m *mockCourseSessionRepo) CreateWithDateLock(_ context.Context, session *model.CourseSession, check func([]model.CourseSession) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.listErr != nil {
		return m.listErr
	}
	if err := check(m.listByDateLocked(session.SessionDate)); err != nil {
		return err
	}
	if m.createErr != nil {
		return m.createErr
	}

	m.seq++
	session.CourseSessionID = fmt.Sprintf("sess-%d", m.seq)
	session.CreatedAt = time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	cp := *session
	cp.SessionDate = model.CivilDate(cp.SessionDate)
	m.sessions[cp.CourseSessionID] = &cp
	m.order = append(m.order, cp.CourseSessionID)
	m.inserts++
	return nil
}

func (m *mockCourseSessionRepo) Delete(_ context.Context, id string, deletedBy string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.alive(id)
	if !ok {
		return gorm.ErrRecordNotFound
	}
	s.DeletedAt = gorm.DeletedAt{Time: time.Now(), Valid: true}
	s.DeletedBy = &deletedBy
	return nil
}

func (m *mockCourseSessionRepo) DeleteAll(_ context.Context, ids []string, deletedBy string) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var missing []string
	seen := make(map[string]bool)
	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true
		if _, ok := m.alive(id); !ok {
			missing = append(missing, id)
		}
	}
	if len(missing) > 0 {
		return missing, pkgerrors.ErrRecordsMissing
	}
	now := time.Now()
	for id := range seen {
		s := m.sessions[id]
		s.DeletedAt = gorm.DeletedAt{Time: now, Valid: true}
		s.DeletedBy = &deletedBy
	}
	return nil, nil
}

// aliveCount 未删除课程数
func (m *mockCourseSessionRepo) aliveCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for id := range m.sessions {
		if _, ok := m.alive(id); ok {
			n++
		}
	}
	return n
}

// ── 测试辅助 ──

const testMaxListDays = 31

func newTestRepository(sessions *mockCourseSessionRepo) *repository.Repository {
	return &repository.Repository{CourseSession: sessions}
}

func newTestGrid(t *testing.T) *SlotGrid {
	t.Helper()
	grid, err := NewSlotGrid(config.TimetableConfig{
		Slots:         config.DefaultSlots(),
		SlotTolerance: 5 * time.Minute,
	})
	if err != nil {
		t.Fatalf("构建默认网格失败: %v", err)
	}
	return grid
}

func mustDate(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := model.ParseDate(s)
	if err != nil {
		t.Fatalf("解析日期 %q 失败: %v", s, err)
	}
	return d
}

func tod(s string) model.TimeOfDay { return model.MustParseTimeOfDay(s) }

func ref(s string) *string { return &s }
