package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/medrhouma/Projet-d-integration-sub000/internal/dto"
	"github.com/medrhouma/Projet-d-integration-sub000/internal/model"
	"github.com/medrhouma/Projet-d-integration-sub000/internal/repository"
)

// WeekGrid 周课表网格：Cells[dayIndex][slotIndex] 为该格内的全部课程
// 格子是列表而非单值：未按班级过滤时同一时段可有多个班级上课
type WeekGrid struct {
	WeekStart time.Time
	Cells     [DaysPerWeek][][]model.CourseSession
}

// BuildWeekGrid 把课程投影到锚点所在周的网格上。
// 日期不在本周、开始时刻无法映射到标准时段、或映射到午休的课程都不进入网格。
func BuildWeekGrid(grid *SlotGrid, sessions []model.CourseSession, anchor time.Time) WeekGrid {
	wg := WeekGrid{WeekStart: grid.WeekStart(anchor)}
	for d := 0; d < DaysPerWeek; d++ {
		wg.Cells[d] = make([][]model.CourseSession, grid.NumSlots())
	}

	for _, s := range BuildFlatList(sessions) {
		day, ok := grid.DayIndex(anchor, s.SessionDate)
		if !ok {
			continue
		}
		slot, ok := grid.LocateSlot(s.StartTime)
		if !ok {
			continue
		}
		if _, _, isPause, _ := grid.SlotWindow(slot); isPause {
			continue
		}
		wg.Cells[day][slot] = append(wg.Cells[day][slot], s)
	}
	return wg
}

// BuildFlatList 按 (日期, 开始时刻) 稳定排序，返回新切片
func BuildFlatList(sessions []model.CourseSession) []model.CourseSession {
	out := make([]model.CourseSession, len(sessions))
	copy(out, sessions)
	sort.SliceStable(out, func(i, j int) bool {
		di, dj := model.CivilDate(out[i].SessionDate), model.CivilDate(out[j].SessionDate)
		if !di.Equal(dj) {
			return di.Before(dj)
		}
		return out[i].StartTime < out[j].StartTime
	})
	return out
}

// ── 查询服务 ──

// ScheduleViewService 课表只读查询接口
// 所有查询走同一条参数化路径 CourseSessionRepository.ListByFilter
type ScheduleViewService interface {
	List(ctx context.Context, req *dto.SessionListRequest) ([]dto.SessionResponse, error)
	WeekGrid(ctx context.Context, req *dto.WeekGridRequest) (*dto.WeekGridResponse, error)
}

type scheduleViewService struct {
	repo        *repository.Repository
	grid        *SlotGrid
	maxListDays int
	logger      *zap.Logger
}

// NewScheduleViewService 创建 ScheduleViewService 实例
// maxListDays 限制 List（及基于它的 ICS 导出）一次查询的日期跨度，含首尾两天
func NewScheduleViewService(repo *repository.Repository, grid *SlotGrid, maxListDays int, logger *zap.Logger) ScheduleViewService {
	return &scheduleViewService{repo: repo, grid: grid, maxListDays: maxListDays, logger: logger}
}

// ────────────────────── List ──────────────────────

func (s *scheduleViewService) List(ctx context.Context, req *dto.SessionListRequest) ([]dto.SessionResponse, error) {
	from, err := model.ParseDate(req.From)
	if err != nil {
		return nil, newValidationError("from", "日期格式应为 YYYY-MM-DD")
	}
	to, err := model.ParseDate(req.To)
	if err != nil {
		return nil, newValidationError("to", "日期格式应为 YYYY-MM-DD")
	}
	if from.After(to) {
		return nil, newValidationError("from", "起始日期不能晚于结束日期")
	}
	if days := model.DaysBetween(from, to) + 1; days > s.maxListDays {
		return nil, newValidationError("to", fmt.Sprintf("日期跨度不能超过 %d 天", s.maxListDays))
	}

	sessions, err := s.repo.CourseSession.ListByFilter(ctx, model.SessionFilter{
		From:      from,
		To:        to,
		GroupID:   req.GroupID,
		TeacherID: req.TeacherID,
		RoomID:    req.RoomID,
		SubjectID: req.SubjectID,
	})
	if err != nil {
		s.logger.Error("查询课程列表失败", zap.Error(err))
		return nil, storeError(err)
	}

	ordered := BuildFlatList(sessions)
	result := make([]dto.SessionResponse, 0, len(ordered))
	for i := range ordered {
		result = append(result, *toSessionResponse(s.grid, &ordered[i]))
	}
	return result, nil
}

// ────────────────────── WeekGrid ──────────────────────

func (s *scheduleViewService) WeekGrid(ctx context.Context, req *dto.WeekGridRequest) (*dto.WeekGridResponse, error) {
	anchor, err := model.ParseDate(req.Week)
	if err != nil {
		return nil, newValidationError("week", "日期格式应为 YYYY-MM-DD")
	}

	weekStart := s.grid.WeekStart(anchor)
	sessions, err := s.repo.CourseSession.ListByFilter(ctx, model.SessionFilter{
		From:      weekStart,
		To:        weekStart.AddDate(0, 0, DaysPerWeek-1),
		GroupID:   req.GroupID,
		TeacherID: req.TeacherID,
		RoomID:    req.RoomID,
	})
	if err != nil {
		s.logger.Error("查询周课表失败", zap.String("week", req.Week), zap.Error(err))
		return nil, storeError(err)
	}

	wg := BuildWeekGrid(s.grid, sessions, anchor)
	return toWeekGridResponse(s.grid, wg), nil
}

// ── 内部辅助方法 ──

func toWeekGridResponse(grid *SlotGrid, wg WeekGrid) *dto.WeekGridResponse {
	resp := &dto.WeekGridResponse{
		WeekStart: wg.WeekStart.Format(model.DateLayout),
		Days:      WeekdayNames[:],
		Slots:     slotBriefs(grid),
		Cells:     make([][][]dto.SessionResponse, DaysPerWeek),
	}
	for d := 0; d < DaysPerWeek; d++ {
		resp.Cells[d] = make([][]dto.SessionResponse, len(wg.Cells[d]))
		for sl, cell := range wg.Cells[d] {
			items := make([]dto.SessionResponse, 0, len(cell))
			for i := range cell {
				items = append(items, *toSessionResponse(grid, &cell[i]))
			}
			resp.Cells[d][sl] = items
		}
	}
	return resp
}

func toSessionResponse(grid *SlotGrid, s *model.CourseSession) *dto.SessionResponse {
	resp := &dto.SessionResponse{
		ID:        s.CourseSessionID,
		Date:      model.CivilDate(s.SessionDate).Format(model.DateLayout),
		StartTime: s.StartTime.String(),
		EndTime:   s.EndTime.String(),
		SubjectID: s.SubjectID,
		GroupID:   s.GroupID,
		TeacherID: s.TeacherID,
		RoomID:    s.RoomID,
	}
	if !s.CreatedAt.IsZero() {
		resp.CreatedAt = s.CreatedAt.UTC().Format(time.RFC3339)
	}
	if grid != nil {
		if idx, ok := grid.LocateSlot(s.StartTime); ok {
			resp.SlotIndex = &idx
		}
	}

	if s.Subject != nil {
		resp.SubjectName = s.Subject.Name
	}
	if s.Group != nil {
		resp.GroupName = s.Group.Name
	}
	if s.Teacher != nil {
		resp.TeacherName = s.Teacher.Name
	}
	if s.Room != nil {
		resp.RoomName = s.Room.Name
	}
	return resp
}
