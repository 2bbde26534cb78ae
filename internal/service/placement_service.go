package service

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/medrhouma/Projet-d-integration-sub000/internal/dto"
	"github.com/medrhouma/Projet-d-integration-sub000/internal/model"
	"github.com/medrhouma/Projet-d-integration-sub000/internal/repository"
	pkgerrors "github.com/medrhouma/Projet-d-integration-sub000/pkg/errors"
)

// PlacementService 课程安排的唯一写入口
//
// 设计说明：
//   - Create 的"读取当日课程 → 冲突检测 → 写入"在同一事务内完成，并按日期加锁，
//     两个互相冲突的并发请求只有一个能成功
//   - 不提供原地修改：调整时间或资源按删除后重建处理
//   - BulkDelete 全部成功或全部回滚
type PlacementService interface {
	Create(ctx context.Context, req *dto.CreateSessionRequest, callerID string) (*dto.SessionResponse, error)
	GetByID(ctx context.Context, id string) (*dto.SessionResponse, error)
	Delete(ctx context.Context, id string, callerID string) error
	BulkDelete(ctx context.Context, req *dto.BulkDeleteSessionsRequest, callerID string) (*dto.BulkDeleteSessionsResponse, error)
}

type placementService struct {
	repo          *repository.Repository
	grid          *SlotGrid
	maxBulkDelete int
	logger        *zap.Logger
}

// NewPlacementService 创建 PlacementService 实例
func NewPlacementService(repo *repository.Repository, grid *SlotGrid, maxBulkDelete int, logger *zap.Logger) PlacementService {
	return &placementService{repo: repo, grid: grid, maxBulkDelete: maxBulkDelete, logger: logger}
}

// ────────────────────── Create ──────────────────────

func (s *placementService) Create(ctx context.Context, req *dto.CreateSessionRequest, callerID string) (*dto.SessionResponse, error) {
	candidate, err := s.parseCandidate(req)
	if err != nil {
		return nil, err
	}

	session := &model.CourseSession{
		SessionDate: candidate.Date,
		StartTime:   candidate.Start,
		EndTime:     candidate.End,
		SubjectID:   strings.TrimSpace(req.SubjectID),
		GroupID:     candidate.GroupID,
		TeacherID:   candidate.TeacherID,
		RoomID:      candidate.RoomID,
	}
	session.CreatedBy = &callerID
	session.UpdatedBy = &callerID

	err = s.repo.CourseSession.CreateWithDateLock(ctx, session, func(existing []model.CourseSession) error {
		if conflicts := DetectConflicts(candidate, existing); len(conflicts) > 0 {
			return &PlacementConflictError{Conflicts: conflicts}
		}
		return nil
	})
	if err != nil {
		var conflictErr *PlacementConflictError
		switch {
		case errors.As(err, &conflictErr):
			s.logger.Info("课程安排存在冲突",
				zap.String("date", req.Date),
				zap.String("group_id", candidate.GroupID),
				zap.Int("conflicts", len(conflictErr.Conflicts)),
			)
			return nil, conflictErr
		case errors.Is(err, pkgerrors.ErrInvalidReference):
			return nil, newValidationError("reference", err.Error())
		default:
			s.logger.Error("创建课程安排失败", zap.String("date", req.Date), zap.Error(err))
			return nil, storeError(err)
		}
	}

	s.logger.Info("课程安排已创建",
		zap.String("id", session.CourseSessionID),
		zap.String("date", req.Date),
		zap.String("caller", callerID),
	)

	// 重新加载以获取目录名称；失败不影响本次写入结果
	created, err := s.repo.CourseSession.GetByID(ctx, session.CourseSessionID)
	if err != nil {
		s.logger.Warn("重新加载课程安排失败", zap.String("id", session.CourseSessionID), zap.Error(err))
		created = session
	}
	return toSessionResponse(s.grid, created), nil
}

// ────────────────────── GetByID ──────────────────────

func (s *placementService) GetByID(ctx context.Context, id string) (*dto.SessionResponse, error) {
	session, err := s.repo.CourseSession.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSessionNotFound
		}
		s.logger.Error("查询课程安排失败", zap.String("id", id), zap.Error(err))
		return nil, storeError(err)
	}
	return toSessionResponse(s.grid, session), nil
}

// ────────────────────── Delete ──────────────────────

func (s *placementService) Delete(ctx context.Context, id string, callerID string) error {
	if err := s.repo.CourseSession.Delete(ctx, id, callerID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrSessionNotFound
		}
		s.logger.Error("删除课程安排失败", zap.String("id", id), zap.Error(err))
		return storeError(err)
	}

	s.logger.Info("课程安排已删除", zap.String("id", id), zap.String("caller", callerID))
	return nil
}

// ────────────────────── BulkDelete ──────────────────────

func (s *placementService) BulkDelete(ctx context.Context, req *dto.BulkDeleteSessionsRequest, callerID string) (*dto.BulkDeleteSessionsResponse, error) {
	if len(req.IDs) == 0 {
		return nil, newValidationError("ids", "至少需要一个课程安排 ID")
	}
	unique := countUnique(req.IDs)
	if unique > s.maxBulkDelete {
		return nil, ErrBulkDeleteTooMany
	}

	missing, err := s.repo.CourseSession.DeleteAll(ctx, req.IDs, callerID)
	if err != nil {
		if errors.Is(err, pkgerrors.ErrRecordsMissing) {
			return nil, &MissingSessionsError{IDs: missing}
		}
		s.logger.Error("批量删除课程安排失败", zap.Int("count", unique), zap.Error(err))
		return nil, storeError(err)
	}

	s.logger.Info("批量删除课程安排完成", zap.Int("count", unique), zap.String("caller", callerID))
	return &dto.BulkDeleteSessionsResponse{Deleted: unique}, nil
}

// ── 内部辅助方法 ──

// parseCandidate 结构性校验并转换为 Candidate；与冲突检测无关的错误都在这里返回
func (s *placementService) parseCandidate(req *dto.CreateSessionRequest) (Candidate, error) {
	var c Candidate

	date, err := model.ParseDate(req.Date)
	if err != nil {
		return c, newValidationError("date", "日期格式应为 YYYY-MM-DD")
	}
	start, err := model.ParseTimeOfDay(req.StartTime)
	if err != nil {
		return c, newValidationError("start_time", "开始时间格式非法")
	}
	end, err := model.ParseTimeOfDay(req.EndTime)
	if err != nil {
		return c, newValidationError("end_time", "结束时间格式非法")
	}
	if end <= start {
		return c, newValidationError("end_time", "结束时间必须晚于开始时间")
	}
	if strings.TrimSpace(req.GroupID) == "" {
		return c, newValidationError("group_id", "班级不能为空")
	}
	if strings.TrimSpace(req.SubjectID) == "" {
		return c, newValidationError("subject_id", "科目不能为空")
	}

	if req.SlotIndex != nil {
		slotStart, slotEnd, isPause, err := s.grid.SlotWindow(*req.SlotIndex)
		if err != nil {
			return c, newValidationError("slot_index", "时段序号超出范围")
		}
		if isPause {
			return c, newValidationError("slot_index", "午休时段不能安排课程")
		}
		if slotStart != start || slotEnd != end {
			return c, newValidationError("slot_index", "所选时段与起止时间不一致")
		}
	}

	c = Candidate{
		Date:      date,
		Start:     start,
		End:       end,
		GroupID:   strings.TrimSpace(req.GroupID),
		TeacherID: optionalRef(req.TeacherID),
		RoomID:    optionalRef(req.RoomID),
	}
	return c, nil
}

// optionalRef 空字符串视为未指定
func optionalRef(p *string) *string {
	if p == nil {
		return nil
	}
	v := strings.TrimSpace(*p)
	if v == "" {
		return nil
	}
	return &v
}

func countUnique(ids []string) int {
	seen := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		seen[id] = struct{}{}
	}
	return len(seen)
}
