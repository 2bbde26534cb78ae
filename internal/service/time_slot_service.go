package service

import (
	"github.com/medrhouma/Projet-d-integration-sub000/internal/dto"
)

// TimeSlotService 标准时段查询接口
// 网格来自配置，进程内只读，因此不经过 Repository
type TimeSlotService interface {
	List() *dto.TimeSlotListResponse
}

type timeSlotService struct {
	grid *SlotGrid
}

// NewTimeSlotService 创建 TimeSlotService 实例
func NewTimeSlotService(grid *SlotGrid) TimeSlotService {
	return &timeSlotService{grid: grid}
}

// ────────────────────── List ──────────────────────

func (s *timeSlotService) List() *dto.TimeSlotListResponse {
	return &dto.TimeSlotListResponse{
		Days:  WeekdayNames[:],
		Slots: slotBriefs(s.grid),
	}
}

// ── 内部辅助方法 ──

func slotBriefs(grid *SlotGrid) []dto.SlotBrief {
	slots := grid.Slots()
	out := make([]dto.SlotBrief, 0, len(slots))
	for i, sl := range slots {
		out = append(out, dto.SlotBrief{
			Index:     i,
			StartTime: sl.Start.String(),
			EndTime:   sl.End.String(),
			IsPause:   sl.IsPause,
		})
	}
	return out
}
