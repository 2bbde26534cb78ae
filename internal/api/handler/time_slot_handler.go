package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/medrhouma/Projet-d-integration-sub000/internal/service"
	"github.com/medrhouma/Projet-d-integration-sub000/pkg/response"
)

// TimeSlotHandler 标准时段 HTTP 处理器
type TimeSlotHandler struct {
	timeSlotSvc service.TimeSlotService
}

// NewTimeSlotHandler 创建 TimeSlotHandler
func NewTimeSlotHandler(timeSlotSvc service.TimeSlotService) *TimeSlotHandler {
	return &TimeSlotHandler{timeSlotSvc: timeSlotSvc}
}

// ListTimeSlots 获取每周标准时段网格（上课日 + 时段，含午休）
// GET /api/v1/time-slots
func (h *TimeSlotHandler) ListTimeSlots(c *gin.Context) {
	response.OK(c, h.timeSlotSvc.List())
}
