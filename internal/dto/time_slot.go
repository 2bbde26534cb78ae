package dto

// ── 标准时段 DTO ──

// SlotBrief 标准时段信息
type SlotBrief struct {
	Index     int    `json:"index"`
	StartTime string `json:"start_time"` // "08:30"（UTC 时钟）
	EndTime   string `json:"end_time"`
	IsPause   bool   `json:"is_pause"`
}

// TimeSlotListResponse 标准时段网格
type TimeSlotListResponse struct {
	Days  []string    `json:"days"`
	Slots []SlotBrief `json:"slots"`
}
