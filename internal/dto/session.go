package dto

// ── 课程安排模块 DTO ──

// CreateSessionRequest 新增课程安排请求
// start_time/end_time 接受 "HH:MM"（UTC 时钟）或完整 RFC3339 时间戳（仅取 UTC 时分）
type CreateSessionRequest struct {
	Date      string  `json:"date"       binding:"required,civildate"` // "2025-03-10"
	StartTime string  `json:"start_time" binding:"required,timeofday"`
	EndTime   string  `json:"end_time"   binding:"required,timeofday"`
	SubjectID string  `json:"subject_id" binding:"required,uuid"`
	GroupID   string  `json:"group_id"   binding:"required,uuid"`
	TeacherID *string `json:"teacher_id" binding:"omitempty,uuid"`
	RoomID    *string `json:"room_id"    binding:"omitempty,uuid"`
	SlotIndex *int    `json:"slot_index" binding:"omitempty,min=0"` // 可选：声明所选标准时段，需与起止时间一致
}

// BulkDeleteSessionsRequest 批量删除请求（全部成功或全部失败）
type BulkDeleteSessionsRequest struct {
	IDs []string `json:"ids" binding:"required,min=1,dive,uuid"`
}

// BulkDeleteSessionsResponse 批量删除结果
type BulkDeleteSessionsResponse struct {
	Deleted int `json:"deleted"`
}

// SessionListRequest 课程列表查询参数
// from/to 为闭区间；资源过滤均可选
type SessionListRequest struct {
	From      string `form:"from"       binding:"required,civildate"`
	To        string `form:"to"         binding:"required,civildate"`
	GroupID   string `form:"group_id"   binding:"omitempty,uuid"`
	TeacherID string `form:"teacher_id" binding:"omitempty,uuid"`
	RoomID    string `form:"room_id"    binding:"omitempty,uuid"`
	SubjectID string `form:"subject_id" binding:"omitempty,uuid"`
}

// WeekGridRequest 周课表查询参数
type WeekGridRequest struct {
	Week      string `form:"week"       binding:"required,civildate"` // 周锚点：该周任意一天
	GroupID   string `form:"group_id"   binding:"omitempty,uuid"`
	TeacherID string `form:"teacher_id" binding:"omitempty,uuid"`
	RoomID    string `form:"room_id"    binding:"omitempty,uuid"`
}

// SessionResponse 课程安排信息响应
type SessionResponse struct {
	ID          string  `json:"id"`
	Date        string  `json:"date"`
	StartTime   string  `json:"start_time"`
	EndTime     string  `json:"end_time"`
	SubjectID   string  `json:"subject_id"`
	SubjectName string  `json:"subject_name,omitempty"`
	GroupID     string  `json:"group_id"`
	GroupName   string  `json:"group_name,omitempty"`
	TeacherID   *string `json:"teacher_id,omitempty"`
	TeacherName string  `json:"teacher_name,omitempty"`
	RoomID      *string `json:"room_id,omitempty"`
	RoomName    string  `json:"room_name,omitempty"`
	SlotIndex   *int    `json:"slot_index,omitempty"` // 能映射到标准时段时返回
	CreatedAt   string  `json:"created_at,omitempty"`
}

// ConflictResponse 单条冲突
type ConflictResponse struct {
	Kind      string `json:"kind"` // room | teacher | group
	SessionID string `json:"session_id"`
	Message   string `json:"message"`
}

// PlacementConflictResponse 409 响应体中的冲突列表
type PlacementConflictResponse struct {
	Conflicts []ConflictResponse `json:"conflicts"`
}

// WeekGridResponse 周课表网格
// Cells[dayIndex][slotIndex] 为该格内全部课程；午休格恒为空
type WeekGridResponse struct {
	WeekStart string                `json:"week_start"`
	Days      []string              `json:"days"`
	Slots     []SlotBrief           `json:"slots"`
	Cells     [][][]SessionResponse `json:"cells"`
}
