package model

import "time"

// CourseSession 课程安排表 — 对应 course_sessions
// 一条记录是一次具体日期上的授课；时间调整按"删除后重建"处理，不做原地更新
type CourseSession struct {
	CourseSessionID string    `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"course_session_id"`
	SessionDate     time.Time `gorm:"type:date;not null;index"                       json:"session_date"`
	StartTime       TimeOfDay `gorm:"type:time;not null"                             json:"start_time"`
	EndTime         TimeOfDay `gorm:"type:time;not null"                             json:"end_time"`
	SubjectID       string    `gorm:"type:uuid;not null"                             json:"subject_id"`
	GroupID         string    `gorm:"type:uuid;not null"                             json:"group_id"`
	TeacherID       *string   `gorm:"type:uuid"                                      json:"teacher_id,omitempty"`
	RoomID          *string   `gorm:"type:uuid"                                      json:"room_id,omitempty"`
	SoftDeleteModel

	// 关联（只读目录，仅用于展示与导出）
	Subject *Subject      `gorm:"foreignKey:SubjectID;references:SubjectID" json:"subject,omitempty"`
	Group   *StudentGroup `gorm:"foreignKey:GroupID;references:GroupID"     json:"group,omitempty"`
	Teacher *Teacher      `gorm:"foreignKey:TeacherID;references:TeacherID" json:"teacher,omitempty"`
	Room    *Room         `gorm:"foreignKey:RoomID;references:RoomID"       json:"room,omitempty"`
}

// TableName 指定表名
func (CourseSession) TableName() string { return "course_sessions" }

// SessionFilter 课程查询条件
// 日期区间为闭区间 [From, To]；资源 ID 为空表示不过滤
type SessionFilter struct {
	From      time.Time
	To        time.Time
	GroupID   string
	TeacherID string
	RoomID    string
	SubjectID string
}
