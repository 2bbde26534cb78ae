package service

import (
	"fmt"
	"time"

	"github.com/medrhouma/Projet-d-integration-sub000/internal/model"
)

// ConflictKind 冲突维度
type ConflictKind string

const (
	ConflictRoom    ConflictKind = "room"
	ConflictTeacher ConflictKind = "teacher"
	ConflictGroup   ConflictKind = "group"
)

// Conflict 一次检测出的冲突，不落库
type Conflict struct {
	Kind      ConflictKind
	SessionID string
	Message   string
}

// Candidate 待安排的课程
type Candidate struct {
	Date      time.Time
	Start     model.TimeOfDay
	End       model.TimeOfDay
	GroupID   string
	TeacherID *string
	RoomID    *string
}

// Overlaps 半开区间 [s1,e1) 与 [s2,e2) 是否相交；首尾相接不算重叠
func Overlaps(s1, e1, s2, e2 model.TimeOfDay) bool {
	return s1 < e2 && s2 < e1
}

// DetectConflicts 返回候选课程与同日已有课程在教室、教师、班级三个维度上的全部冲突。
// 同一条已有课程可同时产生多种冲突；输出顺序为已有课程顺序，其次 room、teacher、group。
// 不同日期的课程被忽略。
func DetectConflicts(candidate Candidate, existing []model.CourseSession) []Conflict {
	var conflicts []Conflict
	for i := range existing {
		e := &existing[i]
		if !model.SameDate(e.SessionDate, candidate.Date) {
			continue
		}
		if !Overlaps(candidate.Start, candidate.End, e.StartTime, e.EndTime) {
			continue
		}

		window := fmt.Sprintf("%s %s-%s", model.CivilDate(e.SessionDate).Format(model.DateLayout), e.StartTime, e.EndTime)
		if sameRef(candidate.RoomID, e.RoomID) {
			conflicts = append(conflicts, Conflict{
				Kind:      ConflictRoom,
				SessionID: e.CourseSessionID,
				Message:   fmt.Sprintf("教室 %s 在 %s 已被课程 %s 占用", *e.RoomID, window, e.CourseSessionID),
			})
		}
		if sameRef(candidate.TeacherID, e.TeacherID) {
			conflicts = append(conflicts, Conflict{
				Kind:      ConflictTeacher,
				SessionID: e.CourseSessionID,
				Message:   fmt.Sprintf("教师 %s 在 %s 已有课程 %s", *e.TeacherID, window, e.CourseSessionID),
			})
		}
		if candidate.GroupID != "" && candidate.GroupID == e.GroupID {
			conflicts = append(conflicts, Conflict{
				Kind:      ConflictGroup,
				SessionID: e.CourseSessionID,
				Message:   fmt.Sprintf("班级 %s 在 %s 已有课程 %s", e.GroupID, window, e.CourseSessionID),
			})
		}
	}
	return conflicts
}

// sameRef 两个可选引用均存在且相等
func sameRef(a, b *string) bool {
	return a != nil && b != nil && *a != "" && *a == *b
}
