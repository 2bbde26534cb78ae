package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/medrhouma/Projet-d-integration-sub000/internal/model"
	pkgerrors "github.com/medrhouma/Projet-d-integration-sub000/pkg/errors"
)

// pgForeignKeyViolation PostgreSQL 外键约束错误码
const pgForeignKeyViolation = "23503"

// CourseSessionRepository 课程安排数据访问接口
type CourseSessionRepository interface {
	GetByID(ctx context.Context, id string) (*model.CourseSession, error)
	// ListByFilter 按日期区间与资源过滤，加载目录关联，按 (日期, 开始时间) 排序
	ListByFilter(ctx context.Context, filter model.SessionFilter) ([]model.CourseSession, error)
	// CreateWithDateLock 在单个事务中：锁定日期 → 读取当日课程 → 调用 check → check 通过后插入。
	// 同一日期的并发调用被串行化，check 看到的是不含幻读的一致快照。
	CreateWithDateLock(ctx context.Context, session *model.CourseSession, check func(existing []model.CourseSession) error) error
	// Delete 软删除；记录不存在返回 gorm.ErrRecordNotFound
	Delete(ctx context.Context, id string, deletedBy string) error
	// DeleteAll 批量软删除，全部成功或全部回滚；有缺失时返回缺失 ID 与 ErrRecordsMissing
	DeleteAll(ctx context.Context, ids []string, deletedBy string) (missing []string, err error)
}

type courseSessionRepo struct {
	db            *gorm.DB
	lockNamespace int32
}

// NewCourseSessionRepo 创建 CourseSessionRepository 实例
func NewCourseSessionRepo(db *gorm.DB, lockNamespace int32) CourseSessionRepository {
	return &courseSessionRepo{db: db, lockNamespace: lockNamespace}
}

func (r *courseSessionRepo) GetByID(ctx context.Context, id string) (*model.CourseSession, error) {
	var session model.CourseSession
	err := r.db.WithContext(ctx).
		Preload("Subject").
		Preload("Group").
		Preload("Teacher").
		Preload("Room").
		Where("course_session_id = ?", id).
		First(&session).Error
	if err != nil {
		return nil, err
	}
	return &session, nil
}

// listByDate 某日全部未删除课程（冲突检测的输入），不加载关联；只在 CreateWithDateLock 的事务内调用
func listByDate(db *gorm.DB, date time.Time) ([]model.CourseSession, error) {
	var sessions []model.CourseSession
	err := db.
		Where("session_date = ?", model.CivilDate(date).Format(model.DateLayout)).
		Order("start_time ASC").
		Find(&sessions).Error
	return sessions, err
}

func (r *courseSessionRepo) ListByFilter(ctx context.Context, filter model.SessionFilter) ([]model.CourseSession, error) {
	var sessions []model.CourseSession
	db := r.db.WithContext(ctx).
		Where("session_date BETWEEN ? AND ?",
			model.CivilDate(filter.From).Format(model.DateLayout),
			model.CivilDate(filter.To).Format(model.DateLayout))

	if filter.GroupID != "" {
		db = db.Where("group_id = ?", filter.GroupID)
	}
	if filter.TeacherID != "" {
		db = db.Where("teacher_id = ?", filter.TeacherID)
	}
	if filter.RoomID != "" {
		db = db.Where("room_id = ?", filter.RoomID)
	}
	if filter.SubjectID != "" {
		db = db.Where("subject_id = ?", filter.SubjectID)
	}

	err := db.
		Preload("Subject").
		Preload("Group").
		Preload("Teacher").
		Preload("Room").
		Order("session_date ASC, start_time ASC").
		Find(&sessions).Error
	return sessions, err
}

func (r *courseSessionRepo) CreateWithDateLock(ctx context.Context, session *model.CourseSession, check func(existing []model.CourseSession) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// 事务级咨询锁：提交或回滚时自动释放
		if err := tx.Exec("SELECT pg_advisory_xact_lock(?, ?)", r.lockNamespace, dateLockKey(session.SessionDate)).Error; err != nil {
			return err
		}

		existing, err := listByDate(tx, session.SessionDate)
		if err != nil {
			return err
		}
		if err := check(existing); err != nil {
			return err
		}

		if err := tx.Omit(clause.Associations).Create(session).Error; err != nil {
			return translateWriteError(err)
		}
		return nil
	})
}

func (r *courseSessionRepo) Delete(ctx context.Context, id string, deletedBy string) error {
	result := r.db.WithContext(ctx).
		Model(&model.CourseSession{}).
		Where("course_session_id = ?", id).
		Updates(map[string]interface{}{
			"deleted_by": deletedBy,
			"deleted_at": gorm.Expr("NOW()"),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *courseSessionRepo) DeleteAll(ctx context.Context, ids []string, deletedBy string) ([]string, error) {
	unique := dedupe(ids)
	var missing []string

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// 先行锁定目标记录，防止并发删除导致计数不一致
		var found []string
		if err := tx.Model(&model.CourseSession{}).
			Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("course_session_id IN ?", unique).
			Pluck("course_session_id", &found).Error; err != nil {
			return err
		}

		missing = difference(unique, found)
		if len(missing) > 0 {
			return pkgerrors.ErrRecordsMissing
		}

		result := tx.Model(&model.CourseSession{}).
			Where("course_session_id IN ?", unique).
			Updates(map[string]interface{}{
				"deleted_by": deletedBy,
				"deleted_at": gorm.Expr("NOW()"),
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected != int64(len(unique)) {
			return fmt.Errorf("批量删除影响行数不符: 期望 %d，实际 %d", len(unique), result.RowsAffected)
		}
		return nil
	})
	if err != nil {
		return missing, err
	}
	return nil, nil
}

// ── 内部辅助 ──

// dateLockKey 以 1970-01-01 起的天数作为日期锁的第二个键
func dateLockKey(date time.Time) int32 {
	return int32(model.CivilDate(date).Unix() / 86400)
}

// translateWriteError 将外键约束错误转换为业务可识别的 ErrInvalidReference
func translateWriteError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgForeignKeyViolation {
		return fmt.Errorf("%w: %s", pkgerrors.ErrInvalidReference, pgErr.ConstraintName)
	}
	return err
}

func dedupe(ids []string) []string {
	seen := make(map[string]bool, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}

func difference(want, have []string) []string {
	got := make(map[string]bool, len(have))
	for _, id := range have {
		got[id] = true
	}
	var missing []string
	for _, id := range want {
		if !got[id] {
			missing = append(missing, id)
		}
	}
	return missing
}
