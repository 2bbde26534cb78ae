package service

import (
	"errors"
	"fmt"
	"strings"
)

// ── 课程安排模块业务错误 ──

var (
	ErrSessionValidation = errors.New("课程安排参数不合法")
	ErrPlacementConflict = errors.New("课程安排存在冲突")
	ErrSessionNotFound   = errors.New("课程安排不存在")
	ErrSessionStore      = errors.New("课程安排存储失败")
	ErrBulkDeleteTooMany = errors.New("批量删除数量超过上限")
	ErrExportGenerate    = errors.New("生成导出文件失败")
)

// ValidationError 结构性非法输入（时间倒置、缺少班级等），与冲突严格区分
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func (e *ValidationError) Unwrap() error { return ErrSessionValidation }

func newValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

// PlacementConflictError 携带本次检测到的全部冲突，不做截断
type PlacementConflictError struct {
	Conflicts []Conflict
}

func (e *PlacementConflictError) Error() string {
	msgs := make([]string, 0, len(e.Conflicts))
	for _, c := range e.Conflicts {
		msgs = append(msgs, c.Message)
	}
	return fmt.Sprintf("%s: %s", ErrPlacementConflict.Error(), strings.Join(msgs, "；"))
}

func (e *PlacementConflictError) Unwrap() error { return ErrPlacementConflict }

// MissingSessionsError 批量删除时不存在的 ID，整批未执行
type MissingSessionsError struct {
	IDs []string
}

func (e *MissingSessionsError) Error() string {
	return fmt.Sprintf("%s: %s", ErrSessionNotFound.Error(), strings.Join(e.IDs, ", "))
}

func (e *MissingSessionsError) Unwrap() error { return ErrSessionNotFound }

// storeError 将底层存储错误归入 ErrSessionStore，保留原始错误链
func storeError(err error) error {
	return fmt.Errorf("%w: %w", ErrSessionStore, err)
}
