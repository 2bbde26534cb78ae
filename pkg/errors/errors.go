package errors

import "errors"

// ErrInvalidReference 外键引用的目录记录（科目/班级/教师/教室）不存在
var ErrInvalidReference = errors.New("引用的资源不存在")

// ErrRecordsMissing 批量操作中有记录不存在，整批回滚
var ErrRecordsMissing = errors.New("部分记录不存在")
