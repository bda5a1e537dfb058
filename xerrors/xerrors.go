// Package xerrors 为 featconf 提供标准化的错误处理工具。
// 这是一个基础包，不依赖于本项目的其他组件。
package xerrors

import (
	"errors"
	"fmt"
)

// 哨兵错误 - 各组件通用的错误类型
var (
	// ErrNotFound 表示请求的资源未找到。
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput 表示输入参数无效。
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnsupported 表示请求的能力尚未支持。
	ErrUnsupported = errors.New("unsupported")

	// ErrClosed 表示组件已关闭。
	ErrClosed = errors.New("closed")

	// ErrInternal 表示内部错误。
	ErrInternal = errors.New("internal error")
)

// Wrap 用上下文信息包装错误，保留错误链。
func Wrap(err error, msg string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", msg, err)
}

// Wrapf 用格式化的上下文信息包装错误。
func Wrapf(err error, format string, args ...any) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), err)
}

// FieldError 携带出错字段路径的错误，用于配置校验等场景。
// Path 是点分隔的字段路径，如 "feast.logging.audit.messageLogging.fluentdHost"。
type FieldError struct {
	Path  string
	Cause error
}

func (e *FieldError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Path, e.Cause)
	}
	return e.Path
}

func (e *FieldError) Unwrap() error {
	return e.Cause
}

// WithField 用字段路径包装错误。
func WithField(err error, path string) error {
	if err == nil {
		return nil
	}
	return &FieldError{Path: path, Cause: err}
}

// GetField 从错误链中提取字段路径，不存在时返回空字符串。
func GetField(err error) string {
	var fe *FieldError
	if errors.As(err, &fe) {
		return fe.Path
	}
	return ""
}

// Must 如果 err 不为 nil，则 panic。仅用于初始化阶段。
func Must[T any](v T, err error) T {
	if err != nil {
		panic(fmt.Sprintf("must: %v", err))
	}
	return v
}

// MultiError 合并多个错误。
type MultiError struct {
	Errors []error
}

func (m *MultiError) Error() string {
	if len(m.Errors) == 0 {
		return "no errors"
	}
	if len(m.Errors) == 1 {
		return m.Errors[0].Error()
	}
	return fmt.Sprintf("%v (and %d more errors)", m.Errors[0], len(m.Errors)-1)
}

func (m *MultiError) Unwrap() []error {
	return m.Errors
}

// Combine 将多个错误合并为一个，nil 会被忽略。
func Combine(errs ...error) error {
	var nonNil []error
	for _, err := range errs {
		if err != nil {
			nonNil = append(nonNil, err)
		}
	}
	switch len(nonNil) {
	case 0:
		return nil
	case 1:
		return nonNil[0]
	default:
		return &MultiError{Errors: nonNil}
	}
}

// 标准库函数再导出
var (
	New    = errors.New
	Is     = errors.Is
	As     = errors.As
	Unwrap = errors.Unwrap
	Join   = errors.Join
)
