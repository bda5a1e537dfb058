package config

import "github.com/ceyewan/featconf/xerrors"

// 错误分类（两类错误对进程启动都是致命的，不应重试）：
//
//	ErrParse      文档本身不是合法的结构化数据
//	ErrValidation 文档合法，但违反了 schema 不变量
var (
	ErrParse      = xerrors.New("config: parse failed")
	ErrValidation = xerrors.New("config: validation failed")
)

// IsParseError 检查错误是否为解析失败
func IsParseError(err error) bool {
	return xerrors.Is(err, ErrParse)
}

// IsValidationError 检查错误是否为校验失败
func IsValidationError(err error) bool {
	return xerrors.Is(err, ErrValidation)
}

// FieldPath 从错误中提取出错字段的点分路径，不存在时返回空字符串。
func FieldPath(err error) string {
	return xerrors.GetField(err)
}

// validationError 构造携带字段路径的校验错误。
func validationError(path, msg string) error {
	return xerrors.WithField(xerrors.Wrap(ErrValidation, msg), path)
}

// validationErrorf 构造携带字段路径的格式化校验错误。
func validationErrorf(path, format string, args ...any) error {
	return xerrors.WithField(xerrors.Wrapf(ErrValidation, format, args...), path)
}

// parseError 包装底层解析错误。
func parseError(err error) error {
	if err == nil {
		return nil
	}
	return xerrors.Wrapf(ErrParse, "%v", err)
}
