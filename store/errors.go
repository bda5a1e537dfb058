package store

import "github.com/ceyewan/featconf/xerrors"

// Sentinel Errors - 存储组件专用的哨兵错误
var (
	ErrUnsupportedStoreType = xerrors.New("store: unsupported store type")
	ErrInvalidTableRef      = xerrors.New("store: invalid table reference")
	ErrConnection           = xerrors.New("store: connection failed")
	ErrClosed               = xerrors.New("store: already closed")
)

// IsUnsupportedStoreType 检查错误是否为不支持的存储类型
func IsUnsupportedStoreType(err error) bool {
	return xerrors.Is(err, ErrUnsupportedStoreType)
}
