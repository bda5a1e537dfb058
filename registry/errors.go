package registry

import "github.com/ceyewan/featconf/xerrors"

var (
	// ErrRegistryNotFound 注册表文件不存在
	ErrRegistryNotFound = xerrors.New("registry: not found")

	// ErrRegistryCorrupt 注册表文件无法解码
	ErrRegistryCorrupt = xerrors.New("registry: corrupt document")

	// ErrRegistryClosed 缓存已关闭
	ErrRegistryClosed = xerrors.New("registry: closed")
)

// IsNotFound 检查错误是否为注册表不存在
func IsNotFound(err error) bool {
	return xerrors.Is(err, ErrRegistryNotFound)
}
