package registry

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/ceyewan/featconf/clog"
	"github.com/ceyewan/featconf/xerrors"
)

// Store 注册表存储的统一契约。
type Store interface {
	// GetRegistry 读取完整的注册表文档
	GetRegistry(ctx context.Context) (*Registry, error)

	// UpdateRegistry 整体写入新版本，自动生成 VersionID 和 LastUpdated
	UpdateRegistry(ctx context.Context, reg *Registry) error

	// Teardown 删除注册表文件，幂等
	Teardown() error
}

// LocalStore 基于本地文件的注册表存储。
type LocalStore struct {
	path   string
	logger clog.Logger
}

// NewLocalStore 创建本地注册表存储，path 为注册表文件路径。
func NewLocalStore(path string, opts ...Option) (*LocalStore, error) {
	if path == "" {
		return nil, xerrors.Wrap(xerrors.ErrInvalidInput, "registry path is required")
	}

	opt := applyOptions(opts...)
	return &LocalStore{
		path:   path,
		logger: opt.logger.With(clog.String("registry", "local"), clog.String("path", path)),
	}, nil
}

// GetRegistry 读取注册表文件。
// 文件不存在时返回 ErrRegistryNotFound，并提示先写入特征定义。
func (s *LocalStore) GetRegistry(ctx context.Context) (*Registry, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, xerrors.Wrapf(ErrRegistryNotFound,
				"registry not found at %q, have you applied your feature definitions", s.path)
		}
		return nil, xerrors.Wrapf(err, "read registry %s", s.path)
	}

	var reg Registry
	if err := msgpack.Unmarshal(data, &reg); err != nil {
		return nil, xerrors.Wrapf(ErrRegistryCorrupt, "%s: %v", s.path, err)
	}
	return &reg, nil
}

// UpdateRegistry 生成新的 VersionID 与时间戳后整体写入。
func (s *LocalStore) UpdateRegistry(ctx context.Context, reg *Registry) error {
	reg.VersionID = uuid.NewString()
	reg.LastUpdated = time.Now().UTC()

	data, err := msgpack.Marshal(reg)
	if err != nil {
		return xerrors.Wrap(err, "encode registry")
	}

	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return xerrors.Wrapf(err, "create registry dir %s", dir)
		}
	}
	if err := os.WriteFile(s.path, data, 0644); err != nil {
		return xerrors.Wrapf(err, "write registry %s", s.path)
	}

	s.logger.Info("registry updated", clog.String("version", reg.VersionID))
	return nil
}

// Teardown 删除注册表文件，文件不存在不算错误。
func (s *LocalStore) Teardown() error {
	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return xerrors.Wrapf(err, "remove registry %s", s.path)
	}
	return nil
}
