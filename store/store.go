package store

import (
	"github.com/ceyewan/featconf/config"
	"github.com/ceyewan/featconf/xerrors"
)

// New 按配置中 activeStore 指向的存储类型构造 OnlineStore。
//
// 当前支持 SQLITE；REDIS 与 REDIS_CLUSTER 的客户端实现不在本模块范围内，
// 选中它们会返回 ErrUnsupportedStoreType。
func New(cfg *config.Config, opts ...Option) (OnlineStore, error) {
	active := cfg.ActiveStoreConfig()

	switch active.Type {
	case config.StoreTypeSQLite:
		return NewSQLite(&SQLiteConfig{
			Name: active.Name,
			Path: active.Config["path"],
		}, opts...)
	case config.StoreTypeRedis, config.StoreTypeRedisCluster:
		return nil, xerrors.Wrapf(ErrUnsupportedStoreType,
			"store %q: %s client is provided by the serving runtime, not this module",
			active.Name, active.Type)
	default:
		// config.validate 保证不可达
		return nil, xerrors.Wrapf(ErrUnsupportedStoreType, "store %q: type %q", active.Name, active.Type)
	}
}
