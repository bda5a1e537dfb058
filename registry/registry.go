// Package registry 提供特征注册表的本地存储与带周期刷新的缓存。
//
// 注册表记录特征表定义（实体 join key、特征列及类型）。序列化格式为
// msgpack，文件整体读写：要么写入完整的新版本（带新的 VersionID），
// 要么保持原样。
//
// 基本使用：
//
//	cfg, _ := config.Load("application.yaml")
//	reg, err := registry.FromConfig(cfg, registry.WithLogger(logger))
//	if err != nil {
//	    logger.Fatal("open registry", clog.Error(err))
//	}
//	defer reg.Close()
//
//	doc, err := reg.Registry(ctx)
package registry

import (
	"time"

	"github.com/ceyewan/featconf/featypes"
)

// FeatureColumn 一个特征列：名称与值类型。
type FeatureColumn struct {
	Name      string             `msgpack:"name"`
	ValueType featypes.ValueType `msgpack:"value_type"`
}

// FeatureTable 一张特征表的定义。
type FeatureTable struct {
	// Name 表名，在注册表内唯一
	Name string `msgpack:"name"`

	// Entities 实体 join key 名称列表
	Entities []string `msgpack:"entities"`

	// Features 特征列定义
	Features []FeatureColumn `msgpack:"features"`

	// MaxAge 特征的最大可服务年龄，0 表示不限制
	MaxAge time.Duration `msgpack:"max_age"`
}

// Registry 注册表文档。每次写入生成新的 VersionID。
type Registry struct {
	Project       string         `msgpack:"project"`
	FeatureTables []FeatureTable `msgpack:"feature_tables"`
	VersionID     string         `msgpack:"version_id"`
	LastUpdated   time.Time      `msgpack:"last_updated"`
}

// Table 按名称查找特征表定义，不存在时返回 nil。
func (r *Registry) Table(name string) *FeatureTable {
	for i := range r.FeatureTables {
		if r.FeatureTables[i].Name == name {
			return &r.FeatureTables[i]
		}
	}
	return nil
}
