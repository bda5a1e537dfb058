// Package store 提供线上特征存储的统一抽象与 SQLite 实现。
//
// OnlineStore 是特征服务与物化特征值存储之间的唯一交互口。
// 当前实现 SQLITE 类型；REDIS / REDIS_CLUSTER 仅作为配置枚举存在，
// 客户端实现不在本模块范围内。
//
// 基本使用：
//
//	cfg, _ := config.Load("application.yaml")
//	s, err := store.New(cfg, store.WithLogger(logger))
//	if err != nil {
//	    logger.Fatal("open online store", clog.Error(err))
//	}
//	defer s.Close()
//
//	results, err := s.OnlineRead(ctx, store.TableRef{Project: "driver", Table: "stats"}, keys)
//
// 资源所有权：调用方创建 OnlineStore，也负责通过 Close() 释放。
// 所有方法并发安全。
package store

import (
	"context"
	"time"

	"github.com/ceyewan/featconf/featypes"
)

// TableRef 项目内一张特征表的引用。
// 物理表名为 <Project>_<Table>。
type TableRef struct {
	Project string
	Table   string
}

// WriteRow 一次写入的单行：实体键、特征值、事件时间与可选的写入时间。
type WriteRow struct {
	EntityKey featypes.EntityKey
	Features  featypes.Row
	EventTS   time.Time
	CreatedTS *time.Time
}

// ReadResult 单个实体键的读取结果。
// 未命中时 Features 为 nil，EventTS 为零值。
type ReadResult struct {
	EventTS  time.Time
	Features featypes.Row
}

// Found 报告该实体键是否命中
func (r ReadResult) Found() bool {
	return r.Features != nil
}

// OnlineStore 线上特征存储的统一契约。
type OnlineStore interface {
	// OnlineWriteBatch 批量写入特征行，同键行覆盖旧值（upsert 语义）
	OnlineWriteBatch(ctx context.Context, table TableRef, rows []WriteRow) error

	// OnlineRead 按实体键批量读取，结果与 keys 一一对应
	OnlineRead(ctx context.Context, table TableRef, keys []featypes.EntityKey) ([]ReadResult, error)

	// Update 按注册表推进存储结构：建出 keep 中的表，删除 remove 中的表
	Update(ctx context.Context, keep []TableRef, remove []TableRef) error

	// Teardown 删除存储的全部内容，幂等
	Teardown(ctx context.Context) error

	// Close 关闭底层连接，幂等
	Close() error
}
