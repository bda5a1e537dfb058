package registry

import (
	"context"
	"sync"
	"time"

	"github.com/ceyewan/featconf/clog"
	"github.com/ceyewan/featconf/config"
	"github.com/ceyewan/featconf/xerrors"
)

// CachedRegistry 包装一个 Store，缓存注册表文档并按固定间隔后台刷新。
//
// 刷新间隔为 0 时完全禁用周期刷新：文档在首次访问时加载一次，
// 之后只能通过 Refresh 手动更新。
type CachedRegistry struct {
	store    Store
	interval time.Duration
	logger   clog.Logger

	mu     sync.RWMutex
	cached *Registry
	closed bool

	stop chan struct{}
	done chan struct{}
}

// NewCached 创建带缓存的注册表。interval > 0 时启动后台刷新协程。
func NewCached(store Store, interval time.Duration, opts ...Option) (*CachedRegistry, error) {
	if store == nil {
		return nil, xerrors.Wrap(xerrors.ErrInvalidInput, "store is required")
	}
	if interval < 0 {
		return nil, xerrors.Wrapf(xerrors.ErrInvalidInput, "refresh interval must be >= 0, got %v", interval)
	}

	opt := applyOptions(opts...)
	c := &CachedRegistry{
		store:    store,
		interval: interval,
		logger:   opt.logger.With(clog.Duration("refreshInterval", interval)),
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}

	if interval > 0 {
		go c.refreshLoop()
	} else {
		close(c.done)
	}
	return c, nil
}

// FromConfig 按服务配置构造本地注册表存储与缓存。
// 使用 feast.registry 作为文件路径，feast.registryRefreshInterval 作为刷新间隔。
func FromConfig(cfg *config.Config, opts ...Option) (*CachedRegistry, error) {
	local, err := NewLocalStore(cfg.Feast.Registry, opts...)
	if err != nil {
		return nil, err
	}
	return NewCached(local, time.Duration(cfg.Feast.RegistryRefreshInterval)*time.Second, opts...)
}

// Registry 返回缓存的注册表文档，首次访问时从底层存储加载。
func (c *CachedRegistry) Registry(ctx context.Context) (*Registry, error) {
	c.mu.RLock()
	if c.closed {
		c.mu.RUnlock()
		return nil, ErrRegistryClosed
	}
	if c.cached != nil {
		reg := c.cached
		c.mu.RUnlock()
		return reg, nil
	}
	c.mu.RUnlock()

	return c.Refresh(ctx)
}

// Refresh 强制从底层存储重新加载。
func (c *CachedRegistry) Refresh(ctx context.Context) (*Registry, error) {
	reg, err := c.store.GetRegistry(ctx)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil, ErrRegistryClosed
	}
	c.cached = reg
	return reg, nil
}

// Close 停止后台刷新并清空缓存，幂等。
func (c *CachedRegistry) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	c.cached = nil
	c.mu.Unlock()

	close(c.stop)
	<-c.done
	return nil
}

// refreshLoop 周期刷新，失败时保留旧缓存并记录日志。
func (c *CachedRegistry) refreshLoop() {
	defer close(c.done)

	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		select {
		case <-c.stop:
			return
		case <-ticker.C:
			if _, err := c.Refresh(context.Background()); err != nil {
				c.logger.Warn("registry refresh failed, keeping cached version", clog.Error(err))
			} else {
				c.logger.Debug("registry refreshed")
			}
		}
	}
}
