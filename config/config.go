package config

import "strings"

// StoreType 在线存储类型，闭合枚举。
// 未识别的取值在校验阶段显式失败，而不是静默传递。
type StoreType string

const (
	StoreTypeRedis        StoreType = "REDIS"
	StoreTypeRedisCluster StoreType = "REDIS_CLUSTER"
	StoreTypeSQLite       StoreType = "SQLITE"
)

// Destination 消息日志输出目标，闭合枚举。
type Destination string

const (
	DestinationConsole Destination = "console"
	DestinationFluentd Destination = "fluentd"
)

// TracerName 链路追踪实现名，目前仅支持 jaeger。
type TracerName string

const TracerJaeger TracerName = "jaeger"

// Config 服务配置的根结构。
//
// 加载成功后整个结构是只读的：任意数量的 goroutine 可以并发读取，
// 无需加锁。修改配置需要重启进程。
type Config struct {
	Feast FeastConfig `mapstructure:"feast" yaml:"feast"`
	GRPC  ServerBlock `mapstructure:"grpc" yaml:"grpc"`
	REST  ServerBlock `mapstructure:"rest" yaml:"rest"`
}

// FeastConfig 特征服务本体配置。
type FeastConfig struct {
	// Registry 注册表数据库的文件路径或 URI
	Registry string `mapstructure:"registry" yaml:"registry"`

	// RegistryRefreshInterval 注册表刷新间隔（秒），0 表示禁用周期刷新
	RegistryRefreshInterval int `mapstructure:"registryRefreshInterval" yaml:"registryRefreshInterval"`

	// ActiveStore 当前启用的存储名，必须精确匹配 Stores 中某一项的 Name。
	// 当前版本同一时间只有一个存储处于启用状态。
	ActiveStore string `mapstructure:"activeStore" yaml:"activeStore"`

	// Stores 可配置的存储列表，Name 在列表内必须唯一
	Stores []StoreConfig `mapstructure:"stores" yaml:"stores"`

	Tracing TracingConfig `mapstructure:"tracing" yaml:"tracing"`
	Logging LoggingConfig `mapstructure:"logging" yaml:"logging"`
}

// StoreConfig 单个在线存储的配置。
// Config 中的键集合取决于 Type，这里不做逐键校验。
type StoreConfig struct {
	Name   string            `mapstructure:"name" yaml:"name"`
	Type   StoreType         `mapstructure:"type" yaml:"type"`
	Config map[string]string `mapstructure:"config" yaml:"config,omitempty"`
}

// TracingConfig 链路追踪配置。
type TracingConfig struct {
	Enabled     bool       `mapstructure:"enabled" yaml:"enabled"`
	TracerName  TracerName `mapstructure:"tracerName" yaml:"tracerName"`
	ServiceName string     `mapstructure:"serviceName" yaml:"serviceName"`
}

// LoggingConfig 日志配置。
type LoggingConfig struct {
	Audit AuditConfig `mapstructure:"audit" yaml:"audit"`
}

// AuditConfig 审计日志配置。
type AuditConfig struct {
	Enabled        bool                 `mapstructure:"enabled" yaml:"enabled"`
	MessageLogging MessageLoggingConfig `mapstructure:"messageLogging" yaml:"messageLogging"`
}

// MessageLoggingConfig 请求/响应报文日志配置。
// Destination 为 fluentd 且启用时，FluentdHost 和 FluentdPort 必填。
type MessageLoggingConfig struct {
	Enabled     bool        `mapstructure:"enabled" yaml:"enabled"`
	Destination Destination `mapstructure:"destination" yaml:"destination"`
	FluentdHost string      `mapstructure:"fluentdHost" yaml:"fluentdHost,omitempty"`
	FluentdPort int         `mapstructure:"fluentdPort" yaml:"fluentdPort,omitempty"`
}

// ServerBlock 网络服务端口配置的外层包装，对应文档中 grpc:/rest: 两个顶层键。
type ServerBlock struct {
	Server ServerConfig `mapstructure:"server" yaml:"server"`
}

// ServerConfig 单个监听端口。
type ServerConfig struct {
	Port int `mapstructure:"port" yaml:"port"`
}

// setDefaults 为缺省的可选字段填入文档化默认值。
// 布尔默认值（audit.enabled = true）由加载器通过 viper.SetDefault 处理，
// 以区分"缺省"与"显式 false"。
func (c *Config) setDefaults() {
	if c.Feast.Tracing.TracerName == "" {
		c.Feast.Tracing.TracerName = TracerJaeger
	}
	if c.Feast.Logging.Audit.MessageLogging.Destination == "" {
		c.Feast.Logging.Audit.MessageLogging.Destination = DestinationConsole
	}
}

// validate 校验跨字段不变量，返回的错误携带出错字段路径。
func (c *Config) validate() error {
	if c.Feast.Registry == "" {
		return validationError("feast.registry", "registry path is required")
	}
	if c.Feast.RegistryRefreshInterval < 0 {
		return validationErrorf("feast.registryRefreshInterval",
			"must be >= 0, got %d", c.Feast.RegistryRefreshInterval)
	}

	if len(c.Feast.Stores) == 0 {
		return validationError("feast.stores", "at least one store must be configured")
	}

	seen := make(map[string]bool, len(c.Feast.Stores))
	for i, store := range c.Feast.Stores {
		if store.Name == "" {
			return validationErrorf("feast.stores", "store at index %d has no name", i)
		}
		if seen[store.Name] {
			return validationErrorf("feast.stores", "duplicate store name %q", store.Name)
		}
		seen[store.Name] = true

		switch store.Type {
		case StoreTypeRedis, StoreTypeRedisCluster, StoreTypeSQLite:
		default:
			return validationErrorf("feast.stores",
				"store %q has unrecognized type %q (must be one of REDIS, REDIS_CLUSTER, SQLITE)",
				store.Name, store.Type)
		}
	}

	if c.Feast.ActiveStore == "" {
		return validationError("feast.activeStore", "active store name is required")
	}
	if !seen[c.Feast.ActiveStore] {
		return validationErrorf("feast.activeStore",
			"no configured store named %q (configured: %s)",
			c.Feast.ActiveStore, strings.Join(storeNames(c.Feast.Stores), ", "))
	}

	if c.Feast.Tracing.TracerName != TracerJaeger {
		return validationErrorf("feast.tracing.tracerName",
			"unrecognized tracer %q (only jaeger is supported)", c.Feast.Tracing.TracerName)
	}

	ml := c.Feast.Logging.Audit.MessageLogging
	switch ml.Destination {
	case DestinationConsole, DestinationFluentd:
	default:
		return validationErrorf("feast.logging.audit.messageLogging.destination",
			"unrecognized destination %q (must be console or fluentd)", ml.Destination)
	}
	if ml.Enabled && ml.Destination == DestinationFluentd {
		if ml.FluentdHost == "" {
			return validationError("feast.logging.audit.messageLogging.fluentdHost",
				"required when destination is fluentd")
		}
		if !validPort(ml.FluentdPort) {
			return validationErrorf("feast.logging.audit.messageLogging.fluentdPort",
				"must be a valid TCP port (1-65535), got %d", ml.FluentdPort)
		}
	}

	if !validPort(c.GRPC.Server.Port) {
		return validationErrorf("grpc.server.port",
			"must be a valid TCP port (1-65535), got %d", c.GRPC.Server.Port)
	}
	if !validPort(c.REST.Server.Port) {
		return validationErrorf("rest.server.port",
			"must be a valid TCP port (1-65535), got %d", c.REST.Server.Port)
	}

	return nil
}

// ActiveStoreConfig 返回 ActiveStore 指向的存储配置。
//
// 这是一个纯查找操作：校验阶段已保证引用可解析，加载成功后调用永不失败。
func (c *Config) ActiveStoreConfig() StoreConfig {
	for _, store := range c.Feast.Stores {
		if store.Name == c.Feast.ActiveStore {
			return store
		}
	}
	// validate 保证不可达
	panic("featconf: active store not resolved, config was not validated")
}

func storeNames(stores []StoreConfig) []string {
	names := make([]string, 0, len(stores))
	for _, s := range stores {
		names = append(names, s.Name)
	}
	return names
}

func validPort(port int) bool {
	return port >= 1 && port <= 65535
}
