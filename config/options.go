package config

// Option 函数式选项，用于配置加载行为
type Option func(*options)

// options 内部选项结构
type options struct {
	strict    bool
	envPrefix string
	dotEnv    bool
}

// WithStrictKeys 开启严格模式：文档中出现 schema 之外的键时校验失败。
// 默认关闭（未知键被忽略以保证向前兼容）。
func WithStrictKeys() Option {
	return func(o *options) {
		o.strict = true
	}
}

// WithEnvPrefix 允许环境变量覆盖配置项，变量名为 <prefix>_<路径大写下划线>。
// 例如 prefix 为 "FEAST" 时，FEAST_GRPC_SERVER_PORT 覆盖 grpc.server.port。
// 默认不读取环境变量。
func WithEnvPrefix(prefix string) Option {
	return func(o *options) {
		o.envPrefix = prefix
	}
}

// WithDotEnv 加载配置文件同目录下的 .env 文件到环境变量。
// 仅在同时设置了 WithEnvPrefix 时有意义。
func WithDotEnv() Option {
	return func(o *options) {
		o.dotEnv = true
	}
}

func applyOptions(opts ...Option) *options {
	o := &options{}
	for _, opt := range opts {
		opt(o)
	}
	return o
}
