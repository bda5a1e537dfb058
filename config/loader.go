package config

import (
	"io"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/ceyewan/featconf/xerrors"
)

// Load 从文件路径加载配置：解析、填默认值、校验，一次完成。
//
// 失败时不返回部分结果；错误要么是 ErrParse（文档格式非法），
// 要么是 ErrValidation（违反 schema 不变量，携带字段路径）。
// 两类错误对启动都是致命的，调用方应退出而不是重试。
func Load(path string, opts ...Option) (*Config, error) {
	o := applyOptions(opts...)

	v := newViper(o)
	v.SetConfigFile(path)
	if filepath.Ext(path) == "" {
		v.SetConfigType("yaml")
	}

	if o.dotEnv {
		// .env 不存在不算错误
		_ = godotenv.Load(filepath.Join(filepath.Dir(path), ".env"))
	}

	if err := v.ReadInConfig(); err != nil {
		var parseFailure viper.ConfigParseError
		if xerrors.As(err, &parseFailure) {
			return nil, parseError(err)
		}
		return nil, xerrors.Wrapf(err, "failed to read config file %s", path)
	}

	return finish(v, o)
}

// LoadReader 从字节流加载配置，文档格式固定为 YAML。
func LoadReader(r io.Reader, opts ...Option) (*Config, error) {
	o := applyOptions(opts...)

	v := newViper(o)
	v.SetConfigType("yaml")

	if err := v.ReadConfig(r); err != nil {
		return nil, parseError(err)
	}

	return finish(v, o)
}

// newViper 构造带默认值和环境变量层的 viper 实例。
func newViper(o *options) *viper.Viper {
	v := viper.New()

	// 布尔默认值必须经由 viper 注入，"缺省"与"显式 false"才能区分开。
	// 其余默认值（字符串/整数）由 Config.setDefaults 处理。
	v.SetDefault("feast.logging.audit.enabled", true)

	if o.envPrefix != "" {
		v.SetEnvPrefix(o.envPrefix)
		v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
		v.AutomaticEnv()
	}

	return v
}

// finish 反序列化、填默认值并校验，成功后返回不可变的 Config。
func finish(v *viper.Viper, o *options) (*Config, error) {
	var cfg Config
	var err error
	if o.strict {
		err = v.UnmarshalExact(&cfg)
	} else {
		err = v.Unmarshal(&cfg)
	}
	if err != nil {
		// 文档是合法的结构化数据，但键或类型与 schema 不符
		return nil, xerrors.Wrapf(ErrValidation, "%v", err)
	}

	cfg.setDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}
