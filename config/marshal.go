package config

import (
	"gopkg.in/yaml.v3"

	"github.com/ceyewan/featconf/xerrors"
)

// Marshal 将配置序列化回 YAML 文档。
//
// 序列化一个校验通过的配置再重新 Load，得到的配置与原配置相等
// （默认值在加载时已固化进结构体）。
func (c *Config) Marshal() ([]byte, error) {
	out, err := yaml.Marshal(c)
	if err != nil {
		return nil, xerrors.Wrap(err, "marshal config")
	}
	return out, nil
}
