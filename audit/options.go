package audit

// defaultTag fluentd Forward 协议的事件 tag
const defaultTag = "feast.serving.message"

type options struct {
	tag string
}

// Option 配置审计组件的选项
type Option func(*options)

// WithTag 设置 fluentd 事件 tag (默认: "feast.serving.message")
func WithTag(tag string) Option {
	return func(o *options) {
		o.tag = tag
	}
}

func applyOptions(opts ...Option) *options {
	o := &options{tag: defaultTag}
	for _, opt := range opts {
		opt(o)
	}
	return o
}
