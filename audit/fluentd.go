package audit

import (
	"time"

	"github.com/fluent/fluent-logger-golang/fluent"

	"github.com/ceyewan/featconf/xerrors"
)

const dialTimeout = 5 * time.Second

// fluentdSink 经 fluent 官方客户端以 Forward 协议转发报文。
// 连接由客户端延迟建立，写失败时自动退避重连。
type fluentdSink struct {
	tag    string
	client *fluent.Fluent
}

func newFluentdSink(host string, port int, tag string) (*fluentdSink, error) {
	if host == "" || port <= 0 || port > 65535 {
		return nil, xerrors.Wrapf(xerrors.ErrInvalidInput,
			"fluentd address %q:%d", host, port)
	}
	client, err := fluent.New(fluent.Config{
		FluentHost: host,
		FluentPort: port,
		Timeout:    dialTimeout,
	})
	if err != nil {
		return nil, xerrors.Wrapf(err, "fluentd client %s:%d", host, port)
	}
	return &fluentdSink{tag: tag, client: client}, nil
}

// Write 发送一个 Forward 事件，record 按报文字段展开
func (s *fluentdSink) Write(ts time.Time, msg Message) error {
	record := map[string]any{
		"service":     msg.Service,
		"method":      msg.Method,
		"request":     msg.Request,
		"response":    msg.Response,
		"status_code": msg.StatusCode,
	}
	if err := s.client.PostWithTime(s.tag, ts, record); err != nil {
		return xerrors.Wrapf(err, "post to fluentd")
	}
	return nil
}

// Close 关闭客户端连接，幂等
func (s *fluentdSink) Close() error {
	return s.client.Close()
}
