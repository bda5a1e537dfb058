// Package audit 按日志配置记录服务活动的审计日志，可选地记录完整的
// 请求/响应报文（message logging）。
//
// 审计条目走结构化日志；报文日志走独立的目的地：
//   - console: 经由 clog 输出
//   - fluentd: 经 fluent-logger-golang 客户端以 Forward 协议发送
//
// 关闭状态下所有方法都是 no-op，调用方无需判空。
package audit

import (
	"time"

	"github.com/ceyewan/featconf/clog"
	"github.com/ceyewan/featconf/config"
	"github.com/ceyewan/featconf/xerrors"
)

// Message 一次服务调用的完整报文
type Message struct {
	Service  string `msgpack:"service"`
	Method   string `msgpack:"method"`
	Request  any    `msgpack:"request"`
	Response any    `msgpack:"response"`
	// StatusCode 调用结果状态，如 "OK"
	StatusCode string `msgpack:"status_code"`
}

// messageSink 报文日志目的地
type messageSink interface {
	Write(ts time.Time, msg Message) error
	Close() error
}

// Auditor 审计日志记录器。并发安全。
type Auditor struct {
	enabled bool
	logger  clog.Logger
	sink    messageSink
}

// New 按日志配置创建 Auditor。
//
// audit.enabled 为 false 时返回完全禁用的实例；
// messageLogging.enabled 为 false 时只记录审计条目，不记录报文。
func New(cfg config.LoggingConfig, logger clog.Logger, opts ...Option) (*Auditor, error) {
	opt := applyOptions(opts...)

	if logger == nil {
		logger = clog.Discard()
	}
	logger = logger.WithNamespace("audit")

	a := &Auditor{
		enabled: cfg.Audit.Enabled,
		logger:  logger,
	}
	if !cfg.Audit.Enabled {
		return a, nil
	}

	ml := cfg.Audit.MessageLogging
	if ml.Enabled {
		switch ml.Destination {
		case config.DestinationConsole:
			a.sink = &consoleSink{logger: logger}
		case config.DestinationFluentd:
			sink, err := newFluentdSink(ml.FluentdHost, ml.FluentdPort, opt.tag)
			if err != nil {
				return nil, err
			}
			a.sink = sink
		default:
			// config.validate 保证不可达
			return nil, xerrors.Wrapf(xerrors.ErrInvalidInput, "destination %q", ml.Destination)
		}
	}

	return a, nil
}

// Enabled 报告审计日志是否启用
func (a *Auditor) Enabled() bool {
	return a.enabled
}

// Action 记录一条审计条目：谁在什么时候调了什么，结果如何。
func (a *Auditor) Action(service, method, statusCode string, fields ...clog.Field) {
	if !a.enabled {
		return
	}
	entry := append([]clog.Field{
		clog.String("service", service),
		clog.String("method", method),
		clog.String("statusCode", statusCode),
	}, fields...)
	a.logger.Info("audit", entry...)
}

// LogMessage 记录一次调用的完整报文。报文日志未启用时为 no-op。
func (a *Auditor) LogMessage(msg Message) error {
	if !a.enabled || a.sink == nil {
		return nil
	}
	return a.sink.Write(time.Now(), msg)
}

// Close 释放报文目的地持有的连接，幂等。
func (a *Auditor) Close() error {
	if a.sink == nil {
		return nil
	}
	return a.sink.Close()
}

// consoleSink 报文直接走结构化日志
type consoleSink struct {
	logger clog.Logger
}

func (s *consoleSink) Write(ts time.Time, msg Message) error {
	s.logger.Info("message",
		clog.String("service", msg.Service),
		clog.String("method", msg.Method),
		clog.String("statusCode", msg.StatusCode),
		clog.Any("request", msg.Request),
		clog.Any("response", msg.Response),
	)
	return nil
}

func (s *consoleSink) Close() error { return nil }
