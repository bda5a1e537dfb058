package clog

import (
	"context"
	"log/slog"
	"os"
	"runtime"
	"strings"
	"time"
)

// loggerImpl 是 Logger 接口的具体实现
type loggerImpl struct {
	handler        *clogHandler
	baseAttrs      []slog.Attr
	namespaceParts []string
}

// newLogger 创建 Logger 实例（内部使用）
func newLogger(config *Config, options *options) (Logger, error) {
	handler, err := newHandler(config, options)
	if err != nil {
		return nil, err
	}

	return &loggerImpl{
		handler:        handler,
		namespaceParts: options.namespaceParts,
	}, nil
}

func (l *loggerImpl) Debug(msg string, fields ...Field) { l.log(DebugLevel, msg, fields...) }
func (l *loggerImpl) Info(msg string, fields ...Field)  { l.log(InfoLevel, msg, fields...) }
func (l *loggerImpl) Warn(msg string, fields ...Field)  { l.log(WarnLevel, msg, fields...) }
func (l *loggerImpl) Error(msg string, fields ...Field) { l.log(ErrorLevel, msg, fields...) }
func (l *loggerImpl) Fatal(msg string, fields ...Field) { l.log(FatalLevel, msg, fields...) }

func (l *loggerImpl) With(fields ...Field) Logger {
	return &loggerImpl{
		handler:        l.handler,
		baseAttrs:      append(append([]slog.Attr(nil), l.baseAttrs...), fields...),
		namespaceParts: l.namespaceParts,
	}
}

func (l *loggerImpl) WithNamespace(parts ...string) Logger {
	return &loggerImpl{
		handler:        l.handler,
		baseAttrs:      append([]slog.Attr(nil), l.baseAttrs...),
		namespaceParts: append(append([]string(nil), l.namespaceParts...), parts...),
	}
}

// SetLevel 动态调整日志级别
func (l *loggerImpl) SetLevel(level Level) error {
	return l.handler.SetLevel(level)
}

func (l *loggerImpl) log(level Level, msg string, fields ...Field) {
	sl := slogLevel(level)
	if !l.handler.Enabled(context.Background(), sl) {
		if level == FatalLevel {
			os.Exit(1)
		}
		return
	}

	attrs := make([]slog.Attr, 0, len(l.baseAttrs)+len(fields)+1)
	if len(l.namespaceParts) > 0 {
		attrs = append(attrs, slog.String("namespace", strings.Join(l.namespaceParts, ".")))
	}
	attrs = append(attrs, l.baseAttrs...)
	attrs = append(attrs, fields...)

	// skip: runtime.Callers, log, Debug/Info/... 包装方法
	var pcs [1]uintptr
	runtime.Callers(3, pcs[:])
	record := slog.NewRecord(time.Now(), sl, msg, pcs[0])
	record.AddAttrs(attrs...)

	_ = l.handler.Handle(context.Background(), record)

	if level == FatalLevel {
		os.Exit(1)
	}
}

// noopLogger 丢弃所有输出
type noopLogger struct{}

func (noopLogger) Debug(string, ...Field) {}
func (noopLogger) Info(string, ...Field)  {}
func (noopLogger) Warn(string, ...Field)  {}
func (noopLogger) Error(string, ...Field) {}
func (noopLogger) Fatal(string, ...Field) { os.Exit(1) }

func (n noopLogger) With(...Field) Logger           { return n }
func (n noopLogger) WithNamespace(...string) Logger { return n }
func (n noopLogger) SetLevel(Level) error           { return nil }
