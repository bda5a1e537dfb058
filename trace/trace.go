// Package trace 按服务配置初始化全局链路追踪。
//
// 追踪后端通过 OTLP gRPC 导出（Jaeger 自 1.35 起原生接收 OTLP），
// tracerName 枚举目前仅支持 jaeger。tracing.enabled 为 false 时
// Init 返回 no-op shutdown，不创建任何导出器。
package trace

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.20.0"

	"github.com/ceyewan/featconf/config"
	"github.com/ceyewan/featconf/xerrors"
)

// Option 配置追踪初始化的选项
type Option func(*options)

type options struct {
	endpoint string
	sampler  float64
	insecure bool
}

// WithEndpoint 设置 OTLP gRPC 收集端地址 (默认: "localhost:4317")
func WithEndpoint(endpoint string) Option {
	return func(o *options) {
		o.endpoint = endpoint
	}
}

// WithSampler 设置采样率，0-1 (默认: 1.0)
func WithSampler(ratio float64) Option {
	return func(o *options) {
		o.sampler = ratio
	}
}

// WithInsecure 不使用 TLS 连接收集端 (默认: true)
func WithInsecure(insecure bool) Option {
	return func(o *options) {
		o.insecure = insecure
	}
}

func applyOptions(opts ...Option) *options {
	o := &options{
		endpoint: "localhost:4317",
		sampler:  1.0,
		insecure: true,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Init 按 TracingConfig 初始化全局 TracerProvider。
//
// 返回值是一个 Shutdown 函数，调用者应在进程退出时调用它以刷新剩余数据。
// cfg.Enabled 为 false 时返回 no-op Shutdown。
func Init(cfg config.TracingConfig, opts ...Option) (func(context.Context) error, error) {
	if !cfg.Enabled {
		return func(context.Context) error { return nil }, nil
	}
	if err := validateConfig(cfg); err != nil {
		return nil, err
	}

	o := applyOptions(opts...)
	if o.sampler < 0 || o.sampler > 1 {
		return nil, xerrors.Wrapf(xerrors.ErrInvalidInput, "sampler must be between 0 and 1, got %v", o.sampler)
	}

	ctx := context.Background()

	exporterOpts := []otlptracegrpc.Option{
		otlptracegrpc.WithEndpoint(o.endpoint),
		otlptracegrpc.WithTimeout(5 * time.Second),
	}
	if o.insecure {
		exporterOpts = append(exporterOpts, otlptracegrpc.WithInsecure())
	}

	exporter, err := otlptracegrpc.New(ctx, exporterOpts...)
	if err != nil {
		return nil, xerrors.Wrap(err, "failed to create otlp exporter")
	}

	res, err := resource.New(ctx,
		resource.WithAttributes(
			semconv.ServiceNameKey.String(cfg.ServiceName),
		),
	)
	if err != nil {
		return nil, xerrors.Wrap(err, "failed to create resource")
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sdktrace.ParentBased(sdktrace.TraceIDRatioBased(o.sampler))),
		sdktrace.WithBatcher(exporter),
	)

	otel.SetTracerProvider(tp)

	// TraceContext: W3C 标准 (traceparent header)
	// Baggage: 用于在链路中透传自定义 KV
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	return tp.Shutdown, nil
}

func validateConfig(cfg config.TracingConfig) error {
	if cfg.TracerName != config.TracerJaeger {
		return xerrors.Wrapf(xerrors.ErrInvalidInput,
			"tracer %q is not supported, only jaeger", cfg.TracerName)
	}
	if cfg.ServiceName == "" {
		return xerrors.Wrap(xerrors.ErrInvalidInput, "serviceName is required when tracing is enabled")
	}
	return nil
}
