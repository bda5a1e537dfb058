package audit

import (
	"bytes"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/ceyewan/featconf/clog"
	"github.com/ceyewan/featconf/config"
)

func bufferLogger(t *testing.T, buf *bytes.Buffer) clog.Logger {
	t.Helper()
	logger, err := clog.New(&clog.Config{Format: "json"}, clog.WithWriter(buf))
	require.NoError(t, err)
	return logger
}

// TestDisabledAuditorIsNoop audit.enabled 为 false 时全部 no-op
func TestDisabledAuditorIsNoop(t *testing.T) {
	var buf bytes.Buffer
	a, err := New(config.LoggingConfig{
		Audit: config.AuditConfig{Enabled: false},
	}, bufferLogger(t, &buf))
	require.NoError(t, err)

	assert.False(t, a.Enabled())
	a.Action("grpc", "GetOnlineFeatures", "OK")
	assert.NoError(t, a.LogMessage(Message{Method: "GetOnlineFeatures"}))
	assert.Zero(t, buf.Len(), "禁用状态不应有任何输出")
	assert.NoError(t, a.Close())
}

// TestActionEntry 审计条目包含调用信息
func TestActionEntry(t *testing.T) {
	var buf bytes.Buffer
	a, err := New(config.LoggingConfig{
		Audit: config.AuditConfig{Enabled: true},
	}, bufferLogger(t, &buf))
	require.NoError(t, err)
	defer a.Close()

	a.Action("grpc", "GetOnlineFeatures", "OK", clog.String("project", "driver"))

	out := buf.String()
	assert.Contains(t, out, `"method":"GetOnlineFeatures"`)
	assert.Contains(t, out, `"statusCode":"OK"`)
	assert.Contains(t, out, `"project":"driver"`)
	assert.Contains(t, out, `"namespace":"audit"`)
}

// TestConsoleMessageLogging 报文日志输出到 console
func TestConsoleMessageLogging(t *testing.T) {
	var buf bytes.Buffer
	a, err := New(config.LoggingConfig{
		Audit: config.AuditConfig{
			Enabled: true,
			MessageLogging: config.MessageLoggingConfig{
				Enabled:     true,
				Destination: config.DestinationConsole,
			},
		},
	}, bufferLogger(t, &buf))
	require.NoError(t, err)
	defer a.Close()

	require.NoError(t, a.LogMessage(Message{
		Service:    "serving",
		Method:     "GetOnlineFeatures",
		Request:    map[string]any{"entity": "driver_id"},
		StatusCode: "OK",
	}))

	out := buf.String()
	assert.Contains(t, out, `"method":"GetOnlineFeatures"`)
	assert.Contains(t, out, "driver_id")
}

// TestMessageLoggingDisabled 报文日志未启用时 LogMessage 为 no-op
func TestMessageLoggingDisabled(t *testing.T) {
	var buf bytes.Buffer
	a, err := New(config.LoggingConfig{
		Audit: config.AuditConfig{Enabled: true},
	}, bufferLogger(t, &buf))
	require.NoError(t, err)

	require.NoError(t, a.LogMessage(Message{Method: "GetOnlineFeatures"}))
	assert.NotContains(t, buf.String(), "GetOnlineFeatures")
}

// TestFluentdMessageLogging 报文以 Forward 协议发给 fluentd
func TestFluentdMessageLogging(t *testing.T) {
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer listener.Close()

	received := make(chan []any, 1)
	go func() {
		conn, err := listener.Accept()
		if err != nil {
			return
		}
		defer conn.Close()
		var event []any
		if err := msgpack.NewDecoder(conn).Decode(&event); err == nil {
			received <- event
		}
	}()

	addr := listener.Addr().(*net.TCPAddr)
	a, err := New(config.LoggingConfig{
		Audit: config.AuditConfig{
			Enabled: true,
			MessageLogging: config.MessageLoggingConfig{
				Enabled:     true,
				Destination: config.DestinationFluentd,
				FluentdHost: "127.0.0.1",
				FluentdPort: addr.Port,
			},
		},
	}, clog.Discard())
	require.NoError(t, err)
	defer a.Close()

	require.NoError(t, a.LogMessage(Message{
		Service:    "serving",
		Method:     "GetOnlineFeatures",
		StatusCode: "OK",
	}))

	select {
	case event := <-received:
		// Forward 报文为 [tag, time, record, option] 元组
		require.GreaterOrEqual(t, len(event), 3)
		assert.Equal(t, defaultTag, event[0])

		record, ok := event[2].(map[string]any)
		require.True(t, ok, "record 应为 map, 实际 %T", event[2])
		assert.Equal(t, "GetOnlineFeatures", record["method"])
		assert.Equal(t, "OK", record["status_code"])
	case <-time.After(2 * time.Second):
		t.Fatal("等待 fluentd 事件超时")
	}
}

// TestFluentdCustomTag 自定义 tag
func TestFluentdCustomTag(t *testing.T) {
	sink, err := newFluentdSink("localhost", 24224, "serving.audit")
	require.NoError(t, err)
	defer sink.Close()
	assert.Equal(t, "serving.audit", sink.tag)
}

// TestFluentdInvalidAddress 非法地址应报错
func TestFluentdInvalidAddress(t *testing.T) {
	_, err := newFluentdSink("", 24224, defaultTag)
	assert.Error(t, err)

	_, err = newFluentdSink("localhost", 0, defaultTag)
	assert.Error(t, err)
}
