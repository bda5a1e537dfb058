package xerrors

import (
	"errors"
	"testing"
)

func TestWrap(t *testing.T) {
	// nil 错误应返回 nil
	if err := Wrap(nil, "context"); err != nil {
		t.Errorf("Wrap(nil) = %v，期望 nil", err)
	}

	base := errors.New("base error")
	wrapped := Wrap(base, "context")
	if wrapped == nil {
		t.Fatal("Wrap(err) = nil，期望非 nil")
	}
	if wrapped.Error() != "context: base error" {
		t.Errorf("Wrap(err).Error() = %q，期望 %q", wrapped.Error(), "context: base error")
	}

	// 应保留错误链
	if !errors.Is(wrapped, base) {
		t.Error("errors.Is(wrapped, base) = false，期望 true")
	}
}

func TestWrapf(t *testing.T) {
	if err := Wrapf(nil, "port %d", 6566); err != nil {
		t.Errorf("Wrapf(nil) = %v，期望 nil", err)
	}

	base := errors.New("out of range")
	wrapped := Wrapf(base, "port %d", 70000)
	if wrapped.Error() != "port 70000: out of range" {
		t.Errorf("Wrapf(err).Error() = %q，期望 %q", wrapped.Error(), "port 70000: out of range")
	}
}

func TestWithField(t *testing.T) {
	// nil 错误应返回 nil
	if err := WithField(nil, "feast.activeStore"); err != nil {
		t.Errorf("WithField(nil) = %v，期望 nil", err)
	}

	base := errors.New("no store with this name")
	fieldErr := WithField(base, "feast.activeStore")
	if fieldErr.Error() != "feast.activeStore: no store with this name" {
		t.Errorf("WithField(err).Error() = %q", fieldErr.Error())
	}

	// GetField 应能提取字段路径
	if path := GetField(fieldErr); path != "feast.activeStore" {
		t.Errorf("GetField(fieldErr) = %q，期望 %q", path, "feast.activeStore")
	}

	// 包装后依然应能提取
	wrapped := Wrap(fieldErr, "load config")
	if path := GetField(wrapped); path != "feast.activeStore" {
		t.Errorf("GetField(wrapped) = %q，期望 %q", path, "feast.activeStore")
	}

	// 错误链应保留哨兵
	withSentinel := WithField(ErrInvalidInput, "grpc.server.port")
	if !Is(withSentinel, ErrInvalidInput) {
		t.Error("Is(withSentinel, ErrInvalidInput) = false，期望 true")
	}
}

func TestGetFieldMissing(t *testing.T) {
	if path := GetField(errors.New("plain")); path != "" {
		t.Errorf("GetField(plain) = %q，期望空字符串", path)
	}
	if path := GetField(nil); path != "" {
		t.Errorf("GetField(nil) = %q，期望空字符串", path)
	}
}

func TestMust(t *testing.T) {
	v := Must(42, nil)
	if v != 42 {
		t.Errorf("Must(42, nil) = %d，期望 42", v)
	}

	defer func() {
		if r := recover(); r == nil {
			t.Error("Must(_, err) 未触发 panic")
		}
	}()
	Must(0, errors.New("boom"))
}

func TestCombine(t *testing.T) {
	// 全 nil 应返回 nil
	if err := Combine(nil, nil); err != nil {
		t.Errorf("Combine(nil, nil) = %v，期望 nil", err)
	}

	// 单个错误应原样返回
	only := errors.New("only")
	if err := Combine(nil, only, nil); err != only {
		t.Errorf("Combine 单错误返回 %v，期望原错误", err)
	}

	// 多个错误应合并为 MultiError
	a := errors.New("a")
	b := errors.New("b")
	combined := Combine(a, b)
	var multi *MultiError
	if !As(combined, &multi) {
		t.Fatalf("Combine(a, b) 类型 = %T，期望 *MultiError", combined)
	}
	if len(multi.Errors) != 2 {
		t.Errorf("len(multi.Errors) = %d，期望 2", len(multi.Errors))
	}
	if !Is(combined, a) || !Is(combined, b) {
		t.Error("合并后的错误链应同时包含 a 和 b")
	}
}
