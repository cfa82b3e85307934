package logging

import (
	"errors"
	"testing"
	"time"

	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestToZapFieldTypes(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	l := NewFromCore(core)

	l.Info("typed",
		String("s", "v"),
		Int("i", 1),
		Int64("i64", 2),
		Float64("f", 0.8),
		Bool("b", true),
		Duration("d", time.Second),
		Err(errors.New("boom")),
		Any("m", map[string]int{"k": 1}),
	)

	entries := logs.All()
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
	ctx := entries[0].ContextMap()
	if ctx["s"] != "v" || ctx["error"] != "boom" {
		t.Errorf("unexpected context: %v", ctx)
	}
}

func TestErrNil(t *testing.T) {
	f := Err(nil)
	if f.Key != "error" || f.Value != "<nil>" {
		t.Errorf("unexpected nil error field: %+v", f)
	}
}

func TestWithAndNamed(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	l := NewFromCore(core).Named("engine").With(String("component", "resolver"))
	l.Warn("slow build")

	e := logs.All()[0]
	if e.LoggerName != "engine" {
		t.Errorf("expected logger name engine, got %s", e.LoggerName)
	}
	if e.ContextMap()["component"] != "resolver" {
		t.Error("With field missing from child logger")
	}
}

func TestNewLoggerDefaults(t *testing.T) {
	l, err := NewLogger(Config{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if l == nil {
		t.Fatal("nil logger")
	}
}

func TestNopLogger(t *testing.T) {
	l := NewNop()
	// Must not panic and child loggers stay nop.
	l.With(String("a", "b")).Named("x").Error("ignored")
}
