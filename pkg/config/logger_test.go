package config

import (
	"testing"

	"go.uber.org/zap/zapcore"
)

func TestNewLogger_DefaultLevel(t *testing.T) {
	logger, err := NewLogger()
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	defer func() { _ = logger.Sync() }()

	if !logger.Core().Enabled(zapcore.InfoLevel) {
		t.Error("expected info level enabled by default")
	}
	if logger.Core().Enabled(zapcore.DebugLevel) {
		t.Error("expected debug level disabled by default")
	}
}

func TestNewLogger_DebugLevel(t *testing.T) {
	t.Setenv("LOG_LEVEL", "debug")

	logger, err := NewLogger()
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	defer func() { _ = logger.Sync() }()

	if !logger.Core().Enabled(zapcore.DebugLevel) {
		t.Error("expected debug level enabled")
	}
}

func TestNewLogger_BadLevel(t *testing.T) {
	t.Setenv("LOG_LEVEL", "loud")

	_, err := NewLogger()
	if err == nil {
		t.Fatal("expected error for unknown log level")
	}
}
