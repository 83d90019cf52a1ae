package logger

import (
	"testing"

	"go.uber.org/zap/zapcore"

	"github.com/dmehra2102/prod-golang-projects/healthportal/internal/config"
)

func TestNew(t *testing.T) {
	for _, format := range []string{"json", "console"} {
		log, err := New(config.LogConfig{Level: "debug", Format: format, OutputPath: "stdout"})
		if err != nil {
			t.Fatalf("format %s: unexpected error: %v", format, err)
		}
		if !log.Core().Enabled(zapcore.DebugLevel) {
			t.Errorf("format %s: expected debug level enabled", format)
		}
	}
}

func TestNew_InvalidLevel(t *testing.T) {
	if _, err := New(config.LogConfig{Level: "loud", Format: "json", OutputPath: "stdout"}); err == nil {
		t.Fatal("expected error for invalid level")
	}
}
