package log

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input    string
		expected slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"DEBUG", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"WARNING", slog.LevelWarn},
		{"error", slog.LevelError},
		{"invalid", slog.LevelInfo}, // 默认值
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := parseLevel(tt.input); got != tt.expected {
				t.Errorf("parseLevel(%q) = %v, want %v", tt.input, got, tt.expected)
			}
		})
	}
}

func TestNewConfigFromEnv(t *testing.T) {
	t.Run("default config", func(t *testing.T) {
		t.Setenv("LOG_LEVEL", "")
		t.Setenv("LOG_FORMAT", "")
		t.Setenv("ENV", "")

		cfg := NewConfigFromEnv()
		if cfg.Level != "info" {
			t.Errorf("expected default level info, got %s", cfg.Level)
		}
		if cfg.Format != "console" {
			t.Errorf("expected default format console, got %s", cfg.Format)
		}
	})

	t.Run("custom config", func(t *testing.T) {
		t.Setenv("ENV", "")
		t.Setenv("LOG_LEVEL", "warn")
		t.Setenv("LOG_FORMAT", "json")

		cfg := NewConfigFromEnv()
		if cfg.Level != "warn" || cfg.Format != "json" {
			t.Errorf("unexpected config %+v", cfg)
		}
	})

	t.Run("development mode", func(t *testing.T) {
		t.Setenv("ENV", "development")
		t.Setenv("LOG_LEVEL", "error") // 应该被覆盖

		cfg := NewConfigFromEnv()
		if cfg.Level != "debug" {
			t.Errorf("expected debug in development, got %s", cfg.Level)
		}
		if !cfg.AddSource {
			t.Error("expected AddSource true in development")
		}
	})
}

func TestApplyEnv_OverridesFileValues(t *testing.T) {
	t.Setenv("ENV", "")
	t.Setenv("LOG_LEVEL", "")
	t.Setenv("LOG_FORMAT", "text")
	t.Setenv("LOG_OUTPUT", "")
	t.Setenv("LOG_ADD_SOURCE", "not-a-bool")

	cfg := Config{Level: "warn", Format: "json", Output: "stderr", AddSource: true}
	cfg.ApplyEnv()

	if cfg.Level != "warn" || cfg.Output != "stderr" {
		t.Errorf("unset env must keep file values, got %+v", cfg)
	}
	if cfg.Format != "text" {
		t.Errorf("expected env format text, got %s", cfg.Format)
	}
	if !cfg.AddSource {
		t.Error("invalid bool must keep file value")
	}
}

func TestInit_FileOutput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "server.log")
	Init(&Config{Level: "debug", Format: "json", Output: "file:" + path})
	defer Init(&Config{Level: "info", Format: "console"})

	if !IsDebugMode() {
		t.Error("expected debug mode")
	}

	NewModuleLogger("rag", "ingestion").Debug("batch done", "inserted", 5)

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	out := string(data)
	for _, want := range []string{`"msg":"batch done"`, `"service":"comparo-backend"`, `"module":"rag"`} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %s in %s", want, out)
		}
	}
}

func TestLogCtxFromContext(t *testing.T) {
	ctx := WithRequestID(context.Background(), "req-1")
	ctx = WithSessionID(ctx, "sess-1")

	args := LogCtxFromContext(ctx)
	if len(args) != 2 {
		t.Fatalf("expected 2 attrs, got %d", len(args))
	}
	if RequestIDFromContext(ctx) != "req-1" {
		t.Error("request id not found")
	}
	if len(LogCtxFromContext(context.Background())) != 0 {
		t.Error("expected no attrs for empty context")
	}
}
