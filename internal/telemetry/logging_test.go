package telemetry

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"DEBUG", slog.LevelDebug},
		{"debug", slog.LevelDebug},
		{" warn ", slog.LevelWarn},
		{"ERROR", slog.LevelError},
		{"", slog.LevelInfo},
		{"verbose", slog.LevelInfo},
	}
	for _, tt := range tests {
		if got := ParseLevel(tt.in); got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestNewLogger_JSON(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(LoggerOptions{Service: "dashboard-server", Output: &buf})

	WithWidgetKey(logger, "Autonomous Mode").Info("widget registered")
	logger.Debug("hidden")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 1 {
		t.Fatalf("expected 1 record, got %d: %s", len(lines), buf.String())
	}

	var rec map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &rec); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if rec["service"] != "dashboard-server" {
		t.Errorf("expected service attr, got %v", rec["service"])
	}
	if rec["widget_key"] != "Autonomous Mode" {
		t.Errorf("expected widget_key attr, got %v", rec["widget_key"])
	}
}

func TestNewLogger_Text(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(LoggerOptions{Format: "text", Level: "debug", Output: &buf})

	logger.Debug("tick", "changes", 3)
	if !strings.Contains(buf.String(), "changes=3") {
		t.Errorf("expected text record, got %s", buf.String())
	}
}

func TestFromContext(t *testing.T) {
	fallback := Nop()
	if FromContext(context.Background(), fallback) != fallback {
		t.Error("expected fallback logger")
	}

	scoped := WithSnapshotID(Nop(), "abc")
	ctx := WithLogger(context.Background(), scoped)
	if FromContext(ctx, fallback) != scoped {
		t.Error("expected logger from context")
	}
}
