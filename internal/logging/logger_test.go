package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"

	"github.com/google/uuid"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input string
		want  slog.Level
	}{
		{"DEBUG", slog.LevelDebug},
		{"debug", slog.LevelDebug},
		{"WARN", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"ERROR", slog.LevelError},
		{"", slog.LevelInfo},
		{"nonsense", slog.LevelInfo},
	}

	for _, tt := range tests {
		if got := ParseLevel(tt.input); got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestNewJSONLoggerWithRunID(t *testing.T) {
	var buf bytes.Buffer
	logger, runID := WithRunID(New(&buf, "INFO", "json"))

	if _, err := uuid.Parse(runID); err != nil {
		t.Fatalf("run id is not a uuid: %v", err)
	}

	logger.Info("record processed", "taxon_id", 42)
	logger.Debug("hidden")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 1 {
		t.Fatalf("expected 1 log line, got %d: %q", len(lines), buf.String())
	}

	var entry map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &entry); err != nil {
		t.Fatalf("log line is not JSON: %v", err)
	}
	if entry["run_id"] != runID {
		t.Errorf("run_id = %v, want %v", entry["run_id"], runID)
	}
	if entry["taxon_id"] != float64(42) {
		t.Errorf("taxon_id = %v", entry["taxon_id"])
	}
}

func TestNewTextLogger(t *testing.T) {
	var buf bytes.Buffer
	New(&buf, "debug", "text").Debug("geocode cache hit", "key", "x")

	if !strings.Contains(buf.String(), "msg=\"geocode cache hit\"") {
		t.Errorf("unexpected text output: %q", buf.String())
	}
}
