package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/google/uuid"
)

// New создает структурированный логгер
// format: "json" (по умолчанию) или "text"
func New(w io.Writer, level, format string) *slog.Logger {
	if w == nil {
		w = os.Stdout
	}

	opts := &slog.HandlerOptions{
		Level: ParseLevel(level),
	}

	var handler slog.Handler
	if strings.EqualFold(format, "text") {
		handler = slog.NewTextHandler(w, opts)
	} else {
		handler = slog.NewJSONHandler(w, opts)
	}

	return slog.New(handler)
}

// ParseLevel преобразует строковый уровень логирования в slog.Level
func ParseLevel(level string) slog.Level {
	switch strings.ToUpper(strings.TrimSpace(level)) {
	case "DEBUG":
		return slog.LevelDebug
	case "WARN", "WARNING":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// WithRunID добавляет к логгеру идентификатор запуска
func WithRunID(logger *slog.Logger) (*slog.Logger, string) {
	runID := uuid.New().String()
	return logger.With("run_id", runID), runID
}

// Discard логгер, который ничего не пишет (для тестов)
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
