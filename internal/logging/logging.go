// Package logging builds the application's slog handler.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/lmittmann/tint"
	"github.com/mattn/go-isatty"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/mcoot/tabletop-companion/internal/config"
)

// ParseLevel maps a level name to a slog level
func ParseLevel(name string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.TrimSpace(name))); err != nil {
		return slog.LevelInfo, fmt.Errorf("invalid log level %q", name)
	}
	return level, nil
}

// New builds a logger writing to w. Text output is coloured with tint
// unless noColor is set; json output uses the standard JSON handler.
func New(w io.Writer, cfg config.LogConfig, noColor bool) (*slog.Logger, error) {
	level, err := ParseLevel(cfg.Level)
	if err != nil {
		return nil, err
	}

	var handler slog.Handler
	switch cfg.Format {
	case "json":
		handler = slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level})
	default:
		handler = tint.NewHandler(w, &tint.Options{
			Level:      level,
			TimeFormat: time.Kitchen,
			NoColor:    noColor,
		})
	}
	return slog.New(handler), nil
}

// NewWithFile builds a logger that writes to stderr, coloured only on a
// terminal. When cfg.Dir is set it also writes to a rotating file named
// fileName in that directory; the returned closer releases the file.
func NewWithFile(cfg config.LogConfig, fileName string) (*slog.Logger, io.Closer, error) {
	dir := strings.TrimSpace(cfg.Dir)
	if dir == "" {
		logger, err := New(os.Stderr, cfg, !isatty.IsTerminal(os.Stderr.Fd()))
		return logger, nopCloser{}, err
	}
	if cfg.MaxSizeMB <= 0 || cfg.MaxBackups <= 0 || cfg.MaxAgeDays <= 0 {
		return nil, nil, fmt.Errorf("invalid log rotation: size=%d backups=%d age_days=%d",
			cfg.MaxSizeMB, cfg.MaxBackups, cfg.MaxAgeDays)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, nil, fmt.Errorf("create log dir: %w", err)
	}

	file := &lumberjack.Logger{
		Filename:   filepath.Join(dir, fileName),
		MaxSize:    cfg.MaxSizeMB,
		MaxBackups: cfg.MaxBackups,
		MaxAge:     cfg.MaxAgeDays,
		Compress:   cfg.Compress,
	}

	// Colour codes would end up in the file
	logger, err := New(io.MultiWriter(os.Stderr, file), cfg, true)
	if err != nil {
		_ = file.Close()
		return nil, nil, err
	}
	return logger, file, nil
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
