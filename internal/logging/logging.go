// Package logging builds the slog.Logger handed to every component.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"course-catalog/internal/config"
)

// ParseLevel accepts debug, info, warn/warning and error (any case).
func ParseLevel(s string) (slog.Level, error) {
	s = strings.TrimSpace(strings.ToLower(s))
	if s == "warning" {
		s = "warn"
	}
	if s == "" {
		return slog.LevelInfo, nil
	}
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(s)); err != nil {
		return slog.LevelInfo, fmt.Errorf("logging: unknown level %q", s)
	}
	return lvl, nil
}

// New returns a text logger writing to console (when enabled) and to
// cfg.File (appended, when set). The returned close func releases the file.
func New(cfg config.LoggingConfig, console io.Writer) (*slog.Logger, func() error, error) {
	lvl, err := ParseLevel(cfg.Level)
	if err != nil {
		return nil, nil, err
	}

	var sinks []io.Writer
	closeFn := func() error { return nil }

	if cfg.Console && console != nil {
		sinks = append(sinks, console)
	}
	if cfg.File != "" {
		if dir := filepath.Dir(cfg.File); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, nil, fmt.Errorf("logging: mkdir %s: %w", dir, err)
			}
		}
		f, err := os.OpenFile(cfg.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, nil, fmt.Errorf("logging: open %s: %w", cfg.File, err)
		}
		sinks = append(sinks, f)
		closeFn = f.Close
	}

	if len(sinks) == 0 {
		return slog.New(slog.DiscardHandler), closeFn, nil
	}

	h := slog.NewTextHandler(io.MultiWriter(sinks...), &slog.HandlerOptions{Level: lvl})
	return slog.New(h), closeFn, nil
}
