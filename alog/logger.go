// Package alog is the structured logger used across datarepo.
// It is a thin layer over log/slog, that fans out to multiple handlers,
// correlates logs with OpenTelemetry traces, and names the datarepo specific levels.
package alog

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
)

// Logger interface is a subset of slog.Logger, with the aim to:
//  1. encourage the use of the methods offering context.Context, so that tracing information can be correlated.
//  2. encourage the use of the levels `DEBUG` and `INFO` over others, but without preventing them, see:
//     https://dave.cheney.net/2015/11/05/lets-talk-about-logging
type Logger interface {
	Log(ctx context.Context, level slog.Level, msg string, args ...any)
	LogAttrs(ctx context.Context, level slog.Level, msg string, attrs ...slog.Attr)
	DebugContext(ctx context.Context, msg string, args ...any)
	InfoContext(ctx context.Context, msg string, args ...any)

	With(args ...any) *slog.Logger
	WithGroup(name string) *slog.Logger
}

var _ Logger = (*slog.Logger)(nil)

const (
	// LevelInfo is used to see what is going on inside datarepo.
	LevelInfo = slog.Level(-8)

	// LevelDebug is used by datarepo developers, if you really want to know what is going on.
	LevelDebug = slog.Level(-12)
)

// MapLogLevelsToName replaces the default name of a custom log level with a speaking name for the datarepo levels.
func MapLogLevelsToName(_ []string, attr slog.Attr) slog.Attr {
	if attr.Key == slog.LevelKey {
		level, _ := attr.Value.Any().(slog.Level)

		levelLabel, exists := getLevelNames()[level]
		if !exists {
			levelLabel = level.String()
		}

		attr.Value = slog.StringValue(levelLabel)
	}

	return attr
}

// getLevelNames maps the datarepo log levels to human-readable names.
func getLevelNames() map[slog.Leveler]string {
	return map[slog.Leveler]string{
		LevelInfo:  "DATAREPO:INFO",
		LevelDebug: "DATAREPO:DEBUG",
	}
}

// ParseLevel parses a level as written in the configuration.
// Next to the slog names it accepts the datarepo levels: `datarepo:info` and `datarepo:debug`.
func ParseLevel(s string) (slog.Level, error) {
	for l, name := range getLevelNames() {
		if strings.EqualFold(name, s) {
			return l.Level(), nil
		}
	}

	var level slog.Level

	err := level.UnmarshalText([]byte(s))
	if err != nil {
		return 0, fmt.Errorf("invalid log level %q: %w", s, err)
	}

	return level, nil
}
