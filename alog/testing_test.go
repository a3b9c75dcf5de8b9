package alog_test

import (
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/go-arrower/datarepo/alog"
)

func TestTest(t *testing.T) {
	t.Parallel()

	t.Run("test logger", func(t *testing.T) {
		t.Parallel()

		logger := alog.Test(t)
		assert.NotEmpty(t, logger)
		assert.NotNil(t, alog.Unwrap(logger))
	})

	t.Run("nil does panic", func(t *testing.T) {
		t.Parallel()

		assert.Panics(t, func() {
			alog.Test(nil)
		})
	})

	t.Run("default level is datarepo debug", func(t *testing.T) {
		t.Parallel()

		logger := alog.Test(t)
		assert.Equal(t, alog.LevelDebug, logger.Level())

		logger.Log(ctx, alog.LevelDebug, "debug msg")
		logger.Contains("debug msg")
		logger.Contains("DATAREPO:DEBUG")
	})

	t.Run("set level", func(t *testing.T) {
		t.Parallel()

		logger := alog.Test(t)
		logger.SetLevel(slog.LevelInfo)

		logger.Debug("debug msg")
		logger.Empty()
	})

	t.Run("with group", func(t *testing.T) {
		t.Parallel()

		logger := alog.Test(t)

		logger.DebugContext(context.Background(), "msg 0")

		simulateComponentWorkingWithLogger(logger)

		logger.Contains("msg 0")
		logger.Contains("GROUP.some=key")
		logger.Total(2)
	})
}

func simulateComponentWorkingWithLogger(logger alog.Logger) {
	logger = logger.WithGroup("GROUP")
	logger.DebugContext(context.Background(), "msg group", "some", "key")
}

func TestTestLogger_Lines(t *testing.T) {
	t.Parallel()

	logger := alog.Test(t)
	logger.InfoContext(ctx, "line 0")
	logger.InfoContext(ctx, "line 1")

	assert.Len(t, logger.Lines(), 2)
	assert.Contains(t, logger.Lines()[0], `level=INFO msg="line 0"`)
	assert.Contains(t, logger.Lines()[1], `level=INFO msg="line 1"`)
	assert.Equal(t, logger.Lines()[0]+logger.Lines()[1], logger.String())
}

func TestTestLogger_Assertions(t *testing.T) {
	t.Parallel()

	// the assertions are run against a separate testing.T, so failing ones do not fail this test.
	tests := map[string]struct {
		log    bool
		assert func(l *alog.TestLogger) bool
		pass   bool
	}{
		"empty on empty":           {false, func(l *alog.TestLogger) bool { return l.Empty() }, true},
		"empty on logged":          {true, func(l *alog.TestLogger) bool { return l.Empty() }, false},
		"not empty on empty":       {false, func(l *alog.TestLogger) bool { return l.NotEmpty() }, false},
		"not empty on logged":      {true, func(l *alog.TestLogger) bool { return l.NotEmpty() }, true},
		"contains":                 {true, func(l *alog.TestLogger) bool { return l.Contains("debug msg") }, true},
		"contains other":           {true, func(l *alog.TestLogger) bool { return l.Contains("other msg") }, false},
		"not contains other":       {true, func(l *alog.TestLogger) bool { return l.NotContains("other msg") }, true},
		"not contains":             {true, func(l *alog.TestLogger) bool { return l.NotContains("debug msg") }, false},
		"total":                    {true, func(l *alog.TestLogger) bool { return l.Total(1) }, true},
		"total mismatch":           {true, func(l *alog.TestLogger) bool { return l.Total(2) }, false},
		"total of empty is zero":   {false, func(l *alog.TestLogger) bool { return l.Total(0) }, true},
		"contains on empty logger": {false, func(l *alog.TestLogger) bool { return l.Contains("") }, false},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			logger := alog.Test(new(testing.T))
			if tt.log {
				logger.Debug("debug msg")
			}

			assert.Equal(t, tt.pass, tt.assert(logger))
		})
	}
}
