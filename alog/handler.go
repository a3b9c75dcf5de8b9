package alog

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"math"
	"os"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// LoggerOpt allows to initialise a logger with custom options.
type LoggerOpt func(h *handler)

// WithHandler adds a slog.Handler to be logged to.
// You can set as many as you want.
func WithHandler(h slog.Handler) LoggerOpt {
	return func(l *handler) {
		l.handlers = append(l.handlers, h)
	}
}

// WithLevel initialises the logger with a starting level.
// To change the level at runtime use Unwrap(logger).SetLevel(LevelInfo).
func WithLevel(level slog.Level) LoggerOpt {
	return func(l *handler) {
		l.level.Set(level)
	}
}

// New returns a production ready logger.
//
// If no options are given it creates a default handler, logging JSON to Stderr.
// Otherwise, use WithHandler to set your own loggers.
// For an example of options at work, see NewDevelopment.
func New(opts ...LoggerOpt) *slog.Logger {
	return slog.New(newHandler(opts...))
}

// NewDevelopment returns a logger ready for local development purposes,
// logging human-readable text to w on debug level.
func NewDevelopment(w io.Writer) *slog.Logger {
	return New(
		WithLevel(slog.LevelDebug),
		WithHandler(slog.NewTextHandler(w, getDebugHandlerOptions())),
	)
}

// NewText returns a logger writing text to w with the given level.
func NewText(w io.Writer, level slog.Level) *slog.Logger {
	return New(
		WithLevel(level),
		WithHandler(slog.NewTextHandler(w, getDebugHandlerOptions())),
	)
}

// NewJSON returns a logger writing JSON to w with the given level.
func NewJSON(w io.Writer, level slog.Level) *slog.Logger {
	return New(
		WithLevel(level),
		WithHandler(slog.NewJSONHandler(w, getDefaultHandlerOptions())),
	)
}

// NewNoop returns an implementation of Logger that performs no operations.
// Ideal as dependency in tests.
func NewNoop() *slog.Logger {
	return New(
		WithLevel(slog.Level(math.MaxInt)),
		WithHandler(slog.NewTextHandler(io.Discard, nil)),
	)
}

// newHandler implements the main datarepo specific logging logic.
// It does not output anything directly and relies on other slog.Handlers to do so.
// If no Handlers are provided via WithHandler, a default JSON handler logs to os.Stderr.
func newHandler(opts ...LoggerOpt) *handler {
	logger := &handler{
		handlers: []slog.Handler{},
		level:    &slog.LevelVar{},
	}

	logger.level.Set(slog.LevelInfo)

	for _, opt := range opts {
		opt(logger)
	}

	hasCustomHandlers := len(logger.handlers) != 0
	if !hasCustomHandlers {
		logger.handlers = []slog.Handler{slog.NewJSONHandler(os.Stderr, getDefaultHandlerOptions())}
	}

	return logger
}

// handler logs to multiple handlers and does the lifting for observability:
// each record is correlated with the active span.
type handler struct {
	// level reports the minimum record level that will be logged.
	// This IS the Level for all handlers.
	// The level of individual handlers set via WithHandler is ignored.
	level *slog.LevelVar

	// handlers is a list which all get called with the same log message.
	handlers []slog.Handler
}

var _ slog.Handler = (*handler)(nil)

func (l *handler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= l.level.Level()
}

func (l *handler) Handle(ctx context.Context, record slog.Record) error {
	span := trace.SpanFromContext(ctx)
	record = record.Clone()

	record = addTraceAndSpanIDsToLogs(span, record)

	if attrs, ok := FromContext(ctx); ok {
		record.AddAttrs(attrs...)
	}

	if span.IsRecording() {
		addLogsToActiveSpanAsEvent(span, getAttrsFromRecord(record), record)
	}

	var retErr error

	for _, h := range l.handlers {
		err := h.Handle(ctx, record.Clone())
		retErr = errors.Join(retErr, err)
	}

	return retErr
}

func (l *handler) WithAttrs(attrs []slog.Attr) slog.Handler {
	handlers := make([]slog.Handler, len(l.handlers))

	for i, h := range l.handlers {
		handlers[i] = h.WithAttrs(attrs)
	}

	return &handler{
		handlers: handlers,
		level:    l.level,
	}
}

func (l *handler) WithGroup(name string) slog.Handler {
	handlers := make([]slog.Handler, len(l.handlers))

	for i, h := range l.handlers {
		handlers[i] = h.WithGroup(name)
	}

	return &handler{
		handlers: handlers,
		level:    l.level,
	}
}

// SetLevel changes the level for all loggers set with WithHandler().
// Even the ones "copied" via any WithX method.
func (l *handler) SetLevel(level slog.Level) {
	l.level.Set(level)
}

// Level returns the log level of the handler.
func (l *handler) Level() slog.Level {
	return l.level.Level()
}

func (l *handler) NumHandlers() int {
	return len(l.handlers)
}

func addTraceAndSpanIDsToLogs(span trace.Span, record slog.Record) slog.Record {
	sCtx := span.SpanContext()
	attrs := make([]slog.Attr, 0)

	if sCtx.HasTraceID() {
		attrs = append(attrs, slog.String("traceID", sCtx.TraceID().String()))
	}

	if sCtx.HasSpanID() {
		attrs = append(attrs, slog.String("spanID", sCtx.SpanID().String()))
	}

	if len(attrs) > 0 {
		record.AddAttrs(attrs...)
	}

	return record
}

func addLogsToActiveSpanAsEvent(span trace.Span, attrs []attribute.KeyValue, record slog.Record) {
	span.AddEvent("log", trace.WithAttributes(attrs...))

	if record.Level >= slog.LevelError {
		span.SetStatus(codes.Error, record.Message)
	}
}

func getAttrsFromRecord(record slog.Record) []attribute.KeyValue {
	attrs := make([]attribute.KeyValue, 0, record.NumAttrs()+2) //nolint:mnd // severity and message

	attrs = append(attrs,
		attribute.String("log.severity", record.Level.String()),
		attribute.String("log.message", record.Message),
	)

	record.Attrs(func(a slog.Attr) bool {
		attrs = append(attrs, attribute.String(a.Key, a.Value.String()))

		return true // process next attr
	})

	return attrs
}

// LevelSetter offers control over the level of a logger at run time.
// Unwrap a logger to get access to this features.
type LevelSetter interface {
	SetLevel(level slog.Level)
	Level() slog.Level
}

// Unwrap unwraps the given logger and returns a LevelSetter.
// In case of an invalid implementation of logger,
// it returns nil.
func Unwrap(logger Logger) LevelSetter { //nolint:ireturn,lll // interface required to return a TestLogger and handler
	if l, ok := logger.(*TestLogger); ok {
		return l
	}

	sl, ok := logger.(*slog.Logger)
	if !ok {
		return nil
	}

	if l, ok := sl.Handler().(*handler); ok {
		return l
	}

	return nil
}

func getDefaultHandlerOptions() *slog.HandlerOptions {
	return &slog.HandlerOptions{
		AddSource:   true,
		Level:       nil, // this level is ignored, handler's level is used for all handlers.
		ReplaceAttr: MapLogLevelsToName,
	}
}

// getDebugHandlerOptions is to keep the log output more readable, by removing not essential keys.
func getDebugHandlerOptions() *slog.HandlerOptions {
	opt := getDefaultHandlerOptions()
	opt.AddSource = false

	return opt
}
