package repository

import (
	"context"
	"fmt"
	"iter"
	"log/slog"
	"reflect"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/go-arrower/datarepo/alog"
)

const instrumentationName = "github.com/go-arrower/datarepo/repository"

const (
	outcomeOK    = "ok"
	outcomeMiss  = "miss"
	outcomeError = "error"
)

// ObserveOption configures an ObservedRepository.
type ObserveOption func(config *observeConfig)

// WithLogger sets the logger. Successful operations are logged with alog.LevelDebug,
// rejected ones with slog.LevelWarn. Default is a noop logger.
func WithLogger(logger alog.Logger) ObserveOption { //nolint:revive // unexported-return is OK for this option
	return func(config *observeConfig) {
		config.logger = logger
	}
}

// WithTracerProvider sets the provider for the spans. Default is the global provider.
func WithTracerProvider(tp trace.TracerProvider) ObserveOption { //nolint:revive // unexported-return is OK for this option
	return func(config *observeConfig) {
		config.traceProvider = tp
	}
}

// WithMeterProvider sets the provider for the metrics. Default is the global provider.
func WithMeterProvider(mp metric.MeterProvider) ObserveOption { //nolint:revive // unexported-return is OK for this option
	return func(config *observeConfig) {
		config.meterProvider = mp
	}
}

type observeConfig struct {
	logger        alog.Logger
	traceProvider trace.TracerProvider
	meterProvider metric.MeterProvider
}

// NewObservedRepository wraps repo, so that each operation is traced, counted, and logged.
// The behaviour of repo is not changed: all results and errors are passed through.
//
// Metrics:
//   - datarepo.repository.operations: counter with the attributes entity, op, and outcome (ok, miss, error).
//   - datarepo.repository.records: gauge of the number of entities in repo, reported until Close is called.
func NewObservedRepository[E any, ID id](
	repo Repository[E, ID],
	opts ...ObserveOption,
) (*ObservedRepository[E, ID], error) {
	config := observeConfig{
		logger:        alog.NewNoop(),
		traceProvider: otel.GetTracerProvider(),
		meterProvider: otel.GetMeterProvider(),
	}

	for _, opt := range opts {
		opt(&config)
	}

	entity := reflect.TypeOf((*E)(nil)).Elem().String()
	meter := config.meterProvider.Meter(instrumentationName)

	operations, err := meter.Int64Counter("datarepo.repository.operations",
		metric.WithDescription("number of operations on the repository"),
		metric.WithUnit("{operation}"),
	)
	if err != nil {
		return nil, fmt.Errorf("could not create operations counter: %w", err)
	}

	entityAttr := attribute.String("entity", entity)

	records, err := meter.Int64ObservableGauge("datarepo.repository.records",
		metric.WithDescription("number of entities in the repository"),
		metric.WithUnit("{entity}"),
	)
	if err != nil {
		return nil, fmt.Errorf("could not create records gauge: %w", err)
	}

	registration, err := meter.RegisterCallback(func(ctx context.Context, o metric.Observer) error {
		o.ObserveInt64(records, int64(repo.Count(ctx)), metric.WithAttributes(entityAttr))

		return nil
	}, records)
	if err != nil {
		return nil, fmt.Errorf("could not observe records gauge: %w", err)
	}

	return &ObservedRepository[E, ID]{
		repo:         repo,
		logger:       config.logger.With(slog.String("entity", entity)),
		tracer:       config.traceProvider.Tracer(instrumentationName),
		operations:   operations,
		registration: registration,
		entityAttr:   entityAttr,
	}, nil
}

// ObservedRepository is a Repository, that reports on each operation of an underlying Repository.
//
// The records gauge holds a reference to the underlying Repository, until Close is called
// or the meter provider is shut down.
type ObservedRepository[E any, ID id] struct {
	repo Repository[E, ID]

	logger       alog.Logger
	tracer       trace.Tracer
	operations   metric.Int64Counter
	registration metric.Registration
	closeOnce    sync.Once
	closeErr     error
	entityAttr   attribute.KeyValue
}

var _ Repository[struct{ ID int }, int] = (*ObservedRepository[struct{ ID int }, int])(nil)

// Close stops reporting the records gauge. The repository can still be used afterwards.
func (r *ObservedRepository[E, ID]) Close() error {
	r.closeOnce.Do(func() {
		if err := r.registration.Unregister(); err != nil {
			r.closeErr = fmt.Errorf("could not unregister records gauge: %w", err)
		}
	})

	return r.closeErr
}

func (r *ObservedRepository[E, ID]) start(
	ctx context.Context,
	op string,
	attrs ...attribute.KeyValue,
) (context.Context, trace.Span) {
	return r.tracer.Start(ctx, "repository."+op, //nolint:spancheck // span is ended by the caller
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(append(attrs, r.entityAttr)...),
	)
}

// done records the outcome of op on span, the counter, and the logger.
func (r *ObservedRepository[E, ID]) done(ctx context.Context, span trace.Span, op string, result string, err error) {
	span.SetAttributes(attribute.String("outcome", result))
	r.operations.Add(ctx, 1, metric.WithAttributes(
		r.entityAttr,
		attribute.String("op", op),
		attribute.String("outcome", result),
	))

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		r.logger.Log(ctx, slog.LevelWarn, "repository operation rejected",
			slog.String("op", op), slog.String("err", err.Error()))

		return
	}

	r.logger.Log(ctx, alog.LevelDebug, "repository operation",
		slog.String("op", op), slog.String("outcome", result))
}

func idAttr[ID id](id ID) attribute.KeyValue {
	return attribute.String("id", fmt.Sprint(id))
}

func outcome(found bool) string {
	if found {
		return outcomeOK
	}

	return outcomeMiss
}

func outcomeErr(err error) string {
	if err != nil {
		return outcomeError
	}

	return outcomeOK
}

func (r *ObservedRepository[E, ID]) NextID(ctx context.Context) (ID, error) { //nolint:ireturn,lll // fp, as it is not recognised even with "generic" setting
	ctx, span := r.start(ctx, "next_id")
	defer span.End()

	id, err := r.repo.NextID(ctx)
	span.SetAttributes(idAttr(id))
	r.done(ctx, span, "next_id", outcomeErr(err), err)

	return id, err //nolint:wrapcheck // pass errors through unchanged
}

func (r *ObservedRepository[E, ID]) Add(ctx context.Context, entity E) error {
	ctx, span := r.start(ctx, "add")
	defer span.End()

	err := r.repo.Add(ctx, entity)
	r.done(ctx, span, "add", outcomeErr(err), err)

	return err //nolint:wrapcheck // pass errors through unchanged
}

func (r *ObservedRepository[E, ID]) Create(ctx context.Context, entity E) error {
	ctx, span := r.start(ctx, "create")
	defer span.End()

	err := r.repo.Create(ctx, entity)
	r.done(ctx, span, "create", outcomeErr(err), err)

	return err //nolint:wrapcheck // pass errors through unchanged
}

func (r *ObservedRepository[E, ID]) Update(ctx context.Context, id ID, entity E) (bool, error) {
	ctx, span := r.start(ctx, "update", idAttr(id))
	defer span.End()

	updated, err := r.repo.Update(ctx, id, entity)
	if err != nil {
		r.done(ctx, span, "update", outcomeError, err)
	} else {
		r.done(ctx, span, "update", outcome(updated), nil)
	}

	return updated, err //nolint:wrapcheck // pass errors through unchanged
}

func (r *ObservedRepository[E, ID]) Remove(ctx context.Context, id ID) bool {
	ctx, span := r.start(ctx, "remove", idAttr(id))
	defer span.End()

	removed := r.repo.Remove(ctx, id)
	r.done(ctx, span, "remove", outcome(removed), nil)

	return removed
}

func (r *ObservedRepository[E, ID]) Find(ctx context.Context, predicate func(E) bool) (E, bool) { //nolint:ireturn,lll // valid use of generics
	ctx, span := r.start(ctx, "find")
	defer span.End()

	e, found := r.repo.Find(ctx, predicate)
	r.done(ctx, span, "find", outcome(found), nil)

	return e, found
}

func (r *ObservedRepository[E, ID]) FindAll(ctx context.Context, predicate func(E) bool) []E {
	ctx, span := r.start(ctx, "find_all")
	defer span.End()

	all := r.repo.FindAll(ctx, predicate)
	span.SetAttributes(attribute.Int("results", len(all)))
	r.done(ctx, span, "find_all", outcome(len(all) > 0), nil)

	return all
}

func (r *ObservedRepository[E, ID]) FindByID(ctx context.Context, id ID) (E, bool) { //nolint:ireturn,lll // valid use of generics
	ctx, span := r.start(ctx, "find_by_id", idAttr(id))
	defer span.End()

	e, found := r.repo.FindByID(ctx, id)
	r.done(ctx, span, "find_by_id", outcome(found), nil)

	return e, found
}

func (r *ObservedRepository[E, ID]) Contains(ctx context.Context, id ID) bool {
	ctx, span := r.start(ctx, "contains", idAttr(id))
	defer span.End()

	found := r.repo.Contains(ctx, id)
	r.done(ctx, span, "contains", outcome(found), nil)

	return found
}

func (r *ObservedRepository[E, ID]) All(ctx context.Context) []E {
	ctx, span := r.start(ctx, "all")
	defer span.End()

	all := r.repo.All(ctx)
	span.SetAttributes(attribute.Int("results", len(all)))
	r.done(ctx, span, "all", outcomeOK, nil)

	return all
}

func (r *ObservedRepository[E, ID]) Iter(ctx context.Context) iter.Seq[E] {
	ctx, span := r.start(ctx, "iter")
	defer span.End()

	seq := r.repo.Iter(ctx)
	r.done(ctx, span, "iter", outcomeOK, nil)

	return seq
}

func (r *ObservedRepository[E, ID]) Count(ctx context.Context) int {
	ctx, span := r.start(ctx, "count")
	defer span.End()

	c := r.repo.Count(ctx)
	span.SetAttributes(attribute.Int("results", c))
	r.done(ctx, span, "count", outcomeOK, nil)

	return c
}

func (r *ObservedRepository[E, ID]) Clear(ctx context.Context) {
	ctx, span := r.start(ctx, "clear")
	defer span.End()

	r.repo.Clear(ctx)
	r.done(ctx, span, "clear", outcomeOK, nil)
}
