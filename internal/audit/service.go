package audit

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"edge-authorizer/internal/invocation"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// DefaultWriteTimeout bounds a single store write.
const DefaultWriteTimeout = 250 * time.Millisecond

// Recorder turns invocation metadata into audit records.
//
// IMPORTANT:
// - Record never returns or panics on store failure. Audit failures are not request failures.
// - Exactly one write attempt per call; no retry, no buffering.
// - The write runs detached from the caller's cancellation but bounded by the write timeout.
type Recorder struct {
	store   Store
	log     *slog.Logger
	metrics *Metrics
	tracer  trace.Tracer
	timeout time.Duration
	clock   func() time.Time
	newID   func() string
}

type Option func(*Recorder)

func WithLogger(l *slog.Logger) Option {
	return func(r *Recorder) {
		if l != nil {
			r.log = l
		}
	}
}

func WithMetrics(m *Metrics) Option {
	return func(r *Recorder) { r.metrics = m }
}

func WithTracer(t trace.Tracer) Option {
	return func(r *Recorder) {
		if t != nil {
			r.tracer = t
		}
	}
}

// WithWriteTimeout sets the store write bound. Zero or less disables it.
func WithWriteTimeout(d time.Duration) Option {
	return func(r *Recorder) { r.timeout = d }
}

func WithClock(now func() time.Time) Option {
	return func(r *Recorder) {
		if now != nil {
			r.clock = now
		}
	}
}

func WithIDGenerator(gen func() string) Option {
	return func(r *Recorder) {
		if gen != nil {
			r.newID = gen
		}
	}
}

func NewRecorder(store Store, opts ...Option) *Recorder {
	r := &Recorder{
		store:   store,
		log:     slog.Default(),
		tracer:  otel.Tracer("edge-authorizer/audit"),
		timeout: DefaultWriteTimeout,
		clock:   time.Now,
		newID:   uuid.NewString,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Record builds a record for the invocation, merges extra over the fixed
// attributes and writes it once. The outcome is logged and counted only.
func (r *Recorder) Record(ctx context.Context, eventType EventType, inv invocation.Context, extra map[string]string) {
	if r == nil {
		return
	}
	rec := NewRecord(r.newID(), r.clock(), eventType, inv, extra)

	start := time.Now()
	err := r.put(ctx, rec)
	r.metrics.observe(eventType, err, time.Since(start))

	if err != nil {
		werr := &WriteError{RecordID: rec.ID, EventType: eventType, Err: err}
		r.log.WarnContext(ctx, "audit write failed", append(rec.LogAttrs(), "err", werr)...)
		return
	}
	r.log.DebugContext(ctx, "audit event written", rec.LogAttrs()...)
}

func (r *Recorder) put(ctx context.Context, rec Record) (err error) {
	if r.store == nil {
		return ErrNilStore
	}
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("audit: store panic: %v", p)
		}
	}()

	ctx = context.WithoutCancel(ctx)
	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	ctx, span := r.tracer.Start(ctx, "audit.put", trace.WithAttributes(
		attribute.String("audit.event_id", rec.ID),
		attribute.String("audit.event_type", string(rec.EventType)),
		attribute.Int64("audit.ttl", rec.ExpiresAt),
	))
	defer span.End()

	if err := r.store.Put(ctx, rec, rec.ExpiresAt); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "audit put failed")
		return err
	}
	return nil
}
