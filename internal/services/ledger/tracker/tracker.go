// Package tracker implements the sleep ledger commands and queries.
//
// Every mutating command is a serialized read-modify-write cycle per ledger
// key: load the ledger, let the engine compute the next ledger, persist it
// whole. Validation failures return before anything is written.
package tracker

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	otelcodes "go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	apperrors "github.com/louisbranch/sleepsleep/internal/platform/errors"
	"github.com/louisbranch/sleepsleep/internal/services/ledger/domain/engine"
	"github.com/louisbranch/sleepsleep/internal/services/ledger/domain/event"
	"github.com/louisbranch/sleepsleep/internal/services/ledger/storage"
)

const tracerName = "github.com/louisbranch/sleepsleep/internal/services/ledger/tracker"

// DefaultUTCOffset is the display offset in hours used when none is configured.
const DefaultUTCOffset = 8.0

// Tracker runs ledger commands against a store.
type Tracker struct {
	store         storage.LedgerStore
	engine        *engine.Engine
	locks         *keyLocks
	tracer        trace.Tracer
	displayOffset float64
}

// Option configures a Tracker.
type Option func(*Tracker)

// WithDisplayOffset sets the UTC offset in hours used for History timestamps.
func WithDisplayOffset(hours float64) Option {
	return func(t *Tracker) {
		t.displayOffset = hours
	}
}

// WithTracer overrides the tracer used for command spans.
func WithTracer(tracer trace.Tracer) Option {
	return func(t *Tracker) {
		if tracer != nil {
			t.tracer = tracer
		}
	}
}

// New builds a tracker. A nil engine uses the default calendar.
func New(store storage.LedgerStore, eng *engine.Engine, opts ...Option) (*Tracker, error) {
	if store == nil {
		return nil, fmt.Errorf("ledger store is required")
	}
	if eng == nil {
		eng = engine.New(nil)
	}
	t := &Tracker{
		store:         store,
		engine:        eng,
		locks:         newKeyLocks(),
		tracer:        otel.Tracer(tracerName),
		displayOffset: DefaultUTCOffset,
	}
	for _, opt := range opts {
		opt(t)
	}
	if !engine.ValidOffset(t.displayOffset) {
		return nil, fmt.Errorf("display offset %v outside [-%v, %v]", t.displayOffset, engine.MaxUTCOffset, engine.MaxUTCOffset)
	}
	return t, nil
}

// Engine returns the calendar engine.
func (t *Tracker) Engine() *engine.Engine {
	return t.engine
}

// DisplayZone returns the fixed zone History renders timestamps in.
func (t *Tracker) DisplayZone() *time.Location {
	return engine.Zone(t.displayOffset)
}

func (t *Tracker) startSpan(ctx context.Context, op, key string) (context.Context, trace.Span) {
	return t.tracer.Start(ctx, "ledger."+op, trace.WithAttributes(attribute.String("ledger.key", key)))
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, string(apperrors.CodeOf(err)))
	}
	span.End()
}

// load reads the ledger for key and requires it to be non-empty.
func (t *Tracker) load(ctx context.Context, key string) (event.Ledger, error) {
	ledger, err := t.store.LoadLedger(ctx, key)
	if err != nil {
		return nil, storeError("load ledger", err)
	}
	if ledger.Empty() {
		return nil, apperrors.New(apperrors.CodeNotSignedUp, "no ledger for key")
	}
	return ledger, nil
}

func (t *Tracker) save(ctx context.Context, key string, ledger event.Ledger) error {
	if err := t.store.SaveLedger(ctx, key, ledger); err != nil {
		return storeError("save ledger", err)
	}
	return nil
}

// storeError classifies store failures into the error taxonomy. Context
// errors pass through unchanged.
func storeError(op string, err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return err
	case errors.Is(err, storage.ErrInvalidKey):
		return apperrors.Wrap(apperrors.CodeInvalidKey, op, err)
	case errors.Is(err, storage.ErrNotFound):
		return apperrors.Wrap(apperrors.CodeNotSignedUp, op, err)
	case errors.Is(err, event.ErrInvalidRecord):
		return apperrors.Wrap(apperrors.CodeCorruptLedger, op, err)
	default:
		return apperrors.Wrap(apperrors.CodeStoreUnavailable, op, err)
	}
}
