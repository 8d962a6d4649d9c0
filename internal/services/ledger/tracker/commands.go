package tracker

import (
	"context"

	apperrors "github.com/louisbranch/sleepsleep/internal/platform/errors"
	"github.com/louisbranch/sleepsleep/internal/services/ledger/domain/engine"
	"github.com/louisbranch/sleepsleep/internal/services/ledger/domain/event"
)

// Transition is the outcome of a Wake or Sleep command.
type Transition struct {
	Event    event.Event
	Previous event.Event
	// Elapsed is the time spent in the previous state.
	Elapsed engine.Elapsed
}

// Cancellation is the outcome of CancelLast.
type Cancellation struct {
	Removed event.Event
	// Remaining is the ledger length after the removal.
	Remaining int
}

// RebuildResult is the outcome of Rebuild.
type RebuildResult struct {
	Events  int
	Changed int
}

// SignUp creates the ledger for key with a WAKE_UP at the current time.
func (t *Tracker) SignUp(ctx context.Context, key string) (evt event.Event, err error) {
	ctx, span := t.startSpan(ctx, "SignUp", key)
	defer func() { endSpan(span, err) }()

	unlock := t.locks.lock(key)
	defer unlock()

	ledger, err := t.store.LoadLedger(ctx, key)
	if err != nil {
		return event.Event{}, storeError("load ledger", err)
	}
	if !ledger.Empty() {
		return event.Event{}, apperrors.New(apperrors.CodeAlreadyRegistered, "ledger already exists")
	}
	next, evt, err := t.engine.AppendWake(ledger, t.engine.Now().Unix())
	if err != nil {
		return event.Event{}, err
	}
	if err := t.save(ctx, key, next); err != nil {
		return event.Event{}, err
	}
	return evt, nil
}

// Wake appends a WAKE_UP at the resolved time.
func (t *Tracker) Wake(ctx context.Context, key string, in engine.TimeInput) (result Transition, err error) {
	ctx, span := t.startSpan(ctx, "Wake", key)
	defer func() { endSpan(span, err) }()
	return t.transition(ctx, key, in, t.engine.AppendWake)
}

// Sleep appends a SLEEP at the resolved time.
func (t *Tracker) Sleep(ctx context.Context, key string, in engine.TimeInput) (result Transition, err error) {
	ctx, span := t.startSpan(ctx, "Sleep", key)
	defer func() { endSpan(span, err) }()
	return t.transition(ctx, key, in, t.engine.AppendSleep)
}

type appendFunc func(event.Ledger, int64) (event.Ledger, event.Event, error)

func (t *Tracker) transition(ctx context.Context, key string, in engine.TimeInput, apply appendFunc) (Transition, error) {
	unlock := t.locks.lock(key)
	defer unlock()

	ledger, err := t.load(ctx, key)
	if err != nil {
		return Transition{}, err
	}
	ts, err := t.engine.ResolveTimestamp(ledger, in)
	if err != nil {
		return Transition{}, err
	}
	previous, _ := ledger.Last()
	next, evt, err := apply(ledger, ts)
	if err != nil {
		return Transition{}, err
	}
	if err := t.save(ctx, key, next); err != nil {
		return Transition{}, err
	}
	return Transition{
		Event:    evt,
		Previous: previous,
		Elapsed:  engine.ElapsedBetween(previous.Timestamp, evt.Timestamp),
	}, nil
}

// CancelLast removes the most recent event. Removing the sign-up event leaves
// an empty ledger, which reads as not signed up.
func (t *Tracker) CancelLast(ctx context.Context, key string) (result Cancellation, err error) {
	ctx, span := t.startSpan(ctx, "CancelLast", key)
	defer func() { endSpan(span, err) }()

	unlock := t.locks.lock(key)
	defer unlock()

	ledger, err := t.load(ctx, key)
	if err != nil {
		return Cancellation{}, err
	}
	removed, _ := ledger.Last()
	next := ledger.Truncate()
	if err := t.save(ctx, key, next); err != nil {
		return Cancellation{}, err
	}
	return Cancellation{Removed: removed, Remaining: len(next)}, nil
}

// Rebuild re-derives every event's coordinates from its timestamp and
// persists the result when anything changed. A ledger whose events do not
// alternate once ordered by time is rejected untouched.
func (t *Tracker) Rebuild(ctx context.Context, key string) (result RebuildResult, err error) {
	ctx, span := t.startSpan(ctx, "Rebuild", key)
	defer func() { endSpan(span, err) }()

	unlock := t.locks.lock(key)
	defer unlock()

	ledger, err := t.load(ctx, key)
	if err != nil {
		return RebuildResult{}, err
	}
	rebuilt := t.engine.Rebuild(ledger)
	if err := rebuilt.CheckAlternation(); err != nil {
		return RebuildResult{}, apperrors.Wrap(apperrors.CodeCorruptLedger, "rebuild ledger", err)
	}
	changed := engine.Diff(ledger, rebuilt)
	if changed > 0 {
		if err := t.save(ctx, key, rebuilt); err != nil {
			return RebuildResult{}, err
		}
	}
	return RebuildResult{Events: len(rebuilt), Changed: changed}, nil
}
