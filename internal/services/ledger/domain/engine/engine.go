// Package engine derives calendar coordinates for ledger events.
//
// The engine is pure: every operation takes a ledger and returns a new one or
// an error, and nothing is persisted here. Callers serialize read-modify-write
// cycles per ledger key.
package engine

import (
	"sort"
	"time"

	"github.com/louisbranch/sleepsleep/internal/services/ledger/domain/calendar"
	"github.com/louisbranch/sleepsleep/internal/services/ledger/domain/event"
)

// Engine applies calendar rules to ledgers.
type Engine struct {
	cal   *calendar.Calendar
	clock func() time.Time
}

// Option configures an Engine.
type Option func(*Engine)

// WithClock overrides the wall clock used for "now" and future checks.
func WithClock(clock func() time.Time) Option {
	return func(e *Engine) {
		if clock != nil {
			e.clock = clock
		}
	}
}

// New returns an engine for cal. A nil calendar uses calendar.Default.
func New(cal *calendar.Calendar, opts ...Option) *Engine {
	if cal == nil {
		cal = calendar.Default()
	}
	e := &Engine{cal: cal, clock: time.Now}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Calendar returns the engine's calendar.
func (e *Engine) Calendar() *calendar.Calendar {
	return e.cal
}

// Now returns the current UTC time according to the engine clock.
func (e *Engine) Now() time.Time {
	return e.clock().UTC()
}

// SignUp returns the first event of a new ledger.
func (e *Engine) SignUp(ts int64) event.Event {
	return event.Event{
		Kind:      event.KindWakeUp,
		Era:       e.cal.Eras().Current(),
		Month:     1,
		Day:       1,
		Timestamp: ts,
	}
}

// AppendWake opens the next calendar day at ts.
//
// An empty ledger gets the sign-up event. Otherwise the last event must be a
// SLEEP. When that SLEEP belongs to the current era the day advances by one,
// rolling into the next month after the month's last day. When it belongs to
// an older era the new day restarts at month 1, day 1 of the current era.
func (e *Engine) AppendWake(ledger event.Ledger, ts int64) (event.Ledger, event.Event, error) {
	last, ok := ledger.Last()
	if !ok {
		evt := e.SignUp(ts)
		return ledger.Append(evt), evt, nil
	}
	if last.Kind == event.KindWakeUp {
		return ledger, event.Event{}, errAlreadyAwake(last, ts)
	}
	if ts < last.Timestamp {
		return ledger, event.Event{}, errBeforeLatest(ts, last.Timestamp)
	}

	current := e.cal.Eras().Current()
	month, day := 1, 1
	if last.Era == current {
		month, day = e.cal.NextDay(last.Month, last.Day)
	}
	evt := event.Event{
		Kind:      event.KindWakeUp,
		Era:       current,
		Month:     month,
		Day:       day,
		Timestamp: ts,
	}
	return ledger.Append(evt), evt, nil
}

// AppendSleep closes the open calendar day at ts. The SLEEP event keeps the
// coordinates of the WAKE_UP it closes.
func (e *Engine) AppendSleep(ledger event.Ledger, ts int64) (event.Ledger, event.Event, error) {
	last, ok := ledger.Last()
	if !ok {
		return ledger, event.Event{}, errNotSignedUp()
	}
	if last.Kind == event.KindSleep {
		return ledger, event.Event{}, errAlreadyAsleep(last, ts)
	}
	if ts < last.Timestamp {
		return ledger, event.Event{}, errBeforeLatest(ts, last.Timestamp)
	}
	evt := event.Event{
		Kind:      event.KindSleep,
		Era:       last.Era,
		Month:     last.Month,
		Day:       last.Day,
		Timestamp: ts,
	}
	return ledger.Append(evt), evt, nil
}

// Rebuild re-derives coordinates for events from their timestamps alone.
//
// Events are ordered by timestamp (ties keep their input order). The walk
// starts in the era of the earliest event at month 1, day 1. Each SLEEP
// advances the day. A WAKE_UP other than the first moves to the next era once
// its timestamp reaches that era's start, so era changes land on wake-up
// boundaries. Rebuilding a rebuilt ledger returns it unchanged.
func (e *Engine) Rebuild(events []event.Event) event.Ledger {
	if len(events) == 0 {
		return event.Ledger{}
	}
	out := make(event.Ledger, len(events))
	copy(out, events)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Timestamp < out[j].Timestamp
	})

	eras := e.cal.Eras()
	eraIndex, ok := eras.Index(out[0].Era)
	if !ok {
		eraIndex, _ = eras.Index(eras.EraFor(out[0].Time()))
	}
	month, day := 1, 1
	for i := range out {
		evt := &out[i]
		evt.Era = eras.At(eraIndex).Name
		evt.Month = month
		evt.Day = day
		if evt.Kind == event.KindWakeUp {
			if i > 0 && eraIndex+1 < eras.Len() && evt.Timestamp >= eras.At(eraIndex+1).Start {
				eraIndex++
				evt.Era = eras.At(eraIndex).Name
			}
			continue
		}
		month, day = e.cal.NextDay(month, day)
	}
	return out
}

// Diff counts positions whose events differ between two ledgers of the same
// length; extra events in either count as changes.
func Diff(before, after event.Ledger) int {
	changed := 0
	for i := 0; i < len(before) || i < len(after); i++ {
		if i >= len(before) || i >= len(after) || before[i] != after[i] {
			changed++
		}
	}
	return changed
}
