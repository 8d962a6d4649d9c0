package event

import (
	"errors"
	"fmt"
)

var (
	// ErrAlternation indicates a ledger whose kinds do not alternate starting with a wake up.
	ErrAlternation = errors.New("ledger kinds must alternate starting with WAKE_UP")
	// ErrChronology indicates a ledger whose timestamps go backwards.
	ErrChronology = errors.New("ledger timestamps must not decrease")
)

// Ledger is the ordered event history of one individual. Ledger order is
// chronological order.
type Ledger []Event

// Empty reports whether the ledger has no events.
func (l Ledger) Empty() bool {
	return len(l) == 0
}

// Last returns the most recent event.
func (l Ledger) Last() (Event, bool) {
	if len(l) == 0 {
		return Event{}, false
	}
	return l[len(l)-1], true
}

// Clone returns an independent copy.
func (l Ledger) Clone() Ledger {
	if l == nil {
		return nil
	}
	out := make(Ledger, len(l))
	copy(out, l)
	return out
}

// Append returns a copy of the ledger with evt at the tail; the receiver is
// left untouched.
func (l Ledger) Append(evt Event) Ledger {
	out := make(Ledger, len(l), len(l)+1)
	copy(out, l)
	return append(out, evt)
}

// Truncate returns a copy without the last event.
func (l Ledger) Truncate() Ledger {
	if len(l) == 0 {
		return Ledger{}
	}
	out := make(Ledger, len(l)-1)
	copy(out, l[:len(l)-1])
	return out
}

// CheckAlternation verifies kinds alternate WAKE_UP, SLEEP, WAKE_UP, ...
func (l Ledger) CheckAlternation() error {
	for i, evt := range l {
		want := KindWakeUp
		if i%2 == 1 {
			want = KindSleep
		}
		if evt.Kind != want {
			return fmt.Errorf("%w: event %d is %s", ErrAlternation, i, evt.Kind)
		}
	}
	return nil
}

// CheckChronology verifies timestamps never decrease.
func (l Ledger) CheckChronology() error {
	for i := 1; i < len(l); i++ {
		if l[i].Timestamp < l[i-1].Timestamp {
			return fmt.Errorf("%w: event %d at %d precedes %d", ErrChronology, i, l[i].Timestamp, l[i-1].Timestamp)
		}
	}
	return nil
}

// Reversed returns the events newest first.
func (l Ledger) Reversed() Ledger {
	out := make(Ledger, len(l))
	for i, evt := range l {
		out[len(l)-1-i] = evt
	}
	return out
}
