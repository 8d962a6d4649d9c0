// Package event defines ledger events, the ledger itself, and their persisted
// record layout.
package event

import (
	"errors"
	"fmt"
	"time"

	"github.com/louisbranch/sleepsleep/internal/services/ledger/domain/calendar"
)

// Kind identifies what happened at an event.
type Kind string

const (
	// KindWakeUp starts a calendar day.
	KindWakeUp Kind = "WAKE_UP"
	// KindSleep ends the calendar day opened by the preceding wake up.
	KindSleep Kind = "SLEEP"
)

// Valid reports whether k is a known kind.
func (k Kind) Valid() bool {
	return k == KindWakeUp || k == KindSleep
}

var (
	// ErrInvalidKind indicates an unknown event kind.
	ErrInvalidKind = errors.New("invalid event kind")
	// ErrUnknownEra indicates an era that is not in the era table.
	ErrUnknownEra = errors.New("unknown era")
	// ErrInvalidDate indicates a month/day pair outside the calendar.
	ErrInvalidDate = errors.New("invalid calendar date")
	// ErrInvalidTimestamp indicates a negative timestamp.
	ErrInvalidTimestamp = errors.New("invalid timestamp")
)

// Event is one ledger entry: what happened, when, and which calendar day it
// belongs to.
type Event struct {
	Kind      Kind
	Era       string
	Month     int
	Day       int
	Timestamp int64 // UTC epoch seconds
}

// Time returns the event timestamp as UTC time.
func (e Event) Time() time.Time {
	return time.Unix(e.Timestamp, 0).UTC()
}

// Date formats the derived calendar coordinates, e.g. "元年 3 月 2 日".
func (e Event) Date() string {
	return fmt.Sprintf("%s年 %d 月 %d 日", e.Era, e.Month, e.Day)
}

// SameDay reports whether both events carry the same derived coordinates.
func (e Event) SameDay(other Event) bool {
	return e.Era == other.Era && e.Month == other.Month && e.Day == other.Day
}

// Validate checks the event against cal.
func (e Event) Validate(cal *calendar.Calendar) error {
	if !e.Kind.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidKind, e.Kind)
	}
	if e.Timestamp < 0 {
		return fmt.Errorf("%w: %d", ErrInvalidTimestamp, e.Timestamp)
	}
	if cal == nil {
		return nil
	}
	if !cal.Eras().Has(e.Era) {
		return fmt.Errorf("%w: %q", ErrUnknownEra, e.Era)
	}
	if !cal.ValidDay(e.Month, e.Day) {
		return fmt.Errorf("%w: month %d day %d", ErrInvalidDate, e.Month, e.Day)
	}
	return nil
}
