package engine

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/louisbranch/sleepsleep/internal/services/ledger/domain/event"
)

const (
	// MaxUTCOffset bounds the caller-supplied UTC offset in hours.
	MaxUTCOffset = 12.0

	dateLayout = "2006-01-02"
)

var timeLayouts = []string{"15:04:05", "15:04"}

// TimeInput is a caller-supplied local wall time. Both strings empty means "now".
type TimeInput struct {
	Time      string  // HH:MM:SS or HH:MM
	Date      string  // YYYY-MM-DD; defaults to today at UTCOffset
	UTCOffset float64 // hours east of UTC, within [-12, 12]
}

// Explicit reports whether the input names a time instead of "now".
func (in TimeInput) Explicit() bool {
	return strings.TrimSpace(in.Time) != "" || strings.TrimSpace(in.Date) != ""
}

// Zone returns the fixed zone for a UTC offset in hours, rounded to whole seconds.
func Zone(offsetHours float64) *time.Location {
	return time.FixedZone("", int(math.Round(offsetHours*3600)))
}

// ValidOffset reports whether offsetHours is a usable UTC offset.
func ValidOffset(offsetHours float64) bool {
	return !math.IsNaN(offsetHours) && offsetHours >= -MaxUTCOffset && offsetHours <= MaxUTCOffset
}

// ResolveTimestamp turns in into UTC epoch seconds.
//
// "Now" is returned as-is. An explicit time is converted from the caller's
// offset to UTC and must not precede the ledger's last event nor lie in the
// future.
func (e *Engine) ResolveTimestamp(ledger event.Ledger, in TimeInput) (int64, error) {
	now := e.Now()
	if !in.Explicit() {
		return now.Unix(), nil
	}
	if !ValidOffset(in.UTCOffset) {
		return 0, errMalformedTime("utc offset must be within [-12, 12]", nil)
	}
	ts, err := parseLocal(in, now)
	if err != nil {
		return 0, err
	}
	if last, ok := ledger.Last(); ok && ts < last.Timestamp {
		return 0, errBeforeLatest(ts, last.Timestamp)
	}
	if ts > now.Unix() {
		return 0, errInFuture(ts, now.Unix())
	}
	return ts, nil
}

func parseLocal(in TimeInput, now time.Time) (int64, error) {
	zone := Zone(in.UTCOffset)
	timeText := strings.TrimSpace(in.Time)
	dateText := strings.TrimSpace(in.Date)
	if timeText == "" {
		return 0, errMalformedTime("a time (HH:MM:SS or HH:MM) is required with a date", nil)
	}

	clock, err := parseClock(timeText)
	if err != nil {
		return 0, errMalformedTime("parse time "+timeText, err)
	}

	day := now.In(zone)
	if dateText != "" {
		day, err = time.ParseInLocation(dateLayout, dateText, zone)
		if err != nil {
			return 0, errMalformedTime("parse date "+dateText, err)
		}
	}

	local := time.Date(day.Year(), day.Month(), day.Day(), clock.Hour(), clock.Minute(), clock.Second(), 0, zone)
	return local.Unix(), nil
}

// parseClock accepts HH:MM:SS or HH:MM with two-digit fields.
func parseClock(value string) (time.Time, error) {
	var lastErr error
	for _, layout := range timeLayouts {
		if len(value) != len(layout) {
			lastErr = fmt.Errorf("time %q does not match %s", value, layout)
			continue
		}
		parsed, err := time.Parse(layout, value)
		if err == nil {
			return parsed, nil
		}
		lastErr = err
	}
	return time.Time{}, lastErr
}
