package engine

import (
	"math"
	"testing"

	apperrors "github.com/louisbranch/sleepsleep/internal/platform/errors"
	"github.com/louisbranch/sleepsleep/internal/services/ledger/domain/event"
)

func TestResolveTimestamp(t *testing.T) {
	t.Parallel()

	now := t0 + 7*86400 // 2024-06-08T00:00:00Z
	eng := newTestEngine(t)

	tests := []struct {
		name    string
		ledger  event.Ledger
		in      TimeInput
		want    int64
		wantErr apperrors.Code
	}{
		{name: "now", in: TimeInput{UTCOffset: 8}, want: now},
		{name: "now ignores bad offset", in: TimeInput{UTCOffset: 99}, want: now},
		{name: "time today", in: TimeInput{Time: "07:30", UTCOffset: 8}, want: now - 1800},
		{name: "time with seconds", in: TimeInput{Time: "07:59:59", UTCOffset: 8}, want: now - 1},
		{name: "explicit date", in: TimeInput{Time: "23:59:59", Date: "2024-06-07", UTCOffset: 0}, want: now - 1},
		{name: "negative offset", in: TimeInput{Time: "19:00", Date: "2024-06-07", UTCOffset: -5}, want: now},
		{name: "fractional offset", in: TimeInput{Time: "05:00", UTCOffset: 5.5}, want: now - 1800},
		{name: "future", in: TimeInput{Time: "08:00:01", UTCOffset: 8}, wantErr: apperrors.CodeInFuture},
		{name: "date without time", in: TimeInput{Date: "2024-06-07", UTCOffset: 8}, wantErr: apperrors.CodeMalformedTime},
		{name: "bad time", in: TimeInput{Time: "25:00", UTCOffset: 8}, wantErr: apperrors.CodeMalformedTime},
		{name: "single digit hour", in: TimeInput{Time: "7:05", UTCOffset: 8}, wantErr: apperrors.CodeMalformedTime},
		{name: "single digit second", in: TimeInput{Time: "07:05:1", UTCOffset: 8}, wantErr: apperrors.CodeMalformedTime},
		{name: "trailing text", in: TimeInput{Time: "07:05pm", UTCOffset: 8}, wantErr: apperrors.CodeMalformedTime},
		{name: "bad date", in: TimeInput{Time: "01:00", Date: "2024/06/07", UTCOffset: 8}, wantErr: apperrors.CodeMalformedTime},
		{name: "offset too large", in: TimeInput{Time: "01:00", UTCOffset: 12.5}, wantErr: apperrors.CodeMalformedTime},
		{name: "offset NaN", in: TimeInput{Time: "01:00", UTCOffset: math.NaN()}, wantErr: apperrors.CodeMalformedTime},
		{
			name:    "before latest",
			ledger:  event.Ledger{{Kind: event.KindWakeUp, Era: "元", Month: 1, Day: 1, Timestamp: now - 100}},
			in:      TimeInput{Time: "07:30", UTCOffset: 8},
			wantErr: apperrors.CodeBeforeLatest,
		},
		{
			name:   "equal to latest",
			ledger: event.Ledger{{Kind: event.KindWakeUp, Era: "元", Month: 1, Day: 1, Timestamp: now - 1800}},
			in:     TimeInput{Time: "07:30", UTCOffset: 8},
			want:   now - 1800,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := eng.ResolveTimestamp(tc.ledger, tc.in)
			if tc.wantErr != "" {
				if !apperrors.HasCode(err, tc.wantErr) {
					t.Fatalf("error = %v, want %s", err, tc.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("resolve: %v", err)
			}
			if got != tc.want {
				t.Fatalf("timestamp = %d, want %d", got, tc.want)
			}
		})
	}
}

func TestZoneRoundsToSeconds(t *testing.T) {
	t.Parallel()

	_, offset := fixedClock().In(Zone(5.75)).Zone()
	if offset != 20700 {
		t.Fatalf("offset = %d, want 20700", offset)
	}
}

func TestValidOffset(t *testing.T) {
	t.Parallel()

	for _, offset := range []float64{-12, 0, 8, 5.5, 12} {
		if !ValidOffset(offset) {
			t.Errorf("ValidOffset(%v) = false, want true", offset)
		}
	}
	for _, offset := range []float64{-12.5, 13, math.Inf(1)} {
		if ValidOffset(offset) {
			t.Errorf("ValidOffset(%v) = true, want false", offset)
		}
	}
}
