package tracker

import (
	"context"
	"time"

	apperrors "github.com/louisbranch/sleepsleep/internal/platform/errors"
	"github.com/louisbranch/sleepsleep/internal/platform/grpc/pagination"
	"github.com/louisbranch/sleepsleep/internal/services/ledger/domain/engine"
	"github.com/louisbranch/sleepsleep/internal/services/ledger/domain/event"
	"github.com/louisbranch/sleepsleep/internal/services/ledger/storage"
	"github.com/louisbranch/sleepsleep/internal/services/ledger/storage/filter"
)

// HistoryPageSize is the number of events per History page.
const HistoryPageSize = 10

// Status reports the current state of a ledger.
type Status struct {
	Last event.Event
	// Elapsed is the time spent so far in the current state.
	Elapsed engine.Elapsed
}

// Awake reports whether the last event is a WAKE_UP.
func (s Status) Awake() bool {
	return s.Last.Kind == event.KindWakeUp
}

// HistoryRequest selects a History page.
type HistoryRequest struct {
	Page   int
	Filter string
	// UTCOffset overrides the display offset in hours when set.
	UTCOffset *float64
}

// HistoryEntry is one event as shown in History.
type HistoryEntry struct {
	Event     event.Event
	ShortHash string
	LocalTime time.Time
}

// HistoryPage is one page of events, newest first.
type HistoryPage struct {
	Page       int
	TotalPages int
	Total      int
	Entries    []HistoryEntry
}

// Status returns the last event and the time elapsed since it.
func (t *Tracker) Status(ctx context.Context, key string) (result Status, err error) {
	ctx, span := t.startSpan(ctx, "Status", key)
	defer func() { endSpan(span, err) }()

	ledger, err := t.load(ctx, key)
	if err != nil {
		return Status{}, err
	}
	last, _ := ledger.Last()
	return Status{
		Last:    last,
		Elapsed: engine.ElapsedBetween(last.Timestamp, t.engine.Now().Unix()),
	}, nil
}

// History returns a page of events in reverse chronological order.
func (t *Tracker) History(ctx context.Context, key string, req HistoryRequest) (result HistoryPage, err error) {
	ctx, span := t.startSpan(ctx, "History", key)
	defer func() { endSpan(span, err) }()

	zone := t.DisplayZone()
	if req.UTCOffset != nil {
		if !engine.ValidOffset(*req.UTCOffset) {
			return HistoryPage{}, apperrors.New(apperrors.CodeMalformedTime, "utc offset must be within [-12, 12]")
		}
		zone = engine.Zone(*req.UTCOffset)
	}
	f, err := filter.Parse(req.Filter)
	if err != nil {
		return HistoryPage{}, apperrors.WrapWithMetadata(apperrors.CodeInvalidFilter, "parse history filter", map[string]string{"Filter": req.Filter}, err)
	}

	ledger, err := t.load(ctx, key)
	if err != nil {
		return HistoryPage{}, err
	}
	events, err := t.filtered(ctx, key, ledger, f)
	if err != nil {
		return HistoryPage{}, err
	}

	page := pagination.NumberedPage(req.Page, HistoryPageSize, len(events))
	start, end := page.Bounds()
	newest := events.Reversed()
	result = HistoryPage{
		Page:       page.Number,
		TotalPages: page.TotalPages,
		Total:      page.Total,
		Entries:    make([]HistoryEntry, 0, end-start),
	}
	for _, evt := range newest[start:end] {
		result.Entries = append(result.Entries, HistoryEntry{
			Event:     evt,
			ShortHash: event.ShortHash(evt),
			LocalTime: evt.Time().In(zone),
		})
	}
	return result, nil
}

func (t *Tracker) filtered(ctx context.Context, key string, ledger event.Ledger, f filter.Filter) (event.Ledger, error) {
	if f.Empty() {
		return ledger, nil
	}
	if fs, ok := t.store.(storage.FilteredLedgerStore); ok {
		events, err := fs.LoadFilteredLedger(ctx, key, f)
		if err != nil {
			return nil, storeError("load filtered ledger", err)
		}
		return events, nil
	}
	return f.Apply(ledger), nil
}

// Dump returns the stored ledger in its persisted layout.
func (t *Tracker) Dump(ctx context.Context, key string) (data []byte, err error) {
	ctx, span := t.startSpan(ctx, "Dump", key)
	defer func() { endSpan(span, err) }()

	data, err = t.store.DumpLedger(ctx, key)
	if err != nil {
		return nil, storeError("dump ledger", err)
	}
	return data, nil
}
