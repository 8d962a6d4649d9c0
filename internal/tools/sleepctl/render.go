package sleepctl

import (
	"io"
	"time"

	"golang.org/x/text/message"

	i18ncatalog "github.com/louisbranch/sleepsleep/internal/platform/i18n/catalog"
	"github.com/louisbranch/sleepsleep/internal/services/ledger/domain/event"
	"github.com/louisbranch/sleepsleep/internal/services/ledger/tracker"
)

const timeLayout = "2006-01-02 15:04:05"

// renderer prints command results with the localized ledger messages. The
// first write error is kept in err.
type renderer struct {
	out     io.Writer
	printer *message.Printer
	zone    *time.Location
	err     error
}

func newRenderer(out io.Writer, locale string, zone *time.Location) *renderer {
	return &renderer{
		out:     out,
		printer: i18ncatalog.Default().Printer(locale),
		zone:    zone,
	}
}

func (r *renderer) line(key string, args ...any) {
	if r.err != nil {
		return
	}
	if _, err := r.printer.Fprintf(r.out, key, args...); err != nil {
		r.err = err
		return
	}
	_, r.err = io.WriteString(r.out, "\n")
}

func (r *renderer) raw(data []byte) {
	if r.err != nil {
		return
	}
	_, r.err = r.out.Write(data)
	if r.err == nil && (len(data) == 0 || data[len(data)-1] != '\n') {
		_, r.err = io.WriteString(r.out, "\n")
	}
}

func (r *renderer) recordedAt(evt event.Event) {
	r.line("ledger.recorded_at", evt.Time().In(r.zone).Format(timeLayout))
}

func (r *renderer) signUp(evt event.Event) {
	r.line("ledger.signup.title")
	r.line("ledger.signup.body", evt.Date())
	r.recordedAt(evt)
}

func (r *renderer) wake(result tracker.Transition) {
	h, m, s := result.Elapsed.Parts()
	r.line("ledger.wake.title")
	r.line("ledger.wake.body", result.Event.Date(), h, m, s)
	r.recordedAt(result.Event)
}

func (r *renderer) sleep(result tracker.Transition) {
	h, m, s := result.Elapsed.Parts()
	r.line("ledger.sleep.title")
	r.line("ledger.sleep.body", result.Event.Date(), h, m, s)
	r.recordedAt(result.Event)
}

func (r *renderer) status(result tracker.Status) {
	h, m, s := result.Elapsed.Parts()
	if result.Awake() {
		r.line("ledger.status.awake.title")
		r.line("ledger.status.awake.body", result.Last.Date(), h, m, s)
		return
	}
	r.line("ledger.status.asleep.title")
	r.line("ledger.status.asleep.body", result.Last.Date(), h, m, s)
}

func (r *renderer) cancel(result tracker.Cancellation) {
	r.line("ledger.cancel.title")
	r.entry(result.Removed, event.ShortHash(result.Removed), result.Removed.Time().In(r.zone))
}

func (r *renderer) history(page tracker.HistoryPage) {
	r.line("ledger.history.title", page.Page, page.TotalPages)
	if len(page.Entries) == 0 {
		r.line("ledger.history.empty")
		return
	}
	for _, entry := range page.Entries {
		r.entry(entry.Event, entry.ShortHash, entry.LocalTime)
	}
}

func (r *renderer) entry(evt event.Event, hash string, at time.Time) {
	r.line("ledger.history.entry", evt.Date()+" "+string(evt.Kind), hash, at.Format(time.RFC3339))
}

func (r *renderer) rebuild(result tracker.RebuildResult) {
	r.line("ledger.rebuild.body", result.Events, result.Changed)
}
