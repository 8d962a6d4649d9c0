package ledger

import (
	"fmt"
	"math"
	"strings"
	"time"

	"google.golang.org/protobuf/types/known/structpb"

	"github.com/louisbranch/sleepsleep/internal/services/ledger/domain/engine"
	"github.com/louisbranch/sleepsleep/internal/services/ledger/domain/event"
	"github.com/louisbranch/sleepsleep/internal/services/ledger/tracker"
)

// Request and response field names.
const (
	fieldKey       = "key"
	fieldTime      = "time"
	fieldDate      = "date"
	fieldUTCOffset = "utc_offset"
	fieldPage      = "page"
	fieldFilter    = "filter"
	fieldLocale    = "locale"
)

func stringField(in *structpb.Struct, name string) (string, error) {
	value, ok := in.GetFields()[name]
	if !ok {
		return "", nil
	}
	switch kind := value.GetKind().(type) {
	case *structpb.Value_StringValue:
		return strings.TrimSpace(kind.StringValue), nil
	case *structpb.Value_NullValue:
		return "", nil
	default:
		return "", fmt.Errorf("%s must be a string", name)
	}
}

func numberField(in *structpb.Struct, name string) (float64, bool, error) {
	value, ok := in.GetFields()[name]
	if !ok {
		return 0, false, nil
	}
	switch kind := value.GetKind().(type) {
	case *structpb.Value_NumberValue:
		if math.IsNaN(kind.NumberValue) || math.IsInf(kind.NumberValue, 0) {
			return 0, false, fmt.Errorf("%s must be finite", name)
		}
		return kind.NumberValue, true, nil
	case *structpb.Value_NullValue:
		return 0, false, nil
	default:
		return 0, false, fmt.Errorf("%s must be a number", name)
	}
}

// maxPage bounds the page field so it converts to int on every platform.
const maxPage = math.MaxInt32

// pageField reads the 1-indexed history page. A missing page is 0, which
// selects the first page.
func pageField(in *structpb.Struct) (int, error) {
	value, ok, err := numberField(in, fieldPage)
	if err != nil || !ok {
		return 0, err
	}
	if value != math.Trunc(value) {
		return 0, fmt.Errorf("%s must be an integer", fieldPage)
	}
	if value < 0 || value > maxPage {
		return 0, fmt.Errorf("%s must be within [0, %d]", fieldPage, maxPage)
	}
	return int(value), nil
}

func eventValue(evt event.Event) map[string]any {
	return map[string]any{
		"type":      string(evt.Kind),
		"year":      evt.Era,
		"month":     evt.Month,
		"day":       evt.Day,
		"timestamp": evt.Timestamp,
		"date":      evt.Date(),
		"hash":      event.ShortHash(evt),
	}
}

func eventFromStruct(in *structpb.Struct) event.Event {
	fields := in.GetFields()
	return event.Event{
		Kind:      event.Kind(fields["type"].GetStringValue()),
		Era:       fields["year"].GetStringValue(),
		Month:     int(fields["month"].GetNumberValue()),
		Day:       int(fields["day"].GetNumberValue()),
		Timestamp: int64(fields["timestamp"].GetNumberValue()),
	}
}

func elapsedFromStruct(in *structpb.Struct) engine.Elapsed {
	return engine.Elapsed(int64(in.GetFields()["elapsed_seconds"].GetNumberValue()))
}

func signUpResponse(evt event.Event) (*structpb.Struct, error) {
	return structpb.NewStruct(map[string]any{"event": eventValue(evt)})
}

func transitionResponse(result tracker.Transition) (*structpb.Struct, error) {
	return structpb.NewStruct(map[string]any{
		"event":           eventValue(result.Event),
		"previous":        eventValue(result.Previous),
		"elapsed":         result.Elapsed.String(),
		"elapsed_seconds": int64(result.Elapsed),
	})
}

func transitionFromStruct(in *structpb.Struct) tracker.Transition {
	fields := in.GetFields()
	return tracker.Transition{
		Event:    eventFromStruct(fields["event"].GetStructValue()),
		Previous: eventFromStruct(fields["previous"].GetStructValue()),
		Elapsed:  elapsedFromStruct(in),
	}
}

func statusResponse(result tracker.Status) (*structpb.Struct, error) {
	return structpb.NewStruct(map[string]any{
		"event":           eventValue(result.Last),
		"awake":           result.Awake(),
		"elapsed":         result.Elapsed.String(),
		"elapsed_seconds": int64(result.Elapsed),
	})
}

func statusFromStruct(in *structpb.Struct) tracker.Status {
	return tracker.Status{
		Last:    eventFromStruct(in.GetFields()["event"].GetStructValue()),
		Elapsed: elapsedFromStruct(in),
	}
}

func cancelResponse(result tracker.Cancellation) (*structpb.Struct, error) {
	return structpb.NewStruct(map[string]any{
		"removed":   eventValue(result.Removed),
		"remaining": result.Remaining,
	})
}

func cancelFromStruct(in *structpb.Struct) tracker.Cancellation {
	fields := in.GetFields()
	return tracker.Cancellation{
		Removed:   eventFromStruct(fields["removed"].GetStructValue()),
		Remaining: int(fields["remaining"].GetNumberValue()),
	}
}

func historyResponse(page tracker.HistoryPage) (*structpb.Struct, error) {
	entries := make([]any, 0, len(page.Entries))
	for _, entry := range page.Entries {
		entries = append(entries, map[string]any{
			"event":      eventValue(entry.Event),
			"hash":       entry.ShortHash,
			"local_time": entry.LocalTime.Format(time.RFC3339),
		})
	}
	return structpb.NewStruct(map[string]any{
		"page":        page.Page,
		"total_pages": page.TotalPages,
		"total":       page.Total,
		"entries":     entries,
	})
}

func historyFromStruct(in *structpb.Struct) (tracker.HistoryPage, error) {
	fields := in.GetFields()
	page := tracker.HistoryPage{
		Page:       int(fields["page"].GetNumberValue()),
		TotalPages: int(fields["total_pages"].GetNumberValue()),
		Total:      int(fields["total"].GetNumberValue()),
	}
	for _, value := range fields["entries"].GetListValue().GetValues() {
		entry := value.GetStructValue().GetFields()
		localTime, err := time.Parse(time.RFC3339, entry["local_time"].GetStringValue())
		if err != nil {
			return tracker.HistoryPage{}, fmt.Errorf("parse local_time: %w", err)
		}
		page.Entries = append(page.Entries, tracker.HistoryEntry{
			Event:     eventFromStruct(entry["event"].GetStructValue()),
			ShortHash: entry["hash"].GetStringValue(),
			LocalTime: localTime,
		})
	}
	return page, nil
}

func rebuildResponse(result tracker.RebuildResult) (*structpb.Struct, error) {
	return structpb.NewStruct(map[string]any{
		"events":  result.Events,
		"changed": result.Changed,
	})
}

func rebuildFromStruct(in *structpb.Struct) tracker.RebuildResult {
	fields := in.GetFields()
	return tracker.RebuildResult{
		Events:  int(fields["events"].GetNumberValue()),
		Changed: int(fields["changed"].GetNumberValue()),
	}
}
