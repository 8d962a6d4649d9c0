package event

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/louisbranch/sleepsleep/internal/services/ledger/domain/calendar"
)

// ShortHashLength is how many hex characters History shows per event.
const ShortHashLength = 6

// ErrInvalidRecord indicates a persisted record that fails the v1 schema.
var ErrInvalidRecord = errors.New("invalid ledger record")

// record is the persisted v1 layout. Field order is part of the format.
type record struct {
	Type      Kind   `json:"type"`
	Year      string `json:"year"`
	Month     int    `json:"month"`
	Day       int    `json:"day"`
	Timestamp int64  `json:"timestamp"`
}

// recordV1 decodes a record while tracking which fields were present.
type recordV1 struct {
	Type      *Kind   `json:"type"`
	Year      *string `json:"year"`
	Month     *int    `json:"month"`
	Day       *int    `json:"day"`
	Timestamp *int64  `json:"timestamp"`
}

func toRecord(evt Event) record {
	return record{
		Type:      evt.Kind,
		Year:      evt.Era,
		Month:     evt.Month,
		Day:       evt.Day,
		Timestamp: evt.Timestamp,
	}
}

// Hash returns the hex SHA-256 of the event's compact record encoding.
func Hash(evt Event) (string, error) {
	data, err := marshal(toRecord(evt), false)
	if err != nil {
		return "", fmt.Errorf("encode event: %w", err)
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:]), nil
}

// ShortHash returns the first ShortHashLength characters of Hash.
func ShortHash(evt Event) string {
	hash, err := Hash(evt)
	if err != nil {
		return ""
	}
	return hash[:ShortHashLength]
}

// Codec reads and writes ledgers in the persisted record layout.
type Codec struct {
	cal *calendar.Calendar
}

// NewCodec returns a codec validating records against cal.
func NewCodec(cal *calendar.Calendar) Codec {
	if cal == nil {
		cal = calendar.Default()
	}
	return Codec{cal: cal}
}

// Encode renders the ledger as an indented JSON array of records.
func (c Codec) Encode(ledger Ledger) ([]byte, error) {
	records := make([]record, 0, len(ledger))
	for _, evt := range ledger {
		records = append(records, toRecord(evt))
	}
	data, err := marshal(records, true)
	if err != nil {
		return nil, fmt.Errorf("encode ledger: %w", err)
	}
	return data, nil
}

// Decode parses a persisted ledger. type and timestamp are required; a missing
// year defaults to the current era and missing month/day default to 1. Unknown
// fields are ignored. Every decoded event is validated against the calendar.
func (c Codec) Decode(data []byte) (Ledger, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return Ledger{}, nil
	}
	var raw []recordV1
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRecord, err)
	}
	ledger := make(Ledger, 0, len(raw))
	for i, rec := range raw {
		evt, err := c.upgrade(rec)
		if err != nil {
			return nil, fmt.Errorf("%w: record %d: %v", ErrInvalidRecord, i, err)
		}
		ledger = append(ledger, evt)
	}
	return ledger, nil
}

func (c Codec) upgrade(rec recordV1) (Event, error) {
	if rec.Type == nil {
		return Event{}, errors.New("type is required")
	}
	if rec.Timestamp == nil {
		return Event{}, errors.New("timestamp is required")
	}
	evt := Event{
		Kind:      *rec.Type,
		Era:       c.cal.Eras().Current(),
		Month:     1,
		Day:       1,
		Timestamp: *rec.Timestamp,
	}
	if rec.Year != nil {
		evt.Era = *rec.Year
	}
	if rec.Month != nil {
		evt.Month = *rec.Month
	}
	if rec.Day != nil {
		evt.Day = *rec.Day
	}
	if err := evt.Validate(c.cal); err != nil {
		return Event{}, err
	}
	return evt, nil
}

func marshal(value any, indent bool) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if indent {
		enc.SetIndent("", "  ")
	}
	if err := enc.Encode(value); err != nil {
		return nil, err
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}
