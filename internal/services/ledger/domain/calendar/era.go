package calendar

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"
)

// DefaultEraName names the era every ledger starts in unless configured otherwise.
const DefaultEraName = "元"

// DefaultEraStart is 2023-12-31T16:00:00Z, midnight of 2024-01-01 at UTC+8.
const DefaultEraStart int64 = 1704038400

var (
	// ErrEraTableEmpty indicates an era table without entries.
	ErrEraTableEmpty = errors.New("era table requires at least one era")
	// ErrEraNameRequired indicates an era without a name.
	ErrEraNameRequired = errors.New("era name is required")
)

// Era is one named epoch of the calendar.
type Era struct {
	Name  string
	Start int64 // UTC epoch seconds
}

// EraTable is an ordered, non-empty set of eras, ascending by start.
type EraTable struct {
	eras []Era
}

// DefaultEraTable returns the single-era table new installations use.
func DefaultEraTable() EraTable {
	table, _ := NewEraTable([]Era{{Name: DefaultEraName, Start: DefaultEraStart}})
	return table
}

// NewEraTable validates eras and orders them by start.
func NewEraTable(eras []Era) (EraTable, error) {
	if len(eras) == 0 {
		return EraTable{}, ErrEraTableEmpty
	}
	sorted := make([]Era, 0, len(eras))
	seen := make(map[string]struct{}, len(eras))
	for _, era := range eras {
		name := strings.TrimSpace(era.Name)
		if name == "" {
			return EraTable{}, ErrEraNameRequired
		}
		if _, ok := seen[name]; ok {
			return EraTable{}, fmt.Errorf("duplicate era %q", name)
		}
		seen[name] = struct{}{}
		sorted = append(sorted, Era{Name: name, Start: era.Start})
	}
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Start < sorted[j].Start
	})
	for i := 1; i < len(sorted); i++ {
		if sorted[i].Start == sorted[i-1].Start {
			return EraTable{}, fmt.Errorf("eras %q and %q share start %d", sorted[i-1].Name, sorted[i].Name, sorted[i].Start)
		}
	}
	return EraTable{eras: sorted}, nil
}

// ParseEras parses "name:epoch" pairs separated by commas, e.g. "元:1704038400,貳:1735660800".
func ParseEras(value string) ([]Era, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, ErrEraTableEmpty
	}
	parts := strings.Split(value, ",")
	eras := make([]Era, 0, len(parts))
	for _, part := range parts {
		name, start, ok := strings.Cut(strings.TrimSpace(part), ":")
		if !ok {
			return nil, fmt.Errorf("era %q: expected name:epoch", part)
		}
		epoch, err := strconv.ParseInt(strings.TrimSpace(start), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("era %q: parse epoch: %w", part, err)
		}
		eras = append(eras, Era{Name: strings.TrimSpace(name), Start: epoch})
	}
	return eras, nil
}

// Eras returns a copy of the ordered eras.
func (t EraTable) Eras() []Era {
	out := make([]Era, len(t.eras))
	copy(out, t.eras)
	return out
}

// Len returns the number of eras.
func (t EraTable) Len() int {
	return len(t.eras)
}

// Current returns the latest era; new ledger entries are labeled with it.
func (t EraTable) Current() string {
	if len(t.eras) == 0 {
		return DefaultEraName
	}
	return t.eras[len(t.eras)-1].Name
}

// Index returns the position of name in the table.
func (t EraTable) Index(name string) (int, bool) {
	for i, era := range t.eras {
		if era.Name == name {
			return i, true
		}
	}
	return -1, false
}

// Has reports whether name is a known era.
func (t EraTable) Has(name string) bool {
	_, ok := t.Index(name)
	return ok
}

// At returns the era at index i.
func (t EraTable) At(i int) Era {
	return t.eras[i]
}

// EraFor returns the latest era whose start is at or before ts. Timestamps
// older than every era belong to the first one.
func (t EraTable) EraFor(ts time.Time) string {
	if len(t.eras) == 0 {
		return DefaultEraName
	}
	unix := ts.Unix()
	name := t.eras[0].Name
	for _, era := range t.eras {
		if era.Start > unix {
			break
		}
		name = era.Name
	}
	return name
}

// Next returns the era that follows name, if any.
func (t EraTable) Next(name string) (Era, bool) {
	i, ok := t.Index(name)
	if !ok || i+1 >= len(t.eras) {
		return Era{}, false
	}
	return t.eras[i+1], true
}
