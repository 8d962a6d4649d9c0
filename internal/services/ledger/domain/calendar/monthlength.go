package calendar

import (
	"errors"
	"fmt"
	"sync"
)

// ErrMonthSeedTooShort indicates a seed that cannot start the recurrence.
var ErrMonthSeedTooShort = errors.New("month length seed needs at least two values")

// MonthLengths answers how many days a month has.
//
// Values are computed on demand and cached. The cache only grows and computed
// values never change, so one instance can be shared by concurrent callers.
type MonthLengths struct {
	mu      sync.Mutex
	lengths []int
}

// NewMonthLengths returns a generator seeded with length(1) = length(2) = 1.
func NewMonthLengths() *MonthLengths {
	// Index 0 is a placeholder so indexes line up with 1-based months.
	return &MonthLengths{lengths: []int{0, 1, 1}}
}

// NewMonthLengthsWithSeed returns a generator whose first months have the
// provided lengths. Every later month is the sum of the two before it.
func NewMonthLengthsWithSeed(first ...int) (*MonthLengths, error) {
	if len(first) < 2 {
		return nil, ErrMonthSeedTooShort
	}
	lengths := make([]int, 1, len(first)+1)
	for i, value := range first {
		if value <= 0 {
			return nil, fmt.Errorf("month %d length %d must be positive", i+1, value)
		}
		lengths = append(lengths, value)
	}
	return &MonthLengths{lengths: lengths}, nil
}

// Length returns the number of days in month. Months below 1 have no days.
func (m *MonthLengths) Length(month int) int {
	if month < 1 {
		return 0
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for len(m.lengths) <= month {
		n := len(m.lengths)
		m.lengths = append(m.lengths, m.lengths[n-2]+m.lengths[n-1])
	}
	return m.lengths[month]
}
