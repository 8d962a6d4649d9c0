package tracker

import (
	"context"
	"sync"
	"time"

	"github.com/louisbranch/sleepsleep/internal/services/ledger/domain/calendar"
	"github.com/louisbranch/sleepsleep/internal/services/ledger/domain/engine"
	"github.com/louisbranch/sleepsleep/internal/services/ledger/domain/event"
	"github.com/louisbranch/sleepsleep/internal/services/ledger/storage"
)

type fakeStore struct {
	mu      sync.Mutex
	ledgers map[string]event.Ledger
	saves   int
	loadErr error
	saveErr error
}

func newFakeStore() *fakeStore {
	return &fakeStore{ledgers: make(map[string]event.Ledger)}
}

func (s *fakeStore) LoadLedger(_ context.Context, key string) (event.Ledger, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.loadErr != nil {
		return nil, s.loadErr
	}
	return s.ledgers[key].Clone(), nil
}

func (s *fakeStore) SaveLedger(_ context.Context, key string, ledger event.Ledger) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.saveErr != nil {
		return s.saveErr
	}
	s.saves++
	s.ledgers[key] = ledger.Clone()
	return nil
}

func (s *fakeStore) DumpLedger(_ context.Context, key string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ledger, ok := s.ledgers[key]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return event.NewCodec(nil).Encode(ledger)
}

func (s *fakeStore) get(key string) event.Ledger {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ledgers[key].Clone()
}

func (s *fakeStore) saveCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saves
}

type fakeClock struct {
	mu  sync.Mutex
	now int64
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return time.Unix(c.now, 0).UTC()
}

func (c *fakeClock) Set(unix int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = unix
}

func (c *fakeClock) Advance(seconds int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now += seconds
}

// t0 is 2024-06-01T00:00:00Z, inside the default era.
const t0 int64 = 1717200000

func newTestTracker(store storage.LedgerStore, clock *fakeClock, opts ...Option) *Tracker {
	eng := engine.New(calendar.Default(), engine.WithClock(clock.Now))
	tr, err := New(store, eng, opts...)
	if err != nil {
		panic(err)
	}
	return tr
}
