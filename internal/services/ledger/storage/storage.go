// Package storage defines persistence contracts for ledger state.
package storage

import (
	"context"
	"errors"

	"github.com/louisbranch/sleepsleep/internal/services/ledger/domain/event"
	"github.com/louisbranch/sleepsleep/internal/services/ledger/storage/filter"
)

var (
	// ErrNotFound indicates no ledger has been persisted for a key.
	ErrNotFound = errors.New("ledger not found")
	// ErrInvalidKey indicates a key that cannot name a ledger.
	ErrInvalidKey = errors.New("invalid ledger key")
)

// LedgerStore persists whole ledgers by key.
//
// LoadLedger returns an empty ledger when nothing is stored for key. SaveLedger
// replaces the stored ledger atomically: either the new ledger is persisted or
// the previous one remains. DumpLedger returns the persisted record layout and
// ErrNotFound when nothing is stored.
type LedgerStore interface {
	LoadLedger(ctx context.Context, key string) (event.Ledger, error)
	SaveLedger(ctx context.Context, key string, ledger event.Ledger) error
	DumpLedger(ctx context.Context, key string) ([]byte, error)
}

// FilteredLedgerStore is implemented by stores that can evaluate history
// filters themselves. Events are returned in ledger order.
type FilteredLedgerStore interface {
	LoadFilteredLedger(ctx context.Context, key string, f filter.Filter) (event.Ledger, error)
}

// ValidateKey checks that key can name a ledger in every backend. Keys are
// opaque identifiers such as chat user IDs; they are also used as file names.
func ValidateKey(key string) error {
	if key == "" || len(key) > 128 || key[0] == '.' {
		return ErrInvalidKey
	}
	for _, r := range key {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		case r == '-', r == '_', r == '.':
		default:
			return ErrInvalidKey
		}
	}
	return nil
}
