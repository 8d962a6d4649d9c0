package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/louisbranch/sleepsleep/internal/services/ledger/domain/calendar"
	"github.com/louisbranch/sleepsleep/internal/services/ledger/domain/event"
	"github.com/louisbranch/sleepsleep/internal/services/ledger/storage"
	"github.com/louisbranch/sleepsleep/internal/services/ledger/storage/filter"
)

var testLedger = event.Ledger{
	{Kind: event.KindWakeUp, Era: "元", Month: 1, Day: 1, Timestamp: 1704067200},
	{Kind: event.KindSleep, Era: "元", Month: 1, Day: 1, Timestamp: 1704110400},
	{Kind: event.KindWakeUp, Era: "元", Month: 2, Day: 1, Timestamp: 1704153600},
}

func openTempStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "ledger.db")
	store, err := Open(path, calendar.Default())
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() {
		if err := store.Close(); err != nil {
			t.Fatalf("close store: %v", err)
		}
	})
	return store
}

func TestOpenRequiresPath(t *testing.T) {
	t.Parallel()

	if _, err := Open("", nil); err == nil {
		t.Fatal("expected empty path error")
	}
}

func TestOpenIsReentrant(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "ledger.db")
	for i := 0; i < 2; i++ {
		store, err := Open(path, nil)
		if err != nil {
			t.Fatalf("open %d: %v", i, err)
		}
		if err := store.Close(); err != nil {
			t.Fatalf("close %d: %v", i, err)
		}
	}
}

func TestOpenRecordsMigrations(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	var name string
	if err := store.sqlDB.QueryRowContext(context.Background(), "SELECT name FROM schema_migrations").Scan(&name); err != nil {
		t.Fatalf("read migrations: %v", err)
	}
	if name != "0001_ledger.sql" {
		t.Fatalf("applied = %q, want 0001_ledger.sql", name)
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := openTempStore(t)
	if err := store.SaveLedger(ctx, "42", testLedger); err != nil {
		t.Fatalf("save ledger: %v", err)
	}
	got, err := store.LoadLedger(ctx, "42")
	if err != nil {
		t.Fatalf("load ledger: %v", err)
	}
	if len(got) != len(testLedger) {
		t.Fatalf("len = %d, want %d", len(got), len(testLedger))
	}
	for i := range testLedger {
		if got[i] != testLedger[i] {
			t.Fatalf("event %d = %+v, want %+v", i, got[i], testLedger[i])
		}
	}
}

func TestLoadMissingLedgerIsEmpty(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	got, err := store.LoadLedger(context.Background(), "nobody")
	if err != nil {
		t.Fatalf("load ledger: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("len = %d, want 0", len(got))
	}
	if _, err := store.DumpLedger(context.Background(), "nobody"); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("dump error = %v, want %v", err, storage.ErrNotFound)
	}
}

func TestSaveReplacesEvents(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := openTempStore(t)
	if err := store.SaveLedger(ctx, "42", testLedger); err != nil {
		t.Fatalf("save ledger: %v", err)
	}
	if err := store.SaveLedger(ctx, "42", event.Ledger{}); err != nil {
		t.Fatalf("save empty ledger: %v", err)
	}
	got, err := store.LoadLedger(ctx, "42")
	if err != nil {
		t.Fatalf("load ledger: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("len = %d, want 0", len(got))
	}
	dump, err := store.DumpLedger(ctx, "42")
	if err != nil {
		t.Fatalf("dump ledger: %v", err)
	}
	if string(dump) != "[]" {
		t.Fatalf("dump = %q, want []", dump)
	}
}

func TestSaveKeepsKeysIsolated(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := openTempStore(t)
	if err := store.SaveLedger(ctx, "a", testLedger); err != nil {
		t.Fatalf("save a: %v", err)
	}
	if err := store.SaveLedger(ctx, "b", testLedger[:1]); err != nil {
		t.Fatalf("save b: %v", err)
	}
	got, err := store.LoadLedger(ctx, "a")
	if err != nil {
		t.Fatalf("load a: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("len(a) = %d, want 3", len(got))
	}
}

func TestSaveRejectsUnknownKind(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := openTempStore(t)
	if err := store.SaveLedger(ctx, "42", testLedger); err != nil {
		t.Fatalf("save ledger: %v", err)
	}
	bad := event.Ledger{{Kind: "NAP", Era: "元", Month: 1, Day: 1, Timestamp: 1}}
	if err := store.SaveLedger(ctx, "42", bad); !errors.Is(err, event.ErrInvalidRecord) {
		t.Fatalf("save error = %v, want %v", err, event.ErrInvalidRecord)
	}
	got, err := store.LoadLedger(ctx, "42")
	if err != nil {
		t.Fatalf("load ledger: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("failed save changed ledger: len = %d, want 3", len(got))
	}
}

func TestDumpRendersRecordLayout(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := openTempStore(t)
	if err := store.SaveLedger(ctx, "42", testLedger[:1]); err != nil {
		t.Fatalf("save ledger: %v", err)
	}
	dump, err := store.DumpLedger(ctx, "42")
	if err != nil {
		t.Fatalf("dump ledger: %v", err)
	}
	if !strings.Contains(string(dump), `"year": "元"`) || !strings.HasPrefix(string(dump), "[\n  {") {
		t.Fatalf("dump = %s", dump)
	}
}

func TestLoadFilteredLedger(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := openTempStore(t)
	if err := store.SaveLedger(ctx, "42", testLedger); err != nil {
		t.Fatalf("save ledger: %v", err)
	}
	f, err := filter.Parse(`type = "WAKE_UP" AND ts >= timestamp("2024-01-02T00:00:00Z")`)
	if err != nil {
		t.Fatalf("parse filter: %v", err)
	}
	got, err := store.LoadFilteredLedger(ctx, "42", f)
	if err != nil {
		t.Fatalf("load filtered: %v", err)
	}
	if len(got) != 1 || got[0] != testLedger[2] {
		t.Fatalf("filtered = %+v, want [%+v]", got, testLedger[2])
	}
}

func TestInvalidKey(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	if _, err := store.LoadLedger(context.Background(), "../x"); !errors.Is(err, storage.ErrInvalidKey) {
		t.Fatalf("error = %v, want %v", err, storage.ErrInvalidKey)
	}
}
