// Package sqlite provides a SQLite-backed ledger storage implementation.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	sqlitemigrate "github.com/louisbranch/sleepsleep/internal/platform/storage/sqlitemigrate"
	"github.com/louisbranch/sleepsleep/internal/services/ledger/domain/calendar"
	"github.com/louisbranch/sleepsleep/internal/services/ledger/domain/event"
	"github.com/louisbranch/sleepsleep/internal/services/ledger/storage"
	"github.com/louisbranch/sleepsleep/internal/services/ledger/storage/filter"
	"github.com/louisbranch/sleepsleep/internal/services/ledger/storage/sqlite/migrations"
	msqlite "modernc.org/sqlite"
	sqlite3lib "modernc.org/sqlite/lib"
)

// Store persists ledgers in SQLite, one row per event.
type Store struct {
	sqlDB *sql.DB
	cal   *calendar.Calendar
	codec event.Codec
	now   func() time.Time
}

// Open opens a SQLite ledger store and applies embedded migrations. Loaded
// events are validated against cal.
func Open(path string, cal *calendar.Calendar) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	if cal == nil {
		cal = calendar.Default()
	}
	cleanPath := filepath.Clean(path)
	dsn := cleanPath + "?_journal_mode=WAL&_foreign_keys=ON&_busy_timeout=5000&_synchronous=NORMAL"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if _, err := sqlitemigrate.Apply(context.Background(), sqlDB, migrations.FS, ""); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return &Store{sqlDB: sqlDB, cal: cal, codec: event.NewCodec(cal), now: time.Now}, nil
}

// Close closes the SQLite handle.
func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

// LoadLedger returns the events stored for key in ledger order.
func (s *Store) LoadLedger(ctx context.Context, key string) (event.Ledger, error) {
	return s.LoadFilteredLedger(ctx, key, filter.Filter{})
}

// LoadFilteredLedger returns the events for key matching f, in ledger order.
func (s *Store) LoadFilteredLedger(ctx context.Context, key string, f filter.Filter) (event.Ledger, error) {
	if err := s.check(ctx, key); err != nil {
		return nil, err
	}

	query := `SELECT kind, era, month, day, timestamp
	   FROM ledger_events
	  WHERE ledger_key = ?`
	args := []any{key}
	if !f.Empty() {
		cond := f.Condition()
		query += " AND " + cond.Clause
		args = append(args, cond.Params...)
	}
	query += " ORDER BY seq ASC"

	rows, err := s.sqlDB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("load ledger: %w", err)
	}
	defer rows.Close()

	ledger := event.Ledger{}
	for rows.Next() {
		var evt event.Event
		var kind string
		if err := rows.Scan(&kind, &evt.Era, &evt.Month, &evt.Day, &evt.Timestamp); err != nil {
			return nil, fmt.Errorf("load ledger: %w", err)
		}
		evt.Kind = event.Kind(kind)
		if err := evt.Validate(s.cal); err != nil {
			return nil, fmt.Errorf("%w: ledger %s: %v", event.ErrInvalidRecord, key, err)
		}
		ledger = append(ledger, evt)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("load ledger: %w", err)
	}
	return ledger, nil
}

// SaveLedger replaces every event stored for key in one transaction.
func (s *Store) SaveLedger(ctx context.Context, key string, ledger event.Ledger) (err error) {
	if err := s.check(ctx, key); err != nil {
		return err
	}

	tx, err := s.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin save ledger: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err = tx.ExecContext(
		ctx,
		`INSERT INTO ledgers (ledger_key, updated_at) VALUES (?, ?)
		 ON CONFLICT(ledger_key) DO UPDATE SET updated_at = excluded.updated_at`,
		key,
		s.now().UTC().UnixMilli(),
	); err != nil {
		return fmt.Errorf("save ledger: %w", err)
	}
	if _, err = tx.ExecContext(ctx, `DELETE FROM ledger_events WHERE ledger_key = ?`, key); err != nil {
		return fmt.Errorf("save ledger: %w", err)
	}

	stmt, err := tx.PrepareContext(
		ctx,
		`INSERT INTO ledger_events (ledger_key, seq, kind, era, month, day, timestamp)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
	)
	if err != nil {
		return fmt.Errorf("save ledger: %w", err)
	}
	defer stmt.Close()

	for i, evt := range ledger {
		if _, err = stmt.ExecContext(ctx, key, i, string(evt.Kind), evt.Era, evt.Month, evt.Day, evt.Timestamp); err != nil {
			if isCheckViolation(err) {
				err = fmt.Errorf("%w: event %d: %v", event.ErrInvalidRecord, i, err)
				return err
			}
			return fmt.Errorf("save ledger: %w", err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit save ledger: %w", err)
	}
	return nil
}

// DumpLedger renders the stored ledger in the persisted record layout.
func (s *Store) DumpLedger(ctx context.Context, key string) ([]byte, error) {
	if err := s.check(ctx, key); err != nil {
		return nil, err
	}
	var found int
	err := s.sqlDB.QueryRowContext(ctx, `SELECT 1 FROM ledgers WHERE ledger_key = ?`, key).Scan(&found)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("dump ledger: %w", err)
	}
	ledger, err := s.LoadLedger(ctx, key)
	if err != nil {
		return nil, err
	}
	return s.codec.Encode(ledger)
}

func (s *Store) check(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	return storage.ValidateKey(key)
}

func isCheckViolation(err error) bool {
	if err == nil {
		return false
	}
	var sqliteErr *msqlite.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.Code() == sqlite3lib.SQLITE_CONSTRAINT_CHECK
	}
	return strings.Contains(strings.ToLower(err.Error()), "check constraint failed")
}

var (
	_ storage.LedgerStore         = (*Store)(nil)
	_ storage.FilteredLedgerStore = (*Store)(nil)
)
