package server

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/louisbranch/sleepsleep/internal/platform/config"
	"github.com/louisbranch/sleepsleep/internal/services/ledger/domain/calendar"
	"github.com/louisbranch/sleepsleep/internal/services/ledger/domain/engine"
	"github.com/louisbranch/sleepsleep/internal/services/ledger/domain/event"
	"github.com/louisbranch/sleepsleep/internal/services/ledger/storage"
	"github.com/louisbranch/sleepsleep/internal/services/ledger/storage/jsonfile"
	ledgersqlite "github.com/louisbranch/sleepsleep/internal/services/ledger/storage/sqlite"
	"github.com/louisbranch/sleepsleep/internal/services/ledger/tracker"
)

// Store backends.
const (
	StoreJSON   = "json"
	StoreSQLite = "sqlite"
)

// RuntimeConfig selects the ledger store and calendar.
type RuntimeConfig struct {
	Store   string `env:"SLEEPSLEEP_STORE" envDefault:"json"`
	DataDir string `env:"SLEEPSLEEP_DATA_DIR" envDefault:"data"`
	DBPath  string `env:"SLEEPSLEEP_DB_PATH" envDefault:"data/ledger.db"`
	// Timezone is the default UTC offset in hours for explicit times and
	// History display.
	Timezone float64 `env:"SLEEPSLEEP_TIMEZONE" envDefault:"8"`
	// Eras lists name:epoch pairs; empty means the default era.
	Eras string `env:"SLEEPSLEEP_ERAS"`
	// MonthSeed lists the first month lengths; empty means 1,1.
	MonthSeed []int `env:"SLEEPSLEEP_MONTH_SEED" envSeparator:","`
}

// LoadRuntimeConfig reads RuntimeConfig from the environment.
func LoadRuntimeConfig() (RuntimeConfig, error) {
	var cfg RuntimeConfig
	if err := config.ParseEnv(&cfg); err != nil {
		return RuntimeConfig{}, err
	}
	return cfg, nil
}

// Calendar builds the configured calendar.
func (c RuntimeConfig) Calendar() (*calendar.Calendar, error) {
	table := calendar.DefaultEraTable()
	if strings.TrimSpace(c.Eras) != "" {
		eras, err := calendar.ParseEras(c.Eras)
		if err != nil {
			return nil, fmt.Errorf("parse eras: %w", err)
		}
		table, err = calendar.NewEraTable(eras)
		if err != nil {
			return nil, fmt.Errorf("build era table: %w", err)
		}
	}
	var months *calendar.MonthLengths
	if len(c.MonthSeed) > 0 {
		var err error
		months, err = calendar.NewMonthLengthsWithSeed(c.MonthSeed...)
		if err != nil {
			return nil, fmt.Errorf("build month lengths: %w", err)
		}
	}
	return calendar.New(table, months), nil
}

// Runtime owns an opened store and the tracker over it.
type Runtime struct {
	Tracker *tracker.Tracker
	closer  io.Closer
}

// OpenRuntime opens the configured store and builds a tracker.
func OpenRuntime(cfg RuntimeConfig, opts ...engine.Option) (*Runtime, error) {
	if !engine.ValidOffset(cfg.Timezone) {
		return nil, fmt.Errorf("timezone %v must be within [-%v, %v]", cfg.Timezone, engine.MaxUTCOffset, engine.MaxUTCOffset)
	}
	cal, err := cfg.Calendar()
	if err != nil {
		return nil, err
	}
	store, closer, err := openStore(cfg, cal)
	if err != nil {
		return nil, err
	}
	tr, err := tracker.New(store, engine.New(cal, opts...), tracker.WithDisplayOffset(cfg.Timezone))
	if err != nil {
		if closer != nil {
			_ = closer.Close()
		}
		return nil, err
	}
	return &Runtime{Tracker: tr, closer: closer}, nil
}

// Close releases the store.
func (r *Runtime) Close() error {
	if r == nil || r.closer == nil {
		return nil
	}
	return r.closer.Close()
}

func openStore(cfg RuntimeConfig, cal *calendar.Calendar) (storage.LedgerStore, io.Closer, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Store)) {
	case "", StoreJSON:
		store, err := jsonfile.Open(cfg.DataDir, event.NewCodec(cal))
		if err != nil {
			return nil, nil, fmt.Errorf("open ledger json store: %w", err)
		}
		return store, nil, nil
	case StoreSQLite:
		if dir := filepath.Dir(cfg.DBPath); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, nil, fmt.Errorf("create storage dir: %w", err)
			}
		}
		store, err := ledgersqlite.Open(cfg.DBPath, cal)
		if err != nil {
			return nil, nil, fmt.Errorf("open ledger sqlite store: %w", err)
		}
		return store, store, nil
	default:
		return nil, nil, fmt.Errorf("unknown store %q, want json or sqlite", cfg.Store)
	}
}
