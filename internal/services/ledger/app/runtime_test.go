package server

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/louisbranch/sleepsleep/internal/services/ledger/domain/calendar"
	"github.com/louisbranch/sleepsleep/internal/services/ledger/domain/engine"
)

func TestLoadRuntimeConfigDefaults(t *testing.T) {
	for _, key := range []string{"SLEEPSLEEP_STORE", "SLEEPSLEEP_DATA_DIR", "SLEEPSLEEP_DB_PATH", "SLEEPSLEEP_TIMEZONE", "SLEEPSLEEP_ERAS"} {
		t.Setenv(key, "")
		if err := os.Unsetenv(key); err != nil {
			t.Fatalf("unset %s: %v", key, err)
		}
	}

	cfg, err := LoadRuntimeConfig()
	if err != nil {
		t.Fatalf("load runtime config: %v", err)
	}
	if cfg.Store != StoreJSON {
		t.Fatalf("store = %q, want %q", cfg.Store, StoreJSON)
	}
	if cfg.DataDir != "data" {
		t.Fatalf("data dir = %q, want data", cfg.DataDir)
	}
	if cfg.DBPath != "data/ledger.db" {
		t.Fatalf("db path = %q, want data/ledger.db", cfg.DBPath)
	}
	if cfg.Timezone != 8 {
		t.Fatalf("timezone = %v, want 8", cfg.Timezone)
	}
}

func TestLoadRuntimeConfigFromEnv(t *testing.T) {
	t.Setenv("SLEEPSLEEP_STORE", "sqlite")
	t.Setenv("SLEEPSLEEP_TIMEZONE", "-3.5")
	t.Setenv("SLEEPSLEEP_ERAS", "元:1704038400,貳:1735660800")
	t.Setenv("SLEEPSLEEP_MONTH_SEED", "2,3")

	cfg, err := LoadRuntimeConfig()
	if err != nil {
		t.Fatalf("load runtime config: %v", err)
	}
	if cfg.Store != StoreSQLite || cfg.Timezone != -3.5 {
		t.Fatalf("config = %+v", cfg)
	}
	cal, err := cfg.Calendar()
	if err != nil {
		t.Fatalf("calendar: %v", err)
	}
	if got := cal.Eras().Len(); got != 2 {
		t.Fatalf("eras = %d, want 2", got)
	}
	if got := cal.MonthLength(3); got != 5 {
		t.Fatalf("month 3 length = %d, want 5", got)
	}
}

func TestRuntimeConfigCalendar(t *testing.T) {
	t.Parallel()

	cal, err := RuntimeConfig{}.Calendar()
	if err != nil {
		t.Fatalf("default calendar: %v", err)
	}
	if got := cal.Eras().At(0).Name; got != calendar.DefaultEraName {
		t.Fatalf("era = %q, want %q", got, calendar.DefaultEraName)
	}

	for _, eras := range []string{"元", "元:abc", "元:1,元:2", ":1"} {
		if _, err := (RuntimeConfig{Eras: eras}).Calendar(); err == nil {
			t.Fatalf("expected error for eras %q", eras)
		}
	}
	for _, seed := range [][]int{{4}, {1, 0}} {
		if _, err := (RuntimeConfig{MonthSeed: seed}).Calendar(); err == nil {
			t.Fatalf("expected error for month seed %v", seed)
		}
	}
}

func TestOpenRuntimeStores(t *testing.T) {
	t.Parallel()

	now := time.Unix(1717200000, 0).UTC()
	clock := engine.WithClock(func() time.Time { return now })
	dir := t.TempDir()
	tests := []struct {
		name string
		cfg  RuntimeConfig
	}{
		{name: "json", cfg: RuntimeConfig{Store: StoreJSON, DataDir: filepath.Join(dir, "json"), Timezone: 8}},
		{name: "sqlite", cfg: RuntimeConfig{Store: StoreSQLite, DBPath: filepath.Join(dir, "nested", "ledger.db"), Timezone: 8}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			runtime, err := OpenRuntime(tc.cfg, clock)
			if err != nil {
				t.Fatalf("open runtime: %v", err)
			}
			t.Cleanup(func() {
				if err := runtime.Close(); err != nil {
					t.Fatalf("close runtime: %v", err)
				}
			})
			evt, err := runtime.Tracker.SignUp(context.Background(), "42")
			if err != nil {
				t.Fatalf("sign up: %v", err)
			}
			if evt.Timestamp != now.Unix() {
				t.Fatalf("timestamp = %d, want %d", evt.Timestamp, now.Unix())
			}
		})
	}
}

func TestOpenRuntimeRejectsBadConfig(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	tests := []struct {
		name string
		cfg  RuntimeConfig
	}{
		{name: "unknown store", cfg: RuntimeConfig{Store: "redis", DataDir: dir}},
		{name: "timezone out of range", cfg: RuntimeConfig{Store: StoreJSON, DataDir: dir, Timezone: 13}},
		{name: "bad eras", cfg: RuntimeConfig{Store: StoreJSON, DataDir: dir, Eras: "nope"}},
		{name: "sqlite without path", cfg: RuntimeConfig{Store: StoreSQLite}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := OpenRuntime(tc.cfg); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}

func TestRuntimeCloseNil(t *testing.T) {
	t.Parallel()

	var runtime *Runtime
	if err := runtime.Close(); err != nil {
		t.Fatalf("close nil runtime: %v", err)
	}
}
