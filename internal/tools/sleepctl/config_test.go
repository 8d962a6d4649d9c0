package sleepctl

import (
	"flag"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/louisbranch/sleepsleep/internal/platform/timeouts"
	server "github.com/louisbranch/sleepsleep/internal/services/ledger/app"
)

func newFlagSet() *flag.FlagSet {
	fs := flag.NewFlagSet("sleepctl", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	return fs
}

func TestParseConfig_GlobalAndCommandFlags(t *testing.T) {
	t.Setenv("SLEEPSLEEP_TIMEZONE", "8")

	cfg, err := ParseConfig(newFlagSet(), []string{
		"-key", "42", "-store", "sqlite", "-locale", "zh-TW",
		"wake", "-time", "07:30", "-date", "2024-06-02", "-tz", "9",
	})
	if err != nil {
		t.Fatalf("parse config: %v", err)
	}
	if cfg.Command != CommandWake {
		t.Fatalf("command = %q, want %q", cfg.Command, CommandWake)
	}
	if cfg.Key != "42" || cfg.Locale != "zh-TW" {
		t.Fatalf("key/locale = %q/%q, want 42/zh-TW", cfg.Key, cfg.Locale)
	}
	if cfg.Runtime.Store != server.StoreSQLite {
		t.Fatalf("store = %q, want %q", cfg.Runtime.Store, server.StoreSQLite)
	}
	if cfg.Time != "07:30" || cfg.Date != "2024-06-02" || cfg.UTCOffset != 9 {
		t.Fatalf("time input = %q %q %v", cfg.Time, cfg.Date, cfg.UTCOffset)
	}
}

func TestParseConfig_Defaults(t *testing.T) {
	t.Setenv("SLEEPSLEEP_KEY", "env-key")
	t.Setenv("SLEEPSLEEP_TIMEZONE", "-2")

	cfg, err := ParseConfig(newFlagSet(), []string{"LOG"})
	if err != nil {
		t.Fatalf("parse config: %v", err)
	}
	if cfg.Command != CommandLog {
		t.Fatalf("command = %q, want %q", cfg.Command, CommandLog)
	}
	if cfg.Key != "env-key" {
		t.Fatalf("key = %q, want env-key", cfg.Key)
	}
	if cfg.Page != 1 {
		t.Fatalf("page = %d, want 1", cfg.Page)
	}
	if cfg.UTCOffset != -2 {
		t.Fatalf("utc offset = %v, want the configured timezone -2", cfg.UTCOffset)
	}
	if cfg.Timeout != timeouts.GRPCRequest {
		t.Fatalf("timeout = %v, want %v", cfg.Timeout, timeouts.GRPCRequest)
	}
}

func TestParseConfig_LogFlags(t *testing.T) {
	cfg, err := ParseConfig(newFlagSet(), []string{"-timeout", "3s", "log", "-page", "2", "-filter", `type = "SLEEP"`})
	if err != nil {
		t.Fatalf("parse config: %v", err)
	}
	if cfg.Page != 2 || cfg.Filter != `type = "SLEEP"` {
		t.Fatalf("page/filter = %d/%q", cfg.Page, cfg.Filter)
	}
	if cfg.Timeout != 3*time.Second {
		t.Fatalf("timeout = %v, want 3s", cfg.Timeout)
	}
}

func TestParseConfig_Errors(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{name: "missing command", args: nil, want: "command is required"},
		{name: "unknown command", args: []string{"nap"}, want: "unknown command"},
		{name: "flag of another command", args: []string{"status", "-page", "2"}, want: "page"},
		{name: "extra arguments", args: []string{"dump", "extra"}, want: "unexpected arguments"},
		{name: "blank key", args: []string{"-key", " ", "status"}, want: "-key is required"},
		{name: "date without time", args: []string{"sleep", "-date", "2024-06-02"}, want: "-time is required with -date"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ParseConfig(newFlagSet(), tc.args)
			if err == nil || !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("error = %v, want containing %q", err, tc.want)
			}
		})
	}
}

func TestUsage(t *testing.T) {
	var out strings.Builder
	Usage(&out)
	if !strings.Contains(out.String(), "signup|wake|sleep|status|cancel|log|dump|rebuild") {
		t.Fatalf("usage = %q", out.String())
	}
}
