// Package sleepctl implements the sleepctl command line client.
package sleepctl

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"slices"
	"strings"
	"time"

	entrypoint "github.com/louisbranch/sleepsleep/internal/platform/cmd"
	"github.com/louisbranch/sleepsleep/internal/platform/timeouts"
	server "github.com/louisbranch/sleepsleep/internal/services/ledger/app"
)

// Commands.
const (
	CommandSignUp  = "signup"
	CommandWake    = "wake"
	CommandSleep   = "sleep"
	CommandStatus  = "status"
	CommandCancel  = "cancel"
	CommandLog     = "log"
	CommandDump    = "dump"
	CommandRebuild = "rebuild"
)

var commands = []string{
	CommandSignUp,
	CommandWake,
	CommandSleep,
	CommandStatus,
	CommandCancel,
	CommandLog,
	CommandDump,
	CommandRebuild,
}

// Config holds sleepctl configuration.
type Config struct {
	Command string
	Key     string        `env:"SLEEPSLEEP_KEY" envDefault:"me"`
	Locale  string        `env:"SLEEPSLEEP_LOCALE" envDefault:"en-US"`
	Addr    string        `env:"SLEEPSLEEP_LEDGER_ADDR"`
	Timeout time.Duration `env:"SLEEPSLEEP_CLI_TIMEOUT"`
	// Remote talks to the ledger service at Addr, or on localhost at the
	// ledger's default port when Addr is empty.
	Remote  bool
	Runtime server.RuntimeConfig

	Time      string
	Date      string
	UTCOffset float64
	Page      int
	Filter    string
}

// ParseConfig parses environment, global flags, the command name and the
// command's own flags:
//
//	sleepctl [-store json|sqlite] [-key K] [-locale L] [-addr A] <command> [-time T] [-date D] [-tz H] [-page N] [-filter EXPR]
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := entrypoint.ParseConfig(&cfg); err != nil {
		return Config{}, err
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = timeouts.GRPCRequest
	}

	fs.StringVar(&cfg.Key, "key", cfg.Key, "ledger key (default: SLEEPSLEEP_KEY or me)")
	fs.StringVar(&cfg.Locale, "locale", cfg.Locale, "message locale (en-US or zh-TW)")
	fs.StringVar(&cfg.Addr, "addr", cfg.Addr, "ledger service address; empty uses the local store")
	fs.BoolVar(&cfg.Remote, "remote", false, "use the ledger service even when -addr is empty")
	fs.DurationVar(&cfg.Timeout, "timeout", cfg.Timeout, "per-command timeout")
	fs.StringVar(&cfg.Runtime.Store, "store", cfg.Runtime.Store, "local store backend (json or sqlite)")
	fs.StringVar(&cfg.Runtime.DataDir, "data-dir", cfg.Runtime.DataDir, "directory for json ledgers")
	fs.StringVar(&cfg.Runtime.DBPath, "db-path", cfg.Runtime.DBPath, "sqlite database path")
	fs.StringVar(&cfg.Runtime.Eras, "eras", cfg.Runtime.Eras, "era table as name:epoch pairs")
	if err := entrypoint.ParseArgs(fs, args); err != nil {
		return Config{}, err
	}
	if fs.NArg() == 0 {
		return Config{}, fmt.Errorf("command is required, one of %s", strings.Join(commands, ", "))
	}
	cfg.Command = strings.ToLower(fs.Arg(0))
	if !slices.Contains(commands, cfg.Command) {
		return Config{}, fmt.Errorf("unknown command %q, want one of %s", fs.Arg(0), strings.Join(commands, ", "))
	}

	cfg.UTCOffset = cfg.Runtime.Timezone
	sub := flag.NewFlagSet(fs.Name()+" "+cfg.Command, flag.ContinueOnError)
	sub.SetOutput(fs.Output())
	switch cfg.Command {
	case CommandWake, CommandSleep:
		sub.StringVar(&cfg.Time, "time", "", "local time HH:MM:SS or HH:MM (default: now)")
		sub.StringVar(&cfg.Date, "date", "", "local date YYYY-MM-DD (default: today)")
		sub.Float64Var(&cfg.UTCOffset, "tz", cfg.UTCOffset, "UTC offset in hours of -time and -date")
	case CommandLog:
		sub.IntVar(&cfg.Page, "page", 1, "history page")
		sub.StringVar(&cfg.Filter, "filter", "", `filter expression, e.g. type = "SLEEP"`)
		sub.Float64Var(&cfg.UTCOffset, "tz", cfg.UTCOffset, "UTC offset in hours for displayed times")
	}
	if err := sub.Parse(fs.Args()[1:]); err != nil {
		return Config{}, err
	}
	if sub.NArg() > 0 {
		return Config{}, fmt.Errorf("unexpected arguments %q", sub.Args())
	}
	if strings.TrimSpace(cfg.Date) != "" && strings.TrimSpace(cfg.Time) == "" {
		return Config{}, errors.New("-time is required with -date")
	}
	if strings.TrimSpace(cfg.Key) == "" {
		return Config{}, errors.New("-key is required")
	}
	return cfg, nil
}

// Usage writes the command summary.
func Usage(out io.Writer) {
	fmt.Fprintf(out, "usage: sleepctl [flags] <%s> [command flags]\n", strings.Join(commands, "|"))
}
