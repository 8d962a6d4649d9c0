// Package ledger parses ledger service flags and launches the service.
package ledger

import (
	"context"
	"flag"
	"fmt"

	entrypoint "github.com/louisbranch/sleepsleep/internal/platform/cmd"
	"github.com/louisbranch/sleepsleep/internal/platform/discovery"
	server "github.com/louisbranch/sleepsleep/internal/services/ledger/app"
)

// Config holds ledger command configuration.
type Config struct {
	Port    int `env:"SLEEPSLEEP_LEDGER_PORT"`
	Runtime server.RuntimeConfig
}

// ParseConfig parses environment and flags into Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := entrypoint.ParseConfig(&cfg); err != nil {
		return Config{}, err
	}
	if cfg.Port == 0 {
		cfg.Port = discovery.DefaultGRPCPort(discovery.ServiceLedger)
	}
	fs.IntVar(&cfg.Port, "port", cfg.Port, "The ledger gRPC server port")
	fs.StringVar(&cfg.Runtime.Store, "store", cfg.Runtime.Store, "Ledger store backend (json or sqlite)")
	fs.StringVar(&cfg.Runtime.DataDir, "data-dir", cfg.Runtime.DataDir, "Directory for json ledgers")
	fs.StringVar(&cfg.Runtime.DBPath, "db-path", cfg.Runtime.DBPath, "SQLite database path")
	fs.Float64Var(&cfg.Runtime.Timezone, "timezone", cfg.Runtime.Timezone, "Default UTC offset in hours")
	fs.StringVar(&cfg.Runtime.Eras, "eras", cfg.Runtime.Eras, "Era table as name:epoch pairs")
	if err := entrypoint.ParseArgs(fs, args); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Run starts the ledger gRPC API service.
func Run(ctx context.Context, cfg Config) error {
	return entrypoint.RunWithTelemetry(ctx, entrypoint.ServiceLedger, func(ctx context.Context) error {
		srv, err := server.NewWithConfig(fmt.Sprintf(":%d", cfg.Port), cfg.Runtime)
		if err != nil {
			return err
		}
		return srv.Serve(ctx)
	})
}
