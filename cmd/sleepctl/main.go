// Package main records sleep and wake events from the command line.
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	entrypoint "github.com/louisbranch/sleepsleep/internal/platform/cmd"
	"github.com/louisbranch/sleepsleep/internal/platform/config"
	"github.com/louisbranch/sleepsleep/internal/tools/sleepctl"
)

func main() {
	flag.Usage = func() {
		sleepctl.Usage(flag.CommandLine.Output())
		flag.PrintDefaults()
	}
	cfg, err := sleepctl.ParseConfig(flag.CommandLine, os.Args[1:])
	if err != nil {
		config.ExitCodef(config.ExitUsage, "Error: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err = entrypoint.RunWithTelemetry(ctx, entrypoint.ServiceSleepctl, func(ctx context.Context) error {
		return sleepctl.Run(ctx, cfg, os.Stdout, os.Stderr)
	})
	if err != nil {
		config.Exitf("%s", sleepctl.Describe(cfg.Locale, err))
	}
}
