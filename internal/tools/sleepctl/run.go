package sleepctl

import (
	"context"
	"fmt"
	"io"
	"log"

	"github.com/louisbranch/sleepsleep/internal/platform/discovery"
	apperrors "github.com/louisbranch/sleepsleep/internal/platform/errors"
	"github.com/louisbranch/sleepsleep/internal/platform/errors/i18n"
	platformgrpc "github.com/louisbranch/sleepsleep/internal/platform/grpc"
	"github.com/louisbranch/sleepsleep/internal/platform/timeouts"
	ledgerservice "github.com/louisbranch/sleepsleep/internal/services/ledger/api/grpc/ledger"
	server "github.com/louisbranch/sleepsleep/internal/services/ledger/app"
	"github.com/louisbranch/sleepsleep/internal/services/ledger/domain/engine"
	"github.com/louisbranch/sleepsleep/internal/services/ledger/tracker"
)

// Run executes one sleepctl command against the local store or the ledger
// service.
func Run(ctx context.Context, cfg Config, out io.Writer, errOut io.Writer) error {
	if out == nil {
		out = io.Discard
	}
	if errOut == nil {
		errOut = io.Discard
	}
	if ctx == nil {
		ctx = context.Background()
	}

	ledger, closeLedger, err := openLedger(ctx, cfg, errOut)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := closeLedger(); closeErr != nil {
			fmt.Fprintf(errOut, "Error: close ledger: %v\n", closeErr)
		}
	}()

	if cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.Timeout)
		defer cancel()
	}
	return execute(ctx, cfg, ledger, newRenderer(out, cfg.Locale, engine.Zone(cfg.UTCOffset)))
}

func openLedger(ctx context.Context, cfg Config, errOut io.Writer) (ledgerservice.Ledger, func() error, error) {
	if cfg.Addr == "" && !cfg.Remote {
		runtime, err := server.OpenRuntime(cfg.Runtime)
		if err != nil {
			return nil, nil, err
		}
		return runtime.Tracker, runtime.Close, nil
	}

	addr := discovery.OrLocalGRPCAddr(cfg.Addr, discovery.ServiceLedger)
	logger := log.New(errOut, "[SLEEPCTL] ", 0)
	conn, err := platformgrpc.DialWithHealth(ctx, platformgrpc.DialConfig{
		Addr:    addr,
		Service: ledgerservice.ServiceName,
		Timeout: timeouts.GRPCDial,
		Logf:    logger.Printf,
	})
	if err != nil {
		return nil, nil, err
	}
	client, err := ledgerservice.NewClient(conn, cfg.Locale)
	if err != nil {
		_ = conn.Close()
		return nil, nil, err
	}
	return client, conn.Close, nil
}

func execute(ctx context.Context, cfg Config, ledger ledgerservice.Ledger, r *renderer) error {
	timeInput := engine.TimeInput{Time: cfg.Time, Date: cfg.Date, UTCOffset: cfg.UTCOffset}
	switch cfg.Command {
	case CommandSignUp:
		evt, err := ledger.SignUp(ctx, cfg.Key)
		if err != nil {
			return err
		}
		r.signUp(evt)
	case CommandWake:
		result, err := ledger.Wake(ctx, cfg.Key, timeInput)
		if err != nil {
			return err
		}
		r.wake(result)
	case CommandSleep:
		result, err := ledger.Sleep(ctx, cfg.Key, timeInput)
		if err != nil {
			return err
		}
		r.sleep(result)
	case CommandStatus:
		result, err := ledger.Status(ctx, cfg.Key)
		if err != nil {
			return err
		}
		r.status(result)
	case CommandCancel:
		result, err := ledger.CancelLast(ctx, cfg.Key)
		if err != nil {
			return err
		}
		r.cancel(result)
	case CommandLog:
		offset := cfg.UTCOffset
		page, err := ledger.History(ctx, cfg.Key, tracker.HistoryRequest{Page: cfg.Page, Filter: cfg.Filter, UTCOffset: &offset})
		if err != nil {
			return err
		}
		r.history(page)
	case CommandDump:
		data, err := ledger.Dump(ctx, cfg.Key)
		if err != nil {
			return err
		}
		r.raw(data)
	case CommandRebuild:
		result, err := ledger.Rebuild(ctx, cfg.Key)
		if err != nil {
			return err
		}
		r.rebuild(result)
	default:
		return fmt.Errorf("unknown command %q", cfg.Command)
	}
	return r.err
}

// Describe renders err for the user: domain errors get the localized
// message, anything else is reported as is.
func Describe(locale string, err error) string {
	if err == nil {
		return ""
	}
	if _, ok := apperrors.As(err); ok {
		return i18n.Localize(locale, err)
	}
	return "Error: " + err.Error()
}
