package ledger

import (
	"context"
	"errors"
	"fmt"

	"google.golang.org/grpc"
	"google.golang.org/grpc/metadata"
	"google.golang.org/protobuf/types/known/structpb"

	apperrors "github.com/louisbranch/sleepsleep/internal/platform/errors"
	"github.com/louisbranch/sleepsleep/internal/platform/requestctx"
	"github.com/louisbranch/sleepsleep/internal/services/ledger/domain/engine"
	"github.com/louisbranch/sleepsleep/internal/services/ledger/domain/event"
	"github.com/louisbranch/sleepsleep/internal/services/ledger/tracker"
)

// Client calls a remote ledger service. Domain errors raised by the server
// are returned as *apperrors.Error values.
type Client struct {
	conn   grpc.ClientConnInterface
	locale string
}

var _ Ledger = (*Client)(nil)

// NewClient creates a client over conn. locale selects the language of
// server-rendered error messages.
func NewClient(conn grpc.ClientConnInterface, locale string) (*Client, error) {
	if conn == nil {
		return nil, errors.New("ledger client connection is required")
	}
	return &Client{conn: conn, locale: locale}, nil
}

// SignUp creates a ledger.
func (c *Client) SignUp(ctx context.Context, key string) (event.Event, error) {
	out, err := c.invoke(ctx, LedgerService_SignUp_FullMethodName, map[string]any{fieldKey: key})
	if err != nil {
		return event.Event{}, err
	}
	return eventFromStruct(out.GetFields()["event"].GetStructValue()), nil
}

// Wake records a WAKE_UP.
func (c *Client) Wake(ctx context.Context, key string, in engine.TimeInput) (tracker.Transition, error) {
	out, err := c.invoke(ctx, LedgerService_Wake_FullMethodName, timeRequest(key, in))
	if err != nil {
		return tracker.Transition{}, err
	}
	return transitionFromStruct(out), nil
}

// Sleep records a SLEEP.
func (c *Client) Sleep(ctx context.Context, key string, in engine.TimeInput) (tracker.Transition, error) {
	out, err := c.invoke(ctx, LedgerService_Sleep_FullMethodName, timeRequest(key, in))
	if err != nil {
		return tracker.Transition{}, err
	}
	return transitionFromStruct(out), nil
}

// Status reports the last event and the time since it.
func (c *Client) Status(ctx context.Context, key string) (tracker.Status, error) {
	out, err := c.invoke(ctx, LedgerService_Status_FullMethodName, map[string]any{fieldKey: key})
	if err != nil {
		return tracker.Status{}, err
	}
	return statusFromStruct(out), nil
}

// CancelLast removes the newest event.
func (c *Client) CancelLast(ctx context.Context, key string) (tracker.Cancellation, error) {
	out, err := c.invoke(ctx, LedgerService_CancelLast_FullMethodName, map[string]any{fieldKey: key})
	if err != nil {
		return tracker.Cancellation{}, err
	}
	return cancelFromStruct(out), nil
}

// History returns a page of events, newest first.
func (c *Client) History(ctx context.Context, key string, req tracker.HistoryRequest) (tracker.HistoryPage, error) {
	fields := map[string]any{
		fieldKey:    key,
		fieldPage:   req.Page,
		fieldFilter: req.Filter,
	}
	if req.UTCOffset != nil {
		fields[fieldUTCOffset] = *req.UTCOffset
	}
	out, err := c.invoke(ctx, LedgerService_History_FullMethodName, fields)
	if err != nil {
		return tracker.HistoryPage{}, err
	}
	return historyFromStruct(out)
}

// Dump returns the persisted ledger.
func (c *Client) Dump(ctx context.Context, key string) ([]byte, error) {
	out, err := c.invoke(ctx, LedgerService_Dump_FullMethodName, map[string]any{fieldKey: key})
	if err != nil {
		return nil, err
	}
	return []byte(out.GetFields()["data"].GetStringValue()), nil
}

// Rebuild re-derives every event's calendar date.
func (c *Client) Rebuild(ctx context.Context, key string) (tracker.RebuildResult, error) {
	out, err := c.invoke(ctx, LedgerService_Rebuild_FullMethodName, map[string]any{fieldKey: key})
	if err != nil {
		return tracker.RebuildResult{}, err
	}
	return rebuildFromStruct(out), nil
}

func (c *Client) invoke(ctx context.Context, method string, fields map[string]any) (*structpb.Struct, error) {
	in, err := structpb.NewStruct(fields)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	if c.locale != "" {
		ctx = metadata.AppendToOutgoingContext(ctx, requestctx.LocaleMetadataKey, c.locale)
	}
	out := new(structpb.Struct)
	if err := c.conn.Invoke(ctx, method, in, out); err != nil {
		return nil, apperrors.FromGRPCStatus(err)
	}
	return out, nil
}

func timeRequest(key string, in engine.TimeInput) map[string]any {
	fields := map[string]any{fieldKey: key}
	if in.Explicit() {
		fields[fieldTime] = in.Time
		fields[fieldDate] = in.Date
		fields[fieldUTCOffset] = in.UTCOffset
	}
	return fields
}
