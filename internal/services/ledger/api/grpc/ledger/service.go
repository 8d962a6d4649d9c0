// Package ledger exposes the sleep ledger over gRPC.
package ledger

import (
	"context"
	"errors"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/louisbranch/sleepsleep/internal/platform/errors/i18n"
	"github.com/louisbranch/sleepsleep/internal/platform/requestctx"
	"github.com/louisbranch/sleepsleep/internal/services/ledger/domain/engine"
	"github.com/louisbranch/sleepsleep/internal/services/ledger/domain/event"
	"github.com/louisbranch/sleepsleep/internal/services/ledger/tracker"
)

// Ledger is the set of ledger operations shared by the local tracker and the
// remote client.
type Ledger interface {
	SignUp(ctx context.Context, key string) (event.Event, error)
	Wake(ctx context.Context, key string, in engine.TimeInput) (tracker.Transition, error)
	Sleep(ctx context.Context, key string, in engine.TimeInput) (tracker.Transition, error)
	Status(ctx context.Context, key string) (tracker.Status, error)
	CancelLast(ctx context.Context, key string) (tracker.Cancellation, error)
	History(ctx context.Context, key string, req tracker.HistoryRequest) (tracker.HistoryPage, error)
	Dump(ctx context.Context, key string) ([]byte, error)
	Rebuild(ctx context.Context, key string) (tracker.RebuildResult, error)
}

var _ Ledger = (*tracker.Tracker)(nil)

// Service implements LedgerServiceServer on top of a Ledger.
type Service struct {
	ledger        Ledger
	defaultOffset float64
}

// NewService creates a ledger service. Explicit times without a utc_offset
// field are read at defaultOffset hours east of UTC.
func NewService(ledger Ledger, defaultOffset float64) *Service {
	return &Service{
		ledger:        ledger,
		defaultOffset: defaultOffset,
	}
}

// SignUp creates a ledger.
func (s *Service) SignUp(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	key, err := s.prepare(in)
	if err != nil {
		return nil, err
	}
	evt, err := s.ledger.SignUp(ctx, key)
	if err != nil {
		return nil, s.statusError(ctx, in, err)
	}
	return respond(signUpResponse(evt))
}

// Wake records a WAKE_UP.
func (s *Service) Wake(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	return s.transition(ctx, in, s.ledger.Wake)
}

// Sleep records a SLEEP.
func (s *Service) Sleep(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	return s.transition(ctx, in, s.ledger.Sleep)
}

type transitionFunc func(context.Context, string, engine.TimeInput) (tracker.Transition, error)

func (s *Service) transition(ctx context.Context, in *structpb.Struct, apply transitionFunc) (*structpb.Struct, error) {
	key, err := s.prepare(in)
	if err != nil {
		return nil, err
	}
	timeInput, err := s.timeInput(in)
	if err != nil {
		return nil, err
	}
	result, err := apply(ctx, key, timeInput)
	if err != nil {
		return nil, s.statusError(ctx, in, err)
	}
	return respond(transitionResponse(result))
}

// Status reports the last event and the time since it.
func (s *Service) Status(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	key, err := s.prepare(in)
	if err != nil {
		return nil, err
	}
	result, err := s.ledger.Status(ctx, key)
	if err != nil {
		return nil, s.statusError(ctx, in, err)
	}
	return respond(statusResponse(result))
}

// CancelLast removes the newest event.
func (s *Service) CancelLast(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	key, err := s.prepare(in)
	if err != nil {
		return nil, err
	}
	result, err := s.ledger.CancelLast(ctx, key)
	if err != nil {
		return nil, s.statusError(ctx, in, err)
	}
	return respond(cancelResponse(result))
}

// History returns a page of events, newest first.
func (s *Service) History(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	key, err := s.prepare(in)
	if err != nil {
		return nil, err
	}
	page, err := pageField(in)
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}
	filterText, err := stringField(in, fieldFilter)
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}
	req := tracker.HistoryRequest{
		Page:   page,
		Filter: filterText,
	}
	offset, ok, err := numberField(in, fieldUTCOffset)
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}
	if ok {
		req.UTCOffset = &offset
	}
	result, err := s.ledger.History(ctx, key, req)
	if err != nil {
		return nil, s.statusError(ctx, in, err)
	}
	return respond(historyResponse(result))
}

// Dump returns the persisted ledger.
func (s *Service) Dump(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	key, err := s.prepare(in)
	if err != nil {
		return nil, err
	}
	data, err := s.ledger.Dump(ctx, key)
	if err != nil {
		return nil, s.statusError(ctx, in, err)
	}
	return respond(structpb.NewStruct(map[string]any{"data": string(data)}))
}

// Rebuild re-derives every event's calendar date.
func (s *Service) Rebuild(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	key, err := s.prepare(in)
	if err != nil {
		return nil, err
	}
	result, err := s.ledger.Rebuild(ctx, key)
	if err != nil {
		return nil, s.statusError(ctx, in, err)
	}
	return respond(rebuildResponse(result))
}

func (s *Service) prepare(in *structpb.Struct) (string, error) {
	if in == nil {
		return "", status.Error(codes.InvalidArgument, "request is required")
	}
	if s == nil || s.ledger == nil {
		return "", status.Error(codes.Internal, "ledger is not configured")
	}
	key, err := stringField(in, fieldKey)
	if err != nil {
		return "", status.Error(codes.InvalidArgument, err.Error())
	}
	if key == "" {
		return "", status.Error(codes.InvalidArgument, "key is required")
	}
	return key, nil
}

func (s *Service) timeInput(in *structpb.Struct) (engine.TimeInput, error) {
	timeText, err := stringField(in, fieldTime)
	if err != nil {
		return engine.TimeInput{}, status.Error(codes.InvalidArgument, err.Error())
	}
	dateText, err := stringField(in, fieldDate)
	if err != nil {
		return engine.TimeInput{}, status.Error(codes.InvalidArgument, err.Error())
	}
	offset, ok, err := numberField(in, fieldUTCOffset)
	if err != nil {
		return engine.TimeInput{}, status.Error(codes.InvalidArgument, err.Error())
	}
	if !ok {
		offset = s.defaultOffset
	}
	return engine.TimeInput{Time: timeText, Date: dateText, UTCOffset: offset}, nil
}

// statusError localizes err for the request's locale field, falling back to
// the locale carried in context.
func (s *Service) statusError(ctx context.Context, in *structpb.Struct, err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return status.FromContextError(err).Err()
	}
	locale, _ := stringField(in, fieldLocale)
	if locale == "" {
		locale = requestctx.LocaleFromContext(ctx)
	}
	return i18n.GRPCStatus(locale, err)
}

func respond(out *structpb.Struct, err error) (*structpb.Struct, error) {
	if err != nil {
		return nil, status.Errorf(codes.Internal, "build response: %v", err)
	}
	return out, nil
}
