package engine

import (
	"fmt"

	apperrors "github.com/louisbranch/sleepsleep/internal/platform/errors"
	"github.com/louisbranch/sleepsleep/internal/services/ledger/domain/event"
)

func errNotSignedUp() error {
	return apperrors.New(apperrors.CodeNotSignedUp, "ledger is empty")
}

func errAlreadyAwake(last event.Event, ts int64) error {
	elapsed := ElapsedBetween(last.Timestamp, ts)
	return apperrors.WithMetadata(
		apperrors.CodeAlreadyAwake,
		fmt.Sprintf("already awake since %d", last.Timestamp),
		elapsed.Metadata(),
	)
}

func errAlreadyAsleep(last event.Event, ts int64) error {
	elapsed := ElapsedBetween(last.Timestamp, ts)
	return apperrors.WithMetadata(
		apperrors.CodeAlreadyAsleep,
		fmt.Sprintf("already asleep since %d", last.Timestamp),
		elapsed.Metadata(),
	)
}

func errMalformedTime(message string, cause error) error {
	if cause == nil {
		return apperrors.New(apperrors.CodeMalformedTime, message)
	}
	return apperrors.Wrap(apperrors.CodeMalformedTime, message, cause)
}

func errBeforeLatest(ts, latest int64) error {
	return apperrors.New(apperrors.CodeBeforeLatest, fmt.Sprintf("timestamp %d precedes latest event at %d", ts, latest))
}

func errInFuture(ts, now int64) error {
	return apperrors.New(apperrors.CodeInFuture, fmt.Sprintf("timestamp %d is after current time %d", ts, now))
}
