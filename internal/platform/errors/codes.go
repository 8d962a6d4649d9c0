// Package errors provides structured error handling with i18n support.
package errors

import "google.golang.org/grpc/codes"

// Code is a machine-readable error code.
type Code string

const (
	// CodeUnknown represents an unknown error.
	CodeUnknown Code = "UNKNOWN"

	// Registration errors
	CodeNotSignedUp       Code = "NOT_SIGNED_UP"
	CodeAlreadyRegistered Code = "ALREADY_REGISTERED"

	// Transition errors
	CodeAlreadyAwake  Code = "ALREADY_AWAKE"
	CodeAlreadyAsleep Code = "ALREADY_ASLEEP"

	// Timestamp errors
	CodeMalformedTime Code = "MALFORMED_TIME"
	CodeBeforeLatest  Code = "BEFORE_LATEST"
	CodeInFuture      Code = "IN_FUTURE"

	// Storage errors
	CodeStoreUnavailable Code = "STORE_UNAVAILABLE"
	CodeCorruptLedger    Code = "CORRUPT_LEDGER"

	// Request errors
	CodeInvalidFilter Code = "INVALID_FILTER"
	CodeInvalidKey    Code = "INVALID_KEY"
)

// GRPCCode maps domain codes to gRPC status codes.
func (c Code) GRPCCode() codes.Code {
	switch c {
	// InvalidArgument - caller input cannot be interpreted
	case CodeMalformedTime,
		CodeInFuture,
		CodeInvalidFilter,
		CodeInvalidKey:
		return codes.InvalidArgument

	// FailedPrecondition - ledger state doesn't allow operation
	case CodeAlreadyAwake,
		CodeAlreadyAsleep,
		CodeBeforeLatest:
		return codes.FailedPrecondition

	// NotFound - no ledger for the key
	case CodeNotSignedUp:
		return codes.NotFound

	// AlreadyExists - ledger already created
	case CodeAlreadyRegistered:
		return codes.AlreadyExists

	case CodeStoreUnavailable:
		return codes.Unavailable

	case CodeCorruptLedger:
		return codes.DataLoss

	default:
		return codes.Internal
	}
}
