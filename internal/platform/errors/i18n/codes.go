package i18n

// Error codes must match the codes defined in internal/platform/errors/codes.go.
const (
	CodeUnknown           = "UNKNOWN"
	CodeNotSignedUp       = "NOT_SIGNED_UP"
	CodeAlreadyRegistered = "ALREADY_REGISTERED"
	CodeAlreadyAwake      = "ALREADY_AWAKE"
	CodeAlreadyAsleep     = "ALREADY_ASLEEP"
	CodeMalformedTime     = "MALFORMED_TIME"
	CodeBeforeLatest      = "BEFORE_LATEST"
	CodeInFuture          = "IN_FUTURE"
	CodeStoreUnavailable  = "STORE_UNAVAILABLE"
	CodeCorruptLedger     = "CORRUPT_LEDGER"
	CodeInvalidFilter     = "INVALID_FILTER"
	CodeInvalidKey        = "INVALID_KEY"
)
