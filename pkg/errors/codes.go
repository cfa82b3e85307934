package errors

// ErrorCode identifies a failure category. Codes are stable strings so they
// can be used as log fields and metric labels without further mapping.
type ErrorCode string

// Common codes shared by every layer.
const (
	CodeOK      ErrorCode = "OK"
	CodeUnknown ErrorCode = "COMMON_000"

	ErrCodeInternal      ErrorCode = "COMMON_001"
	ErrCodeValidation    ErrorCode = "COMMON_002"
	ErrCodeUnauthorized  ErrorCode = "COMMON_003"
	ErrCodeNotFound      ErrorCode = "COMMON_004"
	ErrCodeSerialization ErrorCode = "COMMON_005"
	ErrCodeTimeout       ErrorCode = "COMMON_006"
)

// Answer-engine codes. The engine rarely lets these escape to the end user
// as errors, most degrade to a textual response, but keeping them distinct
// internally is what lets "store unreachable" and "nothing matched" stay
// distinguishable in logs and metrics.
const (
	// ErrCodeStoreUnavailable marks any document-store query that failed or
	// timed out. Callers must treat it as zero candidates.
	ErrCodeStoreUnavailable ErrorCode = "ENGINE_001"

	// ErrCodeNoEntity marks a turn from which no drug name could be resolved.
	ErrCodeNoEntity ErrorCode = "ENGINE_002"

	// ErrCodeSectionAbsent marks a resolved drug with no record for the
	// requested section after the full fallback chain.
	ErrCodeSectionAbsent ErrorCode = "ENGINE_003"

	// ErrCodeRewriteFailed marks an unavailable or failing text-rewriting
	// call; the composer substitutes the deterministic template.
	ErrCodeRewriteFailed ErrorCode = "ENGINE_004"
)

// String returns the code's stable string form.
func (c ErrorCode) String() string { return string(c) }
