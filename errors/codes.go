package errors

// ErrorCode represents a machine-readable error code.
type ErrorCode string

// Availability errors (retryable)
const (
	// ErrCodeSandboxUnavailable indicates the event loop is not running or the
	// caller gave up before it answered.
	ErrCodeSandboxUnavailable ErrorCode = "SANDBOX_UNAVAILABLE"
	// ErrCodeTimeout indicates the request timed out.
	ErrCodeTimeout ErrorCode = "TIMEOUT"
)

// Catalog and run errors
const (
	// ErrCodeUnknownPipeline indicates a run was requested for a name the
	// catalog does not know.
	ErrCodeUnknownPipeline ErrorCode = "UNKNOWN_PIPELINE"
	// ErrCodePipelineFailed indicates the active run terminated with a stream error.
	ErrCodePipelineFailed ErrorCode = "PIPELINE_FAILED"
	// ErrCodeNotFound indicates the requested resource was not found.
	ErrCodeNotFound ErrorCode = "NOT_FOUND"
)

// Validation errors
const (
	// ErrCodeInvalidInput indicates the input is invalid.
	ErrCodeInvalidInput ErrorCode = "INVALID_INPUT"
	// ErrCodeMissingField indicates a required field is missing.
	ErrCodeMissingField ErrorCode = "MISSING_FIELD"
)

// Internal errors
const (
	// ErrCodeInternal indicates an internal server error.
	ErrCodeInternal ErrorCode = "INTERNAL_ERROR"
)

var retryableCodes = map[ErrorCode]bool{
	ErrCodeSandboxUnavailable: true,
	ErrCodeTimeout:            true,
	ErrCodeInternal:           false,
}

// IsRetryableCode returns true if the error code indicates a retryable error.
func IsRetryableCode(code ErrorCode) bool {
	return retryableCodes[code]
}
