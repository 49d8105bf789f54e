package errors

// ErrorCode represents a machine-readable error code.
type ErrorCode string

// Pipeline error categories. All of them are fatal for a run.
const (
	// ErrCodeConfiguration indicates an invalid graph: duplicate or invalid names,
	// unknown or unlinked pads, conflicting links, cycles, missing sinks.
	ErrCodeConfiguration ErrorCode = "CONFIGURATION_ERROR"
	// ErrCodeExecution indicates that an element failed during its wave.
	ErrCodeExecution ErrorCode = "EXECUTION_ERROR"
	// ErrCodeMisuse indicates an operation called in the wrong pipeline state.
	ErrCodeMisuse ErrorCode = "MISUSE_ERROR"
)

// Lookup errors
const (
	// ErrCodeNotFound indicates the requested element or pad does not exist.
	ErrCodeNotFound ErrorCode = "NOT_FOUND"
	// ErrCodeInvalidInput indicates the input is invalid.
	ErrCodeInvalidInput ErrorCode = "INVALID_INPUT"
	// ErrCodeTimeout indicates an element invocation timed out.
	ErrCodeTimeout ErrorCode = "TIMEOUT"
	// ErrCodeInternal indicates a failure of the inspect server itself.
	ErrCodeInternal ErrorCode = "INTERNAL_ERROR"
)

var retryableCodes = map[ErrorCode]bool{
	ErrCodeTimeout: true,
}

// IsRetryableCode returns true if the error code indicates a retryable error.
// Pipeline categories are never retried by the scheduler itself.
func IsRetryableCode(code ErrorCode) bool {
	return retryableCodes[code]
}
