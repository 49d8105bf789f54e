package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"strings"
)

// AppError is the unified padflow error type.
type AppError struct {
	// Code is a machine-readable error code.
	Code ErrorCode `json:"code"`
	// Message is a human-readable error message.
	Message string `json:"message"`
	// Retryable indicates if the operation can be retried.
	Retryable bool `json:"retryable"`
	// HTTPStatus is the recommended HTTP status code for this error.
	HTTPStatus int `json:"-"`
	// Details contains the offending element/pad and additional context.
	Details map[string]any `json:"details,omitempty"`
	// Cause is the underlying error that caused this error.
	Cause error `json:"-"`
}

// Error returns the string representation of the error.
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (cause: %v)", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause of the error.
func (e *AppError) Unwrap() error { return e.Cause }

// WithCause sets the underlying cause of the error and returns the receiver.
func (e *AppError) WithCause(cause error) *AppError {
	e.Cause = cause
	return e
}

// WithDetails merges the provided details into the error and returns the receiver.
func (e *AppError) WithDetails(details map[string]any) *AppError {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	for k, v := range details {
		e.Details[k] = v
	}
	return e
}

// WithDetail sets a single detail key-value pair and returns the receiver.
func (e *AppError) WithDetail(key string, value any) *AppError {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	e.Details[key] = value
	return e
}

// New creates a new AppError with automatic retryable detection.
func New(code ErrorCode, message string, httpStatus int) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
		Retryable:  IsRetryableCode(code),
	}
}

// Detail keys naming the offending node.
const (
	DetailElement = "element"
	DetailPad     = "pad"
)

// --- Configuration errors ---

// Configuration creates a generic configuration error.
func Configuration(message string) *AppError {
	return &AppError{
		Code: ErrCodeConfiguration, Message: message,
		HTTPStatus: http.StatusUnprocessableEntity,
	}
}

// DuplicateName reports an element or pad name that is already registered.
func DuplicateName(kind, name string) *AppError {
	return Configuration(fmt.Sprintf("%s name %q is already registered", kind, name)).
		WithDetail(kind, name)
}

// InvalidName reports a name that fails validation.
func InvalidName(kind, name, reason string) *AppError {
	return Configuration(fmt.Sprintf("invalid %s name %q: %s", kind, name, reason)).
		WithDetail(kind, name)
}

// RoleMismatch reports an element whose pads do not match the role it implements.
func RoleMismatch(element, reason string) *AppError {
	return Configuration(fmt.Sprintf("element %q: %s", element, reason)).
		WithDetail(DetailElement, element)
}

// UnknownPad reports a link that references a pad that does not exist.
func UnknownPad(pad string) *AppError {
	return Configuration(fmt.Sprintf("pad %q does not exist", pad)).
		WithDetail(DetailPad, pad)
}

// WrongDirection reports a pad used in the wrong direction.
func WrongDirection(pad, want string) *AppError {
	return Configuration(fmt.Sprintf("pad %q is not a %s pad", pad, want)).
		WithDetail(DetailPad, pad)
}

// AlreadyLinked reports a sink pad that already has a different producer.
func AlreadyLinked(sink, existing, requested string) *AppError {
	return Configuration(fmt.Sprintf("sink pad %q is already linked to %q, cannot link to %q", sink, existing, requested)).
		WithDetails(map[string]any{DetailPad: sink, "producer": existing, "requested": requested})
}

// Unlinked reports a sink pad that has no producer when the run starts.
func Unlinked(pad string) *AppError {
	return Configuration(fmt.Sprintf("sink pad %q is not linked", pad)).
		WithDetail(DetailPad, pad)
}

// NoSinks reports a pipeline that has nothing to terminate on.
func NoSinks() *AppError {
	return Configuration("pipeline has no sink elements")
}

// CycleDetected reports a dependency cycle; path lists the elements in cycle order.
func CycleDetected(path []string) *AppError {
	e := Configuration(fmt.Sprintf("cycle detected: %s", strings.Join(path, " -> ")))
	e.WithDetail("cycle", path)
	if len(path) > 0 {
		e.WithDetail(DetailElement, path[0])
	}
	return e
}

// --- Execution errors ---

// Execution wraps a failure raised by an element during its wave.
func Execution(element string, cause error) *AppError {
	return &AppError{
		Code: ErrCodeExecution, Message: fmt.Sprintf("element %q failed", element),
		HTTPStatus: http.StatusInternalServerError, Cause: cause,
		Details: map[string]any{DetailElement: element},
	}
}

// TickLimit reports a run that did not reach end-of-stream within the tick budget.
func TickLimit(limit int) *AppError {
	return &AppError{
		Code: ErrCodeExecution, Message: fmt.Sprintf("sinks not at end-of-stream after %d ticks", limit),
		HTTPStatus: http.StatusInternalServerError,
		Details:    map[string]any{"max_ticks": limit},
	}
}

// Cancelled reports a run aborted by its context.
func Cancelled(cause error) *AppError {
	return &AppError{
		Code: ErrCodeExecution, Message: "run cancelled",
		HTTPStatus: http.StatusInternalServerError, Cause: cause,
	}
}

// Timeout creates an error for an element invocation that took too long.
func Timeout(operation string) *AppError {
	return &AppError{
		Code: ErrCodeTimeout, Message: fmt.Sprintf("%s timed out", operation),
		HTTPStatus: http.StatusGatewayTimeout, Retryable: true,
		Details: map[string]any{"operation": operation},
	}
}

// --- Misuse errors ---

// Misuse reports an operation that is not allowed in the current pipeline state.
func Misuse(operation, state string) *AppError {
	return &AppError{
		Code: ErrCodeMisuse, Message: fmt.Sprintf("%s is not allowed while pipeline is %s", operation, state),
		HTTPStatus: http.StatusConflict,
		Details:    map[string]any{"operation": operation, "state": state},
	}
}

// --- Lookup errors ---

// NotFound creates a new AppError for a resource that was not found.
func NotFound(resource, id string) *AppError {
	details := map[string]any{"resource": resource}
	if id != "" {
		details["id"] = id
	}
	return &AppError{
		Code: ErrCodeNotFound, Message: fmt.Sprintf("%s %q was not found", resource, id),
		HTTPStatus: http.StatusNotFound, Details: details,
	}
}

// InvalidInput creates a new AppError for invalid input.
func InvalidInput(field, reason string) *AppError {
	details := make(map[string]any)
	if field != "" {
		details["field"] = field
	}
	return &AppError{
		Code: ErrCodeInvalidInput, Message: fmt.Sprintf("invalid input: %s", reason),
		HTTPStatus: http.StatusBadRequest, Details: details,
	}
}

// Internal creates an error for a failure that is not the caller's fault.
func Internal(message string) *AppError {
	return New(ErrCodeInternal, message, http.StatusInternalServerError)
}

// --- Category checks ---

// CodeOf returns the code of the first AppError in err's chain, or "".
func CodeOf(err error) ErrorCode {
	if appErr, ok := AsAppError(err); ok {
		return appErr.Code
	}
	return ""
}

// IsConfiguration reports whether err is a configuration error.
func IsConfiguration(err error) bool { return CodeOf(err) == ErrCodeConfiguration }

// IsExecution reports whether err is an execution error.
func IsExecution(err error) bool { return CodeOf(err) == ErrCodeExecution }

// IsMisuse reports whether err is a misuse error.
func IsMisuse(err error) bool { return CodeOf(err) == ErrCodeMisuse }

// Is, As and Join re-export the standard helpers so callers need a single import.
var (
	Is   = stderrors.Is
	As   = stderrors.As
	Join = stderrors.Join
)
