package errors

// ErrorCode represents a machine-readable error code.
type ErrorCode string

// Connection errors (retryable)
const (
	// ErrCodeConnectionRefused is the single code for every failure to establish
	// a connection (DNS failure, TCP refusal, dial timeout, TLS handshake).
	ErrCodeConnectionRefused ErrorCode = "ECONNREFUSED"
	// ErrCodeTimeout indicates the call exceeded its deadline.
	ErrCodeTimeout ErrorCode = "TIMEOUT"
)

// Caller errors
const (
	// ErrCodeInvalidInput indicates an option or environment field is invalid.
	ErrCodeInvalidInput ErrorCode = "INVALID_INPUT"
	// ErrCodeNotFound indicates a named resource (e.g. a profile) does not exist.
	ErrCodeNotFound ErrorCode = "NOT_FOUND"
	// ErrCodeUnsupported indicates the selected engine cannot honour a request option.
	ErrCodeUnsupported ErrorCode = "UNSUPPORTED"
)

// Internal errors
const (
	// ErrCodeInternal indicates an unexpected internal failure.
	ErrCodeInternal ErrorCode = "INTERNAL_ERROR"
)

var retryableCodes = map[ErrorCode]bool{
	ErrCodeConnectionRefused: true,
	ErrCodeTimeout:           true,
	ErrCodeInternal:          false,
}

// IsRetryableCode returns true if the error code indicates a retryable error.
func IsRetryableCode(code ErrorCode) bool {
	return retryableCodes[code]
}
