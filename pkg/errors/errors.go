package errors

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/Ruscigno/AlphaPulse/pkg/query"
	"github.com/Ruscigno/AlphaPulse/pkg/schema"
)

// ErrorCode represents different types of errors
type ErrorCode string

const (
	// Client errors (4xx)
	ErrCodeBadRequest      ErrorCode = "BAD_REQUEST"
	ErrCodeUnauthorized    ErrorCode = "UNAUTHORIZED"
	ErrCodeNotFound        ErrorCode = "NOT_FOUND"
	ErrCodeValidation      ErrorCode = "VALIDATION_ERROR"
	ErrCodeRateLimit       ErrorCode = "RATE_LIMIT_EXCEEDED"
	ErrCodeRequestTooLarge ErrorCode = "REQUEST_TOO_LARGE"

	// Server errors (5xx)
	ErrCodeInternal           ErrorCode = "INTERNAL_ERROR"
	ErrCodeServiceUnavailable ErrorCode = "SERVICE_UNAVAILABLE"
	ErrCodeTimeout            ErrorCode = "TIMEOUT"
	ErrCodeCircuitBreakerOpen ErrorCode = "CIRCUIT_BREAKER_OPEN"

	// Engine errors
	ErrCodeSchemaLoad        ErrorCode = "SCHEMA_LOAD_ERROR"
	ErrCodeUnknownFunction   ErrorCode = "UNKNOWN_FUNCTION"
	ErrCodeMissingParameters ErrorCode = "MISSING_REQUIRED_PARAMETERS"
	ErrCodeUnsupportedParams ErrorCode = "UNSUPPORTED_PARAMETERS"

	// External service errors
	ErrCodeAlphaVantageAPI ErrorCode = "ALPHA_VANTAGE_API_ERROR"
	ErrCodeDatabaseError   ErrorCode = "DATABASE_ERROR"
)

// AppError represents an application error with additional context
type AppError struct {
	Code       ErrorCode              `json:"code"`
	Message    string                 `json:"message"`
	Details    string                 `json:"details,omitempty"`
	Cause      error                  `json:"-"`
	Timestamp  time.Time              `json:"timestamp"`
	RequestID  string                 `json:"request_id,omitempty"`
	Metadata   map[string]interface{} `json:"metadata,omitempty"`
	Retryable  bool                   `json:"retryable"`
	HTTPStatus int                    `json:"-"`
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("%s: %s - %s", e.Code, e.Message, e.Details)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause error
func (e *AppError) Unwrap() error {
	return e.Cause
}

// IsRetryable returns whether the error is retryable
func (e *AppError) IsRetryable() bool {
	return e.Retryable
}

// WithCause adds a cause error
func (e *AppError) WithCause(cause error) *AppError {
	e.Cause = cause
	return e
}

// WithDetails adds additional details
func (e *AppError) WithDetails(details string) *AppError {
	e.Details = details
	return e
}

// WithRequestID adds a request ID
func (e *AppError) WithRequestID(requestID string) *AppError {
	e.RequestID = requestID
	return e
}

// WithMetadata adds metadata
func (e *AppError) WithMetadata(key string, value interface{}) *AppError {
	if e.Metadata == nil {
		e.Metadata = make(map[string]interface{})
	}
	e.Metadata[key] = value
	return e
}

// NewAppError creates a new application error
func NewAppError(code ErrorCode, message string) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		Timestamp:  time.Now(),
		HTTPStatus: getHTTPStatusForCode(code),
		Retryable:  isRetryableCode(code),
	}
}

// getHTTPStatusForCode returns the appropriate HTTP status code for an error code
func getHTTPStatusForCode(code ErrorCode) int {
	switch code {
	case ErrCodeBadRequest, ErrCodeValidation, ErrCodeMissingParameters, ErrCodeUnsupportedParams:
		return http.StatusBadRequest
	case ErrCodeUnauthorized:
		return http.StatusUnauthorized
	case ErrCodeNotFound, ErrCodeUnknownFunction:
		return http.StatusNotFound
	case ErrCodeRateLimit:
		return http.StatusTooManyRequests
	case ErrCodeRequestTooLarge:
		return http.StatusRequestEntityTooLarge
	case ErrCodeServiceUnavailable, ErrCodeCircuitBreakerOpen:
		return http.StatusServiceUnavailable
	case ErrCodeTimeout:
		return http.StatusGatewayTimeout
	case ErrCodeAlphaVantageAPI:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// isRetryableCode returns whether an error code represents a retryable error
func isRetryableCode(code ErrorCode) bool {
	switch code {
	case ErrCodeTimeout, ErrCodeServiceUnavailable, ErrCodeInternal,
		ErrCodeAlphaVantageAPI, ErrCodeDatabaseError:
		return true
	default:
		return false
	}
}

// Predefined errors for common scenarios
var (
	ErrInvalidRequest = NewAppError(ErrCodeBadRequest, "Invalid request")
	ErrUnauthorized   = NewAppError(ErrCodeUnauthorized, "Unauthorized")
	ErrNotFound       = NewAppError(ErrCodeNotFound, "Resource not found")
	ErrInternal       = NewAppError(ErrCodeInternal, "Internal server error")
	ErrTimeout        = NewAppError(ErrCodeTimeout, "Request timeout")
	ErrRateLimit      = NewAppError(ErrCodeRateLimit, "Rate limit exceeded")
)

// FromEngineError maps errors surfaced by the schema registry and the query
// engine to AppErrors carrying the right code, HTTP status, and parameter
// lists. Unrecognized errors come back as internal.
func FromEngineError(err error) *AppError {
	if err == nil {
		return nil
	}

	var unknown *schema.UnknownFunctionError
	if errors.As(err, &unknown) {
		return NewAppError(ErrCodeUnknownFunction, "Unknown function").
			WithDetails(unknown.Error()).
			WithMetadata("function", unknown.Function).
			WithCause(err)
	}

	var invalid *query.ValidationError
	if errors.As(err, &invalid) {
		code := ErrCodeValidation
		switch {
		case len(invalid.Missing) > 0 && len(invalid.Unsupported) == 0:
			code = ErrCodeMissingParameters
		case len(invalid.Unsupported) > 0 && len(invalid.Missing) == 0:
			code = ErrCodeUnsupportedParams
		}
		appErr := NewAppError(code, "Invalid parameters").
			WithDetails(invalid.Error()).
			WithMetadata("function", invalid.Function).
			WithCause(err)
		if len(invalid.Missing) > 0 {
			appErr = appErr.WithMetadata("missing", invalid.Missing)
		}
		if len(invalid.Unsupported) > 0 {
			appErr = appErr.WithMetadata("unsupported", invalid.Unsupported)
		}
		return appErr
	}

	var load *schema.SchemaLoadError
	if errors.As(err, &load) {
		return NewAppError(ErrCodeSchemaLoad, "Schema asset is malformed").
			WithDetails(load.Error()).
			WithCause(err)
	}

	return NewAppError(ErrCodeInternal, "Internal server error").WithCause(err)
}

// WrapError wraps an existing error with additional context
func WrapError(err error, code ErrorCode, message string) *AppError {
	if err == nil {
		return nil
	}

	// If it's already an AppError, preserve the original code if not specified
	if appErr, ok := err.(*AppError); ok {
		if code == "" {
			code = appErr.Code
		}
		return &AppError{
			Code:       code,
			Message:    message,
			Cause:      appErr,
			Timestamp:  time.Now(),
			HTTPStatus: getHTTPStatusForCode(code),
			Retryable:  isRetryableCode(code),
		}
	}

	return &AppError{
		Code:       code,
		Message:    message,
		Cause:      err,
		Timestamp:  time.Now(),
		HTTPStatus: getHTTPStatusForCode(code),
		Retryable:  isRetryableCode(code),
	}
}

// IsAppError checks if an error is an AppError
func IsAppError(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr)
}

// GetAppError extracts an AppError from an error chain
func GetAppError(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return nil
}

// ErrorResponse represents an HTTP error response
type ErrorResponse struct {
	Error     string                 `json:"error"`
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
	RequestID string                 `json:"request_id,omitempty"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
}

// ToErrorResponse converts an AppError to an ErrorResponse
func (e *AppError) ToErrorResponse() ErrorResponse {
	return ErrorResponse{
		Error:     "error",
		Code:      e.Code,
		Message:   e.Message,
		Details:   e.Details,
		Timestamp: e.Timestamp,
		RequestID: e.RequestID,
		Metadata:  e.Metadata,
	}
}
