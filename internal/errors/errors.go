// Package errors provides custom error types for the DinDin API.
// All service-layer errors should use AppError so that store and auth
// failures are classified at the operation boundary and rendered as exactly
// one user-visible notification, never leaking internal details.
package errors

import "net/http"

// AppError represents a structured application error with an error code,
// human-readable message, HTTP status code, and optional internal error.
type AppError struct {
	Code       string `json:"code"`
	Message    string `json:"message"`
	StatusCode int    `json:"-"`
	Internal   error  `json:"-"`
}

// Error implements the error interface.
func (e *AppError) Error() string { return e.Message }

// Unwrap returns the internal error for use with errors.Is/As.
func (e *AppError) Unwrap() error { return e.Internal }

// Wrap creates a new AppError with the same code/message/status but wraps an internal error.
func Wrap(sentinel *AppError, internal error) *AppError {
	return &AppError{
		Code:       sentinel.Code,
		Message:    sentinel.Message,
		StatusCode: sentinel.StatusCode,
		Internal:   internal,
	}
}

// WithMessage creates a new AppError with a custom message.
func WithMessage(sentinel *AppError, message string) *AppError {
	return &AppError{
		Code:       sentinel.Code,
		Message:    message,
		StatusCode: sentinel.StatusCode,
		Internal:   sentinel.Internal,
	}
}

// Credential errors.
var (
	ErrUnauthorized       = &AppError{Code: "UNAUTHORIZED", Message: "Authentication required", StatusCode: http.StatusUnauthorized}
	ErrInvalidCredentials = &AppError{Code: "INVALID_CREDENTIALS", Message: "Invalid email or password", StatusCode: http.StatusUnauthorized}
	ErrEmailInUse         = &AppError{Code: "EMAIL_IN_USE", Message: "A user with this email already exists", StatusCode: http.StatusConflict}
	ErrWeakPassword       = &AppError{Code: "WEAK_PASSWORD", Message: "Password must be at least 6 characters", StatusCode: http.StatusBadRequest}
	ErrUserDisabled       = &AppError{Code: "USER_DISABLED", Message: "This account is disabled", StatusCode: http.StatusForbidden}
	ErrAccountLocked      = &AppError{Code: "ACCOUNT_LOCKED", Message: "Account is temporarily locked", StatusCode: http.StatusLocked}
)

// General errors. ErrInternalServer is the unclassified fallback: callers
// that hit an unknown store failure get a generic "try again" message.
var (
	ErrInvalidInput   = &AppError{Code: "INVALID_INPUT", Message: "Invalid input", StatusCode: http.StatusBadRequest}
	ErrNotFound       = &AppError{Code: "NOT_FOUND", Message: "Resource not found", StatusCode: http.StatusNotFound}
	ErrInternalServer = &AppError{Code: "INTERNAL_ERROR", Message: "An internal error occurred. Please try again", StatusCode: http.StatusInternalServerError}
)

// User errors.
var (
	ErrUserNotFound = &AppError{Code: "USER_NOT_FOUND", Message: "User not found", StatusCode: http.StatusNotFound}
)

// Transaction errors.
var (
	ErrTransactionNotFound    = &AppError{Code: "TRANSACTION_NOT_FOUND", Message: "Transaction not found", StatusCode: http.StatusNotFound}
	ErrInvalidTransactionType = &AppError{Code: "INVALID_TRANSACTION_TYPE", Message: "Unsupported transaction type", StatusCode: http.StatusBadRequest}
	ErrNotAnInstallment       = &AppError{Code: "NOT_AN_INSTALLMENT", Message: "Transaction does not belong to an installment group", StatusCode: http.StatusBadRequest}
	ErrInvalidRenegotiation   = &AppError{Code: "INVALID_RENEGOTIATION", Message: "Renegotiation requires a positive total and installment count", StatusCode: http.StatusBadRequest}
)

// Session errors.
var (
	ErrSessionClosed = &AppError{Code: "SESSION_CLOSED", Message: "Session is no longer active", StatusCode: http.StatusUnauthorized}
	ErrInvalidPeriod = &AppError{Code: "INVALID_PERIOD", Message: "Period must be in YYYY-MM format", StatusCode: http.StatusBadRequest}
)
