package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
)

type ErrorCode string

const (
	AccountNotFound     ErrorCode = "account_not_found"
	InactiveAccount     ErrorCode = "inactive_account"
	InvalidAmount       ErrorCode = "invalid_amount"
	InsufficientFunds   ErrorCode = "insufficient_funds"
	SameAccountTransfer ErrorCode = "same_account_transfer"
	GuardTimeout        ErrorCode = "guard_timeout"
	StorageFailure      ErrorCode = "storage_failure"
	InvalidInput        ErrorCode = "invalid_input"
	InvalidAccountID    ErrorCode = "invalid_account_id"
	DuplicateAccount    ErrorCode = "duplicate_account"
	InternalError       ErrorCode = "internal_error"
)

type AppError struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
	Details string    `json:"details,omitempty"`
}

func (e AppError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("%s: %s (%s)", e.Code, e.Message, e.Details)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Is reports whether target carries the same code, so errors.Is matches
// predefined errors after WithDetails has produced a copy.
func (e *AppError) Is(target error) bool {
	var t *AppError
	if !stderrors.As(target, &t) {
		return false
	}
	return e.Code == t.Code
}

func NewAppError(code ErrorCode, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
	}
}

func NewAppErrorf(code ErrorCode, format string, args ...interface{}) *AppError {
	return &AppError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}

// WithDetails returns a copy of e carrying details; predefined errors are never mutated.
func (e *AppError) WithDetails(details string) *AppError {
	cp := *e
	cp.Details = details
	return &cp
}

// HTTPStatus maps the error code to the status returned by the API layer.
func (e *AppError) HTTPStatus() int {
	switch e.Code {
	case AccountNotFound:
		return http.StatusNotFound
	case InvalidAmount, SameAccountTransfer, InvalidInput, InvalidAccountID:
		return http.StatusBadRequest
	case InsufficientFunds, InactiveAccount:
		return http.StatusUnprocessableEntity
	case DuplicateAccount:
		return http.StatusConflict
	case GuardTimeout:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// Storage wraps a low-level failure as a storage_failure error.
func Storage(message string, err error) *AppError {
	appErr := NewAppError(StorageFailure, message)
	if err != nil {
		appErr.Details = err.Error()
	}
	return appErr
}

// From converts any error into an *AppError, falling back to internal_error.
func From(err error) *AppError {
	if err == nil {
		return nil
	}
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr
	}
	return NewAppError(InternalError, "an unexpected error occurred").WithDetails(err.Error())
}

// Predefined errors for common cases
var (
	ErrAccountNotFound      = NewAppError(AccountNotFound, "account not found")
	ErrInactiveAccount      = NewAppError(InactiveAccount, "account is not active")
	ErrInvalidAmount        = NewAppError(InvalidAmount, "amount must be a positive value with at most two decimal places")
	ErrInsufficientFunds    = NewAppError(InsufficientFunds, "insufficient funds")
	ErrSameAccountTransfer  = NewAppError(SameAccountTransfer, "source and destination accounts must differ")
	ErrGuardTimeout         = NewAppError(GuardTimeout, "timed out waiting for account lock")
	ErrStorageFailure       = NewAppError(StorageFailure, "ledger commit failed")
	ErrInvalidAccountID     = NewAppError(InvalidAccountID, "account id must be a 10-digit number")
	ErrDuplicateAccount     = NewAppError(DuplicateAccount, "account already exists")
	ErrOpeningBalanceTooLow = NewAppError(InvalidAmount, "initial balance is below the minimum opening balance")
	ErrInvalidStatus        = NewAppError(InvalidInput, "status must be Active or Inactive")
)
