package errors

import (
	"errors"
	"net/http"
)

// Domain errors
var (
	ErrNotFound           = errors.New("resource not found")
	ErrAlreadyExists      = errors.New("resource already exists")
	ErrInvalidInput       = errors.New("invalid input")
	ErrUnauthorized       = errors.New("unauthorized")
	ErrForbidden          = errors.New("forbidden")
	ErrInsufficientFunds  = errors.New("insufficient funds")
	ErrInsufficientStock  = errors.New("insufficient stock")
	ErrListingUnavailable = errors.New("listing unavailable")
	ErrSelfPurchase       = errors.New("cannot purchase own listing")
	ErrPinNotSet          = errors.New("transaction pin not set")
	ErrInvalidPin         = errors.New("invalid transaction pin")
	ErrInvalidState       = errors.New("invalid state transition")
	ErrAlreadySigned      = errors.New("contract already signed by party")
	ErrGatewayFailure     = errors.New("payment gateway failure")
	ErrInvalidSignature   = errors.New("invalid webhook signature")
)

// AppError carries an HTTP status alongside a domain error so handlers can
// map failures without switching on every sentinel.
type AppError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Err     error  `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// NewAppError creates a new app error
func NewAppError(code int, message string, err error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// Common error constructors
func NotFound(message string) *AppError {
	return NewAppError(http.StatusNotFound, message, ErrNotFound)
}

func BadRequest(message string) *AppError {
	return NewAppError(http.StatusBadRequest, message, ErrInvalidInput)
}

func Unauthorized(message string) *AppError {
	return NewAppError(http.StatusUnauthorized, message, ErrUnauthorized)
}

func Forbidden(message string) *AppError {
	return NewAppError(http.StatusForbidden, message, ErrForbidden)
}

func Conflict(message string, err error) *AppError {
	return NewAppError(http.StatusConflict, message, err)
}

func UnprocessableEntity(message string, err error) *AppError {
	return NewAppError(http.StatusUnprocessableEntity, message, err)
}

func BadGateway(message string, err error) *AppError {
	return NewAppError(http.StatusBadGateway, message, err)
}

func InternalError(err error) *AppError {
	return NewAppError(http.StatusInternalServerError, "internal server error", err)
}

// PreconditionFailed wraps a domain sentinel that maps to 400 while keeping
// the sentinel reachable through errors.Is.
func PreconditionFailed(message string, err error) *AppError {
	return NewAppError(http.StatusBadRequest, message, err)
}
