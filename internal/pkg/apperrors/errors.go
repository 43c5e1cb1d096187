package apperrors

import (
	"fmt"
	"net/http"
)

type ErrorType string

const (
	ErrUnauthorized         ErrorType = "UNAUTHORIZED"
	ErrInsufficientFunds    ErrorType = "INSUFFICIENT_FUNDS"
	ErrInvalidRiskTolerance ErrorType = "INVALID_RISK_TOLERANCE"
	ErrNoSuitableVenues     ErrorType = "NO_SUITABLE_VENUES"
	ErrLedgerExists         ErrorType = "LEDGER_EXISTS"
	ErrInvalidRequest       ErrorType = "INVALID_REQUEST"
	ErrInternal             ErrorType = "INTERNAL_ERROR"
	ErrNotFound             ErrorType = "NOT_FOUND"
)

// AppError is the standard error struct for the application
type AppError struct {
	Type       ErrorType `json:"code"`
	Message    string    `json:"message"`
	Suggestion string    `json:"suggestion,omitempty"`
	HTTPStatus int       `json:"-"`
	Cause      error     `json:"-"`
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func New(errType ErrorType, msg string, cause error) *AppError {
	return &AppError{
		Type:       errType,
		Message:    msg,
		Cause:      cause,
		HTTPStatus: mapTypeToStatus(errType),
		Suggestion: mapTypeToSuggestion(errType),
	}
}

func NewUnauthorized(msg string) *AppError {
	return New(ErrUnauthorized, msg, nil)
}

func NewInvalidRequest(msg string) *AppError {
	return New(ErrInvalidRequest, msg, nil)
}

func NewInsufficientFunds(msg string) *AppError {
	return New(ErrInsufficientFunds, msg, nil)
}

func Wrap(err error) *AppError {
	if err == nil {
		return nil
	}
	if appErr, ok := err.(*AppError); ok {
		return appErr
	}
	return New(ErrInternal, err.Error(), err)
}

// Is reports whether err is an AppError of the given type.
func Is(err error, t ErrorType) bool {
	appErr, ok := err.(*AppError)
	return ok && appErr.Type == t
}

func mapTypeToStatus(t ErrorType) int {
	switch t {
	case ErrInsufficientFunds, ErrInvalidRiskTolerance, ErrNoSuitableVenues, ErrInvalidRequest:
		return http.StatusBadRequest
	case ErrUnauthorized:
		return http.StatusUnauthorized
	case ErrLedgerExists:
		return http.StatusConflict
	case ErrNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func mapTypeToSuggestion(t ErrorType) string {
	switch t {
	case ErrInsufficientFunds:
		return "Withdraw at most the recorded deposited amount."
	case ErrInvalidRiskTolerance:
		return "Use a risk tolerance between 0 and 10."
	case ErrNoSuitableVenues:
		return "Relax the risk tolerance or the preferred chain filter."
	case ErrLedgerExists:
		return "This owner already has an active ledger; withdraw before depositing again."
	case ErrUnauthorized:
		return "Check the caller identity and admin keys."
	default:
		return ""
	}
}
