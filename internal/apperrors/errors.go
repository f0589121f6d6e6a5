package apperrors

import (
	"encoding/json"
	"errors"
	"net/http"
)

// Kind classifies a request-boundary failure into its HTTP translation.
type Kind int

const (
	// KindValidation is malformed or missing input, translated to 400 with
	// the full list of violations.
	KindValidation Kind = iota
	// KindUnauthorized covers bad credentials and invalid, expired or
	// unknown sessions, translated to 401.
	KindUnauthorized
	// KindBadState is a violated data invariant (e.g. an empty series),
	// translated to an opaque 500.
	KindBadState
)

// Error is a typed application error carrying its HTTP translation.
type Error struct {
	Kind    Kind
	Message string
	// Errors holds the ordered list of human-readable violations for
	// KindValidation; nil for other kinds.
	Errors []string
	Cause  error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Validation builds a 400 error carrying every violated rule.
func Validation(violations []string) *Error {
	return &Error{Kind: KindValidation, Message: "Invalid query", Errors: violations}
}

// Unauthorized builds a 401 error. The message is deliberately uniform so
// that unknown users, wrong passwords, blocked accounts and dead sessions
// are indistinguishable to the caller.
func Unauthorized() *Error {
	return &Error{Kind: KindUnauthorized, Message: "Unauthorized"}
}

// BadState builds a 500 error for a violated data invariant. The message is
// logged server-side, never sent to the client.
func BadState(message string) *Error {
	return &Error{Kind: KindBadState, Message: message}
}

// IsUnauthorized reports whether err is a KindUnauthorized *Error.
func IsUnauthorized(err error) bool {
	var appErr *Error
	return errors.As(err, &appErr) && appErr.Kind == KindUnauthorized
}

// IsValidation reports whether err is a KindValidation *Error.
func IsValidation(err error) bool {
	var appErr *Error
	return errors.As(err, &appErr) && appErr.Kind == KindValidation
}

// IsBadState reports whether err is a KindBadState *Error.
func IsBadState(err error) bool {
	var appErr *Error
	return errors.As(err, &appErr) && appErr.Kind == KindBadState
}

// ErrorResponse is the JSON body returned for failed requests.
type ErrorResponse struct {
	Message string   `json:"message"`
	Errors  []string `json:"errors,omitempty"`
}

// WriteError translates err into its HTTP response. Anything that is not a
// client-facing *Error flattens to an opaque 500 so internals never leak.
func WriteError(w http.ResponseWriter, err error) {
	var appErr *Error
	if !errors.As(err, &appErr) {
		WriteJSON(w, http.StatusInternalServerError, ErrorResponse{Message: "Server error"})
		return
	}

	switch appErr.Kind {
	case KindValidation:
		WriteJSON(w, http.StatusBadRequest, ErrorResponse{Message: appErr.Message, Errors: appErr.Errors})
	case KindUnauthorized:
		WriteJSON(w, http.StatusUnauthorized, ErrorResponse{Message: appErr.Message})
	default:
		WriteJSON(w, http.StatusInternalServerError, ErrorResponse{Message: "Server error"})
	}
}

// WriteJSON writes a JSON response with the given status code.
func WriteJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
