package domain

import "errors"

var (
	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrEmailExists        = errors.New("email already exists")
	ErrUsernameExists     = errors.New("username already exists")
	ErrUnknownUserType    = errors.New("unknown user type")
	ErrSessionNotFound    = errors.New("session not found")
)

// ErrAmbiguousEmail is returned by the credential store when more than one
// record carries the same email. Only data written before the unique index
// existed can trigger it.
var ErrAmbiguousEmail = errors.New("email matches more than one user")

// ValidationError reports a single rejected input field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// NewValidationError builds a ValidationError for field.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}
