package common

import "errors"

var (
	// repository specific errors
	ErrNotFound     = errors.New("not found")
	ErrDuplicateKey = errors.New("duplicate key")

	// authorization errors
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")

	ErrValidation = errors.New("validation error")
)

// ValidationError carries a message that is safe to return to the client.
// errors.Is(err, ErrValidation) reports true for it.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

func Invalid(msg string) error {
	return &ValidationError{Msg: msg}
}
