package recommend

import (
	"errors"
	"fmt"
)

var (
	// ErrMoodRequired is returned when a suggestion is requested without a mood.
	ErrMoodRequired = errors.New("current mood is required")
	// ErrUnknownMood is returned for a mood outside the supported set.
	ErrUnknownMood = errors.New("unknown mood")
	// ErrIntensityRange is returned for an intensity outside [1,10].
	ErrIntensityRange = errors.New("intensity must be between 1 and 10")
	// ErrNoAnswers is returned when a personality quiz has no answers.
	ErrNoAnswers = errors.New("at least one quiz answer is required")
)

// ValidationError reports bad caller input. It is never retried.
type ValidationError struct {
	Field string
	Err   error
}

func (e *ValidationError) Error() string {
	return e.Err.Error()
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// PersistenceError reports a failed write. The whole call fails with it.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

// IsValidation reports whether err is or wraps a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// IsPersistence reports whether err is or wraps a PersistenceError.
func IsPersistence(err error) bool {
	var pe *PersistenceError
	return errors.As(err, &pe)
}
