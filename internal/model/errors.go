package model

import "errors"

// Common errors used across the application
var (
	// Lookup errors. Services translate these into zero-valued results.
	ErrLongestWordNotFound = errors.New("longest word not found")
	ErrWordCountNotFound   = errors.New("word count record not found")
	ErrStreakNotFound      = errors.New("streak not found")
	ErrPlaySessionNotFound = errors.New("play session not found")

	// Write conflicts reported by storage
	ErrStreakExists      = errors.New("streak already recorded for this date")
	ErrOpenSessionExists = errors.New("player already has an open play session")
	ErrWordAlreadyFound  = errors.New("word already found in this session")

	// Play session state errors
	ErrSessionInactive   = errors.New("cannot add words to an inactive session")
	ErrWordNotInOmnigram = errors.New("word cannot be made from the omnigram letters")

	// Omnigram pool errors
	ErrOmnigramPoolEmpty = errors.New("no omnigrams available")
)

// ValidationError reports an invalid request field. It is raised before storage is touched.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Field + ": " + e.Message
}

// NewValidationError creates a ValidationError for the given field
func NewValidationError(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

// IsValidationError reports whether err wraps a ValidationError
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
