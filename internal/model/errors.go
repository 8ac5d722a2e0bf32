package model

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrUsernameTaken      = errors.New("username already in use")
	ErrBackendUnavailable = errors.New("backend unavailable")
	ErrImageUploadFailed  = errors.New("image upload failed")
	ErrUnauthenticated    = errors.New("session missing or incomplete")
	ErrForbidden          = errors.New("forbidden")
	ErrNotFound           = errors.New("record not found")
)

// ValidationError reports the first input field that failed a precondition.
// It is raised before any backend call is made.
type ValidationError struct {
	Field string
	Tag   string
}

func (e *ValidationError) Error() string {
	if e.Tag == "" {
		return fmt.Sprintf("validation failed on field '%s'", e.Field)
	}
	return fmt.Sprintf("validation failed: field '%s' failed on tag '%s'", e.Field, e.Tag)
}
