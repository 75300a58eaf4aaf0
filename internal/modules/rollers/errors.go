package rollers

import (
	"errors"
	"fmt"
)

// ErrNotFound is matched by every missing-roller error.
var ErrNotFound = errors.New("roller not found")

// ErrCoreRoller is returned when deleting a built-in roller.
var ErrCoreRoller = errors.New("core rollers cannot be deleted")

// NotFoundError reports a missing roller and, when one is close enough, the slug
// the caller probably meant.
type NotFoundError struct {
	Slug       string
	Suggestion string
}

func (e *NotFoundError) Error() string {
	if e.Suggestion != "" {
		return fmt.Sprintf("roller %q not found (did you mean %q?)", e.Slug, e.Suggestion)
	}
	return fmt.Sprintf("roller %q not found", e.Slug)
}

func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// FieldError ties a validation failure to the request field that caused it.
type FieldError struct {
	Field string
	Err   error
}

func (e *FieldError) Error() string {
	return e.Field + ": " + e.Err.Error()
}

func (e *FieldError) Unwrap() error { return e.Err }
