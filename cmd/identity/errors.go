package identity

import (
	"errors"
	"fmt"
)

// OpError is a typed operation error with a stable Op + Kind contract for callers/tests.
// Kind MUST be one of the sentinel kinds when applicable (ErrInvalidInput,
// ErrNotFound, ...). Msg may include human-readable context; do not include
// secrets.
type OpError struct {
	Op   string
	Kind error
	Msg  string
}

func (e OpError) Error() string {
	if e.Msg == "" {
		return fmt.Sprintf("%s: %v", e.Op, e.Kind)
	}
	return fmt.Sprintf("%s: %v: %s", e.Op, e.Kind, e.Msg)
}

func (e OpError) Unwrap() error { return e.Kind }

// ConflictError reports a uniqueness conflict for a specific logical field.
// Field is a stable logical name: "username", "email", "face_descriptor".
// Msg optionally carries user-facing context (e.g. which identity owns the
// colliding face).
type ConflictError struct {
	Op    string
	Field string
	Msg   string
}

func (e ConflictError) Error() string {
	switch {
	case e.Field == "":
		return fmt.Sprintf("%s: %v", e.Op, ErrConflict)
	case e.Msg == "":
		return fmt.Sprintf("%s: %v: %s", e.Op, ErrConflict, e.Field)
	default:
		return fmt.Sprintf("%s: %v: %s: %s", e.Op, ErrConflict, e.Field, e.Msg)
	}
}

func (e ConflictError) Unwrap() error { return ErrConflict }

// NotFoundError reports a missing resource.
type NotFoundError struct {
	Op       string
	Resource string
}

func (e NotFoundError) Error() string {
	if e.Resource == "" {
		return fmt.Sprintf("%s: %v", e.Op, ErrNotFound)
	}
	return fmt.Sprintf("%s: %v: %s", e.Op, ErrNotFound, e.Resource)
}

func (e NotFoundError) Unwrap() error { return ErrNotFound }

// UserMessage extracts the user-facing message from a typed error,
// without the internal op prefix. Falls back to a generic message so
// internal detail never leaks to a client.
func UserMessage(err error) string {
	var oe OpError
	if errors.As(err, &oe) && oe.Msg != "" {
		return oe.Msg
	}
	var ce ConflictError
	if errors.As(err, &ce) {
		if ce.Msg != "" {
			return ce.Msg
		}
		if ce.Field != "" {
			return ce.Field + " is already in use"
		}
		return "already in use"
	}
	var ne NotFoundError
	if errors.As(err, &ne) {
		if ne.Resource != "" {
			return ne.Resource + " not found"
		}
		return "not found"
	}
	return "request failed"
}

// IsConflict reports whether err is a ConflictError.
func IsConflict(err error) bool {
	var ce ConflictError
	return errors.As(err, &ce)
}

// IsNotFound reports whether err represents ErrNotFound (including NotFoundError).
func IsNotFound(err error) bool { return errors.Is(err, ErrNotFound) }

// IsInvalidInput reports whether err represents ErrInvalidInput.
func IsInvalidInput(err error) bool { return errors.Is(err, ErrInvalidInput) }

// IsUnauthorized reports whether err represents ErrUnauthorized.
func IsUnauthorized(err error) bool { return errors.Is(err, ErrUnauthorized) }

// IsForbidden reports whether err represents ErrForbidden.
func IsForbidden(err error) bool { return errors.Is(err, ErrForbidden) }
