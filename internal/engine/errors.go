package engine

import (
	"errors"
	"fmt"
)

// Validation errors are resolved in-memory before any persistence call is
// attempted; a rejected operation never costs a storage round-trip.
var (
	ErrInvalidMove       = errors.New("invalid move")
	ErrUnsupportedTarget = errors.New("unsupported move target")
	ErrIncorrectPassword = errors.New("incorrect password")
	ErrPasswordMismatch  = errors.New("current password required")
	ErrPasswordForbidden = errors.New("shared folders cannot have a password")
	ErrNotLocked         = errors.New("nothing is locked")
)

type notFoundError struct {
	kind string
	id   string
}

func (e notFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.kind, e.id)
}

func errNotFound(kind, id string) error {
	return notFoundError{kind: kind, id: id}
}

// IsNotFound reports whether err is a missing note/folder error.
func IsNotFound(err error) bool {
	var nf notFoundError
	return errors.As(err, &nf)
}

// PersistError wraps a failed collaborator call. By the time it is returned
// the in-memory mutation has already been applied and is deliberately not
// rolled back; the caller surfaces the failure as a transient notice.
type PersistError struct {
	Op  string
	Err error
}

func (e *PersistError) Error() string {
	return fmt.Sprintf("persist %s: %v", e.Op, e.Err)
}

func (e *PersistError) Unwrap() error { return e.Err }
