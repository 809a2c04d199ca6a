package traversal

import (
	"errors"
	"fmt"
)

// ErrorKind classifies traversal failures.
type ErrorKind int

const (
	// ErrorKindNotFound reports a missing root path. It ends the traversal.
	ErrorKindNotFound ErrorKind = iota
	// ErrorKindUnreadable reports an entry that could not be opened or resolved. Traversal continues.
	ErrorKindUnreadable
	// ErrorKindRootUnreadable reports a root path that exists but cannot be inspected. It ends the traversal.
	ErrorKindRootUnreadable
)

var (
	// ErrNotFound matches TraversalError values of kind ErrorKindNotFound with errors.Is.
	ErrNotFound = errors.New("path not found")
	// ErrUnreadable matches TraversalError values of kind ErrorKindUnreadable or ErrorKindRootUnreadable with errors.Is.
	ErrUnreadable = errors.New("path unreadable")
)

// TraversalError describes a failure tied to one path.
type TraversalError struct {
	Kind ErrorKind
	Path string
	Err  error
}

// Error implements error.
func (traversalError *TraversalError) Error() string {
	switch traversalError.Kind {
	case ErrorKindNotFound:
		return fmt.Sprintf("path not found: %s", traversalError.Path)
	default:
		if traversalError.Err != nil {
			return fmt.Sprintf("unreadable %s: %v", traversalError.Path, traversalError.Err)
		}
		return fmt.Sprintf("unreadable %s", traversalError.Path)
	}
}

// Unwrap returns the underlying file-system error.
func (traversalError *TraversalError) Unwrap() error {
	return traversalError.Err
}

// Is matches the kind sentinels.
func (traversalError *TraversalError) Is(target error) bool {
	switch target {
	case ErrNotFound:
		return traversalError.Kind == ErrorKindNotFound
	case ErrUnreadable:
		return traversalError.Kind == ErrorKindUnreadable || traversalError.Kind == ErrorKindRootUnreadable
	default:
		return false
	}
}

// Fatal reports whether the error terminates the run.
func (traversalError *TraversalError) Fatal() bool {
	return traversalError.Kind == ErrorKindNotFound || traversalError.Kind == ErrorKindRootUnreadable
}

// IsFatal reports whether err is a fatal traversal error.
func IsFatal(err error) bool {
	var traversalError *TraversalError
	return errors.As(err, &traversalError) && traversalError.Fatal()
}
