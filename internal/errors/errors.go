// Package errors provides utilities for creating, combining, and inspecting
// errors. It builds on the standard errors package and adds multi-error
// support via go-multierror.
package errors

import (
	"errors"
	"fmt"

	"github.com/hashicorp/go-multierror"
)

// New creates a new error with the given message.
func New(msg string) error {
	return errors.New(msg)
}

// Errorf creates a formatted error. Use %w in the format string to wrap
// another error.
func Errorf(format string, args ...any) error {
	return fmt.Errorf(format, args...)
}

// Wrap wraps an error with a message, preserving the original as a cause.
// If err is nil, returns nil.
func Wrap(err error, msg string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", msg, err)
}

// Append combines multiple errors into a single multi-error.
func Append(err error, errs ...error) error {
	return multierror.Append(err, errs...)
}

// Prefix adds a prefix to an error's message(s).
// If err is a multi-error, prefixes all underlying errors.
func Prefix(err error, prefix string) error {
	return multierror.Prefix(err, prefix)
}

// Join combines multiple errors into a single error using errors.Join.
// Returns nil if all errors are nil.
func Join(errs ...error) error {
	return errors.Join(errs...)
}

// Is reports whether err or any error in its chain matches target.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As attempts to cast err to the type of target, returning true if
// successful. The target must be a pointer to an error type.
func As(err error, target any) bool {
	return errors.As(err, target)
}
