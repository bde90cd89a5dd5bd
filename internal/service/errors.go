// Package service holds the application operations.  Every operation that
// acts for a principal takes the verified session and checks its role
// before touching the store.
package service

import (
	"errors"
	"fmt"

	"github.com/abac-connect/van-booking/internal/repository"
)

// ErrNotFound is returned when an operation targets a resource that does
// not exist and absence is an error for that operation.
var ErrNotFound = errors.New("not found")

// ValidationError reports input rejected before any store access.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return e.Field + ": " + e.Message
}

func invalid(field, format string, args ...any) error {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

// StoreError wraps a failed store operation.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string { return e.Op + ": " + e.Err.Error() }
func (e *StoreError) Unwrap() error { return e.Err }

// CallerCaused reports whether the failure was a constraint violation
// triggered by the request input, such as an unknown foreign key.
func (e *StoreError) CallerCaused() bool {
	return errors.Is(e.Err, repository.ErrConstraint) || errors.Is(e.Err, repository.ErrDuplicate)
}

func storeErr(op string, err error) error {
	if err == nil {
		return nil
	}
	return &StoreError{Op: op, Err: err}
}
