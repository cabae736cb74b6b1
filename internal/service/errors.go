package service

import (
	"errors"
	"fmt"

	"github.com/Wolf-Quiteque/100destinosBackend/internal/database"
)

var (
	ErrNotFound = database.ErrNotFound
	ErrConflict = database.ErrConflict
)

// ErrorKind tells reads from writes
type ErrorKind string

const (
	KindFetch    ErrorKind = "fetch"
	KindMutation ErrorKind = "mutation"
)

// StoreError is a failed call to one of the stores
type StoreError struct {
	Kind  ErrorKind
	Op    string
	Table string
	Err   error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("%s %s on %s: %v", e.Kind, e.Op, e.Table, e.Err)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

// ValidationError is a rejected input field
type ValidationError struct {
	Field string
	Msg   string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Msg)
}

func invalid(field, msg string) error {
	return &ValidationError{Field: field, Msg: msg}
}

// IsNotFound reports a missing record
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsConflict reports a uniqueness clash
func IsConflict(err error) bool {
	return errors.Is(err, ErrConflict)
}

// IsValidation reports rejected input
func IsValidation(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}
