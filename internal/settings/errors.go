package settings

import (
	"errors"
	"fmt"
)

var (
	ErrUnknownField    = errors.New("unknown settings field")
	ErrInvalidValue    = errors.New("invalid settings value")
	ErrNoStorage       = errors.New("settings storage is not configured")
	ErrNoUpdateChecker = errors.New("update checker is not configured")
	ErrMalformedRecord = errors.New("malformed settings record")
)

// ValidationError rejects a write before any state changes.
type ValidationError struct {
	Field Field
	Value any
	Err   error
}

func (e *ValidationError) Error() string {
	if e.Value == nil {
		return fmt.Sprintf("%s: %v", e.Field, e.Err)
	}

	return fmt.Sprintf("%s=%v: %v", e.Field, e.Value, e.Err)
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// ParseError reports a persisted record that could not be decoded.
// The store recovers from it locally and only logs it.
type ParseError struct {
	Key string
	Err error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse settings record %q: %v", e.Key, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// PersistenceError reports a failed write to the persistence provider.
type PersistenceError struct {
	Key string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persist settings record %q: %v", e.Key, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

// UpdateCheckError reports a failed call to the update service.
type UpdateCheckError struct {
	Err error
}

func (e *UpdateCheckError) Error() string {
	return fmt.Sprintf("check for updates: %v", e.Err)
}

func (e *UpdateCheckError) Unwrap() error {
	return e.Err
}
