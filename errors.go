package xscope

import (
	"errors"
	"fmt"
)

var (
	// ErrUnsupported marks operations a Concern cannot perform.
	ErrUnsupported = errors.New("xscope: unsupported operation")
	// ErrTypeMismatch marks a resolved Concern lacking a capability the
	// caller requires.
	ErrTypeMismatch = errors.New("xscope: concern type mismatch")
	// ErrInvalidContext marks a nil context type passed to LoggerOf.
	ErrInvalidContext = errors.New("xscope: invalid context type")
)

// UnsupportedError names the concern, the operation it cannot perform, and
// the capability that would be needed.
type UnsupportedError struct {
	Concern   string
	Operation string
	Need      string
}

func (e *UnsupportedError) Error() string {
	return fmt.Sprintf("xscope: %s does not support %s; use %s", e.Concern, e.Operation, e.Need)
}

func (e *UnsupportedError) Unwrap() error { return ErrUnsupported }

// TypeMismatchError is the panic value raised when a resolved Concern is not
// of the kind the caller requires.
type TypeMismatchError struct {
	Got  string
	Want string
}

func (e *TypeMismatchError) Error() string {
	return fmt.Sprintf("xscope: active concern %s is not a %s", e.Got, e.Want)
}

func (e *TypeMismatchError) Unwrap() error { return ErrTypeMismatch }
