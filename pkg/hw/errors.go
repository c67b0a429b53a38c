package hw

import (
	"errors"
	"fmt"
)

var (
	// ErrUnknownLine indicates the line is not known to the backend.
	ErrUnknownLine = errors.New("unknown line")
	// ErrClosed indicates the device was already closed.
	ErrClosed = errors.New("device closed")
)

// AccessError reports a failure to read or write a digital line,
// a PWM channel or its duty cycle.
type AccessError struct {
	Op   string
	Line string
	Err  error
}

// Error implements error.
func (e *AccessError) Error() string {
	return fmt.Sprintf("hardware %s %q: %v", e.Op, e.Line, e.Err)
}

// Unwrap returns the underlying error.
func (e *AccessError) Unwrap() error {
	return e.Err
}

// NewAccessError wraps err as an AccessError. nil stays nil.
func NewAccessError(op, line string, err error) error {
	if err == nil {
		return nil
	}
	var accessErr *AccessError
	if errors.As(err, &accessErr) {
		return err
	}
	return &AccessError{Op: op, Line: line, Err: err}
}

// IsAccessError tells whether err carries an AccessError.
func IsAccessError(err error) bool {
	var accessErr *AccessError
	return errors.As(err, &accessErr)
}
