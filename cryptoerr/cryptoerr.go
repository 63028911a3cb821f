// Package cryptoerr defines the error kinds returned by the primitives and
// protocols of this module.
//
// Proof and share verification never produce errors: they return false.
// Errors are reserved for configuration problems, for running below the
// reconstruction threshold, and for violated arithmetic preconditions.
package cryptoerr

import (
	"errors"
	"fmt"
)

// Kind discriminates failures
type Kind int

const (
	// Configuration errors are fatal and raised at construction time
	// (mismatched lengths, threshold > count, key too short, ...).
	Configuration Kind = iota + 1
	// BelowThreshold errors mean fewer than threshold valid contributions
	// were available. The caller may retry after soliciting more.
	BelowThreshold
	// Arithmetic errors are violated cryptographic preconditions
	// (non-invertible value, mismatched key, value out of range).
	Arithmetic
)

func (k Kind) String() string {
	switch k {
	case Configuration:
		return "configuration"
	case BelowThreshold:
		return "below threshold"
	case Arithmetic:
		return "arithmetic"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Error is an error with a kind and the operation that raised it
type Error struct {
	Kind Kind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	if e.Op == "" {
		return fmt.Sprintf("%s error: %v", e.Kind, e.Err)
	}
	return fmt.Sprintf("%s: %s error: %v", e.Op, e.Kind, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is makes errors.Is(err, ErrConfiguration) (and the other sentinels)
// match any error of the same kind.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Op == "" && t.Err == nil && t.Kind == e.Kind
}

// Sentinels to be used with errors.Is
var (
	ErrConfiguration  = &Error{Kind: Configuration}
	ErrBelowThreshold = &Error{Kind: BelowThreshold}
	ErrArithmetic     = &Error{Kind: Arithmetic}
)

// Errorf returns a new error of kind k raised by op
func Errorf(k Kind, op string, format string, args ...interface{}) error {
	return &Error{Kind: k, Op: op, Err: fmt.Errorf(format, args...)}
}

// Wrap attaches kind k and op to err. It returns nil if err is nil.
func Wrap(k Kind, op string, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Kind: k, Op: op, Err: err}
}

// KindOf returns the kind of err, or 0 if err does not carry one
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return 0
}
