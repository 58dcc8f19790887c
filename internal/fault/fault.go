// Package fault classifies the errors surfaced by the arena core. Corrupted
// errors mean internal state can no longer be trusted and the session should be
// torn down or resynchronised; Misuse errors reject a single call and leave the
// context usable.
package fault

import (
	"errors"
	"fmt"
)

// Kind separates corrupted-state failures from caller misuse.
type Kind int

const (
	// Corrupted marks a broken structural invariant.
	Corrupted Kind = iota + 1
	// Misuse marks a call that violates the caller contract.
	Misuse
)

var (
	// ErrCorrupted matches any Corrupted error via errors.Is.
	ErrCorrupted = errors.New("corrupted internal state")
	// ErrMisuse matches any Misuse error via errors.Is.
	ErrMisuse = errors.New("caller misuse")
)

func (k Kind) String() string {
	switch k {
	case Corrupted:
		return "corrupted"
	case Misuse:
		return "misuse"
	default:
		return "unknown"
	}
}

// Error carries the failing operation alongside its classification.
type Error struct {
	Kind Kind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Op == "" {
		return fmt.Sprintf("%s: %v", e.Kind, e.Err)
	}
	return fmt.Sprintf("%s: %s: %v", e.Op, e.Kind, e.Err)
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// Is lets errors.Is match the Kind sentinels.
func (e *Error) Is(target error) bool {
	if e == nil {
		return false
	}
	switch target {
	case ErrCorrupted:
		return e.Kind == Corrupted
	case ErrMisuse:
		return e.Kind == Misuse
	}
	return false
}

// Corruptedf builds a Corrupted error for op.
func Corruptedf(op, format string, args ...any) error {
	return &Error{Kind: Corrupted, Op: op, Err: fmt.Errorf(format, args...)}
}

// Misusef builds a Misuse error for op.
func Misusef(op, format string, args ...any) error {
	return &Error{Kind: Misuse, Op: op, Err: fmt.Errorf(format, args...)}
}

// Wrap re-labels err with op while preserving its classification. Unclassified
// errors are treated as Corrupted since the core has no other failure source.
func Wrap(op string, err error) error {
	if err == nil {
		return nil
	}
	var classified *Error
	if errors.As(err, &classified) {
		return &Error{Kind: classified.Kind, Op: op, Err: err}
	}
	return &Error{Kind: Corrupted, Op: op, Err: err}
}

// IsCorrupted reports whether err is (or wraps) a Corrupted error.
func IsCorrupted(err error) bool {
	return errors.Is(err, ErrCorrupted)
}

// IsMisuse reports whether err is (or wraps) a Misuse error.
func IsMisuse(err error) bool {
	return errors.Is(err, ErrMisuse)
}
