// Package errs defines the error kinds reported by the ingestion stages.
package errs

import (
	"errors"
	"fmt"
)

// Kind classifies a stage failure.
type Kind int

const (
	KindUnknown Kind = iota
	KindParse        // content is not valid CSV
	KindSchema       // an expected column is absent or an unexpected one remains
	KindIO           // network or filesystem failure
	KindInvalid      // bad argument, e.g. a split fraction outside (0, 1)
)

func (k Kind) String() string {
	switch k {
	case KindParse:
		return "parse error"
	case KindSchema:
		return "schema error"
	case KindIO:
		return "io error"
	case KindInvalid:
		return "invalid argument"
	default:
		return "unknown error"
	}
}

// Error is a stage failure carrying its kind.
type Error struct {
	Kind   Kind
	Op     string // stage or operation, e.g. "load"
	Column string // offending column for KindSchema
	Err    error
}

func (e *Error) Error() string {
	msg := e.Kind.String()
	if e.Op != "" {
		msg = e.Op + ": " + msg
	}
	if e.Column != "" {
		msg += fmt.Sprintf(": column %q", e.Column)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

// E builds an *Error of the given kind.
func E(kind Kind, op string, err error) *Error {
	return &Error{Kind: kind, Op: op, Err: err}
}

// Column builds a KindSchema error naming col.
func Column(op, col string, err error) *Error {
	return &Error{Kind: KindSchema, Op: op, Column: col, Err: err}
}

// KindOf returns the kind of the first *Error in err's chain, or KindUnknown.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// Is reports whether err carries the given kind.
func Is(err error, kind Kind) bool {
	if err == nil {
		return false
	}
	return KindOf(err) == kind
}
