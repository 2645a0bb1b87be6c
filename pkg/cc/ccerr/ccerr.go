// Package ccerr defines the tagged result vocabulary shared across the
// compiler core. Callers branch on Code, not just on success/failure, so a
// plain error string is not enough — every failure path returns one of
// these codes wrapped in an Error.
package ccerr

import (
	"errors"
	"fmt"
)

// Code tags the failure mode of an Error.
type Code int

const (
	OK Code = iota
	Invalid
	OutOfBounds
	NotFound
	AlreadyExists
	MemallocFailure
	ObjallocFailure
	Internal
	InvalidChange
	InvalidState
	NotSupported
	NoMatch
	LexerError
	SyntaxError
	AnalysisError
	Yield
	// IteratorEnd is returned exclusively by iterator Next methods; it is
	// not a failure and must never be wrapped alongside a real error.
	IteratorEnd
)

func (c Code) String() string {
	switch c {
	case OK:
		return "ok"
	case Invalid:
		return "invalid_parameter"
	case OutOfBounds:
		return "out_of_bounds"
	case NotFound:
		return "not_found"
	case AlreadyExists:
		return "already_exists"
	case MemallocFailure:
		return "memalloc_failure"
	case ObjallocFailure:
		return "objalloc_failure"
	case Internal:
		return "internal_error"
	case InvalidChange:
		return "invalid_change"
	case InvalidState:
		return "invalid_state"
	case NotSupported:
		return "not_supported"
	case NoMatch:
		return "no_match"
	case LexerError:
		return "lexer_error"
	case SyntaxError:
		return "syntax_error"
	case AnalysisError:
		return "analysis_error"
	case Yield:
		return "yield"
	case IteratorEnd:
		return "iterator_end"
	default:
		return "unknown_code"
	}
}

// Error is the concrete error type returned by every fallible operation in
// the compiler core.
type Error struct {
	Code Code
	Msg  string
	Loc  *SourceLocation
	Err  error
}

// SourceLocation pins an Error to a place in the original translation unit,
// when one is known (most compiler-core internals have none).
type SourceLocation struct {
	File   string
	Line   int
	Column int
}

func (e *Error) Error() string {
	if e.Loc != nil {
		return fmt.Sprintf("%s: %s (%s:%d:%d)", e.Code, e.Msg, e.Loc.File, e.Loc.Line, e.Loc.Column)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Msg)
}

func (e *Error) Unwrap() error { return e.Err }

// New builds an Error with the given code and formatted message.
func New(code Code, format string, args ...any) error {
	return &Error{Code: code, Msg: fmt.Sprintf(format, args...)}
}

// Wrap builds an Error that carries an underlying cause, following the same
// fmt.Errorf("%w", ...) wrapping convention used at the call boundaries of
// the rest of the module.
func Wrap(code Code, err error, format string, args ...any) error {
	return &Error{Code: code, Msg: fmt.Sprintf(format, args...), Err: err}
}

// Is reports whether err is (or wraps) an Error tagged with code.
func Is(err error, code Code) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == code
	}
	return false
}

// IteratorEndErr is the single shared sentinel iterator implementations
// return from Next to signal exhaustion.
var IteratorEndErr error = &Error{Code: IteratorEnd, Msg: "iteration complete"}
