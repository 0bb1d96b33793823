// Package diag reports internal compiler errors.
//
// An internal error is an invariant violation inside the compiler: it is never
// caused by user input and is never recovered from mid-pipeline. Fatalf panics
// with an *InternalError; the driver (or a test) converts it back into an
// error with Catch and terminates.
package diag

import (
	"fmt"

	"github.com/cockroachdb/errors"
	"github.com/smasher164/ctype/source"
)

// Names of the invariants reported by the type layer.
const (
	PlaceholderEmission = "placeholder type reached emission"
	UnsupportedVariant  = "operation not defined for type variant"
	UnionSelector       = "union emitted without field selector"
	UnboundTypeVariable = "type variable survived instantiation"
	DuplicateSymbol     = "duplicate symbol in scope"
	ScopeDiscipline     = "scope push/pop mismatch"
	MissingSymbol       = "type has no owning symbol"
	MissingMethod       = "required method not found"
	SumArity            = "sum type needs at least two members"
	DeclPlacement       = "declaration has no owning block"
)

type InternalError struct {
	Span      source.Span
	Invariant string
	Err       error
}

func (e *InternalError) Error() string {
	if e.Span.IsZero() {
		return fmt.Sprintf("internal error (%s): %v", e.Invariant, e.Err)
	}
	return fmt.Sprintf("%s: internal error (%s): %v", e.Span, e.Invariant, e.Err)
}

func (e *InternalError) Unwrap() error {
	return e.Err
}

// Fatalf aborts the compilation with an internal error located at span.
func Fatalf(span source.Span, invariant string, format string, args ...any) {
	err := errors.AssertionFailedf(format, args...)
	err = errors.WithDetailf(err, "invariant: %s", invariant)
	if !span.IsZero() {
		err = errors.WithDetailf(err, "at %s", span)
	}
	panic(&InternalError{Span: span, Invariant: invariant, Err: err})
}

// Catch runs f and returns the internal error it raised, if any. Panics that
// are not internal errors are propagated unchanged.
func Catch(f func()) (err error) {
	defer func() {
		if r := recover(); r != nil {
			ie, ok := r.(*InternalError)
			if !ok {
				panic(r)
			}
			err = ie
		}
	}()
	f()
	return nil
}

// AsInternal extracts the internal error from err's chain.
func AsInternal(err error) (*InternalError, bool) {
	var ie *InternalError
	if errors.As(err, &ie) {
		return ie, true
	}
	return nil, false
}

// IsInternal reports whether err carries an internal compiler error.
func IsInternal(err error) bool {
	_, ok := AsInternal(err)
	return ok && errors.HasAssertionFailure(err)
}
