// Package corerrors defines the error taxonomy shared by the clock,
// message bus, component lifecycle, and execution client. It is grounded
// on the teacher's RFC 7807 "kind" taxonomy (common/errors in the source
// pack) with the HTTP transport stripped out: nothing in the core runtime
// substrate answers requests over HTTP, so errors here carry a component
// and operation tag plus a human reason instead of a status code.
package corerrors

import "fmt"

// Kind classifies an error raised at a component boundary.
type Kind string

const (
	// KindValidation covers invalid identifiers, zero-interval timers,
	// duplicate timer names, oms_type == NONE, and AccountId issuer
	// mismatches. Raised at construction/registration time.
	KindValidation Kind = "validation"
	// KindState covers illegal component transitions and double-registered
	// endpoints. Raised locally, never propagated as a bus event.
	KindState Kind = "state"
	// KindReconciliation covers generate_order_updated calls with a stale
	// venue_order_id.
	KindReconciliation Kind = "reconciliation"
	// KindHandler wraps a panic or error recovered from inside a handler
	// invoked during publish/send.
	KindHandler Kind = "handler"
)

// Error is the concrete error type raised by core components. Lookup
// misses (unknown endpoint on send, unknown correlation on response,
// unknown timer on cancel) are deliberately NOT represented here: per
// spec, they are silent no-ops observable only through counters.
type Error struct {
	Kind      Kind
	Component string
	Operation string
	Reason    string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s.%s: %s", e.Kind, e.Component, e.Operation, e.Reason)
}

// New constructs a tagged Error.
func New(kind Kind, component, operation, reason string) *Error {
	return &Error{Kind: kind, Component: component, Operation: operation, Reason: reason}
}

// Validation constructs a KindValidation error.
func Validation(component, operation, reason string) *Error {
	return New(KindValidation, component, operation, reason)
}

// Validationf is Validation with fmt.Sprintf-style formatting of reason.
func Validationf(component, operation, format string, args ...interface{}) *Error {
	return New(KindValidation, component, operation, fmt.Sprintf(format, args...))
}

// State constructs a KindState error.
func State(component, operation, reason string) *Error {
	return New(KindState, component, operation, reason)
}

// Statef is State with fmt.Sprintf-style formatting of reason.
func Statef(component, operation, format string, args ...interface{}) *Error {
	return New(KindState, component, operation, fmt.Sprintf(format, args...))
}

// Reconciliation constructs a KindReconciliation error.
func Reconciliation(component, operation, reason string) *Error {
	return New(KindReconciliation, component, operation, reason)
}

// Reconciliationf is Reconciliation with fmt.Sprintf-style formatting.
func Reconciliationf(component, operation, format string, args ...interface{}) *Error {
	return New(KindReconciliation, component, operation, fmt.Sprintf(format, args...))
}

// HandlerError is a KindHandler error wrapping the original cause.
type HandlerError struct {
	Base  *Error
	Cause error
}

func (e *HandlerError) Error() string { return e.Base.Error() }

func (e *HandlerError) Unwrap() error { return e.Cause }

// WrapHandler wraps a panic/error recovered from a handler invocation.
func WrapHandler(component, operation string, cause error) *HandlerError {
	return &HandlerError{
		Base:  New(KindHandler, component, operation, cause.Error()),
		Cause: cause,
	}
}
