// Package toolerr defines the classified errors that cross layer boundaries.
// Every failure inside the wrapper pipeline is mapped to exactly one Kind
// before it becomes visible to a caller; raw transport or language-level
// errors never escape unclassified.
package toolerr

import (
	"errors"
	"fmt"
)

// Kind is the machine-readable classification of a wrapper failure.
type Kind string

const (
	// KindValidation: the input is malformed or contains unknown fields.
	// Recoverable by the caller correcting the input; never retried.
	KindValidation Kind = "validation_error"
	// KindSecurity: well-formed input that violates a safety rule.
	// Never retried, never downgraded to a warning.
	KindSecurity Kind = "security_rejection"
	// KindConfirmation: a mutating call arrived without confirmed=true.
	// Not a failure; the caller must re-invoke with confirmation.
	KindConfirmation Kind = "confirmation_required"
	// KindTransport: the remote call itself failed (connection, status).
	KindTransport Kind = "transport_error"
	// KindTimeout: the remote call did not settle within the bounded wait.
	KindTimeout Kind = "timeout"
	// KindTool: the external tool reported its own failure.
	KindTool Kind = "tool_error"
)

// Error is the single error type callers observe from the pipeline.
type Error struct {
	Kind Kind
	Tool string // "<server>.<operation>", when known
	Rule string // violated field or security rule, when applicable
	Msg  string
	Err  error // wrapped cause, may be nil
}

func (e *Error) Error() string {
	switch {
	case e.Rule != "" && e.Tool != "":
		return fmt.Sprintf("%s: %s: %s: %s", e.Kind, e.Tool, e.Rule, e.Msg)
	case e.Tool != "":
		return fmt.Sprintf("%s: %s: %s", e.Kind, e.Tool, e.Msg)
	default:
		return fmt.Sprintf("%s: %s", e.Kind, e.Msg)
	}
}

func (e *Error) Unwrap() error { return e.Err }

// Validation reports a schema violation on field.
func Validation(tool, field, msg string) *Error {
	return &Error{Kind: KindValidation, Tool: tool, Rule: field, Msg: msg}
}

// Security reports a security-gate rejection by rule.
func Security(tool, rule, msg string) *Error {
	return &Error{Kind: KindSecurity, Tool: tool, Rule: rule, Msg: msg}
}

// Confirmation signals that a mutating call must be repeated with
// confirmed=true before anything is executed.
func Confirmation(tool string) *Error {
	return &Error{Kind: KindConfirmation, Tool: tool, Msg: "mutating operation requires confirmed=true"}
}

// Transport reports a remote-call failure that is not a timeout.
func Transport(tool, msg string, cause error) *Error {
	return &Error{Kind: KindTransport, Tool: tool, Msg: msg, Err: cause}
}

// Timeout reports a remote call that exceeded its bounded wait.
func Timeout(tool, msg string, cause error) *Error {
	return &Error{Kind: KindTimeout, Tool: tool, Msg: msg, Err: cause}
}

// Tool reports a failure signaled by the external tool itself. The tool's
// own message is preserved verbatim.
func Tool(tool, msg string) *Error {
	return &Error{Kind: KindTool, Tool: tool, Msg: msg}
}

// KindOf extracts the classification from err, or "" if err is nil or
// carries no classification.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// Retryable reports whether the caller may reasonably retry the call as-is.
// The framework itself never retries.
func Retryable(err error) bool {
	k := KindOf(err)
	return k == KindTransport || k == KindTimeout
}
