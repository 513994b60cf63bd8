// Package domainerrors carries the error taxonomy shared by every service.
//
// Services wrap underlying failures with a stable code; the HTTP layer maps
// codes to status classes so callers can tell "your request cannot succeed"
// from "the system is broken". Codes are part of the API surface, messages
// are not.
package domainerrors

import (
	"errors"
	"fmt"
	"net/http"
)

// Code classifies an error for propagation and HTTP mapping.
type Code string

const (
	// CodeConfig marks missing or invalid environment configuration.
	// Fatal at startup or first use.
	CodeConfig Code = "config_error"

	// CodeStorage marks a missing or corrupt persisted artifact, such as an
	// empty fragment file or a DID document that is not valid JSON.
	CodeStorage Code = "storage_error"

	// CodeVault marks key generation or signing failures in the key vault.
	CodeVault Code = "vault_error"

	// CodeLedger marks publish or funding failures, typically transient.
	CodeLedger Code = "ledger_error"

	// CodeResolution marks a DID that could not be resolved, or an
	// incomplete batch resolution.
	CodeResolution Code = "resolution_error"

	// Verification failures. All terminal and fail-closed: a presentation
	// carrying any of these is not valid, there is no partial-trust result.
	CodeSignatureInvalid    Code = "signature_invalid"
	CodeExpiredPresentation Code = "expired_presentation"
	CodeHolderBinding       Code = "holder_binding_mismatch"

	CodeBadRequest Code = "bad_request"
	CodeNotFound   Code = "not_found"
	CodeInternal   Code = "internal_error"
)

// Error is the concrete error type carried across service boundaries.
type Error struct {
	Code    Code
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// Is lets errors.Is match on code-only sentinel values.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return t.Code == e.Code && (t.Message == "" || t.Message == e.Message)
}

// New builds a fresh domain error.
func New(code Code, message string) error {
	return &Error{Code: code, Message: message}
}

// Newf builds a fresh domain error with a formatted message.
func Newf(code Code, format string, args ...any) error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap attaches a code and message to an underlying error. A nil err yields
// nil so call sites can wrap unconditionally.
func Wrap(err error, code Code, message string) error {
	if err == nil {
		return nil
	}
	// Do not re-wrap: the innermost classification wins, since it was made
	// closest to the failure.
	var existing *Error
	if errors.As(err, &existing) {
		return &Error{Code: existing.Code, Message: message, Err: err}
	}
	return &Error{Code: code, Message: message, Err: err}
}

// Wrapf is Wrap with a formatted message.
func Wrapf(err error, code Code, format string, args ...any) error {
	return Wrap(err, code, fmt.Sprintf(format, args...))
}

// CodeOf extracts the code from an error chain, defaulting to CodeInternal.
func CodeOf(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return CodeInternal
}

// HasCode reports whether the error chain carries the given code.
func HasCode(err error, code Code) bool {
	return err != nil && CodeOf(err) == code
}

// ToHTTPStatus maps an error code to its HTTP status class. Verification
// failures and unresolvable DIDs are the caller's problem (the presented
// material cannot validate), ledger trouble is upstream, the rest is ours.
func ToHTTPStatus(code Code) int {
	switch code {
	case CodeBadRequest:
		return http.StatusBadRequest
	case CodeNotFound:
		return http.StatusNotFound
	case CodeResolution, CodeSignatureInvalid, CodeExpiredPresentation, CodeHolderBinding:
		return http.StatusUnprocessableEntity
	case CodeLedger:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
