// Package domainerrors defines the coded errors shared by every service.
// Codes travel across the broker inside reply envelopes, so a stage failure
// raised in one process keeps its identity when it surfaces at the gateway.
package domainerrors

import (
	"errors"
	"fmt"
	"net/http"
)

// Code identifies a class of failure independent of the transport it crosses.
type Code string

const (
	CodeBadRequest   Code = "bad_request"
	CodeUnauthorized Code = "unauthorized"
	CodeNotFound     Code = "not_found"
	CodeInternal     Code = "internal"

	// Portal stage failures. None of these are retried automatically: they can
	// reflect genuinely bad credentials or a consumed artifact.
	CodeArtifactNotFound   Code = "artifact_not_found"
	CodeInvalidCredentials Code = "invalid_credentials"
	CodeUnexpectedResponse Code = "unexpected_response"
	CodeTokenNotFound      Code = "token_not_found"
	CodeLogoutFailed       Code = "logout_failed"

	// Transport failures. Reported distinctly so the HTTP client can decide
	// whether a retry is worthwhile.
	CodeTimeout           Code = "timeout"
	CodeBrokerUnavailable Code = "broker_unavailable"
)

// Error is a coded domain error. Message is safe to show to API clients.
type Error struct {
	Code    Code
	Message string
	cause   error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error { return e.cause }

// Is makes errors.Is treat two coded errors as equal when their codes match.
func (e *Error) Is(target error) bool {
	var de *Error
	if errors.As(target, &de) {
		return de.Code == e.Code
	}
	return false
}

// New builds a coded error with a client-visible message.
func New(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// Wrap attaches a cause that is kept for logs but never serialized to clients.
func Wrap(code Code, message string, cause error) *Error {
	return &Error{Code: code, Message: message, cause: cause}
}

// Is reports whether err carries the given code anywhere in its chain.
func Is(err error, code Code) bool {
	var de *Error
	if errors.As(err, &de) {
		return de.Code == code
	}
	return false
}

// CodeOf extracts the code from err, defaulting to CodeInternal.
func CodeOf(err error) Code {
	var de *Error
	if errors.As(err, &de) {
		return de.Code
	}
	return CodeInternal
}

// MessageOf extracts the client-visible message, defaulting to a generic one.
func MessageOf(err error) string {
	var de *Error
	if errors.As(err, &de) {
		return de.Message
	}
	return "internal error"
}

// ToHTTPStatus maps a code to the status the boundary reports. Stage failures
// surface as 502: the upstream portal, not this system, rejected the step.
func ToHTTPStatus(code Code) int {
	switch code {
	case CodeBadRequest:
		return http.StatusBadRequest
	case CodeUnauthorized:
		return http.StatusUnauthorized
	case CodeNotFound:
		return http.StatusNotFound
	case CodeArtifactNotFound, CodeInvalidCredentials, CodeUnexpectedResponse,
		CodeTokenNotFound, CodeLogoutFailed:
		return http.StatusBadGateway
	case CodeTimeout:
		return http.StatusGatewayTimeout
	case CodeBrokerUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// FromCode rebuilds a coded error from its serialized form. Unknown codes
// collapse to CodeInternal so a newer producer cannot smuggle arbitrary codes
// past an older consumer.
func FromCode(code, message string) *Error {
	switch c := Code(code); c {
	case CodeBadRequest, CodeUnauthorized, CodeNotFound,
		CodeArtifactNotFound, CodeInvalidCredentials, CodeUnexpectedResponse,
		CodeTokenNotFound, CodeLogoutFailed,
		CodeTimeout, CodeBrokerUnavailable:
		return New(c, message)
	default:
		return New(CodeInternal, message)
	}
}
