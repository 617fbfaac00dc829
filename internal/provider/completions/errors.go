package completions

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
)

// ErrorType classifies completion request failures.
type ErrorType int

const (
	ErrTransport         ErrorType = iota // connection failure, unreadable body
	ErrAuth                               // HTTP 401, 403
	ErrStatus                             // any other non-2xx
	ErrMalformedResponse                  // 2xx body that is not JSON
	ErrCanceled                           // caller context done
)

// String returns the tag recorded on failed answers.
func (e ErrorType) String() string {
	switch e {
	case ErrTransport:
		return "transport"
	case ErrAuth:
		return "credential"
	case ErrStatus:
		return "status"
	case ErrMalformedResponse:
		return "malformed_response"
	case ErrCanceled:
		return "canceled"
	default:
		return "unknown"
	}
}

// ClassifiedError wraps a request failure with its classification.
type ClassifiedError struct {
	Type       ErrorType
	StatusCode int
	Message    string
}

func (e *ClassifiedError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("completions %s (HTTP %d): %s", e.Type, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("completions %s: %s", e.Type, e.Message)
}

// IsTransport reports whether err is a failure to get a usable HTTP
// exchange. Credential and status failures count as transport variants.
func IsTransport(err error) bool {
	var ce *ClassifiedError
	if !errors.As(err, &ce) {
		return false
	}
	switch ce.Type {
	case ErrTransport, ErrAuth, ErrStatus:
		return true
	default:
		return false
	}
}

// TypeOf returns the classification of err, or ErrTransport for errors
// that were not produced by this package.
func TypeOf(err error) ErrorType {
	var ce *ClassifiedError
	if errors.As(err, &ce) {
		return ce.Type
	}
	return ErrTransport
}

// errorBody is the OpenAI-style JSON error body.
type errorBody struct {
	Error struct {
		Message string `json:"message"`
		Type    string `json:"type"`
		Code    any    `json:"code"`
	} `json:"error"`
}

// classifyHTTPError classifies a non-2xx response.
func classifyHTTPError(resp *http.Response) *ClassifiedError {
	body, _ := io.ReadAll(resp.Body)

	var eb errorBody
	json.Unmarshal(body, &eb) //nolint:errcheck // best-effort parse

	msg := eb.Error.Message
	if msg == "" {
		msg = string(body)
	}
	if msg == "" {
		msg = http.StatusText(resp.StatusCode)
	}

	typ := ErrStatus
	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		typ = ErrAuth
	}

	return &ClassifiedError{
		Type:       typ,
		StatusCode: resp.StatusCode,
		Message:    msg,
	}
}
