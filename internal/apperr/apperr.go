// Package apperr defines the single tagged error value used across the service.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies an Error.
type Kind string

const (
	KindInvalidDate  Kind = "invalid_date"
	KindNetwork      Kind = "network"
	KindHTTPStatus   Kind = "http_status"
	KindDecode       Kind = "decode"
	KindUnauthorized Kind = "unauthorized"
	KindInternal     Kind = "internal"
)

// Error carries a kind and a human readable message. Status is the upstream HTTP
// status for KindHTTPStatus and zero otherwise.
type Error struct {
	Kind    Kind   `json:"kind"`
	Message string `json:"message"`
	Status  int    `json:"status,omitempty"`
	Err     error  `json:"-"`
}

// Error implements the error interface. Only the message is shown so it can be
// displayed to end users as is.
func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	return e.Message
}

// Unwrap returns the wrapped error.
func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// Detail includes the wrapped cause, for logs.
func (e *Error) Detail() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Detail returns the log form of err: the wrapped cause of an *Error is kept,
// other errors use their own text.
func Detail(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Detail()
	}
	return err.Error()
}

// InvalidDate reports a malformed or unparseable date token.
func InvalidDate(message string) *Error {
	return &Error{Kind: KindInvalidDate, Message: message}
}

// Network wraps a transport-level failure.
func Network(err error) *Error {
	return &Error{Kind: KindNetwork, Message: "Erro de conexão com a API", Err: err}
}

// HTTPStatus reports a non-200 response from the API.
func HTTPStatus(status int) *Error {
	return &Error{
		Kind:    KindHTTPStatus,
		Message: fmt.Sprintf("Erro na API: código %d", status),
		Status:  status,
	}
}

// Decode wraps a JSON parse failure of an API body.
func Decode(err error) *Error {
	return &Error{Kind: KindDecode, Message: "Erro ao processar resposta da API", Err: err}
}

// ErrUnauthorized is returned to callers that fail admin authorization.
var ErrUnauthorized = &Error{Kind: KindUnauthorized, Message: "Unauthorized"}

// KindOf returns the kind of err, or KindInternal for errors that are not *Error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// Is reports whether err is an *Error of the given kind.
func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

// HTTPCode maps an error to the status code returned by the admin endpoints.
func HTTPCode(err error) int {
	switch KindOf(err) {
	case KindInvalidDate:
		return http.StatusBadRequest
	case KindUnauthorized:
		return http.StatusUnauthorized
	case KindNetwork, KindHTTPStatus, KindDecode:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
