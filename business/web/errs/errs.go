// Package errs provides the error types the handlers use to tell the
// middleware which errors are safe to show to the client.
package errs

import (
	"errors"
	"net/http"

	"github.com/ardanlabs/fiatlux/foundation/blockchain/database"
	"github.com/ardanlabs/fiatlux/foundation/blockchain/ledger"
)

// Response is the form used for API responses from failures in the API.
type Response struct {
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields,omitempty"`
}

// Trusted is used to pass an error during the request through the
// application with web specific context.
type Trusted struct {
	Err    error
	Status int
}

// NewTrusted wraps a provided error with an HTTP status code. This
// function should be used when handlers encounter expected errors.
func NewTrusted(err error, status int) error {
	return &Trusted{err, status}
}

// Error implements the error interface. It uses the default message of the
// wrapped error. This is what will be shown in the services' logs.
func (te *Trusted) Error() string {
	return te.Err.Error()
}

// Unwrap provides support for errors.Is against the wrapped error.
func (te *Trusted) Unwrap() error {
	return te.Err
}

// IsTrusted checks if an error of type Trusted exists.
func IsTrusted(err error) bool {
	var te *Trusted
	return errors.As(err, &te)
}

// GetTrusted returns a copy of the Trusted pointer.
func GetTrusted(err error) *Trusted {
	var te *Trusted
	if !errors.As(err, &te) {
		return nil
	}
	return te
}

// =============================================================================

// FromDomain wraps the errors produced by the blockchain packages with the
// status that describes them. A chain that fails verification is not
// acceptable to this node, a transaction that can't be applied is a bad
// request. Any other error is returned as is and treated as internal.
func FromDomain(err error) error {
	switch {
	case err == nil:
		return nil
	case database.IsValidationError(err):
		return NewTrusted(err, http.StatusNotAcceptable)
	case ledger.IsTxError(err):
		return NewTrusted(err, http.StatusBadRequest)
	}

	return err
}
