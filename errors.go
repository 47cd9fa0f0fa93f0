package tryhttp

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind tags a normalized failure.
type Kind string

const (
	// KindResponse means the server replied with a status the client rejected.
	KindResponse Kind = "response"
	// KindRequest means the request was sent but no reply was received.
	KindRequest Kind = "request"
	// KindError means a generic error was returned or raised.
	KindError Kind = "error"
	// KindDefault means a value that is not an error was raised.
	KindDefault Kind = "default"
)

// Sentinels for errors.Is. Each matches any *Error of the same kind.
var (
	ErrResponse = &Error{Type: KindResponse}
	ErrRequest  = &Error{Type: KindRequest}
	ErrGeneric  = &Error{Type: KindError}
	ErrDefault  = &Error{Type: KindDefault}
)

// Error is the normalized failure returned by Wrap.
//
// Status is nil when no status code is known. Data is shared by reference
// with the original failure and must be treated as read-only.
type Error struct {
	Type   Kind `json:"type" yaml:"type"`
	Data   any  `json:"data" yaml:"data"`
	Status *int `json:"status" yaml:"status"`

	cause error
}

// Error returns the error message.
func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	switch {
	case e.Status != nil:
		return fmt.Sprintf("%s error (%d): %v", e.Type, *e.Status, e.Data)
	case e.Data != nil:
		return fmt.Sprintf("%s error: %v", e.Type, e.Data)
	default:
		return fmt.Sprintf("%s error", e.Type)
	}
}

// Unwrap returns the original error, if the failure was one.
func (e *Error) Unwrap() error {
	return e.cause
}

// Is reports whether target is an *Error of the same kind.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t != nil && e.Type == t.Type
}

// StatusCode returns the status code and whether one is known.
func (e *Error) StatusCode() (int, bool) {
	if e.Status == nil {
		return 0, false
	}
	return *e.Status, true
}

// Response is the part of a rejected reply attached to a ClientError.
type Response struct {
	Data   any
	Status int
	Header http.Header
}

// ClientFailure is implemented by failures coming from an HTTP client that
// attaches the exchange to them. Any client exposing this shape can be
// classified by Wrap.
type ClientFailure interface {
	IsClientError() bool
	AttachedResponse() *Response
	AttachedRequest() *http.Request
}

// ClientError is the ClientFailure returned by Client.
type ClientError struct {
	Response *Response
	Request  *http.Request
	Err      error
}

var _ ClientFailure = (*ClientError)(nil)

// Error returns the error message.
func (e *ClientError) Error() string {
	if e != nil && e.Err != nil {
		return e.Err.Error()
	}
	return "http client error"
}

// Unwrap returns the underlying error.
func (e *ClientError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// IsClientError marks e as coming from an HTTP client.
func (e *ClientError) IsClientError() bool {
	return e != nil
}

// AttachedResponse returns the rejected reply, if any.
func (e *ClientError) AttachedResponse() *Response {
	if e == nil {
		return nil
	}
	return e.Response
}

// AttachedRequest returns the request that was sent, if any.
func (e *ClientError) AttachedRequest() *http.Request {
	if e == nil {
		return nil
	}
	return e.Request
}

// RequestCreationError is used to signal the request creation failed.
type RequestCreationError struct {
	Err error
}

// Error returns the error message.
func (e *RequestCreationError) Error() string {
	return fmt.Errorf("request creation failed: %w", e.Err).Error()
}

// Unwrap returns the underlying error.
func (e *RequestCreationError) Unwrap() error {
	return e.Err
}

// ErrStatus is wrapped by ClientError when a reply has a rejected status code.
var ErrStatus = errors.New("unexpected status")
