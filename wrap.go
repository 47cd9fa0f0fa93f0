package tryhttp

import (
	"errors"
)

// Wrap invokes operation once and returns its value untouched on success.
//
// On failure it returns the zero value and an *Error built by Classify. A
// panic inside operation is recovered and classified the same way, so the
// original failure never escapes unclassified.
func Wrap[T any](operation func() (T, error)) (res T, err error) {
	defer func() {
		if r := recover(); r != nil {
			var zero T
			res, err = zero, Classify(r)
		}
	}()

	res, err = operation()
	if err != nil {
		var zero T
		return zero, Classify(err)
	}
	return res, nil
}

// Classify builds the normalized form of a failure. The first matching rule
// wins: client failures with an attached response, then those with an
// attached request, then errors, then anything else.
func Classify(v any) *Error {
	cause, _ := v.(error)

	if cf, ok := asClientFailure(v); ok && cf.IsClientError() {
		if res := cf.AttachedResponse(); res != nil {
			status := res.Status
			return &Error{Type: KindResponse, Data: res.Data, Status: &status, cause: cause}
		}
		// A bare request carries neither a payload nor a status, so both stay
		// unset. The transport error is still reachable through Unwrap.
		if req := cf.AttachedRequest(); req != nil {
			return &Error{Type: KindRequest, cause: cause}
		}
	}

	if cause != nil {
		return &Error{Type: KindError, Data: cause.Error(), cause: cause}
	}
	return &Error{Type: KindDefault, Data: v}
}

func asClientFailure(v any) (ClientFailure, bool) {
	if err, ok := v.(error); ok {
		var cf ClientFailure
		if errors.As(err, &cf) {
			return cf, true
		}
		return nil, false
	}
	cf, ok := v.(ClientFailure)
	return cf, ok
}
