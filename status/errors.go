package status

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrMethodNotAllowed is returned for any method other than GET or HEAD
	ErrMethodNotAllowed = errors.New("method not allowed")

	// ErrAllocation is returned when the report buffer cannot be obtained
	ErrAllocation = errors.New("cannot allocate status buffer")
)

// SignalError carries a result code from a step the responder delegates to,
// such as draining the request body. The code is answered as is.
type SignalError struct {
	Code int
	Err  error
}

func (e *SignalError) Error() string {
	return fmt.Sprintf("status %d: %v", e.Code, e.Err)
}

func (e *SignalError) Unwrap() error {
	return e.Err
}

// StatusCode maps an error returned by the responder to the HTTP status it answers with
func StatusCode(err error) int {
	var sig *SignalError

	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, ErrMethodNotAllowed):
		return http.StatusMethodNotAllowed
	case errors.As(err, &sig):
		return sig.Code
	default:
		return http.StatusInternalServerError
	}
}
