// Package status implements the status location handler. It answers GET and HEAD
// with a fixed four line report of connection and request counters.
package status

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/giygas/nginx-status/interfaces"
	"github.com/giygas/nginx-status/logging"
)

// ContentType is the content type announced for the report
const ContentType = "application/json"

// DefaultMaxDiscard bounds how much of a request body is drained before answering
const DefaultMaxDiscard = 1 << 20

type subrequestKey struct{}

// WithSubrequest marks ctx as belonging to a request issued on behalf of another
// one. The responder does not flush the output of such requests.
func WithSubrequest(ctx context.Context) context.Context {
	return context.WithValue(ctx, subrequestKey{}, true)
}

// IsSubrequest reports whether r was marked with WithSubrequest
func IsSubrequest(r *http.Request) bool {
	sub, _ := r.Context().Value(subrequestKey{}).(bool)
	return sub
}

// Responder serves the status report
type Responder struct {
	source     interfaces.CounterSource
	maxDiscard int64

	// allocate returns an empty buffer with at least size bytes of capacity
	allocate func(size int) ([]byte, error)
}

// NewResponder creates a responder reporting the counters of source
func NewResponder(source interfaces.CounterSource, maxDiscard int64) *Responder {
	if maxDiscard <= 0 {
		maxDiscard = DefaultMaxDiscard
	}

	return &Responder{
		source:     source,
		maxDiscard: maxDiscard,
		allocate: func(size int) ([]byte, error) {
			return make([]byte, 0, size), nil
		},
	}
}

// ServeHTTP implements http.Handler
func (s *Responder) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	err := s.Handle(w, r)
	if err == nil {
		return
	}

	code := StatusCode(err)
	if code == http.StatusMethodNotAllowed {
		w.Header().Set("Allow", "GET, HEAD")
	}

	logging.Debug("Status request failed", "method", r.Method, "code", code, "error", err)
	w.WriteHeader(code)
}

// Handle produces the report. It returns nil once a response has been written and
// an error when nothing was written; StatusCode gives the code to answer with.
func (s *Responder) Handle(w http.ResponseWriter, r *http.Request) error {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		return ErrMethodNotAllowed
	}

	if err := s.discardBody(r); err != nil {
		return err
	}

	w.Header().Set("Content-Type", ContentType)

	if r.Method == http.MethodHead {
		w.WriteHeader(http.StatusOK)
		return nil
	}

	buf, err := s.allocate(MaxReportSize)
	if err != nil || buf == nil {
		return errors.Join(ErrAllocation, err)
	}

	buf = Render(buf, s.source.Counters())

	w.Header().Set("Content-Length", strconv.Itoa(len(buf)))
	w.WriteHeader(http.StatusOK)

	if _, err := w.Write(buf); err != nil {
		// headers are gone, nothing left to answer with
		logging.Debug("Failed to write status report", "error", err)
		return nil
	}

	if !IsSubrequest(r) {
		if err := http.NewResponseController(w).Flush(); err != nil && !errors.Is(err, http.ErrNotSupported) {
			logging.Debug("Failed to flush status report", "error", err)
		}
	}

	return nil
}

// discardBody drains the request body so the connection can be reused
func (s *Responder) discardBody(r *http.Request) error {
	if r.Body == nil || r.Body == http.NoBody {
		return nil
	}

	n, err := io.Copy(io.Discard, io.LimitReader(r.Body, s.maxDiscard+1))
	if err != nil {
		var maxBytes *http.MaxBytesError
		if errors.As(err, &maxBytes) {
			return &SignalError{Code: http.StatusRequestEntityTooLarge, Err: err}
		}
		return &SignalError{Code: http.StatusBadRequest, Err: err}
	}

	if n > s.maxDiscard {
		return &SignalError{Code: http.StatusRequestEntityTooLarge, Err: errBodyTooLarge}
	}

	return nil
}

var errBodyTooLarge = errors.New("request body too large to discard")
