// Package dispatch carries the request/response discipline shared by every
// client that talks to the verification service: bearer auth, a
// single-in-flight gate, and a failure taxonomy that separates transport
// errors from bad statuses and undecodable bodies.
package dispatch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync/atomic"
	"time"
)

const DefaultTimeout = 30 * time.Second

// ErrInFlight rejects a submission attempted while another one is pending
// on the same gate. It is a caller-contract violation, not a backend error:
// the UI is expected to disable submission while a request is outstanding.
var ErrInFlight = errors.New("request already in flight")

// TransportError covers network-level failures, timeouts included. The
// request may never have reached the service, so retrying is safe.
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string { return fmt.Sprintf("transport: %v", e.Err) }
func (e *TransportError) Unwrap() error { return e.Err }
func (e *TransportError) Retriable() bool { return true }

// ResponseError covers non-2xx statuses from the service.
type ResponseError struct {
	StatusCode int
	Body       []byte
}

func (e *ResponseError) Error() string { return fmt.Sprintf("HTTP %d", e.StatusCode) }

// Retriable treats server-side trouble as worth another attempt and client
// mistakes (auth, validation) as not.
func (e *ResponseError) Retriable() bool {
	return e.StatusCode >= 500 || e.StatusCode == http.StatusTooManyRequests
}

// ParseError covers a 2xx response whose body could not be decoded. Kept
// distinct from TransportError so callers can message the two differently.
type ParseError struct {
	Err error
}

func (e *ParseError) Error() string { return fmt.Sprintf("parse response: %v", e.Err) }
func (e *ParseError) Unwrap() error { return e.Err }

// Gate enforces at most one in-flight request and numbers the attempts it
// admits. The generation lets a caller that tore down mid-request recognize
// a late result and discard it instead of applying it to stale state.
type Gate struct {
	busy atomic.Bool
	gen  atomic.Uint64
}

// Acquire admits one request and returns its generation, or ErrInFlight.
func (g *Gate) Acquire() (uint64, error) {
	if !g.busy.CompareAndSwap(false, true) {
		return 0, ErrInFlight
	}
	return g.gen.Add(1), nil
}

func (g *Gate) Release() {
	g.busy.Store(false)
}

// Generation returns the number of the most recently admitted request.
func (g *Gate) Generation() uint64 {
	return g.gen.Load()
}

// Do sends the request and returns the response body. Outcomes map onto the
// taxonomy above; nothing escapes as a bare error from the HTTP stack.
func Do(ctx context.Context, client *http.Client, req *http.Request, token string) ([]byte, error) {
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := client.Do(req.WithContext(ctx))
	if err != nil {
		return nil, &TransportError{Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &TransportError{Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &ResponseError{StatusCode: resp.StatusCode, Body: body}
	}
	return body, nil
}
