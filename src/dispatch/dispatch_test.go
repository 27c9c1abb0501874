package dispatch

import (
	"net/http"
	"testing"
)

func TestGateSingleFlight(t *testing.T) {
	var g Gate

	gen, err := g.Acquire()
	if err != nil {
		t.Fatalf("Acquire() error: %v", err)
	}
	if gen != 1 {
		t.Fatalf("first generation = %d, want 1", gen)
	}

	if _, err := g.Acquire(); err != ErrInFlight {
		t.Fatalf("second Acquire() = %v, want ErrInFlight", err)
	}

	g.Release()
	gen, err = g.Acquire()
	if err != nil {
		t.Fatalf("Acquire() after Release error: %v", err)
	}
	if gen != 2 {
		t.Fatalf("generation after release = %d, want 2", gen)
	}
	if g.Generation() != 2 {
		t.Fatalf("Generation() = %d, want 2", g.Generation())
	}
}

func TestResponseErrorRetriable(t *testing.T) {
	cases := []struct {
		status int
		want   bool
	}{
		{http.StatusInternalServerError, true},
		{http.StatusBadGateway, true},
		{http.StatusTooManyRequests, true},
		{http.StatusBadRequest, false},
		{http.StatusUnauthorized, false},
		{http.StatusNotFound, false},
	}
	for _, c := range cases {
		e := &ResponseError{StatusCode: c.status}
		if e.Retriable() != c.want {
			t.Errorf("Retriable(%d) = %v, want %v", c.status, e.Retriable(), c.want)
		}
	}
}
