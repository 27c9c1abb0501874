// Package session generates the per-process correlation identifier attached
// to every verification and knowledge-base request.
package session

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
)

// Source holds one opaque identifier for the lifetime of the client process.
// It is never persisted: a new process gets a new identifier, keeping
// request correlation separate from authentication identity.
type Source struct {
	id string
}

// New generates the identifier once, at construction.
func New() (*Source, error) {
	b := make([]byte, 8)
	if _, err := rand.Read(b); err != nil {
		return nil, fmt.Errorf("generate session id: %w", err)
	}
	return &Source{id: hex.EncodeToString(b)}, nil
}

// ID returns the same identifier on every call.
func (s *Source) ID() string {
	return s.id
}
