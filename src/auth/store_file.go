package auth

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// FileStore keeps the session as one JSON record on disk.
type FileStore struct {
	path string
}

func NewFileStore(path string) (*FileStore, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, fmt.Errorf("session file path is required")
	}
	return &FileStore{path: path}, nil
}

// Bootstrap reads and validates the durable record. A missing file means no
// session; an unreadable, unparsable, partial, or expired record is purged
// so the bad value is never retried.
func (s *FileStore) Bootstrap() (Session, bool, error) {
	b, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return Session{}, false, nil
		}
		return Session{}, false, fmt.Errorf("read session file: %w", err)
	}

	var sess Session
	if err := json.Unmarshal(b, &sess); err != nil || !sess.Valid() || tokenExpired(sess.Token) {
		s.purge()
		return Session{}, false, nil
	}
	return sess, true, nil
}

// Save writes the whole session as a single record, replacing any prior
// value. The temp-file rename keeps a crashed write from leaving a torn
// record for the next Bootstrap.
func (s *FileStore) Save(sess Session) error {
	if !sess.Valid() {
		return fmt.Errorf("refusing to save partial session")
	}
	b, err := json.MarshalIndent(sess, "", "  ")
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("mkdir session dir: %w", err)
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, b, 0o600); err != nil {
		return fmt.Errorf("write session file: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("replace session file: %w", err)
	}
	return nil
}

// Clear removes the durable record. A record that is already gone is fine.
func (s *FileStore) Clear() error {
	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove session file: %w", err)
	}
	return nil
}

func (s *FileStore) purge() {
	_ = os.Remove(s.path)
}
