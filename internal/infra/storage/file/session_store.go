// Package file persists client state under the user's state directory. It
// plays the role a browser's localStorage plays for the web client: one
// document holding user, token, and OAuth flag, replaced or removed as a
// whole so the session invariant survives crashes mid-write.
package file

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"unimarket/internal/domain/session"
)

const sessionFileName = "session.json"

// SessionStore reads and writes the serialized session. Writes go through a
// temp file and rename so a partial write never leaves a token without its
// user on disk.
type SessionStore struct {
	mu  sync.Mutex
	dir string
}

func NewSessionStore(dir string) (*SessionStore, error) {
	if dir == "" {
		return nil, errors.New("file: state directory is required")
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("file: create state dir: %w", err)
	}
	return &SessionStore{dir: dir}, nil
}

func (s *SessionStore) Load() (*session.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	raw, err := os.ReadFile(s.path())
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("file: read session: %w", err)
	}
	var sess session.Session
	if err := json.Unmarshal(raw, &sess); err != nil {
		return nil, fmt.Errorf("file: decode session: %w", err)
	}
	if sess.Token == "" || sess.User.ID == 0 {
		// Half a session is worse than none; treat it as logged out.
		return nil, nil
	}
	return &sess, nil
}

func (s *SessionStore) Save(sess *session.Session) error {
	if sess == nil {
		return session.ErrUserRequired
	}
	if sess.Token == "" {
		return session.ErrTokenRequired
	}
	raw, err := json.MarshalIndent(sess, "", "  ")
	if err != nil {
		return fmt.Errorf("file: encode session: %w", err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	tmp, err := os.CreateTemp(s.dir, sessionFileName+".*")
	if err != nil {
		return fmt.Errorf("file: temp session file: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("file: write session: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("file: close session file: %w", err)
	}
	if err := os.Rename(tmpName, s.path()); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("file: replace session: %w", err)
	}
	return nil
}

func (s *SessionStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := os.Remove(s.path()); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("file: clear session: %w", err)
	}
	return nil
}

func (s *SessionStore) path() string {
	return filepath.Join(s.dir, sessionFileName)
}

var _ session.Store = (*SessionStore)(nil)
