package passgage

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"

	"github.com/pkg/errors"
)

// SessionStore persists a session between process runs. Load returns
// (nil, nil) when no session is stored.
type SessionStore interface {
	Load() (*Session, error)
	Save(session Session) error
	Clear() error
}

// FileSessionStore keeps the session as a JSON file, created with 0600 so
// tokens stay private to the user.
type FileSessionStore struct {
	mu   sync.Mutex
	path string
}

// NewFileSessionStore creates a store backed by the given file path.
func NewFileSessionStore(path string) *FileSessionStore {
	return &FileSessionStore{path: path}
}

func (s *FileSessionStore) Load() (*Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}

		return nil, errors.Wrap(err, "failed to read session file")
	}

	var session Session
	if err := json.Unmarshal(data, &session); err != nil {
		return nil, errors.Wrap(err, "failed to decode session file")
	}

	return &session, nil
}

func (s *FileSessionStore) Save(session Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := json.Marshal(session)
	if err != nil {
		return errors.Wrap(err, "failed to encode session")
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return errors.Wrap(err, "failed to create session directory")
	}

	return errors.Wrap(os.WriteFile(s.path, data, 0o600), "failed to write session file")
}

func (s *FileSessionStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return errors.Wrap(err, "failed to remove session file")
	}

	return nil
}

// MemorySessionStore keeps the session in memory, mainly for tests and
// short-lived tools.
type MemorySessionStore struct {
	mu      sync.Mutex
	session *Session
}

// NewMemorySessionStore creates an empty in-memory store.
func NewMemorySessionStore() *MemorySessionStore {
	return &MemorySessionStore{}
}

func (s *MemorySessionStore) Load() (*Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.session == nil {
		return nil, nil
	}
	copied := *s.session

	return &copied, nil
}

func (s *MemorySessionStore) Save(session Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.session = &session

	return nil
}

func (s *MemorySessionStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.session = nil

	return nil
}
