package session

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"

	"github.com/pkg/errors"
)

var ErrNoSession = errors.New("no stored session")

// Store persists a single identity.
type Store interface {
	Load() (Identity, error)
	Save(Identity) error
	Clear() error
}

// FileStore keeps the identity as JSON in one file, readable only by the owner.
type FileStore struct {
	path string
}

func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// DefaultPath is the session file under the user's config directory.
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", errors.Wrap(err, "resolve config dir")
	}
	return filepath.Join(dir, "tokobuku", "session.json"), nil
}

func (s *FileStore) Load() (Identity, error) {
	b, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return Identity{}, ErrNoSession
	}
	if err != nil {
		return Identity{}, errors.Wrapf(err, "read session %s", s.path)
	}
	var id Identity
	if err := json.Unmarshal(b, &id); err != nil {
		return Identity{}, errors.Wrap(err, "decode session")
	}
	if id.Token == "" {
		return Identity{}, errors.New("session has no token")
	}
	return id, nil
}

func (s *FileStore) Save(id Identity) error {
	b, err := json.Marshal(id)
	if err != nil {
		return errors.Wrap(err, "encode session")
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return errors.Wrap(err, "create session dir")
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, b, 0o600); err != nil {
		return errors.Wrap(err, "write session")
	}
	return errors.Wrap(os.Rename(tmp, s.path), "replace session")
}

func (s *FileStore) Clear() error {
	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return errors.Wrap(err, "remove session")
	}
	return nil
}

// MemoryStore keeps the identity in process memory.
type MemoryStore struct {
	mu sync.Mutex
	id *Identity
}

func NewMemoryStore() *MemoryStore { return &MemoryStore{} }

func (s *MemoryStore) Load() (Identity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.id == nil {
		return Identity{}, ErrNoSession
	}
	return *s.id, nil
}

func (s *MemoryStore) Save(id Identity) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.id = &id
	return nil
}

func (s *MemoryStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.id = nil
	return nil
}
