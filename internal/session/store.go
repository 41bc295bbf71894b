// Package session holds the durable key-value store the session token lives in.
package session

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"sync"
)

// TokenKey is the fixed key the session token is stored under.
const TokenKey = "token"

// ErrInvalidKey is returned for keys that cannot be used as file names.
var ErrInvalidKey = errors.New("session: invalid key")

var validKey = regexp.MustCompile(`^[A-Za-z0-9_.-]+$`)

// Store is a process-wide durable key-value store.
type Store interface {
	Get(key string) (value string, ok bool, err error)
	Set(key, value string) error
	Remove(key string) error
}

// FileStore keeps one file per key under dir. Values outlive the process.
type FileStore struct {
	dir string
}

// NewFileStore returns a store rooted at dir. The directory is created on first write.
func NewFileStore(dir string) *FileStore {
	return &FileStore{dir: dir}
}

// Dir returns the directory values are kept in.
func (s *FileStore) Dir() string {
	return s.dir
}

func (s *FileStore) path(key string) (string, error) {
	if !validKey.MatchString(key) || key == "." || key == ".." {
		return "", fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}
	return filepath.Join(s.dir, key), nil
}

// Get returns the value stored under key. A missing or blank file is reported as absent.
func (s *FileStore) Get(key string) (string, bool, error) {
	p, err := s.path(key)
	if err != nil {
		return "", false, err
	}
	data, err := os.ReadFile(p)
	if errors.Is(err, os.ErrNotExist) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("session.Get: %w", err)
	}
	v := strings.TrimSpace(string(data))
	return v, v != "", nil
}

// Set writes value under key, replacing any previous value.
func (s *FileStore) Set(key, value string) error {
	p, err := s.path(key)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(s.dir, 0700); err != nil {
		return fmt.Errorf("session.Set: create %s: %w", s.dir, err)
	}
	// Written to a temp file and renamed into place.
	tmp, err := os.CreateTemp(s.dir, "."+key+".*")
	if err != nil {
		return fmt.Errorf("session.Set: %w", err)
	}
	defer os.Remove(tmp.Name()) //nolint:errcheck // no-op after a successful rename
	if err := tmp.Chmod(0600); err != nil {
		tmp.Close() //nolint:errcheck
		return fmt.Errorf("session.Set: %w", err)
	}
	if _, err := tmp.WriteString(value); err != nil {
		tmp.Close() //nolint:errcheck
		return fmt.Errorf("session.Set: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("session.Set: %w", err)
	}
	if err := os.Rename(tmp.Name(), p); err != nil {
		return fmt.Errorf("session.Set: %w", err)
	}
	return nil
}

// Remove deletes key. Removing an absent key is not an error.
func (s *FileStore) Remove(key string) error {
	p, err := s.path(key)
	if err != nil {
		return err
	}
	if err := os.Remove(p); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("session.Remove: %w", err)
	}
	return nil
}

// MemoryStore is an in-process Store, used in tests and for one-shot runs.
type MemoryStore struct {
	mu   sync.Mutex
	data map[string]string
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: make(map[string]string)}
}

func (s *MemoryStore) Get(key string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.data[key]
	return v, ok && v != "", nil
}

func (s *MemoryStore) Set(key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[key] = value
	return nil
}

func (s *MemoryStore) Remove(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, key)
	return nil
}

// TokenFunc adapts a Store into a function returning the current session
// token, or "" when there is none or the store cannot be read.
func TokenFunc(s Store) func() string {
	return func() string {
		tok, ok, err := s.Get(TokenKey)
		if err != nil || !ok {
			return ""
		}
		return tok
	}
}

// Active reports whether a session token is present. Presence alone is authority.
func Active(s Store) bool {
	_, ok, err := s.Get(TokenKey)
	return err == nil && ok
}
