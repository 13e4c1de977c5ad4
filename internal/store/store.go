package store

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	toml "github.com/pelletier/go-toml/v2"
	"github.com/zeebo/blake3"
)

// DialogueKey is the well-known key holding the dialogue text.
const DialogueKey = "multilogue"

// Snapshot describes the store as last observed by this process.
type Snapshot struct {
	Path        string
	Digest      [32]byte
	LastUpdated time.Time
	LastError   error
}

// Store is a durable string key-value store backed by a TOML document.
// Every read goes to disk so writes from other processes are visible.
type Store struct {
	path string

	mu       sync.Mutex
	snapshot Snapshot
}

// Open prepares a store at path, creating its parent directory.
func Open(path string) (*Store, error) {
	if path == "" {
		return nil, fmt.Errorf("store path is empty")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create store dir: %w", err)
	}
	s := &Store{path: path}
	s.snapshot.Path = path
	if _, err := s.load(); err != nil {
		return nil, err
	}
	return s, nil
}

// Path returns the backing file path.
func (s *Store) Path() string {
	return s.path
}

// Get returns the value under key and whether it was present.
func (s *Store) Get(key string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	values, err := s.load()
	if err != nil {
		return "", false, err
	}
	value, ok := values[key]
	return value, ok, nil
}

// Set overwrites key with value.
func (s *Store) Set(key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	values, err := s.load()
	if err != nil {
		return err
	}
	values[key] = value
	return s.write(values)
}

// Ensure creates key with def when it is absent and returns the stored value.
func (s *Store) Ensure(key, def string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	values, err := s.load()
	if err != nil {
		return "", err
	}
	if value, ok := values[key]; ok {
		return value, nil
	}
	values[key] = def
	if err := s.write(values); err != nil {
		return "", err
	}
	return def, nil
}

// Changed reports whether the file on disk differs from what this store
// last read or wrote. It does not update the recorded digest.
func (s *Store) Changed() (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return s.snapshot.Digest != blake3.Sum256(nil), nil
		}
		return false, fmt.Errorf("read store: %w", err)
	}
	return blake3.Sum256(data) != s.snapshot.Digest, nil
}

// Digest returns the blake3 digest of the file bytes last read or written.
func (s *Store) Digest() [32]byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshot.Digest
}

// Snapshot returns a copy of the last observed store state.
func (s *Store) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := s.snapshot
	if s.snapshot.LastError != nil {
		snap.LastError = fmt.Errorf("%w", s.snapshot.LastError)
	}
	return snap
}

func (s *Store) load() (map[string]string, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			s.record(nil, nil)
			return map[string]string{}, nil
		}
		err = fmt.Errorf("read store: %w", err)
		s.record(nil, err)
		return nil, err
	}
	values := map[string]string{}
	if err := toml.Unmarshal(data, &values); err != nil {
		err = fmt.Errorf("parse store: %w", err)
		s.record(nil, err)
		return nil, err
	}
	s.record(data, nil)
	return values, nil
}

func (s *Store) write(values map[string]string) error {
	data, err := toml.Marshal(values)
	if err != nil {
		return fmt.Errorf("marshal store: %w", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".store-*.toml")
	if err != nil {
		return fmt.Errorf("create temp store: %w", err)
	}
	tmpName := tmp.Name()
	defer func() { _ = os.Remove(tmpName) }()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write store: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close store: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		return fmt.Errorf("replace store: %w", err)
	}
	s.record(data, nil)
	return nil
}

func (s *Store) record(data []byte, err error) {
	s.snapshot.LastUpdated = time.Now()
	s.snapshot.LastError = err
	if err == nil {
		s.snapshot.Digest = blake3.Sum256(data)
	}
}
