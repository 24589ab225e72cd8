// Package prefs stores small user preferences, such as the selected voice,
// with an optional expiry.
package prefs

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"gopkg.in/yaml.v3"
)

type entry struct {
	Value   string    `yaml:"value"`
	Expires time.Time `yaml:"expires,omitempty"`
}

func (e entry) expired(now time.Time) bool {
	return !e.Expires.IsZero() && !now.Before(e.Expires)
}

func newEntry(value string, ttl time.Duration, now time.Time) entry {
	e := entry{Value: value}
	if ttl > 0 {
		e.Expires = now.Add(ttl)
	}
	return e
}

// MemoryStore keeps preferences for the lifetime of the process.
type MemoryStore struct {
	mu     sync.Mutex
	values map[string]entry
	now    func() time.Time
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{values: make(map[string]entry), now: time.Now}
}

// Get returns the value stored under key unless it has expired.
func (s *MemoryStore) Get(key string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.values[key]
	if !ok {
		return "", false
	}
	if e.expired(s.now()) {
		delete(s.values, key)
		return "", false
	}
	return e.Value, true
}

// Set stores value under key. A positive ttl makes it expire.
func (s *MemoryStore) Set(key, value string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.values[key] = newEntry(value, ttl, s.now())
	return nil
}

// fileFormat is the on-disk layout of a FileStore.
type fileFormat struct {
	Preferences map[string]entry `yaml:"preferences"`
}

// FileStore keeps preferences in a YAML file. Every Set rewrites the file.
type FileStore struct {
	mu     sync.Mutex
	path   string
	values map[string]entry
	now    func() time.Time
}

// Open loads the preference file at path. A missing file is an empty store.
func Open(path string) (*FileStore, error) {
	s := &FileStore{path: path, values: make(map[string]entry), now: time.Now}

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read preferences: %w", err)
	}

	var f fileFormat
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse preferences %s: %w", path, err)
	}
	for k, v := range f.Preferences {
		s.values[k] = v
	}
	return s, nil
}

// Path returns the file backing the store.
func (s *FileStore) Path() string {
	return s.path
}

// Get returns the value stored under key unless it has expired.
func (s *FileStore) Get(key string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.values[key]
	if !ok || e.expired(s.now()) {
		return "", false
	}
	return e.Value, true
}

// Set stores value under key and saves the file. A positive ttl makes the
// value expire.
func (s *FileStore) Set(key, value string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.values[key] = newEntry(value, ttl, s.now())
	return s.saveLocked()
}

// Delete removes key and saves the file.
func (s *FileStore) Delete(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.values[key]; !ok {
		return nil
	}
	delete(s.values, key)
	return s.saveLocked()
}

func (s *FileStore) saveLocked() error {
	now := s.now()
	f := fileFormat{Preferences: make(map[string]entry, len(s.values))}
	for k, v := range s.values {
		if !v.expired(now) {
			f.Preferences[k] = v
		}
	}

	data, err := yaml.Marshal(f)
	if err != nil {
		return fmt.Errorf("encode preferences: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return fmt.Errorf("create preferences dir: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("write preferences: %w", err)
	}
	return os.Rename(tmp, s.path)
}
