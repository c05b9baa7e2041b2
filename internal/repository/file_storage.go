package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"
)

const storeFile = "store.json"

type fileEntry struct {
	Value     []byte     `json:"value"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
}

type fileStorage struct {
	mu   sync.Mutex
	path string
	now  func() time.Time
}

// NewFileStorage keeps every key in a single JSON document under dir. It is
// meant for the CLI and single-process deployments.
func NewFileStorage(dir string) (Storage, error) {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("create storage dir: %w", err)
	}
	return &fileStorage{path: filepath.Join(dir, storeFile), now: time.Now}, nil
}

func (s *fileStorage) Get(ctx context.Context, key string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := s.read()
	if err != nil {
		return nil, err
	}
	e, ok := entries[key]
	if !ok || s.expired(e) {
		return nil, ErrNotFound
	}
	return e.Value, nil
}

func (s *fileStorage) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := s.read()
	if err != nil {
		return err
	}
	e := fileEntry{Value: value}
	if ttl > 0 {
		at := s.now().Add(ttl)
		e.ExpiresAt = &at
	}
	entries[key] = e
	return s.write(entries)
}

func (s *fileStorage) Delete(ctx context.Context, keys ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := s.read()
	if err != nil {
		return err
	}
	changed := false
	for _, k := range keys {
		if _, ok := entries[k]; ok {
			delete(entries, k)
			changed = true
		}
	}
	if !changed {
		return nil
	}
	return s.write(entries)
}

func (s *fileStorage) Keys(ctx context.Context, prefix string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := s.read()
	if err != nil {
		return nil, err
	}
	var keys []string
	for k, e := range entries {
		if strings.HasPrefix(k, prefix) && !s.expired(e) {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	return keys, nil
}

// Purge rewrites the store without expired entries.
func (s *fileStorage) Purge(ctx context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := s.read()
	if err != nil {
		return 0, err
	}
	var n int64
	for _, e := range entries {
		if s.expired(e) {
			n++
		}
	}
	if n == 0 {
		return 0, nil
	}
	return n, s.write(entries)
}

func (s *fileStorage) Close() error {
	return nil
}

func (s *fileStorage) expired(e fileEntry) bool {
	return e.ExpiresAt != nil && !s.now().Before(*e.ExpiresAt)
}

func (s *fileStorage) read() (map[string]fileEntry, error) {
	entries := map[string]fileEntry{}
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return entries, nil
	}
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return entries, nil
	}
	if err := json.Unmarshal(data, &entries); err != nil {
		// A damaged store is treated as empty; the next write replaces it.
		slog.Warn("storage file is unreadable, starting empty", "path", s.path, "error", err)
		return map[string]fileEntry{}, nil
	}
	return entries, nil
}

func (s *fileStorage) write(entries map[string]fileEntry) error {
	for k, e := range entries {
		if s.expired(e) {
			delete(entries, k)
		}
	}
	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return err
	}
	tmp, err := os.CreateTemp(filepath.Dir(s.path), storeFile+".*")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	if err := os.Chmod(tmp.Name(), 0o600); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), s.path)
}
