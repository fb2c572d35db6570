// Package jsonstore provides a JSON file-based implementation of CacheStore.
package jsonstore

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/runoshun/git-epic/internal/domain"
)

// Store implements domain.CacheStore with one JSON document per owner/repo
// under a state directory.
//
// Store does no locking. Concurrent writers on the same cache race and the
// last Save wins.
type Store struct {
	stateDir string
}

// New creates a new Store rooted at stateDir.
// Directories are created on first write.
func New(stateDir string) *Store {
	return &Store{stateDir: stateDir}
}

// Path returns the cache file path for owner/repo.
func (s *Store) Path(owner, repo string) (string, error) {
	if err := domain.ValidateRepoRef(owner, repo); err != nil {
		return "", err
	}
	return domain.CachePath(s.stateDir, owner, repo), nil
}

// Load reads the cache for owner/repo. A missing file yields an empty cache.
func (s *Store) Load(owner, repo string) (*domain.Cache, error) {
	path, err := s.Path(owner, repo)
	if err != nil {
		return nil, err
	}

	content, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return domain.NewCache(owner + "/" + repo), nil
		}
		return nil, fmt.Errorf("read cache file: %w", err)
	}

	cache, err := decode(content)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", domain.ErrCorruptCache, path, err)
	}
	if cache.Repository == "" {
		cache.Repository = owner + "/" + repo
	}
	return cache, nil
}

// Save writes the cache for owner/repo atomically with owner-only permissions.
func (s *Store) Save(owner, repo string, cache *domain.Cache) error {
	path, err := s.Path(owner, repo)
	if err != nil {
		return err
	}
	if cache.Version == 0 {
		cache.Version = domain.CacheVersion
	}

	content, err := json.MarshalIndent(cache, "", "  ")
	if err != nil {
		return fmt.Errorf("%w: marshal cache: %v", domain.ErrIO, err)
	}

	if err := writeAtomic(path, content); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrIO, err)
	}
	return nil
}

func decode(content []byte) (*domain.Cache, error) {
	dec := json.NewDecoder(bytes.NewReader(content))
	dec.DisallowUnknownFields()

	var cache domain.Cache
	if err := dec.Decode(&cache); err != nil {
		return nil, err
	}
	if dec.More() {
		return nil, errors.New("trailing data after cache document")
	}
	if cache.Version > domain.CacheVersion {
		return nil, fmt.Errorf("unsupported cache version %d", cache.Version)
	}
	if err := cache.Validate(); err != nil {
		return nil, err
	}

	// Ensure slices are non-nil so the document round-trips as []
	if cache.Epics == nil {
		cache.Epics = []domain.Epic{}
	}
	for i := range cache.Epics {
		if cache.Epics[i].SubIssues == nil {
			cache.Epics[i].SubIssues = []domain.SubIssue{}
		}
		if cache.Epics[i].Journey == nil {
			cache.Epics[i].Journey = []domain.JourneyEntry{}
		}
	}
	cache.ReindexIssues()
	return &cache, nil
}

// writeAtomic writes content to a temp file in the target directory,
// syncs it and renames it over path.
func writeAtomic(path string, content []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("create cache directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	cleanup := func() {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
	}

	if err := tmp.Chmod(0o600); err != nil {
		cleanup()
		return fmt.Errorf("chmod temp file: %w", err)
	}
	if _, err := tmp.Write(content); err != nil {
		cleanup()
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		cleanup()
		return fmt.Errorf("sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("close temp file: %w", err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath) // Clean up
		return fmt.Errorf("rename temp file: %w", err)
	}
	return nil
}

// Ensure Store implements CacheStore.
var _ domain.CacheStore = (*Store)(nil)
