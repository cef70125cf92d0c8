package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// LocalStore keeps objects as plain files under a root directory.
type LocalStore struct {
	root string
}

func NewLocalStore(root string) (*LocalStore, error) {
	if root == "" {
		return nil, fmt.Errorf("local store root directory cannot be empty")
	}

	if err := os.MkdirAll(root, 0755); err != nil {
		return nil, fmt.Errorf(
			"failed to create local store root %s: %w",
			root,
			err,
		)
	}

	return &LocalStore{root: root}, nil
}

func (s *LocalStore) Get(_ context.Context, path string) ([]byte, error) {
	data, err := os.ReadFile(s.absPath(path))
	if os.IsNotExist(err) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read object %s: %w", path, err)
	}

	return data, nil
}

func (s *LocalStore) Put(_ context.Context, path string, data []byte) error {
	absPath := s.absPath(path)

	if err := os.MkdirAll(filepath.Dir(absPath), 0755); err != nil {
		return fmt.Errorf(
			"failed to create directory for object %s: %w",
			path,
			err,
		)
	}

	// Write to a temp file in the same directory and rename, so a
	// cancelled or failed write never leaves a half-written object.
	tmp, err := os.CreateTemp(filepath.Dir(absPath), ".put-*")
	if err != nil {
		return fmt.Errorf("failed to stage object %s: %w", path, err)
	}

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())

		return fmt.Errorf("failed to stage object %s: %w", path, err)
	}

	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())

		return fmt.Errorf("failed to stage object %s: %w", path, err)
	}

	if err := os.Rename(tmp.Name(), absPath); err != nil {
		os.Remove(tmp.Name())

		return fmt.Errorf("failed to commit object %s: %w", path, err)
	}

	return nil
}

func (s *LocalStore) Exists(_ context.Context, path string) (bool, error) {
	_, err := os.Stat(s.absPath(path))
	if os.IsNotExist(err) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to stat object %s: %w", path, err)
	}

	return true, nil
}

func (s *LocalStore) List(_ context.Context, prefix string) ([]string, error) {
	dir := s.absPath(prefix)

	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to list objects under %s: %w", prefix, err)
	}

	keyPrefix := CanonicalKey(prefix)

	var paths []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}

		key := entry.Name()
		if keyPrefix != "" {
			key = keyPrefix + "/" + key
		}

		paths = append(paths, key)
	}

	sort.Strings(paths)

	return paths, nil
}

func (s *LocalStore) Delete(_ context.Context, path string) error {
	err := os.Remove(s.absPath(path))
	if os.IsNotExist(err) {
		return fmt.Errorf("%w: %s", ErrNotFound, path)
	}
	if err != nil {
		return fmt.Errorf("failed to delete object %s: %w", path, err)
	}

	return nil
}

func (s *LocalStore) absPath(path string) string {
	key := strings.TrimRight(CanonicalKey(path), "/")

	return filepath.Join(s.root, filepath.FromSlash(key))
}
