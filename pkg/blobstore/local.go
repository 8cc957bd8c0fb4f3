package blobstore

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// LocalStore writes blobs into a single directory. References are the
// relative file paths, e.g. "resumes/<uuid>.pdf".
type LocalStore struct {
	dir string
}

func NewLocalStore(dir string) (*LocalStore, error) {
	if dir == "" {
		return nil, errors.New("blobstore: empty directory")
	}
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("blobstore: create %s: %w", dir, err)
	}
	return &LocalStore{dir: filepath.Clean(dir)}, nil
}

func (s *LocalStore) Put(ctx context.Context, data []byte, ext string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	ref := filepath.Join(s.dir, newName(ext))
	// O_EXCL so a name collision fails instead of overwriting
	f, err := os.OpenFile(ref, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o640)
	if err != nil {
		return "", fmt.Errorf("blobstore: create: %w", err)
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		os.Remove(ref)
		return "", fmt.Errorf("blobstore: write: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(ref)
		return "", fmt.Errorf("blobstore: close: %w", err)
	}
	return filepath.ToSlash(ref), nil
}

func (s *LocalStore) Get(ctx context.Context, ref string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	path, err := s.resolve(ref)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("blobstore: read: %w", err)
	}
	return data, nil
}

func (s *LocalStore) Delete(ctx context.Context, ref string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	path, err := s.resolve(ref)
	if err != nil {
		return err
	}
	err = os.Remove(path)
	if errors.Is(err, fs.ErrNotExist) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("blobstore: remove: %w", err)
	}
	return nil
}

// resolve maps a reference to a path and refuses anything outside the store.
func (s *LocalStore) resolve(ref string) (string, error) {
	if strings.TrimSpace(ref) == "" {
		return "", ErrInvalidReference
	}
	path := filepath.Clean(filepath.FromSlash(ref))
	if filepath.Dir(path) != s.dir {
		return "", ErrInvalidReference
	}
	return path, nil
}
