// Package filesystem keeps uploaded originals in a local directory.
//
// Objects are written under <root>/<yyyy>/<mm>/<uuid>-<name>. The returned
// reference is the path relative to root, using forward slashes.
package filesystem

import (
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/docqa/internal/core/domain"
	"github.com/custodia-labs/docqa/internal/core/ports/driven"
)

// Ensure Store implements the interface.
var _ driven.ObjectStore = (*Store)(nil)

// Store is a directory-backed object store.
type Store struct {
	root string
	now  func() time.Time
}

// DefaultObjectDir returns ~/.docqa/objects.
func DefaultObjectDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".docqa", "objects"), nil
}

// NewStore creates a store rooted at dir, creating it if needed.
// If dir is empty, defaults to ~/.docqa/objects.
func NewStore(dir string) (*Store, error) {
	if dir == "" {
		d, err := DefaultObjectDir()
		if err != nil {
			return nil, err
		}
		dir = d
	}
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("create object directory: %w", err)
	}
	return &Store{root: dir, now: time.Now}, nil
}

// Put writes content atomically and returns its reference.
func (s *Store) Put(ctx context.Context, content []byte, name string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	base := sanitizeName(name)
	if base == "" {
		return "", fmt.Errorf("%w: object name is required", domain.ErrValidation)
	}

	now := s.now().UTC()
	ref := path.Join(now.Format("2006"), now.Format("01"), uuid.NewString()+"-"+base)
	target := filepath.Join(s.root, filepath.FromSlash(ref))

	if err := os.MkdirAll(filepath.Dir(target), 0700); err != nil {
		return "", fmt.Errorf("create object directory: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(target), ".upload-*")
	if err != nil {
		return "", fmt.Errorf("create temp object: %w", err)
	}
	defer os.Remove(tmp.Name()) // no-op after a successful rename

	if _, err := tmp.Write(content); err != nil {
		tmp.Close()
		return "", fmt.Errorf("write object: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("close object: %w", err)
	}
	if err := os.Rename(tmp.Name(), target); err != nil {
		return "", fmt.Errorf("commit object: %w", err)
	}

	return ref, nil
}

// Get reads an object back by reference.
func (s *Store) Get(_ context.Context, ref string) ([]byte, error) {
	p, err := s.resolve(ref)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(p)
	if os.IsNotExist(err) {
		return nil, fmt.Errorf("%w: object %s", domain.ErrNotFound, ref)
	}
	if err != nil {
		return nil, fmt.Errorf("read object: %w", err)
	}
	return data, nil
}

// Root returns the store directory.
func (s *Store) Root() string {
	return s.root
}

// resolve maps ref to a path, rejecting references that escape root.
func (s *Store) resolve(ref string) (string, error) {
	clean := path.Clean("/" + ref)[1:]
	if clean == "" || clean != ref {
		return "", fmt.Errorf("%w: invalid object reference %q", domain.ErrValidation, ref)
	}
	return filepath.Join(s.root, filepath.FromSlash(clean)), nil
}

// sanitizeName keeps the base name and drops characters that are awkward on
// common filesystems.
func sanitizeName(name string) string {
	base := filepath.Base(strings.ReplaceAll(name, "\\", "/"))
	if base == "." || base == "/" || base == ".." {
		return ""
	}
	return strings.Map(func(r rune) rune {
		switch {
		case r < 0x20, strings.ContainsRune(`<>:"|?*`, r):
			return '_'
		}
		return r
	}, base)
}
