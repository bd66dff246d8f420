package storage

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
)

// Local stores objects as files below a root directory.
type Local struct {
	root string
}

// tempPrefix marks in-flight writes, which List never returns.
const tempPrefix = ".tmp-"

func NewLocal(root string) (*Local, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolve local storage root %s: %w", root, err)
	}
	return &Local{root: abs}, nil
}

func (l *Local) URI() string {
	return "file://" + filepath.ToSlash(l.root)
}

func (l *Local) path(key string) string {
	return filepath.Join(l.root, filepath.FromSlash(key))
}

func (l *Local) Read(_ context.Context, key string) ([]byte, error) {
	if err := validateKey(key); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(l.path(key))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, key)
		}
		return nil, fmt.Errorf("read %s: %w", key, err)
	}
	return data, nil
}

// Write replaces the file through a temporary sibling so readers never see a
// partial object.
func (l *Local) Write(_ context.Context, key string, data []byte, _ string) error {
	if err := validateKey(key); err != nil {
		return err
	}

	dest := l.path(key)
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return fmt.Errorf("create directory for %s: %w", key, err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(dest), tempPrefix+"*")
	if err != nil {
		return fmt.Errorf("create temp file for %s: %w", key, err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write %s: %w", key, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("finalize %s: %w", key, err)
	}
	if err := os.Rename(tmp.Name(), dest); err != nil {
		return fmt.Errorf("move %s into place: %w", key, err)
	}
	return nil
}

func (l *Local) List(_ context.Context, prefix string) ([]string, error) {
	prefix = dirPrefix(prefix)
	if prefix != "" {
		if err := validateKey(prefix[:len(prefix)-1]); err != nil {
			return nil, err
		}
	}

	entries, err := os.ReadDir(l.path(prefix))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return []string{}, nil
		}
		return nil, fmt.Errorf("list %s: %w", prefix, err)
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || strings.HasPrefix(e.Name(), tempPrefix) {
			continue
		}
		names = append(names, e.Name())
	}
	slices.Sort(names)
	return names, nil
}

func (l *Local) CreateBase(_ context.Context) error {
	if err := os.MkdirAll(l.root, 0o755); err != nil {
		return fmt.Errorf("create local storage root %s: %w", l.root, err)
	}
	return nil
}
