package archive

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/jadaunkg/horizon/internal/core"
)

// Local stores artifacts under a base directory on the local filesystem
type Local struct {
	base string
}

// NewLocal creates a local store rooted at base, creating it if missing
func NewLocal(base string) (*Local, error) {
	if base == "" {
		return nil, core.WrapError(core.ErrConfigMissing,
			fmt.Errorf("localfs storage needs a path"))
	}
	if err := os.MkdirAll(base, 0o755); err != nil {
		return nil, core.WrapError(core.ErrStorageFailed,
			fmt.Errorf("creating base path: %w", err))
	}
	return &Local{base: base}, nil
}

func (l *Local) full(path string) string {
	return filepath.Join(l.base, filepath.FromSlash(path))
}

func (l *Local) Write(_ context.Context, path string, data []byte) error {
	full := l.full(path)
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return core.WrapError(core.ErrStorageFailed,
			fmt.Errorf("creating directories: %w", err))
	}
	if err := os.WriteFile(full, data, 0o644); err != nil {
		return core.WrapError(core.ErrStorageFailed, err)
	}
	return nil
}

func (l *Local) Read(_ context.Context, path string) ([]byte, error) {
	data, err := os.ReadFile(l.full(path))
	if err != nil {
		return nil, core.WrapError(core.ErrStorageFailed, err)
	}
	return data, nil
}

func (l *Local) List(_ context.Context, prefix string) ([]string, error) {
	var paths []string
	err := filepath.WalkDir(l.full(prefix), func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			rel, relErr := filepath.Rel(l.base, path)
			if relErr != nil {
				return relErr
			}
			paths = append(paths, filepath.ToSlash(rel))
		}
		return nil
	})
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, core.WrapError(core.ErrStorageFailed, err)
	}
	return paths, nil
}

func (l *Local) Delete(_ context.Context, path string) error {
	if err := os.Remove(l.full(path)); err != nil {
		return core.WrapError(core.ErrStorageFailed, err)
	}
	return nil
}

func (l *Local) Exists(_ context.Context, path string) (bool, error) {
	_, err := os.Stat(l.full(path))
	if os.IsNotExist(err) {
		return false, nil
	}
	if err != nil {
		return false, core.WrapError(core.ErrStorageFailed, err)
	}
	return true, nil
}
