// Package file stores each key as its own JSON file, written atomically through afero.
package file

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"

	"github.com/Apurer/adoptionos/internal/platform/storage/ports"
)

const extension = ".json"

var _ ports.Backend = (*Backend)(nil)

// Backend persists values under a directory of an afero filesystem.
type Backend struct {
	fs  afero.Fs
	dir string
}

// NewBackend creates the directory if needed and returns a backend rooted there.
func NewBackend(fsys afero.Fs, dir string) (*Backend, error) {
	if fsys == nil {
		fsys = afero.NewOsFs()
	}
	if strings.TrimSpace(dir) == "" {
		return nil, errors.New("storage directory is required")
	}
	if err := fsys.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("%w: create %s: %w", ports.ErrUnavailable, dir, err)
	}
	return &Backend{fs: fsys, dir: dir}, nil
}

func (b *Backend) Get(_ context.Context, key string) (string, bool, error) {
	data, err := afero.ReadFile(b.fs, b.path(key))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) || errors.Is(err, os.ErrNotExist) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("read %s: %w", key, err)
	}
	return string(data), true, nil
}

func (b *Backend) Set(_ context.Context, key, value string) error {
	return writeFileAtomic(b.fs, b.path(key), []byte(value))
}

func (b *Backend) Delete(_ context.Context, key string) error {
	err := b.fs.Remove(b.path(key))
	if err != nil && !errors.Is(err, fs.ErrNotExist) && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove %s: %w", key, err)
	}
	return nil
}

func (b *Backend) Clear(_ context.Context, prefix string) error {
	entries, err := afero.ReadDir(b.fs, b.dir)
	if err != nil {
		return fmt.Errorf("list %s: %w", b.dir, err)
	}
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, extension) {
			continue
		}
		key, err := url.PathUnescape(strings.TrimSuffix(name, extension))
		if err != nil || !strings.HasPrefix(key, prefix) {
			continue
		}
		if err := b.fs.Remove(filepath.Join(b.dir, name)); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("remove %s: %w", key, err)
		}
	}
	return nil
}

func (b *Backend) path(key string) string {
	return filepath.Join(b.dir, url.PathEscape(key)+extension)
}

// writeFileAtomic writes to a temp file in the same directory and renames it over path, so a
// reader sees either the previous value or the new one.
func writeFileAtomic(fsys afero.Fs, path string, data []byte) error {
	dir := filepath.Dir(path)
	tmp, err := afero.TempFile(fsys, dir, ".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer func() {
		_ = fsys.Remove(tmpPath)
	}()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := fsys.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("rename temp file to %s: %w", path, err)
	}
	return nil
}
