// Package filestorage stores uploaded blobs on the local filesystem under generated names.
package filestorage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"product_backend/internal/platform/metrics"
)

var (
	// ErrUnsupportedFileType is returned when the original name carries a disallowed extension.
	ErrUnsupportedFileType = errors.New("unsupported file type")

	// ErrInvalidName is returned when a stored name would escape the storage root.
	ErrInvalidName = errors.New("invalid file name")
)

// AllowedExtensions lists the accepted extensions, lower-cased.
var AllowedExtensions = []string{".jpg", ".jpeg", ".png"}

// LocalStorage writes files into a single directory.
// It is safe for concurrent use: every saved file gets a fresh random name.
type LocalStorage struct {
	root string
}

// NewLocalStorage creates the root directory if needed.
func NewLocalStorage(root string) (*LocalStorage, error) {
	if root == "" {
		return nil, errors.New("storage root is empty")
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolve storage root %s: %w", root, err)
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, fmt.Errorf("mkdir %s: %w", abs, err)
	}
	return &LocalStorage{root: abs}, nil
}

// Root returns the absolute storage directory.
func (s *LocalStorage) Root() string {
	return s.root
}

// Extension returns the lower-cased extension of name if it is allowed.
func Extension(name string) (string, error) {
	ext := strings.ToLower(filepath.Ext(name))
	for _, allowed := range AllowedExtensions {
		if ext == allowed {
			return ext, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnsupportedFileType, ext)
}

// Save validates the extension of originalName, writes r under a generated name and returns it.
// The content goes to a temp file first, so a failed or cancelled write leaves nothing behind.
func (s *LocalStorage) Save(ctx context.Context, originalName string, r io.Reader) (name string, err error) {
	defer func() { metrics.ObserveFile("save", err) }()

	ext, err := Extension(originalName)
	if err != nil {
		return "", err
	}

	tmp, err := os.CreateTemp(s.root, ".upload-*")
	if err != nil {
		return "", fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer func() {
		if err != nil {
			_ = os.Remove(tmpPath)
		}
	}()

	if _, err = io.Copy(tmp, r); err != nil {
		_ = tmp.Close()
		return "", fmt.Errorf("write file: %w", err)
	}
	if err = tmp.Close(); err != nil {
		return "", fmt.Errorf("close file: %w", err)
	}
	if err = ctx.Err(); err != nil {
		return "", err
	}

	name = uuid.NewString() + ext
	if err = os.Rename(tmpPath, filepath.Join(s.root, name)); err != nil {
		return "", fmt.Errorf("rename file: %w", err)
	}

	slog.Debug("file saved", "file", name, "original", originalName)
	return name, nil
}

// Delete removes a stored file. Empty names and missing files are no-ops.
func (s *LocalStorage) Delete(ctx context.Context, name string) (err error) {
	if name == "" {
		return nil
	}
	defer func() { metrics.ObserveFile("delete", err) }()

	path, err := s.path(name)
	if err != nil {
		return err
	}
	if err = os.Remove(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("remove file %s: %w", name, err)
	}

	slog.Debug("file deleted", "file", name)
	return nil
}

// Exists reports whether a stored file is present.
func (s *LocalStorage) Exists(name string) bool {
	path, err := s.path(name)
	if err != nil {
		return false
	}
	_, err = os.Stat(path)
	return err == nil
}

func (s *LocalStorage) path(name string) (string, error) {
	if name == "" || name != filepath.Base(name) || name == "." || name == ".." {
		return "", fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	return filepath.Join(s.root, name), nil
}
