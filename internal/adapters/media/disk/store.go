package disk

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"pet-adoption/internal/ports/media"
)

// MaxImageBytes limita el tamaño de cada imagen guardada.
const MaxImageBytes = 10 << 20

var ErrTooLarge = errors.New("image too large")

// Store guarda imágenes en disco bajo Root y las expone bajo BaseURL.
type Store struct {
	root    string
	baseURL string
}

func New(root, baseURL string) (*Store, error) {
	root = strings.TrimSpace(root)
	if root == "" {
		return nil, errors.New("disk store: root required")
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("disk store: create root: %w", err)
	}
	if !strings.HasSuffix(baseURL, "/") {
		baseURL += "/"
	}
	return &Store{root: root, baseURL: baseURL}, nil
}

// Root es el directorio servido por el router.
func (s *Store) Root() string { return s.root }

func (s *Store) Save(ctx context.Context, dir, name string, r io.Reader) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	dir = filepath.Base(strings.TrimSpace(dir))
	name = filepath.Base(strings.TrimSpace(name))
	if dir == "." || dir == string(filepath.Separator) || name == "." || name == string(filepath.Separator) {
		return "", errors.New("disk store: invalid path")
	}

	full := filepath.Join(s.root, dir)
	if err := os.MkdirAll(full, 0o755); err != nil {
		return "", fmt.Errorf("disk store: mkdir: %w", err)
	}

	f, err := os.CreateTemp(full, ".upload-*")
	if err != nil {
		return "", fmt.Errorf("disk store: create: %w", err)
	}
	tmp := f.Name()

	n, err := io.Copy(f, io.LimitReader(r, MaxImageBytes+1))
	closeErr := f.Close()
	if err == nil && n > MaxImageBytes {
		err = ErrTooLarge
	}
	if err == nil {
		err = closeErr
	}
	if err != nil {
		_ = os.Remove(tmp)
		return "", err
	}

	if err := os.Rename(tmp, filepath.Join(full, name)); err != nil {
		_ = os.Remove(tmp)
		return "", fmt.Errorf("disk store: rename: %w", err)
	}
	return s.baseURL + path.Join(dir, name), nil
}

var _ media.Store = (*Store)(nil)
