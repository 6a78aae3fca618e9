package media

import (
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// Store persists uploaded blobs and resolves stored references to URLs
// a dashboard can fetch. References are relative paths like
// "employees/3f2a….jpg"; entities persist the reference, never the URL.
//
//go:generate mockgen -source=media.go -destination=mock/media_mock.go -package=mock
type Store interface {
	Save(ctx context.Context, subdir, filename string, r io.Reader) (string, error)
	Remove(ctx context.Context, ref string) error
	URL(ref string) string
}

type diskStore struct {
	root    string
	baseURL string
}

// NewDiskStore stores blobs under root and serves them below baseURL
// (typically "/media").
func NewDiskStore(root, baseURL string) Store {
	return &diskStore{root: root, baseURL: strings.TrimRight(baseURL, "/")}
}

func (s *diskStore) Save(ctx context.Context, subdir, filename string, r io.Reader) (string, error) {
	ext := filepath.Ext(filename)
	ref := path.Join(subdir, uuid.NewString()+ext)

	dst := filepath.Join(s.root, filepath.FromSlash(ref))
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return "", fmt.Errorf("create media dir: %w", err)
	}

	f, err := os.Create(dst)
	if err != nil {
		return "", fmt.Errorf("create media file: %w", err)
	}
	defer f.Close()

	if _, err := io.Copy(f, r); err != nil {
		os.Remove(dst)
		return "", fmt.Errorf("write media file: %w", err)
	}
	return ref, nil
}

func (s *diskStore) Remove(ctx context.Context, ref string) error {
	if ref == "" {
		return nil
	}
	err := os.Remove(filepath.Join(s.root, filepath.FromSlash(ref)))
	if os.IsNotExist(err) {
		return nil
	}
	return err
}

func (s *diskStore) URL(ref string) string {
	if ref == "" {
		return ""
	}
	return s.baseURL + "/" + ref
}
