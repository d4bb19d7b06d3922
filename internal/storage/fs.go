package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// FSStorage keeps blobs as files under <base>/blobs and mirrors created
// directories under <base>/tree.
type FSStorage struct {
	blobDir string
	treeDir string
}

func NewFSStorage(ctx context.Context, basePath string) (*FSStorage, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s := &FSStorage{
		blobDir: filepath.Join(basePath, "blobs"),
		treeDir: filepath.Join(basePath, "tree"),
	}
	for _, dir := range []string{s.blobDir, s.treeDir} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create storage directory: %w", err)
		}
	}
	return s, nil
}

func (s *FSStorage) blobPath(id string) string {
	return filepath.Join(s.blobDir, id[:2], id)
}

func (s *FSStorage) Put(ctx context.Context, r io.Reader) (string, int64, error) {
	tmp, n, err := spool(ctx, s.blobDir, r)
	if err != nil {
		return "", 0, err
	}

	if err := tmp.Sync(); err != nil {
		tmp.discard()
		return "", 0, fmt.Errorf("failed to sync blob: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		return "", 0, fmt.Errorf("failed to close blob: %w", err)
	}

	id := uuid.NewString()
	dst := s.blobPath(id)
	if err := os.MkdirAll(filepath.Dir(dst), 0755); err != nil {
		_ = os.Remove(tmp.Name())
		return "", 0, fmt.Errorf("failed to create blob directory: %w", err)
	}
	if err := os.Rename(tmp.Name(), dst); err != nil {
		_ = os.Remove(tmp.Name())
		return "", 0, fmt.Errorf("failed to commit blob: %w", err)
	}
	return id, n, nil
}

func (s *FSStorage) Open(ctx context.Context, id string) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if !validBlobID(id) {
		return nil, ErrBlobNotFound
	}

	f, err := os.Open(s.blobPath(id))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ErrBlobNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open blob: %w", err)
	}
	return f, nil
}

func (s *FSStorage) Delete(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if !validBlobID(id) {
		return ErrBlobNotFound
	}

	err := os.Remove(s.blobPath(id))
	if errors.Is(err, fs.ErrNotExist) {
		return ErrBlobNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to delete blob: %w", err)
	}
	return nil
}

// EnsureDir creates the on-disk counterpart of a virtual directory.
// fullPath must already be normalized.
func (s *FSStorage) EnsureDir(ctx context.Context, fullPath string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	target := filepath.Join(s.treeDir, filepath.FromSlash(fullPath))
	if target != s.treeDir && !strings.HasPrefix(target, s.treeDir+string(filepath.Separator)) {
		return fmt.Errorf("directory %q escapes storage root", fullPath)
	}
	if err := os.MkdirAll(target, 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}
	return nil
}

func (s *FSStorage) Close() error {
	return nil
}

func validBlobID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil && len(id) == 36
}
