// Package storage holds the blob stores that keep raw upload bytes. Blobs
// are addressed by opaque ids; the virtual directory tree lives in the
// metadata table, not here.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/cfmconsole/cfm/internal/config"
)

var ErrBlobNotFound = errors.New("blob not found")

type Storage interface {
	// Put consumes r and returns the new blob id and the number of bytes
	// actually stored.
	Put(ctx context.Context, r io.Reader) (id string, size int64, err error)
	Open(ctx context.Context, id string) (io.ReadCloser, error)
	Delete(ctx context.Context, id string) error
	Close() error
}

// DirectoryMaker is implemented by stores that mirror the virtual tree on
// disk. EnsureDir must succeed if the directory already exists.
type DirectoryMaker interface {
	EnsureDir(ctx context.Context, fullPath string) error
}

// URLSigner is implemented by stores that can hand out temporary direct
// download links.
type URLSigner interface {
	PresignedURL(ctx context.Context, id string, expiry time.Duration) (string, error)
}

// New builds the blob store selected by BLOB_DRIVER.
func New(ctx context.Context, c *config.Config) (Storage, error) {
	switch c.BlobDriver {
	case "fs", "":
		slog.Info("initializing filesystem storage", "path", c.BlobPath)
		return NewFSStorage(ctx, c.BlobPath)
	case "badger":
		slog.Info("initializing badger storage", "path", c.BlobPath)
		return NewBadgerStorage(BadgerConfig{Path: c.BlobPath})
	case "s3":
		slog.Info("initializing S3 storage",
			"bucket", c.S3Bucket,
			"region", c.S3Region,
			"endpoint", c.S3Endpoint,
		)
		return NewS3Storage(ctx, S3Config{
			Region:    c.S3Region,
			Bucket:    c.S3Bucket,
			AccessKey: c.S3AccessKey,
			SecretKey: c.S3SecretKey,
			Endpoint:  c.S3Endpoint,
			PathStyle: c.S3PathStyle,
		})
	default:
		return nil, fmt.Errorf("unknown blob driver %q", c.BlobDriver)
	}
}

// contextReader stops a copy once ctx is done.
type contextReader struct {
	ctx context.Context
	r   io.Reader
}

func (c contextReader) Read(p []byte) (int, error) {
	if err := c.ctx.Err(); err != nil {
		return 0, err
	}
	return c.r.Read(p)
}

// spool copies r into a temporary file in dir and returns it rewound,
// together with the byte count.
func spool(ctx context.Context, dir string, r io.Reader) (*tempFile, int64, error) {
	f, err := createTemp(dir)
	if err != nil {
		return nil, 0, err
	}

	n, err := io.Copy(f, contextReader{ctx: ctx, r: r})
	if err != nil {
		f.discard()
		return nil, 0, fmt.Errorf("failed to buffer upload: %w", err)
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		f.discard()
		return nil, 0, fmt.Errorf("failed to rewind upload buffer: %w", err)
	}
	return f, n, nil
}
