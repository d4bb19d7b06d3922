package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"

	badger "github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
)

const blobKeyPrefix = "blob:"

type BadgerConfig struct {
	Path     string
	InMemory bool
}

// BadgerStorage keeps blobs as values in an embedded BadgerDB.
type BadgerStorage struct {
	db *badger.DB
}

func NewBadgerStorage(cfg BadgerConfig) (*BadgerStorage, error) {
	opts := badger.DefaultOptions(cfg.Path).WithLogger(nil)
	if cfg.InMemory {
		opts = badger.DefaultOptions("").WithInMemory(true).WithLogger(nil)
	}

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open badger: %w", err)
	}
	return &BadgerStorage{db: db}, nil
}

func blobKey(id string) []byte {
	return []byte(blobKeyPrefix + id)
}

// Put buffers the whole blob in memory; upload size is bounded upstream.
func (s *BadgerStorage) Put(ctx context.Context, r io.Reader) (string, int64, error) {
	data, err := io.ReadAll(contextReader{ctx: ctx, r: r})
	if err != nil {
		return "", 0, fmt.Errorf("failed to read upload: %w", err)
	}

	id := uuid.NewString()
	err = s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(blobKey(id), data)
	})
	if err != nil {
		return "", 0, fmt.Errorf("failed to store blob: %w", err)
	}
	return id, int64(len(data)), nil
}

func (s *BadgerStorage) Open(ctx context.Context, id string) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var data []byte
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(blobKey(id))
		if err != nil {
			return err
		}
		data, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, ErrBlobNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read blob: %w", err)
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (s *BadgerStorage) Delete(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	return s.db.Update(func(txn *badger.Txn) error {
		if _, err := txn.Get(blobKey(id)); err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return ErrBlobNotFound
			}
			return err
		}
		return txn.Delete(blobKey(id))
	})
}

func (s *BadgerStorage) Close() error {
	return s.db.Close()
}
