package storage

import (
	"fmt"
	"os"
)

type tempFile struct {
	*os.File
}

func createTemp(dir string) (*tempFile, error) {
	f, err := os.CreateTemp(dir, "upload-*.part")
	if err != nil {
		return nil, fmt.Errorf("failed to create temp file: %w", err)
	}
	return &tempFile{File: f}, nil
}

// discard closes and removes the file. Errors are ignored.
func (t *tempFile) discard() {
	_ = t.Close()
	_ = os.Remove(t.Name())
}
