package model

import (
	"time"
)

// EntryKind discriminates files from directories. The database encodes it
// through the size column (-1 for directories); see namespace.Classify.
type EntryKind int

const (
	EntryFile EntryKind = iota
	EntryDirectory
)

func (k EntryKind) String() string {
	if k == EntryDirectory {
		return "directory"
	}
	return "file"
}

type File struct {
	ID         string
	Name       string
	Path       string // virtual parent directory, "/" for root
	Kind       EntryKind
	Size       int64  // byte length, always 0 for directories
	BlobID     string // empty for directories
	UploaderID string
	CreatedAt  time.Time
}

func (f *File) IsDirectory() bool {
	return f.Kind == EntryDirectory
}

// FullPath returns the location the record occupies in the namespace.
func (f *File) FullPath() string {
	if f.Path == "/" {
		return "/" + f.Name
	}
	return f.Path + "/" + f.Name
}
