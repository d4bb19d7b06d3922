// Package namespace implements the virtual directory tree rules: path
// normalization, leaf name validation and the size-sentinel encoding that
// distinguishes directories from files in the metadata table.
package namespace

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/cfmconsole/cfm/internal/apperr"
	"github.com/cfmconsole/cfm/internal/model"
)

const (
	Root = "/"

	// DirectorySize is the persisted size of a directory row.
	DirectorySize int64 = -1

	MaxNameLength = 255
)

// NormalizePath returns the canonical form of path: leading slash, no
// redundant or trailing slashes, no "." segments. Paths without a leading
// slash are resolved against the root. ".." segments and blank input are
// rejected.
func NormalizePath(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return "", apperr.New(apperr.KindInvalidPath, "path is empty")
	}
	if strings.ContainsRune(path, '\\') {
		return "", apperr.New(apperr.KindInvalidPath, "path contains a backslash")
	}

	segments := make([]string, 0, strings.Count(path, "/")+1)
	for _, seg := range strings.Split(path, "/") {
		switch seg {
		case "", ".":
			continue
		case "..":
			return "", apperr.New(apperr.KindInvalidPath, "path must not contain '..'")
		}
		if hasControl(seg) {
			return "", apperr.New(apperr.KindInvalidPath, "path contains control characters")
		}
		segments = append(segments, seg)
	}

	if len(segments) == 0 {
		return Root, nil
	}
	return "/" + strings.Join(segments, "/"), nil
}

// ValidateName checks a single leaf name. The same rules apply to uploaded
// files and created directories.
func ValidateName(name string) error {
	switch {
	case name == "":
		return apperr.New(apperr.KindInvalidName, "name is required")
	case utf8.RuneCountInString(name) > MaxNameLength:
		return apperr.New(apperr.KindInvalidName, "name must be at most 255 characters")
	case strings.ContainsAny(name, `/\`):
		return apperr.New(apperr.KindInvalidName, "name must not contain path separators")
	case strings.HasPrefix(name, "."):
		return apperr.New(apperr.KindInvalidName, "name must not start with '.'")
	case hasControl(name):
		return apperr.New(apperr.KindInvalidName, "name contains control characters")
	}
	return nil
}

// Classify decodes the persisted size column.
func Classify(size int64) model.EntryKind {
	if size == DirectorySize {
		return model.EntryDirectory
	}
	return model.EntryFile
}

// EncodeSize is the inverse of Classify.
func EncodeSize(kind model.EntryKind, size int64) int64 {
	if kind == model.EntryDirectory {
		return DirectorySize
	}
	return size
}

// JoinPath returns the normalized full path of name inside parent.
func JoinPath(parent, name string) (string, error) {
	if err := ValidateName(name); err != nil {
		return "", err
	}
	p, err := NormalizePath(parent)
	if err != nil {
		return "", err
	}
	if p == Root {
		return Root + name, nil
	}
	return p + "/" + name, nil
}

// Split breaks a full path into its parent path and leaf name. The root has
// no parent and yields ok == false.
func Split(fullPath string) (parent, name string, ok bool, err error) {
	p, err := NormalizePath(fullPath)
	if err != nil {
		return "", "", false, err
	}
	if p == Root {
		return "", "", false, nil
	}
	i := strings.LastIndexByte(p, '/')
	parent = p[:i]
	if parent == "" {
		parent = Root
	}
	return parent, p[i+1:], true, nil
}

func hasControl(s string) bool {
	for _, r := range s {
		if unicode.IsControl(r) {
			return true
		}
	}
	return false
}
