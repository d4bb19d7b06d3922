package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/cfmconsole/cfm/internal/apperr"
	"github.com/cfmconsole/cfm/internal/model"
	"github.com/cfmconsole/cfm/internal/namespace"
	"github.com/cfmconsole/cfm/internal/repository"
	"github.com/cfmconsole/cfm/internal/storage"
	"github.com/cfmconsole/cfm/internal/validation"
)

type FileService struct {
	files         repository.FileRepository
	shares        repository.ShareRepository
	blobs         storage.Storage
	maxUploadSize int64
	now           func() time.Time
}

func NewFileService(
	files repository.FileRepository,
	shares repository.ShareRepository,
	blobs storage.Storage,
	maxUploadSize int64,
) *FileService {
	return &FileService{
		files:         files,
		shares:        shares,
		blobs:         blobs,
		maxUploadSize: maxUploadSize,
		now:           func() time.Time { return time.Now().UTC() },
	}
}

// UploadItem is one file of a multi-file upload. DeclaredSize is the size
// announced by the client and is only used for the size limit; a negative
// value means unknown.
type UploadItem struct {
	Name         string
	DeclaredSize int64
	Body         io.Reader
}

type UploadRequest struct {
	Path       string
	UploaderID string
	Items      []UploadItem
}

type CreatedEntry struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	FullPath string `json:"path"`
}

type UploadFailure struct {
	Name    string      `json:"name"`
	Kind    apperr.Kind `json:"kind"`
	Message string      `json:"message"`
	Err     error       `json:"-"`
}

type UploadResult struct {
	Created  []CreatedEntry
	Failures []UploadFailure
}

// Upload stores each item under the destination directory. Request-level
// problems are returned as an error before anything is written; per-item
// problems are collected in the result and do not affect other items.
func (s *FileService) Upload(ctx context.Context, req UploadRequest) (*UploadResult, error) {
	if req.UploaderID == "" {
		return nil, apperr.Validation("uploader id is required")
	}
	if len(req.Items) == 0 {
		return nil, apperr.Validation("no files provided")
	}

	dest := req.Path
	if dest == "" {
		dest = namespace.Root
	}
	dest, err := namespace.NormalizePath(dest)
	if err != nil {
		return nil, err
	}
	if err := s.requireDirectory(ctx, s.files, dest); err != nil {
		return nil, err
	}

	result := &UploadResult{
		Created:  []CreatedEntry{},
		Failures: []UploadFailure{},
	}
	for _, item := range req.Items {
		created, err := s.uploadOne(ctx, dest, req.UploaderID, item)
		if err != nil {
			result.Failures = append(result.Failures, UploadFailure{
				Name:    item.Name,
				Kind:    apperr.KindOf(err),
				Message: apperr.Message(err),
				Err:     err,
			})
			continue
		}
		result.Created = append(result.Created, CreatedEntry{
			ID:       created.ID,
			Name:     created.Name,
			FullPath: created.FullPath(),
		})
	}
	return result, nil
}

func (s *FileService) uploadOne(ctx context.Context, dest, uploaderID string, item UploadItem) (*model.File, error) {
	if err := namespace.ValidateName(item.Name); err != nil {
		return nil, err
	}
	if err := validation.ValidateUploadSize(item.DeclaredSize, s.maxUploadSize); err != nil {
		return nil, err
	}

	_, err := s.files.ByPathName(ctx, dest, item.Name)
	switch {
	case err == nil:
		return nil, apperr.Conflict("an entry with this name already exists")
	case !errors.Is(err, repository.ErrFileNotFound):
		return nil, apperr.Storage("failed to check for existing entry", err)
	}

	blobID, size, err := s.blobs.Put(ctx, item.Body)
	if err != nil {
		slog.Error("failed to store blob", "error", err, "path", dest, "name", item.Name)
		return nil, apperr.Storage("failed to store file contents", err)
	}

	file := &model.File{
		ID:         uuid.NewString(),
		Name:       item.Name,
		Path:       dest,
		Kind:       model.EntryFile,
		Size:       size,
		BlobID:     blobID,
		UploaderID: uploaderID,
		CreatedAt:  s.now(),
	}
	if err := s.files.Create(ctx, file); err != nil {
		// The blob stays behind; orphans are not collected.
		slog.Warn("upload not recorded, blob orphaned", "error", err, "blob_id", blobID, "path", dest, "name", item.Name)
		if errors.Is(err, repository.ErrDuplicateFile) {
			return nil, apperr.Conflict("an entry with this name already exists")
		}
		return nil, apperr.Storage("failed to record file", err)
	}

	slog.Info("file uploaded", "file_id", file.ID, "path", file.FullPath(), "size", size, "uploader_id", uploaderID)
	return file, nil
}

// CreateDirectory adds an empty directory named name under parent.
func (s *FileService) CreateDirectory(ctx context.Context, parent, name, creatorID string) (*model.File, error) {
	if creatorID == "" {
		return nil, apperr.Validation("creator id is required")
	}
	if err := namespace.ValidateName(name); err != nil {
		return nil, err
	}
	if parent == "" {
		parent = namespace.Root
	}
	parent, err := namespace.NormalizePath(parent)
	if err != nil {
		return nil, err
	}
	fullPath, err := namespace.JoinPath(parent, name)
	if err != nil {
		return nil, err
	}

	if err := s.requireDirectory(ctx, s.files, parent); err != nil {
		return nil, err
	}

	if maker, ok := s.blobs.(storage.DirectoryMaker); ok {
		if err := maker.EnsureDir(ctx, fullPath); err != nil {
			return nil, apperr.Storage("failed to create directory on disk", err)
		}
	}

	dir := &model.File{
		ID:         uuid.NewString(),
		Name:       name,
		Path:       parent,
		Kind:       model.EntryDirectory,
		UploaderID: creatorID,
		CreatedAt:  s.now(),
	}
	err = s.files.InTx(ctx, func(ctx context.Context, files repository.FileRepository) error {
		_, err := files.ByPathName(ctx, parent, name)
		switch {
		case err == nil:
			return apperr.Conflict("an entry with this name already exists")
		case !errors.Is(err, repository.ErrFileNotFound):
			return apperr.Storage("failed to check for existing entry", err)
		}

		if err := files.Create(ctx, dir); err != nil {
			if errors.Is(err, repository.ErrDuplicateFile) {
				return apperr.Conflict("an entry with this name already exists")
			}
			return apperr.Storage("failed to record directory", err)
		}
		return nil
	})
	if err != nil {
		return nil, asStorage(err, "failed to record directory")
	}

	slog.Info("directory created", "file_id", dir.ID, "path", fullPath, "creator_id", creatorID)
	return dir, nil
}

// ByID returns a single entry.
func (s *FileService) ByID(ctx context.Context, id string) (*model.File, error) {
	if id == "" {
		return nil, apperr.Validation("file id is required")
	}
	file, err := s.files.ByID(ctx, id)
	if errors.Is(err, repository.ErrFileNotFound) {
		return nil, apperr.NotFound("file not found")
	}
	if err != nil {
		return nil, apperr.Storage("failed to load file", err)
	}
	return file, nil
}

// Open returns the file record and a reader over its contents. The caller
// closes the reader.
func (s *FileService) Open(ctx context.Context, id string) (*model.File, io.ReadCloser, error) {
	file, err := s.ByID(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	if file.IsDirectory() {
		return nil, nil, apperr.Validation("directories cannot be downloaded")
	}

	rc, err := s.blobs.Open(ctx, file.BlobID)
	if err != nil {
		return nil, nil, apperr.Storage("failed to read file contents", err)
	}
	return file, rc, nil
}

// SignedURL returns a temporary direct download link when the blob store
// supports it. ok is false otherwise.
func (s *FileService) SignedURL(ctx context.Context, file *model.File, expiry time.Duration) (url string, ok bool, err error) {
	signer, ok := s.blobs.(storage.URLSigner)
	if !ok || file.IsDirectory() {
		return "", false, nil
	}
	url, err = signer.PresignedURL(ctx, file.BlobID, expiry)
	if err != nil {
		return "", false, apperr.Storage("failed to sign download url", err)
	}
	return url, true, nil
}

// requireDirectory fails unless path is the root or an existing directory.
func (s *FileService) requireDirectory(ctx context.Context, files repository.FileRepository, path string) error {
	if path == namespace.Root {
		return nil
	}
	parent, name, _, err := namespace.Split(path)
	if err != nil {
		return err
	}

	entry, err := files.ByPathName(ctx, parent, name)
	if errors.Is(err, repository.ErrFileNotFound) {
		return apperr.Validation("destination directory does not exist")
	}
	if err != nil {
		return apperr.Storage("failed to resolve destination", err)
	}
	if !entry.IsDirectory() {
		return apperr.Validation("destination is not a directory")
	}
	return nil
}

// asStorage keeps classified errors and wraps the rest.
func asStorage(err error, message string) error {
	var e *apperr.Error
	if errors.As(err, &e) {
		return err
	}
	return apperr.Storage(message, err)
}
