package service

import (
	"context"
	"slices"
	"strings"

	"github.com/cfmconsole/cfm/internal/apperr"
	"github.com/cfmconsole/cfm/internal/model"
	"github.com/cfmconsole/cfm/internal/namespace"
)

// List returns the direct children of path, directories first and then by
// byte-wise name order. Files carry the servers they are shared with.
func (s *FileService) List(ctx context.Context, path string) ([]model.FileView, error) {
	if path == "" {
		path = namespace.Root
	}
	path, err := namespace.NormalizePath(path)
	if err != nil {
		return nil, err
	}

	if err := s.requireDirectory(ctx, s.files, path); err != nil {
		if apperr.KindOf(err) == apperr.KindValidation {
			return nil, apperr.NotFound("directory not found")
		}
		return nil, err
	}

	entries, err := s.files.ListByPath(ctx, path)
	if err != nil {
		return nil, apperr.Storage("failed to list directory", err)
	}

	fileIDs := make([]string, 0, len(entries))
	for _, e := range entries {
		if !e.IsDirectory() {
			fileIDs = append(fileIDs, e.ID)
		}
	}
	sharedWith, err := s.shares.ServersForFiles(ctx, fileIDs)
	if err != nil {
		return nil, apperr.Storage("failed to load shares", err)
	}

	views := make([]model.FileView, 0, len(entries))
	for _, e := range entries {
		views = append(views, toView(e, sharedWith[e.ID]))
	}
	slices.SortFunc(views, compareViews)
	return views, nil
}

func toView(f *model.File, servers []string) model.FileView {
	if servers == nil {
		servers = []string{}
	}
	v := model.FileView{
		ID:         f.ID,
		Name:       f.Name,
		Path:       f.Path,
		Type:       f.Kind.String(),
		UploaderID: f.UploaderID,
		CreatedAt:  f.CreatedAt,
		SharedWith: servers,
		SyncStatus: model.SyncStatusSynced,
	}
	if !f.IsDirectory() {
		size := f.Size
		v.Size = &size
		if len(servers) == 0 {
			v.SyncStatus = model.SyncStatusPending
		}
	}
	return v
}

func compareViews(a, b model.FileView) int {
	aDir := a.Type == model.EntryDirectory.String()
	bDir := b.Type == model.EntryDirectory.String()
	if aDir != bDir {
		if aDir {
			return -1
		}
		return 1
	}
	return strings.Compare(a.Name, b.Name)
}
