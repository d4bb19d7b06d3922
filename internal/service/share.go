package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/cfmconsole/cfm/internal/apperr"
	"github.com/cfmconsole/cfm/internal/model"
	"github.com/cfmconsole/cfm/internal/repository"
)

type ShareService struct {
	files   repository.FileRepository
	servers repository.ServerRepository
	shares  repository.ShareRepository
	now     func() time.Time
}

func NewShareService(
	files repository.FileRepository,
	servers repository.ServerRepository,
	shares repository.ShareRepository,
) *ShareService {
	return &ShareService{
		files:   files,
		servers: servers,
		shares:  shares,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// Share records that fileID is distributed to serverID. Sharing an already
// shared pair succeeds and returns the existing association with
// created == false.
func (s *ShareService) Share(ctx context.Context, fileID, serverID, authorizerID string) (share *model.Share, created bool, err error) {
	switch {
	case fileID == "":
		return nil, false, apperr.Validation("file id is required")
	case serverID == "":
		return nil, false, apperr.Validation("server id is required")
	case authorizerID == "":
		return nil, false, apperr.Validation("authorizer id is required")
	}

	file, err := s.files.ByID(ctx, fileID)
	if errors.Is(err, repository.ErrFileNotFound) {
		return nil, false, apperr.NotFound("file not found")
	}
	if err != nil {
		return nil, false, apperr.Storage("failed to load file", err)
	}
	if file.IsDirectory() {
		return nil, false, apperr.Validation("only files can be shared")
	}

	if _, err := s.servers.ByID(ctx, serverID); err != nil {
		if errors.Is(err, repository.ErrServerNotFound) {
			return nil, false, apperr.NotFound("server not found")
		}
		return nil, false, apperr.Storage("failed to load server", err)
	}

	existing, err := s.shares.ByFileServer(ctx, fileID, serverID)
	if err == nil {
		return existing, false, nil
	}
	if !errors.Is(err, repository.ErrShareNotFound) {
		return nil, false, apperr.Storage("failed to load share", err)
	}

	share = &model.Share{
		ID:           uuid.NewString(),
		FileID:       fileID,
		ServerID:     serverID,
		AuthorizerID: authorizerID,
		CreatedAt:    s.now(),
	}
	if err := s.shares.Create(ctx, share); err != nil {
		if !errors.Is(err, repository.ErrDuplicateShare) {
			return nil, false, apperr.Storage("failed to record share", err)
		}
		// Lost a race with an identical request.
		existing, err := s.shares.ByFileServer(ctx, fileID, serverID)
		if err != nil {
			return nil, false, apperr.Storage("failed to load share", err)
		}
		return existing, false, nil
	}

	slog.Info("file shared", "file_id", fileID, "server_id", serverID, "authorizer_id", authorizerID)
	return share, true, nil
}

// ServersForFile returns the ids of the servers a file is shared with,
// sorted ascending.
func (s *ShareService) ServersForFile(ctx context.Context, fileID string) ([]string, error) {
	if fileID == "" {
		return nil, apperr.Validation("file id is required")
	}
	if _, err := s.files.ByID(ctx, fileID); err != nil {
		if errors.Is(err, repository.ErrFileNotFound) {
			return nil, apperr.NotFound("file not found")
		}
		return nil, apperr.Storage("failed to load file", err)
	}

	servers, err := s.shares.ServersForFile(ctx, fileID)
	if err != nil {
		return nil, apperr.Storage("failed to load shares", err)
	}
	return servers, nil
}
