package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/cfmconsole/cfm/internal/apperr"
	"github.com/cfmconsole/cfm/internal/model"
	"github.com/cfmconsole/cfm/internal/repository"
	"github.com/cfmconsole/cfm/internal/validation"
)

type ServerService struct {
	servers repository.ServerRepository
}

func NewServerService(servers repository.ServerRepository) *ServerService {
	return &ServerService{servers: servers}
}

type CreateServerInput struct {
	Name        string `json:"name" validate:"required,max=100"`
	Host        string `json:"host" validate:"required,hostname_rfc1123|ip"`
	Port        int    `json:"port" validate:"required,min=1,max=65535"`
	Status      string `json:"status" validate:"omitempty,oneof=offline online maintenance"`
	Description string `json:"description" validate:"max=500"`
}

func (s *ServerService) Create(ctx context.Context, in CreateServerInput) (*model.Server, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Host = strings.TrimSpace(in.Host)
	if err := validation.Struct(in); err != nil {
		return nil, err
	}
	if in.Status == "" {
		in.Status = model.ServerStatusOffline
	}

	server := &model.Server{
		ID:          uuid.NewString(),
		Name:        in.Name,
		Host:        in.Host,
		Port:        in.Port,
		Status:      in.Status,
		Description: in.Description,
		CreatedAt:   time.Now().UTC(),
	}
	if err := s.servers.Create(ctx, server); err != nil {
		return nil, apperr.Storage("failed to create server", err)
	}

	slog.Info("server registered", "server_id", server.ID, "host", server.Host, "port", server.Port)
	return server, nil
}

func (s *ServerService) ByID(ctx context.Context, id string) (*model.Server, error) {
	server, err := s.servers.ByID(ctx, id)
	if errors.Is(err, repository.ErrServerNotFound) {
		return nil, apperr.NotFound("server not found")
	}
	if err != nil {
		return nil, apperr.Storage("failed to load server", err)
	}
	return server, nil
}

func (s *ServerService) List(ctx context.Context) ([]*model.Server, error) {
	servers, err := s.servers.List(ctx)
	if err != nil {
		return nil, apperr.Storage("failed to list servers", err)
	}
	return servers, nil
}
