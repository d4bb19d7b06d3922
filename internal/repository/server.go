package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/cfmconsole/cfm/internal/model"
)

var ErrServerNotFound = errors.New("server not found")

type ServerRepository interface {
	Create(ctx context.Context, server *model.Server) error
	ByID(ctx context.Context, id string) (*model.Server, error)
	List(ctx context.Context) ([]*model.Server, error)
}

const serverColumns = `id, name, host, port, status, description, created_at`

type serverRepository struct {
	db *sqlx.DB
}

func NewServerRepository(db *sqlx.DB) ServerRepository {
	return &serverRepository{db: db}
}

func (r *serverRepository) Create(ctx context.Context, server *model.Server) error {
	query := `INSERT INTO servers (` + serverColumns + `) VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err := r.db.ExecContext(ctx, query,
		server.ID,
		server.Name,
		server.Host,
		server.Port,
		server.Status,
		server.Description,
		server.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert server: %w", err)
	}
	return nil
}

func (r *serverRepository) ByID(ctx context.Context, id string) (*model.Server, error) {
	server := &model.Server{}
	query := `SELECT ` + serverColumns + ` FROM servers WHERE id = $1`

	err := r.db.GetContext(ctx, server, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrServerNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get server: %w", err)
	}
	return server, nil
}

func (r *serverRepository) List(ctx context.Context) ([]*model.Server, error) {
	servers := []*model.Server{}
	query := `SELECT ` + serverColumns + ` FROM servers ORDER BY name, id`

	if err := r.db.SelectContext(ctx, &servers, query); err != nil {
		return nil, fmt.Errorf("list servers: %w", err)
	}
	return servers, nil
}
