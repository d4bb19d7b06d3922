package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/cfmconsole/cfm/internal/dbx"
	"github.com/cfmconsole/cfm/internal/model"
)

var (
	ErrShareNotFound  = errors.New("share not found")
	ErrDuplicateShare = errors.New("file is already shared with this server")
)

type ShareRepository interface {
	Create(ctx context.Context, share *model.Share) error
	ByFileServer(ctx context.Context, fileID, serverID string) (*model.Share, error)
	ServersForFile(ctx context.Context, fileID string) ([]string, error)
	ServersForFiles(ctx context.Context, fileIDs []string) (map[string][]string, error)
}

type shareRepository struct {
	db dbx.DBTX
}

func NewShareRepository(db *sqlx.DB) ShareRepository {
	return &shareRepository{db: db}
}

func (r *shareRepository) Create(ctx context.Context, share *model.Share) error {
	query := `INSERT INTO file_access (id, file, server, authorizer, created_at) VALUES ($1, $2, $3, $4, $5)`

	_, err := r.db.ExecContext(ctx, query, share.ID, share.FileID, share.ServerID, share.AuthorizerID, share.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicateShare
		}
		return fmt.Errorf("insert share: %w", err)
	}
	return nil
}

func (r *shareRepository) ByFileServer(ctx context.Context, fileID, serverID string) (*model.Share, error) {
	share := &model.Share{}
	query := `SELECT id, file, server, authorizer, created_at FROM file_access WHERE file = $1 AND server = $2`

	err := r.db.GetContext(ctx, share, query, fileID, serverID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrShareNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get share: %w", err)
	}
	return share, nil
}

// ServersForFile returns the ids of servers the file is shared with, sorted
// ascending.
func (r *shareRepository) ServersForFile(ctx context.Context, fileID string) ([]string, error) {
	servers := []string{}
	query := `SELECT server FROM file_access WHERE file = $1 ORDER BY server`

	if err := r.db.SelectContext(ctx, &servers, query, fileID); err != nil {
		return nil, fmt.Errorf("list shares: %w", err)
	}
	return servers, nil
}

// ServersForFiles resolves the share sets of many files with one query.
// Files without shares are absent from the result.
func (r *shareRepository) ServersForFiles(ctx context.Context, fileIDs []string) (map[string][]string, error) {
	result := make(map[string][]string, len(fileIDs))
	if len(fileIDs) == 0 {
		return result, nil
	}

	query, args, err := sqlx.In(`SELECT file, server FROM file_access WHERE file IN (?) ORDER BY file, server`, fileIDs)
	if err != nil {
		return nil, fmt.Errorf("build share query: %w", err)
	}

	var rows []struct {
		File   string `db:"file"`
		Server string `db:"server"`
	}
	if err := r.db.SelectContext(ctx, &rows, r.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("list shares: %w", err)
	}

	for _, row := range rows {
		result[row.File] = append(result[row.File], row.Server)
	}
	return result, nil
}
