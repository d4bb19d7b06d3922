package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/cfmconsole/cfm/internal/dbx"
	"github.com/cfmconsole/cfm/internal/model"
	"github.com/cfmconsole/cfm/internal/namespace"
)

var (
	ErrFileNotFound  = errors.New("file not found")
	ErrDuplicateFile = errors.New("an entry with this name already exists")
)

type FileRepository interface {
	Create(ctx context.Context, file *model.File) error
	ByID(ctx context.Context, id string) (*model.File, error)
	ByPathName(ctx context.Context, path, name string) (*model.File, error)
	ListByPath(ctx context.Context, path string) ([]*model.File, error)
	// InTx runs fn with a repository bound to a single transaction.
	InTx(ctx context.Context, fn func(ctx context.Context, files FileRepository) error) error
}

// fileRow mirrors the files table. Size carries the directory sentinel.
type fileRow struct {
	ID        string    `db:"id"`
	Name      string    `db:"name"`
	Path      string    `db:"path"`
	Size      int64     `db:"size"`
	BlobID    string    `db:"blob_id"`
	Uploader  string    `db:"uploader"`
	CreatedAt time.Time `db:"created_at"`
}

func (r fileRow) toModel() *model.File {
	f := &model.File{
		ID:         r.ID,
		Name:       r.Name,
		Path:       r.Path,
		Kind:       namespace.Classify(r.Size),
		BlobID:     r.BlobID,
		UploaderID: r.Uploader,
		CreatedAt:  r.CreatedAt,
	}
	if f.Kind == model.EntryFile {
		f.Size = r.Size
	}
	return f
}

const fileColumns = `id, name, path, size, blob_id, uploader, created_at`

type fileRepository struct {
	db   dbx.DBTX
	root *sqlx.DB // nil when bound to a transaction
}

func NewFileRepository(db *sqlx.DB) FileRepository {
	return &fileRepository{db: db, root: db}
}

func (r *fileRepository) Create(ctx context.Context, file *model.File) error {
	query := `INSERT INTO files (` + fileColumns + `) VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err := r.db.ExecContext(ctx, query,
		file.ID,
		file.Name,
		file.Path,
		namespace.EncodeSize(file.Kind, file.Size),
		file.BlobID,
		file.UploaderID,
		file.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicateFile
		}
		return fmt.Errorf("insert file: %w", err)
	}
	return nil
}

func (r *fileRepository) ByID(ctx context.Context, id string) (*model.File, error) {
	var row fileRow
	query := `SELECT ` + fileColumns + ` FROM files WHERE id = $1`

	err := r.db.GetContext(ctx, &row, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrFileNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get file: %w", err)
	}
	return row.toModel(), nil
}

func (r *fileRepository) ByPathName(ctx context.Context, path, name string) (*model.File, error) {
	var row fileRow
	query := `SELECT ` + fileColumns + ` FROM files WHERE path = $1 AND name = $2`

	err := r.db.GetContext(ctx, &row, query, path, name)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrFileNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get file by path: %w", err)
	}
	return row.toModel(), nil
}

// ListByPath returns the direct children of path. Deeper descendants are
// not included.
func (r *fileRepository) ListByPath(ctx context.Context, path string) ([]*model.File, error) {
	var rows []fileRow
	query := `SELECT ` + fileColumns + ` FROM files WHERE path = $1 ORDER BY name`

	if err := r.db.SelectContext(ctx, &rows, query, path); err != nil {
		return nil, fmt.Errorf("list files: %w", err)
	}

	files := make([]*model.File, 0, len(rows))
	for _, row := range rows {
		files = append(files, row.toModel())
	}
	return files, nil
}

func (r *fileRepository) InTx(ctx context.Context, fn func(ctx context.Context, files FileRepository) error) error {
	if r.root == nil {
		return fn(ctx, r)
	}
	return dbx.WithTx(ctx, r.root, nil, func(ctx context.Context, tx *sqlx.Tx) error {
		return fn(ctx, &fileRepository{db: tx})
	})
}
