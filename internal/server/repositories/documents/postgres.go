package documents

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/movieshelf/internal/common"
	"github.com/dmitrijs2005/movieshelf/internal/dbx"
	"github.com/dmitrijs2005/movieshelf/internal/server/models"
	"github.com/google/uuid"
)

const columns = `id, collection, revision, data, created_at, updated_at`

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// buildListQuery renders q as SQL. Filters become a single jsonb containment
// test; ordering by a data field puts missing values last.
func buildListQuery(q models.DocumentQuery) (string, []any, error) {
	var sb strings.Builder
	args := []any{q.Collection}

	sb.WriteString(`SELECT ` + columns + ` FROM documents WHERE collection = $1`)

	if len(q.Filters) > 0 {
		match := make(map[string]any, len(q.Filters))
		for _, f := range q.Filters {
			match[f.Field] = f.Value
		}
		raw, err := json.Marshal(match)
		if err != nil {
			return "", nil, fmt.Errorf("encode filters: %w", err)
		}
		args = append(args, string(raw))
		fmt.Fprintf(&sb, ` AND data @> $%d::jsonb`, len(args))
	}

	if q.OrderBy != "" {
		dir := "ASC"
		if q.Desc {
			dir = "DESC"
		}
		args = append(args, q.OrderBy)
		fmt.Fprintf(&sb, ` ORDER BY data -> $%d %s NULLS LAST, updated_at DESC, id`, len(args), dir)
	} else {
		sb.WriteString(` ORDER BY created_at, id`)
	}

	if q.Limit > 0 {
		args = append(args, q.Limit)
		fmt.Fprintf(&sb, ` LIMIT $%d`, len(args))
	}
	if q.Offset > 0 {
		args = append(args, q.Offset)
		fmt.Fprintf(&sb, ` OFFSET $%d`, len(args))
	}

	return sb.String(), args, nil
}

func (r *PostgresRepository) List(ctx context.Context, q models.DocumentQuery) ([]*models.Document, error) {
	query, args, err := buildListQuery(q)
	if err != nil {
		return nil, err
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to select documents: %w", err)
	}
	defer rows.Close()

	var result []*models.Document
	for rows.Next() {
		d, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *PostgresRepository) Get(ctx context.Context, collection, id string) (*models.Document, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, common.ErrorNotFound
	}

	query := `SELECT ` + columns + ` FROM documents WHERE collection = $1 AND id = $2`
	return r.one(ctx, query, collection, id)
}

func (r *PostgresRepository) Create(ctx context.Context, collection string, data map[string]any) (*models.Document, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("encode data: %w", err)
	}

	query :=
		`INSERT INTO documents (id, collection, data)
		 VALUES ($1, $2, $3::jsonb)
		 RETURNING ` + columns

	return r.one(ctx, query, uuid.NewString(), collection, string(raw))
}

func (r *PostgresRepository) Update(ctx context.Context, collection, id string, fields map[string]any, expectedRevision int64) (*models.Document, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, common.ErrorNotFound
	}

	raw, err := json.Marshal(fields)
	if err != nil {
		return nil, fmt.Errorf("encode fields: %w", err)
	}

	query :=
		`UPDATE documents
		 SET data = data || $3::jsonb, revision = revision + 1, updated_at = now()
		 WHERE collection = $1 AND id = $2 AND ($4 = 0 OR revision = $4)
		 RETURNING ` + columns

	d, err := r.one(ctx, query, collection, id, string(raw), expectedRevision)
	if !errors.Is(err, common.ErrorNotFound) {
		return d, err
	}

	// Nothing matched: either the document is gone or the revision moved on.
	if _, getErr := r.Get(ctx, collection, id); getErr != nil {
		return nil, getErr
	}
	return nil, common.ErrVersionConflict
}

func (r *PostgresRepository) Delete(ctx context.Context, collection, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return common.ErrorNotFound
	}

	res, err := r.db.ExecContext(ctx, `DELETE FROM documents WHERE collection = $1 AND id = $2`, collection, id)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	ok, err := dbx.Affected(res)
	if err != nil {
		return fmt.Errorf("rows affected error: %w", err)
	}
	if !ok {
		return common.ErrorNotFound
	}
	return nil
}

func (r *PostgresRepository) one(ctx context.Context, query string, args ...any) (*models.Document, error) {
	d, err := scanDocument(r.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return nil, common.ErrorNotFound
		case dbx.IsUniqueViolation(err):
			return nil, common.ErrorAlreadyExists
		}
		return nil, err
	}
	return d, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanDocument(s scanner) (*models.Document, error) {
	var (
		d   models.Document
		raw []byte
	)
	if err := s.Scan(&d.ID, &d.Collection, &d.Revision, &raw, &d.CreatedAt, &d.UpdatedAt); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	if err := json.Unmarshal(raw, &d.Data); err != nil {
		return nil, fmt.Errorf("decode data: %w", err)
	}
	return &d, nil
}
