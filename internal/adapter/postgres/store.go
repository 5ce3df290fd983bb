package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/daoteng/backoffice/internal/domain"
	"github.com/daoteng/backoffice/internal/port/database"
)

// Store implements database.Store using PostgreSQL. Card documents live in
// a single JSONB table keyed by (collection, id), mirroring the schemaless
// shape the board services expect.
type Store struct {
	pool *pgxpool.Pool
}

// NewStore creates a new Store backed by the given connection pool.
func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// --- Documents ---

func (s *Store) ListDocuments(ctx context.Context, collection string) ([]database.Document, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT collection, id, data, updated_at
		FROM documents WHERE collection = $1
		ORDER BY data->>'createdAt' DESC, id`, collection)
	if err != nil {
		return nil, fmt.Errorf("list documents %s: %w", collection, err)
	}
	defer rows.Close()

	var docs []database.Document
	for rows.Next() {
		var d database.Document
		if err := rows.Scan(&d.Collection, &d.ID, &d.Data, &d.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan document: %w", err)
		}
		docs = append(docs, d)
	}
	return docs, rows.Err()
}

func (s *Store) GetDocument(ctx context.Context, collection, id string) (*database.Document, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT collection, id, data, updated_at
		FROM documents WHERE collection = $1 AND id = $2`, collection, id)

	var d database.Document
	if err := row.Scan(&d.Collection, &d.ID, &d.Data, &d.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("get document %s/%s: %w", collection, id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get document %s/%s: %w", collection, id, err)
	}
	return &d, nil
}

func (s *Store) PutDocument(ctx context.Context, collection, id string, data json.RawMessage) (*database.Document, error) {
	if !json.Valid(data) {
		return nil, fmt.Errorf("put document %s/%s: invalid json: %w", collection, id, domain.ErrValidation)
	}

	row := s.pool.QueryRow(ctx, `
		INSERT INTO documents (collection, id, data, updated_at)
		VALUES ($1, $2, $3, now())
		ON CONFLICT (collection, id)
		DO UPDATE SET data = EXCLUDED.data, updated_at = now()
		RETURNING collection, id, data, updated_at`,
		collection, id, data)

	var d database.Document
	if err := row.Scan(&d.Collection, &d.ID, &d.Data, &d.UpdatedAt); err != nil {
		return nil, fmt.Errorf("put document %s/%s: %w", collection, id, err)
	}
	return &d, nil
}

func (s *Store) MergeDocument(ctx context.Context, collection, id string, patch json.RawMessage) (*database.Document, error) {
	if !json.Valid(patch) {
		return nil, fmt.Errorf("merge document %s/%s: invalid json: %w", collection, id, domain.ErrValidation)
	}

	row := s.pool.QueryRow(ctx, `
		UPDATE documents
		SET data = data || $3::jsonb, updated_at = now()
		WHERE collection = $1 AND id = $2
		RETURNING collection, id, data, updated_at`,
		collection, id, patch)

	var d database.Document
	if err := row.Scan(&d.Collection, &d.ID, &d.Data, &d.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("merge document %s/%s: %w", collection, id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("merge document %s/%s: %w", collection, id, err)
	}
	return &d, nil
}

func (s *Store) DeleteDocument(ctx context.Context, collection, id string) error {
	tag, err := s.pool.Exec(ctx,
		`DELETE FROM documents WHERE collection = $1 AND id = $2`, collection, id)
	return execExpectOne(tag, err, "delete document %s/%s", collection, id)
}
