package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/daoteng/backoffice/internal/domain/history"
)

const defaultHistoryLimit = 100

func (s *Store) ListHistory(ctx context.Context, limit int) ([]history.Entry, error) {
	if limit <= 0 {
		limit = defaultHistoryLimit
	}
	rows, err := s.pool.Query(ctx, `
		SELECT id, card_id, card_title, operator, action, details, ts
		FROM history ORDER BY ts DESC LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("list history: %w", err)
	}
	defer rows.Close()

	var entries []history.Entry
	for rows.Next() {
		var e history.Entry
		if err := rows.Scan(&e.ID, &e.CardID, &e.CardTitle, &e.User, &e.Action, &e.Details, &e.Timestamp); err != nil {
			return nil, fmt.Errorf("scan history entry: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func (s *Store) AppendHistory(ctx context.Context, e history.Entry) error {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.Timestamp.IsZero() {
		e.Timestamp = time.Now().UTC()
	}

	_, err := s.pool.Exec(ctx, `
		INSERT INTO history (id, card_id, card_title, operator, action, details, ts)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		e.ID, e.CardID, e.CardTitle, e.User, e.Action, e.Details, e.Timestamp,
	)
	if err != nil {
		return fmt.Errorf("append history: %w", err)
	}
	return nil
}
