package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/daoteng/backoffice/internal/domain/announcement"
)

func (s *Store) ListAnnouncements(ctx context.Context) ([]announcement.Announcement, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, category, title, content, author, targets, is_pinned, date
		FROM announcements ORDER BY is_pinned DESC, date DESC`)
	if err != nil {
		return nil, fmt.Errorf("list announcements: %w", err)
	}
	defer rows.Close()

	var items []announcement.Announcement
	for rows.Next() {
		var a announcement.Announcement
		if err := rows.Scan(&a.ID, &a.Category, &a.Title, &a.Content, &a.Author, &a.Targets, &a.IsPinned, &a.Date); err != nil {
			return nil, fmt.Errorf("scan announcement: %w", err)
		}
		items = append(items, a)
	}
	return items, rows.Err()
}

func (s *Store) CreateAnnouncement(ctx context.Context, a *announcement.Announcement) error {
	// Date is server-assigned on publish.
	a.Date = time.Now().UTC()

	_, err := s.pool.Exec(ctx, `
		INSERT INTO announcements (id, category, title, content, author, targets, is_pinned, date)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		a.ID, a.Category, a.Title, a.Content, a.Author, pgTextArray(a.Targets), a.IsPinned, a.Date,
	)
	if err != nil {
		return fmt.Errorf("create announcement: %w", err)
	}
	return nil
}
