package service

import (
	"context"

	"github.com/daoteng/backoffice/internal/domain/history"
	"github.com/daoteng/backoffice/internal/port/database"
)

// HistoryService serves the operation log feed.
type HistoryService struct {
	store database.Store
	limit int
}

// NewHistoryService creates the history service with the configured default
// page size.
func NewHistoryService(store database.Store, limit int) *HistoryService {
	return &HistoryService{store: store, limit: limit}
}

// List returns the newest entries, up to limit; a non-positive limit uses
// the configured default.
func (s *HistoryService) List(ctx context.Context, limit int) ([]history.Entry, error) {
	if limit <= 0 {
		limit = s.limit
	}
	return s.store.ListHistory(ctx, limit)
}
