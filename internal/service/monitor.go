package service

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/daoteng/backoffice/internal/domain/board"
	"github.com/daoteng/backoffice/internal/domain/history"
	"github.com/daoteng/backoffice/internal/port/database"
)

// OverdueMonitor scans every pipeline for cards whose dwell exceeds the
// pipeline's threshold and records an alert in the history feed. Each card
// is alerted at most once per process lifetime.
type OverdueMonitor struct {
	boards *BoardService
	store  database.Store
	logger *slog.Logger

	mu      sync.Mutex
	alerted map[string]bool
}

// NewOverdueMonitor creates the monitor.
func NewOverdueMonitor(boards *BoardService, store database.Store, logger *slog.Logger) *OverdueMonitor {
	return &OverdueMonitor{
		boards:  boards,
		store:   store,
		logger:  logger,
		alerted: make(map[string]bool),
	}
}

// Run scans on the given interval until ctx is cancelled.
func (m *OverdueMonitor) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.Scan(ctx)
		}
	}
}

// Scan performs one pass over all pipelines and returns the number of new
// alerts recorded.
func (m *OverdueMonitor) Scan(ctx context.Context) int {
	now := time.Now()
	alerts := 0

	for _, def := range m.boards.Pipelines() {
		if def.OverdueDays <= 0 {
			continue
		}
		catalog, err := m.boards.Catalog(def.Name)
		if err != nil {
			m.logger.Error("overdue scan", "pipeline", def.Name, "error", err)
			continue
		}
		cards, err := m.boards.ListCards(ctx, def.Name, board.Filter{})
		if err != nil {
			m.logger.Error("overdue scan", "pipeline", def.Name, "error", err)
			continue
		}

		for i := range cards {
			c := &cards[i]
			if catalog.IsTerminal(c.Stage) {
				continue
			}
			dwell := c.DwellDays(def.DwellMode, false, now)
			if dwell < def.OverdueDays {
				continue
			}

			m.mu.Lock()
			seen := m.alerted[c.ID]
			if !seen {
				m.alerted[c.ID] = true
			}
			m.mu.Unlock()
			if seen {
				continue
			}

			if err := m.store.AppendHistory(ctx, history.OverdueAlert(c.ID, c.Title, def.OverdueDays)); err != nil {
				m.logger.Error("record overdue alert", "card", c.ID, "error", err)
				continue
			}
			alerts++
		}
	}
	return alerts
}
