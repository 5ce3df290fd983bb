package service

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/daoteng/backoffice/internal/adapter/otel"
	"github.com/daoteng/backoffice/internal/adapter/ws"
	"github.com/daoteng/backoffice/internal/domain/board"
	"github.com/daoteng/backoffice/internal/port/broadcast"
	"github.com/daoteng/backoffice/internal/port/messagequeue"
)

// SyncService keeps connected clients' boards live. It subscribes to the
// change feed and, on every change, re-reads the affected collection and
// broadcasts a full board snapshot per pipeline; clients never patch local
// state incrementally. When the feed is unavailable it degrades to polling.
type SyncService struct {
	boards       *BoardService
	queue        messagequeue.Queue
	hub          broadcast.Broadcaster
	metrics      *otel.Metrics
	logger       *slog.Logger
	pollInterval time.Duration

	// OnCollectionChanged, when set, runs before the snapshot refresh for
	// every observed change. Used to invalidate derived caches such as
	// the customer directory.
	OnCollectionChanged func(ctx context.Context, collection string)

	// group collapses concurrent refreshes of the same collection into
	// one store read.
	group singleflight.Group
}

// NewSyncService creates the live mirror service.
func NewSyncService(boards *BoardService, queue messagequeue.Queue, hub broadcast.Broadcaster, metrics *otel.Metrics, logger *slog.Logger, pollInterval time.Duration) *SyncService {
	return &SyncService{
		boards:       boards,
		queue:        queue,
		hub:          hub,
		metrics:      metrics,
		logger:       logger,
		pollInterval: pollInterval,
	}
}

// Run subscribes to the change feed and blocks until ctx is cancelled,
// polling as a fallback whenever the feed connection is lost.
func (s *SyncService) Run(ctx context.Context) error {
	cancelCards, err := s.queue.Subscribe(ctx, messagequeue.SubjectCardsWildcard, s.onCardChanged)
	if err != nil {
		return err
	}
	defer cancelCards()

	ticker := time.NewTicker(s.pollInterval)
	defer ticker.Stop()

	degraded := false
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			connected := s.queue.IsConnected()
			if !connected && !degraded {
				degraded = true
				s.logger.Warn("change feed lost, falling back to polling")
				s.hub.BroadcastEvent(ctx, ws.EventSyncDegraded,
					ws.SyncDegradedEvent{Degraded: true, Reason: "change feed disconnected"})
			}
			if connected && degraded {
				degraded = false
				s.logger.Info("change feed restored")
				s.hub.BroadcastEvent(ctx, ws.EventSyncDegraded,
					ws.SyncDegradedEvent{Degraded: false})
			}
			if !connected {
				s.RefreshAll(ctx)
			}
		}
	}
}

// onCardChanged handles one change-feed message. The payload only names the
// changed document; the whole collection is re-read.
func (s *SyncService) onCardChanged(ctx context.Context, subject string, data []byte) error {
	var payload messagequeue.CardChangedPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		s.logger.Warn("unreadable change payload", "subject", subject, "error", err)
		return nil
	}

	if s.OnCollectionChanged != nil {
		s.OnCollectionChanged(ctx, payload.Collection)
	}
	s.refreshCollection(ctx, payload.Collection)
	return nil
}

// refreshCollection re-reads every pipeline backed by the collection and
// broadcasts fresh snapshots. Concurrent refreshes of the same collection
// are collapsed.
func (s *SyncService) refreshCollection(ctx context.Context, collection string) {
	_, _, _ = s.group.Do(collection, func() (any, error) {
		ctx, span := otel.StartRefreshSpan(ctx, collection)
		defer span.End()

		start := time.Now()
		for _, def := range s.boards.Pipelines() {
			if def.Collection != collection {
				continue
			}
			s.broadcastSnapshot(ctx, def.Name)
		}
		s.metrics.RefreshDuration.Record(ctx, time.Since(start).Seconds())
		return nil, nil
	})
}

// RefreshAll re-reads every pipeline and broadcasts snapshots. Used by the
// polling fallback.
func (s *SyncService) RefreshAll(ctx context.Context) {
	seen := make(map[string]bool)
	for _, def := range s.boards.Pipelines() {
		if seen[def.Collection] {
			continue
		}
		seen[def.Collection] = true
		s.refreshCollection(ctx, def.Collection)
	}
}

func (s *SyncService) broadcastSnapshot(ctx context.Context, pipelineName string) {
	index, err := s.boards.Board(ctx, pipelineName, board.Filter{})
	if err != nil {
		// Subscribers keep their last snapshot; tell them it is stale
		// rather than failing silently.
		s.logger.Error("board refresh failed", "pipeline", pipelineName, "error", err)
		s.hub.BroadcastEvent(ctx, ws.EventSyncError,
			ws.SyncErrorEvent{Pipeline: pipelineName, Error: err.Error()})
		return
	}

	ctx, span := otel.StartBroadcastSpan(ctx, pipelineName, s.hub.ConnectionCount())
	defer span.End()

	s.hub.BroadcastEvent(ctx, ws.EventBoardSnapshot,
		ws.BoardSnapshotEvent{Pipeline: pipelineName, Board: index})
	s.metrics.SnapshotsBroadcast.Add(ctx, 1)
}

// InitialSnapshots builds one snapshot message per pipeline for a client
// that just connected. Wired to the hub's OnConnect hook.
func (s *SyncService) InitialSnapshots(ctx context.Context) []ws.Message {
	defs := s.boards.Pipelines()
	msgs := make([]ws.Message, 0, len(defs))
	for _, def := range defs {
		index, err := s.boards.Board(ctx, def.Name, board.Filter{})
		if err != nil {
			s.logger.Error("initial snapshot failed", "pipeline", def.Name, "error", err)
			continue
		}
		data, err := json.Marshal(ws.BoardSnapshotEvent{Pipeline: def.Name, Board: index})
		if err != nil {
			continue
		}
		msgs = append(msgs, ws.Message{Type: ws.EventBoardSnapshot, Payload: json.RawMessage(data)})
	}
	return msgs
}
