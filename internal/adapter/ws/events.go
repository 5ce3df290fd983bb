package ws

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/daoteng/backoffice/internal/domain/announcement"
	"github.com/daoteng/backoffice/internal/domain/board"
)

// Event type constants for WebSocket messages.
const (
	EventBoardSnapshot         = "board.snapshot"
	EventAnnouncementPublished = "announcement.published"
	EventSyncDegraded          = "sync.degraded"
	EventSyncError             = "sync.error"
)

// BoardSnapshotEvent carries a full grouped board for one pipeline. Clients
// replace their local board state with it; there is no incremental patching.
type BoardSnapshotEvent struct {
	Pipeline string      `json:"pipeline"`
	Board    board.Index `json:"board"`
}

// AnnouncementPublishedEvent is broadcast when an announcement is published.
type AnnouncementPublishedEvent struct {
	Announcement announcement.Announcement `json:"announcement"`
}

// SyncDegradedEvent is broadcast when the live mirror loses its change feed
// and falls back to polling.
type SyncDegradedEvent struct {
	Degraded bool   `json:"degraded"`
	Reason   string `json:"reason,omitempty"`
}

// SyncErrorEvent is broadcast when a snapshot re-query fails. Clients keep
// whatever board they last received; the event tells them it may be stale.
type SyncErrorEvent struct {
	Pipeline string `json:"pipeline"`
	Error    string `json:"error"`
}

// BroadcastEvent is a convenience method that marshals a typed event and broadcasts it.
func (h *Hub) BroadcastEvent(ctx context.Context, eventType string, payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		slog.Error("marshal ws event payload", "type", eventType, "error", err)
		return
	}

	h.Broadcast(ctx, Message{
		Type:    eventType,
		Payload: json.RawMessage(data),
	})
}
