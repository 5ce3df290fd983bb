package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/daoteng/backoffice/internal/adapter/ws"
	"github.com/daoteng/backoffice/internal/domain"
	"github.com/daoteng/backoffice/internal/domain/announcement"
	"github.com/daoteng/backoffice/internal/port/broadcast"
	"github.com/daoteng/backoffice/internal/port/database"
	"github.com/daoteng/backoffice/internal/port/messagequeue"
)

// AnnouncementService publishes internal announcements to all connected
// clients.
type AnnouncementService struct {
	store  database.Store
	queue  messagequeue.Queue
	hub    broadcast.Broadcaster
	logger *slog.Logger
}

// NewAnnouncementService creates the announcement service.
func NewAnnouncementService(store database.Store, queue messagequeue.Queue, hub broadcast.Broadcaster, logger *slog.Logger) *AnnouncementService {
	return &AnnouncementService{store: store, queue: queue, hub: hub, logger: logger}
}

// List returns all announcements, pinned first, then newest first.
func (s *AnnouncementService) List(ctx context.Context) ([]announcement.Announcement, error) {
	items, err := s.store.ListAnnouncements(ctx)
	if err != nil {
		return nil, err
	}
	announcement.Sort(items)
	return items, nil
}

// Create validates, stores and broadcasts a new announcement.
func (s *AnnouncementService) Create(ctx context.Context, req *announcement.CreateRequest, author string) (*announcement.Announcement, error) {
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrValidation, err)
	}

	a := &announcement.Announcement{
		ID:       uuid.NewString(),
		Title:    req.Title,
		Content:  req.Content,
		Category: req.Category,
		Targets:  req.Targets,
		IsPinned: req.IsPinned,
		Author:   author,
		Date:     time.Now(),
	}

	if err := s.store.CreateAnnouncement(ctx, a); err != nil {
		return nil, fmt.Errorf("store announcement: %w", err)
	}

	payload, err := json.Marshal(messagequeue.AnnouncementChangedPayload{AnnouncementID: a.ID})
	if err == nil {
		if err := s.queue.Publish(ctx, messagequeue.SubjectAnnouncements, payload); err != nil {
			s.logger.Error("publish announcement", "id", a.ID, "error", err)
		}
	}

	s.hub.BroadcastEvent(ctx, ws.EventAnnouncementPublished,
		ws.AnnouncementPublishedEvent{Announcement: *a})

	return a, nil
}
