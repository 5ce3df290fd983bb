package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/daoteng/backoffice/internal/domain"
	"github.com/daoteng/backoffice/internal/domain/announcement"
	"github.com/daoteng/backoffice/internal/domain/history"
	"github.com/daoteng/backoffice/internal/domain/user"
	"github.com/daoteng/backoffice/internal/port/database"
	"github.com/daoteng/backoffice/internal/port/messagequeue"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// memStore is an in-memory database.Store for service tests.
type memStore struct {
	mu            sync.Mutex
	docs          map[string]map[string]database.Document
	docOrder      map[string][]string
	users         map[string]*user.User
	announcements []announcement.Announcement
	history       []history.Entry

	// failMerge makes MergeDocument fail, to exercise commit-failure paths.
	failMerge bool
	// failList makes ListDocuments fail, to exercise refresh-failure paths.
	failList bool
}

func newMemStore() *memStore {
	return &memStore{
		docs:     make(map[string]map[string]database.Document),
		docOrder: make(map[string][]string),
		users:    make(map[string]*user.User),
	}
}

func (m *memStore) ListDocuments(_ context.Context, collection string) ([]database.Document, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failList {
		return nil, errors.New("list failed")
	}
	out := make([]database.Document, 0, len(m.docs[collection]))
	for _, id := range m.docOrder[collection] {
		out = append(out, m.docs[collection][id])
	}
	return out, nil
}

func (m *memStore) GetDocument(_ context.Context, collection, id string) (*database.Document, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	doc, ok := m.docs[collection][id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &doc, nil
}

func (m *memStore) PutDocument(_ context.Context, collection, id string, data json.RawMessage) (*database.Document, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.docs[collection] == nil {
		m.docs[collection] = make(map[string]database.Document)
	}
	if _, exists := m.docs[collection][id]; !exists {
		m.docOrder[collection] = append(m.docOrder[collection], id)
	}
	doc := database.Document{
		ID:         id,
		Collection: collection,
		Data:       append(json.RawMessage(nil), data...),
		UpdatedAt:  time.Now(),
	}
	m.docs[collection][id] = doc
	return &doc, nil
}

func (m *memStore) MergeDocument(ctx context.Context, collection, id string, patch json.RawMessage) (*database.Document, error) {
	m.mu.Lock()
	if m.failMerge {
		m.mu.Unlock()
		return nil, errors.New("merge failed")
	}
	doc, ok := m.docs[collection][id]
	m.mu.Unlock()
	if !ok {
		return nil, domain.ErrNotFound
	}

	var base, overlay map[string]json.RawMessage
	if err := json.Unmarshal(doc.Data, &base); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(patch, &overlay); err != nil {
		return nil, err
	}
	for k, v := range overlay {
		base[k] = v
	}
	merged, err := json.Marshal(base)
	if err != nil {
		return nil, err
	}
	return m.PutDocument(ctx, collection, id, merged)
}

func (m *memStore) DeleteDocument(_ context.Context, collection, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.docs[collection][id]; !ok {
		return domain.ErrNotFound
	}
	delete(m.docs[collection], id)
	order := m.docOrder[collection]
	for i, existing := range order {
		if existing == id {
			m.docOrder[collection] = append(order[:i], order[i+1:]...)
			break
		}
	}
	return nil
}

func (m *memStore) ListUsers(context.Context) ([]user.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]user.User, 0, len(m.users))
	for _, u := range m.users {
		out = append(out, *u)
	}
	return out, nil
}

func (m *memStore) GetUser(_ context.Context, id string) (*user.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (m *memStore) GetUserByEmail(_ context.Context, email string) (*user.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *memStore) CreateUser(_ context.Context, u *user.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.users {
		if existing.Email == u.Email {
			return fmt.Errorf("%w: email already registered", domain.ErrConflict)
		}
	}
	cp := *u
	m.users[u.ID] = &cp
	return nil
}

func (m *memStore) UpdateUser(_ context.Context, id string, req user.UpdateRequest) (*user.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	if req.DisplayName != "" {
		u.DisplayName = req.DisplayName
	}
	if req.Role != "" {
		u.Role = req.Role
	}
	if req.Enabled != nil {
		u.Enabled = *req.Enabled
	}
	cp := *u
	return &cp, nil
}

func (m *memStore) UpdateUserPassword(_ context.Context, id, passwordHash string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return domain.ErrNotFound
	}
	u.PasswordHash = passwordHash
	return nil
}

func (m *memStore) ListAnnouncements(context.Context) ([]announcement.Announcement, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]announcement.Announcement(nil), m.announcements...), nil
}

func (m *memStore) CreateAnnouncement(_ context.Context, a *announcement.Announcement) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.announcements = append(m.announcements, *a)
	return nil
}

func (m *memStore) ListHistory(_ context.Context, limit int) ([]history.Entry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]history.Entry, 0, limit)
	for i := len(m.history) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, m.history[i])
	}
	return out, nil
}

func (m *memStore) AppendHistory(_ context.Context, e history.Entry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.Timestamp.IsZero() {
		e.Timestamp = time.Now()
	}
	m.history = append(m.history, e)
	return nil
}

// stubQueue records publishes and lets tests deliver messages to
// subscribers.
type stubQueue struct {
	mu        sync.Mutex
	published []publishedMsg
	handlers  map[string]messagequeue.Handler
	connected bool
}

type publishedMsg struct {
	subject string
	data    []byte
}

func newStubQueue() *stubQueue {
	return &stubQueue{handlers: make(map[string]messagequeue.Handler), connected: true}
}

func (q *stubQueue) Publish(_ context.Context, subject string, data []byte) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.published = append(q.published, publishedMsg{subject: subject, data: append([]byte(nil), data...)})
	return nil
}

func (q *stubQueue) Subscribe(_ context.Context, subject string, handler messagequeue.Handler) (func(), error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.handlers[subject] = handler
	return func() {}, nil
}

func (q *stubQueue) Drain() error { return nil }
func (q *stubQueue) Close() error { return nil }

func (q *stubQueue) IsConnected() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.connected
}

func (q *stubQueue) publishedSubjects() []string {
	q.mu.Lock()
	defer q.mu.Unlock()
	out := make([]string, len(q.published))
	for i, p := range q.published {
		out[i] = p.subject
	}
	return out
}

// recordingHub records broadcast events.
type recordingHub struct {
	mu     sync.Mutex
	events []recordedEvent
}

type recordedEvent struct {
	eventType string
	payload   any
}

func (h *recordingHub) BroadcastEvent(_ context.Context, eventType string, payload any) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.events = append(h.events, recordedEvent{eventType: eventType, payload: payload})
}

func (h *recordingHub) ConnectionCount() int { return 0 }

func (h *recordingHub) eventTypes() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]string, len(h.events))
	for i, e := range h.events {
		out[i] = e.eventType
	}
	return out
}
