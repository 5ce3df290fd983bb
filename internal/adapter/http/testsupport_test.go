package http_test

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	bohttp "github.com/daoteng/backoffice/internal/adapter/http"
	"github.com/daoteng/backoffice/internal/adapter/otel"
	"github.com/daoteng/backoffice/internal/adapter/ws"
	"github.com/daoteng/backoffice/internal/config"
	"github.com/daoteng/backoffice/internal/domain"
	"github.com/daoteng/backoffice/internal/domain/announcement"
	"github.com/daoteng/backoffice/internal/domain/history"
	"github.com/daoteng/backoffice/internal/domain/pipeline"
	"github.com/daoteng/backoffice/internal/domain/stage"
	"github.com/daoteng/backoffice/internal/domain/user"
	"github.com/daoteng/backoffice/internal/middleware"
	"github.com/daoteng/backoffice/internal/port/database"
	"github.com/daoteng/backoffice/internal/port/messagequeue"
	"github.com/daoteng/backoffice/internal/service"
)

// mockStore implements database.Store for handler tests.
type mockStore struct {
	mu            sync.Mutex
	docs          map[string]map[string]database.Document
	docOrder      map[string][]string
	users         map[string]*user.User
	announcements []announcement.Announcement
	history       []history.Entry
}

func newMockStore() *mockStore {
	return &mockStore{
		docs:     make(map[string]map[string]database.Document),
		docOrder: make(map[string][]string),
		users:    make(map[string]*user.User),
	}
}

func (m *mockStore) ListDocuments(_ context.Context, collection string) ([]database.Document, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]database.Document, 0, len(m.docs[collection]))
	for _, id := range m.docOrder[collection] {
		out = append(out, m.docs[collection][id])
	}
	return out, nil
}

func (m *mockStore) GetDocument(_ context.Context, collection, id string) (*database.Document, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	doc, ok := m.docs[collection][id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &doc, nil
}

func (m *mockStore) PutDocument(_ context.Context, collection, id string, data json.RawMessage) (*database.Document, error) {
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

func (m *mockStore) MergeDocument(ctx context.Context, collection, id string, patch json.RawMessage) (*database.Document, error) {
	m.mu.Lock()
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

func (m *mockStore) DeleteDocument(_ context.Context, collection, id string) error {
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

func (m *mockStore) ListUsers(context.Context) ([]user.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]user.User, 0, len(m.users))
	for _, u := range m.users {
		out = append(out, *u)
	}
	return out, nil
}

func (m *mockStore) GetUser(_ context.Context, id string) (*user.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (m *mockStore) GetUserByEmail(_ context.Context, email string) (*user.User, error) {
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

func (m *mockStore) CreateUser(_ context.Context, u *user.User) error {
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

func (m *mockStore) UpdateUser(_ context.Context, id string, req user.UpdateRequest) (*user.User, error) {
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

func (m *mockStore) UpdateUserPassword(_ context.Context, id, passwordHash string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return domain.ErrNotFound
	}
	u.PasswordHash = passwordHash
	return nil
}

func (m *mockStore) ListAnnouncements(context.Context) ([]announcement.Announcement, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]announcement.Announcement(nil), m.announcements...), nil
}

func (m *mockStore) CreateAnnouncement(_ context.Context, a *announcement.Announcement) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.announcements = append(m.announcements, *a)
	return nil
}

func (m *mockStore) ListHistory(_ context.Context, limit int) ([]history.Entry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]history.Entry, 0, limit)
	for i := len(m.history) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, m.history[i])
	}
	return out, nil
}

func (m *mockStore) AppendHistory(_ context.Context, e history.Entry) error {
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

// mockQueue is a no-fail messagequeue.Queue.
type mockQueue struct {
	mu        sync.Mutex
	published []string
}

func (q *mockQueue) Publish(_ context.Context, subject string, _ []byte) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.published = append(q.published, subject)
	return nil
}

func (q *mockQueue) Subscribe(context.Context, string, messagequeue.Handler) (func(), error) {
	return func() {}, nil
}

func (q *mockQueue) Drain() error      { return nil }
func (q *mockQueue) Close() error      { return nil }
func (q *mockQueue) IsConnected() bool { return true }

// testEnv wires real services over in-memory adapters behind a full router.
type testEnv struct {
	router chi.Router
	store  *mockStore
	queue  *mockQueue
	auth   *service.AuthService
}

func newTestEnv(t *testing.T, authEnabled bool) *testEnv {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	store := newMockStore()
	queue := &mockQueue{}
	hub := ws.NewHub()
	metrics, err := otel.NewMetrics()
	if err != nil {
		t.Fatalf("metrics: %v", err)
	}

	catalogs, err := stage.NewRegistry("")
	if err != nil {
		t.Fatalf("stage registry: %v", err)
	}
	pipelines, err := pipeline.NewRegistry(pipeline.Defaults())
	if err != nil {
		t.Fatalf("pipeline registry: %v", err)
	}

	boards, err := service.NewBoardService(store, queue, pipelines, catalogs, metrics, logger)
	if err != nil {
		t.Fatalf("board service: %v", err)
	}

	authCfg := config.Auth{
		TokenSecret: "test-secret-key-must-be-long-enough",
		TokenTTL:    15 * time.Minute,
		BcryptCost:  4,
	}
	auth := service.NewAuthService(store, nil, &authCfg)

	h := &bohttp.Handlers{
		Auth:          auth,
		Boards:        boards,
		Dashboard:     service.NewDashboardService(boards, store),
		Announcements: service.NewAnnouncementService(store, queue, hub, logger),
		Customers:     service.NewCustomerService(store, nil, time.Minute, logger),
		History:       service.NewHistoryService(store, 100),
		Hub:           hub,
	}

	r := chi.NewRouter()
	r.Use(middleware.Auth(auth, authEnabled))
	bohttp.MountRoutes(r, h, middleware.NewRateLimiter(100, 100))

	return &testEnv{router: r, store: store, queue: queue, auth: auth}
}
