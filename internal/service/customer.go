package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/daoteng/backoffice/internal/domain/customer"
	"github.com/daoteng/backoffice/internal/port/cache"
	"github.com/daoteng/backoffice/internal/port/database"
)

// membersCollection backs both the registration pipeline and the customer
// directory.
const membersCollection = "members"

const customerCacheKey = "customers:all"

// CustomerService serves the customer directory built over the member
// documents. The full directory is cached briefly because the search box
// filters in-memory on every keystroke.
type CustomerService struct {
	store  database.Store
	cache  cache.Cache
	ttl    time.Duration
	logger *slog.Logger
}

// NewCustomerService creates the customer directory service.
func NewCustomerService(store database.Store, dirCache cache.Cache, ttl time.Duration, logger *slog.Logger) *CustomerService {
	return &CustomerService{store: store, cache: dirCache, ttl: ttl, logger: logger}
}

// List returns directory records matching the query, normalized for
// display. An empty query returns the whole directory.
func (s *CustomerService) List(ctx context.Context, query string) ([]customer.Customer, error) {
	all, err := s.load(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]customer.Customer, 0, len(all))
	for i := range all {
		if all[i].Matches(query) {
			out = append(out, all[i])
		}
	}
	return out, nil
}

// Get returns one directory record by document ID.
func (s *CustomerService) Get(ctx context.Context, id string) (*customer.Customer, error) {
	doc, err := s.store.GetDocument(ctx, membersCollection, id)
	if err != nil {
		return nil, err
	}

	var c customer.Customer
	if err := json.Unmarshal(doc.Data, &c); err != nil {
		return nil, fmt.Errorf("unmarshal customer %s: %w", id, err)
	}
	c.ID = doc.ID
	c.Normalize()
	return &c, nil
}

// Invalidate drops the cached directory. Called by the sync service when a
// member document changes.
func (s *CustomerService) Invalidate(ctx context.Context) {
	if s.cache != nil {
		_ = s.cache.Delete(ctx, customerCacheKey)
	}
}

func (s *CustomerService) load(ctx context.Context) ([]customer.Customer, error) {
	if s.cache != nil {
		if data, ok, err := s.cache.Get(ctx, customerCacheKey); err == nil && ok {
			var cached []customer.Customer
			if err := json.Unmarshal(data, &cached); err == nil {
				return cached, nil
			}
		}
	}

	docs, err := s.store.ListDocuments(ctx, membersCollection)
	if err != nil {
		return nil, fmt.Errorf("list members: %w", err)
	}

	out := make([]customer.Customer, 0, len(docs))
	for _, doc := range docs {
		var c customer.Customer
		if err := json.Unmarshal(doc.Data, &c); err != nil {
			s.logger.Warn("skipping unreadable member document", "id", doc.ID, "error", err)
			continue
		}
		c.ID = doc.ID
		c.Normalize()
		out = append(out, c)
	}

	if s.cache != nil {
		if data, err := json.Marshal(out); err == nil {
			_ = s.cache.Set(ctx, customerCacheKey, data, s.ttl)
		}
	}
	return out, nil
}
