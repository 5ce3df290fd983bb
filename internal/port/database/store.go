// Package database defines the database store port (interface).
package database

import (
	"context"
	"encoding/json"
	"time"

	"github.com/daoteng/backoffice/internal/domain/announcement"
	"github.com/daoteng/backoffice/internal/domain/history"
	"github.com/daoteng/backoffice/internal/domain/user"
)

// Document is a schemaless record in a named collection. Data holds the
// document body as JSON; UpdatedAt is assigned by the store on every write
// and overrides any client-supplied value.
type Document struct {
	ID         string          `json:"id"`
	Collection string          `json:"collection"`
	Data       json.RawMessage `json:"data"`
	UpdatedAt  time.Time       `json:"updatedAt"`
}

// Store is the port interface for database operations.
type Store interface {
	// Documents
	ListDocuments(ctx context.Context, collection string) ([]Document, error)
	GetDocument(ctx context.Context, collection, id string) (*Document, error)
	// PutDocument creates or fully replaces a document and returns it with
	// the server-assigned UpdatedAt.
	PutDocument(ctx context.Context, collection, id string, data json.RawMessage) (*Document, error)
	// MergeDocument applies a partial update: keys present in patch replace
	// the stored keys, everything else is preserved.
	MergeDocument(ctx context.Context, collection, id string, patch json.RawMessage) (*Document, error)
	DeleteDocument(ctx context.Context, collection, id string) error

	// Users
	ListUsers(ctx context.Context) ([]user.User, error)
	GetUser(ctx context.Context, id string) (*user.User, error)
	GetUserByEmail(ctx context.Context, email string) (*user.User, error)
	CreateUser(ctx context.Context, u *user.User) error
	UpdateUser(ctx context.Context, id string, req user.UpdateRequest) (*user.User, error)
	UpdateUserPassword(ctx context.Context, id, passwordHash string) error

	// Announcements
	ListAnnouncements(ctx context.Context) ([]announcement.Announcement, error)
	CreateAnnouncement(ctx context.Context, a *announcement.Announcement) error

	// History
	ListHistory(ctx context.Context, limit int) ([]history.Entry, error)
	AppendHistory(ctx context.Context, e history.Entry) error
}
