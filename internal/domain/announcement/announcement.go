// Package announcement defines internal company announcements shown on the
// dashboard and the announcements page.
package announcement

import (
	"errors"
	"sort"
	"time"
)

// Category is the announcement badge type.
type Category string

const (
	CategoryImportant Category = "重要"
	CategoryNotice    Category = "通知"
	CategoryUpdate    Category = "更新"
)

// ValidCategories is the set of accepted categories.
var ValidCategories = map[Category]bool{
	CategoryImportant: true,
	CategoryNotice:    true,
	CategoryUpdate:    true,
}

// TargetGroups are the audience tags an announcement may carry.
var TargetGroups = []string{"全體同仁", "營運", "會計", "遠端", "數位部"}

var (
	ErrTitleRequired   = errors.New("announcement title is required")
	ErrContentRequired = errors.New("announcement content is required")
	ErrInvalidCategory = errors.New("invalid announcement category")
)

// Announcement is one published announcement. Date is server-assigned on
// publish.
type Announcement struct {
	ID       string    `json:"id"`
	Category Category  `json:"category"`
	Title    string    `json:"title"`
	Content  string    `json:"content"`
	Author   string    `json:"author"`
	Targets  []string  `json:"targets,omitempty"`
	IsPinned bool      `json:"isPinned"`
	Date     time.Time `json:"date"`
}

// CreateRequest is the input for publishing an announcement.
type CreateRequest struct {
	Category Category `json:"category"`
	Title    string   `json:"title"`
	Content  string   `json:"content"`
	Targets  []string `json:"targets,omitempty"`
	IsPinned bool     `json:"isPinned"`
}

// Validate checks the request and defaults the category to notice.
func (r *CreateRequest) Validate() error {
	if r.Title == "" {
		return ErrTitleRequired
	}
	if r.Content == "" {
		return ErrContentRequired
	}
	if r.Category == "" {
		r.Category = CategoryNotice
	}
	if !ValidCategories[r.Category] {
		return ErrInvalidCategory
	}
	return nil
}

// Sort orders announcements for display: pinned first, then newest first.
func Sort(items []Announcement) {
	sort.SliceStable(items, func(i, j int) bool {
		if items[i].IsPinned != items[j].IsPinned {
			return items[i].IsPinned
		}
		return items[i].Date.After(items[j].Date)
	})
}
