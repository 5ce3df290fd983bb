// Package board implements the kanban view logic shared by all pipelines:
// partitioning cards into per-stage buckets, search/date filtering, and the
// drag gesture that turns a pointer drop into a stage-transition request.
package board

import (
	"strings"
	"time"

	"github.com/daoteng/backoffice/internal/domain/card"
	"github.com/daoteng/backoffice/internal/domain/stage"
)

// Bucket is one kanban column: a stage plus the cards currently in it, in
// source-list order.
type Bucket struct {
	Stage stage.Stage `json:"stage"`
	Cards []card.Card `json:"cards"`
}

// Index is the grouped view of a card list. Orphans are cards whose stage
// identifier is not in the catalog; they appear in no bucket and must be
// surfaced to the operator rather than silently dropped.
type Index struct {
	Buckets []Bucket    `json:"buckets"`
	Orphans []card.Card `json:"orphans,omitempty"`
}

// GroupByStage partitions cards into one bucket per catalog stage,
// preserving the relative order of the input. O(n) in the card count.
func GroupByStage(catalog *stage.Catalog, cards []card.Card) Index {
	idx := Index{Buckets: make([]Bucket, len(catalog.Stages))}
	for i, s := range catalog.Stages {
		idx.Buckets[i] = Bucket{Stage: s, Cards: []card.Card{}}
	}

	for _, c := range cards {
		pos := catalog.Position(c.Stage)
		if pos < 0 {
			idx.Orphans = append(idx.Orphans, c)
			continue
		}
		idx.Buckets[pos].Cards = append(idx.Buckets[pos].Cards, c)
	}
	return idx
}

// Filter narrows a card list before grouping. Zero values match everything.
type Filter struct {
	Query    string `json:"query,omitempty"`    // substring of title or customer
	Building string `json:"building,omitempty"` // exact building tag
	Created  string `json:"created,omitempty"`  // "today" or "month"
}

// Apply returns the cards matching the filter, preserving order.
func (f Filter) Apply(cards []card.Card, now time.Time) []card.Card {
	if f.Query == "" && f.Building == "" && f.Created == "" {
		return cards
	}

	today := now.Format(card.DateLayout)
	month := now.Format("2006-01")

	out := make([]card.Card, 0, len(cards))
	for _, c := range cards {
		if f.Building != "" && c.Building != f.Building {
			continue
		}
		if f.Query != "" &&
			!strings.Contains(c.Title, f.Query) &&
			!strings.Contains(c.Customer, f.Query) {
			continue
		}
		switch f.Created {
		case "today":
			if c.CreatedAt != today {
				continue
			}
		case "month":
			if !strings.HasPrefix(c.CreatedAt, month) {
				continue
			}
		}
		out = append(out, c)
	}
	return out
}
