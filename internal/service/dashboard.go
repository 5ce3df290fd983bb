package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/daoteng/backoffice/internal/domain/announcement"
	"github.com/daoteng/backoffice/internal/domain/board"
)

// DashboardService aggregates the landing-page numbers across pipelines.
type DashboardService struct {
	boards *BoardService
	store  announcementLister
}

type announcementLister interface {
	ListAnnouncements(ctx context.Context) ([]announcement.Announcement, error)
}

// NewDashboardService creates the dashboard aggregator.
func NewDashboardService(boards *BoardService, store announcementLister) *DashboardService {
	return &DashboardService{boards: boards, store: store}
}

// PipelineSummary is one pipeline's dashboard row.
type PipelineSummary struct {
	Name     string `json:"name"`
	Active   int    `json:"active"`
	Terminal int    `json:"terminal"`
	Overdue  int    `json:"overdue"`
}

// BuildingRevenue is the monthly tax-inclusive rent total for one building.
type BuildingRevenue struct {
	Building string `json:"building"`
	Cards    int    `json:"cards"`
	Monthly  int64  `json:"monthlyRentInclTax"`
	Total    int64  `json:"totalContractAmount"`
}

// Summary is the dashboard payload.
type Summary struct {
	Pipelines     []PipelineSummary           `json:"pipelines"`
	Buildings     []BuildingRevenue           `json:"buildings"`
	OverdueCards  []OverdueCard               `json:"overdueCards"`
	Announcements []announcement.Announcement `json:"announcements"`
}

// OverdueCard is a card whose dwell exceeds its pipeline's threshold.
type OverdueCard struct {
	Pipeline  string `json:"pipeline"`
	CardID    string `json:"cardId"`
	Title     string `json:"title"`
	Stage     string `json:"stage"`
	DwellDays int    `json:"dwellDays"`
}

// Summary computes the dashboard aggregates: per-pipeline counts, per-building
// rent totals over the lease pipeline, overdue cards, and the announcement
// feed (pinned first).
func (s *DashboardService) Summary(ctx context.Context) (*Summary, error) {
	now := time.Now()
	out := &Summary{}
	buildings := make(map[string]*BuildingRevenue)

	for _, def := range s.boards.Pipelines() {
		catalog, err := s.boards.Catalog(def.Name)
		if err != nil {
			return nil, err
		}
		cards, err := s.boards.ListCards(ctx, def.Name, board.Filter{})
		if err != nil {
			return nil, fmt.Errorf("pipeline %s: %w", def.Name, err)
		}

		row := PipelineSummary{Name: def.Name}
		for i := range cards {
			c := &cards[i]
			terminal := catalog.IsTerminal(c.Stage)
			if terminal {
				row.Terminal++
			} else {
				row.Active++
			}

			dwell := c.DwellDays(def.DwellMode, terminal, now)
			if !terminal && def.OverdueDays > 0 && dwell >= def.OverdueDays {
				row.Overdue++
				out.OverdueCards = append(out.OverdueCards, OverdueCard{
					Pipeline:  def.Name,
					CardID:    c.ID,
					Title:     c.Title,
					Stage:     c.Stage,
					DwellDays: dwell,
				})
			}

			if c.Building != "" {
				b, ok := buildings[c.Building]
				if !ok {
					b = &BuildingRevenue{Building: c.Building}
					buildings[c.Building] = b
				}
				b.Cards++
				b.Monthly += c.RentInclTax
				b.Total += c.TotalAmount
			}
		}
		out.Pipelines = append(out.Pipelines, row)
	}

	names := make([]string, 0, len(buildings))
	for name := range buildings {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		out.Buildings = append(out.Buildings, *buildings[name])
	}

	anns, err := s.store.ListAnnouncements(ctx)
	if err != nil {
		return nil, fmt.Errorf("list announcements: %w", err)
	}
	announcement.Sort(anns)
	out.Announcements = anns

	return out, nil
}
