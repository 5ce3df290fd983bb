package pipeline

import "github.com/daoteng/backoffice/internal/domain/card"

// Defaults returns the operator's three built-in pipelines: the lease case
// pipeline over the cases collection, the company-registration pipeline
// over the members collection, and the event pipeline over events.
func Defaults() []Definition {
	return []Definition{
		{
			Name:        "cases",
			Collection:  "cases",
			CatalogName: "lease",
			DwellMode:   card.DwellFromStageEntry,
			IDPrefix:    "L-",
			OverdueDays: 7,
		},
		{
			Name:        "registrations",
			Collection:  "members",
			CatalogName: "registration",
			DwellMode:   card.DwellCumulative,
			IDPrefix:    "R-",
			ProductLine: "工商登記",
			OverdueDays: 14,
		},
		{
			Name:        "events",
			Collection:  "events",
			CatalogName: "event",
			DwellMode:   card.DwellFromStageEntry,
			IDPrefix:    "E-",
			OverdueDays: 7,
		},
		{
			// Signed contracts are an archive, not a funnel; dwell-based
			// overdue tracking is off.
			Name:        "contracts",
			Collection:  "contracts",
			CatalogName: "contract",
			DwellMode:   card.DwellFromStageEntry,
			IDPrefix:    "C-",
		},
	}
}
