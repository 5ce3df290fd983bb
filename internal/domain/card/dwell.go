package card

import "time"

// DwellMode selects how a pipeline measures how long a card has been worked.
type DwellMode string

const (
	// DwellFromStageEntry measures days since the card entered its current
	// stage. Used by the lease and event pipelines for per-stage SLA badges.
	DwellFromStageEntry DwellMode = "stage_entry"
	// DwellCumulative measures days since the card was created, frozen at
	// the last update once the card reaches a terminal stage. Used by the
	// registration pipeline.
	DwellCumulative DwellMode = "cumulative"
)

// DwellDays returns the card's dwell time in whole days, never negative.
// terminal reports whether the card's current stage is terminal for its
// catalog; it only matters in cumulative mode.
func (c *Card) DwellDays(mode DwellMode, terminal bool, now time.Time) int {
	var start string
	end := now

	switch mode {
	case DwellCumulative:
		start = c.CreatedAt
		if terminal && !c.UpdatedAt.IsZero() {
			end = c.UpdatedAt
		}
	default:
		start = c.StageStartedAt
	}

	if start == "" {
		return 0
	}
	s, err := time.Parse(DateLayout, start)
	if err != nil {
		return 0
	}

	days := int(end.Sub(s).Hours() / 24)
	if days < 0 {
		return 0
	}
	return days
}
