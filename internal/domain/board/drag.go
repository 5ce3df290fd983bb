package board

import (
	"math"

	"github.com/daoteng/backoffice/internal/domain/card"
	"github.com/daoteng/backoffice/internal/domain/stage"
)

// ActivationDistance is the pointer travel (in layout units) below which a
// gesture stays a click. Clicks open the detail editor; only real drags may
// move a card.
const ActivationDistance = 5

// PendingMove is a transition request raised by a completed drag. It is not
// a committed change: the confirmation gate decides its fate.
type PendingMove struct {
	CardID  string `json:"card_id"`
	ToStage string `json:"to_stage"`
}

// DragSession interprets one pointer-drag gesture over a board. It never
// mutates cards; its only output is a PendingMove on a successful drop.
type DragSession struct {
	catalog *stage.Catalog
	cards   []card.Card

	cardID   string
	originX  float64
	originY  float64
	active   bool
	overDest string
	hasDest  bool
}

// NewDragSession starts tracking a pointer press on the given card.
// cards is the board's current card list, used to resolve drop targets.
func NewDragSession(catalog *stage.Catalog, cards []card.Card, cardID string, x, y float64) *DragSession {
	return &DragSession{catalog: catalog, cards: cards, cardID: cardID, originX: x, originY: y}
}

// Move feeds a pointer sample. The session activates once travel from the
// press origin exceeds ActivationDistance.
func (d *DragSession) Move(x, y float64) {
	if d.active {
		return
	}
	if math.Hypot(x-d.originX, y-d.originY) > ActivationDistance {
		d.active = true
	}
}

// Active reports whether the gesture has crossed the drag threshold.
func (d *DragSession) Active() bool { return d.active }

// Over resolves the currently hovered drop target: a stage container ID
// resolves directly, another card resolves to that card's current stage.
// Unknown targets clear the candidate destination.
func (d *DragSession) Over(targetID string) {
	if targetID == "" {
		d.hasDest = false
		return
	}
	if d.catalog.Contains(targetID) {
		d.overDest = targetID
		d.hasDest = true
		return
	}
	for _, c := range d.cards {
		if c.ID == targetID {
			d.overDest = c.Stage
			d.hasDest = d.catalog.Contains(c.Stage)
			return
		}
	}
	d.hasDest = false
}

// Candidate returns the destination stage currently under the pointer, for
// highlight purposes. ok is false when nothing valid is hovered.
func (d *DragSession) Candidate() (dest string, ok bool) {
	return d.overDest, d.hasDest
}

// Drop completes the gesture. It returns a PendingMove only when the drag
// activated, a valid destination was hovered, and the destination differs
// from the card's current stage; otherwise the gesture is discarded with no
// side effect.
func (d *DragSession) Drop() (PendingMove, bool) {
	defer d.reset()

	if !d.active || !d.hasDest {
		return PendingMove{}, false
	}
	for _, c := range d.cards {
		if c.ID == d.cardID {
			if c.Stage == d.overDest {
				return PendingMove{}, false
			}
			return PendingMove{CardID: d.cardID, ToStage: d.overDest}, true
		}
	}
	return PendingMove{}, false
}

// Cancel abandons the gesture; state resets exactly as for a drop with no
// valid destination.
func (d *DragSession) Cancel() {
	d.reset()
}

func (d *DragSession) reset() {
	d.active = false
	d.hasDest = false
	d.overDest = ""
}

// ResolveDrop is the stateless form used by the HTTP transition endpoint:
// it resolves a drop target to a destination stage and applies the no-op
// guard, without pointer tracking.
func ResolveDrop(catalog *stage.Catalog, cards []card.Card, cardID, targetID string) (PendingMove, bool) {
	dest := ""
	if catalog.Contains(targetID) {
		dest = targetID
	} else {
		for _, c := range cards {
			if c.ID == targetID {
				dest = c.Stage
				break
			}
		}
	}
	if dest == "" || !catalog.Contains(dest) {
		return PendingMove{}, false
	}
	for _, c := range cards {
		if c.ID == cardID {
			if c.Stage == dest {
				return PendingMove{}, false
			}
			return PendingMove{CardID: cardID, ToStage: dest}, true
		}
	}
	return PendingMove{}, false
}
