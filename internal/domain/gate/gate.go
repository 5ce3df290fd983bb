// Package gate implements the transition confirmation gate: the
// human-in-the-loop checkpoint between a drag gesture and a persisted stage
// change. A gate holds at most one pending request at a time.
package gate

import (
	"errors"
	"sync"

	"github.com/daoteng/backoffice/internal/domain/board"
	"github.com/daoteng/backoffice/internal/domain/card"
	"github.com/daoteng/backoffice/internal/domain/stage"
)

var (
	ErrAlreadyPending = errors.New("a transition is already pending")
	ErrNothingPending = errors.New("no transition is pending")
	ErrWrongCard      = errors.New("pending transition is for a different card")
)

// State is the gate's lifecycle position.
type State string

const (
	StateIdle    State = "idle"
	StatePending State = "pending"
)

// Prompt is what the operator sees before deciding: the destination stage's
// compliance checklist and the pre-filled, editable notification draft. The
// checklist is advisory; checked state is neither validated nor persisted.
type Prompt struct {
	CardID    string      `json:"card_id"`
	CardTitle string      `json:"card_title"`
	FromStage string      `json:"from_stage"`
	ToStage   stage.Stage `json:"to_stage"`
	Checklist []string    `json:"checklist"`
	Draft     string      `json:"draft,omitempty"`
}

// Gate serializes transition confirmation for one board. All methods are
// safe for concurrent use; only one request may be pending at a time.
type Gate struct {
	mu      sync.Mutex
	catalog *stage.Catalog
	pending *Prompt
}

// New creates a gate bound to a stage catalog.
func New(catalog *stage.Catalog) *Gate {
	return &Gate{catalog: catalog}
}

// State returns the gate's current state.
func (g *Gate) State() State {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.pending != nil {
		return StatePending
	}
	return StateIdle
}

// Propose moves the gate to pending for the given card and move, rendering
// the checklist and notification draft. Fails when a request is already
// pending or the destination stage is unknown.
func (g *Gate) Propose(c *card.Card, move board.PendingMove) (*Prompt, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.pending != nil {
		return nil, ErrAlreadyPending
	}

	dest, err := g.catalog.Lookup(move.ToStage)
	if err != nil {
		return nil, err
	}

	draft, err := g.catalog.RenderMessage(dest.ID, c.Title, c.Customer)
	if err != nil {
		return nil, err
	}

	g.pending = &Prompt{
		CardID:    c.ID,
		CardTitle: c.Title,
		FromStage: c.Stage,
		ToStage:   dest,
		Checklist: dest.Checks,
		Draft:     draft,
	}
	return g.pending, nil
}

// Confirm resolves the pending request for cardID and returns the consumed
// prompt. Read-and-clear happens under one lock, so a concurrent Propose
// cannot slip in between. The caller persists the stage change; if that write
// fails the caller must call Reinstate so the operator can retry or cancel
// explicitly.
func (g *Gate) Confirm(cardID string) (*Prompt, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.pending == nil {
		return nil, ErrNothingPending
	}
	if g.pending.CardID != cardID {
		return nil, ErrWrongCard
	}

	p := g.pending
	g.pending = nil
	return p, nil
}

// Reinstate restores a prompt after a failed commit write, so the gate
// returns to pending rather than pretending the move succeeded.
func (g *Gate) Reinstate(p *Prompt) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.pending = p
}

// Cancel discards the pending request with no side effect.
func (g *Gate) Cancel(cardID string) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.pending == nil {
		return ErrNothingPending
	}
	if g.pending.CardID != cardID {
		return ErrWrongCard
	}
	g.pending = nil
	return nil
}

// Pending returns the current prompt, or nil when idle.
func (g *Gate) Pending() *Prompt {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.pending
}
