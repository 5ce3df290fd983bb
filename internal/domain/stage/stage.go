// Package stage defines pipeline stage catalogs: the ordered set of stages a
// card moves through, each with a compliance checklist and an optional
// customer-notification template.
package stage

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrNameRequired    = errors.New("catalog name is required")
	ErrNoStages        = errors.New("catalog must have at least one stage")
	ErrStageMissingID  = errors.New("stage id is required")
	ErrStageNoTitle    = errors.New("stage title is required")
	ErrDuplicateStage  = errors.New("duplicate stage id")
	ErrUnknownStage    = errors.New("unknown stage id")
	ErrUnknownCatalog  = errors.New("unknown catalog")
	ErrEmptyTerminalID = errors.New("terminal stage id not in catalog")
)

// PlaceholderName is substituted with the customer name when a stage's
// message template is rendered.
const PlaceholderName = "{username}"

// Stage is one step of a pipeline. Stages are immutable once loaded.
type Stage struct {
	ID     string   `json:"id" yaml:"id"`
	Title  string   `json:"title" yaml:"title"`
	Hint   string   `json:"hint" yaml:"hint"`
	Checks []string `json:"checks" yaml:"checks"`
	// MessageTemplate is the pre-filled outbound notification for entering
	// this stage. May contain PlaceholderName. Empty means the pipeline's
	// shared template (if any) is used instead.
	MessageTemplate string `json:"message_template,omitempty" yaml:"message_template,omitempty"`
}

// Catalog is the ordered, process-wide stage definition for one pipeline.
type Catalog struct {
	Name   string  `json:"name" yaml:"name"`
	Stages []Stage `json:"stages" yaml:"stages"`
	// TerminalIDs are stages in which dwell time stops accruing.
	TerminalIDs []string `json:"terminal_ids,omitempty" yaml:"terminal_ids,omitempty"`
	// SharedTemplate is rendered for stages without their own template.
	// The placeholder is substituted with the card title rather than the
	// customer name on pipelines that use it.
	SharedTemplate string `json:"shared_template,omitempty" yaml:"shared_template,omitempty"`

	index map[string]int
}

// Validate checks the catalog for structural correctness and builds the
// internal stage index. Must be called once before any lookup.
func (c *Catalog) Validate() error {
	if c.Name == "" {
		return ErrNameRequired
	}
	if len(c.Stages) == 0 {
		return ErrNoStages
	}

	c.index = make(map[string]int, len(c.Stages))
	for i, s := range c.Stages {
		if s.ID == "" {
			return fmt.Errorf("stage %d: %w", i, ErrStageMissingID)
		}
		if s.Title == "" {
			return fmt.Errorf("stage %q: %w", s.ID, ErrStageNoTitle)
		}
		if _, dup := c.index[s.ID]; dup {
			return fmt.Errorf("stage %q: %w", s.ID, ErrDuplicateStage)
		}
		c.index[s.ID] = i
	}

	for _, id := range c.TerminalIDs {
		if _, ok := c.index[id]; !ok {
			return fmt.Errorf("terminal %q: %w", id, ErrEmptyTerminalID)
		}
	}
	return nil
}

// First returns the catalog's first stage. New cards default to it.
func (c *Catalog) First() Stage {
	return c.Stages[0]
}

// Contains reports whether id is a stage of this catalog.
func (c *Catalog) Contains(id string) bool {
	_, ok := c.index[id]
	return ok
}

// Lookup returns the stage with the given id.
func (c *Catalog) Lookup(id string) (Stage, error) {
	i, ok := c.index[id]
	if !ok {
		return Stage{}, fmt.Errorf("%w: %s", ErrUnknownStage, id)
	}
	return c.Stages[i], nil
}

// Position returns the zero-based position of id in the catalog, or -1.
func (c *Catalog) Position(id string) int {
	i, ok := c.index[id]
	if !ok {
		return -1
	}
	return i
}

// IsTerminal reports whether id is one of the catalog's terminal stages.
func (c *Catalog) IsTerminal(id string) bool {
	for _, t := range c.TerminalIDs {
		if t == id {
			return true
		}
	}
	return false
}

// RenderMessage builds the notification draft for entering stage id.
// A stage-level template wins; the placeholder is substituted with
// customerName. When only the shared template exists, the placeholder is
// substituted with cardTitle and the stage title is appended per the shared
// format. Returns "" when the stage defines no message at all.
func (c *Catalog) RenderMessage(id, cardTitle, customerName string) (string, error) {
	s, err := c.Lookup(id)
	if err != nil {
		return "", err
	}
	if s.MessageTemplate != "" {
		return strings.ReplaceAll(s.MessageTemplate, PlaceholderName, customerName), nil
	}
	if c.SharedTemplate != "" {
		msg := strings.ReplaceAll(c.SharedTemplate, PlaceholderName, cardTitle)
		return strings.ReplaceAll(msg, "{stage}", s.Title), nil
	}
	return "", nil
}
