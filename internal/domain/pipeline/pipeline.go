// Package pipeline binds the generic board engine to a concrete business
// pipeline: which document collection it mirrors, which stage catalog it
// follows, how dwell time is measured, and how new card IDs are prefixed.
package pipeline

import (
	"errors"
	"fmt"

	"github.com/daoteng/backoffice/internal/domain/card"
)

var (
	ErrUnknownPipeline = errors.New("unknown pipeline")
	ErrNameRequired    = errors.New("pipeline name is required")
	ErrNoCollection    = errors.New("pipeline collection is required")
	ErrNoCatalog       = errors.New("pipeline catalog is required")
	ErrDuplicateName   = errors.New("duplicate pipeline name")
)

// Definition configures one pipeline instance of the board engine.
type Definition struct {
	// Name is the API path segment and registry key.
	Name string `json:"name" yaml:"name"`
	// Collection is the backing document collection.
	Collection string `json:"collection" yaml:"collection"`
	// CatalogName selects the stage catalog from the stage registry.
	CatalogName string `json:"catalog" yaml:"catalog"`
	// DwellMode selects per-stage or cumulative dwell measurement.
	DwellMode card.DwellMode `json:"dwellMode" yaml:"dwell_mode"`
	// IDPrefix prefixes generated card identifiers, e.g. "L-".
	IDPrefix string `json:"idPrefix" yaml:"id_prefix"`
	// ProductLine, when set, restricts the mirrored documents to those
	// whose productLines array contains it, and new cards created through
	// the pipeline are tagged with it.
	ProductLine string `json:"productLine,omitempty" yaml:"product_line,omitempty"`
	// OverdueDays is the dwell threshold for the dashboard overdue badge
	// and the overdue monitor. Zero or negative disables overdue tracking
	// for the pipeline.
	OverdueDays int `json:"overdueDays" yaml:"overdue_days"`
}

// Validate checks that the definition is internally consistent.
func (d Definition) Validate() error {
	if d.Name == "" {
		return ErrNameRequired
	}
	if d.Collection == "" {
		return fmt.Errorf("%w: %s", ErrNoCollection, d.Name)
	}
	if d.CatalogName == "" {
		return fmt.Errorf("%w: %s", ErrNoCatalog, d.Name)
	}
	switch d.DwellMode {
	case card.DwellFromStageEntry, card.DwellCumulative:
	default:
		return fmt.Errorf("pipeline %s: unknown dwell mode %q", d.Name, d.DwellMode)
	}
	return nil
}

// Matches reports whether a card belongs to this pipeline. Pipelines
// without a product line accept every card in their collection.
func (d Definition) Matches(c *card.Card) bool {
	if d.ProductLine == "" {
		return true
	}
	for _, line := range c.ProductLines {
		if line == d.ProductLine {
			return true
		}
	}
	return false
}

// Registry holds the configured pipelines keyed by name.
type Registry struct {
	byName map[string]Definition
	order  []string
}

// NewRegistry validates the definitions and builds a registry.
func NewRegistry(defs []Definition) (*Registry, error) {
	r := &Registry{byName: make(map[string]Definition, len(defs))}
	for _, d := range defs {
		if err := d.Validate(); err != nil {
			return nil, err
		}
		if _, ok := r.byName[d.Name]; ok {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateName, d.Name)
		}
		r.byName[d.Name] = d
		r.order = append(r.order, d.Name)
	}
	return r, nil
}

// Get returns the pipeline definition with the given name.
func (r *Registry) Get(name string) (Definition, error) {
	d, ok := r.byName[name]
	if !ok {
		return Definition{}, fmt.Errorf("%w: %s", ErrUnknownPipeline, name)
	}
	return d, nil
}

// All returns the definitions in registration order.
func (r *Registry) All() []Definition {
	out := make([]Definition, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.byName[name])
	}
	return out
}
