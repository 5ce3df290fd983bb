package otel

import (
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

const meterName = "backoffice"

// Metrics holds the board metric instruments.
type Metrics struct {
	CardsCreated         metric.Int64Counter
	TransitionsProposed  metric.Int64Counter
	TransitionsCommitted metric.Int64Counter
	TransitionsCancelled metric.Int64Counter
	CommitFailures       metric.Int64Counter
	SnapshotsBroadcast   metric.Int64Counter
	RefreshDuration      metric.Float64Histogram
}

// NewMetrics creates all metric instruments.
func NewMetrics() (*Metrics, error) {
	meter := otel.Meter(meterName)
	m := &Metrics{}
	var err error

	m.CardsCreated, err = meter.Int64Counter("backoffice.cards.created",
		metric.WithDescription("Number of cards created"))
	if err != nil {
		return nil, err
	}

	m.TransitionsProposed, err = meter.Int64Counter("backoffice.transitions.proposed",
		metric.WithDescription("Number of stage transitions proposed"))
	if err != nil {
		return nil, err
	}

	m.TransitionsCommitted, err = meter.Int64Counter("backoffice.transitions.committed",
		metric.WithDescription("Number of stage transitions committed"))
	if err != nil {
		return nil, err
	}

	m.TransitionsCancelled, err = meter.Int64Counter("backoffice.transitions.cancelled",
		metric.WithDescription("Number of stage transitions cancelled"))
	if err != nil {
		return nil, err
	}

	m.CommitFailures, err = meter.Int64Counter("backoffice.transitions.commit_failures",
		metric.WithDescription("Number of transition commits that failed to persist"))
	if err != nil {
		return nil, err
	}

	m.SnapshotsBroadcast, err = meter.Int64Counter("backoffice.board.snapshots",
		metric.WithDescription("Number of board snapshots broadcast"))
	if err != nil {
		return nil, err
	}

	m.RefreshDuration, err = meter.Float64Histogram("backoffice.board.refresh_seconds",
		metric.WithDescription("Board refresh duration in seconds"))
	if err != nil {
		return nil, err
	}

	return m, nil
}
