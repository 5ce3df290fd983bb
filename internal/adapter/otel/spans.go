package otel

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "backoffice"

// StartTransitionSpan starts a span covering a stage-transition commit.
func StartTransitionSpan(ctx context.Context, pipeline, cardID, fromStage, toStage string) (context.Context, trace.Span) {
	return otel.Tracer(tracerName).Start(ctx, "transition",
		trace.WithAttributes(
			attribute.String("pipeline", pipeline),
			attribute.String("card.id", cardID),
			attribute.String("stage.from", fromStage),
			attribute.String("stage.to", toStage),
		),
	)
}

// StartRefreshSpan starts a span covering a collection re-read after a
// change event.
func StartRefreshSpan(ctx context.Context, collection string) (context.Context, trace.Span) {
	return otel.Tracer(tracerName).Start(ctx, "refresh",
		trace.WithAttributes(
			attribute.String("collection", collection),
		),
	)
}

// StartBroadcastSpan starts a span covering a snapshot broadcast.
func StartBroadcastSpan(ctx context.Context, pipeline string, clients int) (context.Context, trace.Span) {
	return otel.Tracer(tracerName).Start(ctx, "broadcast",
		trace.WithAttributes(
			attribute.String("pipeline", pipeline),
			attribute.Int("clients", clients),
		),
	)
}
