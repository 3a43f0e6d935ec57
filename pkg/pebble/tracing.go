package pebble

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Default tracer name for pebble.
const defaultTracerName = "pebble"

// Span attribute keys.
const (
	attrCell    = attribute.Key("pebble.cell")
	attrKind    = attribute.Key("pebble.kind")
	attrManager = attribute.Key("pebble.manager")
)

// startConstruct opens the span covering one instance construction.
func (m *Manager) startConstruct(ctx context.Context, cell Cell) (context.Context, trace.Span) {
	return m.tracer.Start(ctx, "pebble.construct",
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(
			attrCell.String(cell.Name()),
			attrKind.String(cell.Kind().String()),
			attrManager.String(m.id),
		),
	)
}

func endConstruct(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End()
}
