package collect

import (
	"context"

	"github.com/replicatedhq/pulsar-diag/pkg/constants"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// startUnitSpan opens the span of one collector step against unit.
func startUnitSpan(ctx context.Context, collector string, unit string) (context.Context, trace.Span) {
	ctx, span := otel.Tracer(constants.LIB_TRACER_NAME).Start(ctx, collector+" "+unit)
	span.SetAttributes(
		attribute.String("type", constants.UNIT_SPAN_TYPE),
		attribute.String("collector", collector),
		attribute.String("unit", unit),
	)
	return ctx, span
}

func spanError(span trace.Span, err error) {
	if err == nil {
		return
	}
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}
