// Package service holds the lookup pipeline (identity resolution, record
// aggregation, record writing), the report loader and portal sign-in.
package service

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// DefaultCallTimeout bounds a single store call when none is configured.
const DefaultCallTimeout = 15 * time.Second

var tracer = otel.Tracer("github.com/dmehra2102/prod-golang-projects/healthportal/internal/service")

func withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		d = DefaultCallTimeout
	}
	return context.WithTimeout(ctx, d)
}

func recordSpanError(span trace.Span, err error) {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}
