package oteltrace

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/awemart/awemart/internal/observability"
)

type tracer struct{ t trace.Tracer }

// New returns a tracer backed by the global otel provider. Without an
// installed SDK provider the spans are no-ops, which is fine for tests.
func New(name string) observability.Tracer {
	if name == "" {
		name = "awemart"
	}
	return &tracer{t: otel.Tracer(name)}
}

func (t *tracer) Start(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return t.t.Start(ctx, name, trace.WithAttributes(attrs...))
}
