package middleware

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"stayquote/internal/app/commands"
	"stayquote/internal/app/queries"
)

const tracerName = "stayquote"

// Tracing opens a span per command. A nil tracer uses the global provider.
func Tracing(tracer trace.Tracer) CommandMiddleware {
	if tracer == nil {
		tracer = otel.Tracer(tracerName)
	}
	return func(next commands.Bus) commands.Bus {
		return commandFunc(func(ctx context.Context, cmd commands.Command) (any, error) {
			ctx, span := tracer.Start(ctx, "command "+cmd.Key(), trace.WithAttributes(commandAttributes(cmd)...))
			defer span.End()
			res, err := next.Dispatch(ctx, cmd)
			if err != nil {
				span.RecordError(err)
				span.SetStatus(codes.Error, err.Error())
			}
			return res, err
		})
	}
}

func commandAttributes(cmd commands.Command) []attribute.KeyValue {
	attrs := []attribute.KeyValue{
		attribute.String("bus.key", cmd.Key()),
		attribute.String("bus.scope", commands.Scope(cmd.Key())),
	}
	if _, ok := cmd.(CatalogChange); ok {
		attrs = append(attrs, attribute.Bool("catalog.change", true))
	}
	if c, ok := cmd.(IdempotentCommand); ok && c.IdempotencyKey() != "" {
		attrs = append(attrs, attribute.Bool("bus.idempotent", true))
	}
	return attrs
}

func QueryTracing(tracer trace.Tracer) QueryMiddleware {
	if tracer == nil {
		tracer = otel.Tracer(tracerName)
	}
	return func(next queries.Bus) queries.Bus {
		return queryFunc(func(ctx context.Context, q queries.Query) (any, error) {
			ctx, span := tracer.Start(ctx, "query "+q.Key(), trace.WithAttributes(
				attribute.String("bus.key", q.Key()),
				attribute.String("bus.scope", queries.Scope(q.Key())),
			))
			defer span.End()
			res, err := next.Ask(ctx, q)
			if err != nil {
				span.RecordError(err)
				span.SetStatus(codes.Error, err.Error())
			}
			return res, err
		})
	}
}
