package middleware

import (
	"context"
	"log/slog"

	"stayquote/internal/app/commands"
	"stayquote/internal/app/outbox"
)

// Discarder is implemented by outboxes that buffer records outside the transaction.
type Discarder interface {
	Discard(ctx context.Context)
}

// OutboxFlush publishes what a command recorded once it has committed.
// A failed command discards its buffered records. A failed flush is logged
// and the command still succeeds, since its writes are already durable.
func OutboxFlush(box outbox.Outbox, logger *slog.Logger) CommandMiddleware {
	if box == nil {
		panic("middleware: outbox required")
	}
	if logger == nil {
		logger = slog.Default()
	}
	discard, _ := box.(Discarder)
	return func(next commands.Bus) commands.Bus {
		return commandFunc(func(ctx context.Context, cmd commands.Command) (any, error) {
			ctx = outbox.WithBatch(ctx)
			res, err := next.Dispatch(ctx, cmd)
			if err != nil {
				if discard != nil {
					discard.Discard(ctx)
				}
				return nil, err
			}
			if err := box.Flush(ctx); err != nil {
				logger.WarnContext(ctx, "outbox flush failed after commit", "command", cmd.Key(), "scope", commands.Scope(cmd.Key()), "error", err)
			}
			return res, nil
		})
	}
}
