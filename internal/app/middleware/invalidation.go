package middleware

import (
	"context"
	"log/slog"

	"stayquote/internal/app/commands"
)

// CatalogChange marks commands that add or remove blocked ranges, stay rules or seasons.
type CatalogChange interface {
	ChangesCatalog()
}

type Invalidator interface {
	Invalidate(ctx context.Context) error
}

// InvalidateOnCatalogChange drops cached availability after a catalog command succeeds.
// It must wrap Transaction so the cache is cleared only after commit.
func InvalidateOnCatalogChange(inv Invalidator, logger *slog.Logger) CommandMiddleware {
	if inv == nil {
		panic("middleware: invalidator required")
	}
	return func(next commands.Bus) commands.Bus {
		return commandFunc(func(ctx context.Context, cmd commands.Command) (any, error) {
			res, err := next.Dispatch(ctx, cmd)
			if err != nil {
				return nil, err
			}
			if _, ok := cmd.(CatalogChange); ok {
				if invErr := inv.Invalidate(ctx); invErr != nil && logger != nil {
					logger.WarnContext(ctx, "availability cache invalidation failed", "command", cmd.Key(), "error", invErr)
				}
			}
			return res, nil
		})
	}
}
