package middleware

import (
	"context"
	"fmt"

	"stayquote/internal/app/commands"
	"stayquote/internal/app/queries"
	domainauth "stayquote/internal/domain/auth"
)

type Authorizer interface {
	Authorize(ctx context.Context, message any) error
}

// DeniedError names the message and caller a policy refused. Unwrap keeps the
// policy's sentinel so callers can still tell 401 from 403.
type DeniedError struct {
	Key     string
	Subject string
	Err     error
}

func (e *DeniedError) Error() string {
	subject := e.Subject
	if subject == "" {
		subject = "anonymous caller"
	}
	return fmt.Sprintf("%s refused for %s: %v", e.Key, subject, e.Err)
}

func (e *DeniedError) Unwrap() error { return e.Err }

func authorize(ctx context.Context, a Authorizer, key string, message any) error {
	err := a.Authorize(ctx, message)
	if err == nil {
		return nil
	}
	denied := &DeniedError{Key: key, Err: err}
	if p, ok := domainauth.PrincipalFromContext(ctx); ok {
		denied.Subject = p.Subject
	}
	return denied
}

func Authorization(a Authorizer) CommandMiddleware {
	if a == nil {
		panic("middleware: authorizer required")
	}
	return func(next commands.Bus) commands.Bus {
		return commandFunc(func(ctx context.Context, cmd commands.Command) (any, error) {
			if err := authorize(ctx, a, cmd.Key(), cmd); err != nil {
				return nil, err
			}
			return next.Dispatch(ctx, cmd)
		})
	}
}

func QueryAuthorization(a Authorizer) QueryMiddleware {
	if a == nil {
		panic("middleware: authorizer required")
	}
	return func(next queries.Bus) queries.Bus {
		return queryFunc(func(ctx context.Context, q queries.Query) (any, error) {
			if err := authorize(ctx, a, q.Key(), q); err != nil {
				return nil, err
			}
			return next.Ask(ctx, q)
		})
	}
}
