package auth

import (
	"context"
	"errors"
	"strings"
)

var (
	ErrUnauthenticated = errors.New("auth: authentication required")
	ErrForbidden       = errors.New("auth: insufficient permissions")
)

type Role string

const RoleAdmin Role = "admin"

// Principal is the authenticated caller of an operation.
type Principal struct {
	Subject string
	Roles   []Role
}

func (p Principal) HasRole(role Role) bool {
	for _, r := range p.Roles {
		if strings.EqualFold(string(r), string(role)) {
			return true
		}
	}
	return false
}

type principalKey struct{}

func WithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, principalKey{}, p)
}

func PrincipalFromContext(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(principalKey{}).(Principal)
	return p, ok
}

// RequireRole returns ErrUnauthenticated without a principal and ErrForbidden when it lacks role.
func RequireRole(ctx context.Context, role Role) (Principal, error) {
	p, ok := PrincipalFromContext(ctx)
	if !ok {
		return Principal{}, ErrUnauthenticated
	}
	if !p.HasRole(role) {
		return Principal{}, ErrForbidden
	}
	return p, nil
}
