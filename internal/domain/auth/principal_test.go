package auth

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequireRole(t *testing.T) {
	_, err := RequireRole(context.Background(), RoleAdmin)
	assert.ErrorIs(t, err, ErrUnauthenticated)

	ctx := WithPrincipal(context.Background(), Principal{Subject: "viewer"})
	_, err = RequireRole(ctx, RoleAdmin)
	assert.ErrorIs(t, err, ErrForbidden)

	ctx = WithPrincipal(context.Background(), Principal{Subject: "admin", Roles: []Role{"ADMIN"}})
	p, err := RequireRole(ctx, RoleAdmin)
	require.NoError(t, err)
	assert.Equal(t, "admin", p.Subject)
}
