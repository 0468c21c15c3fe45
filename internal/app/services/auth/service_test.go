package auth

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainauth "stayquote/internal/domain/auth"
)

type plainHasher struct{}

func (plainHasher) Hash(password string) (string, error) { return "hashed:" + password, nil }

func (plainHasher) Compare(hash, password string) error {
	if hash != "hashed:"+password {
		return errors.New("mismatch")
	}
	return nil
}

type fixedTokens string

func (f fixedTokens) NewToken() (string, error) { return string(f), nil }

func TestAuthenticate(t *testing.T) {
	svc := &Service{Passwords: plainHasher{}, AdminTokenHash: "hashed:s3cret"}

	p, err := svc.Authenticate(context.Background(), " s3cret ")
	require.NoError(t, err)
	assert.True(t, p.HasRole(domainauth.RoleAdmin))

	_, err = svc.Authenticate(context.Background(), "guess")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = (&Service{Passwords: plainHasher{}}).Authenticate(context.Background(), "s3cret")
	assert.ErrorIs(t, err, ErrAdminDisabled)
}

func TestIssueAdminTokenRoundTrips(t *testing.T) {
	svc := &Service{Passwords: plainHasher{}, Tokens: fixedTokens("tok")}
	token, hash, err := svc.IssueAdminToken()
	require.NoError(t, err)
	assert.Equal(t, "tok", token)

	svc.AdminTokenHash = hash
	_, err = svc.Authenticate(context.Background(), token)
	assert.NoError(t, err)
}

type adminCommand struct{}

func (adminCommand) AdminOnly() {}

func TestAdminPolicy(t *testing.T) {
	policy := AdminPolicy{}
	assert.NoError(t, policy.Authorize(context.Background(), struct{}{}))
	assert.ErrorIs(t, policy.Authorize(context.Background(), adminCommand{}), domainauth.ErrUnauthenticated)

	ctx := domainauth.WithPrincipal(context.Background(), domainauth.Principal{Roles: []domainauth.Role{domainauth.RoleAdmin}})
	assert.NoError(t, policy.Authorize(ctx, adminCommand{}))
}
