package auth

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	domainauth "stayquote/internal/domain/auth"
)

var (
	ErrInvalidCredentials = errors.New("auth: invalid credentials")
	ErrAdminDisabled      = errors.New("auth: admin access is not configured")
)

type PasswordHasher interface {
	Hash(password string) (string, error)
	Compare(hash, password string) error
}

type TokenGenerator interface {
	NewToken() (string, error)
}

// Service authenticates the static admin bearer token against its stored hash.
type Service struct {
	Passwords PasswordHasher
	Tokens    TokenGenerator
	// AdminTokenHash is the bcrypt hash of the admin token; empty disables admin access.
	AdminTokenHash string
	Logger         *slog.Logger
}

func (s *Service) Authenticate(ctx context.Context, token string) (domainauth.Principal, error) {
	token = strings.TrimSpace(token)
	if s == nil || s.Passwords == nil || s.AdminTokenHash == "" {
		return domainauth.Principal{}, ErrAdminDisabled
	}
	if token == "" {
		return domainauth.Principal{}, ErrInvalidCredentials
	}
	if err := s.Passwords.Compare(s.AdminTokenHash, token); err != nil {
		if s.Logger != nil {
			s.Logger.DebugContext(ctx, "admin token rejected", "error", err)
		}
		return domainauth.Principal{}, ErrInvalidCredentials
	}
	return domainauth.Principal{Subject: "admin", Roles: []domainauth.Role{domainauth.RoleAdmin}}, nil
}

// IssueAdminToken creates a fresh token together with the hash to configure.
func (s *Service) IssueAdminToken() (token, hash string, err error) {
	if s == nil || s.Passwords == nil || s.Tokens == nil {
		return "", "", errors.New("auth: token issuing requires hasher and generator")
	}
	token, err = s.Tokens.NewToken()
	if err != nil {
		return "", "", err
	}
	hash, err = s.Passwords.Hash(token)
	if err != nil {
		return "", "", err
	}
	return token, hash, nil
}

// AdminOnly marks commands and queries that need the admin role.
type AdminOnly interface {
	AdminOnly()
}

// AdminPolicy authorizes bus messages: AdminOnly ones need an admin principal.
type AdminPolicy struct{}

func (AdminPolicy) Authorize(ctx context.Context, message any) error {
	if _, ok := message.(AdminOnly); !ok {
		return nil
	}
	_, err := domainauth.RequireRole(ctx, domainauth.RoleAdmin)
	return err
}
