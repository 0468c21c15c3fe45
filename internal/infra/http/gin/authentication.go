package ginserver

import (
	"log/slog"
	"strings"

	gin "github.com/gin-gonic/gin"

	"stayquote/internal/app/services/auth"
	domainauth "stayquote/internal/domain/auth"
)

// AdminAuth resolves the bearer token into an admin principal on the request context.
// Requests without a valid token are rejected before reaching a handler.
type AdminAuth struct {
	Service *auth.Service
	Logger  *slog.Logger
}

func (m AdminAuth) Handle(c *gin.Context) {
	token := extractBearerToken(c.GetHeader("Authorization"))
	if token == "" {
		respondWithError(c, m.Logger, domainauth.ErrUnauthenticated)
		return
	}
	principal, err := m.Service.Authenticate(c.Request.Context(), token)
	if err != nil {
		respondWithError(c, m.Logger, err)
		return
	}
	c.Request = c.Request.WithContext(domainauth.WithPrincipal(c.Request.Context(), principal))
	c.Next()
}

func extractBearerToken(header string) string {
	if len(header) < 7 || !strings.EqualFold(header[:7], "bearer ") {
		return ""
	}
	return strings.TrimSpace(header[7:])
}
