// Command admintoken generates an admin bearer token and the bcrypt hash to put in ADMIN_TOKEN_HASH.
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"

	"stayquote/internal/app/services/auth"
	"stayquote/internal/infra/obs"
	"stayquote/internal/infra/security"
)

func main() {
	cost := flag.Int("cost", 0, "bcrypt cost (0 uses the library default)")
	size := flag.Int("bytes", 0, "random bytes per token (0 uses 32)")
	flag.Parse()

	logger := obs.NewLogger(os.Getenv("APP_ENV"))
	svc := &auth.Service{
		Passwords: security.BcryptHasher{Cost: *cost},
		Tokens:    security.RandomTokenGenerator{Size: *size},
		Logger:    logger,
	}
	token, hash, err := svc.IssueAdminToken()
	if err != nil {
		logger.Error("token generation failed", slog.Any("error", err))
		os.Exit(1)
	}
	fmt.Printf("ADMIN_TOKEN=%s\nADMIN_TOKEN_HASH=%s\n", token, hash)
}
