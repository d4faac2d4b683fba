package main

import (
	"context"
	"flag"
	"log/slog"
	"time"
	"tips-content-service/internal/middlewares"
)

// Generates a long-lived admin token for scripting against the protected routes.
func main() {
	user := flag.String("user", "content-admin", "username embedded in the token")
	key := flag.String("key", middlewares.SigningKey, "JWT signing key")
	flag.Parse()

	token, expiresAt, err := middlewares.GenerateToken(context.Background(), []byte(*key), 0, *user, []string{"admin"})
	if err != nil {
		slog.Error(err.Error())
		return
	}

	slog.Info(token, "expiresAt", expiresAt.Format(time.RFC3339))
}
