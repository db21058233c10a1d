// Command devtoken mints a signed token for local testing.
//
//	JWT_SECRET=secret go run ./cmd/devtoken -account 42 -name Ann
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/mmynk/splitopus/internal/auth"
	"github.com/mmynk/splitopus/pkg/logging"
)

func main() {
	account := flag.String("account", "", "account id to put in the token")
	name := flag.String("name", "", "display name (defaults to the account id)")
	ttl := flag.Duration("ttl", 24*time.Hour, "token lifetime")
	flag.Parse()

	logging.Setup()

	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		slog.Error("JWT_SECRET is not set")
		os.Exit(1)
	}
	if *name == "" {
		*name = *account
	}

	token, err := auth.NewJWTManager(secret, *ttl).Generate(*account, *name)
	if err != nil {
		slog.Error("Failed to generate token", "error", err)
		os.Exit(1)
	}
	fmt.Println(token)
}
