// Command tokengen mints bearer tokens signed with AUTH_JWT_SECRET, for operators and
// local development. Production tokens come from the identity provider.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"time"

	"github.com/spec-kit/support-desk/internal/auth"
	"github.com/spec-kit/support-desk/internal/config"
	"github.com/spec-kit/support-desk/internal/domain"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	if err := run(os.Args[1:], cfg.Auth, os.Stdout); err != nil {
		log.Fatal(err)
	}
}

func run(args []string, cfg config.AuthConfig, out io.Writer) error {
	fs := flag.NewFlagSet("tokengen", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	var caller domain.Caller
	var role string
	fs.StringVar(&caller.TenantID, "tenant", "", "tenant id (required)")
	fs.StringVar(&caller.TenantName, "tenant-name", "", "tenant display name")
	fs.StringVar(&caller.UserID, "user", "", "user id, stored as the subject claim")
	fs.StringVar(&caller.Name, "name", "", "caller name (required)")
	fs.StringVar(&caller.Email, "email", "", "caller email (required)")
	fs.StringVar(&role, "role", string(domain.SenderBusiness), "business or support")
	if err := fs.Parse(args); err != nil {
		return err
	}

	caller.Role = domain.SenderRole(strings.ToLower(strings.TrimSpace(role)))
	if !caller.Role.Valid() {
		return fmt.Errorf("unknown role %q", role)
	}
	if caller.TenantID == "" || caller.Name == "" || caller.Email == "" {
		return errors.New("-tenant, -name and -email are required")
	}

	token, expiresAt, err := auth.NewTokenManager(cfg.JWTSecret, cfg.AccessTokenTTLMinutes).GenerateToken(caller)
	if err != nil {
		return fmt.Errorf("sign token: %w", err)
	}
	_, err = fmt.Fprintf(out, "%s\n# expires %s\n", token, expiresAt.UTC().Format(time.RFC3339))
	return err
}
