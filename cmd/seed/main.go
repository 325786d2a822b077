// Package main implements a standalone seed script that populates the
// identity database with test accounts. Passwords are hashed with the same
// bcrypt cost the service uses, so seeded accounts can log in through the
// normal endpoints.
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/clienthub/identity/internal/config"
	"github.com/clienthub/identity/internal/service"
)

type accountDef struct {
	email    string
	name     string
	password string
	status   string
}

var accounts = []accountDef{
	{email: "alice@example.com", name: "Alice Smith", password: "Password123", status: "active"},
	{email: "bob@example.com", name: "Bob Jones", password: "Password123", status: "active"},
	{email: "carol@example.com", name: "Carol White", password: "Password123", status: "active"},
	{email: "suspended@example.com", name: "Sam Suspended", password: "Password123", status: "suspended"},
}

func main() {
	if err := run(); err != nil {
		log.Fatalf("seed failed: %v", err)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	pgCfg := cfg.PostgresConfig()
	pool, err := pgxpool.New(ctx, pgCfg.DSN())
	if err != nil {
		return fmt.Errorf("connect to postgres: %w", err)
	}
	defer pool.Close()

	if err := pool.Ping(ctx); err != nil {
		return fmt.Errorf("ping postgres: %w", err)
	}

	for _, def := range accounts {
		hashed, err := service.HashPassword(def.password)
		if err != nil {
			return fmt.Errorf("hash password for %s: %w", def.email, err)
		}

		tag, err := pool.Exec(ctx, `
			INSERT INTO accounts (id, email, name, password_hash, status)
			VALUES ($1, $2, $3, $4, $5)
			ON CONFLICT (email) DO NOTHING`,
			uuid.NewString(), def.email, def.name, hashed, def.status,
		)
		if err != nil {
			return fmt.Errorf("insert account %s: %w", def.email, err)
		}

		if tag.RowsAffected() == 0 {
			fmt.Fprintf(os.Stdout, "skipped %s (already exists)\n", def.email)
			continue
		}
		fmt.Fprintf(os.Stdout, "seeded %s (%s)\n", def.email, def.status)
	}

	return nil
}
