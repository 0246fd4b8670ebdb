package db

import (
	"context"
	"fmt"

	"github.com/geocoder89/familyauth/internal/config"
	"github.com/geocoder89/familyauth/internal/domain/user"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PasswordHasher interface {
	Hash(plain string) (string, error)
}

// EnsureAdminUser creates the configured admin account once. An existing
// row with that email is left untouched.
func EnsureAdminUser(ctx context.Context, pool *pgxpool.Pool, cfg config.Config, hasher PasswordHasher) (bool, error) {
	if cfg.AdminEmail == "" || cfg.AdminPassword == "" {
		return false, nil
	}

	var exists bool

	err := pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM users WHERE email = $1)`, cfg.AdminEmail).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check admin: %w", err)
	}

	if exists {
		return false, nil
	}

	hash, err := hasher.Hash(cfg.AdminPassword)
	if err != nil {
		return false, fmt.Errorf("hash admin password: %w", err)
	}

	// a concurrent replica may have won the race
	tag, err := pool.Exec(ctx,
		`INSERT INTO users (email, password, role)
		VALUES ($1, $2, $3)
		ON CONFLICT (email) DO NOTHING`,
		cfg.AdminEmail, hash, user.RoleAdmin,
	)
	if err != nil {
		return false, fmt.Errorf("insert admin: %w", err)
	}

	return tag.RowsAffected() == 1, nil
}
