package repository

import (
	"context"
	"time"

	"github.com/clienthub/identity/internal/domain"
)

// AccountRepository defines the interface for account persistence operations.
// The token-session mutators each persist one hash/expiry pair so the
// both-set-or-both-null invariant holds at the storage layer.
type AccountRepository interface {
	// Create inserts a new account into the store.
	Create(ctx context.Context, account *domain.Account) error

	// GetByID retrieves an account by its unique identifier.
	GetByID(ctx context.Context, id string) (*domain.Account, error)

	// GetByEmail retrieves an account by its email address.
	GetByEmail(ctx context.Context, email string) (*domain.Account, error)

	// UpdateRefreshSession stores a new refresh session hash and expiry,
	// overwriting any previous session.
	UpdateRefreshSession(ctx context.Context, id, sessionHash string, expiresAt time.Time) error

	// ClearRefreshSession removes the stored refresh session. Clearing an
	// account with no session is not an error.
	ClearRefreshSession(ctx context.Context, id string) error

	// UpdateRecoveryToken stores a new recovery token hash and expiry,
	// overwriting any previous one.
	UpdateRecoveryToken(ctx context.Context, id, tokenHash string, expiresAt time.Time) error

	// UpdatePassword sets a new password hash and clears the recovery token
	// and refresh session in the same statement, so a password change
	// atomically invalidates existing sessions.
	UpdatePassword(ctx context.Context, id, passwordHash string) error
}
