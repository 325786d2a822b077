package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/clienthub/identity/internal/domain"
	"github.com/clienthub/identity/pkg/database"
	apperrors "github.com/clienthub/identity/pkg/errors"
)

// DB is the subset of pgxpool.Pool used by the repository. Both *pgxpool.Pool
// and pgxmock.PgxPoolIface satisfy it.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// AccountRepository implements repository.AccountRepository using PostgreSQL.
type AccountRepository struct {
	db DB
}

// NewAccountRepository creates a new PostgreSQL-backed account repository.
func NewAccountRepository(db DB) *AccountRepository {
	return &AccountRepository{db: db}
}

const accountColumns = `id, email, name, password_hash, status,
		refresh_token_hash, refresh_token_expires, recovery_token_hash, recovery_token_expires,
		created_at, updated_at`

// Create inserts a new account into the database.
func (r *AccountRepository) Create(ctx context.Context, a *domain.Account) (err error) {
	query := `
		INSERT INTO accounts (id, email, name, password_hash, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`

	ctx, end := database.TraceQuery(ctx, "CreateAccount", query)
	defer func() { end(err) }()

	_, err = r.db.Exec(ctx, query,
		a.ID,
		a.Email,
		a.Name,
		a.PasswordHash,
		a.Status,
		a.CreatedAt,
		a.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperrors.AlreadyExists("account", "email", a.Email)
		}
		return fmt.Errorf("insert account: %w", err)
	}

	return nil
}

// GetByID retrieves an account by its ID.
func (r *AccountRepository) GetByID(ctx context.Context, id string) (*domain.Account, error) {
	query := `
		SELECT ` + accountColumns + `
		FROM accounts
		WHERE id = $1`

	return r.scanAccount(ctx, "GetAccountByID", query, id)
}

// GetByEmail retrieves an account by its email address.
func (r *AccountRepository) GetByEmail(ctx context.Context, email string) (*domain.Account, error) {
	query := `
		SELECT ` + accountColumns + `
		FROM accounts
		WHERE email = $1`

	return r.scanAccount(ctx, "GetAccountByEmail", query, email)
}

// UpdateRefreshSession stores a new refresh session hash and expiry,
// overwriting any previous session.
func (r *AccountRepository) UpdateRefreshSession(ctx context.Context, id, sessionHash string, expiresAt time.Time) (err error) {
	query := `
		UPDATE accounts
		SET refresh_token_hash = $1, refresh_token_expires = $2, updated_at = $3
		WHERE id = $4`

	ctx, end := database.TraceQuery(ctx, "UpdateRefreshSession", query)
	defer func() { end(err) }()

	ct, err := r.db.Exec(ctx, query, sessionHash, expiresAt, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("update refresh session: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return apperrors.NotFound("account", id)
	}

	return nil
}

// ClearRefreshSession removes the stored refresh session hash and expiry.
func (r *AccountRepository) ClearRefreshSession(ctx context.Context, id string) (err error) {
	query := `
		UPDATE accounts
		SET refresh_token_hash = NULL, refresh_token_expires = NULL, updated_at = $1
		WHERE id = $2`

	ctx, end := database.TraceQuery(ctx, "ClearRefreshSession", query)
	defer func() { end(err) }()

	ct, err := r.db.Exec(ctx, query, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("clear refresh session: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return apperrors.NotFound("account", id)
	}

	return nil
}

// UpdateRecoveryToken stores a new recovery token hash and expiry.
func (r *AccountRepository) UpdateRecoveryToken(ctx context.Context, id, tokenHash string, expiresAt time.Time) (err error) {
	query := `
		UPDATE accounts
		SET recovery_token_hash = $1, recovery_token_expires = $2, updated_at = $3
		WHERE id = $4`

	ctx, end := database.TraceQuery(ctx, "UpdateRecoveryToken", query)
	defer func() { end(err) }()

	ct, err := r.db.Exec(ctx, query, tokenHash, expiresAt, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("update recovery token: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return apperrors.NotFound("account", id)
	}

	return nil
}

// UpdatePassword sets a new password hash and clears the recovery token and
// refresh session in a single statement.
func (r *AccountRepository) UpdatePassword(ctx context.Context, id, passwordHash string) (err error) {
	query := `
		UPDATE accounts
		SET password_hash = $1,
		    recovery_token_hash = NULL, recovery_token_expires = NULL,
		    refresh_token_hash = NULL, refresh_token_expires = NULL,
		    updated_at = $2
		WHERE id = $3`

	ctx, end := database.TraceQuery(ctx, "UpdatePassword", query)
	defer func() { end(err) }()

	ct, err := r.db.Exec(ctx, query, passwordHash, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("update password: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return apperrors.NotFound("account", id)
	}

	return nil
}

// scanAccount executes a query expected to return a single account row.
func (r *AccountRepository) scanAccount(ctx context.Context, operation, query string, args ...any) (account *domain.Account, err error) {
	ctx, end := database.TraceQuery(ctx, operation, query)
	defer func() { end(err) }()

	var a domain.Account
	err = r.db.QueryRow(ctx, query, args...).Scan(
		&a.ID,
		&a.Email,
		&a.Name,
		&a.PasswordHash,
		&a.Status,
		&a.RefreshTokenHash,
		&a.RefreshTokenExpires,
		&a.RecoveryTokenHash,
		&a.RecoveryTokenExpires,
		&a.CreatedAt,
		&a.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("scan account: %w", err)
	}

	return &a, nil
}

// isUniqueViolation reports whether the error is a PostgreSQL unique
// constraint violation (SQLSTATE 23505).
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return strings.Contains(err.Error(), "23505")
}
