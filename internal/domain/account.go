package domain

import (
	"time"
)

// Status is the lifecycle state of an account.
type Status string

const (
	StatusActive    Status = "active"
	StatusInactive  Status = "inactive"
	StatusSuspended Status = "suspended"
	StatusArchived  Status = "archived"
)

// Account represents the owner of credentials and sessions.
//
// The refresh and recovery token fields hold only one-way hashes; raw token
// material never touches storage. Each hash/expiry pair is either both set or
// both nil.
type Account struct {
	ID           string `json:"id"`
	Email        string `json:"email"`
	Name         string `json:"name"`
	PasswordHash string `json:"-"`
	Status       Status `json:"status"`

	RefreshTokenHash     *string    `json:"-"`
	RefreshTokenExpires  *time.Time `json:"-"`
	RecoveryTokenHash    *string    `json:"-"`
	RecoveryTokenExpires *time.Time `json:"-"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// IsActive reports whether the account may authenticate.
func (a *Account) IsActive() bool {
	return a.Status == StatusActive
}

// HasRefreshSession reports whether a refresh session is currently stored.
func (a *Account) HasRefreshSession() bool {
	return a.RefreshTokenHash != nil && a.RefreshTokenExpires != nil
}

// HasRecoveryToken reports whether a recovery token is currently stored.
func (a *Account) HasRecoveryToken() bool {
	return a.RecoveryTokenHash != nil && a.RecoveryTokenExpires != nil
}

// TokenPair holds an access and refresh token pair.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}
