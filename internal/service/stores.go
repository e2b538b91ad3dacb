package service

import (
	"context"
	"errors"

	"github.com/peoplehub/authservice/internal/models"
)

// ErrAccountNotFound is the store-level miss. The engine folds it into
// ErrInvalidCredentials (login) or ErrInvalidToken (refresh) so the wire
// never confirms whether a username exists.
var ErrAccountNotFound = errors.New("account not found")

// AccountStore is the persistence boundary for identity records. The
// engine owns no mutable state of its own; counters and flags are mutated
// through single-row updates here.
type AccountStore interface {
	FindByUsername(ctx context.Context, username string) (*models.Account, error)
	FindByID(ctx context.Context, id uint) (*models.Account, error)
	ExistsByUsername(ctx context.Context, username string) (bool, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	Create(ctx context.Context, person *models.Person, account *models.Account) (*models.Account, error)
	IncrementFailedAttempts(ctx context.Context, id uint) error
	ResetFailedAttempts(ctx context.Context, id uint) error
	SetBlocked(ctx context.Context, id uint, blocked bool) error
	UpdateLastLogin(ctx context.Context, id uint) error
}

// RefreshTokenStore persists issued refresh tokens. Rows are revoked, never
// deleted, so the trail stays auditable.
type RefreshTokenStore interface {
	Save(ctx context.Context, token *models.RefreshToken) (uint, error)
	RevokeAllForAccount(ctx context.Context, accountID uint, exceptJTI string) error
}
