package repository

import (
	"context"
	"time"

	"github.com/inkwellhq/inkwell/internal/domain/entity"
)

// UserRepository defines user-related database operations.
//
// Create relies on unique indexes on email and username; implementations
// translate a unique violation into ErrDuplicateEmail / ErrDuplicateUsername
// so callers never need a racy check-then-insert.
type UserRepository interface {
	Create(ctx context.Context, u *entity.User) error
	GetByID(ctx context.Context, id string) (*entity.User, error)
	GetByEmail(ctx context.Context, email string) (*entity.User, error)
	Update(ctx context.Context, u *entity.User) error
	Delete(ctx context.Context, id string) error

	UsernameExists(ctx context.Context, username string) (bool, error)

	// SetVerificationCode overwrites the one-time login code for the user.
	SetVerificationCode(ctx context.Context, id, code string, expiresAt time.Time) error
	// GetByEmailAndCode returns the user only when the stored code matches
	// and has not expired.
	GetByEmailAndCode(ctx context.Context, email, code string) (*entity.User, error)
	// ClearVerificationCode marks the code consumed (set NULL).
	ClearVerificationCode(ctx context.Context, id string) error

	// VerifyEmailByToken flips email_verified for the owner of the token and
	// clears the token. Returns ErrNotFound for unknown tokens.
	VerifyEmailByToken(ctx context.Context, token string) error
}

// PendingUserRepository persists registrations that have not been completed.
type PendingUserRepository interface {
	// Upsert creates the pending row on first sight of an email, or
	// overwrites its code on subsequent check-email calls.
	Upsert(ctx context.Context, p *entity.PendingUser) error
	GetByEmail(ctx context.Context, email string) (*entity.PendingUser, error)
	// RedeemCode marks the pending user verified and clears the code when
	// the code matches and has not expired. Returns ErrNotFound otherwise.
	RedeemCode(ctx context.Context, email, code string) (*entity.PendingUser, error)
	Delete(ctx context.Context, email string) error
}
