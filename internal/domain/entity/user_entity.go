package entity

import (
	"time"
)

// Provider identifies which sign-in flow created an account.
type Provider string

const (
	ProviderEmail  Provider = "email"
	ProviderGoogle Provider = "google"
	ProviderGitHub Provider = "github"
)

// User is the aggregate root for the user domain.
// Password holds a bcrypt hash and is empty for OAuth-only accounts.
type User struct {
	ID        string
	Email     string
	Password  string
	Name      string
	Username  string
	AvatarURL string
	Provider  Provider
	// EmailVerified is false until proven via verification code/link;
	// OAuth-asserted emails are verified from creation.
	EmailVerified bool
	// VerificationToken backs the emailed verify-email link; cleared on use.
	VerificationToken string
	// VerificationCode backs the one-time-code login flow; cleared on use.
	VerificationCode string
	CodeExpiresAt    time.Time
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// PendingUser is an email that started but has not completed code-based
// registration. Promoted into a full User once the owner supplies a name
// and password after redeeming a valid code.
type PendingUser struct {
	ID               string
	Email            string
	VerificationCode string
	CodeExpiresAt    time.Time
	// Verified flips to true when the code is redeemed; only verified
	// pending users may be promoted.
	Verified  bool
	CreatedAt time.Time
	UpdatedAt time.Time
}
