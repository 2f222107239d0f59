// Package oauth adapts the Google and GitHub authorization-code flows into a
// single Provider interface: redirect the user out with AuthURL, then trade
// the returned code for a verified profile with Exchange.
package oauth

import (
	"context"
	"errors"

	"github.com/inkwellhq/inkwell/internal/domain/entity"
)

var (
	// ErrCodeExchangeFailed means the provider rejected the authorization
	// code or returned no usable token.
	ErrCodeExchangeFailed = errors.New("oauth: code exchange failed")
	// ErrNoPrimaryEmail means the provider's email list had no entry
	// flagged primary.
	ErrNoPrimaryEmail = errors.New("oauth: no primary email")
)

// Profile is the provider-asserted identity handed to the identity resolver.
type Profile struct {
	Email     string
	Name      string
	AvatarURL string
}

// Provider is one upstream identity source.
type Provider interface {
	Name() entity.Provider
	// AuthURL returns the consent-screen URL carrying the CSRF state nonce.
	AuthURL(state string) string
	// Exchange trades the callback code for a profile. Provider rejections
	// surface as ErrCodeExchangeFailed / ErrNoPrimaryEmail; they are
	// retryable by the user, never silently retried here.
	Exchange(ctx context.Context, code string) (*Profile, error)
}
