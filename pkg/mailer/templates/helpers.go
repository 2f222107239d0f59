package templates

import (
	"time"

	"github.com/inkwellhq/inkwell/config"
)

// Option pattern
type Option func(*EmailData)

func WithVerifyURL(url string) Option { return func(d *EmailData) { d.VerifyURL = url } }
func WithLoginURL(url string) Option  { return func(d *EmailData) { d.LoginURL = url } }
func WithCode(code string) Option     { return func(d *EmailData) { d.Code = code } }

func WithExpiresIn(dur time.Duration) Option {
	return func(d *EmailData) {
		utc := time.Now().Add(dur).UTC()
		d.ExpiresAt = utc
		d.ExpiresAtText = utc.Format("02 January 2006, 15:04")
	}
}

// NewBaseEmailData fills the common fields from config, then applies Options.
func NewBaseEmailData(cfg *config.Config, typ, name, email string, opts ...Option) EmailData {
	d := EmailData{
		Name:           name,
		Email:          email,
		RecipientEmail: email,
		Type:           typ,
		AppName:        cfg.AppName,
	}
	for _, opt := range opts {
		opt(&d)
	}
	return d
}

// NewVerifyEmailData builds data for the verify-your-address link email.
func NewVerifyEmailData(cfg *config.Config, name, email, verifyURL string, opts ...Option) map[string]any {
	opts = append([]Option{WithVerifyURL(verifyURL)}, opts...)
	return ToMap(NewBaseEmailData(cfg, VerifyEmail, name, email, opts...))
}

// NewLoginCodeData builds data for the one-time-code email.
func NewLoginCodeData(cfg *config.Config, email, code string, opts ...Option) map[string]any {
	opts = append([]Option{WithCode(code)}, opts...)
	return ToMap(NewBaseEmailData(cfg, LoginCode, email, email, opts...))
}

// NewLoginLinkData builds data for the emailed magic login link.
func NewLoginLinkData(cfg *config.Config, name, email, loginURL string, opts ...Option) map[string]any {
	opts = append([]Option{WithLoginURL(loginURL)}, opts...)
	return ToMap(NewBaseEmailData(cfg, LoginLink, name, email, opts...))
}
