package application

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/inkwellhq/inkwell/config"
	"github.com/inkwellhq/inkwell/internal/domain/entity"
	repo "github.com/inkwellhq/inkwell/internal/domain/repository"
	"github.com/inkwellhq/inkwell/pkg/helpers"
	"github.com/inkwellhq/inkwell/pkg/mailer"
	tpl "github.com/inkwellhq/inkwell/pkg/mailer/templates"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrEmailNotVerified   = errors.New("email not verified")
	ErrEmailAlreadyExists = errors.New("email already exists")
	ErrUsernameTaken      = errors.New("username taken")
	ErrProviderConflict   = errors.New("email already exists with a different provider")
	ErrInvalidCode        = errors.New("invalid verification code")
	ErrInvalidToken       = errors.New("invalid or expired token")
	ErrUserNotFound       = errors.New("user not found")
	ErrSignupNotVerified  = errors.New("signup email not verified")
)

// EmailEnqueuer publishes email jobs; satisfied by helpers.RabbitPublisher.
type EmailEnqueuer interface {
	PublishJSON(ctx context.Context, body any) error
}

// AuthService is the identity resolver: given one of the four
// proof-of-identity inputs it decides the resulting user record and mints
// the session credential.
type AuthService struct {
	Users   repo.UserRepository
	Pending repo.PendingUserRepository
	JWT     *helpers.JWTManager
	Mail    EmailEnqueuer
	Logger  *logrus.Logger
	Cfg     *config.Config
}

func NewAuthService(users repo.UserRepository, pending repo.PendingUserRepository, jwt *helpers.JWTManager, mail EmailEnqueuer, logger *logrus.Logger, cfg *config.Config) *AuthService {
	return &AuthService{Users: users, Pending: pending, JWT: jwt, Mail: mail, Logger: logger, Cfg: cfg}
}

// Session is an issued credential plus its expiry.
type Session struct {
	Token     string
	ExpiresAt time.Time
}

func (s *AuthService) issueSession(u *entity.User) (Session, error) {
	token, exp, err := s.JWT.GenerateToken(u.ID, u.Name, u.Email, u.AvatarURL)
	if err != nil {
		return Session{}, err
	}
	return Session{Token: token, ExpiresAt: exp}, nil
}

// enqueueEmail publishes the job and applies the configured policy for
// delivery failures: log-and-continue by default, error when
// MAIL_FAILURES_FATAL is set.
func (s *AuthService) enqueueEmail(ctx context.Context, job mailer.EmailJob) error {
	if s.Mail == nil || !s.Cfg.MailSendEnabled {
		return nil
	}
	if err := s.Mail.PublishJSON(ctx, job); err != nil {
		if s.Cfg.MailFailuresFatal {
			return fmt.Errorf("enqueue email: %w", err)
		}
		if s.Logger != nil {
			s.Logger.WithError(err).WithField("to", job.To).Warn("failed to enqueue email")
		}
	}
	return nil
}

type RegisterInput struct {
	Name      string
	Email     string
	Password  string
	AvatarURL string
}

// Register creates an email-provider account with a hashed password and an
// unverified email, and sends the verification link. The unique index on
// email decides winner/loser when two registrations race.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (string, error) {
	hash, err := helpers.HashPassword(in.Password)
	if err != nil {
		return "", err
	}
	username, err := helpers.GenerateUsername(ctx, in.Name, s.Users.UsernameExists)
	if err != nil {
		return "", err
	}

	u := &entity.User{
		Email:             in.Email,
		Password:          hash,
		Name:              in.Name,
		Username:          username,
		AvatarURL:         in.AvatarURL,
		Provider:          entity.ProviderEmail,
		EmailVerified:     false,
		VerificationToken: helpers.GenVerificationToken(),
	}
	if err := s.Users.Create(ctx, u); err != nil {
		switch {
		case errors.Is(err, repo.ErrDuplicateEmail):
			return "", ErrEmailAlreadyExists
		case errors.Is(err, repo.ErrDuplicateUsername):
			return "", ErrUsernameTaken
		}
		return "", err
	}

	verifyURL := s.Cfg.SiteBaseURL + "/api/auth/verify-email?token=" + u.VerificationToken
	job := mailer.EmailJob{
		To:       u.Email,
		Template: tpl.VerifyEmail,
		Data:     tpl.NewVerifyEmailData(s.Cfg, u.Name, u.Email, verifyURL, tpl.WithExpiresIn(24*time.Hour)),
	}
	if err := s.enqueueEmail(ctx, job); err != nil {
		// Roll the row back so a created user and a never-attempted email
		// are not observably inconsistent.
		if delErr := s.Users.Delete(ctx, u.ID); delErr != nil && s.Logger != nil {
			s.Logger.WithError(delErr).WithField("user_id", u.ID).Error("rollback after mail failure failed")
		}
		return "", err
	}
	return u.ID, nil
}

// Login validates an email/password pair. The error never reveals whether
// the email exists; repository failures surface as-is so an outage is not
// mistaken for a bad password.
func (s *AuthService) Login(ctx context.Context, email, password string) (Session, error) {
	u, err := s.Users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return Session{}, ErrInvalidCredentials
		}
		return Session{}, err
	}
	if u.Password == "" || !helpers.CompareHashAndPassword(u.Password, password) {
		return Session{}, ErrInvalidCredentials
	}
	if !u.EmailVerified {
		return Session{}, ErrEmailNotVerified
	}
	return s.issueSession(u)
}

// CheckEmail starts the one-time-code flow: a fresh code for existing users,
// a pending registration row for emails never seen before. Either way the
// code is emailed.
func (s *AuthService) CheckEmail(ctx context.Context, email string) (bool, error) {
	code, err := helpers.GenVerificationCode()
	if err != nil {
		return false, err
	}
	expiresAt := time.Now().Add(s.Cfg.VerificationCodeTTL)

	exists := true
	u, err := s.Users.GetByEmail(ctx, email)
	switch {
	case err == nil:
		if err := s.Users.SetVerificationCode(ctx, u.ID, code, expiresAt); err != nil {
			return false, err
		}
	case errors.Is(err, repo.ErrNotFound):
		exists = false
		p := &entity.PendingUser{Email: email, VerificationCode: code, CodeExpiresAt: expiresAt}
		if err := s.Pending.Upsert(ctx, p); err != nil {
			return false, err
		}
	default:
		return false, err
	}

	job := mailer.EmailJob{
		To:       email,
		Template: tpl.LoginCode,
		Data:     tpl.NewLoginCodeData(s.Cfg, email, code, tpl.WithExpiresIn(s.Cfg.VerificationCodeTTL)),
	}
	if err := s.enqueueEmail(ctx, job); err != nil {
		return false, err
	}
	return exists, nil
}

// VerifyCode redeems a one-time code. Existing users get a session and their
// email marked verified; pending users are flagged verified so CompleteSignup
// can promote them. A consumed code is set NULL and cannot be replayed.
func (s *AuthService) VerifyCode(ctx context.Context, email, code string) (Session, bool, error) {
	u, err := s.Users.GetByEmailAndCode(ctx, email, code)
	if err == nil {
		if err := s.Users.ClearVerificationCode(ctx, u.ID); err != nil {
			return Session{}, false, err
		}
		if !u.EmailVerified {
			u.EmailVerified = true
			if err := s.Users.Update(ctx, u); err != nil {
				return Session{}, false, err
			}
		}
		sess, err := s.issueSession(u)
		return sess, false, err
	}
	if !errors.Is(err, repo.ErrNotFound) {
		return Session{}, false, err
	}

	if _, err := s.Pending.RedeemCode(ctx, email, code); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return Session{}, false, ErrInvalidCode
		}
		return Session{}, false, err
	}
	return Session{}, true, nil
}

type CompleteSignupInput struct {
	Email     string
	Name      string
	Password  string
	AvatarURL string
}

// CompleteSignup promotes a verified pending registration into a full user.
func (s *AuthService) CompleteSignup(ctx context.Context, in CompleteSignupInput) (Session, string, error) {
	p, err := s.Pending.GetByEmail(ctx, in.Email)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return Session{}, "", ErrSignupNotVerified
		}
		return Session{}, "", err
	}
	if !p.Verified {
		return Session{}, "", ErrSignupNotVerified
	}

	hash, err := helpers.HashPassword(in.Password)
	if err != nil {
		return Session{}, "", err
	}
	username, err := helpers.GenerateUsername(ctx, in.Name, s.Users.UsernameExists)
	if err != nil {
		return Session{}, "", err
	}
	u := &entity.User{
		Email:         in.Email,
		Password:      hash,
		Name:          in.Name,
		Username:      username,
		AvatarURL:     in.AvatarURL,
		Provider:      entity.ProviderEmail,
		EmailVerified: true, // ownership proven by the redeemed code
	}
	if err := s.Users.Create(ctx, u); err != nil {
		switch {
		case errors.Is(err, repo.ErrDuplicateEmail):
			return Session{}, "", ErrEmailAlreadyExists
		case errors.Is(err, repo.ErrDuplicateUsername):
			return Session{}, "", ErrUsernameTaken
		}
		return Session{}, "", err
	}
	if err := s.Pending.Delete(ctx, in.Email); err != nil && s.Logger != nil {
		s.Logger.WithError(err).WithField("email", in.Email).Warn("failed to delete pending user after promotion")
	}

	sess, err := s.issueSession(u)
	return sess, u.ID, err
}

// ResolveOAuthUser applies the decision table for provider-asserted
// identities: reuse a matching account, reject a provider mismatch, or
// create a brand-new verified account. No row is written when the exchange
// already failed upstream.
func (s *AuthService) ResolveOAuthUser(ctx context.Context, provider entity.Provider, email, name, avatarURL string) (*entity.User, Session, bool, error) {
	u, err := s.Users.GetByEmail(ctx, email)
	switch {
	case err == nil:
		if u.Provider != provider {
			return nil, Session{}, false, ErrProviderConflict
		}
		sess, err := s.issueSession(u)
		return u, sess, false, err
	case errors.Is(err, repo.ErrNotFound):
		// fall through to create
	default:
		return nil, Session{}, false, err
	}

	username, err := helpers.GenerateUsername(ctx, name, s.Users.UsernameExists)
	if err != nil {
		return nil, Session{}, false, err
	}
	u = &entity.User{
		Email:         email,
		Name:          name,
		Username:      username,
		AvatarURL:     avatarURL,
		Provider:      provider,
		EmailVerified: true, // provider-asserted
	}
	if err := s.Users.Create(ctx, u); err != nil {
		if errors.Is(err, repo.ErrDuplicateEmail) {
			// Lost a race with a concurrent first login for the same email.
			return nil, Session{}, false, ErrEmailAlreadyExists
		}
		if errors.Is(err, repo.ErrDuplicateUsername) {
			return nil, Session{}, false, ErrUsernameTaken
		}
		return nil, Session{}, false, err
	}
	sess, err := s.issueSession(u)
	return u, sess, true, err
}

// RequestLoginLink emails a short-lived magic login link, creating a
// verified account on first sight of the email (username derived from the
// local part).
func (s *AuthService) RequestLoginLink(ctx context.Context, email string) error {
	u, err := s.Users.GetByEmail(ctx, email)
	if errors.Is(err, repo.ErrNotFound) {
		base := email
		if at := strings.IndexByte(email, '@'); at > 0 {
			base = email[:at]
		}
		username, uerr := helpers.GenerateUsername(ctx, base, s.Users.UsernameExists)
		if uerr != nil {
			return uerr
		}
		u = &entity.User{
			Email:         email,
			Name:          email,
			Username:      username,
			Provider:      entity.ProviderEmail,
			EmailVerified: true,
		}
		if cerr := s.Users.Create(ctx, u); cerr != nil {
			if errors.Is(cerr, repo.ErrDuplicateEmail) {
				return ErrEmailAlreadyExists
			}
			return cerr
		}
	} else if err != nil {
		return err
	}

	token, _, err := s.JWT.GenerateTokenTTL(u.ID, u.Name, u.Email, u.AvatarURL, s.Cfg.LoginURLTTL)
	if err != nil {
		return err
	}
	loginURL := s.Cfg.FrontendBaseURL + "/m/callback/email?token=" + token
	job := mailer.EmailJob{
		To:       email,
		Template: tpl.LoginLink,
		Data:     tpl.NewLoginLinkData(s.Cfg, u.Name, email, loginURL, tpl.WithExpiresIn(s.Cfg.LoginURLTTL)),
	}
	return s.enqueueEmail(ctx, job)
}

// VerifyEmailToken redeems a verify-email link token.
func (s *AuthService) VerifyEmailToken(ctx context.Context, token string) error {
	if token == "" {
		return ErrInvalidToken
	}
	if err := s.Users.VerifyEmailByToken(ctx, token); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return ErrInvalidToken
		}
		return err
	}
	return nil
}
