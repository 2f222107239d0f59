package handlers

import (
	"errors"
	"net/http"
	"net/url"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/inkwellhq/inkwell/config"
	app "github.com/inkwellhq/inkwell/internal/application"
	"github.com/inkwellhq/inkwell/internal/oauth"
	"github.com/inkwellhq/inkwell/pkg/helpers"
	"github.com/inkwellhq/inkwell/pkg/response"
)

const oauthStateTTL = 10 * time.Minute

// OAuthHandler drives the authorization-code dance for all configured
// providers. The CSRF state nonce lives in Redis between redirect and
// callback.
type OAuthHandler struct {
	Auth      *app.AuthService
	Users     *app.UserService
	Providers map[string]oauth.Provider
	Redis     *redis.Client
	Logger    *logrus.Logger
	Cookies   *helpers.CookieManager
	Cfg       *config.Config
}

func NewOAuthHandler(auth *app.AuthService, users *app.UserService, providers map[string]oauth.Provider, rdb *redis.Client, logger *logrus.Logger, cfg *config.Config) *OAuthHandler {
	return &OAuthHandler{
		Auth:      auth,
		Users:     users,
		Providers: providers,
		Redis:     rdb,
		Logger:    logger,
		Cookies:   helpers.NewCookie(cfg.CookieDomain, cfg.CookieSecure),
		Cfg:       cfg,
	}
}

func stateKey(state string) string { return "oauth:state:" + state }

// Redirect sends the browser to the provider's consent screen.
func (h *OAuthHandler) Redirect(c *gin.Context) {
	p, ok := h.Providers[c.Param("provider")]
	if !ok {
		response.Fail(c, http.StatusNotFound, "unknown provider", nil)
		return
	}
	state := uuid.NewString()
	if h.Redis != nil {
		if err := h.Redis.Set(c.Request.Context(), stateKey(state), string(p.Name()), oauthStateTTL).Err(); err != nil {
			h.Logger.WithError(err).Error("storing oauth state failed")
			response.Fail(c, http.StatusInternalServerError, "could not start oauth flow", nil)
			return
		}
	}
	c.Redirect(http.StatusFound, p.AuthURL(state))
}

// Callback validates the state nonce, exchanges the code and resolves the
// identity into a local account.
func (h *OAuthHandler) Callback(c *gin.Context) {
	p, ok := h.Providers[c.Param("provider")]
	if !ok {
		response.Fail(c, http.StatusNotFound, "unknown provider", nil)
		return
	}
	code := c.Query("code")
	state := c.Query("state")
	if code == "" || state == "" {
		h.deliverError(c, http.StatusBadRequest, "missing code or state")
		return
	}
	if h.Redis != nil {
		// GetDel makes the nonce single-use.
		stored, err := h.Redis.GetDel(c.Request.Context(), stateKey(state)).Result()
		if err != nil || stored != string(p.Name()) {
			h.deliverError(c, http.StatusUnauthorized, "invalid state")
			return
		}
	}

	profile, err := p.Exchange(c.Request.Context(), code)
	if err != nil {
		switch {
		case errors.Is(err, oauth.ErrCodeExchangeFailed):
			h.deliverError(c, http.StatusUnauthorized, "code exchange rejected")
		case errors.Is(err, oauth.ErrNoPrimaryEmail):
			h.deliverError(c, http.StatusUnprocessableEntity, "no primary email on provider account")
		default:
			h.Logger.WithError(err).WithField("provider", p.Name()).Error("oauth exchange failed")
			h.deliverError(c, http.StatusBadGateway, "provider unavailable")
		}
		return
	}

	u, sess, isNew, err := h.Auth.ResolveOAuthUser(c.Request.Context(), p.Name(), profile.Email, profile.Name, profile.AvatarURL)
	if err != nil {
		if errors.Is(err, app.ErrProviderConflict) {
			h.deliverError(c, http.StatusConflict, "email registered with a different provider")
			return
		}
		h.Logger.WithError(err).WithField("provider", p.Name()).Error("oauth resolve failed")
		h.deliverError(c, http.StatusInternalServerError, "login failed")
		return
	}
	if isNew {
		h.Users.EnsureAvatar(c.Request.Context(), u)
		_ = h.Users.IndexUser(c.Request.Context(), u)
	}
	h.deliverSession(c, sess, isNew)
}

// deliverSession hands the minted token to the frontend per the configured
// delivery mode: token in the redirect URL, HttpOnly cookie, or plain JSON.
func (h *OAuthHandler) deliverSession(c *gin.Context, sess app.Session, isNew bool) {
	switch h.Cfg.OAuthResultDelivery {
	case config.DeliveryCookie:
		h.Cookies.SetSession(c, sess.Token, sess.ExpiresAt)
		c.Redirect(http.StatusFound, h.Cfg.FrontendBaseURL+"/m/callback")
	case config.DeliveryJSON:
		response.OK(c, http.StatusOK, gin.H{"token": sess.Token, "expires_at": sess.ExpiresAt, "is_new_user": isNew}, "login successful")
	default: // redirect
		c.Redirect(http.StatusFound, h.Cfg.FrontendBaseURL+"/m/callback?token="+url.QueryEscape(sess.Token))
	}
}

func (h *OAuthHandler) deliverError(c *gin.Context, status int, msg string) {
	if h.Cfg.OAuthResultDelivery == config.DeliveryJSON {
		response.Fail(c, status, msg, nil)
		return
	}
	c.Redirect(http.StatusFound, h.Cfg.FrontendBaseURL+"/login?error="+url.QueryEscape(msg))
}
