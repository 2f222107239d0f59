package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/inkwellhq/inkwell/config"
	app "github.com/inkwellhq/inkwell/internal/application"
	"github.com/inkwellhq/inkwell/pkg/helpers"
	"github.com/inkwellhq/inkwell/pkg/response"
	"github.com/inkwellhq/inkwell/pkg/validation"
)

type AuthHandler struct {
	Auth    *app.AuthService
	Users   *app.UserService
	Logger  *logrus.Logger
	Cookies *helpers.CookieManager
	Cfg     *config.Config
}

func NewAuthHandler(auth *app.AuthService, users *app.UserService, logger *logrus.Logger, cfg *config.Config) *AuthHandler {
	return &AuthHandler{
		Auth:    auth,
		Users:   users,
		Logger:  logger,
		Cookies: helpers.NewCookie(cfg.CookieDomain, cfg.CookieSecure),
		Cfg:     cfg,
	}
}

type registerRequest struct {
	Name     string `json:"name" binding:"required,max=100"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,pwd"`
}

type loginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type emailRequest struct {
	Email string `json:"email" binding:"required,email"`
}

type verifyCodeRequest struct {
	Email string `json:"email" binding:"required,email"`
	Code  string `json:"code" binding:"required,len=6"`
}

type completeSignupRequest struct {
	Name     string `json:"name" binding:"required,max=100"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,pwd"`
}

// Register creates an unverified password account and emails the
// verification link.
func (h *AuthHandler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	userID, err := h.Auth.Register(c.Request.Context(), app.RegisterInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		switch {
		case errors.Is(err, app.ErrEmailAlreadyExists):
			response.Fail(c, http.StatusConflict, "email already registered", nil)
		case errors.Is(err, app.ErrUsernameTaken), errors.Is(err, helpers.ErrUsernameExhausted):
			response.Fail(c, http.StatusConflict, "could not allocate username", nil)
		default:
			h.Logger.WithError(err).Error("register failed")
			response.Fail(c, http.StatusInternalServerError, "registration failed", nil)
		}
		return
	}
	response.OK(c, http.StatusCreated, gin.H{"user_id": userID}, "verification email sent")
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	sess, err := h.Auth.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, app.ErrEmailNotVerified):
			response.Fail(c, http.StatusForbidden, "email not verified", nil)
		case errors.Is(err, app.ErrInvalidCredentials):
			response.Fail(c, http.StatusUnauthorized, "invalid credentials", nil)
		default:
			h.Logger.WithError(err).Error("login failed")
			response.Fail(c, http.StatusInternalServerError, "login failed", nil)
		}
		return
	}
	h.Cookies.SetSession(c, sess.Token, sess.ExpiresAt)
	response.OK(c, http.StatusOK, gin.H{"token": sess.Token, "expires_at": sess.ExpiresAt}, "login successful")
}

func (h *AuthHandler) Logout(c *gin.Context) {
	h.Cookies.Clear(c)
	response.OK(c, http.StatusOK, gin.H{"logged_out": true}, "logged out")
}

// CheckEmail starts the one-time-code flow and reveals only whether the
// email maps to an existing account.
func (h *AuthHandler) CheckEmail(c *gin.Context) {
	var req emailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	exists, err := h.Auth.CheckEmail(c.Request.Context(), req.Email)
	if err != nil {
		h.Logger.WithError(err).Error("check email failed")
		response.Fail(c, http.StatusInternalServerError, "could not send code", nil)
		return
	}
	response.OK(c, http.StatusOK, gin.H{"exists": exists}, "code sent")
}

// VerifyCode redeems a one-time code. Existing users get a session token;
// new emails get is_new_user=true and must call signup to finish.
func (h *AuthHandler) VerifyCode(c *gin.Context) {
	var req verifyCodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	sess, isNew, err := h.Auth.VerifyCode(c.Request.Context(), req.Email, req.Code)
	if err != nil {
		if errors.Is(err, app.ErrInvalidCode) {
			response.Fail(c, http.StatusBadRequest, "invalid or expired code", nil)
			return
		}
		h.Logger.WithError(err).Error("verify code failed")
		response.Fail(c, http.StatusInternalServerError, "verification failed", nil)
		return
	}
	if isNew {
		response.OK(c, http.StatusOK, gin.H{"is_new_user": true}, "email verified, complete signup")
		return
	}
	h.Cookies.SetSession(c, sess.Token, sess.ExpiresAt)
	response.OK(c, http.StatusOK, gin.H{"is_new_user": false, "token": sess.Token, "expires_at": sess.ExpiresAt}, "login successful")
}

// CompleteSignup promotes a code-verified pending registration into a full
// account and logs it in.
func (h *AuthHandler) CompleteSignup(c *gin.Context) {
	var req completeSignupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	sess, userID, err := h.Auth.CompleteSignup(c.Request.Context(), app.CompleteSignupInput{
		Email:    req.Email,
		Name:     req.Name,
		Password: req.Password,
	})
	if err != nil {
		switch {
		case errors.Is(err, app.ErrSignupNotVerified):
			response.Fail(c, http.StatusForbidden, "email not verified", nil)
		case errors.Is(err, app.ErrEmailAlreadyExists):
			response.Fail(c, http.StatusConflict, "email already registered", nil)
		default:
			h.Logger.WithError(err).Error("complete signup failed")
			response.Fail(c, http.StatusInternalServerError, "signup failed", nil)
		}
		return
	}
	if u, gerr := h.Users.GetProfile(c.Request.Context(), userID); gerr == nil {
		h.Users.EnsureAvatar(c.Request.Context(), u)
		_ = h.Users.IndexUser(c.Request.Context(), u)
	}
	h.Cookies.SetSession(c, sess.Token, sess.ExpiresAt)
	response.OK(c, http.StatusCreated, gin.H{"user_id": userID, "token": sess.Token, "expires_at": sess.ExpiresAt}, "signup complete")
}

// RequestLoginLink emails a short-lived magic login link.
func (h *AuthHandler) RequestLoginLink(c *gin.Context) {
	var req emailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	if err := h.Auth.RequestLoginLink(c.Request.Context(), req.Email); err != nil {
		h.Logger.WithError(err).Error("login link failed")
		response.Fail(c, http.StatusInternalServerError, "could not send login link", nil)
		return
	}
	response.OK(c, http.StatusOK, gin.H{"sent": true}, "login link sent")
}

// VerifyEmail redeems the emailed verification-link token and sends the
// browser back to the frontend.
func (h *AuthHandler) VerifyEmail(c *gin.Context) {
	token := c.Query("token")
	if err := h.Auth.VerifyEmailToken(c.Request.Context(), token); err != nil {
		if errors.Is(err, app.ErrInvalidToken) {
			c.Redirect(http.StatusFound, h.Cfg.FrontendBaseURL+"/login?verified=0")
			return
		}
		h.Logger.WithError(err).Error("verify email failed")
		response.Fail(c, http.StatusInternalServerError, "verification failed", nil)
		return
	}
	c.Redirect(http.StatusFound, h.Cfg.FrontendBaseURL+"/login?verified=1")
}
