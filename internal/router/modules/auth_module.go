package modules

import (
	"github.com/gin-gonic/gin"

	handlers "github.com/inkwellhq/inkwell/internal/interface/http"
)

// AuthModule registers every authentication entry point: password login,
// registration, the one-time-code flow, magic links and the OAuth dance.
type AuthModule struct {
	Auth  *handlers.AuthHandler
	OAuth *handlers.OAuthHandler
}

func NewAuthModule(auth *handlers.AuthHandler, oauth *handlers.OAuthHandler) *AuthModule {
	return &AuthModule{Auth: auth, OAuth: oauth}
}

func (m *AuthModule) Register(rg *gin.RouterGroup) {
	rg.POST("/auth/register", m.Auth.Register)
	rg.POST("/auth/login", m.Auth.Login)
	rg.POST("/auth/logout", m.Auth.Logout)
	rg.POST("/auth/check-email", m.Auth.CheckEmail)
	rg.POST("/auth/verify", m.Auth.VerifyCode)
	rg.POST("/auth/signup", m.Auth.CompleteSignup)
	rg.POST("/auth/email-login", m.Auth.RequestLoginLink)
	rg.GET("/auth/verify-email", m.Auth.VerifyEmail)

	rg.GET("/auth/oauth/:provider", m.OAuth.Redirect)
	rg.GET("/auth/oauth/:provider/callback", m.OAuth.Callback)
}
