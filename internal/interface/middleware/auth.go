package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/inkwellhq/inkwell/pkg/helpers"
	"github.com/inkwellhq/inkwell/pkg/response"
)

const (
	CtxUserIDKey    = "userID"
	CtxUserNameKey  = "userName"
	CtxUserEmailKey = "userEmail"
)

// Auth validates the session JWT and sets userID, userName and userEmail in
// the Gin context. The token is read from the Authorization header first
// and falls back to the session cookie so both API clients and the web
// frontend can authenticate.
func Auth(jwt *helpers.JWTManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c)
		if token == "" {
			token, _ = c.Cookie(helpers.SessionCookieName)
		}
		if token == "" {
			resp := response.Error[any](c, http.StatusUnauthorized, "missing session token", nil)
			c.AbortWithStatusJSON(resp.Status, resp)
			return
		}
		claims, err := jwt.ParseToken(token)
		if err != nil {
			resp := response.Error[any](c, http.StatusUnauthorized, "invalid session token", err.Error())
			c.AbortWithStatusJSON(resp.Status, resp)
			return
		}
		c.Set(CtxUserIDKey, claims.UserID)
		c.Set(CtxUserNameKey, claims.Name)
		c.Set(CtxUserEmailKey, claims.Email)
		c.Next()
	}
}

// OptionalAuth sets the user keys when a valid token is present but never
// rejects the request. Used on public reads that personalize for viewers.
func OptionalAuth(jwt *helpers.JWTManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c)
		if token == "" {
			token, _ = c.Cookie(helpers.SessionCookieName)
		}
		if token != "" {
			if claims, err := jwt.ParseToken(token); err == nil {
				c.Set(CtxUserIDKey, claims.UserID)
				c.Set(CtxUserNameKey, claims.Name)
				c.Set(CtxUserEmailKey, claims.Email)
			}
		}
		c.Next()
	}
}

func bearerToken(c *gin.Context) string {
	h := c.GetHeader("Authorization")
	if h == "" {
		return ""
	}
	parts := strings.SplitN(h, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}
