package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/inkwellhq/inkwell/pkg/helpers"
)

func newGuardedRouter(jwt *helpers.JWTManager, guard gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/me", guard, func(c *gin.Context) {
		id, ok := c.Get(CtxUserIDKey)
		if !ok {
			c.String(http.StatusOK, "anonymous")
			return
		}
		c.String(http.StatusOK, id.(string))
	})
	return r
}

func TestAuthAcceptsBearerHeader(t *testing.T) {
	jwt := helpers.NewJWTManager("secret", time.Hour)
	token, _, err := jwt.GenerateToken("user-1", "Ada", "ada@example.com", "")
	if err != nil {
		t.Fatal(err)
	}
	r := newGuardedRouter(jwt, Auth(jwt))

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK || w.Body.String() != "user-1" {
		t.Fatalf("got %d %q", w.Code, w.Body.String())
	}
}

func TestAuthFallsBackToCookie(t *testing.T) {
	jwt := helpers.NewJWTManager("secret", time.Hour)
	token, _, err := jwt.GenerateToken("user-2", "Ada", "ada@example.com", "")
	if err != nil {
		t.Fatal(err)
	}
	r := newGuardedRouter(jwt, Auth(jwt))

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.AddCookie(&http.Cookie{Name: helpers.SessionCookieName, Value: token})
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK || w.Body.String() != "user-2" {
		t.Fatalf("got %d %q", w.Code, w.Body.String())
	}
}

func TestAuthRejectsMissingAndBadTokens(t *testing.T) {
	jwt := helpers.NewJWTManager("secret", time.Hour)
	other := helpers.NewJWTManager("other-secret", time.Hour)
	foreign, _, err := other.GenerateToken("user-3", "Eve", "eve@example.com", "")
	if err != nil {
		t.Fatal(err)
	}
	r := newGuardedRouter(jwt, Auth(jwt))

	cases := []struct {
		name   string
		header string
	}{
		{"no credentials", ""},
		{"malformed header", "Token abc"},
		{"wrong signing key", "Bearer " + foreign},
		{"garbage token", "Bearer not.a.jwt"},
	}
	for _, tc := range cases {
		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		if tc.header != "" {
			req.Header.Set("Authorization", tc.header)
		}
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		if w.Code != http.StatusUnauthorized {
			t.Errorf("%s: got %d, want 401", tc.name, w.Code)
		}
	}
}

func TestOptionalAuthNeverRejects(t *testing.T) {
	jwt := helpers.NewJWTManager("secret", time.Hour)
	r := newGuardedRouter(jwt, OptionalAuth(jwt))

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer garbage")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK || w.Body.String() != "anonymous" {
		t.Fatalf("got %d %q, want anonymous pass-through", w.Code, w.Body.String())
	}

	token, _, err := jwt.GenerateToken("user-4", "Ada", "ada@example.com", "")
	if err != nil {
		t.Fatal(err)
	}
	req = httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Body.String() != "user-4" {
		t.Fatalf("valid token should set the viewer, got %q", w.Body.String())
	}
}
