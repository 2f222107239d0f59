package helpers

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// JWTManager mints and validates self-contained session tokens.
// Tokens embed public identity claims only; never the password hash.
type JWTManager struct {
	Secret     []byte
	DefaultTTL time.Duration
}

var defaultManager *JWTManager

func NewJWTManager(secret string, defaultTTL time.Duration) *JWTManager {
	m := &JWTManager{
		Secret:     []byte(secret),
		DefaultTTL: defaultTTL,
	}
	defaultManager = m
	return m
}

// DefaultJWT returns the last constructed JWTManager (used for auto-wiring routes)
func DefaultJWT() *JWTManager { return defaultManager }

type SessionClaims struct {
	UserID    string `json:"id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	AvatarURL string `json:"avatarUrl,omitempty"`
	jwt.RegisteredClaims
}

// GenerateToken signs a session token with the manager's default lifetime.
func (m *JWTManager) GenerateToken(userID, name, email, avatarURL string) (string, time.Time, error) {
	return m.GenerateTokenTTL(userID, name, email, avatarURL, m.DefaultTTL)
}

// GenerateTokenTTL signs a session token with an explicit lifetime. The
// emailed login-link flow uses a short TTL; everything else the default.
func (m *JWTManager) GenerateTokenTTL(userID, name, email, avatarURL string, ttl time.Duration) (string, time.Time, error) {
	exp := time.Now().Add(ttl)
	claims := &SessionClaims{
		UserID:    userID,
		Name:      name,
		Email:     email,
		AvatarURL: avatarURL,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(exp),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	s, err := t.SignedString(m.Secret)
	return s, exp, err
}

// ParseToken validates the signature and expiry and returns the claims.
func (m *JWTManager) ParseToken(tokenStr string) (*SessionClaims, error) {
	claims := &SessionClaims{}
	tkn, err := jwt.ParseWithClaims(tokenStr, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return m.Secret, nil
	})
	if err != nil {
		return nil, err
	}
	if !tkn.Valid {
		return nil, errors.New("invalid token")
	}
	return claims, nil
}
