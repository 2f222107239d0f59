package helpers

import (
	"crypto/rand"
	"encoding/hex"

	"github.com/google/uuid"
)

// GenVerificationCode generates the 6-character hex code used by the
// one-time-code login flow.
func GenVerificationCode() (string, error) {
	b := make([]byte, 3)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

// GenVerificationToken generates the opaque token embedded in verify-email
// links.
func GenVerificationToken() string {
	return uuid.NewString()
}
