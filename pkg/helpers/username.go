package helpers

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"unicode"
)

// MaxUsernameAttempts bounds the collision-avoidance loop; past it the
// caller gets ErrUsernameExhausted instead of looping forever.
const MaxUsernameAttempts = 1000

var ErrUsernameExhausted = errors.New("username generation exhausted")

// NormalizeUsername lowercases the base and strips spaces and anything that
// is not a letter or digit.
func NormalizeUsername(base string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(base) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	if b.Len() == 0 {
		return "user"
	}
	return b.String()
}

// GenerateUsername probes for a free username starting from the normalized
// base, then base1, base2, ... in order.
func GenerateUsername(ctx context.Context, base string, exists func(context.Context, string) (bool, error)) (string, error) {
	normalized := NormalizeUsername(base)
	candidate := normalized
	for i := 0; i < MaxUsernameAttempts; i++ {
		taken, err := exists(ctx, candidate)
		if err != nil {
			return "", err
		}
		if !taken {
			return candidate, nil
		}
		candidate = normalized + strconv.Itoa(i+1)
	}
	return "", ErrUsernameExhausted
}
