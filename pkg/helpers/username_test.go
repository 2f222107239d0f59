package helpers

import (
	"context"
	"errors"
	"testing"
)

func TestNormalizeUsername(t *testing.T) {
	cases := map[string]string{
		"Ada Lovelace": "adalovelace",
		"john.doe":     "johndoe",
		"Ünïcode Näme": "ünïcodenäme",
		"--- !!!":      "user",
		"":             "user",
		"User42":       "user42",
	}
	for in, want := range cases {
		if got := NormalizeUsername(in); got != want {
			t.Errorf("NormalizeUsername(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestGenerateUsernameProbesSuffixes(t *testing.T) {
	taken := map[string]bool{"ada": true, "ada1": true, "ada2": true}
	exists := func(_ context.Context, u string) (bool, error) { return taken[u], nil }

	got, err := GenerateUsername(context.Background(), "Ada", exists)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "ada3" {
		t.Fatalf("got %q, want ada3", got)
	}
}

func TestGenerateUsernameFirstFree(t *testing.T) {
	exists := func(_ context.Context, u string) (bool, error) { return false, nil }
	got, err := GenerateUsername(context.Background(), "Grace Hopper", exists)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "gracehopper" {
		t.Fatalf("got %q, want gracehopper", got)
	}
}

func TestGenerateUsernameExhausted(t *testing.T) {
	exists := func(_ context.Context, u string) (bool, error) { return true, nil }
	_, err := GenerateUsername(context.Background(), "ada", exists)
	if !errors.Is(err, ErrUsernameExhausted) {
		t.Fatalf("got %v, want ErrUsernameExhausted", err)
	}
}

func TestGenerateUsernamePropagatesLookupError(t *testing.T) {
	boom := errors.New("db down")
	exists := func(_ context.Context, u string) (bool, error) { return false, boom }
	if _, err := GenerateUsername(context.Background(), "ada", exists); !errors.Is(err, boom) {
		t.Fatalf("got %v, want lookup error", err)
	}
}
