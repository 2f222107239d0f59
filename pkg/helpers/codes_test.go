package helpers

import "testing"

func TestGenVerificationCode(t *testing.T) {
	seen := map[string]bool{}
	for i := 0; i < 50; i++ {
		code, err := GenVerificationCode()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(code) != 6 {
			t.Fatalf("code %q is not 6 characters", code)
		}
		for _, r := range code {
			if !(r >= '0' && r <= '9' || r >= 'a' && r <= 'f') {
				t.Fatalf("code %q contains non-hex character %q", code, r)
			}
		}
		seen[code] = true
	}
	if len(seen) < 2 {
		t.Fatal("codes do not vary")
	}
}

func TestGenVerificationToken(t *testing.T) {
	a := GenVerificationToken()
	b := GenVerificationToken()
	if a == "" || a == b {
		t.Fatalf("tokens must be unique and non-empty: %q %q", a, b)
	}
}
