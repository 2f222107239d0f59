package oauth

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"golang.org/x/oauth2"
)

// fakeTokenServer serves the /token endpoint of an authorization server,
// accepting exactly one code.
func fakeTokenServer(t *testing.T, validCode string) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/token", func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			http.Error(w, "bad form", http.StatusBadRequest)
			return
		}
		if r.FormValue("code") != validCode {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusBadRequest)
			w.Write([]byte(`{"error":"invalid_grant"}`))
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"access_token":"test-access-token","token_type":"bearer"}`))
	})
	return httptest.NewServer(mux)
}

func newTestGoogleProvider(authServer *httptest.Server, userInfo http.HandlerFunc) (*GoogleProvider, *httptest.Server) {
	api := httptest.NewServer(userInfo)
	p := NewGoogleProvider("client-id", "client-secret", "http://api.test/callback")
	p.config.Endpoint = oauth2.Endpoint{
		AuthURL:  authServer.URL + "/auth",
		TokenURL: authServer.URL + "/token",
	}
	p.userInfoURL = api.URL
	return p, api
}

func TestGoogleAuthURLCarriesState(t *testing.T) {
	p := NewGoogleProvider("client-id", "client-secret", "http://api.test/callback")
	u := p.AuthURL("state-nonce")
	if !strings.Contains(u, "state=state-nonce") {
		t.Fatalf("auth url %q missing state", u)
	}
	if !strings.Contains(u, "client_id=client-id") {
		t.Fatalf("auth url %q missing client id", u)
	}
}

func TestGoogleExchange(t *testing.T) {
	auth := fakeTokenServer(t, "good-code")
	defer auth.Close()
	p, api := newTestGoogleProvider(auth, func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer test-access-token" {
			t.Errorf("userinfo auth header = %q", got)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"email":"ada@example.com","name":"Ada Lovelace","picture":"https://img.example/a.png"}`))
	})
	defer api.Close()

	prof, err := p.Exchange(context.Background(), "good-code")
	if err != nil {
		t.Fatalf("exchange: %v", err)
	}
	if prof.Email != "ada@example.com" || prof.Name != "Ada Lovelace" || prof.AvatarURL != "https://img.example/a.png" {
		t.Fatalf("unexpected profile: %+v", prof)
	}
}

func TestGoogleExchangeRejectedCode(t *testing.T) {
	auth := fakeTokenServer(t, "good-code")
	defer auth.Close()
	p, api := newTestGoogleProvider(auth, func(w http.ResponseWriter, r *http.Request) {
		t.Error("userinfo must not be called when the exchange fails")
	})
	defer api.Close()

	if _, err := p.Exchange(context.Background(), "stolen-code"); !errors.Is(err, ErrCodeExchangeFailed) {
		t.Fatalf("got %v, want ErrCodeExchangeFailed", err)
	}
}

func TestGoogleExchangeNameFallback(t *testing.T) {
	auth := fakeTokenServer(t, "good-code")
	defer auth.Close()
	p, api := newTestGoogleProvider(auth, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"email":"ada@example.com","given_name":"Ada","family_name":"Lovelace"}`))
	})
	defer api.Close()

	prof, err := p.Exchange(context.Background(), "good-code")
	if err != nil {
		t.Fatalf("exchange: %v", err)
	}
	if prof.Name != "Ada Lovelace" {
		t.Fatalf("name = %q, want given+family fallback", prof.Name)
	}
}

func TestGoogleExchangeEmptyEmail(t *testing.T) {
	auth := fakeTokenServer(t, "good-code")
	defer auth.Close()
	p, api := newTestGoogleProvider(auth, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"name":"Ada"}`))
	})
	defer api.Close()

	if _, err := p.Exchange(context.Background(), "good-code"); !errors.Is(err, ErrCodeExchangeFailed) {
		t.Fatalf("got %v, want ErrCodeExchangeFailed", err)
	}
}
