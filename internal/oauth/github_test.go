package oauth

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"golang.org/x/oauth2"
)

func newTestGitHubProvider(authServer *httptest.Server, api http.Handler) (*GitHubProvider, *httptest.Server) {
	apiServer := httptest.NewServer(api)
	p := NewGitHubProvider("client-id", "client-secret", "http://api.test/callback")
	p.config.Endpoint = oauth2.Endpoint{
		AuthURL:  authServer.URL + "/auth",
		TokenURL: authServer.URL + "/token",
	}
	p.apiBaseURL = apiServer.URL
	return p, apiServer
}

func githubAPI(userJSON, emailsJSON string) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/user", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(userJSON))
	})
	mux.HandleFunc("/user/emails", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(emailsJSON))
	})
	return mux
}

func TestGitHubExchange(t *testing.T) {
	auth := fakeTokenServer(t, "good-code")
	defer auth.Close()
	p, api := newTestGitHubProvider(auth, githubAPI(
		`{"login":"adal","name":"Ada Lovelace","avatar_url":"https://img.example/a.png"}`,
		`[{"email":"spam@example.com","primary":false,"verified":true},
		  {"email":"ada@example.com","primary":true,"verified":true}]`,
	))
	defer api.Close()

	prof, err := p.Exchange(context.Background(), "good-code")
	if err != nil {
		t.Fatalf("exchange: %v", err)
	}
	if prof.Email != "ada@example.com" {
		t.Fatalf("email = %q, want the primary address", prof.Email)
	}
	if prof.Name != "Ada Lovelace" || prof.AvatarURL != "https://img.example/a.png" {
		t.Fatalf("unexpected profile: %+v", prof)
	}
}

func TestGitHubExchangeNameFallsBackToLogin(t *testing.T) {
	auth := fakeTokenServer(t, "good-code")
	defer auth.Close()
	p, api := newTestGitHubProvider(auth, githubAPI(
		`{"login":"adal","name":""}`,
		`[{"email":"ada@example.com","primary":true,"verified":true}]`,
	))
	defer api.Close()

	prof, err := p.Exchange(context.Background(), "good-code")
	if err != nil {
		t.Fatalf("exchange: %v", err)
	}
	if prof.Name != "adal" {
		t.Fatalf("name = %q, want login fallback", prof.Name)
	}
}

func TestGitHubExchangeNoPrimaryEmail(t *testing.T) {
	auth := fakeTokenServer(t, "good-code")
	defer auth.Close()
	p, api := newTestGitHubProvider(auth, githubAPI(
		`{"login":"adal"}`,
		`[{"email":"hidden@example.com","primary":false,"verified":true}]`,
	))
	defer api.Close()

	if _, err := p.Exchange(context.Background(), "good-code"); !errors.Is(err, ErrNoPrimaryEmail) {
		t.Fatalf("got %v, want ErrNoPrimaryEmail", err)
	}
}

func TestGitHubExchangeRejectedCode(t *testing.T) {
	auth := fakeTokenServer(t, "good-code")
	defer auth.Close()
	p, api := newTestGitHubProvider(auth, githubAPI(`{}`, `[]`))
	defer api.Close()

	if _, err := p.Exchange(context.Background(), "bad-code"); !errors.Is(err, ErrCodeExchangeFailed) {
		t.Fatalf("got %v, want ErrCodeExchangeFailed", err)
	}
}
