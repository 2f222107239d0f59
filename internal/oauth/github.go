package oauth

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/github"

	"github.com/inkwellhq/inkwell/internal/domain/entity"
)

const githubAPIBaseURL = "https://api.github.com"

// githubUser is the portion of the GitHub /user response we care about.
type githubUser struct {
	Login     string `json:"login"`
	Name      string `json:"name"`
	AvatarURL string `json:"avatar_url"`
}

// githubEmail is one entry of the /user/emails response. GitHub separates
// email visibility from the profile, so the primary address has to be
// picked out of this list.
type githubEmail struct {
	Email    string `json:"email"`
	Primary  bool   `json:"primary"`
	Verified bool   `json:"verified"`
}

// GitHubProvider wraps golang.org/x/oauth2 for the GitHub Authorization
// Code flow.
type GitHubProvider struct {
	config *oauth2.Config
	// apiBaseURL is overridable in tests.
	apiBaseURL string
}

func NewGitHubProvider(clientID, clientSecret, callbackURL string) *GitHubProvider {
	return &GitHubProvider{
		config: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  callbackURL,
			Scopes:       []string{"read:user", "user:email"},
			Endpoint:     github.Endpoint,
		},
		apiBaseURL: githubAPIBaseURL,
	}
}

func (p *GitHubProvider) Name() entity.Provider { return entity.ProviderGitHub }

func (p *GitHubProvider) AuthURL(state string) string {
	return p.config.AuthCodeURL(state, oauth2.AccessTypeOnline)
}

func (p *GitHubProvider) Exchange(ctx context.Context, code string) (*Profile, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	token, err := p.config.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCodeExchangeFailed, err)
	}
	client := p.config.Client(ctx, token)

	var gu githubUser
	if err := p.getJSON(client, "/user", &gu); err != nil {
		return nil, err
	}

	var emails []githubEmail
	if err := p.getJSON(client, "/user/emails", &emails); err != nil {
		return nil, err
	}
	primary := ""
	for _, e := range emails {
		if e.Primary {
			primary = e.Email
			break
		}
	}
	if primary == "" {
		return nil, ErrNoPrimaryEmail
	}

	name := gu.Name
	if name == "" {
		name = gu.Login
	}
	return &Profile{Email: primary, Name: name, AvatarURL: gu.AvatarURL}, nil
}

func (p *GitHubProvider) getJSON(client *http.Client, path string, dest any) error {
	resp, err := client.Get(p.apiBaseURL + path)
	if err != nil {
		return fmt.Errorf("oauth: calling github %s: %w", path, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("oauth: github %s returned status %d", path, resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
		return fmt.Errorf("oauth: decoding github %s response: %w", path, err)
	}
	return nil
}

var _ Provider = (*GitHubProvider)(nil)
