// internal/pkg/identity/google.go
package identity

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"visrec-admin/internal/domain/auth"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

const (
	defaultUserInfoURL = "https://openidconnect.googleapis.com/v1/userinfo"
	defaultRevokeURL   = "https://oauth2.googleapis.com/revoke"
)

// Provider is an external sign-in provider.
type Provider interface {
	AuthCodeURL(state string) string
	Exchange(ctx context.Context, code string) (*auth.Identity, *oauth2.Token, error)
	Revoke(ctx context.Context, token *oauth2.Token) error
}

type GoogleConfig struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string
	Scopes       []string

	// Overrides, mainly for tests.
	Endpoint    *oauth2.Endpoint
	UserInfoURL string
	RevokeURL   string
	HTTPClient  *http.Client
}

type GoogleProvider struct {
	oauth       *oauth2.Config
	userInfoURL string
	revokeURL   string
	httpClient  *http.Client
}

func NewGoogleProvider(cfg GoogleConfig) *GoogleProvider {
	endpoint := google.Endpoint
	if cfg.Endpoint != nil {
		endpoint = *cfg.Endpoint
	}

	p := &GoogleProvider{
		oauth: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Scopes:       cfg.Scopes,
			Endpoint:     endpoint,
		},
		userInfoURL: cfg.UserInfoURL,
		revokeURL:   cfg.RevokeURL,
		httpClient:  cfg.HTTPClient,
	}
	if p.userInfoURL == "" {
		p.userInfoURL = defaultUserInfoURL
	}
	if p.revokeURL == "" {
		p.revokeURL = defaultRevokeURL
	}
	if p.httpClient == nil {
		p.httpClient = http.DefaultClient
	}
	return p
}

// AuthCodeURL returns the consent page URL. The account chooser is always shown.
func (p *GoogleProvider) AuthCodeURL(state string) string {
	return p.oauth.AuthCodeURL(state, oauth2.SetAuthURLParam("prompt", "select_account"))
}

type userInfo struct {
	Sub           string `json:"sub"`
	Email         string `json:"email"`
	EmailVerified bool   `json:"email_verified"`
	Name          string `json:"name"`
	Picture       string `json:"picture"`
}

// Exchange trades an authorization code for a token and fetches the account.
// An unverified email is dropped from the identity.
func (p *GoogleProvider) Exchange(ctx context.Context, code string) (*auth.Identity, *oauth2.Token, error) {
	ctx = context.WithValue(ctx, oauth2.HTTPClient, p.httpClient)

	tok, err := p.oauth.Exchange(ctx, code)
	if err != nil {
		return nil, nil, fmt.Errorf("exchange code: %w", err)
	}

	resp, err := p.oauth.Client(ctx, tok).Get(p.userInfoURL)
	if err != nil {
		return nil, tok, fmt.Errorf("fetch userinfo: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, tok, fmt.Errorf("userinfo returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var info userInfo
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return nil, tok, fmt.Errorf("decode userinfo: %w", err)
	}

	id := &auth.Identity{
		ID:      info.Sub,
		Name:    info.Name,
		Picture: info.Picture,
	}
	if info.EmailVerified {
		id.Email = strings.TrimSpace(info.Email)
	}
	return id, tok, nil
}

// Revoke invalidates the token at Google. A nil token is a no-op.
func (p *GoogleProvider) Revoke(ctx context.Context, token *oauth2.Token) error {
	if token == nil {
		return nil
	}
	value := token.RefreshToken
	if value == "" {
		value = token.AccessToken
	}
	if value == "" {
		return nil
	}

	form := url.Values{"token": {value}}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.revokeURL, strings.NewReader(form.Encode()))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("revoke token: %w", err)
	}
	defer resp.Body.Close()

	// 400 means the token is already invalid.
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusBadRequest {
		return fmt.Errorf("revoke returned %d", resp.StatusCode)
	}
	return nil
}
