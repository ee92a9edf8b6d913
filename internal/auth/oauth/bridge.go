package oauth

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	autherrors "slotbook/internal/auth/errors"
	"slotbook/internal/auth/token"
	"slotbook/pkg/logger"

	"golang.org/x/oauth2"
)

const maxUserInfoBody = 1 << 20

type TokenIssuer interface {
	Create(claims token.Claims, ttl time.Duration) (string, error)
}

// CallbackParams are the query parameters a provider redirects back with
type CallbackParams struct {
	Code  string
	Error string
}

// Bridge runs the authorization-code flow against the registered providers
// and turns the provider identity into a local access token.
type Bridge struct {
	registry   *Registry
	issuer     TokenIssuer
	ttl        time.Duration
	httpClient *http.Client
	log        *logger.Logger
}

func NewBridge(registry *Registry, issuer TokenIssuer, ttl time.Duration, httpClient *http.Client, log *logger.Logger) *Bridge {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	return &Bridge{
		registry:   registry,
		issuer:     issuer,
		ttl:        ttl,
		httpClient: acceptJSON(httpClient),
		log:        log,
	}
}

// Authorize builds the provider's consent URL.
func (b *Bridge) Authorize(provider, callbackURL string) (string, error) {
	p, ok := b.registry.Get(provider)
	if !ok {
		return "", fmt.Errorf("%w: %q", autherrors.ErrUnknownProvider, provider)
	}
	return oauthConfig(p, callbackURL).AuthCodeURL(""), nil
}

// Callback exchanges the authorization code, fetches the account email and
// issues an access token whose subject is that email.
func (b *Bridge) Callback(ctx context.Context, provider string, params CallbackParams, callbackURL string) (string, error) {
	p, ok := b.registry.Get(provider)
	if !ok {
		return "", fmt.Errorf("%w: %q", autherrors.ErrUnknownProvider, provider)
	}
	if params.Error != "" {
		return "", fmt.Errorf("%w: %s", autherrors.ErrProviderError, params.Error)
	}
	if params.Code == "" {
		return "", autherrors.ErrMissingCode
	}

	ctx = context.WithValue(ctx, oauth2.HTTPClient, b.httpClient)
	tok, err := oauthConfig(p, callbackURL).Exchange(ctx, params.Code)
	if err != nil {
		b.log.Warn("OAuth code exchange failed", "provider", p.Name, "error", err)
		return "", fmt.Errorf("%w: %v", autherrors.ErrTokenExchangeFailed, err)
	}

	email, err := b.fetchEmail(ctx, p, tok.AccessToken)
	if err != nil {
		b.log.Warn("OAuth userinfo lookup failed", "provider", p.Name, "error", err)
		return "", fmt.Errorf("%w: %v", autherrors.ErrUserInfoFailed, err)
	}

	access, err := b.issuer.Create(token.Claims{Subject: email}, b.ttl)
	if err != nil {
		return "", fmt.Errorf("issue access token: %w", err)
	}

	b.log.Info("OAuth login succeeded", "provider", p.Name)
	return access, nil
}

func (b *Bridge) fetchEmail(ctx context.Context, p Provider, accessToken string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.UserInfoURL, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)

	resp, err := b.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxUserInfoBody))
	if err != nil {
		return "", err
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("userinfo returned status %d", resp.StatusCode)
	}
	return p.ExtractEmail(body)
}

func oauthConfig(p Provider, callbackURL string) *oauth2.Config {
	return &oauth2.Config{
		ClientID:     p.ClientID,
		ClientSecret: p.ClientSecret,
		Endpoint: oauth2.Endpoint{
			AuthURL:   p.AuthorizeURL,
			TokenURL:  p.TokenURL,
			AuthStyle: oauth2.AuthStyleInParams,
		},
		RedirectURL: callbackURL,
		Scopes:      p.Scopes,
	}
}

type acceptJSONTransport struct {
	base http.RoundTripper
}

func (t *acceptJSONTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if req.Header.Get("Accept") == "" {
		req = req.Clone(req.Context())
		req.Header.Set("Accept", "application/json")
	}
	return t.base.RoundTrip(req)
}

// acceptJSON copies c with a transport that asks every endpoint for JSON.
// GitHub answers the token endpoint with form encoding otherwise.
func acceptJSON(c *http.Client) *http.Client {
	base := c.Transport
	if base == nil {
		base = http.DefaultTransport
	}
	clone := *c
	clone.Transport = &acceptJSONTransport{base: base}
	return &clone
}
