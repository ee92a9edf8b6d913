package oauth

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"slotbook/pkg/config"
)

const (
	ProviderGoogle = "google"
	ProviderGitHub = "github"
)

// EmailExtractor pulls the account email out of a provider's userinfo body
type EmailExtractor func(body []byte) (string, error)

var errNoEmail = errors.New("userinfo response has no email")

type Provider struct {
	Name         string
	ClientID     string
	ClientSecret string
	AuthorizeURL string
	TokenURL     string
	UserInfoURL  string
	Scopes       []string
	ExtractEmail EmailExtractor
}

func Google(clientID, clientSecret string) Provider {
	return Provider{
		Name:         ProviderGoogle,
		ClientID:     clientID,
		ClientSecret: clientSecret,
		AuthorizeURL: "https://accounts.google.com/o/oauth2/auth",
		TokenURL:     "https://accounts.google.com/o/oauth2/token",
		UserInfoURL:  "https://www.googleapis.com/oauth2/v3/userinfo",
		Scopes: []string{
			"https://www.googleapis.com/auth/userinfo.email",
			"https://www.googleapis.com/auth/userinfo.profile",
		},
		ExtractEmail: EmailField,
	}
}

func GitHub(clientID, clientSecret string) Provider {
	return Provider{
		Name:         ProviderGitHub,
		ClientID:     clientID,
		ClientSecret: clientSecret,
		AuthorizeURL: "https://github.com/login/oauth/authorize",
		TokenURL:     "https://github.com/login/oauth/access_token",
		UserInfoURL:  "https://api.github.com/user/emails",
		Scopes:       []string{"user:email"},
		ExtractEmail: FirstListedEmail,
	}
}

// EmailField reads {"email": "..."}
func EmailField(body []byte) (string, error) {
	var info struct {
		Email string `json:"email"`
	}
	if err := json.Unmarshal(body, &info); err != nil {
		return "", fmt.Errorf("decode userinfo: %w", err)
	}
	if info.Email == "" {
		return "", errNoEmail
	}
	return info.Email, nil
}

// FirstListedEmail reads the first entry of [{"email": "..."}, ...]
func FirstListedEmail(body []byte) (string, error) {
	var entries []struct {
		Email string `json:"email"`
	}
	if err := json.Unmarshal(body, &entries); err != nil {
		return "", fmt.Errorf("decode userinfo: %w", err)
	}
	if len(entries) == 0 || entries[0].Email == "" {
		return "", errNoEmail
	}
	return entries[0].Email, nil
}

// Registry is the read-only set of configured providers, built once at
// startup.
type Registry struct {
	providers map[string]Provider
}

// NewRegistry keeps the providers that have a client id.
func NewRegistry(providers ...Provider) *Registry {
	r := &Registry{providers: make(map[string]Provider, len(providers))}
	for _, p := range providers {
		if p.ClientID == "" {
			continue
		}
		r.providers[p.Name] = p
	}
	return r
}

func RegistryFromConfig(cfg *config.Config) *Registry {
	return NewRegistry(
		Google(cfg.GoogleClientID, cfg.GoogleClientSecret),
		GitHub(cfg.GitHubClientID, cfg.GitHubClientSecret),
	)
}

func (r *Registry) Get(name string) (Provider, bool) {
	p, ok := r.providers[name]
	return p, ok
}

func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.providers))
	for name := range r.providers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
