package service

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"
	"time"

	autherrors "slotbook/internal/auth/errors"
	"slotbook/internal/auth/oauth"
	"slotbook/internal/auth/token"
	"slotbook/pkg/config"
	apperrors "slotbook/pkg/errors"
	"slotbook/pkg/logger"
	"slotbook/pkg/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "auth-service-test-secret-0123456789"

type mockAuthenticator struct {
	authenticateFunc func(ctx context.Context, username, password string) (*model.User, error)
}

func (m *mockAuthenticator) Authenticate(ctx context.Context, username, password string) (*model.User, error) {
	if m.authenticateFunc != nil {
		return m.authenticateFunc(ctx, username, password)
	}
	return nil, nil
}

type mockResolver struct {
	resolveFunc func(ctx context.Context, raw string) (*model.User, error)
}

func (m *mockResolver) ResolvePrincipal(ctx context.Context, raw string) (*model.User, error) {
	if m.resolveFunc != nil {
		return m.resolveFunc(ctx, raw)
	}
	return nil, apperrors.Unauthorized("Could not validate credentials")
}

type mockBridge struct {
	authorizeFunc func(provider, callbackURL string) (string, error)
	callbackFunc  func(ctx context.Context, provider string, params oauth.CallbackParams, callbackURL string) (string, error)
}

func (m *mockBridge) Authorize(provider, callbackURL string) (string, error) {
	if m.authorizeFunc != nil {
		return m.authorizeFunc(provider, callbackURL)
	}
	return "", autherrors.ErrUnknownProvider
}

func (m *mockBridge) Callback(ctx context.Context, provider string, params oauth.CallbackParams, callbackURL string) (string, error) {
	if m.callbackFunc != nil {
		return m.callbackFunc(ctx, provider, params, callbackURL)
	}
	return "", autherrors.ErrUnknownProvider
}

type failingIssuer struct{}

func (failingIssuer) Create(token.Claims, time.Duration) (string, error) {
	return "", errors.New("signer unavailable")
}

func testConfig() *config.Config {
	return &config.Config{
		Log:                logger.Discard(),
		AccessTokenExpire:  30 * time.Minute,
		RefreshTokenExpire: 7 * 24 * time.Hour,
	}
}

func newTokens(t *testing.T, now time.Time) *token.Service {
	t.Helper()
	tokens, err := token.NewService(testSecret, token.WithClock(func() time.Time { return now }))
	require.NoError(t, err)
	return tokens
}

func alice() *model.User {
	return &model.User{ID: "u1", Username: "alice", Email: "a@x.io"}
}

func TestAuthService_Login(t *testing.T) {
	now := time.Date(2030, 1, 1, 12, 0, 0, 0, time.UTC)
	tokens := newTokens(t, now)
	creds := &mockAuthenticator{
		authenticateFunc: func(ctx context.Context, username, password string) (*model.User, error) {
			if username == "a@x.io" && password == "pw1" {
				return alice(), nil
			}
			return nil, nil
		},
	}
	svc := NewAuthService(creds, &mockResolver{}, tokens, &mockBridge{}, testConfig())

	pair, err := svc.Login(context.Background(), "a@x.io", "pw1")
	require.NoError(t, err)
	assert.Equal(t, model.TokenTypeBearer, pair.TokenType)
	assert.NotEqual(t, pair.AccessToken, pair.RefreshToken)

	access, err := tokens.Verify(pair.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "a@x.io", access.Subject)
	assert.Equal(t, now.Add(30*time.Minute).Unix(), access.ExpiresAt.Unix())

	refresh, err := tokens.Verify(pair.RefreshToken)
	require.NoError(t, err)
	assert.Equal(t, "a@x.io", refresh.Subject)
	assert.Equal(t, now.Add(7*24*time.Hour).Unix(), refresh.ExpiresAt.Unix())
}

func TestAuthService_LoginRejected(t *testing.T) {
	svc := NewAuthService(&mockAuthenticator{}, &mockResolver{}, newTokens(t, time.Now()), &mockBridge{}, testConfig())

	pair, err := svc.Login(context.Background(), "a@x.io", "wrong")
	assert.Nil(t, pair)
	require.Error(t, err)
	assert.ErrorIs(t, err, autherrors.ErrInvalidCredentials)

	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, http.StatusUnauthorized, appErr.HTTPStatus)
	assert.Equal(t, "Incorrect username or password", appErr.Message)
}

func TestAuthService_LoginInternalFailures(t *testing.T) {
	dbErr := errors.New("connection reset")
	broken := &mockAuthenticator{
		authenticateFunc: func(ctx context.Context, username, password string) (*model.User, error) {
			return nil, dbErr
		},
	}
	ok := &mockAuthenticator{
		authenticateFunc: func(ctx context.Context, username, password string) (*model.User, error) {
			return alice(), nil
		},
	}

	tests := []struct {
		name   string
		creds  Authenticator
		issuer TokenIssuer
	}{
		{name: "credential store failure", creds: broken, issuer: newTokens(t, time.Now())},
		{name: "token signing failure", creds: ok, issuer: failingIssuer{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := NewAuthService(tt.creds, &mockResolver{}, tt.issuer, &mockBridge{}, testConfig())
			_, err := svc.Login(context.Background(), "a@x.io", "pw1")

			var appErr *apperrors.AppError
			require.ErrorAs(t, err, &appErr)
			assert.Equal(t, apperrors.CodeInternal, appErr.Code)
		})
	}
}

func TestAuthService_Refresh(t *testing.T) {
	tokens := newTokens(t, time.Now())
	resolver := &mockResolver{
		resolveFunc: func(ctx context.Context, raw string) (*model.User, error) {
			if raw == "good-refresh" {
				return alice(), nil
			}
			return nil, apperrors.AuthFailure(apperrors.CodeInvalidToken, "Could not validate credentials",
				fmt.Errorf("%w: %w", autherrors.ErrUnauthorized, autherrors.ErrInvalidToken))
		},
	}
	svc := NewAuthService(&mockAuthenticator{}, resolver, tokens, &mockBridge{}, testConfig())

	out, err := svc.Refresh(context.Background(), "good-refresh")
	require.NoError(t, err)
	assert.Equal(t, model.TokenTypeBearer, out.TokenType)
	claims, err := tokens.Verify(out.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "a@x.io", claims.Subject)

	out, err = svc.Refresh(context.Background(), "forged")
	assert.Nil(t, out)
	assert.ErrorIs(t, err, autherrors.ErrUnauthorized)
}

func TestAuthService_AuthorizationURL(t *testing.T) {
	bridge := &mockBridge{
		authorizeFunc: func(provider, callbackURL string) (string, error) {
			if provider == "google" {
				return "https://accounts.google.com/o/oauth2/auth?client_id=gid", nil
			}
			return "", fmt.Errorf("%w: %q", autherrors.ErrUnknownProvider, provider)
		},
	}
	svc := NewAuthService(&mockAuthenticator{}, &mockResolver{}, newTokens(t, time.Now()), bridge, testConfig())

	out, err := svc.AuthorizationURL("google", "http://app/callback/google")
	require.NoError(t, err)
	assert.Equal(t, "https://accounts.google.com/o/oauth2/auth?client_id=gid", out.AuthorizationURL)

	_, err = svc.AuthorizationURL("myspace", "http://app/callback/myspace")
	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, http.StatusUnauthorized, appErr.HTTPStatus)
	assert.Equal(t, apperrors.CodeUnknownProvider, appErr.Code)
}

func TestAuthService_OAuthCallbackErrorCodes(t *testing.T) {
	tests := []struct {
		cause      error
		wantCode   string
		wantStatus int
	}{
		{autherrors.ErrUnknownProvider, apperrors.CodeUnknownProvider, http.StatusUnauthorized},
		{autherrors.ErrProviderError, apperrors.CodeProviderError, http.StatusUnauthorized},
		{autherrors.ErrMissingCode, apperrors.CodeMissingCode, http.StatusUnauthorized},
		{autherrors.ErrTokenExchangeFailed, apperrors.CodeTokenExchangeFailed, http.StatusUnauthorized},
		{autherrors.ErrUserInfoFailed, apperrors.CodeUserInfoFailed, http.StatusUnauthorized},
		{errors.New("signer unavailable"), apperrors.CodeInternal, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.wantCode, func(t *testing.T) {
			bridge := &mockBridge{
				callbackFunc: func(ctx context.Context, provider string, params oauth.CallbackParams, callbackURL string) (string, error) {
					return "", fmt.Errorf("wrapped: %w", tt.cause)
				},
			}
			svc := NewAuthService(&mockAuthenticator{}, &mockResolver{}, newTokens(t, time.Now()), bridge, testConfig())

			_, err := svc.OAuthCallback(context.Background(), "google", oauth.CallbackParams{Code: "c"}, "http://app/callback/google")
			var appErr *apperrors.AppError
			require.ErrorAs(t, err, &appErr)
			assert.Equal(t, tt.wantCode, appErr.Code)
			assert.Equal(t, tt.wantStatus, appErr.HTTPStatus)
		})
	}
}

func TestAuthService_OAuthCallbackSuccess(t *testing.T) {
	bridge := &mockBridge{
		callbackFunc: func(ctx context.Context, provider string, params oauth.CallbackParams, callbackURL string) (string, error) {
			assert.Equal(t, "code-1", params.Code)
			assert.Equal(t, "http://app/callback/github", callbackURL)
			return "issued-token", nil
		},
	}
	svc := NewAuthService(&mockAuthenticator{}, &mockResolver{}, newTokens(t, time.Now()), bridge, testConfig())

	out, err := svc.OAuthCallback(context.Background(), "github", oauth.CallbackParams{Code: "code-1"}, "http://app/callback/github")
	require.NoError(t, err)
	assert.Equal(t, &model.AccessToken{AccessToken: "issued-token", TokenType: model.TokenTypeBearer}, out)
}
