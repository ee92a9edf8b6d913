package service

import (
	"context"
	"errors"
	"time"

	autherrors "slotbook/internal/auth/errors"
	"slotbook/internal/auth/oauth"
	"slotbook/internal/auth/token"
	"slotbook/pkg/config"
	apperrors "slotbook/pkg/errors"
	"slotbook/pkg/model"
)

type AuthService interface {
	Login(ctx context.Context, username, password string) (*model.TokenPair, error)
	Refresh(ctx context.Context, refreshToken string) (*model.AccessToken, error)
	AuthorizationURL(provider, callbackURL string) (*model.AuthorizationURL, error)
	OAuthCallback(ctx context.Context, provider string, params oauth.CallbackParams, callbackURL string) (*model.AccessToken, error)
}

type Authenticator interface {
	Authenticate(ctx context.Context, username, password string) (*model.User, error)
}

type PrincipalResolver interface {
	ResolvePrincipal(ctx context.Context, raw string) (*model.User, error)
}

type TokenIssuer interface {
	Create(claims token.Claims, ttl time.Duration) (string, error)
}

type OAuthBridge interface {
	Authorize(provider, callbackURL string) (string, error)
	Callback(ctx context.Context, provider string, params oauth.CallbackParams, callbackURL string) (string, error)
}

type authService struct {
	credentials Authenticator
	principals  PrincipalResolver
	tokens      TokenIssuer
	bridge      OAuthBridge
	cfg         *config.Config
}

func NewAuthService(
	credentials Authenticator,
	principals PrincipalResolver,
	tokens TokenIssuer,
	bridge OAuthBridge,
	cfg *config.Config,
) AuthService {
	return &authService{
		credentials: credentials,
		principals:  principals,
		tokens:      tokens,
		bridge:      bridge,
		cfg:         cfg,
	}
}

// Login answers the same 401 for an unknown email and a wrong password.
func (s *authService) Login(ctx context.Context, username, password string) (*model.TokenPair, error) {
	user, err := s.credentials.Authenticate(ctx, username, password)
	if err != nil {
		s.cfg.Log.Error("Failed to authenticate user", "error", err)
		return nil, apperrors.Internal("Failed to authenticate user", err)
	}
	if user == nil {
		s.cfg.Log.Warn("Rejected password login")
		return nil, apperrors.AuthFailure(apperrors.CodeUnauthorized, "Incorrect username or password", autherrors.ErrInvalidCredentials)
	}

	access, err := s.issue(user.Email, s.cfg.AccessTokenExpire)
	if err != nil {
		return nil, err
	}
	refresh, err := s.issue(user.Email, s.cfg.RefreshTokenExpire)
	if err != nil {
		return nil, err
	}

	s.cfg.Log.Info("User logged in", "user_id", user.ID)
	return &model.TokenPair{
		AccessToken:  access,
		TokenType:    model.TokenTypeBearer,
		RefreshToken: refresh,
	}, nil
}

// Refresh accepts any unexpired token whose subject still has an account.
func (s *authService) Refresh(ctx context.Context, refreshToken string) (*model.AccessToken, error) {
	user, err := s.principals.ResolvePrincipal(ctx, refreshToken)
	if err != nil {
		return nil, err
	}

	access, err := s.issue(user.Email, s.cfg.AccessTokenExpire)
	if err != nil {
		return nil, err
	}
	return &model.AccessToken{AccessToken: access, TokenType: model.TokenTypeBearer}, nil
}

func (s *authService) AuthorizationURL(provider, callbackURL string) (*model.AuthorizationURL, error) {
	authURL, err := s.bridge.Authorize(provider, callbackURL)
	if err != nil {
		return nil, oauthError(err)
	}
	return &model.AuthorizationURL{AuthorizationURL: authURL}, nil
}

func (s *authService) OAuthCallback(ctx context.Context, provider string, params oauth.CallbackParams, callbackURL string) (*model.AccessToken, error) {
	access, err := s.bridge.Callback(ctx, provider, params, callbackURL)
	if err != nil {
		appErr := oauthError(err)
		if appErr.Code == apperrors.CodeInternal {
			s.cfg.Log.Error("OAuth callback failed", "provider", provider, "error", err)
		}
		return nil, appErr
	}
	return &model.AccessToken{AccessToken: access, TokenType: model.TokenTypeBearer}, nil
}

func (s *authService) issue(subject string, ttl time.Duration) (string, error) {
	raw, err := s.tokens.Create(token.Claims{Subject: subject}, ttl)
	if err != nil {
		s.cfg.Log.Error("Failed to issue token", "error", err)
		return "", apperrors.Internal("Failed to issue token", err)
	}
	return raw, nil
}

func oauthError(err error) *apperrors.AppError {
	switch {
	case errors.Is(err, autherrors.ErrUnknownProvider):
		return apperrors.AuthFailure(apperrors.CodeUnknownProvider, "Unknown provider", err)
	case errors.Is(err, autherrors.ErrProviderError):
		return apperrors.AuthFailure(apperrors.CodeProviderError, "Provider returned an error", err)
	case errors.Is(err, autherrors.ErrMissingCode):
		return apperrors.AuthFailure(apperrors.CodeMissingCode, "Authorization code is missing", err)
	case errors.Is(err, autherrors.ErrTokenExchangeFailed):
		return apperrors.AuthFailure(apperrors.CodeTokenExchangeFailed, "Authorization code exchange failed", err)
	case errors.Is(err, autherrors.ErrUserInfoFailed):
		return apperrors.AuthFailure(apperrors.CodeUserInfoFailed, "Could not read provider account", err)
	default:
		return apperrors.Internal("OAuth login failed", err)
	}
}
