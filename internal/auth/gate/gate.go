package gate

import (
	"context"
	"errors"
	"fmt"

	autherrors "slotbook/internal/auth/errors"
	"slotbook/internal/auth/token"
	apperrors "slotbook/pkg/errors"
	"slotbook/pkg/logger"
	"slotbook/pkg/model"
)

const credentialsMessage = "Could not validate credentials"

type TokenVerifier interface {
	Verify(raw string) (*token.Claims, error)
}

// UserLookup returns nil, nil when no user has the email
type UserLookup interface {
	FindUserByEmail(ctx context.Context, email string) (*model.User, error)
}

// Gate turns a bearer token into the user it was issued for
type Gate struct {
	tokens TokenVerifier
	users  UserLookup
	log    *logger.Logger
}

func New(tokens TokenVerifier, users UserLookup, log *logger.Logger) *Gate {
	return &Gate{
		tokens: tokens,
		users:  users,
		log:    log,
	}
}

// ResolvePrincipal verifies raw and loads the user named by its subject.
// Every rejection is a 401 AppError wrapping ErrUnauthorized and the cause;
// a lookup failure is a 500.
func (g *Gate) ResolvePrincipal(ctx context.Context, raw string) (*model.User, error) {
	claims, err := g.tokens.Verify(raw)
	if err != nil {
		return nil, reject(err)
	}
	if claims.Subject == "" {
		return nil, reject(autherrors.ErrMissingSubject)
	}

	user, err := g.users.FindUserByEmail(ctx, claims.Subject)
	if err != nil {
		g.log.Error("Failed to load token subject", "error", err)
		return nil, apperrors.Internal("Failed to validate credentials", err)
	}
	if user == nil {
		return nil, reject(autherrors.ErrUserNotFound)
	}
	return user, nil
}

func reject(cause error) *apperrors.AppError {
	code := apperrors.CodeUnauthorized
	switch {
	case errors.Is(cause, autherrors.ErrExpiredToken):
		code = apperrors.CodeExpiredToken
	case errors.Is(cause, autherrors.ErrInvalidToken):
		code = apperrors.CodeInvalidToken
	}
	return apperrors.AuthFailure(code, credentialsMessage, fmt.Errorf("%w: %w", autherrors.ErrUnauthorized, cause))
}
