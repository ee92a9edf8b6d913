package gate

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	autherrors "slotbook/internal/auth/errors"
	"slotbook/internal/auth/token"
	apperrors "slotbook/pkg/errors"
	"slotbook/pkg/logger"
	"slotbook/pkg/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "gate-test-secret-with-enough-length!!"

type mockUserLookup struct {
	findFunc func(ctx context.Context, email string) (*model.User, error)
}

func (m *mockUserLookup) FindUserByEmail(ctx context.Context, email string) (*model.User, error) {
	if m.findFunc != nil {
		return m.findFunc(ctx, email)
	}
	return nil, nil
}

type mockVerifier struct {
	claims *token.Claims
	err    error
}

func (m *mockVerifier) Verify(string) (*token.Claims, error) {
	return m.claims, m.err
}

func knownUser(email string) *mockUserLookup {
	return &mockUserLookup{
		findFunc: func(ctx context.Context, e string) (*model.User, error) {
			if e == email {
				return &model.User{ID: "u1", Email: email}, nil
			}
			return nil, nil
		},
	}
}

func TestGate_ResolvePrincipal(t *testing.T) {
	now := time.Date(2030, 1, 1, 12, 0, 0, 0, time.UTC)
	tokens, err := token.NewService(testSecret, token.WithClock(func() time.Time { return now }))
	require.NoError(t, err)

	valid, err := tokens.Create(token.Claims{Subject: "a@x.io"}, 30*time.Minute)
	require.NoError(t, err)
	ghost, err := tokens.Create(token.Claims{Subject: "ghost@x.io"}, 30*time.Minute)
	require.NoError(t, err)
	expired, err := tokens.Create(token.Claims{Subject: "a@x.io"}, time.Second)
	require.NoError(t, err)

	later, err := token.NewService(testSecret, token.WithClock(func() time.Time { return now.Add(time.Minute) }))
	require.NoError(t, err)

	tests := []struct {
		name     string
		verifier TokenVerifier
		raw      string
		wantCode string
		wantErr  error
	}{
		{name: "valid token", verifier: tokens, raw: valid},
		{name: "expired token", verifier: later, raw: expired, wantCode: apperrors.CodeExpiredToken, wantErr: autherrors.ErrExpiredToken},
		{name: "garbage token", verifier: tokens, raw: "not.a.jwt", wantCode: apperrors.CodeInvalidToken, wantErr: autherrors.ErrInvalidToken},
		{name: "empty token", verifier: tokens, raw: "", wantCode: apperrors.CodeInvalidToken, wantErr: autherrors.ErrInvalidToken},
		{name: "unknown subject", verifier: tokens, raw: ghost, wantCode: apperrors.CodeUnauthorized, wantErr: autherrors.ErrUserNotFound},
		{
			name:     "missing subject",
			verifier: &mockVerifier{claims: &token.Claims{}},
			wantCode: apperrors.CodeUnauthorized,
			wantErr:  autherrors.ErrMissingSubject,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := New(tt.verifier, knownUser("a@x.io"), logger.Discard())

			user, err := g.ResolvePrincipal(context.Background(), tt.raw)
			if tt.wantErr == nil {
				require.NoError(t, err)
				assert.Equal(t, "a@x.io", user.Email)
				return
			}

			require.Error(t, err)
			assert.Nil(t, user)
			assert.ErrorIs(t, err, autherrors.ErrUnauthorized)
			assert.ErrorIs(t, err, tt.wantErr)

			var appErr *apperrors.AppError
			require.ErrorAs(t, err, &appErr)
			assert.Equal(t, http.StatusUnauthorized, appErr.HTTPStatus)
			assert.Equal(t, tt.wantCode, appErr.Code)
			assert.Equal(t, "Could not validate credentials", appErr.Message)
		})
	}
}

func TestGate_LookupFailureIsInternal(t *testing.T) {
	tokens, err := token.NewService(testSecret)
	require.NoError(t, err)
	raw, err := tokens.Create(token.Claims{Subject: "a@x.io"}, time.Minute)
	require.NoError(t, err)

	dbErr := errors.New("server selection timeout")
	g := New(tokens, &mockUserLookup{
		findFunc: func(ctx context.Context, email string) (*model.User, error) {
			return nil, dbErr
		},
	}, logger.Discard())

	_, err = g.ResolvePrincipal(context.Background(), raw)
	require.Error(t, err)
	assert.NotErrorIs(t, err, autherrors.ErrUnauthorized)

	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, http.StatusInternalServerError, appErr.HTTPStatus)
	assert.ErrorIs(t, err, dbErr)
}
