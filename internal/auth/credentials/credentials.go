package credentials

import (
	"context"
	"errors"
	"fmt"

	userserrors "slotbook/internal/users/errors"
	"slotbook/pkg/model"
)

// UserFinder is satisfied by the users service. A missing user is reported
// as an error matching users ErrNotFound.
type UserFinder interface {
	FindByEmail(ctx context.Context, email string) (*model.User, error)
}

// PasswordVerifier checks a plain password against a stored hash
type PasswordVerifier interface {
	Verify(plain, hash string) bool
}

// Store resolves password credentials to users
type Store struct {
	users  UserFinder
	hasher PasswordVerifier
}

func NewStore(users UserFinder, hasher PasswordVerifier) *Store {
	return &Store{
		users:  users,
		hasher: hasher,
	}
}

// FindUserByEmail returns nil, nil when no user has the email.
func (s *Store) FindUserByEmail(ctx context.Context, email string) (*model.User, error) {
	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, userserrors.ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("find user by email: %w", err)
	}
	return user, nil
}

func (s *Store) VerifyPassword(plain, hash string) bool {
	return s.hasher.Verify(plain, hash)
}

// Authenticate returns the user whose email is username and whose password
// matches. An unknown email and a wrong password both yield nil, nil.
func (s *Store) Authenticate(ctx context.Context, username, password string) (*model.User, error) {
	user, err := s.FindUserByEmail(ctx, username)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, nil
	}
	if !s.VerifyPassword(password, user.Password) {
		return nil, nil
	}
	return user, nil
}
