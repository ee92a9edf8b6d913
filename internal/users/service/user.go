package service

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	userserrors "slotbook/internal/users/errors"
	"slotbook/internal/users/repository"
	"slotbook/internal/users/validator"
	"slotbook/pkg/config"
	apperrors "slotbook/pkg/errors"
	"slotbook/pkg/model"
	"slotbook/pkg/password"
	"slotbook/pkg/sanitizer"
	"slotbook/pkg/validation"
)

type UserService interface {
	Register(ctx context.Context, input *model.UserCreate) (*model.User, error)
	List(ctx context.Context) ([]*model.User, error)
	FindByEmail(ctx context.Context, email string) (*model.User, error)
}

type userService struct {
	repo      repository.UserRepository
	validator *validator.UserValidator
	hasher    *password.Hasher
	cfg       *config.Config
}

func NewUserService(
	repo repository.UserRepository,
	validator *validator.UserValidator,
	hasher *password.Hasher,
	cfg *config.Config,
) UserService {
	return &userService{
		repo:      repo,
		validator: validator,
		hasher:    hasher,
		cfg:       cfg,
	}
}

func (s *userService) Register(ctx context.Context, input *model.UserCreate) (*model.User, error) {
	sanitizer.SanitizeUserCreate(input)
	if err := s.validator.Validate(input); err != nil {
		s.cfg.Log.Warn("User validation failed", "error", err)
		var verrs validation.ValidationErrors
		if errors.As(err, &verrs) {
			return nil, apperrors.Validation("Invalid user input", verrs.Details())
		}
		return nil, apperrors.Validation("Invalid user input", map[string]any{"error": err.Error()})
	}

	_, err := s.repo.FindByEmail(ctx, input.Email)
	switch {
	case err == nil:
		return nil, duplicateEmail()
	case !errors.Is(err, userserrors.ErrNotFound):
		s.cfg.Log.Error("Failed to look up user email", "error", err)
		return nil, apperrors.Internal("Failed to register user", err)
	}

	hash, err := s.hasher.Hash(input.Password)
	if errors.Is(err, password.ErrTooLong) {
		s.cfg.Log.Warn("User validation failed", "error", err)
		return nil, apperrors.Validation("Invalid user input", map[string]any{
			"password": fmt.Sprintf("must be at most %d bytes", password.MaxBytes),
		})
	}
	if err != nil {
		s.cfg.Log.Error("Failed to hash password", "error", err)
		return nil, apperrors.Internal("Failed to register user", err)
	}

	user := &model.User{
		Username: input.Username,
		Email:    input.Email,
		Password: hash,
	}
	if err := s.repo.Create(ctx, user); err != nil {
		if errors.Is(err, userserrors.ErrDuplicateEmail) {
			return nil, duplicateEmail()
		}
		s.cfg.Log.Error("Failed to create user", "error", err)
		return nil, apperrors.Internal("Failed to register user", err)
	}

	s.cfg.Log.Info("User registered successfully", "id", user.ID)
	return user, nil
}

func (s *userService) List(ctx context.Context) ([]*model.User, error) {
	users, err := s.repo.FindAll(ctx)
	if err != nil {
		s.cfg.Log.Error("Failed to list users", "error", err)
		return nil, apperrors.Internal("Failed to retrieve users", err)
	}
	return users, nil
}

// FindByEmail returns an AppError wrapping ErrNotFound when no user has the
// email, so callers can still match the sentinel with errors.Is.
func (s *userService) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	user, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, userserrors.ErrNotFound) {
			return nil, apperrors.Wrap(err, apperrors.CodeNotFound, "User not found", http.StatusNotFound)
		}
		return nil, apperrors.Internal("Failed to retrieve user", err)
	}
	return user, nil
}

func duplicateEmail() *apperrors.AppError {
	return apperrors.BadRequest(apperrors.CodeDuplicateEmail, "Email already registered", userserrors.ErrDuplicateEmail)
}
