package validator

import (
	"slotbook/pkg/logger"
	"slotbook/pkg/model"
	"slotbook/pkg/validation"

	"github.com/go-playground/validator/v10"
)

type UserValidator struct {
	validate *validator.Validate
	logger   *logger.Logger
}

func NewUserValidator(log *logger.Logger) *UserValidator {
	return &UserValidator{
		validate: validation.New(),
		logger:   log,
	}
}

func (v *UserValidator) Validate(user *model.UserCreate) error {
	return validation.Struct(v.validate, user)
}
