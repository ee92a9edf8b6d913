package validator

import (
	"time"

	bookingserrors "slotbook/internal/bookings/errors"
	"slotbook/pkg/logger"
	"slotbook/pkg/model"
	"slotbook/pkg/validation"

	"github.com/go-playground/validator/v10"
)

type Option func(*BookingValidator)

// WithClock replaces time.Now for the past-time rule
func WithClock(now func() time.Time) Option {
	return func(v *BookingValidator) {
		v.now = now
	}
}

// BookingValidator enforces booking invariants on creation and drives the
// partial update state machine. It is stateless apart from its clock.
type BookingValidator struct {
	validate *validator.Validate
	logger   *logger.Logger
	now      func() time.Time
}

func NewBookingValidator(log *logger.Logger, opts ...Option) *BookingValidator {
	v := &BookingValidator{
		validate: validation.New(),
		logger:   log,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// ValidateCreate runs the schema checks and then the creation rules in a
// fixed order, returning the first violation.
func (v *BookingValidator) ValidateCreate(input *model.BookingCreate) error {
	if err := validation.Struct(v.validate, input); err != nil {
		return err
	}

	if input.BookingTime.Before(v.now()) {
		return bookingserrors.ErrInvalidBookingTime
	}
	if !input.IsRecurring && input.EndTime == nil {
		return bookingserrors.ErrMissingEndTime
	}
	if recurrenceMismatch(input.IsRecurring, input.RecurrenceInterval) {
		return bookingserrors.ErrRecurrenceMismatch
	}
	if input.EndTime != nil && input.BookingTime.After(*input.EndTime) {
		return bookingserrors.ErrInvalidTimeRange
	}
	return nil
}

// ApplyUpdate returns existing merged with update, or the first rule the
// merged state breaks. existing is never modified.
//
// A cancellation wins over every other field and skips all checks. An
// is_cancelled of false is ignored since cancellation is terminal.
func (v *BookingValidator) ApplyUpdate(existing *model.Booking, update *model.BookingUpdate) (*model.Booking, error) {
	merged := *existing

	if update.IsCancelled != nil && *update.IsCancelled {
		merged.IsCancelled = true
		return &merged, nil
	}

	if err := validation.Struct(v.validate, update); err != nil {
		return nil, err
	}

	if update.BookingTime != nil {
		merged.BookingTime = *update.BookingTime
	}

	if update.EndTime != nil {
		if merged.BookingTime.After(*update.EndTime) {
			return nil, bookingserrors.ErrInvalidTimeRange
		}
		end := *update.EndTime
		merged.EndTime = &end
	} else if merged.EndTime != nil && merged.BookingTime.After(*merged.EndTime) {
		return nil, bookingserrors.ErrInvalidTimeRange
	}

	if update.Description != nil && *update.Description != "" {
		merged.Description = *update.Description
	}

	interval := update.RecurrenceInterval
	if interval != nil && *interval == "" {
		interval = nil
	}

	if update.IsRecurring != nil {
		if !*update.IsRecurring && merged.EndTime == nil {
			return nil, bookingserrors.ErrMissingEndTime
		}
		merged.IsRecurring = *update.IsRecurring
		// Stopping recurrence drops the stored interval even when the
		// payload does not name it; a one-off booking keeps no interval.
		if !merged.IsRecurring && interval == nil {
			merged.RecurrenceInterval = nil
		}
	}

	if interval != nil {
		value := *interval
		merged.RecurrenceInterval = &value
	}

	if (update.IsRecurring != nil || interval != nil) && recurrenceMismatch(merged.IsRecurring, merged.RecurrenceInterval) {
		return nil, bookingserrors.ErrRecurrenceMismatch
	}

	return &merged, nil
}

// recurrenceMismatch reports whether the recurring flag and the interval
// disagree: one is set without the other.
func recurrenceMismatch(isRecurring bool, interval *string) bool {
	hasInterval := interval != nil && *interval != ""
	return isRecurring != hasInterval
}
