package errors

import "errors"

var (
	ErrNotFound = errors.New("booking not found")

	ErrInvalidID = errors.New("invalid booking ID format")

	ErrInvalidBookingTime = errors.New("booking time cannot be in the past")

	ErrMissingEndTime = errors.New("a non-recurring booking needs an end time")

	ErrRecurrenceMismatch = errors.New("is_recurring and recurrence_interval must be set together")

	ErrInvalidTimeRange = errors.New("end time cannot be before booking time")
)
