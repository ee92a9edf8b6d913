package service

import (
	"context"
	"errors"
	"net/http"
	"time"

	bookingserrors "slotbook/internal/bookings/errors"
	"slotbook/internal/bookings/events"
	"slotbook/internal/bookings/repository"
	"slotbook/internal/bookings/validator"
	"slotbook/pkg/config"
	apperrors "slotbook/pkg/errors"
	"slotbook/pkg/model"
	"slotbook/pkg/sanitizer"
	"slotbook/pkg/validation"
)

type BookingService interface {
	Create(ctx context.Context, principal *model.User, input *model.BookingCreate) (*model.Booking, error)
	ListByOwner(ctx context.Context, principal *model.User) ([]*model.Booking, error)
	History(ctx context.Context, principal *model.User) ([]*model.Booking, error)
	Upcoming(ctx context.Context, principal *model.User) ([]*model.Booking, error)
	Update(ctx context.Context, principal *model.User, id string, update *model.BookingUpdate) (*model.Booking, error)
	Cancel(ctx context.Context, principal *model.User, id string) error
}

type Option func(*bookingService)

func WithClock(now func() time.Time) Option {
	return func(s *bookingService) {
		s.now = now
	}
}

type bookingService struct {
	repo      repository.BookingRepository
	validator *validator.BookingValidator
	events    events.Publisher
	cfg       *config.Config
	now       func() time.Time
}

func NewBookingService(
	repo repository.BookingRepository,
	validator *validator.BookingValidator,
	publisher events.Publisher,
	cfg *config.Config,
	opts ...Option,
) BookingService {
	if publisher == nil {
		publisher = events.NoopPublisher{}
	}
	s := &bookingService{
		repo:      repo,
		validator: validator,
		events:    publisher,
		cfg:       cfg,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *bookingService) Create(ctx context.Context, principal *model.User, input *model.BookingCreate) (*model.Booking, error) {
	sanitizer.SanitizeBookingCreate(input)
	if err := s.validator.ValidateCreate(input); err != nil {
		s.cfg.Log.Warn("Booking validation failed", "user_id", principal.ID, "error", err)
		return nil, ruleError(err)
	}

	booking := &model.Booking{
		UserID:             principal.ID,
		DateOfBooking:      s.now().UTC(),
		BookingTime:        input.BookingTime,
		EndTime:            input.EndTime,
		IsRecurring:        input.IsRecurring,
		RecurrenceInterval: input.RecurrenceInterval,
		IsCancelled:        false,
	}
	if input.Description != nil {
		booking.Description = *input.Description
	}

	if err := s.repo.Create(ctx, booking); err != nil {
		s.cfg.Log.Error("Failed to create booking", "user_id", principal.ID, "error", err)
		return nil, apperrors.Internal("Failed to create booking", err)
	}

	s.cfg.Log.Info("Booking created successfully",
		"id", booking.ID,
		"user_id", booking.UserID,
		"booking_time", booking.BookingTime,
		"is_recurring", booking.IsRecurring,
	)
	s.publish(ctx, events.TypeCreated, booking)
	return booking, nil
}

func (s *bookingService) ListByOwner(ctx context.Context, principal *model.User) ([]*model.Booking, error) {
	return s.find(ctx, principal, repository.TimeFilter{})
}

// History returns the principal's bookings that started before now.
func (s *bookingService) History(ctx context.Context, principal *model.User) ([]*model.Booking, error) {
	now := s.now().UTC()
	return s.find(ctx, principal, repository.TimeFilter{Before: &now})
}

// Upcoming returns the principal's bookings starting at or after now.
func (s *bookingService) Upcoming(ctx context.Context, principal *model.User) ([]*model.Booking, error) {
	now := s.now().UTC()
	return s.find(ctx, principal, repository.TimeFilter{From: &now})
}

func (s *bookingService) find(ctx context.Context, principal *model.User, filter repository.TimeFilter) ([]*model.Booking, error) {
	bookings, err := s.repo.FindByOwner(ctx, principal.ID, filter)
	if err != nil {
		s.cfg.Log.Error("Failed to list bookings", "user_id", principal.ID, "error", err)
		return nil, apperrors.Internal("Failed to retrieve bookings", err)
	}
	return bookings, nil
}

func (s *bookingService) Update(ctx context.Context, principal *model.User, id string, update *model.BookingUpdate) (*model.Booking, error) {
	existing, err := s.owned(ctx, principal, id)
	if err != nil {
		return nil, err
	}

	sanitizer.SanitizeBookingUpdate(update)
	merged, err := s.validator.ApplyUpdate(existing, update)
	if err != nil {
		s.cfg.Log.Warn("Booking update rejected", "id", id, "user_id", principal.ID, "error", err)
		return nil, ruleError(err)
	}

	if err := s.save(ctx, merged); err != nil {
		return nil, err
	}

	eventType := events.TypeUpdated
	if merged.IsCancelled && !existing.IsCancelled {
		eventType = events.TypeCancelled
	}
	s.cfg.Log.Info("Booking updated successfully", "id", merged.ID, "user_id", principal.ID, "is_cancelled", merged.IsCancelled)
	s.publish(ctx, eventType, merged)
	return merged, nil
}

// Cancel is idempotent. Cancelling an already cancelled booking succeeds
// without writing or publishing.
func (s *bookingService) Cancel(ctx context.Context, principal *model.User, id string) error {
	booking, err := s.owned(ctx, principal, id)
	if err != nil {
		return err
	}
	if booking.IsCancelled {
		return nil
	}

	booking.IsCancelled = true
	if err := s.save(ctx, booking); err != nil {
		return err
	}

	s.cfg.Log.Info("Booking cancelled successfully", "id", booking.ID, "user_id", principal.ID)
	s.publish(ctx, events.TypeCancelled, booking)
	return nil
}

// owned loads a booking and hides it unless principal owns it. A malformed
// id, a missing booking and a foreign booking all produce the same 404.
func (s *bookingService) owned(ctx context.Context, principal *model.User, id string) (*model.Booking, error) {
	booking, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, bookingserrors.ErrNotFound) || errors.Is(err, bookingserrors.ErrInvalidID) {
			return nil, notFound(err)
		}
		s.cfg.Log.Error("Failed to retrieve booking", "id", id, "error", err)
		return nil, apperrors.Internal("Failed to retrieve booking", err)
	}
	if booking.UserID != principal.ID {
		s.cfg.Log.Warn("Booking owner mismatch", "id", id, "user_id", principal.ID)
		return nil, notFound(bookingserrors.ErrNotFound)
	}
	return booking, nil
}

func (s *bookingService) save(ctx context.Context, booking *model.Booking) error {
	if err := s.repo.Save(ctx, booking); err != nil {
		if errors.Is(err, bookingserrors.ErrNotFound) {
			return notFound(err)
		}
		s.cfg.Log.Error("Failed to save booking", "id", booking.ID, "error", err)
		return apperrors.Internal("Failed to update booking", err)
	}
	return nil
}

// publish never fails the request. The booking is already committed.
func (s *bookingService) publish(ctx context.Context, eventType string, booking *model.Booking) {
	if err := s.events.Publish(ctx, eventType, booking); err != nil {
		s.cfg.Log.Warn("Failed to publish booking event", "event_type", eventType, "id", booking.ID, "error", err)
	}
}

func notFound(cause error) *apperrors.AppError {
	return apperrors.Wrap(cause, apperrors.CodeNotFound, "Booking not found", http.StatusNotFound)
}

func ruleError(err error) error {
	var verrs validation.ValidationErrors
	switch {
	case errors.As(err, &verrs):
		return apperrors.Validation("Invalid booking input", verrs.Details())
	case errors.Is(err, bookingserrors.ErrInvalidBookingTime):
		return apperrors.BadRequest(apperrors.CodeInvalidBookingTime, "Booking time cannot be in the past", err)
	case errors.Is(err, bookingserrors.ErrMissingEndTime):
		return apperrors.BadRequest(apperrors.CodeMissingEndTime, "End time is required for a non-recurring booking", err)
	case errors.Is(err, bookingserrors.ErrRecurrenceMismatch):
		return apperrors.BadRequest(apperrors.CodeRecurrenceMismatch, "is_recurring and recurrence_interval must be set together", err)
	case errors.Is(err, bookingserrors.ErrInvalidTimeRange):
		return apperrors.BadRequest(apperrors.CodeInvalidTimeRange, "End time cannot be before booking time", err)
	default:
		return apperrors.Validation("Invalid booking input", map[string]any{"error": err.Error()})
	}
}
