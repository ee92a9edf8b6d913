package validator

import (
	"strings"
	"testing"
	"time"

	bookingserrors "slotbook/internal/bookings/errors"
	"slotbook/pkg/logger"
	"slotbook/pkg/model"
	"slotbook/pkg/validation"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2030, 6, 1, 9, 0, 0, 0, time.UTC)

func newValidator() *BookingValidator {
	return NewBookingValidator(logger.Discard(), WithClock(func() time.Time { return now }))
}

func ptr[T any](v T) *T {
	return &v
}

func TestValidateCreate(t *testing.T) {
	future := now.Add(24 * time.Hour)

	tests := []struct {
		name    string
		input   model.BookingCreate
		wantErr error
	}{
		{
			name: "one-off booking",
			input: model.BookingCreate{
				BookingTime: future,
				EndTime:     ptr(future.Add(time.Hour)),
				Description: ptr("dentist"),
			},
		},
		{
			name: "recurring booking without end time",
			input: model.BookingCreate{
				BookingTime:        future,
				Description:        ptr("standup"),
				IsRecurring:        true,
				RecurrenceInterval: ptr(model.RecurrenceWeekly),
			},
		},
		{
			name: "empty description is allowed",
			input: model.BookingCreate{
				BookingTime: future,
				EndTime:     ptr(future),
				Description: ptr(""),
			},
		},
		{
			name: "booking time in the past",
			input: model.BookingCreate{
				BookingTime: now.Add(-time.Minute),
				EndTime:     ptr(future),
				Description: ptr("late"),
			},
			wantErr: bookingserrors.ErrInvalidBookingTime,
		},
		{
			name: "past time is checked before end time",
			input: model.BookingCreate{
				BookingTime: now.Add(-time.Minute),
				Description: ptr("late"),
			},
			wantErr: bookingserrors.ErrInvalidBookingTime,
		},
		{
			name: "non-recurring without end time",
			input: model.BookingCreate{
				BookingTime: future,
				Description: ptr("x"),
			},
			wantErr: bookingserrors.ErrMissingEndTime,
		},
		{
			name: "recurring without interval",
			input: model.BookingCreate{
				BookingTime: future,
				Description: ptr("x"),
				IsRecurring: true,
			},
			wantErr: bookingserrors.ErrRecurrenceMismatch,
		},
		{
			name: "interval without recurring",
			input: model.BookingCreate{
				BookingTime:        future,
				EndTime:            ptr(future.Add(time.Hour)),
				Description:        ptr("x"),
				RecurrenceInterval: ptr(model.RecurrenceDaily),
			},
			wantErr: bookingserrors.ErrRecurrenceMismatch,
		},
		{
			name: "end before start",
			input: model.BookingCreate{
				BookingTime: future,
				EndTime:     ptr(future.Add(-time.Hour)),
				Description: ptr("x"),
			},
			wantErr: bookingserrors.ErrInvalidTimeRange,
		},
		{
			name: "mismatch is checked before time range",
			input: model.BookingCreate{
				BookingTime:        future,
				EndTime:            ptr(future.Add(-time.Hour)),
				Description:        ptr("x"),
				RecurrenceInterval: ptr(model.RecurrenceDaily),
			},
			wantErr: bookingserrors.ErrRecurrenceMismatch,
		},
	}

	v := newValidator()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.ValidateCreate(&tt.input)
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestValidateCreate_Schema(t *testing.T) {
	future := now.Add(time.Hour)

	tests := []struct {
		name  string
		input model.BookingCreate
		field string
	}{
		{name: "missing booking time", input: model.BookingCreate{Description: ptr("x"), EndTime: ptr(future)}, field: "booking_time"},
		{name: "missing description", input: model.BookingCreate{BookingTime: future, EndTime: ptr(future)}, field: "description"},
		{name: "description too long", input: model.BookingCreate{BookingTime: future, EndTime: ptr(future), Description: ptr(strings.Repeat("d", 256))}, field: "description"},
		{
			name: "unknown interval",
			input: model.BookingCreate{
				BookingTime:        future,
				Description:        ptr("x"),
				IsRecurring:        true,
				RecurrenceInterval: ptr("hourly"),
			},
			field: "recurrence_interval",
		},
	}

	v := newValidator()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.ValidateCreate(&tt.input)
			var verrs validation.ValidationErrors
			require.ErrorAs(t, err, &verrs)
			assert.Contains(t, verrs.Details(), tt.field)
		})
	}
}

func existingBooking() *model.Booking {
	start := now.Add(48 * time.Hour)
	end := start.Add(time.Hour)
	return &model.Booking{
		ID:            "65f0000000000000000000b1",
		UserID:        "65f0000000000000000000a1",
		DateOfBooking: now,
		BookingTime:   start,
		EndTime:       &end,
		Description:   "haircut",
	}
}

func recurringBooking() *model.Booking {
	b := existingBooking()
	b.EndTime = nil
	b.IsRecurring = true
	b.RecurrenceInterval = ptr(model.RecurrenceMonthly)
	return b
}

func TestApplyUpdate_Cancellation(t *testing.T) {
	v := newValidator()
	existing := existingBooking()

	merged, err := v.ApplyUpdate(existing, &model.BookingUpdate{
		IsCancelled: ptr(true),
		EndTime:     ptr(existing.BookingTime.Add(-time.Hour)),
		Description: ptr(strings.Repeat("x", 500)),
	})
	require.NoError(t, err)
	assert.True(t, merged.IsCancelled)
	assert.Equal(t, existing.EndTime, merged.EndTime)
	assert.Equal(t, "haircut", merged.Description)
	assert.False(t, existing.IsCancelled, "input must not be modified")
}

func TestApplyUpdate_UncancelIsIgnored(t *testing.T) {
	v := newValidator()
	existing := existingBooking()
	existing.IsCancelled = true

	merged, err := v.ApplyUpdate(existing, &model.BookingUpdate{
		IsCancelled: ptr(false),
		Description: ptr("new"),
	})
	require.NoError(t, err)
	assert.True(t, merged.IsCancelled)
	assert.Equal(t, "new", merged.Description)
}

func TestApplyUpdate_StopRecurringClearsIntervalNotInPayload(t *testing.T) {
	v := newValidator()
	existing := recurringBooking()
	existing.EndTime = ptr(existing.BookingTime.Add(time.Hour))

	merged, err := v.ApplyUpdate(existing, &model.BookingUpdate{IsRecurring: ptr(false)})
	require.NoError(t, err)

	assert.False(t, merged.IsRecurring)
	assert.Nil(t, merged.RecurrenceInterval, "interval is cleared although the payload omits it")
	assert.Equal(t, existing.EndTime, merged.EndTime)
	assert.Equal(t, existing.BookingTime, merged.BookingTime)
	assert.Equal(t, existing.Description, merged.Description)
	require.NotNil(t, existing.RecurrenceInterval, "input must not be modified")
	assert.Equal(t, model.RecurrenceMonthly, *existing.RecurrenceInterval)
}

func TestApplyUpdate_Fields(t *testing.T) {
	v := newValidator()

	tests := []struct {
		name     string
		existing func() *model.Booking
		update   model.BookingUpdate
		check    func(t *testing.T, merged *model.Booking)
		wantErr  error
	}{
		{
			name:     "empty update keeps record",
			existing: existingBooking,
			check: func(t *testing.T, merged *model.Booking) {
				assert.Equal(t, existingBooking(), merged)
			},
		},
		{
			name:     "booking time may move into the past",
			existing: existingBooking,
			update:   model.BookingUpdate{BookingTime: ptr(now.Add(-24 * time.Hour))},
			check: func(t *testing.T, merged *model.Booking) {
				assert.Equal(t, now.Add(-24*time.Hour), merged.BookingTime)
			},
		},
		{
			name:     "end time before merged booking time",
			existing: existingBooking,
			update:   model.BookingUpdate{EndTime: ptr(now)},
			wantErr:  bookingserrors.ErrInvalidTimeRange,
		},
		{
			name:     "end time is checked against the new booking time",
			existing: existingBooking,
			update: model.BookingUpdate{
				BookingTime: ptr(now.Add(time.Hour)),
				EndTime:     ptr(now.Add(2 * time.Hour)),
			},
			check: func(t *testing.T, merged *model.Booking) {
				assert.Equal(t, now.Add(2*time.Hour), *merged.EndTime)
			},
		},
		{
			name:     "booking time past the stored end time",
			existing: existingBooking,
			update:   model.BookingUpdate{BookingTime: ptr(now.Add(72 * time.Hour))},
			wantErr:  bookingserrors.ErrInvalidTimeRange,
		},
		{
			name:     "end equal to start is allowed",
			existing: existingBooking,
			update:   model.BookingUpdate{EndTime: ptr(existingBooking().BookingTime)},
		},
		{
			name:     "empty description is ignored",
			existing: existingBooking,
			update:   model.BookingUpdate{Description: ptr("")},
			check: func(t *testing.T, merged *model.Booking) {
				assert.Equal(t, "haircut", merged.Description)
			},
		},
		{
			name:     "description too long",
			existing: existingBooking,
			update:   model.BookingUpdate{Description: ptr(strings.Repeat("d", 256))},
			wantErr:  validation.ValidationErrors{},
		},
		{
			name:     "make recurring with interval",
			existing: existingBooking,
			update: model.BookingUpdate{
				IsRecurring:        ptr(true),
				RecurrenceInterval: ptr(model.RecurrenceYearly),
			},
			check: func(t *testing.T, merged *model.Booking) {
				assert.True(t, merged.IsRecurring)
				assert.Equal(t, model.RecurrenceYearly, *merged.RecurrenceInterval)
			},
		},
		{
			name:     "make recurring without interval",
			existing: existingBooking,
			update:   model.BookingUpdate{IsRecurring: ptr(true)},
			wantErr:  bookingserrors.ErrRecurrenceMismatch,
		},
		{
			name:     "interval on a one-off booking",
			existing: existingBooking,
			update:   model.BookingUpdate{RecurrenceInterval: ptr(model.RecurrenceDaily)},
			wantErr:  bookingserrors.ErrRecurrenceMismatch,
		},
		{
			name:     "change interval of recurring booking",
			existing: recurringBooking,
			update:   model.BookingUpdate{RecurrenceInterval: ptr(model.RecurrenceDaily)},
			check: func(t *testing.T, merged *model.Booking) {
				assert.Equal(t, model.RecurrenceDaily, *merged.RecurrenceInterval)
			},
		},
		{
			name:     "stop recurring without end time",
			existing: recurringBooking,
			update:   model.BookingUpdate{IsRecurring: ptr(false)},
			wantErr:  bookingserrors.ErrMissingEndTime,
		},
		{
			name:     "stop recurring with end time clears interval",
			existing: recurringBooking,
			update: model.BookingUpdate{
				EndTime:     ptr(recurringBooking().BookingTime.Add(time.Hour)),
				IsRecurring: ptr(false),
			},
			check: func(t *testing.T, merged *model.Booking) {
				assert.False(t, merged.IsRecurring)
				assert.Nil(t, merged.RecurrenceInterval)
				require.NotNil(t, merged.EndTime)
			},
		},
		{
			name:     "stop recurring but send an interval",
			existing: recurringBooking,
			update: model.BookingUpdate{
				EndTime:            ptr(recurringBooking().BookingTime.Add(time.Hour)),
				IsRecurring:        ptr(false),
				RecurrenceInterval: ptr(model.RecurrenceDaily),
			},
			wantErr: bookingserrors.ErrRecurrenceMismatch,
		},
		{
			name:     "unknown interval",
			existing: recurringBooking,
			update:   model.BookingUpdate{RecurrenceInterval: ptr("fortnightly")},
			wantErr:  validation.ValidationErrors{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			merged, err := v.ApplyUpdate(tt.existing(), &tt.update)

			switch want := tt.wantErr.(type) {
			case nil:
				require.NoError(t, err)
				if tt.check != nil {
					tt.check(t, merged)
				}
			case validation.ValidationErrors:
				var verrs validation.ValidationErrors
				assert.ErrorAs(t, err, &verrs)
				assert.Nil(t, merged)
			default:
				assert.ErrorIs(t, err, want)
				assert.Nil(t, merged)
			}
		})
	}
}
