package model

import "time"

const (
	RecurrenceDaily   = "daily"
	RecurrenceWeekly  = "weekly"
	RecurrenceMonthly = "monthly"
	RecurrenceYearly  = "yearly"
)

type Booking struct {
	ID                 string     `json:"id,omitempty" bson:"_id,omitempty"`
	UserID             string     `json:"user_id" bson:"user_id"`
	DateOfBooking      time.Time  `json:"date_of_booking" bson:"date_of_booking"`
	BookingTime        time.Time  `json:"booking_time" bson:"booking_time"`
	EndTime            *time.Time `json:"end_time" bson:"end_time,omitempty"`
	Description        string     `json:"description" bson:"description"`
	IsRecurring        bool       `json:"is_recurring" bson:"is_recurring"`
	RecurrenceInterval *string    `json:"recurrence_interval" bson:"recurrence_interval,omitempty"`
	IsCancelled        bool       `json:"is_cancelled" bson:"is_cancelled"`
}

type BookingCreate struct {
	BookingTime        time.Time  `json:"booking_time" validate:"required"`
	EndTime            *time.Time `json:"end_time,omitempty"`
	Description        *string    `json:"description" validate:"required,max=255"`
	IsRecurring        bool       `json:"is_recurring"`
	RecurrenceInterval *string    `json:"recurrence_interval,omitempty" validate:"omitempty,oneof=daily weekly monthly yearly"`
}

// BookingUpdate is a partial update; nil fields are left untouched.
type BookingUpdate struct {
	BookingTime        *time.Time `json:"booking_time,omitempty"`
	EndTime            *time.Time `json:"end_time,omitempty"`
	Description        *string    `json:"description,omitempty" validate:"omitempty,max=255"`
	IsRecurring        *bool      `json:"is_recurring,omitempty"`
	RecurrenceInterval *string    `json:"recurrence_interval,omitempty" validate:"omitempty,oneof=daily weekly monthly yearly"`
	IsCancelled        *bool      `json:"is_cancelled,omitempty"`
}
