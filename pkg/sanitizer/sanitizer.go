package sanitizer

import (
	"strings"

	"slotbook/pkg/model"
)

type Strategy func(string) string

type Pipeline []Strategy

func (p Pipeline) Apply(s string) string {
	for _, fn := range p {
		s = fn(s)
	}
	return s
}

func trimAndLower(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// SanitizeText cleans free text such as descriptions and usernames
func SanitizeText(input string) string {
	p := Pipeline{
		StripControl,
		TrimAndNormalize,
	}
	return p.Apply(input)
}

// SanitizeEmail trims surrounding whitespace. Case is kept because emails
// are matched exactly as stored.
func SanitizeEmail(input string) string {
	return strings.TrimSpace(input)
}

func SanitizeRecurrenceInterval(input string) string {
	return trimAndLower(input)
}

func SanitizeUserCreate(u *model.UserCreate) {
	u.Username = SanitizeText(u.Username)
	u.Email = SanitizeEmail(u.Email)
}

func SanitizeBookingCreate(b *model.BookingCreate) {
	if b.Description != nil {
		d := SanitizeText(*b.Description)
		b.Description = &d
	}
	b.RecurrenceInterval = sanitizeOptional(b.RecurrenceInterval, SanitizeRecurrenceInterval)
}

func SanitizeBookingUpdate(b *model.BookingUpdate) {
	if b.Description != nil {
		d := SanitizeText(*b.Description)
		b.Description = &d
	}
	b.RecurrenceInterval = sanitizeOptional(b.RecurrenceInterval, SanitizeRecurrenceInterval)
}

// sanitizeOptional applies fn to a present value. A value that sanitizes to
// the empty string is treated as absent.
func sanitizeOptional(value *string, fn Strategy) *string {
	if value == nil {
		return nil
	}
	s := fn(*value)
	if s == "" {
		return nil
	}
	return &s
}
