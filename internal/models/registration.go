package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

type RegistrationStatus string

const (
	// StatusNone is the client-side resting state; the backend reports it
	// for users with no active registration.
	StatusNone       RegistrationStatus = "none"
	StatusInterested RegistrationStatus = "interested"
	StatusRegistered RegistrationStatus = "registered"
	StatusCancelled  RegistrationStatus = "cancelled"
)

type Registration struct {
	ID                int                `json:"id"`
	EventID           int                `json:"event_id"`
	UserID            int                `json:"user_id,omitempty"`
	Status            RegistrationStatus `json:"status"`
	Attendees         []Attendee         `json:"attendees"`
	NumberOfAttendees int                `json:"number_of_attendees"`
	RegisteredAt      time.Time          `json:"registered_at"`
}

const MaxAttendees = 10

type Attendee struct {
	Name  string `json:"name" validate:"required"`
	Age   int    `json:"age" validate:"min=2,max=120"`
	Phone string `json:"phone" validate:"required,len=10,numeric"`
}

var attendeeValidate = validator.New()

// phoneSeparators are stripped before the 10-digit check, so inputs like
// "123-456-7890" or "(123) 456 7890" normalize to "1234567890".
const phoneSeparators = " -()."

func NormalizePhone(raw string) string {
	return strings.Map(func(r rune) rune {
		if strings.ContainsRune(phoneSeparators, r) {
			return -1
		}
		return r
	}, raw)
}

// Normalize returns a copy with trimmed name and separator-free phone.
func (a Attendee) Normalize() Attendee {
	a.Name = strings.TrimSpace(a.Name)
	a.Phone = NormalizePhone(a.Phone)

	return a
}

func (a Attendee) Validate() error {
	if err := attendeeValidate.Struct(a.Normalize()); err != nil {
		return fmt.Errorf("invalid attendee: %w", err)
	}

	return nil
}

// ValidateRoster normalizes and validates a full attendee roster: 1 to 10
// entries, each with a name, an age in [2,120] and a 10-digit phone number.
func ValidateRoster(roster []Attendee) ([]Attendee, error) {
	if len(roster) == 0 {
		return nil, fmt.Errorf("at least one attendee is required")
	}

	if len(roster) > MaxAttendees {
		return nil, fmt.Errorf("maximum %d attendees allowed per registration", MaxAttendees)
	}

	normalized := make([]Attendee, 0, len(roster))

	for i, attendee := range roster {
		a := attendee.Normalize()
		if err := attendeeValidate.Struct(a); err != nil {
			return nil, fmt.Errorf("attendee %d: %w", i+1, err)
		}

		normalized = append(normalized, a)
	}

	return normalized, nil
}
