package models

import (
	"errors"
	"time"
)

type Category string

const (
	CategoryGarageSale     Category = "Garage Sale"
	CategorySportsMatch    Category = "Sports Match"
	CategoryCommunityClass Category = "Community Class"
	CategoryVolunteer      Category = "Volunteer"
	CategoryExhibition     Category = "Exhibition"
	CategoryFestival       Category = "Festival"
)

func Categories() []Category {
	return []Category{
		CategoryGarageSale,
		CategorySportsMatch,
		CategoryCommunityClass,
		CategoryVolunteer,
		CategoryExhibition,
		CategoryFestival,
	}
}

func (c Category) Valid() bool {
	for _, known := range Categories() {
		if c == known {
			return true
		}
	}

	return false
}

const (
	EventTypeFree = "Free"
	EventTypePaid = "Paid"
)

type Event struct {
	ID                int       `json:"id"`
	Title             string    `json:"title"`
	Description       string    `json:"description"`
	Location          string    `json:"location"`
	Latitude          *float64  `json:"latitude,omitempty"`
	Longitude         *float64  `json:"longitude,omitempty"`
	Category          Category  `json:"category"`
	Type              string    `json:"type"`
	Price             float64   `json:"price"`
	Views             int       `json:"views"`
	StartDate         time.Time `json:"start_date"`
	EndDate           time.Time `json:"end_date"`
	RegistrationStart time.Time `json:"registration_start"`
	RegistrationEnd   time.Time `json:"registration_end"`
	ImagePath         string    `json:"image_path,omitempty"`
	OrganizerID       int       `json:"organizer_id"`
	Organizer         User      `json:"organizer"`
	IsApproved        bool      `json:"is_approved"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
	AttendeesCount    int       `json:"attendees_count"`
	LikesCount        int       `json:"likes_count"`
	IsRegistered      *bool     `json:"is_registered,omitempty"`
	IsLiked           *bool     `json:"is_liked,omitempty"`
	Distance          *float64  `json:"distance,omitempty"`
}

var (
	ErrBadCategory    = errors.New("unknown event category")
	ErrBadEventWindow = errors.New("event end must be after event start")
	ErrBadRegWindow   = errors.New("registration window must close after it opens")
	ErrRegAfterStart  = errors.New("registration window must fit before the event start")
	ErrNegativePrice  = errors.New("price must not be negative")
)

// Validate checks the temporal and pricing invariants the backend enforces,
// so malformed events are rejected at the decode boundary rather than deep
// inside a page flow.
func (e Event) Validate() error {
	if !e.Category.Valid() {
		return ErrBadCategory
	}

	if !e.EndDate.After(e.StartDate) {
		return ErrBadEventWindow
	}

	if !e.RegistrationEnd.After(e.RegistrationStart) {
		return ErrBadRegWindow
	}

	if !e.RegistrationStart.Before(e.StartDate) || e.RegistrationEnd.After(e.StartDate) {
		return ErrRegAfterStart
	}

	if e.Price < 0 {
		return ErrNegativePrice
	}

	return nil
}

func (e Event) IsFree() bool {
	return e.Type != EventTypePaid || e.Price == 0
}
