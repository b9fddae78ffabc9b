package models

import "time"

// Dashboard is the organizer analytics projection returned by
// GET /events/{id}/dashboard.
type Dashboard struct {
	EventID            int               `json:"event_id"`
	Title              string            `json:"title"`
	Views              int               `json:"views"`
	Likes              int               `json:"likes"`
	Registrations      RegistrationStats `json:"registrations"`
	Interested         int               `json:"interested"`
	DailyRegistrations []DailyCount      `json:"daily_registrations"`
	CreatedAt          time.Time         `json:"created_at"`
	LastUpdated        time.Time         `json:"last_updated"`
}

type RegistrationStats struct {
	Total           int            `json:"total"`
	TotalAttendees  int            `json:"total_attendees"`
	AverageAge      *float64       `json:"average_age"`
	AgeDistribution map[string]int `json:"age_distribution"`
	Attendees       []Attendee     `json:"attendees"`
}

type DailyCount struct {
	Date  string `json:"date"`
	Count int    `json:"count"`
}

// AgeBucket maps an attendee age onto the dashboard's distribution buckets.
func AgeBucket(age int) string {
	switch {
	case age <= 18:
		return "0-18"
	case age <= 25:
		return "19-25"
	case age <= 35:
		return "26-35"
	case age <= 50:
		return "36-50"
	default:
		return "50+"
	}
}
