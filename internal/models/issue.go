package models

import "time"

type IssueCategory string

const (
	IssuePothole     IssueCategory = "Pothole"
	IssueSanitation  IssueCategory = "Sanitation"
	IssueStreetlight IssueCategory = "Streetlight"
	IssueWaterSupply IssueCategory = "Water Supply"
	IssueSafety      IssueCategory = "Safety"
	IssueObstruction IssueCategory = "Obstruction"
)

func IssueCategories() []IssueCategory {
	return []IssueCategory{
		IssuePothole,
		IssueSanitation,
		IssueStreetlight,
		IssueWaterSupply,
		IssueSafety,
		IssueObstruction,
	}
}

func (c IssueCategory) Valid() bool {
	for _, known := range IssueCategories() {
		if c == known {
			return true
		}
	}

	return false
}

type IssueStatus string

const (
	IssuePending  IssueStatus = "pending"
	IssueApproved IssueStatus = "approved"
	IssueResolved IssueStatus = "resolved"
	IssueRejected IssueStatus = "rejected"
)

type Issue struct {
	ID          int           `json:"id"`
	Title       string        `json:"title"`
	Description string        `json:"description"`
	Location    string        `json:"location"`
	Latitude    *float64      `json:"latitude,omitempty"`
	Longitude   *float64      `json:"longitude,omitempty"`
	Category    IssueCategory `json:"category"`
	Status      IssueStatus   `json:"status"`
	ImagePath   string        `json:"image_path,omitempty"`
	ReporterID  int           `json:"reporter_id"`
	Reporter    User          `json:"reporter"`
	IsApproved  bool          `json:"is_approved"`
	CreatedAt   time.Time     `json:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at"`
	VotesCount  int           `json:"votes_count"`
	HasVoted    *bool         `json:"has_voted,omitempty"`
}
