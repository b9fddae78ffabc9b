package models

type User struct {
	ID                  int    `json:"id"`
	ClerkID             string `json:"clerk_id"`
	Username            string `json:"username"`
	Email               string `json:"email"`
	Phone               string `json:"phone,omitempty"`
	IsAdmin             bool   `json:"is_admin"`
	IsVerifiedOrganizer bool   `json:"is_verified_organizer"`
}
