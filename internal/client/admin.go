package client

import (
	"context"
	"fmt"
	"net/http"

	"communityPulse/internal/models"
)

func (c *Client) Me(ctx context.Context) (*models.User, error) {
	var user models.User
	if err := c.get(ctx, "/users/me", nil, true, &user); err != nil {
		return nil, err
	}

	return &user, nil
}

func (c *Client) PendingEvents(ctx context.Context) ([]models.Event, error) {
	var events []models.Event
	if err := c.get(ctx, "/admin/events/pending", nil, true, &events); err != nil {
		return nil, err
	}

	return events, nil
}

func (c *Client) ApproveEvent(ctx context.Context, id int) error {
	return c.send(ctx, http.MethodPut, fmt.Sprintf("/admin/events/%d/approve", id), nil, true, nil)
}

func (c *Client) RejectEvent(ctx context.Context, id int) error {
	return c.send(ctx, http.MethodPut, fmt.Sprintf("/admin/events/%d/reject", id), nil, true, nil)
}

func (c *Client) PendingIssues(ctx context.Context) ([]models.Issue, error) {
	var issues []models.Issue
	if err := c.get(ctx, "/admin/issues/pending", nil, true, &issues); err != nil {
		return nil, err
	}

	return issues, nil
}

func (c *Client) ApproveIssue(ctx context.Context, id int) error {
	return c.send(ctx, http.MethodPut, fmt.Sprintf("/admin/issues/%d/approve", id), nil, true, nil)
}

func (c *Client) ResolveIssue(ctx context.Context, id int) error {
	return c.send(ctx, http.MethodPut, fmt.Sprintf("/admin/issues/%d/resolve", id), nil, true, nil)
}

func (c *Client) RejectIssue(ctx context.Context, id int) error {
	return c.send(ctx, http.MethodDelete, fmt.Sprintf("/admin/issues/%d/reject", id), nil, true, nil)
}

func (c *Client) ListUsers(ctx context.Context) ([]models.User, error) {
	var users []models.User
	if err := c.get(ctx, "/admin/users", nil, true, &users); err != nil {
		return nil, err
	}

	return users, nil
}

// UserStatusUpdate toggles admin-managed user flags; nil fields are left
// untouched.
type UserStatusUpdate struct {
	IsAdmin             *bool `json:"is_admin,omitempty"`
	IsVerifiedOrganizer *bool `json:"is_verified_organizer,omitempty"`
	IsBanned            *bool `json:"is_banned,omitempty"`
}

func (c *Client) UpdateUserStatus(ctx context.Context, userID int, update UserStatusUpdate) error {
	return c.send(ctx, http.MethodPut, fmt.Sprintf("/admin/users/%d", userID), update, true, nil)
}

func (c *Client) VerifyOrganizer(ctx context.Context, userID int) error {
	return c.send(ctx, http.MethodPut, fmt.Sprintf("/admin/users/%d/verify-organizer", userID), nil, true, nil)
}
