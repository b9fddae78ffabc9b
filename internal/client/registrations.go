package client

import (
	"context"
	"fmt"
	"net/http"

	"communityPulse/internal/models"
)

type interestResponse struct {
	Message        string `json:"message"`
	RegistrationID int    `json:"registration_id"`
}

// MarkInterest creates (or reactivates) an "interested" registration and
// returns the server-issued registration id.
func (c *Client) MarkInterest(ctx context.Context, eventID int) (int, error) {
	var resp interestResponse
	if err := c.send(ctx, http.MethodPost, fmt.Sprintf("/events/%d/interest", eventID), nil, true, &resp); err != nil {
		return 0, err
	}

	return resp.RegistrationID, nil
}

type confirmRequest struct {
	NumberOfAttendees int               `json:"number_of_attendees"`
	Attendees         []models.Attendee `json:"attendees"`
}

// ConfirmRegistration upgrades an interested registration to registered with
// the given attendee roster. The roster is assumed to be validated already;
// this is a plain wire call.
func (c *Client) ConfirmRegistration(ctx context.Context, eventID int, roster []models.Attendee) (*models.Registration, error) {
	req := confirmRequest{
		NumberOfAttendees: len(roster),
		Attendees:         roster,
	}

	var reg models.Registration
	if err := c.send(ctx, http.MethodPost, fmt.Sprintf("/events/%d/confirm-registration", eventID), req, true, &reg); err != nil {
		return nil, err
	}

	return &reg, nil
}

func (c *Client) CancelRegistration(ctx context.Context, eventID int) error {
	return c.send(ctx, http.MethodPost, fmt.Sprintf("/events/%d/cancel-registration", eventID), nil, true, nil)
}

type registrationStatusResponse struct {
	Status       models.RegistrationStatus `json:"status"`
	Registration *models.Registration      `json:"registration"`
}

// RegistrationStatus reports the caller's registration state for an event;
// the registration is nil when the state is "none".
func (c *Client) RegistrationStatus(ctx context.Context, eventID int) (models.RegistrationStatus, *models.Registration, error) {
	var resp registrationStatusResponse
	if err := c.get(ctx, fmt.Sprintf("/events/%d/registration-status", eventID), nil, true, &resp); err != nil {
		return "", nil, err
	}

	return resp.Status, resp.Registration, nil
}

func (c *Client) RegisteredEvents(ctx context.Context) ([]models.Event, error) {
	var events []models.Event
	if err := c.get(ctx, "/user/events/registered", nil, true, &events); err != nil {
		return nil, err
	}

	return events, nil
}

func (c *Client) InterestedEvents(ctx context.Context) ([]models.Event, error) {
	var events []models.Event
	if err := c.get(ctx, "/user/events/interested", nil, true, &events); err != nil {
		return nil, err
	}

	return events, nil
}
