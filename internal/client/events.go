package client

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"communityPulse/internal/models"
)

// ListOptions map onto the /events query flags.
type ListOptions struct {
	Category     models.Category
	Upcoming     bool
	Past         bool
	ApprovedOnly bool
}

func (c *Client) ListEvents(ctx context.Context, opts ListOptions) ([]models.Event, error) {
	q := url.Values{}

	if opts.Category != "" {
		q.Set("category", string(opts.Category))
	}

	if opts.Upcoming {
		q.Set("upcoming", "true")
	}

	if opts.Past {
		q.Set("past", "true")
	}

	q.Set("approved_only", strconv.FormatBool(opts.ApprovedOnly))

	var events []models.Event
	if err := c.get(ctx, "/events", q, false, &events); err != nil {
		return nil, err
	}

	return events, nil
}

func (c *Client) NearbyEvents(ctx context.Context, lat, lon, maxDistanceKM float64) ([]models.Event, error) {
	q := url.Values{}
	q.Set("latitude", strconv.FormatFloat(lat, 'f', -1, 64))
	q.Set("longitude", strconv.FormatFloat(lon, 'f', -1, 64))
	q.Set("max_distance", strconv.FormatFloat(maxDistanceKM, 'f', -1, 64))

	var events []models.Event
	if err := c.get(ctx, "/events/nearby", q, false, &events); err != nil {
		return nil, err
	}

	return events, nil
}

func (c *Client) GetEvent(ctx context.Context, id int) (*models.Event, error) {
	var event models.Event
	if err := c.get(ctx, fmt.Sprintf("/events/%d", id), nil, false, &event); err != nil {
		return nil, err
	}

	return &event, nil
}

// EventDetails fetches the authenticated detail view; the backend counts a
// view and annotates is_registered / is_liked for the caller.
func (c *Client) EventDetails(ctx context.Context, id int) (*models.Event, error) {
	var event models.Event
	if err := c.get(ctx, fmt.Sprintf("/events/%d/details", id), nil, true, &event); err != nil {
		return nil, err
	}

	return &event, nil
}

// EventForm carries the multipart fields for event create and update. Zero
// values are omitted on update, matching the backend's partial-update
// semantics.
type EventForm struct {
	Title             string
	Description       string
	Location          string
	Latitude          *float64
	Longitude         *float64
	Category          models.Category
	Type              string
	Price             *float64
	StartDate         time.Time
	EndDate           time.Time
	RegistrationStart time.Time
	RegistrationEnd   time.Time
}

func (f EventForm) fields() map[string]string {
	fields := map[string]string{}

	set := func(k, v string) {
		if v != "" {
			fields[k] = v
		}
	}

	set("title", f.Title)
	set("description", f.Description)
	set("location", f.Location)
	set("category", string(f.Category))
	set("type", f.Type)

	if f.Latitude != nil {
		fields["latitude"] = strconv.FormatFloat(*f.Latitude, 'f', -1, 64)
	}

	if f.Longitude != nil {
		fields["longitude"] = strconv.FormatFloat(*f.Longitude, 'f', -1, 64)
	}

	if f.Price != nil {
		fields["price"] = strconv.FormatFloat(*f.Price, 'f', -1, 64)
	}

	setTime := func(k string, t time.Time) {
		if !t.IsZero() {
			fields[k] = t.UTC().Format(time.RFC3339)
		}
	}

	setTime("start_date", f.StartDate)
	setTime("end_date", f.EndDate)
	setTime("registration_start", f.RegistrationStart)
	setTime("registration_end", f.RegistrationEnd)

	return fields
}

func (c *Client) CreateEvent(ctx context.Context, form EventForm, image *ImageUpload) (*models.Event, error) {
	var event models.Event
	if err := c.sendMultipart(ctx, http.MethodPost, "/events", form.fields(), image, &event); err != nil {
		return nil, err
	}

	return &event, nil
}

func (c *Client) UpdateEvent(ctx context.Context, id int, form EventForm, image *ImageUpload) (*models.Event, error) {
	var event models.Event
	if err := c.sendMultipart(ctx, http.MethodPut, fmt.Sprintf("/events/%d", id), form.fields(), image, &event); err != nil {
		return nil, err
	}

	return &event, nil
}

func (c *Client) DeleteEvent(ctx context.Context, id int) error {
	return c.send(ctx, http.MethodDelete, fmt.Sprintf("/events/%d", id), nil, true, nil)
}

func (c *Client) LikeEvent(ctx context.Context, id int) error {
	return c.send(ctx, http.MethodPost, fmt.Sprintf("/events/%d/like", id), nil, true, nil)
}

func (c *Client) UnlikeEvent(ctx context.Context, id int) error {
	return c.send(ctx, http.MethodDelete, fmt.Sprintf("/events/%d/like", id), nil, true, nil)
}

func (c *Client) ReportEvent(ctx context.Context, id int, reason string) error {
	body := map[string]string{"reason": reason}

	return c.send(ctx, http.MethodPost, fmt.Sprintf("/events/%d/report", id), body, true, nil)
}

func (c *Client) EventDashboard(ctx context.Context, id int) (*models.Dashboard, error) {
	var dash models.Dashboard
	if err := c.get(ctx, fmt.Sprintf("/events/%d/dashboard", id), nil, true, &dash); err != nil {
		return nil, err
	}

	return &dash, nil
}

func (c *Client) OrganizingEvents(ctx context.Context) ([]models.Event, error) {
	var events []models.Event
	if err := c.get(ctx, "/user/events/organizing", nil, true, &events); err != nil {
		return nil, err
	}

	return events, nil
}
