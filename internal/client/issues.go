package client

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"communityPulse/internal/models"
)

type IssueListOptions struct {
	Category     models.IssueCategory
	Status       models.IssueStatus
	ApprovedOnly bool
}

func (c *Client) ListIssues(ctx context.Context, opts IssueListOptions) ([]models.Issue, error) {
	q := url.Values{}

	if opts.Category != "" {
		q.Set("category", string(opts.Category))
	}

	if opts.Status != "" {
		q.Set("status", string(opts.Status))
	}

	q.Set("approved_only", strconv.FormatBool(opts.ApprovedOnly))

	var issues []models.Issue
	if err := c.get(ctx, "/issues", q, false, &issues); err != nil {
		return nil, err
	}

	return issues, nil
}

func (c *Client) GetIssue(ctx context.Context, id int) (*models.Issue, error) {
	var issue models.Issue
	if err := c.get(ctx, fmt.Sprintf("/issues/%d", id), nil, false, &issue); err != nil {
		return nil, err
	}

	return &issue, nil
}

type IssueForm struct {
	Title       string
	Description string
	Location    string
	Latitude    *float64
	Longitude   *float64
	Category    models.IssueCategory
}

func (f IssueForm) fields() map[string]string {
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

	if f.Latitude != nil {
		fields["latitude"] = strconv.FormatFloat(*f.Latitude, 'f', -1, 64)
	}

	if f.Longitude != nil {
		fields["longitude"] = strconv.FormatFloat(*f.Longitude, 'f', -1, 64)
	}

	return fields
}

func (c *Client) CreateIssue(ctx context.Context, form IssueForm, image *ImageUpload) (*models.Issue, error) {
	var issue models.Issue
	if err := c.sendMultipart(ctx, http.MethodPost, "/issues", form.fields(), image, &issue); err != nil {
		return nil, err
	}

	return &issue, nil
}

func (c *Client) UpdateIssue(ctx context.Context, id int, form IssueForm) (*models.Issue, error) {
	var issue models.Issue
	if err := c.sendMultipart(ctx, http.MethodPut, fmt.Sprintf("/issues/%d", id), form.fields(), nil, &issue); err != nil {
		return nil, err
	}

	return &issue, nil
}

func (c *Client) DeleteIssue(ctx context.Context, id int) error {
	return c.send(ctx, http.MethodDelete, fmt.Sprintf("/issues/%d", id), nil, true, nil)
}

// VoteIssue adds the caller's vote; one vote per user, enforced server-side.
func (c *Client) VoteIssue(ctx context.Context, id int) error {
	return c.send(ctx, http.MethodPost, fmt.Sprintf("/issues/%d/vote", id), nil, true, nil)
}

func (c *Client) UnvoteIssue(ctx context.Context, id int) error {
	return c.send(ctx, http.MethodDelete, fmt.Sprintf("/issues/%d/vote", id), nil, true, nil)
}
