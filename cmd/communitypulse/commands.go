package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"communityPulse/internal/client"
	"communityPulse/internal/config"
	"communityPulse/internal/events/query"
	"communityPulse/internal/events/schedule"
	"communityPulse/internal/geo"
	"communityPulse/internal/lib/logger/sl"
	"communityPulse/internal/models"
	"communityPulse/internal/registration"
)

type app struct {
	cfg     *config.Config
	log     *slog.Logger
	api     *client.Client
	locator geo.Locator
}

func (a *app) run(ctx context.Context, command string, args []string) error {
	switch command {
	case "events":
		return a.cmdEvents(ctx, args)
	case "show":
		return a.cmdShow(ctx, args)
	case "create":
		return a.cmdCreate(ctx, args)
	case "delete":
		return a.withEventID(ctx, args, a.api.DeleteEvent)
	case "interest":
		return a.cmdInterest(ctx, args)
	case "confirm":
		return a.cmdConfirm(ctx, args)
	case "cancel":
		return a.withEventID(ctx, args, a.api.CancelRegistration)
	case "like":
		return a.withEventID(ctx, args, a.api.LikeEvent)
	case "unlike":
		return a.withEventID(ctx, args, a.api.UnlikeEvent)
	case "report":
		return a.cmdReport(ctx, args)
	case "dashboard":
		return a.cmdDashboard(ctx, args)
	case "issues":
		return a.cmdIssues(ctx, args)
	case "issue":
		return a.cmdCreateIssue(ctx, args)
	case "vote":
		return a.withIssueID(ctx, args, a.api.VoteIssue)
	case "unvote":
		return a.withIssueID(ctx, args, a.api.UnvoteIssue)
	case "me":
		return a.cmdMe(ctx)
	case "admin":
		return a.cmdAdmin(ctx, args)
	default:
		fmt.Fprint(os.Stderr, usage)
		return fmt.Errorf("unknown command: %s", command)
	}
}

// cmdEvents fetches the general listing and, when requested, the nearby
// listing concurrently; each populates its own slice, so no ordering between
// the two requests matters.
func (a *app) cmdEvents(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("events", flag.ContinueOnError)
	category := fs.String("category", "", "filter by category")
	upcoming := fs.Bool("upcoming", false, "upcoming events only")
	past := fs.Bool("past", false, "past events only")
	search := fs.String("search", "", "free-text search")
	sortKey := fs.String("sort", string(query.SortDateAsc), "date_asc|date_desc|title_asc|title_desc|popularity")
	nearby := fs.Bool("nearby", false, "only events near the current position")
	mine := fs.String("mine", "", "only events organized by this clerk id")

	if err := fs.Parse(args); err != nil {
		return err
	}

	type listResult struct {
		events []models.Event
		err    error
	}

	generalCh := make(chan listResult, 1)
	nearbyCh := make(chan listResult, 1)

	go func() {
		events, err := a.api.ListEvents(ctx, client.ListOptions{
			Category:     models.Category(*category),
			Upcoming:     *upcoming,
			Past:         *past,
			ApprovedOnly: true,
		})
		generalCh <- listResult{events, err}
	}()

	go func() {
		if !*nearby {
			nearbyCh <- listResult{}
			return
		}

		point, err := a.locator.Locate(ctx)
		if err != nil {
			nearbyCh <- listResult{err: err}
			return
		}

		events, err := a.api.NearbyEvents(ctx, point.Latitude, point.Longitude, a.cfg.API.MaxDistanceKM)
		nearbyCh <- listResult{events, err}
	}()

	general := <-generalCh
	if general.err != nil {
		return general.err
	}

	near := <-nearbyCh
	if near.err != nil {
		// The general listing is still useful without a position fix.
		a.log.Warn("nearby events unavailable", sl.Err(near.err))
	}

	filters := query.Filters{
		Search:      *search,
		MineClerkID: *mine,
		Sort:        query.SortKey(*sortKey),
	}

	if *category != "" {
		filters.Categories = []models.Category{models.Category(*category)}
	}

	if *nearby && near.err == nil {
		ids := make(map[int]bool, len(near.events))
		for _, e := range near.events {
			ids[e.ID] = true
		}
		filters.NearbyIDs = ids
	}

	for _, e := range query.Apply(general.events, filters) {
		printEvent(e)
	}

	return nil
}

func printEvent(e models.Event) {
	line := fmt.Sprintf("#%d  %s  [%s]  %s", e.ID, e.StartDate.Format("2006-01-02 15:04"), e.Category, e.Title)

	if e.Distance != nil {
		line += fmt.Sprintf("  (%.1f km)", *e.Distance)
	}

	if !e.IsFree() {
		line += fmt.Sprintf("  ₹%.2f", e.Price)
	}

	fmt.Println(line)
}

func (a *app) cmdShow(ctx context.Context, args []string) error {
	id, err := argID(args)
	if err != nil {
		return err
	}

	event, err := a.api.GetEvent(ctx, id)
	if err != nil {
		return err
	}

	printEvent(*event)
	fmt.Println(event.Description)
	fmt.Printf("location: %s\nattendees: %d, likes: %d, views: %d\n",
		event.Location, event.AttendeesCount, event.LikesCount, event.Views)

	decision := schedule.Status(time.Now(), event.RegistrationStart, event.RegistrationEnd)
	if decision.Open {
		fmt.Println("registration: open")
	} else {
		fmt.Println("registration: closed,", decision.Message)
	}

	return nil
}

func (a *app) cmdCreate(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("create", flag.ContinueOnError)
	title := fs.String("title", "", "event title")
	description := fs.String("description", "", "event description")
	location := fs.String("location", "", "event location")
	category := fs.String("category", "", "event category")
	price := fs.Float64("price", 0, "price per person; 0 means free")
	start := fs.String("start", "", "event start (RFC3339)")
	end := fs.String("end", "", "event end (RFC3339)")
	regStart := fs.String("reg-start", "", "registration opens (RFC3339)")
	regEnd := fs.String("reg-end", "", "registration closes (RFC3339)")
	image := fs.String("image", "", "path to an image file")

	if err := fs.Parse(args); err != nil {
		return err
	}

	form := client.EventForm{
		Title:       *title,
		Description: *description,
		Location:    *location,
		Category:    models.Category(*category),
		Type:        models.EventTypeFree,
	}

	if *price > 0 {
		form.Type = models.EventTypePaid
		form.Price = price
	}

	var err error
	if form.StartDate, err = parseTime(*start, "start"); err != nil {
		return err
	}
	if form.EndDate, err = parseTime(*end, "end"); err != nil {
		return err
	}
	if form.RegistrationStart, err = parseTime(*regStart, "reg-start"); err != nil {
		return err
	}
	if form.RegistrationEnd, err = parseTime(*regEnd, "reg-end"); err != nil {
		return err
	}

	// Reject invalid windows before any bytes go on the wire.
	draft := models.Event{
		Title:             form.Title,
		Category:          form.Category,
		Price:             *price,
		StartDate:         form.StartDate,
		EndDate:           form.EndDate,
		RegistrationStart: form.RegistrationStart,
		RegistrationEnd:   form.RegistrationEnd,
	}
	if err = draft.Validate(); err != nil {
		return err
	}

	var upload *client.ImageUpload
	if *image != "" {
		f, err := os.Open(*image)
		if err != nil {
			return fmt.Errorf("open image: %w", err)
		}
		defer f.Close()

		upload = &client.ImageUpload{Filename: f.Name(), Content: f}
	}

	event, err := a.api.CreateEvent(ctx, form, upload)
	if err != nil {
		return err
	}

	fmt.Printf("created event %d (approved: %v)\n", event.ID, event.IsApproved)

	return nil
}

func (a *app) cmdInterest(ctx context.Context, args []string) error {
	id, err := argID(args)
	if err != nil {
		return err
	}

	event, err := a.api.GetEvent(ctx, id)
	if err != nil {
		return err
	}

	flow := registration.NewFlow(a.api, a.log, *event)

	status, reg, err := a.api.RegistrationStatus(ctx, id)
	if err != nil {
		return err
	}
	flow.Resume(status, reg)

	if err = flow.MarkInterest(ctx); err != nil {
		return err
	}

	fmt.Printf("interest marked, registration %d\n", flow.RegistrationID())

	return nil
}

func (a *app) cmdConfirm(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("confirm", flag.ContinueOnError)
	attendees := fs.String("attendees", "", `roster as "name:age:phone;name:age:phone"`)

	if err := fs.Parse(args); err != nil {
		return err
	}

	id, err := argID(fs.Args())
	if err != nil {
		return err
	}

	roster, err := parseRoster(*attendees)
	if err != nil {
		return err
	}

	event, err := a.api.GetEvent(ctx, id)
	if err != nil {
		return err
	}

	flow := registration.NewFlow(a.api, a.log, *event)

	status, reg, err := a.api.RegistrationStatus(ctx, id)
	if err != nil {
		return err
	}
	flow.Resume(status, reg)

	if err = flow.Confirm(ctx, roster); err != nil {
		return err
	}

	fmt.Printf("registered with %d attendee(s)\n", len(roster))

	return nil
}

func parseRoster(raw string) ([]models.Attendee, error) {
	if raw == "" {
		return nil, nil
	}

	var roster []models.Attendee

	for _, entry := range strings.Split(raw, ";") {
		parts := strings.SplitN(entry, ":", 3)
		if len(parts) != 3 {
			return nil, fmt.Errorf("attendee %q must be name:age:phone", entry)
		}

		age, err := strconv.Atoi(strings.TrimSpace(parts[1]))
		if err != nil {
			return nil, fmt.Errorf("attendee %q: bad age", entry)
		}

		roster = append(roster, models.Attendee{
			Name:  parts[0],
			Age:   age,
			Phone: parts[2],
		})
	}

	return roster, nil
}

func (a *app) cmdReport(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("report", flag.ContinueOnError)
	reason := fs.String("reason", "", "report reason")

	if err := fs.Parse(args); err != nil {
		return err
	}

	id, err := argID(fs.Args())
	if err != nil {
		return err
	}

	return a.api.ReportEvent(ctx, id, *reason)
}

func (a *app) cmdDashboard(ctx context.Context, args []string) error {
	id, err := argID(args)
	if err != nil {
		return err
	}

	dash, err := a.api.EventDashboard(ctx, id)
	if err != nil {
		return err
	}

	return json.NewEncoder(os.Stdout).Encode(dash)
}

func (a *app) cmdIssues(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("issues", flag.ContinueOnError)
	category := fs.String("category", "", "filter by category")
	status := fs.String("status", "", "filter by status")

	if err := fs.Parse(args); err != nil {
		return err
	}

	issues, err := a.api.ListIssues(ctx, client.IssueListOptions{
		Category:     models.IssueCategory(*category),
		Status:       models.IssueStatus(*status),
		ApprovedOnly: true,
	})
	if err != nil {
		return err
	}

	for _, issue := range issues {
		fmt.Printf("#%d  [%s/%s]  %s  (%d votes)\n",
			issue.ID, issue.Category, issue.Status, issue.Title, issue.VotesCount)
	}

	return nil
}

func (a *app) cmdCreateIssue(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("issue", flag.ContinueOnError)
	title := fs.String("title", "", "issue title")
	description := fs.String("description", "", "issue description")
	location := fs.String("location", "", "issue location")
	category := fs.String("category", "", "issue category")

	if err := fs.Parse(args); err != nil {
		return err
	}

	issue, err := a.api.CreateIssue(ctx, client.IssueForm{
		Title:       *title,
		Description: *description,
		Location:    *location,
		Category:    models.IssueCategory(*category),
	}, nil)
	if err != nil {
		return err
	}

	fmt.Printf("reported issue %d (status: %s)\n", issue.ID, issue.Status)

	return nil
}

func (a *app) cmdMe(ctx context.Context) error {
	user, err := a.api.Me(ctx)
	if err != nil {
		return err
	}

	fmt.Printf("%s <%s> admin=%v organizer=%v\n",
		user.Username, user.Email, user.IsAdmin, user.IsVerifiedOrganizer)

	return nil
}

func (a *app) cmdAdmin(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("admin needs a subcommand: pending | approve | reject | verify")
	}

	switch args[0] {
	case "pending":
		events, err := a.api.PendingEvents(ctx)
		if err != nil {
			return err
		}

		for _, e := range events {
			printEvent(e)
		}

		return nil
	case "approve":
		return a.withEventID(ctx, args[1:], a.api.ApproveEvent)
	case "reject":
		return a.withEventID(ctx, args[1:], a.api.RejectEvent)
	case "verify":
		id, err := argID(args[1:])
		if err != nil {
			return err
		}

		return a.api.VerifyOrganizer(ctx, id)
	default:
		return fmt.Errorf("unknown admin subcommand: %s", args[0])
	}
}

func (a *app) withEventID(ctx context.Context, args []string, fn func(context.Context, int) error) error {
	id, err := argID(args)
	if err != nil {
		return err
	}

	return fn(ctx, id)
}

func (a *app) withIssueID(ctx context.Context, args []string, fn func(context.Context, int) error) error {
	return a.withEventID(ctx, args, fn)
}

func argID(args []string) (int, error) {
	if len(args) == 0 {
		return 0, fmt.Errorf("an id argument is required")
	}

	id, err := strconv.Atoi(args[0])
	if err != nil {
		return 0, fmt.Errorf("invalid id %q", args[0])
	}

	return id, nil
}

func parseTime(raw, name string) (time.Time, error) {
	if raw == "" {
		return time.Time{}, fmt.Errorf("-%s is required", name)
	}

	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid -%s: %w", name, err)
	}

	return t, nil
}
