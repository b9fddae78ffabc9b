// Package registration drives the two-stage registration flow for a single
// event: none -> interested -> registered, with cancellation returning to
// none from either active state. Local state only advances after the backend
// confirms a transition, so a failed call never corrupts it.
package registration

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"communityPulse/internal/events/schedule"
	"communityPulse/internal/lib/logger/sl"
	"communityPulse/internal/models"
)

var (
	ErrRegistrationClosed = errors.New("registration window is closed")
	ErrNotInterested      = errors.New("must mark interest before confirming")
	ErrAlreadyInterested  = errors.New("interest already marked")
	ErrAlreadyRegistered  = errors.New("already registered")
	ErrNothingToCancel    = errors.New("no active registration to cancel")
)

//go:generate go run github.com/vektra/mockery/v2@v2.51.1 --name=API
type API interface {
	MarkInterest(ctx context.Context, eventID int) (int, error)
	ConfirmRegistration(ctx context.Context, eventID int, roster []models.Attendee) (*models.Registration, error)
	CancelRegistration(ctx context.Context, eventID int) error
}

// Flow tracks the caller's registration state for one event. It is not safe
// for concurrent use; a page owns exactly one.
type Flow struct {
	api   API
	log   *slog.Logger
	clock func() time.Time

	event          models.Event
	status         models.RegistrationStatus
	registrationID int
	roster         []models.Attendee
}

func NewFlow(api API, log *slog.Logger, event models.Event) *Flow {
	return &Flow{
		api:    api,
		log:    log,
		clock:  time.Now,
		event:  event,
		status: models.StatusNone,
	}
}

// Resume seeds the flow from a server-reported registration status, e.g.
// after a page reload.
func (f *Flow) Resume(status models.RegistrationStatus, reg *models.Registration) {
	if status == "" || status == models.StatusCancelled {
		status = models.StatusNone
	}

	f.status = status

	if reg != nil {
		f.registrationID = reg.ID
		f.roster = reg.Attendees
	}
}

func (f *Flow) Status() models.RegistrationStatus { return f.status }

func (f *Flow) RegistrationID() int { return f.registrationID }

func (f *Flow) Roster() []models.Attendee { return f.roster }

// MarkInterest moves none -> interested. Guarded on the registration window
// being open at the time of the call.
func (f *Flow) MarkInterest(ctx context.Context) error {
	const op = "registration.Flow.MarkInterest"

	switch f.status {
	case models.StatusInterested:
		return ErrAlreadyInterested
	case models.StatusRegistered:
		return ErrAlreadyRegistered
	}

	decision := schedule.Status(f.clock(), f.event.RegistrationStart, f.event.RegistrationEnd)
	if !decision.Open {
		return fmt.Errorf("%w: %s", ErrRegistrationClosed, decision.Message)
	}

	id, err := f.api.MarkInterest(ctx, f.event.ID)
	if err != nil {
		f.log.Error("failed to mark interest", slog.Int("event_id", f.event.ID), sl.Err(err))

		return fmt.Errorf("%s: %w", op, err)
	}

	f.status = models.StatusInterested
	f.registrationID = id

	f.log.Info("interest marked",
		slog.Int("event_id", f.event.ID),
		slog.Int("registration_id", id),
	)

	return nil
}

// Confirm moves interested -> registered with a validated attendee roster.
// Validation failures are reported client-side and issue no network call.
func (f *Flow) Confirm(ctx context.Context, roster []models.Attendee) error {
	const op = "registration.Flow.Confirm"

	switch f.status {
	case models.StatusNone:
		return ErrNotInterested
	case models.StatusRegistered:
		return ErrAlreadyRegistered
	}

	normalized, err := models.ValidateRoster(roster)
	if err != nil {
		return fmt.Errorf("invalid roster: %w", err)
	}

	reg, err := f.api.ConfirmRegistration(ctx, f.event.ID, normalized)
	if err != nil {
		f.log.Error("failed to confirm registration", slog.Int("event_id", f.event.ID), sl.Err(err))

		return fmt.Errorf("%s: %w", op, err)
	}

	f.status = models.StatusRegistered
	f.registrationID = reg.ID
	f.roster = normalized

	f.log.Info("registration confirmed",
		slog.Int("event_id", f.event.ID),
		slog.Int("attendees", len(normalized)),
	)

	return nil
}

// Cancel returns to none from interested or registered and clears the local
// roster. The backend cancels either status through the same endpoint.
func (f *Flow) Cancel(ctx context.Context) error {
	const op = "registration.Flow.Cancel"

	if f.status != models.StatusInterested && f.status != models.StatusRegistered {
		return ErrNothingToCancel
	}

	if err := f.api.CancelRegistration(ctx, f.event.ID); err != nil {
		f.log.Error("failed to cancel registration", slog.Int("event_id", f.event.ID), sl.Err(err))

		return fmt.Errorf("%s: %w", op, err)
	}

	f.status = models.StatusNone
	f.registrationID = 0
	f.roster = nil

	f.log.Info("registration cancelled", slog.Int("event_id", f.event.ID))

	return nil
}
