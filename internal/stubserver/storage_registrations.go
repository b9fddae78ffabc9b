package stubserver

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"communityPulse/internal/models"
)

// registeredAtLayout is ISO-8601 so sqlite's date functions can read the
// column; the driver's native time encoding is not parseable by DATE().
const registeredAtLayout = "2006-01-02 15:04:05"

func registeredAt(t time.Time) string {
	return t.UTC().Format(registeredAtLayout)
}

// MarkInterest creates or reactivates an interested registration, mirroring
// the real backend's guards and detail strings.
func (s *Storage) MarkInterest(eventID, userID int) (int, error) {
	event, err := s.GetEvent(eventID)
	if err != nil {
		return 0, err
	}

	if !event.IsApproved {
		return 0, badRequest("Cannot show interest in an unapproved event")
	}

	var (
		regID  int
		status string
	)

	err = s.DB.QueryRow(`
		SELECT id, status FROM registrations
		WHERE event_id = ? AND user_id = ?`, eventID, userID).Scan(&regID, &status)

	switch {
	case err == nil && status == string(models.StatusCancelled):
		if _, err = s.DB.Exec(`UPDATE registrations SET status = ? WHERE id = ?`,
			models.StatusInterested, regID); err != nil {
			return 0, fmt.Errorf("failed to reactivate interest: %w", err)
		}

		if _, err = s.DB.Exec(`UPDATE events SET attendees_count = attendees_count + 1 WHERE id = ?`, eventID); err != nil {
			return 0, fmt.Errorf("failed to update attendee count: %w", err)
		}

		return regID, nil

	case err == nil:
		return 0, badRequest("You are already interested or registered for this event")

	case !errors.Is(err, sql.ErrNoRows):
		return 0, fmt.Errorf("failed to check registration: %w", err)
	}

	res, err := s.DB.Exec(`
		INSERT INTO registrations (event_id, user_id, status, attendees, number_of_attendees, registered_at)
		VALUES (?, ?, ?, '[]', 1, ?)`,
		eventID, userID, models.StatusInterested, registeredAt(time.Now()))
	if err != nil {
		return 0, fmt.Errorf("failed to create registration: %w", err)
	}

	if _, err = s.DB.Exec(`UPDATE events SET attendees_count = attendees_count + 1 WHERE id = ?`, eventID); err != nil {
		return 0, fmt.Errorf("failed to update attendee count: %w", err)
	}

	id, _ := res.LastInsertId()

	return int(id), nil
}

func (s *Storage) ConfirmRegistration(eventID, userID int, roster []models.Attendee) (*models.Registration, error) {
	if _, err := s.GetEvent(eventID); err != nil {
		return nil, err
	}

	var (
		regID    int
		status   string
		oldCount int
	)

	err := s.DB.QueryRow(`
		SELECT id, status, number_of_attendees FROM registrations
		WHERE event_id = ? AND user_id = ?`, eventID, userID).Scan(&regID, &status, &oldCount)

	if errors.Is(err, sql.ErrNoRows) || status == string(models.StatusCancelled) {
		return nil, badRequest("You must first mark interest in this event")
	}

	if err != nil {
		return nil, fmt.Errorf("failed to check registration: %w", err)
	}

	if status == string(models.StatusRegistered) {
		return nil, badRequest("You are already registered for this event")
	}

	attendees, err := json.Marshal(roster)
	if err != nil {
		return nil, fmt.Errorf("failed to encode roster: %w", err)
	}

	if _, err = s.DB.Exec(`
		UPDATE registrations
		SET status = ?, attendees = ?, number_of_attendees = ?
		WHERE id = ?`,
		models.StatusRegistered, string(attendees), len(roster), regID); err != nil {
		return nil, fmt.Errorf("failed to confirm registration: %w", err)
	}

	if _, err = s.DB.Exec(`
		UPDATE events SET attendees_count = attendees_count - ? + ? WHERE id = ?`,
		oldCount, len(roster), eventID); err != nil {
		return nil, fmt.Errorf("failed to update attendee count: %w", err)
	}

	return s.registrationByID(regID)
}

func (s *Storage) CancelRegistration(eventID, userID int) error {
	var (
		regID  int
		status string
		count  int
	)

	err := s.DB.QueryRow(`
		SELECT id, status, number_of_attendees FROM registrations
		WHERE event_id = ? AND user_id = ?`, eventID, userID).Scan(&regID, &status, &count)

	if errors.Is(err, sql.ErrNoRows) || status == string(models.StatusCancelled) {
		return notFound("Registration not found")
	}

	if err != nil {
		return fmt.Errorf("failed to check registration: %w", err)
	}

	if _, err = s.DB.Exec(`UPDATE registrations SET status = ? WHERE id = ?`,
		models.StatusCancelled, regID); err != nil {
		return fmt.Errorf("failed to cancel registration: %w", err)
	}

	if _, err = s.DB.Exec(`
		UPDATE events SET attendees_count = MAX(0, attendees_count - ?) WHERE id = ?`,
		count, eventID); err != nil {
		return fmt.Errorf("failed to update attendee count: %w", err)
	}

	return nil
}

func (s *Storage) registrationByID(id int) (*models.Registration, error) {
	var (
		reg        models.Registration
		attendees  string
		registered string
	)

	err := s.DB.QueryRow(`
		SELECT id, event_id, user_id, status, attendees, number_of_attendees, registered_at
		FROM registrations WHERE id = ?`, id).Scan(
		&reg.ID, &reg.EventID, &reg.UserID, &reg.Status,
		&attendees, &reg.NumberOfAttendees, &registered,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get registration: %w", err)
	}

	if reg.RegisteredAt, err = time.ParseInLocation(registeredAtLayout, registered, time.UTC); err != nil {
		return nil, fmt.Errorf("failed to parse registration time: %w", err)
	}

	if err = json.Unmarshal([]byte(attendees), &reg.Attendees); err != nil {
		return nil, fmt.Errorf("failed to decode roster: %w", err)
	}

	return &reg, nil
}

// RegistrationStatus reports a user's state for an event; nil registration
// means "none".
func (s *Storage) RegistrationStatus(eventID, userID int) (models.RegistrationStatus, *models.Registration, error) {
	var regID int

	err := s.DB.QueryRow(`
		SELECT id FROM registrations
		WHERE event_id = ? AND user_id = ? AND status != ?`,
		eventID, userID, models.StatusCancelled).Scan(&regID)

	if errors.Is(err, sql.ErrNoRows) {
		return models.StatusNone, nil, nil
	}

	if err != nil {
		return "", nil, fmt.Errorf("failed to check registration: %w", err)
	}

	reg, err := s.registrationByID(regID)
	if err != nil {
		return "", nil, err
	}

	return reg.Status, reg, nil
}

// EventsByRegistrationStatus lists the events a user is interested in or
// registered for.
func (s *Storage) EventsByRegistrationStatus(userID int, status models.RegistrationStatus) ([]models.Event, error) {
	rows, err := s.DB.Query(`
		SELECT `+eventColumns+eventFrom+`
		JOIN registrations r ON r.event_id = e.id
		WHERE r.user_id = ? AND r.status = ?
		ORDER BY e.start_date ASC`, userID, status)
	if err != nil {
		return nil, fmt.Errorf("failed to list events: %w", err)
	}
	defer rows.Close()

	var events []models.Event
	for rows.Next() {
		event, err := scanEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan event: %w", err)
		}

		events = append(events, event)
	}

	return events, rows.Err()
}

// PurgeCancelled drops cancelled registrations older than the cutoff; run
// periodically by the stub's background sweeper.
func (s *Storage) PurgeCancelled(olderThan time.Duration) (int64, error) {
	res, err := s.DB.Exec(`
		DELETE FROM registrations
		WHERE status = ? AND registered_at < ?`,
		models.StatusCancelled, registeredAt(time.Now().Add(-olderThan)))
	if err != nil {
		return 0, fmt.Errorf("failed to purge cancelled registrations: %w", err)
	}

	n, _ := res.RowsAffected()

	return n, nil
}

func (s *Storage) LikeEvent(eventID, userID int) error {
	if _, err := s.GetEvent(eventID); err != nil {
		return err
	}

	var exists int
	err := s.DB.QueryRow(`SELECT 1 FROM event_likes WHERE event_id = ? AND user_id = ?`,
		eventID, userID).Scan(&exists)

	if err == nil {
		return badRequest("Event already liked")
	}

	if !errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("failed to check like: %w", err)
	}

	if _, err = s.DB.Exec(`INSERT INTO event_likes (event_id, user_id) VALUES (?, ?)`,
		eventID, userID); err != nil {
		return fmt.Errorf("failed to like event: %w", err)
	}

	return nil
}

func (s *Storage) UnlikeEvent(eventID, userID int) error {
	res, err := s.DB.Exec(`DELETE FROM event_likes WHERE event_id = ? AND user_id = ?`,
		eventID, userID)
	if err != nil {
		return fmt.Errorf("failed to unlike event: %w", err)
	}

	if n, _ := res.RowsAffected(); n == 0 {
		return notFound("Like not found")
	}

	return nil
}

func (s *Storage) ReportEvent(eventID, userID int, reason string) error {
	if _, err := s.GetEvent(eventID); err != nil {
		return err
	}

	var exists int
	err := s.DB.QueryRow(`SELECT 1 FROM event_reports WHERE event_id = ? AND user_id = ?`,
		eventID, userID).Scan(&exists)

	if err == nil {
		return badRequest("You have already reported this event")
	}

	if !errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("failed to check report: %w", err)
	}

	if _, err = s.DB.Exec(`
		INSERT INTO event_reports (event_id, user_id, reason, created_at)
		VALUES (?, ?, ?, ?)`,
		eventID, userID, reason, time.Now().UTC()); err != nil {
		return fmt.Errorf("failed to report event: %w", err)
	}

	return nil
}

func (s *Storage) IsLiked(eventID, userID int) (bool, error) {
	var exists int
	err := s.DB.QueryRow(`SELECT 1 FROM event_likes WHERE event_id = ? AND user_id = ?`,
		eventID, userID).Scan(&exists)

	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}

	if err != nil {
		return false, fmt.Errorf("failed to check like: %w", err)
	}

	return true, nil
}

// Dashboard aggregates organizer analytics for an event.
func (s *Storage) Dashboard(eventID int, actor *models.User) (*models.Dashboard, error) {
	event, err := s.GetEvent(eventID)
	if err != nil {
		return nil, err
	}

	if !actor.IsAdmin && event.OrganizerID != actor.ID {
		return nil, forbidden("Not authorized to view dashboard")
	}

	dash := &models.Dashboard{
		EventID:     eventID,
		Title:       event.Title,
		Views:       event.Views,
		Likes:       event.LikesCount,
		CreatedAt:   event.CreatedAt,
		LastUpdated: event.UpdatedAt,
		Registrations: models.RegistrationStats{
			AgeDistribution: map[string]int{
				"0-18": 0, "19-25": 0, "26-35": 0, "36-50": 0, "50+": 0,
			},
			Attendees: []models.Attendee{},
		},
		DailyRegistrations: []models.DailyCount{},
	}

	if err = s.DB.QueryRow(`
		SELECT COUNT(*) FROM registrations WHERE event_id = ? AND status = ?`,
		eventID, models.StatusInterested).Scan(&dash.Interested); err != nil {
		return nil, fmt.Errorf("failed to count interested users: %w", err)
	}

	rows, err := s.DB.Query(`
		SELECT attendees FROM registrations WHERE event_id = ? AND status = ?`,
		eventID, models.StatusRegistered)
	if err != nil {
		return nil, fmt.Errorf("failed to list registrations: %w", err)
	}
	defer rows.Close()

	var totalAge, ageCount int

	for rows.Next() {
		var raw string
		if err = rows.Scan(&raw); err != nil {
			return nil, fmt.Errorf("failed to scan registration: %w", err)
		}

		dash.Registrations.Total++

		var roster []models.Attendee
		if err = json.Unmarshal([]byte(raw), &roster); err != nil {
			continue
		}

		for _, a := range roster {
			dash.Registrations.Attendees = append(dash.Registrations.Attendees, a)
			dash.Registrations.AgeDistribution[models.AgeBucket(a.Age)]++
			totalAge += a.Age
			ageCount++
		}
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate registrations: %w", err)
	}

	dash.Registrations.TotalAttendees = len(dash.Registrations.Attendees)

	if ageCount > 0 {
		avg := float64(totalAge) / float64(ageCount)
		dash.Registrations.AverageAge = &avg
	}

	daily, err := s.DB.Query(`
		SELECT DATE(registered_at), COUNT(*)
		FROM registrations
		WHERE event_id = ? AND registered_at >= ?
		GROUP BY DATE(registered_at)
		ORDER BY DATE(registered_at)`,
		eventID, registeredAt(time.Now().AddDate(0, 0, -7)))
	if err != nil {
		return nil, fmt.Errorf("failed to count daily registrations: %w", err)
	}
	defer daily.Close()

	for daily.Next() {
		var d models.DailyCount
		if err = daily.Scan(&d.Date, &d.Count); err != nil {
			return nil, fmt.Errorf("failed to scan daily count: %w", err)
		}

		dash.DailyRegistrations = append(dash.DailyRegistrations, d)
	}

	return dash, daily.Err()
}
