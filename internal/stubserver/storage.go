package stubserver

import (
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"communityPulse/internal/models"
)

// StatusError carries the HTTP status and the backend's "detail" string for
// a failed operation, so handlers render exactly what the real API would.
type StatusError struct {
	Code   int
	Detail string
}

func (e *StatusError) Error() string { return e.Detail }

func notFound(detail string) *StatusError {
	return &StatusError{Code: http.StatusNotFound, Detail: detail}
}

func badRequest(detail string) *StatusError {
	return &StatusError{Code: http.StatusBadRequest, Detail: detail}
}

func forbidden(detail string) *StatusError {
	return &StatusError{Code: http.StatusForbidden, Detail: detail}
}

type Storage struct {
	DB *sql.DB
}

// InitStorage opens (or creates) the sqlite database backing the stub.
// Use ":memory:" for a throwaway instance.
func InitStorage(path string) (*Storage, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}

	if err = db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}

	// The sqlite driver serializes writes; a single connection avoids
	// table-lock errors under concurrent handlers.
	db.SetMaxOpenConns(1)

	s := &Storage{DB: db}
	if err = s.createTables(); err != nil {
		return nil, err
	}

	return s, nil
}

func (s *Storage) Close() error {
	return s.DB.Close()
}

func (s *Storage) createTables() error {
	schema := []string{
		`CREATE TABLE IF NOT EXISTS users (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			clerk_id TEXT NOT NULL UNIQUE,
			username TEXT NOT NULL,
			email TEXT NOT NULL,
			phone TEXT NOT NULL DEFAULT '',
			is_admin INTEGER NOT NULL DEFAULT 0,
			is_verified_organizer INTEGER NOT NULL DEFAULT 0,
			is_banned INTEGER NOT NULL DEFAULT 0
		)`,
		`CREATE TABLE IF NOT EXISTS events (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			title TEXT NOT NULL,
			description TEXT NOT NULL,
			location TEXT NOT NULL,
			latitude REAL,
			longitude REAL,
			category TEXT NOT NULL,
			type TEXT NOT NULL DEFAULT 'Free',
			price REAL NOT NULL DEFAULT 0,
			views INTEGER NOT NULL DEFAULT 0,
			start_date DATETIME NOT NULL,
			end_date DATETIME NOT NULL,
			registration_start DATETIME NOT NULL,
			registration_end DATETIME NOT NULL,
			image_path TEXT NOT NULL DEFAULT '',
			organizer_id INTEGER NOT NULL REFERENCES users(id),
			is_approved INTEGER NOT NULL DEFAULT 0,
			created_at DATETIME NOT NULL,
			updated_at DATETIME NOT NULL,
			attendees_count INTEGER NOT NULL DEFAULT 0
		)`,
		`CREATE TABLE IF NOT EXISTS registrations (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			event_id INTEGER NOT NULL REFERENCES events(id) ON DELETE CASCADE,
			user_id INTEGER NOT NULL REFERENCES users(id),
			status TEXT NOT NULL DEFAULT 'interested',
			attendees TEXT NOT NULL DEFAULT '[]',
			number_of_attendees INTEGER NOT NULL DEFAULT 1,
			registered_at TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS event_likes (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			event_id INTEGER NOT NULL REFERENCES events(id) ON DELETE CASCADE,
			user_id INTEGER NOT NULL REFERENCES users(id),
			UNIQUE(event_id, user_id)
		)`,
		`CREATE TABLE IF NOT EXISTS event_reports (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			event_id INTEGER NOT NULL REFERENCES events(id) ON DELETE CASCADE,
			user_id INTEGER NOT NULL REFERENCES users(id),
			reason TEXT NOT NULL,
			created_at DATETIME NOT NULL,
			UNIQUE(event_id, user_id)
		)`,
		`CREATE TABLE IF NOT EXISTS issues (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			title TEXT NOT NULL,
			description TEXT NOT NULL,
			location TEXT NOT NULL,
			latitude REAL,
			longitude REAL,
			category TEXT NOT NULL,
			status TEXT NOT NULL DEFAULT 'pending',
			image_path TEXT NOT NULL DEFAULT '',
			reporter_id INTEGER NOT NULL REFERENCES users(id),
			is_approved INTEGER NOT NULL DEFAULT 0,
			created_at DATETIME NOT NULL,
			updated_at DATETIME NOT NULL,
			votes_count INTEGER NOT NULL DEFAULT 0
		)`,
		`CREATE TABLE IF NOT EXISTS issue_votes (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			issue_id INTEGER NOT NULL REFERENCES issues(id) ON DELETE CASCADE,
			user_id INTEGER NOT NULL REFERENCES users(id),
			UNIQUE(issue_id, user_id)
		)`,
	}

	for _, stmt := range schema {
		if _, err := s.DB.Exec(stmt); err != nil {
			return fmt.Errorf("failed to create schema: %w", err)
		}
	}

	return nil
}

// EnsureUser resolves a bearer token to a user row, provisioning one on
// first sight. The stub treats the token itself as the clerk subject; a
// token starting with "admin" gets the admin flag, "org" the
// verified-organizer flag.
func (s *Storage) EnsureUser(clerkID string) (*models.User, error) {
	user, err := s.userByClerkID(clerkID)
	if err == nil {
		return user, nil
	}

	if !errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}

	isAdmin := strings.HasPrefix(clerkID, "admin")
	isOrganizer := strings.HasPrefix(clerkID, "org")

	res, err := s.DB.Exec(`
		INSERT INTO users (clerk_id, username, email, is_admin, is_verified_organizer)
		VALUES (?, ?, ?, ?, ?)`,
		clerkID, clerkID, clerkID+"@communitypulse.local", isAdmin, isOrganizer,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to provision user: %w", err)
	}

	id, _ := res.LastInsertId()

	return s.userByID(int(id)), nil
}

func (s *Storage) userByClerkID(clerkID string) (*models.User, error) {
	row := s.DB.QueryRow(`
		SELECT id, clerk_id, username, email, phone, is_admin, is_verified_organizer
		FROM users WHERE clerk_id = ?`, clerkID)

	return scanUser(row)
}

func (s *Storage) userByID(id int) *models.User {
	row := s.DB.QueryRow(`
		SELECT id, clerk_id, username, email, phone, is_admin, is_verified_organizer
		FROM users WHERE id = ?`, id)

	user, err := scanUser(row)
	if err != nil {
		return &models.User{ID: id}
	}

	return user
}

func scanUser(row *sql.Row) (*models.User, error) {
	var u models.User
	err := row.Scan(&u.ID, &u.ClerkID, &u.Username, &u.Email, &u.Phone, &u.IsAdmin, &u.IsVerifiedOrganizer)
	if err != nil {
		return nil, err
	}

	return &u, nil
}

func (s *Storage) ListUsers() ([]models.User, error) {
	rows, err := s.DB.Query(`
		SELECT id, clerk_id, username, email, phone, is_admin, is_verified_organizer
		FROM users ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	defer rows.Close()

	var users []models.User
	for rows.Next() {
		var u models.User
		if err = rows.Scan(&u.ID, &u.ClerkID, &u.Username, &u.Email, &u.Phone, &u.IsAdmin, &u.IsVerifiedOrganizer); err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}

		users = append(users, u)
	}

	return users, rows.Err()
}

func (s *Storage) UpdateUserFlags(userID int, isAdmin, isOrganizer, isBanned *bool) error {
	if _, err := s.requireUser(userID); err != nil {
		return err
	}

	apply := func(column string, v *bool) error {
		if v == nil {
			return nil
		}

		_, err := s.DB.Exec("UPDATE users SET "+column+" = ? WHERE id = ?", *v, userID)

		return err
	}

	if err := apply("is_admin", isAdmin); err != nil {
		return fmt.Errorf("failed to update user: %w", err)
	}

	if err := apply("is_verified_organizer", isOrganizer); err != nil {
		return fmt.Errorf("failed to update user: %w", err)
	}

	if err := apply("is_banned", isBanned); err != nil {
		return fmt.Errorf("failed to update user: %w", err)
	}

	return nil
}

func (s *Storage) requireUser(userID int) (*models.User, error) {
	row := s.DB.QueryRow(`
		SELECT id, clerk_id, username, email, phone, is_admin, is_verified_organizer
		FROM users WHERE id = ?`, userID)

	user, err := scanUser(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, notFound("User not found")
	}

	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	return user, nil
}

const eventColumns = `
	e.id, e.title, e.description, e.location, e.latitude, e.longitude,
	e.category, e.type, e.price, e.views,
	e.start_date, e.end_date, e.registration_start, e.registration_end,
	e.image_path, e.organizer_id, e.is_approved, e.created_at, e.updated_at,
	e.attendees_count,
	(SELECT COUNT(*) FROM event_likes l WHERE l.event_id = e.id) AS likes_count,
	u.id, u.clerk_id, u.username, u.email, u.phone, u.is_admin, u.is_verified_organizer`

const eventFrom = ` FROM events e JOIN users u ON u.id = e.organizer_id `

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEvent(row rowScanner) (models.Event, error) {
	var e models.Event
	err := row.Scan(
		&e.ID, &e.Title, &e.Description, &e.Location, &e.Latitude, &e.Longitude,
		&e.Category, &e.Type, &e.Price, &e.Views,
		&e.StartDate, &e.EndDate, &e.RegistrationStart, &e.RegistrationEnd,
		&e.ImagePath, &e.OrganizerID, &e.IsApproved, &e.CreatedAt, &e.UpdatedAt,
		&e.AttendeesCount,
		&e.LikesCount,
		&e.Organizer.ID, &e.Organizer.ClerkID, &e.Organizer.Username,
		&e.Organizer.Email, &e.Organizer.Phone, &e.Organizer.IsAdmin,
		&e.Organizer.IsVerifiedOrganizer,
	)

	return e, err
}

func (s *Storage) CreateEvent(e models.Event) (int, error) {
	now := time.Now().UTC()

	res, err := s.DB.Exec(`
		INSERT INTO events (
			title, description, location, latitude, longitude, category, type,
			price, start_date, end_date, registration_start, registration_end,
			image_path, organizer_id, is_approved, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.Title, e.Description, e.Location, e.Latitude, e.Longitude,
		e.Category, e.Type, e.Price,
		e.StartDate.UTC(), e.EndDate.UTC(),
		e.RegistrationStart.UTC(), e.RegistrationEnd.UTC(),
		e.ImagePath, e.OrganizerID, e.IsApproved, now, now,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to create event: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to create event: %w", err)
	}

	return int(id), nil
}

func (s *Storage) GetEvent(id int) (*models.Event, error) {
	row := s.DB.QueryRow(`SELECT `+eventColumns+eventFrom+` WHERE e.id = ?`, id)

	event, err := scanEvent(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, notFound("Event not found")
	}

	if err != nil {
		return nil, fmt.Errorf("failed to get event: %w", err)
	}

	return &event, nil
}

type eventListQuery struct {
	category     string
	upcoming     bool
	past         bool
	approvedOnly bool
	pendingOnly  bool
	organizerID  int
}

func (s *Storage) ListEvents(q eventListQuery) ([]models.Event, error) {
	var (
		where []string
		args  []any
	)

	if q.approvedOnly {
		where = append(where, "e.is_approved = 1")
	}

	if q.pendingOnly {
		where = append(where, "e.is_approved = 0")
	}

	if q.category != "" {
		where = append(where, "e.category = ?")
		args = append(args, q.category)
	}

	now := time.Now().UTC()

	order := "e.start_date ASC"

	if q.upcoming {
		where = append(where, "e.start_date >= ?")
		args = append(args, now)
	} else if q.past {
		where = append(where, "e.end_date < ?")
		args = append(args, now)
		order = "e.start_date DESC"
	}

	if q.organizerID != 0 {
		where = append(where, "e.organizer_id = ?")
		args = append(args, q.organizerID)
		order = "e.start_date DESC"
	}

	query := `SELECT ` + eventColumns + eventFrom
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY " + order

	rows, err := s.DB.Query(query, args...)
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

// UpdateEvent applies the non-empty form fields; editing by a non-verified
// organizer drops the event back to pending, as the real backend does.
func (s *Storage) UpdateEvent(id int, fields map[string]any, actor *models.User) (*models.Event, error) {
	event, err := s.GetEvent(id)
	if err != nil {
		return nil, err
	}

	if event.OrganizerID != actor.ID && !actor.IsAdmin {
		return nil, forbidden("Not authorized to update this event")
	}

	if len(fields) > 0 {
		var (
			sets []string
			args []any
		)

		for column, value := range fields {
			sets = append(sets, column+" = ?")
			args = append(args, value)
		}

		sets = append(sets, "updated_at = ?")
		args = append(args, time.Now().UTC())

		if !actor.IsVerifiedOrganizer && !actor.IsAdmin {
			sets = append(sets, "is_approved = 0")
		}

		args = append(args, id)

		if _, err = s.DB.Exec("UPDATE events SET "+strings.Join(sets, ", ")+" WHERE id = ?", args...); err != nil {
			return nil, fmt.Errorf("failed to update event: %w", err)
		}
	}

	return s.GetEvent(id)
}

func (s *Storage) DeleteEvent(id int, actor *models.User) error {
	event, err := s.GetEvent(id)
	if err != nil {
		return err
	}

	if event.OrganizerID != actor.ID && !actor.IsAdmin {
		return forbidden("Not authorized to delete this event")
	}

	if _, err = s.DB.Exec("DELETE FROM events WHERE id = ?", id); err != nil {
		return fmt.Errorf("failed to delete event: %w", err)
	}

	return nil
}

func (s *Storage) SetEventApproved(id int, approved bool) error {
	res, err := s.DB.Exec("UPDATE events SET is_approved = ?, updated_at = ? WHERE id = ?",
		approved, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("failed to update event: %w", err)
	}

	if n, _ := res.RowsAffected(); n == 0 {
		return notFound("Event not found")
	}

	return nil
}

func (s *Storage) IncrementViews(id int) error {
	_, err := s.DB.Exec("UPDATE events SET views = views + 1 WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to count view: %w", err)
	}

	return nil
}
