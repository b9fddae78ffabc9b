package stubserver

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"communityPulse/internal/models"
)

const issueColumns = `
	i.id, i.title, i.description, i.location, i.latitude, i.longitude,
	i.category, i.status, i.image_path, i.reporter_id, i.is_approved,
	i.created_at, i.updated_at, i.votes_count,
	u.id, u.clerk_id, u.username, u.email, u.phone, u.is_admin, u.is_verified_organizer`

const issueFrom = ` FROM issues i JOIN users u ON u.id = i.reporter_id `

func scanIssue(row rowScanner) (models.Issue, error) {
	var i models.Issue
	err := row.Scan(
		&i.ID, &i.Title, &i.Description, &i.Location, &i.Latitude, &i.Longitude,
		&i.Category, &i.Status, &i.ImagePath, &i.ReporterID, &i.IsApproved,
		&i.CreatedAt, &i.UpdatedAt, &i.VotesCount,
		&i.Reporter.ID, &i.Reporter.ClerkID, &i.Reporter.Username,
		&i.Reporter.Email, &i.Reporter.Phone, &i.Reporter.IsAdmin,
		&i.Reporter.IsVerifiedOrganizer,
	)

	return i, err
}

// CreateIssue stores a new report; issues from verified organizers are
// auto-approved, everyone else's wait for moderation.
func (s *Storage) CreateIssue(i models.Issue, reporter *models.User) (int, error) {
	now := time.Now().UTC()

	res, err := s.DB.Exec(`
		INSERT INTO issues (
			title, description, location, latitude, longitude, category,
			status, image_path, reporter_id, is_approved, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		i.Title, i.Description, i.Location, i.Latitude, i.Longitude, i.Category,
		models.IssuePending, i.ImagePath, reporter.ID, reporter.IsVerifiedOrganizer,
		now, now,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to create issue: %w", err)
	}

	id, _ := res.LastInsertId()

	return int(id), nil
}

func (s *Storage) GetIssue(id int) (*models.Issue, error) {
	row := s.DB.QueryRow(`SELECT `+issueColumns+issueFrom+` WHERE i.id = ?`, id)

	issue, err := scanIssue(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, notFound("Issue not found")
	}

	if err != nil {
		return nil, fmt.Errorf("failed to get issue: %w", err)
	}

	return &issue, nil
}

type issueListQuery struct {
	category     string
	status       string
	approvedOnly bool
	pendingOnly  bool
}

func (s *Storage) ListIssues(q issueListQuery) ([]models.Issue, error) {
	var (
		where []string
		args  []any
	)

	if q.approvedOnly {
		where = append(where, "i.is_approved = 1")
	}

	if q.pendingOnly {
		where = append(where, "i.is_approved = 0")
	}

	if q.category != "" {
		where = append(where, "i.category = ?")
		args = append(args, q.category)
	}

	if q.status != "" {
		where = append(where, "i.status = ?")
		args = append(args, q.status)
	}

	query := `SELECT ` + issueColumns + issueFrom
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY i.created_at DESC"

	rows, err := s.DB.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list issues: %w", err)
	}
	defer rows.Close()

	var issues []models.Issue
	for rows.Next() {
		issue, err := scanIssue(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan issue: %w", err)
		}

		issues = append(issues, issue)
	}

	return issues, rows.Err()
}

func (s *Storage) UpdateIssue(id int, fields map[string]any, actor *models.User) (*models.Issue, error) {
	issue, err := s.GetIssue(id)
	if err != nil {
		return nil, err
	}

	if issue.ReporterID != actor.ID && !actor.IsAdmin {
		return nil, forbidden("Not authorized to update this issue")
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
		args = append(args, time.Now().UTC(), id)

		if _, err = s.DB.Exec("UPDATE issues SET "+strings.Join(sets, ", ")+" WHERE id = ?", args...); err != nil {
			return nil, fmt.Errorf("failed to update issue: %w", err)
		}
	}

	return s.GetIssue(id)
}

func (s *Storage) DeleteIssue(id int, actor *models.User) error {
	issue, err := s.GetIssue(id)
	if err != nil {
		return err
	}

	if issue.ReporterID != actor.ID && !actor.IsAdmin {
		return forbidden("Not authorized to delete this issue")
	}

	if _, err = s.DB.Exec("DELETE FROM issues WHERE id = ?", id); err != nil {
		return fmt.Errorf("failed to delete issue: %w", err)
	}

	return nil
}

func (s *Storage) VoteIssue(issueID, userID int) error {
	if _, err := s.GetIssue(issueID); err != nil {
		return err
	}

	var exists int
	err := s.DB.QueryRow(`SELECT 1 FROM issue_votes WHERE issue_id = ? AND user_id = ?`,
		issueID, userID).Scan(&exists)

	if err == nil {
		return badRequest("You have already voted for this issue")
	}

	if !errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("failed to check vote: %w", err)
	}

	if _, err = s.DB.Exec(`INSERT INTO issue_votes (issue_id, user_id) VALUES (?, ?)`,
		issueID, userID); err != nil {
		return fmt.Errorf("failed to vote: %w", err)
	}

	if _, err = s.DB.Exec(`UPDATE issues SET votes_count = votes_count + 1 WHERE id = ?`, issueID); err != nil {
		return fmt.Errorf("failed to update vote count: %w", err)
	}

	return nil
}

func (s *Storage) UnvoteIssue(issueID, userID int) error {
	res, err := s.DB.Exec(`DELETE FROM issue_votes WHERE issue_id = ? AND user_id = ?`,
		issueID, userID)
	if err != nil {
		return fmt.Errorf("failed to remove vote: %w", err)
	}

	if n, _ := res.RowsAffected(); n == 0 {
		return notFound("Vote not found")
	}

	if _, err = s.DB.Exec(`
		UPDATE issues SET votes_count = MAX(0, votes_count - 1) WHERE id = ?`, issueID); err != nil {
		return fmt.Errorf("failed to update vote count: %w", err)
	}

	return nil
}

func (s *Storage) HasVoted(issueID, userID int) (bool, error) {
	var exists int
	err := s.DB.QueryRow(`SELECT 1 FROM issue_votes WHERE issue_id = ? AND user_id = ?`,
		issueID, userID).Scan(&exists)

	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}

	if err != nil {
		return false, fmt.Errorf("failed to check vote: %w", err)
	}

	return true, nil
}

// SetIssueState moderates an issue: approve marks it approved and visible,
// resolve/reject update the workflow status.
func (s *Storage) SetIssueState(id int, status models.IssueStatus, approved bool) error {
	res, err := s.DB.Exec(`
		UPDATE issues SET status = ?, is_approved = ?, updated_at = ? WHERE id = ?`,
		status, approved, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("failed to update issue: %w", err)
	}

	if n, _ := res.RowsAffected(); n == 0 {
		return notFound("Issue not found")
	}

	return nil
}
