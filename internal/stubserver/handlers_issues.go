package stubserver

import (
	"net/http"
	"strconv"

	"github.com/go-chi/render"

	"communityPulse/internal/models"
)

func (s *Server) handleListIssues(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	approvedOnly := true
	if v := q.Get("approved_only"); v != "" {
		approvedOnly, _ = strconv.ParseBool(v)
	}

	issues, err := s.storage.ListIssues(issueListQuery{
		category:     q.Get("category"),
		status:       q.Get("status"),
		approvedOnly: approvedOnly,
	})
	if err != nil {
		s.renderError(w, r, err)
		return
	}

	s.annotateVotes(r, issues)

	render.JSON(w, r, issueList(issues))
}

func (s *Server) handleGetIssue(w http.ResponseWriter, r *http.Request) {
	id, err := urlID(r)
	if err != nil {
		s.renderDetail(w, r, http.StatusBadRequest, "Invalid issue id")
		return
	}

	issue, err := s.storage.GetIssue(id)
	if err != nil {
		s.renderError(w, r, err)
		return
	}

	issues := []models.Issue{*issue}
	s.annotateVotes(r, issues)

	render.JSON(w, r, issues[0])
}

// annotateVotes fills has_voted for authenticated callers.
func (s *Server) annotateVotes(r *http.Request, issues []models.Issue) {
	user := s.optionalUser(r)
	if user == nil {
		return
	}

	for i := range issues {
		voted, err := s.storage.HasVoted(issues[i].ID, user.ID)
		if err != nil {
			continue
		}

		issues[i].HasVoted = &voted
	}
}

func (s *Server) parseIssueForm(r *http.Request) (map[string]any, error) {
	if err := r.ParseMultipartForm(8 << 20); err != nil {
		return nil, badRequest("Invalid form data")
	}

	fields := map[string]any{}

	for _, key := range []string{"title", "description", "location", "category"} {
		if v := r.FormValue(key); v != "" {
			fields[key] = v
		}
	}

	for _, key := range []string{"latitude", "longitude"} {
		if v := r.FormValue(key); v != "" {
			f, err := strconv.ParseFloat(v, 64)
			if err != nil {
				return nil, badRequest("Invalid " + key)
			}

			fields[key] = f
		}
	}

	return fields, nil
}

func (s *Server) handleCreateIssue(w http.ResponseWriter, r *http.Request, user *models.User) {
	fields, err := s.parseIssueForm(r)
	if err != nil {
		s.renderError(w, r, err)
		return
	}

	for _, required := range []string{"title", "description", "location", "category"} {
		if _, ok := fields[required]; !ok {
			s.renderDetail(w, r, http.StatusUnprocessableEntity, "Missing required field: "+required)
			return
		}
	}

	issue := models.Issue{
		Title:       fields["title"].(string),
		Description: fields["description"].(string),
		Location:    fields["location"].(string),
		Category:    models.IssueCategory(fields["category"].(string)),
	}

	if lat, ok := fields["latitude"].(float64); ok {
		issue.Latitude = &lat
	}

	if lon, ok := fields["longitude"].(float64); ok {
		issue.Longitude = &lon
	}

	id, err := s.storage.CreateIssue(issue, user)
	if err != nil {
		s.renderError(w, r, err)
		return
	}

	created, err := s.storage.GetIssue(id)
	if err != nil {
		s.renderError(w, r, err)
		return
	}

	render.JSON(w, r, created)
}

func (s *Server) handleUpdateIssue(w http.ResponseWriter, r *http.Request, user *models.User) {
	id, err := urlID(r)
	if err != nil {
		s.renderDetail(w, r, http.StatusBadRequest, "Invalid issue id")
		return
	}

	fields, err := s.parseIssueForm(r)
	if err != nil {
		s.renderError(w, r, err)
		return
	}

	issue, err := s.storage.UpdateIssue(id, fields, user)
	if err != nil {
		s.renderError(w, r, err)
		return
	}

	render.JSON(w, r, issue)
}

func (s *Server) handleDeleteIssue(w http.ResponseWriter, r *http.Request, user *models.User) {
	id, err := urlID(r)
	if err != nil {
		s.renderDetail(w, r, http.StatusBadRequest, "Invalid issue id")
		return
	}

	if err = s.storage.DeleteIssue(id, user); err != nil {
		s.renderError(w, r, err)
		return
	}

	render.JSON(w, r, map[string]string{"message": "Issue deleted successfully"})
}

func (s *Server) handleVoteIssue(w http.ResponseWriter, r *http.Request, user *models.User) {
	id, err := urlID(r)
	if err != nil {
		s.renderDetail(w, r, http.StatusBadRequest, "Invalid issue id")
		return
	}

	if err = s.storage.VoteIssue(id, user.ID); err != nil {
		s.renderError(w, r, err)
		return
	}

	render.JSON(w, r, map[string]string{"message": "Vote recorded successfully"})
}

func (s *Server) handleUnvoteIssue(w http.ResponseWriter, r *http.Request, user *models.User) {
	id, err := urlID(r)
	if err != nil {
		s.renderDetail(w, r, http.StatusBadRequest, "Invalid issue id")
		return
	}

	if err = s.storage.UnvoteIssue(id, user.ID); err != nil {
		s.renderError(w, r, err)
		return
	}

	render.JSON(w, r, map[string]string{"message": "Vote removed successfully"})
}

func issueList(issues []models.Issue) []models.Issue {
	if issues == nil {
		return []models.Issue{}
	}

	return issues
}
