package stubserver

import (
	"net/http"

	"github.com/go-chi/render"

	"communityPulse/internal/models"
)

func (s *Server) handleListUsers(w http.ResponseWriter, r *http.Request, _ *models.User) {
	users, err := s.storage.ListUsers()
	if err != nil {
		s.renderError(w, r, err)
		return
	}

	render.JSON(w, r, users)
}

type userStatusRequest struct {
	IsAdmin             *bool `json:"is_admin"`
	IsVerifiedOrganizer *bool `json:"is_verified_organizer"`
	IsBanned            *bool `json:"is_banned"`
}

func (s *Server) handleUpdateUserStatus(w http.ResponseWriter, r *http.Request, _ *models.User) {
	id, err := urlID(r)
	if err != nil {
		s.renderDetail(w, r, http.StatusBadRequest, "Invalid user id")
		return
	}

	var req userStatusRequest
	if err = render.DecodeJSON(r.Body, &req); err != nil {
		s.renderDetail(w, r, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err = s.storage.UpdateUserFlags(id, req.IsAdmin, req.IsVerifiedOrganizer, req.IsBanned); err != nil {
		s.renderError(w, r, err)
		return
	}

	render.JSON(w, r, map[string]string{"message": "User updated successfully"})
}

func (s *Server) handleVerifyOrganizer(w http.ResponseWriter, r *http.Request, _ *models.User) {
	id, err := urlID(r)
	if err != nil {
		s.renderDetail(w, r, http.StatusBadRequest, "Invalid user id")
		return
	}

	verified := true
	if err = s.storage.UpdateUserFlags(id, nil, &verified, nil); err != nil {
		s.renderError(w, r, err)
		return
	}

	render.JSON(w, r, map[string]string{"message": "Organizer verified successfully"})
}

func (s *Server) handlePendingEvents(w http.ResponseWriter, r *http.Request, _ *models.User) {
	events, err := s.storage.ListEvents(eventListQuery{pendingOnly: true})
	if err != nil {
		s.renderError(w, r, err)
		return
	}

	render.JSON(w, r, eventList(events))
}

func (s *Server) handleApproveEvent(w http.ResponseWriter, r *http.Request, _ *models.User) {
	id, err := urlID(r)
	if err != nil {
		s.renderDetail(w, r, http.StatusBadRequest, "Invalid event id")
		return
	}

	if err = s.storage.SetEventApproved(id, true); err != nil {
		s.renderError(w, r, err)
		return
	}

	render.JSON(w, r, map[string]string{"message": "Event approved successfully"})
}

func (s *Server) handleRejectEvent(w http.ResponseWriter, r *http.Request, _ *models.User) {
	id, err := urlID(r)
	if err != nil {
		s.renderDetail(w, r, http.StatusBadRequest, "Invalid event id")
		return
	}

	if err = s.storage.SetEventApproved(id, false); err != nil {
		s.renderError(w, r, err)
		return
	}

	render.JSON(w, r, map[string]string{"message": "Event rejected"})
}

func (s *Server) handlePendingIssues(w http.ResponseWriter, r *http.Request, _ *models.User) {
	issues, err := s.storage.ListIssues(issueListQuery{pendingOnly: true})
	if err != nil {
		s.renderError(w, r, err)
		return
	}

	render.JSON(w, r, issueList(issues))
}

func (s *Server) handleApproveIssue(w http.ResponseWriter, r *http.Request, _ *models.User) {
	id, err := urlID(r)
	if err != nil {
		s.renderDetail(w, r, http.StatusBadRequest, "Invalid issue id")
		return
	}

	if err = s.storage.SetIssueState(id, models.IssueApproved, true); err != nil {
		s.renderError(w, r, err)
		return
	}

	render.JSON(w, r, map[string]string{"message": "Issue approved successfully"})
}

func (s *Server) handleResolveIssue(w http.ResponseWriter, r *http.Request, _ *models.User) {
	id, err := urlID(r)
	if err != nil {
		s.renderDetail(w, r, http.StatusBadRequest, "Invalid issue id")
		return
	}

	if err = s.storage.SetIssueState(id, models.IssueResolved, true); err != nil {
		s.renderError(w, r, err)
		return
	}

	render.JSON(w, r, map[string]string{"message": "Issue resolved successfully"})
}

func (s *Server) handleRejectIssue(w http.ResponseWriter, r *http.Request, _ *models.User) {
	id, err := urlID(r)
	if err != nil {
		s.renderDetail(w, r, http.StatusBadRequest, "Invalid issue id")
		return
	}

	if err = s.storage.SetIssueState(id, models.IssueRejected, false); err != nil {
		s.renderError(w, r, err)
		return
	}

	render.JSON(w, r, map[string]string{"message": "Issue rejected"})
}
