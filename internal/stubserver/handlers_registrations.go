package stubserver

import (
	"net/http"

	"github.com/go-chi/render"

	"communityPulse/internal/models"
)

func (s *Server) handleMarkInterest(w http.ResponseWriter, r *http.Request, user *models.User) {
	id, err := urlID(r)
	if err != nil {
		s.renderDetail(w, r, http.StatusBadRequest, "Invalid event id")
		return
	}

	regID, err := s.storage.MarkInterest(id, user.ID)
	if err != nil {
		s.renderError(w, r, err)
		return
	}

	render.JSON(w, r, map[string]any{
		"message":         "Interest marked successfully",
		"registration_id": regID,
	})
}

type confirmRegistrationRequest struct {
	NumberOfAttendees int               `json:"number_of_attendees"`
	Attendees         []models.Attendee `json:"attendees"`
}

func (s *Server) handleConfirmRegistration(w http.ResponseWriter, r *http.Request, user *models.User) {
	id, err := urlID(r)
	if err != nil {
		s.renderDetail(w, r, http.StatusBadRequest, "Invalid event id")
		return
	}

	var req confirmRegistrationRequest
	if err = render.DecodeJSON(r.Body, &req); err != nil {
		s.renderDetail(w, r, http.StatusBadRequest, "Invalid request body")
		return
	}

	roster, err := models.ValidateRoster(req.Attendees)
	if err != nil {
		s.renderDetail(w, r, http.StatusUnprocessableEntity, err.Error())
		return
	}

	if req.NumberOfAttendees != len(roster) {
		s.renderDetail(w, r, http.StatusUnprocessableEntity,
			"Number of attendees must match the length of attendees list")
		return
	}

	reg, err := s.storage.ConfirmRegistration(id, user.ID, roster)
	if err != nil {
		s.renderError(w, r, err)
		return
	}

	render.JSON(w, r, reg)
}

func (s *Server) handleCancelRegistration(w http.ResponseWriter, r *http.Request, user *models.User) {
	id, err := urlID(r)
	if err != nil {
		s.renderDetail(w, r, http.StatusBadRequest, "Invalid event id")
		return
	}

	if err = s.storage.CancelRegistration(id, user.ID); err != nil {
		s.renderError(w, r, err)
		return
	}

	render.JSON(w, r, map[string]string{"message": "Registration cancelled successfully"})
}

func (s *Server) handleRegistrationStatus(w http.ResponseWriter, r *http.Request, user *models.User) {
	id, err := urlID(r)
	if err != nil {
		s.renderDetail(w, r, http.StatusBadRequest, "Invalid event id")
		return
	}

	status, reg, err := s.storage.RegistrationStatus(id, user.ID)
	if err != nil {
		s.renderError(w, r, err)
		return
	}

	render.JSON(w, r, map[string]any{
		"status":       status,
		"registration": reg,
	})
}

func (s *Server) handleRegisteredEvents(w http.ResponseWriter, r *http.Request, user *models.User) {
	events, err := s.storage.EventsByRegistrationStatus(user.ID, models.StatusRegistered)
	if err != nil {
		s.renderError(w, r, err)
		return
	}

	render.JSON(w, r, eventList(events))
}

func (s *Server) handleInterestedEvents(w http.ResponseWriter, r *http.Request, user *models.User) {
	events, err := s.storage.EventsByRegistrationStatus(user.ID, models.StatusInterested)
	if err != nil {
		s.renderError(w, r, err)
		return
	}

	render.JSON(w, r, eventList(events))
}

func (s *Server) handleOrganizingEvents(w http.ResponseWriter, r *http.Request, user *models.User) {
	events, err := s.storage.ListEvents(eventListQuery{organizerID: user.ID})
	if err != nil {
		s.renderError(w, r, err)
		return
	}

	render.JSON(w, r, eventList(events))
}

func (s *Server) handleLikeEvent(w http.ResponseWriter, r *http.Request, user *models.User) {
	id, err := urlID(r)
	if err != nil {
		s.renderDetail(w, r, http.StatusBadRequest, "Invalid event id")
		return
	}

	if err = s.storage.LikeEvent(id, user.ID); err != nil {
		s.renderError(w, r, err)
		return
	}

	render.JSON(w, r, map[string]string{"message": "Event liked successfully"})
}

func (s *Server) handleUnlikeEvent(w http.ResponseWriter, r *http.Request, user *models.User) {
	id, err := urlID(r)
	if err != nil {
		s.renderDetail(w, r, http.StatusBadRequest, "Invalid event id")
		return
	}

	if err = s.storage.UnlikeEvent(id, user.ID); err != nil {
		s.renderError(w, r, err)
		return
	}

	render.JSON(w, r, map[string]string{"message": "Event unliked successfully"})
}

type reportRequest struct {
	Reason string `json:"reason"`
}

func (s *Server) handleReportEvent(w http.ResponseWriter, r *http.Request, user *models.User) {
	id, err := urlID(r)
	if err != nil {
		s.renderDetail(w, r, http.StatusBadRequest, "Invalid event id")
		return
	}

	var req reportRequest
	if err = render.DecodeJSON(r.Body, &req); err != nil {
		s.renderDetail(w, r, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err = s.storage.ReportEvent(id, user.ID, req.Reason); err != nil {
		s.renderError(w, r, err)
		return
	}

	render.JSON(w, r, map[string]string{"message": "Event reported successfully"})
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request, user *models.User) {
	id, err := urlID(r)
	if err != nil {
		s.renderDetail(w, r, http.StatusBadRequest, "Invalid event id")
		return
	}

	dash, err := s.storage.Dashboard(id, user)
	if err != nil {
		s.renderError(w, r, err)
		return
	}

	render.JSON(w, r, dash)
}
