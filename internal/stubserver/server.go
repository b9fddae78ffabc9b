// Package stubserver is an in-process stand-in for the Community Pulse API,
// backed by embedded sqlite. It speaks the same paths, payload shapes and
// error detail strings as the real backend, so the client and its tests run
// without any external service. Tokens are trusted as-is: the bearer token
// is the clerk subject, "admin*" tokens get the admin flag, "org*" tokens
// the verified-organizer flag.
package stubserver

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"communityPulse/internal/http-server/middleware/mwlogger"
	"communityPulse/internal/lib/api/response"
	"communityPulse/internal/lib/logger/sl"
	"communityPulse/internal/models"
)

type Server struct {
	log     *slog.Logger
	storage *Storage
	router  chi.Router
}

func New(log *slog.Logger, storage *Storage) *Server {
	s := &Server{
		log:     log,
		storage: storage,
	}

	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(mwlogger.New(log))
	r.Use(middleware.Recoverer)
	r.Use(middleware.URLFormat)

	r.Handle("/metrics", promhttp.Handler())

	r.Get("/users/me", s.requireUser(s.handleMe))

	r.Route("/events", func(r chi.Router) {
		r.Get("/", s.handleListEvents)
		r.Post("/", s.requireUser(s.handleCreateEvent))
		r.Get("/nearby", s.handleNearbyEvents)

		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", s.handleGetEvent)
			r.Put("/", s.requireUser(s.handleUpdateEvent))
			r.Delete("/", s.requireUser(s.handleDeleteEvent))
			r.Get("/details", s.requireUser(s.handleEventDetails))
			r.Post("/interest", s.requireUser(s.handleMarkInterest))
			r.Post("/confirm-registration", s.requireUser(s.handleConfirmRegistration))
			r.Post("/cancel-registration", s.requireUser(s.handleCancelRegistration))
			r.Get("/registration-status", s.requireUser(s.handleRegistrationStatus))
			r.Post("/like", s.requireUser(s.handleLikeEvent))
			r.Delete("/like", s.requireUser(s.handleUnlikeEvent))
			r.Post("/report", s.requireUser(s.handleReportEvent))
			r.Get("/dashboard", s.requireUser(s.handleDashboard))
		})
	})

	r.Route("/user/events", func(r chi.Router) {
		r.Get("/registered", s.requireUser(s.handleRegisteredEvents))
		r.Get("/interested", s.requireUser(s.handleInterestedEvents))
		r.Get("/organizing", s.requireUser(s.handleOrganizingEvents))
	})

	r.Route("/issues", func(r chi.Router) {
		r.Get("/", s.handleListIssues)
		r.Post("/", s.requireUser(s.handleCreateIssue))

		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", s.handleGetIssue)
			r.Put("/", s.requireUser(s.handleUpdateIssue))
			r.Delete("/", s.requireUser(s.handleDeleteIssue))
			r.Post("/vote", s.requireUser(s.handleVoteIssue))
			r.Delete("/vote", s.requireUser(s.handleUnvoteIssue))
		})
	})

	r.Route("/admin", func(r chi.Router) {
		r.Get("/users", s.requireAdmin(s.handleListUsers))
		r.Put("/users/{id}", s.requireAdmin(s.handleUpdateUserStatus))
		r.Put("/users/{id}/verify-organizer", s.requireAdmin(s.handleVerifyOrganizer))
		r.Get("/events/pending", s.requireAdmin(s.handlePendingEvents))
		r.Put("/events/{id}/approve", s.requireAdmin(s.handleApproveEvent))
		r.Put("/events/{id}/reject", s.requireAdmin(s.handleRejectEvent))
		r.Get("/issues/pending", s.requireAdmin(s.handlePendingIssues))
		r.Put("/issues/{id}/approve", s.requireAdmin(s.handleApproveIssue))
		r.Put("/issues/{id}/resolve", s.requireAdmin(s.handleResolveIssue))
		r.Delete("/issues/{id}/reject", s.requireAdmin(s.handleRejectIssue))
	})

	s.router = r

	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

type ctxKey string

const userKey ctxKey = "user"

type userHandler func(w http.ResponseWriter, r *http.Request, user *models.User)

func (s *Server) requireUser(next userHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, ok := s.authenticate(w, r)
		if !ok {
			return
		}

		next(w, r.WithContext(context.WithValue(r.Context(), userKey, user)), user)
	}
}

func (s *Server) requireAdmin(next userHandler) http.HandlerFunc {
	return s.requireUser(func(w http.ResponseWriter, r *http.Request, user *models.User) {
		if !user.IsAdmin {
			s.renderDetail(w, r, http.StatusForbidden, "Admin access required")
			return
		}

		next(w, r, user)
	})
}

// optionalUser resolves the bearer token when present; public listings work
// without one.
func (s *Server) optionalUser(r *http.Request) *models.User {
	token := bearerToken(r)
	if token == "" {
		return nil
	}

	user, err := s.storage.EnsureUser(token)
	if err != nil {
		s.log.Error("failed to resolve user", sl.Err(err))
		return nil
	}

	return user
}

func (s *Server) authenticate(w http.ResponseWriter, r *http.Request) (*models.User, bool) {
	token := bearerToken(r)
	if token == "" {
		s.renderDetail(w, r, http.StatusUnauthorized, "Not authenticated")
		return nil, false
	}

	user, err := s.storage.EnsureUser(token)
	if err != nil {
		s.log.Error("failed to resolve user", sl.Err(err))
		s.renderDetail(w, r, http.StatusInternalServerError, "Internal error")

		return nil, false
	}

	return user, true
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if !strings.HasPrefix(header, "Bearer ") {
		return ""
	}

	return strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
}

func (s *Server) renderDetail(w http.ResponseWriter, r *http.Request, code int, detail string) {
	render.Status(r, code)
	render.JSON(w, r, response.DetailError(detail))
}

// renderError maps storage failures onto the backend's status/detail pairs.
func (s *Server) renderError(w http.ResponseWriter, r *http.Request, err error) {
	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		s.renderDetail(w, r, statusErr.Code, statusErr.Detail)
		return
	}

	s.log.Error("request failed", sl.Err(err))
	s.renderDetail(w, r, http.StatusInternalServerError, "Internal error")
}

func urlID(r *http.Request) (int, error) {
	return strconv.Atoi(chi.URLParam(r, "id"))
}
