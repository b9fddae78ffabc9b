package stubserver

import (
	"errors"
	"math"
	"net/http"
	"sort"
	"strconv"
	"time"

	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"

	"communityPulse/internal/lib/api/response"
	"communityPulse/internal/models"
)

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request, user *models.User) {
	render.JSON(w, r, user)
}

func (s *Server) handleListEvents(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	approvedOnly := true
	if v := q.Get("approved_only"); v != "" {
		approvedOnly, _ = strconv.ParseBool(v)
	}

	events, err := s.storage.ListEvents(eventListQuery{
		category:     q.Get("category"),
		upcoming:     q.Get("upcoming") == "true",
		past:         q.Get("past") == "true",
		approvedOnly: approvedOnly,
	})
	if err != nil {
		s.renderError(w, r, err)
		return
	}

	render.JSON(w, r, eventList(events))
}

func (s *Server) handleGetEvent(w http.ResponseWriter, r *http.Request) {
	id, err := urlID(r)
	if err != nil {
		s.renderDetail(w, r, http.StatusBadRequest, "Invalid event id")
		return
	}

	event, err := s.storage.GetEvent(id)
	if err != nil {
		s.renderError(w, r, err)
		return
	}

	render.JSON(w, r, event)
}

// handleEventDetails is the authenticated detail view: counts a view and
// annotates is_registered / is_liked for the caller.
func (s *Server) handleEventDetails(w http.ResponseWriter, r *http.Request, user *models.User) {
	id, err := urlID(r)
	if err != nil {
		s.renderDetail(w, r, http.StatusBadRequest, "Invalid event id")
		return
	}

	if err = s.storage.IncrementViews(id); err != nil {
		s.renderError(w, r, err)
		return
	}

	event, err := s.storage.GetEvent(id)
	if err != nil {
		s.renderError(w, r, err)
		return
	}

	status, _, err := s.storage.RegistrationStatus(id, user.ID)
	if err != nil {
		s.renderError(w, r, err)
		return
	}

	registered := status == models.StatusRegistered || status == models.StatusInterested
	event.IsRegistered = &registered

	liked, err := s.storage.IsLiked(id, user.ID)
	if err != nil {
		s.renderError(w, r, err)
		return
	}
	event.IsLiked = &liked

	render.JSON(w, r, event)
}

type eventFormRequest struct {
	Title             string `validate:"required"`
	Description       string `validate:"required"`
	Location          string `validate:"required"`
	Category          string `validate:"required"`
	Type              string
	Price             float64 `validate:"gte=0"`
	Latitude          *float64
	Longitude         *float64
	StartDate         time.Time `validate:"required"`
	EndDate           time.Time `validate:"required"`
	RegistrationStart time.Time `validate:"required"`
	RegistrationEnd   time.Time `validate:"required"`
}

func parseEventForm(r *http.Request, partial bool) (*eventFormRequest, error) {
	if err := r.ParseMultipartForm(8 << 20); err != nil {
		return nil, badRequest("Invalid form data")
	}

	form := &eventFormRequest{
		Title:       r.FormValue("title"),
		Description: r.FormValue("description"),
		Location:    r.FormValue("location"),
		Category:    r.FormValue("category"),
		Type:        r.FormValue("type"),
	}

	if v := r.FormValue("price"); v != "" {
		price, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return nil, badRequest("Invalid price")
		}
		form.Price = price
	}

	parseCoord := func(key string) (*float64, error) {
		v := r.FormValue(key)
		if v == "" {
			return nil, nil
		}

		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return nil, badRequest("Invalid " + key)
		}

		return &f, nil
	}

	var err error
	if form.Latitude, err = parseCoord("latitude"); err != nil {
		return nil, err
	}
	if form.Longitude, err = parseCoord("longitude"); err != nil {
		return nil, err
	}

	parseDate := func(key string) (time.Time, error) {
		v := r.FormValue(key)
		if v == "" {
			return time.Time{}, nil
		}

		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return time.Time{}, badRequest("Invalid date format: " + key)
		}

		return t, nil
	}

	if form.StartDate, err = parseDate("start_date"); err != nil {
		return nil, err
	}
	if form.EndDate, err = parseDate("end_date"); err != nil {
		return nil, err
	}
	if form.RegistrationStart, err = parseDate("registration_start"); err != nil {
		return nil, err
	}
	if form.RegistrationEnd, err = parseDate("registration_end"); err != nil {
		return nil, err
	}

	if !partial {
		if err = validator.New().Struct(form); err != nil {
			return nil, err
		}
	}

	return form, nil
}

func (s *Server) handleCreateEvent(w http.ResponseWriter, r *http.Request, user *models.User) {
	form, err := parseEventForm(r, false)
	if err != nil {
		var validateErr validator.ValidationErrors
		if errors.As(err, &validateErr) {
			render.Status(r, http.StatusUnprocessableEntity)
			render.JSON(w, r, response.ValidationError(validateErr))

			return
		}

		s.renderError(w, r, err)
		return
	}

	if form.Type == "" {
		form.Type = models.EventTypeFree
	}

	event := models.Event{
		Title:             form.Title,
		Description:       form.Description,
		Location:          form.Location,
		Latitude:          form.Latitude,
		Longitude:         form.Longitude,
		Category:          models.Category(form.Category),
		Type:              form.Type,
		Price:             form.Price,
		StartDate:         form.StartDate,
		EndDate:           form.EndDate,
		RegistrationStart: form.RegistrationStart,
		RegistrationEnd:   form.RegistrationEnd,
		OrganizerID:       user.ID,
		IsApproved:        user.IsVerifiedOrganizer,
	}

	id, err := s.storage.CreateEvent(event)
	if err != nil {
		s.renderError(w, r, err)
		return
	}

	created, err := s.storage.GetEvent(id)
	if err != nil {
		s.renderError(w, r, err)
		return
	}

	render.JSON(w, r, created)
}

func (s *Server) handleUpdateEvent(w http.ResponseWriter, r *http.Request, user *models.User) {
	id, err := urlID(r)
	if err != nil {
		s.renderDetail(w, r, http.StatusBadRequest, "Invalid event id")
		return
	}

	form, err := parseEventForm(r, true)
	if err != nil {
		s.renderError(w, r, err)
		return
	}

	fields := map[string]any{}

	setStr := func(column, v string) {
		if v != "" {
			fields[column] = v
		}
	}

	setStr("title", form.Title)
	setStr("description", form.Description)
	setStr("location", form.Location)
	setStr("category", form.Category)
	setStr("type", form.Type)

	if form.Price != 0 {
		fields["price"] = form.Price
	}

	if form.Latitude != nil {
		fields["latitude"] = *form.Latitude
	}

	if form.Longitude != nil {
		fields["longitude"] = *form.Longitude
	}

	setTime := func(column string, t time.Time) {
		if !t.IsZero() {
			fields[column] = t.UTC()
		}
	}

	setTime("start_date", form.StartDate)
	setTime("end_date", form.EndDate)
	setTime("registration_start", form.RegistrationStart)
	setTime("registration_end", form.RegistrationEnd)

	event, err := s.storage.UpdateEvent(id, fields, user)
	if err != nil {
		s.renderError(w, r, err)
		return
	}

	render.JSON(w, r, event)
}

func (s *Server) handleDeleteEvent(w http.ResponseWriter, r *http.Request, user *models.User) {
	id, err := urlID(r)
	if err != nil {
		s.renderDetail(w, r, http.StatusBadRequest, "Invalid event id")
		return
	}

	if err = s.storage.DeleteEvent(id, user); err != nil {
		s.renderError(w, r, err)
		return
	}

	render.JSON(w, r, map[string]string{"message": "Event deleted successfully"})
}

func (s *Server) handleNearbyEvents(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	lat, err := strconv.ParseFloat(q.Get("latitude"), 64)
	if err != nil {
		s.renderDetail(w, r, http.StatusBadRequest, "Invalid latitude")
		return
	}

	lon, err := strconv.ParseFloat(q.Get("longitude"), 64)
	if err != nil {
		s.renderDetail(w, r, http.StatusBadRequest, "Invalid longitude")
		return
	}

	maxDistance := 10.0
	if v := q.Get("max_distance"); v != "" {
		if maxDistance, err = strconv.ParseFloat(v, 64); err != nil {
			s.renderDetail(w, r, http.StatusBadRequest, "Invalid max_distance")
			return
		}
	}

	events, err := s.storage.ListEvents(eventListQuery{approvedOnly: true})
	if err != nil {
		s.renderError(w, r, err)
		return
	}

	var nearby []models.Event

	for _, event := range events {
		if event.Latitude == nil || event.Longitude == nil {
			continue
		}

		d := haversineKM(lat, lon, *event.Latitude, *event.Longitude)
		if d <= maxDistance {
			d = math.Round(d*100) / 100
			event.Distance = &d
			nearby = append(nearby, event)
		}
	}

	sort.Slice(nearby, func(i, j int) bool {
		return *nearby[i].Distance < *nearby[j].Distance
	})

	render.JSON(w, r, eventList(nearby))
}

const earthRadiusKM = 6371.0

func haversineKM(lat1, lon1, lat2, lon2 float64) float64 {
	dLat := (lat2 - lat1) * math.Pi / 180
	dLon := (lon2 - lon1) * math.Pi / 180

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1*math.Pi/180)*math.Cos(lat2*math.Pi/180)*
			math.Sin(dLon/2)*math.Sin(dLon/2)

	return earthRadiusKM * 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
}

// eventList keeps empty results as [] rather than null on the wire.
func eventList(events []models.Event) []models.Event {
	if events == nil {
		return []models.Event{}
	}

	return events
}
