package client

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"communityPulse/internal/lib/logger/handlers/slogdiscard"
	"communityPulse/internal/models"
)

func newTestClient(t *testing.T, handler http.Handler, tokens TokenSource) (*Client, *httptest.Server) {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c, err := New(Config{
		BaseURL: srv.URL,
		Timeout: 5 * time.Second,
		Retry:   RetryPolicy{Attempts: 3, Initial: time.Millisecond, Max: 10 * time.Millisecond},
		Tokens:  tokens,
	}, slogdiscard.NewDiscardLogger())
	require.NoError(t, err)

	return c, srv
}

func TestNewRequiresBaseURL(t *testing.T) {
	t.Parallel()

	_, err := New(Config{}, slogdiscard.NewDiscardLogger())
	assert.Error(t, err)
}

func TestBearerInjection(t *testing.T) {
	t.Parallel()

	var gotAuth atomic.Value

	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth.Store(r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":1,"clerk_id":"user_1","username":"user","email":"user@example.com","is_admin":false,"is_verified_organizer":false}`))
	})

	c, _ := newTestClient(t, handler, StaticToken("user_1"))

	_, err := c.Me(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "Bearer user_1", gotAuth.Load())
}

func TestUnauthenticatedCallSendsNoToken(t *testing.T) {
	t.Parallel()

	var gotAuth atomic.Value

	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth.Store(r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[]`))
	})

	c, _ := newTestClient(t, handler, StaticToken("user_1"))

	_, err := c.ListEvents(context.Background(), ListOptions{ApprovedOnly: true})
	require.NoError(t, err)

	assert.Equal(t, "", gotAuth.Load())
}

func TestAuthenticatedCallWithoutTokenSource(t *testing.T) {
	t.Parallel()

	c, _ := newTestClient(t, http.NotFoundHandler(), nil)

	_, err := c.Me(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "token source")
}

func TestGetRetriesOnServerError(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32

	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			http.Error(w, `{"detail":"temporary"}`, http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[{"id":5,"title":"Pottery Class"}]`))
	})

	c, _ := newTestClient(t, handler, nil)

	events, err := c.ListEvents(context.Background(), ListOptions{})
	require.NoError(t, err)

	assert.Equal(t, int32(3), calls.Load())
	require.Len(t, events, 1)
	assert.Equal(t, 5, events[0].ID)
}

func TestGetGivesUpAfterAttempts(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32

	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.Error(w, `{"detail":"down for maintenance"}`, http.StatusServiceUnavailable)
	})

	c, _ := newTestClient(t, handler, nil)

	_, err := c.ListEvents(context.Background(), ListOptions{})
	require.Error(t, err)

	assert.Equal(t, int32(3), calls.Load())

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusServiceUnavailable, apiErr.StatusCode)
	assert.Equal(t, "down for maintenance", apiErr.Detail)
}

func TestGetDoesNotRetryClientErrors(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32

	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.Error(w, `{"detail":"Event not found"}`, http.StatusNotFound)
	})

	c, _ := newTestClient(t, handler, nil)

	_, err := c.GetEvent(context.Background(), 99)
	require.Error(t, err)

	assert.Equal(t, int32(1), calls.Load())
	assert.True(t, IsNotFound(err))
}

func TestMutationsAreNeverRetried(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32

	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.Error(w, `{"detail":"boom"}`, http.StatusInternalServerError)
	})

	c, _ := newTestClient(t, handler, StaticToken("user_1"))

	err := c.LikeEvent(context.Background(), 1)
	require.Error(t, err)

	assert.Equal(t, int32(1), calls.Load())
}

func TestAPIErrorDetail(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name     string
		body     string
		expected string
	}{
		{
			name:     "Detail field",
			body:     `{"detail":"Not authorized"}`,
			expected: "api: 403: Not authorized",
		},
		{
			name:     "Error field fallback",
			body:     `{"status":"Error","error":"invalid id"}`,
			expected: "api: 403: invalid id",
		},
		{
			name:     "Unparseable body",
			body:     `<html>gateway error</html>`,
			expected: "api: unexpected status 403",
		},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				http.Error(w, tc.body, http.StatusForbidden)
			})

			c, _ := newTestClient(t, handler, nil)

			_, err := c.GetEvent(context.Background(), 1)
			require.Error(t, err)

			var apiErr *APIError
			require.ErrorAs(t, err, &apiErr)
			assert.Equal(t, tc.expected, apiErr.Error())
		})
	}
}

func TestListEventsQueryFlags(t *testing.T) {
	t.Parallel()

	var gotQuery atomic.Value

	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery.Store(r.URL.Query().Encode())
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[]`))
	})

	c, _ := newTestClient(t, handler, nil)

	_, err := c.ListEvents(context.Background(), ListOptions{
		Category:     models.CategoryFestival,
		Upcoming:     true,
		ApprovedOnly: true,
	})
	require.NoError(t, err)

	q := gotQuery.Load().(string)
	assert.Contains(t, q, "category=Festival")
	assert.Contains(t, q, "upcoming=true")
	assert.Contains(t, q, "approved_only=true")
	assert.NotContains(t, q, "past")
}

func TestCreateEventMultipart(t *testing.T) {
	t.Parallel()

	type captured struct {
		fields map[string]string
		image  string
	}

	var got atomic.Value

	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.NoError(t, r.ParseMultipartForm(1<<20))

		rec := captured{fields: map[string]string{}}
		for k, vs := range r.MultipartForm.Value {
			rec.fields[k] = vs[0]
		}

		if fhs := r.MultipartForm.File["image"]; len(fhs) > 0 {
			rec.image = fhs[0].Filename
		}

		got.Store(rec)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":10,"title":"Summer Festival"}`))
	})

	c, _ := newTestClient(t, handler, StaticToken("org_1"))

	price := 150.0
	form := EventForm{
		Title:             "Summer Festival",
		Description:       "Food stalls and live music",
		Location:          "Main Square",
		Category:          models.CategoryFestival,
		Type:              models.EventTypePaid,
		Price:             &price,
		StartDate:         time.Date(2025, 8, 1, 10, 0, 0, 0, time.UTC),
		EndDate:           time.Date(2025, 8, 1, 18, 0, 0, 0, time.UTC),
		RegistrationStart: time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC),
		RegistrationEnd:   time.Date(2025, 7, 31, 0, 0, 0, 0, time.UTC),
	}

	image := &ImageUpload{Filename: "poster.jpg", Content: strings.NewReader("fake image bytes")}

	event, err := c.CreateEvent(context.Background(), form, image)
	require.NoError(t, err)
	assert.Equal(t, 10, event.ID)

	rec := got.Load().(captured)
	assert.Equal(t, "Summer Festival", rec.fields["title"])
	assert.Equal(t, "Festival", rec.fields["category"])
	assert.Equal(t, "150", rec.fields["price"])
	assert.Equal(t, "2025-08-01T10:00:00Z", rec.fields["start_date"])
	assert.Equal(t, "2025-07-31T00:00:00Z", rec.fields["registration_end"])
	assert.Equal(t, "poster.jpg", rec.image)
}

func TestUpdateEventOmitsZeroFields(t *testing.T) {
	t.Parallel()

	var got atomic.Value

	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.NoError(t, r.ParseMultipartForm(1<<20))

		fields := map[string]string{}
		for k, vs := range r.MultipartForm.Value {
			fields[k] = vs[0]
		}
		got.Store(fields)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":10,"title":"New Title"}`))
	})

	c, _ := newTestClient(t, handler, StaticToken("org_1"))

	_, err := c.UpdateEvent(context.Background(), 10, EventForm{Title: "New Title"}, nil)
	require.NoError(t, err)

	fields := got.Load().(map[string]string)
	assert.Equal(t, map[string]string{"title": "New Title"}, fields)
}

func TestRegistrationStatusShapes(t *testing.T) {
	t.Parallel()

	t.Run("Active registration", func(t *testing.T) {
		t.Parallel()

		handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"status":"registered","registration":{"id":7,"event_id":42,"status":"registered","number_of_attendees":2}}`))
		})

		c, _ := newTestClient(t, handler, StaticToken("user_1"))

		status, reg, err := c.RegistrationStatus(context.Background(), 42)
		require.NoError(t, err)

		assert.Equal(t, models.StatusRegistered, status)
		require.NotNil(t, reg)
		assert.Equal(t, 7, reg.ID)
		assert.Equal(t, 2, reg.NumberOfAttendees)
	})

	t.Run("No registration", func(t *testing.T) {
		t.Parallel()

		handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"status":"none","registration":null}`))
		})

		c, _ := newTestClient(t, handler, StaticToken("user_1"))

		status, reg, err := c.RegistrationStatus(context.Background(), 42)
		require.NoError(t, err)

		assert.Equal(t, models.StatusNone, status)
		assert.Nil(t, reg)
	})
}

func TestContextCancellationStopsRetries(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32

	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.Error(w, `{"detail":"boom"}`, http.StatusInternalServerError)
	})

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c, err := New(Config{
		BaseURL: srv.URL,
		Retry:   RetryPolicy{Attempts: 5, Initial: time.Hour, Max: time.Hour},
	}, slogdiscard.NewDiscardLogger())
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err = c.ListEvents(ctx, ListOptions{})
	require.Error(t, err)

	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, int32(1), calls.Load())
}
