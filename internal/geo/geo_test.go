package geo

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLocator(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name     string
		cfg      Config
		expected string
		wantErr  bool
	}{
		{
			name:     "Static provider",
			cfg:      Config{Provider: "static", Latitude: 40.7, Longitude: -74.0},
			expected: "static",
		},
		{
			name:     "IPAPI provider",
			cfg:      Config{Provider: "ipapi", IPAPIURL: "https://ipapi.co/json/"},
			expected: "ipapi",
		},
		{
			name:    "Unknown provider",
			cfg:     Config{Provider: "gps"},
			wantErr: true,
		},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			locator, err := NewLocator(tc.cfg)

			if tc.wantErr {
				assert.Error(t, err)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tc.expected, locator.Name())
		})
	}
}

func TestStaticLocate(t *testing.T) {
	t.Parallel()

	locator, err := NewLocator(Config{Provider: "static", Latitude: 40.7128, Longitude: -74.0060})
	require.NoError(t, err)

	point, err := locator.Locate(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 40.7128, point.Latitude)
	assert.Equal(t, -74.0060, point.Longitude)
}

func TestIPAPILocate(t *testing.T) {
	t.Parallel()

	t.Run("Success", func(t *testing.T) {
		t.Parallel()

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"ip":"203.0.113.7","city":"New York","latitude":40.7128,"longitude":-74.006}`))
		}))
		t.Cleanup(srv.Close)

		point, err := NewIPAPI(srv.URL).Locate(context.Background())
		require.NoError(t, err)

		assert.Equal(t, 40.7128, point.Latitude)
		assert.Equal(t, -74.006, point.Longitude)
	})

	t.Run("Upstream failure", func(t *testing.T) {
		t.Parallel()

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusTooManyRequests)
		}))
		t.Cleanup(srv.Close)

		_, err := NewIPAPI(srv.URL).Locate(context.Background())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "unexpected status 429")
	})
}
