package schedule

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatus(t *testing.T) {
	t.Parallel()

	regStart := time.Date(2025, 1, 10, 9, 0, 0, 0, time.UTC)
	regEnd := time.Date(2025, 1, 20, 18, 0, 0, 0, time.UTC)

	testCases := []struct {
		name            string
		now             time.Time
		expectedOpen    bool
		expectedMessage string
	}{
		{
			name:            "Before window",
			now:             time.Date(2025, 1, 5, 12, 0, 0, 0, time.UTC),
			expectedOpen:    false,
			expectedMessage: "registration opens on Jan 10, 2025 at 9:00 AM UTC",
		},
		{
			name:         "Exactly at open",
			now:          regStart,
			expectedOpen: true,
		},
		{
			name:         "One second before open",
			now:          regStart.Add(-time.Second),
			expectedOpen: false,
		},
		{
			name:         "Inside window",
			now:          time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC),
			expectedOpen: true,
		},
		{
			name:         "Exactly at close",
			now:          regEnd,
			expectedOpen: true,
		},
		{
			name:            "One second after close",
			now:             regEnd.Add(time.Second),
			expectedOpen:    false,
			expectedMessage: "registration period has ended",
		},
		{
			name:            "Long after close",
			now:             time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC),
			expectedOpen:    false,
			expectedMessage: "registration period has ended",
		},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			decision := Status(tc.now, regStart, regEnd)

			assert.Equal(t, tc.expectedOpen, decision.Open)
			if tc.expectedMessage != "" {
				assert.Equal(t, tc.expectedMessage, decision.Message)
			}
			if tc.expectedOpen {
				assert.Empty(t, decision.Message)
			}
		})
	}
}

func TestStatusNormalizesZones(t *testing.T) {
	t.Parallel()

	// The same instant expressed in a non-UTC zone must not shift the window.
	moscow := time.FixedZone("MSK", 3*60*60)

	regStart := time.Date(2025, 1, 10, 9, 0, 0, 0, time.UTC)
	regEnd := time.Date(2025, 1, 20, 18, 0, 0, 0, time.UTC)

	now := time.Date(2025, 1, 10, 12, 0, 0, 0, moscow) // 09:00 UTC

	decision := Status(now, regStart, regEnd)
	assert.True(t, decision.Open)

	decision = Status(now.Add(-time.Second), regStart, regEnd)
	assert.False(t, decision.Open)
}

func TestStatusNoGraceBuffer(t *testing.T) {
	t.Parallel()

	regStart := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	regEnd := time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC)

	// A client 12 hours ahead of the close must see the window as ended,
	// not stretched by a timezone allowance.
	decision := Status(regEnd.Add(12*time.Hour), regStart, regEnd)
	assert.False(t, decision.Open)
	assert.Equal(t, "registration period has ended", decision.Message)

	decision = Status(regStart.Add(-12*time.Hour), regStart, regEnd)
	assert.False(t, decision.Open)
}

func TestVerifySkew(t *testing.T) {
	t.Parallel()

	base := time.Date(2025, 1, 15, 12, 0, 0, 0, time.UTC)

	testCases := []struct {
		name      string
		serverNow time.Time
		localNow  time.Time
		tolerance time.Duration
		wantErr   bool
	}{
		{
			name:      "Clocks agree",
			serverNow: base,
			localNow:  base,
			tolerance: DefaultSkewTolerance,
			wantErr:   false,
		},
		{
			name:      "Within tolerance",
			serverNow: base,
			localNow:  base.Add(3 * time.Second),
			tolerance: DefaultSkewTolerance,
			wantErr:   false,
		},
		{
			name:      "Local clock ahead",
			serverNow: base,
			localNow:  base.Add(time.Minute),
			tolerance: DefaultSkewTolerance,
			wantErr:   true,
		},
		{
			name:      "Local clock behind",
			serverNow: base,
			localNow:  base.Add(-time.Minute),
			tolerance: DefaultSkewTolerance,
			wantErr:   true,
		},
		{
			name:      "Zero tolerance falls back to default",
			serverNow: base,
			localNow:  base.Add(2 * time.Second),
			tolerance: 0,
			wantErr:   false,
		},
		{
			name:      "Custom tolerance",
			serverNow: base,
			localNow:  base.Add(30 * time.Second),
			tolerance: time.Minute,
			wantErr:   false,
		},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			err := VerifySkew(tc.serverNow, tc.localNow, tc.tolerance)

			if !tc.wantErr {
				assert.NoError(t, err)
				return
			}

			var skewErr *ClockSkewError
			require.True(t, errors.As(err, &skewErr))
			assert.Equal(t, time.Minute, skewErr.Skew)
			assert.Contains(t, err.Error(), "fix the local clock configuration")
		})
	}
}
