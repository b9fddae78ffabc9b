package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func validEvent() Event {
	return Event{
		Title:             "Pottery Class",
		Category:          CategoryCommunityClass,
		Type:              EventTypeFree,
		StartDate:         time.Date(2025, 7, 10, 10, 0, 0, 0, time.UTC),
		EndDate:           time.Date(2025, 7, 10, 12, 0, 0, 0, time.UTC),
		RegistrationStart: time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC),
		RegistrationEnd:   time.Date(2025, 7, 9, 0, 0, 0, 0, time.UTC),
	}
}

func TestEventValidate(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name     string
		mutate   func(e *Event)
		expected error
	}{
		{
			name:     "Valid event",
			mutate:   func(e *Event) {},
			expected: nil,
		},
		{
			name:     "Unknown category",
			mutate:   func(e *Event) { e.Category = "Yard Sale" },
			expected: ErrBadCategory,
		},
		{
			name:     "Event ends before it starts",
			mutate:   func(e *Event) { e.EndDate = e.StartDate.Add(-time.Hour) },
			expected: ErrBadEventWindow,
		},
		{
			name:     "Zero-length event",
			mutate:   func(e *Event) { e.EndDate = e.StartDate },
			expected: ErrBadEventWindow,
		},
		{
			name:     "Registration closes before it opens",
			mutate:   func(e *Event) { e.RegistrationEnd = e.RegistrationStart.Add(-time.Hour) },
			expected: ErrBadRegWindow,
		},
		{
			name:     "Registration opens at event start",
			mutate:   func(e *Event) { e.RegistrationStart = e.StartDate; e.RegistrationEnd = e.StartDate.Add(time.Hour) },
			expected: ErrRegAfterStart,
		},
		{
			name:     "Registration closes after event start",
			mutate:   func(e *Event) { e.RegistrationEnd = e.StartDate.Add(time.Hour) },
			expected: ErrRegAfterStart,
		},
		{
			name:     "Registration closes exactly at event start",
			mutate:   func(e *Event) { e.RegistrationEnd = e.StartDate },
			expected: nil,
		},
		{
			name:     "Negative price",
			mutate:   func(e *Event) { e.Type = EventTypePaid; e.Price = -5 },
			expected: ErrNegativePrice,
		},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			e := validEvent()
			tc.mutate(&e)

			err := e.Validate()

			if tc.expected == nil {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tc.expected)
			}
		})
	}
}

func TestEventIsFree(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name     string
		typ      string
		price    float64
		expected bool
	}{
		{"Free type", EventTypeFree, 0, true},
		{"Free type ignores stray price", EventTypeFree, 100, true},
		{"Paid with price", EventTypePaid, 250, false},
		{"Paid with zero price", EventTypePaid, 0, true},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			e := Event{Type: tc.typ, Price: tc.price}

			assert.Equal(t, tc.expected, e.IsFree())
		})
	}
}

func TestCategoryValid(t *testing.T) {
	t.Parallel()

	for _, c := range Categories() {
		assert.True(t, c.Valid(), "category %q", c)
	}

	assert.False(t, Category("").Valid())
	assert.False(t, Category("garage sale").Valid(), "category match is case-sensitive")
}
