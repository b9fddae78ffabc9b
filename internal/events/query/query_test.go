package query

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"communityPulse/internal/models"
)

func day(d int) time.Time {
	return time.Date(2025, 7, d, 10, 0, 0, 0, time.UTC)
}

func fixtures() []models.Event {
	return []models.Event{
		{
			ID:             1,
			Title:          "Riverside Garage Sale",
			Description:    "Furniture and books",
			Location:       "Riverside Park",
			Category:       models.CategoryGarageSale,
			StartDate:      day(5),
			AttendeesCount: 4,
			Organizer:      models.User{ClerkID: "org_alice"},
		},
		{
			ID:             2,
			Title:          "amateur football cup",
			Description:    "Five-a-side tournament",
			Location:       "Community Stadium",
			Category:       models.CategorySportsMatch,
			StartDate:      day(2),
			AttendeesCount: 40,
			Organizer:      models.User{ClerkID: "org_bob"},
		},
		{
			ID:             3,
			Title:          "Pottery Class",
			Description:    "Beginner friendly",
			Location:       "Arts Center",
			Category:       models.CategoryCommunityClass,
			StartDate:      day(9),
			AttendeesCount: 12,
			Organizer:      models.User{ClerkID: "org_alice"},
		},
		{
			ID:             4,
			Title:          "Summer Festival",
			Description:    "Food stalls and live music near the stadium",
			Location:       "Main Square",
			Category:       models.CategoryFestival,
			StartDate:      day(2),
			AttendeesCount: 40,
			Organizer:      models.User{ClerkID: "org_carol"},
		},
	}
}

func ids(events []models.Event) []int {
	out := make([]int, 0, len(events))
	for _, e := range events {
		out = append(out, e.ID)
	}

	return out
}

func TestApply(t *testing.T) {
	t.Parallel()

	from := day(3)
	to := time.Date(2025, 7, 9, 0, 0, 0, 0, time.UTC)

	testCases := []struct {
		name        string
		filters     Filters
		expectedIDs []int
	}{
		{
			name:        "No filters keeps input order",
			filters:     Filters{},
			expectedIDs: []int{1, 2, 3, 4},
		},
		{
			name: "Single category",
			filters: Filters{
				Categories: []models.Category{models.CategorySportsMatch},
			},
			expectedIDs: []int{2},
		},
		{
			name: "Multiple categories",
			filters: Filters{
				Categories: []models.Category{models.CategoryGarageSale, models.CategoryFestival},
			},
			expectedIDs: []int{1, 4},
		},
		{
			name:        "Mine filter",
			filters:     Filters{MineClerkID: "org_alice"},
			expectedIDs: []int{1, 3},
		},
		{
			name:        "Nearby set",
			filters:     Filters{NearbyIDs: map[int]bool{2: true, 4: true}},
			expectedIDs: []int{2, 4},
		},
		{
			name:        "Empty nearby set matches nothing",
			filters:     Filters{NearbyIDs: map[int]bool{}},
			expectedIDs: []int{},
		},
		{
			name:        "From bound is inclusive of later days",
			filters:     Filters{From: &from},
			expectedIDs: []int{1, 3},
		},
		{
			name:        "To bound covers the whole day",
			filters:     Filters{To: &to},
			expectedIDs: []int{1, 2, 3, 4},
		},
		{
			name:        "Search is case-insensitive across fields",
			filters:     Filters{Search: "STADIUM"},
			expectedIDs: []int{2, 4},
		},
		{
			name:        "Search matches category",
			filters:     Filters{Search: "garage"},
			expectedIDs: []int{1},
		},
		{
			name:        "Sort by date ascending",
			filters:     Filters{Sort: SortDateAsc},
			expectedIDs: []int{2, 4, 1, 3},
		},
		{
			name:        "Sort by date descending is stable on ties",
			filters:     Filters{Sort: SortDateDesc},
			expectedIDs: []int{3, 1, 2, 4},
		},
		{
			name:        "Sort by title ignores case",
			filters:     Filters{Sort: SortTitleAsc},
			expectedIDs: []int{2, 3, 1, 4},
		},
		{
			name:        "Sort by popularity is stable on ties",
			filters:     Filters{Sort: SortPopularity},
			expectedIDs: []int{2, 4, 3, 1},
		},
		{
			name: "Filters compose conjunctively",
			filters: Filters{
				Categories: []models.Category{models.CategorySportsMatch, models.CategoryFestival},
				Search:     "stadium",
				NearbyIDs:  map[int]bool{4: true},
			},
			expectedIDs: []int{4},
		},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			got := Apply(fixtures(), tc.filters)

			assert.Equal(t, tc.expectedIDs, ids(got))
		})
	}
}

func TestApplyIsIdempotent(t *testing.T) {
	t.Parallel()

	f := Filters{
		Categories: []models.Category{models.CategorySportsMatch, models.CategoryFestival},
		Sort:       SortTitleAsc,
	}

	once := Apply(fixtures(), f)
	twice := Apply(once, f)

	assert.Equal(t, once, twice)
}

func TestApplyDoesNotMutateInput(t *testing.T) {
	t.Parallel()

	input := fixtures()
	original := ids(input)

	_ = Apply(input, Filters{Sort: SortDateAsc})

	assert.Equal(t, original, ids(input))
}

func TestEndOfDayBound(t *testing.T) {
	t.Parallel()

	to := time.Date(2025, 7, 5, 0, 0, 0, 0, time.UTC)

	// Event 1 starts at 10:00 on July 5; a date-only To of July 5 must keep it.
	got := Apply(fixtures(), Filters{To: &to})
	require.Contains(t, ids(got), 1)

	dayBefore := to.AddDate(0, 0, -1)
	got = Apply(fixtures(), Filters{To: &dayBefore})
	assert.NotContains(t, ids(got), 1)
}
