// Package query filters and orders in-memory event lists the way the home
// page does: filters compose conjunctively, sorting happens after filtering
// and is stable, so re-applying the same configuration is a no-op.
package query

import (
	"sort"
	"strings"
	"time"

	"communityPulse/internal/models"
)

type SortKey string

const (
	SortDateAsc    SortKey = "date_asc"
	SortDateDesc   SortKey = "date_desc"
	SortTitleAsc   SortKey = "title_asc"
	SortTitleDesc  SortKey = "title_desc"
	SortPopularity SortKey = "popularity"
)

type Filters struct {
	// Categories selects events whose category is in the set; empty means
	// no category filtering.
	Categories []models.Category

	// MineClerkID keeps only events organized by the given clerk subject.
	MineClerkID string

	// NearbyIDs keeps only events whose id is in the precomputed nearby set.
	// A nil map disables the filter; an empty non-nil map matches nothing.
	NearbyIDs map[int]bool

	// From/To bound the event start date, inclusive. To is rounded up to the
	// end of its day so a date-only bound covers the whole day.
	From *time.Time
	To   *time.Time

	// Search is a case-insensitive substring match across title, description,
	// location and category. Empty means no search filtering.
	Search string

	Sort SortKey
}

// Apply returns the filtered, ordered subset of events. The input slice is
// never mutated.
func Apply(events []models.Event, f Filters) []models.Event {
	out := make([]models.Event, 0, len(events))

	for _, e := range events {
		if matches(e, f) {
			out = append(out, e)
		}
	}

	sortEvents(out, f.Sort)

	return out
}

func matches(e models.Event, f Filters) bool {
	if len(f.Categories) > 0 && !containsCategory(f.Categories, e.Category) {
		return false
	}

	if f.MineClerkID != "" && e.Organizer.ClerkID != f.MineClerkID {
		return false
	}

	if f.NearbyIDs != nil && !f.NearbyIDs[e.ID] {
		return false
	}

	if f.From != nil && e.StartDate.Before(f.From.UTC()) {
		return false
	}

	if f.To != nil && e.StartDate.After(endOfDay(*f.To)) {
		return false
	}

	if f.Search != "" && !matchesSearch(e, f.Search) {
		return false
	}

	return true
}

func containsCategory(set []models.Category, c models.Category) bool {
	for _, s := range set {
		if s == c {
			return true
		}
	}

	return false
}

func endOfDay(t time.Time) time.Time {
	t = t.UTC()

	return time.Date(t.Year(), t.Month(), t.Day(), 23, 59, 59, int(time.Second-time.Nanosecond), time.UTC)
}

func matchesSearch(e models.Event, q string) bool {
	q = strings.ToLower(q)

	for _, field := range []string{e.Title, e.Description, e.Location, string(e.Category)} {
		if strings.Contains(strings.ToLower(field), q) {
			return true
		}
	}

	return false
}

func sortEvents(events []models.Event, key SortKey) {
	switch key {
	case SortDateAsc:
		sort.SliceStable(events, func(i, j int) bool {
			return events[i].StartDate.Before(events[j].StartDate)
		})
	case SortDateDesc:
		sort.SliceStable(events, func(i, j int) bool {
			return events[i].StartDate.After(events[j].StartDate)
		})
	case SortTitleAsc:
		sort.SliceStable(events, func(i, j int) bool {
			return strings.ToLower(events[i].Title) < strings.ToLower(events[j].Title)
		})
	case SortTitleDesc:
		sort.SliceStable(events, func(i, j int) bool {
			return strings.ToLower(events[i].Title) > strings.ToLower(events[j].Title)
		})
	case SortPopularity:
		sort.SliceStable(events, func(i, j int) bool {
			return events[i].AttendeesCount > events[j].AttendeesCount
		})
	}
}
