package domain

import (
	"sort"
	"strings"

	"github.com/dishaagrawalcodes/eventmappr/internal/event/geo"
)

// Matches reports whether e satisfies every constraint of f. Stores that
// cannot express a filter natively use it to filter in process.
func (f ListFilter) Matches(e *Event) bool {
	if len(f.Categories) > 0 {
		found := false
		for _, c := range f.Categories {
			if e.Category == c {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}

	if q := strings.ToLower(strings.TrimSpace(f.Query)); q != "" {
		haystack := strings.ToLower(strings.Join([]string{
			e.Title, e.Description, string(e.Category), e.Location.Address,
		}, "\n"))
		if !strings.Contains(haystack, q) {
			return false
		}
	}

	if f.Near != nil && geo.DistanceKm(*f.Near, e.Location.Point()) > f.RadiusKm {
		return false
	}

	return true
}

// Sort orders events by distance from f.Near when set, otherwise by date and
// then creation time.
func (f ListFilter) Sort(events []*Event) {
	if f.Near != nil {
		center := *f.Near
		sort.SliceStable(events, func(i, j int) bool {
			return geo.DistanceKm(center, events[i].Location.Point()) < geo.DistanceKm(center, events[j].Location.Point())
		})
		return
	}
	sort.SliceStable(events, func(i, j int) bool {
		if !events[i].Date.Equal(events[j].Date) {
			return events[i].Date.Before(events[j].Date)
		}
		return events[i].CreatedAt.Before(events[j].CreatedAt)
	})
}

// Truncate applies f.Limit.
func (f ListFilter) Truncate(events []*Event) []*Event {
	if f.Limit > 0 && len(events) > f.Limit {
		return events[:f.Limit]
	}
	return events
}
