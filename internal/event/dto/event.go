package dto

import (
	"time"

	"github.com/dishaagrawalcodes/eventmappr/internal/event/domain"
	"github.com/dishaagrawalcodes/eventmappr/internal/event/geo"
)

type LocationInput struct {
	Longitude *float64 `json:"longitude"`
	Latitude  *float64 `json:"latitude"`
	Address   string   `json:"address"`
}

// CreateEventInput carries the date as text; both 2006-01-02 and RFC 3339 are
// accepted.
type CreateEventInput struct {
	Title       string        `json:"title"`
	Description string        `json:"description"`
	Date        string        `json:"date"`
	Time        string        `json:"time"`
	Location    LocationInput `json:"location"`
	Category    string        `json:"category"`
}

type ListEventsQuery struct {
	Categories []string
	Query      string
	Lat        *float64
	Lng        *float64
	RadiusKm   *float64
	Limit      int
}

type LocationOutput struct {
	Longitude float64 `json:"longitude"`
	Latitude  float64 `json:"latitude"`
	Address   string  `json:"address"`
}

type EventOutput struct {
	ID          string         `json:"id"`
	Title       string         `json:"title"`
	Description string         `json:"description"`
	Date        time.Time      `json:"date"`
	Time        string         `json:"time"`
	Location    LocationOutput `json:"location"`
	Category    string         `json:"category"`
	CreatedBy   string         `json:"createdBy"`
	CreatedAt   time.Time      `json:"createdAt"`
	UpdatedAt   time.Time      `json:"updatedAt"`
	DistanceKm  *float64       `json:"distanceKm,omitempty"`
}

// NewEventOutput projects e; when from is set the distance to it is included.
func NewEventOutput(e *domain.Event, from *geo.Point) *EventOutput {
	out := &EventOutput{
		ID:          e.ID,
		Title:       e.Title,
		Description: e.Description,
		Date:        e.Date,
		Time:        e.Time,
		Location: LocationOutput{
			Longitude: e.Location.Longitude,
			Latitude:  e.Location.Latitude,
			Address:   e.Location.Address,
		},
		Category:  string(e.Category),
		CreatedBy: e.CreatedBy,
		CreatedAt: e.CreatedAt,
		UpdatedAt: e.UpdatedAt,
	}
	if from != nil {
		d := geo.DistanceKm(*from, e.Location.Point())
		out.DistanceKm = &d
	}
	return out
}

func NewEventOutputs(events []*domain.Event, from *geo.Point) []*EventOutput {
	out := make([]*EventOutput, 0, len(events))
	for _, e := range events {
		out = append(out, NewEventOutput(e, from))
	}
	return out
}
