package domain

import (
	"time"

	"github.com/dishaagrawalcodes/eventmappr/internal/event/geo"
)

type Category string

const (
	CategoryMusic    Category = "Music"
	CategorySports   Category = "Sports"
	CategoryMeetup   Category = "Meetup"
	CategoryWorkshop Category = "Workshop"
	CategoryFestival Category = "Festival"
	CategoryOther    Category = "Other"
)

var Categories = []Category{
	CategoryMusic,
	CategorySports,
	CategoryMeetup,
	CategoryWorkshop,
	CategoryFestival,
	CategoryOther,
}

func (c Category) Valid() bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

const (
	MaxTitleLength       = 100
	MaxDescriptionLength = 1000
)

type Location struct {
	Longitude float64
	Latitude  float64
	Address   string
}

func (l Location) Point() geo.Point {
	return geo.Point{Lat: l.Latitude, Lng: l.Longitude}
}

// Event is a pin on the map. Time is free-form text as entered by the
// creator ("7 PM", "19:00-22:00").
type Event struct {
	ID          string
	Title       string
	Description string
	Date        time.Time
	Time        string
	Location    Location
	Category    Category
	CreatedBy   string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// ListFilter narrows a listing. Zero values mean no constraint. When Near is
// set, results are limited to RadiusKm and ordered by distance; otherwise
// they are ordered by date.
type ListFilter struct {
	Categories []Category
	Query      string
	Near       *geo.Point
	RadiusKm   float64
	Limit      int
}
