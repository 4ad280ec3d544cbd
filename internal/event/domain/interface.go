package domain

//go:generate mockgen -destination=../../mocks/mock_event_repository.go -package=mocks github.com/dishaagrawalcodes/eventmappr/internal/event/domain EventRepository

import "context"

// EventRepository stores events. FindByID returns (nil, nil) when no event
// matches.
type EventRepository interface {
	Create(ctx context.Context, event *Event) error
	FindByID(ctx context.Context, id string) (*Event, error)
	List(ctx context.Context, filter ListFilter) ([]*Event, error)
	// Delete reports whether an event was removed.
	Delete(ctx context.Context, id string) (bool, error)
}
