package memory

import (
	"context"
	"sync"

	"github.com/dishaagrawalcodes/eventmappr/internal/event/domain"
)

var _ domain.EventRepository = (*EventRepository)(nil)

// EventRepository keeps events in process memory and filters them with
// domain.ListFilter.
type EventRepository struct {
	events map[string]*domain.Event
	lock   sync.RWMutex
}

func NewEventRepository() *EventRepository {
	return &EventRepository{events: make(map[string]*domain.Event)}
}

func (r *EventRepository) Create(_ context.Context, event *domain.Event) error {
	r.lock.Lock()
	defer r.lock.Unlock()

	c := *event
	r.events[event.ID] = &c
	return nil
}

func (r *EventRepository) FindByID(_ context.Context, id string) (*domain.Event, error) {
	r.lock.RLock()
	defer r.lock.RUnlock()

	e, ok := r.events[id]
	if !ok {
		return nil, nil
	}
	c := *e
	return &c, nil
}

func (r *EventRepository) List(_ context.Context, filter domain.ListFilter) ([]*domain.Event, error) {
	r.lock.RLock()
	out := make([]*domain.Event, 0, len(r.events))
	for _, e := range r.events {
		if filter.Matches(e) {
			c := *e
			out = append(out, &c)
		}
	}
	r.lock.RUnlock()

	filter.Sort(out)
	return filter.Truncate(out), nil
}

func (r *EventRepository) Delete(_ context.Context, id string) (bool, error) {
	r.lock.Lock()
	defer r.lock.Unlock()

	if _, ok := r.events[id]; !ok {
		return false, nil
	}
	delete(r.events, id)
	return true, nil
}
