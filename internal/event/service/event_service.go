package service

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/dishaagrawalcodes/eventmappr/config"
	autherror "github.com/dishaagrawalcodes/eventmappr/internal/errors"
	"github.com/dishaagrawalcodes/eventmappr/internal/event/domain"
	"github.com/dishaagrawalcodes/eventmappr/internal/event/dto"
	"github.com/dishaagrawalcodes/eventmappr/internal/event/geo"
	"github.com/dishaagrawalcodes/eventmappr/internal/metrics"
	"github.com/oklog/ulid/v2"
	"github.com/rs/zerolog"
)

const (
	defaultRadiusKm  = 10
	defaultListLimit = 200
	maxRadiusKm      = 20000
)

type EventService struct {
	repo    domain.EventRepository
	cfg     *config.Config
	log     zerolog.Logger
	metrics *metrics.Metrics
}

type Option func(*EventService)

func WithLogger(log zerolog.Logger) Option {
	return func(s *EventService) { s.log = log }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *EventService) { s.metrics = m }
}

func NewEventService(repo domain.EventRepository, cfg *config.Config, opts ...Option) *EventService {
	s := &EventService{repo: repo, cfg: cfg, log: zerolog.Nop()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *EventService) Create(ctx context.Context, createdBy string, input dto.CreateEventInput) (*dto.EventOutput, error) {
	event, err := newEvent(createdBy, input)
	if err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, event); err != nil {
		return nil, autherror.Internal(err)
	}

	s.metrics.EventCreated()
	s.log.Info().Str("event_id", event.ID).Str("created_by", createdBy).Str("category", string(event.Category)).Msg("event created")
	return dto.NewEventOutput(event, nil), nil
}

func (s *EventService) Get(ctx context.Context, id string) (*dto.EventOutput, error) {
	event, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, autherror.Internal(err)
	}
	if event == nil {
		return nil, autherror.ErrEventNotFound
	}
	return dto.NewEventOutput(event, nil), nil
}

func (s *EventService) List(ctx context.Context, query dto.ListEventsQuery) ([]*dto.EventOutput, error) {
	filter, err := s.buildFilter(query)
	if err != nil {
		return nil, err
	}

	events, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, autherror.Internal(err)
	}
	return dto.NewEventOutputs(events, filter.Near), nil
}

// Delete removes an event. Only its creator may delete it.
func (s *EventService) Delete(ctx context.Context, principalID, id string) error {
	event, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return autherror.Internal(err)
	}
	if event == nil {
		return autherror.ErrEventNotFound
	}
	if event.CreatedBy != principalID {
		return autherror.ErrNotEventOwner
	}

	deleted, err := s.repo.Delete(ctx, id)
	if err != nil {
		return autherror.Internal(err)
	}
	if !deleted {
		return autherror.ErrEventNotFound
	}

	s.log.Info().Str("event_id", id).Str("deleted_by", principalID).Msg("event deleted")
	return nil
}

func newEvent(createdBy string, input dto.CreateEventInput) (*domain.Event, error) {
	title := strings.TrimSpace(input.Title)
	description := strings.TrimSpace(input.Description)

	switch {
	case title == "":
		return nil, badRequest("title is required")
	case utf8.RuneCountInString(title) > domain.MaxTitleLength:
		return nil, badRequest(fmt.Sprintf("title must be at most %d characters", domain.MaxTitleLength))
	case utf8.RuneCountInString(description) > domain.MaxDescriptionLength:
		return nil, badRequest(fmt.Sprintf("description must be at most %d characters", domain.MaxDescriptionLength))
	}

	date, err := parseDate(input.Date)
	if err != nil {
		return nil, err
	}

	if input.Location.Latitude == nil || input.Location.Longitude == nil {
		return nil, badRequest("location coordinates are required")
	}
	location := domain.Location{
		Longitude: *input.Location.Longitude,
		Latitude:  *input.Location.Latitude,
		Address:   strings.TrimSpace(input.Location.Address),
	}
	if !location.Point().Valid() {
		return nil, badRequest("location coordinates are out of range")
	}

	category := domain.CategoryOther
	if c := strings.TrimSpace(input.Category); c != "" {
		category, err = parseCategory(c)
		if err != nil {
			return nil, err
		}
	}

	now := time.Now().UTC()
	return &domain.Event{
		ID:          ulid.Make().String(),
		Title:       title,
		Description: description,
		Date:        date,
		Time:        strings.TrimSpace(input.Time),
		Location:    location,
		Category:    category,
		CreatedBy:   createdBy,
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

func (s *EventService) buildFilter(query dto.ListEventsQuery) (domain.ListFilter, error) {
	filter := domain.ListFilter{Query: strings.TrimSpace(query.Query)}

	for _, raw := range query.Categories {
		c, err := parseCategory(strings.TrimSpace(raw))
		if err != nil {
			return filter, err
		}
		filter.Categories = append(filter.Categories, c)
	}

	if (query.Lat == nil) != (query.Lng == nil) {
		return filter, badRequest("lat and lng must be given together")
	}
	if query.Lat != nil {
		center := geo.Point{Lat: *query.Lat, Lng: *query.Lng}
		if !center.Valid() {
			return filter, badRequest("lat or lng out of range")
		}
		filter.Near = &center
		filter.RadiusKm = s.defaultRadius()
		if query.RadiusKm != nil {
			filter.RadiusKm = *query.RadiusKm
		}
		if math.IsNaN(filter.RadiusKm) || filter.RadiusKm <= 0 || filter.RadiusKm > maxRadiusKm {
			return filter, badRequest(fmt.Sprintf("radiusKm must be between 0 and %d", maxRadiusKm))
		}
	}

	maxLimit := s.listLimit()
	switch {
	case query.Limit < 0:
		return filter, badRequest("limit must not be negative")
	case query.Limit == 0 || query.Limit > maxLimit:
		filter.Limit = maxLimit
	default:
		filter.Limit = query.Limit
	}

	return filter, nil
}

func (s *EventService) defaultRadius() float64 {
	if s.cfg != nil && s.cfg.NearbyDefaultRadiusKm > 0 {
		return s.cfg.NearbyDefaultRadiusKm
	}
	return defaultRadiusKm
}

func (s *EventService) listLimit() int {
	if s.cfg != nil && s.cfg.EventsListLimit > 0 {
		return s.cfg.EventsListLimit
	}
	return defaultListLimit
}

func parseDate(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, badRequest("date is required")
	}
	if d, err := time.Parse(time.DateOnly, raw); err == nil {
		return d.UTC(), nil
	}
	if d, err := time.Parse(time.RFC3339, raw); err == nil {
		return d.UTC(), nil
	}
	return time.Time{}, badRequest("date must be YYYY-MM-DD or RFC 3339")
}

func parseCategory(raw string) (domain.Category, error) {
	for _, c := range domain.Categories {
		if strings.EqualFold(raw, string(c)) {
			return c, nil
		}
	}
	return "", badRequest(fmt.Sprintf("unknown category %q", raw))
}

func badRequest(message string) *autherror.AppError {
	return autherror.New(autherror.KindBadRequest, message)
}
