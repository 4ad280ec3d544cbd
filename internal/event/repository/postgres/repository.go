package postgres

import (
	"context"
	"strconv"
	"strings"

	"github.com/dishaagrawalcodes/eventmappr/db"
	"github.com/dishaagrawalcodes/eventmappr/internal/event/domain"
	"github.com/dishaagrawalcodes/eventmappr/internal/event/geo"
	"github.com/jackc/pgx/v5"
	"github.com/pkg/errors"
)

var _ domain.EventRepository = (*EventRepository)(nil)

type EventRepository struct {
	db db.DBTX
}

func NewEventRepository(conn db.DBTX) *EventRepository {
	return &EventRepository{db: conn}
}

const eventColumns = `id, title, description, event_date, event_time, longitude, latitude, address, category, created_by, created_at, updated_at`

func (r *EventRepository) Create(ctx context.Context, e *domain.Event) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO events (`+eventColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`, e.ID, e.Title, e.Description, e.Date, e.Time, e.Location.Longitude, e.Location.Latitude,
		e.Location.Address, string(e.Category), e.CreatedBy, e.CreatedAt, e.UpdatedAt)
	if err != nil {
		return errors.Wrap(err, "failed to create event")
	}
	return nil
}

func (r *EventRepository) FindByID(ctx context.Context, id string) (*domain.Event, error) {
	query := `
		SELECT ` + eventColumns + `
		FROM events
		WHERE id = $1;
	`
	event, err := scanEvent(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, errors.Wrap(err, "failed to get event by id")
	}
	return event, nil
}

// List narrows by category, text and bounding box in SQL. A nearby search
// then applies the exact radius, distance order and limit in process.
func (r *EventRepository) List(ctx context.Context, filter domain.ListFilter) ([]*domain.Event, error) {
	query, args := listQuery(filter)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list events")
	}
	defer rows.Close()

	events := make([]*domain.Event, 0)
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, errors.Wrap(err, "failed to scan event")
		}
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "failed to list events")
	}

	if filter.Near == nil {
		return events, nil
	}

	nearby := events[:0]
	for _, e := range events {
		if filter.Matches(e) {
			nearby = append(nearby, e)
		}
	}
	filter.Sort(nearby)
	return filter.Truncate(nearby), nil
}

func (r *EventRepository) Delete(ctx context.Context, id string) (bool, error) {
	tag, err := r.db.Exec(ctx, `DELETE FROM events WHERE id = $1`, id)
	if err != nil {
		return false, errors.Wrap(err, "failed to delete event")
	}
	return tag.RowsAffected() > 0, nil
}

func listQuery(filter domain.ListFilter) (string, []any) {
	var (
		where []string
		args  []any
	)
	param := func(v any) string {
		args = append(args, v)
		return "$" + strconv.Itoa(len(args))
	}

	if len(filter.Categories) > 0 {
		categories := make([]string, 0, len(filter.Categories))
		for _, c := range filter.Categories {
			categories = append(categories, string(c))
		}
		where = append(where, "category = ANY("+param(categories)+")")
	}

	if q := strings.TrimSpace(filter.Query); q != "" {
		p := param("%" + escapeLike(q) + "%")
		where = append(where, "(title ILIKE "+p+" OR description ILIKE "+p+" OR category ILIKE "+p+" OR address ILIKE "+p+")")
	}

	if filter.Near != nil {
		box := geo.BoundingBox(*filter.Near, filter.RadiusKm)
		where = append(where,
			"latitude BETWEEN "+param(box.MinLat)+" AND "+param(box.MaxLat),
			"longitude BETWEEN "+param(box.MinLng)+" AND "+param(box.MaxLng),
		)
	}

	var sb strings.Builder
	sb.WriteString("SELECT " + eventColumns + " FROM events")
	if len(where) > 0 {
		sb.WriteString(" WHERE " + strings.Join(where, " AND "))
	}
	sb.WriteString(" ORDER BY event_date, created_at")
	if filter.Near == nil && filter.Limit > 0 {
		sb.WriteString(" LIMIT " + param(filter.Limit))
	}
	return sb.String(), args
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}

func scanEvent(row pgx.Row) (*domain.Event, error) {
	var (
		e        domain.Event
		category string
	)
	err := row.Scan(
		&e.ID,
		&e.Title,
		&e.Description,
		&e.Date,
		&e.Time,
		&e.Location.Longitude,
		&e.Location.Latitude,
		&e.Location.Address,
		&category,
		&e.CreatedBy,
		&e.CreatedAt,
		&e.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	e.Category = domain.Category(category)
	return &e, nil
}
