package mongo

import (
	"context"
	"regexp"
	"strings"
	"time"

	"github.com/dishaagrawalcodes/eventmappr/internal/event/domain"
	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

const EventsCollection = "events"

var _ domain.EventRepository = (*EventRepository)(nil)

// geoPoint is a GeoJSON point; coordinates are [longitude, latitude].
type geoPoint struct {
	Type        string    `bson:"type"`
	Coordinates []float64 `bson:"coordinates"`
}

type eventDocument struct {
	ID          string    `bson:"_id"`
	Title       string    `bson:"title"`
	Description string    `bson:"description"`
	Date        time.Time `bson:"date"`
	Time        string    `bson:"time"`
	Location    geoPoint  `bson:"location"`
	Address     string    `bson:"address"`
	Category    string    `bson:"category"`
	CreatedBy   string    `bson:"createdBy"`
	CreatedAt   time.Time `bson:"createdAt"`
	UpdatedAt   time.Time `bson:"updatedAt"`
}

type EventRepository struct {
	coll *mongo.Collection
}

func NewEventRepository(db *mongo.Database) *EventRepository {
	return &EventRepository{coll: db.Collection(EventsCollection)}
}

// EnsureIndexes creates the 2dsphere index nearby search depends on.
func (r *EventRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "location", Value: "2dsphere"}}},
		{Keys: bson.D{{Key: "date", Value: 1}, {Key: "createdAt", Value: 1}}},
		{Keys: bson.D{{Key: "category", Value: 1}}},
	})
	if err != nil {
		return errors.Wrap(err, "failed to create event indexes")
	}
	return nil
}

func (r *EventRepository) Create(ctx context.Context, e *domain.Event) error {
	if _, err := r.coll.InsertOne(ctx, toDocument(e)); err != nil {
		return errors.Wrap(err, "failed to create event")
	}
	return nil
}

func (r *EventRepository) FindByID(ctx context.Context, id string) (*domain.Event, error) {
	var doc eventDocument
	if err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, errors.Wrap(err, "failed to find event")
	}
	return doc.toDomain(), nil
}

// List lets the server order nearby results by distance. The exact radius
// is re-checked in process so every store agrees on the boundary.
func (r *EventRepository) List(ctx context.Context, filter domain.ListFilter) ([]*domain.Event, error) {
	cur, err := r.coll.Find(ctx, listFilter(filter), findOptions(filter))
	if err != nil {
		return nil, errors.Wrap(err, "failed to list events")
	}

	var docs []eventDocument
	if err := cur.All(ctx, &docs); err != nil {
		return nil, errors.Wrap(err, "failed to decode events")
	}

	events := make([]*domain.Event, 0, len(docs))
	for _, doc := range docs {
		e := doc.toDomain()
		if filter.Near != nil && !filter.Matches(e) {
			continue
		}
		events = append(events, e)
	}
	return events, nil
}

func (r *EventRepository) Delete(ctx context.Context, id string) (bool, error) {
	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return false, errors.Wrap(err, "failed to delete event")
	}
	return res.DeletedCount > 0, nil
}

func listFilter(f domain.ListFilter) bson.D {
	filter := bson.D{}

	if len(f.Categories) > 0 {
		categories := make([]string, 0, len(f.Categories))
		for _, c := range f.Categories {
			categories = append(categories, string(c))
		}
		filter = append(filter, bson.E{Key: "category", Value: bson.M{"$in": categories}})
	}

	if q := strings.TrimSpace(f.Query); q != "" {
		pattern := bson.Regex{Pattern: regexp.QuoteMeta(q), Options: "i"}
		filter = append(filter, bson.E{Key: "$or", Value: bson.A{
			bson.M{"title": pattern},
			bson.M{"description": pattern},
			bson.M{"category": pattern},
			bson.M{"address": pattern},
		}})
	}

	if f.Near != nil {
		filter = append(filter, bson.E{Key: "location", Value: bson.M{
			"$nearSphere": bson.M{
				"$geometry":    geoPoint{Type: "Point", Coordinates: []float64{f.Near.Lng, f.Near.Lat}},
				"$maxDistance": f.RadiusKm * 1000,
			},
		}})
	}

	return filter
}

// findOptions sorts by date unless $nearSphere already orders by distance.
func findOptions(f domain.ListFilter) *options.FindOptionsBuilder {
	opts := options.Find()
	if f.Near == nil {
		opts.SetSort(bson.D{{Key: "date", Value: 1}, {Key: "createdAt", Value: 1}})
	}
	if f.Limit > 0 {
		opts.SetLimit(int64(f.Limit))
	}
	return opts
}

func toDocument(e *domain.Event) eventDocument {
	return eventDocument{
		ID:          e.ID,
		Title:       e.Title,
		Description: e.Description,
		Date:        e.Date,
		Time:        e.Time,
		Location: geoPoint{
			Type:        "Point",
			Coordinates: []float64{e.Location.Longitude, e.Location.Latitude},
		},
		Address:   e.Location.Address,
		Category:  string(e.Category),
		CreatedBy: e.CreatedBy,
		CreatedAt: e.CreatedAt,
		UpdatedAt: e.UpdatedAt,
	}
}

func (d eventDocument) toDomain() *domain.Event {
	e := &domain.Event{
		ID:          d.ID,
		Title:       d.Title,
		Description: d.Description,
		Date:        d.Date,
		Time:        d.Time,
		Location:    domain.Location{Address: d.Address},
		Category:    domain.Category(d.Category),
		CreatedBy:   d.CreatedBy,
		CreatedAt:   d.CreatedAt,
		UpdatedAt:   d.UpdatedAt,
	}
	if len(d.Location.Coordinates) == 2 {
		e.Location.Longitude = d.Location.Coordinates[0]
		e.Location.Latitude = d.Location.Coordinates[1]
	}
	return e
}
