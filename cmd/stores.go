package main

import (
	"context"
	"fmt"

	"github.com/dishaagrawalcodes/eventmappr/config"
	"github.com/dishaagrawalcodes/eventmappr/db"
	authdomain "github.com/dishaagrawalcodes/eventmappr/internal/auth/domain"
	authmemory "github.com/dishaagrawalcodes/eventmappr/internal/auth/repository/memory"
	authmongo "github.com/dishaagrawalcodes/eventmappr/internal/auth/repository/mongo"
	authpostgres "github.com/dishaagrawalcodes/eventmappr/internal/auth/repository/postgres"
	eventdomain "github.com/dishaagrawalcodes/eventmappr/internal/event/domain"
	eventmemory "github.com/dishaagrawalcodes/eventmappr/internal/event/repository/memory"
	eventmongo "github.com/dishaagrawalcodes/eventmappr/internal/event/repository/mongo"
	eventpostgres "github.com/dishaagrawalcodes/eventmappr/internal/event/repository/postgres"
	"github.com/rs/zerolog"
)

type stores struct {
	users  authdomain.UserRepository
	events eventdomain.EventRepository
	close  func()
}

// openStores connects the backend named by STORE_DRIVER and prepares its
// schema or indexes.
func openStores(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*stores, error) {
	switch cfg.StoreDriver {
	case config.DriverPostgres:
		pool, err := db.NewPostgresPool(ctx, cfg.DBURL, cfg.DBMaxConns)
		if err != nil {
			return nil, err
		}
		if cfg.RunMigrations {
			if err := db.RunMigrations(ctx, pool); err != nil {
				pool.Close()
				return nil, err
			}
			log.Info().Msg("migrations applied")
		}
		return &stores{
			users:  authpostgres.NewPostgresRepository(pool),
			events: eventpostgres.NewEventRepository(pool),
			close:  pool.Close,
		}, nil

	case config.DriverMongo:
		client, err := db.NewMongoClient(ctx, cfg.DBURL)
		if err != nil {
			return nil, err
		}
		disconnect := func() {
			if err := client.Disconnect(context.Background()); err != nil {
				log.Warn().Err(err).Msg("mongo disconnect failed")
			}
		}

		database := client.Database(cfg.MongoDatabase)
		users := authmongo.NewUserRepository(database)
		events := eventmongo.NewEventRepository(database)
		if err := users.EnsureIndexes(ctx); err != nil {
			disconnect()
			return nil, err
		}
		if err := events.EnsureIndexes(ctx); err != nil {
			disconnect()
			return nil, err
		}
		return &stores{users: users, events: events, close: disconnect}, nil

	case config.DriverMemory:
		log.Warn().Msg("using in-memory store; data is lost on restart")
		return &stores{
			users:  authmemory.NewUserRepository(),
			events: eventmemory.NewEventRepository(),
			close:  func() {},
		}, nil

	default:
		return nil, fmt.Errorf("unsupported store driver %q", cfg.StoreDriver)
	}
}
