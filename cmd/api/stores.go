package main

import (
	"context"
	"fmt"

	"github.com/kicon/kiconapi/internal/config"
	"github.com/kicon/kiconapi/internal/db"
	"github.com/kicon/kiconapi/internal/http/handlers"
	"github.com/kicon/kiconapi/internal/observability"
	"github.com/kicon/kiconapi/internal/repo/memory"
	mongorepo "github.com/kicon/kiconapi/internal/repo/mongo"
	"github.com/kicon/kiconapi/internal/repo/postgres"
	"github.com/kicon/kiconapi/internal/service"
)

type stores struct {
	registrations service.RegistrationStore
	contacts      service.ContactStore
	payments      service.PaymentStore

	check handlers.Pinger
	close func()
}

func openStores(ctx context.Context, cfg config.Config, prom *observability.Prom) (stores, error) {
	switch cfg.StoreDriver {
	case "mongo":
		client, err := db.NewMongo(ctx, cfg.MongoURL)
		if err != nil {
			return stores{}, fmt.Errorf("connect mongo: %w", err)
		}

		database := client.Database(cfg.MongoDB)
		if err := db.EnsureIndexes(ctx, database); err != nil {
			_ = client.Disconnect(context.Background())
			return stores{}, fmt.Errorf("mongo indexes: %w", err)
		}

		return stores{
			registrations: mongorepo.NewRegistrationsRepo(database, prom),
			contacts:      mongorepo.NewContactsRepo(database, prom),
			payments:      mongorepo.NewPaymentsRepo(database, prom),
			check:         func(ctx context.Context) error { return client.Ping(ctx, nil) },
			close:         func() { _ = client.Disconnect(context.Background()) },
		}, nil

	case "postgres":
		pool, err := db.NewPool(ctx, cfg.DBURL)
		if err != nil {
			return stores{}, fmt.Errorf("connect postgres: %w", err)
		}

		if err := db.EnsureSchema(ctx, pool); err != nil {
			pool.Close()
			return stores{}, fmt.Errorf("postgres schema: %w", err)
		}

		return stores{
			registrations: postgres.NewRegistrationsRepo(pool, prom),
			contacts:      postgres.NewContactsRepo(pool, prom),
			payments:      postgres.NewPaymentsRepo(pool, prom),
			check:         pool.Ping,
			close:         pool.Close,
		}, nil

	case "memory":
		return stores{
			registrations: memory.NewRegistrationsRepo(),
			contacts:      memory.NewContactsRepo(),
			payments:      memory.NewPaymentsRepo(),
			check:         func(context.Context) error { return nil },
			close:         func() {},
		}, nil
	}

	return stores{}, fmt.Errorf("unknown STORE_DRIVER %q", cfg.StoreDriver)
}
