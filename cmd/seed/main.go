package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/oklog/ulid/v2"

	"media-production-workflow/internal/application"
	"media-production-workflow/internal/config"
	"media-production-workflow/internal/domain/model"
	"media-production-workflow/internal/domain/ports/repository"
	"media-production-workflow/internal/infra/db/memory"
	"media-production-workflow/internal/infra/db/postgres"
	"media-production-workflow/internal/infra/logging"
)

const seedPartner = "partner-demo"

// seed populates an empty store with a demo partner: two customers, a
// small service catalog, and one scheduled job with a pending order.
// It is idempotent and refuses to touch a store that already has data.
func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	logger := logging.New(cfg.Log, cfg.Runtime.Dev)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	var store repository.Store
	switch cfg.Storage.Backend {
	case "postgres":
		pool, err := postgres.Connect(ctx, cfg.Database.URL)
		if err != nil {
			logger.Fatal().Err(err).Msg("postgres connect")
		}
		defer pool.Close()
		if err := postgres.EnsureSchema(ctx, pool); err != nil {
			logger.Fatal().Err(err).Msg("postgres schema")
		}
		store = postgres.NewStore(pool)
	case "memory":
		memStore, err := memory.Open(cfg.Storage.SnapshotPath, logger)
		if err != nil {
			logger.Fatal().Err(err).Msg("memory store open")
		}
		store = memStore.Repositories()
	default:
		logger.Fatal().Str("backend", cfg.Storage.Backend).Msg("unknown storage backend")
	}

	existing, err := store.Customers.List(ctx, repository.NoTX, seedPartner)
	if err != nil {
		logger.Fatal().Err(err).Msg("check existing data")
	}
	if len(existing) > 0 {
		logger.Info().Int("customers", len(existing)).Msg("store already seeded; nothing to do")
		return
	}

	customers := []*model.Customer{
		{ID: ulid.Make().String(), PartnerID: seedPartner, Name: "Harbor Realty", Email: "listings@harbor-realty.test"},
		{ID: ulid.Make().String(), PartnerID: seedPartner, Name: "Crestview Homes", Email: "media@crestview.test"},
	}
	for _, c := range customers {
		if err := store.Customers.Save(ctx, repository.NoTX, c); err != nil {
			logger.Fatal().Err(err).Str("customer", c.Name).Msg("seed customer")
		}
	}

	services := []*model.ServiceOffering{
		{ID: ulid.Make().String(), PartnerID: seedPartner, Name: "Photo Package", PriceCents: 24900},
		{ID: ulid.Make().String(), PartnerID: seedPartner, Name: "Drone Footage", PriceCents: 34900},
		{ID: ulid.Make().String(), PartnerID: seedPartner, Name: "Floor Plan", PriceCents: 14900},
	}
	for _, s := range services {
		if err := store.Services.Save(ctx, repository.NoTX, s); err != nil {
			logger.Fatal().Err(err).Str("service", s.Name).Msg("seed service")
		}
	}

	facade := application.Wire(store, nil, cfg.Allocator.ReservationTTL, logger)

	job, err := facade.CreateJob(ctx, seedPartner, &model.Job{
		CustomerID:  customers[0].ID,
		Address:     "12 Seaview Drive",
		Notes:       "Twilight shoot requested",
		ScheduledAt: time.Now().Add(48 * time.Hour),
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("seed job")
	}

	order, err := facade.CreateOrder(ctx, seedPartner, &model.Order{
		JobID:    job.ID,
		Services: []model.OrderServiceLine{{ServiceID: services[0].ID, Quantity: 1}},
	}, "")
	if err != nil {
		logger.Fatal().Err(err).Msg("seed order")
	}

	logger.Info().
		Str("partner", seedPartner).
		Str("job", job.PublicID).
		Str("order", order.OrderNumber).
		Msg("seed complete")
}
