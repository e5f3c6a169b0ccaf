package postgres

import (
	"context"
	_ "embed"

	"github.com/jackc/pgx/v4/pgxpool"

	"media-production-workflow/internal/domain/ports/repository"
)

//go:embed schema.sql
var schemaSQL string

// NewStore bundles the Postgres repositories over one pool.
func NewStore(pool *pgxpool.Pool) repository.Store {
	return repository.Store{
		Jobs:         NewPostgresJobRepo(pool),
		Orders:       NewPostgresOrderRepo(pool),
		Customers:    NewPostgresCustomerRepo(pool),
		Services:     NewPostgresServiceRepo(pool),
		Uploads:      NewPostgresUploadRepo(pool),
		Reservations: NewPostgresReservationRepo(pool),
		Counters:     NewPostgresCounterRepo(pool),
		Folders:      NewPostgresFolderRepo(pool),
		Audit:        NewPostgresAuditRepo(pool),
		TM:           NewTxManager(pool),
	}
}

// EnsureSchema applies the idempotent DDL. Every statement is
// CREATE ... IF NOT EXISTS, so running it on every boot is safe.
func EnsureSchema(ctx context.Context, pool *pgxpool.Pool) error {
	_, err := pool.Exec(ctx, schemaSQL)
	return err
}
