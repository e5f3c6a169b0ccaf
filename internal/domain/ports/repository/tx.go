package repository

import (
	"context"

	"github.com/jackc/pgx/v4"
)

type Tx interface{}

// NoTX marks the non-transactional path explicitly at call sites.
var NoTX Tx

// TransactionManager executes a function inside a storage transaction,
// passing the backend-defined transaction handle via tx.
//
// The concrete type of tx is infra-defined (pgx.Tx for Postgres; the
// in-memory backend passes nil and serializes transactions behind a
// process-wide critical section). Repositories must gracefully accept a
// nil tx and fall back to their non-transactional path.
//
// Keep this interface small and stable.
type TransactionManager interface {
	WithTx(ctx context.Context, txOpt pgx.TxOptions, fn func(ctx context.Context, tx Tx) error) error
}
