package repository

import "context"

// CounterName identifies a named monotonic counter.
const CounterOrderNumber = "order_number"

// CounterRepository hands out strictly increasing values. Next must be
// atomic with respect to concurrent callers: no two callers may observe
// the same value, and the counter never moves backward. The Postgres
// implementation uses a single-statement atomic increment; the in-memory
// implementation holds the store's critical section, which is only safe
// within one process.
type CounterRepository interface {
	Next(ctx context.Context, tx Tx, name string) (int64, error)
	// Current reads without incrementing; 0 if the counter was never used.
	Current(ctx context.Context, tx Tx, name string) (int64, error)
}
