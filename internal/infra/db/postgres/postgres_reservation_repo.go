package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"media-production-workflow/internal/domain"
	"media-production-workflow/internal/domain/model"
	"media-production-workflow/internal/domain/ports/repository"
)

var (
	_ repository.ReservationRepository = (*PostgresReservationRepo)(nil)
	_ repository.CounterRepository     = (*PostgresCounterRepo)(nil)
)

type PostgresReservationRepo struct {
	pool *pgxpool.Pool
}

func NewPostgresReservationRepo(pool *pgxpool.Pool) *PostgresReservationRepo {
	return &PostgresReservationRepo{pool: pool}
}

func (r *PostgresReservationRepo) Save(ctx context.Context, tx repository.Tx, res *model.OrderReservation) error {
	const q = `
INSERT INTO order_reservations (order_number, user_id, job_id, reserved_at, expires_at, status)
VALUES ($1,$2,$3,$4,$5,$6)
ON CONFLICT (order_number) DO UPDATE SET
  user_id=$2, job_id=$3, reserved_at=$4, expires_at=$5, status=$6;
`
	_, err := execSQL(ctx, r.pool, tx, q,
		res.OrderNumber, res.UserID, res.JobID, res.ReservedAt, res.ExpiresAt, res.Status,
	)
	return err
}

func (r *PostgresReservationRepo) FindByNumber(ctx context.Context, tx repository.Tx, orderNumber string) (*model.OrderReservation, error) {
	const q = `
SELECT order_number, user_id, job_id, reserved_at, expires_at, status
  FROM order_reservations WHERE order_number=$1;`
	row, err := pickRow(ctx, r.pool, tx, q, orderNumber)
	if err != nil {
		return nil, err
	}
	var res model.OrderReservation
	if err := row.Scan(&res.OrderNumber, &res.UserID, &res.JobID, &res.ReservedAt, &res.ExpiresAt, &res.Status); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, domain.ErrReadDatabaseRow
	}
	return &res, nil
}

func (r *PostgresReservationRepo) UpdateStatusCAS(ctx context.Context, tx repository.Tx, orderNumber string, from, to model.ReservationStatus) error {
	const q = `UPDATE order_reservations SET status=$3 WHERE order_number=$1 AND status=$2;`
	tag, err := execSQL(ctx, r.pool, tx, q, orderNumber, from, to)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		// Distinguish a missing reservation from one that moved under us.
		if _, err := r.FindByNumber(ctx, tx, orderNumber); err != nil {
			return err
		}
		return domain.ErrStatusConflict
	}
	return nil
}

func (r *PostgresReservationRepo) ListReservedBefore(ctx context.Context, tx repository.Tx, cutoff time.Time) ([]*model.OrderReservation, error) {
	const q = `
SELECT order_number, user_id, job_id, reserved_at, expires_at, status
  FROM order_reservations
 WHERE status='reserved' AND expires_at <= $1
 ORDER BY order_number;`
	rows, err := pickRows(ctx, r.pool, tx, q, cutoff)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*model.OrderReservation
	for rows.Next() {
		var res model.OrderReservation
		if err := rows.Scan(&res.OrderNumber, &res.UserID, &res.JobID, &res.ReservedAt, &res.ExpiresAt, &res.Status); err != nil {
			return nil, domain.ErrReadDatabaseRow
		}
		out = append(out, &res)
	}
	return out, rows.Err()
}

// PostgresCounterRepo backs named counters with a single-statement
// atomic upsert, so Next never hands out the same value twice even
// across processes.
type PostgresCounterRepo struct {
	pool *pgxpool.Pool
}

func NewPostgresCounterRepo(pool *pgxpool.Pool) *PostgresCounterRepo {
	return &PostgresCounterRepo{pool: pool}
}

func (r *PostgresCounterRepo) Next(ctx context.Context, tx repository.Tx, name string) (int64, error) {
	const q = `
INSERT INTO counters (name, value) VALUES ($1, 1)
ON CONFLICT (name) DO UPDATE SET value = counters.value + 1
RETURNING value;
`
	row, err := pickRow(ctx, r.pool, tx, q, name)
	if err != nil {
		return 0, err
	}
	var v int64
	if err := row.Scan(&v); err != nil {
		return 0, domain.ErrReadDatabaseRow
	}
	return v, nil
}

func (r *PostgresCounterRepo) Current(ctx context.Context, tx repository.Tx, name string) (int64, error) {
	row, err := pickRow(ctx, r.pool, tx, `SELECT value FROM counters WHERE name=$1;`, name)
	if err != nil {
		return 0, err
	}
	var v int64
	if err := row.Scan(&v); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, nil
		}
		return 0, domain.ErrReadDatabaseRow
	}
	return v, nil
}
