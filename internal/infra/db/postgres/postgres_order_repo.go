package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"media-production-workflow/internal/domain"
	"media-production-workflow/internal/domain/model"
	"media-production-workflow/internal/domain/ports/repository"
)

var _ repository.OrderRepository = (*PostgresOrderRepo)(nil)

type PostgresOrderRepo struct {
	pool *pgxpool.Pool
}

func NewPostgresOrderRepo(pool *pgxpool.Pool) *PostgresOrderRepo {
	return &PostgresOrderRepo{pool: pool}
}

// Save upserts the order row and rewrites its service lines. Callers
// that need the two to be atomic run this inside WithTx.
func (r *PostgresOrderRepo) Save(ctx context.Context, tx repository.Tx, order *model.Order) error {
	const q = `
INSERT INTO orders (
  id, job_id, customer_id, partner_id, order_number, status, assigned_to,
  files_expiry_date, max_revision_rounds, used_revision_rounds, created_at, updated_at
) VALUES (
  $1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12
) ON CONFLICT (id) DO UPDATE SET
  job_id=$2, customer_id=$3, partner_id=$4, status=$6, assigned_to=$7,
  files_expiry_date=$8, max_revision_rounds=$9, used_revision_rounds=$10, updated_at=$12;
`
	_, err := execSQL(ctx, r.pool, tx, q,
		order.ID, order.JobID, order.CustomerID, order.PartnerID, order.OrderNumber, order.Status, order.AssignedTo,
		order.FilesExpiryDate, order.MaxRevisionRounds, order.UsedRevisionRounds, order.CreatedAt, order.UpdatedAt,
	)
	if err != nil {
		return err
	}

	if _, err := execSQL(ctx, r.pool, tx, `DELETE FROM order_service_lines WHERE order_id=$1;`, order.ID); err != nil {
		return err
	}
	for i, line := range order.Services {
		_, err := execSQL(ctx, r.pool, tx,
			`INSERT INTO order_service_lines (order_id, position, service_id, quantity) VALUES ($1,$2,$3,$4);`,
			order.ID, i, line.ServiceID, line.Quantity,
		)
		if err != nil {
			return err
		}
	}
	return nil
}

const orderColumns = `
id, job_id, customer_id, partner_id, order_number, status, assigned_to,
files_expiry_date, max_revision_rounds, used_revision_rounds, created_at, updated_at`

func scanOrder(row pgx.Row) (*model.Order, error) {
	var o model.Order
	err := row.Scan(
		&o.ID, &o.JobID, &o.CustomerID, &o.PartnerID, &o.OrderNumber, &o.Status, &o.AssignedTo,
		&o.FilesExpiryDate, &o.MaxRevisionRounds, &o.UsedRevisionRounds, &o.CreatedAt, &o.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, domain.ErrReadDatabaseRow
	}
	return &o, nil
}

func (r *PostgresOrderRepo) loadServiceLines(ctx context.Context, tx repository.Tx, orders []*model.Order) error {
	for _, o := range orders {
		rows, err := pickRows(ctx, r.pool, tx,
			`SELECT service_id, quantity FROM order_service_lines WHERE order_id=$1 ORDER BY position;`, o.ID)
		if err != nil {
			return err
		}
		for rows.Next() {
			var line model.OrderServiceLine
			if err := rows.Scan(&line.ServiceID, &line.Quantity); err != nil {
				rows.Close()
				return domain.ErrReadDatabaseRow
			}
			o.Services = append(o.Services, line)
		}
		rows.Close()
		if err := rows.Err(); err != nil {
			return err
		}
	}
	return nil
}

func (r *PostgresOrderRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.Order, error) {
	row, err := pickRow(ctx, r.pool, tx, `SELECT `+orderColumns+` FROM orders WHERE id=$1;`, id)
	if err != nil {
		return nil, err
	}
	o, err := scanOrder(row)
	if err != nil {
		return nil, err
	}
	if err := r.loadServiceLines(ctx, tx, []*model.Order{o}); err != nil {
		return nil, err
	}
	return o, nil
}

func (r *PostgresOrderRepo) ListByJob(ctx context.Context, tx repository.Tx, jobID string) ([]*model.Order, error) {
	return r.list(ctx, tx, `SELECT `+orderColumns+` FROM orders WHERE job_id=$1 ORDER BY order_number;`, jobID)
}

func (r *PostgresOrderRepo) List(ctx context.Context, tx repository.Tx, partnerID string) ([]*model.Order, error) {
	return r.list(ctx, tx, `SELECT `+orderColumns+` FROM orders WHERE ($1 = '' OR partner_id = $1) ORDER BY order_number;`, partnerID)
}

func (r *PostgresOrderRepo) list(ctx context.Context, tx repository.Tx, q string, args ...interface{}) ([]*model.Order, error) {
	rows, err := pickRows(ctx, r.pool, tx, q, args...)
	if err != nil {
		return nil, err
	}
	var out []*model.Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			rows.Close()
			return nil, err
		}
		out = append(out, o)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if err := r.loadServiceLines(ctx, tx, out); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *PostgresOrderRepo) UpdateStatusCAS(ctx context.Context, tx repository.Tx, id string, from, to model.OrderStatus) error {
	const q = `UPDATE orders SET status=$3, updated_at=NOW() WHERE id=$1 AND status=$2;`
	tag, err := execSQL(ctx, r.pool, tx, q, id, from, to)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		if _, err := r.FindByID(ctx, tx, id); err != nil {
			return err
		}
		return domain.ErrStatusConflict
	}
	return nil
}
