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

var _ repository.JobRepository = (*PostgresJobRepo)(nil)

type PostgresJobRepo struct {
	pool *pgxpool.Pool
}

func NewPostgresJobRepo(pool *pgxpool.Pool) *PostgresJobRepo {
	return &PostgresJobRepo{pool: pool}
}

func (r *PostgresJobRepo) Save(ctx context.Context, tx repository.Tx, job *model.Job) error {
	const q = `
INSERT INTO jobs (
  id, public_id, partner_id, customer_id, status, delivery_token,
  address, notes, scheduled_at, created_at, updated_at
) VALUES (
  $1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11
) ON CONFLICT (id) DO UPDATE SET
  public_id=$2, partner_id=$3, customer_id=$4, status=$5, delivery_token=$6,
  address=$7, notes=$8, scheduled_at=$9, updated_at=$11;
`
	_, err := execSQL(ctx, r.pool, tx, q,
		job.ID, job.PublicID, job.PartnerID, job.CustomerID, job.Status, job.DeliveryToken,
		job.Address, job.Notes, job.ScheduledAt, job.CreatedAt, job.UpdatedAt,
	)
	return err
}

const jobColumns = `
id, public_id, partner_id, customer_id, status, delivery_token,
address, notes, scheduled_at, created_at, updated_at`

func scanJob(row pgx.Row) (*model.Job, error) {
	var j model.Job
	err := row.Scan(
		&j.ID, &j.PublicID, &j.PartnerID, &j.CustomerID, &j.Status, &j.DeliveryToken,
		&j.Address, &j.Notes, &j.ScheduledAt, &j.CreatedAt, &j.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, domain.ErrReadDatabaseRow
	}
	return &j, nil
}

func (r *PostgresJobRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.Job, error) {
	row, err := pickRow(ctx, r.pool, tx, `SELECT `+jobColumns+` FROM jobs WHERE id=$1;`, id)
	if err != nil {
		return nil, err
	}
	return scanJob(row)
}

func (r *PostgresJobRepo) FindByPublicID(ctx context.Context, tx repository.Tx, partnerID, publicID string) (*model.Job, error) {
	row, err := pickRow(ctx, r.pool, tx, `SELECT `+jobColumns+` FROM jobs WHERE partner_id=$1 AND public_id=$2;`, partnerID, publicID)
	if err != nil {
		return nil, err
	}
	return scanJob(row)
}

func (r *PostgresJobRepo) List(ctx context.Context, tx repository.Tx, partnerID string) ([]*model.Job, error) {
	const q = `SELECT ` + jobColumns + ` FROM jobs WHERE ($1 = '' OR partner_id = $1) ORDER BY created_at, id;`
	rows, err := pickRows(ctx, r.pool, tx, q, partnerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*model.Job
	for rows.Next() {
		j, err := scanJob(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, j)
	}
	return out, rows.Err()
}

func (r *PostgresJobRepo) UpdateStatusCAS(ctx context.Context, tx repository.Tx, id string, from, to model.JobStatus) error {
	const q = `UPDATE jobs SET status=$3, updated_at=NOW() WHERE id=$1 AND status=$2;`
	tag, err := execSQL(ctx, r.pool, tx, q, id, from, to)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		// Distinguish a lost race from a missing row.
		if _, err := r.FindByID(ctx, tx, id); err != nil {
			return err
		}
		return domain.ErrStatusConflict
	}
	return nil
}
