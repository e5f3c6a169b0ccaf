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

var (
	_ repository.CustomerRepository        = (*PostgresCustomerRepo)(nil)
	_ repository.ServiceOfferingRepository = (*PostgresServiceRepo)(nil)
)

type PostgresCustomerRepo struct {
	pool *pgxpool.Pool
}

func NewPostgresCustomerRepo(pool *pgxpool.Pool) *PostgresCustomerRepo {
	return &PostgresCustomerRepo{pool: pool}
}

func (r *PostgresCustomerRepo) Save(ctx context.Context, tx repository.Tx, customer *model.Customer) error {
	const q = `
INSERT INTO customers (id, partner_id, name, email, phone, created_at, updated_at)
VALUES ($1,$2,$3,$4,$5,$6,$7)
ON CONFLICT (id) DO UPDATE SET
  partner_id=$2, name=$3, email=$4, phone=$5, updated_at=$7;
`
	_, err := execSQL(ctx, r.pool, tx, q,
		customer.ID, customer.PartnerID, customer.Name, customer.Email, customer.Phone,
		customer.CreatedAt, customer.UpdatedAt,
	)
	return err
}

func (r *PostgresCustomerRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.Customer, error) {
	const q = `SELECT id, partner_id, name, email, phone, created_at, updated_at FROM customers WHERE id=$1;`
	row, err := pickRow(ctx, r.pool, tx, q, id)
	if err != nil {
		return nil, err
	}
	var c model.Customer
	if err := row.Scan(&c.ID, &c.PartnerID, &c.Name, &c.Email, &c.Phone, &c.CreatedAt, &c.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, domain.ErrReadDatabaseRow
	}
	return &c, nil
}

func (r *PostgresCustomerRepo) List(ctx context.Context, tx repository.Tx, partnerID string) ([]*model.Customer, error) {
	const q = `
SELECT id, partner_id, name, email, phone, created_at, updated_at
  FROM customers WHERE ($1 = '' OR partner_id = $1) ORDER BY id;`
	rows, err := pickRows(ctx, r.pool, tx, q, partnerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*model.Customer
	for rows.Next() {
		var c model.Customer
		if err := rows.Scan(&c.ID, &c.PartnerID, &c.Name, &c.Email, &c.Phone, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, domain.ErrReadDatabaseRow
		}
		out = append(out, &c)
	}
	return out, rows.Err()
}

type PostgresServiceRepo struct {
	pool *pgxpool.Pool
}

func NewPostgresServiceRepo(pool *pgxpool.Pool) *PostgresServiceRepo {
	return &PostgresServiceRepo{pool: pool}
}

func (r *PostgresServiceRepo) Save(ctx context.Context, tx repository.Tx, svc *model.ServiceOffering) error {
	const q = `
INSERT INTO service_offerings (id, partner_id, name, price_cents, created_at)
VALUES ($1,$2,$3,$4,$5)
ON CONFLICT (id) DO UPDATE SET partner_id=$2, name=$3, price_cents=$4;
`
	_, err := execSQL(ctx, r.pool, tx, q, svc.ID, svc.PartnerID, svc.Name, svc.PriceCents, svc.CreatedAt)
	return err
}

func (r *PostgresServiceRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.ServiceOffering, error) {
	const q = `SELECT id, partner_id, name, price_cents, created_at FROM service_offerings WHERE id=$1;`
	row, err := pickRow(ctx, r.pool, tx, q, id)
	if err != nil {
		return nil, err
	}
	var svc model.ServiceOffering
	if err := row.Scan(&svc.ID, &svc.PartnerID, &svc.Name, &svc.PriceCents, &svc.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, domain.ErrReadDatabaseRow
	}
	return &svc, nil
}

func (r *PostgresServiceRepo) List(ctx context.Context, tx repository.Tx, partnerID string) ([]*model.ServiceOffering, error) {
	const q = `
SELECT id, partner_id, name, price_cents, created_at
  FROM service_offerings WHERE ($1 = '' OR partner_id = $1) ORDER BY id;`
	rows, err := pickRows(ctx, r.pool, tx, q, partnerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*model.ServiceOffering
	for rows.Next() {
		var svc model.ServiceOffering
		if err := rows.Scan(&svc.ID, &svc.PartnerID, &svc.Name, &svc.PriceCents, &svc.CreatedAt); err != nil {
			return nil, domain.ErrReadDatabaseRow
		}
		out = append(out, &svc)
	}
	return out, rows.Err()
}
