package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/oklog/ulid/v2"

	"media-production-workflow/internal/domain"
	"media-production-workflow/internal/domain/model"
	"media-production-workflow/internal/domain/ports/repository"
)

var (
	_ repository.FolderMetaRepository = (*PostgresFolderRepo)(nil)
	_ repository.AuditLogRepository   = (*PostgresAuditRepo)(nil)
)

type PostgresFolderRepo struct {
	pool *pgxpool.Pool
}

func NewPostgresFolderRepo(pool *pgxpool.Pool) *PostgresFolderRepo {
	return &PostgresFolderRepo{pool: pool}
}

func (r *PostgresFolderRepo) Save(ctx context.Context, tx repository.Tx, meta *model.FolderMeta) error {
	const q = `
INSERT INTO folder_metadata (
  key, job_id, folder_path, folder_token, order_id, partner_folder_name,
  is_visible, display_order, created_at, updated_at
) VALUES (
  $1,$2,$3,$4,$5,$6,$7,$8,$9,$10
) ON CONFLICT (key) DO UPDATE SET
  folder_path=$3, folder_token=$4, order_id=$5, partner_folder_name=$6,
  is_visible=$7, display_order=$8, updated_at=$10;
`
	_, err := execSQL(ctx, r.pool, tx, q,
		meta.Key, meta.JobID, meta.FolderPath, meta.FolderToken, meta.OrderID, meta.PartnerFolderName,
		meta.IsVisible, meta.DisplayOrder, meta.CreatedAt, meta.UpdatedAt,
	)
	return err
}

const folderColumns = `
key, job_id, folder_path, folder_token, order_id, partner_folder_name,
is_visible, display_order, created_at, updated_at`

func scanFolderMeta(row pgx.Row) (*model.FolderMeta, error) {
	var m model.FolderMeta
	err := row.Scan(
		&m.Key, &m.JobID, &m.FolderPath, &m.FolderToken, &m.OrderID, &m.PartnerFolderName,
		&m.IsVisible, &m.DisplayOrder, &m.CreatedAt, &m.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, domain.ErrReadDatabaseRow
	}
	return &m, nil
}

func (r *PostgresFolderRepo) FindByKey(ctx context.Context, tx repository.Tx, key string) (*model.FolderMeta, error) {
	row, err := pickRow(ctx, r.pool, tx, `SELECT `+folderColumns+` FROM folder_metadata WHERE key=$1;`, key)
	if err != nil {
		return nil, err
	}
	return scanFolderMeta(row)
}

func (r *PostgresFolderRepo) ListByJob(ctx context.Context, tx repository.Tx, jobID string) ([]*model.FolderMeta, error) {
	const q = `SELECT ` + folderColumns + ` FROM folder_metadata WHERE job_id=$1 ORDER BY created_at, key;`
	rows, err := pickRows(ctx, r.pool, tx, q, jobID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*model.FolderMeta
	for rows.Next() {
		m, err := scanFolderMeta(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

type PostgresAuditRepo struct {
	pool *pgxpool.Pool
}

func NewPostgresAuditRepo(pool *pgxpool.Pool) *PostgresAuditRepo {
	return &PostgresAuditRepo{pool: pool}
}

func (r *PostgresAuditRepo) Record(ctx context.Context, entry *model.AuditEntry) error {
	id := entry.ID
	if id == "" {
		id = ulid.Make().String()
	}
	const q = `
INSERT INTO audit_log (id, action, category, title, description, metadata, created_at)
VALUES ($1,$2,$3,$4,$5,$6,COALESCE($7, NOW()));
`
	var createdAt interface{}
	if !entry.CreatedAt.IsZero() {
		createdAt = entry.CreatedAt
	}
	_, err := execSQL(ctx, r.pool, nil, q,
		id, entry.Action, entry.Category, entry.Title, entry.Description, entry.Metadata, createdAt,
	)
	return err
}

func (r *PostgresAuditRepo) ListRecent(ctx context.Context, limit int) ([]*model.AuditEntry, error) {
	if limit <= 0 {
		limit = 50
	}
	const q = `
SELECT id, action, category, title, description, metadata, created_at
  FROM audit_log ORDER BY created_at DESC, id DESC LIMIT $1;`
	rows, err := pickRows(ctx, r.pool, nil, q, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*model.AuditEntry
	for rows.Next() {
		var e model.AuditEntry
		if err := rows.Scan(&e.ID, &e.Action, &e.Category, &e.Title, &e.Description, &e.Metadata, &e.CreatedAt); err != nil {
			return nil, domain.ErrReadDatabaseRow
		}
		out = append(out, &e)
	}
	return out, rows.Err()
}
