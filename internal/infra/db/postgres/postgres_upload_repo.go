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

var _ repository.UploadRepository = (*PostgresUploadRepo)(nil)

type PostgresUploadRepo struct {
	pool *pgxpool.Pool
}

func NewPostgresUploadRepo(pool *pgxpool.Pool) *PostgresUploadRepo {
	return &PostgresUploadRepo{pool: pool}
}

func (r *PostgresUploadRepo) Save(ctx context.Context, tx repository.Tx, upload *model.EditorUpload) error {
	const q = `
INSERT INTO editor_uploads (
  id, job_id, order_id, folder_path, folder_token, editor_folder_name,
  partner_folder_name, status, storage_key, signed_url, expires_at, created_at, updated_at
) VALUES (
  $1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13
) ON CONFLICT (id) DO UPDATE SET
  job_id=$2, order_id=$3, folder_path=$4, folder_token=$5, editor_folder_name=$6,
  partner_folder_name=$7, status=$8, storage_key=$9, signed_url=$10, expires_at=$11, updated_at=$13;
`
	_, err := execSQL(ctx, r.pool, tx, q,
		upload.ID, upload.JobID, upload.OrderID, upload.FolderPath, upload.FolderToken, upload.EditorFolderName,
		upload.PartnerFolderName, upload.Status, upload.StorageKey, upload.SignedURL, upload.ExpiresAt,
		upload.CreatedAt, upload.UpdatedAt,
	)
	return err
}

const uploadColumns = `
id, job_id, order_id, folder_path, folder_token, editor_folder_name,
partner_folder_name, status, storage_key, signed_url, expires_at, created_at, updated_at`

func scanUpload(row pgx.Row) (*model.EditorUpload, error) {
	var u model.EditorUpload
	err := row.Scan(
		&u.ID, &u.JobID, &u.OrderID, &u.FolderPath, &u.FolderToken, &u.EditorFolderName,
		&u.PartnerFolderName, &u.Status, &u.StorageKey, &u.SignedURL, &u.ExpiresAt, &u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, domain.ErrReadDatabaseRow
	}
	return &u, nil
}

func (r *PostgresUploadRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.EditorUpload, error) {
	row, err := pickRow(ctx, r.pool, tx, `SELECT `+uploadColumns+` FROM editor_uploads WHERE id=$1;`, id)
	if err != nil {
		return nil, err
	}
	return scanUpload(row)
}

func (r *PostgresUploadRepo) ListByJob(ctx context.Context, tx repository.Tx, jobID string) ([]*model.EditorUpload, error) {
	return r.list(ctx, tx, `SELECT `+uploadColumns+` FROM editor_uploads WHERE job_id=$1 ORDER BY id;`, jobID)
}

func (r *PostgresUploadRepo) ListAll(ctx context.Context, tx repository.Tx) ([]*model.EditorUpload, error) {
	return r.list(ctx, tx, `SELECT `+uploadColumns+` FROM editor_uploads ORDER BY id;`)
}

func (r *PostgresUploadRepo) list(ctx context.Context, tx repository.Tx, q string, args ...interface{}) ([]*model.EditorUpload, error) {
	rows, err := pickRows(ctx, r.pool, tx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*model.EditorUpload
	for rows.Next() {
		u, err := scanUpload(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}
