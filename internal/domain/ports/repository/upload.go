package repository

import (
	"context"

	"media-production-workflow/internal/domain/model"
)

type UploadRepository interface {
	Save(ctx context.Context, tx Tx, upload *model.EditorUpload) error
	FindByID(ctx context.Context, tx Tx, id string) (*model.EditorUpload, error)
	ListByJob(ctx context.Context, tx Tx, jobID string) ([]*model.EditorUpload, error)
	ListAll(ctx context.Context, tx Tx) ([]*model.EditorUpload, error)
}
