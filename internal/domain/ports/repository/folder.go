package repository

import (
	"context"

	"media-production-workflow/internal/domain/model"
)

type FolderMetaRepository interface {
	Save(ctx context.Context, tx Tx, meta *model.FolderMeta) error
	FindByKey(ctx context.Context, tx Tx, key string) (*model.FolderMeta, error)
	ListByJob(ctx context.Context, tx Tx, jobID string) ([]*model.FolderMeta, error)
}
