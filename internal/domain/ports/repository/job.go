package repository

import (
	"context"

	"media-production-workflow/internal/domain/model"
)

type JobRepository interface {
	// Save inserts or updates a job. Missing ids/timestamps are assigned
	// by the implementation.
	Save(ctx context.Context, tx Tx, job *model.Job) error
	FindByID(ctx context.Context, tx Tx, id string) (*model.Job, error)
	// FindByPublicID resolves the short partner-visible id within one tenant.
	FindByPublicID(ctx context.Context, tx Tx, partnerID, publicID string) (*model.Job, error)
	// List returns jobs, optionally filtered to one partner (empty = all).
	List(ctx context.Context, tx Tx, partnerID string) ([]*model.Job, error)
	// UpdateStatusCAS applies a status change only if the stored status
	// still equals from; returns domain.ErrStatusConflict otherwise.
	UpdateStatusCAS(ctx context.Context, tx Tx, id string, from, to model.JobStatus) error
}
