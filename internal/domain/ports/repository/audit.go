package repository

import (
	"context"

	"media-production-workflow/internal/domain/model"
)

// AuditLogRepository records activity entries. Callers treat it as
// fire-and-forget: a failed write is logged, never propagated.
type AuditLogRepository interface {
	Record(ctx context.Context, entry *model.AuditEntry) error
	ListRecent(ctx context.Context, limit int) ([]*model.AuditEntry, error)
}
