package memory

import (
	"context"
	"sort"

	"github.com/oklog/ulid/v2"

	"media-production-workflow/internal/domain"
	"media-production-workflow/internal/domain/model"
	"media-production-workflow/internal/domain/ports/repository"
)

var (
	_ repository.FolderMetaRepository = (*FolderRepo)(nil)
	_ repository.AuditLogRepository   = (*AuditRepo)(nil)
)

type FolderRepo struct {
	s *Store
}

func NewFolderRepo(s *Store) *FolderRepo { return &FolderRepo{s: s} }

func (r *FolderRepo) Save(ctx context.Context, tx repository.Tx, meta *model.FolderMeta) error {
	return r.s.mutate("folders.save", func() error {
		if meta.Key == "" || meta.JobID == "" {
			return domain.ErrInvalidArgument
		}
		c := cloneFolderMeta(meta)
		c.CreatedAt = stampUTC(c.CreatedAt)
		c.UpdatedAt = stampUTC(c.UpdatedAt)
		r.s.folders[c.Key] = c
		return nil
	})
}

func (r *FolderRepo) FindByKey(ctx context.Context, tx repository.Tx, key string) (*model.FolderMeta, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	meta, ok := r.s.folders[key]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return cloneFolderMeta(meta), nil
}

func (r *FolderRepo) ListByJob(ctx context.Context, tx repository.Tx, jobID string) ([]*model.FolderMeta, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var out []*model.FolderMeta
	for _, meta := range r.s.folders {
		if meta.JobID == jobID {
			out = append(out, cloneFolderMeta(meta))
		}
	}
	sort.Slice(out, func(i, k int) bool {
		if !out[i].CreatedAt.Equal(out[k].CreatedAt) {
			return out[i].CreatedAt.Before(out[k].CreatedAt)
		}
		return out[i].Key < out[k].Key
	})
	return out, nil
}

type AuditRepo struct {
	s *Store
}

func NewAuditRepo(s *Store) *AuditRepo { return &AuditRepo{s: s} }

func (r *AuditRepo) Record(ctx context.Context, entry *model.AuditEntry) error {
	return r.s.mutate("audit.record", func() error {
		c := cloneAudit(entry)
		if c.ID == "" {
			c.ID = ulid.Make().String()
		}
		c.CreatedAt = stampUTC(c.CreatedAt)
		r.s.audit = append(r.s.audit, c)
		return nil
	})
}

func (r *AuditRepo) ListRecent(ctx context.Context, limit int) ([]*model.AuditEntry, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	n := len(r.s.audit)
	if limit <= 0 || limit > n {
		limit = n
	}
	out := make([]*model.AuditEntry, 0, limit)
	for i := n - 1; i >= n-limit; i-- {
		out = append(out, cloneAudit(r.s.audit[i]))
	}
	return out, nil
}
