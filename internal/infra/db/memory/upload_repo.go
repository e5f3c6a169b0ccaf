package memory

import (
	"context"
	"sort"

	"media-production-workflow/internal/domain"
	"media-production-workflow/internal/domain/model"
	"media-production-workflow/internal/domain/ports/repository"
)

var _ repository.UploadRepository = (*UploadRepo)(nil)

type UploadRepo struct {
	s *Store
}

func NewUploadRepo(s *Store) *UploadRepo { return &UploadRepo{s: s} }

func (r *UploadRepo) Save(ctx context.Context, tx repository.Tx, upload *model.EditorUpload) error {
	return r.s.mutate("uploads.save", func() error {
		if upload.ID == "" {
			return domain.ErrInvalidArgument
		}
		c := cloneUpload(upload)
		c.CreatedAt = stampUTC(c.CreatedAt)
		c.UpdatedAt = stampUTC(c.UpdatedAt)
		r.s.uploads[c.ID] = c
		return nil
	})
}

func (r *UploadRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.EditorUpload, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	u, ok := r.s.uploads[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return cloneUpload(u), nil
}

func (r *UploadRepo) ListByJob(ctx context.Context, tx repository.Tx, jobID string) ([]*model.EditorUpload, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var out []*model.EditorUpload
	for _, u := range r.s.uploads {
		if u.JobID == jobID {
			out = append(out, cloneUpload(u))
		}
	}
	sort.Slice(out, func(i, k int) bool { return out[i].ID < out[k].ID })
	return out, nil
}

func (r *UploadRepo) ListAll(ctx context.Context, tx repository.Tx) ([]*model.EditorUpload, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := make([]*model.EditorUpload, 0, len(r.s.uploads))
	for _, u := range r.s.uploads {
		out = append(out, cloneUpload(u))
	}
	sort.Slice(out, func(i, k int) bool { return out[i].ID < out[k].ID })
	return out, nil
}
