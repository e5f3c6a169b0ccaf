package memory

import (
	"context"
	"sort"

	"media-production-workflow/internal/domain"
	"media-production-workflow/internal/domain/model"
	"media-production-workflow/internal/domain/ports/repository"
)

var _ repository.JobRepository = (*JobRepo)(nil)

type JobRepo struct {
	s *Store
}

func NewJobRepo(s *Store) *JobRepo { return &JobRepo{s: s} }

func (r *JobRepo) Save(ctx context.Context, tx repository.Tx, job *model.Job) error {
	return r.s.mutate("jobs.save", func() error {
		if job.ID == "" {
			return domain.ErrInvalidArgument
		}
		c := cloneJob(job)
		c.CreatedAt = stampUTC(c.CreatedAt)
		c.UpdatedAt = stampUTC(c.UpdatedAt)
		r.s.jobs[c.ID] = c
		return nil
	})
}

func (r *JobRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.Job, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	j, ok := r.s.jobs[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return cloneJob(j), nil
}

func (r *JobRepo) FindByPublicID(ctx context.Context, tx repository.Tx, partnerID, publicID string) (*model.Job, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, j := range r.s.jobs {
		if j.PartnerID == partnerID && j.PublicID == publicID {
			return cloneJob(j), nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r *JobRepo) List(ctx context.Context, tx repository.Tx, partnerID string) ([]*model.Job, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var out []*model.Job
	for _, j := range r.s.jobs {
		if partnerID != "" && j.PartnerID != partnerID {
			continue
		}
		out = append(out, cloneJob(j))
	}
	sort.Slice(out, func(i, k int) bool { return out[i].ID < out[k].ID })
	return out, nil
}

func (r *JobRepo) UpdateStatusCAS(ctx context.Context, tx repository.Tx, id string, from, to model.JobStatus) error {
	return r.s.mutate("jobs.cas", func() error {
		j, ok := r.s.jobs[id]
		if !ok {
			return domain.ErrNotFound
		}
		if j.Status != from {
			return domain.ErrStatusConflict
		}
		j.Status = to
		j.UpdatedAt = nowUTC()
		return nil
	})
}
