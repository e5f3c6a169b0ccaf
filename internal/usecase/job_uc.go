package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"media-production-workflow/internal/domain"
	"media-production-workflow/internal/domain/model"
	"media-production-workflow/internal/domain/ports/repository"
	"media-production-workflow/internal/infra/metrics"
)

// JobUseCase owns job intake, lookup, delivery token generation and the
// job status state machine.
type JobUseCase struct {
	jobs      repository.JobRepository
	audit     repository.AuditLogRepository
	integrity *IntegrityUseCase
	log       *zerolog.Logger
}

func NewJobUseCase(
	jobs repository.JobRepository,
	audit repository.AuditLogRepository,
	integrity *IntegrityUseCase,
	logger *zerolog.Logger,
) *JobUseCase {
	return &JobUseCase{jobs: jobs, audit: audit, integrity: integrity, log: logger}
}

// Create validates and stores a new job. Ids and the scheduled status are
// assigned here; the preventive check runs before anything reaches the
// store.
func (uc *JobUseCase) Create(ctx context.Context, job *model.Job) (*model.Job, error) {
	check, err := uc.integrity.ValidateJobCreation(ctx, job)
	if err != nil {
		return nil, err
	}
	if !check.Valid {
		return nil, fmt.Errorf("%w: %s", domain.ErrInvalidArgument, strings.Join(check.Errors, "; "))
	}

	if job.ID == "" {
		job.ID = newID()
	}
	if job.PublicID == "" {
		publicID, err := uc.uniquePublicID(ctx, job.PartnerID)
		if err != nil {
			return nil, err
		}
		job.PublicID = publicID
	}
	if job.Status == "" {
		job.Status = model.JobStatusScheduled
	}
	now := time.Now().UTC()
	job.CreatedAt = now
	job.UpdatedAt = now

	if err := uc.jobs.Save(ctx, repository.NoTX, job); err != nil {
		return nil, fmt.Errorf("save job: %w", err)
	}
	uc.log.Info().Str("job_id", job.ID).Str("public_id", job.PublicID).Str("partner_id", job.PartnerID).Msg("job created")
	return job, nil
}

func (uc *JobUseCase) Get(ctx context.Context, id string) (*model.Job, error) {
	return uc.jobs.FindByID(ctx, repository.NoTX, id)
}

func (uc *JobUseCase) GetByPublicID(ctx context.Context, partnerID, publicID string) (*model.Job, error) {
	return uc.jobs.FindByPublicID(ctx, repository.NoTX, partnerID, publicID)
}

func (uc *JobUseCase) List(ctx context.Context, partnerID string) ([]*model.Job, error) {
	return uc.jobs.List(ctx, repository.NoTX, partnerID)
}

// Update persists mutable job fields. Status is state-machine guarded
// and must go through UpdateStatusAfterUpload instead; PublicID and
// DeliveryToken are assigned once and stay as stored, whatever the
// caller sends.
func (uc *JobUseCase) Update(ctx context.Context, job *model.Job) (*model.Job, error) {
	current, err := uc.jobs.FindByID(ctx, repository.NoTX, job.ID)
	if err != nil {
		return nil, err
	}
	job.PublicID = current.PublicID
	job.DeliveryToken = current.DeliveryToken
	job.Status = current.Status
	job.CreatedAt = current.CreatedAt
	job.UpdatedAt = time.Now().UTC()
	if err := uc.jobs.Save(ctx, repository.NoTX, job); err != nil {
		return nil, fmt.Errorf("save job %s: %w", job.ID, err)
	}
	return job, nil
}

// GenerateDeliveryToken returns the job's delivery token, minting and
// persisting one on first use. The token is a random UUID; it is never
// rotated once handed out.
func (uc *JobUseCase) GenerateDeliveryToken(ctx context.Context, jobID string) (string, error) {
	job, err := uc.jobs.FindByID(ctx, repository.NoTX, jobID)
	if err != nil {
		return "", err
	}
	if job.DeliveryToken != "" {
		return job.DeliveryToken, nil
	}
	job.DeliveryToken = uuid.NewString()
	job.UpdatedAt = time.Now().UTC()
	if err := uc.jobs.Save(ctx, repository.NoTX, job); err != nil {
		return "", fmt.Errorf("save delivery token for job %s: %w", jobID, err)
	}
	uc.log.Debug().Str("job_id", jobID).Msg("delivery token generated")
	return job.DeliveryToken, nil
}

// UpdateStatusAfterUpload applies a job status transition with a
// compare-and-swap against the stored status.
//
// Legacy behavior, kept intentionally: a direct scheduled->completed
// request is not rejected; the engine persists an intermediate
// scheduled->in_progress hop first, then applies in_progress->completed.
// Both hops are recorded. TODO(product): decide whether this implicit
// double transition should become an explicit two-step API.
func (uc *JobUseCase) UpdateStatusAfterUpload(ctx context.Context, jobID string, to model.JobStatus) (*model.Job, error) {
	job, err := uc.jobs.FindByID(ctx, repository.NoTX, jobID)
	if err != nil {
		return nil, err
	}

	if job.Status == model.JobStatusScheduled && to == model.JobStatusCompleted {
		if err := uc.applyTransition(ctx, job, model.JobStatusInProgress); err != nil {
			return nil, err
		}
	}
	if err := uc.applyTransition(ctx, job, to); err != nil {
		return nil, err
	}
	return job, nil
}

// applyTransition validates one edge, persists it with a CAS, and emits
// the audit record. job.Status is advanced on success.
func (uc *JobUseCase) applyTransition(ctx context.Context, job *model.Job, to model.JobStatus) error {
	from := job.Status
	if err := model.ValidateTransition(model.KindJob, string(from), string(to)); err != nil {
		metrics.IncStatusTransition("job", "rejected")
		return err
	}
	if err := uc.jobs.UpdateStatusCAS(ctx, repository.NoTX, job.ID, from, to); err != nil {
		if errors.Is(err, domain.ErrStatusConflict) {
			metrics.IncStatusTransition("job", "conflict")
		}
		return fmt.Errorf("job %s %s -> %s: %w", job.ID, from, to, err)
	}
	job.Status = to
	job.UpdatedAt = time.Now().UTC()
	metrics.IncStatusTransition("job", "applied")
	uc.recordAudit(ctx, &model.AuditEntry{
		Action:      "job_status_change",
		Category:    "workflow",
		Title:       "Job status changed",
		Description: fmt.Sprintf("job %s moved from %s to %s", job.ID, from, to),
		Metadata:    fmt.Sprintf(`{"job_id":%q,"from":%q,"to":%q}`, job.ID, from, to),
	})
	return nil
}

// uniquePublicID retries short id generation until it does not collide
// within the partner. Collisions are vanishingly rare; the bound exists
// so a broken repo cannot loop forever.
func (uc *JobUseCase) uniquePublicID(ctx context.Context, partnerID string) (string, error) {
	for i := 0; i < 5; i++ {
		candidate := newPublicID()
		_, err := uc.jobs.FindByPublicID(ctx, repository.NoTX, partnerID, candidate)
		if errors.Is(err, domain.ErrNotFound) {
			return candidate, nil
		}
		if err != nil {
			return "", fmt.Errorf("check public id: %w", err)
		}
	}
	return "", fmt.Errorf("%w: could not allocate a unique public id", domain.ErrAlreadyExists)
}

func (uc *JobUseCase) recordAudit(ctx context.Context, entry *model.AuditEntry) {
	if err := uc.audit.Record(ctx, entry); err != nil {
		uc.log.Warn().Err(err).Str("action", entry.Action).Msg("audit record failed")
	}
}
