package application

import (
	"context"
	"fmt"

	"media-production-workflow/internal/domain"
	"media-production-workflow/internal/domain/model"
	"media-production-workflow/internal/domain/ports/repository"
	"media-production-workflow/internal/usecase"
)

// StorageFacade composes the usecases into the single surface callers
// (route handlers, the ops server, future transports) talk to. Tenant
// identity is an explicit argument on tenant-scoped calls: the facade
// enforces that the addressed records belong to the caller's partner,
// it never authenticates.
type StorageFacade struct {
	JobUC       *usecase.JobUseCase
	OrderUC     *usecase.OrderUseCase
	AllocUC     *usecase.AllocatorUseCase
	IntegrityUC *usecase.IntegrityUseCase
	FolderUC    *usecase.FolderUseCase
	Audit       repository.AuditLogRepository
}

func NewStorageFacade(
	jobUC *usecase.JobUseCase,
	orderUC *usecase.OrderUseCase,
	allocUC *usecase.AllocatorUseCase,
	integrityUC *usecase.IntegrityUseCase,
	folderUC *usecase.FolderUseCase,
	audit repository.AuditLogRepository,
) *StorageFacade {
	return &StorageFacade{
		JobUC:       jobUC,
		OrderUC:     orderUC,
		AllocUC:     allocUC,
		IntegrityUC: integrityUC,
		FolderUC:    folderUC,
		Audit:       audit,
	}
}

// ---- jobs ----

func (f *StorageFacade) CreateJob(ctx context.Context, partnerID string, job *model.Job) (*model.Job, error) {
	if job.PartnerID == "" {
		job.PartnerID = partnerID
	}
	if job.PartnerID != partnerID {
		return nil, fmt.Errorf("%w: job belongs to partner %s", domain.ErrTenantMismatch, job.PartnerID)
	}
	return f.JobUC.Create(ctx, job)
}

func (f *StorageFacade) GetJob(ctx context.Context, partnerID, jobID string) (*model.Job, error) {
	job, err := f.JobUC.Get(ctx, jobID)
	if err != nil {
		return nil, err
	}
	if err := f.checkTenant(partnerID, job.PartnerID); err != nil {
		return nil, err
	}
	return job, nil
}

func (f *StorageFacade) GetJobByPublicID(ctx context.Context, partnerID, publicID string) (*model.Job, error) {
	return f.JobUC.GetByPublicID(ctx, partnerID, publicID)
}

func (f *StorageFacade) ListJobs(ctx context.Context, partnerID string) ([]*model.Job, error) {
	return f.JobUC.List(ctx, partnerID)
}

func (f *StorageFacade) UpdateJob(ctx context.Context, partnerID string, job *model.Job) (*model.Job, error) {
	if _, err := f.GetJob(ctx, partnerID, job.ID); err != nil {
		return nil, err
	}
	job.PartnerID = partnerID
	return f.JobUC.Update(ctx, job)
}

func (f *StorageFacade) GenerateDeliveryToken(ctx context.Context, partnerID, jobID string) (string, error) {
	if _, err := f.GetJob(ctx, partnerID, jobID); err != nil {
		return "", err
	}
	return f.JobUC.GenerateDeliveryToken(ctx, jobID)
}

func (f *StorageFacade) UpdateJobStatusAfterUpload(ctx context.Context, partnerID, jobID string, to model.JobStatus) (*model.Job, error) {
	if _, err := f.GetJob(ctx, partnerID, jobID); err != nil {
		return nil, err
	}
	return f.JobUC.UpdateStatusAfterUpload(ctx, jobID, to)
}

// ---- orders ----

func (f *StorageFacade) CreateOrder(ctx context.Context, partnerID string, order *model.Order, reservedNumber string) (*model.Order, error) {
	if _, err := f.GetJob(ctx, partnerID, order.JobID); err != nil {
		return nil, err
	}
	return f.OrderUC.Create(ctx, order, reservedNumber)
}

func (f *StorageFacade) GetOrder(ctx context.Context, partnerID, orderID string) (*model.Order, error) {
	order, err := f.OrderUC.Get(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if err := f.checkTenant(partnerID, order.PartnerID); err != nil {
		return nil, err
	}
	return order, nil
}

func (f *StorageFacade) ListOrdersByJob(ctx context.Context, partnerID, jobID string) ([]*model.Order, error) {
	if _, err := f.GetJob(ctx, partnerID, jobID); err != nil {
		return nil, err
	}
	return f.OrderUC.ListByJob(ctx, jobID)
}

func (f *StorageFacade) ListOrders(ctx context.Context, partnerID string) ([]*model.Order, error) {
	return f.OrderUC.List(ctx, partnerID)
}

func (f *StorageFacade) AssignOrder(ctx context.Context, partnerID, orderID, editorID string) (*model.Order, error) {
	if _, err := f.GetOrder(ctx, partnerID, orderID); err != nil {
		return nil, err
	}
	return f.OrderUC.Assign(ctx, orderID, editorID)
}

func (f *StorageFacade) UseRevisionRound(ctx context.Context, partnerID, orderID string) (*model.Order, error) {
	if _, err := f.GetOrder(ctx, partnerID, orderID); err != nil {
		return nil, err
	}
	return f.OrderUC.UseRevisionRound(ctx, orderID)
}

func (f *StorageFacade) UpdateOrderStatus(ctx context.Context, partnerID, orderID string, to model.OrderStatus) (*model.Order, error) {
	if _, err := f.GetOrder(ctx, partnerID, orderID); err != nil {
		return nil, err
	}
	return f.OrderUC.UpdateStatus(ctx, orderID, to)
}

// ---- order numbers ----

// GenerateOrderNumber allocates from the global sequence; numbers are
// not tenant-scoped.
func (f *StorageFacade) GenerateOrderNumber(ctx context.Context) (string, error) {
	return f.AllocUC.GenerateOrderNumber(ctx)
}

func (f *StorageFacade) ReserveOrderNumber(ctx context.Context, userID, jobID string) (*model.OrderReservation, error) {
	return f.AllocUC.ReserveOrderNumber(ctx, userID, jobID)
}

func (f *StorageFacade) ConfirmReservation(ctx context.Context, orderNumber string) (bool, error) {
	return f.AllocUC.ConfirmReservation(ctx, orderNumber)
}

func (f *StorageFacade) CleanupExpiredReservations(ctx context.Context) (int, error) {
	return f.AllocUC.CleanupExpiredReservations(ctx)
}

// ---- integrity ----

func (f *StorageFacade) ValidateJobIntegrity(ctx context.Context, jobID string) (*usecase.IntegrityReport, error) {
	return f.IntegrityUC.ValidateJobIntegrity(ctx, jobID)
}

func (f *StorageFacade) ValidateOrderIntegrity(ctx context.Context, orderID string) (*usecase.IntegrityReport, error) {
	return f.IntegrityUC.ValidateOrderIntegrity(ctx, orderID)
}

func (f *StorageFacade) ValidateEditorWorkflowAccess(ctx context.Context, editorID, jobID string) (bool, error) {
	return f.IntegrityUC.ValidateEditorWorkflowAccess(ctx, editorID, jobID)
}

func (f *StorageFacade) PerformHealthCheck(ctx context.Context, partnerID string) (*usecase.HealthReport, error) {
	return f.IntegrityUC.PerformHealthCheck(ctx, partnerID)
}

func (f *StorageFacade) RepairOrphanedOrder(ctx context.Context, orderID, correctJobID string) (*model.Order, error) {
	return f.IntegrityUC.RepairOrphanedOrder(ctx, orderID, correctJobID)
}

// ---- folders ----

// RegisterUpload records an editor deliverable against a job the caller
// owns; the referential pre-check rejects dangling job/order references
// before the record reaches the store.
func (f *StorageFacade) RegisterUpload(ctx context.Context, partnerID string, upload *model.EditorUpload) (*model.EditorUpload, error) {
	if _, err := f.GetJob(ctx, partnerID, upload.JobID); err != nil {
		return nil, err
	}
	return f.FolderUC.RegisterUpload(ctx, upload)
}

func (f *StorageFacade) GetUploadFolders(ctx context.Context, partnerID, jobID string) ([]*model.Folder, error) {
	if _, err := f.GetJob(ctx, partnerID, jobID); err != nil {
		return nil, err
	}
	return f.FolderUC.GetUploadFolders(ctx, jobID)
}

func (f *StorageFacade) CreateFolder(ctx context.Context, partnerID, jobID, name, path, token, orderID string) (*model.FolderMeta, error) {
	if _, err := f.GetJob(ctx, partnerID, jobID); err != nil {
		return nil, err
	}
	return f.FolderUC.CreateFolder(ctx, jobID, name, path, token, orderID)
}

func (f *StorageFacade) UpdateFolderName(ctx context.Context, partnerID, jobID, folderKey, name string) (*model.FolderMeta, error) {
	if _, err := f.GetJob(ctx, partnerID, jobID); err != nil {
		return nil, err
	}
	return f.FolderUC.UpdateFolderName(ctx, jobID, folderKey, name)
}

func (f *StorageFacade) UpdateFolderVisibility(ctx context.Context, partnerID, jobID, folderKey string, visible bool) (*model.FolderMeta, error) {
	if _, err := f.GetJob(ctx, partnerID, jobID); err != nil {
		return nil, err
	}
	return f.FolderUC.UpdateFolderVisibility(ctx, jobID, folderKey, visible)
}

func (f *StorageFacade) UpdateFolderOrder(ctx context.Context, partnerID, jobID, folderKey string, displayOrder int) (*model.FolderMeta, error) {
	if _, err := f.GetJob(ctx, partnerID, jobID); err != nil {
		return nil, err
	}
	return f.FolderUC.UpdateFolderOrder(ctx, jobID, folderKey, displayOrder)
}

// ---- audit ----

func (f *StorageFacade) RecentActivity(ctx context.Context, limit int) ([]*model.AuditEntry, error) {
	return f.Audit.ListRecent(ctx, limit)
}

func (f *StorageFacade) checkTenant(callerPartner, recordPartner string) error {
	if callerPartner != "" && callerPartner != recordPartner {
		return fmt.Errorf("%w: record belongs to partner %s", domain.ErrTenantMismatch, recordPartner)
	}
	return nil
}
