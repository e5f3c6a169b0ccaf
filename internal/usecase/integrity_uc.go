package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"media-production-workflow/internal/domain"
	"media-production-workflow/internal/domain/model"
	"media-production-workflow/internal/domain/ports/repository"
	"media-production-workflow/internal/infra/logging"
	"media-production-workflow/internal/infra/metrics"
)

// ValidationResult is the outcome of a preventive pre-create check.
// Callers must not let the create reach the store when Valid is false.
type ValidationResult struct {
	Valid  bool
	Errors []string
}

// JobConnections summarizes what a job is wired to.
type JobConnections struct {
	OrderIDs   []string
	UploadIDs  []string
	CustomerID string
}

// IntegrityReport is the outcome of a single-entity integrity traversal.
// Dirty data is never an error: it is reported in Issues and stays
// recoverable via the repair path.
type IntegrityReport struct {
	IsValid     bool
	Issues      []string
	Connections JobConnections
}

// HealthReport is the outcome of a full referential scan.
type HealthReport struct {
	IsHealthy       bool
	OrphanedJobs    []string // jobs with no orders
	OrphanedOrders  []string // orders with a dangling job or customer reference
	OrphanedUploads []string // uploads with a dangling job or order reference
	CheckedJobs     int
	CheckedOrders   int
	CheckedUploads  int
}

// IntegrityUseCase traverses the job/order/customer/upload reference
// graph: it validates single entities, scans the whole tenant for
// orphans, guards creates, and re-links orphaned orders.
type IntegrityUseCase struct {
	jobs      repository.JobRepository
	orders    repository.OrderRepository
	customers repository.CustomerRepository
	services  repository.ServiceOfferingRepository
	uploads   repository.UploadRepository
	audit     repository.AuditLogRepository
	log       *zerolog.Logger
}

func NewIntegrityUseCase(
	jobs repository.JobRepository,
	orders repository.OrderRepository,
	customers repository.CustomerRepository,
	services repository.ServiceOfferingRepository,
	uploads repository.UploadRepository,
	audit repository.AuditLogRepository,
	logger *zerolog.Logger,
) *IntegrityUseCase {
	return &IntegrityUseCase{
		jobs:      jobs,
		orders:    orders,
		customers: customers,
		services:  services,
		uploads:   uploads,
		audit:     audit,
		log:       logger,
	}
}

// ValidateJobIntegrity confirms the job exists, its public id
// round-trips, its customer (if any) belongs to the same partner, at
// least one order references it, and every upload referencing it points
// at one of those orders.
func (uc *IntegrityUseCase) ValidateJobIntegrity(ctx context.Context, jobID string) (*IntegrityReport, error) {
	report := &IntegrityReport{IsValid: true}

	job, err := uc.jobs.FindByID(ctx, repository.NoTX, jobID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			report.IsValid = false
			report.Issues = append(report.Issues, fmt.Sprintf("job %s not found", jobID))
			metrics.AddIntegrityIssues(len(report.Issues))
			return report, nil
		}
		return nil, fmt.Errorf("load job %s: %w", jobID, err)
	}

	if job.PublicID == "" {
		report.Issues = append(report.Issues, "job has no public id")
	} else {
		byPublic, err := uc.jobs.FindByPublicID(ctx, repository.NoTX, job.PartnerID, job.PublicID)
		switch {
		case errors.Is(err, domain.ErrNotFound):
			report.Issues = append(report.Issues, fmt.Sprintf("public id %s does not resolve", job.PublicID))
		case err != nil:
			return nil, fmt.Errorf("resolve public id %s: %w", job.PublicID, err)
		case byPublic.ID != job.ID:
			report.Issues = append(report.Issues, fmt.Sprintf("public id %s resolves to a different job %s", job.PublicID, byPublic.ID))
		}
	}

	if job.CustomerID != "" {
		report.Connections.CustomerID = job.CustomerID
		customer, err := uc.customers.FindByID(ctx, repository.NoTX, job.CustomerID)
		switch {
		case errors.Is(err, domain.ErrNotFound):
			report.Issues = append(report.Issues, fmt.Sprintf("customer %s not found", job.CustomerID))
		case err != nil:
			return nil, fmt.Errorf("load customer %s: %w", job.CustomerID, err)
		case customer.PartnerID != job.PartnerID:
			report.Issues = append(report.Issues, fmt.Sprintf("customer %s belongs to partner %s, job to %s", customer.ID, customer.PartnerID, job.PartnerID))
		}
	}

	orders, err := uc.orders.ListByJob(ctx, repository.NoTX, job.ID)
	if err != nil {
		return nil, fmt.Errorf("list orders for job %s: %w", job.ID, err)
	}
	orderSet := make(map[string]struct{}, len(orders))
	for _, o := range orders {
		orderSet[o.ID] = struct{}{}
		report.Connections.OrderIDs = append(report.Connections.OrderIDs, o.ID)
	}
	if len(orders) == 0 {
		report.Issues = append(report.Issues, "no orders reference this job")
	}

	uploads, err := uc.uploads.ListByJob(ctx, repository.NoTX, job.ID)
	if err != nil {
		return nil, fmt.Errorf("list uploads for job %s: %w", job.ID, err)
	}
	for _, u := range uploads {
		report.Connections.UploadIDs = append(report.Connections.UploadIDs, u.ID)
		if u.OrderID == "" {
			continue
		}
		if _, ok := orderSet[u.OrderID]; !ok {
			report.Issues = append(report.Issues, fmt.Sprintf("upload %s references order %s which does not belong to this job", u.ID, u.OrderID))
		}
	}

	report.IsValid = len(report.Issues) == 0
	metrics.AddIntegrityIssues(len(report.Issues))
	return report, nil
}

// ValidateOrderIntegrity confirms the referenced job and customer exist
// and share tenant/customer identity with the order, and that every
// service line references a real offering.
func (uc *IntegrityUseCase) ValidateOrderIntegrity(ctx context.Context, orderID string) (*IntegrityReport, error) {
	report := &IntegrityReport{IsValid: true}

	order, err := uc.orders.FindByID(ctx, repository.NoTX, orderID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			report.IsValid = false
			report.Issues = append(report.Issues, fmt.Sprintf("order %s not found", orderID))
			metrics.AddIntegrityIssues(len(report.Issues))
			return report, nil
		}
		return nil, fmt.Errorf("load order %s: %w", orderID, err)
	}

	job, err := uc.jobs.FindByID(ctx, repository.NoTX, order.JobID)
	switch {
	case errors.Is(err, domain.ErrNotFound):
		report.Issues = append(report.Issues, fmt.Sprintf("job %s not found", order.JobID))
	case err != nil:
		return nil, fmt.Errorf("load job %s: %w", order.JobID, err)
	default:
		if job.PartnerID != order.PartnerID {
			report.Issues = append(report.Issues, fmt.Sprintf("order partner %s does not match job partner %s", order.PartnerID, job.PartnerID))
		}
		if job.CustomerID != order.CustomerID {
			report.Issues = append(report.Issues, fmt.Sprintf("order customer %q does not match job customer %q", order.CustomerID, job.CustomerID))
		}
	}

	if order.CustomerID != "" {
		customer, err := uc.customers.FindByID(ctx, repository.NoTX, order.CustomerID)
		switch {
		case errors.Is(err, domain.ErrNotFound):
			report.Issues = append(report.Issues, fmt.Sprintf("customer %s not found", order.CustomerID))
		case err != nil:
			return nil, fmt.Errorf("load customer %s: %w", order.CustomerID, err)
		case customer.PartnerID != order.PartnerID:
			report.Issues = append(report.Issues, fmt.Sprintf("customer %s belongs to partner %s, order to %s", customer.ID, customer.PartnerID, order.PartnerID))
		}
	}

	for _, line := range order.Services {
		svc, err := uc.services.FindByID(ctx, repository.NoTX, line.ServiceID)
		switch {
		case errors.Is(err, domain.ErrNotFound):
			report.Issues = append(report.Issues, fmt.Sprintf("service line references missing offering %s", line.ServiceID))
		case err != nil:
			return nil, fmt.Errorf("load service %s: %w", line.ServiceID, err)
		case svc.PartnerID != order.PartnerID:
			report.Issues = append(report.Issues, fmt.Sprintf("offering %s belongs to partner %s, order to %s", svc.ID, svc.PartnerID, order.PartnerID))
		}
	}

	report.IsValid = len(report.Issues) == 0
	metrics.AddIntegrityIssues(len(report.Issues))
	return report, nil
}

// ValidateEditorWorkflowAccess reports whether an editor may act on a
// job: there must be an order for that job assigned to the editor in an
// actionable status (processing or in_progress).
func (uc *IntegrityUseCase) ValidateEditorWorkflowAccess(ctx context.Context, editorID, jobID string) (bool, error) {
	orders, err := uc.orders.ListByJob(ctx, repository.NoTX, jobID)
	if err != nil {
		return false, fmt.Errorf("list orders for job %s: %w", jobID, err)
	}
	for _, o := range orders {
		if o.AssignedTo != editorID {
			continue
		}
		if o.Status == model.OrderStatusProcessing || o.Status == model.OrderStatusInProgress {
			return true, nil
		}
	}
	return false, nil
}

// PerformHealthCheck scans the whole reference graph and reports orphans.
// partnerID narrows which records are REPORTED; reference resolution
// always runs against the full dataset so cross-tenant danglers are not
// mistaken for orphans. Uploads whose job and order both fail to resolve
// cannot be attributed to a tenant and only show up in the global scan.
func (uc *IntegrityUseCase) PerformHealthCheck(ctx context.Context, partnerID string) (*HealthReport, error) {
	defer logging.TraceDuration(uc.log, "IntegrityUC.PerformHealthCheck")()

	jobs, err := uc.jobs.List(ctx, repository.NoTX, "")
	if err != nil {
		return nil, fmt.Errorf("list jobs: %w", err)
	}
	orders, err := uc.orders.List(ctx, repository.NoTX, "")
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	customers, err := uc.customers.List(ctx, repository.NoTX, "")
	if err != nil {
		return nil, fmt.Errorf("list customers: %w", err)
	}
	uploads, err := uc.uploads.ListAll(ctx, repository.NoTX)
	if err != nil {
		return nil, fmt.Errorf("list uploads: %w", err)
	}

	jobByID := make(map[string]*model.Job, len(jobs))
	for _, j := range jobs {
		jobByID[j.ID] = j
	}
	orderByID := make(map[string]*model.Order, len(orders))
	ordersPerJob := make(map[string]int, len(jobs))
	for _, o := range orders {
		orderByID[o.ID] = o
		ordersPerJob[o.JobID]++
	}
	customerByID := make(map[string]*model.Customer, len(customers))
	for _, c := range customers {
		customerByID[c.ID] = c
	}

	report := &HealthReport{}

	for _, j := range jobs {
		if partnerID != "" && j.PartnerID != partnerID {
			continue
		}
		report.CheckedJobs++
		if ordersPerJob[j.ID] == 0 {
			report.OrphanedJobs = append(report.OrphanedJobs, j.ID)
		}
	}

	for _, o := range orders {
		if partnerID != "" && o.PartnerID != partnerID {
			continue
		}
		report.CheckedOrders++
		if _, ok := jobByID[o.JobID]; !ok {
			report.OrphanedOrders = append(report.OrphanedOrders, o.ID)
			continue
		}
		if o.CustomerID != "" {
			if _, ok := customerByID[o.CustomerID]; !ok {
				report.OrphanedOrders = append(report.OrphanedOrders, o.ID)
			}
		}
	}

	for _, u := range uploads {
		owner, jobKnown := jobByID[u.JobID]
		if partnerID != "" {
			if !jobKnown || owner.PartnerID != partnerID {
				continue
			}
		}
		report.CheckedUploads++
		if !jobKnown {
			report.OrphanedUploads = append(report.OrphanedUploads, u.ID)
			continue
		}
		if u.OrderID != "" {
			if _, ok := orderByID[u.OrderID]; !ok {
				report.OrphanedUploads = append(report.OrphanedUploads, u.ID)
			}
		}
	}

	report.IsHealthy = len(report.OrphanedJobs) == 0 &&
		len(report.OrphanedOrders) == 0 &&
		len(report.OrphanedUploads) == 0
	issues := len(report.OrphanedJobs) + len(report.OrphanedOrders) + len(report.OrphanedUploads)
	metrics.ObserveHealthCheck(report.IsHealthy, issues)
	uc.log.Info().
		Bool("healthy", report.IsHealthy).
		Int("orphaned_jobs", len(report.OrphanedJobs)).
		Int("orphaned_orders", len(report.OrphanedOrders)).
		Int("orphaned_uploads", len(report.OrphanedUploads)).
		Msg("health check complete")
	return report, nil
}

// RepairOrphanedOrder re-points an order at the correct job and copies
// that job's partner/customer onto the order. The repair is recorded in
// the audit log with the before/after job ids.
func (uc *IntegrityUseCase) RepairOrphanedOrder(ctx context.Context, orderID, correctJobID string) (*model.Order, error) {
	order, err := uc.orders.FindByID(ctx, repository.NoTX, orderID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("%w: order %s does not exist", domain.ErrNotFound, orderID)
		}
		return nil, fmt.Errorf("load order %s: %w", orderID, err)
	}
	job, err := uc.jobs.FindByID(ctx, repository.NoTX, correctJobID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("%w: target job %s does not exist", domain.ErrNotFound, correctJobID)
		}
		return nil, fmt.Errorf("load job %s: %w", correctJobID, err)
	}

	before := order.JobID
	order.JobID = job.ID
	order.CustomerID = job.CustomerID
	order.PartnerID = job.PartnerID
	order.UpdatedAt = time.Now().UTC()
	if err := uc.orders.Save(ctx, repository.NoTX, order); err != nil {
		return nil, fmt.Errorf("save repaired order %s: %w", orderID, err)
	}

	uc.recordAudit(ctx, &model.AuditEntry{
		Action:      "repair_orphaned_order",
		Category:    "integrity",
		Title:       "Order re-linked",
		Description: fmt.Sprintf("order %s moved from job %s to job %s", order.ID, before, job.ID),
		Metadata:    fmt.Sprintf(`{"order_id":%q,"job_before":%q,"job_after":%q}`, order.ID, before, job.ID),
	})
	metrics.IncOrderRepair()
	uc.log.Info().Str("order_id", order.ID).Str("job_before", before).Str("job_after", job.ID).Msg("orphaned order repaired")
	return order, nil
}

// ---- preventive pre-create checks ----

// ValidateJobCreation runs before a job create is allowed to reach the
// store: required fields, tenant match of the referenced customer, and
// public id uniqueness within the partner.
func (uc *IntegrityUseCase) ValidateJobCreation(ctx context.Context, job *model.Job) (*ValidationResult, error) {
	res := &ValidationResult{Valid: true}
	if job.PartnerID == "" {
		res.Errors = append(res.Errors, "partner id is required")
	}
	if job.CustomerID != "" && job.PartnerID != "" {
		customer, err := uc.customers.FindByID(ctx, repository.NoTX, job.CustomerID)
		switch {
		case errors.Is(err, domain.ErrNotFound):
			res.Errors = append(res.Errors, fmt.Sprintf("customer %s does not exist", job.CustomerID))
		case err != nil:
			return nil, fmt.Errorf("load customer %s: %w", job.CustomerID, err)
		case customer.PartnerID != job.PartnerID:
			res.Errors = append(res.Errors, fmt.Sprintf("customer %s belongs to a different partner", job.CustomerID))
		}
	}
	if job.PublicID != "" && job.PartnerID != "" {
		existing, err := uc.jobs.FindByPublicID(ctx, repository.NoTX, job.PartnerID, job.PublicID)
		switch {
		case err == nil && existing.ID != job.ID:
			res.Errors = append(res.Errors, fmt.Sprintf("public id %s is already taken", job.PublicID))
		case err != nil && !errors.Is(err, domain.ErrNotFound):
			return nil, fmt.Errorf("check public id %s: %w", job.PublicID, err)
		}
	}
	res.Valid = len(res.Errors) == 0
	return res, nil
}

// ValidateOrderCreation checks the referenced job exists and that
// partner/customer identity and service lines are consistent.
func (uc *IntegrityUseCase) ValidateOrderCreation(ctx context.Context, order *model.Order) (*ValidationResult, error) {
	res := &ValidationResult{Valid: true}
	if order.JobID == "" {
		res.Errors = append(res.Errors, "job id is required")
		res.Valid = false
		return res, nil
	}
	job, err := uc.jobs.FindByID(ctx, repository.NoTX, order.JobID)
	switch {
	case errors.Is(err, domain.ErrNotFound):
		res.Errors = append(res.Errors, fmt.Sprintf("job %s does not exist", order.JobID))
		res.Valid = false
		return res, nil
	case err != nil:
		return nil, fmt.Errorf("load job %s: %w", order.JobID, err)
	}
	if order.PartnerID != "" && order.PartnerID != job.PartnerID {
		res.Errors = append(res.Errors, "order partner does not match job partner")
	}
	if order.CustomerID != "" && order.CustomerID != job.CustomerID {
		res.Errors = append(res.Errors, "order customer does not match job customer")
	}
	for _, line := range order.Services {
		svc, err := uc.services.FindByID(ctx, repository.NoTX, line.ServiceID)
		switch {
		case errors.Is(err, domain.ErrNotFound):
			res.Errors = append(res.Errors, fmt.Sprintf("service offering %s does not exist", line.ServiceID))
		case err != nil:
			return nil, fmt.Errorf("load service %s: %w", line.ServiceID, err)
		case svc.PartnerID != job.PartnerID:
			res.Errors = append(res.Errors, fmt.Sprintf("service offering %s belongs to a different partner", line.ServiceID))
		}
	}
	res.Valid = len(res.Errors) == 0
	return res, nil
}

// ValidateEditorUpload checks an upload's references before it is stored.
func (uc *IntegrityUseCase) ValidateEditorUpload(ctx context.Context, upload *model.EditorUpload) (*ValidationResult, error) {
	res := &ValidationResult{Valid: true}
	if upload.JobID == "" {
		res.Errors = append(res.Errors, "job id is required")
		res.Valid = false
		return res, nil
	}
	if _, err := uc.jobs.FindByID(ctx, repository.NoTX, upload.JobID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			res.Errors = append(res.Errors, fmt.Sprintf("job %s does not exist", upload.JobID))
			res.Valid = false
			return res, nil
		}
		return nil, fmt.Errorf("load job %s: %w", upload.JobID, err)
	}
	if upload.OrderID != "" {
		order, err := uc.orders.FindByID(ctx, repository.NoTX, upload.OrderID)
		switch {
		case errors.Is(err, domain.ErrNotFound):
			res.Errors = append(res.Errors, fmt.Sprintf("order %s does not exist", upload.OrderID))
		case err != nil:
			return nil, fmt.Errorf("load order %s: %w", upload.OrderID, err)
		case order.JobID != upload.JobID:
			res.Errors = append(res.Errors, fmt.Sprintf("order %s belongs to job %s, not %s", order.ID, order.JobID, upload.JobID))
		}
	}
	res.Valid = len(res.Errors) == 0
	return res, nil
}

func (uc *IntegrityUseCase) recordAudit(ctx context.Context, entry *model.AuditEntry) {
	if err := uc.audit.Record(ctx, entry); err != nil {
		uc.log.Warn().Err(err).Str("action", entry.Action).Msg("audit record failed")
	}
}
