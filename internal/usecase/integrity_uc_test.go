package usecase

import (
	"context"
	"strings"
	"testing"

	"media-production-workflow/internal/domain/model"
)

func TestValidateJobIntegrity_HealthyJob(t *testing.T) {
	t.Parallel()

	env := newTestEnv(0)
	ctx := context.Background()
	job := seedJob(t, env, "partner-1", "")
	order := seedOrder(t, env, job.ID, "")
	if err := env.uploads.Save(ctx, nil, &model.EditorUpload{ID: "u1", JobID: job.ID, OrderID: order.ID}); err != nil {
		t.Fatalf("seed upload: %v", err)
	}

	report, err := env.integrityUC.ValidateJobIntegrity(ctx, job.ID)
	if err != nil {
		t.Fatalf("ValidateJobIntegrity: %v", err)
	}
	if !report.IsValid {
		t.Fatalf("expected valid, issues: %v", report.Issues)
	}
	if len(report.Connections.OrderIDs) != 1 || report.Connections.OrderIDs[0] != order.ID {
		t.Fatalf("expected order connection %s, got %v", order.ID, report.Connections.OrderIDs)
	}
	if len(report.Connections.UploadIDs) != 1 || report.Connections.UploadIDs[0] != "u1" {
		t.Fatalf("expected upload connection u1, got %v", report.Connections.UploadIDs)
	}
}

func TestValidateJobIntegrity_ReportsIssuesNotErrors(t *testing.T) {
	t.Parallel()

	env := newTestEnv(0)
	ctx := context.Background()
	job := seedJob(t, env, "partner-1", "")

	// An upload pointing at an order of a different job is dirty data,
	// not a failure.
	if err := env.uploads.Save(ctx, nil, &model.EditorUpload{ID: "u1", JobID: job.ID, OrderID: "foreign-order"}); err != nil {
		t.Fatalf("seed upload: %v", err)
	}

	report, err := env.integrityUC.ValidateJobIntegrity(ctx, job.ID)
	if err != nil {
		t.Fatalf("ValidateJobIntegrity: %v", err)
	}
	if report.IsValid {
		t.Fatal("expected issues")
	}
	var sawNoOrders, sawBadUpload bool
	for _, issue := range report.Issues {
		if strings.Contains(issue, "no orders") {
			sawNoOrders = true
		}
		if strings.Contains(issue, "foreign-order") {
			sawBadUpload = true
		}
	}
	if !sawNoOrders || !sawBadUpload {
		t.Fatalf("missing expected issues, got %v", report.Issues)
	}
}

func TestValidateJobIntegrity_MissingJob(t *testing.T) {
	t.Parallel()

	env := newTestEnv(0)
	report, err := env.integrityUC.ValidateJobIntegrity(context.Background(), "ghost")
	if err != nil {
		t.Fatalf("ValidateJobIntegrity: %v", err)
	}
	if report.IsValid {
		t.Fatal("expected invalid report for missing job")
	}
}

func TestValidateOrderIntegrity_TenantMismatch(t *testing.T) {
	t.Parallel()

	env := newTestEnv(0)
	ctx := context.Background()
	job := seedJob(t, env, "partner-1", "")
	order := seedOrder(t, env, job.ID, "")

	// Corrupt the stored record behind the use case's back.
	order.PartnerID = "partner-2"
	if err := env.orders.Save(ctx, nil, order); err != nil {
		t.Fatalf("corrupt order: %v", err)
	}

	report, err := env.integrityUC.ValidateOrderIntegrity(ctx, order.ID)
	if err != nil {
		t.Fatalf("ValidateOrderIntegrity: %v", err)
	}
	if report.IsValid {
		t.Fatal("expected partner mismatch issue")
	}
}

func TestValidateEditorWorkflowAccess(t *testing.T) {
	t.Parallel()

	env := newTestEnv(0)
	ctx := context.Background()
	job := seedJob(t, env, "partner-1", "")
	order := seedOrder(t, env, job.ID, "")

	ok, err := env.integrityUC.ValidateEditorWorkflowAccess(ctx, "editor-1", job.ID)
	if err != nil {
		t.Fatalf("ValidateEditorWorkflowAccess: %v", err)
	}
	if ok {
		t.Fatal("unassigned editor must not have access")
	}

	if _, err := env.orderUC.Assign(ctx, order.ID, "editor-1"); err != nil {
		t.Fatalf("Assign: %v", err)
	}

	// pending is not actionable.
	ok, err = env.integrityUC.ValidateEditorWorkflowAccess(ctx, "editor-1", job.ID)
	if err != nil {
		t.Fatalf("ValidateEditorWorkflowAccess: %v", err)
	}
	if ok {
		t.Fatal("pending order must not grant access")
	}

	if _, err := env.orderUC.UpdateStatus(ctx, order.ID, model.OrderStatusProcessing); err != nil {
		t.Fatalf("UpdateStatus: %v", err)
	}
	ok, err = env.integrityUC.ValidateEditorWorkflowAccess(ctx, "editor-1", job.ID)
	if err != nil {
		t.Fatalf("ValidateEditorWorkflowAccess: %v", err)
	}
	if !ok {
		t.Fatal("assigned editor with processing order must have access")
	}
}

func TestHealthCheck_RepairRestoresClosure(t *testing.T) {
	t.Parallel()

	env := newTestEnv(0)
	ctx := context.Background()
	job := seedJob(t, env, "partner-1", "")
	order := seedOrder(t, env, job.ID, "")

	// Re-point the order at a job that does not exist.
	order.JobID = "ghost-job"
	if err := env.orders.Save(ctx, nil, order); err != nil {
		t.Fatalf("corrupt order: %v", err)
	}

	report, err := env.integrityUC.PerformHealthCheck(ctx, "partner-1")
	if err != nil {
		t.Fatalf("PerformHealthCheck: %v", err)
	}
	if report.IsHealthy {
		t.Fatal("expected unhealthy report")
	}
	if len(report.OrphanedOrders) != 1 || report.OrphanedOrders[0] != order.ID {
		t.Fatalf("expected orphaned order %s, got %v", order.ID, report.OrphanedOrders)
	}
	// The job lost its only order.
	if len(report.OrphanedJobs) != 1 || report.OrphanedJobs[0] != job.ID {
		t.Fatalf("expected orphaned job %s, got %v", job.ID, report.OrphanedJobs)
	}

	repaired, err := env.integrityUC.RepairOrphanedOrder(ctx, order.ID, job.ID)
	if err != nil {
		t.Fatalf("RepairOrphanedOrder: %v", err)
	}
	if repaired.JobID != job.ID {
		t.Fatalf("order still points at %s", repaired.JobID)
	}
	if repaired.PartnerID != job.PartnerID {
		t.Fatalf("repair must copy the job's partner, got %s", repaired.PartnerID)
	}

	after, err := env.integrityUC.PerformHealthCheck(ctx, "partner-1")
	if err != nil {
		t.Fatalf("PerformHealthCheck after repair: %v", err)
	}
	if !after.IsHealthy {
		t.Fatalf("expected healthy after repair, got jobs=%v orders=%v uploads=%v",
			after.OrphanedJobs, after.OrphanedOrders, after.OrphanedUploads)
	}

	repairs := env.audit.byAction("repair_orphaned_order")
	if len(repairs) != 1 {
		t.Fatalf("expected 1 repair audit record, got %d", len(repairs))
	}
	if !strings.Contains(repairs[0].Metadata, "ghost-job") {
		t.Fatalf("repair metadata must record the previous job, got %s", repairs[0].Metadata)
	}
}

func TestHealthCheck_ScopedToPartner(t *testing.T) {
	t.Parallel()

	env := newTestEnv(0)
	ctx := context.Background()

	// partner-1 is clean; partner-2 carries a jobless order.
	job := seedJob(t, env, "partner-1", "")
	seedOrder(t, env, job.ID, "")
	if err := env.orders.Save(ctx, nil, &model.Order{ID: "o-bad", JobID: "ghost", PartnerID: "partner-2"}); err != nil {
		t.Fatalf("seed foreign order: %v", err)
	}

	report, err := env.integrityUC.PerformHealthCheck(ctx, "partner-1")
	if err != nil {
		t.Fatalf("PerformHealthCheck: %v", err)
	}
	if !report.IsHealthy {
		t.Fatalf("partner-1 scan must not see partner-2's orphan: %v", report.OrphanedOrders)
	}

	global, err := env.integrityUC.PerformHealthCheck(ctx, "")
	if err != nil {
		t.Fatalf("global PerformHealthCheck: %v", err)
	}
	if global.IsHealthy {
		t.Fatal("global scan must surface the orphan")
	}
}

func TestHealthCheck_OrphanedUpload(t *testing.T) {
	t.Parallel()

	env := newTestEnv(0)
	ctx := context.Background()
	job := seedJob(t, env, "partner-1", "")
	seedOrder(t, env, job.ID, "")
	if err := env.uploads.Save(ctx, nil, &model.EditorUpload{ID: "u1", JobID: job.ID, OrderID: "missing-order"}); err != nil {
		t.Fatalf("seed upload: %v", err)
	}

	report, err := env.integrityUC.PerformHealthCheck(ctx, "partner-1")
	if err != nil {
		t.Fatalf("PerformHealthCheck: %v", err)
	}
	if report.IsHealthy {
		t.Fatal("expected unhealthy report")
	}
	if len(report.OrphanedUploads) != 1 || report.OrphanedUploads[0] != "u1" {
		t.Fatalf("expected orphaned upload u1, got %v", report.OrphanedUploads)
	}
}
