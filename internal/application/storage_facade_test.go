package application

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"

	"media-production-workflow/internal/domain"
	"media-production-workflow/internal/domain/model"
	"media-production-workflow/internal/infra/db/memory"
)

func newTestFacade(t *testing.T) *StorageFacade {
	t.Helper()
	logger := zerolog.Nop()
	store, err := memory.Open("", &logger)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	return Wire(store.Repositories(), nil, 0, &logger)
}

func TestFacade_JobAndOrderFlow(t *testing.T) {
	t.Parallel()

	f := newTestFacade(t)
	ctx := context.Background()

	job, err := f.CreateJob(ctx, "partner-1", &model.Job{})
	if err != nil {
		t.Fatalf("CreateJob: %v", err)
	}
	order, err := f.CreateOrder(ctx, "partner-1", &model.Order{JobID: job.ID}, "")
	if err != nil {
		t.Fatalf("CreateOrder: %v", err)
	}
	if order.OrderNumber != "#00001" {
		t.Fatalf("expected #00001, got %s", order.OrderNumber)
	}

	got, err := f.GetJobByPublicID(ctx, "partner-1", job.PublicID)
	if err != nil {
		t.Fatalf("GetJobByPublicID: %v", err)
	}
	if got.ID != job.ID {
		t.Fatalf("public id resolved to %s, want %s", got.ID, job.ID)
	}

	report, err := f.PerformHealthCheck(ctx, "partner-1")
	if err != nil {
		t.Fatalf("PerformHealthCheck: %v", err)
	}
	if !report.IsHealthy {
		t.Fatalf("fresh dataset must be healthy: %+v", report)
	}
}

func TestFacade_EnforcesTenantOnReads(t *testing.T) {
	t.Parallel()

	f := newTestFacade(t)
	ctx := context.Background()

	job, err := f.CreateJob(ctx, "partner-1", &model.Job{})
	if err != nil {
		t.Fatalf("CreateJob: %v", err)
	}

	if _, err := f.GetJob(ctx, "partner-2", job.ID); !errors.Is(err, domain.ErrTenantMismatch) {
		t.Fatalf("expected ErrTenantMismatch, got %v", err)
	}
	if _, err := f.GetUploadFolders(ctx, "partner-2", job.ID); !errors.Is(err, domain.ErrTenantMismatch) {
		t.Fatalf("expected ErrTenantMismatch for folders, got %v", err)
	}
}

func TestFacade_RejectsCrossTenantCreate(t *testing.T) {
	t.Parallel()

	f := newTestFacade(t)
	ctx := context.Background()

	if _, err := f.CreateJob(ctx, "partner-1", &model.Job{PartnerID: "partner-2"}); !errors.Is(err, domain.ErrTenantMismatch) {
		t.Fatalf("expected ErrTenantMismatch, got %v", err)
	}

	job, err := f.CreateJob(ctx, "partner-2", &model.Job{})
	if err != nil {
		t.Fatalf("CreateJob: %v", err)
	}
	if _, err := f.CreateOrder(ctx, "partner-1", &model.Order{JobID: job.ID}, ""); !errors.Is(err, domain.ErrTenantMismatch) {
		t.Fatalf("expected ErrTenantMismatch for cross-tenant order, got %v", err)
	}
}

func TestFacade_RegisterUpload(t *testing.T) {
	t.Parallel()

	f := newTestFacade(t)
	ctx := context.Background()

	job, err := f.CreateJob(ctx, "partner-1", &model.Job{})
	if err != nil {
		t.Fatalf("CreateJob: %v", err)
	}

	up, err := f.RegisterUpload(ctx, "partner-1", &model.EditorUpload{
		JobID:      job.ID,
		FolderPath: "final",
		StorageKey: "blobs/final/a.jpg",
	})
	if err != nil {
		t.Fatalf("RegisterUpload: %v", err)
	}
	if up.ID == "" || up.Status != model.UploadStatusForEditing {
		t.Fatalf("upload not initialized: %+v", up)
	}

	// Another partner cannot attach uploads to this job.
	if _, err := f.RegisterUpload(ctx, "partner-2", &model.EditorUpload{JobID: job.ID, FolderPath: "x"}); !errors.Is(err, domain.ErrTenantMismatch) {
		t.Fatalf("expected ErrTenantMismatch, got %v", err)
	}
	// A dangling order reference never reaches the store.
	if _, err := f.RegisterUpload(ctx, "partner-1", &model.EditorUpload{JobID: job.ID, OrderID: "ghost", FolderPath: "x"}); !errors.Is(err, domain.ErrInvalidArgument) {
		t.Fatalf("expected ErrInvalidArgument, got %v", err)
	}

	folders, err := f.GetUploadFolders(ctx, "partner-1", job.ID)
	if err != nil {
		t.Fatalf("GetUploadFolders: %v", err)
	}
	if len(folders) != 1 || len(folders[0].Files) != 1 {
		t.Fatalf("expected one folder with one file, got %+v", folders)
	}
}

func TestFacade_FolderMutationsFlow(t *testing.T) {
	t.Parallel()

	f := newTestFacade(t)
	ctx := context.Background()

	job, err := f.CreateJob(ctx, "partner-1", &model.Job{})
	if err != nil {
		t.Fatalf("CreateJob: %v", err)
	}
	meta, err := f.CreateFolder(ctx, "partner-1", job.ID, "Selects", "selects", "", "")
	if err != nil {
		t.Fatalf("CreateFolder: %v", err)
	}
	if _, err := f.UpdateFolderVisibility(ctx, "partner-1", job.ID, "meta:"+meta.Key, false); err != nil {
		t.Fatalf("UpdateFolderVisibility: %v", err)
	}

	folders, err := f.GetUploadFolders(ctx, "partner-1", job.ID)
	if err != nil {
		t.Fatalf("GetUploadFolders: %v", err)
	}
	if len(folders) != 1 || folders[0].IsVisible {
		t.Fatalf("expected one hidden folder, got %+v", folders)
	}
}
