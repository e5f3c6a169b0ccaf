package application

import (
	"time"

	"github.com/rs/zerolog"

	"media-production-workflow/internal/domain/ports/repository"
	"media-production-workflow/internal/usecase"
)

// Wire builds the facade over one storage backend. Both binaries and
// the tests go through here so the composition never drifts.
func Wire(store repository.Store, locker usecase.Locker, reservationTTL time.Duration, logger *zerolog.Logger) *StorageFacade {
	integrityUC := usecase.NewIntegrityUseCase(
		store.Jobs, store.Orders, store.Customers, store.Services, store.Uploads, store.Audit, logger,
	)
	allocUC := usecase.NewAllocatorUseCase(store.Counters, store.Reservations, store.TM, reservationTTL, logger)
	jobUC := usecase.NewJobUseCase(store.Jobs, store.Audit, integrityUC, logger)
	orderUC := usecase.NewOrderUseCase(store.Orders, store.Jobs, allocUC, integrityUC, store.Audit, logger)
	folderUC := usecase.NewFolderUseCase(store.Folders, store.Uploads, store.Orders, integrityUC, locker, logger)

	return NewStorageFacade(jobUC, orderUC, allocUC, integrityUC, folderUC, store.Audit)
}
