// Package memory is the snapshot-file storage backend: a process-local
// store holding everything in maps, persisted synchronously to a single
// versioned JSON file after every mutation. It exists for single-node
// deployments and local development; the Postgres backend is the
// multi-process option.
package memory

import (
	"sync"
	"time"

	"github.com/rs/zerolog"

	"media-production-workflow/internal/domain/model"
	"media-production-workflow/internal/domain/ports/repository"
	"media-production-workflow/internal/infra/metrics"
)

// Store owns all in-memory state. mu guards the maps; txMu serializes
// WithTx blocks and is never taken while mu is held, so repository calls
// made inside a transaction do not deadlock.
type Store struct {
	mu   sync.RWMutex
	txMu sync.Mutex

	jobs         map[string]*model.Job
	orders       map[string]*model.Order
	customers    map[string]*model.Customer
	services     map[string]*model.ServiceOffering
	uploads      map[string]*model.EditorUpload
	reservations map[string]*model.OrderReservation // keyed by order number
	counters     map[string]int64
	folders      map[string]*model.FolderMeta
	audit        []*model.AuditEntry

	path string // empty = no persistence
	log  *zerolog.Logger
}

// Open loads the snapshot at path (if it exists) and returns a ready
// store. An empty path disables persistence, which is what the tests use.
func Open(path string, logger *zerolog.Logger) (*Store, error) {
	s := &Store{
		jobs:         make(map[string]*model.Job),
		orders:       make(map[string]*model.Order),
		customers:    make(map[string]*model.Customer),
		services:     make(map[string]*model.ServiceOffering),
		uploads:      make(map[string]*model.EditorUpload),
		reservations: make(map[string]*model.OrderReservation),
		counters:     make(map[string]int64),
		folders:      make(map[string]*model.FolderMeta),
		path:         path,
		log:          logger,
	}
	if err := s.load(); err != nil {
		return nil, err
	}
	return s, nil
}

// Repositories bundles the store's repository surface for wiring.
func (s *Store) Repositories() repository.Store {
	return repository.Store{
		Jobs:         &JobRepo{s: s},
		Orders:       &OrderRepo{s: s},
		Customers:    &CustomerRepo{s: s},
		Services:     &ServiceRepo{s: s},
		Uploads:      &UploadRepo{s: s},
		Reservations: &ReservationRepo{s: s},
		Counters:     &CounterRepo{s: s},
		Folders:      &FolderRepo{s: s},
		Audit:        &AuditRepo{s: s},
		TM:           &TxManager{s: s},
	}
}

// mutate runs fn under the write lock and persists the result. Every
// repository write goes through here so no mutation can skip the
// snapshot.
func (s *Store) mutate(op string, fn func() error) error {
	start := time.Now()
	s.mu.Lock()
	err := fn()
	if err == nil {
		err = s.persistLocked()
	}
	s.mu.Unlock()
	metrics.ObserveStoreCall("memory", op, float64(time.Since(start).Microseconds())/1000.0, err == nil)
	return err
}
