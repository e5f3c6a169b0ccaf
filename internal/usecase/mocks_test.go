// In-memory repository fakes used by the usecase unit tests.
package usecase

import (
	"context"
	"sync"
	"time"

	"github.com/jackc/pgx/v4"
	"github.com/rs/zerolog"

	"media-production-workflow/internal/domain"
	"media-production-workflow/internal/domain/model"
	"media-production-workflow/internal/domain/ports/repository"
)

// memTxManager serializes "transactions" behind one mutex and passes a
// nil handle, matching the snapshot backend's contract.
type memTxManager struct{ mu sync.Mutex }

func (m *memTxManager) WithTx(ctx context.Context, _ pgx.TxOptions, fn func(ctx context.Context, tx repository.Tx) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return fn(ctx, nil)
}

type memCounterRepo struct {
	mu     sync.Mutex
	values map[string]int64
}

func newMemCounterRepo() *memCounterRepo {
	return &memCounterRepo{values: make(map[string]int64)}
}

func (m *memCounterRepo) Next(ctx context.Context, _ repository.Tx, name string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[name]++
	return m.values[name], nil
}

func (m *memCounterRepo) Current(ctx context.Context, _ repository.Tx, name string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.values[name], nil
}

type memReservationRepo struct {
	mu    sync.RWMutex
	store map[string]*model.OrderReservation
}

func newMemReservationRepo() *memReservationRepo {
	return &memReservationRepo{store: make(map[string]*model.OrderReservation)}
}

func (m *memReservationRepo) Save(ctx context.Context, _ repository.Tx, res *model.OrderReservation) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *res
	m.store[res.OrderNumber] = &cp
	return nil
}

func (m *memReservationRepo) FindByNumber(ctx context.Context, _ repository.Tx, orderNumber string) (*model.OrderReservation, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	r, ok := m.store[orderNumber]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *r
	return &cp, nil
}

func (m *memReservationRepo) UpdateStatusCAS(ctx context.Context, _ repository.Tx, orderNumber string, from, to model.ReservationStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.store[orderNumber]
	if !ok {
		return domain.ErrNotFound
	}
	if r.Status != from {
		return domain.ErrStatusConflict
	}
	r.Status = to
	return nil
}

func (m *memReservationRepo) ListReservedBefore(ctx context.Context, _ repository.Tx, cutoff time.Time) ([]*model.OrderReservation, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*model.OrderReservation
	for _, r := range m.store {
		if r.Status == model.ReservationStatusReserved && !r.ExpiresAt.After(cutoff) {
			cp := *r
			out = append(out, &cp)
		}
	}
	return out, nil
}

type memJobRepo struct {
	mu      sync.RWMutex
	store   map[string]*model.Job
	saveErr error // used by tests to simulate save failures
}

func newMemJobRepo() *memJobRepo { return &memJobRepo{store: make(map[string]*model.Job)} }

func (m *memJobRepo) Save(ctx context.Context, _ repository.Tx, job *model.Job) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *job
	m.store[job.ID] = &cp
	return nil
}

func (m *memJobRepo) FindByID(ctx context.Context, _ repository.Tx, id string) (*model.Job, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	j, ok := m.store[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *j
	return &cp, nil
}

func (m *memJobRepo) FindByPublicID(ctx context.Context, _ repository.Tx, partnerID, publicID string) (*model.Job, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, j := range m.store {
		if j.PartnerID == partnerID && j.PublicID == publicID {
			cp := *j
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *memJobRepo) List(ctx context.Context, _ repository.Tx, partnerID string) ([]*model.Job, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*model.Job
	for _, j := range m.store {
		if partnerID == "" || j.PartnerID == partnerID {
			cp := *j
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (m *memJobRepo) UpdateStatusCAS(ctx context.Context, _ repository.Tx, id string, from, to model.JobStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	j, ok := m.store[id]
	if !ok {
		return domain.ErrNotFound
	}
	if j.Status != from {
		return domain.ErrStatusConflict
	}
	j.Status = to
	j.UpdatedAt = time.Now().UTC()
	return nil
}

type memOrderRepo struct {
	mu    sync.RWMutex
	store map[string]*model.Order
}

func newMemOrderRepo() *memOrderRepo { return &memOrderRepo{store: make(map[string]*model.Order)} }

func (m *memOrderRepo) Save(ctx context.Context, _ repository.Tx, order *model.Order) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if order.OrderNumber != "" {
		for id, o := range m.store {
			if id != order.ID && o.OrderNumber == order.OrderNumber {
				return domain.ErrAlreadyExists
			}
		}
	}
	cp := *order
	m.store[order.ID] = &cp
	return nil
}

func (m *memOrderRepo) FindByID(ctx context.Context, _ repository.Tx, id string) (*model.Order, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	o, ok := m.store[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *o
	return &cp, nil
}

func (m *memOrderRepo) ListByJob(ctx context.Context, _ repository.Tx, jobID string) ([]*model.Order, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*model.Order
	for _, o := range m.store {
		if o.JobID == jobID {
			cp := *o
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (m *memOrderRepo) List(ctx context.Context, _ repository.Tx, partnerID string) ([]*model.Order, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*model.Order
	for _, o := range m.store {
		if partnerID == "" || o.PartnerID == partnerID {
			cp := *o
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (m *memOrderRepo) UpdateStatusCAS(ctx context.Context, _ repository.Tx, id string, from, to model.OrderStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.store[id]
	if !ok {
		return domain.ErrNotFound
	}
	if o.Status != from {
		return domain.ErrStatusConflict
	}
	o.Status = to
	o.UpdatedAt = time.Now().UTC()
	return nil
}

type memCustomerRepo struct {
	mu    sync.RWMutex
	store map[string]*model.Customer
}

func newMemCustomerRepo() *memCustomerRepo {
	return &memCustomerRepo{store: make(map[string]*model.Customer)}
}

func (m *memCustomerRepo) Save(ctx context.Context, _ repository.Tx, c *model.Customer) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *c
	m.store[c.ID] = &cp
	return nil
}

func (m *memCustomerRepo) FindByID(ctx context.Context, _ repository.Tx, id string) (*model.Customer, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	c, ok := m.store[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *c
	return &cp, nil
}

func (m *memCustomerRepo) List(ctx context.Context, _ repository.Tx, partnerID string) ([]*model.Customer, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*model.Customer
	for _, c := range m.store {
		if partnerID == "" || c.PartnerID == partnerID {
			cp := *c
			out = append(out, &cp)
		}
	}
	return out, nil
}

type memServiceRepo struct {
	mu    sync.RWMutex
	store map[string]*model.ServiceOffering
}

func newMemServiceRepo() *memServiceRepo {
	return &memServiceRepo{store: make(map[string]*model.ServiceOffering)}
}

func (m *memServiceRepo) Save(ctx context.Context, _ repository.Tx, s *model.ServiceOffering) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *s
	m.store[s.ID] = &cp
	return nil
}

func (m *memServiceRepo) FindByID(ctx context.Context, _ repository.Tx, id string) (*model.ServiceOffering, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.store[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *s
	return &cp, nil
}

func (m *memServiceRepo) List(ctx context.Context, _ repository.Tx, partnerID string) ([]*model.ServiceOffering, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*model.ServiceOffering
	for _, s := range m.store {
		if partnerID == "" || s.PartnerID == partnerID {
			cp := *s
			out = append(out, &cp)
		}
	}
	return out, nil
}

type memUploadRepo struct {
	mu    sync.RWMutex
	store map[string]*model.EditorUpload
}

func newMemUploadRepo() *memUploadRepo {
	return &memUploadRepo{store: make(map[string]*model.EditorUpload)}
}

func (m *memUploadRepo) Save(ctx context.Context, _ repository.Tx, u *model.EditorUpload) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *u
	m.store[u.ID] = &cp
	return nil
}

func (m *memUploadRepo) FindByID(ctx context.Context, _ repository.Tx, id string) (*model.EditorUpload, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	u, ok := m.store[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (m *memUploadRepo) ListByJob(ctx context.Context, _ repository.Tx, jobID string) ([]*model.EditorUpload, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*model.EditorUpload
	for _, u := range m.store {
		if u.JobID == jobID {
			cp := *u
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (m *memUploadRepo) ListAll(ctx context.Context, _ repository.Tx) ([]*model.EditorUpload, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*model.EditorUpload
	for _, u := range m.store {
		cp := *u
		out = append(out, &cp)
	}
	return out, nil
}

type memFolderRepo struct {
	mu    sync.RWMutex
	store map[string]*model.FolderMeta
}

func newMemFolderRepo() *memFolderRepo {
	return &memFolderRepo{store: make(map[string]*model.FolderMeta)}
}

func (m *memFolderRepo) Save(ctx context.Context, _ repository.Tx, meta *model.FolderMeta) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *meta
	m.store[meta.Key] = &cp
	return nil
}

func (m *memFolderRepo) FindByKey(ctx context.Context, _ repository.Tx, key string) (*model.FolderMeta, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	f, ok := m.store[key]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *f
	return &cp, nil
}

func (m *memFolderRepo) ListByJob(ctx context.Context, _ repository.Tx, jobID string) ([]*model.FolderMeta, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*model.FolderMeta
	for _, f := range m.store {
		if f.JobID == jobID {
			cp := *f
			out = append(out, &cp)
		}
	}
	return out, nil
}

type memAuditRepo struct {
	mu      sync.Mutex
	entries []*model.AuditEntry
}

func newMemAuditRepo() *memAuditRepo { return &memAuditRepo{} }

func (m *memAuditRepo) Record(ctx context.Context, entry *model.AuditEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *entry
	m.entries = append(m.entries, &cp)
	return nil
}

func (m *memAuditRepo) ListRecent(ctx context.Context, limit int) ([]*model.AuditEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := len(m.entries)
	if limit > 0 && limit < n {
		n = limit
	}
	out := make([]*model.AuditEntry, 0, n)
	for i := len(m.entries) - n; i < len(m.entries); i++ {
		cp := *m.entries[i]
		out = append(out, &cp)
	}
	return out, nil
}

func (m *memAuditRepo) byAction(action string) []*model.AuditEntry {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*model.AuditEntry
	for _, e := range m.entries {
		if e.Action == action {
			out = append(out, e)
		}
	}
	return out
}

// testEnv bundles the fakes plus fully wired usecases.
type testEnv struct {
	jobs         *memJobRepo
	orders       *memOrderRepo
	customers    *memCustomerRepo
	services     *memServiceRepo
	uploads      *memUploadRepo
	reservations *memReservationRepo
	counters     *memCounterRepo
	folders      *memFolderRepo
	audit        *memAuditRepo

	allocUC     *AllocatorUseCase
	jobUC       *JobUseCase
	orderUC     *OrderUseCase
	integrityUC *IntegrityUseCase
	folderUC    *FolderUseCase
}

func newTestEnv(reservationTTL time.Duration) *testEnv {
	logger := zerolog.Nop()
	env := &testEnv{
		jobs:         newMemJobRepo(),
		orders:       newMemOrderRepo(),
		customers:    newMemCustomerRepo(),
		services:     newMemServiceRepo(),
		uploads:      newMemUploadRepo(),
		reservations: newMemReservationRepo(),
		counters:     newMemCounterRepo(),
		folders:      newMemFolderRepo(),
		audit:        newMemAuditRepo(),
	}
	env.allocUC = NewAllocatorUseCase(env.counters, env.reservations, &memTxManager{}, reservationTTL, &logger)
	env.integrityUC = NewIntegrityUseCase(env.jobs, env.orders, env.customers, env.services, env.uploads, env.audit, &logger)
	env.jobUC = NewJobUseCase(env.jobs, env.audit, env.integrityUC, &logger)
	env.orderUC = NewOrderUseCase(env.orders, env.jobs, env.allocUC, env.integrityUC, env.audit, &logger)
	env.folderUC = NewFolderUseCase(env.folders, env.uploads, env.orders, env.integrityUC, NopLocker{}, &logger)
	return env
}
