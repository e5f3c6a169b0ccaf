package memory

import (
	"context"
	"sort"
	"time"

	"media-production-workflow/internal/domain"
	"media-production-workflow/internal/domain/model"
	"media-production-workflow/internal/domain/ports/repository"
)

var (
	_ repository.ReservationRepository = (*ReservationRepo)(nil)
	_ repository.CounterRepository     = (*CounterRepo)(nil)
)

type ReservationRepo struct {
	s *Store
}

func NewReservationRepo(s *Store) *ReservationRepo { return &ReservationRepo{s: s} }

func (r *ReservationRepo) Save(ctx context.Context, tx repository.Tx, res *model.OrderReservation) error {
	return r.s.mutate("reservations.save", func() error {
		if res.OrderNumber == "" {
			return domain.ErrInvalidArgument
		}
		r.s.reservations[res.OrderNumber] = cloneReservation(res)
		return nil
	})
}

func (r *ReservationRepo) FindByNumber(ctx context.Context, tx repository.Tx, orderNumber string) (*model.OrderReservation, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	res, ok := r.s.reservations[orderNumber]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return cloneReservation(res), nil
}

func (r *ReservationRepo) UpdateStatusCAS(ctx context.Context, tx repository.Tx, orderNumber string, from, to model.ReservationStatus) error {
	return r.s.mutate("reservations.cas", func() error {
		res, ok := r.s.reservations[orderNumber]
		if !ok {
			return domain.ErrNotFound
		}
		if res.Status != from {
			return domain.ErrStatusConflict
		}
		res.Status = to
		return nil
	})
}

func (r *ReservationRepo) ListReservedBefore(ctx context.Context, tx repository.Tx, cutoff time.Time) ([]*model.OrderReservation, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var out []*model.OrderReservation
	for _, res := range r.s.reservations {
		if res.Status == model.ReservationStatusReserved && !res.ExpiresAt.After(cutoff) {
			out = append(out, cloneReservation(res))
		}
	}
	sort.Slice(out, func(i, k int) bool { return out[i].OrderNumber < out[k].OrderNumber })
	return out, nil
}

// CounterRepo increments under the store's write lock, which is the
// whole atomicity story for this backend: safe in one process, nothing
// more.
type CounterRepo struct {
	s *Store
}

func NewCounterRepo(s *Store) *CounterRepo { return &CounterRepo{s: s} }

func (r *CounterRepo) Next(ctx context.Context, tx repository.Tx, name string) (int64, error) {
	var next int64
	err := r.s.mutate("counters.next", func() error {
		r.s.counters[name]++
		next = r.s.counters[name]
		return nil
	})
	return next, err
}

func (r *CounterRepo) Current(ctx context.Context, tx repository.Tx, name string) (int64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return r.s.counters[name], nil
}
