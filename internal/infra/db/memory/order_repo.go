package memory

import (
	"context"
	"fmt"
	"sort"

	"media-production-workflow/internal/domain"
	"media-production-workflow/internal/domain/model"
	"media-production-workflow/internal/domain/ports/repository"
)

var _ repository.OrderRepository = (*OrderRepo)(nil)

type OrderRepo struct {
	s *Store
}

func NewOrderRepo(s *Store) *OrderRepo { return &OrderRepo{s: s} }

func (r *OrderRepo) Save(ctx context.Context, tx repository.Tx, order *model.Order) error {
	return r.s.mutate("orders.save", func() error {
		if order.ID == "" {
			return domain.ErrInvalidArgument
		}
		// Order numbers are unique; postgres enforces this with a UNIQUE
		// constraint, this backend checks here.
		if order.OrderNumber != "" {
			for id, o := range r.s.orders {
				if id != order.ID && o.OrderNumber == order.OrderNumber {
					return fmt.Errorf("%w: order number %s", domain.ErrAlreadyExists, order.OrderNumber)
				}
			}
		}
		c := cloneOrder(order)
		c.CreatedAt = stampUTC(c.CreatedAt)
		c.UpdatedAt = stampUTC(c.UpdatedAt)
		r.s.orders[c.ID] = c
		return nil
	})
}

func (r *OrderRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.Order, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	o, ok := r.s.orders[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return cloneOrder(o), nil
}

func (r *OrderRepo) ListByJob(ctx context.Context, tx repository.Tx, jobID string) ([]*model.Order, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var out []*model.Order
	for _, o := range r.s.orders {
		if o.JobID == jobID {
			out = append(out, cloneOrder(o))
		}
	}
	sort.Slice(out, func(i, k int) bool { return out[i].OrderNumber < out[k].OrderNumber })
	return out, nil
}

func (r *OrderRepo) List(ctx context.Context, tx repository.Tx, partnerID string) ([]*model.Order, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var out []*model.Order
	for _, o := range r.s.orders {
		if partnerID != "" && o.PartnerID != partnerID {
			continue
		}
		out = append(out, cloneOrder(o))
	}
	sort.Slice(out, func(i, k int) bool { return out[i].OrderNumber < out[k].OrderNumber })
	return out, nil
}

func (r *OrderRepo) UpdateStatusCAS(ctx context.Context, tx repository.Tx, id string, from, to model.OrderStatus) error {
	return r.s.mutate("orders.cas", func() error {
		o, ok := r.s.orders[id]
		if !ok {
			return domain.ErrNotFound
		}
		if o.Status != from {
			return domain.ErrStatusConflict
		}
		o.Status = to
		o.UpdatedAt = nowUTC()
		return nil
	})
}
