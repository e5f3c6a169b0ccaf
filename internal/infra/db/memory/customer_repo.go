package memory

import (
	"context"
	"sort"

	"media-production-workflow/internal/domain"
	"media-production-workflow/internal/domain/model"
	"media-production-workflow/internal/domain/ports/repository"
)

var (
	_ repository.CustomerRepository        = (*CustomerRepo)(nil)
	_ repository.ServiceOfferingRepository = (*ServiceRepo)(nil)
)

type CustomerRepo struct {
	s *Store
}

func NewCustomerRepo(s *Store) *CustomerRepo { return &CustomerRepo{s: s} }

func (r *CustomerRepo) Save(ctx context.Context, tx repository.Tx, customer *model.Customer) error {
	return r.s.mutate("customers.save", func() error {
		if customer.ID == "" {
			return domain.ErrInvalidArgument
		}
		c := cloneCustomer(customer)
		c.CreatedAt = stampUTC(c.CreatedAt)
		c.UpdatedAt = stampUTC(c.UpdatedAt)
		r.s.customers[c.ID] = c
		return nil
	})
}

func (r *CustomerRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.Customer, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	c, ok := r.s.customers[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return cloneCustomer(c), nil
}

func (r *CustomerRepo) List(ctx context.Context, tx repository.Tx, partnerID string) ([]*model.Customer, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var out []*model.Customer
	for _, c := range r.s.customers {
		if partnerID != "" && c.PartnerID != partnerID {
			continue
		}
		out = append(out, cloneCustomer(c))
	}
	sort.Slice(out, func(i, k int) bool { return out[i].ID < out[k].ID })
	return out, nil
}

type ServiceRepo struct {
	s *Store
}

func NewServiceRepo(s *Store) *ServiceRepo { return &ServiceRepo{s: s} }

func (r *ServiceRepo) Save(ctx context.Context, tx repository.Tx, svc *model.ServiceOffering) error {
	return r.s.mutate("services.save", func() error {
		if svc.ID == "" {
			return domain.ErrInvalidArgument
		}
		c := cloneService(svc)
		c.CreatedAt = stampUTC(c.CreatedAt)
		r.s.services[c.ID] = c
		return nil
	})
}

func (r *ServiceRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.ServiceOffering, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	svc, ok := r.s.services[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return cloneService(svc), nil
}

func (r *ServiceRepo) List(ctx context.Context, tx repository.Tx, partnerID string) ([]*model.ServiceOffering, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var out []*model.ServiceOffering
	for _, svc := range r.s.services {
		if partnerID != "" && svc.PartnerID != partnerID {
			continue
		}
		out = append(out, cloneService(svc))
	}
	sort.Slice(out, func(i, k int) bool { return out[i].ID < out[k].ID })
	return out, nil
}
