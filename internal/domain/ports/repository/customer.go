package repository

import (
	"context"

	"media-production-workflow/internal/domain/model"
)

type CustomerRepository interface {
	Save(ctx context.Context, tx Tx, customer *model.Customer) error
	FindByID(ctx context.Context, tx Tx, id string) (*model.Customer, error)
	List(ctx context.Context, tx Tx, partnerID string) ([]*model.Customer, error)
}
