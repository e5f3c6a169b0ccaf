package repository

import (
	"context"

	"media-production-workflow/internal/domain/model"
)

type OrderRepository interface {
	Save(ctx context.Context, tx Tx, order *model.Order) error
	FindByID(ctx context.Context, tx Tx, id string) (*model.Order, error)
	ListByJob(ctx context.Context, tx Tx, jobID string) ([]*model.Order, error)
	// List returns orders, optionally filtered to one partner (empty = all).
	List(ctx context.Context, tx Tx, partnerID string) ([]*model.Order, error)
	UpdateStatusCAS(ctx context.Context, tx Tx, id string, from, to model.OrderStatus) error
}
