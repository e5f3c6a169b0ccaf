package repository

import (
	"context"

	"media-production-workflow/internal/domain/model"
)

type ServiceOfferingRepository interface {
	Save(ctx context.Context, tx Tx, svc *model.ServiceOffering) error
	FindByID(ctx context.Context, tx Tx, id string) (*model.ServiceOffering, error)
	List(ctx context.Context, tx Tx, partnerID string) ([]*model.ServiceOffering, error)
}
