package repository

import (
	"context"
	"time"

	"media-production-workflow/internal/domain/model"
)

type ReservationRepository interface {
	// Save upserts by order number; at most one reservation exists per number.
	Save(ctx context.Context, tx Tx, res *model.OrderReservation) error
	FindByNumber(ctx context.Context, tx Tx, orderNumber string) (*model.OrderReservation, error)
	// UpdateStatusCAS moves the reservation from `from` to `to` only if it
	// is still in `from`. Returns ErrNotFound for an unknown number and
	// ErrStatusConflict when the reservation moved concurrently; confirm
	// and expire race each other and must go through this.
	UpdateStatusCAS(ctx context.Context, tx Tx, orderNumber string, from, to model.ReservationStatus) error
	// ListReservedBefore returns still-reserved entries whose expiry is at
	// or before the cutoff; the allocator marks them expired lazily.
	ListReservedBefore(ctx context.Context, tx Tx, cutoff time.Time) ([]*model.OrderReservation, error)
}
