package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"media-production-workflow/internal/domain"
	"media-production-workflow/internal/domain/model"
	"media-production-workflow/internal/domain/ports/repository"
	"media-production-workflow/internal/infra/logging"
	"media-production-workflow/internal/infra/metrics"
)

// OrderUseCase owns order creation (including number assignment),
// assignment, revision accounting and the order status state machine.
type OrderUseCase struct {
	orders    repository.OrderRepository
	jobs      repository.JobRepository
	allocator *AllocatorUseCase
	integrity *IntegrityUseCase
	audit     repository.AuditLogRepository
	log       *zerolog.Logger
}

func NewOrderUseCase(
	orders repository.OrderRepository,
	jobs repository.JobRepository,
	allocator *AllocatorUseCase,
	integrity *IntegrityUseCase,
	audit repository.AuditLogRepository,
	logger *zerolog.Logger,
) *OrderUseCase {
	return &OrderUseCase{
		orders:    orders,
		jobs:      jobs,
		allocator: allocator,
		integrity: integrity,
		audit:     audit,
		log:       logger,
	}
}

// Create validates and stores a new order. The order number is assigned
// exactly once here: from a confirmed reservation when reservedNumber is
// set, otherwise freshly minted. Partner and customer identity are copied
// from the referenced job.
func (uc *OrderUseCase) Create(ctx context.Context, order *model.Order, reservedNumber string) (*model.Order, error) {
	defer logging.TraceDuration(uc.log, "OrderUC.Create")()

	check, err := uc.integrity.ValidateOrderCreation(ctx, order)
	if err != nil {
		return nil, err
	}
	if !check.Valid {
		return nil, fmt.Errorf("%w: %s", domain.ErrInvalidArgument, strings.Join(check.Errors, "; "))
	}

	job, err := uc.jobs.FindByID(ctx, repository.NoTX, order.JobID)
	if err != nil {
		return nil, fmt.Errorf("load job %s: %w", order.JobID, err)
	}
	order.PartnerID = job.PartnerID
	order.CustomerID = job.CustomerID

	if reservedNumber != "" {
		ok, err := uc.allocator.ConfirmReservation(ctx, reservedNumber)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, fmt.Errorf("%w: reservation %s cannot be confirmed", domain.ErrReservationExpired, reservedNumber)
		}
		order.OrderNumber = reservedNumber
	} else {
		number, err := uc.allocator.GenerateOrderNumber(ctx)
		if err != nil {
			return nil, err
		}
		order.OrderNumber = number
	}

	if order.ID == "" {
		order.ID = newID()
	}
	if order.Status == "" {
		order.Status = model.OrderStatusPending
	}
	now := time.Now().UTC()
	order.CreatedAt = now
	order.UpdatedAt = now

	if err := uc.orders.Save(ctx, repository.NoTX, order); err != nil {
		return nil, fmt.Errorf("save order: %w", err)
	}
	uc.recordAudit(ctx, &model.AuditEntry{
		Action:      "order_created",
		Category:    "workflow",
		Title:       "Order created",
		Description: fmt.Sprintf("order %s (%s) created for job %s", order.ID, order.OrderNumber, order.JobID),
		Metadata:    fmt.Sprintf(`{"order_id":%q,"order_number":%q,"job_id":%q}`, order.ID, order.OrderNumber, order.JobID),
	})
	uc.log.Info().Str("order_id", order.ID).Str("order_number", order.OrderNumber).Msg("order created")
	return order, nil
}

func (uc *OrderUseCase) Get(ctx context.Context, id string) (*model.Order, error) {
	return uc.orders.FindByID(ctx, repository.NoTX, id)
}

func (uc *OrderUseCase) ListByJob(ctx context.Context, jobID string) ([]*model.Order, error) {
	return uc.orders.ListByJob(ctx, repository.NoTX, jobID)
}

func (uc *OrderUseCase) List(ctx context.Context, partnerID string) ([]*model.Order, error) {
	return uc.orders.List(ctx, repository.NoTX, partnerID)
}

// Assign hands the order to an editor.
func (uc *OrderUseCase) Assign(ctx context.Context, orderID, editorID string) (*model.Order, error) {
	order, err := uc.orders.FindByID(ctx, repository.NoTX, orderID)
	if err != nil {
		return nil, err
	}
	order.AssignedTo = editorID
	order.UpdatedAt = time.Now().UTC()
	if err := uc.orders.Save(ctx, repository.NoTX, order); err != nil {
		return nil, fmt.Errorf("save order %s: %w", orderID, err)
	}
	return order, nil
}

// UseRevisionRound consumes one revision round, bounded by the order's
// maximum.
func (uc *OrderUseCase) UseRevisionRound(ctx context.Context, orderID string) (*model.Order, error) {
	order, err := uc.orders.FindByID(ctx, repository.NoTX, orderID)
	if err != nil {
		return nil, err
	}
	if order.MaxRevisionRounds > 0 && order.UsedRevisionRounds >= order.MaxRevisionRounds {
		return nil, fmt.Errorf("%w: revision rounds exhausted (%d/%d)", domain.ErrInvalidArgument, order.UsedRevisionRounds, order.MaxRevisionRounds)
	}
	order.UsedRevisionRounds++
	order.UpdatedAt = time.Now().UTC()
	if err := uc.orders.Save(ctx, repository.NoTX, order); err != nil {
		return nil, fmt.Errorf("save order %s: %w", orderID, err)
	}
	return order, nil
}

// UpdateStatus applies an order status transition with a compare-and-swap
// against the stored status, so two concurrent writers cannot both
// validate against the same stale state and succeed.
func (uc *OrderUseCase) UpdateStatus(ctx context.Context, orderID string, to model.OrderStatus) (*model.Order, error) {
	order, err := uc.orders.FindByID(ctx, repository.NoTX, orderID)
	if err != nil {
		return nil, err
	}
	from := order.Status
	if err := model.ValidateTransition(model.KindOrder, string(from), string(to)); err != nil {
		metrics.IncStatusTransition("order", "rejected")
		return nil, err
	}
	if err := uc.orders.UpdateStatusCAS(ctx, repository.NoTX, orderID, from, to); err != nil {
		if errors.Is(err, domain.ErrStatusConflict) {
			metrics.IncStatusTransition("order", "conflict")
		}
		return nil, fmt.Errorf("order %s %s -> %s: %w", orderID, from, to, err)
	}
	order.Status = to
	order.UpdatedAt = time.Now().UTC()
	metrics.IncStatusTransition("order", "applied")
	uc.recordAudit(ctx, &model.AuditEntry{
		Action:      "order_status_change",
		Category:    "workflow",
		Title:       "Order status changed",
		Description: fmt.Sprintf("order %s moved from %s to %s", orderID, from, to),
		Metadata:    fmt.Sprintf(`{"order_id":%q,"from":%q,"to":%q}`, orderID, from, to),
	})
	return order, nil
}

func (uc *OrderUseCase) recordAudit(ctx context.Context, entry *model.AuditEntry) {
	if err := uc.audit.Record(ctx, entry); err != nil {
		uc.log.Warn().Err(err).Str("action", entry.Action).Msg("audit record failed")
	}
}
