package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v4"
	"github.com/rs/zerolog"

	"media-production-workflow/internal/domain"
	"media-production-workflow/internal/domain/model"
	"media-production-workflow/internal/domain/ports/repository"
	"media-production-workflow/internal/infra/metrics"
)

// DefaultReservationTTL is the window a reserved order number stays
// claimable before it lapses.
const DefaultReservationTTL = 2 * time.Hour

// FormatOrderNumber renders a counter value as the human-readable order
// number ("#00042"). Values past five digits widen naturally.
func FormatOrderNumber(n int64) string { return fmt.Sprintf("#%05d", n) }

// AllocatorUseCase mints strictly increasing order numbers and manages
// the reserve -> confirm/expire two-phase flow.
//
// Policy: the counter NEVER moves backward. An expired reservation
// abandons its number and leaves a permanent gap; reclaiming gaps by
// decrementing the counter can hand out duplicates under concurrent
// expiry and is deliberately not implemented.
type AllocatorUseCase struct {
	counters     repository.CounterRepository
	reservations repository.ReservationRepository
	tm           repository.TransactionManager
	ttl          time.Duration
	log          *zerolog.Logger
}

func NewAllocatorUseCase(
	counters repository.CounterRepository,
	reservations repository.ReservationRepository,
	tm repository.TransactionManager,
	ttl time.Duration,
	logger *zerolog.Logger,
) *AllocatorUseCase {
	if ttl == 0 {
		ttl = DefaultReservationTTL
	}
	return &AllocatorUseCase{
		counters:     counters,
		reservations: reservations,
		tm:           tm,
		ttl:          ttl,
		log:          logger,
	}
}

// GenerateOrderNumber mints and returns the next number immediately. The
// incremented counter is persisted before the number is returned, so a
// crash after this call can only produce a gap, never a duplicate.
func (uc *AllocatorUseCase) GenerateOrderNumber(ctx context.Context) (string, error) {
	uc.sweepExpired(ctx)

	var n int64
	err := uc.tm.WithTx(ctx, pgx.TxOptions{}, func(ctx context.Context, tx repository.Tx) error {
		v, err := uc.counters.Next(ctx, tx, repository.CounterOrderNumber)
		if err != nil {
			return err
		}
		n = v
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("allocate order number: %w", err)
	}
	metrics.IncOrderNumberAllocated()
	return FormatOrderNumber(n), nil
}

// ReserveOrderNumber mints the next number but stores it as a time-boxed
// reservation instead of committing an order, so a client can display the
// number while the order form is still open.
func (uc *AllocatorUseCase) ReserveOrderNumber(ctx context.Context, userID, jobID string) (*model.OrderReservation, error) {
	if userID == "" || jobID == "" {
		return nil, fmt.Errorf("%w: user id and job id are required", domain.ErrInvalidArgument)
	}
	uc.sweepExpired(ctx)

	now := time.Now().UTC()
	res := &model.OrderReservation{
		UserID:     userID,
		JobID:      jobID,
		ReservedAt: now,
		ExpiresAt:  now.Add(uc.ttl),
		Status:     model.ReservationStatusReserved,
	}
	err := uc.tm.WithTx(ctx, pgx.TxOptions{}, func(ctx context.Context, tx repository.Tx) error {
		n, err := uc.counters.Next(ctx, tx, repository.CounterOrderNumber)
		if err != nil {
			return err
		}
		res.OrderNumber = FormatOrderNumber(n)
		return uc.reservations.Save(ctx, tx, res)
	})
	if err != nil {
		return nil, fmt.Errorf("reserve order number: %w", err)
	}
	metrics.IncOrderNumberAllocated()
	metrics.IncReservation("reserved")
	uc.log.Debug().Str("order_number", res.OrderNumber).Str("job_id", jobID).Msg("order number reserved")
	return res, nil
}

// ConfirmReservation promotes a reservation to confirmed. It returns
// false when the reservation does not exist, was already confirmed or
// expired, or its window has lapsed (in which case it is marked expired
// now). Only storage failures surface as an error.
//
// The reserved->confirmed edge is a compare-and-swap against the stored
// status: however many confirms race on the same number, exactly one
// reports true.
func (uc *AllocatorUseCase) ConfirmReservation(ctx context.Context, orderNumber string) (bool, error) {
	res, err := uc.reservations.FindByNumber(ctx, repository.NoTX, orderNumber)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("confirm reservation %s: %w", orderNumber, err)
	}
	if res.Status != model.ReservationStatusReserved {
		return false, nil
	}
	if res.PastDue(time.Now().UTC()) {
		err := uc.reservations.UpdateStatusCAS(ctx, repository.NoTX, orderNumber,
			model.ReservationStatusReserved, model.ReservationStatusExpired)
		switch {
		case errors.Is(err, domain.ErrStatusConflict), errors.Is(err, domain.ErrNotFound):
			return false, nil
		case err != nil:
			return false, fmt.Errorf("expire reservation %s: %w", orderNumber, err)
		}
		metrics.IncReservation("expired")
		return false, nil
	}
	err = uc.reservations.UpdateStatusCAS(ctx, repository.NoTX, orderNumber,
		model.ReservationStatusReserved, model.ReservationStatusConfirmed)
	switch {
	case errors.Is(err, domain.ErrStatusConflict), errors.Is(err, domain.ErrNotFound):
		return false, nil // lost the race to another confirm or the sweep
	case err != nil:
		return false, fmt.Errorf("confirm reservation %s: %w", orderNumber, err)
	}
	metrics.IncReservation("confirmed")
	return true, nil
}

// CleanupExpiredReservations marks every past-due reserved entry as
// expired and returns how many were swept. Expiry is cooperative: there
// is no timer, the allocator calls this lazily before allocations.
func (uc *AllocatorUseCase) CleanupExpiredReservations(ctx context.Context) (int, error) {
	stale, err := uc.reservations.ListReservedBefore(ctx, repository.NoTX, time.Now().UTC())
	if err != nil {
		return 0, fmt.Errorf("list expired reservations: %w", err)
	}
	swept := 0
	for _, res := range stale {
		err := uc.reservations.UpdateStatusCAS(ctx, repository.NoTX, res.OrderNumber,
			model.ReservationStatusReserved, model.ReservationStatusExpired)
		switch {
		case errors.Is(err, domain.ErrStatusConflict), errors.Is(err, domain.ErrNotFound):
			continue // confirmed (or removed) since the listing; not ours to expire
		case err != nil:
			return swept, fmt.Errorf("expire reservation %s: %w", res.OrderNumber, err)
		}
		metrics.IncReservation("expired")
		swept++
	}
	return swept, nil
}

func (uc *AllocatorUseCase) sweepExpired(ctx context.Context) {
	if n, err := uc.CleanupExpiredReservations(ctx); err != nil {
		uc.log.Warn().Err(err).Msg("reservation sweep failed")
	} else if n > 0 {
		uc.log.Debug().Int("count", n).Msg("reservations expired")
	}
}
