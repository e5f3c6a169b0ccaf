package sched

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// reservationCleaner is the slice of the storage facade the sweeper needs.
type reservationCleaner interface {
	CleanupExpiredReservations(ctx context.Context) (int, error)
}

// ReservationSweeper periodically marks timed-out order-number
// reservations as expired. Expiry is also detected lazily on read, so
// the sweeper only keeps the backlog and the metrics honest.
type ReservationSweeper struct {
	interval time.Duration
	cleaner  reservationCleaner
	log      *zerolog.Logger
}

func NewReservationSweeper(interval time.Duration, cleaner reservationCleaner, logger *zerolog.Logger) *ReservationSweeper {
	swLog := logger.With().Str("component", "ReservationSweeper").Logger()
	return &ReservationSweeper{
		interval: interval,
		cleaner:  cleaner,
		log:      &swLog,
	}
}

func (w *ReservationSweeper) Run(ctx context.Context) error {
	w.log.Info().Dur("interval", w.interval).Msg("Starting reservation sweeper")
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.log.Info().Msg("Stopping reservation sweeper")
			return ctx.Err()
		case <-ticker.C:
			n, err := w.cleaner.CleanupExpiredReservations(ctx)
			if err != nil {
				w.log.Error().Err(err).Msg("reservation sweep error")
			}
			if n > 0 {
				w.log.Info().Int("count", n).Msg("expired reservations swept")
			}
		}
	}
}
