package model

import "time"

type ReservationStatus string

const (
	ReservationStatusReserved  ReservationStatus = "reserved"
	ReservationStatusConfirmed ReservationStatus = "confirmed"
	ReservationStatusExpired   ReservationStatus = "expired"
)

// OrderReservation is a time-boxed hold on an order number taken before
// the order record itself is committed, so a client can show the number
// while the user is still filling out the order form.
//
// A reservation only ever moves reserved -> confirmed or
// reserved -> expired. Expired reservations abandon their number: the
// counter is never decremented, gaps are permanent.
type OrderReservation struct {
	OrderNumber string
	UserID      string
	JobID       string
	ReservedAt  time.Time
	ExpiresAt   time.Time
	Status      ReservationStatus
}

// PastDue reports whether the reservation window has closed at now.
func (r *OrderReservation) PastDue(now time.Time) bool {
	return now.After(r.ExpiresAt)
}
