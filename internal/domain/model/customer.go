package model

import "time"

// Customer is the end client of a partner; every customer belongs to
// exactly one partner.
type Customer struct {
	ID        string
	PartnerID string
	Name      string
	Email     string
	Phone     string
	CreatedAt time.Time
	UpdatedAt time.Time
}
