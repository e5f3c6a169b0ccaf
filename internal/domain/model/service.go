package model

import "time"

// ServiceOffering is a partner's sellable product (photo package, drone
// footage, floor plan, ...). Order service lines must reference one.
type ServiceOffering struct {
	ID         string
	PartnerID  string
	Name       string
	PriceCents int64
	CreatedAt  time.Time
}
