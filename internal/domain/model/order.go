package model

import "time"

type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "pending"
	OrderStatusProcessing OrderStatus = "processing"
	OrderStatusInProgress OrderStatus = "in_progress"
	OrderStatusInRevision OrderStatus = "in_revision"
	OrderStatusCompleted  OrderStatus = "completed"
	OrderStatusCancelled  OrderStatus = "cancelled"
)

// OrderServiceLine references a service offering sold on an order.
type OrderServiceLine struct {
	ServiceID string
	Quantity  int
}

// Order is a billable unit of work against a job. OrderNumber is assigned
// exactly once at creation and never reused; PartnerID and CustomerID must
// match the referenced job's.
type Order struct {
	ID                 string
	JobID              string
	CustomerID         string // optional
	PartnerID          string
	OrderNumber        string
	Status             OrderStatus
	AssignedTo         string // editor id, optional
	FilesExpiryDate    *time.Time
	MaxRevisionRounds  int
	UsedRevisionRounds int
	Services           []OrderServiceLine
	CreatedAt          time.Time
	UpdatedAt          time.Time
}
