package model

import "time"

type JobStatus string

const (
	JobStatusScheduled  JobStatus = "scheduled"
	JobStatusInProgress JobStatus = "in_progress"
	JobStatusCompleted  JobStatus = "completed"
	JobStatusCancelled  JobStatus = "cancelled"
)

// Job is a production engagement (e.g. a property shoot). It carries an
// internal id plus a short public-facing id used in partner-visible URLs.
// Jobs are never hard-deleted in the normal flow.
type Job struct {
	ID         string
	PublicID   string
	PartnerID  string
	CustomerID string // optional
	Status     JobStatus
	// DeliveryToken is generated lazily on first request and must be
	// unique and unguessable; it gates the recipient-facing delivery page.
	DeliveryToken string
	Address       string
	Notes         string
	ScheduledAt   time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
