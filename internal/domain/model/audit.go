package model

import "time"

// AuditEntry is a fire-and-forget activity record emitted by repairs and
// status-tracked mutations. Metadata is an opaque string the consumer
// renders as-is.
type AuditEntry struct {
	ID          string
	Action      string
	Category    string
	Title       string
	Description string
	Metadata    string
	CreatedAt   time.Time
}
