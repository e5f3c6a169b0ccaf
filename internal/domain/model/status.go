package model

import (
	"fmt"

	"media-production-workflow/internal/domain"
)

// EntityKind selects which transition table ValidateTransition consults.
type EntityKind string

const (
	KindJob   EntityKind = "job"
	KindOrder EntityKind = "order"
)

// Allowed outgoing edges per status. Any pair absent here is rejected;
// terminal states have an empty edge set.
var orderTransitions = map[OrderStatus][]OrderStatus{
	OrderStatusPending:    {OrderStatusProcessing, OrderStatusCancelled},
	OrderStatusProcessing: {OrderStatusInProgress, OrderStatusCancelled, OrderStatusInRevision},
	OrderStatusInProgress: {OrderStatusCompleted, OrderStatusInRevision, OrderStatusCancelled},
	OrderStatusInRevision: {OrderStatusInProgress, OrderStatusCancelled},
	OrderStatusCompleted:  {OrderStatusInRevision}, // reopen only
	OrderStatusCancelled:  {},
}

var jobTransitions = map[JobStatus][]JobStatus{
	JobStatusScheduled:  {JobStatusInProgress, JobStatusCancelled},
	JobStatusInProgress: {JobStatusCompleted, JobStatusCancelled},
	JobStatusCompleted:  {JobStatusInProgress}, // reopen
	JobStatusCancelled:  {},
}

// ValidateTransition checks a single status edge against the allow-list
// for the given entity kind. It is a pure function; callers persist the
// change (with a compare-and-swap) only after it returns nil.
func ValidateTransition(kind EntityKind, from, to string) error {
	var allowed bool
	switch kind {
	case KindOrder:
		for _, next := range orderTransitions[OrderStatus(from)] {
			if next == OrderStatus(to) {
				allowed = true
				break
			}
		}
	case KindJob:
		for _, next := range jobTransitions[JobStatus(from)] {
			if next == JobStatus(to) {
				allowed = true
				break
			}
		}
	default:
		return fmt.Errorf("%w: unknown entity kind %q", domain.ErrInvalidArgument, kind)
	}
	if !allowed {
		return fmt.Errorf("%w: %s %q -> %q", domain.ErrInvalidTransition, kind, from, to)
	}
	return nil
}

// OrderStatuses returns every known order status; used by closure tests
// and by the ops tooling to enumerate states.
func OrderStatuses() []OrderStatus {
	return []OrderStatus{
		OrderStatusPending, OrderStatusProcessing, OrderStatusInProgress,
		OrderStatusInRevision, OrderStatusCompleted, OrderStatusCancelled,
	}
}

func JobStatuses() []JobStatus {
	return []JobStatus{
		JobStatusScheduled, JobStatusInProgress, JobStatusCompleted, JobStatusCancelled,
	}
}
