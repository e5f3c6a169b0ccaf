package memory

import (
	"time"

	"media-production-workflow/internal/domain/model"
)

// The store hands out copies so callers can never mutate shared state
// behind the lock.

func cloneJob(j *model.Job) *model.Job {
	c := *j
	return &c
}

func cloneOrder(o *model.Order) *model.Order {
	c := *o
	if o.FilesExpiryDate != nil {
		t := *o.FilesExpiryDate
		c.FilesExpiryDate = &t
	}
	if o.Services != nil {
		c.Services = make([]model.OrderServiceLine, len(o.Services))
		copy(c.Services, o.Services)
	}
	return &c
}

func cloneCustomer(cu *model.Customer) *model.Customer {
	c := *cu
	return &c
}

func cloneService(s *model.ServiceOffering) *model.ServiceOffering {
	c := *s
	return &c
}

func cloneUpload(u *model.EditorUpload) *model.EditorUpload {
	c := *u
	if u.ExpiresAt != nil {
		t := *u.ExpiresAt
		c.ExpiresAt = &t
	}
	return &c
}

func cloneReservation(r *model.OrderReservation) *model.OrderReservation {
	c := *r
	return &c
}

func cloneFolderMeta(f *model.FolderMeta) *model.FolderMeta {
	c := *f
	if f.DisplayOrder != nil {
		n := *f.DisplayOrder
		c.DisplayOrder = &n
	}
	return &c
}

func cloneAudit(a *model.AuditEntry) *model.AuditEntry {
	c := *a
	return &c
}

func stampUTC(t time.Time) time.Time {
	if t.IsZero() {
		return nowUTC()
	}
	return t
}

func nowUTC() time.Time { return time.Now().UTC() }
