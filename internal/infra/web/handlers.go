package web

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"media-production-workflow/internal/domain"
)

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, domain.ErrInvalidArgument), errors.Is(err, domain.ErrInvalidTransition):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, domain.ErrTenantMismatch):
		http.Error(w, err.Error(), http.StatusForbidden)
	case errors.Is(err, domain.ErrStatusConflict), errors.Is(err, domain.ErrFolderLocked):
		http.Error(w, err.Error(), http.StatusConflict)
	default:
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

// handleHealthz is the unauthenticated liveness probe: it reports
// whether the process can reach its store at all, not the full
// referential scan.
func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	if _, err := s.facade.RecentActivity(r.Context(), 1); err != nil {
		http.Error(w, "store unavailable", http.StatusServiceUnavailable)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleHealthCheck runs the full referential scan, optionally scoped
// to one partner via ?partner_id=.
func (s *Server) handleHealthCheck(w http.ResponseWriter, r *http.Request) {
	report, err := s.facade.PerformHealthCheck(r.Context(), r.URL.Query().Get("partner_id"))
	if err != nil {
		writeError(w, err)
		return
	}
	status := http.StatusOK
	if !report.IsHealthy {
		status = http.StatusConflict
	}
	writeJSON(w, status, report)
}

func (s *Server) handleJobIntegrity(w http.ResponseWriter, r *http.Request) {
	report, err := s.facade.ValidateJobIntegrity(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func (s *Server) handleOrderIntegrity(w http.ResponseWriter, r *http.Request) {
	report, err := s.facade.ValidateOrderIntegrity(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

type repairRequest struct {
	JobID string `json:"job_id"`
}

func (s *Server) handleOrderRepair(w http.ResponseWriter, r *http.Request) {
	var req repairRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.JobID == "" {
		http.Error(w, "job_id is required", http.StatusBadRequest)
		return
	}
	order, err := s.facade.RepairOrphanedOrder(r.Context(), chi.URLParam(r, "id"), req.JobID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, order)
}

func (s *Server) handleAudit(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	entries, err := s.facade.RecentActivity(r.Context(), limit)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, entries)
}
