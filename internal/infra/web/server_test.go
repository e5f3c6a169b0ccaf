package web

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"media-production-workflow/internal/application"
	"media-production-workflow/internal/domain/model"
	"media-production-workflow/internal/infra/db/memory"
)

func newTestServer(t *testing.T) (*Server, *application.StorageFacade) {
	t.Helper()
	logger := zerolog.Nop()
	store, err := memory.Open("", &logger)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	facade := application.Wire(store.Repositories(), nil, 0, &logger)
	auth := NewAuthManager("test-secret", false, "", time.Hour)
	return NewServer(facade, auth, "ops-secret", nil, 0, &logger), facade
}

func login(t *testing.T, srv *Server) string {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/session", nil)
	req.Header.Set("X-Ops-Secret", "ops-secret")
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("login: status %d", rec.Code)
	}
	var body map[string]string
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode login body: %v", err)
	}
	return body["token"]
}

func TestHealthz(t *testing.T) {
	t.Parallel()

	srv, _ := newTestServer(t)
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestIntegrityEndpointsRequireAuth(t *testing.T) {
	t.Parallel()

	srv, _ := newTestServer(t)
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/integrity/health", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without a token, got %d", rec.Code)
	}
}

func TestLoginRejectsWrongSecret(t *testing.T) {
	t.Parallel()

	srv, _ := newTestServer(t)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/session", nil)
	req.Header.Set("X-Ops-Secret", "wrong")
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rec.Code)
	}
}

func TestIntegrityHealthEndpoint(t *testing.T) {
	t.Parallel()

	srv, facade := newTestServer(t)
	token := login(t, srv)
	ctx := context.Background()

	job, err := facade.CreateJob(ctx, "partner-1", &model.Job{})
	if err != nil {
		t.Fatalf("CreateJob: %v", err)
	}
	if _, err := facade.CreateOrder(ctx, "partner-1", &model.Order{JobID: job.ID}, ""); err != nil {
		t.Fatalf("CreateOrder: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/integrity/health?partner_id=partner-1", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var report struct {
		IsHealthy bool `json:"IsHealthy"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&report); err != nil {
		t.Fatalf("decode report: %v", err)
	}
	if !report.IsHealthy {
		t.Fatal("expected a healthy report")
	}
}

func TestOrderRepairEndpoint(t *testing.T) {
	t.Parallel()

	srv, facade := newTestServer(t)
	token := login(t, srv)
	ctx := context.Background()

	job, err := facade.CreateJob(ctx, "partner-1", &model.Job{})
	if err != nil {
		t.Fatalf("CreateJob: %v", err)
	}
	order, err := facade.CreateOrder(ctx, "partner-1", &model.Order{JobID: job.ID}, "")
	if err != nil {
		t.Fatalf("CreateOrder: %v", err)
	}

	body, _ := json.Marshal(map[string]string{"job_id": job.ID})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/integrity/orders/"+order.ID+"/repair", bytes.NewReader(body))
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	repairReq := httptest.NewRequest(http.MethodPost, "/api/v1/integrity/orders/"+order.ID+"/repair", bytes.NewReader([]byte(`{}`)))
	repairReq.Header.Set("Authorization", "Bearer "+token)
	rec = httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, repairReq)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for missing job_id, got %d", rec.Code)
	}
}

func TestJobIntegrityEndpoint_NotFoundJobStillReports(t *testing.T) {
	t.Parallel()

	srv, _ := newTestServer(t)
	token := login(t, srv)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/integrity/jobs/ghost", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 (issues, not errors), got %d", rec.Code)
	}
	var report struct {
		IsValid bool
	}
	if err := json.NewDecoder(rec.Body).Decode(&report); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if report.IsValid {
		t.Fatal("missing job must be reported invalid")
	}
}
