package web

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/formatrack/server/internal/config"
	"github.com/formatrack/server/internal/core"
)

func testConfig() *config.Config {
	return &config.Config{
		Server: config.ServerConfig{
			Host:           "127.0.0.1",
			Port:           8080,
			RequestTimeout: 30 * time.Second,
		},
		Upload: config.UploadConfig{MaxFileSize: 1 << 20},
	}
}

func newTestServer(t *testing.T) (*Server, *core.MemStore, *core.MemBlobs) {
	t.Helper()
	store := core.NewMemStore()
	blobs := core.NewMemBlobs()
	svc := core.NewService(store, blobs, core.Options{AllowRedecide: true})
	return NewServer(svc, testConfig()), store, blobs
}

func doJSON(t *testing.T, srv *Server, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.NewDecoder(rec.Body).Decode(v); err != nil {
		t.Fatalf("decode response %q: %v", rec.Body.String(), err)
	}
}

func TestHealth(t *testing.T) {
	srv, _, _ := newTestServer(t)

	rec := doJSON(t, srv, http.MethodGet, "/api/health", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var body map[string]bool
	decodeBody(t, rec, &body)
	if !body["ok"] {
		t.Errorf("body = %v", body)
	}
}

func TestSecurityHeaders(t *testing.T) {
	srv, _, _ := newTestServer(t)

	rec := doJSON(t, srv, http.MethodGet, "/api/health", nil)
	if got := rec.Header().Get("X-Content-Type-Options"); got != "nosniff" {
		t.Errorf("X-Content-Type-Options = %q", got)
	}
	if got := rec.Header().Get("X-Frame-Options"); got != "DENY" {
		t.Errorf("X-Frame-Options = %q", got)
	}
}

func TestTrainingCRUD(t *testing.T) {
	srv, _, _ := newTestServer(t)

	rec := doJSON(t, srv, http.MethodPost, "/api/trainings", map[string]string{"title": "Go Backend"})
	if rec.Code != http.StatusOK {
		t.Fatalf("create status = %d: %s", rec.Code, rec.Body.String())
	}
	var training core.Training
	decodeBody(t, rec, &training)
	if training.Title != "Go Backend" {
		t.Errorf("title = %q", training.Title)
	}

	rec = doJSON(t, srv, http.MethodPost, "/api/trainings", map[string]string{"title": "  "})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("blank title status = %d, want 400", rec.Code)
	}

	rec = doJSON(t, srv, http.MethodPut, "/api/trainings/"+strconv.FormatInt(training.ID, 10),
		map[string]string{"title": "Go Backend v2"})
	if rec.Code != http.StatusOK {
		t.Fatalf("update status = %d: %s", rec.Code, rec.Body.String())
	}

	rec = doJSON(t, srv, http.MethodGet, "/api/trainings", nil)
	var trainings []core.Training
	decodeBody(t, rec, &trainings)
	if len(trainings) != 1 || trainings[0].Title != "Go Backend v2" {
		t.Errorf("trainings = %v", trainings)
	}

	rec = doJSON(t, srv, http.MethodDelete, "/api/trainings/"+strconv.FormatInt(training.ID, 10), nil)
	if rec.Code != http.StatusNoContent {
		t.Errorf("delete status = %d, want 204", rec.Code)
	}

	rec = doJSON(t, srv, http.MethodDelete, "/api/trainings/999", nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("missing delete status = %d, want 404", rec.Code)
	}
}

func TestSessionEndpoints(t *testing.T) {
	srv, store, _ := newTestServer(t)
	training := store.SeedTraining("Go Backend")

	rec := doJSON(t, srv, http.MethodPost, "/api/sessions", map[string]any{
		"training_id": training.ID,
		"start_date":  "2026-09-01T00:00:00Z",
		"end_date":    "2026-12-18T00:00:00Z",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("create status = %d: %s", rec.Code, rec.Body.String())
	}
	var session core.Session
	decodeBody(t, rec, &session)
	if session.Capacity != core.DefaultSessionCapacity {
		t.Errorf("capacity = %d, want default %d", session.Capacity, core.DefaultSessionCapacity)
	}

	rec = doJSON(t, srv, http.MethodGet, "/api/trainings/"+strconv.FormatInt(training.ID, 10)+"/sessions", nil)
	var sessions []core.Session
	decodeBody(t, rec, &sessions)
	if len(sessions) != 1 {
		t.Errorf("sessions = %v", sessions)
	}

	// Dangling training reference fails validation, not 500.
	rec = doJSON(t, srv, http.MethodPost, "/api/sessions", map[string]any{
		"training_id": 999,
		"start_date":  "2026-09-01T00:00:00Z",
		"end_date":    "2026-12-18T00:00:00Z",
	})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("dangling ref status = %d, want 400", rec.Code)
	}
}

func multipartApply(t *testing.T, fields map[string]string, files map[string]string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for k, v := range fields {
		if err := w.WriteField(k, v); err != nil {
			t.Fatalf("write field %s: %v", k, err)
		}
	}
	for field, filename := range files {
		fw, err := w.CreateFormFile(field, filename)
		if err != nil {
			t.Fatalf("create file %s: %v", field, err)
		}
		if _, err := fw.Write([]byte("content of " + filename)); err != nil {
			t.Fatalf("write file %s: %v", field, err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatalf("close writer: %v", err)
	}
	return &buf, w.FormDataContentType()
}

func TestApplyEndpoint(t *testing.T) {
	srv, store, blobs := newTestServer(t)
	training := store.SeedTraining("Go Backend")
	session := store.SeedSession(training.ID,
		time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2026, 12, 18, 0, 0, 0, 0, time.UTC))

	body, contentType := multipartApply(t, map[string]string{
		"full_name":   "Jane Doe",
		"email":       "Jane@Example.com",
		"phone":       "+33600000000",
		"training_id": strconv.FormatInt(training.ID, 10),
		"session_id":  strconv.FormatInt(session.ID, 10),
		"note":        "motivated",
	}, map[string]string{
		"resume":       "cv.pdf",
		"cover_letter": "lettre.pdf",
	})

	req := httptest.NewRequest(http.MethodPost, "/api/public/apply", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}
	var resp struct {
		OK      bool   `json:"ok"`
		Message string `json:"message"`
	}
	decodeBody(t, rec, &resp)
	if !resp.OK || resp.Message != core.SubmittedMessage {
		t.Errorf("response = %+v", resp)
	}
	if len(store.EnrollmentRows) != 1 {
		t.Fatalf("enrollments = %d, want 1", len(store.EnrollmentRows))
	}
	if len(blobs.Objects) != 2 {
		t.Errorf("objects = %d, want 2", len(blobs.Objects))
	}
}

func TestApplyEndpointMissingFiles(t *testing.T) {
	srv, store, _ := newTestServer(t)
	training := store.SeedTraining("Go Backend")
	session := store.SeedSession(training.ID,
		time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2026, 12, 18, 0, 0, 0, 0, time.UTC))

	body, contentType := multipartApply(t, map[string]string{
		"full_name":   "Jane Doe",
		"email":       "jane@example.com",
		"training_id": strconv.FormatInt(training.ID, 10),
		"session_id":  strconv.FormatInt(session.ID, 10),
	}, map[string]string{"resume": "cv.pdf"})

	req := httptest.NewRequest(http.MethodPost, "/api/public/apply", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400: %s", rec.Code, rec.Body.String())
	}
	var resp map[string]string
	decodeBody(t, rec, &resp)
	if resp["error"] != "Champs requis manquants" {
		t.Errorf("error = %q", resp["error"])
	}
}

func TestStatusEndpoint(t *testing.T) {
	srv, _, _ := newTestServer(t)

	rec := doJSON(t, srv, http.MethodGet, "/api/public/status", nil)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("missing email status = %d, want 400", rec.Code)
	}

	rec = doJSON(t, srv, http.MethodGet, "/api/public/status?email=nobody@example.com", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}
	if got := strings.TrimSpace(rec.Body.String()); got != "[]" {
		t.Errorf("body = %q, want empty list", got)
	}
}

func TestDecideEndpoint(t *testing.T) {
	srv, store, _ := newTestServer(t)
	training := store.SeedTraining("Go Backend")
	session := store.SeedSession(training.ID,
		time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2026, 12, 18, 0, 0, 0, 0, time.UTC))
	store.EnrollmentRows = append(store.EnrollmentRows, core.Enrollment{
		ID:         41,
		StudentID:  1,
		TrainingID: training.ID,
		SessionID:  session.ID,
		Status:     core.StatusPending,
	})

	rec := doJSON(t, srv, http.MethodPatch, "/api/admin/applications/41/status",
		map[string]string{"status": "maybe"})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("invalid status = %d, want 400", rec.Code)
	}

	rec = doJSON(t, srv, http.MethodPatch, "/api/admin/applications/41/status",
		map[string]string{"status": "accepted"})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}
	var enr core.Enrollment
	decodeBody(t, rec, &enr)
	if enr.Status != core.StatusAccepted {
		t.Errorf("status = %q, want accepted", enr.Status)
	}

	rec = doJSON(t, srv, http.MethodGet, "/api/admin/decisions", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("decisions status = %d", rec.Code)
	}
	var decisions []core.DecisionRecord
	decodeBody(t, rec, &decisions)
	if len(decisions) != 1 {
		t.Errorf("decisions = %d, want 1", len(decisions))
	}
}

func TestAdminRequiresAPIKey(t *testing.T) {
	cfg := testConfig()
	cfg.Security.RequireAPIKey = true
	cfg.Security.APIKeys = []string{"sekrit"}

	store := core.NewMemStore()
	svc := core.NewService(store, core.NewMemBlobs(), core.Options{})
	srv := NewServer(svc, cfg)

	req := httptest.NewRequest(http.MethodGet, "/api/admin/applications", nil)
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("no key status = %d, want 401", rec.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/admin/applications", nil)
	req.Header.Set("X-API-Key", "wrong")
	rec = httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)
	if rec.Code != http.StatusForbidden {
		t.Errorf("wrong key status = %d, want 403", rec.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/admin/applications", nil)
	req.Header.Set("X-API-Key", "sekrit")
	rec = httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("valid key status = %d, want 200", rec.Code)
	}
}

func TestRateLimiter(t *testing.T) {
	rl := newRateLimiter(2, time.Minute)

	if !rl.allow("10.0.0.1") || !rl.allow("10.0.0.1") {
		t.Fatal("first two requests should pass")
	}
	if rl.allow("10.0.0.1") {
		t.Error("third request should be limited")
	}
	if !rl.allow("10.0.0.2") {
		t.Error("other IP should have its own bucket")
	}
}
