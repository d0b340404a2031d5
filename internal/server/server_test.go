// internal/server/server_test.go
package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"

	"volunteerhub/internal/common/auth"
	"volunteerhub/internal/common/logger"
	"volunteerhub/internal/ledger"
	"volunteerhub/internal/lifecycle"
	"volunteerhub/internal/models"
	"volunteerhub/internal/registry"
	"volunteerhub/internal/reservation"
)

const testSecret = "test-secret"

type okPinger struct{}

func (okPinger) Ping(context.Context) error { return nil }

type downPinger struct{}

func (downPinger) Ping(context.Context) error { return context.DeadlineExceeded }

func newTestServer(t *testing.T) (http.Handler, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)

	log := logger.NewTestLogger(t)
	led := ledger.New(db, log)
	srv := New(
		registry.New(db, nil, log),
		led,
		reservation.New(db, nil, nil, log),
		lifecycle.New(led, log),
		auth.NewTokenValidator(testSecret),
		okPinger{},
		log,
	)
	return srv.Router(), mock, func() { db.Close() }
}

func bearerToken(t *testing.T, userID string, role models.Role) string {
	token, err := auth.GenerateToken(testSecret, userID, role, time.Hour)
	assert.NoError(t, err)
	return "Bearer " + token
}

func doRequest(router http.Handler, method, path, authHeader, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) (code, message string) {
	var resp struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	}
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp.Code, resp.Message
}

// ==========================
// Auth gates
// ==========================

func TestCreateJob_RequiresAuth(t *testing.T) {
	router, _, cleanup := newTestServer(t)
	defer cleanup()

	rec := doRequest(router, http.MethodPost, "/api/jobs", "", `{}`)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	code, _ := decodeError(t, rec)
	assert.Equal(t, "UNAUTHORIZED", code)
}

func TestCreateJob_RejectsWorkerRole(t *testing.T) {
	router, _, cleanup := newTestServer(t)
	defer cleanup()

	rec := doRequest(router, http.MethodPost, "/api/jobs",
		bearerToken(t, "worker-001", models.RoleWorker), `{}`)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	code, message := decodeError(t, rec)
	assert.Equal(t, "UNAUTHORIZED", code)
	assert.Equal(t, "Not authorized", message)
}

func TestAuthenticate_RejectsMalformedHeader(t *testing.T) {
	router, _, cleanup := newTestServer(t)
	defer cleanup()

	rec := doRequest(router, http.MethodGet, "/api/applications/my", "Basic abc123", "")

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthenticate_RejectsBadToken(t *testing.T) {
	router, _, cleanup := newTestServer(t)
	defer cleanup()

	rec := doRequest(router, http.MethodGet, "/api/applications/my", "Bearer not-a-token", "")

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

// ==========================
// Jobs surface
// ==========================

func TestCreateJob_Success(t *testing.T) {
	router, mock, cleanup := newTestServer(t)
	defer cleanup()

	mock.ExpectExec(`INSERT INTO jobs`).WillReturnResult(sqlmock.NewResult(0, 1))

	body := `{
		"title": "Beach Cleanup", "description": "Shoreline litter pickup",
		"location": "Santa Cruz", "date": "2026-09-12",
		"startTime": "09:00", "endTime": "13:00",
		"totalSlots": 5, "paymentAmount": 40
	}`
	rec := doRequest(router, http.MethodPost, "/api/jobs",
		bearerToken(t, "admin-001", models.RoleAdmin), body)

	assert.Equal(t, http.StatusCreated, rec.Code)

	var job models.Job
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &job))
	assert.Equal(t, "admin-001", job.AdminID)
	assert.Equal(t, 5, job.RemainingSlots)
	assert.Equal(t, models.JobStatusOpen, job.Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateJob_ValidationFailure(t *testing.T) {
	router, mock, cleanup := newTestServer(t)
	defer cleanup()

	rec := doRequest(router, http.MethodPost, "/api/jobs",
		bearerToken(t, "admin-001", models.RoleAdmin), `{"title": "Incomplete"}`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	code, _ := decodeError(t, rec)
	assert.Equal(t, "VALIDATION_ERROR", code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListOpenJobs_Public(t *testing.T) {
	router, mock, cleanup := newTestServer(t)
	defer cleanup()

	mock.ExpectQuery(`FROM jobs`).
		WithArgs("open").
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "admin_id", "title", "description", "location", "date", "start_time", "end_time",
			"total_slots", "remaining_slots", "payment_amount", "status", "created_at", "updated_at",
		}).AddRow("job-001", "admin-001", "Beach Cleanup", "desc", "Santa Cruz",
			"2026-09-12", "09:00", "13:00", 5, 3, 40.0, "open",
			"2026-08-01T10:00:00Z", "2026-08-01T10:00:00Z"))

	// No Authorization header at all.
	rec := doRequest(router, http.MethodGet, "/api/jobs", "", "")

	assert.Equal(t, http.StatusOK, rec.Code)

	var jobs []models.Job
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &jobs))
	assert.Len(t, jobs, 1)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetJob_NotFound(t *testing.T) {
	router, mock, cleanup := newTestServer(t)
	defer cleanup()

	mock.ExpectQuery(`FROM jobs`).
		WithArgs("missing").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	rec := doRequest(router, http.MethodGet, "/api/jobs/missing", "", "")

	assert.Equal(t, http.StatusNotFound, rec.Code)
	code, _ := decodeError(t, rec)
	assert.Equal(t, "NOT_FOUND", code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteJob_NotOwnerMapsTo401(t *testing.T) {
	router, mock, cleanup := newTestServer(t)
	defer cleanup()

	mock.ExpectQuery(`FROM jobs`).
		WithArgs("job-001").
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "admin_id", "title", "description", "location", "date", "start_time", "end_time",
			"total_slots", "remaining_slots", "payment_amount", "status", "created_at", "updated_at",
		}).AddRow("job-001", "someone-else", "Beach Cleanup", "desc", "Santa Cruz",
			"2026-09-12", "09:00", "13:00", 5, 3, 40.0, "open",
			"2026-08-01T10:00:00Z", "2026-08-01T10:00:00Z"))

	rec := doRequest(router, http.MethodDelete, "/api/jobs/job-001",
		bearerToken(t, "admin-001", models.RoleAdmin), "")

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// ==========================
// Applications surface
// ==========================

func TestApply_Success(t *testing.T) {
	router, mock, cleanup := newTestServer(t)
	defer cleanup()

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT status, remaining_slots FROM jobs`).
		WithArgs("job-001").
		WillReturnRows(sqlmock.NewRows([]string{"status", "remaining_slots"}).AddRow("open", 2))
	mock.ExpectQuery(`SELECT EXISTS`).
		WithArgs("job-001", "worker-001").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))
	mock.ExpectExec(`INSERT INTO applications`).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`UPDATE jobs SET remaining_slots`).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	rec := doRequest(router, http.MethodPost, "/api/applications/job-001",
		bearerToken(t, "worker-001", models.RoleWorker), "")

	assert.Equal(t, http.StatusCreated, rec.Code)

	var app models.Application
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &app))
	assert.Equal(t, "worker-001", app.WorkerID)
	assert.Equal(t, models.ApplicationStatusApplied, app.Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestApply_FullJobMapsTo409(t *testing.T) {
	router, mock, cleanup := newTestServer(t)
	defer cleanup()

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT status, remaining_slots FROM jobs`).
		WithArgs("job-001").
		WillReturnRows(sqlmock.NewRows([]string{"status", "remaining_slots"}).AddRow("full", 0))
	mock.ExpectRollback()

	rec := doRequest(router, http.MethodPost, "/api/applications/job-001",
		bearerToken(t, "worker-001", models.RoleWorker), "")

	assert.Equal(t, http.StatusConflict, rec.Code)
	code, message := decodeError(t, rec)
	assert.Equal(t, "CONFLICT", code)
	assert.Equal(t, "job is full or closed", message)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestApply_DuplicateMapsTo409(t *testing.T) {
	router, mock, cleanup := newTestServer(t)
	defer cleanup()

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT status, remaining_slots FROM jobs`).
		WithArgs("job-001").
		WillReturnRows(sqlmock.NewRows([]string{"status", "remaining_slots"}).AddRow("open", 2))
	mock.ExpectQuery(`SELECT EXISTS`).
		WithArgs("job-001", "worker-001").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))
	mock.ExpectRollback()

	rec := doRequest(router, http.MethodPost, "/api/applications/job-001",
		bearerToken(t, "worker-001", models.RoleWorker), "")

	assert.Equal(t, http.StatusConflict, rec.Code)
	_, message := decodeError(t, rec)
	assert.Equal(t, "duplicate application", message)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMarkPaid_AdminOnly(t *testing.T) {
	router, _, cleanup := newTestServer(t)
	defer cleanup()

	rec := doRequest(router, http.MethodPatch, "/api/applications/app-001/pay",
		bearerToken(t, "worker-001", models.RoleWorker), "")

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestMarkPaid_Success(t *testing.T) {
	router, mock, cleanup := newTestServer(t)
	defer cleanup()

	mock.ExpectQuery(`JOIN jobs`).
		WithArgs("app-001").
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "job_id", "worker_id", "status", "created_at", "updated_at", "admin_id",
		}).AddRow("app-001", "job-001", "worker-001", "admitted",
			"2026-08-01T10:00:00Z", "2026-08-01T10:00:00Z", "admin-001"))
	mock.ExpectExec(`UPDATE applications SET status`).WillReturnResult(sqlmock.NewResult(0, 1))

	rec := doRequest(router, http.MethodPatch, "/api/applications/app-001/pay",
		bearerToken(t, "admin-001", models.RoleAdmin), "")

	assert.Equal(t, http.StatusOK, rec.Code)

	var app models.Application
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &app))
	assert.Equal(t, models.ApplicationStatusPaid, app.Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAdmit_Success(t *testing.T) {
	router, mock, cleanup := newTestServer(t)
	defer cleanup()

	mock.ExpectQuery(`JOIN jobs`).
		WithArgs("app-001").
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "job_id", "worker_id", "status", "created_at", "updated_at", "admin_id",
		}).AddRow("app-001", "job-001", "worker-001", "applied",
			"2026-08-01T10:00:00Z", "2026-08-01T10:00:00Z", "admin-001"))
	mock.ExpectExec(`UPDATE applications SET status`).WillReturnResult(sqlmock.NewResult(0, 1))

	rec := doRequest(router, http.MethodPut, "/api/applications/app-001/admit",
		bearerToken(t, "admin-001", models.RoleAdmin), "")

	assert.Equal(t, http.StatusOK, rec.Code)

	var app models.Application
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &app))
	assert.Equal(t, models.ApplicationStatusAdmitted, app.Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// ==========================
// Health
// ==========================

func TestHealth_OK(t *testing.T) {
	router, _, cleanup := newTestServer(t)
	defer cleanup()

	rec := doRequest(router, http.MethodGet, "/healthz", "", "")

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestHealth_StoreDown(t *testing.T) {
	db, _, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	log := logger.NewTestLogger(t)
	led := ledger.New(db, log)
	srv := New(
		registry.New(db, nil, log),
		led,
		reservation.New(db, nil, nil, log),
		lifecycle.New(led, log),
		auth.NewTokenValidator(testSecret),
		downPinger{},
		log,
	)

	rec := doRequest(srv.Router(), http.MethodGet, "/healthz", "", "")

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}
