// internal/reservation/coordinator.go

// Package reservation implements the admission-control transaction:
// the single place where an application is checked against a job's
// remaining capacity and both records are committed together.
package reservation

import (
	"context"
	"database/sql"
	stderrors "errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"volunteerhub/internal/common/errors"
	"volunteerhub/internal/common/logger"
	"volunteerhub/internal/common/metrics"
	"volunteerhub/internal/common/observability"
	"volunteerhub/internal/models"
	"volunteerhub/internal/registry"
)

// Admission outcomes, used as metric labels.
const (
	outcomeAccepted     = "accepted"
	outcomeFullOrClosed = "full_or_closed"
	outcomeDuplicate    = "duplicate"
	outcomeNotFound     = "not_found"
	outcomeStoreError   = "store_error"
)

const uniqueViolation = "23505"

type Coordinator struct {
	db     *sql.DB
	cache  *registry.Cache
	obs    *observability.Observability
	logger logger.Logger
}

func New(db *sql.DB, cache *registry.Cache, obs *observability.Observability, log logger.Logger) *Coordinator {
	return &Coordinator{
		db:     db,
		cache:  cache,
		obs:    obs,
		logger: log.WithFields(map[string]interface{}{"component": "reservation"}),
	}
}

// ApplyToJob admits a worker against a job's remaining capacity. The
// checks and both writes run inside one transaction holding the job's
// row lock, so concurrent applies to the same job serialize while
// applies to different jobs proceed in parallel. On any failure the
// transaction rolls back whole: no slot is ever decremented without
// its application, and vice versa.
func (c *Coordinator) ApplyToJob(ctx context.Context, workerID, jobID string) (*models.Application, error) {
	start := time.Now()
	app, outcome, err := c.apply(ctx, workerID, jobID)

	duration := time.Since(start)
	metrics.AdmissionDuration.Observe(duration.Seconds())
	if c.obs != nil {
		c.obs.RecordAdmission(ctx, outcome)
		c.obs.RecordAdmissionDuration(ctx, duration, outcome)
	}

	if outcome == outcomeAccepted {
		metrics.AdmissionsAccepted.Inc()
	} else {
		metrics.AdmissionsRejected.WithLabelValues(outcome).Inc()
	}

	return app, err
}

func (c *Coordinator) apply(ctx context.Context, workerID, jobID string) (*models.Application, string, error) {
	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, outcomeStoreError, errors.NewStoreError(err)
	}
	defer tx.Rollback()

	// Lock the job row for the duration of the check-and-commit
	// sequence. This is the per-job exclusive section.
	var status string
	var remaining int
	err = tx.QueryRowContext(ctx, `
		SELECT status, remaining_slots FROM jobs WHERE id = $1 FOR UPDATE`,
		jobID).Scan(&status, &remaining)
	if err == sql.ErrNoRows {
		return nil, outcomeNotFound, errors.NewNotFoundError("job", jobID)
	}
	if err != nil {
		return nil, outcomeStoreError, errors.NewStoreError(err)
	}

	if models.JobStatus(status) != models.JobStatusOpen || remaining <= 0 {
		return nil, outcomeFullOrClosed, errors.NewConflictError(
			"job is full or closed",
			fmt.Sprintf("jobId: %s, status: %s, remainingSlots: %d", jobID, status, remaining),
		)
	}

	var exists bool
	err = tx.QueryRowContext(ctx, `
		SELECT EXISTS(
			SELECT 1 FROM applications
			WHERE job_id = $1 AND worker_id = $2
		)`, jobID, workerID).Scan(&exists)
	if err != nil {
		return nil, outcomeStoreError, errors.NewStoreError(err)
	}
	if exists {
		return nil, outcomeDuplicate, errors.NewConflictError(
			"duplicate application",
			fmt.Sprintf("jobId: %s, workerId: %s", jobID, workerID),
		)
	}

	now := time.Now().UTC().Format(time.RFC3339)
	app := &models.Application{
		ID:        uuid.New().String(),
		JobID:     jobID,
		WorkerID:  workerID,
		Status:    models.ApplicationStatusApplied,
		CreatedAt: now,
		UpdatedAt: now,
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO applications (id, job_id, worker_id, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $5)`,
		app.ID, app.JobID, app.WorkerID, string(app.Status), app.CreatedAt,
	)
	if err != nil {
		// Constraint backstop for the duplicate probe above.
		if isUniqueViolation(err) {
			return nil, outcomeDuplicate, errors.NewConflictError(
				"duplicate application",
				fmt.Sprintf("jobId: %s, workerId: %s", jobID, workerID),
			)
		}
		return nil, outcomeStoreError, errors.NewStoreError(err)
	}

	remaining--
	newStatus := models.JobStatusOpen
	if remaining == 0 {
		newStatus = models.JobStatusFull
	}

	_, err = tx.ExecContext(ctx, `
		UPDATE jobs SET remaining_slots = $1, status = $2, updated_at = $3 WHERE id = $4`,
		remaining, string(newStatus), now, jobID,
	)
	if err != nil {
		return nil, outcomeStoreError, errors.NewStoreError(err)
	}

	if err := tx.Commit(); err != nil {
		return nil, outcomeStoreError, errors.NewStoreError(err)
	}

	c.cache.Invalidate(ctx)
	c.logger.Info("application admitted", map[string]interface{}{
		"applicationId":  app.ID,
		"jobId":          jobID,
		"workerId":       workerID,
		"remainingSlots": remaining,
		"jobStatus":      string(newStatus),
	})

	return app, outcomeAccepted, nil
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return stderrors.As(err, &pqErr) && pqErr.Code == uniqueViolation
}
