// internal/registry/registry.go

// Package registry owns the job lifecycle and slot bookkeeping: job
// creation, listings, and the owner-gated complete/delete transitions.
// Slot decrements happen only in the reservation coordinator.
package registry

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"

	"volunteerhub/internal/common/errors"
	"volunteerhub/internal/common/logger"
	"volunteerhub/internal/common/metrics"
	"volunteerhub/internal/common/validation"
	"volunteerhub/internal/models"
)

const jobColumns = `id, admin_id, title, description, location, date, start_time, end_time,
		total_slots, remaining_slots, payment_amount, status, created_at, updated_at`

type Registry struct {
	db     *sql.DB
	cache  *Cache
	logger logger.Logger
}

func New(db *sql.DB, cache *Cache, log logger.Logger) *Registry {
	return &Registry{
		db:     db,
		cache:  cache,
		logger: log.WithFields(map[string]interface{}{"component": "registry"}),
	}
}

// CreateJob validates the spec and records a new open job with
// remainingSlots equal to totalSlots.
func (r *Registry) CreateJob(ctx context.Context, adminID string, spec models.JobSpec) (*models.Job, error) {
	if err := validation.ValidateJobSpec(spec); err != nil {
		return nil, err
	}

	now := time.Now().UTC().Format(time.RFC3339)
	job := &models.Job{
		ID:             uuid.New().String(),
		AdminID:        adminID,
		Title:          spec.Title,
		Description:    spec.Description,
		Location:       spec.Location,
		Date:           spec.Date,
		StartTime:      spec.StartTime,
		EndTime:        spec.EndTime,
		TotalSlots:     spec.TotalSlots,
		RemainingSlots: spec.TotalSlots,
		PaymentAmount:  spec.PaymentAmount,
		Status:         models.JobStatusOpen,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO jobs (`+jobColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $13)`,
		job.ID, job.AdminID, job.Title, job.Description, job.Location,
		job.Date, job.StartTime, job.EndTime,
		job.TotalSlots, job.RemainingSlots, job.PaymentAmount,
		string(job.Status), job.CreatedAt,
	)
	if err != nil {
		return nil, errors.NewStoreError(err)
	}

	metrics.JobsCreated.Inc()
	r.cache.Invalidate(ctx)
	r.logger.Info("job created", map[string]interface{}{
		"jobId":      job.ID,
		"adminId":    adminID,
		"totalSlots": job.TotalSlots,
	})

	return job, nil
}

// ListOpenJobs returns all open jobs, most-recently-created first.
// Read-only; served from the listing cache when warm.
func (r *Registry) ListOpenJobs(ctx context.Context) ([]models.Job, error) {
	if jobs, ok := r.cache.GetOpenJobs(ctx); ok {
		return jobs, nil
	}

	jobs, err := r.queryJobs(ctx, `
		SELECT `+jobColumns+`
		FROM jobs
		WHERE status = $1
		ORDER BY created_at DESC`, string(models.JobStatusOpen))
	if err != nil {
		return nil, err
	}

	r.cache.SetOpenJobs(ctx, jobs)
	return jobs, nil
}

// ListJobsByAdmin returns every job owned by adminID, most-recent-first.
func (r *Registry) ListJobsByAdmin(ctx context.Context, adminID string) ([]models.Job, error) {
	return r.queryJobs(ctx, `
		SELECT `+jobColumns+`
		FROM jobs
		WHERE admin_id = $1
		ORDER BY created_at DESC`, adminID)
}

// GetJob fetches a single job.
func (r *Registry) GetJob(ctx context.Context, jobID string) (*models.Job, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+jobColumns+`
		FROM jobs
		WHERE id = $1`, jobID)

	job, err := scanJob(row)
	if err == sql.ErrNoRows {
		return nil, errors.NewNotFoundError("job", jobID)
	}
	if err != nil {
		return nil, errors.NewStoreError(err)
	}
	return job, nil
}

// CompleteJob sets status to completed regardless of the current
// status or unused capacity. Only the owning admin may call it.
func (r *Registry) CompleteJob(ctx context.Context, adminID, jobID string) (*models.Job, error) {
	job, err := r.GetJob(ctx, jobID)
	if err != nil {
		return nil, err
	}
	if job.AdminID != adminID {
		return nil, errors.NewUnauthorizedError("caller does not own this job")
	}

	now := time.Now().UTC().Format(time.RFC3339)
	_, err = r.db.ExecContext(ctx, `
		UPDATE jobs SET status = $1, updated_at = $2 WHERE id = $3`,
		string(models.JobStatusCompleted), now, jobID,
	)
	if err != nil {
		return nil, errors.NewStoreError(err)
	}

	job.Status = models.JobStatusCompleted
	job.UpdatedAt = now
	r.cache.Invalidate(ctx)
	r.logger.Info("job completed", map[string]interface{}{"jobId": jobID, "adminId": adminID})

	return job, nil
}

// DeleteJob removes the job permanently. Existing applications are not
// cascade-deleted; orphaned references are tolerated.
func (r *Registry) DeleteJob(ctx context.Context, adminID, jobID string) error {
	job, err := r.GetJob(ctx, jobID)
	if err != nil {
		return err
	}
	if job.AdminID != adminID {
		return errors.NewUnauthorizedError("caller does not own this job")
	}

	if _, err := r.db.ExecContext(ctx, `DELETE FROM jobs WHERE id = $1`, jobID); err != nil {
		return errors.NewStoreError(err)
	}

	r.cache.Invalidate(ctx)
	r.logger.Info("job deleted", map[string]interface{}{"jobId": jobID, "adminId": adminID})

	return nil
}

func (r *Registry) queryJobs(ctx context.Context, query string, args ...interface{}) ([]models.Job, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.NewStoreError(err)
	}
	defer rows.Close()

	jobs := []models.Job{}
	for rows.Next() {
		job, err := scanJob(rows)
		if err != nil {
			return nil, errors.NewStoreError(err)
		}
		jobs = append(jobs, *job)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewStoreError(err)
	}

	return jobs, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanJob(row rowScanner) (*models.Job, error) {
	var job models.Job
	var status string
	err := row.Scan(
		&job.ID, &job.AdminID, &job.Title, &job.Description, &job.Location,
		&job.Date, &job.StartTime, &job.EndTime,
		&job.TotalSlots, &job.RemainingSlots, &job.PaymentAmount,
		&status, &job.CreatedAt, &job.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	job.Status = models.JobStatus(status)
	return &job, nil
}
