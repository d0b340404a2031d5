// internal/ledger/ledger.go

// Package ledger records applications and answers duplicate and
// ownership queries. Applications are created only by the reservation
// coordinator and never deleted; status moves only through the
// lifecycle advancer.
package ledger

import (
	"context"
	"database/sql"
	"time"

	"volunteerhub/internal/common/errors"
	"volunteerhub/internal/common/logger"
	"volunteerhub/internal/models"
)

const appColumns = `a.id, a.job_id, a.worker_id, a.status, a.created_at, a.updated_at`

type Ledger struct {
	db     *sql.DB
	logger logger.Logger
}

func New(db *sql.DB, log logger.Logger) *Ledger {
	return &Ledger{
		db:     db,
		logger: log.WithFields(map[string]interface{}{"component": "ledger"}),
	}
}

// FindApplication returns the application for (jobID, workerID), or
// nil when none exists.
func (l *Ledger) FindApplication(ctx context.Context, jobID, workerID string) (*models.Application, error) {
	row := l.db.QueryRowContext(ctx, `
		SELECT `+appColumns+`
		FROM applications a
		WHERE a.job_id = $1 AND a.worker_id = $2`, jobID, workerID)

	app, err := scanApplication(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, errors.NewStoreError(err)
	}
	return app, nil
}

// ListByWorker returns all of a worker's applications with each job's
// summary joined. Jobs deleted after the fact leave an empty summary;
// the application record itself always survives.
func (l *Ledger) ListByWorker(ctx context.Context, workerID string) ([]models.WorkerApplication, error) {
	rows, err := l.db.QueryContext(ctx, `
		SELECT `+appColumns+`,
			COALESCE(j.id, ''), COALESCE(j.title, ''), COALESCE(j.location, ''),
			COALESCE(j.date, ''), COALESCE(j.start_time, ''), COALESCE(j.end_time, ''),
			COALESCE(j.payment_amount, 0), COALESCE(j.status, '')
		FROM applications a
		LEFT JOIN jobs j ON a.job_id = j.id
		WHERE a.worker_id = $1
		ORDER BY a.created_at DESC`, workerID)
	if err != nil {
		return nil, errors.NewStoreError(err)
	}
	defer rows.Close()

	apps := []models.WorkerApplication{}
	for rows.Next() {
		var app models.WorkerApplication
		var appStatus, jobStatus string
		err := rows.Scan(
			&app.ID, &app.JobID, &app.WorkerID, &appStatus, &app.CreatedAt, &app.UpdatedAt,
			&app.Job.ID, &app.Job.Title, &app.Job.Location,
			&app.Job.Date, &app.Job.StartTime, &app.Job.EndTime,
			&app.Job.PaymentAmount, &jobStatus,
		)
		if err != nil {
			return nil, errors.NewStoreError(err)
		}
		app.Status = models.ApplicationStatus(appStatus)
		app.Job.Status = models.JobStatus(jobStatus)
		apps = append(apps, app)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewStoreError(err)
	}

	return apps, nil
}

// ListByJob returns every application for a job with the applying
// worker's public profile joined. Only the job's owning admin may call it.
func (l *Ledger) ListByJob(ctx context.Context, adminID, jobID string) ([]models.JobApplication, error) {
	var ownerID string
	err := l.db.QueryRowContext(ctx,
		`SELECT admin_id FROM jobs WHERE id = $1`, jobID).Scan(&ownerID)
	if err == sql.ErrNoRows {
		return nil, errors.NewNotFoundError("job", jobID)
	}
	if err != nil {
		return nil, errors.NewStoreError(err)
	}
	if ownerID != adminID {
		return nil, errors.NewUnauthorizedError("caller does not own this job")
	}

	rows, err := l.db.QueryContext(ctx, `
		SELECT `+appColumns+`, COALESCE(u.name, ''), COALESCE(u.email, '')
		FROM applications a
		LEFT JOIN users u ON a.worker_id = u.id
		WHERE a.job_id = $1
		ORDER BY a.created_at DESC`, jobID)
	if err != nil {
		return nil, errors.NewStoreError(err)
	}
	defer rows.Close()

	apps := []models.JobApplication{}
	for rows.Next() {
		var app models.JobApplication
		var status string
		err := rows.Scan(
			&app.ID, &app.JobID, &app.WorkerID, &status, &app.CreatedAt, &app.UpdatedAt,
			&app.Worker.Name, &app.Worker.Email,
		)
		if err != nil {
			return nil, errors.NewStoreError(err)
		}
		app.Status = models.ApplicationStatus(status)
		apps = append(apps, app)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewStoreError(err)
	}

	return apps, nil
}

// GetWithOwner loads an application together with its parent job's
// owning admin. An application whose job has been deleted resolves as
// not found for lifecycle purposes.
func (l *Ledger) GetWithOwner(ctx context.Context, applicationID string) (*models.Application, string, error) {
	row := l.db.QueryRowContext(ctx, `
		SELECT `+appColumns+`, j.admin_id
		FROM applications a
		JOIN jobs j ON a.job_id = j.id
		WHERE a.id = $1`, applicationID)

	var app models.Application
	var status, ownerID string
	err := row.Scan(
		&app.ID, &app.JobID, &app.WorkerID, &status, &app.CreatedAt, &app.UpdatedAt,
		&ownerID,
	)
	if err == sql.ErrNoRows {
		return nil, "", errors.NewNotFoundError("application", applicationID)
	}
	if err != nil {
		return nil, "", errors.NewStoreError(err)
	}
	app.Status = models.ApplicationStatus(status)

	return &app, ownerID, nil
}

// UpdateStatus overwrites an application's status unconditionally.
// Ownership must already have been checked by the caller.
func (l *Ledger) UpdateStatus(ctx context.Context, applicationID string, status models.ApplicationStatus) (string, error) {
	now := time.Now().UTC().Format(time.RFC3339)
	_, err := l.db.ExecContext(ctx, `
		UPDATE applications SET status = $1, updated_at = $2 WHERE id = $3`,
		string(status), now, applicationID,
	)
	if err != nil {
		return "", errors.NewStoreError(err)
	}
	return now, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanApplication(row rowScanner) (*models.Application, error) {
	var app models.Application
	var status string
	err := row.Scan(&app.ID, &app.JobID, &app.WorkerID, &status, &app.CreatedAt, &app.UpdatedAt)
	if err != nil {
		return nil, err
	}
	app.Status = models.ApplicationStatus(status)
	return &app, nil
}
