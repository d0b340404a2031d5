// internal/models/application.go
package models

// ApplicationStatus is the lifecycle state of an application.
// Transitions past "applied" happen only through explicit admin
// action; there is no rejection or withdrawal state.
type ApplicationStatus string

const (
	ApplicationStatusApplied  ApplicationStatus = "applied"
	ApplicationStatusAdmitted ApplicationStatus = "admitted"
	ApplicationStatusPaid     ApplicationStatus = "paid"
)

// Application is a worker's claim on one slot of a job. At most one
// application exists per (job, worker) pair for the lifetime of the job.
type Application struct {
	ID        string            `json:"id"`
	JobID     string            `json:"jobId"`
	WorkerID  string            `json:"workerId"`
	Status    ApplicationStatus `json:"status"`
	CreatedAt string            `json:"createdAt"`
	UpdatedAt string            `json:"updatedAt"`
}

// WorkerApplication is an application resolved with its job's summary,
// as returned by the worker-facing listing.
type WorkerApplication struct {
	Application
	Job JobSummary `json:"job"`
}

// JobApplication is an application resolved with the applying worker's
// public profile, as returned by the admin-facing listing.
type JobApplication struct {
	Application
	Worker WorkerProfile `json:"worker"`
}
