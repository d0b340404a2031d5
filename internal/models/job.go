// internal/models/job.go
package models

// JobStatus is the lifecycle state of a job.
type JobStatus string

const (
	JobStatusOpen      JobStatus = "open"
	JobStatusFull      JobStatus = "full"
	JobStatusCompleted JobStatus = "completed"
)

// Job is a capacity-bounded opportunity published by an admin.
// RemainingSlots always equals TotalSlots minus the number of
// applications ever created for the job.
type Job struct {
	ID             string    `json:"id"`
	AdminID        string    `json:"adminId"`
	Title          string    `json:"title"`
	Description    string    `json:"description"`
	Location       string    `json:"location"`
	Date           string    `json:"date"`
	StartTime      string    `json:"startTime"`
	EndTime        string    `json:"endTime"`
	TotalSlots     int       `json:"totalSlots"`
	RemainingSlots int       `json:"remainingSlots"`
	PaymentAmount  float64   `json:"paymentAmount"`
	Status         JobStatus `json:"status"`
	CreatedAt      string    `json:"createdAt"`
	UpdatedAt      string    `json:"updatedAt"`
}

// JobSpec is the payload an admin submits to create a job.
type JobSpec struct {
	Title         string  `json:"title"`
	Description   string  `json:"description"`
	Location      string  `json:"location"`
	Date          string  `json:"date"`
	StartTime     string  `json:"startTime"`
	EndTime       string  `json:"endTime"`
	TotalSlots    int     `json:"totalSlots"`
	PaymentAmount float64 `json:"paymentAmount"`
}

// JobSummary is the subset of job fields joined onto a worker's
// application listing.
type JobSummary struct {
	ID            string    `json:"id"`
	Title         string    `json:"title"`
	Location      string    `json:"location"`
	Date          string    `json:"date"`
	StartTime     string    `json:"startTime"`
	EndTime       string    `json:"endTime"`
	PaymentAmount float64   `json:"paymentAmount"`
	Status        JobStatus `json:"status"`
}
