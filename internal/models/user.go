// internal/models/user.go
package models

// Role gates the operation surface. Identity issuance happens outside
// this service; tokens arrive with the role already decided.
type Role string

const (
	RoleAdmin  Role = "admin"
	RoleWorker Role = "worker"
)

// Identity is the authenticated caller extracted from a bearer token.
type Identity struct {
	UserID string `json:"userId"`
	Role   Role   `json:"role"`
}

// WorkerProfile is the public slice of a user record joined onto
// admin-facing application listings.
type WorkerProfile struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}
