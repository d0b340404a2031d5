// internal/lifecycle/advancer.go

// Package lifecycle applies admin-triggered, single-entity application
// transitions outside the reservation path. Each transition is an
// ownership check against the parent job followed by an unconditional
// status overwrite; capacity is never touched and never restored.
package lifecycle

import (
	"context"

	"volunteerhub/internal/common/errors"
	"volunteerhub/internal/common/logger"
	"volunteerhub/internal/ledger"
	"volunteerhub/internal/models"
)

type Advancer struct {
	ledger *ledger.Ledger
	logger logger.Logger
}

func New(l *ledger.Ledger, log logger.Logger) *Advancer {
	return &Advancer{
		ledger: l,
		logger: log.WithFields(map[string]interface{}{"component": "lifecycle"}),
	}
}

// Admit marks an application admitted.
func (a *Advancer) Admit(ctx context.Context, adminID, applicationID string) (*models.Application, error) {
	return a.advance(ctx, adminID, applicationID, models.ApplicationStatusAdmitted)
}

// MarkPaid marks an application paid.
func (a *Advancer) MarkPaid(ctx context.Context, adminID, applicationID string) (*models.Application, error) {
	return a.advance(ctx, adminID, applicationID, models.ApplicationStatusPaid)
}

func (a *Advancer) advance(ctx context.Context, adminID, applicationID string, target models.ApplicationStatus) (*models.Application, error) {
	app, ownerID, err := a.ledger.GetWithOwner(ctx, applicationID)
	if err != nil {
		return nil, err
	}
	if ownerID != adminID {
		return nil, errors.NewUnauthorizedError("caller does not own this job")
	}

	updatedAt, err := a.ledger.UpdateStatus(ctx, applicationID, target)
	if err != nil {
		return nil, err
	}

	app.Status = target
	app.UpdatedAt = updatedAt
	a.logger.Info("application status advanced", map[string]interface{}{
		"applicationId": applicationID,
		"adminId":       adminID,
		"status":        string(target),
	})

	return app, nil
}
