// internal/server/applications.go
package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

func (s *Server) handleApply(w http.ResponseWriter, r *http.Request) {
	app, err := s.coordinator.ApplyToJob(r.Context(), callerIdentity(r).UserID, chi.URLParam(r, "jobID"))
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, app)
}

func (s *Server) handleMyApplications(w http.ResponseWriter, r *http.Request) {
	apps, err := s.ledger.ListByWorker(r.Context(), callerIdentity(r).UserID)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, apps)
}

func (s *Server) handleJobApplications(w http.ResponseWriter, r *http.Request) {
	apps, err := s.ledger.ListByJob(r.Context(), callerIdentity(r).UserID, chi.URLParam(r, "jobID"))
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, apps)
}

func (s *Server) handleMarkPaid(w http.ResponseWriter, r *http.Request) {
	app, err := s.advancer.MarkPaid(r.Context(), callerIdentity(r).UserID, chi.URLParam(r, "applicationID"))
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, app)
}

func (s *Server) handleAdmit(w http.ResponseWriter, r *http.Request) {
	app, err := s.advancer.Admit(r.Context(), callerIdentity(r).UserID, chi.URLParam(r, "applicationID"))
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, app)
}
