// internal/server/jobs.go
package server

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"volunteerhub/internal/common/errors"
	"volunteerhub/internal/models"
)

func (s *Server) handleCreateJob(w http.ResponseWriter, r *http.Request) {
	var spec models.JobSpec
	if err := json.NewDecoder(r.Body).Decode(&spec); err != nil {
		respondError(w, errors.NewValidationError(fmt.Sprintf("malformed request body: %v", err)))
		return
	}

	job, err := s.registry.CreateJob(r.Context(), callerIdentity(r).UserID, spec)
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, job)
}

func (s *Server) handleListOpenJobs(w http.ResponseWriter, r *http.Request) {
	jobs, err := s.registry.ListOpenJobs(r.Context())
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, jobs)
}

func (s *Server) handleListMyJobs(w http.ResponseWriter, r *http.Request) {
	jobs, err := s.registry.ListJobsByAdmin(r.Context(), callerIdentity(r).UserID)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, jobs)
}

func (s *Server) handleGetJob(w http.ResponseWriter, r *http.Request) {
	job, err := s.registry.GetJob(r.Context(), chi.URLParam(r, "jobID"))
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, job)
}

func (s *Server) handleCompleteJob(w http.ResponseWriter, r *http.Request) {
	job, err := s.registry.CompleteJob(r.Context(), callerIdentity(r).UserID, chi.URLParam(r, "jobID"))
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, job)
}

func (s *Server) handleDeleteJob(w http.ResponseWriter, r *http.Request) {
	if err := s.registry.DeleteJob(r.Context(), callerIdentity(r).UserID, chi.URLParam(r, "jobID")); err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"message": "job deleted"})
}
