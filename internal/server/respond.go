// internal/server/respond.go
package server

import (
	"encoding/json"
	"net/http"

	"volunteerhub/internal/common/errors"
)

// errorResponse is the stable (kind, message) wire pair.
type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func respondJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func respondError(w http.ResponseWriter, err error) {
	code := errors.CodeOf(err)
	respondJSON(w, errors.HTTPStatus(code), errorResponse{
		Code:    string(code),
		Message: errors.MessageOf(err),
	})
}
