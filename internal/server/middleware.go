// internal/server/middleware.go
package server

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"volunteerhub/internal/common/errors"
	"volunteerhub/internal/common/metrics"
	"volunteerhub/internal/models"
)

type contextKey string

const identityKey contextKey = "identity"

// authenticate extracts and validates the bearer token, placing the
// caller identity on the request context.
func (s *Server) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			respondError(w, errors.NewUnauthorizedError("missing authorization header"))
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			respondError(w, errors.NewUnauthorizedError("invalid authorization header format"))
			return
		}

		identity, err := s.validator.Validate(parts[1])
		if err != nil {
			respondError(w, err)
			return
		}

		ctx := context.WithValue(r.Context(), identityKey, identity)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// requireAdmin gates admin-only routes. It must run after authenticate.
func (s *Server) requireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		identity := callerIdentity(r)
		if identity == nil || identity.Role != models.RoleAdmin {
			respondError(w, errors.NewUnauthorizedError("admin role required"))
			return
		}
		next.ServeHTTP(w, r)
	})
}

// requestMetrics records per-route counters and request logs.
func (s *Server) requestMetrics(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		route := chi.RouteContext(r.Context()).RoutePattern()
		if route == "" {
			route = "unmatched"
		}
		metrics.HTTPRequests.WithLabelValues(r.Method, route, strconv.Itoa(ww.Status())).Inc()

		s.logger.Info("request handled", map[string]interface{}{
			"method":   r.Method,
			"route":    route,
			"status":   ww.Status(),
			"duration": time.Since(start).String(),
		})
	})
}
