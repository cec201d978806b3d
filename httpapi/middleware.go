package httpapi

import (
	"net/http"
	"strings"
	"time"

	"github.com/randalmurphal/agentflow/auth"
)

// statusRecorder captures the response status for request logging.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// loggingMiddleware logs one line per request.
func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(rec, r)

		s.logger.Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"duration", time.Since(start))
	})
}

// authEnabled reports whether any credential check is configured.
func (s *Server) authEnabled() bool {
	return s.apiKeyHash != "" || len(s.jwtSecret) > 0
}

// authMiddleware enforces API key or JWT auth when configured. With no
// credentials configured every request passes.
func (s *Server) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !s.authEnabled() || s.authorized(r) {
			next.ServeHTTP(w, r)
			return
		}
		s.writeError(w, http.StatusUnauthorized, "Not authenticated")
	})
}

// authorized checks the API key header, then a bearer credential which
// may be either the API key or a signed token.
func (s *Server) authorized(r *http.Request) bool {
	if key := r.Header.Get("X-API-Key"); key != "" && s.apiKeyHash != "" {
		return auth.VerifyAPIKey(key, s.apiKeyHash)
	}

	header := r.Header.Get("Authorization")
	bearer, ok := strings.CutPrefix(header, "Bearer ")
	if !ok || bearer == "" {
		return false
	}

	if s.apiKeyHash != "" && auth.VerifyAPIKey(bearer, s.apiKeyHash) {
		return true
	}
	if len(s.jwtSecret) > 0 {
		_, err := auth.ValidateAccessToken(auth.JWTConfig{
			Secret: s.jwtSecret,
			Issuer: ServiceName,
		}, bearer)
		return err == nil
	}
	return false
}
