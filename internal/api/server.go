// Package api provides the HTTP server for Lectern.
// The docs-site reporter posts raw reading events here; the UI polls
// progress, achievements and notifications back out.
package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/lectern-app/lectern/internal/app/engagement"
	"github.com/lectern-app/lectern/internal/app/notify"
	"github.com/lectern-app/lectern/internal/app/progress"
	"github.com/lectern-app/lectern/internal/app/tracker"
	"github.com/lectern-app/lectern/internal/health"
	"github.com/lectern-app/lectern/internal/infra/sqlite"
)

// Server is the Lectern HTTP API server.
type Server struct {
	tracker      *tracker.Tracker
	store        *progress.Adapter
	streaks      *engagement.StreakService
	achievements *engagement.AchievementService
	emitter      *notify.Emitter
	db           *sqlite.DB

	checker        *health.Checker
	speeds         tracker.Speeds
	metricsEnabled bool
}

// NewServer creates a new API server.
func NewServer(t *tracker.Tracker, store *progress.Adapter, streaks *engagement.StreakService,
	achievements *engagement.AchievementService, emitter *notify.Emitter, db *sqlite.DB) *Server {
	return &Server{
		tracker:      t,
		store:        store,
		streaks:      streaks,
		achievements: achievements,
		emitter:      emitter,
		db:           db,
		speeds:       tracker.DefaultSpeeds(),
	}
}

// EnableMetrics enables the /metrics Prometheus endpoint.
func (s *Server) EnableMetrics() { s.metricsEnabled = true }

// SetHealthChecker wires the periodic health checker into /health.
func (s *Server) SetHealthChecker(c *health.Checker) { s.checker = c }

// SetSpeeds overrides the reading speeds used by /api/estimate so the
// endpoint reports the same model the tracker classifies with.
func (s *Server) SetSpeeds(sp tracker.Speeds) { s.speeds = sp }

// Handler returns the chi router with all routes mounted.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))
	r.Use(corsMiddleware)

	r.Get("/health", s.handleHealth)

	r.Route("/api", func(r chi.Router) {
		r.Route("/track", func(r chi.Router) {
			r.Post("/visit", s.handleVisit)
			r.Post("/scroll", s.handleScroll)
			r.Post("/visibility", s.handleVisibility)
			r.Post("/leave", s.handleLeave)
		})

		r.Get("/progress", s.handleProgress)
		// Wildcard because slugs contain path separators
		r.Get("/progress/*", s.handleProgressDoc)
		r.Get("/estimate", s.handleEstimate)
		r.Get("/achievements", s.handleAchievements)
		r.Get("/streak", s.handleStreak)
		r.Get("/notifications", s.handleNotifications)
		r.Post("/notifications/{id}/dismiss", s.handleNotificationDismiss)
		r.Get("/summary", s.handleSummary)
	})

	if s.metricsEnabled {
		r.Handle("/metrics", promhttp.Handler())
	}

	return r
}

// handleHealth reports the daemon's health check results.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if s.checker == nil {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
		return
	}
	status := http.StatusOK
	if !s.checker.Healthy() {
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, map[string]interface{}{
		"healthy": s.checker.Healthy(),
		"checks":  s.checker.Statuses(),
	})
}

// writeJSON writes a JSON response.
func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]interface{}{
		"error": map[string]interface{}{
			"message": msg,
			"type":    "error",
		},
	})
}

// corsMiddleware adds CORS headers so the docs site can call the local
// daemon from the browser.
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}
