package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"sort"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/lectern-app/lectern/internal/app/tracker"
	"github.com/lectern-app/lectern/internal/domain"
)

// ─── Tracking Event Handlers ────────────────────────────────────────────────

type visitRequest struct {
	Slug      string `json:"slug"`
	WordCount int    `json:"word_count"`
	Visible   *bool  `json:"visible,omitempty"`
}

func (s *Server) handleVisit(w http.ResponseWriter, r *http.Request) {
	var req visitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if req.Slug == "" {
		writeError(w, http.StatusBadRequest, "slug is required")
		return
	}

	// Absent the visibility field, assume the tab is foregrounded: a
	// visit event only fires from a rendered page.
	visible := true
	if req.Visible != nil {
		visible = *req.Visible
	}

	sess := s.tracker.Visit(req.Slug, req.WordCount, visible)
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"session_id": sess.ID,
		"slug":       sess.Slug,
	})
}

type scrollRequest struct {
	ScrollTop      float64 `json:"scroll_top"`
	DocumentHeight float64 `json:"document_height"`
	ViewportHeight float64 `json:"viewport_height"`
}

func (s *Server) handleScroll(w http.ResponseWriter, r *http.Request) {
	var req scrollRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	s.tracker.Scroll(req.ScrollTop, req.DocumentHeight, req.ViewportHeight)
	w.WriteHeader(http.StatusNoContent)
}

type visibilityRequest struct {
	Visible bool `json:"visible"`
}

func (s *Server) handleVisibility(w http.ResponseWriter, r *http.Request) {
	var req visibilityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	s.tracker.Visibility(req.Visible)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleLeave(w http.ResponseWriter, r *http.Request) {
	s.tracker.Leave()
	w.WriteHeader(http.StatusNoContent)
}

// ─── Progress Handlers ──────────────────────────────────────────────────────

type documentResponse struct {
	Slug          string    `json:"slug"`
	Category      string    `json:"category"`
	ScrollPercent int       `json:"scroll_percent"`
	Completed     bool      `json:"completed"`
	CompletedAt   time.Time `json:"completed_at,omitzero"`
	TimeSpentMs   int64     `json:"time_spent_ms"`
	LastReadAt    time.Time `json:"last_read_at,omitzero"`
}

func toDocumentResponse(d domain.DocumentProgress) documentResponse {
	return documentResponse{
		Slug:          d.Slug,
		Category:      d.Category,
		ScrollPercent: d.ScrollPercent,
		Completed:     d.Completed,
		CompletedAt:   d.CompletedAt,
		TimeSpentMs:   d.TimeSpent.Milliseconds(),
		LastReadAt:    d.LastReadAt,
	}
}

func (s *Server) handleProgress(w http.ResponseWriter, r *http.Request) {
	snap := s.store.Snapshot()

	docs := make([]documentResponse, 0, len(snap.Documents))
	for _, d := range snap.Documents {
		docs = append(docs, toDocumentResponse(d))
	}
	sort.Slice(docs, func(i, j int) bool { return docs[i].Slug < docs[j].Slug })

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"documents":           docs,
		"total_time_spent_ms": snap.Stats.TotalTimeSpent.Milliseconds(),
	})
}

func (s *Server) handleProgressDoc(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "*")
	doc, ok := s.store.Get(slug)
	if !ok {
		writeError(w, http.StatusNotFound, "document not tracked: "+slug)
		return
	}
	writeJSON(w, http.StatusOK, toDocumentResponse(doc))
}

// handleEstimate returns the reading-time estimate for a word count, so
// the docs site can render "5 min read" banners without duplicating the
// speed model client-side.
func (s *Server) handleEstimate(w http.ResponseWriter, r *http.Request) {
	words, err := strconv.Atoi(r.URL.Query().Get("words"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "words query parameter must be an integer")
		return
	}

	est := s.speeds.Estimate(words)
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"word_count": tracker.NormalizeWordCount(words),
		"minimum_ms": est.Minimum.Milliseconds(),
		"average_ms": est.Average.Milliseconds(),
		"fast_ms":    est.Fast.Milliseconds(),
	})
}

// ─── Engagement Handlers ────────────────────────────────────────────────────

func (s *Server) handleAchievements(w http.ResponseWriter, r *http.Request) {
	prog, err := s.achievements.Progress()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "load achievements: "+err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"catalog":      s.achievements.Catalog(),
		"unlocked":     prog.Unlocked,
		"total_points": prog.TotalPoints,
	})
}

func (s *Server) handleStreak(w http.ResponseWriter, r *http.Request) {
	streak, err := s.streaks.CurrentStreak()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "load streak: "+err.Error())
		return
	}
	writeJSON(w, http.StatusOK, streak)
}

// ─── Notification Handlers ──────────────────────────────────────────────────

func (s *Server) handleNotifications(w http.ResponseWriter, r *http.Request) {
	limit := 20
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > 100 {
			writeError(w, http.StatusBadRequest, "limit must be between 1 and 100")
			return
		}
		limit = n
	}

	notifs, err := s.db.ListActiveNotifications(limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "load notifications: "+err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"notifications": notifs,
	})
}

func (s *Server) handleNotificationDismiss(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	// Cancel the in-memory auto-dismiss timer if the notification is
	// still pending. The dismiss fan-out persists the dismissal, so only
	// fall through to a direct write when the emitter no longer knows
	// the id (timer already expired, or daemon restarted since).
	if s.emitter.Dismiss(id) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "dismissed"})
		return
	}

	if err := s.db.MarkNotificationDismissed(id); err != nil {
		if errors.Is(err, domain.ErrNotificationNotFound) {
			writeError(w, http.StatusNotFound, "notification not found: "+id)
			return
		}
		writeError(w, http.StatusInternalServerError, "dismiss notification: "+err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "dismissed"})
}

// ─── Summary Handler ────────────────────────────────────────────────────────

// handleSummary aggregates everything the docs site's profile widget
// shows in a single request.
func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	snap := s.store.Snapshot()
	docsCompleted, categoryRatios := s.store.Counters()

	streak, err := s.streaks.CurrentStreak()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "load streak: "+err.Error())
		return
	}
	prog, err := s.achievements.Progress()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "load achievements: "+err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"docs_tracked":        len(snap.Documents),
		"docs_completed":      docsCompleted,
		"total_time_spent_ms": snap.Stats.TotalTimeSpent.Milliseconds(),
		"category_completion": categoryRatios,
		"streak":              streak,
		"achievements_earned": len(prog.Unlocked),
		"achievements_total":  s.achievements.TotalCount(),
		"total_points":        prog.TotalPoints,
	})
}
