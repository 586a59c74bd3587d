package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/lectern-app/lectern/internal/app/engagement"
	"github.com/lectern-app/lectern/internal/app/notify"
	"github.com/lectern-app/lectern/internal/app/progress"
	"github.com/lectern-app/lectern/internal/app/tracker"
	"github.com/lectern-app/lectern/internal/domain"
	"github.com/lectern-app/lectern/internal/infra/sqlite"
)

type apiFixture struct {
	handler http.Handler
	srv     *Server
	trk     *tracker.Tracker
	store   *progress.Adapter
	emitter *notify.Emitter
	db      *sqlite.DB
	now     time.Time
}

func newAPIFixture(t *testing.T) *apiFixture {
	t.Helper()

	db, err := sqlite.Open(t.TempDir())
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	f := &apiFixture{
		db:  db,
		now: time.Date(2026, 3, 2, 14, 0, 0, 0, time.UTC),
	}
	f.store = progress.New(db)
	streaks := engagement.NewStreakService(db)
	achievements := engagement.NewAchievementService(db)
	f.emitter = notify.NewEmitter(notify.DefaultTimeouts())

	// Daemon wiring: persist notifications for polling
	f.emitter.Subscribe(domain.NotifyCompletion, func(n domain.Notification) {
		db.InsertNotification(n)
	})
	f.emitter.Subscribe(domain.NotifyChallenge, func(n domain.Notification) {
		db.InsertNotification(n)
	})
	f.emitter.SubscribeDismiss(func(id string) {
		db.MarkNotificationDismissed(id)
	})

	f.trk = tracker.New(tracker.DefaultConfig(), f.store, streaks, achievements, f.emitter)
	clock := func() time.Time { return f.now }
	f.trk.SetNow(clock)
	f.store.SetNow(clock)

	f.srv = NewServer(f.trk, f.store, streaks, achievements, f.emitter, db)
	f.handler = f.srv.Handler()
	return f
}

func (f *apiFixture) do(t *testing.T, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)
	return rec
}

func TestVisitEndpoint(t *testing.T) {
	f := newAPIFixture(t)

	rec := f.do(t, "POST", "/api/track/visit",
		`{"slug":"guides/getting-started","word_count":1000}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body)
	}

	var resp map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp["session_id"] == "" || resp["slug"] != "guides/getting-started" {
		t.Errorf("resp = %v", resp)
	}
}

func TestVisitRequiresSlug(t *testing.T) {
	f := newAPIFixture(t)

	rec := f.do(t, "POST", "/api/track/visit", `{"word_count":1000}`)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}

	rec = f.do(t, "POST", "/api/track/visit", `{not json`)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("malformed body: status = %d, want 400", rec.Code)
	}
}

func TestTrackingFlowOverHTTP(t *testing.T) {
	f := newAPIFixture(t)

	f.do(t, "POST", "/api/track/visit", `{"slug":"guides/intro","word_count":1000}`)
	f.now = f.now.Add(160 * time.Second)
	rec := f.do(t, "POST", "/api/track/scroll",
		`{"scroll_top":1000,"document_height":1500,"viewport_height":500}`)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("scroll status = %d", rec.Code)
	}

	rec = f.do(t, "GET", "/api/progress/guides/intro", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("progress status = %d, body %s", rec.Code, rec.Body)
	}
	var doc documentResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &doc); err != nil {
		t.Fatal(err)
	}
	if !doc.Completed || doc.ScrollPercent != 100 {
		t.Errorf("doc = %+v, want completed at 100%%", doc)
	}
	if doc.TimeSpentMs != 160000 {
		t.Errorf("TimeSpentMs = %d, want 160000", doc.TimeSpentMs)
	}

	// The completion notification is persisted and pollable
	rec = f.do(t, "GET", "/api/notifications", "")
	var notifResp struct {
		Notifications []domain.Notification `json:"notifications"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &notifResp); err != nil {
		t.Fatal(err)
	}
	if len(notifResp.Notifications) == 0 {
		t.Fatal("no notifications after completion")
	}

	// Dismissing one removes it from the active list
	id := notifResp.Notifications[0].ID
	rec = f.do(t, "POST", "/api/notifications/"+id+"/dismiss", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("dismiss status = %d", rec.Code)
	}
	rec = f.do(t, "POST", "/api/notifications/"+id+"/dismiss", "")
	if rec.Code != http.StatusNotFound {
		t.Errorf("second dismiss status = %d, want 404", rec.Code)
	}
}

func TestProgressDocNotFound(t *testing.T) {
	f := newAPIFixture(t)

	rec := f.do(t, "GET", "/api/progress/unknown/page", "")
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}

func TestVisibilityAndLeave(t *testing.T) {
	f := newAPIFixture(t)

	f.do(t, "POST", "/api/track/visit", `{"slug":"guides/intro","word_count":1000}`)
	f.now = f.now.Add(10 * time.Second)
	f.do(t, "POST", "/api/track/visibility", `{"visible":false}`)
	f.now = f.now.Add(5 * time.Minute)
	rec := f.do(t, "POST", "/api/track/leave", "")
	if rec.Code != http.StatusNoContent {
		t.Fatalf("leave status = %d", rec.Code)
	}

	doc, _ := f.store.Get("guides/intro")
	if doc.TimeSpent != 10*time.Second {
		t.Errorf("TimeSpent = %v, want 10s (background gap excluded)", doc.TimeSpent)
	}
}

func TestEstimateEndpoint(t *testing.T) {
	f := newAPIFixture(t)

	rec := f.do(t, "GET", "/api/estimate?words=1000", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var resp map[string]float64
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp["average_ms"] != 300000 {
		t.Errorf("average_ms = %v, want 300000", resp["average_ms"])
	}
	if resp["fast_ms"] != 200000 || resp["minimum_ms"] != 400000 {
		t.Errorf("resp = %v", resp)
	}

	rec = f.do(t, "GET", "/api/estimate?words=abc", "")
	if rec.Code != http.StatusBadRequest {
		t.Errorf("invalid words: status = %d, want 400", rec.Code)
	}
}

func TestEstimateUsesConfiguredSpeeds(t *testing.T) {
	f := newAPIFixture(t)
	f.srv.SetSpeeds(tracker.Speeds{SlowWPM: 100, AverageWPM: 200, FastWPM: 500})

	rec := f.do(t, "GET", "/api/estimate?words=1000", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var resp map[string]float64
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp["minimum_ms"] != 600000 {
		t.Errorf("minimum_ms = %v, want 600000", resp["minimum_ms"])
	}
	if resp["average_ms"] != 300000 || resp["fast_ms"] != 120000 {
		t.Errorf("resp = %v", resp)
	}
}

func TestSummaryEndpoint(t *testing.T) {
	f := newAPIFixture(t)

	f.do(t, "POST", "/api/track/visit", `{"slug":"welcome","word_count":1000}`)
	f.now = f.now.Add(160 * time.Second)
	f.do(t, "POST", "/api/track/scroll",
		`{"scroll_top":1000,"document_height":1500,"viewport_height":500}`)

	rec := f.do(t, "GET", "/api/summary", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var resp map[string]json.RawMessage
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	var completed int
	json.Unmarshal(resp["docs_completed"], &completed)
	if completed != 1 {
		t.Errorf("docs_completed = %d, want 1", completed)
	}
	var points int
	json.Unmarshal(resp["total_points"], &points)
	if points != 10 { // first_page
		t.Errorf("total_points = %d, want 10", points)
	}
}

func TestAchievementsEndpoint(t *testing.T) {
	f := newAPIFixture(t)

	rec := f.do(t, "GET", "/api/achievements", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var resp struct {
		Catalog     []domain.Achievement `json:"catalog"`
		TotalPoints int                  `json:"total_points"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if len(resp.Catalog) == 0 {
		t.Error("catalog should not be empty")
	}
	if resp.TotalPoints != 0 {
		t.Errorf("TotalPoints = %d on fresh store, want 0", resp.TotalPoints)
	}
}

func TestHealthWithoutChecker(t *testing.T) {
	f := newAPIFixture(t)

	rec := f.do(t, "GET", "/health", "")
	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rec.Code)
	}
}

func TestCORSPreflight(t *testing.T) {
	f := newAPIFixture(t)

	rec := f.do(t, "OPTIONS", "/api/track/visit", "")
	if rec.Code != http.StatusOK {
		t.Errorf("preflight status = %d, want 200", rec.Code)
	}
	if rec.Header().Get("Access-Control-Allow-Origin") != "*" {
		t.Error("missing CORS allow-origin header")
	}
}
