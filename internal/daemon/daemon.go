package daemon

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/lectern-app/lectern/internal/api"
	"github.com/lectern-app/lectern/internal/app/engagement"
	"github.com/lectern-app/lectern/internal/app/notify"
	"github.com/lectern-app/lectern/internal/app/progress"
	"github.com/lectern-app/lectern/internal/app/tracker"
	"github.com/lectern-app/lectern/internal/domain"
	"github.com/lectern-app/lectern/internal/health"
	_ "github.com/lectern-app/lectern/internal/infra/metrics" // Register Prometheus metrics
	"github.com/lectern-app/lectern/internal/infra/sqlite"
	"github.com/lectern-app/lectern/internal/infra/syncer"
)

// Daemon is the Lectern runtime. It wires together all services.
type Daemon struct {
	Config Config
	DB     *sqlite.DB
	Store  *progress.Adapter
	Server *api.Server

	Tracker     *tracker.Tracker
	Streak      *engagement.StreakService
	Achievement *engagement.AchievementService
	Emitter     *notify.Emitter
	Syncer      *syncer.Syncer
	Health      *health.Checker

	cancel context.CancelFunc
}

// New creates and initializes a Daemon with all services wired.
func New() (*Daemon, error) {
	cfg, err := LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	return NewWithConfig(cfg)
}

// NewWithConfig creates a Daemon with the given configuration.
func NewWithConfig(cfg Config) (*Daemon, error) {
	dataDir := cfg.Storage.Dir
	if dataDir == "" {
		dataDir = lecternHome()
	}
	db, err := sqlite.Open(dataDir)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// Progress store, hydrated from SQLite
	store := progress.New(db)

	// Engagement services
	streaks := engagement.NewStreakService(db)
	achievements := engagement.NewAchievementService(db)

	// Notification emitter with configured auto-dismiss timeouts
	emitter := notify.NewEmitter(notificationTimeouts(cfg.Notifications))

	// Persist every emitted notification so the docs-site UI can poll
	// them back out; in-memory subscribers stay transient.
	persist := func(n domain.Notification) {
		if err := db.InsertNotification(n); err != nil {
			log.Printf("[daemon] persist notification %s: %v", n.ID, err)
		}
	}
	emitter.Subscribe(domain.NotifyCompletion, persist)
	emitter.Subscribe(domain.NotifyChallenge, persist)
	emitter.Subscribe(domain.NotifyAchievement, persist)
	emitter.SubscribeDismiss(func(id string) {
		if err := db.MarkNotificationDismissed(id); err != nil {
			log.Printf("[daemon] dismiss notification %s: %v", id, err)
		}
	})

	// Reading tracker
	trkCfg := trackerConfig(cfg.Engagement)
	trk := tracker.New(trkCfg, store, streaks, achievements, emitter)

	d := &Daemon{
		Config:      cfg,
		DB:          db,
		Store:       store,
		Tracker:     trk,
		Streak:      streaks,
		Achievement: achievements,
		Emitter:     emitter,
	}

	// Remote sync, if an account endpoint is configured
	if cfg.Sync.Enabled {
		if cfg.Sync.Endpoint == "" {
			db.Close()
			return nil, fmt.Errorf("sync enabled but no endpoint configured: %w", domain.ErrSyncDisabled)
		}
		remote := syncer.NewHTTPRemote(cfg.Sync.Endpoint, cfg.Sync.Token)
		syncCfg := syncer.DefaultConfig()
		syncCfg.Interval = parseDuration(cfg.Sync.Interval, syncCfg.Interval)
		d.Syncer = syncer.New(syncCfg, remote, store)
	}

	// Health checker
	d.Health = health.NewChecker(db, store)

	// API server
	srv := api.NewServer(trk, store, streaks, achievements, emitter, db)
	srv.SetHealthChecker(d.Health)
	srv.SetSpeeds(trkCfg.Policy.Speeds)
	if cfg.Telemetry.Prometheus {
		srv.EnableMetrics()
	}
	d.Server = srv

	return d, nil
}

// Serve starts the HTTP server and blocks until shutdown.
func (d *Daemon) Serve(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	d.cancel = cancel

	// Background loops
	go d.Tracker.Run(ctx)
	go d.Health.Run(ctx)
	if d.Syncer != nil {
		go d.Syncer.Run(ctx)
	}

	addr := fmt.Sprintf("%s:%d", d.Config.API.Host, d.Config.API.Port)

	httpServer := &http.Server{
		Addr:         addr,
		Handler:      d.Server.Handler(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  2 * time.Minute,
	}

	// Graceful shutdown on signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		select {
		case <-sigCh:
		case <-ctx.Done():
		}

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		// Credit any in-flight session and drain pending writes before
		// the database closes.
		d.Tracker.Leave()
		d.Store.FlushDirty()

		_ = httpServer.Shutdown(shutdownCtx)
		_ = d.DB.Close()
	}()

	fmt.Printf("Lectern serving on http://%s\n", addr)
	if d.Config.Sync.Enabled {
		fmt.Printf("  Sync: enabled (%s)\n", d.Config.Sync.Endpoint)
	}
	if d.Config.Telemetry.Prometheus {
		fmt.Printf("  Metrics: http://%s/metrics\n", addr)
	}

	if err := httpServer.ListenAndServe(); err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Close shuts down all daemon resources.
func (d *Daemon) Close() {
	if d.cancel != nil {
		d.cancel()
	}
	if d.Tracker != nil {
		d.Tracker.Leave()
	}
	if d.Store != nil {
		d.Store.FlushDirty()
	}
	if d.DB != nil {
		_ = d.DB.Close()
	}
}

// trackerConfig maps the TOML engagement section onto the tracker's
// runtime configuration, falling back per field.
func trackerConfig(e EngagementConfig) tracker.Config {
	cfg := tracker.DefaultConfig()

	speeds := tracker.DefaultSpeeds()
	if e.SlowWPM > 0 {
		speeds.SlowWPM = e.SlowWPM
	}
	if e.AverageWPM > 0 {
		speeds.AverageWPM = e.AverageWPM
	}
	if e.FastWPM > 0 {
		speeds.FastWPM = e.FastWPM
	}
	cfg.Policy.Speeds = speeds

	if e.MinimumRatio > 0 {
		cfg.Policy.MinimumRatio = e.MinimumRatio
	}
	if e.GoodRatio > 0 {
		cfg.Policy.GoodRatio = e.GoodRatio
	}
	if e.ExcellentRatio > 0 {
		cfg.Policy.ExcellentRatio = e.ExcellentRatio
	}
	cfg.Policy.ScrollOnly = e.ScrollOnly

	if e.CompletionPercent > 0 && e.CompletionPercent <= 100 {
		cfg.CompletionPercent = e.CompletionPercent
	}
	if e.TickSeconds > 0 {
		cfg.TickInterval = time.Duration(e.TickSeconds) * time.Second
	}
	return cfg
}

// notificationTimeouts maps configured millisecond timeouts onto the
// emitter's defaults.
func notificationTimeouts(n NotificationsConfig) notify.Timeouts {
	t := notify.DefaultTimeouts()
	if n.CompletionTimeoutMs > 0 {
		t.Completion = time.Duration(n.CompletionTimeoutMs) * time.Millisecond
	}
	if n.ChallengeTimeoutMs > 0 {
		t.Challenge = time.Duration(n.ChallengeTimeoutMs) * time.Millisecond
	}
	if n.AchievementTimeoutMs > 0 {
		t.Achievement = time.Duration(n.AchievementTimeoutMs) * time.Millisecond
	}
	return t
}
