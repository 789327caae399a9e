package scheduler

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/go-co-op/gocron"
	"github.com/google/uuid"

	"github.com/i474232898/luchtmeetnet-monitor/internal/airquality"
	"github.com/i474232898/luchtmeetnet-monitor/internal/store"
)

// RefreshInterval is the fixed cadence of scheduled refreshes.
const RefreshInterval = 300 * time.Second

// Refresher produces one snapshot per call.
type Refresher interface {
	Refresh(ctx context.Context) (airquality.Snapshot, error)
}

// Listener is notified after every successful refresh.
type Listener func(airquality.Snapshot)

// Coordinator periodically refreshes air quality data and caches the latest
// snapshot. Failed refreshes leave the cached snapshot untouched.
type Coordinator struct {
	scheduler *gocron.Scheduler
	refresher Refresher
	store     *store.LatestStore
	interval  time.Duration
	timeout   time.Duration
	logger    *slog.Logger

	mu        sync.RWMutex
	listeners []Listener
}

// New creates a Coordinator. timeout bounds a single refresh cycle.
func New(refresher Refresher, latest *store.LatestStore, timeout time.Duration, logger *slog.Logger) *Coordinator {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if timeout <= 0 {
		timeout = 2 * time.Minute
	}
	return &Coordinator{
		scheduler: gocron.NewScheduler(time.UTC),
		refresher: refresher,
		store:     latest,
		interval:  RefreshInterval,
		timeout:   timeout,
		logger:    logger,
	}
}

// AddListener registers l for successful refreshes.
func (c *Coordinator) AddListener(l Listener) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.listeners = append(c.listeners, l)
}

// FirstRefresh performs the synchronous refresh done at setup.
// Any failure is reported as airquality.ErrNotReady.
func (c *Coordinator) FirstRefresh(ctx context.Context) error {
	if err := c.Refresh(ctx); err != nil {
		return fmt.Errorf("%w: %w", airquality.ErrNotReady, err)
	}
	return nil
}

// Refresh runs one refresh cycle and updates the cache on success.
func (c *Coordinator) Refresh(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	logger := c.logger.With("refresh_id", uuid.NewString())
	start := time.Now()

	snap, err := c.refresher.Refresh(ctx)
	if err != nil {
		c.store.RecordFailure(err)
		logger.Warn("air quality refresh failed", "err", err, "duration", time.Since(start))
		return err
	}

	c.store.SaveSnapshot(snap)
	logger.Info("air quality refreshed",
		"station", snap.Station,
		"lki", snap.Index,
		"status", snap.Category,
		"measured_at", snap.Timestamp,
		"duration", time.Since(start),
	)

	c.mu.RLock()
	listeners := make([]Listener, len(c.listeners))
	copy(listeners, c.listeners)
	c.mu.RUnlock()

	for _, l := range listeners {
		l(snap)
	}
	return nil
}

// Start schedules the periodic refresh. The first run happens one interval
// from now since setup already refreshed synchronously.
func (c *Coordinator) Start() error {
	seconds := int(c.interval.Seconds())

	_, err := c.scheduler.Every(seconds).Seconds().WaitForSchedule().SingletonMode().Do(func() {
		// Errors are recorded in the store; the next attempt is the next tick.
		_ = c.Refresh(context.Background())
	})
	if err != nil {
		return err
	}

	c.scheduler.StartAsync()
	c.logger.Info("air quality coordinator started", "interval", c.interval)
	return nil
}

// Stop stops the scheduler and cancels any future refreshes.
func (c *Coordinator) Stop() {
	if c.scheduler != nil {
		c.scheduler.Stop()
	}
}

// Latest implements airquality.SnapshotSource.
func (c *Coordinator) Latest() (airquality.Snapshot, bool) {
	return c.store.Latest()
}

// Status returns the refresh status of the cache.
func (c *Coordinator) Status() store.Status {
	return c.store.Status()
}

// Interval returns the refresh cadence.
func (c *Coordinator) Interval() time.Duration {
	return c.interval
}
