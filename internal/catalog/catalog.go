package catalog

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/couchcryptid/waterpoints-service/internal/observability"
)

// SnapshotLoader produces a complete catalog snapshot.
type SnapshotLoader interface {
	Load(ctx context.Context) Snapshot
}

// Catalog holds the latest published snapshot. Each refresh takes a request
// token; a finished load is published only if no newer refresh was issued
// while it ran, so a slow stale response cannot overwrite a fresher one.
type Catalog struct {
	loader  SnapshotLoader
	logger  *slog.Logger
	metrics *observability.Metrics
	clock   clockwork.Clock

	issued atomic.Uint64

	mu      sync.RWMutex
	current Snapshot
	loaded  bool
}

// New creates an empty Catalog. Call Refresh or Run to populate it.
func New(loader SnapshotLoader, logger *slog.Logger, metrics *observability.Metrics, clock clockwork.Clock) *Catalog {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Catalog{
		loader:  loader,
		logger:  logger,
		metrics: metrics,
		clock:   clock,
	}
}

// Refresh loads a new snapshot and publishes it if its token is still the
// latest issued. It reports whether the snapshot was published.
func (c *Catalog) Refresh(ctx context.Context) (Snapshot, bool) {
	token := c.issued.Add(1)
	snap := c.loader.Load(ctx)
	snap.Token = token

	c.mu.Lock()
	defer c.mu.Unlock()

	if latest := c.issued.Load(); token != latest {
		c.logger.Warn("discarding stale catalog load", "token", token, "latest", latest)
		c.metrics.CatalogStaleDiscarded.Inc()
		return snap, false
	}

	c.current = snap
	c.loaded = true
	c.metrics.CatalogFeatures.Set(float64(len(snap.Features)))
	c.logger.Info("catalog published",
		"token", token,
		"features", len(snap.Features),
		"issue_types", len(snap.IssueTypes),
	)
	return snap, true
}

// Snapshot returns the current snapshot. Before the first load it is empty.
func (c *Catalog) Snapshot() Snapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.current
}

// CheckReadiness returns nil once a snapshot has been published.
func (c *Catalog) CheckReadiness(_ context.Context) error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if !c.loaded {
		return errors.New("catalog has not been loaded yet")
	}
	return nil
}

// Run refreshes immediately and then on every interval until ctx is cancelled.
func (c *Catalog) Run(ctx context.Context, interval time.Duration) error {
	c.logger.Info("catalog refresher started", "interval", interval)
	c.Refresh(ctx)

	ticker := c.clock.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			c.logger.Info("catalog refresher stopping", "reason", ctx.Err())
			return nil
		case <-ticker.Chan():
			c.Refresh(ctx)
		}
	}
}
