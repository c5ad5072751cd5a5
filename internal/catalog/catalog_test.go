package catalog

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/waterpoints-service/internal/domain"
	"github.com/couchcryptid/waterpoints-service/internal/observability"
)

// gatedLoader blocks its first call until release is closed and answers
// later calls immediately.
type gatedLoader struct {
	calls   atomic.Int32
	entered chan struct{}
	release chan struct{}
}

func newGatedLoader() *gatedLoader {
	return &gatedLoader{entered: make(chan struct{}), release: make(chan struct{})}
}

func (g *gatedLoader) Load(_ context.Context) Snapshot {
	n := g.calls.Add(1)
	if n == 1 {
		close(g.entered)
		<-g.release
		return Snapshot{Features: []domain.Feature{{ResolvedID: "stale"}}}
	}
	return Snapshot{Features: []domain.Feature{{ResolvedID: "fresh"}}}
}

// countingLoader signals every call on a channel.
type countingLoader struct {
	calls chan int
	n     atomic.Int32
}

func (c *countingLoader) Load(_ context.Context) Snapshot {
	n := int(c.n.Add(1))
	c.calls <- n
	return Snapshot{Features: make([]domain.Feature, n)}
}

func newTestCatalog(loader SnapshotLoader, clock clockwork.Clock) *Catalog {
	return New(loader, discardLogger(), observability.NewMetricsForTesting(), clock)
}

func TestCatalog_RefreshPublishes(t *testing.T) {
	water := &stubSource{name: "drinkwaterplekken-gent", features: []domain.Feature{fountain("42", "Fontein A")}}
	c := newTestCatalog(newTestLoader([]FeatureSource{water}, nil), nil)

	require.Error(t, c.CheckReadiness(context.Background()), "not ready before first load")
	assert.Empty(t, c.Snapshot().Features)

	snap, published := c.Refresh(context.Background())
	require.True(t, published)
	assert.Equal(t, uint64(1), snap.Token)
	assert.Equal(t, "42", c.Snapshot().Features[0].ResolvedID)
	assert.NoError(t, c.CheckReadiness(context.Background()))
}

func TestCatalog_StaleLoadIsDiscarded(t *testing.T) {
	loader := newGatedLoader()
	c := newTestCatalog(loader, nil)

	type result struct {
		snap      Snapshot
		published bool
	}
	slow := make(chan result, 1)
	go func() {
		snap, ok := c.Refresh(context.Background())
		slow <- result{snap, ok}
	}()

	<-loader.entered

	fresh, published := c.Refresh(context.Background())
	require.True(t, published)
	assert.Equal(t, uint64(2), fresh.Token)

	close(loader.release)
	stale := <-slow

	assert.False(t, stale.published)
	assert.Equal(t, uint64(1), stale.snap.Token)
	assert.Equal(t, "fresh", c.Snapshot().Features[0].ResolvedID)
}

func TestCatalog_RunRefreshesOnInterval(t *testing.T) {
	clock := clockwork.NewFakeClock()
	loader := &countingLoader{calls: make(chan int, 4)}
	c := newTestCatalog(loader, clock)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- c.Run(ctx, time.Minute) }()

	assert.Equal(t, 1, <-loader.calls, "initial refresh")
	require.NoError(t, clock.BlockUntilContext(ctx, 1))

	clock.Advance(time.Minute)
	assert.Equal(t, 2, <-loader.calls, "refresh after one interval")

	cancel()
	require.NoError(t, <-done)
	assert.Len(t, c.Snapshot().Features, 2)
}
