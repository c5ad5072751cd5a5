package catalog

import (
	"context"
	"log/slog"
	"time"

	"github.com/jonboulle/clockwork"
	"golang.org/x/sync/errgroup"

	"github.com/couchcryptid/waterpoints-service/internal/domain"
	"github.com/couchcryptid/waterpoints-service/internal/observability"
)

// issueTypesSource is the status name of the issue-type query.
const issueTypesSource = "issue_types"

// FeatureSource fetches one open-data feature collection.
type FeatureSource interface {
	Name() string
	FetchFeatures(ctx context.Context) ([]domain.Feature, error)
}

// IssueTypeSource lists the reportable issue categories.
type IssueTypeSource interface {
	ListIssueTypes(ctx context.Context) ([]domain.IssueType, error)
}

// SourceStatus records the outcome of one source in a load.
type SourceStatus struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
	Error string `json:"error,omitempty"`
}

// Snapshot is one published catalog.
type Snapshot struct {
	Features         []domain.Feature
	IssueTypes       []domain.IssueType
	DefaultIssueType string
	Sources          []SourceStatus
	LoadedAt         time.Time
	Token            uint64
}

// Loader fetches all sources concurrently and merges them into a Snapshot.
type Loader struct {
	sources    []FeatureSource
	issueTypes IssueTypeSource
	logger     *slog.Logger
	metrics    *observability.Metrics
	clock      clockwork.Clock
}

// NewLoader creates a Loader. issueTypes may be nil when only points are needed.
func NewLoader(sources []FeatureSource, issueTypes IssueTypeSource, logger *slog.Logger, metrics *observability.Metrics, clock clockwork.Clock) *Loader {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Loader{
		sources:    sources,
		issueTypes: issueTypes,
		logger:     logger,
		metrics:    metrics,
		clock:      clock,
	}
}

// Load issues every fetch at once and waits for all of them. A failed source
// is logged and contributes nothing; the load itself never fails. Features
// keep source order, are not de-duplicated, and all carry a ResolvedID.
func (l *Loader) Load(ctx context.Context) Snapshot {
	results := make([][]domain.Feature, len(l.sources))
	statuses := make([]SourceStatus, len(l.sources))
	var issueTypes []domain.IssueType
	var issueStatus *SourceStatus

	g, gctx := errgroup.WithContext(ctx)

	for i, src := range l.sources {
		g.Go(func() error {
			start := l.clock.Now()
			features, err := src.FetchFeatures(gctx)
			l.metrics.CatalogFetchDuration.WithLabelValues(src.Name()).Observe(l.clock.Since(start).Seconds())

			statuses[i] = l.record(src.Name(), len(features), err)
			if err == nil {
				results[i] = features
			}
			return nil
		})
	}

	if l.issueTypes != nil {
		g.Go(func() error {
			types, err := l.issueTypes.ListIssueTypes(gctx)
			status := l.record(issueTypesSource, len(types), err)
			issueStatus = &status
			if err == nil {
				issueTypes = types
			}
			return nil
		})
	}

	_ = g.Wait() // sources report failures through their status, never as errors

	total := 0
	for _, fs := range results {
		total += len(fs)
	}
	merged := make([]domain.Feature, 0, total)
	for _, fs := range results {
		for _, f := range fs {
			f.Resolve()
			merged = append(merged, f)
		}
	}

	snap := Snapshot{
		Features:   merged,
		IssueTypes: issueTypes,
		Sources:    statuses,
		LoadedAt:   l.clock.Now().UTC(),
	}
	if issueStatus != nil {
		snap.Sources = append(snap.Sources, *issueStatus)
	}
	if len(issueTypes) > 0 {
		snap.DefaultIssueType = issueTypes[0].Value
	}
	return snap
}

func (l *Loader) record(name string, count int, err error) SourceStatus {
	if err != nil {
		l.logger.Error("catalog source failed, continuing without it", "source", name, "error", err)
		l.metrics.CatalogSourceLoads.WithLabelValues(name, "error").Inc()
		return SourceStatus{Name: name, Error: err.Error()}
	}
	l.metrics.CatalogSourceLoads.WithLabelValues(name, "success").Inc()
	return SourceStatus{Name: name, Count: count}
}
