// Package report turns a selected water point and an issue type into a
// stored report, and optionally announces it on the event bus.
package report

import (
	"context"
	"log/slog"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/couchcryptid/waterpoints-service/internal/domain"
	"github.com/couchcryptid/waterpoints-service/internal/observability"
)

// User-facing outcomes of a submission.
const (
	SuccessMessage = "Melding succesvol verzonden!"
	FailureMessage = "Er ging iets mis"
)

var (
	// ErrMissingIssueType rejects a submission before any store call.
	ErrMissingIssueType = eris.New("issue type is required")
	// ErrMissingPoint rejects a submission for a feature without an id.
	ErrMissingPoint = eris.New("water point id is required")
	// ErrSubmitFailed wraps store failures.
	ErrSubmitFailed = eris.New("report submission failed")
)

// Store persists reports.
type Store interface {
	InsertReport(ctx context.Context, in domain.NewReport) (domain.Report, error)
}

// Publisher announces stored reports.
type Publisher interface {
	PublishReport(ctx context.Context, r domain.Report) error
}

// Submitter runs the submission workflow: validate, describe, insert once,
// then publish.
type Submitter struct {
	store     Store
	publisher Publisher
	logger    *slog.Logger
	metrics   *observability.Metrics
}

// NewSubmitter creates a Submitter. publisher may be nil.
func NewSubmitter(store Store, publisher Publisher, logger *slog.Logger, metrics *observability.Metrics) *Submitter {
	return &Submitter{
		store:     store,
		publisher: publisher,
		logger:    logger,
		metrics:   metrics,
	}
}

// Submit stores one report for f. There is no retry and no de-duplication:
// every successful call inserts a new row.
func (s *Submitter) Submit(ctx context.Context, f domain.Feature, issueType string) (domain.Report, error) {
	issueType = strings.TrimSpace(issueType)
	if issueType == "" {
		s.metrics.ReportsSubmitted.WithLabelValues("rejected").Inc()
		return domain.Report{}, ErrMissingIssueType
	}
	if f.ResolvedID == "" {
		s.metrics.ReportsSubmitted.WithLabelValues("rejected").Inc()
		return domain.Report{}, ErrMissingPoint
	}

	in := domain.BuildReport(f, issueType)
	stored, err := s.store.InsertReport(ctx, in)
	if err != nil {
		s.metrics.ReportsSubmitted.WithLabelValues("error").Inc()
		s.logger.Error("report insert failed",
			"waterpunt_id", in.WaterpuntID,
			"issue_type", in.IssueType,
			"error", err,
		)
		return domain.Report{}, eris.Wrapf(ErrSubmitFailed, "%v", err)
	}
	s.metrics.ReportsSubmitted.WithLabelValues("success").Inc()
	s.logger.Info("report submitted",
		"report_id", stored.ID,
		"waterpunt_id", stored.WaterpuntID,
		"issue_type", stored.IssueType,
	)

	s.publish(ctx, stored)
	return stored, nil
}

func (s *Submitter) publish(ctx context.Context, r domain.Report) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.PublishReport(ctx, r); err != nil {
		s.metrics.ReportEvents.WithLabelValues("error").Inc()
		s.logger.Warn("report event not published", "report_id", r.ID, "error", err)
		return
	}
	s.metrics.ReportEvents.WithLabelValues("success").Inc()
}
