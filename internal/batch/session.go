// Package batch runs one uploaded file through ingestion and the remote batch
// match, keeping the most recent successful report.
package batch

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"entmatch/internal/ingest"
	"entmatch/internal/logging"
	"entmatch/internal/matcher"
	"entmatch/internal/results"
	"entmatch/internal/services"
)

// Matcher is the remote operation a batch upload needs.
type Matcher interface {
	MatchBatch(ctx context.Context, names []string) ([]matcher.BatchOutcome, error)
}

// Ingestor turns a file into names.
type Ingestor interface {
	Ingest(ctx context.Context, file ingest.File) ([]string, error)
}

// Report is the result of one successful upload.
type Report struct {
	ID          string                 `json:"id"`
	File        string                 `json:"file"`
	Names       int                    `json:"names"`
	Outcomes    []matcher.BatchOutcome `json:"outcomes"`
	Summary     results.Summary        `json:"summary"`
	Elapsed     time.Duration          `json:"elapsed_ns"`
	CompletedAt time.Time              `json:"completed_at"`
}

// Session holds the last good report across uploads.
type Session struct {
	ingestor Ingestor
	matcher  Matcher
	logger   *slog.Logger
	now      func() time.Time

	mu   sync.Mutex
	last *Report
}

// NewSession constructs a Session.
func NewSession(ingestor Ingestor, m Matcher, logger *slog.Logger) *Session {
	return &Session{
		ingestor: ingestor,
		matcher:  m,
		logger:   logging.NewComponentLogger(logger, "batch"),
		now:      time.Now,
	}
}

// Upload ingests file completely, then submits the names. On any failure the
// previously held report is left untouched and the error is returned.
func (s *Session) Upload(ctx context.Context, file ingest.File) (Report, error) {
	id := uuid.NewString()
	ctx = services.WithRequestID(ctx, id)
	logger := logging.WithContext(ctx, s.logger)
	start := s.now()

	names, err := s.ingestor.Ingest(ctx, file)
	if err != nil {
		logger.Info("batch file rejected", logging.String("file", file.Name), logging.Error(err))
		return Report{}, err
	}

	outcomes, err := s.matcher.MatchBatch(ctx, names)
	if err != nil {
		logger.Warn("batch match failed",
			logging.String("file", file.Name),
			logging.Int("names", len(names)),
			logging.Error(err),
			logging.String(logging.FieldEventType, "batch_failed"),
		)
		return Report{}, fmt.Errorf("match batch: %w", err)
	}

	report := Report{
		ID:          id,
		File:        file.Name,
		Names:       len(names),
		Outcomes:    outcomes,
		Summary:     results.Summarize(outcomes),
		CompletedAt: s.now(),
	}
	report.Elapsed = report.CompletedAt.Sub(start)

	s.mu.Lock()
	s.last = &report
	s.mu.Unlock()

	logger.Info("batch complete",
		logging.String("file", file.Name),
		logging.Group("summary",
			logging.Int("total", report.Summary.Total),
			logging.Int("successful", report.Summary.Successful),
			logging.Int("failed", report.Summary.Failed),
		),
		logging.Duration("elapsed", report.Elapsed),
	)
	return report, nil
}

// Last returns the most recent successful report. Callers that keep one
// Session across uploads use it to show the previous result after a failure.
func (s *Session) Last() (Report, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.last == nil {
		return Report{}, false
	}
	return *s.last, true
}
