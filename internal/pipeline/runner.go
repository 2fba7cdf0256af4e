package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/ai-navigator/ingest-cli/internal/model"
	"github.com/ai-navigator/ingest-cli/internal/resilience"
	"github.com/ai-navigator/ingest-cli/pkg/catalog"
)

// Journal persists batch runs and per-lead outcomes. Implemented by the
// sqlite store; a nil Journal on the Runner disables persistence.
type Journal interface {
	StartRun(ctx context.Context, jobID string, leadCount int) error
	RecordOutcome(ctx context.Context, jobID string, outcome model.LeadOutcome) error
	FinishRun(ctx context.Context, report *model.BatchReport) error
}

// Runner drives a batch of leads through the Resolver sequentially, pacing
// catalog submissions and retrying transient failures.
type Runner struct {
	resolver *Resolver
	catalog  catalog.Client
	limiter  *rate.Limiter
	retry    resilience.RetryConfig
	journal  Journal
}

// RunnerOption customizes a Runner.
type RunnerOption func(*Runner)

// WithRateLimit paces lead processing to n leads per second.
func WithRateLimit(n float64) RunnerOption {
	return func(r *Runner) {
		if n > 0 {
			r.limiter = rate.NewLimiter(rate.Limit(n), 1)
		}
	}
}

// WithRetryConfig overrides the submission retry policy.
func WithRetryConfig(cfg resilience.RetryConfig) RunnerOption {
	return func(r *Runner) { r.retry = cfg }
}

// WithJournal persists run progress through the given journal.
func WithJournal(j Journal) RunnerOption {
	return func(r *Runner) { r.journal = j }
}

// NewRunner builds a Runner around a resolver and catalog client.
func NewRunner(resolver *Resolver, cat catalog.Client, opts ...RunnerOption) *Runner {
	r := &Runner{
		resolver: resolver,
		catalog:  cat,
		limiter:  rate.NewLimiter(rate.Limit(1), 1),
		retry:    resilience.DefaultRetryConfig(),
	}
	r.retry.ShouldRetry = resilience.IsTransient
	r.retry.OnRetry = resilience.RetryLogger("catalog", "create_entity")
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run processes every lead in order and returns the aggregate report. A
// failing lead never aborts the batch; the error return covers only run
// setup and context cancellation.
func (r *Runner) Run(ctx context.Context, leads []model.Lead) (*model.BatchReport, error) {
	report := &model.BatchReport{
		JobID:     uuid.NewString(),
		StartedAt: time.Now().UTC(),
	}
	log := zap.L().With(zap.String("job_id", report.JobID))
	log.Info("runner: starting batch", zap.Int("leads", len(leads)))

	if r.journal != nil {
		if err := r.journal.StartRun(ctx, report.JobID, len(leads)); err != nil {
			return nil, eris.Wrap(err, "runner: start journal run")
		}
	}

	for _, lead := range leads {
		if err := r.limiter.Wait(ctx); err != nil {
			return report, eris.Wrap(err, "runner: rate limiter")
		}
		outcome := r.processOne(ctx, lead)
		report.Add(outcome)
		if r.journal != nil {
			if err := r.journal.RecordOutcome(ctx, report.JobID, outcome); err != nil {
				log.Warn("runner: journal write failed", zap.Error(err))
			}
		}
	}

	report.Duration = time.Since(report.StartedAt).Milliseconds()
	if r.journal != nil {
		if err := r.journal.FinishRun(ctx, report); err != nil {
			log.Warn("runner: journal finish failed", zap.Error(err))
		}
	}

	log.Info("runner: batch complete",
		zap.Int("processed", report.Processed),
		zap.Int("created", report.Created),
		zap.Int("skipped", report.Skipped),
		zap.Int("failed", report.Failed),
		zap.Int64("duration_ms", report.Duration),
	)
	return report, nil
}

// processOne resolves and submits a single lead, converting any pipeline
// error or panic into a failed outcome so the batch keeps moving.
func (r *Runner) processOne(ctx context.Context, lead model.Lead) (outcome model.LeadOutcome) {
	start := time.Now()
	outcome = model.LeadOutcome{Lead: lead}
	defer func() {
		if rec := recover(); rec != nil {
			outcome.Status = model.OutcomeFailed
			outcome.Error = fmt.Sprintf("panic: %v", rec)
			zap.L().Error("runner: lead panicked",
				zap.String("lead", lead.DisplayName),
				zap.Any("panic", rec),
			)
		}
		outcome.Duration = time.Since(start).Milliseconds()
	}()

	result, err := r.resolver.Resolve(ctx, lead)
	if err != nil {
		outcome.Status = model.OutcomeFailed
		outcome.Error = err.Error()
		zap.L().Warn("runner: lead failed",
			zap.String("lead", lead.DisplayName),
			zap.Error(err),
		)
		return outcome
	}
	outcome.CanonicalURL = result.Resolved.Canonical

	if result.State == model.LeadStateSkipped {
		outcome.Status = model.OutcomeSkipped
		outcome.EntityID = result.ExistingID
		return outcome
	}

	submission, err := MarshalSubmission(result.Payload)
	if err != nil {
		outcome.Status = model.OutcomeFailed
		outcome.Error = err.Error()
		return outcome
	}

	entity, err := resilience.DoVal(ctx, r.retry, func(ctx context.Context) (*catalog.Entity, error) {
		return r.catalog.CreateEntity(ctx, submission)
	})
	if err != nil {
		outcome.Status = model.OutcomeFailed
		outcome.Error = err.Error()
		zap.L().Warn("runner: submission failed",
			zap.String("lead", lead.DisplayName),
			zap.Error(err),
		)
		return outcome
	}

	outcome.Status = model.OutcomeCreated
	outcome.EntityID = entity.ID
	zap.L().Info("runner: entity created",
		zap.String("lead", lead.DisplayName),
		zap.String("entity_id", entity.ID),
	)
	return outcome
}
