package pipeline

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ai-navigator/ingest-cli/internal/model"
	"github.com/ai-navigator/ingest-cli/internal/resilience"
	"github.com/ai-navigator/ingest-cli/pkg/catalog"
)

type fakeJournal struct {
	mu        sync.Mutex
	jobID     string
	leadCount int
	outcomes  []model.LeadOutcome
	finished  *model.BatchReport
	startErr  error
}

func (f *fakeJournal) StartRun(ctx context.Context, jobID string, leadCount int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.jobID = jobID
	f.leadCount = leadCount
	return f.startErr
}

func (f *fakeJournal) RecordOutcome(ctx context.Context, jobID string, outcome model.LeadOutcome) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.outcomes = append(f.outcomes, outcome)
	return nil
}

func (f *fakeJournal) FinishRun(ctx context.Context, report *model.BatchReport) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.finished = report
	return nil
}

var _ Journal = (*fakeJournal)(nil)

func fastRetry() resilience.RetryConfig {
	cfg := resilience.DefaultRetryConfig()
	cfg.InitialBackoff = time.Millisecond
	cfg.MaxBackoff = 5 * time.Millisecond
	cfg.ShouldRetry = resilience.IsTransient
	return cfg
}

func newTestRunner(t *testing.T, cat *fakeCatalog, opts ...RunnerOption) *Runner {
	t.Helper()
	opts = append([]RunnerOption{
		WithRateLimit(1000),
		WithRetryConfig(fastRetry()),
	}, opts...)
	return NewRunner(newTestResolver(t, cat), cat, opts...)
}

func TestRunMixedOutcomes(t *testing.T) {
	cat := &fakeCatalog{
		existing: map[string]*catalog.Entity{
			"https://dupetool.ai": {ID: "ent-42"},
		},
	}
	r := newTestRunner(t, cat)

	leads := []model.Lead{
		{DisplayName: "MagicTool", SourceURL: "https://magictool.ai"},
		{DisplayName: "DupeTool", SourceURL: "https://dupetool.ai"},
		{DisplayName: "Broken"}, // no source url
	}
	report, err := r.Run(context.Background(), leads)
	require.NoError(t, err)

	assert.NotEmpty(t, report.JobID)
	assert.Equal(t, 3, report.Processed)
	assert.Equal(t, 1, report.Created)
	assert.Equal(t, 1, report.Skipped)
	assert.Equal(t, 1, report.Failed)
	require.Len(t, report.Outcomes, 3)

	assert.Equal(t, model.OutcomeCreated, report.Outcomes[0].Status)
	assert.Equal(t, "ent-1", report.Outcomes[0].EntityID)
	assert.Equal(t, "https://magictool.ai", report.Outcomes[0].CanonicalURL)

	assert.Equal(t, model.OutcomeSkipped, report.Outcomes[1].Status)
	assert.Equal(t, "ent-42", report.Outcomes[1].EntityID)

	assert.Equal(t, model.OutcomeFailed, report.Outcomes[2].Status)
	assert.Contains(t, report.Outcomes[2].Error, "missing display name or source url")

	require.Len(t, cat.created, 1)
	assert.Equal(t, "MagicTool", cat.created[0]["name"])
}

func TestRunRetriesTransientSubmission(t *testing.T) {
	cat := &fakeCatalog{
		createErrs: []error{
			resilience.NewTransientError(eris.New("catalog: create entity status 503"), 503),
		},
	}
	r := newTestRunner(t, cat)

	report, err := r.Run(context.Background(), []model.Lead{
		{DisplayName: "MagicTool", SourceURL: "https://magictool.ai"},
	})
	require.NoError(t, err)

	assert.Equal(t, 1, report.Created)
	assert.Equal(t, 0, report.Failed)
	require.Len(t, cat.created, 1)
}

func TestRunPermanentSubmissionFailureDoesNotAbort(t *testing.T) {
	cat := &fakeCatalog{
		createErrs: []error{eris.New("catalog: create entity status 422")},
	}
	r := newTestRunner(t, cat)

	report, err := r.Run(context.Background(), []model.Lead{
		{DisplayName: "FirstTool", SourceURL: "https://firsttool.ai"},
		{DisplayName: "SecondTool", SourceURL: "https://secondtool.ai"},
	})
	require.NoError(t, err)

	assert.Equal(t, 1, report.Failed)
	assert.Equal(t, 1, report.Created)
	assert.Equal(t, model.OutcomeFailed, report.Outcomes[0].Status)
	assert.Contains(t, report.Outcomes[0].Error, "status 422")
	assert.Equal(t, model.OutcomeCreated, report.Outcomes[1].Status)
}

func TestRunRecoversFromPanic(t *testing.T) {
	cat := &fakeCatalog{panicOnCreate: true}
	r := newTestRunner(t, cat)

	report, err := r.Run(context.Background(), []model.Lead{
		{DisplayName: "MagicTool", SourceURL: "https://magictool.ai"},
	})
	require.NoError(t, err)

	assert.Equal(t, 1, report.Failed)
	assert.Contains(t, report.Outcomes[0].Error, "panic:")
}

func TestRunJournalReceivesProgress(t *testing.T) {
	cat := &fakeCatalog{}
	journal := &fakeJournal{}
	r := newTestRunner(t, cat, WithJournal(journal))

	report, err := r.Run(context.Background(), []model.Lead{
		{DisplayName: "MagicTool", SourceURL: "https://magictool.ai"},
		{DisplayName: "Broken"},
	})
	require.NoError(t, err)

	assert.Equal(t, report.JobID, journal.jobID)
	assert.Equal(t, 2, journal.leadCount)
	require.Len(t, journal.outcomes, 2)
	assert.Equal(t, model.OutcomeCreated, journal.outcomes[0].Status)
	assert.Equal(t, model.OutcomeFailed, journal.outcomes[1].Status)
	require.NotNil(t, journal.finished)
	assert.Equal(t, 2, journal.finished.Processed)
}

func TestRunJournalStartFailureIsFatal(t *testing.T) {
	cat := &fakeCatalog{}
	journal := &fakeJournal{startErr: eris.New("disk full")}
	r := newTestRunner(t, cat, WithJournal(journal))

	_, err := r.Run(context.Background(), []model.Lead{
		{DisplayName: "MagicTool", SourceURL: "https://magictool.ai"},
	})
	assert.ErrorContains(t, err, "start journal run")
	assert.Empty(t, cat.created)
}

func TestRunCancelledContext(t *testing.T) {
	cat := &fakeCatalog{}
	r := newTestRunner(t, cat)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	report, err := r.Run(ctx, []model.Lead{
		{DisplayName: "MagicTool", SourceURL: "https://magictool.ai"},
	})
	assert.ErrorContains(t, err, "rate limiter")
	assert.Equal(t, 0, report.Processed)
}
