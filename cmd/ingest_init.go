package main

import (
	"context"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/ai-navigator/ingest-cli/internal/enrich"
	"github.com/ai-navigator/ingest-cli/internal/fetch"
	"github.com/ai-navigator/ingest-cli/internal/logo"
	"github.com/ai-navigator/ingest-cli/internal/pipeline"
	"github.com/ai-navigator/ingest-cli/internal/resilience"
	"github.com/ai-navigator/ingest-cli/internal/scrape"
	"github.com/ai-navigator/ingest-cli/internal/store"
	"github.com/ai-navigator/ingest-cli/internal/taxonomy"
	"github.com/ai-navigator/ingest-cli/internal/urlx"
	"github.com/ai-navigator/ingest-cli/pkg/catalog"
	"github.com/ai-navigator/ingest-cli/pkg/perplexity"
)

// ingestEnv holds the initialized clients, taxonomy state, and pipeline
// needed by the run/batch/serve commands.
type ingestEnv struct {
	Store    store.Store
	Catalog  catalog.Client
	Resolver *pipeline.Resolver
	Runner   *pipeline.Runner
	Logos    *logo.Resolver
	Missing  *taxonomy.MissingLog
}

// Close releases resources held by the environment.
func (e *ingestEnv) Close() {
	if e.Missing != nil {
		_ = e.Missing.Close()
	}
	if e.Store != nil {
		_ = e.Store.Close()
	}
}

// initIngest sets up the store, API clients, and taxonomy index, then
// builds the resolver and runner. Callers should defer env.Close().
func initIngest(ctx context.Context) (*ingestEnv, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	st, err := store.NewSQLite(cfg.Store.Path)
	if err != nil {
		return nil, err
	}
	if err := st.Migrate(ctx); err != nil {
		_ = st.Close()
		return nil, eris.Wrap(err, "migrate store")
	}

	catalogClient := catalog.NewClient(cfg.Catalog.BaseURL, cfg.Catalog.Email, cfg.Catalog.Password,
		catalog.WithAuthBaseURL(cfg.Catalog.AuthBaseURL),
	)
	perplexityClient := perplexity.NewClient(cfg.Perplexity.Key,
		perplexity.WithBaseURL(cfg.Perplexity.BaseURL),
		perplexity.WithModel(cfg.Perplexity.Model),
	)
	fetcher := fetch.NewHTTPClient(fetch.WithTimeout(time.Duration(cfg.Fetch.TimeoutSecs) * time.Second))

	index, err := taxonomy.Load(ctx, catalogClient)
	if err != nil {
		_ = st.Close()
		return nil, eris.Wrap(err, "load taxonomy")
	}

	aliases := taxonomy.DefaultAliases()
	if cfg.Taxonomy.AliasFile != "" {
		aliases, err = taxonomy.LoadAliases(cfg.Taxonomy.AliasFile)
		if err != nil {
			_ = st.Close()
			return nil, eris.Wrap(err, "load taxonomy aliases")
		}
	}

	missing, err := taxonomy.OpenMissingLog(cfg.Taxonomy.MissingLogPath)
	if err != nil {
		zap.L().Warn("missing-taxonomy log unavailable, recording in memory only", zap.Error(err))
		missing, _ = taxonomy.OpenMissingLog("")
	}

	matcher := taxonomy.NewMatcher(index, aliases, missing)
	logos := logo.NewResolver(fetcher)

	resolver := pipeline.NewResolver(
		urlx.NewResolver(fetcher),
		catalogClient,
		enrich.NewAggregator(perplexityClient),
		logos,
		scrape.NewScanner(fetcher),
		matcher,
		index,
		cfg.Catalog.EntityTypeID,
	)

	retryCfg := resilience.DefaultRetryConfig()
	if cfg.Batch.MaxRetries > 0 {
		retryCfg.MaxAttempts = cfg.Batch.MaxRetries
	}
	retryCfg.ShouldRetry = resilience.IsTransient
	retryCfg.OnRetry = resilience.RetryLogger("catalog", "create_entity")

	runner := pipeline.NewRunner(resolver, catalogClient,
		pipeline.WithRateLimit(cfg.Batch.LeadsPerSecond),
		pipeline.WithRetryConfig(retryCfg),
		pipeline.WithJournal(st),
	)

	return &ingestEnv{
		Store:    st,
		Catalog:  catalogClient,
		Resolver: resolver,
		Runner:   runner,
		Logos:    logos,
		Missing:  missing,
	}, nil
}
