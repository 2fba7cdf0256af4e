// Package pipeline turns raw directory leads into validated catalog entity
// payloads. The Resolver walks one lead through url resolution, dedup,
// enrichment, and normalization; the Runner iterates a queue of leads with
// pacing and aggregate reporting.
package pipeline

import (
	"context"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/ai-navigator/ingest-cli/internal/enrich"
	"github.com/ai-navigator/ingest-cli/internal/logo"
	"github.com/ai-navigator/ingest-cli/internal/model"
	"github.com/ai-navigator/ingest-cli/internal/scrape"
	"github.com/ai-navigator/ingest-cli/internal/taxonomy"
	"github.com/ai-navigator/ingest-cli/internal/urlx"
	"github.com/ai-navigator/ingest-cli/pkg/catalog"
)

// Result is the outcome of resolving one lead. Payload is nil exactly when
// State is LeadStateSkipped.
type Result struct {
	State      model.LeadState
	Resolved   model.ResolvedURL
	ExistingID string
	Payload    *model.EntityPayload
}

// Resolver composes the resolution pipeline for a single lead.
type Resolver struct {
	urls         *urlx.Resolver
	catalog      catalog.Client
	enricher     *enrich.Aggregator
	logos        *logo.Resolver
	scanner      *scrape.Scanner
	matcher      *taxonomy.Matcher
	index        *taxonomy.Index
	entityTypeID string
}

// NewResolver wires the pipeline components together.
func NewResolver(
	urls *urlx.Resolver,
	cat catalog.Client,
	enricher *enrich.Aggregator,
	logos *logo.Resolver,
	scanner *scrape.Scanner,
	matcher *taxonomy.Matcher,
	index *taxonomy.Index,
	entityTypeID string,
) *Resolver {
	return &Resolver{
		urls:         urls,
		catalog:      cat,
		enricher:     enricher,
		logos:        logos,
		scanner:      scanner,
		matcher:      matcher,
		index:        index,
		entityTypeID: entityTypeID,
	}
}

// Resolve walks one lead through the state machine. A duplicate canonical
// URL short-circuits to LeadStateSkipped; any error is returned for the
// runner to convert into a per-lead failure.
func (r *Resolver) Resolve(ctx context.Context, lead model.Lead) (*Result, error) {
	if lead.DisplayName == "" || lead.SourceURL == "" {
		return nil, eris.New("pipeline: lead missing display name or source url")
	}

	log := zap.L().With(
		zap.String("lead", lead.DisplayName),
		zap.String("source", lead.SourceDirectory),
	)
	result := &Result{State: model.LeadStateReceived}

	// RECEIVED -> URL_RESOLVED
	result.Resolved = r.urls.Canonicalize(ctx, lead.SourceURL)
	result.State = model.LeadStateURLResolved
	log = log.With(zap.String("url", result.Resolved.Canonical))

	// URL_RESOLVED -> DEDUP_CHECKED | SKIPPED
	existing, err := r.catalog.FindEntityByWebsiteURL(ctx, result.Resolved.Canonical)
	if err != nil {
		return nil, eris.Wrap(err, "pipeline: dedup check")
	}
	if existing != nil {
		log.Info("pipeline: duplicate entity, skipping",
			zap.String("entity_id", existing.ID),
		)
		result.State = model.LeadStateSkipped
		result.ExistingID = existing.ID
		return result, nil
	}
	result.State = model.LeadStateDedupChecked

	// DEDUP_CHECKED -> ENRICHED
	bundle := r.enricher.Enrich(ctx, lead.DisplayName, result.Resolved.Canonical)

	page, err := r.scanner.Scan(ctx, result.Resolved.Canonical)
	if err != nil {
		log.Debug("pipeline: page scan failed, continuing without structural data", zap.Error(err))
		page = &scrape.PageData{}
	}

	logoURL := r.logos.Resolve(ctx, result.Resolved.Canonical, lead.DisplayName)
	result.State = model.LeadStateEnriched

	// ENRICHED -> NORMALIZED -> READY_FOR_SUBMIT
	payload := r.buildPayload(lead, result.Resolved, bundle.Merged(), page, logoURL)
	result.State = model.LeadStateNormalized

	result.Payload = payload
	result.State = model.LeadStateReadyForSubmit

	log.Info("pipeline: lead resolved",
		zap.Bool("redirected", result.Resolved.WasRedirected),
		zap.Int("enrichment_fields", bundle.FieldCount()),
		zap.Int("categories", len(payload.CategoryIDs)),
		zap.Int("tags", len(payload.TagIDs)),
		zap.Int("features", len(payload.FeatureIDs)),
	)

	return result, nil
}
