package model

import "time"

// LeadState tracks a lead's progress through the resolver.
type LeadState string

const (
	LeadStateReceived       LeadState = "received"
	LeadStateURLResolved    LeadState = "url_resolved"
	LeadStateDedupChecked   LeadState = "dedup_checked"
	LeadStateEnriched       LeadState = "enriched"
	LeadStateNormalized     LeadState = "normalized"
	LeadStateReadyForSubmit LeadState = "ready_for_submit"
	LeadStateSkipped        LeadState = "skipped"
)

// Lead is a raw scraped directory lead. Immutable once read from the
// crawler's output stream.
type Lead struct {
	DisplayName     string    `json:"tool_name_on_directory"`
	SourceURL       string    `json:"external_website_url"`
	SourceDirectory string    `json:"source_directory"`
	DiscoveredAt    time.Time `json:"scraped_date"`
}

// ResolvedURL is the canonical form of a lead's source URL. The canonical
// string is the dedup key against the catalog.
type ResolvedURL struct {
	Original      string `json:"original"`
	Canonical     string `json:"canonical"`
	WasRedirected bool   `json:"was_redirected"`
}

// OutcomeStatus is the terminal result of processing one lead.
type OutcomeStatus string

const (
	OutcomeCreated OutcomeStatus = "created"
	OutcomeSkipped OutcomeStatus = "skipped"
	OutcomeFailed  OutcomeStatus = "failed"
)

// LeadOutcome records what happened to a single lead in a batch run.
type LeadOutcome struct {
	Lead         Lead          `json:"lead"`
	Status       OutcomeStatus `json:"status"`
	CanonicalURL string        `json:"canonical_url,omitempty"`
	EntityID     string        `json:"entity_id,omitempty"`
	Error        string        `json:"error,omitempty"`
	Duration     int64         `json:"duration_ms"`
}

// BatchReport aggregates per-lead outcomes for one runner pass.
type BatchReport struct {
	JobID     string        `json:"job_id"`
	Processed int           `json:"processed"`
	Created   int           `json:"created"`
	Skipped   int           `json:"skipped"`
	Failed    int           `json:"failed"`
	Outcomes  []LeadOutcome `json:"outcomes"`
	StartedAt time.Time     `json:"started_at"`
	Duration  int64         `json:"duration_ms"`
}

// Add folds one outcome into the report counters.
func (r *BatchReport) Add(o LeadOutcome) {
	r.Processed++
	switch o.Status {
	case OutcomeCreated:
		r.Created++
	case OutcomeSkipped:
		r.Skipped++
	case OutcomeFailed:
		r.Failed++
	}
	r.Outcomes = append(r.Outcomes, o)
}
