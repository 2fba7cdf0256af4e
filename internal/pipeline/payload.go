package pipeline

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/ai-navigator/ingest-cli/internal/enrich"
	"github.com/ai-navigator/ingest-cli/internal/model"
	"github.com/ai-navigator/ingest-cli/internal/normalize"
	"github.com/ai-navigator/ingest-cli/internal/scrape"
)

const (
	maxCategories        = 3
	maxTags              = 10
	maxFeatures          = 10
	maxMetaDescription   = 160
	defaultLearningCurve = "MEDIUM"
	metaTitleSuffix      = " | AI Navigator"
)

// buildPayload assembles the submission payload from enrichment fields,
// page-scan data, and the resolved logo. Enrichment values win over page
// scan for overlapping fields; enum fields pass through normalize and may
// end up nil.
func (r *Resolver) buildPayload(
	lead model.Lead,
	resolved model.ResolvedURL,
	fields map[string]any,
	page *scrape.PageData,
	logoURL string,
) *model.EntityPayload {
	categories := capIDs(r.matcher.MatchCategories(enrich.Strings(fields, "categories")), maxCategories)
	if len(categories) == 0 {
		if id := r.index.DefaultCategoryID(); id != "" {
			categories = []string{id}
		}
	}
	tags := capIDs(r.matcher.MatchTags(enrich.Strings(fields, "tags")), maxTags)
	features := capIDs(r.matcher.MatchFeatures(enrich.Strings(fields, "key_features")), maxFeatures)

	social := enrich.StringMap(fields, "social_links")
	for host, link := range page.SocialLinks {
		if _, ok := social[host]; !ok {
			if social == nil {
				social = make(map[string]string)
			}
			social[host] = link
		}
	}

	metaDesc := enrich.String(fields, "short_description")
	if metaDesc == "" {
		metaDesc = page.MetaDescription
	}
	metaDesc = truncate(metaDesc, maxMetaDescription)

	learningCurve := strings.ToUpper(enrich.String(fields, "learning_curve"))
	switch learningCurve {
	case "LOW", "MEDIUM", "HIGH":
	default:
		learningCurve = defaultLearningCurve
	}

	details := &model.ToolDetails{
		LearningCurve:   learningCurve,
		KeyFeatures:     enrich.Strings(fields, "key_features"),
		HasFreeTier:     enrich.Bool(fields, "has_free_tier"),
		UseCases:        enrich.Strings(fields, "use_cases"),
		PricingModel:    normalize.PricingModel(enrich.String(fields, "pricing_model")),
		PriceRange:      normalize.PriceRange(enrich.String(fields, "price_range")),
		PricingDetails:  enrich.String(fields, "pricing_details"),
		PricingURL:      page.PricingURL,
		Integrations:    enrich.Strings(fields, "integrations"),
		SupportEmail:    page.SupportEmail,
		CommunityURL:    page.CommunityURL,
		TargetAudience:  enrich.Strings(fields, "target_audience"),
		MobileSupport:   enrich.Bool(fields, "mobile_support"),
		APIAccess:       enrich.Bool(fields, "api_access"),
		TrialAvailable:  enrich.Bool(fields, "trial_available"),
		OpenSource:      enrich.Bool(fields, "open_source"),
		SupportChannels: enrich.Strings(fields, "support_channels"),
	}
	if details.PricingModel != nil && *details.PricingModel == model.PricingOpenSource {
		details.OpenSource = true
	}

	return &model.EntityPayload{
		Name:             lead.DisplayName,
		WebsiteURL:       resolved.Canonical,
		EntityTypeID:     r.entityTypeID,
		ShortDescription: enrich.String(fields, "short_description"),
		Description:      enrich.String(fields, "description"),
		LogoURL:          logoURL,
		DocumentationURL: page.DocumentationURL,
		ContactURL:       page.ContactURL,
		PrivacyPolicyURL: page.PrivacyPolicyURL,
		FoundedYear:      validYear(enrich.Int(fields, "founded_year")),
		SocialLinks:      social,
		CategoryIDs:      categories,
		TagIDs:           tags,
		FeatureIDs:       features,
		MetaTitle:        lead.DisplayName + metaTitleSuffix,
		MetaDescription:  metaDesc,
		EmployeeCount:    normalize.EmployeeCount(enrich.String(fields, "employee_count_range")),
		FundingStage:     normalize.FundingStage(enrich.String(fields, "funding_stage")),
		LocationSummary:  enrich.String(fields, "location_summary"),
		RefLink:          lead.SourceURL,
		AffiliateStatus:  "NONE",
		Status:           "ACTIVE",
		ToolDetails:      details,
	}
}

// MarshalSubmission converts a payload to the generic map the catalog API
// accepts, pruning empty strings, empty collections, and nulls recursively
// so the API never sees placeholder values.
func MarshalSubmission(p *model.EntityPayload) (map[string]any, error) {
	raw, err := json.Marshal(p)
	if err != nil {
		return nil, eris.Wrap(err, "pipeline: marshal payload")
	}
	var generic map[string]any
	if err := json.Unmarshal(raw, &generic); err != nil {
		return nil, eris.Wrap(err, "pipeline: decode payload")
	}
	pruned, _ := prune(generic).(map[string]any)
	if pruned == nil {
		return nil, eris.New("pipeline: payload empty after pruning")
	}
	return pruned, nil
}

// prune removes empty values bottom-up. Booleans and numbers are always
// kept; zero is a meaningful value for both.
func prune(v any) any {
	switch val := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, item := range val {
			if cleaned := prune(item); cleaned != nil {
				out[k] = cleaned
			}
		}
		if len(out) == 0 {
			return nil
		}
		return out
	case []any:
		out := make([]any, 0, len(val))
		for _, item := range val {
			if cleaned := prune(item); cleaned != nil {
				out = append(out, cleaned)
			}
		}
		if len(out) == 0 {
			return nil
		}
		return out
	case string:
		if strings.TrimSpace(val) == "" {
			return nil
		}
		return val
	case nil:
		return nil
	default:
		return val
	}
}

func capIDs(ids []string, limit int) []string {
	if len(ids) > limit {
		return ids[:limit]
	}
	return ids
}

// truncate shortens s to at most limit runes, preferring a word boundary
// and appending an ellipsis. Cut points are rune-indexed so multibyte text
// never yields invalid UTF-8.
func truncate(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	head := runes[:limit-3]
	cut := len(head)
	if idx := strings.LastIndex(string(head), " "); idx >= 0 {
		if n := len([]rune(string(head)[:idx])); n >= limit/2 {
			cut = n
		}
	}
	return fmt.Sprintf("%s...", strings.TrimSpace(string(head[:cut])))
}

func validYear(year *int) *int {
	if year == nil || *year < 1950 || *year > 2100 {
		return nil
	}
	return year
}
