package pipeline

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ai-navigator/ingest-cli/internal/model"
	"github.com/ai-navigator/ingest-cli/internal/scrape"
)

func testLead() model.Lead {
	return model.Lead{
		DisplayName:     "MagicTool",
		SourceURL:       "https://futuretools.link/magictool",
		SourceDirectory: "futuretools",
	}
}

func testResolved() model.ResolvedURL {
	return model.ResolvedURL{
		Original:      "https://futuretools.link/magictool",
		Canonical:     "https://magictool.ai",
		WasRedirected: true,
	}
}

func TestBuildPayloadCapsTaxonomyIDs(t *testing.T) {
	r := newTestResolver(t, &fakeCatalog{})

	fields := map[string]any{
		"categories": []any{"NLP", "Computer Vision", "Code Assistants", "Audio", "AI Tools"},
	}
	p := r.buildPayload(testLead(), testResolved(), fields, &scrape.PageData{}, "")
	assert.Equal(t, []string{"cat-nlp", "cat-cv", "cat-code"}, p.CategoryIDs)
}

func TestBuildPayloadDefaultCategory(t *testing.T) {
	r := newTestResolver(t, &fakeCatalog{})

	p := r.buildPayload(testLead(), testResolved(), map[string]any{}, &scrape.PageData{}, "")
	assert.Equal(t, []string{"cat-ai"}, p.CategoryIDs)
}

func TestBuildPayloadEnrichmentWinsOverPageScan(t *testing.T) {
	r := newTestResolver(t, &fakeCatalog{})

	fields := map[string]any{
		"short_description": "Short pitch from enrichment.",
		"social_links":      map[string]any{"twitter": "https://twitter.com/enriched"},
	}
	page := &scrape.PageData{
		MetaDescription: "Meta description from the page.",
		SocialLinks: map[string]string{
			"twitter": "https://twitter.com/scraped",
			"github":  "https://github.com/magictool",
		},
	}
	p := r.buildPayload(testLead(), testResolved(), fields, page, "")

	assert.Equal(t, "Short pitch from enrichment.", p.MetaDescription)
	assert.Equal(t, "https://twitter.com/enriched", p.SocialLinks["twitter"])
	assert.Equal(t, "https://github.com/magictool", p.SocialLinks["github"])
}

func TestBuildPayloadMetaDescriptionFallsBackToPage(t *testing.T) {
	r := newTestResolver(t, &fakeCatalog{})

	page := &scrape.PageData{MetaDescription: "Meta description from the page."}
	p := r.buildPayload(testLead(), testResolved(), map[string]any{}, page, "")
	assert.Equal(t, "Meta description from the page.", p.MetaDescription)
}

func TestBuildPayloadLearningCurve(t *testing.T) {
	r := newTestResolver(t, &fakeCatalog{})

	for raw, want := range map[string]string{
		"low":     "LOW",
		"High":    "HIGH",
		"steep":   "MEDIUM",
		"":        "MEDIUM",
		"unknown": "MEDIUM",
	} {
		fields := map[string]any{"learning_curve": raw}
		p := r.buildPayload(testLead(), testResolved(), fields, &scrape.PageData{}, "")
		assert.Equal(t, want, p.ToolDetails.LearningCurve, "input %q", raw)
	}
}

func TestBuildPayloadOpenSourcePricingSetsFlag(t *testing.T) {
	r := newTestResolver(t, &fakeCatalog{})

	fields := map[string]any{"pricing_model": "open source", "open_source": false}
	p := r.buildPayload(testLead(), testResolved(), fields, &scrape.PageData{}, "")

	require.NotNil(t, p.ToolDetails.PricingModel)
	assert.Equal(t, model.PricingOpenSource, *p.ToolDetails.PricingModel)
	assert.True(t, p.ToolDetails.OpenSource)
}

func TestBuildPayloadIdentityFields(t *testing.T) {
	r := newTestResolver(t, &fakeCatalog{})

	p := r.buildPayload(testLead(), testResolved(), map[string]any{}, &scrape.PageData{}, "https://cdn.example.com/logo.png")

	assert.Equal(t, "MagicTool", p.Name)
	assert.Equal(t, "https://magictool.ai", p.WebsiteURL)
	assert.Equal(t, "type-tool", p.EntityTypeID)
	assert.Equal(t, "https://cdn.example.com/logo.png", p.LogoURL)
	assert.Equal(t, "MagicTool | AI Navigator", p.MetaTitle)
	assert.Equal(t, "https://futuretools.link/magictool", p.RefLink)
	assert.Equal(t, "NONE", p.AffiliateStatus)
	assert.Equal(t, "ACTIVE", p.Status)
}

func TestTruncateWordBoundary(t *testing.T) {
	long := strings.Repeat("word ", 50) // 250 chars
	got := truncate(long, 160)

	assert.LessOrEqual(t, len(got), 160)
	assert.True(t, strings.HasSuffix(got, "..."))
	assert.False(t, strings.HasSuffix(strings.TrimSuffix(got, "..."), "wor"), "must cut on a word boundary")

	short := "fits entirely"
	assert.Equal(t, short, truncate(short, 160))
}

func TestTruncateMultibyteStaysValidUTF8(t *testing.T) {
	unbroken := strings.Repeat("ü", 200)
	got := truncate(unbroken, 160)
	assert.True(t, utf8.ValidString(got))
	assert.LessOrEqual(t, utf8.RuneCountInString(got), 160)
	assert.True(t, strings.HasSuffix(got, "..."))

	worded := strings.Repeat("très jolie ", 30)
	got = truncate(worded, 160)
	assert.True(t, utf8.ValidString(got))
	assert.LessOrEqual(t, utf8.RuneCountInString(got), 160)
	assert.True(t, strings.HasSuffix(strings.TrimSuffix(got, "..."), "e"), "must cut on a word boundary")
}

func TestValidYear(t *testing.T) {
	year := func(v int) *int { return &v }

	assert.Nil(t, validYear(nil))
	assert.Nil(t, validYear(year(1949)))
	assert.Nil(t, validYear(year(2101)))
	assert.Equal(t, 2021, *validYear(year(2021)))
	assert.Equal(t, 1950, *validYear(year(1950)))
}

func TestMarshalSubmissionPrunesEmpties(t *testing.T) {
	r := newTestResolver(t, &fakeCatalog{})

	fields := map[string]any{"has_free_tier": false}
	p := r.buildPayload(testLead(), testResolved(), fields, &scrape.PageData{}, "")
	p.Description = "   "

	submission, err := MarshalSubmission(p)
	require.NoError(t, err)

	assert.Equal(t, "MagicTool", submission["name"])
	_, hasDescription := submission["description"]
	assert.False(t, hasDescription, "blank strings are pruned")
	_, hasSocial := submission["social_links"]
	assert.False(t, hasSocial, "empty maps are pruned")

	details, ok := submission["tool_details"].(map[string]any)
	require.True(t, ok)
	// Zero-valued booleans are meaningful and survive pruning.
	assert.Equal(t, false, details["has_free_tier"])
}

func TestMarshalSubmissionRoundTripsNestedDetails(t *testing.T) {
	r := newTestResolver(t, &fakeCatalog{})

	fields := map[string]any{
		"pricing_model": "freemium",
		"key_features":  []any{"Autocomplete"},
	}
	p := r.buildPayload(testLead(), testResolved(), fields, &scrape.PageData{}, "")

	submission, err := MarshalSubmission(p)
	require.NoError(t, err)

	details, ok := submission["tool_details"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "FREEMIUM", details["pricing_model"])
	assert.Equal(t, []any{"Autocomplete"}, details["key_features"])
}
