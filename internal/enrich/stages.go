package enrich

import "fmt"

// Stage names, in merge order. When two stages emit the same field name, the
// later-declared stage wins.
const (
	StageCore      = "core"
	StageMarket    = "market"
	StageTechnical = "technical"
	StageCommunity = "community"
	StageBusiness  = "business"
	StageQuality   = "quality"
)

// stageOrder fixes both the merge order and the set of stages issued.
var stageOrder = []string{
	StageCore, StageMarket, StageTechnical, StageCommunity, StageBusiness, StageQuality,
}

const systemPrompt = "You are a research assistant for an AI tool directory. " +
	"Provide only verified, factual information. Use null for unverifiable " +
	"fields. Return valid JSON matching the requested schema."

// stagePrompts hold one schema-describing prompt per topical stage.
var stagePrompts = map[string]string{
	StageCore: `Provide core information about the AI tool "%s" (website: %s) as JSON:
{
  "short_description": "1-2 sentence value proposition",
  "description": "detailed 4-6 sentence description covering functionality, benefits, and use cases",
  "key_features": ["feature 1", "feature 2", "feature 3", "feature 4", "feature 5"],
  "use_cases": ["use case 1", "use case 2", "use case 3"],
  "target_audience": ["audience 1", "audience 2"],
  "categories": ["primary category", "secondary category"],
  "tags": ["tag1", "tag2", "tag3", "tag4"],
  "has_free_tier": true,
  "api_access": false,
  "mobile_support": false,
  "integrations": ["integration1", "integration2"]
}`,

	StageMarket: `Provide market intelligence for "%s" (website: %s) as JSON:
{
  "market_position": "leader|challenger|niche|emerging",
  "alternative_tools": ["alternative 1", "alternative 2"],
  "competitive_advantages": ["advantage 1", "advantage 2"],
  "user_adoption": "early|growing|mature|declining"
}`,

	StageTechnical: `Provide technical details for "%s" (website: %s) as JSON:
{
  "platform_compatibility": ["web", "windows", "mac", "linux", "ios", "android"],
  "supported_languages": ["english", "spanish"],
  "deployment_options": ["cloud", "on-premise"],
  "programming_languages": ["python", "javascript"],
  "open_source": false
}`,

	StageCommunity: `Provide community and user data for "%s" (website: %s) as JSON:
{
  "community_url": "url of community forum/discord if any",
  "documentation_quality": "poor|fair|good|excellent",
  "support_channels": ["email", "chat", "community"],
  "overall_rating": "4.5/5",
  "review_count": "number of reviews"
}`,

	StageBusiness: `Provide business intelligence for "%s" (website: %s) as JSON:
{
  "pricing_model": "FREE|FREEMIUM|SUBSCRIPTION|PAY_PER_USE|ONE_TIME_PURCHASE|CONTACT_SALES|OPEN_SOURCE",
  "price_range": "FREE|LOW|MEDIUM|HIGH|ENTERPRISE",
  "pricing_details": "specific pricing with actual numbers if available",
  "founded_year": 2023,
  "employee_count_range": "1-10|11-50|51-200|201-500|501-1000|1001-5000|5000+",
  "funding_stage": "PRE_SEED|SEED|SERIES_A|SERIES_B|SERIES_C|SERIES_D_PLUS|PUBLIC",
  "location_summary": "City, Country or Remote",
  "social_links": {"twitter": "handle", "linkedin": "company/name"}
}`,

	StageQuality: `Provide quality and trust indicators for "%s" (website: %s) as JSON:
{
  "product_maturity": "beta|stable|mature|enterprise",
  "trial_available": true,
  "demo_available": false,
  "learning_curve": "LOW|MEDIUM|HIGH",
  "compliance_certifications": ["soc2", "gdpr"]
}`,
}

// prompt renders the user message for one stage.
func prompt(stage, name, websiteURL string) string {
	return fmt.Sprintf(stagePrompts[stage], name, websiteURL)
}
