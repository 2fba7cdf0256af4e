package model

// PricingModel is the catalog's closed pricing-model enumeration.
type PricingModel string

const (
	PricingFree            PricingModel = "FREE"
	PricingFreemium        PricingModel = "FREEMIUM"
	PricingSubscription    PricingModel = "SUBSCRIPTION"
	PricingPayPerUse       PricingModel = "PAY_PER_USE"
	PricingOneTimePurchase PricingModel = "ONE_TIME_PURCHASE"
	PricingContactSales    PricingModel = "CONTACT_SALES"
	PricingOpenSource      PricingModel = "OPEN_SOURCE"
)

// PricingModels lists every declared PricingModel member.
var PricingModels = []PricingModel{
	PricingFree, PricingFreemium, PricingSubscription, PricingPayPerUse,
	PricingOneTimePurchase, PricingContactSales, PricingOpenSource,
}

// PriceRange is the catalog's closed price-range enumeration.
type PriceRange string

const (
	PriceRangeFree       PriceRange = "FREE"
	PriceRangeLow        PriceRange = "LOW"
	PriceRangeMedium     PriceRange = "MEDIUM"
	PriceRangeHigh       PriceRange = "HIGH"
	PriceRangeEnterprise PriceRange = "ENTERPRISE"
)

// PriceRanges lists every declared PriceRange member.
var PriceRanges = []PriceRange{
	PriceRangeFree, PriceRangeLow, PriceRangeMedium, PriceRangeHigh, PriceRangeEnterprise,
}

// EmployeeCountRange is the catalog's closed headcount-bucket enumeration.
type EmployeeCountRange string

const (
	Employees1To10      EmployeeCountRange = "C1_10"
	Employees11To50     EmployeeCountRange = "C11_50"
	Employees51To200    EmployeeCountRange = "C51_200"
	Employees201To500   EmployeeCountRange = "C201_500"
	Employees501To1000  EmployeeCountRange = "C501_1000"
	Employees1001To5000 EmployeeCountRange = "C1001_5000"
	Employees5001Plus   EmployeeCountRange = "C5001_PLUS"
)

// EmployeeCountRanges lists every declared EmployeeCountRange member.
var EmployeeCountRanges = []EmployeeCountRange{
	Employees1To10, Employees11To50, Employees51To200, Employees201To500,
	Employees501To1000, Employees1001To5000, Employees5001Plus,
}

// FundingStage is the catalog's closed funding-stage enumeration.
type FundingStage string

const (
	FundingPreSeed     FundingStage = "PRE_SEED"
	FundingSeed        FundingStage = "SEED"
	FundingSeriesA     FundingStage = "SERIES_A"
	FundingSeriesB     FundingStage = "SERIES_B"
	FundingSeriesC     FundingStage = "SERIES_C"
	FundingSeriesDPlus FundingStage = "SERIES_D_PLUS"
	FundingPublic      FundingStage = "PUBLIC"
)

// FundingStages lists every declared FundingStage member.
var FundingStages = []FundingStage{
	FundingPreSeed, FundingSeed, FundingSeriesA, FundingSeriesB,
	FundingSeriesC, FundingSeriesDPlus, FundingPublic,
}

// ToolDetails holds tool-specific descriptive fields nested inside an
// EntityPayload.
type ToolDetails struct {
	LearningCurve      string        `json:"learning_curve,omitempty"`
	KeyFeatures        []string      `json:"key_features,omitempty"`
	HasFreeTier        bool          `json:"has_free_tier"`
	UseCases           []string      `json:"use_cases,omitempty"`
	PricingModel       *PricingModel `json:"pricing_model,omitempty"`
	PriceRange         *PriceRange   `json:"price_range,omitempty"`
	PricingDetails     string        `json:"pricing_details,omitempty"`
	PricingURL         string        `json:"pricing_url,omitempty"`
	Integrations       []string      `json:"integrations,omitempty"`
	SupportEmail       string        `json:"support_email,omitempty"`
	CommunityURL       string        `json:"community_url,omitempty"`
	TargetAudience     []string      `json:"target_audience,omitempty"`
	MobileSupport      bool          `json:"mobile_support"`
	APIAccess          bool          `json:"api_access"`
	TrialAvailable     bool          `json:"trial_available"`
	OpenSource         bool          `json:"open_source"`
	SupportChannels    []string      `json:"support_channels,omitempty"`
}

// EntityPayload is the normalized entity submitted to the catalog API.
// Every enumerated field is either nil or a declared member of its set,
// never a raw scraped string.
type EntityPayload struct {
	Name             string              `json:"name"`
	WebsiteURL       string              `json:"website_url"`
	EntityTypeID     string              `json:"entity_type_id"`
	ShortDescription string              `json:"short_description,omitempty"`
	Description      string              `json:"description,omitempty"`
	LogoURL          string              `json:"logo_url,omitempty"`
	DocumentationURL string              `json:"documentation_url,omitempty"`
	ContactURL       string              `json:"contact_url,omitempty"`
	PrivacyPolicyURL string              `json:"privacy_policy_url,omitempty"`
	FoundedYear      *int                `json:"founded_year,omitempty"`
	SocialLinks      map[string]string   `json:"social_links,omitempty"`
	CategoryIDs      []string            `json:"category_ids,omitempty"`
	TagIDs           []string            `json:"tag_ids,omitempty"`
	FeatureIDs       []string            `json:"feature_ids,omitempty"`
	MetaTitle        string              `json:"meta_title,omitempty"`
	MetaDescription  string              `json:"meta_description,omitempty"`
	EmployeeCount    *EmployeeCountRange `json:"employee_count_range,omitempty"`
	FundingStage     *FundingStage       `json:"funding_stage,omitempty"`
	LocationSummary  string              `json:"location_summary,omitempty"`
	RefLink          string              `json:"ref_link,omitempty"`
	AffiliateStatus  string              `json:"affiliate_status,omitempty"`
	Status           string              `json:"status,omitempty"`
	ToolDetails      *ToolDetails        `json:"tool_details,omitempty"`
}
