// Package normalize maps free-text enrichment values onto the closed
// enumerations the catalog schema accepts. Every function is pure: alias
// table first, then ordered keyword heuristics, and nil for anything
// unresolvable. A raw scraped string never leaks through.
package normalize

import (
	"regexp"
	"strings"

	"github.com/ai-navigator/ingest-cli/internal/model"
)

// clean lowercases and trims the input, returning "" for the explicit
// unknown markers.
func clean(raw string) string {
	s := strings.ToLower(strings.TrimSpace(raw))
	switch s {
	case "", "unknown", "n/a", "none", "null":
		return ""
	}
	return s
}

var pricingModelAliases = map[string]model.PricingModel{
	"free":              model.PricingFree,
	"freemium":          model.PricingFreemium,
	"subscription":      model.PricingSubscription,
	"paid":              model.PricingSubscription,
	"pay_per_use":       model.PricingPayPerUse,
	"pay per use":       model.PricingPayPerUse,
	"one_time_purchase": model.PricingOneTimePurchase,
	"one-time":          model.PricingOneTimePurchase,
	"onetime":           model.PricingOneTimePurchase,
	"lifetime":          model.PricingOneTimePurchase,
	"contact_sales":     model.PricingContactSales,
	"contact":           model.PricingContactSales,
	"enterprise":        model.PricingContactSales,
	"open_source":       model.PricingOpenSource,
	"open source":       model.PricingOpenSource,
	"open":              model.PricingOpenSource,
}

// pricingModelKeywords are ordered substring heuristics for phrasing the
// alias table has not seen.
var pricingModelKeywords = []struct {
	words []string
	value model.PricingModel
}{
	{[]string{"usage", "credits", "pay per", "pay-as-you-go", "metered"}, model.PricingPayPerUse},
	{[]string{"subscri", "monthly", "annual", "per month", "/mo"}, model.PricingSubscription},
	{[]string{"one time", "perpetual"}, model.PricingOneTimePurchase},
	{[]string{"quote", "sales team", "talk to", "contact"}, model.PricingContactSales},
	{[]string{"mit license", "apache", "self-host"}, model.PricingOpenSource},
	{[]string{"freemium", "free tier", "free plan"}, model.PricingFreemium},
	{[]string{"free"}, model.PricingFree},
}

// PricingModel normalizes a raw pricing-model string.
func PricingModel(raw string) *model.PricingModel {
	s := clean(raw)
	if s == "" {
		return nil
	}
	if v, ok := pricingModelAliases[s]; ok {
		return &v
	}
	for _, h := range pricingModelKeywords {
		for _, w := range h.words {
			if strings.Contains(s, w) {
				v := h.value
				return &v
			}
		}
	}
	return nil
}

var priceRangeAliases = map[string]model.PriceRange{
	"free":       model.PriceRangeFree,
	"low":        model.PriceRangeLow,
	"medium":     model.PriceRangeMedium,
	"mid":        model.PriceRangeMedium,
	"moderate":   model.PriceRangeMedium,
	"high":       model.PriceRangeHigh,
	"premium":    model.PriceRangeHigh,
	"enterprise": model.PriceRangeEnterprise,
}

// PriceRange normalizes a raw price-range string. Pipe-separated multi-values
// collapse to the first segment.
func PriceRange(raw string) *model.PriceRange {
	s := clean(raw)
	if s == "" {
		return nil
	}
	if first, _, found := strings.Cut(s, "|"); found {
		s = strings.TrimSpace(first)
	}
	if v, ok := priceRangeAliases[s]; ok {
		return &v
	}
	for _, probe := range []struct {
		word  string
		value model.PriceRange
	}{
		{"enterprise", model.PriceRangeEnterprise},
		{"free", model.PriceRangeFree},
		{"high", model.PriceRangeHigh},
		{"expensive", model.PriceRangeHigh},
		{"low", model.PriceRangeLow},
		{"cheap", model.PriceRangeLow},
		{"budget", model.PriceRangeLow},
		{"medium", model.PriceRangeMedium},
	} {
		if strings.Contains(s, probe.word) {
			v := probe.value
			return &v
		}
	}
	return nil
}

var employeeCountAliases = map[string]model.EmployeeCountRange{
	"1-10":      model.Employees1To10,
	"11-50":     model.Employees11To50,
	"51-200":    model.Employees51To200,
	"201-500":   model.Employees201To500,
	"501-1000":  model.Employees501To1000,
	"1001-5000": model.Employees1001To5000,
	"5000+":     model.Employees5001Plus,
	"5001+":     model.Employees5001Plus,
	"500+":      model.Employees501To1000,
	"solo":      model.Employees1To10,
}

var firstIntRe = regexp.MustCompile(`\d+`)

// EmployeeCount normalizes a raw headcount string, bucketing an embedded
// integer into the seven fixed ranges when no textual rule matches.
func EmployeeCount(raw string) *model.EmployeeCountRange {
	s := clean(raw)
	if s == "" {
		return nil
	}
	if v, ok := employeeCountAliases[s]; ok {
		return &v
	}

	m := firstIntRe.FindString(s)
	if m == "" {
		return nil
	}
	n := 0
	for _, d := range m {
		n = n*10 + int(d-'0')
		if n > 1_000_000 {
			break
		}
	}

	var v model.EmployeeCountRange
	switch {
	case n < 1:
		return nil
	case n <= 10:
		v = model.Employees1To10
	case n <= 50:
		v = model.Employees11To50
	case n <= 200:
		v = model.Employees51To200
	case n <= 500:
		v = model.Employees201To500
	case n <= 1000:
		v = model.Employees501To1000
	case n <= 5000:
		v = model.Employees1001To5000
	default:
		v = model.Employees5001Plus
	}
	return &v
}

var fundingStageAliases = map[string]model.FundingStage{
	"pre_seed":      model.FundingPreSeed,
	"pre-seed":      model.FundingPreSeed,
	"preseed":       model.FundingPreSeed,
	"seed":          model.FundingSeed,
	"series_a":      model.FundingSeriesA,
	"series a":      model.FundingSeriesA,
	"series_b":      model.FundingSeriesB,
	"series b":      model.FundingSeriesB,
	"series_c":      model.FundingSeriesC,
	"series c":      model.FundingSeriesC,
	"series_d_plus": model.FundingSeriesDPlus,
	"series d":      model.FundingSeriesDPlus,
	"series e":      model.FundingSeriesDPlus,
	"public":        model.FundingPublic,
	"ipo":           model.FundingPublic,
}

// FundingStage normalizes a raw funding-stage string.
func FundingStage(raw string) *model.FundingStage {
	s := clean(raw)
	if s == "" {
		return nil
	}
	s = strings.ReplaceAll(s, "-", "_")
	if v, ok := fundingStageAliases[s]; ok {
		return &v
	}
	for _, probe := range []struct {
		word  string
		value model.FundingStage
	}{
		{"pre_seed", model.FundingPreSeed},
		{"preseed", model.FundingPreSeed},
		{"series_a", model.FundingSeriesA},
		{"series a", model.FundingSeriesA},
		{"series_b", model.FundingSeriesB},
		{"series_c", model.FundingSeriesC},
		{"series_d", model.FundingSeriesDPlus},
		{"seed", model.FundingSeed},
		{"public", model.FundingPublic},
		{"listed", model.FundingPublic},
		{"bootstrapped", model.FundingPreSeed},
	} {
		if strings.Contains(s, probe.word) {
			v := probe.value
			return &v
		}
	}
	return nil
}
