package taxonomy

import (
	"sort"
	"strings"

	"github.com/agext/levenshtein"
	"go.uber.org/zap"
)

// SimilarityThreshold is the minimum normalized similarity for a fuzzy match
// to be accepted.
const SimilarityThreshold = 0.6

// Matcher resolves raw scraped terms to catalog identifiers. Matching order
// per term: exact key, alias substring, then fuzzy similarity against every
// index key. Unmatched terms are recorded and dropped, never fatal.
type Matcher struct {
	index     *Index
	aliases   Aliases
	missing   *MissingLog
	threshold float64
}

// NewMatcher creates a Matcher over a loaded index.
func NewMatcher(index *Index, aliases Aliases, missing *MissingLog) *Matcher {
	return &Matcher{
		index:     index,
		aliases:   aliases,
		missing:   missing,
		threshold: SimilarityThreshold,
	}
}

// MatchCategories maps raw category names to catalog identifiers.
func (m *Matcher) MatchCategories(terms []string) []string {
	return m.matchAll("category", terms, m.index.Categories, m.aliases.Categories)
}

// MatchTags maps raw tag names to catalog identifiers.
func (m *Matcher) MatchTags(terms []string) []string {
	return m.matchAll("tag", terms, m.index.Tags, m.aliases.Tags)
}

// MatchFeatures maps raw feature names to catalog identifiers.
func (m *Matcher) MatchFeatures(terms []string) []string {
	return m.matchAll("feature", terms, m.index.Features, m.aliases.Features)
}

func (m *Matcher) matchAll(kind string, terms []string, index, aliases map[string]string) []string {
	var ids []string
	for _, term := range terms {
		if strings.TrimSpace(term) == "" {
			continue
		}
		id, ok := m.matchOne(term, index, aliases)
		if !ok {
			zap.L().Debug("taxonomy: unmapped term",
				zap.String("kind", kind),
				zap.String("term", term),
			)
			m.missing.Record(kind, term)
			continue
		}
		ids = append(ids, id)
	}
	return ids
}

func (m *Matcher) matchOne(raw string, index, aliases map[string]string) (string, bool) {
	term := strings.ToLower(strings.TrimSpace(raw))

	// 1. Exact.
	if id, ok := index[term]; ok {
		return id, true
	}

	// 2. Alias substring. Keys are checked in sorted order so repeated runs
	// over the same term always pick the same alias.
	for _, keyword := range sortedKeys(aliases) {
		if !strings.Contains(term, keyword) {
			continue
		}
		if id, ok := index[aliases[keyword]]; ok {
			return id, true
		}
	}

	// 3. Fuzzy similarity against every index key; best score at or above
	// the threshold wins, ties broken by key order for determinism.
	bestScore := 0.0
	bestID := ""
	for _, key := range sortedKeys(index) {
		score := levenshtein.Similarity(term, key, nil)
		if score > bestScore && score >= m.threshold {
			bestScore = score
			bestID = index[key]
		}
	}
	if bestID != "" {
		return bestID, true
	}

	return "", false
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
