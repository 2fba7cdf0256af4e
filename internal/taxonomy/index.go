// Package taxonomy maps free-text category/tag/feature strings onto the
// catalog's fixed vocabulary of opaque identifiers.
package taxonomy

import (
	"context"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/ai-navigator/ingest-cli/pkg/catalog"
)

// Lister is the slice of the catalog client the index needs.
type Lister interface {
	GetCategories(ctx context.Context) ([]catalog.Term, error)
	GetTags(ctx context.Context) ([]catalog.Term, error)
	GetFeatures(ctx context.Context) ([]catalog.Term, error)
}

// Index holds the catalog taxonomy, keyed by lowercased canonical name.
// Loaded once per pipeline run and read-only afterwards.
type Index struct {
	Categories map[string]string
	Tags       map[string]string
	Features   map[string]string

	firstCategoryID string
}

// defaultCategoryNames are tried in order when a lead maps to no category.
var defaultCategoryNames = []string{"ai tools", "artificial intelligence", "productivity", "general"}

// Load fetches the full taxonomy from the catalog. A load failure is fatal:
// matching without an index would silently drop every term.
func Load(ctx context.Context, lister Lister) (*Index, error) {
	idx := &Index{
		Categories: make(map[string]string),
		Tags:       make(map[string]string),
		Features:   make(map[string]string),
	}

	categories, err := lister.GetCategories(ctx)
	if err != nil {
		return nil, eris.Wrap(err, "taxonomy: load categories")
	}
	for _, c := range categories {
		name := strings.ToLower(strings.TrimSpace(c.Name))
		if name == "" {
			continue
		}
		idx.Categories[name] = c.ID
		if idx.firstCategoryID == "" {
			idx.firstCategoryID = c.ID
		}
	}

	tags, err := lister.GetTags(ctx)
	if err != nil {
		return nil, eris.Wrap(err, "taxonomy: load tags")
	}
	for _, t := range tags {
		if name := strings.ToLower(strings.TrimSpace(t.Name)); name != "" {
			idx.Tags[name] = t.ID
		}
	}

	features, err := lister.GetFeatures(ctx)
	if err != nil {
		return nil, eris.Wrap(err, "taxonomy: load features")
	}
	for _, f := range features {
		if name := strings.ToLower(strings.TrimSpace(f.Name)); name != "" {
			idx.Features[name] = f.ID
		}
	}

	zap.L().Info("taxonomy: index loaded",
		zap.Int("categories", len(idx.Categories)),
		zap.Int("tags", len(idx.Tags)),
		zap.Int("features", len(idx.Features)),
	)

	return idx, nil
}

// DefaultCategoryID returns the fallback category used when a lead maps to
// no category at all. Returns "" only for an empty index.
func (idx *Index) DefaultCategoryID() string {
	for _, name := range defaultCategoryNames {
		if id, ok := idx.Categories[name]; ok {
			return id
		}
	}
	return idx.firstCategoryID
}
