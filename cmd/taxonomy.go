package main

import (
	"encoding/json"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ai-navigator/ingest-cli/internal/taxonomy"
	"github.com/ai-navigator/ingest-cli/pkg/catalog"
)

var taxonomyMatch []string

// taxonomyCmd loads the live vocabularies and optionally test-matches
// terms against them, printing the resolved IDs.
var taxonomyCmd = &cobra.Command{
	Use:   "taxonomy",
	Short: "Inspect the catalog taxonomy",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		if err := cfg.Validate(); err != nil {
			return err
		}

		catalogClient := catalog.NewClient(cfg.Catalog.BaseURL, cfg.Catalog.Email, cfg.Catalog.Password,
			catalog.WithAuthBaseURL(cfg.Catalog.AuthBaseURL),
		)

		index, err := taxonomy.Load(ctx, catalogClient)
		if err != nil {
			return err
		}

		zap.L().Info("taxonomy loaded",
			zap.Int("categories", len(index.Categories)),
			zap.Int("tags", len(index.Tags)),
			zap.Int("features", len(index.Features)),
			zap.String("default_category_id", index.DefaultCategoryID()),
		)

		if len(taxonomyMatch) == 0 {
			return nil
		}

		missing, _ := taxonomy.OpenMissingLog("")
		matcher := taxonomy.NewMatcher(index, taxonomy.DefaultAliases(), missing)

		result := map[string]any{
			"category_ids": matcher.MatchCategories(taxonomyMatch),
			"tag_ids":      matcher.MatchTags(taxonomyMatch),
			"feature_ids":  matcher.MatchFeatures(taxonomyMatch),
		}
		var unmatched []string
		for _, rec := range missing.Records() {
			unmatched = append(unmatched, rec.RawName)
		}
		result["unmatched"] = unmatched

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	},
}

func init() {
	taxonomyCmd.Flags().StringSliceVar(&taxonomyMatch, "match", nil, "terms to test-match against the vocabularies")
	rootCmd.AddCommand(taxonomyCmd)
}
