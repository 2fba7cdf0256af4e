package main

import (
	"encoding/json"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ai-navigator/ingest-cli/internal/fetch"
	"github.com/ai-navigator/ingest-cli/internal/logo"
	"github.com/ai-navigator/ingest-cli/internal/pipeline"
	"github.com/ai-navigator/ingest-cli/internal/urlx"
)

var logosFile string

// logosCmd resolves logos for a leads file without touching the catalog.
// Useful for backfilling entities created before logo resolution existed.
var logosCmd = &cobra.Command{
	Use:   "logos",
	Short: "Resolve logos for a leads file",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		leads, err := pipeline.ReadLeads(logosFile)
		if err != nil {
			return err
		}

		fetcher := fetch.NewHTTPClient(fetch.WithTimeout(time.Duration(cfg.Fetch.TimeoutSecs) * time.Second))
		urls := urlx.NewResolver(fetcher)
		logos := logo.NewResolver(fetcher)

		type resolved struct {
			Name    string `json:"name"`
			URL     string `json:"url"`
			LogoURL string `json:"logo_url"`
		}

		out := make([]resolved, 0, len(leads))
		for _, lead := range leads {
			r := urls.Canonicalize(ctx, lead.SourceURL)
			logoURL := logos.Resolve(ctx, r.Canonical, lead.DisplayName)
			out = append(out, resolved{Name: lead.DisplayName, URL: r.Canonical, LogoURL: logoURL})
			zap.L().Info("logo resolved",
				zap.String("lead", lead.DisplayName),
				zap.String("logo_url", logoURL),
			)
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	},
}

func init() {
	logosCmd.Flags().StringVar(&logosFile, "file", "", "leads file (required)")
	_ = logosCmd.MarkFlagRequired("file")
	rootCmd.AddCommand(logosCmd)
}
