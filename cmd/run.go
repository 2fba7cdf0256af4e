package main

import (
	"encoding/json"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ai-navigator/ingest-cli/internal/model"
)

var (
	runName   string
	runURL    string
	runSource string
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Process a single lead",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		env, err := initIngest(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		lead := model.Lead{
			DisplayName:     runName,
			SourceURL:       runURL,
			SourceDirectory: runSource,
			DiscoveredAt:    time.Now().UTC(),
		}

		report, err := env.Runner.Run(ctx, []model.Lead{lead})
		if err != nil {
			return err
		}

		outcome := report.Outcomes[0]
		zap.L().Info("lead processed",
			zap.String("status", string(outcome.Status)),
			zap.String("canonical_url", outcome.CanonicalURL),
			zap.String("entity_id", outcome.EntityID),
		)

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(outcome)
	},
}

func init() {
	runCmd.Flags().StringVar(&runName, "name", "", "lead display name (required)")
	runCmd.Flags().StringVar(&runURL, "url", "", "lead source URL (required)")
	runCmd.Flags().StringVar(&runSource, "source", "manual", "source directory name")
	_ = runCmd.MarkFlagRequired("name")
	_ = runCmd.MarkFlagRequired("url")
	rootCmd.AddCommand(runCmd)
}
