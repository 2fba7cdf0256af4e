package main

import (
	"encoding/json"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ai-navigator/ingest-cli/internal/pipeline"
)

var (
	batchFile  string
	batchLimit int
)

var batchCmd = &cobra.Command{
	Use:   "batch",
	Short: "Process a leads file",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		file := batchFile
		if file == "" {
			file = cfg.Batch.LeadsFile
		}
		leads, err := pipeline.ReadLeads(file)
		if err != nil {
			return err
		}
		if len(leads) == 0 {
			return eris.Errorf("no leads found in %s", file)
		}
		if batchLimit > 0 && batchLimit < len(leads) {
			leads = leads[:batchLimit]
		}
		zap.L().Info("leads loaded", zap.String("file", file), zap.Int("count", len(leads)))

		env, err := initIngest(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		report, err := env.Runner.Run(ctx, leads)
		if err != nil {
			return err
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	},
}

func init() {
	batchCmd.Flags().StringVar(&batchFile, "file", "", "leads file (default from config)")
	batchCmd.Flags().IntVar(&batchLimit, "limit", 0, "process at most N leads")
	rootCmd.AddCommand(batchCmd)
}
