package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"newsletter-rag/internal/parser"
)

var (
	updateJSONFile     string
	updateSkipExisting bool
)

var updateCmd = &cobra.Command{
	Use:   "update",
	Short: "Index newsletters from a saved JSON export",
	Long: `Reads newsletters from a JSON file produced by an earlier "full" run
and indexes them into the vector collection, without touching Gmail.`,
	RunE: runUpdate,
}

func init() {
	updateCmd.Flags().StringVar(&updateJSONFile, "json-file", "", "JSON file to index (required)")
	updateCmd.Flags().BoolVar(&updateSkipExisting, "skip-existing", true, "skip messages already in the collection")
	updateCmd.MarkFlagRequired("json-file")

	rootCmd.AddCommand(updateCmd)
}

func runUpdate(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfiguration()
	if err != nil {
		return err
	}

	logger := newLogger()
	ctx := cmd.Context()

	newsletters, err := parser.LoadJSON(updateJSONFile)
	if err != nil {
		return err
	}

	logger.Info("Loaded newsletters from JSON", "file", updateJSONFile, "count", len(newsletters))

	stack, err := buildRAGStack(cfg, logger)
	if err != nil {
		return err
	}
	defer stack.Close()

	indexer := stack.indexer(logger, skipExistingSetting(cmd, updateSkipExisting, cfg.Pipeline.SkipExisting))
	if err := indexer.EnsureCollection(ctx); err != nil {
		return fmt.Errorf("failed to ensure collection: %w", err)
	}

	stats := indexer.IndexNewsletters(ctx, newsletters)

	printPipelineStats(cmd, stats)

	if !stats.Success {
		return fmt.Errorf("nothing indexed from %s: %d errors", updateJSONFile, stats.Errors)
	}

	return nil
}
