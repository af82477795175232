package cmd

import (
	"sort"

	"github.com/spf13/cobra"

	"newsletter-rag/internal/email"
	"newsletter-rag/internal/rag"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show collection and processing statistics",
	RunE:  runStats,
}

func init() {
	rootCmd.AddCommand(statsCmd)
}

func runStats(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfiguration()
	if err != nil {
		return err
	}

	logger := newLogger()
	ctx := cmd.Context()

	stack, err := buildRAGStack(cfg, logger)
	if err != nil {
		return err
	}
	defer stack.Close()

	collectionStats, err := stack.store.Stats(ctx)
	if err != nil {
		return err
	}

	printCollectionStats(cmd, cfg.Qdrant.Collection, collectionStats)

	// Local processing history is best effort; a missing state database
	// just means no runs happened on this machine.
	stateStore, err := email.NewSQLiteStateStore(cfg.Pipeline.StateDBPath)
	if err != nil {
		logger.Warn("Could not open state database", "path", cfg.Pipeline.StateDBPath, "error", err)
		return nil
	}
	defer stateStore.Close()

	stateStats, err := stateStore.GetStats()
	if err != nil {
		return err
	}

	cmd.Println()
	cmd.Printf("Processing history (%s):\n", cfg.Pipeline.StateDBPath)
	cmd.Printf("  Total:     %d\n", stateStats.TotalMessages)
	cmd.Printf("  Processed: %d\n", stateStats.ProcessedMessages)
	cmd.Printf("  Skipped:   %d\n", stateStats.SkippedMessages)
	cmd.Printf("  Errors:    %d\n", stateStats.ErrorMessages)
	if !stateStats.LastProcessed.IsZero() {
		cmd.Printf("  Last run:  %s\n", stateStats.LastProcessed.Format("2006-01-02 15:04:05"))
	}

	return nil
}

func printCollectionStats(cmd *cobra.Command, collection string, stats *rag.CollectionStats) {
	cmd.Printf("Collection %q:\n", collection)
	cmd.Printf("  Documents: %d\n", stats.TotalDocuments)

	if !stats.EarliestDate.IsZero() {
		cmd.Printf("  Date range: %s to %s\n",
			stats.EarliestDate.Format("2006-01-02"),
			stats.LatestDate.Format("2006-01-02"))
	}

	if len(stats.NewsletterDistribution) > 0 {
		cmd.Println("  Newsletters:")

		names := make([]string, 0, len(stats.NewsletterDistribution))
		for name := range stats.NewsletterDistribution {
			names = append(names, name)
		}
		sort.Strings(names)

		for _, name := range names {
			cmd.Printf("    %-30s %d\n", name, stats.NewsletterDistribution[name])
		}
	}
}
