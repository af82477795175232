package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"newsletter-rag/internal/email"
	"newsletter-rag/internal/enrich"
	"newsletter-rag/internal/rag"
)

var (
	fullQuery        string
	fullMaxResults   int64
	fullNewerThan    int
	fullUnreadOnly   bool
	fullJSONFile     string
	fullNoJSON       bool
	fullSkipExisting bool
	fullMarkRead     bool
	fullEnrich       bool
	fullRaw          bool
)

var fullCmd = &cobra.Command{
	Use:   "full",
	Short: "Fetch newsletters from Gmail and index them",
	Long: `Runs the complete pipeline: searches Gmail for newsletter emails,
parses their content and article links, embeds everything and stores it in
the vector collection.

The run fails (non-zero exit) only when nothing could be stored or skipped.`,
	RunE: runFull,
}

func init() {
	fullCmd.Flags().StringVar(&fullQuery, "query", "", "custom Gmail search query (overrides the default newsletter query)")
	fullCmd.Flags().Int64Var(&fullMaxResults, "max-results", 50, "maximum messages to fetch")
	fullCmd.Flags().IntVar(&fullNewerThan, "newer-than", 0, "only fetch messages newer than N days")
	fullCmd.Flags().BoolVar(&fullUnreadOnly, "unread-only", false, "only fetch unread messages")
	fullCmd.Flags().StringVar(&fullJSONFile, "json-file", "newsletter_emails.json", "file to save fetched newsletters to")
	fullCmd.Flags().BoolVar(&fullNoJSON, "no-json", false, "skip writing the JSON export")
	fullCmd.Flags().BoolVar(&fullSkipExisting, "skip-existing", true, "skip messages already in the collection")
	fullCmd.Flags().BoolVar(&fullMarkRead, "mark-read", false, "mark indexed messages as read in Gmail")
	fullCmd.Flags().BoolVar(&fullEnrich, "enrich", false, "fetch each newsletter's primary article and index its full text")
	fullCmd.Flags().BoolVar(&fullRaw, "raw", false, "fetch messages in raw RFC 822 format")

	rootCmd.AddCommand(fullCmd)
}

func runFull(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfiguration()
	if err != nil {
		return err
	}

	logger := newLogger()
	ctx := cmd.Context()

	client, err := email.NewGmailClient(ctx, cfg.GmailClientConfig(), logger)
	if err != nil {
		return fmt.Errorf("failed to create Gmail client: %w", err)
	}
	defer client.Close()

	stateStore, err := email.NewSQLiteStateStore(cfg.Pipeline.StateDBPath)
	if err != nil {
		return fmt.Errorf("failed to open state database: %w", err)
	}
	defer stateStore.Close()

	stack, err := buildRAGStack(cfg, logger)
	if err != nil {
		return err
	}
	defer stack.Close()

	var fetcher rag.ArticleFetcher
	if fullEnrich || cfg.Pipeline.Enrich {
		fetcher = enrich.NewFetcher(logger)
	}

	skipExisting := skipExistingSetting(cmd, fullSkipExisting, cfg.Pipeline.SkipExisting)
	pipeline := rag.NewPipeline(client, stack.indexer(logger, skipExisting), stateStore, fetcher, logger)

	jsonFile := fullJSONFile
	if fullNoJSON {
		jsonFile = ""
	}

	stats, _, err := pipeline.Run(ctx, rag.PipelineOptions{
		Query:      email.BuildSearchQuery(fullNewerThan, fullUnreadOnly, fullQuery),
		MaxResults: fullMaxResults,
		UseRaw:     fullRaw,
		MarkRead:   fullMarkRead || cfg.Pipeline.MarkRead,
		Enrich:     fetcher != nil,
		JSONFile:   jsonFile,
	})
	if err != nil {
		return err
	}

	printPipelineStats(cmd, stats)

	if !stats.Success {
		return fmt.Errorf("pipeline stored nothing: %d fetched, %d errors", stats.Fetched, stats.Errors)
	}

	return nil
}

func printPipelineStats(cmd *cobra.Command, stats *rag.PipelineStats) {
	cmd.Printf("Fetched: %d\n", stats.Fetched)
	cmd.Printf("Stored:  %d\n", stats.Stored)
	cmd.Printf("Skipped: %d\n", stats.Skipped)
	cmd.Printf("Errors:  %d\n", stats.Errors)
}
