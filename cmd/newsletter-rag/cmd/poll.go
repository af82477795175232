package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"

	"newsletter-rag/internal/email"
	"newsletter-rag/internal/enrich"
	"newsletter-rag/internal/rag"
)

var (
	pollSchedule   string
	pollMaxResults int64
	pollMarkRead   bool
	pollEnrich     bool
)

var pollCmd = &cobra.Command{
	Use:   "poll",
	Short: "Fetch and index newsletters on a schedule",
	Long: `Runs the pipeline on a cron schedule until interrupted. Each run
fetches unread newsletters, indexes the new ones and marks them as read so
they are not fetched again.`,
	RunE: runPoll,
}

func init() {
	pollCmd.Flags().StringVar(&pollSchedule, "schedule", "", "cron schedule, e.g. \"@every 20m\" (default from config)")
	pollCmd.Flags().Int64Var(&pollMaxResults, "max-results", 50, "maximum messages to fetch per run")
	pollCmd.Flags().BoolVar(&pollMarkRead, "mark-read", true, "mark indexed messages as read in Gmail")
	pollCmd.Flags().BoolVar(&pollEnrich, "enrich", false, "fetch each newsletter's primary article and index its full text")

	rootCmd.AddCommand(pollCmd)
}

func runPoll(cmd *cobra.Command, args []string) error {
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
	if pollEnrich || cfg.Pipeline.Enrich {
		fetcher = enrich.NewFetcher(logger)
	}

	pipeline := rag.NewPipeline(client, stack.indexer(logger, true), stateStore, fetcher, logger)

	opts := rag.PipelineOptions{
		Query:      email.BuildSearchQuery(0, true, cfg.Search.Query),
		MaxResults: pollMaxResults,
		UseRaw:     true,
		MarkRead:   pollMarkRead,
		Enrich:     fetcher != nil,
	}

	run := func() {
		if _, _, err := pipeline.Run(ctx, opts); err != nil {
			logger.Error("Scheduled run failed", "error", err)
		}
	}

	schedule := pollSchedule
	if schedule == "" {
		schedule = cfg.Poll.Schedule
	}

	scheduler := cron.New()
	if _, err := scheduler.AddFunc(schedule, run); err != nil {
		return fmt.Errorf("invalid schedule %q: %w", schedule, err)
	}

	logger.Info("Polling for newsletters", "schedule", schedule)

	// First run immediately, then on schedule.
	run()
	scheduler.Start()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-quit:
		logger.Info("Received signal, stopping", "signal", sig.String())
	case <-ctx.Done():
	}

	stopCtx := scheduler.Stop()
	<-stopCtx.Done()

	return nil
}
