package rag

import (
	"context"
	"fmt"
	"log/slog"

	"newsletter-rag/internal/email"
	"newsletter-rag/internal/parser"
)

// ArticleFetcher pulls full article text for a newsletter's primary link.
type ArticleFetcher interface {
	FetchArticle(ctx context.Context, url string) (string, error)
}

// StateRecorder persists per-message processing outcomes.
type StateRecorder interface {
	MarkProcessed(entry *email.StateEntry) error
}

// PipelineOptions control one fetch-and-index run.
type PipelineOptions struct {
	// Query is the Gmail search query. Empty means the default newsletter
	// query.
	Query string

	// MaxResults caps how many messages one run fetches.
	MaxResults int64

	// UseRaw fetches messages in raw RFC 822 format instead of Gmail's
	// structured payload.
	UseRaw bool

	// MarkRead removes the UNREAD label from successfully indexed messages.
	MarkRead bool

	// Enrich downloads each newsletter's primary article and indexes its
	// full text alongside the newsletter content.
	Enrich bool

	// JSONFile, when set, also writes the fetched newsletters to disk.
	JSONFile string
}

// Pipeline runs the full fetch, parse, embed and store flow.
type Pipeline struct {
	client  email.Client
	state   StateRecorder
	indexer *Indexer
	fetcher ArticleFetcher
	logger  *slog.Logger
}

// NewPipeline wires a pipeline from its dependencies. The state recorder and
// article fetcher are optional.
func NewPipeline(client email.Client, indexer *Indexer, state StateRecorder, fetcher ArticleFetcher, logger *slog.Logger) *Pipeline {
	return &Pipeline{
		client:  client,
		state:   state,
		indexer: indexer,
		fetcher: fetcher,
		logger:  logger,
	}
}

// Run fetches matching newsletters, indexes them and reports stats. Fetch or
// parse failures on single messages are counted, not fatal; only setup
// failures return an error.
func (p *Pipeline) Run(ctx context.Context, opts PipelineOptions) (*PipelineStats, []parser.NewsletterEmail, error) {
	if err := p.indexer.EnsureCollection(ctx); err != nil {
		return nil, nil, fmt.Errorf("failed to ensure collection: %w", err)
	}

	query := opts.Query
	if query == "" {
		query = email.DefaultNewsletterQuery
	}

	ids, err := p.client.ListMessageIDs(ctx, query, opts.MaxResults)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to search mailbox: %w", err)
	}

	stats := &PipelineStats{Fetched: len(ids)}
	newsletters := make([]parser.NewsletterEmail, 0, len(ids))
	var indexed []string

	for _, id := range ids {
		n, err := p.fetchOne(ctx, id, opts.UseRaw)
		if err != nil {
			p.logger.Error("Failed to fetch message", "message_id", id, "error", err)
			p.record(&email.StateEntry{MessageID: id, Status: "error", ErrorMessage: err.Error()})
			stats.Errors++
			continue
		}

		if opts.Enrich {
			p.enrichOne(ctx, n)
		}

		newsletters = append(newsletters, *n)

		result, err := p.indexer.IndexNewsletter(ctx, n)
		if err != nil {
			p.logger.Error("Failed to index newsletter",
				"message_id", n.MessageID, "subject", n.Subject, "error", err)
			p.record(stateEntry(n, "error", err.Error()))
			stats.Errors++
			continue
		}

		switch result {
		case Stored:
			stats.Stored++
			indexed = append(indexed, n.MessageID)
			p.record(stateEntry(n, "processed", ""))
		case Skipped:
			stats.Skipped++
			p.record(stateEntry(n, "skipped", ""))
		}
	}

	if opts.JSONFile != "" && len(newsletters) > 0 {
		if err := parser.SaveJSON(opts.JSONFile, newsletters); err != nil {
			p.logger.Error("Failed to save newsletters to JSON", "file", opts.JSONFile, "error", err)
		} else {
			p.logger.Info("Saved newsletters", "file", opts.JSONFile, "count", len(newsletters))
		}
	}

	if opts.MarkRead && len(indexed) > 0 {
		if err := p.client.MarkAsRead(ctx, indexed); err != nil {
			p.logger.Error("Failed to mark messages as read", "error", err)
		}
	}

	stats.Success = stats.Stored > 0 || stats.Skipped > 0

	p.logger.Info("Pipeline run complete",
		"fetched", stats.Fetched,
		"stored", stats.Stored,
		"skipped", stats.Skipped,
		"errors", stats.Errors,
		"success", stats.Success)

	return stats, newsletters, nil
}

func (p *Pipeline) fetchOne(ctx context.Context, id string, useRaw bool) (*parser.NewsletterEmail, error) {
	if useRaw {
		return p.client.GetRawMessage(ctx, id)
	}
	return p.client.GetMessage(ctx, id)
}

// enrichOne replaces the newsletter's content with the full article text when
// the primary link can be fetched. Failures degrade to the newsletter's own
// content.
func (p *Pipeline) enrichOne(ctx context.Context, n *parser.NewsletterEmail) {
	if p.fetcher == nil || n.PrimaryURL == "" {
		return
	}

	article, err := p.fetcher.FetchArticle(ctx, n.PrimaryURL)
	if err != nil {
		p.logger.Warn("Article enrichment failed, keeping newsletter content",
			"message_id", n.MessageID, "url", n.PrimaryURL, "error", err)
		return
	}

	body := n.ContentPlain
	if n.ContentHTML != "" {
		body = parser.HTMLToText(n.ContentHTML)
	}

	n.ContentPlain = body + "\n\n" + article
	n.ContentHTML = ""
}

func (p *Pipeline) record(entry *email.StateEntry) {
	if p.state == nil {
		return
	}
	if err := p.state.MarkProcessed(entry); err != nil {
		p.logger.Error("Failed to record processing state",
			"message_id", entry.MessageID, "error", err)
	}
}

func stateEntry(n *parser.NewsletterEmail, status, errMsg string) *email.StateEntry {
	return &email.StateEntry{
		MessageID:      n.MessageID,
		ThreadID:       n.ThreadID,
		NewsletterName: n.NewsletterName,
		Subject:        n.Subject,
		Sender:         n.Sender,
		PrimaryURL:     n.PrimaryURL,
		Status:         status,
		ErrorMessage:   errMsg,
	}
}
