package rag

import (
	"context"
	"fmt"
	"log/slog"

	"newsletter-rag/internal/parser"
)

// Indexer embeds newsletter content and writes it to the vector store.
type Indexer struct {
	store    DocumentStore
	embedder Embedder
	splitter Splitter
	logger   *slog.Logger

	// SkipExisting leaves already-indexed messages alone instead of
	// re-embedding them.
	SkipExisting bool
}

// NewIndexer wires an indexer from its dependencies.
func NewIndexer(store DocumentStore, embedder Embedder, logger *slog.Logger) *Indexer {
	return &Indexer{
		store:        store,
		embedder:     embedder,
		splitter:     DefaultSplitter(),
		logger:       logger,
		SkipExisting: true,
	}
}

// EnsureCollection makes sure the target collection exists with the
// embedder's dimensions.
func (ix *Indexer) EnsureCollection(ctx context.Context) error {
	return ix.store.EnsureCollection(ctx, ix.embedder.Dimensions())
}

// IndexResult says what happened to one newsletter during indexing.
type IndexResult int

const (
	// Stored means the newsletter's chunks were embedded and written.
	Stored IndexResult = iota

	// Skipped means the newsletter was already indexed.
	Skipped
)

// IndexNewsletter embeds and stores one newsletter, honoring SkipExisting.
func (ix *Indexer) IndexNewsletter(ctx context.Context, n *parser.NewsletterEmail) (IndexResult, error) {
	if ix.SkipExisting {
		exists, err := ix.store.HasDocument(ctx, n.MessageID)
		if err != nil {
			return 0, fmt.Errorf("failed to check for existing document: %w", err)
		}
		if exists {
			ix.logger.Debug("Skipping already-indexed newsletter",
				"message_id", n.MessageID, "subject", n.Subject)
			return Skipped, nil
		}
	}

	if err := ix.indexOne(ctx, n); err != nil {
		return 0, err
	}

	return Stored, nil
}

// IndexNewsletters embeds and stores a batch of newsletters. A failure on one
// newsletter is logged and counted; the rest of the batch still runs.
func (ix *Indexer) IndexNewsletters(ctx context.Context, newsletters []parser.NewsletterEmail) *PipelineStats {
	stats := &PipelineStats{Fetched: len(newsletters)}

	for i := range newsletters {
		n := &newsletters[i]

		result, err := ix.IndexNewsletter(ctx, n)
		if err != nil {
			ix.logger.Error("Failed to index newsletter",
				"message_id", n.MessageID, "subject", n.Subject, "error", err)
			stats.Errors++
			continue
		}

		switch result {
		case Stored:
			stats.Stored++
		case Skipped:
			stats.Skipped++
		}
	}

	stats.Success = stats.Stored > 0 || stats.Skipped > 0

	ix.logger.Info("Indexing complete",
		"fetched", stats.Fetched,
		"stored", stats.Stored,
		"skipped", stats.Skipped,
		"errors", stats.Errors)

	return stats
}

func (ix *Indexer) indexOne(ctx context.Context, n *parser.NewsletterEmail) error {
	docs := ix.splitter.BuildDocuments(n)
	if len(docs) == 0 {
		return fmt.Errorf("no indexable content in message %s", n.MessageID)
	}

	texts := make([]string, len(docs))
	for i, doc := range docs {
		texts[i] = doc.Content
	}

	vectors, err := ix.embedder.EmbedDocuments(ctx, texts)
	if err != nil {
		return fmt.Errorf("failed to embed documents: %w", err)
	}
	if len(vectors) != len(docs) {
		return fmt.Errorf("embedder returned %d vectors for %d documents", len(vectors), len(docs))
	}

	if err := ix.store.UpsertDocuments(ctx, docs, vectors); err != nil {
		return fmt.Errorf("failed to store documents: %w", err)
	}

	ix.logger.Debug("Indexed newsletter",
		"message_id", n.MessageID, "subject", n.Subject, "chunks", len(docs))

	return nil
}
