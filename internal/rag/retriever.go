package rag

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
)

// DefaultTopK is how many chunks a query returns when the caller doesn't say.
const DefaultTopK = 5

// Retriever answers questions with the most relevant stored newsletter chunks.
type Retriever struct {
	store    DocumentStore
	embedder Embedder
	logger   *slog.Logger
}

// NewRetriever wires a retriever from its dependencies.
func NewRetriever(store DocumentStore, embedder Embedder, logger *slog.Logger) *Retriever {
	return &Retriever{store: store, embedder: embedder, logger: logger}
}

// Retrieve returns up to topK chunks relevant to the question, best match
// first. An empty newsletterName searches every newsletter.
func (r *Retriever) Retrieve(ctx context.Context, question string, topK int, newsletterName string) ([]Chunk, error) {
	if strings.TrimSpace(question) == "" {
		return nil, fmt.Errorf("question is empty")
	}
	if topK <= 0 {
		topK = DefaultTopK
	}

	vector, err := r.embedder.EmbedQuery(ctx, question)
	if err != nil {
		return nil, fmt.Errorf("failed to embed question: %w", err)
	}

	chunks, err := r.store.Query(ctx, vector, topK, newsletterName)
	if err != nil {
		return nil, fmt.Errorf("vector search failed: %w", err)
	}

	r.logger.Debug("Retrieved context", "question", question, "results", len(chunks))
	return chunks, nil
}
