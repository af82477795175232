package rag

import (
	"context"
	"time"
)

// Document is a chunk of newsletter text ready for embedding and storage.
type Document struct {
	ID       string         `json:"id"`
	Content  string         `json:"content"`
	Metadata map[string]any `json:"metadata"`
}

// Chunk is one retrieved piece of context with its similarity score.
type Chunk struct {
	Content  string         `json:"content"`
	Metadata map[string]any `json:"metadata"`
	Score    float64        `json:"score"`
}

// PipelineStats summarizes one indexing run.
type PipelineStats struct {
	Fetched int  `json:"fetched"`
	Stored  int  `json:"stored"`
	Skipped int  `json:"skipped"`
	Errors  int  `json:"errors"`
	Success bool `json:"success"`
}

// CollectionStats describes the state of the vector collection.
type CollectionStats struct {
	TotalDocuments         uint64            `json:"total_documents"`
	NewsletterDistribution map[string]uint64 `json:"newsletter_distribution"`
	EarliestDate           time.Time         `json:"earliest_date"`
	LatestDate             time.Time         `json:"latest_date"`
}

// Embedder turns text into vectors. Implementations live in the embeddings
// package; this interface keeps the pipeline testable without an API key.
type Embedder interface {
	// EmbedDocuments embeds a batch of document chunks.
	EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error)

	// EmbedQuery embeds a single search query.
	EmbedQuery(ctx context.Context, text string) ([]float32, error)

	// Dimensions returns the vector size this embedder produces.
	Dimensions() int
}

// DocumentStore is the vector database surface the pipeline depends on.
type DocumentStore interface {
	// EnsureCollection creates the collection if it does not exist.
	EnsureCollection(ctx context.Context, dimensions int) error

	// HasDocument reports whether any chunk for the message is stored.
	HasDocument(ctx context.Context, messageID string) (bool, error)

	// UpsertDocuments writes document chunks with their vectors.
	UpsertDocuments(ctx context.Context, docs []Document, vectors [][]float32) error

	// Query returns the chunks nearest to the vector, best first. An empty
	// newsletterName matches everything.
	Query(ctx context.Context, vector []float32, topK int, newsletterName string) ([]Chunk, error)

	// Stats summarizes what the collection holds.
	Stats(ctx context.Context) (*CollectionStats, error)

	// DeleteByMessageID removes every chunk belonging to one message.
	DeleteByMessageID(ctx context.Context, messageID string) error

	// Close releases the connection.
	Close() error
}
