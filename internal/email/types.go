package email

import (
	"context"
	"time"

	"newsletter-rag/internal/parser"
)

// Client defines the mailbox operations the pipeline needs.
type Client interface {
	// ListMessageIDs runs a search query and returns matching message IDs.
	ListMessageIDs(ctx context.Context, query string, maxResults int64) ([]string, error)

	// GetMessage fetches one message (format=full) and parses it.
	GetMessage(ctx context.Context, id string) (*parser.NewsletterEmail, error)

	// GetRawMessage fetches one message (format=raw) and parses the RFC 822
	// payload.
	GetRawMessage(ctx context.Context, id string) (*parser.NewsletterEmail, error)

	// MarkAsRead removes the UNREAD label from the given messages.
	MarkAsRead(ctx context.Context, ids []string) error

	// HealthCheck verifies the mailbox connection is working.
	HealthCheck(ctx context.Context) error

	// Close cleans up resources.
	Close() error
}

// StateEntry records the processing outcome for one newsletter message.
type StateEntry struct {
	ID             int       `json:"id"`
	MessageID      string    `json:"message_id"`
	ThreadID       string    `json:"thread_id"`
	ProcessedAt    time.Time `json:"processed_at"`
	NewsletterName string    `json:"newsletter_name"`
	Subject        string    `json:"subject"`
	Sender         string    `json:"sender"`
	PrimaryURL     string    `json:"primary_url"`
	Status         string    `json:"status"` // "processed", "skipped", "error"
	ErrorMessage   string    `json:"error_message,omitempty"`
}

// StateStats summarizes the local processing history.
type StateStats struct {
	TotalMessages     int       `json:"total_messages"`
	ProcessedMessages int       `json:"processed_messages"`
	SkippedMessages   int       `json:"skipped_messages"`
	ErrorMessages     int       `json:"error_messages"`
	LastProcessed     time.Time `json:"last_processed"`
}
