package rag

import (
	"time"

	"newsletter-rag/internal/parser"
)

// minContentLength is the point below which extracted content is too thin to
// stand alone, so the subject line is prepended for context.
const minContentLength = 100

// Splitter configures how newsletter content is cut into documents.
type Splitter struct {
	ChunkSize    int
	ChunkOverlap int
}

// DefaultSplitter matches the embedding model's comfortable context size.
func DefaultSplitter() Splitter {
	return Splitter{ChunkSize: DefaultChunkSize, ChunkOverlap: DefaultChunkOverlap}
}

// BuildDocuments turns one parsed newsletter into embedding-ready documents.
// HTML content is preferred and converted to text; plain text is the
// fallback. Newsletters with no usable content produce nothing.
func (s Splitter) BuildDocuments(n *parser.NewsletterEmail) []Document {
	content := n.ContentPlain
	contentType := "plain"
	if n.ContentHTML != "" {
		content = parser.HTMLToText(n.ContentHTML)
		contentType = "html"
	}
	content = CleanText(content)

	if len(content) < minContentLength {
		if content == "" && n.Subject == "" {
			return nil
		}
		content = CleanText(n.Subject + "\n\n" + content)
	}

	chunks := SplitWords(content, s.ChunkSize, s.ChunkOverlap)
	if len(chunks) == 0 {
		return nil
	}

	primaryURL := n.PrimaryURL
	if primaryURL == "" && len(n.ArticleURLs) > 0 {
		primaryURL = n.ArticleURLs[0]
	}

	docs := make([]Document, 0, len(chunks))
	for i, chunk := range chunks {
		docs = append(docs, Document{
			ID:      ChunkID(n.MessageID, i),
			Content: chunk,
			Metadata: map[string]any{
				"message_id":      n.MessageID,
				"thread_id":       n.ThreadID,
				"newsletter_name": n.NewsletterName,
				"subject":         n.Subject,
				"sender":          n.Sender,
				"sender_name":     n.SenderName,
				"recipient":       n.Recipient,
				"date":            n.Date,
				"timestamp":       n.Timestamp,
				"primary_url":     primaryURL,
				"article_urls":    n.ArticleURLs,
				"url_count":       len(n.ArticleURLs),
				"labels":          n.Labels,
				"snippet":         n.Snippet,
				"content_type":    contentType,
				"content_length":  len(content),
				"chunk_index":     i,
				"chunk_count":     len(chunks),
				"processed_date":  time.Now().UTC().Format(time.RFC3339),
			},
		})
	}

	return docs
}
