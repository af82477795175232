package rag

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"newsletter-rag/internal/parser"
)

func sampleNewsletter() *parser.NewsletterEmail {
	return &parser.NewsletterEmail{
		MessageID:      "msg-1",
		ThreadID:       "thread-1",
		Subject:        "AI Weekly Digest",
		Sender:         "news@example.substack.com",
		SenderName:     "AI Weekly",
		Recipient:      "me@example.com",
		Date:           "Fri, 26 Jul 2024 08:00:00 +0000",
		Timestamp:      1721980800,
		NewsletterName: "Substack Newsletter",
		ContentPlain:   strings.Repeat("plain content about machine learning systems. ", 10),
		ArticleURLs:    []string{"https://example.substack.com/p/first", "https://example.com/second"},
		PrimaryURL:     "https://example.substack.com/p/first",
		Labels:         []string{"INBOX", "UNREAD"},
		Snippet:        "This week in machine learning...",
	}
}

func TestBuildDocumentsPrefersHTML(t *testing.T) {
	n := sampleNewsletter()
	n.ContentHTML = "<p>" + strings.Repeat("html content about transformers. ", 10) + "</p>"

	docs := DefaultSplitter().BuildDocuments(n)

	require.Len(t, docs, 1)
	assert.Contains(t, docs[0].Content, "html content")
	assert.NotContains(t, docs[0].Content, "plain content")
	assert.Equal(t, "html", docs[0].Metadata["content_type"])
}

func TestBuildDocumentsMetadata(t *testing.T) {
	docs := DefaultSplitter().BuildDocuments(sampleNewsletter())

	require.Len(t, docs, 1)
	meta := docs[0].Metadata

	assert.Equal(t, "msg-1", meta["message_id"])
	assert.Equal(t, "thread-1", meta["thread_id"])
	assert.Equal(t, "Substack Newsletter", meta["newsletter_name"])
	assert.Equal(t, "AI Weekly Digest", meta["subject"])
	assert.Equal(t, "news@example.substack.com", meta["sender"])
	assert.Equal(t, "AI Weekly", meta["sender_name"])
	assert.Equal(t, "me@example.com", meta["recipient"])
	assert.Equal(t, "https://example.substack.com/p/first", meta["primary_url"])
	assert.Equal(t, 2, meta["url_count"])
	assert.Equal(t, []string{"INBOX", "UNREAD"}, meta["labels"])
	assert.Equal(t, "This week in machine learning...", meta["snippet"])
	assert.Equal(t, "plain", meta["content_type"])
	assert.Equal(t, 0, meta["chunk_index"])
	assert.Equal(t, 1, meta["chunk_count"])
	assert.Equal(t, ChunkID("msg-1", 0), docs[0].ID)
}

func TestBuildDocumentsShortContentGetsSubject(t *testing.T) {
	n := sampleNewsletter()
	n.ContentPlain = "Too short."
	n.ContentHTML = ""

	docs := DefaultSplitter().BuildDocuments(n)

	require.Len(t, docs, 1)
	assert.True(t, strings.HasPrefix(docs[0].Content, "AI Weekly Digest"))
	assert.Contains(t, docs[0].Content, "Too short.")
}

func TestBuildDocumentsPrimaryURLFallback(t *testing.T) {
	n := sampleNewsletter()
	n.PrimaryURL = ""

	docs := DefaultSplitter().BuildDocuments(n)

	require.Len(t, docs, 1)
	assert.Equal(t, "https://example.substack.com/p/first", docs[0].Metadata["primary_url"])
}

func TestBuildDocumentsEmptyNewsletter(t *testing.T) {
	n := &parser.NewsletterEmail{MessageID: "empty-1"}

	assert.Nil(t, DefaultSplitter().BuildDocuments(n))
}

func TestBuildDocumentsSplitsLongContent(t *testing.T) {
	n := sampleNewsletter()
	n.ContentPlain = words(1200)

	docs := DefaultSplitter().BuildDocuments(n)

	require.Len(t, docs, 3)
	for i, doc := range docs {
		assert.Equal(t, i, doc.Metadata["chunk_index"])
		assert.Equal(t, 3, doc.Metadata["chunk_count"])
		assert.Equal(t, ChunkID("msg-1", i), doc.ID)
	}
}
