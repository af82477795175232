package rag

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"newsletter-rag/internal/parser"
)

func TestIndexNewsletters(t *testing.T) {
	store := newFakeStore()
	embedder := &fakeEmbedder{dims: 8}
	ix := NewIndexer(store, embedder, discardLogger())

	stats := ix.IndexNewsletters(context.Background(), []parser.NewsletterEmail{*sampleNewsletter()})

	assert.Equal(t, 1, stats.Fetched)
	assert.Equal(t, 1, stats.Stored)
	assert.Equal(t, 0, stats.Skipped)
	assert.Equal(t, 0, stats.Errors)
	assert.True(t, stats.Success)
	assert.Len(t, store.docs, 1)
}

func TestIndexNewslettersSkipsExisting(t *testing.T) {
	store := newFakeStore()
	embedder := &fakeEmbedder{dims: 8}
	ix := NewIndexer(store, embedder, discardLogger())

	first := ix.IndexNewsletters(context.Background(), []parser.NewsletterEmail{*sampleNewsletter()})
	require.Equal(t, 1, first.Stored)

	second := ix.IndexNewsletters(context.Background(), []parser.NewsletterEmail{*sampleNewsletter()})

	assert.Equal(t, 0, second.Stored)
	assert.Equal(t, 1, second.Skipped)
	assert.True(t, second.Success)
	assert.Empty(t, embedder.embedded[1:], "skipped newsletter must not be re-embedded")
}

func TestIndexNewslettersReindexWhenSkipDisabled(t *testing.T) {
	store := newFakeStore()
	ix := NewIndexer(store, &fakeEmbedder{dims: 8}, discardLogger())
	ix.SkipExisting = false

	ix.IndexNewsletters(context.Background(), []parser.NewsletterEmail{*sampleNewsletter()})
	stats := ix.IndexNewsletters(context.Background(), []parser.NewsletterEmail{*sampleNewsletter()})

	assert.Equal(t, 1, stats.Stored)
	// Deterministic chunk IDs make the second pass overwrite, not duplicate.
	assert.Len(t, store.docs, 1)
}

func TestIndexNewslettersContinuesAfterFailure(t *testing.T) {
	store := newFakeStore()
	ix := NewIndexer(store, &fakeEmbedder{dims: 8}, discardLogger())

	broken := parser.NewsletterEmail{MessageID: "broken-1"} // no content at all
	good := *sampleNewsletter()

	stats := ix.IndexNewsletters(context.Background(), []parser.NewsletterEmail{broken, good})

	assert.Equal(t, 2, stats.Fetched)
	assert.Equal(t, 1, stats.Stored)
	assert.Equal(t, 1, stats.Errors)
	assert.True(t, stats.Success)
}

func TestIndexNewslettersEmbedderFailure(t *testing.T) {
	store := newFakeStore()
	embedder := &fakeEmbedder{dims: 8, err: errors.New("quota exceeded")}
	ix := NewIndexer(store, embedder, discardLogger())

	stats := ix.IndexNewsletters(context.Background(), []parser.NewsletterEmail{*sampleNewsletter()})

	assert.Equal(t, 1, stats.Errors)
	assert.Equal(t, 0, stats.Stored)
	assert.False(t, stats.Success)
	assert.Empty(t, store.docs)
}

func TestIndexNewslettersEmptyBatch(t *testing.T) {
	ix := NewIndexer(newFakeStore(), &fakeEmbedder{dims: 8}, discardLogger())

	stats := ix.IndexNewsletters(context.Background(), nil)

	assert.Equal(t, 0, stats.Fetched)
	assert.False(t, stats.Success)
}

func TestEnsureCollectionUsesEmbedderDimensions(t *testing.T) {
	store := newFakeStore()
	ix := NewIndexer(store, &fakeEmbedder{dims: 1536}, discardLogger())

	require.NoError(t, ix.EnsureCollection(context.Background()))
	assert.True(t, store.ensured)
}
