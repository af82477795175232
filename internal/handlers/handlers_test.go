package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"newsletter-rag/internal/rag"
)

type stubRetriever struct {
	chunks         []rag.Chunk
	err            error
	lastTopK       int
	lastQuery      string
	lastNewsletter string
}

func (s *stubRetriever) Retrieve(_ context.Context, question string, topK int, newsletterName string) ([]rag.Chunk, error) {
	s.lastQuery = question
	s.lastTopK = topK
	s.lastNewsletter = newsletterName
	return s.chunks, s.err
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func sampleChunks() []rag.Chunk {
	return []rag.Chunk{
		{
			Content: "relevant newsletter content",
			Score:   0.87,
			Metadata: map[string]any{
				"newsletter_name": "TechCrunch",
				"subject":         "This week in AI",
			},
		},
	}
}

func TestHealthCheck(t *testing.T) {
	req := httptest.NewRequest("GET", "/health", nil)
	w := httptest.NewRecorder()

	HealthCheck(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))

	var body map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "healthy", body["status"])
	assert.Equal(t, "newsletter-rag", body["service"])
	assert.NotEmpty(t, body["timestamp"])
}

func TestGetNewsletterContext(t *testing.T) {
	retriever := &stubRetriever{chunks: sampleChunks()}
	handler := NewContextHandler(retriever, discardLogger())

	req := httptest.NewRequest("GET", "/api/newsletter-context?question=what+happened+in+AI", nil)
	w := httptest.NewRecorder()

	handler.GetNewsletterContext(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var body contextResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.True(t, body.Success)
	assert.Equal(t, "what happened in AI", body.Question)
	require.Len(t, body.Context, 1)
	assert.Equal(t, "relevant newsletter content", body.Context[0].Content)
	assert.InDelta(t, 0.87, body.Context[0].Score, 0.0001)
	assert.NotEmpty(t, body.Timestamp)
	assert.Equal(t, "what happened in AI", retriever.lastQuery)
}

func TestGetNewsletterContextMissingQuestion(t *testing.T) {
	handler := NewContextHandler(&stubRetriever{}, discardLogger())

	tests := []struct {
		name string
		url  string
	}{
		{name: "No parameter", url: "/api/newsletter-context"},
		{name: "Empty parameter", url: "/api/newsletter-context?question="},
		{name: "Whitespace only", url: "/api/newsletter-context?question=%20%20"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", tt.url, nil)
			w := httptest.NewRecorder()

			handler.GetNewsletterContext(w, req)

			assert.Equal(t, http.StatusBadRequest, w.Code)

			var body errorResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			assert.False(t, body.Success)
			assert.NotEmpty(t, body.Error)
		})
	}
}

func TestGetNewsletterContextNoResults(t *testing.T) {
	handler := NewContextHandler(&stubRetriever{}, discardLogger())

	req := httptest.NewRequest("GET", "/api/newsletter-context?question=obscure+topic", nil)
	w := httptest.NewRecorder()

	handler.GetNewsletterContext(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)

	var body errorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.False(t, body.Success)
	assert.Equal(t, "obscure topic", body.Question)
}

func TestGetNewsletterContextRetrievalError(t *testing.T) {
	handler := NewContextHandler(&stubRetriever{err: errors.New("qdrant unreachable")}, discardLogger())

	req := httptest.NewRequest("GET", "/api/newsletter-context?question=anything", nil)
	w := httptest.NewRecorder()

	handler.GetNewsletterContext(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)

	var body errorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.False(t, body.Success)
	// The upstream error detail stays in the logs, not the response.
	assert.NotContains(t, body.Error, "qdrant")
}

func TestGetNewsletterContextFilters(t *testing.T) {
	retriever := &stubRetriever{chunks: sampleChunks()}
	handler := NewContextHandler(retriever, discardLogger())

	req := httptest.NewRequest("GET", "/api/newsletter-context?question=ai&top_k=3&newsletter=TechCrunch", nil)
	w := httptest.NewRecorder()

	handler.GetNewsletterContext(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 3, retriever.lastTopK)
	assert.Equal(t, "TechCrunch", retriever.lastNewsletter)
}

func TestGetNewsletterContextBadTopK(t *testing.T) {
	handler := NewContextHandler(&stubRetriever{chunks: sampleChunks()}, discardLogger())

	for _, raw := range []string{"zero", "0", "-2"} {
		req := httptest.NewRequest("GET", "/api/newsletter-context?question=ai&top_k="+raw, nil)
		w := httptest.NewRecorder()

		handler.GetNewsletterContext(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code, "top_k=%s", raw)
	}
}
