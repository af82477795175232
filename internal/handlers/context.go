package handlers

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"newsletter-rag/internal/rag"
)

// ContextRetriever is the retrieval surface the HTTP layer needs.
type ContextRetriever interface {
	// Retrieve returns up to topK chunks relevant to the question, best
	// first. An empty newsletterName searches every newsletter.
	Retrieve(ctx context.Context, question string, topK int, newsletterName string) ([]rag.Chunk, error)
}

// ContextHandler serves newsletter context for agent questions.
type ContextHandler struct {
	retriever ContextRetriever
	logger    *slog.Logger
}

// NewContextHandler creates a context handler.
func NewContextHandler(retriever ContextRetriever, logger *slog.Logger) *ContextHandler {
	return &ContextHandler{retriever: retriever, logger: logger}
}

// contextResponse is the success payload for /api/newsletter-context.
type contextResponse struct {
	Success   bool        `json:"success"`
	Question  string      `json:"question"`
	Context   []rag.Chunk `json:"context"`
	Timestamp string      `json:"timestamp"`
}

// errorResponse is the failure payload for /api/newsletter-context.
type errorResponse struct {
	Success  bool   `json:"success"`
	Error    string `json:"error"`
	Question string `json:"question,omitempty"`
}

// GetNewsletterContext handles GET /api/newsletter-context?question=...
func (h *ContextHandler) GetNewsletterContext(w http.ResponseWriter, r *http.Request) {
	question := strings.TrimSpace(r.URL.Query().Get("question"))
	if question == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{
			Error: "question parameter is required",
		})
		return
	}

	topK := 0
	if raw := r.URL.Query().Get("top_k"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			writeJSON(w, http.StatusBadRequest, errorResponse{
				Error:    "top_k must be a positive integer",
				Question: question,
			})
			return
		}
		topK = parsed
	}

	newsletterName := strings.TrimSpace(r.URL.Query().Get("newsletter"))

	chunks, err := h.retriever.Retrieve(r.Context(), question, topK, newsletterName)
	if err != nil {
		h.logger.Error("Context retrieval failed", "question", question, "error", err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{
			Error:    "failed to retrieve newsletter context",
			Question: question,
		})
		return
	}

	if len(chunks) == 0 {
		writeJSON(w, http.StatusNotFound, errorResponse{
			Error:    "no relevant newsletter content found",
			Question: question,
		})
		return
	}

	writeJSON(w, http.StatusOK, contextResponse{
		Success:   true,
		Question:  question,
		Context:   chunks,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}
