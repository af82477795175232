package main

import (
	"net/http"
	"os"
	"time"

	"newsletter-rag/internal/config"
	"newsletter-rag/internal/embeddings"
	"newsletter-rag/internal/logging"
	"newsletter-rag/internal/rag"
	"newsletter-rag/internal/server"
	"newsletter-rag/internal/vectorstore"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.New(false).Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	logger := logging.New(os.Getenv("DEBUG") != "")

	embedder, err := embeddings.NewOpenAIEmbedder(cfg.EmbedderConfig(), logger)
	if err != nil {
		logger.Error("Failed to create embedder", "error", err)
		os.Exit(1)
	}

	store, err := vectorstore.NewQdrantStore(cfg.VectorStoreConfig(), logger)
	if err != nil {
		logger.Error("Failed to connect to vector store", "error", err)
		os.Exit(1)
	}
	defer store.Close()

	retriever := rag.NewRetriever(store, embedder, logger)
	router := server.NewRouter(retriever, logger)

	srv := &http.Server{
		Addr:    cfg.Server.Addr(),
		Handler: router,

		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	logger.Info("Newsletter context service starting",
		"addr", srv.Addr,
		"collection", cfg.Qdrant.Collection)

	if err := server.HandleSignals(srv, cfg.Server.ShutdownTimeout, logger); err != nil {
		logger.Error("Server error", "error", err)
		os.Exit(1)
	}
}
