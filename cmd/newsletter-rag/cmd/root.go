package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/charmbracelet/fang"
	"github.com/spf13/cobra"

	"newsletter-rag/internal/config"
	"newsletter-rag/internal/embeddings"
	"newsletter-rag/internal/logging"
	"newsletter-rag/internal/rag"
	"newsletter-rag/internal/vectorstore"
)

const Version = "1.0.0"

var (
	configFile   string
	debugMode    bool
	qdrantURL    string
	qdrantAPIKey string
	collection   string
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "newsletter-rag",
	Short: "Newsletter RAG pipeline for AI agent context",
	Long: `Newsletter RAG Pipeline v1.0.0

DESCRIPTION:
    Fetches newsletter emails from Gmail, extracts their content and article
    links, and indexes everything into a vector store so AI agents can query
    it for relevant context.

CONFIGURATION:
    Configuration is done via environment variables and .env files:

    Gmail API:
        GMAIL_CLIENT_ID       - OAuth2 client ID
        GMAIL_CLIENT_SECRET   - OAuth2 client secret
        GMAIL_REFRESH_TOKEN   - OAuth2 refresh token
        GMAIL_ACCESS_TOKEN    - OAuth2 access token

    Embeddings:
        OPENAI_API_KEY        - OpenAI API key
        EMBEDDING_MODEL       - Model name (default: text-embedding-3-small)
        EMBEDDING_DIMENSIONS  - Vector size (default: 1536)

    Vector store:
        QDRANT_URL            - Qdrant endpoint (default: http://localhost:6334)
        QDRANT_API_KEY        - Qdrant API key (optional)
        QDRANT_COLLECTION     - Collection name (default: newsletter_articles)

EXAMPLES:
    # Fetch and index newsletters
    newsletter-rag full --max-results=50

    # Search the indexed content
    newsletter-rag search "what happened in AI this week?"

    # Index a previously saved JSON export
    newsletter-rag update --json-file=newsletter_emails.json

    # Show collection statistics
    newsletter-rag stats`,
	Version: Version,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := fang.Execute(context.Background(), rootCmd); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file (default is .env in current directory)")
	rootCmd.PersistentFlags().BoolVar(&debugMode, "debug", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVar(&qdrantURL, "qdrant-url", "", "Qdrant endpoint, overrides QDRANT_URL")
	rootCmd.PersistentFlags().StringVar(&qdrantAPIKey, "qdrant-api-key", "", "Qdrant API key, overrides QDRANT_API_KEY")
	rootCmd.PersistentFlags().StringVar(&collection, "collection-name", "", "vector collection name, overrides QDRANT_COLLECTION")
}

// loadConfiguration loads configuration and applies CLI flag overrides.
func loadConfiguration() (*config.Config, error) {
	cfg, err := config.LoadWithFile(configFile)
	if err != nil {
		return nil, fmt.Errorf("configuration error: %w", err)
	}

	if qdrantURL != "" {
		cfg.Qdrant.URL = qdrantURL
	}
	if qdrantAPIKey != "" {
		cfg.Qdrant.APIKey = qdrantAPIKey
	}
	if collection != "" {
		cfg.Qdrant.Collection = collection
	}

	return cfg, nil
}

func newLogger() *slog.Logger {
	return logging.New(debugMode)
}

// skipExistingSetting resolves the dedup behavior for an indexing command. An
// explicitly set --skip-existing flag wins; otherwise the
// pipeline.skip_existing config value applies.
func skipExistingSetting(cmd *cobra.Command, flagValue, configValue bool) bool {
	if cmd.Flags().Changed("skip-existing") {
		return flagValue
	}
	return configValue
}

// ragStack bundles the retrieval components most commands need.
type ragStack struct {
	embedder *embeddings.OpenAIEmbedder
	store    *vectorstore.QdrantStore
}

func buildRAGStack(cfg *config.Config, logger *slog.Logger) (*ragStack, error) {
	embedder, err := embeddings.NewOpenAIEmbedder(cfg.EmbedderConfig(), logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create embedder: %w", err)
	}

	store, err := vectorstore.NewQdrantStore(cfg.VectorStoreConfig(), logger)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to vector store: %w", err)
	}

	return &ragStack{embedder: embedder, store: store}, nil
}

func (s *ragStack) Close() {
	s.store.Close()
}

func (s *ragStack) indexer(logger *slog.Logger, skipExisting bool) *rag.Indexer {
	ix := rag.NewIndexer(s.store, s.embedder, logger)
	ix.SkipExisting = skipExisting
	return ix
}

func (s *ragStack) retriever(logger *slog.Logger) *rag.Retriever {
	return rag.NewRetriever(s.store, s.embedder, logger)
}
