package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"newsletter-rag/internal/email"
	"newsletter-rag/internal/embeddings"
	"newsletter-rag/internal/vectorstore"
)

// Config holds every setting the pipeline, server and CLI need.
type Config struct {
	Gmail     GmailConfig
	Search    SearchConfig
	Embedding EmbeddingConfig
	Qdrant    QdrantConfig
	Pipeline  PipelineConfig
	Server    ServerConfig
	Poll      PollConfig
}

// GmailConfig holds Gmail API credentials and request pacing.
type GmailConfig struct {
	ClientID       string
	ClientSecret   string
	RefreshToken   string
	AccessToken    string
	TokenFile      string
	UserEmail      string
	MaxResults     int64
	RateLimitDelay time.Duration
}

// SearchConfig controls which messages the pipeline fetches.
type SearchConfig struct {
	Query      string
	AfterDays  int
	UnreadOnly bool
	MaxResults int64
}

// EmbeddingConfig selects and configures the embedding provider.
type EmbeddingConfig struct {
	Provider   string
	APIKey     string
	BaseURL    string
	Model      string
	Dimensions int
}

// QdrantConfig holds vector store connection settings.
type QdrantConfig struct {
	URL        string
	APIKey     string
	Collection string
}

// PipelineConfig controls indexing behavior.
type PipelineConfig struct {
	SkipExisting bool
	MarkRead     bool
	Enrich       bool
	JSONFile     string
	StateDBPath  string
	TopK         int
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host            string
	Port            string
	ShutdownTimeout time.Duration
}

// PollConfig controls the background fetch schedule.
type PollConfig struct {
	Schedule string
}

// Load reads configuration from files and the environment using the default
// Viper instance.
func Load() (*Config, error) {
	return LoadWithViper(viper.New())
}

// LoadWithFile loads configuration from a specific config file.
func LoadWithFile(configFile string) (*Config, error) {
	v := viper.New()
	if configFile != "" {
		v.SetConfigFile(configFile)
	}
	return LoadWithViper(v)
}

// LoadWithViper loads configuration into the given Viper instance. A .env
// file in the working directory is loaded first when present.
func LoadWithViper(v *viper.Viper) (*Config, error) {
	if err := loadEnvFile(".env"); err != nil {
		return nil, err
	}

	setDefaults(v)
	setupEnvBinding(v)

	if err := loadConfigFile(v); err != nil {
		return nil, fmt.Errorf("failed to load config file: %w", err)
	}

	config := &Config{}
	if err := unmarshalConfig(v, config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := config.validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return config, nil
}

func setDefaults(v *viper.Viper) {
	// Gmail defaults
	v.SetDefault("gmail.token_file", "./gmail-token.json")
	v.SetDefault("gmail.max_results", 100)
	v.SetDefault("gmail.rate_limit_delay", "100ms")

	// Search defaults
	v.SetDefault("search.query", "")
	v.SetDefault("search.after_days", 0)
	v.SetDefault("search.unread_only", false)
	v.SetDefault("search.max_results", 50)

	// Embedding defaults
	v.SetDefault("embedding.provider", "openai")
	v.SetDefault("embedding.model", embeddings.DefaultModel)
	v.SetDefault("embedding.dimensions", embeddings.DefaultDimensions)

	// Qdrant defaults
	v.SetDefault("qdrant.url", "http://localhost:6334")
	v.SetDefault("qdrant.collection", vectorstore.DefaultCollection)

	// Pipeline defaults
	v.SetDefault("pipeline.skip_existing", true)
	v.SetDefault("pipeline.mark_read", false)
	v.SetDefault("pipeline.enrich", false)
	v.SetDefault("pipeline.json_file", "newsletter_emails.json")
	v.SetDefault("pipeline.state_db_path", "./newsletter-state.db")
	v.SetDefault("pipeline.top_k", 5)

	// Server defaults
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.shutdown_timeout", "30s")

	// Poll defaults
	v.SetDefault("poll.schedule", "@every 20m")
}

func setupEnvBinding(v *viper.Viper) {
	v.SetEnvPrefix("NEWSRAG")
	v.AutomaticEnv()

	envBindings := map[string]string{
		// Gmail
		"gmail.client_id":        "GMAIL_CLIENT_ID",
		"gmail.client_secret":    "GMAIL_CLIENT_SECRET",
		"gmail.refresh_token":    "GMAIL_REFRESH_TOKEN",
		"gmail.access_token":     "GMAIL_ACCESS_TOKEN",
		"gmail.token_file":       "GMAIL_TOKEN_FILE",
		"gmail.user_email":       "GMAIL_USER_EMAIL",
		"gmail.max_results":      "GMAIL_MAX_RESULTS",
		"gmail.rate_limit_delay": "GMAIL_RATE_LIMIT_DELAY",

		// Search
		"search.query":       "SEARCH_QUERY",
		"search.after_days":  "SEARCH_AFTER_DAYS",
		"search.unread_only": "SEARCH_UNREAD_ONLY",
		"search.max_results": "SEARCH_MAX_RESULTS",

		// Embedding
		"embedding.provider":   "EMBEDDING_PROVIDER",
		"embedding.api_key":    "OPENAI_API_KEY",
		"embedding.base_url":   "OPENAI_BASE_URL",
		"embedding.model":      "EMBEDDING_MODEL",
		"embedding.dimensions": "EMBEDDING_DIMENSIONS",

		// Qdrant
		"qdrant.url":        "QDRANT_URL",
		"qdrant.api_key":    "QDRANT_API_KEY",
		"qdrant.collection": "QDRANT_COLLECTION",

		// Pipeline
		"pipeline.skip_existing": "PIPELINE_SKIP_EXISTING",
		"pipeline.mark_read":     "PIPELINE_MARK_READ",
		"pipeline.enrich":        "PIPELINE_ENRICH",
		"pipeline.json_file":     "PIPELINE_JSON_FILE",
		"pipeline.state_db_path": "PIPELINE_STATE_DB_PATH",
		"pipeline.top_k":         "PIPELINE_TOP_K",

		// Server
		"server.host":             "SERVER_HOST",
		"server.port":             "SERVER_PORT",
		"server.shutdown_timeout": "SERVER_SHUTDOWN_TIMEOUT",

		// Poll
		"poll.schedule": "POLL_SCHEDULE",
	}

	for configKey, envSuffix := range envBindings {
		v.BindEnv(configKey, "NEWSRAG_"+envSuffix)
	}

	// Bare environment variable names kept for compatibility with earlier
	// deployments of this pipeline.
	legacyBindings := map[string]string{
		"gmail.client_id":      "GMAIL_CLIENT_ID",
		"gmail.client_secret":  "GMAIL_CLIENT_SECRET",
		"gmail.refresh_token":  "GMAIL_REFRESH_TOKEN",
		"gmail.access_token":   "GMAIL_ACCESS_TOKEN",
		"embedding.provider":   "EMBEDDING_PROVIDER",
		"embedding.api_key":    "OPENAI_API_KEY",
		"embedding.base_url":   "OPENAI_BASE_URL",
		"embedding.model":      "EMBEDDING_MODEL",
		"embedding.dimensions": "EMBEDDING_DIMENSIONS",
		"qdrant.url":           "QDRANT_URL",
		"qdrant.api_key":       "QDRANT_API_KEY",
		"qdrant.collection":    "QDRANT_COLLECTION",
		"server.port":          "PORT",
	}

	for configKey, envVar := range legacyBindings {
		v.BindEnv(configKey, envVar)
	}
}

func loadConfigFile(v *viper.Viper) error {
	if v.ConfigFileUsed() == "" {
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
		v.AddConfigPath("$HOME/.newsletter-rag")
		v.SetConfigName("newsletter-rag")
	}

	if err := v.ReadInConfig(); err != nil {
		// Config file is optional.
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return err
		}
	}

	return nil
}

func unmarshalConfig(v *viper.Viper, config *Config) error {
	config.Gmail.ClientID = v.GetString("gmail.client_id")
	config.Gmail.ClientSecret = v.GetString("gmail.client_secret")
	config.Gmail.RefreshToken = v.GetString("gmail.refresh_token")
	config.Gmail.AccessToken = v.GetString("gmail.access_token")
	config.Gmail.TokenFile = v.GetString("gmail.token_file")
	config.Gmail.UserEmail = v.GetString("gmail.user_email")
	config.Gmail.MaxResults = v.GetInt64("gmail.max_results")

	var err error
	config.Gmail.RateLimitDelay, err = time.ParseDuration(v.GetString("gmail.rate_limit_delay"))
	if err != nil {
		return fmt.Errorf("invalid gmail rate limit delay: %w", err)
	}

	config.Search.Query = v.GetString("search.query")
	config.Search.AfterDays = v.GetInt("search.after_days")
	config.Search.UnreadOnly = v.GetBool("search.unread_only")
	config.Search.MaxResults = v.GetInt64("search.max_results")

	config.Embedding.Provider = v.GetString("embedding.provider")
	config.Embedding.APIKey = v.GetString("embedding.api_key")
	config.Embedding.BaseURL = v.GetString("embedding.base_url")
	config.Embedding.Model = v.GetString("embedding.model")
	config.Embedding.Dimensions = v.GetInt("embedding.dimensions")

	config.Qdrant.URL = v.GetString("qdrant.url")
	config.Qdrant.APIKey = v.GetString("qdrant.api_key")
	config.Qdrant.Collection = v.GetString("qdrant.collection")

	config.Pipeline.SkipExisting = v.GetBool("pipeline.skip_existing")
	config.Pipeline.MarkRead = v.GetBool("pipeline.mark_read")
	config.Pipeline.Enrich = v.GetBool("pipeline.enrich")
	config.Pipeline.JSONFile = v.GetString("pipeline.json_file")
	config.Pipeline.StateDBPath = v.GetString("pipeline.state_db_path")
	config.Pipeline.TopK = v.GetInt("pipeline.top_k")

	config.Server.Host = v.GetString("server.host")
	config.Server.Port = v.GetString("server.port")
	config.Server.ShutdownTimeout, err = time.ParseDuration(v.GetString("server.shutdown_timeout"))
	if err != nil {
		return fmt.Errorf("invalid server shutdown timeout: %w", err)
	}

	config.Poll.Schedule = v.GetString("poll.schedule")

	return nil
}

func (c *Config) validate() error {
	if c.Embedding.Provider != "openai" {
		return fmt.Errorf("unsupported embedding provider: %s", c.Embedding.Provider)
	}
	if c.Embedding.Dimensions <= 0 {
		return fmt.Errorf("embedding dimensions must be positive, got %d", c.Embedding.Dimensions)
	}
	if c.Pipeline.TopK <= 0 {
		return fmt.Errorf("pipeline top_k must be positive, got %d", c.Pipeline.TopK)
	}
	if c.Qdrant.URL == "" {
		return fmt.Errorf("qdrant URL is required")
	}
	return nil
}

// Addr returns the host:port the HTTP server listens on.
func (c ServerConfig) Addr() string {
	return c.Host + ":" + c.Port
}

// GmailClientConfig converts the loaded settings into the email package's
// client configuration.
func (c *Config) GmailClientConfig() *email.GmailConfig {
	return &email.GmailConfig{
		ClientID:       c.Gmail.ClientID,
		ClientSecret:   c.Gmail.ClientSecret,
		RefreshToken:   c.Gmail.RefreshToken,
		AccessToken:    c.Gmail.AccessToken,
		TokenFile:      c.Gmail.TokenFile,
		UserEmail:      c.Gmail.UserEmail,
		MaxResults:     c.Gmail.MaxResults,
		RateLimitDelay: c.Gmail.RateLimitDelay,
	}
}

// EmbedderConfig converts the loaded settings into the embeddings package's
// configuration.
func (c *Config) EmbedderConfig() embeddings.Config {
	return embeddings.Config{
		APIKey:     c.Embedding.APIKey,
		BaseURL:    c.Embedding.BaseURL,
		Model:      c.Embedding.Model,
		Dimensions: c.Embedding.Dimensions,
	}
}

// VectorStoreConfig converts the loaded settings into the vectorstore
// package's configuration.
func (c *Config) VectorStoreConfig() vectorstore.Config {
	return vectorstore.Config{
		URL:        c.Qdrant.URL,
		APIKey:     c.Qdrant.APIKey,
		Collection: c.Qdrant.Collection,
	}
}

// loadEnvFile loads a .env file into the process environment. A missing file
// is fine; a malformed one is not.
func loadEnvFile(path string) error {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil
	}

	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("failed to load env file %s: %w", path, err)
	}

	return nil
}
