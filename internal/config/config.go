package config

import (
	"flag"
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	pkgRetry "github.com/campusbuddy/chat-backend/internal/pkg/retry"
)

// Config holds the application configuration
type Config struct {
	// Server configuration
	ServerAddr string `env:"SERVER_ADDR,notEmpty"`

	// Database configuration (turn log)
	DatabaseURL         string        `env:"DATABASE_URL,notEmpty"`
	DBMaxConns          int           `env:"DB_MAX_CONNS" envDefault:"25"`
	DBMinConns          int           `env:"DB_MIN_CONNS" envDefault:"5"`
	DBMaxConnLifetime   time.Duration `env:"DB_MAX_CONN_LIFETIME" envDefault:"1h"`
	DBMaxConnIdleTime   time.Duration `env:"DB_MAX_CONN_IDLE_TIME" envDefault:"30m"`
	DBHealthCheckPeriod time.Duration `env:"DB_HEALTH_CHECK_PERIOD" envDefault:"1m"`

	// External service configuration
	OpenAICfg OpenAIConfig `envPrefix:"OPENAI_"`

	// Pipeline configuration
	DocumentCfg  DocumentConfig  `envPrefix:"DOCUMENT_"`
	SplitterCfg  SplitterConfig  `envPrefix:"SPLITTER_"`
	RetrieverCfg RetrieverConfig `envPrefix:"RETRIEVER_"`
	MemoryCfg    MemoryConfig    `envPrefix:"MEMORY_"`
	WatcherCfg   WatcherConfig   `envPrefix:"WATCHER_"`

	// Logging configuration
	LogLevel string `env:"LOG_LEVEL,notEmpty"`

	// Mock configuration
	EnableMocks bool `env:"ENABLE_MOCKS,notEmpty"`

	// Environment (set from flag, not from env var)
	Environment string
}

// OpenAIConfig holds credentials and model selection for the hosted
// chat-completion and embeddings endpoints. Missing credentials are a
// startup-time failure, not deferred to first request.
type OpenAIConfig struct {
	HTTPClientConfig
	APIKey         string               `env:"API_KEY,notEmpty"`
	ChatModel      string               `env:"CHAT_MODEL" envDefault:"openai/gpt-4o"`
	EmbeddingModel string               `env:"EMBEDDING_MODEL" envDefault:"text-embedding-3-small"`
	Temperature    float64              `env:"TEMPERATURE" envDefault:"0.7"`
	MaxTokens      int                  `env:"MAX_TOKENS" envDefault:"500"`
	EmbedBatchSize int                  `env:"EMBED_BATCH_SIZE" envDefault:"64"`
	Retry          pkgRetry.RetryConfig `envPrefix:"RETRY_"`
}

// HTTPClientConfig tunes the outbound HTTP client.
type HTTPClientConfig struct {
	RequestTimeout        time.Duration `env:"TIMEOUT" envDefault:"60s"`
	ConnTimeout           time.Duration `env:"CONN_TIMEOUT" envDefault:"10s"`
	KeepAlive             time.Duration `env:"KEEP_ALIVE" envDefault:"90s"`
	IdleConnTimeout       time.Duration `env:"IDLE_CONN_TIMEOUT" envDefault:"90s"`
	ResponseHeaderTimeout time.Duration `env:"RESPONSE_HEADER_TIMEOUT" envDefault:"60s"`
	Url                   string        `env:"BASE_URL" envDefault:"https://api.openai.com/v1"`
}

// DocumentConfig holds the fixed source-document and index paths.
type DocumentConfig struct {
	Path        string `env:"PATH" envDefault:"data/source.pdf"`
	IndexDir    string `env:"INDEX_DIR" envDefault:"data/index"`
	MaxFileSize int64  `env:"MAX_FILE_SIZE" envDefault:"10485760"` // 10 MiB
}

// SplitterConfig configures sentence-based chunking.
type SplitterConfig struct {
	SentencesPerChunk int `env:"SENTENCES_PER_CHUNK" envDefault:"5"`
	OverlapSentences  int `env:"OVERLAP_SENTENCES" envDefault:"1"`
}

// RetrieverConfig fixes the search policy at chain-construction time.
type RetrieverConfig struct {
	TopK      int     `env:"TOP_K" envDefault:"4"`
	FetchK    int     `env:"FETCH_K" envDefault:"20"`
	MMRLambda float64 `env:"MMR_LAMBDA" envDefault:"0.5"`
}

// MemoryConfig configures the keyed conversation-memory store.
type MemoryConfig struct {
	TTL             time.Duration `env:"TTL" envDefault:"30m"`
	CleanupInterval time.Duration `env:"CLEANUP_INTERVAL" envDefault:"10m"`
}

// WatcherConfig configures the source-document file watcher.
type WatcherConfig struct {
	Enabled  bool          `env:"ENABLED" envDefault:"true"`
	Debounce time.Duration `env:"DEBOUNCE" envDefault:"2s"`
}

func LoadConfig() (*Config, error) {
	envFlag := flag.String("env", "local", "Environment to run (local, prod, or custom)")
	flag.Parse()

	envFile := getEnvFile(*envFlag)
	// Try to load env file, but don't fail if it's missing.
	// In containerized/prod environments variables are usually set externally.
	if err := godotenv.Load(envFile); err != nil {
		fmt.Printf("Warning: could not load %s file (this is ok if env vars are set externally): %v\n", envFile, err)
	}

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}

	cfg.Environment = *envFlag

	if err := validateConfig(cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

func validateConfig(cfg *Config) error {
	var errs []string

	if cfg.RetrieverCfg.TopK < 1 || cfg.RetrieverCfg.TopK > 50 {
		errs = append(errs, fmt.Sprintf("RETRIEVER_TOP_K must be between 1 and 50, got %d", cfg.RetrieverCfg.TopK))
	}

	if cfg.RetrieverCfg.FetchK < cfg.RetrieverCfg.TopK {
		errs = append(errs, fmt.Sprintf("RETRIEVER_FETCH_K must be >= RETRIEVER_TOP_K(%d), got %d", cfg.RetrieverCfg.TopK, cfg.RetrieverCfg.FetchK))
	}

	if cfg.RetrieverCfg.MMRLambda < 0 || cfg.RetrieverCfg.MMRLambda > 1 {
		errs = append(errs, fmt.Sprintf("RETRIEVER_MMR_LAMBDA must be between 0 and 1, got %f", cfg.RetrieverCfg.MMRLambda))
	}

	if cfg.SplitterCfg.SentencesPerChunk < 1 {
		errs = append(errs, fmt.Sprintf("SPLITTER_SENTENCES_PER_CHUNK must be positive, got %d", cfg.SplitterCfg.SentencesPerChunk))
	}

	if cfg.SplitterCfg.OverlapSentences < 0 || cfg.SplitterCfg.OverlapSentences >= cfg.SplitterCfg.SentencesPerChunk {
		errs = append(errs, fmt.Sprintf("SPLITTER_OVERLAP_SENTENCES must be between 0 and SENTENCES_PER_CHUNK-1, got %d", cfg.SplitterCfg.OverlapSentences))
	}

	if cfg.DocumentCfg.MaxFileSize < 1 {
		errs = append(errs, fmt.Sprintf("DOCUMENT_MAX_FILE_SIZE must be positive, got %d", cfg.DocumentCfg.MaxFileSize))
	}

	if cfg.DBMaxConns < 1 || cfg.DBMaxConns > 200 {
		errs = append(errs, fmt.Sprintf("DB_MAX_CONNS must be between 1 and 200, got %d", cfg.DBMaxConns))
	}

	if cfg.DBMinConns < 0 || cfg.DBMinConns > cfg.DBMaxConns {
		errs = append(errs, fmt.Sprintf("DB_MIN_CONNS must be between 0 and DB_MAX_CONNS(%d), got %d", cfg.DBMaxConns, cfg.DBMinConns))
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation errors:\n  - %s", errs[0])
	}

	return nil
}

func getEnvFile(environment string) string {
	switch environment {
	case "prod", "production":
		return ".env.prod"
	case "local", "dev", "development":
		return ".env.local"
	default:
		return fmt.Sprintf(".env.%s", environment)
	}
}
