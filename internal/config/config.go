package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"edugenie/internal/domain"

	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig
	Logger   LoggerConfig
	LLM      LLMConfig
	Analysis AnalysisConfig
	Redis     RedisConfig
	DB        DBConfig
	Worker    WorkerConfig
	Embedding EmbeddingConfig
	Documents DocumentsConfig
}

type ServerConfig struct {
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	BodyLimit    int
}

type LoggerConfig struct {
	Env   string
	Level string
}

// LLMConfig configures the oracle. Provider is "openai" (any OpenAI-compatible
// endpoint, including Gemini's) or "ollama".
type LLMConfig struct {
	Provider    string
	APIKey      string
	Model       string
	BaseURL     string
	Temperature float64
	MaxTokens   int
	Timeout     time.Duration
}

// Validate checks the oracle settings once at startup.
func (c LLMConfig) Validate() error {
	switch c.Provider {
	case "openai":
		if strings.TrimSpace(c.APIKey) == "" {
			return &domain.ConfigurationError{Setting: "llm.api_key"}
		}
	case "ollama":
		if strings.TrimSpace(c.BaseURL) == "" {
			return &domain.ConfigurationError{Setting: "llm.base_url"}
		}
	default:
		return &domain.ConfigurationError{Setting: "llm.provider"}
	}
	if strings.TrimSpace(c.Model) == "" {
		return &domain.ConfigurationError{Setting: "llm.model"}
	}
	return nil
}

// EmbeddingConfig configures the embedding model used for document chat.
// An empty APIKey falls back to the LLM key.
type EmbeddingConfig struct {
	Provider string
	APIKey   string
	Model    string
	BaseURL  string
	Timeout  time.Duration
	CacheTTL time.Duration
}

// Validate checks the embedding settings once at startup.
func (c EmbeddingConfig) Validate() error {
	switch c.Provider {
	case "openai":
		if strings.TrimSpace(c.APIKey) == "" {
			return &domain.ConfigurationError{Setting: "embedding.api_key"}
		}
	case "ollama":
		if strings.TrimSpace(c.BaseURL) == "" {
			return &domain.ConfigurationError{Setting: "embedding.base_url"}
		}
	default:
		return &domain.ConfigurationError{Setting: "embedding.provider"}
	}
	if strings.TrimSpace(c.Model) == "" {
		return &domain.ConfigurationError{Setting: "embedding.model"}
	}
	return nil
}

// DocumentsConfig holds the ingest and retrieval limits for document chat.
type DocumentsConfig struct {
	ChunkSize    int
	ChunkOverlap int
	TopK         int
	// TTL bounds how long ingested chunks are kept; zero keeps them forever.
	TTL time.Duration
}

// AnalysisConfig holds the segmentation and orchestration limits.
type AnalysisConfig struct {
	SinglePassThreshold   int
	CharsPerPage          int
	DefaultSegmentLimit   int
	DefaultCeiling        int
	LargeDocumentPages    int
	LargeSegmentLimit     int
	LargeCeiling          int
	Concurrency           int
	MinLegacyQuizBlockLen int
}

type RedisConfig struct {
	Address  string
	Password string
	DB       int
	TTL      time.Duration
}

type DBConfig struct {
	Enabled  bool
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
}

type WorkerConfig struct {
	Stream    string
	Group     string
	Consumer  string
	BatchSize int
	Block     time.Duration
}

// DefaultAnalysisConfig returns the pipeline limits used when none are configured.
func DefaultAnalysisConfig() AnalysisConfig {
	return AnalysisConfig{
		SinglePassThreshold:   12000,
		CharsPerPage:          2500,
		DefaultSegmentLimit:   10000,
		DefaultCeiling:        12,
		LargeDocumentPages:    40,
		LargeSegmentLimit:     20000,
		LargeCeiling:          6,
		Concurrency:           1,
		MinLegacyQuizBlockLen: 20,
	}
}

func setDefaults(v *viper.Viper) {
	d := DefaultAnalysisConfig()
	v.SetDefault("server.port", 8090)
	v.SetDefault("server.read_timeout", 120)
	v.SetDefault("server.write_timeout", 120)
	v.SetDefault("server.body_limit", 10*1024*1024)
	v.SetDefault("logger.env", "development")
	v.SetDefault("logger.level", "info")
	v.SetDefault("llm.provider", "openai")
	v.SetDefault("llm.model", "gemini-2.5-flash-lite")
	v.SetDefault("llm.base_url", "https://generativelanguage.googleapis.com/v1beta/openai/")
	v.SetDefault("llm.temperature", 0.3)
	v.SetDefault("llm.max_tokens", 0)
	v.SetDefault("llm.timeout", 90)
	v.SetDefault("analysis.single_pass_threshold", d.SinglePassThreshold)
	v.SetDefault("analysis.chars_per_page", d.CharsPerPage)
	v.SetDefault("analysis.default_segment_limit", d.DefaultSegmentLimit)
	v.SetDefault("analysis.default_ceiling", d.DefaultCeiling)
	v.SetDefault("analysis.large_document_pages", d.LargeDocumentPages)
	v.SetDefault("analysis.large_segment_limit", d.LargeSegmentLimit)
	v.SetDefault("analysis.large_ceiling", d.LargeCeiling)
	v.SetDefault("analysis.concurrency", d.Concurrency)
	v.SetDefault("analysis.min_legacy_quiz_block_len", d.MinLegacyQuizBlockLen)
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.ttl", 3600)
	v.SetDefault("db.enabled", false)
	v.SetDefault("worker.stream", "edugenie:analysis:jobs")
	v.SetDefault("worker.group", "analysis-workers")
	v.SetDefault("worker.consumer", "worker-1")
	v.SetDefault("worker.batch_size", 1)
	v.SetDefault("worker.block", 5)
	v.SetDefault("embedding.provider", "openai")
	v.SetDefault("embedding.model", "text-embedding-004")
	v.SetDefault("embedding.base_url", "https://generativelanguage.googleapis.com/v1beta/openai/")
	v.SetDefault("embedding.timeout", 60)
	v.SetDefault("embedding.cache_ttl", 7*24*3600)
	v.SetDefault("documents.chunk_size", 1000)
	v.SetDefault("documents.chunk_overlap", 200)
	v.SetDefault("documents.top_k", 5)
	v.SetDefault("documents.ttl", 0)
}

// LoadConfig reads config.yaml (optional) and the environment.
func LoadConfig() (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")

	if os.Getenv("ENV") == "test" {
		v.AddConfigPath("../../config")
		v.AddConfigPath("../../")
	} else {
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
		v.AddConfigPath("./configs")
	}

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	if configFile := v.ConfigFileUsed(); configFile != "" {
		absPath, _ := filepath.Abs(configFile)
		fmt.Printf("Using config file: %s\n", absPath)
	}

	return fromViper(v), nil
}

func fromViper(v *viper.Viper) *Config {
	cfg := &Config{
		Server: ServerConfig{
			Port:         v.GetInt("server.port"),
			ReadTimeout:  time.Duration(v.GetInt("server.read_timeout")) * time.Second,
			WriteTimeout: time.Duration(v.GetInt("server.write_timeout")) * time.Second,
			BodyLimit:    v.GetInt("server.body_limit"),
		},
		Logger: LoggerConfig{
			Env:   v.GetString("logger.env"),
			Level: v.GetString("logger.level"),
		},
		LLM: LLMConfig{
			Provider:    strings.ToLower(v.GetString("llm.provider")),
			APIKey:      v.GetString("llm.api_key"),
			Model:       v.GetString("llm.model"),
			BaseURL:     v.GetString("llm.base_url"),
			Temperature: v.GetFloat64("llm.temperature"),
			MaxTokens:   v.GetInt("llm.max_tokens"),
			Timeout:     time.Duration(v.GetInt("llm.timeout")) * time.Second,
		},
		Analysis: AnalysisConfig{
			SinglePassThreshold:   v.GetInt("analysis.single_pass_threshold"),
			CharsPerPage:          v.GetInt("analysis.chars_per_page"),
			DefaultSegmentLimit:   v.GetInt("analysis.default_segment_limit"),
			DefaultCeiling:        v.GetInt("analysis.default_ceiling"),
			LargeDocumentPages:    v.GetInt("analysis.large_document_pages"),
			LargeSegmentLimit:     v.GetInt("analysis.large_segment_limit"),
			LargeCeiling:          v.GetInt("analysis.large_ceiling"),
			Concurrency:           v.GetInt("analysis.concurrency"),
			MinLegacyQuizBlockLen: v.GetInt("analysis.min_legacy_quiz_block_len"),
		},
		Redis: RedisConfig{
			Address:  v.GetString("redis.address"),
			Password: v.GetString("redis.password"),
			DB:       v.GetInt("redis.db"),
			TTL:      time.Duration(v.GetInt("redis.ttl")) * time.Second,
		},
		DB: DBConfig{
			Enabled:  v.GetBool("db.enabled"),
			Host:     v.GetString("db.host"),
			Port:     v.GetInt("db.port"),
			User:     v.GetString("db.user"),
			Password: v.GetString("db.password"),
			DBName:   v.GetString("db.name"),
		},
		Worker: WorkerConfig{
			Stream:    v.GetString("worker.stream"),
			Group:     v.GetString("worker.group"),
			Consumer:  v.GetString("worker.consumer"),
			BatchSize: v.GetInt("worker.batch_size"),
			Block:     time.Duration(v.GetInt("worker.block")) * time.Second,
		},
		Embedding: EmbeddingConfig{
			Provider: strings.ToLower(v.GetString("embedding.provider")),
			APIKey:   v.GetString("embedding.api_key"),
			Model:    v.GetString("embedding.model"),
			BaseURL:  v.GetString("embedding.base_url"),
			Timeout:  time.Duration(v.GetInt("embedding.timeout")) * time.Second,
			CacheTTL: time.Duration(v.GetInt("embedding.cache_ttl")) * time.Second,
		},
		Documents: DocumentsConfig{
			ChunkSize:    v.GetInt("documents.chunk_size"),
			ChunkOverlap: v.GetInt("documents.chunk_overlap"),
			TopK:         v.GetInt("documents.top_k"),
			TTL:          time.Duration(v.GetInt("documents.ttl")) * time.Second,
		},
	}

	// Override with environment variables if set
	if apiKey := os.Getenv("LLM_API_KEY"); apiKey != "" {
		cfg.LLM.APIKey = apiKey
	} else if apiKey := os.Getenv("GEMINI_API_KEY"); apiKey != "" && cfg.LLM.APIKey == "" {
		cfg.LLM.APIKey = apiKey
	}
	if cfg.Embedding.APIKey == "" {
		cfg.Embedding.APIKey = cfg.LLM.APIKey
	}
	if redisAddress := os.Getenv("REDIS_ADDRESS"); redisAddress != "" {
		cfg.Redis.Address = redisAddress
	}
	if redisPassword := os.Getenv("REDIS_PASSWORD"); redisPassword != "" {
		cfg.Redis.Password = redisPassword
	}
	if host := os.Getenv("DB_HOST"); host != "" {
		cfg.DB.Host = host
	}
	if user := os.Getenv("DB_USER"); user != "" {
		cfg.DB.User = user
	}
	if password := os.Getenv("DB_PASSWORD"); password != "" {
		cfg.DB.Password = password
	}
	if dbname := os.Getenv("DB_NAME"); dbname != "" {
		cfg.DB.DBName = dbname
	}

	return cfg
}

// GetDSN returns the go-ora connection URL.
func (c *Config) GetDSN() string {
	return fmt.Sprintf("oracle://%s:%s@%s:%d/%s",
		c.DB.User,
		c.DB.Password,
		c.DB.Host,
		c.DB.Port,
		c.DB.DBName,
	)
}
