package config

import (
	"testing"
	"time"

	"edugenie/internal/domain"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLLMConfig_Validate(t *testing.T) {
	tests := []struct {
		name        string
		cfg         LLMConfig
		wantSetting string
	}{
		{"openai ok", LLMConfig{Provider: "openai", APIKey: "k", Model: "m"}, ""},
		{"openai missing key", LLMConfig{Provider: "openai", APIKey: "  ", Model: "m"}, "llm.api_key"},
		{"ollama ok", LLMConfig{Provider: "ollama", BaseURL: "http://localhost:11434", Model: "qwen3"}, ""},
		{"ollama missing url", LLMConfig{Provider: "ollama", Model: "qwen3"}, "llm.base_url"},
		{"unknown provider", LLMConfig{Provider: "bard", APIKey: "k", Model: "m"}, "llm.provider"},
		{"missing model", LLMConfig{Provider: "openai", APIKey: "k"}, "llm.model"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.cfg.Validate()
			if tc.wantSetting == "" {
				assert.NoError(t, err)
				return
			}
			var cfgErr *domain.ConfigurationError
			require.ErrorAs(t, err, &cfgErr)
			assert.Equal(t, tc.wantSetting, cfgErr.Setting)
		})
	}
}

func TestEmbeddingConfig_Validate(t *testing.T) {
	tests := []struct {
		name        string
		cfg         EmbeddingConfig
		wantSetting string
	}{
		{"openai ok", EmbeddingConfig{Provider: "openai", APIKey: "k", Model: "text-embedding-004"}, ""},
		{"openai missing key", EmbeddingConfig{Provider: "openai", Model: "text-embedding-004"}, "embedding.api_key"},
		{"ollama missing url", EmbeddingConfig{Provider: "ollama", Model: "nomic-embed-text"}, "embedding.base_url"},
		{"unknown provider", EmbeddingConfig{Provider: "", APIKey: "k", Model: "m"}, "embedding.provider"},
		{"missing model", EmbeddingConfig{Provider: "ollama", BaseURL: "http://localhost:11434"}, "embedding.model"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.cfg.Validate()
			if tc.wantSetting == "" {
				assert.NoError(t, err)
				return
			}
			var cfgErr *domain.ConfigurationError
			require.ErrorAs(t, err, &cfgErr)
			assert.Equal(t, tc.wantSetting, cfgErr.Setting)
		})
	}
}

func TestDefaultAnalysisConfig(t *testing.T) {
	d := DefaultAnalysisConfig()

	assert.Equal(t, 12000, d.SinglePassThreshold)
	assert.Equal(t, 2500, d.CharsPerPage)
	assert.Equal(t, 10000, d.DefaultSegmentLimit)
	assert.Equal(t, 12, d.DefaultCeiling)
	assert.Equal(t, 40, d.LargeDocumentPages)
	assert.Equal(t, 20000, d.LargeSegmentLimit)
	assert.Equal(t, 6, d.LargeCeiling)
	assert.Equal(t, 1, d.Concurrency)
}

func TestFromViper_Defaults(t *testing.T) {
	v := viper.New()
	setDefaults(v)

	cfg := fromViper(v)

	assert.Equal(t, 8090, cfg.Server.Port)
	assert.Equal(t, 120*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, "openai", cfg.LLM.Provider)
	assert.Equal(t, 90*time.Second, cfg.LLM.Timeout)
	assert.Equal(t, DefaultAnalysisConfig(), cfg.Analysis)
	assert.Equal(t, time.Hour, cfg.Redis.TTL)
	assert.False(t, cfg.DB.Enabled)
	assert.Equal(t, 5*time.Second, cfg.Worker.Block)
	assert.Equal(t, "text-embedding-004", cfg.Embedding.Model)
	assert.Equal(t, 7*24*time.Hour, cfg.Embedding.CacheTTL)
	assert.Equal(t, DocumentsConfig{ChunkSize: 1000, ChunkOverlap: 200, TopK: 5}, cfg.Documents)
}

func TestFromViper_EnvironmentOverrides(t *testing.T) {
	t.Setenv("LLM_API_KEY", "secret")
	t.Setenv("REDIS_ADDRESS", "localhost:6379")
	t.Setenv("DB_HOST", "oracle.internal")

	v := viper.New()
	setDefaults(v)
	v.Set("llm.provider", "Ollama")
	v.Set("analysis.concurrency", 4)

	cfg := fromViper(v)

	assert.Equal(t, "secret", cfg.LLM.APIKey)
	assert.Equal(t, "secret", cfg.Embedding.APIKey)
	assert.Equal(t, "ollama", cfg.LLM.Provider)
	assert.Equal(t, 4, cfg.Analysis.Concurrency)
	assert.Equal(t, "localhost:6379", cfg.Redis.Address)
	assert.Equal(t, "oracle.internal", cfg.DB.Host)
}

func TestGetDSN(t *testing.T) {
	cfg := &Config{DB: DBConfig{User: "edu", Password: "pw", Host: "db", Port: 1521, DBName: "FREEPDB1"}}

	assert.Equal(t, "oracle://edu:pw@db:1521/FREEPDB1", cfg.GetDSN())
}
