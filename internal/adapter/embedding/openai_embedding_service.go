package embedding

import (
	"bytes"
	"context"
	"encoding/gob"
	"errors"
	"fmt"
	"time"

	"edugenie/internal/adapter/completion"
	"edugenie/internal/cache"
	"edugenie/internal/config"
	"edugenie/internal/domain"
	"edugenie/internal/logger"

	"github.com/tmc/langchaingo/embeddings"
	openaiLLM "github.com/tmc/langchaingo/llms/openai"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

const defaultEmbeddingTTL = 168 * time.Hour

// OpenAIEmbeddingService implements domain.EmbeddingService against any
// OpenAI-compatible embeddings endpoint, Gemini's included. Query embeddings
// are cached; identical concurrent queries share one upstream call.
type OpenAIEmbeddingService struct {
	embedder embeddings.Embedder
	cache    domain.Cache
	model    string
	cacheTTL time.Duration
	sfGroup  singleflight.Group
}

// NewOpenAIEmbeddingService creates a new OpenAIEmbeddingService. cache may be nil.
func NewOpenAIEmbeddingService(apiKey, modelName string, cache domain.Cache, cfg config.EmbeddingConfig) (*OpenAIEmbeddingService, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("openai API key cannot be empty")
	}
	if modelName == "" {
		modelName = "text-embedding-004"
	}

	opts := []openaiLLM.Option{
		openaiLLM.WithToken(apiKey),
		openaiLLM.WithEmbeddingModel(modelName),
		openaiLLM.WithHTTPClient(completion.NewHTTPClient(cfg.Timeout)),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, openaiLLM.WithBaseURL(cfg.BaseURL))
	}
	llm, err := openaiLLM.New(opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create LangchainGo OpenAI LLM client for embedder: %w", err)
	}

	embedder, err := newEmbedder(llm)
	if err != nil {
		return nil, fmt.Errorf("failed to create generic embedder from OpenAI LLM: %w", err)
	}

	ttl := cfg.CacheTTL
	if ttl <= 0 {
		ttl = defaultEmbeddingTTL
	}
	return &OpenAIEmbeddingService{
		embedder: embedder,
		cache:    cache,
		model:    modelName,
		cacheTTL: ttl,
	}, nil
}

// Generate creates an embedding for the given text using the OpenAI embedder.
func (s *OpenAIEmbeddingService) Generate(ctx context.Context, text string) ([]float32, error) {
	if text == "" {
		return nil, fmt.Errorf("input text cannot be empty for embedding")
	}

	cacheKey := cache.QueryEmbeddingKey(s.model, text)
	if vector, ok := s.fromCache(ctx, cacheKey); ok {
		return vector, nil
	}

	res, err, _ := s.sfGroup.Do(cacheKey, func() (interface{}, error) {
		vector, err := s.embedder.EmbedQuery(ctx, text)
		if err != nil {
			return nil, fmt.Errorf("failed to generate embedding using OpenAI: %w", completion.AsUpstreamError(err))
		}
		if len(vector) == 0 {
			return nil, &domain.EmptyResponseError{Reason: "empty embedding"}
		}
		s.toCache(ctx, cacheKey, vector)
		return vector, nil
	})
	if err != nil {
		return nil, err
	}

	vector, ok := res.([]float32)
	if !ok {
		return nil, fmt.Errorf("unexpected type from singleflight.Do for openai embedding: %T", res)
	}
	return vector, nil
}

func (s *OpenAIEmbeddingService) GenerateBatch(ctx context.Context, texts []string) ([][]float32, error) {
	return embedBatch(ctx, s.embedder, "OpenAI", texts)
}

func (s *OpenAIEmbeddingService) fromCache(ctx context.Context, key string) ([]float32, bool) {
	if s.cache == nil {
		return nil, false
	}
	data, err := s.cache.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, domain.ErrCacheMiss) {
			logger.Get().Warn("Embedding cache read failed", zap.String("key", key), zap.Error(err))
		}
		return nil, false
	}
	var vector []float32
	if err := gob.NewDecoder(bytes.NewReader([]byte(data))).Decode(&vector); err != nil || len(vector) == 0 {
		logger.Get().Warn("Discarding undecodable cached embedding", zap.String("key", key), zap.Error(err))
		return nil, false
	}
	return vector, true
}

func (s *OpenAIEmbeddingService) toCache(ctx context.Context, key string, vector []float32) {
	if s.cache == nil {
		return
	}
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(vector); err != nil {
		logger.Get().Warn("Failed to encode embedding for caching", zap.Error(err))
		return
	}
	if err := s.cache.Set(ctx, key, buf.String(), s.cacheTTL); err != nil {
		logger.Get().Warn("Failed to cache embedding", zap.String("key", key), zap.Error(err))
	}
}

var _ domain.EmbeddingService = (*OpenAIEmbeddingService)(nil)
