// Package embedding implements domain.EmbeddingService with langchaingo embedders.
package embedding

import (
	"context"
	"fmt"

	"edugenie/internal/adapter/completion"
	"edugenie/internal/config"
	"edugenie/internal/domain"
	"edugenie/internal/logger"

	"github.com/tmc/langchaingo/embeddings"
	"go.uber.org/zap"
)

// embedBatchSize stays under the per-request input limit of the hosted APIs.
const embedBatchSize = 100

// New validates cfg and builds the embedding service for its provider. cache
// may be nil; only the OpenAI-compatible service uses it.
func New(cfg config.EmbeddingConfig, cache domain.Cache) (domain.EmbeddingService, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	var (
		svc domain.EmbeddingService
		err error
	)
	switch cfg.Provider {
	case "ollama":
		svc, err = NewOllamaEmbeddingService(cfg.BaseURL, cfg.Model, cfg)
	default:
		svc, err = NewOpenAIEmbeddingService(cfg.APIKey, cfg.Model, cache, cfg)
	}
	if err != nil {
		return nil, err
	}

	logger.Get().Info("Initialized embedding service",
		zap.String("provider", cfg.Provider),
		zap.String("model", cfg.Model))
	return svc, nil
}

func newEmbedder(client embeddings.EmbedderClient) (embeddings.Embedder, error) {
	return embeddings.NewEmbedder(client, embeddings.WithBatchSize(embedBatchSize))
}

func embedBatch(ctx context.Context, embedder embeddings.Embedder, provider string, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}
	vectors, err := embedder.EmbedDocuments(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("failed to generate embeddings using %s: %w", provider, completion.AsUpstreamError(err))
	}
	if len(vectors) != len(texts) {
		return nil, &domain.EmptyResponseError{
			Reason: fmt.Sprintf("%s returned %d embeddings for %d texts", provider, len(vectors), len(texts)),
		}
	}
	return vectors, nil
}
