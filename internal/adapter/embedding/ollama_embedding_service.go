package embedding

import (
	"context"
	"fmt"

	"edugenie/internal/adapter/completion"
	"edugenie/internal/config"
	"edugenie/internal/domain"

	"github.com/tmc/langchaingo/embeddings"
	ollamaLLM "github.com/tmc/langchaingo/llms/ollama"
)

// OllamaEmbeddingService implements the domain.EmbeddingService interface using Ollama.
type OllamaEmbeddingService struct {
	embedder embeddings.Embedder
}

// NewOllamaEmbeddingService creates a new OllamaEmbeddingService.
// It requires the Ollama server URL and model name.
func NewOllamaEmbeddingService(serverURL, modelName string, cfg config.EmbeddingConfig) (*OllamaEmbeddingService, error) {
	if serverURL == "" {
		return nil, fmt.Errorf("ollama server URL cannot be empty")
	}
	if modelName == "" {
		return nil, fmt.Errorf("ollama model name cannot be empty")
	}

	llm, err := ollamaLLM.New(
		ollamaLLM.WithModel(modelName),
		ollamaLLM.WithServerURL(serverURL),
		ollamaLLM.WithHTTPClient(completion.NewHTTPClient(cfg.Timeout)),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create LangchainGo Ollama LLM client for embedder: %w", err)
	}

	embedder, err := newEmbedder(llm)
	if err != nil {
		return nil, fmt.Errorf("failed to create generic embedder from Ollama LLM: %w", err)
	}

	return &OllamaEmbeddingService{embedder: embedder}, nil
}

// Generate creates an embedding for the given text using the Ollama embedder.
func (s *OllamaEmbeddingService) Generate(ctx context.Context, text string) ([]float32, error) {
	if text == "" {
		return nil, fmt.Errorf("input text cannot be empty for embedding")
	}

	vector, err := s.embedder.EmbedQuery(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("failed to generate embedding using Ollama: %w", completion.AsUpstreamError(err))
	}
	return vector, nil
}

func (s *OllamaEmbeddingService) GenerateBatch(ctx context.Context, texts []string) ([][]float32, error) {
	return embedBatch(ctx, s.embedder, "Ollama", texts)
}

var _ domain.EmbeddingService = (*OllamaEmbeddingService)(nil)
