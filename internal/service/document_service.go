package service

import (
	"context"
	"strings"

	"edugenie/internal/config"
	"edugenie/internal/domain"
	"edugenie/internal/dto"
	"edugenie/internal/logger"
	"edugenie/internal/prompt"
	"edugenie/internal/segmenter"
	"edugenie/internal/validation"

	"go.uber.org/zap"
)

const (
	IngestStatusSuccess = "success"

	// NoDocumentContentAnswer is returned when nothing has been ingested for a
	// document, so no question is sent to the oracle.
	NoDocumentContentAnswer = "I cannot find any content for this document. It might still be processing."
)

// DocumentService answers questions about ingested documents.
type DocumentService interface {
	// Ingest chunks and embeds the text, replacing anything stored for the document.
	Ingest(ctx context.Context, documentID string, req *dto.IngestRequest) (*dto.IngestResponse, error)
	Chat(ctx context.Context, documentID string, req *dto.ChatRequest) (*dto.ChatResponse, error)
}

type documentService struct {
	embedder  domain.EmbeddingService
	store     domain.ChunkStore
	completer domain.Completer
	cfg       config.DocumentsConfig
	validator *validation.Validator
}

// NewDocumentService creates a new instance of documentService
func NewDocumentService(
	embedder domain.EmbeddingService,
	store domain.ChunkStore,
	completer domain.Completer,
	cfg config.DocumentsConfig,
) DocumentService {
	if cfg.ChunkSize <= 0 {
		cfg.ChunkSize = 1000
	}
	if cfg.ChunkOverlap < 0 {
		cfg.ChunkOverlap = 0
	}
	if cfg.TopK <= 0 {
		cfg.TopK = 5
	}
	return &documentService{
		embedder:  embedder,
		store:     store,
		completer: completer,
		cfg:       cfg,
		validator: validation.NewValidator(),
	}
}

// Ingest implements DocumentService
func (s *documentService) Ingest(ctx context.Context, documentID string, req *dto.IngestRequest) (*dto.IngestResponse, error) {
	errs := s.validator.ValidateDocumentID("id", documentID)
	errs = append(errs, s.validator.ValidateIngestRequest(req)...)
	if len(errs) > 0 {
		return nil, errs
	}

	texts := segmenter.Chunk(req.Text, s.cfg.ChunkSize, s.cfg.ChunkOverlap)
	vectors, err := s.embedder.GenerateBatch(ctx, texts)
	if err != nil {
		return nil, domain.AsDomainError(err)
	}

	chunks := make([]domain.DocumentChunk, len(texts))
	for i, text := range texts {
		chunks[i] = domain.DocumentChunk{
			DocumentID: documentID,
			Index:      i + 1,
			Text:       text,
			Embedding:  vectors[i],
		}
	}
	if err := s.store.ReplaceChunks(ctx, documentID, chunks); err != nil {
		return nil, domain.NewInternalError("Failed to store document chunks", err)
	}

	logger.Get().Info("DocumentService: document ingested",
		zap.String("document_id", documentID),
		zap.Int("chunks", len(chunks)))
	return &dto.IngestResponse{
		DocumentID:    documentID,
		Status:        IngestStatusSuccess,
		ChunksCreated: len(chunks),
	}, nil
}

// Chat implements DocumentService
func (s *documentService) Chat(ctx context.Context, documentID string, req *dto.ChatRequest) (*dto.ChatResponse, error) {
	errs := s.validator.ValidateDocumentID("id", documentID)
	errs = append(errs, s.validator.ValidateChatRequest(req)...)
	if len(errs) > 0 {
		return nil, errs
	}
	question := strings.TrimSpace(req.Question)
	l := logger.Get().With(zap.String("document_id", documentID))

	vector, err := s.embedder.Generate(ctx, question)
	if err != nil {
		return nil, domain.AsDomainError(err)
	}

	hits, err := s.store.Search(ctx, documentID, vector, s.cfg.TopK)
	if err != nil {
		return nil, domain.NewInternalError("Failed to search document chunks", err)
	}
	if len(hits) == 0 {
		l.Info("DocumentService: no content for document")
		return &dto.ChatResponse{Answer: NoDocumentContentAnswer}, nil
	}

	passages := make([]string, len(hits))
	sources := make([]dto.ChatSource, len(hits))
	for i, hit := range hits {
		passages[i] = hit.Text
		sources[i] = dto.ChatSource{Index: hit.Index, Score: hit.Score}
	}

	answer, err := s.completer.Complete(ctx, prompt.Chat(passages, req.History, question))
	if err != nil {
		return nil, domain.AsDomainError(err)
	}

	l.Info("DocumentService: question answered",
		zap.Int("passages", len(passages)),
		zap.Int("history_turns", len(req.History)))
	return &dto.ChatResponse{Answer: strings.TrimSpace(answer), Sources: sources}, nil
}
