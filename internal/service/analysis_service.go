package service

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"edugenie/internal/cache"
	"edugenie/internal/domain"
	"edugenie/internal/dto"
	"edugenie/internal/logger"
	"edugenie/internal/parser"
	"edugenie/internal/validation"

	"go.uber.org/zap"
)

// AnalysisService defines the interface for document analysis operations
type AnalysisService interface {
	Analyze(ctx context.Context, req *dto.AnalyzeRequest) (*dto.AnalysisResponse, error)
	GetArtifact(ctx context.Context, id string) (*dto.AnalysisResponse, error)
}

// analysisService implements AnalysisService. repo and cache are optional.
type analysisService struct {
	orchestrator *Orchestrator
	repo         domain.ArtifactRepository
	cache        domain.Cache
	cacheTTL     time.Duration
	validator    *validation.Validator
	quizParser   *parser.QuizParser
	cardParser   *parser.FlashCardParser
}

// NewAnalysisService creates a new instance of analysisService
func NewAnalysisService(
	orchestrator *Orchestrator,
	repo domain.ArtifactRepository,
	cache domain.Cache,
	cacheTTL time.Duration,
	minLegacyQuizBlockLen int,
) AnalysisService {
	return &analysisService{
		orchestrator: orchestrator,
		repo:         repo,
		cache:        cache,
		cacheTTL:     cacheTTL,
		validator:    validation.NewValidator(),
		quizParser:   parser.NewQuizParser(minLegacyQuizBlockLen),
		cardParser:   parser.NewFlashCardParser(),
	}
}

// Analyze implements AnalysisService
func (s *analysisService) Analyze(ctx context.Context, req *dto.AnalyzeRequest) (*dto.AnalysisResponse, error) {
	if errs := s.validator.ValidateAnalyzeRequest(req); len(errs) > 0 {
		return nil, errs
	}
	task, _ := domain.ParseTaskType(req.Type)
	resultKey := cache.ResultKey(task.String(), req.Content)

	if cached := s.fromCache(ctx, resultKey); cached != nil {
		logger.Get().Info("AnalysisService: cache hit",
			zap.String("task_type", task.String()),
			zap.String("artifact_id", cached.ID))
		return cached, nil
	}

	artifact, err := s.orchestrator.Run(ctx, task, req.Content, req.SizeHint)
	if err != nil {
		return nil, domain.AsDomainError(err)
	}

	resp := s.toResponse(artifact)

	if s.repo != nil {
		if err := s.repo.SaveArtifact(ctx, artifact, req.DocumentID); err != nil {
			logger.Get().Error("AnalysisService: failed to persist artifact",
				zap.String("artifact_id", artifact.ID),
				zap.Error(err))
		}
	}
	s.toCache(ctx, resp, resultKey, cache.ArtifactKey(artifact.ID))

	logger.Get().Info("AnalysisService: analysis completed",
		zap.String("task_type", task.String()),
		zap.String("artifact_id", artifact.ID),
		zap.Int("segments", artifact.Segments),
		zap.Int("warnings", len(artifact.Warnings)))
	return resp, nil
}

// GetArtifact implements AnalysisService
func (s *analysisService) GetArtifact(ctx context.Context, id string) (*dto.AnalysisResponse, error) {
	if errs := s.validator.ValidateID("id", id); len(errs) > 0 {
		return nil, errs
	}

	if cached := s.fromCache(ctx, cache.ArtifactKey(id)); cached != nil {
		return cached, nil
	}
	if s.repo == nil {
		return nil, domain.NewArtifactNotFoundError(id)
	}

	artifact, err := s.repo.GetArtifactByID(ctx, id)
	if err != nil {
		return nil, domain.NewInternalError("Failed to load artifact", err)
	}
	if artifact == nil {
		return nil, domain.NewArtifactNotFoundError(id)
	}

	resp := s.toResponse(artifact)
	s.toCache(ctx, resp, cache.ArtifactKey(id))
	return resp, nil
}

func (s *analysisService) toResponse(artifact *domain.AnalysisArtifact) *dto.AnalysisResponse {
	resp := &dto.AnalysisResponse{
		ID:         artifact.ID,
		Type:       artifact.TaskType.String(),
		Result:     artifact.Result,
		WordCount:  artifact.WordCount,
		TextLength: artifact.CharCount,
		Timestamp:  artifact.CreatedAt,
		Segments:   artifact.Segments,
		Warnings:   artifact.Warnings,
	}

	switch artifact.TaskType {
	case domain.TaskQuiz:
		parsed := s.quizParser.Parse(artifact.Result)
		resp.Questions = parsed.Questions
		resp.Diagnostics = parsed.Diagnostics
		resp.UsedFallback = parsed.UsedFallback
		for _, q := range parsed.Questions {
			if !q.AnswerDetermined {
				resp.AnswerUndetermined++
			}
		}
		if len(parsed.Questions) == 0 {
			logger.Get().Warn("AnalysisService: no quiz questions could be parsed",
				zap.String("artifact_id", artifact.ID),
				zap.Int("rejected_blocks", len(parsed.Diagnostics)))
		}
	case domain.TaskFlashcards:
		parsed := s.cardParser.Parse(artifact.Result)
		resp.FlashCards = parsed.Cards
		resp.Diagnostics = parsed.Diagnostics
		resp.UsedFallback = parsed.UsedFallback
		if len(parsed.Cards) == 0 {
			logger.Get().Warn("AnalysisService: no flashcards could be parsed",
				zap.String("artifact_id", artifact.ID),
				zap.Int("rejected_blocks", len(parsed.Diagnostics)))
		}
	}
	return resp
}

func (s *analysisService) fromCache(ctx context.Context, key string) *dto.AnalysisResponse {
	if s.cache == nil {
		return nil
	}
	raw, err := s.cache.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, domain.ErrCacheMiss) {
			logger.Get().Warn("AnalysisService: cache read failed", zap.String("key", key), zap.Error(err))
		}
		return nil
	}

	var resp dto.AnalysisResponse
	if err := json.Unmarshal([]byte(raw), &resp); err != nil {
		logger.Get().Warn("AnalysisService: discarding undecodable cache entry", zap.String("key", key), zap.Error(err))
		return nil
	}
	resp.Cached = true
	return &resp
}

func (s *analysisService) toCache(ctx context.Context, resp *dto.AnalysisResponse, keys ...string) {
	if s.cache == nil {
		return
	}
	data, err := json.Marshal(resp)
	if err != nil {
		logger.Get().Error("AnalysisService: failed to marshal result for cache", zap.Error(err))
		return
	}
	for _, key := range keys {
		if err := s.cache.Set(ctx, key, string(data), s.cacheTTL); err != nil {
			logger.Get().Warn("AnalysisService: cache write failed", zap.String("key", key), zap.Error(err))
		}
	}
}
