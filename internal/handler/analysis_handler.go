package handler

import (
	"edugenie/internal/dto"
	"edugenie/internal/logger"
	"edugenie/internal/middleware"
	"edugenie/internal/service"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// AnalysisHandler handles analysis-related HTTP requests
type AnalysisHandler struct {
	analysis service.AnalysisService
	// jobs is nil when Redis is not configured
	jobs service.JobService
}

// NewAnalysisHandler creates a new AnalysisHandler instance
func NewAnalysisHandler(analysis service.AnalysisService, jobs service.JobService) *AnalysisHandler {
	return &AnalysisHandler{
		analysis: analysis,
		jobs:     jobs,
	}
}

// Analyze godoc
// @Summary Analyze a document
// @Description Runs a summary, quiz, flashcards, keywords or explanation task over the document text
// @Tags analysis
// @Accept json
// @Produce json
// @Param request body dto.AnalyzeRequest true "Document and task type"
// @Success 200 {object} dto.AnalysisResponse
// @Failure 400 {object} middleware.ValidationErrorResponse
// @Failure 502 {object} middleware.ErrorResponse
// @Router /analyze [post]
func (h *AnalysisHandler) Analyze(c *fiber.Ctx) error {
	var req dto.AnalyzeRequest
	if err := c.BodyParser(&req); err != nil {
		logger.Get().Debug("Failed to parse analyze request", zap.Error(err))
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}

	resp, err := h.analysis.Analyze(c.UserContext(), &req)
	if err != nil {
		return err
	}
	return c.JSON(resp)
}

// GetArtifact godoc
// @Summary Get a stored analysis result
// @Tags analysis
// @Produce json
// @Param id path string true "Artifact ID"
// @Success 200 {object} dto.AnalysisResponse
// @Failure 404 {object} middleware.ErrorResponse
// @Router /artifacts/{id} [get]
func (h *AnalysisHandler) GetArtifact(c *fiber.Ctx) error {
	id, _ := c.Locals(middleware.ValidatedIDKey).(string)
	if id == "" {
		id = c.Params("id")
	}

	resp, err := h.analysis.GetArtifact(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.JSON(resp)
}

// SubmitJob godoc
// @Summary Queue a document for background analysis
// @Tags jobs
// @Accept json
// @Produce json
// @Param request body dto.AnalyzeRequest true "Document and task type"
// @Success 202 {object} dto.EnqueueJobResponse
// @Failure 400 {object} middleware.ValidationErrorResponse
// @Failure 503 {object} middleware.ErrorResponse
// @Router /analyze/jobs [post]
func (h *AnalysisHandler) SubmitJob(c *fiber.Ctx) error {
	if h.jobs == nil {
		return fiber.NewError(fiber.StatusServiceUnavailable, "Background analysis is not enabled")
	}

	var req dto.AnalyzeRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}

	resp, err := h.jobs.Submit(c.UserContext(), &req)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusAccepted).JSON(resp)
}

// GetJob godoc
// @Summary Get background analysis status
// @Tags jobs
// @Produce json
// @Param id path string true "Job ID"
// @Success 200 {object} dto.JobStatusResponse
// @Failure 404 {object} middleware.ErrorResponse
// @Router /analyze/jobs/{id} [get]
func (h *AnalysisHandler) GetJob(c *fiber.Ctx) error {
	if h.jobs == nil {
		return fiber.NewError(fiber.StatusServiceUnavailable, "Background analysis is not enabled")
	}

	id, _ := c.Locals(middleware.ValidatedIDKey).(string)
	if id == "" {
		id = c.Params("id")
	}

	resp, err := h.jobs.GetJob(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.JSON(resp)
}
