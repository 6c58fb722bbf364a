package handler

import (
	"edugenie/internal/dto"
	"edugenie/internal/logger"
	"edugenie/internal/service"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// DocumentHandler serves document ingest and chat. documents is nil when
// Redis or the embedding model is not configured.
type DocumentHandler struct {
	documents service.DocumentService
}

func NewDocumentHandler(documents service.DocumentService) *DocumentHandler {
	return &DocumentHandler{documents: documents}
}

// Ingest godoc
// @Summary Ingest a document for chat
// @Description Splits the text into chunks, embeds them and replaces any earlier chunks of the document
// @Tags documents
// @Accept json
// @Produce json
// @Param id path string true "Document ID"
// @Param request body dto.IngestRequest true "Document text"
// @Success 200 {object} dto.IngestResponse
// @Failure 400 {object} middleware.ValidationErrorResponse
// @Failure 503 {object} middleware.ErrorResponse
// @Router /documents/{id}/ingest [post]
func (h *DocumentHandler) Ingest(c *fiber.Ctx) error {
	if h.documents == nil {
		return fiber.NewError(fiber.StatusServiceUnavailable, "Document chat is not enabled")
	}

	var req dto.IngestRequest
	if err := c.BodyParser(&req); err != nil {
		logger.Get().Debug("Failed to parse ingest request", zap.Error(err))
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}

	resp, err := h.documents.Ingest(c.UserContext(), c.Params("id"), &req)
	if err != nil {
		return err
	}
	return c.JSON(resp)
}

// Chat godoc
// @Summary Ask a question about an ingested document
// @Tags documents
// @Accept json
// @Produce json
// @Param id path string true "Document ID"
// @Param request body dto.ChatRequest true "Question and earlier turns"
// @Success 200 {object} dto.ChatResponse
// @Failure 400 {object} middleware.ValidationErrorResponse
// @Failure 502 {object} middleware.ErrorResponse
// @Router /documents/{id}/chat [post]
func (h *DocumentHandler) Chat(c *fiber.Ctx) error {
	if h.documents == nil {
		return fiber.NewError(fiber.StatusServiceUnavailable, "Document chat is not enabled")
	}

	var req dto.ChatRequest
	if err := c.BodyParser(&req); err != nil {
		logger.Get().Debug("Failed to parse chat request", zap.Error(err))
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}

	resp, err := h.documents.Chat(c.UserContext(), c.Params("id"), &req)
	if err != nil {
		return err
	}
	return c.JSON(resp)
}
