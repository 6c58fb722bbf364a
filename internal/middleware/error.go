package middleware

import (
	"errors"
	"net/http"

	"edugenie/internal/domain"
	"edugenie/internal/logger"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// ErrorResponse represents the standard error response structure
type ErrorResponse struct {
	Code      string                 `json:"code"`
	Message   string                 `json:"message"`
	Status    int                    `json:"status"`
	RequestID string                 `json:"request_id,omitempty"`
	Details   map[string]interface{} `json:"details,omitempty"`
}

// ValidationErrorResponse represents validation error response
type ValidationErrorResponse struct {
	Code      string                   `json:"code"`
	Message   string                   `json:"message"`
	Status    int                      `json:"status"`
	RequestID string                   `json:"request_id,omitempty"`
	Errors    []domain.ValidationError `json:"errors"`
}

// ErrorHandler renders every error returned by a handler. Pipeline failures
// (configuration, upstream, empty response) arrive as DomainErrors built by
// domain.AsDomainError.
func ErrorHandler() fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		l := logger.Get().With(
			zap.String("path", c.Path()),
			zap.String("request_id", requestID(c)),
		)

		var validationErrs domain.ValidationErrors
		if errors.As(err, &validationErrs) {
			l.Warn("Request validation failed", zap.Int("error_count", len(validationErrs)))
			return c.Status(http.StatusBadRequest).JSON(ValidationErrorResponse{
				Code:      string(domain.CodeValidation),
				Message:   "Request validation failed",
				Status:    http.StatusBadRequest,
				RequestID: requestID(c),
				Errors:    validationErrs,
			})
		}

		var domainErr *domain.DomainError
		if errors.As(err, &domainErr) {
			status := statusForCode(domainErr.Code)
			fields := []zap.Field{
				zap.String("code", string(domainErr.Code)),
				zap.Int("status", status),
				zap.Error(domainErr.Cause),
			}
			if status >= http.StatusInternalServerError {
				l.Error(domainErr.Message, fields...)
			} else {
				l.Warn(domainErr.Message, fields...)
			}
			return writeError(c, status, string(domainErr.Code), domainErr.Message, domainErr.Context)
		}

		var fiberErr *fiber.Error
		if errors.As(err, &fiberErr) {
			l.Warn("Request rejected", zap.Int("status", fiberErr.Code), zap.String("message", fiberErr.Message))
			return writeError(c, fiberErr.Code, "HTTP_ERROR", fiberErr.Message, nil)
		}

		l.Error("Unhandled error", zap.Error(err))
		return writeError(c, http.StatusInternalServerError, string(domain.CodeInternal), "Internal server error", nil)
	}
}

func writeError(c *fiber.Ctx, status int, code, message string, details map[string]interface{}) error {
	resp := ErrorResponse{
		Code:      code,
		Message:   message,
		Status:    status,
		RequestID: requestID(c),
	}
	if len(details) > 0 {
		resp.Details = details
	}
	return c.Status(status).JSON(resp)
}

// statusForCode maps domain error codes to HTTP status codes
func statusForCode(code domain.ErrorCode) int {
	switch code {
	case domain.CodeNotFound, domain.CodeArtifactNotFound, domain.CodeJobNotFound:
		return http.StatusNotFound
	case domain.CodeInvalidInput, domain.CodeValidation, domain.CodeMissingField,
		domain.CodeInvalidFormat, domain.CodeOutOfRange:
		return http.StatusBadRequest
	case domain.CodeUpstream, domain.CodeEmptyResponse:
		return http.StatusBadGateway
	default:
		// includes CONFIGURATION_ERROR
		return http.StatusInternalServerError
	}
}

func requestID(c *fiber.Ctx) string {
	return string(c.Response().Header.Peek(RequestIDHeader))
}
