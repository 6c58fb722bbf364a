package domain

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ErrorCode represents a specific type of error in the domain
type ErrorCode string

const (
	// Common errors
	CodeInternal     ErrorCode = "INTERNAL_ERROR"
	CodeInvalidInput ErrorCode = "INVALID_INPUT"
	CodeNotFound     ErrorCode = "NOT_FOUND"

	// Validation errors
	CodeValidation    ErrorCode = "VALIDATION_ERROR"
	CodeMissingField  ErrorCode = "MISSING_FIELD"
	CodeInvalidFormat ErrorCode = "INVALID_FORMAT"
	CodeOutOfRange    ErrorCode = "OUT_OF_RANGE"

	// Analysis pipeline errors
	CodeConfiguration    ErrorCode = "CONFIGURATION_ERROR"
	CodeUpstream         ErrorCode = "UPSTREAM_ERROR"
	CodeEmptyResponse    ErrorCode = "EMPTY_RESPONSE"
	CodeArtifactNotFound ErrorCode = "ARTIFACT_NOT_FOUND"
	CodeJobNotFound      ErrorCode = "JOB_NOT_FOUND"
)

// DomainError represents a domain-specific error
type DomainError struct {
	Code    ErrorCode              `json:"code"`
	Message string                 `json:"message"`
	Cause   error                  `json:"-"`
	Context map[string]interface{} `json:"context,omitempty"`
}

func (e *DomainError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *DomainError) Unwrap() error {
	return e.Cause
}

// WithContext attaches a diagnostic key/value to the error.
func (e *DomainError) WithContext(key string, value interface{}) *DomainError {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value
	return e
}

// MarshalJSON implements the json.Marshaler interface
func (e *DomainError) MarshalJSON() ([]byte, error) {
	return json.Marshal(&struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	}{
		Code:    string(e.Code),
		Message: e.Message,
	})
}

// NewError creates a new DomainError
func NewError(code ErrorCode, message string, cause error) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

func NewNotFoundError(message string) *DomainError {
	return NewError(CodeNotFound, message, nil)
}

func NewInvalidInputError(message string) *DomainError {
	return NewError(CodeInvalidInput, message, nil)
}

func NewInternalError(message string, err error) *DomainError {
	return NewError(CodeInternal, message, err)
}

func NewArtifactNotFoundError(id string) *DomainError {
	return NewError(CodeArtifactNotFound, fmt.Sprintf("Artifact not found with ID: %s", id), nil)
}

func NewJobNotFoundError(id string) *DomainError {
	return NewError(CodeJobNotFound, fmt.Sprintf("Analysis job not found with ID: %s", id), nil)
}

// ConfigurationError is returned when the oracle cannot be called because a
// required setting, usually the API credential, is missing.
type ConfigurationError struct {
	Setting string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("configuration error: %s is not configured", e.Setting)
}

// UpstreamError is returned when the oracle answered with a failure or the
// transport failed. StatusCode is 0 when no HTTP response was received.
type UpstreamError struct {
	StatusCode int
	Body       string
	Err        error
}

func (e *UpstreamError) Error() string {
	switch {
	case e.StatusCode != 0 && e.Body != "":
		return fmt.Sprintf("upstream error (%d): %s", e.StatusCode, e.Body)
	case e.StatusCode != 0:
		return fmt.Sprintf("upstream error (%d)", e.StatusCode)
	case e.Err != nil:
		return fmt.Sprintf("upstream error: %v", e.Err)
	default:
		return "upstream error"
	}
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}

// EmptyResponseError is returned when the oracle succeeded but produced no text.
type EmptyResponseError struct {
	Reason string
}

func (e *EmptyResponseError) Error() string {
	if e.Reason == "" {
		return "oracle returned no completion text"
	}
	return "oracle returned no completion text: " + e.Reason
}

// IsOracleFailure reports whether err is an upstream or empty-response failure.
func IsOracleFailure(err error) bool {
	var up *UpstreamError
	var empty *EmptyResponseError
	return errors.As(err, &up) || errors.As(err, &empty)
}

// AsDomainError converts pipeline errors into DomainErrors for the transport layer.
// Errors that already are DomainErrors are returned unchanged.
func AsDomainError(err error) *DomainError {
	if err == nil {
		return nil
	}
	var de *DomainError
	if errors.As(err, &de) {
		return de
	}
	var cfgErr *ConfigurationError
	if errors.As(err, &cfgErr) {
		return NewError(CodeConfiguration, "Analysis service is not configured", err).
			WithContext("setting", cfgErr.Setting)
	}
	var up *UpstreamError
	if errors.As(err, &up) {
		upErr := NewError(CodeUpstream, "Text generation service failed", err)
		if up.StatusCode != 0 {
			upErr.WithContext("upstream_status", up.StatusCode)
		}
		return upErr
	}
	var empty *EmptyResponseError
	if errors.As(err, &empty) {
		return NewError(CodeEmptyResponse, "Text generation service returned no content", err)
	}
	return NewInternalError("Internal error", err)
}

// ValidationError describes one invalid request field.
type ValidationError struct {
	Field   string      `json:"field"`
	Code    ErrorCode   `json:"code"`
	Message string      `json:"message"`
	Value   interface{} `json:"value,omitempty"`
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationErrors collects field errors for a single request.
type ValidationErrors []ValidationError

func (v ValidationErrors) Error() string {
	msgs := make([]string, 0, len(v))
	for _, e := range v {
		msgs = append(msgs, e.Error())
	}
	return "validation failed: " + strings.Join(msgs, "; ")
}

func NewMissingFieldError(field string) ValidationError {
	return ValidationError{Field: field, Code: CodeMissingField, Message: "field is required"}
}

func NewInvalidFormatError(field string, value interface{}) ValidationError {
	return ValidationError{Field: field, Code: CodeInvalidFormat, Message: "field has an invalid format", Value: value}
}

func NewOutOfRangeError(field string, value interface{}, min, max int) ValidationError {
	return ValidationError{
		Field:   field,
		Code:    CodeOutOfRange,
		Message: fmt.Sprintf("value must be between %d and %d", min, max),
		Value:   value,
	}
}
