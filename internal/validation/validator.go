package validation

import (
	"fmt"
	"regexp"
	"strings"

	"edugenie/internal/domain"
	"edugenie/internal/dto"
)

const (
	// MaxContentChars bounds a single request body's document text.
	MaxContentChars = 2_000_000

	MinSizeHint = 500
	MaxSizeHint = 100_000

	maxDocumentIDLen = 64

	MaxQuestionChars = 4000
	MaxHistoryTurns  = 50
)

var (
	validULID       = regexp.MustCompile(`^[0-9A-HJKMNP-TV-Z]{26}$`)
	validDocumentID = regexp.MustCompile(`^[a-zA-Z0-9._:-]+$`)
)

// Validator provides request validation functionality
type Validator struct{}

// NewValidator creates a new validator instance
func NewValidator() *Validator {
	return &Validator{}
}

// ValidateAnalyzeRequest validates an analysis request
func (v *Validator) ValidateAnalyzeRequest(req *dto.AnalyzeRequest) domain.ValidationErrors {
	var errors domain.ValidationErrors
	if req == nil {
		return domain.ValidationErrors{domain.NewMissingFieldError("content")}
	}

	if strings.TrimSpace(req.Content) == "" {
		errors = append(errors, domain.NewMissingFieldError("content"))
	} else if n := len([]rune(req.Content)); n > MaxContentChars {
		errors = append(errors, domain.NewOutOfRangeError("content", n, 1, MaxContentChars))
	}

	if strings.TrimSpace(req.Type) == "" {
		errors = append(errors, domain.NewMissingFieldError("type"))
	} else if _, err := domain.ParseTaskType(req.Type); err != nil {
		errors = append(errors, domain.NewInvalidFormatError("type", req.Type))
	}

	if req.SizeHint != 0 && (req.SizeHint < MinSizeHint || req.SizeHint > MaxSizeHint) {
		errors = append(errors, domain.NewOutOfRangeError("size_hint", req.SizeHint, MinSizeHint, MaxSizeHint))
	}

	if req.DocumentID != "" && !isDocumentID(req.DocumentID) {
		errors = append(errors, domain.NewInvalidFormatError("document_id", req.DocumentID))
	}

	return errors
}

// ValidateID validates a ULID path parameter
func (v *Validator) ValidateID(field, id string) domain.ValidationErrors {
	if strings.TrimSpace(id) == "" {
		return domain.ValidationErrors{domain.NewMissingFieldError(field)}
	}
	if !validULID.MatchString(id) {
		return domain.ValidationErrors{domain.NewInvalidFormatError(field, id)}
	}
	return nil
}

// ValidateDocumentID validates a caller-chosen document identifier
func (v *Validator) ValidateDocumentID(field, id string) domain.ValidationErrors {
	if strings.TrimSpace(id) == "" {
		return domain.ValidationErrors{domain.NewMissingFieldError(field)}
	}
	if !isDocumentID(id) {
		return domain.ValidationErrors{domain.NewInvalidFormatError(field, id)}
	}
	return nil
}

// ValidateIngestRequest validates the text of a document to ingest
func (v *Validator) ValidateIngestRequest(req *dto.IngestRequest) domain.ValidationErrors {
	if req == nil || strings.TrimSpace(req.Text) == "" {
		return domain.ValidationErrors{domain.NewMissingFieldError("text")}
	}
	if n := len([]rune(req.Text)); n > MaxContentChars {
		return domain.ValidationErrors{domain.NewOutOfRangeError("text", n, 1, MaxContentChars)}
	}
	return nil
}

// ValidateChatRequest validates a document question and its history
func (v *Validator) ValidateChatRequest(req *dto.ChatRequest) domain.ValidationErrors {
	var errors domain.ValidationErrors
	if req == nil {
		return domain.ValidationErrors{domain.NewMissingFieldError("question")}
	}

	if strings.TrimSpace(req.Question) == "" {
		errors = append(errors, domain.NewMissingFieldError("question"))
	} else if n := len([]rune(req.Question)); n > MaxQuestionChars {
		errors = append(errors, domain.NewOutOfRangeError("question", n, 1, MaxQuestionChars))
	}

	if len(req.History) > MaxHistoryTurns {
		errors = append(errors, domain.NewOutOfRangeError("history", len(req.History), 0, MaxHistoryTurns))
	}
	for i, turn := range req.History {
		if turn.Role != domain.ChatRoleUser && turn.Role != domain.ChatRoleAI {
			errors = append(errors, domain.NewInvalidFormatError(fmt.Sprintf("history[%d].role", i), string(turn.Role)))
		}
	}

	return errors
}

func isDocumentID(id string) bool {
	return len(id) <= maxDocumentIDLen && validDocumentID.MatchString(id)
}
