package dto

import (
	"time"

	"edugenie/internal/domain"
)

// AnalyzeRequest is the body of POST /api/analyze and POST /api/analyze/jobs.
type AnalyzeRequest struct {
	Content    string `json:"content"`
	Type       string `json:"type"`
	DocumentID string `json:"document_id,omitempty"`
	// SizeHint overrides the per-segment character limit for long documents.
	SizeHint int `json:"size_hint,omitempty"`
}

// AnalysisResponse is the caller-facing result of one analysis run.
type AnalysisResponse struct {
	ID         string    `json:"id"`
	Type       string    `json:"type"`
	Result     string    `json:"result"`
	WordCount  int       `json:"word_count"`
	TextLength int       `json:"text_length"`
	Timestamp  time.Time `json:"timestamp"`
	Segments   int       `json:"segments"`
	Warnings   []string  `json:"warnings,omitempty"`
	Cached     bool      `json:"cached"`

	// Set for quiz results only.
	Questions          []domain.QuizQuestion `json:"questions,omitempty"`
	AnswerUndetermined int                   `json:"answer_undetermined,omitempty"`
	// Set for flashcard results only.
	FlashCards []domain.FlashCard `json:"flashcards,omitempty"`

	Diagnostics  []domain.Rejection `json:"diagnostics,omitempty"`
	UsedFallback bool               `json:"used_fallback,omitempty"`
}

// EnqueueJobResponse is returned when an analysis job is accepted.
type EnqueueJobResponse struct {
	JobID  string `json:"job_id"`
	Status string `json:"status"`
}

// JobStatusResponse reports the state of an asynchronous analysis job.
type JobStatusResponse struct {
	JobID      string            `json:"job_id"`
	Type       string            `json:"type"`
	Status     string            `json:"status"`
	Error      string            `json:"error,omitempty"`
	ArtifactID string            `json:"artifact_id,omitempty"`
	CreatedAt  time.Time         `json:"created_at"`
	UpdatedAt  time.Time         `json:"updated_at"`
	Result     *AnalysisResponse `json:"result,omitempty"`
}

// HealthResponse is returned by GET /health.
type HealthResponse struct {
	Status     string            `json:"status"`
	Components map[string]string `json:"components"`
}
