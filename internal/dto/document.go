package dto

import "edugenie/internal/domain"

// IngestRequest is the body of POST /api/documents/:id/ingest.
type IngestRequest struct {
	Text string `json:"text"`
}

// IngestResponse reports how many chunks were embedded and stored.
type IngestResponse struct {
	DocumentID    string `json:"document_id"`
	Status        string `json:"status"`
	ChunksCreated int    `json:"chunks_created"`
}

// ChatRequest is the body of POST /api/documents/:id/chat.
type ChatRequest struct {
	Question string            `json:"question"`
	History  []domain.ChatTurn `json:"history,omitempty"`
}

// ChatResponse carries the tutor answer and the chunks it was grounded on.
type ChatResponse struct {
	Answer  string       `json:"answer"`
	Sources []ChatSource `json:"sources,omitempty"`
}

// ChatSource identifies one retrieved chunk.
type ChatSource struct {
	Index int     `json:"index"`
	Score float64 `json:"score"`
}
