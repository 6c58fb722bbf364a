package domain

import "context"

// EmbeddingService generates text embeddings.
type EmbeddingService interface {
	Generate(ctx context.Context, text string) ([]float32, error)
	// GenerateBatch returns one embedding per text, in input order.
	GenerateBatch(ctx context.Context, texts []string) ([][]float32, error)
}

// DocumentChunk is one embedded piece of an ingested document.
type DocumentChunk struct {
	DocumentID string    `json:"document_id"`
	Index      int       `json:"index"` // 1-based
	Text       string    `json:"text"`
	Embedding  []float32 `json:"embedding"`
}

// ScoredChunk is a search hit with its cosine similarity to the query.
type ScoredChunk struct {
	DocumentChunk
	Score float64
}

// ChunkStore keeps the embedded chunks of ingested documents.
type ChunkStore interface {
	// ReplaceChunks stores the chunks of one document, dropping any earlier set.
	ReplaceChunks(ctx context.Context, documentID string, chunks []DocumentChunk) error
	// Search returns up to k chunks of the document, most similar first.
	// An unknown document yields no hits and no error.
	Search(ctx context.Context, documentID string, query []float32, k int) ([]ScoredChunk, error)
}

// ChatRole identifies the author of a turn in a document conversation.
type ChatRole string

const (
	ChatRoleUser ChatRole = "user"
	ChatRoleAI   ChatRole = "ai"
)

// ChatTurn is one earlier message of a document conversation.
type ChatTurn struct {
	Role    ChatRole `json:"role"`
	Content string   `json:"content"`
}
