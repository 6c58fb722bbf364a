package domain

import (
	"context"
	"time"
)

// Completer is the oracle port: one prompt in, one completion out, single attempt.
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// CompleterFunc adapts a function to the Completer interface.
type CompleterFunc func(ctx context.Context, prompt string) (string, error)

func (f CompleterFunc) Complete(ctx context.Context, prompt string) (string, error) {
	return f(ctx, prompt)
}

// ArtifactRepository is the persistence collaborator for finished artifacts.
type ArtifactRepository interface {
	SaveArtifact(ctx context.Context, artifact *AnalysisArtifact, documentID string) error
	// GetArtifactByID returns nil, nil when the artifact does not exist.
	GetArtifactByID(ctx context.Context, id string) (*AnalysisArtifact, error)
	Ping(ctx context.Context) error
}

// JobStatus is the lifecycle state of an asynchronous analysis job.
type JobStatus string

const (
	JobPending JobStatus = "pending"
	JobRunning JobStatus = "running"
	JobDone    JobStatus = "done"
	JobFailed  JobStatus = "failed"
)

// AnalysisJob is an analysis request queued for background processing.
type AnalysisJob struct {
	ID         string    `json:"id"`
	TaskType   TaskType  `json:"type"`
	Content    string    `json:"content,omitempty"`
	DocumentID string    `json:"document_id,omitempty"`
	SizeHint   int       `json:"size_hint,omitempty"`
	Status     JobStatus `json:"status"`
	Error      string    `json:"error,omitempty"`
	ArtifactID string    `json:"artifact_id,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// JobQueue is the port for the background job transport.
type JobQueue interface {
	Enqueue(ctx context.Context, job *AnalysisJob) error
	// Dequeue blocks up to block for at most count jobs. The returned
	// delivery IDs must be passed to Ack once a job is finished.
	Dequeue(ctx context.Context, count int, block time.Duration) ([]JobDelivery, error)
	// ReadPending pages through jobs delivered to this consumer before but
	// never acked, starting after the given delivery ID ("0" for all). next is
	// "" when there is nothing more.
	ReadPending(ctx context.Context, after string, count int) (deliveries []JobDelivery, next string, err error)
	Ack(ctx context.Context, deliveryID string) error
	UpdateStatus(ctx context.Context, job *AnalysisJob) error
	// GetJob returns nil, nil for unknown jobs.
	GetJob(ctx context.Context, id string) (*AnalysisJob, error)
}

// JobDelivery pairs a job with its transport-level delivery ID.
type JobDelivery struct {
	DeliveryID string
	Job        *AnalysisJob
}
