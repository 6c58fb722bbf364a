package service

import (
	"context"
	"strings"
	"sync"
	"time"

	"edugenie/internal/domain"
	"edugenie/internal/dto"

	"github.com/stretchr/testify/mock"
)

// --- fakeCompleter ---
// Replies are chosen by the prompt: the first rule whose marker is contained in
// the prompt wins. Calls are recorded in order.
type completerRule struct {
	marker string
	reply  string
	err    error
}

type fakeCompleter struct {
	mu      sync.Mutex
	rules   []completerRule
	prompts []string
}

func (f *fakeCompleter) on(marker, reply string) *fakeCompleter {
	f.rules = append(f.rules, completerRule{marker: marker, reply: reply})
	return f
}

func (f *fakeCompleter) fail(marker string, err error) *fakeCompleter {
	f.rules = append(f.rules, completerRule{marker: marker, err: err})
	return f
}

func (f *fakeCompleter) Complete(ctx context.Context, prompt string) (string, error) {
	f.mu.Lock()
	f.prompts = append(f.prompts, prompt)
	f.mu.Unlock()

	for _, r := range f.rules {
		if strings.Contains(prompt, r.marker) {
			return r.reply, r.err
		}
	}
	return "default reply", nil
}

func (f *fakeCompleter) calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.prompts...)
}

// --- MockCache ---
type MockCache struct {
	mock.Mock
}

func (m *MockCache) Get(ctx context.Context, key string) (string, error) {
	args := m.Called(ctx, key)
	return args.String(0), args.Error(1)
}

func (m *MockCache) Set(ctx context.Context, key string, value string, expiration time.Duration) error {
	args := m.Called(ctx, key, value, expiration)
	return args.Error(0)
}

func (m *MockCache) Delete(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

func (m *MockCache) Ping(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// --- MockArtifactRepository ---
type MockArtifactRepository struct {
	mock.Mock
}

func (m *MockArtifactRepository) SaveArtifact(ctx context.Context, artifact *domain.AnalysisArtifact, documentID string) error {
	args := m.Called(ctx, artifact, documentID)
	return args.Error(0)
}

func (m *MockArtifactRepository) GetArtifactByID(ctx context.Context, id string) (*domain.AnalysisArtifact, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.AnalysisArtifact), args.Error(1)
}

func (m *MockArtifactRepository) Ping(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// --- MockJobQueue ---
type MockJobQueue struct {
	mock.Mock
}

func (m *MockJobQueue) Enqueue(ctx context.Context, job *domain.AnalysisJob) error {
	args := m.Called(ctx, job)
	return args.Error(0)
}

func (m *MockJobQueue) Dequeue(ctx context.Context, count int, block time.Duration) ([]domain.JobDelivery, error) {
	args := m.Called(ctx, count, block)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.JobDelivery), args.Error(1)
}

func (m *MockJobQueue) ReadPending(ctx context.Context, after string, count int) ([]domain.JobDelivery, string, error) {
	args := m.Called(ctx, after, count)
	if args.Get(0) == nil {
		return nil, args.String(1), args.Error(2)
	}
	return args.Get(0).([]domain.JobDelivery), args.String(1), args.Error(2)
}

func (m *MockJobQueue) Ack(ctx context.Context, deliveryID string) error {
	args := m.Called(ctx, deliveryID)
	return args.Error(0)
}

func (m *MockJobQueue) UpdateStatus(ctx context.Context, job *domain.AnalysisJob) error {
	// the job is mutated after the call; record a copy
	snapshot := *job
	args := m.Called(ctx, &snapshot)
	return args.Error(0)
}

func (m *MockJobQueue) GetJob(ctx context.Context, id string) (*domain.AnalysisJob, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.AnalysisJob), args.Error(1)
}

// --- MockAnalysisService ---
type MockAnalysisService struct {
	mock.Mock
}

func (m *MockAnalysisService) Analyze(ctx context.Context, req *dto.AnalyzeRequest) (*dto.AnalysisResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.AnalysisResponse), args.Error(1)
}

func (m *MockAnalysisService) GetArtifact(ctx context.Context, id string) (*dto.AnalysisResponse, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.AnalysisResponse), args.Error(1)
}

// --- MockEmbeddingService ---
type MockEmbeddingService struct {
	mock.Mock
}

func (m *MockEmbeddingService) Generate(ctx context.Context, text string) ([]float32, error) {
	args := m.Called(ctx, text)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]float32), args.Error(1)
}

func (m *MockEmbeddingService) GenerateBatch(ctx context.Context, texts []string) ([][]float32, error) {
	args := m.Called(ctx, texts)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([][]float32), args.Error(1)
}

// --- MockChunkStore ---
type MockChunkStore struct {
	mock.Mock
}

func (m *MockChunkStore) ReplaceChunks(ctx context.Context, documentID string, chunks []domain.DocumentChunk) error {
	args := m.Called(ctx, documentID, chunks)
	return args.Error(0)
}

func (m *MockChunkStore) Search(ctx context.Context, documentID string, query []float32, k int) ([]domain.ScoredChunk, error) {
	args := m.Called(ctx, documentID, query, k)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.ScoredChunk), args.Error(1)
}
