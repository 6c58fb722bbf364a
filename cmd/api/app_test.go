package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http/httptest"
	"sort"
	"strings"
	"sync"
	"testing"

	"edugenie/internal/config"
	"edugenie/internal/domain"
	"edugenie/internal/dto"
	"edugenie/internal/handler"
	"edugenie/internal/service"
	"edugenie/internal/util"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const generatedQuiz = `Question 1: What do mitochondria produce?
a) DNA
b) ATP
c) Lipids
d) Starch
**Correct Answer: b**
Explanation: ATP is the energy currency.`

type recordingCompleter struct {
	mu      sync.Mutex
	prompts []string
	reply   func(prompt string) (string, error)
}

func (r *recordingCompleter) Complete(_ context.Context, prompt string) (string, error) {
	r.mu.Lock()
	r.prompts = append(r.prompts, prompt)
	r.mu.Unlock()
	return r.reply(prompt)
}

func testServer(t *testing.T, completer domain.Completer, analysisCfg config.AnalysisConfig) *fiber.App {
	t.Helper()
	orchestrator := service.NewOrchestrator(completer, analysisCfg)
	analysis := service.NewAnalysisService(orchestrator, nil, nil, 0, analysisCfg.MinLegacyQuizBlockLen)
	return newApp(config.ServerConfig{BodyLimit: 4 * 1024 * 1024}, analysis, nil, nil, map[string]handler.Pinger{"redis": nil, "database": nil})
}

func analyze(t *testing.T, app *fiber.App, req dto.AnalyzeRequest) (int, []byte) {
	t.Helper()
	body, err := json.Marshal(req)
	require.NoError(t, err)
	httpReq := httptest.NewRequest("POST", "/api/analyze", bytes.NewReader(body))
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(httpReq, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	var buf bytes.Buffer
	_, err = buf.ReadFrom(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, buf.Bytes()
}

func TestAPI_AnalyzeQuizSinglePass(t *testing.T) {
	completer := &recordingCompleter{reply: func(string) (string, error) { return generatedQuiz, nil }}
	app := testServer(t, completer, config.DefaultAnalysisConfig())

	status, raw := analyze(t, app, dto.AnalyzeRequest{Content: "Mitochondria make ATP for the cell.", Type: "quiz"})

	require.Equal(t, fiber.StatusOK, status, string(raw))
	var resp dto.AnalysisResponse
	require.NoError(t, json.Unmarshal(raw, &resp))
	assert.Equal(t, "quiz", resp.Type)
	assert.Equal(t, 1, resp.Segments)
	assert.Equal(t, 6, resp.WordCount)
	require.Len(t, resp.Questions, 1)
	assert.Equal(t, 1, resp.Questions[0].CorrectOptionIndex)
	assert.Len(t, completer.prompts, 1)
}

func TestAPI_AnalyzeSegmentedDocumentFallsBackWhenMergeFails(t *testing.T) {
	cfg := config.DefaultAnalysisConfig()
	cfg.SinglePassThreshold = 40
	cfg.DefaultSegmentLimit = 30

	completer := &recordingCompleter{reply: func(p string) (string, error) {
		if strings.Contains(p, "=== Part") {
			return "", &domain.UpstreamError{StatusCode: 500, Body: "merge failed"}
		}
		return "partial", nil
	}}
	app := testServer(t, completer, cfg)

	content := strings.Repeat("word ", 20)
	status, raw := analyze(t, app, dto.AnalyzeRequest{Content: content, Type: "summary"})

	require.Equal(t, fiber.StatusOK, status, string(raw))
	var resp dto.AnalysisResponse
	require.NoError(t, json.Unmarshal(raw, &resp))
	assert.Greater(t, resp.Segments, 1)
	assert.Contains(t, resp.Result, "partial\n\n---\n\npartial")
	assert.Contains(t, resp.Warnings, service.AggregationFallbackWarning)
	assert.Len(t, completer.prompts, resp.Segments+1)
}

func TestAPI_AnalyzeUpstreamFailure(t *testing.T) {
	completer := &recordingCompleter{reply: func(string) (string, error) {
		return "", &domain.UpstreamError{StatusCode: 401, Body: "invalid api key"}
	}}
	app := testServer(t, completer, config.DefaultAnalysisConfig())

	status, raw := analyze(t, app, dto.AnalyzeRequest{Content: "text", Type: "keywords"})

	assert.Equal(t, fiber.StatusBadGateway, status)
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &body))
	assert.Equal(t, string(domain.CodeUpstream), body["code"])
}

func TestAPI_AnalyzeRejectsUnknownTask(t *testing.T) {
	completer := &recordingCompleter{reply: func(string) (string, error) { return "", errors.New("not called") }}
	app := testServer(t, completer, config.DefaultAnalysisConfig())

	status, _ := analyze(t, app, dto.AnalyzeRequest{Content: "text", Type: "essay"})

	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Empty(t, completer.prompts)
}

func TestAPI_JobsDisabledWithoutRedis(t *testing.T) {
	app := testServer(t, &recordingCompleter{}, config.DefaultAnalysisConfig())

	resp, err := app.Test(httptest.NewRequest("GET", "/api/analyze/jobs/01ARZ3NDEKTSV4RRFFQ69G5FAV", nil))

	require.NoError(t, err)
	assert.Equal(t, fiber.StatusServiceUnavailable, resp.StatusCode)
}

func TestAPI_Health(t *testing.T) {
	app := testServer(t, &recordingCompleter{}, config.DefaultAnalysisConfig())

	resp, err := app.Test(httptest.NewRequest("GET", "/health", nil))

	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}

// keywordEmbedder places texts by which topic words they mention.
type keywordEmbedder struct{}

func (keywordEmbedder) Generate(_ context.Context, text string) ([]float32, error) {
	text = strings.ToLower(text)
	v := []float32{0.05, 0.05}
	if strings.Contains(text, "osmosis") {
		v[0] = 1
	}
	if strings.Contains(text, "mitochondria") {
		v[1] = 1
	}
	return v, nil
}

func (e keywordEmbedder) GenerateBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, t := range texts {
		out[i], _ = e.Generate(ctx, t)
	}
	return out, nil
}

type memoryChunkStore struct {
	mu     sync.Mutex
	chunks map[string][]domain.DocumentChunk
}

func (m *memoryChunkStore) ReplaceChunks(_ context.Context, documentID string, chunks []domain.DocumentChunk) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.chunks[documentID] = chunks
	return nil
}

func (m *memoryChunkStore) Search(_ context.Context, documentID string, query []float32, k int) ([]domain.ScoredChunk, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var hits []domain.ScoredChunk
	for _, c := range m.chunks[documentID] {
		score, err := util.CosineSimilarity(query, c.Embedding)
		if err != nil {
			return nil, err
		}
		hits = append(hits, domain.ScoredChunk{DocumentChunk: c, Score: score})
	}
	sort.Slice(hits, func(i, j int) bool { return hits[i].Score > hits[j].Score })
	if len(hits) > k {
		hits = hits[:k]
	}
	return hits, nil
}

func postJSON(t *testing.T, app *fiber.App, path string, v interface{}) (int, []byte) {
	t.Helper()
	body, err := json.Marshal(v)
	require.NoError(t, err)
	req := httptest.NewRequest("POST", path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	var buf bytes.Buffer
	_, err = buf.ReadFrom(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, buf.Bytes()
}

func TestAPI_DocumentIngestAndChat(t *testing.T) {
	completer := &recordingCompleter{reply: func(string) (string, error) { return "Water crosses the membrane.", nil }}
	store := &memoryChunkStore{chunks: map[string][]domain.DocumentChunk{}}
	documents := service.NewDocumentService(keywordEmbedder{}, store, completer,
		config.DocumentsConfig{ChunkSize: 70, ChunkOverlap: 0, TopK: 1})
	orchestrator := service.NewOrchestrator(completer, config.DefaultAnalysisConfig())
	analysis := service.NewAnalysisService(orchestrator, nil, nil, 0, 0)
	app := newApp(config.ServerConfig{}, analysis, nil, documents, map[string]handler.Pinger{})

	text := "Mitochondria release the energy stored in glucose molecules as ATP.\n\n" +
		"Osmosis is the movement of water across a semi-permeable membrane."
	status, raw := postJSON(t, app, "/api/documents/bio-101/ingest", dto.IngestRequest{Text: text})
	require.Equal(t, fiber.StatusOK, status, string(raw))
	var ingested dto.IngestResponse
	require.NoError(t, json.Unmarshal(raw, &ingested))
	assert.Equal(t, "success", ingested.Status)
	assert.Equal(t, 2, ingested.ChunksCreated)

	status, raw = postJSON(t, app, "/api/documents/bio-101/chat", dto.ChatRequest{
		Question: "Explain osmosis",
		History:  []domain.ChatTurn{{Role: domain.ChatRoleUser, Content: "hello"}, {Role: domain.ChatRoleAI, Content: "hi"}},
	})
	require.Equal(t, fiber.StatusOK, status, string(raw))
	var answer dto.ChatResponse
	require.NoError(t, json.Unmarshal(raw, &answer))
	assert.Equal(t, "Water crosses the membrane.", answer.Answer)
	require.Len(t, answer.Sources, 1)
	assert.Equal(t, 2, answer.Sources[0].Index)

	require.Len(t, completer.prompts, 1)
	assert.Contains(t, completer.prompts[0], "Osmosis is the movement of water")
	assert.NotContains(t, completer.prompts[0], "Mitochondria release the energy")

	status, raw = postJSON(t, app, "/api/documents/other-doc/chat", dto.ChatRequest{Question: "Explain osmosis"})
	require.Equal(t, fiber.StatusOK, status, string(raw))
	require.NoError(t, json.Unmarshal(raw, &answer))
	assert.Equal(t, service.NoDocumentContentAnswer, answer.Answer)
	assert.Len(t, completer.prompts, 1)
}

func TestAPI_DocumentChatDisabledWithoutRedis(t *testing.T) {
	app := testServer(t, &recordingCompleter{}, config.DefaultAnalysisConfig())

	status, _ := postJSON(t, app, "/api/documents/bio-101/chat", dto.ChatRequest{Question: "q"})

	assert.Equal(t, fiber.StatusServiceUnavailable, status)
}
