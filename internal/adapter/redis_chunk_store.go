package adapter

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"time"

	"edugenie/internal/cache"
	"edugenie/internal/domain"
	"edugenie/internal/logger"
	"edugenie/internal/util"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// RedisChunkStore implements domain.ChunkStore with one hash per document,
// chunk index to JSON-encoded chunk. Search scores every chunk of the document
// in process, which suits the few hundred chunks of a study document.
type RedisChunkStore struct {
	client redis.Cmdable
	ttl    time.Duration
}

// NewRedisChunkStore creates a store. ttl bounds how long a document's chunks
// are kept after ingest; zero keeps them forever.
func NewRedisChunkStore(client redis.Cmdable, ttl time.Duration) *RedisChunkStore {
	return &RedisChunkStore{client: client, ttl: ttl}
}

func (s *RedisChunkStore) ReplaceChunks(ctx context.Context, documentID string, chunks []domain.DocumentChunk) error {
	key := cache.ChunksKey(documentID)

	values := make([]interface{}, 0, 2*len(chunks))
	for _, c := range chunks {
		data, err := json.Marshal(c)
		if err != nil {
			return fmt.Errorf("marshal chunk %d of %s: %w", c.Index, documentID, err)
		}
		values = append(values, strconv.Itoa(c.Index), string(data))
	}

	if err := s.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("clear chunks of %s: %w", documentID, err)
	}
	if len(values) == 0 {
		return nil
	}
	if err := s.client.HSet(ctx, key, values...).Err(); err != nil {
		return fmt.Errorf("store chunks of %s: %w", documentID, err)
	}
	if s.ttl > 0 {
		if err := s.client.Expire(ctx, key, s.ttl).Err(); err != nil {
			return fmt.Errorf("expire chunks of %s: %w", documentID, err)
		}
	}
	return nil
}

func (s *RedisChunkStore) Search(ctx context.Context, documentID string, query []float32, k int) ([]domain.ScoredChunk, error) {
	fields, err := s.client.HGetAll(ctx, cache.ChunksKey(documentID)).Result()
	if err != nil {
		return nil, fmt.Errorf("load chunks of %s: %w", documentID, err)
	}

	hits := make([]domain.ScoredChunk, 0, len(fields))
	for field, data := range fields {
		var chunk domain.DocumentChunk
		if err := json.Unmarshal([]byte(data), &chunk); err != nil {
			logger.Get().Warn("Skipping undecodable chunk",
				zap.String("document_id", documentID),
				zap.String("field", field),
				zap.Error(err))
			continue
		}
		score, err := util.CosineSimilarity(query, chunk.Embedding)
		if err != nil {
			// chunks embedded by a different model
			logger.Get().Warn("Skipping chunk with incompatible embedding",
				zap.String("document_id", documentID),
				zap.Int("index", chunk.Index),
				zap.Error(err))
			continue
		}
		hits = append(hits, domain.ScoredChunk{DocumentChunk: chunk, Score: score})
	}

	sort.Slice(hits, func(i, j int) bool {
		if hits[i].Score != hits[j].Score {
			return hits[i].Score > hits[j].Score
		}
		return hits[i].Index < hits[j].Index
	})
	if k > 0 && len(hits) > k {
		hits = hits[:k]
	}
	return hits, nil
}

var _ domain.ChunkStore = (*RedisChunkStore)(nil)
