package adapter

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"edugenie/internal/domain"

	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const chunksKey = "edugenie:documents:chunks:bio-101"

func chunkJSON(t *testing.T, c domain.DocumentChunk) string {
	t.Helper()
	data, err := json.Marshal(c)
	require.NoError(t, err)
	return string(data)
}

func TestRedisChunkStore_ReplaceChunks(t *testing.T) {
	ctx := context.Background()
	chunks := []domain.DocumentChunk{
		{DocumentID: "bio-101", Index: 1, Text: "Cells divide by mitosis.", Embedding: []float32{1, 0}},
		{DocumentID: "bio-101", Index: 2, Text: "Gametes come from meiosis.", Embedding: []float32{0, 1}},
	}

	t.Run("Success", func(t *testing.T) {
		db, mock := redismock.NewClientMock()
		store := NewRedisChunkStore(db, time.Hour)

		mock.ExpectDel(chunksKey).SetVal(1)
		mock.ExpectHSet(chunksKey, "1", chunkJSON(t, chunks[0]), "2", chunkJSON(t, chunks[1])).SetVal(2)
		mock.ExpectExpire(chunksKey, time.Hour).SetVal(true)

		assert.NoError(t, store.ReplaceChunks(ctx, "bio-101", chunks))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("NoChunksOnlyClears", func(t *testing.T) {
		db, mock := redismock.NewClientMock()
		store := NewRedisChunkStore(db, 0)

		mock.ExpectDel(chunksKey).SetVal(0)

		assert.NoError(t, store.ReplaceChunks(ctx, "bio-101", nil))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("WriteFails", func(t *testing.T) {
		db, mock := redismock.NewClientMock()
		store := NewRedisChunkStore(db, 0)

		mock.ExpectDel(chunksKey).SetVal(1)
		mock.ExpectHSet(chunksKey, "1", chunkJSON(t, chunks[0]), "2", chunkJSON(t, chunks[1])).
			SetErr(errors.New("OOM command not allowed"))

		err := store.ReplaceChunks(ctx, "bio-101", chunks)
		assert.ErrorContains(t, err, "OOM")
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestRedisChunkStore_Search(t *testing.T) {
	ctx := context.Background()
	orthogonal := domain.DocumentChunk{DocumentID: "bio-101", Index: 1, Text: "unrelated", Embedding: []float32{0, 1}}
	exact := domain.DocumentChunk{DocumentID: "bio-101", Index: 2, Text: "best match", Embedding: []float32{2, 0}}
	partial := domain.DocumentChunk{DocumentID: "bio-101", Index: 3, Text: "partial match", Embedding: []float32{1, 1}}
	otherModel := domain.DocumentChunk{DocumentID: "bio-101", Index: 4, Text: "other model", Embedding: []float32{1, 0, 0}}

	t.Run("RanksBySimilarity", func(t *testing.T) {
		db, mock := redismock.NewClientMock()
		store := NewRedisChunkStore(db, 0)

		mock.ExpectHGetAll(chunksKey).SetVal(map[string]string{
			"1": chunkJSON(t, orthogonal),
			"2": chunkJSON(t, exact),
			"3": chunkJSON(t, partial),
			"4": chunkJSON(t, otherModel),
			"5": "{broken",
		})

		hits, err := store.Search(ctx, "bio-101", []float32{1, 0}, 2)

		require.NoError(t, err)
		require.Len(t, hits, 2)
		assert.Equal(t, 2, hits[0].Index)
		assert.InDelta(t, 1.0, hits[0].Score, 1e-9)
		assert.Equal(t, 3, hits[1].Index)
		assert.InDelta(t, 0.7071, hits[1].Score, 1e-4)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("TiesKeepDocumentOrder", func(t *testing.T) {
		db, mock := redismock.NewClientMock()
		store := NewRedisChunkStore(db, 0)
		twin := exact
		twin.Index = 7

		mock.ExpectHGetAll(chunksKey).SetVal(map[string]string{
			"7": chunkJSON(t, twin),
			"2": chunkJSON(t, exact),
		})

		hits, err := store.Search(ctx, "bio-101", []float32{1, 0}, 5)

		require.NoError(t, err)
		require.Len(t, hits, 2)
		assert.Equal(t, 2, hits[0].Index)
		assert.Equal(t, 7, hits[1].Index)
	})

	t.Run("UnknownDocument", func(t *testing.T) {
		db, mock := redismock.NewClientMock()
		store := NewRedisChunkStore(db, 0)

		mock.ExpectHGetAll(chunksKey).SetVal(map[string]string{})

		hits, err := store.Search(ctx, "bio-101", []float32{1, 0}, 5)

		require.NoError(t, err)
		assert.Empty(t, hits)
	})

	t.Run("ReadFails", func(t *testing.T) {
		db, mock := redismock.NewClientMock()
		store := NewRedisChunkStore(db, 0)

		mock.ExpectHGetAll(chunksKey).SetErr(errors.New("LOADING"))

		_, err := store.Search(ctx, "bio-101", []float32{1, 0}, 5)
		assert.ErrorContains(t, err, "LOADING")
	})
}
