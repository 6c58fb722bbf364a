package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

const (
	GlobalKeyPrefix = "edugenie"

	ServiceAnalysis = "analysis"
	ObjectResult    = "result"
	ObjectArtifact  = "artifact"
	ObjectJob       = "job"

	ServiceDocuments = "documents"
	ServiceEmbedding = "embedding"
	ObjectChunks     = "chunks"
	ObjectQuery      = "query"
)

// GenerateCacheKey generates a cache key for a given service, object type, and identifier.
// If paramsKey are provided, they are joined by "_" and appended to the cache key.
func GenerateCacheKey(serviceName, objectType, identifier string, paramsKey ...string) string {
	baseKey := strings.Join([]string{GlobalKeyPrefix, serviceName, objectType, identifier}, ":")
	if len(paramsKey) > 0 {
		return strings.Join([]string{baseKey, strings.Join(paramsKey, "_")}, ":")
	}
	return baseKey
}

// ContentDigest returns the hex sha256 of the task type and content, used to
// look up a previous result for identical input.
func ContentDigest(taskType, content string) string {
	h := sha256.New()
	h.Write([]byte(taskType))
	h.Write([]byte{0})
	h.Write([]byte(content))
	return hex.EncodeToString(h.Sum(nil))
}

// ResultKey is the key of a cached result for identical input.
func ResultKey(taskType, content string) string {
	return GenerateCacheKey(ServiceAnalysis, ObjectResult, ContentDigest(taskType, content))
}

// ArtifactKey is the key of a cached result by artifact ID.
func ArtifactKey(id string) string {
	return GenerateCacheKey(ServiceAnalysis, ObjectArtifact, id)
}

// JobKey is the key of the hash holding an asynchronous job's state.
func JobKey(id string) string {
	return GenerateCacheKey(ServiceAnalysis, ObjectJob, id)
}

// ChunksKey is the key of the hash holding a document's embedded chunks.
func ChunksKey(documentID string) string {
	return GenerateCacheKey(ServiceDocuments, ObjectChunks, documentID)
}

// QueryEmbeddingKey is the key of a cached query embedding for one model.
func QueryEmbeddingKey(model, text string) string {
	sum := sha256.Sum256([]byte(text))
	return GenerateCacheKey(ServiceEmbedding, ObjectQuery, model, hex.EncodeToString(sum[:]))
}
