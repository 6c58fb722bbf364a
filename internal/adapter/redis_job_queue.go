package adapter

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"edugenie/internal/cache"
	"edugenie/internal/config"
	"edugenie/internal/domain"
	"edugenie/internal/logger"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// RedisJobQueue implements domain.JobQueue with a Redis stream for delivery and
// one hash per job for its status.
type RedisJobQueue struct {
	client   redis.Cmdable
	stream   string
	group    string
	consumer string
	ttl      time.Duration
}

// NewRedisJobQueue creates a queue. ttl bounds how long job state is kept; zero
// keeps it forever.
func NewRedisJobQueue(client redis.Cmdable, cfg config.WorkerConfig, ttl time.Duration) *RedisJobQueue {
	return &RedisJobQueue{
		client:   client,
		stream:   cfg.Stream,
		group:    cfg.Group,
		consumer: cfg.Consumer,
		ttl:      ttl,
	}
}

// EnsureGroup creates the stream and consumer group if they do not exist yet.
func (q *RedisJobQueue) EnsureGroup(ctx context.Context) error {
	err := q.client.XGroupCreateMkStream(ctx, q.stream, q.group, "0").Err()
	if err != nil && !strings.HasPrefix(err.Error(), "BUSYGROUP") {
		return fmt.Errorf("create consumer group %s: %w", q.group, err)
	}
	return nil
}

func (q *RedisJobQueue) Enqueue(ctx context.Context, job *domain.AnalysisJob) error {
	data, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("marshal job: %w", err)
	}

	if err := q.writeStatus(ctx, job); err != nil {
		return err
	}

	if err := q.client.XAdd(ctx, &redis.XAddArgs{
		Stream: q.stream,
		Values: []interface{}{"job_id", job.ID, "data", string(data)},
	}).Err(); err != nil {
		return fmt.Errorf("publish job %s: %w", job.ID, err)
	}
	return nil
}

func (q *RedisJobQueue) Dequeue(ctx context.Context, count int, block time.Duration) ([]domain.JobDelivery, error) {
	deliveries, _, err := q.read(ctx, ">", count, block)
	return deliveries, err
}

// ReadPending returns jobs already delivered to this consumer but never acked,
// with delivery IDs greater than after. next is the last ID read and is empty
// once nothing is pending past after.
func (q *RedisJobQueue) ReadPending(ctx context.Context, after string, count int) ([]domain.JobDelivery, string, error) {
	// a negative Block leaves BLOCK off; history reads never wait
	return q.read(ctx, after, count, -1)
}

func (q *RedisJobQueue) read(ctx context.Context, id string, count int, block time.Duration) ([]domain.JobDelivery, string, error) {
	streams, err := q.client.XReadGroup(ctx, &redis.XReadGroupArgs{
		Group:    q.group,
		Consumer: q.consumer,
		Streams:  []string{q.stream, id},
		Count:    int64(count),
		Block:    block,
	}).Result()
	if errors.Is(err, redis.Nil) {
		return nil, "", nil
	}
	if err != nil {
		return nil, "", fmt.Errorf("read from stream %s: %w", q.stream, err)
	}

	var (
		deliveries []domain.JobDelivery
		last       string
	)
	for _, stream := range streams {
		for _, msg := range stream.Messages {
			last = msg.ID
			job, err := decodeJob(msg)
			if err != nil {
				// undecodable messages would be redelivered forever
				logger.Get().Warn("Dropping malformed job message",
					zap.String("message_id", msg.ID),
					zap.Error(err))
				if ackErr := q.Ack(ctx, msg.ID); ackErr != nil {
					logger.Get().Error("Failed to ack malformed job message", zap.Error(ackErr))
				}
				continue
			}
			deliveries = append(deliveries, domain.JobDelivery{DeliveryID: msg.ID, Job: job})
		}
	}
	return deliveries, last, nil
}

func (q *RedisJobQueue) Ack(ctx context.Context, deliveryID string) error {
	if err := q.client.XAck(ctx, q.stream, q.group, deliveryID).Err(); err != nil {
		return fmt.Errorf("ack %s: %w", deliveryID, err)
	}
	return nil
}

func (q *RedisJobQueue) UpdateStatus(ctx context.Context, job *domain.AnalysisJob) error {
	return q.writeStatus(ctx, job)
}

func (q *RedisJobQueue) GetJob(ctx context.Context, id string) (*domain.AnalysisJob, error) {
	fields, err := q.client.HGetAll(ctx, cache.JobKey(id)).Result()
	if err != nil {
		return nil, fmt.Errorf("load job %s: %w", id, err)
	}
	if len(fields) == 0 {
		return nil, nil
	}

	job := &domain.AnalysisJob{
		ID:         fields["id"],
		TaskType:   domain.TaskType(fields["type"]),
		DocumentID: fields["document_id"],
		Status:     domain.JobStatus(fields["status"]),
		Error:      fields["error"],
		ArtifactID: fields["artifact_id"],
	}
	job.CreatedAt, _ = time.Parse(time.RFC3339Nano, fields["created_at"])
	job.UpdatedAt, _ = time.Parse(time.RFC3339Nano, fields["updated_at"])
	return job, nil
}

func (q *RedisJobQueue) writeStatus(ctx context.Context, job *domain.AnalysisJob) error {
	key := cache.JobKey(job.ID)
	if err := q.client.HSet(ctx, key,
		"id", job.ID,
		"type", string(job.TaskType),
		"document_id", job.DocumentID,
		"status", string(job.Status),
		"error", job.Error,
		"artifact_id", job.ArtifactID,
		"created_at", job.CreatedAt.Format(time.RFC3339Nano),
		"updated_at", job.UpdatedAt.Format(time.RFC3339Nano),
	).Err(); err != nil {
		return fmt.Errorf("store job %s: %w", job.ID, err)
	}
	if q.ttl > 0 {
		if err := q.client.Expire(ctx, key, q.ttl).Err(); err != nil {
			return fmt.Errorf("expire job %s: %w", job.ID, err)
		}
	}
	return nil
}

func decodeJob(msg redis.XMessage) (*domain.AnalysisJob, error) {
	data, ok := msg.Values["data"].(string)
	if !ok {
		return nil, errors.New("missing job data")
	}
	var job domain.AnalysisJob
	if err := json.Unmarshal([]byte(data), &job); err != nil {
		return nil, fmt.Errorf("unmarshal job: %w", err)
	}
	if job.ID == "" {
		return nil, errors.New("job without id")
	}
	return &job, nil
}

var _ domain.JobQueue = (*RedisJobQueue)(nil)
