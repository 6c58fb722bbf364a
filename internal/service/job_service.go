package service

import (
	"context"
	"time"

	"edugenie/internal/config"
	"edugenie/internal/domain"
	"edugenie/internal/dto"
	"edugenie/internal/logger"
	"edugenie/internal/util"
	"edugenie/internal/validation"

	"go.uber.org/zap"
)

const dequeueRetryDelay = time.Second

// JobService runs analyses in the background through a job queue.
type JobService interface {
	Submit(ctx context.Context, req *dto.AnalyzeRequest) (*dto.EnqueueJobResponse, error)
	GetJob(ctx context.Context, id string) (*dto.JobStatusResponse, error)
	// RunWorker processes jobs until ctx is cancelled.
	RunWorker(ctx context.Context) error
}

type jobService struct {
	queue     domain.JobQueue
	analysis  AnalysisService
	cfg       config.WorkerConfig
	validator *validation.Validator
	now       func() time.Time
}

// NewJobService creates a new instance of jobService
func NewJobService(queue domain.JobQueue, analysis AnalysisService, cfg config.WorkerConfig) JobService {
	if cfg.BatchSize < 1 {
		cfg.BatchSize = 1
	}
	return &jobService{
		queue:     queue,
		analysis:  analysis,
		cfg:       cfg,
		validator: validation.NewValidator(),
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// Submit implements JobService
func (s *jobService) Submit(ctx context.Context, req *dto.AnalyzeRequest) (*dto.EnqueueJobResponse, error) {
	if errs := s.validator.ValidateAnalyzeRequest(req); len(errs) > 0 {
		return nil, errs
	}
	task, _ := domain.ParseTaskType(req.Type)

	now := s.now()
	job := &domain.AnalysisJob{
		ID:         util.NewULID(),
		TaskType:   task,
		Content:    req.Content,
		DocumentID: req.DocumentID,
		SizeHint:   req.SizeHint,
		Status:     domain.JobPending,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := s.queue.Enqueue(ctx, job); err != nil {
		return nil, domain.NewInternalError("Failed to enqueue analysis job", err)
	}

	logger.Get().Info("JobService: job enqueued",
		zap.String("job_id", job.ID),
		zap.String("task_type", task.String()))
	return &dto.EnqueueJobResponse{JobID: job.ID, Status: string(job.Status)}, nil
}

// GetJob implements JobService
func (s *jobService) GetJob(ctx context.Context, id string) (*dto.JobStatusResponse, error) {
	if errs := s.validator.ValidateID("id", id); len(errs) > 0 {
		return nil, errs
	}

	job, err := s.queue.GetJob(ctx, id)
	if err != nil {
		return nil, domain.NewInternalError("Failed to load analysis job", err)
	}
	if job == nil {
		return nil, domain.NewJobNotFoundError(id)
	}

	resp := &dto.JobStatusResponse{
		JobID:      job.ID,
		Type:       job.TaskType.String(),
		Status:     string(job.Status),
		Error:      job.Error,
		ArtifactID: job.ArtifactID,
		CreatedAt:  job.CreatedAt,
		UpdatedAt:  job.UpdatedAt,
	}
	if job.Status == domain.JobDone && job.ArtifactID != "" {
		result, err := s.analysis.GetArtifact(ctx, job.ArtifactID)
		if err != nil {
			logger.Get().Warn("JobService: result of finished job is unavailable",
				zap.String("job_id", job.ID),
				zap.String("artifact_id", job.ArtifactID),
				zap.Error(err))
		} else {
			resp.Result = result
		}
	}
	return resp, nil
}

// RunWorker implements JobService
func (s *jobService) RunWorker(ctx context.Context) error {
	l := logger.Get().With(zap.String("consumer", s.cfg.Consumer))
	l.Info("JobService: worker started", zap.String("stream", s.cfg.Stream))
	s.resumePending(ctx, l)

	for {
		if ctx.Err() != nil {
			l.Info("JobService: worker stopped")
			return nil
		}

		deliveries, err := s.queue.Dequeue(ctx, s.cfg.BatchSize, s.cfg.Block)
		if err != nil {
			if ctx.Err() != nil {
				continue
			}
			l.Error("JobService: failed to read jobs", zap.Error(err))
			select {
			case <-ctx.Done():
			case <-time.After(dequeueRetryDelay):
			}
			continue
		}

		for _, d := range deliveries {
			s.process(ctx, l, d)
		}
	}
}

// resumePending reruns jobs this consumer received but never acked, e.g. ones
// interrupted by the previous shutdown. New deliveries (">") never include them.
func (s *jobService) resumePending(ctx context.Context, l *zap.Logger) {
	after := "0"
	for ctx.Err() == nil {
		deliveries, next, err := s.queue.ReadPending(ctx, after, s.cfg.BatchSize)
		if err != nil {
			l.Error("JobService: failed to read pending jobs", zap.Error(err))
			return
		}
		if next == "" {
			return
		}
		if len(deliveries) > 0 {
			l.Info("JobService: resuming unacknowledged jobs", zap.Int("count", len(deliveries)))
		}
		for _, d := range deliveries {
			s.process(ctx, l, d)
		}
		after = next
	}
}

func (s *jobService) process(ctx context.Context, l *zap.Logger, d domain.JobDelivery) {
	job := d.Job
	l = l.With(zap.String("job_id", job.ID), zap.String("task_type", job.TaskType.String()))

	job.Status = domain.JobRunning
	job.UpdatedAt = s.now()
	if err := s.queue.UpdateStatus(ctx, job); err != nil {
		l.Warn("JobService: failed to mark job running", zap.Error(err))
	}

	resp, err := s.analysis.Analyze(ctx, &dto.AnalyzeRequest{
		Content:    job.Content,
		Type:       job.TaskType.String(),
		DocumentID: job.DocumentID,
		SizeHint:   job.SizeHint,
	})
	if err != nil && ctx.Err() != nil {
		// left unacknowledged; resumePending picks it up on the next start
		l.Info("JobService: job interrupted by shutdown")
		return
	}

	job.UpdatedAt = s.now()
	if err != nil {
		job.Status = domain.JobFailed
		job.Error = err.Error()
		l.Error("JobService: job failed", zap.Error(err))
	} else {
		job.Status = domain.JobDone
		job.ArtifactID = resp.ID
		l.Info("JobService: job done", zap.String("artifact_id", resp.ID))
	}

	if err := s.queue.UpdateStatus(ctx, job); err != nil {
		l.Error("JobService: failed to record job outcome", zap.Error(err))
	}
	if err := s.queue.Ack(ctx, d.DeliveryID); err != nil {
		l.Error("JobService: failed to ack job", zap.String("delivery_id", d.DeliveryID), zap.Error(err))
	}
}
