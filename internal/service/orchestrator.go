package service

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"edugenie/internal/config"
	"edugenie/internal/domain"
	"edugenie/internal/logger"
	"edugenie/internal/prompt"
	"edugenie/internal/segmenter"
	"edugenie/internal/util"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// AggregationFallbackWarning is attached to an artifact whose partial results
// could not be merged and were concatenated instead.
const AggregationFallbackWarning = "sections could not be merged and are shown one after another"

// Orchestrator runs one analysis: a single oracle call for short content, or
// per-segment calls followed by an aggregation pass for long content.
type Orchestrator struct {
	completer   domain.Completer
	segmenter   *segmenter.Segmenter
	threshold   int
	concurrency int
}

// NewOrchestrator creates an orchestrator. Concurrency below 1 means sequential.
func NewOrchestrator(completer domain.Completer, cfg config.AnalysisConfig) *Orchestrator {
	seg := segmenter.New(segmenter.OptionsFromConfig(cfg))
	threshold := cfg.SinglePassThreshold
	if threshold <= 0 {
		threshold = config.DefaultAnalysisConfig().SinglePassThreshold
	}
	concurrency := cfg.Concurrency
	if concurrency < 1 {
		concurrency = 1
	}
	return &Orchestrator{
		completer:   completer,
		segmenter:   seg,
		threshold:   threshold,
		concurrency: concurrency,
	}
}

// Run produces the artifact for content. Any per-segment failure aborts the run
// and is returned as is; a failed aggregation call falls back to concatenation.
// sizeHint, when positive, overrides the per-segment character limit.
func (o *Orchestrator) Run(ctx context.Context, task domain.TaskType, content string, sizeHint int) (*domain.AnalysisArtifact, error) {
	l := logger.Get().With(zap.String("task_type", task.String()))
	charCount := utf8.RuneCountInString(content)

	artifact := &domain.AnalysisArtifact{
		ID:        util.NewULID(),
		TaskType:  task,
		WordCount: len(strings.Fields(content)),
		CharCount: charCount,
	}

	if charCount <= o.threshold {
		l.Debug("Running single pass analysis", zap.Int("chars", charCount))
		result, err := o.completer.Complete(ctx, prompt.Build(task, domain.Segment{Text: content, Index: 1, Total: 1}))
		if err != nil {
			return nil, err
		}
		artifact.Result = result
		artifact.Segments = 1
		artifact.CreatedAt = time.Now().UTC()
		return artifact, nil
	}

	plan := o.segmenter.Segment(content, sizeHint)
	if len(plan.Segments) == 0 {
		return nil, domain.NewInvalidInputError("content contains no text")
	}
	if w := plan.Warning(); w != "" {
		l.Warn("Document truncated to segment ceiling",
			zap.Int("produced", plan.Produced),
			zap.Int("kept", len(plan.Segments)),
			zap.Int("estimated_pages", plan.EstimatedPages))
		artifact.Warnings = append(artifact.Warnings, w)
	}
	l.Info("Running segmented analysis",
		zap.Int("chars", charCount),
		zap.Int("segments", len(plan.Segments)),
		zap.Int("segment_limit", plan.SizeLimit))

	partials, err := o.completeSegments(ctx, task, plan.Segments)
	if err != nil {
		return nil, err
	}

	artifact.Segments = len(partials)
	artifact.Result = o.aggregate(ctx, l, task, partials, artifact)
	artifact.CreatedAt = time.Now().UTC()
	return artifact, nil
}

// completeSegments returns one partial result per segment in segment order.
func (o *Orchestrator) completeSegments(ctx context.Context, task domain.TaskType, segments []domain.Segment) ([]string, error) {
	partials := make([]string, len(segments))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(o.concurrency)
	for i, seg := range segments {
		i, seg := i, seg
		g.Go(func() error {
			// a failed segment cancels gctx; later segments are not sent
			if err := gctx.Err(); err != nil {
				return err
			}
			out, err := o.completer.Complete(gctx, prompt.Build(task, seg))
			if err != nil {
				logger.Get().Error("Segment analysis failed",
					zap.String("task_type", task.String()),
					zap.Int("segment_index", seg.Index),
					zap.Int("segments", seg.Total),
					zap.Error(err))
				return fmt.Errorf("segment %d of %d: %w", seg.Index, seg.Total, err)
			}
			partials[i] = out
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return partials, nil
}

func (o *Orchestrator) aggregate(ctx context.Context, l *zap.Logger, task domain.TaskType, partials []string, artifact *domain.AnalysisArtifact) string {
	if len(partials) == 1 {
		return partials[0]
	}

	aggPrompt, ok := prompt.BuildAggregation(task, partials)
	if !ok {
		return prompt.Concatenate(partials)
	}

	merged, err := o.completer.Complete(ctx, aggPrompt)
	if err != nil {
		l.Warn("Aggregation failed, concatenating partial results",
			zap.Int("segments", len(partials)),
			zap.Error(err))
		artifact.Warnings = append(artifact.Warnings, AggregationFallbackWarning)
		return prompt.Concatenate(partials)
	}
	return merged
}
