package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"edugenie/internal/domain"
	"edugenie/internal/repository/models"
	"edugenie/internal/util"

	"github.com/jmoiron/sqlx"
)

// ArtifactDatabaseAdapter implements domain.ArtifactRepository using sqlx.DB
type ArtifactDatabaseAdapter struct {
	db DBTX
	// ping is nil when the adapter runs on a transaction
	ping func(ctx context.Context) error
}

// NewArtifactDatabaseAdapter creates a new instance of ArtifactDatabaseAdapter
func NewArtifactDatabaseAdapter(db *sqlx.DB) domain.ArtifactRepository {
	return &ArtifactDatabaseAdapter{db: db, ping: db.PingContext}
}

// SaveArtifact implements domain.ArtifactRepository
func (a *ArtifactDatabaseAdapter) SaveArtifact(ctx context.Context, artifact *domain.AnalysisArtifact, documentID string) error {
	if artifact == nil {
		return fmt.Errorf("cannot save nil artifact")
	}
	m := toModelArtifact(artifact, documentID)

	query := `INSERT INTO analysis_artifacts (
		id, document_id, task_type, result_text,
		word_count, char_count, segment_count, warnings, created_at
	) VALUES (
		:1, :2, :3, :4, :5, :6, :7, :8, :9
	)`

	_, err := a.db.ExecContext(ctx, query,
		m.ID,
		m.DocumentID,
		m.TaskType,
		m.ResultText,
		m.WordCount,
		m.CharCount,
		m.SegmentCount,
		m.Warnings,
		m.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save artifact %s: %w", m.ID, err)
	}
	return nil
}

// GetArtifactByID implements domain.ArtifactRepository
func (a *ArtifactDatabaseAdapter) GetArtifactByID(ctx context.Context, id string) (*domain.AnalysisArtifact, error) {
	var m models.Artifact
	query := `SELECT
		id "id",
		document_id "document_id",
		task_type "task_type",
		result_text "result_text",
		word_count "word_count",
		char_count "char_count",
		segment_count "segment_count",
		warnings "warnings",
		created_at "created_at"
	FROM analysis_artifacts
	WHERE id = :1`

	err := a.db.GetContext(ctx, &m, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get artifact %s: %w", id, err)
	}
	return toDomainArtifact(&m), nil
}

// Ping implements domain.ArtifactRepository
func (a *ArtifactDatabaseAdapter) Ping(ctx context.Context) error {
	if a.ping == nil {
		return nil
	}
	return a.ping(ctx)
}

func toModelArtifact(artifact *domain.AnalysisArtifact, documentID string) *models.Artifact {
	return &models.Artifact{
		ID:           artifact.ID,
		DocumentID:   util.StringToNullString(documentID),
		TaskType:     artifact.TaskType.String(),
		ResultText:   artifact.Result,
		WordCount:    artifact.WordCount,
		CharCount:    artifact.CharCount,
		SegmentCount: artifact.Segments,
		Warnings:     models.StringSlice(artifact.Warnings),
		CreatedAt:    artifact.CreatedAt,
	}
}

func toDomainArtifact(m *models.Artifact) *domain.AnalysisArtifact {
	artifact := &domain.AnalysisArtifact{
		ID:        m.ID,
		TaskType:  domain.TaskType(m.TaskType),
		Result:    m.ResultText,
		WordCount: m.WordCount,
		CharCount: m.CharCount,
		Segments:  m.SegmentCount,
		CreatedAt: m.CreatedAt,
	}
	if len(m.Warnings) > 0 {
		artifact.Warnings = []string(m.Warnings)
	}
	return artifact
}

var _ domain.ArtifactRepository = (*ArtifactDatabaseAdapter)(nil)
