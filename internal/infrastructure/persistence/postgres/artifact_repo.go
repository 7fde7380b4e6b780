// Package postgres 提供 PostgreSQL Repository 实现
package postgres

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"canvas-ai-api/internal/domain/entity"
	"canvas-ai-api/internal/domain/repository"
)

// ArtifactRepository 生成产物仓储实现
type ArtifactRepository struct {
	client *Client
}

// NewArtifactRepository 创建生成产物仓储
func NewArtifactRepository(client *Client) *ArtifactRepository {
	return &ArtifactRepository{client: client}
}

// Create 创建产物记录
func (r *ArtifactRepository) Create(ctx context.Context, artifact *entity.CanvasArtifact) error {
	ctx, span := tracer.Start(ctx, "postgres.ArtifactRepository.Create")
	defer span.End()

	db := getDB(ctx, r.client.db)
	if err := db.Create(artifact).Error; err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to create artifact: %w", err)
	}
	return nil
}

// GetByFileID 根据文件 ID 获取产物记录
func (r *ArtifactRepository) GetByFileID(ctx context.Context, fileID string) (*entity.CanvasArtifact, error) {
	ctx, span := tracer.Start(ctx, "postgres.ArtifactRepository.GetByFileID")
	defer span.End()

	db := getDB(ctx, r.client.db)
	var artifact entity.CanvasArtifact
	if err := db.First(&artifact, "file_id = ?", fileID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		span.RecordError(err)
		return nil, fmt.Errorf("failed to get artifact: %w", err)
	}
	return &artifact, nil
}

// ListByCanvas 获取画布产物列表
func (r *ArtifactRepository) ListByCanvas(ctx context.Context, canvasID string, pagination repository.Pagination) (*repository.PagedResult[*entity.CanvasArtifact], error) {
	ctx, span := tracer.Start(ctx, "postgres.ArtifactRepository.ListByCanvas")
	defer span.End()

	db := getDB(ctx, r.client.db)
	query := db.Model(&entity.CanvasArtifact{}).Where("canvas_id = ?", canvasID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to count artifacts: %w", err)
	}

	var artifacts []*entity.CanvasArtifact
	if err := query.Order("created_at DESC").
		Offset(pagination.Offset()).
		Limit(pagination.Limit()).
		Find(&artifacts).Error; err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to list artifacts: %w", err)
	}

	return repository.NewPagedResult(artifacts, total, pagination), nil
}
