// Package repository 定义数据访问层接口
package repository

import (
	"context"

	"canvas-ai-api/internal/domain/entity"
)

// ArtifactRepository 生成产物仓储接口
type ArtifactRepository interface {
	Create(ctx context.Context, artifact *entity.CanvasArtifact) error
	GetByFileID(ctx context.Context, fileID string) (*entity.CanvasArtifact, error)
	ListByCanvas(ctx context.Context, canvasID string, pagination Pagination) (*PagedResult[*entity.CanvasArtifact], error)
}
