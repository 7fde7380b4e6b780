// Package repository 定义数据访问层接口
package repository

import (
	"context"

	"canvas-ai-api/internal/domain/entity"
)

// CanvasRepository 画布仓储接口
type CanvasRepository interface {
	Create(ctx context.Context, canvas *entity.Canvas) error
	GetByID(ctx context.Context, id string) (*entity.Canvas, error)
	Update(ctx context.Context, canvas *entity.Canvas) error
	Delete(ctx context.Context, id string) error
	ListByUser(ctx context.Context, userID int64, pagination Pagination) (*PagedResult[*entity.Canvas], error)
}

// CanvasElementRepository 画布元素仓储接口
type CanvasElementRepository interface {
	Create(ctx context.Context, element *entity.CanvasElement) error
	ListByCanvas(ctx context.Context, canvasID string) ([]*entity.CanvasElement, error)
	Delete(ctx context.Context, id string) error
}
