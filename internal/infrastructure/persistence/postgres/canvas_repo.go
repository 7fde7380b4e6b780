// Package postgres 提供 PostgreSQL Repository 实现
package postgres

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"canvas-ai-api/internal/domain/entity"
	"canvas-ai-api/internal/domain/repository"
)

// CanvasRepository 画布仓储实现
type CanvasRepository struct {
	client *Client
}

// NewCanvasRepository 创建画布仓储
func NewCanvasRepository(client *Client) *CanvasRepository {
	return &CanvasRepository{client: client}
}

// Create 创建画布
func (r *CanvasRepository) Create(ctx context.Context, canvas *entity.Canvas) error {
	ctx, span := tracer.Start(ctx, "postgres.CanvasRepository.Create")
	defer span.End()

	db := getDB(ctx, r.client.db)
	if err := db.Create(canvas).Error; err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to create canvas: %w", err)
	}
	return nil
}

// GetByID 根据 ID 获取画布
func (r *CanvasRepository) GetByID(ctx context.Context, id string) (*entity.Canvas, error) {
	ctx, span := tracer.Start(ctx, "postgres.CanvasRepository.GetByID")
	defer span.End()

	db := getDB(ctx, r.client.db)
	var canvas entity.Canvas
	if err := db.First(&canvas, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		span.RecordError(err)
		return nil, fmt.Errorf("failed to get canvas: %w", err)
	}
	return &canvas, nil
}

// Update 更新画布
func (r *CanvasRepository) Update(ctx context.Context, canvas *entity.Canvas) error {
	ctx, span := tracer.Start(ctx, "postgres.CanvasRepository.Update")
	defer span.End()

	db := getDB(ctx, r.client.db)
	if err := db.Save(canvas).Error; err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to update canvas: %w", err)
	}
	return nil
}

// Delete 删除画布
func (r *CanvasRepository) Delete(ctx context.Context, id string) error {
	ctx, span := tracer.Start(ctx, "postgres.CanvasRepository.Delete")
	defer span.End()

	db := getDB(ctx, r.client.db)
	if err := db.Delete(&entity.Canvas{}, "id = ?", id).Error; err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to delete canvas: %w", err)
	}
	return nil
}

// ListByUser 获取用户画布列表
func (r *CanvasRepository) ListByUser(ctx context.Context, userID int64, pagination repository.Pagination) (*repository.PagedResult[*entity.Canvas], error) {
	ctx, span := tracer.Start(ctx, "postgres.CanvasRepository.ListByUser")
	defer span.End()

	db := getDB(ctx, r.client.db)
	query := db.Model(&entity.Canvas{}).Where("user_id = ?", userID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to count canvases: %w", err)
	}

	var canvases []*entity.Canvas
	if err := query.Order("updated_at DESC").
		Offset(pagination.Offset()).
		Limit(pagination.Limit()).
		Find(&canvases).Error; err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to list canvases: %w", err)
	}

	return repository.NewPagedResult(canvases, total, pagination), nil
}

// CanvasElementRepository 画布元素仓储实现
type CanvasElementRepository struct {
	client *Client
}

// NewCanvasElementRepository 创建画布元素仓储
func NewCanvasElementRepository(client *Client) *CanvasElementRepository {
	return &CanvasElementRepository{client: client}
}

// Create 创建画布元素
func (r *CanvasElementRepository) Create(ctx context.Context, element *entity.CanvasElement) error {
	ctx, span := tracer.Start(ctx, "postgres.CanvasElementRepository.Create")
	defer span.End()

	db := getDB(ctx, r.client.db)
	if err := db.Create(element).Error; err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to create canvas element: %w", err)
	}
	return nil
}

// ListByCanvas 获取画布元素列表
func (r *CanvasElementRepository) ListByCanvas(ctx context.Context, canvasID string) ([]*entity.CanvasElement, error) {
	ctx, span := tracer.Start(ctx, "postgres.CanvasElementRepository.ListByCanvas")
	defer span.End()

	db := getDB(ctx, r.client.db)
	var elements []*entity.CanvasElement
	if err := db.Where("canvas_id = ?", canvasID).Order("created_at ASC").Find(&elements).Error; err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to list canvas elements: %w", err)
	}
	return elements, nil
}

// Delete 删除画布元素
func (r *CanvasElementRepository) Delete(ctx context.Context, id string) error {
	ctx, span := tracer.Start(ctx, "postgres.CanvasElementRepository.Delete")
	defer span.End()

	db := getDB(ctx, r.client.db)
	if err := db.Delete(&entity.CanvasElement{}, "id = ?", id).Error; err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to delete canvas element: %w", err)
	}
	return nil
}
