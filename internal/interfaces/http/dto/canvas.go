package dto

import (
	"encoding/json"
	"time"

	"canvas-ai-api/internal/domain/entity"
)

// CreateCanvasRequest 创建画布请求
// ID 可由客户端指定以支持离线先建后同步
type CreateCanvasRequest struct {
	ID   string `json:"id" binding:"omitempty,uuid"`
	Name string `json:"name" binding:"required,max=255"`
}

// RenameCanvasRequest 重命名画布请求
type RenameCanvasRequest struct {
	Name string `json:"name" binding:"required,max=255"`
}

// SaveCanvasDataRequest 保存画布文档请求
type SaveCanvasDataRequest struct {
	Data      json.RawMessage `json:"data" binding:"required"`
	Thumbnail string          `json:"thumbnail"`
}

// CanvasDTO 画布信息
type CanvasDTO struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	Thumbnail   string          `json:"thumbnail,omitempty"`
	Data        json.RawMessage `json:"data,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// CanvasElementDTO 画布元素信息
type CanvasElementDTO struct {
	ID        string          `json:"id"`
	CanvasID  string          `json:"canvas_id"`
	Type      string          `json:"type"`
	X         float64         `json:"x"`
	Y         float64         `json:"y"`
	Width     int             `json:"width"`
	Height    int             `json:"height"`
	Payload   json.RawMessage `json:"payload,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
}

// ToCanvasDTO 将领域实体转换为 DTO
func ToCanvasDTO(c *entity.Canvas) *CanvasDTO {
	if c == nil {
		return nil
	}
	return &CanvasDTO{
		ID:          c.ID,
		Name:        c.Name,
		Description: c.Description,
		Thumbnail:   c.Thumbnail,
		Data:        c.Data,
		CreatedAt:   c.CreatedAt,
		UpdatedAt:   c.UpdatedAt,
	}
}

// ToCanvasDTOs 批量转换
func ToCanvasDTOs(items []*entity.Canvas) []*CanvasDTO {
	out := make([]*CanvasDTO, 0, len(items))
	for _, c := range items {
		out = append(out, ToCanvasDTO(c))
	}
	return out
}

// ToCanvasElementDTO 将领域实体转换为 DTO
func ToCanvasElementDTO(e *entity.CanvasElement) *CanvasElementDTO {
	if e == nil {
		return nil
	}
	return &CanvasElementDTO{
		ID:        e.ID,
		CanvasID:  e.CanvasID,
		Type:      string(e.Type),
		X:         e.X,
		Y:         e.Y,
		Width:     e.Width,
		Height:    e.Height,
		Payload:   e.Payload,
		CreatedAt: e.CreatedAt,
	}
}

// ToCanvasElementDTOs 批量转换
func ToCanvasElementDTOs(items []*entity.CanvasElement) []*CanvasElementDTO {
	out := make([]*CanvasElementDTO, 0, len(items))
	for _, e := range items {
		out = append(out, ToCanvasElementDTO(e))
	}
	return out
}
