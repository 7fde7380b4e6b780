// Package entity 定义领域实体
package entity

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Canvas 画布实体
type Canvas struct {
	ID          string    `json:"id" gorm:"type:uuid;primaryKey"`
	UserID      int64     `json:"user_id" gorm:"index;not null"`
	Name        string    `json:"name" gorm:"type:varchar(255);not null"`
	Description string    `json:"description,omitempty" gorm:"type:text"`
	Thumbnail   string    `json:"thumbnail,omitempty" gorm:"type:text"`
	// Data 画布文档（元素布局等），由前端整体保存
	Data      json.RawMessage `json:"data,omitempty" gorm:"type:jsonb"`
	CreatedAt time.Time       `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time       `json:"updated_at" gorm:"autoUpdateTime"`
}

func (Canvas) TableName() string {
	return "canvases"
}

// NewCanvas 创建新画布
func NewCanvas(userID int64, name string) *Canvas {
	now := time.Now()
	return &Canvas{
		ID:        uuid.NewString(),
		UserID:    userID,
		Name:      name,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// CanvasElementType 画布元素类型
type CanvasElementType string

const (
	CanvasElementImage CanvasElementType = "image"
	CanvasElementText  CanvasElementType = "text"
)

// CanvasElement 画布上的一个可视元素
type CanvasElement struct {
	ID       string            `json:"id" gorm:"type:uuid;primaryKey"`
	CanvasID string            `json:"canvas_id" gorm:"type:uuid;index;not null"`
	Type     CanvasElementType `json:"type" gorm:"type:varchar(16);not null"`
	X        float64           `json:"x" gorm:"not null;default:0"`
	Y        float64           `json:"y" gorm:"not null;default:0"`
	Width    int               `json:"width" gorm:"not null;default:0"`
	Height   int               `json:"height" gorm:"not null;default:0"`
	// Payload 元素内容，图像元素记录 file_id 与访问路径
	Payload   json.RawMessage `json:"payload,omitempty" gorm:"type:jsonb"`
	CreatedAt time.Time       `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time       `json:"updated_at" gorm:"autoUpdateTime"`
}

func (CanvasElement) TableName() string {
	return "canvas_elements"
}

// NewImageElement 为生成结果创建图像元素
func NewImageElement(canvasID string, width, height int, payload json.RawMessage) *CanvasElement {
	now := time.Now()
	return &CanvasElement{
		ID:        uuid.NewString(),
		CanvasID:  canvasID,
		Type:      CanvasElementImage,
		Width:     width,
		Height:    height,
		Payload:   payload,
		CreatedAt: now,
		UpdatedAt: now,
	}
}
