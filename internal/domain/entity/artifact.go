// Package entity 定义领域实体
package entity

import (
	"time"
)

// CanvasArtifact 一次生成落盘后的产物记录
type CanvasArtifact struct {
	ID       string `json:"id" gorm:"type:uuid;primaryKey"`
	CanvasID string `json:"canvas_id" gorm:"type:uuid;index;not null"`
	UserID   int64  `json:"user_id" gorm:"index;not null"`
	// FileID 文件存储中的标识，产物通过 /api/file/{id} 访问
	FileID    string    `json:"file_id" gorm:"type:varchar(64);uniqueIndex;not null"`
	FilePath  string    `json:"file_path" gorm:"type:varchar(255);not null"`
	MimeType  string    `json:"mime_type" gorm:"type:varchar(64);not null"`
	Width     int       `json:"width" gorm:"not null;default:0"`
	Height    int       `json:"height" gorm:"not null;default:0"`
	Provider  string    `json:"provider" gorm:"type:varchar(64);not null"`
	Model     string    `json:"model,omitempty" gorm:"type:varchar(128)"`
	Prompt    string    `json:"prompt,omitempty" gorm:"type:text"`
	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
}

func (CanvasArtifact) TableName() string {
	return "canvas_artifacts"
}
