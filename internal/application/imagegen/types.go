// Package imagegen 实现图像生成编排
package imagegen

import (
	"context"
)

// GenerationRequest 一次图像生成请求，构造后不再修改
type GenerationRequest struct {
	CanvasID    string   `json:"canvas_id"`
	SessionID   string   `json:"session_id"`
	Provider    string   `json:"provider"`
	Model       string   `json:"model"`
	Prompt      string   `json:"prompt"`
	AspectRatio string   `json:"aspect_ratio"`
	InputImages []string `json:"input_images,omitempty"`
	UserID      int64    `json:"user_id"`
}

// PersistedImage 落库后的产物信息
type PersistedImage struct {
	ElementID string `json:"element_id"`
	// FilePath 产物的访问路径，如 /api/file/{id}
	FilePath string `json:"file_path"`
}

// Persister 生成结果持久化接口
type Persister interface {
	// SaveImage 记录产物、更新画布并追加会话消息，返回访问路径
	SaveImage(ctx context.Context, req *GenerationRequest, result *ProviderResult) (*PersistedImage, error)
}

// CreditGate 额度准入门闸
type CreditGate interface {
	// CheckAndUpdateCredits 原子检查并扣减额度，返回是否放行
	CheckAndUpdateCredits(ctx context.Context, userID int64) (bool, error)
}

// InputNormalizer 输入图片归一化接口
type InputNormalizer interface {
	// Normalize 逐张归一化，失败的图片被丢弃，顺序保持
	Normalize(ctx context.Context, sources []string) []string
}
