package dto

import (
	"canvas-ai-api/internal/application/imagegen"
)

// GenerateImageRequest 图像生成请求
// Provider 为空时使用服务端默认提供商
type GenerateImageRequest struct {
	CanvasID    string   `json:"canvas_id" binding:"required,uuid"`
	SessionID   string   `json:"session_id" binding:"omitempty,uuid"`
	Prompt      string   `json:"prompt" binding:"required,max=4000"`
	Provider    string   `json:"provider" binding:"omitempty,max=64"`
	Model       string   `json:"model" binding:"omitempty,max=128"`
	AspectRatio string   `json:"aspect_ratio" binding:"omitempty,oneof=1:1 16:9 9:16 4:3 3:4"`
	InputImages []string `json:"input_images" binding:"omitempty,max=4"`
}

// GenerateImageResponse 图像生成响应
type GenerateImageResponse struct {
	Result string `json:"result"`
}

// ToGenerationRequest 构造编排请求
func (r *GenerateImageRequest) ToGenerationRequest(userID int64, defaultProvider string) *imagegen.GenerationRequest {
	provider := r.Provider
	if provider == "" {
		provider = defaultProvider
	}
	aspect := r.AspectRatio
	if aspect == "" {
		aspect = "1:1"
	}
	return &imagegen.GenerationRequest{
		CanvasID:    r.CanvasID,
		SessionID:   r.SessionID,
		Provider:    provider,
		Model:       r.Model,
		Prompt:      r.Prompt,
		AspectRatio: aspect,
		InputImages: r.InputImages,
		UserID:      userID,
	}
}
