package dto

import (
	"encoding/json"
	"time"

	"canvas-ai-api/internal/domain/entity"
)

// CreateSessionRequest 创建会话请求
type CreateSessionRequest struct {
	ID       string `json:"id" binding:"omitempty,uuid"`
	CanvasID string `json:"canvas_id" binding:"required,uuid"`
	Title    string `json:"title" binding:"omitempty,max=255"`
	Provider string `json:"provider" binding:"omitempty,max=64"`
	Model    string `json:"model" binding:"omitempty,max=128"`
}

// AppendMessageRequest 追加消息请求
type AppendMessageRequest struct {
	Role     string          `json:"role" binding:"required,oneof=user assistant system"`
	Content  string          `json:"content" binding:"required"`
	Metadata json.RawMessage `json:"metadata"`
}

// ChatSessionDTO 会话信息
type ChatSessionDTO struct {
	ID        string    `json:"id"`
	CanvasID  string    `json:"canvas_id"`
	Title     string    `json:"title,omitempty"`
	Provider  string    `json:"provider,omitempty"`
	Model     string    `json:"model,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ChatMessageDTO 消息信息
type ChatMessageDTO struct {
	ID        string          `json:"id"`
	SessionID string          `json:"session_id"`
	Role      string          `json:"role"`
	Content   string          `json:"content"`
	Metadata  json.RawMessage `json:"metadata,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
}

// ToChatSessionDTO 将领域实体转换为 DTO
func ToChatSessionDTO(s *entity.ChatSession) *ChatSessionDTO {
	if s == nil {
		return nil
	}
	return &ChatSessionDTO{
		ID:        s.ID,
		CanvasID:  s.CanvasID,
		Title:     s.Title,
		Provider:  s.Provider,
		Model:     s.Model,
		CreatedAt: s.CreatedAt,
		UpdatedAt: s.UpdatedAt,
	}
}

// ToChatSessionDTOs 批量转换
func ToChatSessionDTOs(items []*entity.ChatSession) []*ChatSessionDTO {
	out := make([]*ChatSessionDTO, 0, len(items))
	for _, s := range items {
		out = append(out, ToChatSessionDTO(s))
	}
	return out
}

// ToChatMessageDTO 将领域实体转换为 DTO
func ToChatMessageDTO(m *entity.ChatMessage) *ChatMessageDTO {
	if m == nil {
		return nil
	}
	return &ChatMessageDTO{
		ID:        m.ID,
		SessionID: m.SessionID,
		Role:      string(m.Role),
		Content:   m.Content,
		Metadata:  m.Metadata,
		CreatedAt: m.CreatedAt,
	}
}

// ToChatMessageDTOs 批量转换
func ToChatMessageDTOs(items []*entity.ChatMessage) []*ChatMessageDTO {
	out := make([]*ChatMessageDTO, 0, len(items))
	for _, m := range items {
		out = append(out, ToChatMessageDTO(m))
	}
	return out
}
