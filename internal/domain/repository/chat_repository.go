// Package repository 定义数据访问层接口
package repository

import (
	"context"

	"canvas-ai-api/internal/domain/entity"
)

// ChatSessionRepository 对话会话仓储接口
type ChatSessionRepository interface {
	Create(ctx context.Context, session *entity.ChatSession) error
	GetByID(ctx context.Context, id string) (*entity.ChatSession, error)
	ListByCanvas(ctx context.Context, canvasID string, pagination Pagination) (*PagedResult[*entity.ChatSession], error)
}

// ChatMessageRepository 对话消息仓储接口
type ChatMessageRepository interface {
	Create(ctx context.Context, message *entity.ChatMessage) error
	ListBySession(ctx context.Context, sessionID string, pagination Pagination) (*PagedResult[*entity.ChatMessage], error)
}
