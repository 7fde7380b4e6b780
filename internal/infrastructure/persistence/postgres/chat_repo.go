// Package postgres 提供 PostgreSQL Repository 实现
package postgres

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"canvas-ai-api/internal/domain/entity"
	"canvas-ai-api/internal/domain/repository"
)

// ChatSessionRepository 对话会话仓储实现
type ChatSessionRepository struct {
	client *Client
}

// NewChatSessionRepository 创建对话会话仓储
func NewChatSessionRepository(client *Client) *ChatSessionRepository {
	return &ChatSessionRepository{client: client}
}

// Create 创建会话
func (r *ChatSessionRepository) Create(ctx context.Context, session *entity.ChatSession) error {
	ctx, span := tracer.Start(ctx, "postgres.ChatSessionRepository.Create")
	defer span.End()

	db := getDB(ctx, r.client.db)
	if err := db.Create(session).Error; err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to create chat session: %w", err)
	}
	return nil
}

// GetByID 根据 ID 获取会话
func (r *ChatSessionRepository) GetByID(ctx context.Context, id string) (*entity.ChatSession, error) {
	ctx, span := tracer.Start(ctx, "postgres.ChatSessionRepository.GetByID")
	defer span.End()

	db := getDB(ctx, r.client.db)
	var session entity.ChatSession
	if err := db.First(&session, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		span.RecordError(err)
		return nil, fmt.Errorf("failed to get chat session: %w", err)
	}
	return &session, nil
}

// ListByCanvas 获取画布会话列表
func (r *ChatSessionRepository) ListByCanvas(ctx context.Context, canvasID string, pagination repository.Pagination) (*repository.PagedResult[*entity.ChatSession], error) {
	ctx, span := tracer.Start(ctx, "postgres.ChatSessionRepository.ListByCanvas")
	defer span.End()

	db := getDB(ctx, r.client.db)
	query := db.Model(&entity.ChatSession{}).Where("canvas_id = ?", canvasID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to count chat sessions: %w", err)
	}

	var sessions []*entity.ChatSession
	if err := query.Order("created_at DESC").
		Offset(pagination.Offset()).
		Limit(pagination.Limit()).
		Find(&sessions).Error; err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to list chat sessions: %w", err)
	}

	return repository.NewPagedResult(sessions, total, pagination), nil
}

// ChatMessageRepository 对话消息仓储实现
type ChatMessageRepository struct {
	client *Client
}

// NewChatMessageRepository 创建对话消息仓储
func NewChatMessageRepository(client *Client) *ChatMessageRepository {
	return &ChatMessageRepository{client: client}
}

// Create 创建消息
func (r *ChatMessageRepository) Create(ctx context.Context, message *entity.ChatMessage) error {
	ctx, span := tracer.Start(ctx, "postgres.ChatMessageRepository.Create")
	defer span.End()

	db := getDB(ctx, r.client.db)
	if err := db.Create(message).Error; err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to create chat message: %w", err)
	}
	return nil
}

// ListBySession 获取会话消息列表
func (r *ChatMessageRepository) ListBySession(ctx context.Context, sessionID string, pagination repository.Pagination) (*repository.PagedResult[*entity.ChatMessage], error) {
	ctx, span := tracer.Start(ctx, "postgres.ChatMessageRepository.ListBySession")
	defer span.End()

	db := getDB(ctx, r.client.db)
	query := db.Model(&entity.ChatMessage{}).Where("session_id = ?", sessionID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to count chat messages: %w", err)
	}

	var messages []*entity.ChatMessage
	if err := query.Order("created_at ASC").
		Offset(pagination.Offset()).
		Limit(pagination.Limit()).
		Find(&messages).Error; err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to list chat messages: %w", err)
	}

	return repository.NewPagedResult(messages, total, pagination), nil
}
