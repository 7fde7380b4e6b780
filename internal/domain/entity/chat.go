// Package entity 定义领域实体
package entity

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Role 对话角色
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleSystem    Role = "system"
)

// ChatSession 画布关联的对话会话
type ChatSession struct {
	ID        string    `json:"id" gorm:"type:uuid;primaryKey"`
	CanvasID  string    `json:"canvas_id" gorm:"type:uuid;index;not null"`
	UserID    int64     `json:"user_id" gorm:"index;not null"`
	Title     string    `json:"title,omitempty" gorm:"type:varchar(255)"`
	Model     string    `json:"model,omitempty" gorm:"type:varchar(128)"`
	Provider  string    `json:"provider,omitempty" gorm:"type:varchar(64)"`
	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

func (ChatSession) TableName() string {
	return "chat_sessions"
}

// NewChatSession 创建新会话
func NewChatSession(canvasID string, userID int64, title string) *ChatSession {
	now := time.Now()
	return &ChatSession{
		ID:        uuid.NewString(),
		CanvasID:  canvasID,
		UserID:    userID,
		Title:     title,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// ChatMessage 会话中的一条消息
type ChatMessage struct {
	ID        string          `json:"id" gorm:"type:uuid;primaryKey"`
	SessionID string          `json:"session_id" gorm:"type:uuid;index;not null"`
	Role      Role            `json:"role" gorm:"type:varchar(16);not null"`
	Content   string          `json:"content" gorm:"type:text;not null"`
	Metadata  json.RawMessage `json:"metadata,omitempty" gorm:"type:jsonb"`
	CreatedAt time.Time       `json:"created_at" gorm:"autoCreateTime"`
}

func (ChatMessage) TableName() string {
	return "chat_messages"
}

// NewChatMessage 创建新消息
func NewChatMessage(sessionID string, role Role, content string, metadata json.RawMessage) *ChatMessage {
	return &ChatMessage{
		ID:        uuid.NewString(),
		SessionID: sessionID,
		Role:      role,
		Content:   content,
		Metadata:  metadata,
		CreatedAt: time.Now(),
	}
}
