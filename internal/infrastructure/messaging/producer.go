// Package messaging 提供消息队列实现
package messaging

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

var tracer = otel.Tracer("messaging")

// Producer 消息生产者
type Producer struct {
	client *redis.Client
	maxLen int64
}

// NewProducer 创建消息生产者
func NewProducer(client *redis.Client, maxLen int64) *Producer {
	if maxLen <= 0 {
		maxLen = 1000
	}
	return &Producer{
		client: client,
		maxLen: maxLen,
	}
}

// Publish 发布消息到指定流
func (p *Producer) Publish(ctx context.Context, stream Stream, msg *Message) (string, error) {
	ctx, span := tracer.Start(ctx, "producer.Publish",
		trace.WithAttributes(
			attribute.String("stream", string(stream)),
			attribute.String("message.id", msg.ID),
			attribute.String("message.type", msg.Type),
		))
	defer span.End()

	data, err := json.Marshal(msg)
	if err != nil {
		span.RecordError(err)
		return "", fmt.Errorf("failed to marshal message: %w", err)
	}

	result, err := p.client.XAdd(ctx, &redis.XAddArgs{
		Stream: string(stream),
		MaxLen: p.maxLen,
		Approx: true,
		Values: map[string]interface{}{
			"data": string(data),
		},
	}).Result()

	if err != nil {
		span.RecordError(err)
		return "", fmt.Errorf("failed to publish message: %w", err)
	}

	span.SetAttributes(attribute.String("stream.message_id", result))
	return result, nil
}

// PublishCanvasUpdate 发布画布更新事件
func (p *Producer) PublishCanvasUpdate(ctx context.Context, event *CanvasUpdateMessage) (string, error) {
	msg, err := NewMessage(event.ElementID, "canvas_update", event.CanvasID, event.UserID, event)
	if err != nil {
		return "", err
	}

	msg.SetMetadata("provider", event.Provider)
	return p.Publish(ctx, StreamCanvasUpdate, msg)
}

// CanvasUpdateMessage 画布更新消息
type CanvasUpdateMessage struct {
	CanvasID  string `json:"canvas_id"`
	ElementID string `json:"element_id"`
	FileID    string `json:"file_id"`
	FilePath  string `json:"file_path"`
	UserID    int64  `json:"user_id"`
	Provider  string `json:"provider"`
}
