// Package canvassvc 提供画布、会话与生成产物的应用服务
package canvassvc

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"canvas-ai-api/internal/application/imagegen"
	"canvas-ai-api/internal/domain/entity"
	"canvas-ai-api/internal/domain/repository"
	"canvas-ai-api/internal/infrastructure/messaging"
	apperrors "canvas-ai-api/pkg/errors"
	"canvas-ai-api/pkg/logger"
)

var tracer = otel.Tracer("canvassvc")

// Notifier 画布更新通知接口
type Notifier interface {
	PublishCanvasUpdate(ctx context.Context, event *messaging.CanvasUpdateMessage) (string, error)
}

// Service 画布应用服务，同时实现 imagegen.Persister
type Service struct {
	canvasRepo   repository.CanvasRepository
	elementRepo  repository.CanvasElementRepository
	sessionRepo  repository.ChatSessionRepository
	messageRepo  repository.ChatMessageRepository
	artifactRepo repository.ArtifactRepository
	tx           repository.Transactor
	notifier     Notifier

	// fileBasePath 产物访问路由前缀，如 /api/file
	fileBasePath string
}

// NewService 创建画布应用服务
func NewService(
	canvasRepo repository.CanvasRepository,
	elementRepo repository.CanvasElementRepository,
	sessionRepo repository.ChatSessionRepository,
	messageRepo repository.ChatMessageRepository,
	artifactRepo repository.ArtifactRepository,
	tx repository.Transactor,
	notifier Notifier,
	fileBasePath string,
) *Service {
	return &Service{
		canvasRepo:   canvasRepo,
		elementRepo:  elementRepo,
		sessionRepo:  sessionRepo,
		messageRepo:  messageRepo,
		artifactRepo: artifactRepo,
		tx:           tx,
		notifier:     notifier,
		fileBasePath: strings.TrimRight(fileBasePath, "/"),
	}
}

// elementPayload 图像元素的 payload 结构
type elementPayload struct {
	FileID   string `json:"file_id"`
	FilePath string `json:"file_path"`
	MimeType string `json:"mime_type"`
}

// SaveImage 持久化一次生成结果
// 同一事务内写入产物记录、画布元素和会话消息，事务提交后
// 尽力发布画布更新通知（通知失败不影响结果）。
func (s *Service) SaveImage(ctx context.Context, req *imagegen.GenerationRequest, result *imagegen.ProviderResult) (*imagegen.PersistedImage, error) {
	ctx, span := tracer.Start(ctx, "canvassvc.SaveImage")
	span.SetAttributes(
		attribute.String("canvas.id", req.CanvasID),
		attribute.String("file.id", result.FileID),
	)
	defer span.End()

	filePath := s.fileBasePath + "/" + result.FileID

	payload, err := json.Marshal(elementPayload{
		FileID:   result.FileID,
		FilePath: filePath,
		MimeType: result.MimeType,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal element payload: %w", err)
	}

	element := entity.NewImageElement(req.CanvasID, result.Width, result.Height, payload)

	artifact := &entity.CanvasArtifact{
		ID:       uuid.NewString(),
		CanvasID: req.CanvasID,
		UserID:   req.UserID,
		FileID:   result.FileID,
		FilePath: filePath,
		MimeType: result.MimeType,
		Width:    result.Width,
		Height:   result.Height,
		Provider: req.Provider,
		Model:    req.Model,
		Prompt:   req.Prompt,
	}

	messageMeta, err := json.Marshal(map[string]any{
		"file_id":  result.FileID,
		"width":    result.Width,
		"height":   result.Height,
		"provider": req.Provider,
		"model":    req.Model,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal message metadata: %w", err)
	}

	message := entity.NewChatMessage(req.SessionID, entity.RoleAssistant,
		fmt.Sprintf("![image](%s)", filePath), messageMeta)

	err = s.tx.WithTransaction(ctx, func(txCtx context.Context) error {
		if err := s.artifactRepo.Create(txCtx, artifact); err != nil {
			return err
		}
		if err := s.elementRepo.Create(txCtx, element); err != nil {
			return err
		}
		return s.messageRepo.Create(txCtx, message)
	})
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to persist generated image: %w", err)
	}

	// 通知失败只记录，不影响已提交的结果
	if s.notifier != nil {
		if _, err := s.notifier.PublishCanvasUpdate(ctx, &messaging.CanvasUpdateMessage{
			CanvasID:  req.CanvasID,
			ElementID: element.ID,
			FileID:    result.FileID,
			FilePath:  filePath,
			UserID:    req.UserID,
			Provider:  req.Provider,
		}); err != nil {
			logger.Warn(ctx, "canvas update notification failed",
				"canvas_id", req.CanvasID,
				"error", err,
			)
		}
	}

	return &imagegen.PersistedImage{
		ElementID: element.ID,
		FilePath:  filePath,
	}, nil
}

// CreateCanvas 创建画布，ID 可由客户端提供
func (s *Service) CreateCanvas(ctx context.Context, userID int64, id, name string) (*entity.Canvas, error) {
	ctx, span := tracer.Start(ctx, "canvassvc.CreateCanvas")
	defer span.End()

	canvas := entity.NewCanvas(userID, name)
	if id != "" {
		if _, err := uuid.Parse(id); err != nil {
			return nil, apperrors.ErrInvalidParam.WithDetail("canvas id must be a uuid")
		}
		canvas.ID = id
	}

	if err := s.canvasRepo.Create(ctx, canvas); err != nil {
		span.RecordError(err)
		return nil, apperrors.Wrap(err, apperrors.CodeDatabaseError, "failed to create canvas")
	}
	return canvas, nil
}

// GetCanvas 获取画布，校验归属
func (s *Service) GetCanvas(ctx context.Context, userID int64, id string) (*entity.Canvas, error) {
	canvas, err := s.canvasRepo.GetByID(ctx, id)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeDatabaseError, "failed to get canvas")
	}
	if canvas == nil || canvas.UserID != userID {
		return nil, apperrors.ErrCanvasNotFound
	}
	return canvas, nil
}

// ListCanvases 列出用户画布
func (s *Service) ListCanvases(ctx context.Context, userID int64, pagination repository.Pagination) (*repository.PagedResult[*entity.Canvas], error) {
	result, err := s.canvasRepo.ListByUser(ctx, userID, pagination)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeDatabaseError, "failed to list canvases")
	}
	return result, nil
}

// SaveCanvasData 保存画布文档与缩略图
func (s *Service) SaveCanvasData(ctx context.Context, userID int64, id string, data json.RawMessage, thumbnail string) error {
	canvas, err := s.GetCanvas(ctx, userID, id)
	if err != nil {
		return err
	}

	canvas.Data = data
	if thumbnail != "" {
		canvas.Thumbnail = thumbnail
	}
	if err := s.canvasRepo.Update(ctx, canvas); err != nil {
		return apperrors.Wrap(err, apperrors.CodeDatabaseError, "failed to save canvas data")
	}
	return nil
}

// RenameCanvas 重命名画布
func (s *Service) RenameCanvas(ctx context.Context, userID int64, id, name string) error {
	canvas, err := s.GetCanvas(ctx, userID, id)
	if err != nil {
		return err
	}

	canvas.Name = name
	if err := s.canvasRepo.Update(ctx, canvas); err != nil {
		return apperrors.Wrap(err, apperrors.CodeDatabaseError, "failed to rename canvas")
	}
	return nil
}

// DeleteCanvas 删除画布
func (s *Service) DeleteCanvas(ctx context.Context, userID int64, id string) error {
	if _, err := s.GetCanvas(ctx, userID, id); err != nil {
		return err
	}
	if err := s.canvasRepo.Delete(ctx, id); err != nil {
		return apperrors.Wrap(err, apperrors.CodeDatabaseError, "failed to delete canvas")
	}
	return nil
}

// ListElements 列出画布元素
func (s *Service) ListElements(ctx context.Context, userID int64, canvasID string) ([]*entity.CanvasElement, error) {
	if _, err := s.GetCanvas(ctx, userID, canvasID); err != nil {
		return nil, err
	}
	elements, err := s.elementRepo.ListByCanvas(ctx, canvasID)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeDatabaseError, "failed to list canvas elements")
	}
	return elements, nil
}

// CreateSession 在画布下创建会话
func (s *Service) CreateSession(ctx context.Context, userID int64, canvasID, id, title, provider, model string) (*entity.ChatSession, error) {
	if _, err := s.GetCanvas(ctx, userID, canvasID); err != nil {
		return nil, err
	}

	session := entity.NewChatSession(canvasID, userID, title)
	if id != "" {
		if _, err := uuid.Parse(id); err != nil {
			return nil, apperrors.ErrInvalidParam.WithDetail("session id must be a uuid")
		}
		session.ID = id
	}
	session.Provider = provider
	session.Model = model

	if err := s.sessionRepo.Create(ctx, session); err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeDatabaseError, "failed to create session")
	}
	return session, nil
}

// ListSessions 列出画布会话
func (s *Service) ListSessions(ctx context.Context, userID int64, canvasID string, pagination repository.Pagination) (*repository.PagedResult[*entity.ChatSession], error) {
	if _, err := s.GetCanvas(ctx, userID, canvasID); err != nil {
		return nil, err
	}
	result, err := s.sessionRepo.ListByCanvas(ctx, canvasID, pagination)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeDatabaseError, "failed to list sessions")
	}
	return result, nil
}

// AppendMessage 追加会话消息
func (s *Service) AppendMessage(ctx context.Context, userID int64, sessionID string, role entity.Role, content string, metadata json.RawMessage) (*entity.ChatMessage, error) {
	session, err := s.getOwnedSession(ctx, userID, sessionID)
	if err != nil {
		return nil, err
	}

	message := entity.NewChatMessage(session.ID, role, content, metadata)
	if err := s.messageRepo.Create(ctx, message); err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeDatabaseError, "failed to append message")
	}
	return message, nil
}

// ListMessages 列出会话消息
func (s *Service) ListMessages(ctx context.Context, userID int64, sessionID string, pagination repository.Pagination) (*repository.PagedResult[*entity.ChatMessage], error) {
	if _, err := s.getOwnedSession(ctx, userID, sessionID); err != nil {
		return nil, err
	}
	result, err := s.messageRepo.ListBySession(ctx, sessionID, pagination)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeDatabaseError, "failed to list messages")
	}
	return result, nil
}

// getOwnedSession 获取会话并校验归属
func (s *Service) getOwnedSession(ctx context.Context, userID int64, sessionID string) (*entity.ChatSession, error) {
	session, err := s.sessionRepo.GetByID(ctx, sessionID)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeDatabaseError, "failed to get session")
	}
	if session == nil || session.UserID != userID {
		return nil, apperrors.ErrSessionNotFound
	}
	return session, nil
}
