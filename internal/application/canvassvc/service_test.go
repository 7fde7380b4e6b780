package canvassvc

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"canvas-ai-api/internal/application/imagegen"
	"canvas-ai-api/internal/domain/entity"
	"canvas-ai-api/internal/domain/repository"
	"canvas-ai-api/internal/infrastructure/messaging"
)

type memArtifactRepo struct {
	artifacts []*entity.CanvasArtifact
	err       error
}

func (r *memArtifactRepo) Create(ctx context.Context, a *entity.CanvasArtifact) error {
	if r.err != nil {
		return r.err
	}
	r.artifacts = append(r.artifacts, a)
	return nil
}
func (r *memArtifactRepo) GetByFileID(ctx context.Context, fileID string) (*entity.CanvasArtifact, error) {
	for _, a := range r.artifacts {
		if a.FileID == fileID {
			return a, nil
		}
	}
	return nil, nil
}
func (r *memArtifactRepo) ListByCanvas(ctx context.Context, canvasID string, p repository.Pagination) (*repository.PagedResult[*entity.CanvasArtifact], error) {
	return repository.NewPagedResult(r.artifacts, int64(len(r.artifacts)), p), nil
}

type memElementRepo struct {
	elements []*entity.CanvasElement
	err      error
}

func (r *memElementRepo) Create(ctx context.Context, e *entity.CanvasElement) error {
	if r.err != nil {
		return r.err
	}
	r.elements = append(r.elements, e)
	return nil
}
func (r *memElementRepo) ListByCanvas(ctx context.Context, canvasID string) ([]*entity.CanvasElement, error) {
	return r.elements, nil
}
func (r *memElementRepo) Delete(ctx context.Context, id string) error { return nil }

type memMessageRepo struct {
	messages []*entity.ChatMessage
	err      error
}

func (r *memMessageRepo) Create(ctx context.Context, m *entity.ChatMessage) error {
	if r.err != nil {
		return r.err
	}
	r.messages = append(r.messages, m)
	return nil
}
func (r *memMessageRepo) ListBySession(ctx context.Context, sessionID string, p repository.Pagination) (*repository.PagedResult[*entity.ChatMessage], error) {
	return repository.NewPagedResult(r.messages, int64(len(r.messages)), p), nil
}

type passTx struct{ calls int }

func (t *passTx) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	t.calls++
	return fn(ctx)
}

type fakeNotifier struct {
	events []*messaging.CanvasUpdateMessage
	err    error
}

func (n *fakeNotifier) PublishCanvasUpdate(ctx context.Context, event *messaging.CanvasUpdateMessage) (string, error) {
	if n.err != nil {
		return "", n.err
	}
	n.events = append(n.events, event)
	return "1-0", nil
}

func newPersistFixture(notifier Notifier) (*Service, *memArtifactRepo, *memElementRepo, *memMessageRepo, *passTx) {
	artifacts := &memArtifactRepo{}
	elements := &memElementRepo{}
	messages := &memMessageRepo{}
	tx := &passTx{}
	svc := NewService(nil, elements, nil, messages, artifacts, tx, notifier, "/api/file")
	return svc, artifacts, elements, messages, tx
}

func saveRequest() (*imagegen.GenerationRequest, *imagegen.ProviderResult) {
	return &imagegen.GenerationRequest{
			CanvasID:  "canvas-1",
			SessionID: "session-1",
			Provider:  "openai",
			Model:     "gpt-image-1",
			Prompt:    "a fox",
			UserID:    42,
		}, &imagegen.ProviderResult{
			MimeType: "image/png",
			Width:    1024,
			Height:   768,
			FileID:   "abc123.png",
		}
}

func TestSaveImage(t *testing.T) {
	notifier := &fakeNotifier{}
	svc, artifacts, elements, messages, tx := newPersistFixture(notifier)

	req, result := saveRequest()
	persisted, err := svc.SaveImage(context.Background(), req, result)
	require.NoError(t, err)

	assert.Equal(t, "/api/file/abc123.png", persisted.FilePath)
	assert.Equal(t, 1, tx.calls)

	// 产物记录恰好一条
	require.Len(t, artifacts.artifacts, 1)
	artifact := artifacts.artifacts[0]
	assert.Equal(t, "abc123.png", artifact.FileID)
	assert.Equal(t, "canvas-1", artifact.CanvasID)
	assert.Equal(t, int64(42), artifact.UserID)
	assert.Equal(t, 1024, artifact.Width)
	assert.Equal(t, 768, artifact.Height)

	// 画布元素与会话消息各一条
	require.Len(t, elements.elements, 1)
	assert.Equal(t, entity.CanvasElementImage, elements.elements[0].Type)
	require.Len(t, messages.messages, 1)
	assert.Equal(t, entity.RoleAssistant, messages.messages[0].Role)
	assert.Contains(t, messages.messages[0].Content, "/api/file/abc123.png")

	// 通知包含元素信息
	require.Len(t, notifier.events, 1)
	assert.Equal(t, persisted.ElementID, notifier.events[0].ElementID)
}

func TestSaveImage_NotifyFailureIgnored(t *testing.T) {
	notifier := &fakeNotifier{err: errors.New("stream unavailable")}
	svc, artifacts, _, _, _ := newPersistFixture(notifier)

	req, result := saveRequest()
	persisted, err := svc.SaveImage(context.Background(), req, result)
	require.NoError(t, err)
	assert.NotEmpty(t, persisted.FilePath)
	assert.Len(t, artifacts.artifacts, 1)
}

func TestSaveImage_RepoFailurePropagates(t *testing.T) {
	notifier := &fakeNotifier{}
	svc, artifacts, _, _, _ := newPersistFixture(notifier)
	artifacts.err = errors.New("insert failed")

	req, result := saveRequest()
	_, err := svc.SaveImage(context.Background(), req, result)
	require.Error(t, err)
	// 失败时不发通知
	assert.Empty(t, notifier.events)
}
