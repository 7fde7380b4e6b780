package imagegen

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "canvas-ai-api/pkg/errors"
)

// fakeGate 内存额度门闸，与生产实现同样满足原子性
type fakeGate struct {
	mu      sync.Mutex
	credits int
	err     error
	calls   int
}

func (g *fakeGate) CheckAndUpdateCredits(ctx context.Context, userID int64) (bool, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.calls++
	if g.err != nil {
		return false, g.err
	}
	if g.credits <= 0 {
		return false, nil
	}
	g.credits--
	return true, nil
}

type fakeProvider struct {
	name   string
	calls  atomic.Int64
	result *ProviderResult
	err    error

	gotInputImages []string
}

func (p *fakeProvider) Name() string { return p.name }

func (p *fakeProvider) Generate(ctx context.Context, prompt, model, aspectRatio string, inputImages []string, metadata map[string]any) (*ProviderResult, error) {
	p.calls.Add(1)
	p.gotInputImages = inputImages
	if p.err != nil {
		return nil, p.err
	}
	return p.result, nil
}

type fakePersister struct {
	err   error
	calls int
}

func (f *fakePersister) SaveImage(ctx context.Context, req *GenerationRequest, result *ProviderResult) (*PersistedImage, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return &PersistedImage{
		ElementID: "el-1",
		FilePath:  "/api/file/" + result.FileID,
	}, nil
}

// dropFirstNormalizer 模拟部分图片预处理失败
type dropFirstNormalizer struct{}

func (dropFirstNormalizer) Normalize(ctx context.Context, sources []string) []string {
	if len(sources) <= 1 {
		return nil
	}
	return sources[1:]
}

type passthroughNormalizer struct{}

func (passthroughNormalizer) Normalize(ctx context.Context, sources []string) []string {
	return sources
}

func newTestOrchestrator(gate *fakeGate, provider *fakeProvider, persister *fakePersister) *Orchestrator {
	return NewOrchestrator(gate, NewRegistry(provider), passthroughNormalizer{}, persister, "http://localhost:8080")
}

func baseRequest() *GenerationRequest {
	return &GenerationRequest{
		CanvasID:    "canvas-1",
		SessionID:   "session-1",
		Provider:    "openai",
		Model:       "gpt-image-1",
		Prompt:      "a red fox in the snow",
		AspectRatio: "1:1",
		UserID:      42,
	}
}

func TestGenerateImage_Success(t *testing.T) {
	gate := &fakeGate{credits: 10}
	provider := &fakeProvider{
		name:   "openai",
		result: &ProviderResult{MimeType: "image/png", Width: 1024, Height: 1024, FileID: "abc123.png"},
	}
	persister := &fakePersister{}
	orch := newTestOrchestrator(gate, provider, persister)

	resp, err := orch.GenerateImage(context.Background(), baseRequest())
	require.NoError(t, err)
	assert.Equal(t, "image generated successfully ![image_id: abc123.png](http://localhost:8080/api/file/abc123.png)", resp)
	assert.Equal(t, 9, gate.credits)
	assert.Equal(t, 1, persister.calls)
}

func TestGenerateImage_Unauthenticated(t *testing.T) {
	gate := &fakeGate{credits: 10}
	provider := &fakeProvider{name: "openai"}
	orch := newTestOrchestrator(gate, provider, &fakePersister{})

	req := baseRequest()
	req.UserID = 0

	_, err := orch.GenerateImage(context.Background(), req)
	require.Error(t, err)
	appErr := apperrors.AsAppError(err)
	assert.Equal(t, apperrors.CodeUnauthorized, appErr.Code)
	// 未认证请求不得触碰额度或提供商
	assert.Equal(t, 0, gate.calls)
	assert.Equal(t, int64(0), provider.calls.Load())
}

func TestGenerateImage_QuotaExhausted(t *testing.T) {
	gate := &fakeGate{credits: 0}
	provider := &fakeProvider{name: "openai"}
	orch := newTestOrchestrator(gate, provider, &fakePersister{})

	_, err := orch.GenerateImage(context.Background(), baseRequest())
	require.Error(t, err)
	appErr := apperrors.AsAppError(err)
	assert.Equal(t, apperrors.CodeQuotaExhausted, appErr.Code)
	assert.Equal(t, 429, appErr.HTTPStatus)
	assert.Equal(t, int64(0), provider.calls.Load())
}

func TestGenerateImage_RepeatUntilExhausted(t *testing.T) {
	gate := &fakeGate{credits: 10}
	provider := &fakeProvider{
		name:   "openai",
		result: &ProviderResult{MimeType: "image/png", Width: 1024, Height: 1024, FileID: "f.png"},
	}
	orch := newTestOrchestrator(gate, provider, &fakePersister{})

	for i := 0; i < 10; i++ {
		_, err := orch.GenerateImage(context.Background(), baseRequest())
		require.NoError(t, err, "request %d", i)
	}

	_, err := orch.GenerateImage(context.Background(), baseRequest())
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeQuotaExhausted, apperrors.AsAppError(err).Code)
	assert.Equal(t, int64(10), provider.calls.Load())
}

func TestGenerateImage_ConcurrentNoDoubleSpend(t *testing.T) {
	const credits = 5
	const attempts = 20

	gate := &fakeGate{credits: credits}
	provider := &fakeProvider{
		name:   "openai",
		result: &ProviderResult{MimeType: "image/png", Width: 1024, Height: 1024, FileID: "f.png"},
	}
	orch := newTestOrchestrator(gate, provider, &fakePersister{})

	var wg sync.WaitGroup
	var admitted, denied atomic.Int64
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := orch.GenerateImage(context.Background(), baseRequest())
			if err == nil {
				admitted.Add(1)
				return
			}
			if apperrors.AsAppError(err).Code == apperrors.CodeQuotaExhausted {
				denied.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int64(credits), admitted.Load())
	assert.Equal(t, int64(attempts-credits), denied.Load())
	assert.Equal(t, int64(credits), provider.calls.Load())
}

func TestGenerateImage_UnknownProviderAfterAdmission(t *testing.T) {
	gate := &fakeGate{credits: 3}
	provider := &fakeProvider{name: "openai"}
	orch := newTestOrchestrator(gate, provider, &fakePersister{})

	req := baseRequest()
	req.Provider = "nonexistent"

	_, err := orch.GenerateImage(context.Background(), req)
	require.Error(t, err)
	appErr := apperrors.AsAppError(err)
	assert.Equal(t, apperrors.CodeUnknownProvider, appErr.Code)
	assert.Equal(t, 400, appErr.HTTPStatus)
	// 解析在准入之后，额度已被扣减且不退还
	assert.Equal(t, 2, gate.credits)
}

func TestGenerateImage_GateError(t *testing.T) {
	gate := &fakeGate{err: errors.New("connection refused")}
	provider := &fakeProvider{name: "openai"}
	orch := newTestOrchestrator(gate, provider, &fakePersister{})

	_, err := orch.GenerateImage(context.Background(), baseRequest())
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeDatabaseError, apperrors.AsAppError(err).Code)
	assert.Equal(t, int64(0), provider.calls.Load())
}

func TestGenerateImage_PartialPreprocess(t *testing.T) {
	gate := &fakeGate{credits: 10}
	provider := &fakeProvider{
		name:   "openai",
		result: &ProviderResult{MimeType: "image/png", Width: 1024, Height: 1024, FileID: "f.png"},
	}
	orch := NewOrchestrator(gate, NewRegistry(provider), dropFirstNormalizer{}, &fakePersister{}, "http://localhost:8080")

	req := baseRequest()
	req.InputImages = []string{"broken-ref", "data:image/png;base64,AA==", "data:image/png;base64,BB=="}

	_, err := orch.GenerateImage(context.Background(), req)
	require.NoError(t, err)
	// 单张失败只丢弃该张，顺序保持
	assert.Equal(t, []string{"data:image/png;base64,AA==", "data:image/png;base64,BB=="}, provider.gotInputImages)
}

func TestGenerateImage_ProviderTransientFailure(t *testing.T) {
	gate := &fakeGate{credits: 10}
	provider := &fakeProvider{
		name: "openai",
		err:  NewTransientError("openai", "rate limited", fmt.Errorf("status 429")),
	}
	persister := &fakePersister{}
	orch := newTestOrchestrator(gate, provider, persister)

	_, err := orch.GenerateImage(context.Background(), baseRequest())
	require.Error(t, err)
	appErr := apperrors.AsAppError(err)
	assert.Equal(t, apperrors.CodeProviderUnreachable, appErr.Code)
	assert.Equal(t, 502, appErr.HTTPStatus)
	// 提供商失败不退还额度，不触发持久化
	assert.Equal(t, 9, gate.credits)
	assert.Equal(t, 0, persister.calls)
}

func TestGenerateImage_ProviderPermanentFailure(t *testing.T) {
	gate := &fakeGate{credits: 10}
	provider := &fakeProvider{
		name: "openai",
		err:  NewPermanentError("openai", "prompt rejected by safety filter", nil),
	}
	orch := newTestOrchestrator(gate, provider, &fakePersister{})

	_, err := orch.GenerateImage(context.Background(), baseRequest())
	require.Error(t, err)
	appErr := apperrors.AsAppError(err)
	assert.Equal(t, apperrors.CodeGenerationRejected, appErr.Code)
	assert.Equal(t, 422, appErr.HTTPStatus)
}

func TestGenerateImage_PersistenceFailureDistinct(t *testing.T) {
	gate := &fakeGate{credits: 10}
	provider := &fakeProvider{
		name:   "openai",
		result: &ProviderResult{MimeType: "image/png", Width: 1024, Height: 1024, FileID: "f.png"},
	}
	persister := &fakePersister{err: errors.New("insert failed")}
	orch := newTestOrchestrator(gate, provider, persister)

	_, err := orch.GenerateImage(context.Background(), baseRequest())
	require.Error(t, err)
	appErr := apperrors.AsAppError(err)
	// 持久化失败与提供商失败必须可区分
	assert.Equal(t, apperrors.CodePersistenceFailed, appErr.Code)
	assert.Equal(t, int64(1), provider.calls.Load())
}

func TestRegistryLookup(t *testing.T) {
	p1 := &fakeProvider{name: "openai"}
	p2 := &fakeProvider{name: "replicate"}
	reg := NewRegistry(p1, p2)

	got, ok := reg.Lookup("openai")
	require.True(t, ok)
	assert.Equal(t, "openai", got.Name())

	_, ok = reg.Lookup("comfyui")
	assert.False(t, ok)

	assert.Equal(t, []string{"openai", "replicate"}, reg.Names())
}

func TestDimensions(t *testing.T) {
	w, h := Dimensions("16:9")
	assert.Equal(t, 1792, w)
	assert.Equal(t, 1024, h)

	w, h = Dimensions("unknown")
	assert.Equal(t, 1024, w)
	assert.Equal(t, 1024, h)
}
