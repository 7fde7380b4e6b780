package imageprovider

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"canvas-ai-api/internal/application/imagegen"
	"canvas-ai-api/internal/config"
)

type memStore struct {
	saved [][]byte
	mimes []string
}

func (s *memStore) Save(data []byte, mimeType string) (string, error) {
	s.saved = append(s.saved, data)
	s.mimes = append(s.mimes, mimeType)
	return fmt.Sprintf("file-%d.png", len(s.saved)), nil
}

func providerConfig(baseURL string) config.ProviderConfig {
	return config.ProviderConfig{
		APIKey:  "test-key",
		BaseURL: baseURL,
		Model:   "test-model",
		Timeout: 5 * time.Second,
	}
}

func TestOpenAIGenerate_B64(t *testing.T) {
	imageBytes := []byte("png-payload")
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/images/generations", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		var req map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "test-model", req["model"])
		assert.Equal(t, "1024x1024", req["size"])

		json.NewEncoder(w).Encode(map[string]any{
			"data": []map[string]string{
				{"b64_json": base64.StdEncoding.EncodeToString(imageBytes)},
			},
		})
	}))
	defer srv.Close()

	store := &memStore{}
	p := NewOpenAIProvider(providerConfig(srv.URL), store)

	result, err := p.Generate(context.Background(), "a fox", "", "1:1", nil, nil)
	require.NoError(t, err)
	assert.Equal(t, "image/png", result.MimeType)
	assert.Equal(t, "file-1.png", result.FileID)
	// 载荷不是合法图像，尺寸按宽高比回退
	assert.Equal(t, 1024, result.Width)
	assert.Equal(t, 1024, result.Height)
	require.Len(t, store.saved, 1)
	assert.Equal(t, imageBytes, store.saved[0])
}

func TestOpenAIGenerate_RateLimitedIsTransient(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"rate limit"}`, http.StatusTooManyRequests)
	}))
	defer srv.Close()

	p := NewOpenAIProvider(providerConfig(srv.URL), &memStore{})
	_, err := p.Generate(context.Background(), "a fox", "", "1:1", nil, nil)
	require.Error(t, err)

	pe, ok := imagegen.AsProviderError(err)
	require.True(t, ok)
	assert.Equal(t, imagegen.ErrorClassTransient, pe.Class)
}

func TestOpenAIGenerate_BadRequestIsPermanent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"prompt rejected"}`, http.StatusBadRequest)
	}))
	defer srv.Close()

	p := NewOpenAIProvider(providerConfig(srv.URL), &memStore{})
	_, err := p.Generate(context.Background(), "a fox", "", "1:1", nil, nil)
	require.Error(t, err)

	pe, ok := imagegen.AsProviderError(err)
	require.True(t, ok)
	assert.Equal(t, imagegen.ErrorClassPermanent, pe.Class)
}

func TestOpenAIGenerate_NetworkErrorIsTransient(t *testing.T) {
	// 指向已关闭的端口
	p := NewOpenAIProvider(providerConfig("http://127.0.0.1:1"), &memStore{})
	_, err := p.Generate(context.Background(), "a fox", "", "1:1", nil, nil)
	require.Error(t, err)

	pe, ok := imagegen.AsProviderError(err)
	require.True(t, ok)
	assert.Equal(t, imagegen.ErrorClassTransient, pe.Class)
}

func TestReplicateGenerate_OutputURL(t *testing.T) {
	mux := http.NewServeMux()
	var srv *httptest.Server
	mux.HandleFunc("/models/test-model/predictions", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "wait", r.Header.Get("Prefer"))
		json.NewEncoder(w).Encode(map[string]any{
			"status": "succeeded",
			"output": srv.URL + "/out.png",
		})
	})
	mux.HandleFunc("/out.png", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/png")
		w.Write([]byte("result-bytes"))
	})
	srv = httptest.NewServer(mux)
	defer srv.Close()

	store := &memStore{}
	p := NewReplicateProvider(providerConfig(srv.URL), store)

	result, err := p.Generate(context.Background(), "a fox", "", "16:9", nil, nil)
	require.NoError(t, err)
	assert.Equal(t, "image/png", result.MimeType)
	assert.Equal(t, 1792, result.Width)
	assert.Equal(t, 1024, result.Height)
	require.Len(t, store.saved, 1)
	assert.Equal(t, []byte("result-bytes"), store.saved[0])
}

func TestReplicateGenerate_FailedIsPermanent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"status": "failed",
			"error":  "nsfw content detected",
		})
	}))
	defer srv.Close()

	p := NewReplicateProvider(providerConfig(srv.URL), &memStore{})
	_, err := p.Generate(context.Background(), "a fox", "", "1:1", nil, nil)
	require.Error(t, err)

	pe, ok := imagegen.AsProviderError(err)
	require.True(t, ok)
	assert.Equal(t, imagegen.ErrorClassPermanent, pe.Class)
	assert.Contains(t, pe.Message, "nsfw")
}

func TestWavespeedGenerate_Polling(t *testing.T) {
	var polls int
	mux := http.NewServeMux()
	var srv *httptest.Server
	mux.HandleFunc("/test-model", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"data": map[string]string{"id": "task-1"},
		})
	})
	mux.HandleFunc("/predictions/task-1/result", func(w http.ResponseWriter, r *http.Request) {
		polls++
		if polls < 3 {
			json.NewEncoder(w).Encode(map[string]any{
				"data": map[string]any{"status": "processing"},
			})
			return
		}
		json.NewEncoder(w).Encode(map[string]any{
			"data": map[string]any{
				"status":  "completed",
				"outputs": []string{srv.URL + "/out.png"},
			},
		})
	})
	mux.HandleFunc("/out.png", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/png")
		w.Write([]byte("ws-bytes"))
	})
	srv = httptest.NewServer(mux)
	defer srv.Close()

	store := &memStore{}
	p := NewWavespeedProvider(providerConfig(srv.URL), store)
	p.pollInterval = time.Millisecond

	result, err := p.Generate(context.Background(), "a fox", "", "1:1", nil, nil)
	require.NoError(t, err)
	assert.Equal(t, 3, polls)
	assert.Equal(t, "file-1.png", result.FileID)
}

func TestVolcesGenerate_B64(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/cv/process", r.URL.Path)
		json.NewEncoder(w).Encode(map[string]any{
			"code": 10000,
			"data": map[string]any{
				"binary_data_base64": []string{base64.StdEncoding.EncodeToString([]byte("volces-bytes"))},
			},
		})
	}))
	defer srv.Close()

	store := &memStore{}
	p := NewVolcesProvider(providerConfig(srv.URL), store)

	result, err := p.Generate(context.Background(), "a fox", "", "1:1", nil, nil)
	require.NoError(t, err)
	assert.Equal(t, "file-1.png", result.FileID)
	require.Len(t, store.saved, 1)
	assert.Equal(t, []byte("volces-bytes"), store.saved[0])
}

func TestVolcesGenerate_APIErrorIsPermanent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"code":    50001,
			"message": "invalid req_key",
		})
	}))
	defer srv.Close()

	p := NewVolcesProvider(providerConfig(srv.URL), &memStore{})
	_, err := p.Generate(context.Background(), "a fox", "", "1:1", nil, nil)
	require.Error(t, err)

	pe, ok := imagegen.AsProviderError(err)
	require.True(t, ok)
	assert.Equal(t, imagegen.ErrorClassPermanent, pe.Class)
}

func TestBuildRegistry(t *testing.T) {
	cfg := config.ImageGenConfig{
		Providers: map[string]config.ProviderConfig{
			"openai":    {APIKey: "k"},
			"replicate": {APIKey: "k"},
			"unknown":   {APIKey: "k"},
		},
	}

	reg := BuildRegistry(cfg, &memStore{})
	assert.Equal(t, []string{"openai", "replicate"}, reg.Names())
}
