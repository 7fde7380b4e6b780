// Package imageprovider 实现各图像生成后端的接入
package imageprovider

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/otel"

	"canvas-ai-api/internal/application/imagegen"
	"canvas-ai-api/internal/config"
)

var tracer = otel.Tracer("imageprovider")

// maxResponseBytes 单次响应体读取上限
const maxResponseBytes = 64 << 20

// BlobStore 产物落盘接口
type BlobStore interface {
	Save(data []byte, mimeType string) (string, error)
}

// baseProvider 各提供商共用的 HTTP 接入能力
type baseProvider struct {
	name   string
	cfg    config.ProviderConfig
	store  BlobStore
	client *http.Client
}

func newBaseProvider(name string, cfg config.ProviderConfig, store BlobStore) baseProvider {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 2 * time.Minute
	}
	return baseProvider{
		name:   name,
		cfg:    cfg,
		store:  store,
		client: &http.Client{Timeout: timeout},
	}
}

// postJSON 发送 JSON 请求，返回响应体；非 2xx 状态映射为 ProviderError
func (b *baseProvider) postJSON(ctx context.Context, url string, payload any, headers map[string]string) ([]byte, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, imagegen.NewPermanentError(b.name, "failed to encode request", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, imagegen.NewPermanentError(b.name, "failed to build request", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+b.cfg.APIKey)
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	return b.do(req)
}

// getJSON 发送 GET 请求
func (b *baseProvider) getJSON(ctx context.Context, url string, headers map[string]string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, imagegen.NewPermanentError(b.name, "failed to build request", err)
	}
	req.Header.Set("Authorization", "Bearer "+b.cfg.APIKey)
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	return b.do(req)
}

func (b *baseProvider) do(req *http.Request) ([]byte, error) {
	resp, err := b.client.Do(req)
	if err != nil {
		// 网络/超时错误一律按瞬时处理
		return nil, imagegen.NewTransientError(b.name, "request failed", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, imagegen.NewTransientError(b.name, "failed to read response", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, b.classifyStatus(resp.StatusCode, body)
	}
	return body, nil
}

// classifyStatus HTTP 状态码到失败分类的映射
// 408/429/5xx 可重试，其余 4xx 为请求本身的问题
func (b *baseProvider) classifyStatus(status int, body []byte) *imagegen.ProviderError {
	msg := fmt.Sprintf("unexpected status %d: %s", status, truncateBody(body))
	if status == http.StatusRequestTimeout || status == http.StatusTooManyRequests || status >= 500 {
		return imagegen.NewTransientError(b.name, msg, nil)
	}
	return imagegen.NewPermanentError(b.name, msg, nil)
}

// fetchImage 下载生成结果
func (b *baseProvider) fetchImage(ctx context.Context, url string) ([]byte, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, "", imagegen.NewPermanentError(b.name, "failed to build download request", err)
	}

	resp, err := b.client.Do(req)
	if err != nil {
		return nil, "", imagegen.NewTransientError(b.name, "failed to download image", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, "", imagegen.NewTransientError(b.name,
			fmt.Sprintf("image download returned status %d", resp.StatusCode), nil)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, "", imagegen.NewTransientError(b.name, "failed to read image body", err)
	}

	mimeType := resp.Header.Get("Content-Type")
	if !strings.HasPrefix(mimeType, "image/") {
		mimeType = http.DetectContentType(data)
	}
	return data, mimeType, nil
}

// saveResult 落盘并构造统一结果，尺寸优先从图像头解出
func (b *baseProvider) saveResult(data []byte, mimeType, aspectRatio string) (*imagegen.ProviderResult, error) {
	width, height := decodeDims(data, aspectRatio)

	fileID, err := b.store.Save(data, mimeType)
	if err != nil {
		return nil, imagegen.NewTransientError(b.name, "failed to store image", err)
	}

	return &imagegen.ProviderResult{
		MimeType: mimeType,
		Width:    width,
		Height:   height,
		FileID:   fileID,
	}, nil
}

// decodeDims 解析图像实际尺寸，无法解析时按宽高比推算
func decodeDims(data []byte, aspectRatio string) (int, int) {
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err == nil && cfg.Width > 0 && cfg.Height > 0 {
		return cfg.Width, cfg.Height
	}
	return imagegen.Dimensions(aspectRatio)
}

// decodeBase64Image 解码 b64 响应载荷
func (b *baseProvider) decodeBase64Image(encoded string) ([]byte, error) {
	// 容忍带 data URL 前缀的载荷
	if idx := strings.Index(encoded, ";base64,"); idx >= 0 {
		encoded = encoded[idx+len(";base64,"):]
	}
	data, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, imagegen.NewPermanentError(b.name, "invalid base64 image payload", err)
	}
	return data, nil
}

// model 请求未指定模型时使用配置默认值
func (b *baseProvider) model(requested string) string {
	if requested != "" {
		return requested
	}
	return b.cfg.Model
}

// stripDataURLPrefix 去掉 data URL 前缀，保留裸 base64
func stripDataURLPrefix(s string) string {
	if idx := strings.Index(s, ";base64,"); idx >= 0 {
		return s[idx+len(";base64,"):]
	}
	return s
}

// unmarshalResponse 解析提供商响应，格式错误按永久失败处理
func unmarshalResponse(name string, body []byte, v any) error {
	if err := json.Unmarshal(body, v); err != nil {
		return imagegen.NewPermanentError(name,
			fmt.Sprintf("failed to decode response: %s", truncateBody(body)), err)
	}
	return nil
}

func truncateBody(body []byte) string {
	s := string(body)
	if len(s) > 256 {
		return s[:256] + "..."
	}
	return s
}
