// Package imagegen 实现图像生成编排
package imagegen

import (
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"canvas-ai-api/internal/infrastructure/assets"
	"canvas-ai-api/internal/infrastructure/persistence/redis"
	"canvas-ai-api/pkg/logger"
	"canvas-ai-api/pkg/metrics"
)

var preprocessTracer = otel.Tracer("imagegen.preprocess")

// maxInputImageBytes 单张输入图片的大小上限
const maxInputImageBytes = 20 << 20

// ByteCache 归一化结果缓存接口
type ByteCache interface {
	GetOrLoad(ctx context.Context, key string, ttl time.Duration, loader func() ([]byte, error)) ([]byte, error)
}

// FileOpener 文件存储读取接口
type FileOpener interface {
	Open(fileID string) (io.ReadCloser, error)
}

// Preprocessor 输入图片预处理器
// 将调用方给出的图片引用（data URL、远程 URL、文件 ID）逐张
// 归一化为 base64 data URL。单张失败只丢弃该张，不中断请求。
type Preprocessor struct {
	cache      ByteCache
	store      FileOpener
	httpClient *http.Client
	cacheTTL   time.Duration
}

// NewPreprocessor 创建预处理器，cache 可为 nil（直接加载）
func NewPreprocessor(cache ByteCache, store FileOpener, cacheTTL time.Duration) *Preprocessor {
	if cacheTTL <= 0 {
		cacheTTL = 10 * time.Minute
	}
	return &Preprocessor{
		cache:      cache,
		store:      store,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		cacheTTL:   cacheTTL,
	}
}

// Normalize 逐张归一化，失败的图片被丢弃，输出顺序与输入一致
func (p *Preprocessor) Normalize(ctx context.Context, sources []string) []string {
	if len(sources) == 0 {
		return nil
	}

	ctx, span := preprocessTracer.Start(ctx, "preprocess.Normalize")
	span.SetAttributes(attribute.Int("preprocess.input_count", len(sources)))
	defer span.End()

	out := make([]string, 0, len(sources))
	for _, source := range sources {
		normalized, err := p.normalizeOne(ctx, source)
		if err != nil {
			metrics.InputImagesSkippedTotal.Inc()
			logger.Warn(ctx, "skipping input image",
				"source", truncateSource(source),
				"error", err,
			)
			continue
		}
		out = append(out, normalized)
	}

	span.SetAttributes(attribute.Int("preprocess.output_count", len(out)))
	return out
}

// normalizeOne 归一化单张图片引用
func (p *Preprocessor) normalizeOne(ctx context.Context, source string) (string, error) {
	// data URL 直接透传
	if strings.HasPrefix(source, "data:") {
		return source, nil
	}

	loader := func() ([]byte, error) {
		metrics.PreprocessCacheHits.WithLabelValues("miss").Inc()
		data, err := p.load(ctx, source)
		if err != nil {
			return nil, err
		}
		return []byte(data), nil
	}

	if p.cache == nil {
		data, err := loader()
		if err != nil {
			return "", err
		}
		return string(data), nil
	}

	key := redis.BuildPreprocessKey(source)
	loaded := false
	data, err := p.cache.GetOrLoad(ctx, key, p.cacheTTL, func() ([]byte, error) {
		loaded = true
		return loader()
	})
	if err != nil {
		return "", err
	}
	if !loaded {
		metrics.PreprocessCacheHits.WithLabelValues("hit").Inc()
	}
	return string(data), nil
}

// load 从远程 URL 或文件存储取回图片并编码为 data URL
func (p *Preprocessor) load(ctx context.Context, source string) (string, error) {
	if strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://") {
		return p.download(ctx, source)
	}
	return p.readFromStore(source)
}

// download 下载远程图片
func (p *Preprocessor) download(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetch image: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("fetch image: unexpected status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxInputImageBytes+1))
	if err != nil {
		return "", fmt.Errorf("read image body: %w", err)
	}
	if len(data) > maxInputImageBytes {
		return "", fmt.Errorf("image exceeds %d bytes", maxInputImageBytes)
	}

	mimeType := resp.Header.Get("Content-Type")
	if mimeType == "" || !strings.HasPrefix(mimeType, "image/") {
		mimeType = http.DetectContentType(data)
	}
	if !strings.HasPrefix(mimeType, "image/") {
		return "", fmt.Errorf("not an image: %s", mimeType)
	}

	return toDataURL(mimeType, data), nil
}

// readFromStore 按文件 ID 从本地文件存储读取
func (p *Preprocessor) readFromStore(fileID string) (string, error) {
	if p.store == nil {
		return "", fmt.Errorf("unresolvable image reference: %q", fileID)
	}

	rc, err := p.store.Open(fileID)
	if err != nil {
		return "", err
	}
	defer rc.Close()

	data, err := io.ReadAll(io.LimitReader(rc, maxInputImageBytes+1))
	if err != nil {
		return "", fmt.Errorf("read stored image: %w", err)
	}
	if len(data) > maxInputImageBytes {
		return "", fmt.Errorf("image exceeds %d bytes", maxInputImageBytes)
	}

	return toDataURL(assets.MimeTypeByExt(fileID), data), nil
}

// toDataURL 编码为 base64 data URL
func toDataURL(mimeType string, data []byte) string {
	return fmt.Sprintf("data:%s;base64,%s", mimeType, base64.StdEncoding.EncodeToString(data))
}

// truncateSource 日志中截断长引用（data URL 可能非常长）
func truncateSource(source string) string {
	if len(source) > 64 {
		return source[:64] + "..."
	}
	return source
}
