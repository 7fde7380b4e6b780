// Package imageprovider 实现各图像生成后端的接入
package imageprovider

import (
	"context"

	"canvas-ai-api/internal/application/imagegen"
	"canvas-ai-api/internal/config"
)

// JaazProvider Jaaz 中转服务接入（OpenAI 兼容，支持参考图）
type JaazProvider struct {
	baseProvider
}

// NewJaazProvider 创建 Jaaz 提供商
func NewJaazProvider(cfg config.ProviderConfig, store BlobStore) *JaazProvider {
	return &JaazProvider{baseProvider: newBaseProvider("jaaz", cfg, store)}
}

// Name 返回提供商标识
func (p *JaazProvider) Name() string { return p.name }

type jaazRequest struct {
	Model       string   `json:"model"`
	Prompt      string   `json:"prompt"`
	AspectRatio string   `json:"aspect_ratio"`
	InputImages []string `json:"input_images,omitempty"`
}

type jaazResponse struct {
	ResultURL string `json:"result_url"`
	B64Image  string `json:"image_data"`
	Error     string `json:"error"`
}

// Generate 调用 Jaaz 生成接口
func (p *JaazProvider) Generate(ctx context.Context, prompt, model, aspectRatio string, inputImages []string, metadata map[string]any) (*imagegen.ProviderResult, error) {
	ctx, span := tracer.Start(ctx, "imageprovider.jaaz.Generate")
	defer span.End()

	payload := jaazRequest{
		Model:       p.model(model),
		Prompt:      prompt,
		AspectRatio: aspectRatio,
		InputImages: inputImages,
	}

	body, err := p.postJSON(ctx, p.cfg.BaseURL+"/image/generations", payload, nil)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	var resp jaazResponse
	if err := unmarshalResponse(p.name, body, &resp); err != nil {
		span.RecordError(err)
		return nil, err
	}
	if resp.Error != "" {
		return nil, imagegen.NewPermanentError(p.name, resp.Error, nil)
	}

	var data []byte
	mimeType := "image/png"
	switch {
	case resp.B64Image != "":
		data, err = p.decodeBase64Image(resp.B64Image)
		if err != nil {
			return nil, err
		}
	case resp.ResultURL != "":
		data, mimeType, err = p.fetchImage(ctx, resp.ResultURL)
		if err != nil {
			return nil, err
		}
	default:
		return nil, imagegen.NewPermanentError(p.name, "response contains no image", nil)
	}

	return p.saveResult(data, mimeType, aspectRatio)
}
