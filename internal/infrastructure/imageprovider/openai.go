// Package imageprovider 实现各图像生成后端的接入
package imageprovider

import (
	"context"
	"fmt"

	"canvas-ai-api/internal/application/imagegen"
	"canvas-ai-api/internal/config"
)

// OpenAIProvider OpenAI 图像生成接入
type OpenAIProvider struct {
	baseProvider
}

// NewOpenAIProvider 创建 OpenAI 提供商
func NewOpenAIProvider(cfg config.ProviderConfig, store BlobStore) *OpenAIProvider {
	return &OpenAIProvider{baseProvider: newBaseProvider("openai", cfg, store)}
}

// Name 返回提供商标识
func (p *OpenAIProvider) Name() string { return p.name }

type openAIRequest struct {
	Model          string `json:"model"`
	Prompt         string `json:"prompt"`
	N              int    `json:"n"`
	Size           string `json:"size"`
	ResponseFormat string `json:"response_format,omitempty"`
}

type openAIResponse struct {
	Data []struct {
		B64JSON string `json:"b64_json"`
		URL     string `json:"url"`
	} `json:"data"`
}

// Generate 调用 images/generations 接口
func (p *OpenAIProvider) Generate(ctx context.Context, prompt, model, aspectRatio string, inputImages []string, metadata map[string]any) (*imagegen.ProviderResult, error) {
	ctx, span := tracer.Start(ctx, "imageprovider.openai.Generate")
	defer span.End()

	width, height := imagegen.Dimensions(aspectRatio)
	payload := openAIRequest{
		Model:          p.model(model),
		Prompt:         prompt,
		N:              1,
		Size:           fmt.Sprintf("%dx%d", width, height),
		ResponseFormat: "b64_json",
	}

	body, err := p.postJSON(ctx, p.cfg.BaseURL+"/images/generations", payload, nil)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	var resp openAIResponse
	if err := unmarshalResponse(p.name, body, &resp); err != nil {
		span.RecordError(err)
		return nil, err
	}
	if len(resp.Data) == 0 {
		return nil, imagegen.NewPermanentError(p.name, "response contains no image", nil)
	}

	var data []byte
	mimeType := "image/png"
	switch {
	case resp.Data[0].B64JSON != "":
		data, err = p.decodeBase64Image(resp.Data[0].B64JSON)
		if err != nil {
			return nil, err
		}
	case resp.Data[0].URL != "":
		data, mimeType, err = p.fetchImage(ctx, resp.Data[0].URL)
		if err != nil {
			return nil, err
		}
	default:
		return nil, imagegen.NewPermanentError(p.name, "response contains neither payload nor url", nil)
	}

	return p.saveResult(data, mimeType, aspectRatio)
}
