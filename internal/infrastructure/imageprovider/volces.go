// Package imageprovider 实现各图像生成后端的接入
package imageprovider

import (
	"context"

	"canvas-ai-api/internal/application/imagegen"
	"canvas-ai-api/internal/config"
)

// VolcesProvider 火山引擎视觉生成接入
type VolcesProvider struct {
	baseProvider
}

// NewVolcesProvider 创建火山引擎提供商
func NewVolcesProvider(cfg config.ProviderConfig, store BlobStore) *VolcesProvider {
	return &VolcesProvider{baseProvider: newBaseProvider("volces", cfg, store)}
}

// Name 返回提供商标识
func (p *VolcesProvider) Name() string { return p.name }

type volcesRequest struct {
	ReqKey           string   `json:"req_key"`
	Prompt           string   `json:"prompt"`
	Width            int      `json:"width"`
	Height           int      `json:"height"`
	BinaryDataBase64 []string `json:"binary_data_base64,omitempty"`
	ReturnURL        bool     `json:"return_url"`
}

type volcesResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    struct {
		BinaryDataBase64 []string `json:"binary_data_base64"`
		ImageURLs        []string `json:"image_urls"`
	} `json:"data"`
}

// Generate 调用视觉生成接口
func (p *VolcesProvider) Generate(ctx context.Context, prompt, model, aspectRatio string, inputImages []string, metadata map[string]any) (*imagegen.ProviderResult, error) {
	ctx, span := tracer.Start(ctx, "imageprovider.volces.Generate")
	defer span.End()

	width, height := imagegen.Dimensions(aspectRatio)
	payload := volcesRequest{
		ReqKey: p.model(model),
		Prompt: prompt,
		Width:  width,
		Height: height,
	}
	// 火山引擎接受 base64 裸载荷，剥去 data URL 前缀
	for _, img := range inputImages {
		payload.BinaryDataBase64 = append(payload.BinaryDataBase64, stripDataURLPrefix(img))
	}

	body, err := p.postJSON(ctx, p.cfg.BaseURL+"/cv/process", payload, nil)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	var resp volcesResponse
	if err := unmarshalResponse(p.name, body, &resp); err != nil {
		span.RecordError(err)
		return nil, err
	}
	if resp.Code != 10000 {
		return nil, imagegen.NewPermanentError(p.name, resp.Message, nil)
	}

	var data []byte
	mimeType := "image/png"
	switch {
	case len(resp.Data.BinaryDataBase64) > 0:
		data, err = p.decodeBase64Image(resp.Data.BinaryDataBase64[0])
		if err != nil {
			return nil, err
		}
	case len(resp.Data.ImageURLs) > 0:
		data, mimeType, err = p.fetchImage(ctx, resp.Data.ImageURLs[0])
		if err != nil {
			return nil, err
		}
	default:
		return nil, imagegen.NewPermanentError(p.name, "response contains no image", nil)
	}

	return p.saveResult(data, mimeType, aspectRatio)
}
