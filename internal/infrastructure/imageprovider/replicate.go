// Package imageprovider 实现各图像生成后端的接入
package imageprovider

import (
	"context"
	"encoding/json"
	"fmt"

	"canvas-ai-api/internal/application/imagegen"
	"canvas-ai-api/internal/config"
)

// ReplicateProvider Replicate 接入，使用同步等待模式
type ReplicateProvider struct {
	baseProvider
}

// NewReplicateProvider 创建 Replicate 提供商
func NewReplicateProvider(cfg config.ProviderConfig, store BlobStore) *ReplicateProvider {
	return &ReplicateProvider{baseProvider: newBaseProvider("replicate", cfg, store)}
}

// Name 返回提供商标识
func (p *ReplicateProvider) Name() string { return p.name }

type replicateInput struct {
	Prompt      string `json:"prompt"`
	AspectRatio string `json:"aspect_ratio,omitempty"`
	Image       string `json:"input_image,omitempty"`
}

type replicateRequest struct {
	Input replicateInput `json:"input"`
}

type replicateResponse struct {
	Status string          `json:"status"`
	Output json.RawMessage `json:"output"`
	Error  string          `json:"error"`
}

// Generate 创建 prediction 并等待结果
func (p *ReplicateProvider) Generate(ctx context.Context, prompt, model, aspectRatio string, inputImages []string, metadata map[string]any) (*imagegen.ProviderResult, error) {
	ctx, span := tracer.Start(ctx, "imageprovider.replicate.Generate")
	defer span.End()

	input := replicateInput{
		Prompt:      prompt,
		AspectRatio: aspectRatio,
	}
	// Replicate 的图生图模型只接受单张参考图
	if len(inputImages) > 0 {
		input.Image = inputImages[0]
	}

	url := fmt.Sprintf("%s/models/%s/predictions", p.cfg.BaseURL, p.model(model))
	body, err := p.postJSON(ctx, url, replicateRequest{Input: input}, map[string]string{
		"Prefer": "wait",
	})
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	var resp replicateResponse
	if err := unmarshalResponse(p.name, body, &resp); err != nil {
		span.RecordError(err)
		return nil, err
	}

	switch resp.Status {
	case "succeeded":
	case "failed", "canceled":
		msg := resp.Error
		if msg == "" {
			msg = "prediction " + resp.Status
		}
		return nil, imagegen.NewPermanentError(p.name, msg, nil)
	default:
		return nil, imagegen.NewTransientError(p.name,
			fmt.Sprintf("prediction did not complete: status %q", resp.Status), nil)
	}

	outputURL, err := p.extractOutputURL(resp.Output)
	if err != nil {
		return nil, err
	}

	data, mimeType, err := p.fetchImage(ctx, outputURL)
	if err != nil {
		return nil, err
	}

	return p.saveResult(data, mimeType, aspectRatio)
}

// extractOutputURL output 可能是字符串或字符串数组
func (p *ReplicateProvider) extractOutputURL(raw json.RawMessage) (string, error) {
	var single string
	if err := json.Unmarshal(raw, &single); err == nil && single != "" {
		return single, nil
	}

	var many []string
	if err := json.Unmarshal(raw, &many); err == nil && len(many) > 0 {
		return many[0], nil
	}

	return "", imagegen.NewPermanentError(p.name, "prediction output contains no image url", nil)
}
