// Package imageprovider 实现各图像生成后端的接入
package imageprovider

import (
	"context"
	"fmt"
	"time"

	"canvas-ai-api/internal/application/imagegen"
	"canvas-ai-api/internal/config"
)

// wavespeed 任务轮询参数
const (
	wavespeedPollInterval = 2 * time.Second
	wavespeedMaxPolls     = 90
)

// WavespeedProvider WaveSpeed 异步任务接入
type WavespeedProvider struct {
	baseProvider

	pollInterval time.Duration
}

// NewWavespeedProvider 创建 WaveSpeed 提供商
func NewWavespeedProvider(cfg config.ProviderConfig, store BlobStore) *WavespeedProvider {
	return &WavespeedProvider{
		baseProvider: newBaseProvider("wavespeed", cfg, store),
		pollInterval: wavespeedPollInterval,
	}
}

// Name 返回提供商标识
func (p *WavespeedProvider) Name() string { return p.name }

type wavespeedRequest struct {
	Prompt string `json:"prompt"`
	Size   string `json:"size"`
	Image  string `json:"image,omitempty"`
}

type wavespeedSubmitResponse struct {
	Data struct {
		ID string `json:"id"`
	} `json:"data"`
}

type wavespeedResultResponse struct {
	Data struct {
		Status  string   `json:"status"`
		Outputs []string `json:"outputs"`
		Error   string   `json:"error"`
	} `json:"data"`
}

// Generate 提交任务并轮询结果
func (p *WavespeedProvider) Generate(ctx context.Context, prompt, model, aspectRatio string, inputImages []string, metadata map[string]any) (*imagegen.ProviderResult, error) {
	ctx, span := tracer.Start(ctx, "imageprovider.wavespeed.Generate")
	defer span.End()

	width, height := imagegen.Dimensions(aspectRatio)
	payload := wavespeedRequest{
		Prompt: prompt,
		Size:   fmt.Sprintf("%d*%d", width, height),
	}
	if len(inputImages) > 0 {
		payload.Image = inputImages[0]
	}

	body, err := p.postJSON(ctx, fmt.Sprintf("%s/%s", p.cfg.BaseURL, p.model(model)), payload, nil)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	var submit wavespeedSubmitResponse
	if err := unmarshalResponse(p.name, body, &submit); err != nil {
		span.RecordError(err)
		return nil, err
	}
	if submit.Data.ID == "" {
		return nil, imagegen.NewPermanentError(p.name, "submit response contains no task id", nil)
	}

	resultURL := fmt.Sprintf("%s/predictions/%s/result", p.cfg.BaseURL, submit.Data.ID)
	for i := 0; i < wavespeedMaxPolls; i++ {
		select {
		case <-ctx.Done():
			return nil, imagegen.NewTransientError(p.name, "generation canceled", ctx.Err())
		case <-time.After(p.pollInterval):
		}

		body, err := p.getJSON(ctx, resultURL, nil)
		if err != nil {
			span.RecordError(err)
			return nil, err
		}

		var result wavespeedResultResponse
		if err := unmarshalResponse(p.name, body, &result); err != nil {
			span.RecordError(err)
			return nil, err
		}

		switch result.Data.Status {
		case "completed":
			if len(result.Data.Outputs) == 0 {
				return nil, imagegen.NewPermanentError(p.name, "task completed without outputs", nil)
			}
			data, mimeType, err := p.fetchImage(ctx, result.Data.Outputs[0])
			if err != nil {
				return nil, err
			}
			return p.saveResult(data, mimeType, aspectRatio)
		case "failed":
			msg := result.Data.Error
			if msg == "" {
				msg = "task failed"
			}
			return nil, imagegen.NewPermanentError(p.name, msg, nil)
		}
		// created/processing 继续轮询
	}

	return nil, imagegen.NewTransientError(p.name,
		fmt.Sprintf("task did not complete after %d polls", wavespeedMaxPolls), nil)
}
