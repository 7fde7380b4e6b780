// Package imagegen 实现图像生成编排
package imagegen

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	apperrors "canvas-ai-api/pkg/errors"
	"canvas-ai-api/pkg/logger"
	"canvas-ai-api/pkg/metrics"
)

var orchestratorTracer = otel.Tracer("imagegen.orchestrator")

// Orchestrator 图像生成编排器
// 线性状态机：认证 -> 额度准入 -> 提供商解析 -> 预处理 -> 调用 -> 持久化。
// 准入通过后失败不退还额度。
type Orchestrator struct {
	gate       CreditGate
	registry   *Registry
	normalizer InputNormalizer
	persister  Persister

	// publicBaseURL 响应中产物链接的外部可达前缀
	publicBaseURL string
}

// NewOrchestrator 创建编排器
func NewOrchestrator(gate CreditGate, registry *Registry, normalizer InputNormalizer, persister Persister, publicBaseURL string) *Orchestrator {
	return &Orchestrator{
		gate:          gate,
		registry:      registry,
		normalizer:    normalizer,
		persister:     persister,
		publicBaseURL: strings.TrimRight(publicBaseURL, "/"),
	}
}

// GenerateImage 执行一次图像生成，返回面向会话的结果文本
func (o *Orchestrator) GenerateImage(ctx context.Context, req *GenerationRequest) (string, error) {
	ctx, span := orchestratorTracer.Start(ctx, "imagegen.GenerateImage")
	span.SetAttributes(
		attribute.String("imagegen.provider", req.Provider),
		attribute.String("imagegen.model", req.Model),
		attribute.String("imagegen.canvas_id", req.CanvasID),
	)
	defer span.End()

	metrics.ActiveGenerations.Inc()
	defer metrics.ActiveGenerations.Dec()

	ctx = logger.WithContext(ctx, logger.CanvasIDKey, req.CanvasID)
	ctx = logger.WithContext(ctx, logger.SessionIDKey, req.SessionID)

	// 认证：未认证请求不得消耗额度
	if req.UserID == 0 {
		metrics.ImageGenerationTotal.WithLabelValues(req.Provider, "unauthenticated").Inc()
		return "", apperrors.ErrUnauthorized.WithDetail("image generation requires authentication")
	}

	// 额度准入：检查与扣减是同一原子操作，拒绝后立即终止
	admitted, err := o.gate.CheckAndUpdateCredits(ctx, req.UserID)
	if err != nil {
		span.RecordError(err)
		metrics.ImageGenerationTotal.WithLabelValues(req.Provider, "gate_error").Inc()
		return "", apperrors.Wrap(err, apperrors.CodeDatabaseError, "credit check failed")
	}
	if !admitted {
		metrics.CreditDenialsTotal.Inc()
		metrics.ImageGenerationTotal.WithLabelValues(req.Provider, "quota_denied").Inc()
		logger.Info(ctx, "generation denied: daily credits exhausted", "user_id", req.UserID)
		return "", apperrors.ErrQuotaExhausted
	}

	// 提供商解析：额度已扣，名称未注册按无效请求处理
	provider, ok := o.registry.Lookup(req.Provider)
	if !ok {
		metrics.ImageGenerationTotal.WithLabelValues(req.Provider, "unknown_provider").Inc()
		return "", apperrors.ErrUnknownProvider.WithDetail(fmt.Sprintf("unknown provider: %s", req.Provider))
	}

	// 预处理：尽力而为，单张失败不阻断
	var inputImages []string
	if len(req.InputImages) > 0 {
		inputImages = o.normalizer.Normalize(ctx, req.InputImages)
		logger.Info(ctx, "input images normalized",
			"requested", len(req.InputImages),
			"usable", len(inputImages),
		)
	}

	metadata := map[string]any{
		"prompt":       req.Prompt,
		"model":        req.Model,
		"provider":     req.Provider,
		"aspect_ratio": req.AspectRatio,
		"input_images": req.InputImages,
	}

	// 调用提供商
	start := time.Now()
	result, err := provider.Generate(ctx, req.Prompt, req.Model, req.AspectRatio, inputImages, metadata)
	metrics.ImageGenerationDuration.WithLabelValues(req.Provider).Observe(time.Since(start).Seconds())
	if err != nil {
		span.RecordError(err)
		metrics.ImageGenerationTotal.WithLabelValues(req.Provider, "provider_error").Inc()
		return "", classifyProviderFailure(req.Provider, err)
	}

	// 持久化
	persisted, err := o.persister.SaveImage(ctx, req, result)
	if err != nil {
		span.RecordError(err)
		metrics.ImageGenerationTotal.WithLabelValues(req.Provider, "persist_error").Inc()
		return "", apperrors.Wrap(err, apperrors.CodePersistenceFailed, "failed to record generated image")
	}

	metrics.ImageGenerationTotal.WithLabelValues(req.Provider, "ok").Inc()
	logger.Info(ctx, "image generated",
		"provider", req.Provider,
		"file_id", result.FileID,
		"width", result.Width,
		"height", result.Height,
	)

	return fmt.Sprintf("image generated successfully ![image_id: %s](%s%s)",
		result.FileID, o.publicBaseURL, persisted.FilePath), nil
}

// classifyProviderFailure 将提供商失败映射为应用错误
// 瞬时失败按网关错误上报，永久失败按请求被拒处理
func classifyProviderFailure(providerName string, err error) error {
	if pe, ok := AsProviderError(err); ok {
		switch pe.Class {
		case ErrorClassTransient:
			return apperrors.Wrap(err, apperrors.CodeProviderUnreachable,
				fmt.Sprintf("provider %s temporarily unavailable", providerName))
		case ErrorClassPermanent:
			return apperrors.Wrap(err, apperrors.CodeGenerationRejected, pe.Message)
		}
	}
	return apperrors.Wrap(err, apperrors.CodeGenerationFailed, "image generation failed")
}
