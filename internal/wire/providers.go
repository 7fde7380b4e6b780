// Package wire 提供依赖注入配置
package wire

import (
	"canvas-ai-api/internal/application/canvassvc"
	"canvas-ai-api/internal/application/imagegen"
	"canvas-ai-api/internal/config"
	"canvas-ai-api/internal/domain/repository"
	"canvas-ai-api/internal/infrastructure/assets"
	"canvas-ai-api/internal/infrastructure/imageprovider"
	"canvas-ai-api/internal/infrastructure/messaging"
	"canvas-ai-api/internal/infrastructure/persistence/postgres"
	"canvas-ai-api/internal/infrastructure/persistence/redis"
	"canvas-ai-api/internal/interfaces/http/handler"
	"canvas-ai-api/internal/interfaces/http/middleware"
	"canvas-ai-api/internal/interfaces/http/router"
)

// ProvidePostgresClient 提供 PostgreSQL 客户端
func ProvidePostgresClient(cfg *config.Config) (*postgres.Client, func(), error) {
	client, err := postgres.NewClient(&cfg.Database.Postgres)
	if err != nil {
		return nil, nil, err
	}
	cleanup := func() {
		client.Close()
	}
	return client, cleanup, nil
}

// ProvideRedisClient 提供 Redis 客户端
func ProvideRedisClient(cfg *config.Config) (*redis.Client, func(), error) {
	client, err := redis.NewClient(&cfg.Cache.Redis)
	if err != nil {
		return nil, nil, err
	}
	cleanup := func() {
		client.Close()
	}
	return client, cleanup, nil
}

// ProvideMessagingProducer 提供画布更新消息生产者
func ProvideMessagingProducer(redisClient *redis.Client, cfg *config.Config) *messaging.Producer {
	maxLen := cfg.Messaging.RedisStream.MaxLen
	if maxLen <= 0 {
		maxLen = 1000
	}
	return messaging.NewProducer(redisClient.Redis(), int64(maxLen))
}

// ProvideAssetStore 提供生成产物文件存储
func ProvideAssetStore(cfg *config.Config) (*assets.Store, error) {
	return assets.NewStore(cfg.Storage.Files.Dir)
}

// ProvideProviderRegistry 按配置构建图像提供商注册表
func ProvideProviderRegistry(cfg *config.Config, store imageprovider.BlobStore) *imagegen.Registry {
	return imageprovider.BuildRegistry(cfg.ImageGen, store)
}

// ProvidePreprocessor 提供输入图片预处理器
func ProvidePreprocessor(cache imagegen.ByteCache, store imagegen.FileOpener, cfg *config.Config) *imagegen.Preprocessor {
	return imagegen.NewPreprocessor(cache, store, cfg.ImageGen.PreprocessCacheTTL)
}

// ProvideCanvasService 提供画布应用服务
func ProvideCanvasService(
	canvasRepo repository.CanvasRepository,
	elementRepo repository.CanvasElementRepository,
	sessionRepo repository.ChatSessionRepository,
	messageRepo repository.ChatMessageRepository,
	artifactRepo repository.ArtifactRepository,
	tx repository.Transactor,
	notifier canvassvc.Notifier,
	cfg *config.Config,
) *canvassvc.Service {
	return canvassvc.NewService(canvasRepo, elementRepo, sessionRepo, messageRepo, artifactRepo,
		tx, notifier, cfg.Storage.Files.BasePath)
}

// ProvideOrchestrator 提供图像生成编排器
func ProvideOrchestrator(
	gate imagegen.CreditGate,
	registry *imagegen.Registry,
	normalizer imagegen.InputNormalizer,
	persister imagegen.Persister,
	cfg *config.Config,
) *imagegen.Orchestrator {
	return imagegen.NewOrchestrator(gate, registry, normalizer, persister, cfg.Server.HTTP.PublicBaseURL)
}

// ProvideAuthHandler 提供认证处理器
func ProvideAuthHandler(cfg *config.Config, userRepo repository.UserRepository) *handler.AuthHandler {
	authCfg := middleware.AuthConfig{
		Secret:    cfg.Security.JWT.Secret,
		Issuer:    cfg.Security.JWT.Issuer,
		SkipPaths: middleware.DefaultSkipPaths,
		Enabled:   true,
	}
	return handler.NewAuthHandler(authCfg, cfg.Security.JWT.Expiration, cfg.Security.JWT.RefreshExpiration, userRepo)
}

// ProvideUserHandler 提供用户处理器
func ProvideUserHandler(userRepo repository.UserRepository, cfg *config.Config) *handler.UserHandler {
	return handler.NewUserHandler(userRepo, cfg.Storage.Files.BasePath)
}

// ProvideGenerationHandler 提供图像生成处理器
func ProvideGenerationHandler(orchestrator *imagegen.Orchestrator, cfg *config.Config) *handler.GenerationHandler {
	return handler.NewGenerationHandler(orchestrator, cfg.ImageGen.DefaultProvider)
}

// ProvideRouter 提供 HTTP 路由器
func ProvideRouter(cfg *config.Config, handlers router.Handlers, rateLimiter middleware.RateLimiter) *router.Router {
	return router.New(cfg, handlers, rateLimiter)
}
