//go:build wireinject
// +build wireinject

// Package wire 提供依赖注入配置
package wire

import (
	"github.com/google/wire"

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

// InitializeApp 初始化整个应用（带路由器）
func InitializeApp(cfg *config.Config) (*router.Router, func(), error) {
	wire.Build(
		RepoSet,
		RedisSet,
		MessagingSet,
		StorageSet,
		ImageGenSet,
		RouterSet,
	)
	return nil, nil, nil
}

// PostgresSet PostgreSQL 提供者集合
var PostgresSet = wire.NewSet(
	ProvidePostgresClient,
	postgres.NewTxManager,
	postgres.NewUserRepository,
	postgres.NewCanvasRepository,
	postgres.NewCanvasElementRepository,
	postgres.NewChatSessionRepository,
	postgres.NewChatMessageRepository,
	postgres.NewArtifactRepository,
)

// RepoSet 整合了具体实现与接口绑定的集合
var RepoSet = wire.NewSet(
	PostgresSet,
	wire.Bind(new(repository.Transactor), new(*postgres.TxManager)),
	wire.Bind(new(repository.UserRepository), new(*postgres.UserRepository)),
	wire.Bind(new(repository.CanvasRepository), new(*postgres.CanvasRepository)),
	wire.Bind(new(repository.CanvasElementRepository), new(*postgres.CanvasElementRepository)),
	wire.Bind(new(repository.ChatSessionRepository), new(*postgres.ChatSessionRepository)),
	wire.Bind(new(repository.ChatMessageRepository), new(*postgres.ChatMessageRepository)),
	wire.Bind(new(repository.ArtifactRepository), new(*postgres.ArtifactRepository)),
	wire.Bind(new(imagegen.CreditGate), new(*postgres.UserRepository)),
)

// RedisSet Redis 提供者集合
var RedisSet = wire.NewSet(
	ProvideRedisClient,
	redis.NewCache,
	redis.NewRateLimiter,
	wire.Bind(new(imagegen.ByteCache), new(*redis.Cache)),
	wire.Bind(new(middleware.RateLimiter), new(*redis.RateLimiter)),
)

// MessagingSet 消息队列提供者集合
var MessagingSet = wire.NewSet(
	ProvideMessagingProducer,
	wire.Bind(new(canvassvc.Notifier), new(*messaging.Producer)),
)

// StorageSet 文件存储提供者集合
var StorageSet = wire.NewSet(
	ProvideAssetStore,
	wire.Bind(new(imageprovider.BlobStore), new(*assets.Store)),
	wire.Bind(new(imagegen.FileOpener), new(*assets.Store)),
)

// ImageGenSet 图像生成提供者集合
var ImageGenSet = wire.NewSet(
	ProvideProviderRegistry,
	ProvidePreprocessor,
	ProvideCanvasService,
	ProvideOrchestrator,
	wire.Bind(new(imagegen.InputNormalizer), new(*imagegen.Preprocessor)),
	wire.Bind(new(imagegen.Persister), new(*canvassvc.Service)),
)

// RouterSet 路由器提供者集合
var RouterSet = wire.NewSet(
	ProvideAuthHandler,
	ProvideGenerationHandler,
	ProvideUserHandler,
	handler.NewHealthHandler,
	handler.NewCanvasHandler,
	handler.NewChatHandler,
	handler.NewFileHandler,
	wire.Struct(new(router.Handlers), "*"),
	ProvideRouter,
)
