// Package imageprovider 实现各图像生成后端的接入
package imageprovider

import (
	"canvas-ai-api/internal/application/imagegen"
	"canvas-ai-api/internal/config"
)

// BuildRegistry 按配置构建提供商注册表
// 只注册配置了的提供商，未知配置键被忽略
func BuildRegistry(cfg config.ImageGenConfig, store BlobStore) *imagegen.Registry {
	var providers []imagegen.Provider
	for name, pc := range cfg.Providers {
		switch name {
		case "jaaz":
			providers = append(providers, NewJaazProvider(pc, store))
		case "openai":
			providers = append(providers, NewOpenAIProvider(pc, store))
		case "replicate":
			providers = append(providers, NewReplicateProvider(pc, store))
		case "volces":
			providers = append(providers, NewVolcesProvider(pc, store))
		case "wavespeed":
			providers = append(providers, NewWavespeedProvider(pc, store))
		}
	}
	return imagegen.NewRegistry(providers...)
}
