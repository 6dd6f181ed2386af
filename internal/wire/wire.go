// Package wire 提供依赖装配
package wire

import (
	"context"
	"fmt"

	"repair-guide-api/internal/application/guide"
	"repair-guide-api/internal/application/imagery"
	"repair-guide-api/internal/application/stockphoto"
	"repair-guide-api/internal/config"
	"repair-guide-api/internal/domain/entity"
	"repair-guide-api/internal/infrastructure/httpclient"
	"repair-guide-api/internal/infrastructure/llm"
	"repair-guide-api/internal/infrastructure/pexels"
	"repair-guide-api/internal/infrastructure/persistence/redis"
	"repair-guide-api/internal/interfaces/http/dto"
	"repair-guide-api/internal/interfaces/http/handler"
	"repair-guide-api/internal/interfaces/http/router"
	"repair-guide-api/pkg/logger"
)

// ProvideRedisClient Redis 未启用时返回 nil
func ProvideRedisClient(ctx context.Context, cfg *config.Config) (*redis.Client, func(), error) {
	if !cfg.Cache.Redis.Enabled {
		return nil, func() {}, nil
	}
	client, err := redis.NewClient(&cfg.Cache.Redis)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect redis: %w", err)
	}
	cleanup := func() {
		if err := client.Close(); err != nil {
			logger.Error(ctx, "failed to close redis", err)
		}
	}
	return client, cleanup, nil
}

// ProvideGenerationGuard 有 Redis 时使用分布式互斥，否则使用进程内互斥
func ProvideGenerationGuard(cfg *config.Config, client *redis.Client) guide.GenerationGuard {
	if client == nil {
		return guide.NewMemoryGuard()
	}
	return redis.NewGenerationGuard(client, cfg.Session.KeyPrefix, cfg.Session.GuardTTL)
}

// ProvideLLMClient 未配置模型凭据时返回 nil
func ProvideLLMClient(cfg *config.Config) *llm.Client {
	if !cfg.LLM.Live() {
		return nil
	}
	return llm.NewClient(&cfg.LLM)
}

// ProvidePlanSource 按凭据选择计划来源
func ProvidePlanSource(cfg *config.Config, client *llm.Client) guide.PlanSource {
	if client == nil {
		return guide.FixedFallbackSource{}
	}
	return guide.NewLiveModelSource(client, cfg.LLM.PlanModel)
}

// ProvideImageProviders 组装配图链：生成式 → 关键词取图，占位图由 Resolver 追加
func ProvideImageProviders(cfg *config.Config, client *llm.Client) []imagery.ImageProvider {
	var providers []imagery.ImageProvider
	if client != nil && cfg.Images.Generative.Enabled {
		providers = append(providers, imagery.NewGenerativeProvider(client, cfg.LLM.ImageModel, cfg.Images.Generative.SeedWithPhoto))
	}
	if cfg.Images.Search.Enabled() {
		providers = append(providers, imagery.NewSearchProvider(cfg.Images.Search.ProxyURL, httpclient.New(cfg.Images.FetchTimeout)))
	}
	return providers
}

// ProvideResolver 创建配图解析器
func ProvideResolver(cfg *config.Config, providers []imagery.ImageProvider) *imagery.Resolver {
	return imagery.NewResolver(providers,
		imagery.WithProviderTimeout(cfg.Images.FetchTimeout),
		imagery.WithPlaceholder(imagery.NewPlaceholderProvider(
			cfg.Images.Placeholder.Wordmark,
			cfg.Images.Placeholder.Caption,
		)),
	)
}

// ProvideStockPhotoService 未配置图库凭据时只返回占位图
func ProvideStockPhotoService(cfg *config.Config) *stockphoto.Service {
	if !cfg.Images.Search.Enabled() {
		return stockphoto.NewService(nil)
	}
	return stockphoto.NewService(pexels.NewClient(&cfg.Images.Search, cfg.Images.FetchTimeout))
}

// ProvideCapabilities 汇总当前能力
func ProvideCapabilities(cfg *config.Config, resolver *imagery.Resolver) dto.CapabilitiesResponse {
	caps := dto.CapabilitiesResponse{
		LiveModel:      cfg.LLM.Live(),
		ImageSearch:    cfg.Images.Search.Enabled(),
		ImageProviders: resolver.Providers(),
		MaxPhotoBytes:  entity.MaxPhotoBytes,
	}
	if !caps.LiveModel {
		caps.Guidance = guide.FallbackGuidance
	}
	return caps
}

// InitializeApp 初始化整个应用（带路由器）
func InitializeApp(ctx context.Context, cfg *config.Config) (*router.Router, func(), error) {
	redisClient, cleanupRedis, err := ProvideRedisClient(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}

	llmClient := ProvideLLMClient(cfg)
	source := ProvidePlanSource(cfg, llmClient)
	resolver := ProvideResolver(cfg, ProvideImageProviders(cfg, llmClient))
	orchestrator := guide.NewOrchestrator(source, resolver)
	sessions := guide.NewSessionRegistry(orchestrator, ProvideGenerationGuard(cfg, redisClient))

	var readiness handler.HealthChecker
	if redisClient != nil {
		readiness = redisClient
	}

	r := router.New(cfg, router.Handlers{
		Health:     handler.NewHealthHandler(cfg.App.Version, readiness),
		Guide:      handler.NewGuideHandler(sessions, ProvideCapabilities(cfg, resolver), cfg.Server.HTTP.MaxUploadBytes),
		User:       handler.NewUserHandler(),
		ImageProxy: handler.NewImageProxyHandler(ProvideStockPhotoService(cfg)),
	})

	logger.Info(ctx, "application initialized",
		"plan_source", string(source.Kind()),
		"image_providers", resolver.Providers(),
		"redis", redisClient != nil,
	)

	return r, cleanupRedis, nil
}
