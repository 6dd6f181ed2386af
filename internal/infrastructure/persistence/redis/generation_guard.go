package redis

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// releaseScript 仅当值与令牌一致时删除，避免误删他人持有的锁
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// GenerationGuard 基于 SET NX 的在途生成互斥，TTL 兜底进程崩溃
type GenerationGuard struct {
	client *Client
	prefix string
	ttl    time.Duration
}

// NewGenerationGuard 创建生成互斥
func NewGenerationGuard(client *Client, prefix string, ttl time.Duration) *GenerationGuard {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &GenerationGuard{client: client, prefix: prefix, ttl: ttl}
}

func (g *GenerationGuard) key(k string) string {
	return g.prefix + k
}

// Acquire 尝试持有互斥
func (g *GenerationGuard) Acquire(ctx context.Context, key, token string) (bool, error) {
	ctx, span := tracer.Start(ctx, "redis.GenerationGuard.Acquire",
		trace.WithAttributes(attribute.String("redis.key", g.key(key))))
	defer span.End()

	ok, err := g.client.rdb.SetNX(ctx, g.key(key), token, g.ttl).Result()
	if err != nil {
		span.RecordError(err)
		return false, err
	}
	span.SetAttributes(attribute.Bool("guard.acquired", ok))
	return ok, nil
}

// Release 释放互斥，令牌不匹配时不做任何事
func (g *GenerationGuard) Release(ctx context.Context, key, token string) error {
	ctx, span := tracer.Start(ctx, "redis.GenerationGuard.Release",
		trace.WithAttributes(attribute.String("redis.key", g.key(key))))
	defer span.End()

	err := releaseScript.Run(ctx, g.client.rdb, []string{g.key(key)}, token).Err()
	if err != nil && !errors.Is(err, redis.Nil) {
		span.RecordError(err)
		return err
	}
	return nil
}
