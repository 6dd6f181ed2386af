package imagery

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/errgroup"

	"repair-guide-api/pkg/logger"
	"repair-guide-api/pkg/metrics"
	"repair-guide-api/pkg/tracer"
)

// DefaultProviderTimeout 单个 provider 的时间上限
const DefaultProviderTimeout = 8 * time.Second

// Resolver 按顺序尝试 provider，第一个成功者胜出
type Resolver struct {
	providers   []ImageProvider
	placeholder *PlaceholderProvider
	timeout     time.Duration
}

// ResolverOption Resolver 选项
type ResolverOption func(*Resolver)

// WithProviderTimeout 设置单个 provider 超时
func WithProviderTimeout(d time.Duration) ResolverOption {
	return func(r *Resolver) {
		if d > 0 {
			r.timeout = d
		}
	}
}

// WithPlaceholder 替换终端占位图 provider
func WithPlaceholder(p *PlaceholderProvider) ResolverOption {
	return func(r *Resolver) {
		if p != nil {
			r.placeholder = p
		}
	}
}

// NewResolver 创建 Resolver；占位图始终追加在链路末尾
func NewResolver(providers []ImageProvider, opts ...ResolverOption) *Resolver {
	r := &Resolver{
		providers:   providers,
		placeholder: NewPlaceholderProvider("", ""),
		timeout:     DefaultProviderTimeout,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Providers 返回链路中的 provider 名称（含占位图）
func (r *Resolver) Providers() []string {
	names := make([]string, 0, len(r.providers)+1)
	for _, p := range r.providers {
		names = append(names, p.Name())
	}
	return append(names, r.placeholder.Name())
}

// Resolve 为单个步骤取图，永不失败
func (r *Resolver) Resolve(ctx context.Context, req StepImageRequest) string {
	ctx, span := tracer.Start(ctx, "imagery.Resolve")
	defer span.End()
	span.SetAttributes(attribute.Int("step.index", req.Index))

	for _, p := range r.providers {
		uri, err := r.attempt(ctx, p, req)
		if err == nil {
			span.SetAttributes(attribute.String("image.provider", p.Name()))
			return uri
		}
		logger.Warn(ctx, "step image provider failed",
			"provider", p.Name(),
			"step", req.Index,
			"error", err.Error(),
		)
	}

	span.SetAttributes(attribute.String("image.provider", r.placeholder.Name()))
	uri, err := r.placeholder.Render(req.Index)
	if err != nil {
		metrics.ImageResolutionTotal.WithLabelValues(r.placeholder.Name(), "error").Inc()
		return blankPNG
	}
	metrics.ImageResolutionTotal.WithLabelValues(r.placeholder.Name(), "success").Inc()
	return uri
}

// ResolveAll 并发解析全部步骤，结果按下标对应
func (r *Resolver) ResolveAll(ctx context.Context, reqs []StepImageRequest) []string {
	images := make([]string, len(reqs))

	g, gctx := errgroup.WithContext(ctx)
	for i := range reqs {
		g.Go(func() error {
			images[i] = r.Resolve(gctx, reqs[i])
			return nil
		})
	}
	_ = g.Wait()

	return images
}

type attemptResult struct {
	uri string
	err error
}

// attempt 带超时调用 provider，超时或 panic 均视为失败
func (r *Resolver) attempt(ctx context.Context, p ImageProvider, req StepImageRequest) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	start := time.Now()
	done := make(chan attemptResult, 1)
	go func() {
		defer func() {
			if rec := recover(); rec != nil {
				done <- attemptResult{err: fmt.Errorf("provider %s panicked: %v", p.Name(), rec)}
			}
		}()
		uri, err := p.Image(ctx, req)
		if err == nil && uri == "" {
			err = ErrNoImage
		}
		done <- attemptResult{uri: uri, err: err}
	}()

	var res attemptResult
	select {
	case res = <-done:
	case <-ctx.Done():
		res = attemptResult{err: fmt.Errorf("provider %s: %w", p.Name(), ctx.Err())}
	}

	status := "success"
	if res.err != nil {
		status = "error"
	}
	metrics.ImageResolutionDuration.WithLabelValues(p.Name()).Observe(time.Since(start).Seconds())
	metrics.ImageResolutionTotal.WithLabelValues(p.Name(), status).Inc()
	return res.uri, res.err
}
