// Package stockphoto 实现关键词取图代理：图库搜索失败时始终返回可展示的占位图
package stockphoto

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"

	"repair-guide-api/internal/infrastructure/pexels"
	"repair-guide-api/pkg/logger"
	"repair-guide-api/pkg/metrics"
	"repair-guide-api/pkg/tracer"
)

const (
	stockCacheControl       = "public, max-age=86400"
	placeholderCacheControl = "public, max-age=3600"
	defaultContentType      = "image/jpeg"
)

// Origin 图片来源
type Origin string

const (
	OriginStock       Origin = "stock"
	OriginPlaceholder Origin = "placeholder"
)

// Searcher 图库能力（port）
type Searcher interface {
	Search(ctx context.Context, query string) ([]pexels.Photo, error)
	Download(ctx context.Context, imageURL string) (*pexels.Image, error)
}

// Result 代理响应内容
type Result struct {
	Data         []byte
	ContentType  string
	CacheControl string
	Origin       Origin
}

// Service 关键词取图服务
type Service struct {
	searcher Searcher
}

// NewService 创建取图服务；searcher 为 nil 时只返回占位图
func NewService(searcher Searcher) *Service {
	return &Service{searcher: searcher}
}

// Fetch 按关键词取图，永不返回错误
func (s *Service) Fetch(ctx context.Context, q string, index int) *Result {
	ctx, span := tracer.Start(ctx, "stockphoto.Fetch")
	defer span.End()

	if q == "" {
		q = DefaultQuery
	}
	span.SetAttributes(attribute.String("image.query", q), attribute.Int("image.index", index))
	logger.Debug(ctx, "image proxy request", "step", index, "query", q)

	res, err := s.fetchStock(ctx, q, index)
	if err != nil {
		logger.Warn(ctx, "image proxy using placeholder", "step", index, "error", err.Error())
		span.SetAttributes(attribute.String("image.origin", string(OriginPlaceholder)))
		metrics.ImageProxyTotal.WithLabelValues(string(OriginPlaceholder)).Inc()
		return &Result{
			Data:         PlaceholderSVG(index),
			ContentType:  "image/svg+xml",
			CacheControl: placeholderCacheControl,
			Origin:       OriginPlaceholder,
		}
	}

	span.SetAttributes(attribute.String("image.origin", string(OriginStock)))
	metrics.ImageProxyTotal.WithLabelValues(string(OriginStock)).Inc()
	return res
}

func (s *Service) fetchStock(ctx context.Context, q string, index int) (*Result, error) {
	if s == nil || s.searcher == nil {
		return nil, fmt.Errorf("image search is not configured")
	}

	query := BuildSearchQuery(q)
	photos, err := s.searcher.Search(ctx, query)
	if err != nil {
		return nil, err
	}
	if len(photos) == 0 {
		return nil, fmt.Errorf("no photos found for %q", query)
	}

	photo := photos[slot(index, len(photos))]
	logger.Debug(ctx, "image proxy selected photo",
		"found", len(photos),
		"photographer", photo.Photographer,
		"url", photo.LargeURL,
	)

	img, err := s.searcher.Download(ctx, photo.LargeURL)
	if err != nil {
		return nil, err
	}

	contentType := img.ContentType
	if contentType == "" {
		contentType = defaultContentType
	}
	return &Result{
		Data:         img.Data,
		ContentType:  contentType,
		CacheControl: stockCacheControl,
		Origin:       OriginStock,
	}, nil
}
