// Package pexels 提供 Pexels 图库搜索与下载客户端
package pexels

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/tidwall/gjson"

	"repair-guide-api/internal/config"
	"repair-guide-api/internal/infrastructure/httpclient"
)

// maxImageBytes 下载图片的大小上限
const maxImageBytes = 10 * 1024 * 1024

// Photo 搜索结果中的单张照片
type Photo struct {
	ID           int64
	Photographer string
	// LargeURL 800x600 左右的大图地址
	LargeURL string
}

// Image 下载后的图片
type Image struct {
	Data        []byte
	ContentType string
}

// Client Pexels API 客户端
type Client struct {
	baseURL    string
	apiKey     string
	perPage    int
	httpClient *http.Client
}

// NewClient 创建 Pexels 客户端
func NewClient(cfg *config.ImageSearchConfig, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 8 * time.Second
	}
	perPage := cfg.PerPage
	if perPage <= 0 {
		perPage = 5
	}
	return &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:     cfg.APIKey,
		perPage:    perPage,
		httpClient: httpclient.New(timeout),
	}
}

// Search 按关键词搜索横向照片
func (c *Client) Search(ctx context.Context, query string) ([]Photo, error) {
	u, err := url.Parse(c.baseURL + "/search")
	if err != nil {
		return nil, fmt.Errorf("invalid pexels base url: %w", err)
	}
	q := u.Query()
	q.Set("query", query)
	q.Set("per_page", strconv.Itoa(c.perPage))
	q.Set("orientation", "landscape")
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create pexels search request: %w", err)
	}
	req.Header.Set("Authorization", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("pexels search failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("pexels search failed: status=%d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read pexels search response: %w", err)
	}

	var photos []Photo
	gjson.GetBytes(body, "photos").ForEach(func(_, p gjson.Result) bool {
		large := p.Get("src.large").String()
		if large == "" {
			return true
		}
		photos = append(photos, Photo{
			ID:           p.Get("id").Int(),
			Photographer: p.Get("photographer").String(),
			LargeURL:     large,
		})
		return true
	})
	return photos, nil
}

// Download 下载图片二进制内容
func (c *Client) Download(ctx context.Context, imageURL string) (*Image, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, imageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create image request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("image download failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("image download failed: status=%d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxImageBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to read image body: %w", err)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("image body is empty")
	}

	contentType := resp.Header.Get("Content-Type")
	if contentType == "" || contentType == "application/octet-stream" {
		contentType = mimetype.Detect(data).String()
	}
	return &Image{Data: data, ContentType: contentType}, nil
}
