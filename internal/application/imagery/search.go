package imagery

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/gabriel-vasile/mimetype"

	"repair-guide-api/internal/application/prompt"
)

// maxSearchImageBytes 代理返回图片的大小上限
const maxSearchImageBytes = 10 * 1024 * 1024

// SearchProvider 通过关键词取图代理获取图库照片
type SearchProvider struct {
	proxyURL   string
	httpClient *http.Client
}

// NewSearchProvider 创建关键词取图 provider，proxyURL 形如 http://host/api
func NewSearchProvider(proxyURL string, httpClient *http.Client) *SearchProvider {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &SearchProvider{
		proxyURL:   strings.TrimRight(proxyURL, "/"),
		httpClient: httpClient,
	}
}

func (p *SearchProvider) Name() string { return "search" }

func (p *SearchProvider) Image(ctx context.Context, req StepImageRequest) (string, error) {
	keywords := ExtractKeywords(req.Title, req.Tools)
	if len(keywords) == 0 {
		return "", fmt.Errorf("no keywords extracted for step %d: %w", req.Index, ErrNoImage)
	}

	endpoint := fmt.Sprintf("%s/fetch-image?q=%s&index=%s",
		p.proxyURL,
		url.QueryEscape(strings.Join(keywords, ",")),
		strconv.Itoa(req.Index),
	)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create image proxy request: %w", err)
	}

	resp, err := p.httpClient.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("image proxy request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("image proxy returned %d for step %d", resp.StatusCode, req.Index)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxSearchImageBytes))
	if err != nil {
		return "", fmt.Errorf("failed to read image proxy body: %w", err)
	}
	if len(data) == 0 {
		return "", fmt.Errorf("image proxy body is empty: %w", ErrNoImage)
	}

	contentType := resp.Header.Get("Content-Type")
	if contentType == "" || contentType == "application/octet-stream" {
		contentType = mimetype.Detect(data).String()
	}
	if i := strings.Index(contentType, ";"); i >= 0 {
		contentType = strings.TrimSpace(contentType[:i])
	}
	if !strings.HasPrefix(contentType, "image/") {
		return "", fmt.Errorf("image proxy returned %s: %w", contentType, ErrNoImage)
	}
	return prompt.EncodeDataURI(contentType, data), nil
}
