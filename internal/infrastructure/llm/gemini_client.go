// Package llm 提供生成式语言模型 (generateContent) 客户端
package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/tidwall/gjson"
	"go.opentelemetry.io/otel/attribute"

	"repair-guide-api/internal/config"
	"repair-guide-api/internal/infrastructure/httpclient"
	"repair-guide-api/pkg/metrics"
	"repair-guide-api/pkg/tracer"
)

// maxErrorBody 错误响应体保留的最大字节数
const (
	maxErrorBody = 4096
	apiKeyHeader = "x-goog-api-key"
)

// InlineData 内联二进制数据（图片）
type InlineData struct {
	MimeType string `json:"mimeType"`
	Data     string `json:"data"`
}

// Part 请求/响应片段：文本或内联数据二选一
type Part struct {
	Text       string      `json:"text,omitempty"`
	InlineData *InlineData `json:"inlineData,omitempty"`
}

// Content 单轮对话内容
type Content struct {
	Role  string `json:"role"`
	Parts []Part `json:"parts"`
}

// GenerateContentRequest generateContent 请求体
type GenerateContentRequest struct {
	Contents []Content `json:"contents"`
}

// GenerateContentResponse generateContent 原始响应
type GenerateContentResponse struct {
	Raw []byte
}

// FirstText 返回 candidates[0].content.parts 中第一个非空文本
func (r *GenerateContentResponse) FirstText() (string, bool) {
	if r == nil {
		return "", false
	}
	for _, t := range gjson.GetBytes(r.Raw, "candidates.0.content.parts.#.text").Array() {
		if s := t.String(); s != "" {
			return s, true
		}
	}
	return "", false
}

// FirstInlineData 返回 candidates[0].content.parts 中第一个内联数据
func (r *GenerateContentResponse) FirstInlineData() (*InlineData, bool) {
	if r == nil {
		return nil, false
	}
	var found *InlineData
	gjson.GetBytes(r.Raw, "candidates.0.content.parts").ForEach(func(_, part gjson.Result) bool {
		inline := part.Get("inlineData")
		if !inline.Exists() {
			return true
		}
		found = &InlineData{
			MimeType: inline.Get("mimeType").String(),
			Data:     inline.Get("data").String(),
		}
		return false
	})
	if found == nil || found.Data == "" {
		return nil, false
	}
	return found, true
}

// StatusError 非 2xx 响应
type StatusError struct {
	Model      string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("generateContent %s failed (%d): %s", e.Model, e.StatusCode, e.Body)
}

// Client generateContent REST 客户端
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// NewClient 创建模型客户端
func NewClient(cfg *config.LLMConfig) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:     cfg.APIKey,
		httpClient: httpclient.New(timeout),
	}
}

// GenerateContent 调用 {base}/{model}:generateContent
func (c *Client) GenerateContent(ctx context.Context, model string, req *GenerateContentRequest) (*GenerateContentResponse, error) {
	ctx, span := tracer.Start(ctx, "llm.GenerateContent")
	defer span.End()
	span.SetAttributes(attribute.String("llm.model", model))

	start := time.Now()
	resp, err := c.do(ctx, model, req)
	metrics.LLMCallDuration.WithLabelValues(model).Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.LLMCallTotal.WithLabelValues(model, "error").Inc()
		tracer.Fail(span, err)
		return nil, err
	}
	metrics.LLMCallTotal.WithLabelValues(model, "success").Inc()
	return resp, nil
}

func (c *Client) do(ctx context.Context, model string, req *GenerateContentRequest) (*GenerateContentResponse, error) {
	if req == nil {
		return nil, fmt.Errorf("request is nil")
	}
	if c.baseURL == "" {
		return nil, fmt.Errorf("llm base url is empty")
	}

	reqBody, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal generateContent request: %w", err)
	}

	// 密钥放在请求头，避免随 URL 出现在错误信息中
	endpoint := fmt.Sprintf("%s/%s:generateContent", c.baseURL, url.PathEscape(model))
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(reqBody))
	if err != nil {
		return nil, fmt.Errorf("failed to create generateContent request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set(apiKeyHeader, c.apiKey)

	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("generateContent request failed: %w", err)
	}
	defer httpResp.Body.Close()

	if httpResp.StatusCode < 200 || httpResp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(httpResp.Body, maxErrorBody))
		return nil, &StatusError{Model: model, StatusCode: httpResp.StatusCode, Body: string(body)}
	}

	raw, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read generateContent response: %w", err)
	}
	if !gjson.ValidBytes(raw) {
		return nil, fmt.Errorf("generateContent response is not valid json")
	}
	return &GenerateContentResponse{Raw: raw}, nil
}
