// Package imagery 为维修步骤解析配图：按顺序尝试一组 ImageProvider，全部失败时回落到合成占位图
package imagery

import (
	"context"
	"errors"
)

// ErrNoImage provider 未能给出图片
var ErrNoImage = errors.New("no image produced")

// StepImageRequest 单个步骤的配图请求
type StepImageRequest struct {
	// Index 步骤下标，同时作为占位图种子
	Index       int
	Title       string
	Description string
	Tools       []string
	// PhotoDataURI 用户照片，可为空
	PhotoDataURI string
}

// ImageProvider 配图来源，返回 data URI 或远程 URL
type ImageProvider interface {
	Name() string
	Image(ctx context.Context, req StepImageRequest) (string, error)
}
