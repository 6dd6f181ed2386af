package prompt

import (
	"encoding/base64"
	"fmt"
	"regexp"
	"strings"

	"repair-guide-api/internal/infrastructure/llm"
)

// DefaultImageMIME 无法从 data URI 头部识别类型时的默认值
const DefaultImageMIME = "image/png"

var dataURIHeader = regexp.MustCompile(`^data:(.*);base64$`)

// EncodeDataURI 将二进制内容编码为 data:<mime>;base64,<data>
func EncodeDataURI(mimeType string, data []byte) string {
	if mimeType == "" {
		mimeType = DefaultImageMIME
	}
	return "data:" + mimeType + ";base64," + base64.StdEncoding.EncodeToString(data)
}

// ParseDataURI 拆分 data URI，返回 MIME 类型与 base64 内容
func ParseDataURI(uri string) (mimeType string, payload string, err error) {
	header, body, ok := strings.Cut(uri, ",")
	if !ok || !strings.HasPrefix(header, "data:") {
		return "", "", fmt.Errorf("not a data uri")
	}

	mimeType = DefaultImageMIME
	if m := dataURIHeader.FindStringSubmatch(header); m != nil && m[1] != "" {
		mimeType = m[1]
	}
	if body == "" {
		return "", "", fmt.Errorf("data uri has no payload")
	}
	return mimeType, body, nil
}

// InlineImagePart 将照片 data URI 转为内联图片片段
func InlineImagePart(photoDataURI string) (*llm.Part, error) {
	mimeType, payload, err := ParseDataURI(photoDataURI)
	if err != nil {
		return nil, err
	}
	if _, err := base64.StdEncoding.DecodeString(payload); err != nil {
		return nil, fmt.Errorf("data uri payload is not base64: %w", err)
	}
	return &llm.Part{
		InlineData: &llm.InlineData{
			MimeType: mimeType,
			Data:     payload,
		},
	}, nil
}
