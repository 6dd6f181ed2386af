package imagery

import (
	"context"
	"fmt"

	"repair-guide-api/internal/application/prompt"
	"repair-guide-api/internal/infrastructure/llm"
)

// ContentGenerator 生成式模型调用能力（port）
type ContentGenerator interface {
	GenerateContent(ctx context.Context, model string, req *llm.GenerateContentRequest) (*llm.GenerateContentResponse, error)
}

// GenerativeProvider 通过图像模型生成步骤配图
type GenerativeProvider struct {
	client        ContentGenerator
	model         string
	seedWithPhoto bool
}

// NewGenerativeProvider 创建生成式配图 provider
func NewGenerativeProvider(client ContentGenerator, model string, seedWithPhoto bool) *GenerativeProvider {
	return &GenerativeProvider{client: client, model: model, seedWithPhoto: seedWithPhoto}
}

func (p *GenerativeProvider) Name() string { return "generative" }

func (p *GenerativeProvider) Image(ctx context.Context, req StepImageRequest) (string, error) {
	photo := ""
	if p.seedWithPhoto {
		photo = req.PhotoDataURI
	}

	payload, err := prompt.BuildStepImageRequest(req.Title, req.Description, photo)
	if err != nil {
		return "", err
	}

	resp, err := p.client.GenerateContent(ctx, p.model, payload)
	if err != nil {
		return "", err
	}

	inline, ok := resp.FirstInlineData()
	if !ok {
		return "", fmt.Errorf("image response missing inline data: %w", ErrNoImage)
	}
	mimeType := inline.MimeType
	if mimeType == "" {
		mimeType = prompt.DefaultImageMIME
	}
	return "data:" + mimeType + ";base64," + inline.Data, nil
}
