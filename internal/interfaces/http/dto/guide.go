// Package dto 提供 HTTP 层数据传输对象
package dto

import (
	"time"

	"repair-guide-api/internal/application/guide"
	"repair-guide-api/internal/domain/entity"
)

// GuideStepResponse 指南步骤
type GuideStepResponse struct {
	Index       int      `json:"index"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Tools       []string `json:"tools,omitempty"`
	Caution     string   `json:"caution,omitempty"`
	Image       string   `json:"image,omitempty"`
}

// GuideResponse 维修指南
type GuideResponse struct {
	ID          string              `json:"id"`
	Title       string              `json:"title"`
	Safety      string              `json:"safety,omitempty"`
	Source      entity.GuideSource  `json:"source"`
	Steps       []GuideStepResponse `json:"steps"`
	GeneratedAt time.Time           `json:"generated_at"`
}

// SessionResponse 当前会话状态
type SessionResponse struct {
	State  entity.GenerationState `json:"state"`
	Status string                 `json:"status"`
	Guide  *GuideResponse         `json:"guide,omitempty"`
	Error  *ErrorDetail           `json:"error,omitempty"`
}

// CapabilitiesResponse 当前可用能力
type CapabilitiesResponse struct {
	LiveModel      bool     `json:"live_model"`
	ImageSearch    bool     `json:"image_search"`
	ImageProviders []string `json:"image_providers"`
	MaxPhotoBytes  int      `json:"max_photo_bytes"`
	Guidance       string   `json:"guidance,omitempty"`
}

// ToGuideResponse 转换指南
func ToGuideResponse(g *entity.RepairGuide) *GuideResponse {
	if g == nil {
		return nil
	}
	steps := make([]GuideStepResponse, len(g.Steps))
	for i, s := range g.Steps {
		steps[i] = GuideStepResponse{
			Index:       i,
			Title:       s.Title,
			Description: s.Description,
			Tools:       s.Tools,
			Caution:     s.Caution,
			Image:       s.Image,
		}
	}
	return &GuideResponse{
		ID:          g.ID,
		Title:       g.Title,
		Safety:      g.Safety,
		Source:      g.Source,
		Steps:       steps,
		GeneratedAt: g.GeneratedAt,
	}
}

// ToSessionResponse 转换会话快照
func ToSessionResponse(s guide.Snapshot) *SessionResponse {
	resp := &SessionResponse{
		State:  s.State,
		Status: s.Status,
		Guide:  ToGuideResponse(s.Guide),
	}
	if s.Error != nil {
		resp.Error = &ErrorDetail{
			ErrorCode: string(s.Error.Code),
			Kind:      string(s.Error.Kind()),
			Details:   s.Error.Message,
		}
	}
	return resp
}
