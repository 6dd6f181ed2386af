// Package entity 定义领域实体
package entity

import (
	"time"
)

// MaxPhotoBytes 上传照片大小上限 (4 MiB)
const MaxPhotoBytes = 4 * 1024 * 1024

// Photo 用户上传的参考照片
type Photo struct {
	Data     []byte `json:"-"`
	MIMEType string `json:"mime_type"`
	Filename string `json:"filename,omitempty"`
}

// Size 返回照片字节数
func (p *Photo) Size() int {
	if p == nil {
		return 0
	}
	return len(p.Data)
}

// DamageReport 损坏报告，提交后不可变，一次生成后即丢弃
type DamageReport struct {
	Description string `json:"description"`
	Photo       *Photo `json:"photo,omitempty"`
}

// HasPhoto 是否附带照片
func (r *DamageReport) HasPhoto() bool {
	return r != nil && r.Photo != nil && len(r.Photo.Data) > 0
}

// PlanStep 维修计划中的单个步骤
type PlanStep struct {
	Title       string   `json:"title" validate:"required"`
	Description string   `json:"description" validate:"required"`
	Tools       []string `json:"tools,omitempty"`
	Caution     string   `json:"caution,omitempty"`
}

// RepairPlan 模型输出的维修计划（未配图）
type RepairPlan struct {
	Title  string     `json:"title" validate:"required"`
	Safety string     `json:"safety,omitempty"`
	Steps  []PlanStep `json:"steps" validate:"required,min=1,dive"`
}

// IllustratedStep 附带配图的步骤
type IllustratedStep struct {
	PlanStep
	// Image data URI 或远程 URL
	Image string `json:"image,omitempty"`
}

// GuideSource 指南来源
type GuideSource string

const (
	GuideSourceLive     GuideSource = "live"
	GuideSourceFallback GuideSource = "fallback"
)

// RepairGuide 最终展示给用户的配图维修指南
type RepairGuide struct {
	ID          string            `json:"id"`
	Title       string            `json:"title"`
	Safety      string            `json:"safety,omitempty"`
	Steps       []IllustratedStep `json:"steps"`
	Source      GuideSource       `json:"source"`
	GeneratedAt time.Time         `json:"generated_at"`
}

// NewRepairGuide 基于计划与配图组装指南，images 与 plan.Steps 按下标一一对应
func NewRepairGuide(id string, plan *RepairPlan, images []string, source GuideSource) *RepairGuide {
	steps := make([]IllustratedStep, len(plan.Steps))
	for i, step := range plan.Steps {
		steps[i] = IllustratedStep{PlanStep: step}
		if i < len(images) {
			steps[i].Image = images[i]
		}
	}
	return &RepairGuide{
		ID:          id,
		Title:       plan.Title,
		Safety:      plan.Safety,
		Steps:       steps,
		Source:      source,
		GeneratedAt: time.Now().UTC(),
	}
}

// GenerationState 生成状态机的状态
type GenerationState string

const (
	StateIdle            GenerationState = "idle"
	StatePreparing       GenerationState = "preparing"
	StateAwaitingPlan    GenerationState = "awaiting_plan"
	StateResolvingImages GenerationState = "resolving_images"
	StateComplete        GenerationState = "complete"
	StateErrored         GenerationState = "errored"
)

// InFlight 是否处于生成中
func (s GenerationState) InFlight() bool {
	switch s {
	case StatePreparing, StateAwaitingPlan, StateResolvingImages:
		return true
	default:
		return false
	}
}
