// Package guide 编排维修指南生成：构建请求、获取计划、并发配图、组装指南
package guide

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"

	"repair-guide-api/internal/application/imagery"
	"repair-guide-api/internal/application/prompt"
	"repair-guide-api/internal/domain/entity"
	apperrors "repair-guide-api/pkg/errors"
	"repair-guide-api/pkg/logger"
	"repair-guide-api/pkg/metrics"
	"repair-guide-api/pkg/tracer"
)

// MinDescriptionLength 描述需超过的字符数
const MinDescriptionLength = 10

// StepImageResolver 步骤配图能力（port）
type StepImageResolver interface {
	ResolveAll(ctx context.Context, reqs []imagery.StepImageRequest) []string
}

// Orchestrator 指南生成编排器
type Orchestrator struct {
	source   PlanSource
	resolver StepImageResolver
	newID    func() string
}

// NewOrchestrator 创建编排器
func NewOrchestrator(source PlanSource, resolver StepImageResolver) *Orchestrator {
	return &Orchestrator{
		source:   source,
		resolver: resolver,
		newID:    uuid.NewString,
	}
}

// Source 当前计划来源
func (o *Orchestrator) Source() entity.GuideSource {
	return o.source.Kind()
}

// ValidateReport 提交前置条件：描述足够长且附带照片
func ValidateReport(report *entity.DamageReport) error {
	if report == nil {
		return apperrors.ErrValidationFailed.WithDetail("Describe the damage before generating a guide.")
	}
	if utf8.RuneCountInString(strings.TrimSpace(report.Description)) <= MinDescriptionLength {
		return apperrors.ErrValidationFailed.WithDetail(
			fmt.Sprintf("Describe the damage in more than %d characters.", MinDescriptionLength))
	}
	if !report.HasPhoto() {
		return apperrors.ErrValidationFailed.WithDetail("Attach a photo of the damage.")
	}
	return nil
}

// Generate 执行一次完整的生成流程
func (o *Orchestrator) Generate(ctx context.Context, report *entity.DamageReport, observer ProgressObserver) (*entity.RepairGuide, error) {
	observer = observerOrNop(observer)
	source := o.source.Kind()

	ctx, span := tracer.Start(ctx, "guide.Generate")
	defer span.End()
	span.SetAttributes(attribute.String("guide.source", string(source)))

	if err := ValidateReport(report); err != nil {
		return nil, err
	}

	id := o.newID()
	ctx = logger.WithContext(ctx, logger.GuideIDKey, id)

	start := time.Now()
	metrics.GuidesInFlight.Inc()
	defer metrics.GuidesInFlight.Dec()

	guide, err := o.generate(ctx, id, report, observer)
	metrics.GuideGenerationDuration.WithLabelValues(string(source)).Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.GuideGenerationTotal.WithLabelValues(string(source), "error").Inc()
		tracer.Fail(span, err)
		logger.Error(ctx, "guide generation failed", err)
		observer.OnProgress(Progress{State: entity.StateErrored, Message: userMessage(err)})
		return nil, err
	}

	metrics.GuideGenerationTotal.WithLabelValues(string(source), "success").Inc()
	metrics.GuideStepCount.Observe(float64(len(guide.Steps)))
	span.SetAttributes(attribute.String("guide.id", guide.ID), attribute.Int("guide.steps", len(guide.Steps)))
	logger.Info(ctx, "guide generated",
		"source", string(source),
		"steps", len(guide.Steps),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	observer.OnProgress(Progress{State: entity.StateComplete, Message: "Guide ready"})
	return guide, nil
}

func (o *Orchestrator) generate(ctx context.Context, id string, report *entity.DamageReport, observer ProgressObserver) (*entity.RepairGuide, error) {
	observer.OnProgress(Progress{State: entity.StatePreparing, Message: "Preparing request"})

	if report.Photo.Size() > entity.MaxPhotoBytes {
		return nil, apperrors.ErrFileTooLarge
	}
	mimeType := report.Photo.MIMEType
	if mimeType == "" {
		mimeType = prompt.DefaultImageMIME
	}
	photoURI := prompt.EncodeDataURI(mimeType, report.Photo.Data)

	plan, err := o.source.Plan(ctx, report.Description, photoURI, observer)
	if err != nil {
		return nil, err
	}

	reqs := make([]imagery.StepImageRequest, len(plan.Steps))
	for i, step := range plan.Steps {
		reqs[i] = imagery.StepImageRequest{
			Index:        i,
			Title:        step.Title,
			Description:  step.Description,
			Tools:        step.Tools,
			PhotoDataURI: photoURI,
		}
	}

	// 固定计划直接完成，配图仅尽力而为，不经过 ResolvingImages
	if o.source.Kind() == entity.GuideSourceLive {
		for i := range reqs {
			observer.OnProgress(Progress{
				State:   entity.StateResolvingImages,
				Message: fmt.Sprintf("Fetching image for step %d", i+1),
			})
		}
	}
	images := o.resolver.ResolveAll(ctx, reqs)

	return entity.NewRepairGuide(id, plan, images, o.source.Kind()), nil
}

// userMessage 面向用户的错误文案
func userMessage(err error) string {
	if !apperrors.IsAppError(err) {
		return "Failed to generate guide"
	}
	appErr := apperrors.AsAppError(err)
	if appErr.Kind() == apperrors.KindValidation && appErr.Detail != "" {
		return appErr.Detail
	}
	return appErr.Message
}
