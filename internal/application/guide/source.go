package guide

import (
	"context"
	stderrors "errors"

	"go.opentelemetry.io/otel/attribute"

	"repair-guide-api/internal/application/prompt"
	"repair-guide-api/internal/domain/entity"
	"repair-guide-api/internal/infrastructure/llm"
	apperrors "repair-guide-api/pkg/errors"
	"repair-guide-api/pkg/logger"
	"repair-guide-api/pkg/tracer"
)

// ModelClient 生成式模型调用能力（port）
type ModelClient interface {
	GenerateContent(ctx context.Context, model string, req *llm.GenerateContentRequest) (*llm.GenerateContentResponse, error)
}

// PlanSource 维修计划来源
type PlanSource interface {
	Kind() entity.GuideSource
	Plan(ctx context.Context, description, photoDataURI string, observer ProgressObserver) (*entity.RepairPlan, error)
}

// LiveModelSource 调用模型生成计划
type LiveModelSource struct {
	client ModelClient
	model  string
}

// NewLiveModelSource 创建模型计划来源
func NewLiveModelSource(client ModelClient, model string) *LiveModelSource {
	return &LiveModelSource{client: client, model: model}
}

func (s *LiveModelSource) Kind() entity.GuideSource { return entity.GuideSourceLive }

func (s *LiveModelSource) Plan(ctx context.Context, description, photoDataURI string, observer ProgressObserver) (*entity.RepairPlan, error) {
	ctx, span := tracer.Start(ctx, "guide.LiveModelSource.Plan")
	defer span.End()
	span.SetAttributes(attribute.String("llm.model", s.model))

	req, err := prompt.BuildPlanRequest(description, photoDataURI)
	if err != nil {
		return nil, apperrors.ErrValidationFailed.WithDetail("photo could not be encoded").WithError(err)
	}

	observerOrNop(observer).OnProgress(Progress{State: entity.StateAwaitingPlan, Message: "Planning repair strategy"})

	resp, err := s.client.GenerateContent(ctx, s.model, req)
	if err != nil {
		tracer.Fail(span, err)
		appErr := apperrors.ErrLLMCallFailed.WithError(err)
		var statusErr *llm.StatusError
		if stderrors.As(err, &statusErr) {
			appErr = appErr.WithDetail(statusErr.Error())
		}
		return nil, appErr
	}

	text, err := ExtractPlanText(resp)
	if err != nil {
		tracer.Fail(span, err)
		return nil, err
	}

	plan, err := ParseRepairPlan(text)
	if err != nil {
		logger.Warn(ctx, "unable to parse model plan", "error", err.Error())
		tracer.Fail(span, err)
		return nil, err
	}
	span.SetAttributes(attribute.Int("plan.steps", len(plan.Steps)))
	return plan, nil
}

// FixedFallbackSource 返回固定计划，不发起网络请求
type FixedFallbackSource struct{}

func (FixedFallbackSource) Kind() entity.GuideSource { return entity.GuideSourceFallback }

func (FixedFallbackSource) Plan(_ context.Context, _, _ string, observer ProgressObserver) (*entity.RepairPlan, error) {
	observerOrNop(observer).OnProgress(Progress{State: entity.StatePreparing, Message: FallbackGuidance})
	return FallbackPlan(), nil
}
