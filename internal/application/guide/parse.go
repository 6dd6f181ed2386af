package guide

import (
	"encoding/json"
	"regexp"
	"strings"

	"repair-guide-api/internal/domain/entity"
	"repair-guide-api/internal/infrastructure/llm"
	apperrors "repair-guide-api/pkg/errors"
)

// fencedBlock 匹配整段被 ``` 或 ```json 包裹的文本
var fencedBlock = regexp.MustCompile("^```(?:json)?\\s*([\\s\\S]*?)\\s*```$")

// ExtractPlanText 取响应中第一个非空文本片段
func ExtractPlanText(resp *llm.GenerateContentResponse) (string, error) {
	text, ok := resp.FirstText()
	if !ok {
		return "", apperrors.ErrEmptyResponse
	}
	return text, nil
}

// StripCodeFence 去掉首尾空白与可选的代码块包裹
func StripCodeFence(raw string) string {
	cleaned := strings.TrimSpace(raw)
	if m := fencedBlock.FindStringSubmatch(cleaned); m != nil {
		cleaned = strings.TrimSpace(m[1])
	}
	return cleaned
}

// ParseRepairPlan 解析并校验模型输出的维修计划
// 解析失败时返回 ErrMalformedPlan，Detail 保留原始文本便于排查
func ParseRepairPlan(raw string) (*entity.RepairPlan, error) {
	cleaned := StripCodeFence(raw)
	if cleaned == "" {
		return nil, apperrors.ErrEmptyResponse
	}

	var plan entity.RepairPlan
	if err := json.Unmarshal([]byte(cleaned), &plan); err != nil {
		return nil, apperrors.ErrMalformedPlan.WithDetail(cleaned).WithError(err)
	}
	if err := ValidateRepairPlan(&plan); err != nil {
		return nil, apperrors.ErrMalformedPlan.WithDetail(cleaned).WithError(err)
	}
	return &plan, nil
}
