// Package prompt 构建生成式模型请求：维修计划请求与步骤配图请求
package prompt

import (
	"fmt"
	"strings"

	"repair-guide-api/internal/infrastructure/llm"
)

const roleUser = "user"

// planOutputContract 计划解析依赖的严格 JSON 输出约定
const planOutputContract = `{"title": string; "safety"?: string; "steps": {"title": string; "description": string; "caution"?: string; "tools"?: string[]}[]}`

// PlanInstruction 生成维修计划的文本指令
func PlanInstruction(description string) string {
	var b strings.Builder
	b.WriteString("You are a meticulous repair technician. Analyze the user's damage report and optional photo. ")
	b.WriteString("Respond with strict JSON only, no prose and no markdown, matching this TypeScript type: ")
	b.WriteString(planOutputContract)
	b.WriteString(". Steps should be concise instructions tailored to household repairs, in the order they must be performed. ")
	b.WriteString("When unsure, make safe assumptions and mention them in the description. ")
	b.WriteString("User report: ")
	b.WriteString(strings.TrimSpace(description))
	return b.String()
}

// StepImageInstruction 生成步骤配图的文本指令
func StepImageInstruction(stepTitle, stepDescription string) string {
	return fmt.Sprintf(
		"Generate an instructional product photo showing the result of this step. Keep the tool layout realistic. Step title: %s. Step details: %s.",
		strings.TrimSpace(stepTitle),
		strings.TrimSpace(stepDescription),
	)
}

// BuildPlanRequest 组装维修计划请求：[内联照片?, 文本指令]
func BuildPlanRequest(description, photoDataURI string) (*llm.GenerateContentRequest, error) {
	return buildRequest(photoDataURI, PlanInstruction(description))
}

// BuildStepImageRequest 组装步骤配图请求，照片可选，用作生成种子
func BuildStepImageRequest(stepTitle, stepDescription, photoDataURI string) (*llm.GenerateContentRequest, error) {
	return buildRequest(photoDataURI, StepImageInstruction(stepTitle, stepDescription))
}

func buildRequest(photoDataURI, text string) (*llm.GenerateContentRequest, error) {
	parts := make([]llm.Part, 0, 2)
	if photoDataURI != "" {
		inline, err := InlineImagePart(photoDataURI)
		if err != nil {
			return nil, fmt.Errorf("invalid photo: %w", err)
		}
		parts = append(parts, *inline)
	}
	parts = append(parts, llm.Part{Text: text})

	return &llm.GenerateContentRequest{
		Contents: []llm.Content{
			{
				Role:  roleUser,
				Parts: parts,
			},
		},
	}, nil
}
