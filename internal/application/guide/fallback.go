package guide

import "repair-guide-api/internal/domain/entity"

// FallbackGuidance 未配置模型凭据时的提示
const FallbackGuidance = "Gemini key missing. Falling back to local sample guide."

// fallbackPlan 无模型凭据时使用的固定计划
var fallbackPlan = entity.RepairPlan{
	Title:  "Stabilize and Patch Damaged Panel",
	Safety: "Disconnect power, wear cut-proof gloves, and secure the chassis on a flat surface before continuing.",
	Steps: []entity.PlanStep{
		{
			Title:       "Document the damage",
			Description: "Capture reference photos and note any cracks or missing hardware so you can match replacements during reassembly.",
			Tools:       []string{"Camera", "Painter's tape"},
			Caution:     "Do not touch exposed wiring until you're certain the unit is de-energized.",
		},
		{
			Title:       "Clean and prep the surface",
			Description: "Brush away debris and degrease the panel so structural adhesive bonds correctly.",
			Tools:       []string{"Nylon brush", "Isopropyl alcohol"},
		},
		{
			Title:       "Patch + clamp",
			Description: "Butter epoxy putty across the fracture, press the backing plate into place, and clamp until cured.",
			Tools:       []string{"Epoxy putty", "Clamp", "Backing plate"},
		},
		{
			Title:       "Rebuild finish",
			Description: "Feather-sand the repair, spot-prime, then apply thin coats of matching paint.",
			Tools:       []string{"1200 grit paper", "Primer pen", "Color-matched paint"},
		},
	},
}

// FallbackPlan 返回固定计划的副本
func FallbackPlan() *entity.RepairPlan {
	plan := fallbackPlan
	plan.Steps = make([]entity.PlanStep, len(fallbackPlan.Steps))
	for i, step := range fallbackPlan.Steps {
		step.Tools = append([]string(nil), step.Tools...)
		plan.Steps[i] = step
	}
	return &plan
}
