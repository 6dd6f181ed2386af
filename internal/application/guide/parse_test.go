package guide

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"repair-guide-api/internal/infrastructure/llm"
	apperrors "repair-guide-api/pkg/errors"
)

const planJSON = `{
  "title": "Replace cracked phone screen",
  "safety": "Power the phone off first.",
  "steps": [
    {"title": "Heat the edges", "description": "Warm the adhesive for two minutes.", "tools": ["Heat gun"]},
    {"title": "Lift the panel", "description": "Use a suction cup and picks.", "caution": "Mind the ribbon cable."}
  ]
}`

func TestParseRepairPlanFencedMatchesBare(t *testing.T) {
	bare, err := ParseRepairPlan(planJSON)
	require.NoError(t, err)

	for _, wrapped := range []string{
		"```json\n" + planJSON + "\n```",
		"```\n" + planJSON + "\n```",
		"  \n```json" + planJSON + "```  \n",
	} {
		fenced, err := ParseRepairPlan(wrapped)
		require.NoError(t, err)
		assert.Equal(t, bare, fenced)
	}

	assert.Equal(t, "Replace cracked phone screen", bare.Title)
	require.Len(t, bare.Steps, 2)
	assert.Equal(t, []string{"Heat gun"}, bare.Steps[0].Tools)
	assert.Equal(t, "Mind the ribbon cable.", bare.Steps[1].Caution)
}

func TestParseRepairPlanEmpty(t *testing.T) {
	for _, raw := range []string{"", "   ", "```json\n```"} {
		_, err := ParseRepairPlan(raw)
		require.Error(t, err)
		assert.True(t, errors.Is(err, apperrors.ErrEmptyResponse), "raw=%q", raw)
		assert.Equal(t, apperrors.KindFormat, apperrors.KindOf(err))
	}
}

func TestParseRepairPlanMalformedKeepsRawText(t *testing.T) {
	raw := "```json\n{\"title\": \"Oops\", \"steps\": [\n```"

	_, err := ParseRepairPlan(raw)
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrMalformedPlan))
	assert.Equal(t, apperrors.KindFormat, apperrors.KindOf(err))

	appErr := apperrors.AsAppError(err)
	assert.Equal(t, `{"title": "Oops", "steps": [`, appErr.Detail)
}

func TestParseRepairPlanSchemaViolations(t *testing.T) {
	tests := []struct {
		name  string
		raw   string
		field string
		rule  string
	}{
		{name: "missing title", raw: `{"steps":[{"title":"a","description":"b"}]}`, field: "title", rule: "required"},
		{name: "missing steps", raw: `{"title":"x"}`, field: "steps", rule: "required"},
		{name: "empty steps", raw: `{"title":"x","steps":[]}`, field: "steps", rule: "min"},
		{name: "step without title", raw: `{"title":"x","steps":[{"title":"a","description":"b"},{"description":"c"}]}`, field: "steps[1].title", rule: "required"},
		{name: "step without description", raw: `{"title":"x","steps":[{"title":"a"}]}`, field: "steps[0].description", rule: "required"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseRepairPlan(tt.raw)
			require.Error(t, err)
			assert.True(t, errors.Is(err, apperrors.ErrMalformedPlan))

			var violation *PlanViolation
			require.True(t, errors.As(err, &violation))
			assert.Equal(t, tt.field, violation.Field)
			assert.Equal(t, tt.rule, violation.Rule)
			assert.Equal(t, tt.raw, apperrors.AsAppError(err).Detail)
		})
	}
}

func TestExtractPlanText(t *testing.T) {
	resp := &llm.GenerateContentResponse{Raw: []byte(`{"candidates":[{"content":{"parts":[{"inlineData":{"mimeType":"image/png","data":"AA"}},{"text":"hello"}]}}]}`)}
	text, err := ExtractPlanText(resp)
	require.NoError(t, err)
	assert.Equal(t, "hello", text)

	_, err = ExtractPlanText(&llm.GenerateContentResponse{Raw: []byte(`{"candidates":[]}`)})
	assert.True(t, errors.Is(err, apperrors.ErrEmptyResponse))
}

func TestFallbackPlanIsValidAndIsolated(t *testing.T) {
	plan := FallbackPlan()
	require.NoError(t, ValidateRepairPlan(plan))
	assert.Equal(t, "Stabilize and Patch Damaged Panel", plan.Title)
	require.Len(t, plan.Steps, 4)

	plan.Steps[0].Tools[0] = "mutated"
	plan.Steps[1].Title = "mutated"
	fresh := FallbackPlan()
	assert.Equal(t, "Camera", fresh.Steps[0].Tools[0])
	assert.Equal(t, "Clean and prep the surface", fresh.Steps[1].Title)
}
