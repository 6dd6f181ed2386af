package guide

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"repair-guide-api/internal/domain/entity"
)

var planValidator = newPlanValidator()

func newPlanValidator() *validator.Validate {
	v := validator.New()
	// 违规路径使用 JSON 字段名，如 steps[1].title
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// PlanViolation 计划结构的第一处违规
type PlanViolation struct {
	Field string
	Rule  string
}

func (v *PlanViolation) Error() string {
	return fmt.Sprintf("plan field %s failed %q", v.Field, v.Rule)
}

// ValidateRepairPlan 校验计划结构，返回第一处违规
func ValidateRepairPlan(plan *entity.RepairPlan) error {
	if plan == nil {
		return &PlanViolation{Field: "plan", Rule: "required"}
	}
	err := planValidator.Struct(plan)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		first := verrs[0]
		field := first.Namespace()
		if i := strings.Index(field, "."); i >= 0 {
			field = field[i+1:]
		}
		return &PlanViolation{Field: field, Rule: first.Tag()}
	}
	return err
}
