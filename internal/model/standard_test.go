package model

import (
	"errors"
	"fmt"
	"math"
	"testing"
)

func organicMatter() AttributeDefinition {
	return AttributeDefinition{
		Key:         "OM",
		DisplayName: "有机质",
		Unit:        "g/kg",
		Thresholds: []Threshold{
			{Label: "一级", UpperBound: 10},
			{Label: "二级", UpperBound: 20},
			{Label: "三级", UpperBound: 30},
		},
	}
}

// TestNewGradingStandardLastBoundIsInf 测试最后一级阈值被视为无穷大
func TestNewGradingStandardLastBoundIsInf(t *testing.T) {
	t.Parallel()

	std, err := NewGradingStandard(StandardInfo{ID: "t"}, true, []AttributeDefinition{organicMatter()})
	if err != nil {
		t.Fatalf("NewGradingStandard: %v", err)
	}
	attr, ok := std.Attribute("OM")
	if !ok {
		t.Fatalf("OM not found")
	}
	if !math.IsInf(attr.Thresholds[2].UpperBound, 1) {
		t.Fatalf("last bound = %v, want +Inf", attr.Thresholds[2].UpperBound)
	}
	if got := attr.HeaderWithUnit("均值"); got != "均值/(g/kg)" {
		t.Fatalf("header = %q", got)
	}
}

// TestAttributeValidate 测试阈值校验规则
func TestAttributeValidate(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name   string
		mutate func(a *AttributeDefinition)
	}{
		{"empty", func(a *AttributeDefinition) { a.Thresholds = nil }},
		{"unordered", func(a *AttributeDefinition) { a.Thresholds[1].UpperBound = 5 }},
		{"equal bounds", func(a *AttributeDefinition) { a.Thresholds[1].UpperBound = 10 }},
		{"duplicate label", func(a *AttributeDefinition) { a.Thresholds[2].Label = "一级" }},
		{"nan bound", func(a *AttributeDefinition) { a.Thresholds[0].UpperBound = math.NaN() }},
		{"empty label", func(a *AttributeDefinition) { a.Thresholds[0].Label = "" }},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			a := organicMatter()
			a.Thresholds = append([]Threshold(nil), a.Thresholds...)
			tc.mutate(&a)
			_, err := NewGradingStandard(StandardInfo{ID: "t"}, false, []AttributeDefinition{a})
			var cfgErr *ClassificationConfigError
			if !errors.As(err, &cfgErr) {
				t.Fatalf("expected ClassificationConfigError, got %v", err)
			}
			if cfgErr.Attribute != "OM" {
				t.Fatalf("error should name attribute, got %q", cfgErr.Attribute)
			}
		})
	}
}

// TestKindOf 测试包装后的错误分类
func TestKindOf(t *testing.T) {
	t.Parallel()

	wrapped := fmt.Errorf("ingest: %w", &InputFormatError{Table: "a.csv", Column: "面积", Reason: "缺少必需列"})
	if KindOf(wrapped) != KindInputFormat {
		t.Fatalf("expected input format kind")
	}
	if KindOf(&ZeroAreaError{}) != KindZeroArea {
		t.Fatalf("expected zero area kind")
	}
	if KindOf(errors.New("x")) != KindUnknown {
		t.Fatalf("expected unknown kind")
	}
}
