package standard

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"

	"soilstat/internal/model"
)

// TestJiangsuBuiltin 测试内置江苏标准
func TestJiangsuBuiltin(t *testing.T) {
	t.Parallel()

	std := Jiangsu()
	if std.Len() != 30 {
		t.Fatalf("jiangsu attributes = %d, want 30", std.Len())
	}
	if !std.ExcludeNonPositive() {
		t.Fatalf("jiangsu should exclude non-positive values")
	}

	attrs := std.Attributes()
	if attrs[0].Key != "SRXYZL" || attrs[len(attrs)-1].Key != "clay" {
		t.Fatalf("declaration order not preserved: first=%s last=%s", attrs[0].Key, attrs[len(attrs)-1].Key)
	}

	ph, ok := std.Attribute("ph")
	if !ok {
		t.Fatalf("ph missing")
	}
	if len(ph.Thresholds) != 7 || !math.IsInf(ph.Thresholds[6].UpperBound, 1) {
		t.Fatalf("ph last level should be catch-all: %+v", ph.Thresholds[6])
	}

	asi, _ := std.Attribute("ASI")
	if asi.LandUseFilter != model.LandUseFilterPaddyOnly {
		t.Fatalf("ASI filter = %q", asi.LandUseFilter)
	}
}

// TestLoadFromDir 测试从目录加载 TOML 与 YAML 标准
func TestLoadFromDir(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	tomlDoc := `
id = "henan"
name = "河南分级"
description = "测试"

[[attributes]]
key = "OM"
name = "有机质"
unit = "g/kg"
land_use_filter = "cultivated_only"

[[attributes.levels]]
label = "低"
upper_bound = 15

[[attributes.levels]]
label = "高"
`
	yamlDoc := `
id: anhui
name: 安徽分级
exclude_non_positive: false
attributes:
  - key: ph
    name: pH
    levels:
      - label: 酸性
        upper_bound: 6.5
      - label: 中性
        upper_bound: 7.5
      - label: 碱性
`
	if err := os.WriteFile(filepath.Join(dir, "henan.toml"), []byte(tomlDoc), 0644); err != nil {
		t.Fatalf("write toml: %v", err)
	}
	if err := os.MkdirAll(filepath.Join(dir, "extra"), 0755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "extra", "anhui.yaml"), []byte(yamlDoc), 0644); err != nil {
		t.Fatalf("write yaml: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "README.md"), []byte("ignored"), 0644); err != nil {
		t.Fatalf("write readme: %v", err)
	}

	reg, err := Load(dir, "")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	infos := reg.List()
	if len(infos) != 3 {
		t.Fatalf("standards = %d, want 3: %+v", len(infos), infos)
	}
	if reg.DefaultID() != JiangsuID {
		t.Fatalf("default = %s", reg.DefaultID())
	}

	henan, err := reg.Get("henan")
	if err != nil {
		t.Fatalf("Get henan: %v", err)
	}
	om, _ := henan.Attribute("OM")
	if om.LandUseFilter != model.LandUseFilterCultivatedOnly || !math.IsInf(om.Thresholds[1].UpperBound, 1) {
		t.Fatalf("henan OM decoded wrong: %+v", om)
	}

	anhui, err := reg.Get("anhui")
	if err != nil {
		t.Fatalf("Get anhui: %v", err)
	}
	if anhui.ExcludeNonPositive() {
		t.Fatalf("anhui should keep non-positive values")
	}

	if _, err := reg.Attributes("missing"); !errors.Is(err, ErrUnknownStandard) {
		t.Fatalf("expected ErrUnknownStandard, got %v", err)
	}
}

// TestLoadRejectsBadStandard 测试非法阈值在加载时即失败
func TestLoadRejectsBadStandard(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	doc := `
id = "bad"
[[attributes]]
key = "OM"
[[attributes.levels]]
label = "一级"
upper_bound = 20
[[attributes.levels]]
label = "二级"
upper_bound = 10
[[attributes.levels]]
label = "三级"
`
	if err := os.WriteFile(filepath.Join(dir, "bad.toml"), []byte(doc), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}

	_, err := Load(dir, "")
	var cfgErr *model.ClassificationConfigError
	if !errors.As(err, &cfgErr) {
		t.Fatalf("expected ClassificationConfigError, got %v", err)
	}
	if cfgErr.Standard != "bad" || cfgErr.Attribute != "OM" {
		t.Fatalf("error should locate standard/attribute: %+v", cfgErr)
	}
}

// TestLoadMissingDir 测试目录不存在时仅使用内置标准
func TestLoadMissingDir(t *testing.T) {
	t.Parallel()

	reg, err := Load(filepath.Join(t.TempDir(), "nope"), JiangsuID)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(reg.List()) != 1 || !reg.Has(JiangsuID) {
		t.Fatalf("expected only builtin standard")
	}
	if _, err := NewRegistry("nope", Jiangsu()); !errors.Is(err, ErrUnknownStandard) {
		t.Fatalf("unknown default should fail, got %v", err)
	}
}
