package ingest

import (
	"regexp"
	"strings"

	"soilstat/internal/model"
)

// Columns 各角色列的候选列名，按顺序匹配，不区分大小写
type Columns struct {
	Area        []string `toml:"area"`
	Township    []string `toml:"township"`
	LandUse     []string `toml:"land_use"`
	SoilType    []string `toml:"soil_type"`
	SoilSubtype []string `toml:"soil_subtype"`
}

// DefaultColumns 默认列名
func DefaultColumns() Columns {
	return Columns{
		Area:        []string{"面积", "MJ", "TBMJ", "图斑面积"},
		Township:    []string{"XZQMC", "行政区名称", "乡镇", "乡镇名称", "XZMC"},
		LandUse:     []string{"TDLYLX", "DLMC", "dlm", "二级地类", "地类名称"},
		SoilType:    []string{"TS", "SGen_JZg", "土属"},
		SoilSubtype: []string{"YL", "SSub_JZg", "亚类"},
	}
}

// Merge 用非空配置覆盖默认值
func (c Columns) Merge(override Columns) Columns {
	pick := func(def, o []string) []string {
		if len(o) > 0 {
			return o
		}
		return def
	}
	return Columns{
		Area:        pick(c.Area, override.Area),
		Township:    pick(c.Township, override.Township),
		LandUse:     pick(c.LandUse, override.LandUse),
		SoilType:    pick(c.SoilType, override.SoilType),
		SoilSubtype: pick(c.SoilSubtype, override.SoilSubtype),
	}
}

var spaceRe = regexp.MustCompile(`\s+`)

// normalizeHeader 去除空白字符
func normalizeHeader(name string) string {
	return spaceRe.ReplaceAllString(strings.TrimSpace(name), "")
}

// findColumn 按候选名查找列下标，找不到返回 -1
func findColumn(header []string, candidates []string) int {
	for _, c := range candidates {
		c = normalizeHeader(c)
		for i, h := range header {
			if strings.EqualFold(h, c) {
				return i
			}
		}
	}
	return -1
}

// attributeColumns 识别属性列：key、别名或中文名，重复映射时保留首列
func attributeColumns(header []string, std *model.GradingStandard) map[int]string {
	if std == nil {
		return nil
	}

	lookup := make(map[string]string)
	for _, a := range std.Attributes() {
		names := append([]string{a.Key, a.DisplayName}, a.Aliases...)
		if a.Unit != "" {
			names = append(names, a.DisplayName+"("+a.Unit+")")
		}
		for _, n := range names {
			k := strings.ToLower(normalizeHeader(n))
			if _, exists := lookup[k]; !exists {
				lookup[k] = a.Key
			}
		}
	}

	out := make(map[int]string)
	used := make(map[string]struct{})
	for i, h := range header {
		key, ok := lookup[strings.ToLower(h)]
		if !ok {
			continue
		}
		if _, dup := used[key]; dup {
			continue
		}
		used[key] = struct{}{}
		out[i] = key
	}
	return out
}
