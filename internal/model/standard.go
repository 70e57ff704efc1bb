package model

import (
	"fmt"
	"math"
)

// LandUseFilter 属性适用的土地利用范围
type LandUseFilter string

const (
	LandUseFilterNone             LandUseFilter = ""
	LandUseFilterCultivatedGarden LandUseFilter = "cultivated_garden" // 耕地 + 园地
	LandUseFilterCultivatedOnly   LandUseFilter = "cultivated_only"   // 仅耕地
	LandUseFilterPaddyOnly        LandUseFilter = "paddy_only"        // 仅水田
)

// ParseLandUseFilter 解析土地利用过滤规则，空串表示不过滤
func ParseLandUseFilter(s string) (LandUseFilter, error) {
	switch f := LandUseFilter(s); f {
	case LandUseFilterNone, LandUseFilterCultivatedGarden, LandUseFilterCultivatedOnly, LandUseFilterPaddyOnly:
		return f, nil
	}
	return LandUseFilterNone, fmt.Errorf("unknown land use filter: %q", s)
}

// Label 中文展示名
func (f LandUseFilter) Label() string {
	switch f {
	case LandUseFilterCultivatedGarden:
		return "耕地、园地"
	case LandUseFilterCultivatedOnly:
		return "耕地"
	case LandUseFilterPaddyOnly:
		return "水田"
	default:
		return "全部"
	}
}

// Threshold 分级阈值：取值 <= UpperBound 归入该等级
type Threshold struct {
	Label       string  `json:"label"`
	UpperBound  float64 `json:"upper_bound"`
	Description string  `json:"description,omitempty"`
}

// AttributeDefinition 属性定义
type AttributeDefinition struct {
	Key            string        `json:"key"`
	DisplayName    string        `json:"name"`
	Unit           string        `json:"unit"`
	LandUseFilter  LandUseFilter `json:"land_use_filter,omitempty"`
	ReverseDisplay bool          `json:"reverse_display"`
	Aliases        []string      `json:"aliases,omitempty"`
	Thresholds     []Threshold   `json:"thresholds"`
}

// HeaderWithUnit 表头文字，单位附在表头而不是数值上
func (a *AttributeDefinition) HeaderWithUnit(prefix string) string {
	if a.Unit == "" {
		return prefix
	}
	return fmt.Sprintf("%s/(%s)", prefix, a.Unit)
}

// GradeLabels 按阈值顺序返回等级标签
func (a *AttributeDefinition) GradeLabels() []string {
	labels := make([]string, len(a.Thresholds))
	for i, t := range a.Thresholds {
		labels[i] = t.Label
	}
	return labels
}

// Validate 校验阈值：非空、升序、标签唯一；最后一级视为 +Inf
func (a *AttributeDefinition) Validate(standardID string) error {
	fail := func(format string, args ...any) error {
		return &ClassificationConfigError{Standard: standardID, Attribute: a.Key, Reason: fmt.Sprintf(format, args...)}
	}

	if a.Key == "" {
		return fail("attribute key is empty")
	}
	if len(a.Thresholds) == 0 {
		return fail("no thresholds")
	}

	seen := make(map[string]struct{}, len(a.Thresholds))
	last := len(a.Thresholds) - 1
	for i, t := range a.Thresholds {
		if t.Label == "" {
			return fail("threshold %d has empty label", i+1)
		}
		if _, dup := seen[t.Label]; dup {
			return fail("duplicate grade label %q", t.Label)
		}
		seen[t.Label] = struct{}{}

		if i == last {
			break
		}
		if math.IsNaN(t.UpperBound) || math.IsInf(t.UpperBound, 0) {
			return fail("threshold %q must have a finite upper bound", t.Label)
		}
		if i > 0 && t.UpperBound <= a.Thresholds[i-1].UpperBound {
			return fail("thresholds not ascending at %q (%g <= %g)", t.Label, t.UpperBound, a.Thresholds[i-1].UpperBound)
		}
	}
	return nil
}

// StandardInfo 分级标准概要
type StandardInfo struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// GradingStandard 分级标准，加载后不可变
type GradingStandard struct {
	info               StandardInfo
	excludeNonPositive bool
	attributes         []AttributeDefinition
	index              map[string]int
}

// NewGradingStandard 创建并校验分级标准
func NewGradingStandard(info StandardInfo, excludeNonPositive bool, attrs []AttributeDefinition) (*GradingStandard, error) {
	if info.ID == "" {
		return nil, &ClassificationConfigError{Reason: "standard id is empty"}
	}

	s := &GradingStandard{
		info:               info,
		excludeNonPositive: excludeNonPositive,
		attributes:         make([]AttributeDefinition, 0, len(attrs)),
		index:              make(map[string]int, len(attrs)),
	}
	for _, a := range attrs {
		if err := a.Validate(info.ID); err != nil {
			return nil, err
		}
		if _, dup := s.index[a.Key]; dup {
			return nil, &ClassificationConfigError{Standard: info.ID, Attribute: a.Key, Reason: "duplicate attribute key"}
		}

		// 深拷贝，避免调用方修改
		a.Thresholds = append([]Threshold(nil), a.Thresholds...)
		a.Aliases = append([]string(nil), a.Aliases...)
		a.Thresholds[len(a.Thresholds)-1].UpperBound = math.Inf(1)

		s.index[a.Key] = len(s.attributes)
		s.attributes = append(s.attributes, a)
	}
	return s, nil
}

// ID 标准标识
func (s *GradingStandard) ID() string { return s.info.ID }

// Info 标准概要
func (s *GradingStandard) Info() StandardInfo { return s.info }

// Len 属性数量
func (s *GradingStandard) Len() int { return len(s.attributes) }

// ExcludeNonPositive 是否剔除 <= 0 的测定值
func (s *GradingStandard) ExcludeNonPositive() bool { return s.excludeNonPositive }

// Attribute 按 key 查找属性定义
func (s *GradingStandard) Attribute(key string) (*AttributeDefinition, bool) {
	i, ok := s.index[key]
	if !ok {
		return nil, false
	}
	return &s.attributes[i], true
}

// Attributes 按声明顺序返回属性定义副本
func (s *GradingStandard) Attributes() []AttributeDefinition {
	out := make([]AttributeDefinition, len(s.attributes))
	copy(out, s.attributes)
	return out
}
