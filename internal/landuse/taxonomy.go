// Package landuse 地类名称归一化
package landuse

import (
	"strings"

	"soilstat/internal/model"
)

// 一级地类
const (
	Cultivated = "耕地"
	Garden     = "园地"
	Forest     = "林地"
	Grassland  = "草地"
	Other      = "其他"
)

// 二级地类
const (
	Paddy        = "水田"
	IrrigatedDry = "水浇地"
	Dryland      = "旱地"
	Orchard      = "果园"
	TeaGarden    = "茶园"
	OtherGarden  = "其他园地"
)

// Category 归一化后的地类
type Category struct {
	Primary   string `json:"primary"`
	Secondary string `json:"secondary"`
	// Known 为 false 表示原始名称未识别，被归入"其他"
	Known bool `json:"known"`
}

// Group 一级地类及其二级地类
type Group struct {
	Primary     string
	Secondaries []string
}

type containsRule struct {
	substr   string
	category Category
}

// Taxonomy 地类归一化规则，创建后只读
type Taxonomy struct {
	exact    map[string]Category
	contains []containsRule
	groups   []Group
}

// Default 三调地类口径
func Default() *Taxonomy {
	t := &Taxonomy{
		exact: make(map[string]Category),
		groups: []Group{
			{Primary: Cultivated, Secondaries: []string{Paddy, IrrigatedDry, Dryland}},
			{Primary: Garden, Secondaries: []string{Orchard, TeaGarden, OtherGarden}},
			{Primary: Forest, Secondaries: []string{Forest}},
			{Primary: Grassland, Secondaries: []string{Grassland}},
			{Primary: Other, Secondaries: []string{Other}},
		},
	}

	t.addExact(Cultivated, Paddy, "水田", "0101")
	t.addExact(Cultivated, IrrigatedDry, "水浇地", "0102")
	t.addExact(Cultivated, Dryland, "旱地", "0103")
	t.addExact(Garden, Orchard, "果园", "0201")
	t.addExact(Garden, TeaGarden, "茶园", "0202")
	t.addExact(Garden, OtherGarden, "橡胶园", "0203", "其他园地", "0204")
	t.addExact(Forest, Forest, "0301", "0302", "0305", "0307")
	t.addExact(Grassland, Grassland, "0401", "0403", "0404")

	t.contains = []containsRule{
		{substr: "园地", category: Category{Primary: Garden, Secondary: OtherGarden, Known: true}},
		{substr: "林地", category: Category{Primary: Forest, Secondary: Forest, Known: true}},
		{substr: "草地", category: Category{Primary: Grassland, Secondary: Grassland, Known: true}},
	}
	return t
}

func (t *Taxonomy) addExact(primary, secondary string, labels ...string) {
	for _, l := range labels {
		t.exact[l] = Category{Primary: primary, Secondary: secondary, Known: true}
	}
}

// Normalize 原始地类名称归一化，未识别的名称归入"其他"
func (t *Taxonomy) Normalize(raw string) Category {
	s := strings.TrimSpace(raw)
	if c, ok := t.exact[s]; ok {
		return c
	}
	for _, r := range t.contains {
		if strings.Contains(s, r.substr) {
			return r.category
		}
	}
	if s == Other {
		return Category{Primary: Other, Secondary: Other, Known: true}
	}
	return Category{Primary: Other, Secondary: Other}
}

// Groups 地类结构（报表行顺序）
func (t *Taxonomy) Groups() []Group {
	return t.groups
}

// Primaries 一级地类顺序
func (t *Taxonomy) Primaries() []string {
	out := make([]string, len(t.groups))
	for i, g := range t.groups {
		out[i] = g.Primary
	}
	return out
}

// Allows 判断地类是否在属性的适用范围内
func Allows(filter model.LandUseFilter, c Category) bool {
	switch filter {
	case model.LandUseFilterCultivatedGarden:
		return c.Primary == Cultivated || c.Primary == Garden
	case model.LandUseFilterCultivatedOnly:
		return c.Primary == Cultivated
	case model.LandUseFilterPaddyOnly:
		return c.Primary == Cultivated && c.Secondary == Paddy
	default:
		return true
	}
}

// AllowedPrimaries 过滤规则覆盖的一级地类，nil 表示全部
func AllowedPrimaries(filter model.LandUseFilter) []string {
	switch filter {
	case model.LandUseFilterCultivatedGarden:
		return []string{Cultivated, Garden}
	case model.LandUseFilterCultivatedOnly, model.LandUseFilterPaddyOnly:
		return []string{Cultivated}
	default:
		return nil
	}
}
