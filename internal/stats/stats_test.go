package stats

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"math"
	"testing"

	"soilstat/internal/landuse"
	"soilstat/internal/model"
)

func testStandard(t *testing.T) *model.GradingStandard {
	t.Helper()
	th := []model.Threshold{
		{Label: "一级", UpperBound: 10},
		{Label: "二级", UpperBound: 20},
		{Label: "三级", UpperBound: math.Inf(1)},
	}
	std, err := model.NewGradingStandard(model.StandardInfo{ID: "test", Name: "测试"}, true, []model.AttributeDefinition{
		{Key: "OM", DisplayName: "有机质", Unit: "g/kg", Thresholds: th},
		{Key: "ASI", DisplayName: "有效硅", Unit: "mg/kg", LandUseFilter: model.LandUseFilterPaddyOnly, Thresholds: th},
		{Key: "AB", DisplayName: "有效硼", Unit: "mg/kg", Thresholds: th},
	})
	if err != nil {
		t.Fatalf("NewGradingStandard: %v", err)
	}
	return std
}

func sample(town, land, soil string, values map[string]float64) model.SampleRow {
	return model.SampleRow{Township: town, LandUse: land, SoilType: soil, Values: values}
}

// TestPercentileLinear 测试线性插值百分位
func TestPercentileLinear(t *testing.T) {
	t.Parallel()

	sorted := []float64{1, 2, 3, 4}
	cases := []struct {
		p    float64
		want float64
	}{
		{0, 1}, {25, 1.75}, {50, 2.5}, {90, 3.7}, {100, 4},
	}
	for _, tc := range cases {
		if got := Percentile(sorted, tc.p); math.Abs(got-tc.want) > 1e-9 {
			t.Fatalf("Percentile(%v) = %v, want %v", tc.p, got, tc.want)
		}
	}
	if got := Percentile([]float64{7}, 98); got != 7 {
		t.Fatalf("single value percentile = %v", got)
	}
	if !math.IsNaN(Percentile(nil, 50)) {
		t.Fatalf("empty percentile should be NaN")
	}
}

// TestAggregateSamplesScenario 测试三样点的端到端统计
func TestAggregateSamplesScenario(t *testing.T) {
	t.Parallel()

	rows := []model.SampleRow{
		sample("城关镇", "水田", "潴育水稻土", map[string]float64{"OM": 8}),
		sample("城关镇", "旱地", "潮土", map[string]float64{"OM": 15}),
		sample("新河镇", "果园", "潴育水稻土", map[string]float64{"OM": 25}),
	}
	res, err := AggregateSamples(context.Background(), [][]model.SampleRow{rows}, testStandard(t), SampleOptions{})
	if err != nil {
		t.Fatalf("AggregateSamples: %v", err)
	}

	om, ok := res.Get("OM")
	if !ok {
		t.Fatalf("OM missing")
	}
	if om.Count != 3 || om.Mean != 16.0 || om.Min != 8 || om.Max != 25 {
		t.Fatalf("unexpected summary: %+v", om.Summary)
	}
	for _, label := range []string{"一级", "二级", "三级"} {
		if v, _ := om.GradeDistribution.Get(label); v != 33.33 {
			t.Fatalf("%s = %v, want 33.33", label, v)
		}
	}

	if got := om.ByTownship.Keys(); len(got) != 2 || got[0] != "城关镇" || got[1] != "新河镇" {
		t.Fatalf("township order = %v", got)
	}
	if got := om.ByLandUse.Keys(); len(got) != 2 || got[0] != landuse.Cultivated || got[1] != landuse.Garden {
		t.Fatalf("land use groups = %v", got)
	}
	town, _ := om.ByTownship.Get("城关镇")
	if town.Count != 2 || town.Mean != 11.5 {
		t.Fatalf("城关镇 summary = %+v", town)
	}
	if _, ok := town.GradeDistribution.Get("三级"); ok {
		t.Fatalf("zero-count grade should be omitted")
	}
}

// TestAggregateSamplesSkipsEmptyAttribute 测试全空属性不出现在结果中
func TestAggregateSamplesSkipsEmptyAttribute(t *testing.T) {
	t.Parallel()

	rows := []model.SampleRow{
		sample("A", "水田", "", map[string]float64{"OM": 12, "AB": 0}),
		sample("A", "旱地", "", map[string]float64{"OM": 18}),
	}
	res, err := AggregateSamples(context.Background(), [][]model.SampleRow{rows}, testStandard(t), SampleOptions{Concurrency: 1})
	if err != nil {
		t.Fatalf("AggregateSamples: %v", err)
	}
	if _, ok := res.Get("AB"); ok {
		t.Fatalf("AB has only non-positive values and must be skipped")
	}
	if res.Attributes.Len() != 1 || len(res.Skipped) != 2 {
		t.Fatalf("attributes=%v skipped=%+v", res.Attributes.Keys(), res.Skipped)
	}
	if res.Skipped[0].Attribute != "ASI" || res.Skipped[1].Attribute != "AB" {
		t.Fatalf("skipped order = %+v", res.Skipped)
	}
}

// TestAggregateSamplesPaddyOnly 测试仅水田过滤，兼容不同写法
func TestAggregateSamplesPaddyOnly(t *testing.T) {
	t.Parallel()

	rows := []model.SampleRow{
		sample("A", "水田", "", map[string]float64{"ASI": 60}),
		sample("A", "0101", "", map[string]float64{"ASI": 200}),
		sample("A", "水浇地", "", map[string]float64{"ASI": 999}),
		sample("A", "茶园", "", map[string]float64{"ASI": 999}),
	}
	res, err := AggregateSamples(context.Background(), [][]model.SampleRow{rows}, testStandard(t), SampleOptions{})
	if err != nil {
		t.Fatalf("AggregateSamples: %v", err)
	}
	asi, ok := res.Get("ASI")
	if !ok {
		t.Fatalf("ASI missing")
	}
	if asi.Count != 2 || asi.Max != 200 {
		t.Fatalf("paddy filter not applied: %+v", asi.Summary)
	}
}

// TestGradeDistributionSums 测试等级占比之和约等于 100
func TestGradeDistributionSums(t *testing.T) {
	t.Parallel()

	var rows []model.SampleRow
	for i := 1; i <= 7; i++ {
		rows = append(rows, sample("A", "水田", "", map[string]float64{"OM": float64(i * 4)}))
	}
	res, err := AggregateSamples(context.Background(), [][]model.SampleRow{rows}, testStandard(t), SampleOptions{})
	if err != nil {
		t.Fatalf("AggregateSamples: %v", err)
	}
	om, _ := res.Get("OM")
	var sum float64
	om.GradeDistribution.Each(func(_ string, v float64) { sum += v })
	if math.Abs(sum-100) > 0.1 {
		t.Fatalf("distribution sum = %v", sum)
	}
}

// TestAggregateSamplesIdempotent 测试两次计算结果完全一致
func TestAggregateSamplesIdempotent(t *testing.T) {
	t.Parallel()

	rows := []model.SampleRow{
		sample("B", "水田", "潮土", map[string]float64{"OM": 31.2, "ASI": 120, "AB": 0.4}),
		sample("A", "林地", "黄棕壤", map[string]float64{"OM": 9.1, "AB": 0.7}),
		sample("B", "旱地", "潮土", map[string]float64{"OM": 17.5, "AB": 1.3}),
	}
	std := testStandard(t)

	encode := func() []byte {
		res, err := AggregateSamples(context.Background(), [][]model.SampleRow{rows}, std, SampleOptions{})
		if err != nil {
			t.Fatalf("AggregateSamples: %v", err)
		}
		data, err := json.Marshal(res.Attributes)
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}
		return data
	}
	if a, b := encode(), encode(); !bytes.Equal(a, b) {
		t.Fatalf("results differ:\n%s\n%s", a, b)
	}
}

// TestAggregateAreaConcatenates 测试两张面积表拼接求和不去重
func TestAggregateAreaConcatenates(t *testing.T) {
	t.Parallel()

	first := []model.AreaRow{
		{Area: 100, LandUse: "水田", Township: "城关镇", SoilType: "潮土"},
		{Area: 50, LandUse: "林地", Township: "新河镇"},
	}
	second := []model.AreaRow{
		{Area: 100, LandUse: "水田", Township: "城关镇", SoilType: "潮土"},
		{Area: 25.5, LandUse: "未知地类", Township: "城关镇"},
	}
	res := AggregateArea([][]model.AreaRow{first, second}, nil)

	if res.Total != 275.5 || res.Rows != 4 {
		t.Fatalf("total=%v rows=%d", res.Total, res.Rows)
	}
	if math.Abs(res.ConservationDelta()) > 1e-9 {
		t.Fatalf("land use areas do not sum to total")
	}
	if v, _ := res.ByTownship.Get("城关镇"); v != 225.5 {
		t.Fatalf("城关镇 = %v", v)
	}
	if v, _ := res.ByLandUse.Get(landuse.Other); v != 25.5 {
		t.Fatalf("其他 = %v", v)
	}
	if len(res.UnknownLandUse) != 1 || res.UnknownLandUse[0] != "未知地类" {
		t.Fatalf("unknown labels = %v", res.UnknownLandUse)
	}
	inner, _ := res.ByTownshipAndLandUse.Get("城关镇")
	if v, _ := inner.Get(landuse.Cultivated); v != 200 {
		t.Fatalf("城关镇/耕地 = %v", v)
	}

	pct, err := res.Percent(50)
	if err != nil || pct != 18.15 {
		t.Fatalf("Percent = %v, %v", pct, err)
	}
	if area, ok := res.FilteredArea(model.LandUseFilterPaddyOnly); !ok || area != 200 {
		t.Fatalf("paddy area = %v, %v", area, ok)
	}
	if _, ok := res.FilteredArea(model.LandUseFilterCultivatedGarden); !ok {
		t.Fatalf("cultivated_garden should hit 耕地 rows")
	}
}

// TestAggregateAreaZeroTotal 测试总面积为 0 时占比返回 ZeroAreaError
func TestAggregateAreaZeroTotal(t *testing.T) {
	t.Parallel()

	res := AggregateArea([][]model.AreaRow{{{Area: 0, LandUse: "水田", Township: "A"}}}, nil)
	if v, _ := res.ByTownship.Get("A"); v != 0 {
		t.Fatalf("raw sums should still be reported")
	}
	_, err := res.Shares(res.ByLandUse)
	var zeroErr *model.ZeroAreaError
	if !errors.As(err, &zeroErr) {
		t.Fatalf("expected ZeroAreaError, got %v", err)
	}
}

// TestAggregateGradeAreas 测试按面积加权的等级统计
func TestAggregateGradeAreas(t *testing.T) {
	t.Parallel()

	rows := []model.AreaRow{
		{Area: 30, LandUse: "水田", Township: "A", Values: map[string]float64{"OM": 5, "ASI": 80}},
		{Area: 10, LandUse: "旱地", Township: "B", Values: map[string]float64{"OM": 25, "ASI": 300}},
	}
	got := AggregateGradeAreas([][]model.AreaRow{rows}, testStandard(t), nil)

	om, ok := got.Get("OM")
	if !ok {
		t.Fatalf("OM grade areas missing")
	}
	if om.TotalArea != 40 || om.WeightedMean != 10 {
		t.Fatalf("OM total=%v mean=%v", om.TotalArea, om.WeightedMean)
	}
	if v, _ := om.GradeShares.Get("一级"); v != 75 {
		t.Fatalf("一级 share = %v", v)
	}
	asi, _ := got.Get("ASI")
	if asi.TotalArea != 30 {
		t.Fatalf("ASI should only count paddy area, got %v", asi.TotalArea)
	}
	if _, ok := got.Get("AB"); ok {
		t.Fatalf("AB has no values and should be absent")
	}
}

// TestSummarizeOrder 测试预览顺序跟随标准声明顺序
func TestSummarizeOrder(t *testing.T) {
	t.Parallel()

	rows := []model.SampleRow{
		sample("A", "水田", "", map[string]float64{"AB": 0.5, "OM": 12, "ASI": 90}),
	}
	std := testStandard(t)
	res, err := AggregateSamples(context.Background(), [][]model.SampleRow{rows}, std, SampleOptions{})
	if err != nil {
		t.Fatalf("AggregateSamples: %v", err)
	}
	preview := Summarize(res, std)
	if len(preview) != 3 || preview[0].Key != "OM" || preview[1].Key != "ASI" || preview[2].Key != "AB" {
		t.Fatalf("preview order wrong: %+v", preview)
	}
	if preview[0].SampleCount != 1 || preview[0].SampleMean != 12 {
		t.Fatalf("preview values wrong: %+v", preview[0])
	}
}

// TestSummarizeRounding 测试预览中的均值与最值保留 2 位小数
func TestSummarizeRounding(t *testing.T) {
	t.Parallel()

	rows := []model.SampleRow{
		sample("A", "水田", "", map[string]float64{"OM": 10.004}),
		sample("A", "旱地", "", map[string]float64{"OM": 12.3456}),
		sample("B", "果园", "", map[string]float64{"OM": 15.1}),
	}
	std := testStandard(t)
	res, err := AggregateSamples(context.Background(), [][]model.SampleRow{rows}, std, SampleOptions{})
	if err != nil {
		t.Fatalf("AggregateSamples: %v", err)
	}
	om := Summarize(res, std)[0]
	if om.SampleMin != 10 || om.SampleMax != 15.1 || om.SampleMean != 12.48 {
		t.Fatalf("preview rounding = %+v", om)
	}
}
