// Package report 将统计结果写入多工作表 Excel
package report

import (
	"errors"
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"

	"soilstat/internal/classifier"
	"soilstat/internal/landuse"
	"soilstat/internal/model"
	"soilstat/internal/stats"
)

// 工作表名称，顺序固定
const (
	SheetLandUseArea    = "土地利用面积"
	SheetTownshipArea   = "乡镇面积"
	SheetSoilTypeArea   = "土壤类型面积"
	SheetSampleOverall  = "样点总体统计"
	SheetSampleTownship = "样点乡镇统计"
	SheetSampleLandUse  = "样点土地利用统计"
	SheetSampleSoilType = "样点土壤类型统计"
	SheetSummary        = "属性汇总"
	SheetPercentiles    = "百分位数"
)

// SheetOrder 工作表输出顺序
var SheetOrder = []string{
	SheetLandUseArea, SheetTownshipArea, SheetSoilTypeArea,
	SheetSampleOverall, SheetSampleTownship, SheetSampleLandUse, SheetSampleSoilType,
	SheetSummary, SheetPercentiles,
}

// NotAvailable 数据不可用时写入的占位
const NotAvailable = "N/A"

// Input 组装工作簿所需的统计结果
type Input struct {
	Standard   *model.GradingStandard
	Area       *stats.AreaResult // 可为空
	Samples    *stats.SampleResult
	GradeAreas *model.OrderedMap[*stats.GradeArea] // 可为空
}

// Assembler 工作簿组装器
type Assembler struct {
	taxonomy *landuse.Taxonomy
	areaUnit string
}

// NewAssembler 创建组装器；百分位列取自样点统计结果
func NewAssembler(tx *landuse.Taxonomy, areaUnit string) *Assembler {
	if tx == nil {
		tx = landuse.Default()
	}
	if areaUnit == "" {
		areaUnit = "亩"
	}
	return &Assembler{taxonomy: tx, areaUnit: areaUnit}
}

// Build 生成工作簿字节
func (a *Assembler) Build(in Input) ([]byte, error) {
	if in.Standard == nil || in.Samples == nil {
		return nil, errors.New("report: standard and sample result are required")
	}

	f := excelize.NewFile()
	defer f.Close()

	st, err := newStyler(f)
	if err != nil {
		return nil, err
	}

	writers := []func(*sheetWriter, Input){
		a.writeLandUseArea,
		a.writeTownshipArea,
		a.writeSoilTypeArea,
		a.writeSampleOverall,
		a.groupWriter("乡镇", func(s *model.AttributeStats) *model.OrderedMap[model.Summary] { return s.ByTownship }),
		a.groupWriter("土地利用类型", func(s *model.AttributeStats) *model.OrderedMap[model.Summary] { return s.ByLandUse }),
		a.groupWriter("土壤类型", func(s *model.AttributeStats) *model.OrderedMap[model.Summary] { return s.BySoilType }),
		a.writeSummary,
		a.writePercentiles,
	}

	for i, name := range SheetOrder {
		if i == 0 {
			if err := f.SetSheetName("Sheet1", name); err != nil {
				return nil, fmt.Errorf("rename sheet: %w", err)
			}
		} else if _, err := f.NewSheet(name); err != nil {
			return nil, fmt.Errorf("create sheet %s: %w", name, err)
		}

		w := &sheetWriter{f: f, st: st, name: name, row: 1}
		writers[i](w, in)
		if err := w.finish(); err != nil {
			return nil, err
		}
	}
	f.SetActiveSheet(0)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func (a *Assembler) areaHeader() string {
	return fmt.Sprintf("面积/(%s)", a.areaUnit)
}

// share 面积占比；总面积为 0 时返回 N/A
func share(area *stats.AreaResult, v float64) any {
	pct, err := area.Percent(v)
	if err != nil {
		return NotAvailable
	}
	return pct
}

// shareOf 从分组占比中取值；err 为 ZeroAreaError 时返回 N/A
func shareOf(shares *model.OrderedMap[float64], err error, key string) any {
	if err != nil {
		return NotAvailable
	}
	pct, _ := shares.Get(key)
	return pct
}

func r3(v float64) float64 { return stats.Round(v, 3) }

func (a *Assembler) writeLandUseArea(w *sheetWriter, in Input) {
	w.title("土地利用类型面积统计", 4)
	w.header("一级地类", "二级地类", a.areaHeader(), "占比/%")
	if in.Area == nil || in.Area.Rows == 0 {
		w.values("无制图数据", "", NotAvailable, NotAvailable)
		return
	}

	for _, g := range a.taxonomy.Groups() {
		total, _ := in.Area.ByLandUse.Get(g.Primary)
		if len(g.Secondaries) == 1 {
			w.values(g.Primary, g.Secondaries[0], r3(total), share(in.Area, total))
			continue
		}
		for _, sec := range g.Secondaries {
			v, _ := in.Area.BySecondaryLandUse.Get(sec)
			w.values(g.Primary, sec, r3(v), share(in.Area, v))
		}
		w.totals(g.Primary, "小计", r3(total), share(in.Area, total))
	}
	w.totals("合计", "", r3(in.Area.Total), share(in.Area, in.Area.Total))
}

func (a *Assembler) writeTownshipArea(w *sheetWriter, in Input) {
	primaries := a.taxonomy.Primaries()
	cols := append([]string{"乡镇"}, primaries...)
	cols = append(cols, "合计/("+a.areaUnit+")", "占比/%")
	w.title("分乡镇土地利用面积统计", len(cols))
	w.header(cols...)
	if in.Area == nil || in.Area.ByTownship.Len() == 0 {
		w.values(padNA("无制图数据", len(cols))...)
		return
	}

	shares, err := in.Area.Shares(in.Area.ByTownship)
	in.Area.ByTownshipAndLandUse.Each(func(town string, lu *model.OrderedMap[float64]) {
		row := []any{town}
		for _, p := range primaries {
			v, _ := lu.Get(p)
			row = append(row, r3(v))
		}
		total, _ := in.Area.ByTownship.Get(town)
		row = append(row, r3(total), shareOf(shares, err, town))
		w.values(row...)
	})

	row := []any{"合计"}
	for _, p := range primaries {
		v, _ := in.Area.ByLandUse.Get(p)
		row = append(row, r3(v))
	}
	row = append(row, r3(in.Area.Total), share(in.Area, in.Area.Total))
	w.totals(row...)
}

func (a *Assembler) writeSoilTypeArea(w *sheetWriter, in Input) {
	w.title("土壤类型面积统计", 3)
	w.header("土壤类型", a.areaHeader(), "占比/%")
	if in.Area == nil || in.Area.BySoilType.Len() == 0 {
		w.values("无制图数据", NotAvailable, NotAvailable)
		return
	}
	shares, err := in.Area.Shares(in.Area.BySoilType)
	in.Area.BySoilType.Each(func(soil string, v float64) {
		w.values(soil, r3(v), shareOf(shares, err, soil))
	})
	w.totals("合计", r3(in.Area.Total), share(in.Area, in.Area.Total))
}

// eachAttribute 按标准声明顺序遍历有结果的属性
func eachAttribute(in Input, fn func(def *model.AttributeDefinition, st *model.AttributeStats)) {
	for _, def := range in.Standard.Attributes() {
		st, ok := in.Samples.Get(def.Key)
		if !ok {
			continue
		}
		def := def
		fn(&def, st)
	}
}

func attributeTitle(def *model.AttributeDefinition) string {
	t := fmt.Sprintf("%s（%s）", def.DisplayName, def.Key)
	if def.LandUseFilter != model.LandUseFilterNone {
		t += "  适用地类: " + def.LandUseFilter.Label()
	}
	return t
}

func (a *Assembler) writeSampleOverall(w *sheetWriter, in Input) {
	eachAttribute(in, func(def *model.AttributeDefinition, st *model.AttributeStats) {
		cols := []string{"等级", def.HeaderWithUnit("区间"), "样点数", "样点占比/%", a.areaHeader(), "面积占比/%"}
		w.title(attributeTitle(def), len(cols))
		w.header(cols...)

		var ga *stats.GradeArea
		if in.GradeAreas != nil {
			ga, _ = in.GradeAreas.Get(def.Key)
		}
		ranges := classifier.RangeLabels(def.Thresholds)
		for i, t := range def.Thresholds {
			count, _ := st.GradeCounts.Get(t.Label)
			pct, _ := st.GradeDistribution.Get(t.Label)
			var areaVal, areaPct any = NotAvailable, NotAvailable
			if ga != nil {
				v, _ := ga.GradeAreas.Get(t.Label)
				p, _ := ga.GradeShares.Get(t.Label)
				areaVal, areaPct = r3(v), p
			}
			w.values(t.Label, ranges[i], count, pct, areaVal, areaPct)
		}

		var areaTotal any = NotAvailable
		if ga != nil {
			areaTotal = r3(ga.TotalArea)
		}
		w.totals("合计", "", st.Count, 100.0, areaTotal, pctOrNA(ga != nil, 100.0))
		w.values("均值", r3(st.Mean), "中位数", r3(st.Median), "面积加权均值", weightedMean(ga))
		w.blank()
	})
}

func pctOrNA(ok bool, v float64) any {
	if !ok {
		return NotAvailable
	}
	return v
}

func weightedMean(ga *stats.GradeArea) any {
	if ga == nil {
		return NotAvailable
	}
	return r3(ga.WeightedMean)
}

// groupWriter 分组统计表（乡镇 / 地类 / 土壤类型）
func (a *Assembler) groupWriter(dimension string, groups func(*model.AttributeStats) *model.OrderedMap[model.Summary]) func(*sheetWriter, Input) {
	return func(w *sheetWriter, in Input) {
		eachAttribute(in, func(def *model.AttributeDefinition, st *model.AttributeStats) {
			labels := def.GradeLabels()
			cols := []string{dimension, "样点数", def.HeaderWithUnit("均值"), def.HeaderWithUnit("最小值"), def.HeaderWithUnit("最大值")}
			for _, l := range labels {
				cols = append(cols, l+"/%")
			}
			w.title(attributeTitle(def), len(cols))
			w.header(cols...)

			row := func(name string, s model.Summary, total bool) {
				vals := []any{name, s.Count, r3(s.Mean), r3(s.Min), r3(s.Max)}
				for _, l := range labels {
					pct, ok := s.GradeDistribution.Get(l)
					if !ok {
						vals = append(vals, 0.0)
						continue
					}
					vals = append(vals, pct)
				}
				if total {
					w.totals(vals...)
				} else {
					w.values(vals...)
				}
			}
			groups(st).Each(func(name string, s model.Summary) { row(name, s, false) })
			row("全部", st.Summary, true)
			w.blank()
		})
	}
}

func (a *Assembler) writeSummary(w *sheetWriter, in Input) {
	cols := []string{"属性", "代码", "单位", "适用地类", "样点数", "均值", "中位数", "最小值", "最大值", "标准差", "变异系数",
		"适用" + a.areaHeader(), "适用面积占比/%"}
	w.title("属性统计汇总", len(cols))
	w.header(cols...)

	eachAttribute(in, func(def *model.AttributeDefinition, st *model.AttributeStats) {
		var area, pct any = NotAvailable, NotAvailable
		if v, hit := in.Area.FilteredArea(def.LandUseFilter); hit {
			area, pct = r3(v), share(in.Area, v)
		}
		w.values(def.DisplayName, def.Key, def.Unit, def.LandUseFilter.Label(), st.Count,
			r3(st.Mean), r3(st.Median), r3(st.Min), r3(st.Max), r3(st.StdDev), r3(st.CV), area, pct)
	})

	if len(in.Samples.Skipped) > 0 {
		w.blank()
		names := make([]string, 0, len(in.Samples.Skipped))
		for _, s := range in.Samples.Skipped {
			name := s.Attribute
			if def, ok := in.Standard.Attribute(s.Attribute); ok {
				name = def.DisplayName
			}
			names = append(names, name)
		}
		w.values("无有效样点的属性", strings.Join(names, "、"))
	}
}

func (a *Assembler) writePercentiles(w *sheetWriter, in Input) {
	percentiles := in.Samples.Percentiles
	if len(percentiles) == 0 {
		percentiles = stats.DefaultPercentiles
	}
	cols := []string{"属性", "单位", "样点数"}
	for _, p := range percentiles {
		cols = append(cols, fmt.Sprintf("%d%%", p))
	}
	w.title("百分位数统计", len(cols))
	w.header(cols...)

	eachAttribute(in, func(def *model.AttributeDefinition, st *model.AttributeStats) {
		row := []any{def.DisplayName, def.Unit, st.Count}
		for _, p := range percentiles {
			v, ok := st.PercentileValue(p)
			if !ok {
				row = append(row, NotAvailable)
				continue
			}
			row = append(row, r3(v))
		}
		w.values(row...)
	})
}

func padNA(first string, n int) []any {
	out := make([]any, n)
	out[0] = first
	for i := 1; i < n; i++ {
		out[i] = NotAvailable
	}
	return out
}
