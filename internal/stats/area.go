package stats

import (
	"log"
	"strings"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"soilstat/internal/classifier"
	"soilstat/internal/landuse"
	"soilstat/internal/model"
)

// AreaResult 制图面积汇总，内部保持全精度
type AreaResult struct {
	Total              float64
	Rows               int
	ByTownship         *model.OrderedMap[float64]
	ByLandUse          *model.OrderedMap[float64] // 一级地类
	BySecondaryLandUse *model.OrderedMap[float64]
	BySoilType         *model.OrderedMap[float64]
	// 乡镇 -> 一级地类 -> 面积
	ByTownshipAndLandUse *model.OrderedMap[*model.OrderedMap[float64]]
	UnknownLandUse       []string
}

// AggregateArea 多张制图表直接拼接后汇总，不去重
func AggregateArea(tables [][]model.AreaRow, tx *landuse.Taxonomy) *AreaResult {
	if tx == nil {
		tx = landuse.Default()
	}

	res := &AreaResult{
		ByTownship:           model.NewOrderedMap[float64](),
		ByLandUse:            model.NewOrderedMap[float64](),
		BySecondaryLandUse:   model.NewOrderedMap[float64](),
		BySoilType:           model.NewOrderedMap[float64](),
		ByTownshipAndLandUse: model.NewOrderedMap[*model.OrderedMap[float64]](),
	}
	unknown := newLabelSet()

	for _, table := range tables {
		for i := range table {
			r := &table[i]
			cat := tx.Normalize(r.LandUse)
			if !cat.Known {
				unknown.add(r.LandUse)
			}

			res.Rows++
			res.Total += r.Area
			addTo(res.ByLandUse, cat.Primary, r.Area)
			addTo(res.BySecondaryLandUse, cat.Secondary, r.Area)
			if soil := soilKey(r.SoilType, r.SoilSubtype); soil != "" {
				addTo(res.BySoilType, soil, r.Area)
			}
			if town := strings.TrimSpace(r.Township); town != "" {
				addTo(res.ByTownship, town, r.Area)
				inner, ok := res.ByTownshipAndLandUse.Get(town)
				if !ok {
					inner = model.NewOrderedMap[float64]()
					res.ByTownshipAndLandUse.Set(town, inner)
				}
				addTo(inner, cat.Primary, r.Area)
			}
		}
	}

	res.UnknownLandUse = unknown.list()
	if len(res.UnknownLandUse) > 0 {
		log.Printf("面积统计: %d 个未识别地类归入其他: %v", len(res.UnknownLandUse), res.UnknownLandUse)
	}
	return res
}

func addTo(m *model.OrderedMap[float64], key string, v float64) {
	cur, _ := m.Get(key)
	m.Set(key, cur+v)
}

// Percent 面积占总面积的百分比（2 位小数），总面积为 0 时返回 ZeroAreaError
func (r *AreaResult) Percent(area float64) (float64, error) {
	return percentOf(area, r.Total, "制图")
}

func percentOf(part, total float64, scope string) (float64, error) {
	if total == 0 {
		return 0, &model.ZeroAreaError{Scope: scope}
	}
	return Round(part/total*100, 2), nil
}

// Shares 将分组面积换算为占比
func (r *AreaResult) Shares(m *model.OrderedMap[float64]) (*model.OrderedMap[float64], error) {
	out := model.NewOrderedMap[float64]()
	var err error
	m.Each(func(k string, v float64) {
		if err != nil {
			return
		}
		var pct float64
		pct, err = r.Percent(v)
		out.Set(k, pct)
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// FilteredArea 落在地类过滤范围内的面积，以及是否有图斑命中
func (r *AreaResult) FilteredArea(filter model.LandUseFilter) (float64, bool) {
	if r == nil || r.Rows == 0 {
		return 0, false
	}
	switch filter {
	case model.LandUseFilterNone:
		return r.Total, true
	case model.LandUseFilterPaddyOnly:
		return r.BySecondaryLandUse.Get(landuse.Paddy)
	}

	var (
		sum float64
		hit bool
	)
	for _, p := range landuse.AllowedPrimaries(filter) {
		if v, ok := r.ByLandUse.Get(p); ok {
			sum += v
			hit = true
		}
	}
	return sum, hit
}

// ConservationDelta 各地类面积之和与总面积之差，用于校验
func (r *AreaResult) ConservationDelta() float64 {
	parts := make([]float64, 0, r.ByLandUse.Len())
	r.ByLandUse.Each(func(_ string, v float64) { parts = append(parts, v) })
	return floats.Sum(parts) - r.Total
}

// GradeArea 单个属性按面积统计的等级分布
type GradeArea struct {
	Key          string                     `json:"key"`
	DisplayName  string                     `json:"name"`
	Unit         string                     `json:"unit"`
	TotalArea    float64                    `json:"total_area"`
	WeightedMean float64                    `json:"weighted_mean"`
	GradeAreas   *model.OrderedMap[float64] `json:"grade_areas"`
	GradeShares  *model.OrderedMap[float64] `json:"grade_shares"`
	// 乡镇 -> 等级 -> 面积
	ByTownship *model.OrderedMap[*model.OrderedMap[float64]] `json:"by_township"`
}

// AggregateGradeAreas 图斑带属性值时，按面积统计各属性的等级分布；无适用面积的属性不出现
func AggregateGradeAreas(tables [][]model.AreaRow, std *model.GradingStandard, tx *landuse.Taxonomy) *model.OrderedMap[*GradeArea] {
	if tx == nil {
		tx = landuse.Default()
	}
	out := model.NewOrderedMap[*GradeArea]()

	for _, def := range std.Attributes() {
		var values, weights []float64
		gradeAreas := make([]float64, len(def.Thresholds))
		hit := make([]bool, len(def.Thresholds))
		byTown := model.NewOrderedMap[[]float64]()

		for _, table := range tables {
			for i := range table {
				r := &table[i]
				v, ok := r.Value(def.Key)
				if !ok || r.Area <= 0 {
					continue
				}
				if std.ExcludeNonPositive() && v <= 0 {
					continue
				}
				if !landuse.Allows(def.LandUseFilter, tx.Normalize(r.LandUse)) {
					continue
				}
				idx := classifier.Index(v, def.Thresholds)
				values = append(values, v)
				weights = append(weights, r.Area)
				gradeAreas[idx] += r.Area
				hit[idx] = true

				if town := strings.TrimSpace(r.Township); town != "" {
					ga, ok := byTown.Get(town)
					if !ok {
						ga = make([]float64, len(def.Thresholds))
					}
					ga[idx] += r.Area
					byTown.Set(town, ga)
				}
			}
		}
		if len(values) == 0 {
			continue
		}

		ga := &GradeArea{
			Key:          def.Key,
			DisplayName:  def.DisplayName,
			Unit:         def.Unit,
			TotalArea:    floats.Sum(weights),
			WeightedMean: stat.Mean(values, weights),
			GradeAreas:   model.NewOrderedMap[float64](),
			GradeShares:  model.NewOrderedMap[float64](),
			ByTownship:   model.NewOrderedMap[*model.OrderedMap[float64]](),
		}
		for i, t := range def.Thresholds {
			if !hit[i] {
				continue
			}
			ga.GradeAreas.Set(t.Label, gradeAreas[i])
			ga.GradeShares.Set(t.Label, Round(gradeAreas[i]/ga.TotalArea*100, 2))
		}
		byTown.Each(func(town string, areas []float64) {
			m := model.NewOrderedMap[float64]()
			for i, t := range def.Thresholds {
				if areas[i] > 0 {
					m.Set(t.Label, areas[i])
				}
			}
			ga.ByTownship.Set(town, m)
		})
		out.Set(def.Key, ga)
	}
	return out
}
