package stats

import (
	"context"
	"log"
	"math"
	"runtime"
	"strings"

	"golang.org/x/sync/errgroup"

	"soilstat/internal/landuse"
	"soilstat/internal/model"
)

// SampleOptions 样点统计参数
type SampleOptions struct {
	Percentiles []int
	Taxonomy    *landuse.Taxonomy
	// Concurrency 并行计算的属性数，<=0 时取 GOMAXPROCS
	Concurrency int
}

// SampleResult 样点统计结果，Attributes 按标准声明顺序排列
type SampleResult struct {
	StandardID     string
	Attributes     *model.OrderedMap[*model.AttributeStats]
	Skipped        []model.EmptyAttributeSkip
	UnknownLandUse []string
	TotalRows      int
	// 实际计算的百分位，报表列以此为准
	Percentiles []int
}

// Get 按属性取统计结果
func (r *SampleResult) Get(key string) (*model.AttributeStats, bool) {
	return r.Attributes.Get(key)
}

type preparedSample struct {
	row      *model.SampleRow
	category landuse.Category
	soil     string
	township string
}

// soilKey 土属优先，缺失时用亚类
func soilKey(soilType, subtype string) string {
	if s := strings.TrimSpace(soilType); s != "" {
		return s
	}
	return strings.TrimSpace(subtype)
}

// AggregateSamples 多张样点表合并后按属性统计。
// 每个属性相互独立并行计算，结果按标准声明顺序组装。
func AggregateSamples(ctx context.Context, tables [][]model.SampleRow, std *model.GradingStandard, opts SampleOptions) (*SampleResult, error) {
	tx := opts.Taxonomy
	if tx == nil {
		tx = landuse.Default()
	}
	percentiles := opts.Percentiles
	if len(percentiles) == 0 {
		percentiles = DefaultPercentiles
	}

	var rows []preparedSample
	unknown := newLabelSet()
	for _, table := range tables {
		for i := range table {
			r := &table[i]
			cat := tx.Normalize(r.LandUse)
			if !cat.Known {
				unknown.add(r.LandUse)
			}
			rows = append(rows, preparedSample{
				row:      r,
				category: cat,
				soil:     soilKey(r.SoilType, r.SoilSubtype),
				township: strings.TrimSpace(r.Township),
			})
		}
	}

	attrs := std.Attributes()
	results := make([]*model.AttributeStats, len(attrs))
	skips := make([]*model.EmptyAttributeSkip, len(attrs))

	limit := opts.Concurrency
	if limit <= 0 {
		limit = runtime.GOMAXPROCS(0)
	}
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)
	for i := range attrs {
		i := i
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i], skips[i] = aggregateAttribute(&attrs[i], rows, std.ExcludeNonPositive(), percentiles)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	res := &SampleResult{
		StandardID:     std.ID(),
		Attributes:     model.NewOrderedMap[*model.AttributeStats](),
		UnknownLandUse: unknown.list(),
		TotalRows:      len(rows),
		Percentiles:    append([]int(nil), percentiles...),
	}
	for i, a := range results {
		if skips[i] != nil {
			log.Printf("样点统计: %v", skips[i])
			res.Skipped = append(res.Skipped, *skips[i])
			continue
		}
		res.Attributes.Set(a.Key, a)
	}
	if len(res.UnknownLandUse) > 0 {
		log.Printf("样点统计: %d 个未识别地类归入其他: %v", len(res.UnknownLandUse), res.UnknownLandUse)
	}
	return res, nil
}

// aggregateAttribute 单个属性的统计；无有效值时返回跳过原因
func aggregateAttribute(def *model.AttributeDefinition, rows []preparedSample, excludeNonPositive bool, percentiles []int) (*model.AttributeStats, *model.EmptyAttributeSkip) {
	filtered := make([]preparedSample, 0, len(rows))
	values := make([]float64, 0, len(rows))
	present := 0
	for _, r := range rows {
		v, ok := r.row.Value(def.Key)
		if !ok || math.IsNaN(v) || math.IsInf(v, 0) {
			continue
		}
		if excludeNonPositive && v <= 0 {
			continue
		}
		present++
		if !landuse.Allows(def.LandUseFilter, r.category) {
			continue
		}
		filtered = append(filtered, r)
		values = append(values, v)
	}

	if len(values) == 0 {
		reason := "全部样点为空值"
		if present > 0 {
			reason = "适用地类(" + def.LandUseFilter.Label() + ")内无样点"
		}
		return nil, &model.EmptyAttributeSkip{Attribute: def.Key, Reason: reason}
	}

	st := &model.AttributeStats{
		Key:           def.Key,
		DisplayName:   def.DisplayName,
		Unit:          def.Unit,
		LandUseFilter: def.LandUseFilter,
		Summary:       describe(values, def.Thresholds, percentiles),
	}
	st.ByTownship = groupSummaries(filtered, values, def.Thresholds, percentiles, func(r preparedSample) string { return r.township })
	st.ByLandUse = groupSummaries(filtered, values, def.Thresholds, percentiles, func(r preparedSample) string { return r.category.Primary })
	st.BySoilType = groupSummaries(filtered, values, def.Thresholds, percentiles, func(r preparedSample) string { return r.soil })
	return st, nil
}

// groupSummaries 按分组键统计，分组顺序为首次出现顺序，空键不参与
func groupSummaries(rows []preparedSample, values []float64, thresholds []model.Threshold, percentiles []int, key func(preparedSample) string) *model.OrderedMap[model.Summary] {
	groups := model.NewOrderedMap[[]float64]()
	for i, r := range rows {
		k := key(r)
		if k == "" {
			continue
		}
		vs, _ := groups.Get(k)
		groups.Set(k, append(vs, values[i]))
	}

	out := model.NewOrderedMap[model.Summary]()
	groups.Each(func(k string, vs []float64) {
		out.Set(k, describe(vs, thresholds, percentiles))
	})
	return out
}

type labelSet struct {
	seen  map[string]struct{}
	order []string
}

func newLabelSet() *labelSet {
	return &labelSet{seen: make(map[string]struct{})}
}

func (s *labelSet) add(label string) {
	label = strings.TrimSpace(label)
	if label == "" {
		return
	}
	if _, ok := s.seen[label]; ok {
		return
	}
	s.seen[label] = struct{}{}
	s.order = append(s.order, label)
}

func (s *labelSet) list() []string {
	return s.order
}
