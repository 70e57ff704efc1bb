// Package stats 样点与制图数据的统计汇总
package stats

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"soilstat/internal/classifier"
	"soilstat/internal/model"
)

// DefaultPercentiles 默认输出的百分位
var DefaultPercentiles = []int{2, 5, 10, 20, 80, 90, 95, 98}

// Round 四舍五入到 places 位小数
func Round(v float64, places int) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return v
	}
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}

// Percentile 线性插值百分位（秩 = p/100*(n-1)），sorted 必须升序
func Percentile(sorted []float64, p float64) float64 {
	n := len(sorted)
	if n == 0 {
		return math.NaN()
	}
	if n == 1 || p <= 0 {
		return sorted[0]
	}
	if p >= 100 {
		return sorted[n-1]
	}
	rank := p / 100 * float64(n-1)
	lo := int(math.Floor(rank))
	hi := int(math.Ceil(rank))
	if lo == hi {
		return sorted[lo]
	}
	return sorted[lo] + (rank-float64(lo))*(sorted[hi]-sorted[lo])
}

// describe 计算一组非空值的描述统计与等级分布，values 不可为空
func describe(values []float64, thresholds []model.Threshold, percentiles []int) model.Summary {
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)

	s := model.Summary{
		Count:  len(values),
		Mean:   stat.Mean(values, nil),
		Median: Percentile(sorted, 50),
		Min:    floats.Min(values),
		Max:    floats.Max(values),
	}
	if s.Count > 1 {
		s.StdDev = stat.StdDev(values, nil)
	}
	if s.Mean != 0 {
		s.CV = s.StdDev / s.Mean
	}

	s.Percentiles = make([]model.Percentile, len(percentiles))
	for i, p := range percentiles {
		s.Percentiles[i] = model.Percentile{P: p, Value: Percentile(sorted, float64(p))}
	}

	s.GradeCounts, s.GradeDistribution = gradeDistribution(values, thresholds)
	return s
}

// gradeDistribution 按阈值顺序统计各等级数量与占比，数量为 0 的等级不出现
func gradeDistribution(values []float64, thresholds []model.Threshold) (*model.OrderedMap[int], *model.OrderedMap[float64]) {
	counts := make([]int, len(thresholds))
	for _, v := range values {
		if i := classifier.Index(v, thresholds); i >= 0 {
			counts[i]++
		}
	}

	countMap := model.NewOrderedMap[int]()
	pctMap := model.NewOrderedMap[float64]()
	total := float64(len(values))
	for i, c := range counts {
		if c == 0 {
			continue
		}
		countMap.Set(thresholds[i].Label, c)
		pctMap.Set(thresholds[i].Label, Round(float64(c)/total*100, 2))
	}
	return countMap, pctMap
}
