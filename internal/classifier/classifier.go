// Package classifier 按阈值表为属性值定级
package classifier

import (
	"fmt"
	"sort"

	"soilstat/internal/model"
)

// Index 返回第一个 UpperBound >= value 的阈值下标；最后一级兜底。
// thresholds 必须非空且升序，调用方保证 value 非空值。
func Index(value float64, thresholds []model.Threshold) int {
	n := len(thresholds)
	if n == 0 {
		return -1
	}
	// 最后一级不参与比较，视为 +Inf
	i := sort.Search(n-1, func(i int) bool {
		return thresholds[i].UpperBound >= value
	})
	return i
}

// Classify 返回等级标签；恰好等于上界时归入较低一级（先匹配者）
func Classify(value float64, thresholds []model.Threshold) string {
	i := Index(value, thresholds)
	if i < 0 {
		return ""
	}
	return thresholds[i].Label
}

// RangeLabels 生成各等级的取值区间文字，如 "≤10"、"10～20"、">40"
func RangeLabels(thresholds []model.Threshold) []string {
	n := len(thresholds)
	out := make([]string, n)
	for i := range thresholds {
		switch {
		case n == 1:
			out[i] = "全部"
		case i == 0:
			out[i] = "≤" + formatBound(thresholds[i].UpperBound)
		case i == n-1:
			out[i] = ">" + formatBound(thresholds[i-1].UpperBound)
		default:
			out[i] = formatBound(thresholds[i-1].UpperBound) + "～" + formatBound(thresholds[i].UpperBound)
		}
	}
	return out
}

func formatBound(v float64) string {
	return fmt.Sprintf("%g", v)
}
