package stats

import "soilstat/internal/model"

// Summarize 生成属性预览，顺序与标准声明顺序一致；均值、最值保留 2 位小数
func Summarize(res *SampleResult, std *model.GradingStandard) []model.AttributePreview {
	out := make([]model.AttributePreview, 0, res.Attributes.Len())
	for _, def := range std.Attributes() {
		st, ok := res.Get(def.Key)
		if !ok {
			continue
		}
		out = append(out, model.AttributePreview{
			Key:               st.Key,
			Name:              st.DisplayName,
			Unit:              st.Unit,
			SampleCount:       st.Count,
			SampleMean:        Round(st.Mean, 2),
			SampleMin:         Round(st.Min, 2),
			SampleMax:         Round(st.Max, 2),
			GradeDistribution: st.GradeDistribution,
		})
	}
	return out
}
