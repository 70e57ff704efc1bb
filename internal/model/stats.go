package model

import "time"

// Percentile 百分位数
type Percentile struct {
	P     int     `json:"p"`
	Value float64 `json:"value"`
}

// Summary 一组样点值的描述统计
type Summary struct {
	Count             int                  `json:"sample_count"`
	Mean              float64              `json:"mean"`
	Median            float64              `json:"median"`
	Min               float64              `json:"min"`
	Max               float64              `json:"max"`
	StdDev            float64              `json:"std"`
	CV                float64              `json:"cv"` // 变异系数
	Percentiles       []Percentile         `json:"percentiles"`
	GradeCounts       *OrderedMap[int]     `json:"grade_counts"`
	GradeDistribution *OrderedMap[float64] `json:"grade_distribution"`
}

// PercentileValue 按百分位取值
func (s *Summary) PercentileValue(p int) (float64, bool) {
	for _, pv := range s.Percentiles {
		if pv.P == p {
			return pv.Value, true
		}
	}
	return 0, false
}

// AttributeStats 单个属性的样点统计结果（构建后只读）
type AttributeStats struct {
	Key           string        `json:"key"`
	DisplayName   string        `json:"name"`
	Unit          string        `json:"unit"`
	LandUseFilter LandUseFilter `json:"land_use_filter,omitempty"`
	Summary

	ByTownship *OrderedMap[Summary] `json:"by_township"`
	ByLandUse  *OrderedMap[Summary] `json:"by_land_use"`
	BySoilType *OrderedMap[Summary] `json:"by_soil_type"`
}

// AttributePreview 属性预览（供前端与报告生成使用）
type AttributePreview struct {
	Key               string               `json:"key"`
	Name              string               `json:"name"`
	Unit              string               `json:"unit"`
	SampleCount       int                  `json:"sample_count"`
	SampleMean        float64              `json:"sample_mean"`
	SampleMin         float64              `json:"sample_min"`
	SampleMax         float64              `json:"sample_max"`
	GradeDistribution *OrderedMap[float64] `json:"grade_distribution"`
}

// ProcessResult 一次处理的产出
type ProcessResult struct {
	ProcessID   string             `json:"process_id"`
	StandardID  string             `json:"standard_id"`
	ExcelBytes  []byte             `json:"-"`
	Preview     []AttributePreview `json:"preview"`
	Skipped     []string           `json:"skipped,omitempty"`
	SampleFiles []string           `json:"sample_files"`
	AreaFiles   []string           `json:"area_files"`
	CreatedAt   time.Time          `json:"created_at"`
}
