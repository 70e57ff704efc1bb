package model

// SampleRow 样点数据行，Values 中缺失的 key 即为空值
type SampleRow struct {
	Values      map[string]float64
	LandUse     string
	Township    string
	SoilType    string
	SoilSubtype string
}

// Value 取属性值
func (r *SampleRow) Value(key string) (float64, bool) {
	v, ok := r.Values[key]
	return v, ok
}

// AreaRow 制图图斑数据行
type AreaRow struct {
	Area        float64
	LandUse     string
	Township    string
	SoilType    string
	SoilSubtype string
	// 图斑属性值（可选），用于按面积统计等级
	Values map[string]float64
}

// Value 取属性值
func (r *AreaRow) Value(key string) (float64, bool) {
	v, ok := r.Values[key]
	return v, ok
}
