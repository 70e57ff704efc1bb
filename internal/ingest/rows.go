package ingest

import (
	"log"
	"math"
	"strconv"
	"strings"

	"soilstat/internal/model"
)

// nullTokens 视为空值的单元格内容
var nullTokens = map[string]struct{}{
	"": {}, "/": {}, "-": {}, "—": {}, "NA": {}, "N/A": {}, "null": {}, "NULL": {}, "nan": {}, "NaN": {},
}

// parseOptionalFloat 解析数值，空值或无法解析时 ok 为 false
func parseOptionalFloat(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if _, null := nullTokens[s]; null {
		return 0, false
	}
	s = strings.ReplaceAll(s, ",", "")
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

type roleIndex struct {
	township, landUse, soilType, soilSubtype int
}

func resolveRoles(t *Table, cols Columns) (roleIndex, error) {
	idx := roleIndex{
		township:    findColumn(t.Header, cols.Township),
		landUse:     findColumn(t.Header, cols.LandUse),
		soilType:    findColumn(t.Header, cols.SoilType),
		soilSubtype: findColumn(t.Header, cols.SoilSubtype),
	}
	if idx.landUse < 0 {
		return idx, &model.InputFormatError{
			Table:  t.Name,
			Column: strings.Join(cols.LandUse, "/"),
			Reason: "缺少地类列",
		}
	}
	return idx, nil
}

func readValues(t *Table, row []string, attrCols map[int]string) map[string]float64 {
	if len(attrCols) == 0 {
		return nil
	}
	values := make(map[string]float64, len(attrCols))
	for col, key := range attrCols {
		if v, ok := parseOptionalFloat(t.cell(row, col)); ok {
			values[key] = v
		}
	}
	return values
}

// SampleRows 样点表转换为样点行；必须包含地类列与至少一个属性列
func SampleRows(t *Table, cols Columns, std *model.GradingStandard) ([]model.SampleRow, error) {
	idx, err := resolveRoles(t, cols)
	if err != nil {
		return nil, err
	}
	attrCols := attributeColumns(t.Header, std)
	if len(attrCols) == 0 {
		return nil, &model.InputFormatError{Table: t.Name, Reason: "未识别到任何属性列（标准 " + std.ID() + "）"}
	}

	rows := make([]model.SampleRow, 0, len(t.Rows))
	for _, rec := range t.Rows {
		rows = append(rows, model.SampleRow{
			Values:      readValues(t, rec, attrCols),
			LandUse:     t.cell(rec, idx.landUse),
			Township:    t.cell(rec, idx.township),
			SoilType:    t.cell(rec, idx.soilType),
			SoilSubtype: t.cell(rec, idx.soilSubtype),
		})
	}
	return rows, nil
}

// AreaRows 制图表转换为图斑行；面积无效或为负的行跳过并计数
func AreaRows(t *Table, cols Columns, std *model.GradingStandard) ([]model.AreaRow, int, error) {
	idx, err := resolveRoles(t, cols)
	if err != nil {
		return nil, 0, err
	}
	areaCol := findColumn(t.Header, cols.Area)
	if areaCol < 0 {
		return nil, 0, &model.InputFormatError{
			Table:  t.Name,
			Column: strings.Join(cols.Area, "/"),
			Reason: "缺少面积列",
		}
	}
	attrCols := attributeColumns(t.Header, std)

	rows := make([]model.AreaRow, 0, len(t.Rows))
	skipped := 0
	for _, rec := range t.Rows {
		area, ok := parseOptionalFloat(t.cell(rec, areaCol))
		if !ok || area < 0 {
			skipped++
			continue
		}
		rows = append(rows, model.AreaRow{
			Area:        area,
			LandUse:     t.cell(rec, idx.landUse),
			Township:    t.cell(rec, idx.township),
			SoilType:    t.cell(rec, idx.soilType),
			SoilSubtype: t.cell(rec, idx.soilSubtype),
			Values:      readValues(t, rec, attrCols),
		})
	}
	if skipped > 0 {
		log.Printf("制图表 %s: 跳过 %d 行无效面积", t.Name, skipped)
	}
	return rows, skipped, nil
}

// DetectAttributes 返回表格中可识别的属性 key（按标准声明顺序）
func DetectAttributes(t *Table, std *model.GradingStandard) []string {
	found := attributeColumns(t.Header, std)
	present := make(map[string]struct{}, len(found))
	for _, k := range found {
		present[k] = struct{}{}
	}

	var keys []string
	for _, a := range std.Attributes() {
		if _, ok := present[a.Key]; ok {
			keys = append(keys, a.Key)
		}
	}
	return keys
}
