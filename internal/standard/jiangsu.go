package standard

import (
	"math"

	"soilstat/internal/model"
)

// JiangsuID 内置江苏分级标准
const JiangsuID = "jiangsu"

var inf = math.Inf(1)

func lv(bound float64, label, desc string) model.Threshold {
	return model.Threshold{Label: label, UpperBound: bound, Description: desc}
}

func attr(key, name, unit string, filter model.LandUseFilter, reverse bool, levels ...model.Threshold) model.AttributeDefinition {
	return model.AttributeDefinition{
		Key:            key,
		DisplayName:    name,
		Unit:           unit,
		LandUseFilter:  filter,
		ReverseDisplay: reverse,
		Thresholds:     levels,
	}
}

func nutrientLevels(b5, b4, b3, b2 float64) []model.Threshold {
	return []model.Threshold{
		lv(b5, "5级", "极缺"), lv(b4, "4级", "缺乏"), lv(b3, "3级", "中等"), lv(b2, "2级", "较丰富"), lv(inf, "1级", "丰富"),
	}
}

func traceLevels(b5, b4, b3, b2 float64) []model.Threshold {
	return []model.Threshold{
		lv(b5, "5级", "极缺"), lv(b4, "4级", "缺乏"), lv(b3, "3级", "中等"), lv(b2, "2级", "丰富"), lv(inf, "1级", "偏高"),
	}
}

func ascendingLevels(b1, b2, b3, b4 float64) []model.Threshold {
	return []model.Threshold{
		lv(b1, "1级", "低"), lv(b2, "2级", "较低"), lv(b3, "3级", "中"), lv(b4, "4级", "较高"), lv(inf, "5级", "高"),
	}
}

func textureLevels() []model.Threshold {
	return []model.Threshold{
		lv(15, "5级", "≤15"), lv(25, "4级", "15～25"), lv(45, "3级", "25～45"), lv(65, "2级", "45～65"), lv(inf, "1级", "65～100"),
	}
}

const (
	cg    = model.LandUseFilterCultivatedGarden
	co    = model.LandUseFilterCultivatedOnly
	paddy = model.LandUseFilterPaddyOnly
	all   = model.LandUseFilterNone
)

func jiangsuAttributes() []model.AttributeDefinition {
	attrs := []model.AttributeDefinition{
		// 盐碱
		attr("SRXYZL", "水溶性盐总量", "g/kg", cg, false,
			lv(1, "1级", "无盐化"), lv(2, "2级", "轻度盐化"), lv(4, "3级", "中度盐化"), lv(6, "4级", "重度盐化"), lv(inf, "5级", "盐土")),
		attr("DDL", "电导率", "mS/cm", cg, false, ascendingLevels(0.4, 0.8, 1.6, 2.4)...),
		attr("ENA", "交换性钠", "cmol(+)/kg", cg, false, ascendingLevels(0.2, 0.5, 0.8, 1.2)...),

		// 物理性质
		attr("TRRZPJZ", "土壤容重", "g/cm³", all, false,
			lv(0.9, "1级", "不适宜"), lv(1.1, "2级", "较适宜"), lv(1.35, "3级", "适宜"), lv(1.55, "4级", "较适宜"), lv(inf, "5级", "不适宜")),
		attr("GZCHD", "耕作层厚度", "cm", co, true,
			lv(10, "5级", "薄"), lv(15, "4级", "较薄"), lv(20, "3级", "中"), lv(25, "2级", "较厚"), lv(inf, "1级", "厚")),
		attr("SWXDTJT7", "水稳性大团聚体", "mg/kg", cg, false, ascendingLevels(10, 20, 30, 40)...),

		// 主要养分
		attr("OM", "有机质", "g/kg", all, true,
			lv(10, "5级", "低"), lv(20, "4级", "较低"), lv(30, "3级", "中"), lv(40, "2级", "较高"), lv(inf, "1级", "高")),
		attr("TN", "全氮", "g/kg", all, true, nutrientLevels(0.5, 1.0, 1.5, 2.0)...),
		attr("TP", "全磷", "g/kg", all, true, nutrientLevels(0.4, 0.6, 0.8, 1.0)...),
		attr("TK", "全钾", "g/kg", all, true, nutrientLevels(10, 15, 20, 25)...),
		attr("AP", "有效磷", "mg/kg", all, true, nutrientLevels(5, 10, 20, 40)...),
		attr("AK", "速效钾", "mg/kg", all, true, nutrientLevels(50, 100, 150, 200)...),
		attr("SK", "缓效钾", "mg/kg", cg, true, nutrientLevels(100, 300, 500, 700)...),

		// 交换性阳离子
		attr("CEC", "阳离子交换量", "cmol(+)/kg", all, true,
			lv(5, "5级", "低"), lv(10, "4级", "较低"), lv(15, "3级", "中"), lv(20, "2级", "较高"), lv(inf, "1级", "高")),
		attr("ECA", "交换性钙", "cmol(1/2Ca²⁺)/kg", cg, true, traceLevels(1.0, 4.0, 10.0, 15.0)...),
		attr("EMG", "交换性镁", "cmol(1/2Mg²⁺)/kg", cg, true, traceLevels(0.5, 1.0, 1.5, 2.0)...),
		attr("EK", "交换性钾", "cmol(+)/kg", cg, false,
			lv(0.1, "1级", "无效钾"), lv(0.2, "2级", "低效钾"), lv(0.4, "3级", "中效钾"), lv(inf, "4级", "高效钾")),
		attr("JHXYJZL", "交换性盐基总量", "cmol(+)/kg", all, false, ascendingLevels(5, 10, 15, 20)...),

		// 中微量元素
		attr("AS1", "有效硫", "mg/kg", cg, true, traceLevels(10, 20, 30, 40)...),
		attr("ASI", "有效硅", "mg/kg", paddy, true, traceLevels(50, 100, 150, 250)...),
		attr("AFE", "有效铁", "mg/kg", cg, true, traceLevels(2.5, 4.5, 10, 20)...),
		attr("AMN", "有效锰", "mg/kg", cg, true, traceLevels(1, 5, 15, 30)...),
		attr("ACU", "有效铜", "mg/kg", cg, true, traceLevels(0.2, 0.5, 1, 2)...),
		attr("AZN", "有效锌", "mg/kg", cg, true, traceLevels(0.5, 1, 2, 3)...),
		attr("AB", "有效硼", "mg/kg", cg, true, traceLevels(0.2, 0.5, 1, 2)...),
		attr("AMO", "有效钼", "mg/kg", cg, true, traceLevels(0.10, 0.15, 0.20, 0.30)...),

		attr("ph", "pH", "", all, true,
			lv(4.5, "1级", "强酸性"), lv(5.5, "2级", "酸性"), lv(6.5, "3级", "弱酸性"), lv(7.5, "4级", "中性"),
			lv(8.5, "5级", "弱碱性"), lv(9.0, "6级", "碱性"), lv(14.0, "7级", "强碱性")),

		// 机械组成
		attr("sand", "机械组成-砂粒", "%", all, true, textureLevels()...),
		attr("silt", "机械组成-粉粒", "%", all, true, textureLevels()...),
		attr("clay", "机械组成-黏粒", "%", all, true, textureLevels()...),
	}

	aliases := map[string][]string{
		"ph":     {"pH", "PH", "酸碱度"},
		"OM":     {"有机质含量", "有机质(g/kg)"},
		"TN":     {"全氮含量"},
		"AP":     {"有效磷(P)"},
		"AK":     {"速效钾(K)"},
		"CEC":    {"阳离子交换量(CEC)"},
		"SRXYZL": {"水溶性盐"},
		"DDL":    {"电导率(EC)"},
	}
	for i := range attrs {
		attrs[i].Aliases = aliases[attrs[i].Key]
	}
	return attrs
}

// Jiangsu 江苏省土壤普查分级标准
func Jiangsu() *model.GradingStandard {
	std, err := model.NewGradingStandard(model.StandardInfo{
		ID:          JiangsuID,
		Name:        "江苏分级",
		Description: "江苏省土壤普查分级标准",
	}, true, jiangsuAttributes())
	if err != nil {
		// 内置标准不合法属于编码错误
		panic(err)
	}
	return std
}
