package landuse

import (
	"testing"

	"soilstat/internal/model"
)

// TestNormalize 测试地类名称与编码归一化
func TestNormalize(t *testing.T) {
	t.Parallel()

	tx := Default()
	cases := []struct {
		raw       string
		primary   string
		secondary string
		known     bool
	}{
		{"水田", Cultivated, Paddy, true},
		{" 0101 ", Cultivated, Paddy, true},
		{"旱地", Cultivated, Dryland, true},
		{"茶园", Garden, TeaGarden, true},
		{"可调整园地", Garden, OtherGarden, true},
		{"乔木林地", Forest, Forest, true},
		{"其他草地", Grassland, Grassland, true},
		{"其他", Other, Other, true},
		{"水团", Other, Other, false},
		{"", Other, Other, false},
	}
	for _, tc := range cases {
		got := tx.Normalize(tc.raw)
		if got.Primary != tc.primary || got.Secondary != tc.secondary || got.Known != tc.known {
			t.Fatalf("Normalize(%q) = %+v, want %s/%s known=%v", tc.raw, got, tc.primary, tc.secondary, tc.known)
		}
	}
}

// TestAllows 测试土地利用过滤规则
func TestAllows(t *testing.T) {
	t.Parallel()

	tx := Default()
	paddy := tx.Normalize("0101")
	dry := tx.Normalize("旱地")
	orchard := tx.Normalize("果园")
	forest := tx.Normalize("林地")

	if !Allows(model.LandUseFilterPaddyOnly, paddy) || Allows(model.LandUseFilterPaddyOnly, dry) {
		t.Fatalf("paddy_only should only allow 水田")
	}
	if !Allows(model.LandUseFilterCultivatedOnly, dry) || Allows(model.LandUseFilterCultivatedOnly, orchard) {
		t.Fatalf("cultivated_only should allow 耕地 only")
	}
	if !Allows(model.LandUseFilterCultivatedGarden, orchard) || Allows(model.LandUseFilterCultivatedGarden, forest) {
		t.Fatalf("cultivated_garden should allow 耕地 and 园地")
	}
	if !Allows(model.LandUseFilterNone, forest) {
		t.Fatalf("no filter should allow everything")
	}
}
