package ingest

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"
	"golang.org/x/text/encoding/simplifiedchinese"
	"golang.org/x/text/transform"

	"soilstat/internal/model"
	"soilstat/internal/standard"
)

const sampleCSV = "\ufeffXZQMC,TDLYLX, TS ,有机质含量,pH,AB\n" +
	"城关镇,水田,潮土,12.5,6.1,/\n" +
	"新河镇,旱地,黄棕壤,,7.2,0.5\n" +
	",,,,,\n"

// TestReadCSVUTF8 测试带 BOM 的 UTF-8 CSV 与属性列识别
func TestReadCSVUTF8(t *testing.T) {
	t.Parallel()

	table, err := ReadCSV("samples.csv", strings.NewReader(sampleCSV))
	if err != nil {
		t.Fatalf("ReadCSV: %v", err)
	}
	if table.Header[0] != "XZQMC" || table.Header[2] != "TS" {
		t.Fatalf("header not normalized: %q", table.Header)
	}
	if len(table.Rows) != 2 {
		t.Fatalf("blank rows should be dropped, got %d", len(table.Rows))
	}

	rows, err := SampleRows(table, DefaultColumns(), standard.Jiangsu())
	if err != nil {
		t.Fatalf("SampleRows: %v", err)
	}
	if rows[0].Township != "城关镇" || rows[0].LandUse != "水田" || rows[0].SoilType != "潮土" {
		t.Fatalf("row 0 = %+v", rows[0])
	}
	if v, ok := rows[0].Value("OM"); !ok || v != 12.5 {
		t.Fatalf("OM alias not mapped: %v %v", v, ok)
	}
	if _, ok := rows[0].Value("AB"); ok {
		t.Fatalf("'/' should be null")
	}
	if _, ok := rows[1].Value("OM"); ok {
		t.Fatalf("blank should be null")
	}
	if v, _ := rows[1].Value("ph"); v != 7.2 {
		t.Fatalf("ph = %v", v)
	}

	keys := DetectAttributes(table, standard.Jiangsu())
	if strings.Join(keys, ",") != "OM,AB,ph" {
		t.Fatalf("detected = %v", keys)
	}
}

// TestReadCSVGBK 测试 GBK 编码的 CSV
func TestReadCSVGBK(t *testing.T) {
	t.Parallel()

	src := "乡镇,DLMC,面积\n城关镇,水田,10.5\n城关镇,林地,-3\n新河镇,果园,\"1,200.25\"\n"
	encoded, _, err := transform.Bytes(simplifiedchinese.GBK.NewEncoder(), []byte(src))
	if err != nil {
		t.Fatalf("encode: %v", err)
	}

	table, err := ReadCSV("area.csv", bytes.NewReader(encoded))
	if err != nil {
		t.Fatalf("ReadCSV: %v", err)
	}
	rows, skipped, err := AreaRows(table, DefaultColumns(), nil)
	if err != nil {
		t.Fatalf("AreaRows: %v", err)
	}
	if skipped != 1 || len(rows) != 2 {
		t.Fatalf("rows=%d skipped=%d", len(rows), skipped)
	}
	if rows[0].Township != "城关镇" || rows[0].Area != 10.5 {
		t.Fatalf("row 0 = %+v", rows[0])
	}
}

// TestMissingColumns 测试缺少必需列时返回 InputFormatError
func TestMissingColumns(t *testing.T) {
	t.Parallel()

	noLand, err := ReadCSV("a.csv", strings.NewReader("XZQMC,面积\nA,1\n"))
	if err != nil {
		t.Fatalf("ReadCSV: %v", err)
	}
	_, _, err = AreaRows(noLand, DefaultColumns(), nil)
	var inputErr *model.InputFormatError
	if !errors.As(err, &inputErr) || inputErr.Table != "a.csv" {
		t.Fatalf("expected InputFormatError for land use, got %v", err)
	}

	noArea, _ := ReadCSV("b.csv", strings.NewReader("DLMC\n水田\n"))
	if _, _, err := AreaRows(noArea, DefaultColumns(), nil); !errors.As(err, &inputErr) || !strings.Contains(inputErr.Column, "面积") {
		t.Fatalf("expected missing area column, got %v", err)
	}

	noAttr, _ := ReadCSV("c.csv", strings.NewReader("DLMC,备注\n水田,x\n"))
	if _, err := SampleRows(noAttr, DefaultColumns(), standard.Jiangsu()); model.KindOf(err) != model.KindInputFormat {
		t.Fatalf("expected input format error for sample without attributes, got %v", err)
	}

	if _, err := Read("x.doc", strings.NewReader("")); model.KindOf(err) != model.KindInputFormat {
		t.Fatalf("unsupported extension should be InputFormatError, got %v", err)
	}
	if _, err := ReadCSV("empty.csv", strings.NewReader("\n\n")); model.KindOf(err) != model.KindInputFormat {
		t.Fatalf("empty csv should be InputFormatError, got %v", err)
	}
}

// TestReadXLSX 测试读取 Excel 第一个非空工作表
func TestReadXLSX(t *testing.T) {
	t.Parallel()

	f := excelize.NewFile()
	if _, err := f.NewSheet("样点"); err != nil {
		t.Fatalf("NewSheet: %v", err)
	}
	rows := [][]any{
		{"行政区名称", "dlm", "SGen_JZg", "OM", "有效硅"},
		{"城关镇", "0101", "潴育水稻土", 23.4, 120},
	}
	for i, r := range rows {
		cell, _ := excelize.CoordinatesToCellName(1, i+1)
		if err := f.SetSheetRow("样点", cell, &r); err != nil {
			t.Fatalf("SetSheetRow: %v", err)
		}
	}
	buf, err := f.WriteToBuffer()
	if err != nil {
		t.Fatalf("WriteToBuffer: %v", err)
	}

	table, err := Read("samples.xlsx", buf)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	got, err := SampleRows(table, DefaultColumns(), standard.Jiangsu())
	if err != nil {
		t.Fatalf("SampleRows: %v", err)
	}
	if len(got) != 1 || got[0].LandUse != "0101" || got[0].SoilType != "潴育水稻土" {
		t.Fatalf("rows = %+v", got)
	}
	if v, _ := got[0].Value("ASI"); v != 120 {
		t.Fatalf("ASI by display name = %v", v)
	}
}

// TestColumnsMerge 测试列名配置覆盖
func TestColumnsMerge(t *testing.T) {
	t.Parallel()

	merged := DefaultColumns().Merge(Columns{Area: []string{"SHAPE_Area"}})
	if len(merged.Area) != 1 || merged.Area[0] != "SHAPE_Area" {
		t.Fatalf("area override = %v", merged.Area)
	}
	if merged.LandUse[0] != "TDLYLX" {
		t.Fatalf("land use default lost: %v", merged.LandUse)
	}
}
