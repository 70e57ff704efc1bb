// Package ingest 读取样点表与制图表并转换为统计行
package ingest

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/xuri/excelize/v2"
	"golang.org/x/text/encoding/simplifiedchinese"
	"golang.org/x/text/transform"

	"soilstat/internal/model"
)

// Table 已解码的表格
type Table struct {
	Name   string
	Header []string
	Rows   [][]string
}

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// ReadFile 按扩展名读取 csv / xlsx 文件
func ReadFile(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return Read(filepath.Base(path), f)
}

// Read 按文件名扩展名选择解析方式
func Read(name string, r io.Reader) (*Table, error) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".csv", ".txt":
		return ReadCSV(name, r)
	case ".xlsx", ".xlsm":
		return ReadXLSX(name, r)
	default:
		return nil, &model.InputFormatError{Table: name, Reason: "不支持的文件类型，仅支持 csv / xlsx"}
	}
}

// ReadCSV 读取 CSV；非 UTF-8 内容按 GB18030（兼容 GBK）解码
func ReadCSV(name string, r io.Reader) (*Table, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", name, err)
	}
	raw = bytes.TrimPrefix(raw, utf8BOM)

	if !utf8.Valid(raw) {
		decoded, _, err := transform.Bytes(simplifiedchinese.GB18030.NewDecoder(), raw)
		if err != nil {
			return nil, &model.InputFormatError{Table: name, Reason: "无法识别文件编码: " + err.Error()}
		}
		raw = decoded
	}

	cr := csv.NewReader(bytes.NewReader(raw))
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	records, err := cr.ReadAll()
	if err != nil {
		return nil, &model.InputFormatError{Table: name, Reason: "CSV 解析失败: " + err.Error()}
	}
	return newTable(name, records)
}

// ReadXLSX 读取第一个非空工作表
func ReadXLSX(name string, r io.Reader) (*Table, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, &model.InputFormatError{Table: name, Reason: "Excel 打开失败: " + err.Error()}
	}
	defer f.Close()

	for _, sheet := range f.GetSheetList() {
		rows, err := f.GetRows(sheet)
		if err != nil {
			return nil, &model.InputFormatError{Table: name, Reason: fmt.Sprintf("读取工作表 %s 失败: %v", sheet, err)}
		}
		if len(rows) == 0 {
			continue
		}
		return newTable(name, rows)
	}
	return nil, &model.InputFormatError{Table: name, Reason: "工作簿中没有数据"}
}

// newTable 跳过开头空行，第一行非空行为表头
func newTable(name string, records [][]string) (*Table, error) {
	start := 0
	for start < len(records) && isBlankRow(records[start]) {
		start++
	}
	if start >= len(records) {
		return nil, &model.InputFormatError{Table: name, Reason: "表格为空"}
	}

	t := &Table{Name: name, Header: make([]string, len(records[start]))}
	for i, h := range records[start] {
		t.Header[i] = normalizeHeader(h)
	}
	for _, rec := range records[start+1:] {
		if isBlankRow(rec) {
			continue
		}
		t.Rows = append(t.Rows, rec)
	}
	return t, nil
}

func isBlankRow(rec []string) bool {
	for _, c := range rec {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

// cell 越界视为空
func (t *Table) cell(row []string, col int) string {
	if col < 0 || col >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[col])
}
