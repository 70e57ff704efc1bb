package report

import (
	"fmt"

	"github.com/xuri/excelize/v2"
)

// styler 样式集合：边框、表头底色、列宽
type styler struct {
	title  int
	header int
	text   int
	number int
	total  int
}

func thinBorder() []excelize.Border {
	return []excelize.Border{
		{Type: "left", Color: "000000", Style: 1},
		{Type: "top", Color: "000000", Style: 1},
		{Type: "right", Color: "000000", Style: 1},
		{Type: "bottom", Color: "000000", Style: 1},
	}
}

func newStyler(f *excelize.File) (*styler, error) {
	var (
		s   styler
		err error
	)
	if s.title, err = f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 13},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	}); err != nil {
		return nil, fmt.Errorf("title style: %w", err)
	}
	if s.header, err = f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#E2E8F0"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center", WrapText: true},
		Border:    thinBorder(),
	}); err != nil {
		return nil, fmt.Errorf("header style: %w", err)
	}
	if s.text, err = f.NewStyle(&excelize.Style{
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
		Border:    thinBorder(),
	}); err != nil {
		return nil, fmt.Errorf("text style: %w", err)
	}
	if s.number, err = f.NewStyle(&excelize.Style{
		Alignment: &excelize.Alignment{Horizontal: "right", Vertical: "center"},
		Border:    thinBorder(),
	}); err != nil {
		return nil, fmt.Errorf("number style: %w", err)
	}
	if s.total, err = f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#F1F5F9"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
		Border:    thinBorder(),
	}); err != nil {
		return nil, fmt.Errorf("total style: %w", err)
	}
	return &s, nil
}

// sheetWriter 顺序写入一个工作表，记录第一个错误
type sheetWriter struct {
	f       *excelize.File
	st      *styler
	name    string
	row     int
	maxCols int
	err     error
}

func (w *sheetWriter) setErr(err error) {
	if w.err == nil && err != nil {
		w.err = fmt.Errorf("sheet %s row %d: %w", w.name, w.row, err)
	}
}

func (w *sheetWriter) track(n int) {
	if n > w.maxCols {
		w.maxCols = n
	}
}

// title 合并单元格的标题行
func (w *sheetWriter) title(text string, span int) {
	if span < 1 {
		span = 1
	}
	first, _ := excelize.CoordinatesToCellName(1, w.row)
	last, _ := excelize.CoordinatesToCellName(span, w.row)
	w.setErr(w.f.SetCellValue(w.name, first, text))
	if span > 1 {
		w.setErr(w.f.MergeCell(w.name, first, last))
	}
	w.setErr(w.f.SetCellStyle(w.name, first, last, w.st.title))
	w.track(span)
	w.row++
}

func (w *sheetWriter) header(cols ...string) {
	vals := make([]any, len(cols))
	for i, c := range cols {
		vals[i] = c
	}
	w.write(vals, func(any) int { return w.st.header })
}

// values 数据行：数值右对齐，其余居中
func (w *sheetWriter) values(vals ...any) {
	w.write(vals, func(v any) int {
		switch v.(type) {
		case float64, int:
			return w.st.number
		default:
			return w.st.text
		}
	})
}

// totals 合计行
func (w *sheetWriter) totals(vals ...any) {
	w.write(vals, func(any) int { return w.st.total })
}

func (w *sheetWriter) write(vals []any, style func(any) int) {
	if len(vals) == 0 {
		return
	}
	start, _ := excelize.CoordinatesToCellName(1, w.row)
	w.setErr(w.f.SetSheetRow(w.name, start, &vals))
	for i, v := range vals {
		cell, _ := excelize.CoordinatesToCellName(i+1, w.row)
		w.setErr(w.f.SetCellStyle(w.name, cell, cell, style(v)))
	}
	w.track(len(vals))
	w.row++
}

func (w *sheetWriter) blank() {
	w.row++
}

// finish 设置列宽
func (w *sheetWriter) finish() error {
	if w.maxCols > 0 {
		w.setErr(w.f.SetColWidth(w.name, "A", "A", 20))
		if w.maxCols > 1 {
			last, _ := excelize.ColumnNumberToName(w.maxCols)
			w.setErr(w.f.SetColWidth(w.name, "B", last, 13))
		}
	}
	return w.err
}
