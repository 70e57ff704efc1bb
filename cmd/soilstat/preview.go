package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"soilstat/internal/model"
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	dimStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	cellStyle   = lipgloss.NewStyle().PaddingRight(2)
)

// renderPreview 属性预览表
func renderPreview(preview []model.AttributePreview) string {
	if len(preview) == 0 {
		return dimStyle.Render("(无可统计属性)")
	}
	rows := make([][]string, 0, len(preview))
	for _, p := range preview {
		var dist []string
		p.GradeDistribution.Each(func(label string, pct float64) {
			dist = append(dist, fmt.Sprintf("%s %.2f%%", label, pct))
		})
		rows = append(rows, []string{
			p.Name,
			p.Unit,
			fmt.Sprintf("%d", p.SampleCount),
			formatNumber(p.SampleMean),
			formatNumber(p.SampleMin),
			formatNumber(p.SampleMax),
			strings.Join(dist, " / "),
		})
	}
	return renderTable([]string{"属性", "单位", "样点数", "均值", "最小值", "最大值", "等级分布"}, rows)
}

func formatNumber(v float64) string {
	s := fmt.Sprintf("%.3f", v)
	s = strings.TrimRight(s, "0")
	return strings.TrimSuffix(s, ".")
}

// renderTable 按显示宽度对齐（中文按双宽计算）
func renderTable(header []string, rows [][]string) string {
	widths := make([]int, len(header))
	for i, h := range header {
		widths[i] = lipgloss.Width(h)
	}
	for _, r := range rows {
		for i, c := range r {
			if i < len(widths) && lipgloss.Width(c) > widths[i] {
				widths[i] = lipgloss.Width(c)
			}
		}
	}

	line := func(cells []string, style lipgloss.Style) string {
		parts := make([]string, len(cells))
		for i, c := range cells {
			w := widths[i]
			if i == len(cells)-1 {
				parts[i] = style.Render(c)
				continue
			}
			parts[i] = style.Render(cellStyle.Width(w + 2).Render(c))
		}
		return strings.Join(parts, "")
	}

	var b strings.Builder
	b.WriteString(line(header, headerStyle))
	b.WriteString("\n")
	for _, r := range rows {
		b.WriteString(line(r, lipgloss.NewStyle()))
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}
