package main

import (
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

// subjectColumnWidth caps the Subject column; long library paths wrap.
const subjectColumnWidth = 70

// renderTable lays out rows under headers. Columns listed in wrap are capped
// at subjectColumnWidth and wrapped softly.
func renderTable(headers []string, rows [][]string, wrap map[int]bool) string {
	if len(headers) == 0 {
		return ""
	}

	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	tw.Style().Format.Header = text.FormatDefault

	header := make(table.Row, len(headers))
	for i, h := range headers {
		header[i] = h
	}
	tw.AppendHeader(header)

	for _, row := range rows {
		r := make(table.Row, len(headers))
		for i := range headers {
			if i < len(row) {
				r[i] = row[i]
			}
		}
		tw.AppendRow(r)
	}

	configs := make([]table.ColumnConfig, 0, len(wrap))
	for col := range wrap {
		configs = append(configs, table.ColumnConfig{
			Number:           col + 1,
			WidthMax:         subjectColumnWidth,
			WidthMaxEnforcer: text.WrapSoft,
		})
	}
	tw.SetColumnConfigs(configs)

	return tw.Render()
}
