package main

import (
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

// column is one table column; numeric columns are right aligned.
type column struct {
	title   string
	numeric bool
}

func textCol(title string) column { return column{title: title} }

func numCol(title string) column { return column{title: title, numeric: true} }

var (
	entryColumns = []column{
		numCol("#"), textCol("Tag"), textCol("Direction"), numCol("Project"),
		numCol("Qty"), textCol("Mode"), textCol("Queued"),
	}
	droppedColumns = []column{
		textCol("Tag"), textCol("Direction"), numCol("Project"),
		textCol("Dropped"), textCol("Kind"), textCol("Reason"),
	}
	dropNoticeColumns = []column{textCol("Tag"), textCol("Kind"), textCol("Reason")}
	pairColumns       = []column{textCol("Field"), textCol("Value")}
)

// renderTable draws rows under columns. Short rows are padded and a
// non-empty caption is printed below the table.
func renderTable(columns []column, rows [][]string, caption string) string {
	if len(columns) == 0 {
		return ""
	}

	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)

	header := make(table.Row, len(columns))
	configs := make([]table.ColumnConfig, len(columns))
	for i, c := range columns {
		header[i] = c.title
		align := text.AlignLeft
		if c.numeric {
			align = text.AlignRight
		}
		configs[i] = table.ColumnConfig{Number: i + 1, Align: align, AlignHeader: text.AlignLeft}
	}
	tw.AppendHeader(header)
	tw.SetColumnConfigs(configs)

	for _, row := range rows {
		r := make(table.Row, len(columns))
		for i := range r {
			r[i] = ""
			if i < len(row) {
				r[i] = row[i]
			}
		}
		tw.AppendRow(r)
	}
	if caption != "" {
		tw.SetCaption("%s", caption)
	}
	return tw.Render()
}

// renderPairs renders a two-column key/value table.
func renderPairs(pairs [][2]string) string {
	rows := make([][]string, 0, len(pairs))
	for _, pair := range pairs {
		rows = append(rows, []string{pair[0], pair[1]})
	}
	return renderTable(pairColumns, rows, "")
}
