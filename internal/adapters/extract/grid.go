package extract

import (
	"strconv"
	"strings"

	"github.com/okian/ratecards/internal/domain/model"
)

var lineBreaks = strings.NewReplacer("\r\n", "\r", "\n", "\r")

// cleanCell trims a cell and writes embedded line breaks as "\r", the form
// tabula emits and the table signatures expect.
func cleanCell(s string) string {
	return lineBreaks.Replace(strings.TrimSpace(s))
}

// headerNames names header cells the way the pandas reader does: a blank
// header at position i is "Unnamed: i" and repeats get a ".n" suffix.
func headerNames(raw []string) []string {
	out := make([]string, len(raw))
	seen := make(map[string]int, len(raw))
	for i, h := range raw {
		name := h
		if strings.TrimSpace(name) == "" {
			name = "Unnamed: " + strconv.Itoa(i)
		}
		if n, dup := seen[name]; dup {
			seen[name] = n + 1
			name = name + "." + strconv.Itoa(n+1)
		} else {
			seen[name] = 0
		}
		out[i] = name
	}
	return out
}

func blankRow(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

// splitGrids cuts a sheet into tables at blank rows.
func splitGrids(rows [][]string) [][][]string {
	var (
		out [][][]string
		cur [][]string
	)
	for _, r := range rows {
		if blankRow(r) {
			if len(cur) > 0 {
				out = append(out, cur)
				cur = nil
			}
			continue
		}
		cur = append(cur, r)
	}
	if len(cur) > 0 {
		out = append(out, cur)
	}
	return out
}

// gridToTable uses the first row as header. The header is widened to the
// longest row so no cell is dropped.
func gridToTable(grid [][]string) model.RawTable {
	width := 0
	for _, r := range grid {
		if len(r) > width {
			width = len(r)
		}
	}
	header := make([]string, width)
	for i, c := range grid[0] {
		header[i] = cleanCell(c)
	}

	rows := make([][]string, 0, len(grid)-1)
	for _, r := range grid[1:] {
		row := make([]string, len(r))
		for i, c := range r {
			row[i] = cleanCell(c)
		}
		rows = append(rows, row)
	}
	return model.RawTable{Columns: headerNames(header), Rows: rows}
}
