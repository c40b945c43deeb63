package extract

import (
	"context"
	"fmt"
	"os"

	"github.com/PuerkitoBio/goquery"

	"github.com/okian/ratecards/internal/domain/model"
)

// HTMLEngine reads every <table> of an HTML document.
type HTMLEngine struct{}

// Extract parses the file and returns its tables in document order.
func (HTMLEngine) Extract(_ context.Context, path string) ([]model.RawTable, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	doc, err := goquery.NewDocumentFromReader(f)
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}
	doc.Find("br").ReplaceWithHtml("\n")

	var out []model.RawTable
	doc.Find("table").Each(func(_ int, table *goquery.Selection) {
		var grid [][]string
		table.Find("tr").Each(func(_ int, tr *goquery.Selection) {
			// skip rows of nested tables
			if tr.Closest("table").Get(0) != table.Get(0) {
				return
			}
			var row []string
			tr.ChildrenFiltered("th,td").Each(func(_ int, cell *goquery.Selection) {
				row = append(row, cell.Text())
			})
			grid = append(grid, row)
		})
		if len(grid) == 0 {
			return
		}
		out = append(out, gridToTable(grid))
	})
	return out, nil
}
