package extract

import (
	"context"
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/okian/ratecards/internal/domain/model"
)

// XLSXEngine reads workbooks. Each sheet holds one or more tables separated
// by blank rows.
type XLSXEngine struct{}

// Extract returns the tables of every sheet in sheet order.
func (XLSXEngine) Extract(_ context.Context, path string) ([]model.RawTable, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer func() { _ = f.Close() }()

	var out []model.RawTable
	for _, sheet := range f.GetSheetList() {
		rows, err := f.GetRows(sheet)
		if err != nil {
			return nil, fmt.Errorf("read sheet %q: %w", sheet, err)
		}
		for _, grid := range splitGrids(rows) {
			out = append(out, gridToTable(grid))
		}
	}
	return out, nil
}
