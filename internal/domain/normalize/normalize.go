package normalize

import (
	"errors"

	"github.com/okian/ratecards/internal/domain/model"
)

// Result is a normalized rate-card table.
type Result struct {
	DocumentID string
	Table      int
	Columns    []string // cleaned header, level column first
	Unmapped   []string // cleaned headers outside the canonical schema
	Rows       []model.NormalizedRow
}

// Normalize renames the table's columns, cleans every price cell and splits
// the level column. Canonical categories the table lacks stay empty; the
// aggregator turns them into N/A. Location type is left unset.
func Normalize(t model.RateCardTable, mode SynonymMode) (Result, error) {
	cols := RenameColumns(t.Columns, mode)
	idx, unmapped := categoryIndex(cols)

	res := Result{
		DocumentID: t.DocumentID,
		Table:      t.Index,
		Columns:    cols,
		Unmapped:   unmapped,
		Rows:       make([]model.NormalizedRow, 0, len(t.Rows)),
	}
	for i := range t.Rows {
		level := t.Cell(i, 0)
		code, name, err := SplitLevel(level)
		if err != nil {
			var layoutErr *model.UnrecognizedLayoutError
			if errors.As(err, &layoutErr) {
				layoutErr.DocumentID = t.DocumentID
				layoutErr.Table = t.Index
			}
			return Result{}, err
		}

		row := model.NormalizedRow{
			SourceDocumentID: t.DocumentID,
			LevelCode:        code,
			LevelName:        name,
		}
		for c, j := range idx {
			if j < 0 {
				continue
			}
			cell := t.Cell(i, j)
			if model.Missing(cell) {
				continue
			}
			row.Prices[c] = CleanPriceCell(cell)
		}
		res.Rows = append(res.Rows, row)
	}
	return res, nil
}
