package extract

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"

	"github.com/okian/ratecards/internal/domain/model"
)

// CSVEngine reads tables saved as CSV, the format tabula's batch mode
// writes. Rows whose cells are all empty separate tables.
type CSVEngine struct{}

// Extract returns the tables of the file.
func (CSVEngine) Extract(_ context.Context, path string) ([]model.RawTable, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	r.LazyQuotes = true
	rows, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}

	grids := splitGrids(rows)
	out := make([]model.RawTable, 0, len(grids))
	for _, g := range grids {
		out = append(out, gridToTable(g))
	}
	return out, nil
}
