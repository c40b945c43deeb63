// Package csvio reads and writes the delimited-text datasets of a run.
package csvio

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/okian/ratecards/internal/domain/gold"
	"github.com/okian/ratecards/internal/domain/model"
)

// Column names shared by the datasets.
const (
	ColSourceDocumentID = "source_document_id"
	ColLevel            = "level"
	ColLevelName        = "level_name"
	ColLocationType     = "location_type"
	ColRateCardID       = "rate_card_id"
	ColCompany          = "company"
	ColID               = "id"
	ColRateCardFile     = "rate_card_file"
)

// SingleHeader is the column order of the single-price dataset.
func SingleHeader() []string {
	h := []string{ColSourceDocumentID, ColLevel, ColLevelName}
	for _, c := range model.PriceCategories() {
		h = append(h, c.String())
	}
	return append(h, ColLocationType)
}

// RangeHeader is the column order of the price-range dataset: each price
// column becomes a _min and _max pair.
func RangeHeader() []string {
	h := []string{ColSourceDocumentID, ColLevel, ColLevelName}
	for _, c := range model.PriceCategories() {
		h = append(h, c.String()+"_min", c.String()+"_max")
	}
	return append(h, ColLocationType)
}

// GoldHeader is the column order of a gold table.
func GoldHeader(t model.GoldTable) []string {
	h := []string{ColRateCardID, ColCompany, ColLocationType}
	return append(h, t.LevelNames...)
}

// WriteSingle writes the single-price dataset with its header row.
func WriteSingle(w io.Writer, rows []model.NormalizedRow) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(SingleHeader()); err != nil {
		return err
	}
	for _, r := range rows {
		rec := []string{r.SourceDocumentID, r.LevelCode, r.LevelName}
		rec = append(rec, r.Prices[:]...)
		rec = append(rec, string(r.LocationType))
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteRanges writes the price-range dataset with its header row.
func WriteRanges(w io.Writer, rows []model.PriceRangeRow) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(RangeHeader()); err != nil {
		return err
	}
	for _, r := range rows {
		rec := []string{r.SourceDocumentID, r.LevelCode, r.LevelName}
		for i := range r.Min {
			rec = append(rec, r.Min[i], r.Max[i])
		}
		rec = append(rec, string(r.LocationType))
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteGold writes the pivoted table. Levels a rate card lacks are empty.
func WriteGold(w io.Writer, t model.GoldTable) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(GoldHeader(t)); err != nil {
		return err
	}
	for _, r := range t.Rows {
		rec := []string{strconv.Itoa(r.RateCardID), r.Company, string(r.LocationType)}
		for _, l := range t.LevelNames {
			rec = append(rec, r.Levels[l])
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// ReadSingle reads a single-price dataset. Columns are found by name, so a
// leading index column written by other tools is ignored.
func ReadSingle(r io.Reader) ([]model.NormalizedRow, error) {
	header, records, err := readAll(r)
	if err != nil {
		return nil, err
	}
	idx, err := columnIndex(header, SingleHeader())
	if err != nil {
		return nil, err
	}

	out := make([]model.NormalizedRow, 0, len(records))
	for _, rec := range records {
		row := model.NormalizedRow{
			SourceDocumentID: field(rec, idx[ColSourceDocumentID]),
			LevelCode:        field(rec, idx[ColLevel]),
			LevelName:        field(rec, idx[ColLevelName]),
			LocationType:     model.LocationType(field(rec, idx[ColLocationType])),
		}
		for _, c := range model.PriceCategories() {
			row.Prices[c] = field(rec, idx[c.String()])
		}
		out = append(out, row)
	}
	return out, nil
}

// ReadDimension reads the dimension table: an id and rate_card_file column,
// optionally after an unnamed index column.
func ReadDimension(r io.Reader) (gold.Dimension, error) {
	header, records, err := readAll(r)
	if err != nil {
		return nil, err
	}
	idx, err := columnIndex(header, []string{ColID, ColRateCardFile})
	if err != nil {
		return nil, err
	}

	dim := make(gold.Dimension, len(records))
	for n, rec := range records {
		raw := strings.TrimSpace(field(rec, idx[ColID]))
		id, err := strconv.Atoi(raw)
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: id %q", ErrBadRecord, n+2, raw)
		}
		dim[model.DocumentID(field(rec, idx[ColRateCardFile]))] = id
	}
	return dim, nil
}

// WriteDimension writes the dimension table ordered by id.
func WriteDimension(w io.Writer, dim gold.Dimension) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{ColID, ColRateCardFile}); err != nil {
		return err
	}
	for _, e := range dim.Entries() {
		if err := cw.Write([]string{strconv.Itoa(e.ID), e.RateCardFile}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func readAll(r io.Reader) ([]string, [][]string, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	records, err := cr.ReadAll()
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrBadRecord, err)
	}
	if len(records) == 0 {
		return nil, nil, fmt.Errorf("%w: empty file", ErrBadRecord)
	}
	return records[0], records[1:], nil
}

func columnIndex(header, want []string) (map[string]int, error) {
	idx := make(map[string]int, len(header))
	for i, h := range header {
		h = strings.TrimPrefix(h, "\ufeff")
		if _, dup := idx[h]; !dup {
			idx[h] = i
		}
	}
	for _, w := range want {
		if _, ok := idx[w]; !ok {
			return nil, fmt.Errorf("%w: %s", ErrMissingColumn, w)
		}
	}
	return idx, nil
}

func field(rec []string, i int) string {
	if i < 0 || i >= len(rec) {
		return ""
	}
	return rec[i]
}

// WriteFile writes a dataset to path through a temporary file in the same
// directory, so readers never see a partial file.
func WriteFile(path string, write func(io.Writer) error) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if err := write(tmp); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}

// ReadFile opens path and hands it to read.
func ReadFile[T any](path string, read func(io.Reader) (T, error)) (T, error) {
	f, err := os.Open(path)
	if err != nil {
		var zero T
		return zero, err
	}
	defer f.Close()
	return read(f)
}
