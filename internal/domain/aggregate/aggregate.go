// Package aggregate merges normalized rows from every document and splits
// them into the single-price and price-range datasets.
package aggregate

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/okian/ratecards/internal/domain/model"
)

var (
	integerPattern = regexp.MustCompile(`^\d+$`)
	numericPattern = regexp.MustCompile(`^[\d.]+$`)
	decimalPattern = regexp.MustCompile(`^\d+\.\d{2}$`)
)

// ConcatAll flattens per-document rows ordered by document id. Row order
// inside a document is kept.
func ConcatAll(perDocument map[string][]model.NormalizedRow) []model.NormalizedRow {
	ids := make([]string, 0, len(perDocument))
	n := 0
	for id, rows := range perDocument {
		ids = append(ids, id)
		n += len(rows)
	}
	sort.Strings(ids)

	out := make([]model.NormalizedRow, 0, n)
	for _, id := range ids {
		out = append(out, perDocument[id]...)
	}
	return out
}

// PartitionAndClean cleans every price cell and splits rows on whether their
// strategy_and_architecture cell is a numeric range. Decimal prices lose
// their two fractional digits; other non-numeric values become N/A. A decimal
// without exactly two fractional digits fails with ErrPriceFormat.
func PartitionAndClean(rows []model.NormalizedRow) (single []model.NormalizedRow, ranges []model.PriceRangeRow, err error) {
	for _, r := range rows {
		var cleaned model.Prices
		for c := range r.Prices {
			v, err := cleanCell(r.Prices[c])
			if err != nil {
				return nil, nil, fmt.Errorf("document %s level %q %s: %w",
					r.SourceDocumentID, r.LevelName, model.PriceCategory(c), err)
			}
			cleaned[c] = v
		}

		if IsRange(cleaned[model.StrategyAndArchitecture]) {
			ranges = append(ranges, splitRange(r, cleaned))
			continue
		}

		for c, v := range cleaned {
			if strings.Contains(v, "-") {
				cleaned[c] = model.NotApplicable
			}
		}
		r.Prices = cleaned
		single = append(single, r)
	}
	return single, ranges, nil
}

// IsRange reports whether a cleaned cell is a price band: a hyphen with a
// digit on each side.
func IsRange(cell string) bool {
	i := strings.Index(cell, "-")
	if i <= 0 || i == len(cell)-1 {
		return false
	}
	return isDigit(cell[i-1]) && isDigit(cell[i+1])
}

// cleanCell returns an integer string, an "a-b" band, a bare hyphen or N/A.
func cleanCell(cell string) (string, error) {
	s := strings.TrimSpace(cell)
	if model.Missing(s) || strings.EqualFold(s, "NA") || s == model.NotApplicable {
		return model.NotApplicable, nil
	}
	if s == "-" {
		return s, nil
	}
	if parts := strings.Split(s, "-"); len(parts) == 2 {
		lo, okLo, err := truncate(strings.TrimSpace(parts[0]))
		if err != nil {
			return "", err
		}
		hi, okHi, err := truncate(strings.TrimSpace(parts[1]))
		if err != nil {
			return "", err
		}
		if okLo && okHi {
			return lo + "-" + hi, nil
		}
		return model.NotApplicable, nil
	}
	v, ok, err := truncate(s)
	if err != nil {
		return "", err
	}
	if !ok {
		return model.NotApplicable, nil
	}
	return v, nil
}

// truncate drops the fractional part of a two-place decimal. ok is false for
// text that is not a number at all.
func truncate(s string) (string, bool, error) {
	switch {
	case integerPattern.MatchString(s):
		return s, true, nil
	case !numericPattern.MatchString(s):
		return "", false, nil
	case !decimalPattern.MatchString(s):
		return "", false, fmt.Errorf("%w: %q", model.ErrPriceFormat, s)
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return "", false, fmt.Errorf("%w: %q: %v", model.ErrPriceFormat, s, err)
	}
	return d.Truncate(0).String(), true, nil
}

func splitRange(r model.NormalizedRow, cleaned model.Prices) model.PriceRangeRow {
	out := model.PriceRangeRow{
		SourceDocumentID: r.SourceDocumentID,
		LevelCode:        r.LevelCode,
		LevelName:        r.LevelName,
		LocationType:     r.LocationType,
	}
	for c, v := range cleaned {
		if v == "-" {
			v = model.NotApplicable
		}
		if lo, hi, ok := strings.Cut(v, "-"); ok {
			out.Min[c], out.Max[c] = lo, hi
			continue
		}
		out.Min[c], out.Max[c] = v, v
	}
	return out
}

func isDigit(b byte) bool { return b >= '0' && b <= '9' }
