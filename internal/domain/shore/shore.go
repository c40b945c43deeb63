// Package shore infers whether each rate-card table of a document prices
// onshore or offshore consultants.
package shore

import (
	"fmt"
	"sort"
	"strconv"

	"github.com/okian/ratecards/internal/domain/model"
)

// Classify assigns a location type to every row. A document with one table
// is onshore. With two tables, the first level priced as a plain integer in
// both (in SFIA order) is compared on development_and_implementation and the
// dearer table is onshore. The returned rows keep table order.
func Classify(documentID string, tables [][]model.NormalizedRow) ([]model.NormalizedRow, error) {
	switch len(tables) {
	case 0:
		return nil, nil
	case 1:
		return tag(tables[0], model.Onshore), nil
	case 2:
	default:
		return nil, fmt.Errorf("%w: document %s has %d", model.ErrTooManyTables, documentID, len(tables))
	}

	level, p1, p2, ok := ComparisonLevel(tables[0], tables[1])
	if !ok {
		return nil, &model.ShoreClassificationError{
			DocumentID: documentID,
			Reason:     "no level has an integer development_and_implementation price in both tables",
		}
	}
	if p1 == p2 {
		return nil, &model.ShoreClassificationError{
			DocumentID: documentID,
			Reason:     fmt.Sprintf("both tables price %q at %d", level, p1),
		}
	}

	first, second := model.Offshore, model.Onshore
	if p1 > p2 {
		first, second = model.Onshore, model.Offshore
	}
	out := make([]model.NormalizedRow, 0, len(tables[0])+len(tables[1]))
	out = append(out, tag(tables[0], first)...)
	out = append(out, tag(tables[1], second)...)
	return out, nil
}

// ComparisonLevel returns the level used to compare two tables and its
// development_and_implementation price in each.
func ComparisonLevel(t1, t2 []model.NormalizedRow) (level string, p1, p2 int64, ok bool) {
	prices1 := integerPrices(t1)
	prices2 := integerPrices(t2)

	var shared []string
	for _, r := range t1 {
		_, in1 := prices1[r.LevelName]
		_, in2 := prices2[r.LevelName]
		if in1 && in2 && !contains(shared, r.LevelName) {
			shared = append(shared, r.LevelName)
		}
	}
	if len(shared) == 0 {
		return "", 0, 0, false
	}
	sort.SliceStable(shared, func(i, j int) bool {
		return rankKey(shared[i]) < rankKey(shared[j])
	})
	level = shared[0]
	return level, prices1[level], prices2[level], true
}

// integerPrices keeps the first pure-digit price per level name.
func integerPrices(rows []model.NormalizedRow) map[string]int64 {
	out := make(map[string]int64, len(rows))
	for _, r := range rows {
		cell := r.Price(model.DevelopmentAndImplementation)
		if !isDigits(cell) {
			continue
		}
		if _, seen := out[r.LevelName]; seen {
			continue
		}
		v, err := strconv.ParseInt(cell, 10, 64)
		if err != nil {
			continue
		}
		out[r.LevelName] = v
	}
	return out
}

// rankKey puts SFIA levels first in experience order and unknown names after.
func rankKey(name string) int {
	if r := model.LevelRank(name); r >= 0 {
		return r
	}
	return len(model.SFIALevels())
}

func tag(rows []model.NormalizedRow, loc model.LocationType) []model.NormalizedRow {
	out := make([]model.NormalizedRow, len(rows))
	for i, r := range rows {
		r.LocationType = loc
		out[i] = r
	}
	return out
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
